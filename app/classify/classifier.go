package classify

import (
	"sort"
	"strings"

	"fxpulse/app/feed"
)

// ScoredItem is a RawItem with classification output attached.
type ScoredItem struct {
	feed.RawItem

	Labels    []string
	Sentiment int
	Impact    float64
}

// Classifier maps normalized items to labels, a sentiment bias and an impact
// score. Run is pure: no I/O, no randomness, identical input gives identical
// output. The impact value matters only for ordering and threshold checks.
type Classifier struct {
	lexicon *Lexicon
}

func NewClassifier(lexicon *Lexicon) *Classifier {
	return &Classifier{lexicon: lexicon}
}

func (c *Classifier) Run(item feed.RawItem) ScoredItem {
	text := strings.ToLower(item.Title + "\n" + item.BodyExcerpt)

	scored := ScoredItem{RawItem: item}
	scored.Labels = c.matchLabels(text)
	scored.Sentiment = c.sentiment(text)
	scored.Impact = c.impact(text, scored.Labels)

	return scored
}

// matchLabels returns every label whose keyword set has at least one hit,
// sorted for determinism. No hit yields the general label.
func (c *Classifier) matchLabels(text string) []string {
	var labels []string
	for label, keywords := range c.lexicon.Labels {
		if containsAny(text, keywords) {
			labels = append(labels, label)
		}
	}

	if len(labels) == 0 {
		return []string{LabelGeneral}
	}

	sort.Strings(labels)
	return labels
}

func (c *Classifier) sentiment(text string) int {
	score := 0
	for _, kw := range c.lexicon.Hawkish {
		if strings.Contains(text, strings.ToLower(kw)) {
			score++
		}
	}
	for _, kw := range c.lexicon.Dovish {
		if strings.Contains(text, strings.ToLower(kw)) {
			score--
		}
	}

	clamp := c.lexicon.SentimentClamp
	if score > clamp {
		return clamp
	}
	if score < -clamp {
		return -clamp
	}
	return score
}

func (c *Classifier) impact(text string, labels []string) float64 {
	var impact float64
	for _, label := range labels {
		impact += c.lexicon.Weights[label]
	}

	for _, kw := range c.lexicon.Boosters {
		if strings.Contains(text, strings.ToLower(kw)) {
			impact += c.lexicon.BoosterBonus
		}
	}
	for _, kw := range c.lexicon.Dampers {
		if strings.Contains(text, strings.ToLower(kw)) {
			impact -= c.lexicon.DamperPenalty
		}
	}

	if impact < 0 {
		return 0
	}
	return impact
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
