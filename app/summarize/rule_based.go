package summarize

import (
	"context"
	"strings"
	"unicode/utf8"

	"fxpulse/app/classify"
)

const (
	maxBullets       = 3
	maxBulletLen     = 120
	excerptLen       = 200
	minSentenceRunes = 10
)

// sentenceKeywords marks finance-relevant sentences during scoring.
// English and Japanese terms are mixed because the sources are.
var sentenceKeywords = []string{
	"rate", "inflation", "employment", "policy", "statement", "yoy", "mom",
	"fed", "fomc", "boj", "ecb", "intervention", "yield",
	"利上げ", "利下げ", "インフレ", "雇用", "金利", "政策金利", "声明",
	"発言", "景気", "ドル", "円", "ユーロ", "債券", "指標", "予想",
	"前月比", "前年比", "上昇", "低下", "介入",
}

var numericMarkers = []string{"%", "bp", "basis", "兆", "億", "万人", "ポイント"}

// RuleBased condenses an item without any external service: sentences
// are scored by keyword density, length band and numeric content, and
// the top three become bullets. It never returns an error; when no
// usable sentence exists it degrades to a raw excerpt.
type RuleBased struct{}

func NewRuleBased() *RuleBased {
	return &RuleBased{}
}

func (r *RuleBased) Summarize(_ context.Context, item classify.ScoredItem) (Summary, error) {
	text := strings.TrimSpace(item.Title + "\n" + item.BodyExcerpt)

	bullets := topSentences(text)
	if len(bullets) == 0 {
		bullets = []string{truncateRunes(text, excerptLen)}
	}

	for i, b := range bullets {
		bullets[i] = "• " + truncateRunes(b, maxBulletLen)
	}

	return Summary{
		Text:       strings.Join(bullets, "\n"),
		Bias:       biasFor(item.Sentiment),
		Entities:   item.Labels,
		Confidence: 0.4,
	}, nil
}

func topSentences(text string) []string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	type scored struct {
		score    int
		position int
		text     string
	}

	ranked := make([]scored, 0, len(sentences))
	for i, s := range sentences {
		lower := strings.ToLower(s)
		score := 0
		for _, kw := range sentenceKeywords {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		if n := utf8.RuneCountInString(s); n >= 40 && n <= 160 {
			score++
		}
		for _, marker := range numericMarkers {
			if strings.Contains(s, marker) {
				score++
				break
			}
		}
		ranked = append(ranked, scored{score: score, position: i, text: s})
	}

	// Insertion sort keeps equal-score sentences in document order.
	for i := 1; i < len(ranked); i++ {
		for j := i; j > 0 && ranked[j].score > ranked[j-1].score; j-- {
			ranked[j], ranked[j-1] = ranked[j-1], ranked[j]
		}
	}

	top := make([]string, 0, maxBullets)
	for _, s := range ranked {
		if len(top) == maxBullets {
			break
		}
		top = append(top, s.text)
	}
	return top
}

func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	flush := func() {
		s := strings.Join(strings.Fields(current.String()), " ")
		if utf8.RuneCountInString(s) >= minSentenceRunes {
			sentences = append(sentences, s)
		}
		current.Reset()
	}

	for _, r := range text {
		current.WriteRune(r)
		switch r {
		case '.', '!', '?', '。', '！', '？', '\n':
			flush()
		}
	}
	flush()

	return sentences
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
