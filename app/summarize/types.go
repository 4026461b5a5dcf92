package summarize

import (
	"context"

	"fxpulse/app/classify"
)

// Summary is the condensed view of an item used in alerts and digests.
type Summary struct {
	Text       string
	Bias       string
	Entities   []string
	Confidence float64
}

const (
	BiasHawkish = "hawkish"
	BiasDovish  = "dovish"
	BiasNeutral = "neutral"
)

// Summarizer condenses a scored item into a short summary.
type Summarizer interface {
	Summarize(ctx context.Context, item classify.ScoredItem) (Summary, error)
}

// Metered reports whether calling s spends quota on an upstream API.
// Purely local summarizers are free and must not be charged.
func Metered(s Summarizer) bool {
	type metered interface{ Metered() bool }
	if m, ok := s.(metered); ok {
		return m.Metered()
	}
	return false
}

func biasFor(sentiment int) string {
	switch {
	case sentiment > 0:
		return BiasHawkish
	case sentiment < 0:
		return BiasDovish
	default:
		return BiasNeutral
	}
}
