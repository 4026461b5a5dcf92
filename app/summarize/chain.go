package summarize

import (
	"context"
	"log/slog"

	"fxpulse/app/classify"
)

// Chain tries each summarizer in order and returns the first success.
// With a RuleBased tail the chain as a whole never fails.
type Chain struct {
	summarizers []Summarizer
}

var _ Summarizer = (*Chain)(nil)

func NewChain(summarizers ...Summarizer) *Chain {
	return &Chain{summarizers: summarizers}
}

// Metered reports whether any summarizer in the chain spends quota.
func (c *Chain) Metered() bool {
	for _, s := range c.summarizers {
		if Metered(s) {
			return true
		}
	}
	return false
}

func (c *Chain) Summarize(ctx context.Context, item classify.ScoredItem) (Summary, error) {
	var lastErr error
	for _, s := range c.summarizers {
		summary, err := s.Summarize(ctx, item)
		if err == nil {
			return summary, nil
		}
		lastErr = err
		slog.Debug("Summarizer failed, trying next", "url", item.URL, "error", err)
	}
	return Summary{}, lastErr
}
