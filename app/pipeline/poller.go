package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"fxpulse/app/classify"
	"fxpulse/app/feed"
	"fxpulse/app/quota"
	"fxpulse/app/store"
)

// Poll fetches every configured source once, drops already-seen items
// and returns the fresh ones classified. Fingerprints are marked seen
// before any delivery happens; a crash between marking and delivering
// loses at most one notification rather than duplicating it. Fresh
// items are archived so digest passes can pick them up later.
//
// When fetchBodies is false the pass stays on the cheap path: no
// article-body requests, classification runs on the feed excerpt only.
func (p *Pipeline) Poll(ctx context.Context, fetchBodies bool) []classify.ScoredItem {
	now := p.nowFn()

	cutoff := now.Add(-time.Duration(p.cfg.SeenTTLHours) * time.Hour)
	if purged, err := p.seen.PurgeExpired(cutoff); err != nil {
		slog.Warn("Failed to purge expired fingerprints", "error", err)
	} else if purged > 0 {
		slog.Debug("Purged expired fingerprints", "count", purged)
	}

	var fresh []classify.ScoredItem
	for _, source := range p.sources {
		items, err := p.pollSource(ctx, source, now, fetchBodies)
		if err != nil {
			if errors.Is(err, quota.ErrExhausted) {
				slog.Warn("Quota exhausted, skipping source", "source", source.ID)
				continue
			}
			slog.Error("Failed to poll source", "source", source.ID, "error", err)
			continue
		}
		fresh = append(fresh, items...)
	}

	slog.Info("Poll completed", "sources", len(p.sources), "fresh", len(fresh))
	return fresh
}

func (p *Pipeline) pollSource(ctx context.Context, source feed.Source, now time.Time, fetchBodies bool) ([]classify.ScoredItem, error) {
	if err := p.budget.Charge(p.cfg.CostFeedFetch); err != nil {
		return nil, err
	}

	data, err := p.fetcher.Fetch(ctx, source.URL)
	if err != nil {
		return nil, err
	}

	rawItems, err := p.parser.Run(source, data, now)
	if err != nil {
		return nil, err
	}
	if max := p.cfg.MaxItemsPerSource; max > 0 && len(rawItems) > max {
		rawItems = rawItems[:max]
	}

	var fresh []classify.ScoredItem
	for _, raw := range rawItems {
		seen, err := p.seen.HasSeen(raw.Fingerprint)
		if err != nil {
			slog.Error("Failed to check fingerprint", "url", raw.URL, "error", err)
			continue
		}
		if seen {
			continue
		}

		if fetchBodies {
			p.enrichBody(ctx, &raw)
		}

		if err := p.seen.MarkSeen(raw.Fingerprint, raw.URL, now); err != nil {
			slog.Error("Failed to mark fingerprint seen", "url", raw.URL, "error", err)
			continue
		}

		scored := p.classifier.Run(raw)
		fresh = append(fresh, scored)

		item := store.Item{
			Fingerprint: scored.Fingerprint,
			SourceID:    scored.SourceID,
			URL:         scored.URL,
			Title:       scored.Title,
			BodyExcerpt: scored.BodyExcerpt,
			Labels:      scored.Labels,
			Sentiment:   scored.Sentiment,
			Impact:      scored.Impact,
			PublishedAt: scored.PublishedAt,
			CreatedAt:   now,
		}
		if err := p.items.Upsert(item); err != nil {
			slog.Error("Failed to archive item", "url", raw.URL, "error", err)
		}
	}

	slog.Debug("Source polled", "source", source.ID, "items", len(rawItems), "fresh", len(fresh))
	return fresh, nil
}

// enrichBody replaces a thin feed excerpt with readable main text from
// the article page. Best effort: any failure leaves the excerpt as is.
func (p *Pipeline) enrichBody(ctx context.Context, raw *feed.RawItem) {
	if !p.budget.CanSpend(p.cfg.CostArticleFetch) {
		return
	}
	if err := p.budget.Charge(p.cfg.CostArticleFetch); err != nil {
		return
	}

	data, err := p.fetcher.Fetch(ctx, raw.URL)
	if err != nil {
		slog.Debug("Failed to fetch article body", "url", raw.URL, "error", err)
		return
	}

	text, err := p.extractor.Run(data, raw.URL)
	if err != nil || text == "" {
		return
	}
	raw.BodyExcerpt = text
}
