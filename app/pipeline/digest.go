package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"fxpulse/app/classify"
	"fxpulse/app/deliver"
	"fxpulse/app/digest"
	"fxpulse/app/feed"
	"fxpulse/app/quota"
	"fxpulse/app/store"
)

// RunDigestPass polls for anything new, then batches the window's
// archived items into one packed message. Delivered items are stamped
// with the digest day so a re-run of the same window sends nothing.
func (p *Pipeline) RunDigestPass(ctx context.Context, kind digest.Kind) error {
	now := p.nowFn()

	status, err := p.budget.Status()
	if err != nil {
		slog.Warn("Quota status unavailable, running degraded", "error", err)
	}
	// Low budget keeps the poll on cheap feed calls only.
	fetchBodies := p.cfg.FetchBodies && status == quota.StatusNormal
	p.Poll(ctx, fetchBodies)

	start, end := digest.WindowFor(kind, now, p.location)

	items, err := p.items.SelectWindow(start, end)
	if err != nil {
		return fmt.Errorf("failed to select digest window: %w", err)
	}
	if len(items) == 0 {
		slog.Info("Digest pass completed", "kind", kind, "items", 0)
		return nil
	}

	selected, truncated := digest.Select(items, p.cfg.DigestMaxItems)
	if truncated > 0 {
		slog.Debug("Digest truncated by item cap", "dropped", truncated)
	}

	header := p.digestHeader(kind, start, end, items)

	blocks := make([]string, 0, len(selected))
	for _, item := range selected {
		blocks = append(blocks, p.digestBlock(ctx, item))
	}

	message, used := deliver.PackBlocks(header, blocks, p.cfg.MessageLimit)
	if used == 0 {
		slog.Warn("Digest message could not fit any block", "kind", kind)
		return nil
	}

	if err := p.send(ctx, p.digestWebhook(), message); err != nil {
		return fmt.Errorf("failed to deliver digest: %w", err)
	}

	if !p.cfg.DryRun {
		fingerprints := make([]string, 0, used)
		for _, item := range selected[:used] {
			fingerprints = append(fingerprints, item.Fingerprint)
		}
		if err := p.items.MarkDigested(fingerprints, digest.Stamp(end, p.location)); err != nil {
			return fmt.Errorf("failed to stamp digested items: %w", err)
		}
	}

	slog.Info("Digest pass completed", "kind", kind, "items", len(items), "sent", used)
	return nil
}

func (p *Pipeline) digestHeader(kind digest.Kind, start, end time.Time, items []store.Item) string {
	metrics := digest.Summarize(items)

	var b strings.Builder
	fmt.Fprintf(&b, "【FXニュースまとめ】%s / %s - %s",
		kind,
		start.In(p.location).Format("01/02 15:04"),
		end.In(p.location).Format("01/02 15:04"))
	fmt.Fprintf(&b, "\nitems: %d, hawkish: %d, dovish: %d",
		metrics.Total, metrics.Hawkish, metrics.Dovish)

	if kind == digest.KindWeekly {
		if line := p.weeklyDeltaLine(items); line != "" {
			b.WriteString("\n")
			b.WriteString(line)
		}
	}

	return b.String()
}

// weeklyDeltaLine compares this week's volume against the previous
// week. With no prior baseline the comparison is omitted rather than
// shown as a fake percentage.
func (p *Pipeline) weeklyDeltaLine(items []store.Item) string {
	now := p.nowFn()
	start, end := digest.WindowFor(digest.KindWeekly, now, p.location)

	prev, err := p.items.CountPublished(start.AddDate(0, 0, -7), start)
	if err != nil {
		slog.Warn("Failed to count previous week items", "error", err)
		return ""
	}
	cur, err := p.items.CountPublished(start, end)
	if err != nil {
		slog.Warn("Failed to count current week items", "error", err)
		return ""
	}

	pct, ok := digest.DeltaPct(float64(cur), float64(prev))
	if !ok {
		return ""
	}
	return fmt.Sprintf("week-over-week: %+.0f%%", pct)
}

// digestBlock renders one archived item. The stored summary is reused
// when polling produced one; otherwise the item is summarized now from
// its stored fields.
func (p *Pipeline) digestBlock(ctx context.Context, item store.Item) string {
	text := item.Summary
	if text == "" {
		scored := scoredFromStored(item)
		summary := p.summarizeItem(ctx, scored)
		text = summary.Text
	}
	return deliver.BuildBlock(text, item.URL, item.Labels)
}

func scoredFromStored(item store.Item) classify.ScoredItem {
	return classify.ScoredItem{
		RawItem: feed.RawItem{
			SourceID:    item.SourceID,
			URL:         item.URL,
			Title:       item.Title,
			BodyExcerpt: item.BodyExcerpt,
			PublishedAt: item.PublishedAt,
			Fingerprint: item.Fingerprint,
		},
		Labels:    item.Labels,
		Sentiment: item.Sentiment,
		Impact:    item.Impact,
	}
}
