package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fxpulse/app/classify"
	"fxpulse/app/deliver"
	"fxpulse/app/quota"
	"fxpulse/app/summarize"
)

const alertHeader = "【速報】FX news alert"

// RunAlertPass polls all sources and delivers an alert for every fresh
// item at or above the impact threshold. A per-hour alert budget keeps
// busy news days from flooding the channel: alerts over the budget are
// batched into one combined message instead of being sent one by one.
func (p *Pipeline) RunAlertPass(ctx context.Context) error {
	now := p.nowFn()

	status, err := p.budget.Status()
	if err != nil {
		slog.Warn("Quota status unavailable, running degraded", "error", err)
	}
	fetchBodies := p.cfg.FetchBodies && status == quota.StatusNormal

	fresh := p.Poll(ctx, fetchBodies)

	var alerts []classify.ScoredItem
	for _, item := range fresh {
		if item.Impact >= p.cfg.AlertThreshold {
			alerts = append(alerts, item)
		}
	}
	if len(alerts) == 0 {
		slog.Info("Alert pass completed", "fresh", len(fresh), "alerts", 0)
		return nil
	}

	recent, err := p.items.CountAlertsSince(now.Add(-time.Hour))
	if err != nil {
		return fmt.Errorf("failed to count recent alerts: %w", err)
	}
	allowed := p.cfg.AlertHourlyMax - recent
	if allowed < 0 {
		allowed = 0
	}

	direct := alerts
	var batched []classify.ScoredItem
	if len(direct) > allowed {
		direct = alerts[:allowed]
		batched = alerts[allowed:]
	}

	delivered := 0
	for _, item := range direct {
		summary := p.summarizeItem(ctx, item)
		block := deliver.BuildBlock(summary.Text, item.URL, item.Labels)
		message, _ := deliver.PackBlocks(alertHeader, []string{block}, p.cfg.MessageLimit)

		if err := p.send(ctx, p.alertWebhook(), message); err != nil {
			slog.Error("Failed to deliver alert", "url", item.URL, "error", err)
			continue
		}
		if !p.cfg.DryRun {
			if err := p.items.MarkAlerted(item.Fingerprint, now); err != nil {
				slog.Error("Failed to mark item alerted", "url", item.URL, "error", err)
			}
		}
		delivered++
	}

	if len(batched) > 0 {
		delivered += p.deliverBatched(ctx, batched, now)
	}

	slog.Info("Alert pass completed", "fresh", len(fresh), "alerts", len(alerts), "delivered", delivered)
	return nil
}

// deliverBatched packs overflow alerts into one combined message and
// stamps only the items that actually fit.
func (p *Pipeline) deliverBatched(ctx context.Context, batched []classify.ScoredItem, now time.Time) int {
	blocks := make([]string, 0, len(batched))
	for _, item := range batched {
		summary := p.summarizeItem(ctx, item)
		blocks = append(blocks, deliver.BuildBlock(summary.Text, item.URL, item.Labels))
	}

	message, used := deliver.PackBlocks(alertHeader, blocks, p.cfg.MessageLimit)
	if used == 0 {
		return 0
	}

	if err := p.send(ctx, p.alertWebhook(), message); err != nil {
		slog.Error("Failed to deliver batched alerts", "count", used, "error", err)
		return 0
	}
	if !p.cfg.DryRun {
		for _, item := range batched[:used] {
			if err := p.items.MarkAlerted(item.Fingerprint, now); err != nil {
				slog.Error("Failed to mark item alerted", "url", item.URL, "error", err)
			}
		}
	}
	return used
}

// summarizeItem runs the configured summarizer, charging the quota
// only when that summarizer actually spends upstream calls. A local
// rule-based summarizer is free; charging it would drain the budget
// without any metered work having happened. On a denied charge or a
// summarizer failure the free rule-based path is used instead.
func (p *Pipeline) summarizeItem(ctx context.Context, item classify.ScoredItem) summarize.Summary {
	allowed := true
	if summarize.Metered(p.summarizer) {
		allowed = p.budget.Charge(p.cfg.CostSummarize) == nil
	}
	if allowed {
		if summary, err := p.summarizer.Summarize(ctx, item); err == nil {
			return summary
		}
	}
	summary, _ := summarize.NewRuleBased().Summarize(ctx, item)
	return summary
}

func (p *Pipeline) send(ctx context.Context, webhookURL, message string) error {
	if p.cfg.DryRun {
		slog.Info("Dry run, skipping delivery", "message", message)
		return nil
	}
	return p.deliverer.Deliver(ctx, webhookURL, message)
}
