package pipeline

import (
	"context"
	"time"

	"fxpulse/app/cfg"
	"fxpulse/app/classify"
	"fxpulse/app/feed"
	"fxpulse/app/quota"
	"fxpulse/app/store"
	"fxpulse/app/summarize"
)

// SeenStore is the fingerprint dedup store.
type SeenStore interface {
	HasSeen(fingerprint string) (bool, error)
	MarkSeen(fingerprint, url string, now time.Time) error
	PurgeExpired(cutoff time.Time) (int64, error)
}

// ItemStore is the scored-item archive feeding alerts and digests.
type ItemStore interface {
	Upsert(item store.Item) error
	SelectWindow(start, end time.Time) ([]store.Item, error)
	MarkAlerted(fingerprint string, now time.Time) error
	MarkDigested(fingerprints []string, day string) error
	CountAlertsSince(since time.Time) (int, error)
	CountPublished(start, end time.Time) (int, error)
}

// Budget meters charged work against the daily quota.
type Budget interface {
	CanSpend(units int64) bool
	Charge(units int64) error
	Status() (quota.Status, error)
}

// Fetcher retrieves raw bytes from a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Deliverer posts a message to a webhook endpoint.
type Deliverer interface {
	Deliver(ctx context.Context, webhookURL, message string) error
}

// Pipeline runs one-pass alert and digest flows over the configured
// sources. Passes are single-threaded and run to completion; the
// process-level file lock keeps concurrent invocations out.
type Pipeline struct {
	cfg        cfg.Cfg
	location   *time.Location
	sources    []feed.Source
	fetcher    Fetcher
	parser     *feed.Parser
	extractor  *feed.Extractor
	classifier *classify.Classifier
	summarizer summarize.Summarizer
	seen       SeenStore
	items      ItemStore
	budget     Budget
	deliverer  Deliverer

	nowFn func() time.Time
}

func New(
	c cfg.Cfg,
	location *time.Location,
	sources []feed.Source,
	fetcher Fetcher,
	classifier *classify.Classifier,
	summarizer summarize.Summarizer,
	seen SeenStore,
	items ItemStore,
	budget Budget,
	deliverer Deliverer,
) *Pipeline {
	return &Pipeline{
		cfg:        c,
		location:   location,
		sources:    sources,
		fetcher:    fetcher,
		parser:     feed.NewParser(),
		extractor:  feed.NewExtractor(),
		classifier: classifier,
		summarizer: summarizer,
		seen:       seen,
		items:      items,
		budget:     budget,
		deliverer:  deliverer,
		nowFn:      time.Now,
	}
}

func (p *Pipeline) alertWebhook() string {
	if p.cfg.WebhookAlertsURL != "" {
		return p.cfg.WebhookAlertsURL
	}
	return p.cfg.WebhookURL
}

func (p *Pipeline) digestWebhook() string {
	if p.cfg.WebhookDigestURL != "" {
		return p.cfg.WebhookDigestURL
	}
	return p.cfg.WebhookURL
}
