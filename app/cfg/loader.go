package cfg

import (
	"cmp"
	"fmt"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Run mode
	Mode string `long:"mode" env:"MODE" default:"alert" description:"Run mode: alert, digest:morning, digest:day, digest:weekly, daemon"`

	// Input configuration
	SourcesFile string `long:"sources" env:"SOURCES_FILE" default:"./sources.txt" description:"File with feed URLs, one per line, # comments ignored"`
	LexiconFile string `long:"lexicon" env:"LEXICON_FILE" description:"YAML file with classifier keyword sets and weights (optional, built-in defaults used when empty)"`
	DBPath      string `long:"db" env:"DB_PATH" default:"./fxpulse.db" description:"Path to the sqlite database file"`
	LockPath    string `long:"lock" env:"LOCK_PATH" description:"Advisory lock file path preventing overlapping passes (optional)"`

	// Delivery configuration
	WebhookURL       string  `long:"webhook-url" env:"WEBHOOK_URL" description:"Default webhook URL for outbound notifications"`
	WebhookAlertsURL string  `long:"webhook-alerts-url" env:"WEBHOOK_ALERTS_URL" description:"Webhook URL for the alert path (falls back to --webhook-url)"`
	WebhookDigestURL string  `long:"webhook-digest-url" env:"WEBHOOK_DIGEST_URL" description:"Webhook URL for the digest path (falls back to --webhook-url)"`
	MessageLimit     int     `long:"message-limit" env:"MESSAGE_LIMIT" default:"1900" description:"Maximum characters per outbound message"`
	MaxRetries       int     `long:"max-retries" env:"MAX_RETRIES" default:"3" description:"Maximum delivery retries for transient failures"`
	RetryBaseMs      int     `long:"retry-base-ms" env:"RETRY_BASE_MS" default:"500" description:"Base delay in milliseconds for exponential delivery backoff"`
	DeliveryRate     float64 `long:"delivery-rate" env:"DELIVERY_RATE" default:"1" description:"Maximum outbound webhook posts per second"`

	// Polling configuration
	MaxItemsPerSource int  `long:"max-items-per-source" env:"MAX_ITEMS_PER_SOURCE" default:"20" description:"Per-source cutoff for fetched entries"`
	FetchTimeout      int  `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"15" description:"HTTP request timeout in seconds"`
	FetchBodies       bool `long:"fetch-bodies" env:"FETCH_BODIES" description:"Fetch article pages and extract main text for summarization"`
	SeenTTLHours      int  `long:"seen-ttl-hours" env:"SEEN_TTL_HOURS" default:"24" description:"Retention of seen-item fingerprints in hours"`

	// Scoring and batching
	AlertThreshold float64 `long:"alert-threshold" env:"ALERT_THRESHOLD" default:"3" description:"Minimum impact score for immediate alerts"`
	AlertHourlyMax int     `long:"alert-hourly-max" env:"ALERT_HOURLY_MAX" default:"3" description:"Maximum individual alerts per hour, overflow is batched"`
	DigestMaxItems int     `long:"digest-max-items" env:"DIGEST_MAX_ITEMS" default:"20" description:"Maximum items per digest batch"`

	// Quota configuration
	QuotaBudget       int64 `long:"quota-budget" env:"QUOTA_BUDGET" default:"10000" description:"Daily quota budget in abstract units"`
	QuotaLowThreshold int64 `long:"quota-low-threshold" env:"QUOTA_LOW_THRESHOLD" default:"1000" description:"Remaining units below which discovery calls are skipped"`
	CostFeedFetch     int64 `long:"cost-feed-fetch" env:"COST_FEED_FETCH" default:"1" description:"Quota units charged per feed fetch"`
	CostArticleFetch  int64 `long:"cost-article-fetch" env:"COST_ARTICLE_FETCH" default:"2" description:"Quota units charged per article body fetch"`
	CostSummarize     int64 `long:"cost-summarize" env:"COST_SUMMARIZE" default:"5" description:"Quota units charged per LLM summarization call"`

	// Summarizer configuration
	OpenAIKey   string `long:"openai-key" env:"OPENAI_API_KEY" description:"OpenAI API key; rule-based summarizer is used when empty"`
	OpenAIModel string `long:"openai-model" env:"OPENAI_MODEL" default:"gpt-4o-mini" description:"Chat completion model for the LLM summarizer"`

	// Daemon mode
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP status server port (daemon mode)"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"2" description:"Number of background workers (daemon mode)"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"300" description:"Seconds between scheduled alert passes (daemon mode)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"fxpulse/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"Asia/Tokyo" description:"Reference timezone for digest windows and quota days"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
	DryRun    bool   `long:"dry-run" env:"DRY_RUN" description:"Log outbound messages instead of posting them"`
}

// Load parses configuration from command-line flags and environment
// variables. Returns (nil, nil) when help output was requested.
func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		Mode:              raw.Mode,
		SourcesFile:       raw.SourcesFile,
		LexiconFile:       raw.LexiconFile,
		DBPath:            raw.DBPath,
		LockPath:          raw.LockPath,
		WebhookURL:        raw.WebhookURL,
		WebhookAlertsURL:  cmp.Or(raw.WebhookAlertsURL, raw.WebhookURL),
		WebhookDigestURL:  cmp.Or(raw.WebhookDigestURL, raw.WebhookURL),
		MessageLimit:      raw.MessageLimit,
		MaxRetries:        raw.MaxRetries,
		RetryBaseMs:       raw.RetryBaseMs,
		DeliveryRate:      raw.DeliveryRate,
		MaxItemsPerSource: raw.MaxItemsPerSource,
		FetchTimeout:      raw.FetchTimeout,
		FetchBodies:       raw.FetchBodies,
		SeenTTLHours:      raw.SeenTTLHours,
		AlertThreshold:    raw.AlertThreshold,
		AlertHourlyMax:    raw.AlertHourlyMax,
		DigestMaxItems:    raw.DigestMaxItems,
		QuotaBudget:       raw.QuotaBudget,
		QuotaLowThreshold: raw.QuotaLowThreshold,
		CostFeedFetch:     raw.CostFeedFetch,
		CostArticleFetch:  raw.CostArticleFetch,
		CostSummarize:     raw.CostSummarize,
		OpenAIKey:         raw.OpenAIKey,
		OpenAIModel:       raw.OpenAIModel,
		Port:              raw.Port,
		WorkerCount:       raw.WorkerCount,
		SchedulerInterval: raw.SchedulerInterval,
		UserAgent:         raw.UserAgent,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		DryRun:            raw.DryRun,
		Version:           GetVersion(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks settings that have no meaningful fallback.
func (c *Cfg) Validate() error {
	if c.Mode != "alert" && c.Mode != "daemon" && !strings.HasPrefix(c.Mode, "digest:") {
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	if c.MessageLimit < 100 {
		return fmt.Errorf("message limit %d is too small to carry any content", c.MessageLimit)
	}
	if c.QuotaBudget <= 0 {
		return fmt.Errorf("quota budget must be positive, got %d", c.QuotaBudget)
	}
	return nil
}

// Location resolves the reference timezone. Window boundaries and quota
// ledger days are computed in this location.
func (c *Cfg) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
