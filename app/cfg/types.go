package cfg

type Cfg struct {
	// Run mode: alert, digest:morning, digest:day, digest:weekly, daemon
	Mode string

	// Input configuration
	SourcesFile string
	LexiconFile string
	DBPath      string
	LockPath    string

	// Delivery configuration
	WebhookURL       string
	WebhookAlertsURL string
	WebhookDigestURL string
	MessageLimit     int
	MaxRetries       int
	RetryBaseMs      int
	DeliveryRate     float64

	// Polling configuration
	MaxItemsPerSource int
	FetchTimeout      int
	FetchBodies       bool
	SeenTTLHours      int

	// Scoring and batching
	AlertThreshold float64
	AlertHourlyMax int
	DigestMaxItems int

	// Quota configuration
	QuotaBudget       int64
	QuotaLowThreshold int64
	CostFeedFetch     int64
	CostArticleFetch  int64
	CostSummarize     int64

	// Summarizer configuration
	OpenAIKey   string
	OpenAIModel string

	// Daemon mode
	Port              string
	WorkerCount       int
	SchedulerInterval int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	DryRun    bool
	Version   string
}
