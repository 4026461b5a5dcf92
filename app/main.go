package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"fxpulse/app/api"
	"fxpulse/app/cfg"
	"fxpulse/app/classify"
	"fxpulse/app/deliver"
	"fxpulse/app/digest"
	"fxpulse/app/feed"
	"fxpulse/app/lock"
	"fxpulse/app/pipeline"
	"fxpulse/app/quota"
	"fxpulse/app/store"
	"fxpulse/app/summarize"
	"fxpulse/app/tasks"
)

func main() {
	c, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	if c == nil {
		// Help was shown, exit gracefully
		return
	}

	level := slog.LevelInfo
	if c.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(c); err != nil {
		slog.Error("Run failed", "error", err)
		os.Exit(1)
	}
}

func run(c *cfg.Cfg) error {
	location, err := c.Location()
	if err != nil {
		return err
	}

	if c.WebhookURL == "" && c.WebhookAlertsURL == "" && c.WebhookDigestURL == "" && !c.DryRun {
		return fmt.Errorf("no webhook URL configured (use --webhook-url or --dry-run)")
	}

	sources, err := feed.LoadSources(c.SourcesFile)
	if err != nil {
		return fmt.Errorf("failed to load sources: %w", err)
	}
	slog.Info("Sources loaded", "count", len(sources), "file", c.SourcesFile)

	lexicon := classify.DefaultLexicon()
	if c.LexiconFile != "" {
		lexicon, err = classify.LoadLexicon(c.LexiconFile)
		if err != nil {
			return err
		}
	}

	if c.LockPath != "" {
		lease, err := lock.Acquire(c.LockPath)
		if err != nil {
			return err
		}
		if lease == nil {
			slog.Info("Another run holds the lock, exiting", "lock", c.LockPath)
			return nil
		}
		defer lease.Release()
	}

	db, err := store.Open(c.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	version, dirty, err := store.RunMigrations(db)
	if err != nil {
		return err
	}
	slog.Debug("Migrations applied", "version", version, "dirty", dirty)

	seenRepo := store.NewSeenRepository(db)
	itemRepo := store.NewItemRepository(db)
	guard := quota.NewGuard(store.NewQuotaRepository(db), c.QuotaBudget, c.QuotaLowThreshold, location)

	fetchTimeout := time.Duration(c.FetchTimeout) * time.Second
	fetcher := feed.NewFetcher(&http.Client{}, c.UserAgent, fetchTimeout)

	var summarizer summarize.Summarizer = summarize.NewRuleBased()
	if c.OpenAIKey != "" {
		summarizer = summarize.NewChain(
			summarize.NewOpenAIClient(c.OpenAIKey, c.OpenAIModel),
			summarize.NewRuleBased(),
		)
	}

	deliverer := deliver.NewClient(
		c.DeliveryRate,
		c.MaxRetries,
		time.Duration(c.RetryBaseMs)*time.Millisecond,
		c.MessageLimit,
	)

	p := pipeline.New(
		*c,
		location,
		sources,
		fetcher,
		classify.NewClassifier(lexicon),
		summarizer,
		seenRepo,
		itemRepo,
		guard,
		deliverer,
	)

	ctx := context.Background()

	switch {
	case c.Mode == "alert":
		return p.RunAlertPass(ctx)

	case strings.HasPrefix(c.Mode, "digest:"):
		kind, err := digest.ParseKind(strings.TrimPrefix(c.Mode, "digest:"))
		if err != nil {
			return err
		}
		return p.RunDigestPass(ctx, kind)

	case c.Mode == "daemon":
		return runDaemon(c, location, p, itemRepo, guard, len(sources))

	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
}

// runDaemon keeps the process alive: the scheduler drives recurring
// passes while the HTTP server answers health and stats probes.
func runDaemon(c *cfg.Cfg, location *time.Location, p *pipeline.Pipeline, itemRepo *store.ItemRepository, guard *quota.Guard, sourceCount int) error {
	scheduler := tasks.NewScheduler(p, location, time.Duration(c.SchedulerInterval)*time.Second, c.WorkerCount)
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(itemRepo, guard, sourceCount, c.Version)
	httpServer := &http.Server{
		Addr:         ":" + c.Port,
		Handler:      api.NewServer(handler),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", c.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	slog.Info("Daemon started", "interval", c.SchedulerInterval, "workers", c.WorkerCount)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error, shutting down", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
	return nil
}
