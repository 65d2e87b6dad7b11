package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"comic_poster/internal/config"
	"comic_poster/internal/domain"
	"comic_poster/internal/gate"
	"comic_poster/internal/notifier/discord"
	"comic_poster/internal/publisher"
	"comic_poster/internal/scheduler"
	"comic_poster/internal/scraper"
	"comic_poster/internal/service"
	"comic_poster/internal/source/gocomics"
)

var errRunFailed = errors.New("run failed")

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	once := flag.Bool("once", false, "run the pipeline immediately and exit")
	schedule := flag.String("schedule", "manual", "trigger identifier used with -once")
	flag.Parse()

	if err := run(*configPath, *once, *schedule); err != nil {
		os.Exit(1)
	}
}

func run(configPath string, once bool, schedule string) error {
	// Setup logger
	logger := setupLogger("info")

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}

	logger = setupLogger(cfg.LogLevel)

	g, err := gate.Load(cfg.Schedule.Timezone)
	if err != nil {
		logger.Error("failed to load timezone", "error", err)
		return err
	}

	// Optional run report publisher
	var reporter service.Reporter
	if cfg.RabbitMQ.Enabled() {
		rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", "error", err)
			return err
		}
		defer rabbitMQ.Close()
		reporter = rabbitMQ
	}

	source := gocomics.New(gocomics.Config{
		SiteURL:       cfg.Site.BaseURL,
		Selector:      cfg.Scraper.Selector,
		Timeout:       cfg.Site.Timeout,
		MaxImageBytes: cfg.Site.MaxImageBytes,
	}, newScraper(cfg.Scraper, logger), logger)

	notifier := discord.New(discord.Config{
		BaseURL: cfg.Webhook.BaseURL,
		Timeout: cfg.Webhook.Timeout,
	}, logger)

	posterService := service.NewPosterService(
		g,
		source,
		notifier,
		reporter,
		domain.SeriesConfig{
			Slug:         cfg.Series.Slug,
			WebhookID:    cfg.Webhook.ID,
			WebhookToken: cfg.Webhook.Token,
		},
		logger,
	)

	sched := scheduler.NewScheduler(posterService, triggers(cfg.Schedule.Triggers), cfg.Schedule.RunTimeout, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	if once {
		report := sched.Fire(ctx, domain.TriggerEvent{ScheduledAt: time.Now().UTC(), Schedule: schedule})
		if report == nil || report.Status == domain.RunFailed {
			return errRunFailed
		}
		return nil
	}

	logger.Info("starting comic poster",
		"source", source.Name(),
		"slug", cfg.Series.Slug,
		"scraper", cfg.Scraper.Mode,
		"timezone", cfg.Schedule.Timezone,
	)

	if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("scheduler error", "error", err)
		return err
	}
	return nil
}

func newScraper(cfg config.ScraperConfig, logger *slog.Logger) scraper.Client {
	if cfg.Mode == scraper.ModeDirect {
		return scraper.NewDirect(cfg.Timeout, logger)
	}
	return scraper.NewProxy(scraper.ProxyConfig{
		BaseURL: cfg.ProxyURL,
		Timeout: cfg.Timeout,
	}, logger)
}

func triggers(cfg []config.Trigger) []scheduler.Trigger {
	out := make([]scheduler.Trigger, len(cfg))
	for i, t := range cfg {
		out[i] = scheduler.Trigger{Name: t.Name, Spec: t.Cron}
	}
	return out
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
