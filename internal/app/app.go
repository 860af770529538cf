package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"PressRadar/internal/config"
	"PressRadar/internal/domain"
	"PressRadar/internal/infrastructure/fetch"
	"PressRadar/internal/infrastructure/llm"
	"PressRadar/internal/infrastructure/parser"
	"PressRadar/internal/infrastructure/scheduler"
	"PressRadar/internal/infrastructure/storage"
	"PressRadar/internal/infrastructure/telegram"
	"PressRadar/internal/logging"
	"PressRadar/internal/ports"
	"PressRadar/internal/scanner"
	"PressRadar/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	pipeline *usecase.Pipeline
	logger   *slog.Logger
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	registry := scanner.NewRegistry()
	registry.Register(parser.NewPrezlyScanner(cfg.Discovery))

	extractor, err := parser.NewExtractor(cfg.Extract)
	if err != nil {
		return nil, fmt.Errorf("build extractor: %w", err)
	}

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.BotToken != "" && cfg.Notifications.Telegram.ChatID != "" {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Sites:          toDomainSites(cfg.Sites),
		Registry:       registry,
		Fetcher:        fetch.NewClient(cfg.Fetch, nil),
		Extractor:      extractor,
		Classifier:     llm.NewClassifier(cfg.Classifier, nil),
		Archive:        storage.NewJSONArchive(cfg.Archive, baseLogger.With("component", "archive")),
		Notifier:       notifier,
		CandidateDelay: cfg.Pipeline.CandidateDelay(),
		Logger:         baseLogger.With("component", "pipeline"),
	})

	return &Application{cfg: cfg, pipeline: pipeline, logger: baseLogger}, nil
}

// Run executes a single sweep, or keeps sweeping on the configured cron
// schedule when recurring mode is enabled.
func (a *Application) Run(ctx context.Context) error {
	if a.pipeline == nil {
		return nil
	}

	if !a.cfg.Scheduler.Enabled {
		now := time.Now().In(a.cfg.Scheduler.Location())
		return a.pipeline.Sweep(ctx, now)
	}

	driver := scheduler.NewCronScheduler(a.cfg.Scheduler.CronExpression, a.cfg.Scheduler.Location())
	recurring := usecase.NewScheduler(driver, a.pipeline, a.logger.With("component", "scheduler"))
	if err := recurring.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return recurring.Stop(stopCtx)
}

func toDomainSites(cfg []config.SiteConfig) []domain.Site {
	sites := make([]domain.Site, 0, len(cfg))
	for _, site := range cfg {
		sites = append(sites, domain.Site{
			Name:    site.Name,
			URL:     site.URL,
			BaseURL: site.BaseURL,
			Scanner: site.Scanner,
		})
	}
	return sites
}
