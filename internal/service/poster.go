package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"comic_poster/internal/domain"
	"comic_poster/internal/source/gocomics"
)

// PosterService runs the daily pipeline for one series.
type PosterService struct {
	gate     Gate
	source   Source
	notifier Notifier
	reporter Reporter
	series   domain.SeriesConfig
	logger   *slog.Logger
}

func NewPosterService(
	gate Gate,
	source Source,
	notifier Notifier,
	reporter Reporter,
	series domain.SeriesConfig,
	logger *slog.Logger,
) *PosterService {
	return &PosterService{
		gate:     gate,
		source:   source,
		notifier: notifier,
		reporter: reporter,
		series:   series,
		logger:   logger.With("source", source.ID(), "slug", series.Slug),
	}
}

// Run executes one invocation. Runs stopped by the gate return a skipped report
// and no error. Delivery failures are logged and do not fail the run.
func (s *PosterService) Run(ctx context.Context, ev domain.TriggerEvent) (*domain.RunReport, error) {
	startTime := time.Now()
	report := domain.NewRunReport(s.series.Slug, ev)
	logger := s.logger.With("run_id", report.ID.String(), "schedule", ev.Schedule)

	err := s.run(ctx, ev, report, logger)
	if err != nil {
		report.Status = domain.RunFailed
		report.Error = err.Error()
	}
	report.Duration = time.Since(startTime)
	report.FinishedAt = time.Now().UTC()

	s.publishReport(ctx, report, logger)

	return report, err
}

func (s *PosterService) run(ctx context.Context, ev domain.TriggerEvent, report *domain.RunReport, logger *slog.Logger) error {
	if !s.gate.Proceed(ev) {
		logger.Debug("trigger not authoritative today, skipping", "scheduled_at", ev.ScheduledAt)
		report.Status = domain.RunSkipped
		return nil
	}

	date := gocomics.FormatDate(ev.ScheduledAt)
	report.Date = date
	logger.Info("checking for today's comic", "source_name", s.source.Name(), "date", date)

	result, err := s.source.FetchMetadata(ctx, s.series.Slug, date)
	if err != nil {
		return fmt.Errorf("fetch metadata: %w", err)
	}

	logger.Info("fetched metadata blocks", "count", len(result.Blocks))

	sel, err := s.selectComic(ctx, result.Blocks, logger)
	if err != nil {
		report.Attempts = len(result.Blocks)
		return fmt.Errorf("select comic: %w", err)
	}

	report.Attempts = sel.Attempts
	report.ComicName = sel.Metadata.Name
	report.ContentURL = sel.Metadata.ContentURL
	report.Status = domain.RunPosted

	payload := composePayload(sel, s.source.PageURL(s.series.Slug, date), date)
	if err := s.notifier.Notify(ctx, s.series, payload); err != nil {
		logger.Warn("webhook delivery failed", "error", err)
		return nil
	}
	report.Delivered = true

	logger.Info("comic posted",
		"name", sel.Metadata.Name,
		"content_url", sel.Metadata.ContentURL,
		"filename", payload.Filename,
		"attempts", sel.Attempts,
	)
	return nil
}

func (s *PosterService) publishReport(ctx context.Context, report *domain.RunReport, logger *slog.Logger) {
	if s.reporter == nil {
		return
	}
	if err := s.reporter.Report(ctx, report); err != nil {
		logger.Warn("failed to publish run report", "error", err)
	}
}
