package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"comic_poster/internal/domain"
)

// Runner defines the interface for a single pipeline invocation.
type Runner interface {
	Run(ctx context.Context, ev domain.TriggerEvent) (*domain.RunReport, error)
}

// Trigger fires on a standard five-field cron expression evaluated in UTC.
type Trigger struct {
	Name string
	Spec string
}

var ErrNoTriggers = errors.New("no triggers configured")

type Scheduler struct {
	runner     Runner
	triggers   []Trigger
	runTimeout time.Duration
	now        func() time.Time
	logger     *slog.Logger
}

func NewScheduler(runner Runner, triggers []Trigger, runTimeout time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		runner:     runner,
		triggers:   triggers,
		runTimeout: runTimeout,
		now:        time.Now,
		logger:     logger,
	}
}

// Next returns the earliest trigger firing strictly after t.
func (s *Scheduler) Next(t time.Time) (domain.TriggerEvent, error) {
	var next domain.TriggerEvent
	for _, tr := range s.triggers {
		sched, err := cron.ParseStandard(tr.Spec)
		if err != nil {
			return domain.TriggerEvent{}, fmt.Errorf("parse trigger %q: %w", tr.Name, err)
		}
		at := sched.Next(t.UTC())
		if next.ScheduledAt.IsZero() || at.Before(next.ScheduledAt) {
			next = domain.TriggerEvent{ScheduledAt: at, Schedule: tr.Name}
		}
	}
	return next, nil
}

// Start registers every trigger on a UTC cron and blocks until ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	if len(s.triggers) == 0 {
		return ErrNoTriggers
	}

	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cronLogger{s.logger}),
		cron.WithChain(cron.Recover(cronLogger{s.logger}), cron.SkipIfStillRunning(cronLogger{s.logger})),
	)
	for _, tr := range s.triggers {
		name := tr.Name
		if _, err := c.AddFunc(tr.Spec, func() {
			// Standard cron specs have minute resolution.
			s.Fire(ctx, domain.TriggerEvent{
				ScheduledAt: s.now().UTC().Truncate(time.Minute),
				Schedule:    name,
			})
		}); err != nil {
			return fmt.Errorf("add trigger %q: %w", name, err)
		}
	}

	if next, err := s.Next(s.now()); err == nil {
		s.logger.Info("scheduler started",
			"triggers", len(s.triggers),
			"next_schedule", next.Schedule,
			"next_at", next.ScheduledAt,
		)
	}

	c.Start()
	<-ctx.Done()

	<-c.Stop().Done()
	s.logger.Info("scheduler stopped")
	return ctx.Err()
}

// Fire runs a single invocation with the configured timeout. Failures are
// logged; the next trigger is the only retry.
func (s *Scheduler) Fire(ctx context.Context, ev domain.TriggerEvent) *domain.RunReport {
	runCtx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()

	report, err := s.runner.Run(runCtx, ev)
	if err != nil {
		s.logger.Error("run failed", "schedule", ev.Schedule, "scheduled_at", ev.ScheduledAt, "error", err)
	}
	return report
}

// cronLogger routes cron's own diagnostics to slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
