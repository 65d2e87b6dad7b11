package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comic_poster/internal/domain"
)

type runnerFunc func(ctx context.Context, ev domain.TriggerEvent) (*domain.RunReport, error)

func (f runnerFunc) Run(ctx context.Context, ev domain.TriggerEvent) (*domain.RunReport, error) {
	return f(ctx, ev)
}

var dailyTriggers = []Trigger{
	{Name: "daylight-time", Spec: "0 14 * * *"},
	{Name: "standard-time", Spec: "0 15 * * *"},
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestNext(t *testing.T) {
	s := NewScheduler(nil, dailyTriggers, time.Minute, testLogger())

	tests := []struct {
		name     string
		now      time.Time
		wantAt   time.Time
		wantName string
	}{
		{
			"morning",
			time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC),
			time.Date(2024, time.March, 10, 14, 0, 0, 0, time.UTC),
			"daylight-time",
		},
		{
			"exactly at first trigger",
			time.Date(2024, time.March, 10, 14, 0, 0, 0, time.UTC),
			time.Date(2024, time.March, 10, 15, 0, 0, 0, time.UTC),
			"standard-time",
		},
		{
			"evening rolls to tomorrow",
			time.Date(2024, time.December, 31, 20, 0, 0, 0, time.UTC),
			time.Date(2025, time.January, 1, 14, 0, 0, 0, time.UTC),
			"daylight-time",
		},
		{
			"non utc input",
			time.Date(2024, time.March, 10, 9, 30, 0, 0, time.FixedZone("EST", -5*3600)),
			time.Date(2024, time.March, 10, 15, 0, 0, 0, time.UTC),
			"standard-time",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := s.Next(tt.now)
			require.NoError(t, err)
			assert.True(t, tt.wantAt.Equal(ev.ScheduledAt), "got %s", ev.ScheduledAt)
			assert.Equal(t, tt.wantName, ev.Schedule)
		})
	}
}

func TestNext_InvalidSpec(t *testing.T) {
	s := NewScheduler(nil, []Trigger{{Name: "broken", Spec: "not a cron"}}, time.Minute, testLogger())

	_, err := s.Next(time.Now())
	assert.Error(t, err)
}

func TestStart_FiresTrigger(t *testing.T) {
	fired := make(chan domain.TriggerEvent, 4)
	runner := runnerFunc(func(ctx context.Context, ev domain.TriggerEvent) (*domain.RunReport, error) {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		fired <- ev
		return &domain.RunReport{Status: domain.RunPosted}, nil
	})

	s := NewScheduler(runner, []Trigger{{Name: "every-second", Spec: "@every 1s"}}, time.Minute, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	select {
	case ev := <-fired:
		assert.Equal(t, "every-second", ev.Schedule)
		assert.Zero(t, ev.ScheduledAt.Second())
		assert.Equal(t, time.UTC, ev.ScheduledAt.Location())
	case <-time.After(3 * time.Second):
		t.Fatal("trigger did not fire")
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(3 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestStart_InvalidSpec(t *testing.T) {
	s := NewScheduler(nil, []Trigger{{Name: "broken", Spec: "61 * * * *"}}, time.Minute, testLogger())

	err := s.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestStart_NoTriggers(t *testing.T) {
	s := NewScheduler(nil, nil, time.Minute, testLogger())

	assert.ErrorIs(t, s.Start(context.Background()), ErrNoTriggers)
}

func TestFire_LogsFailure(t *testing.T) {
	runner := runnerFunc(func(ctx context.Context, ev domain.TriggerEvent) (*domain.RunReport, error) {
		return &domain.RunReport{Status: domain.RunFailed}, errors.New("proxy down")
	})
	s := NewScheduler(runner, dailyTriggers, time.Minute, testLogger())

	report := s.Fire(context.Background(), domain.TriggerEvent{Schedule: "manual"})

	require.NotNil(t, report)
	assert.Equal(t, domain.RunFailed, report.Status)
}
