package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"comic_poster/internal/domain"
)

type Gate interface {
	Proceed(ev domain.TriggerEvent) bool
}

type Source interface {
	ID() string
	Name() string
	PageURL(slug, date string) string
	FetchMetadata(ctx context.Context, slug, date string) (*domain.ScrapeResult, error)
	FetchImage(ctx context.Context, url string) (*domain.ImageAsset, error)
}

type Notifier interface {
	Notify(ctx context.Context, series domain.SeriesConfig, payload *domain.NotificationPayload) error
}

type Reporter interface {
	Report(ctx context.Context, report *domain.RunReport) error
	Close() error
}
