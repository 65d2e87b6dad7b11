package gocomics

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"comic_poster/internal/domain"
	"comic_poster/internal/scraper"
)

const (
	SourceID   = "gocomics"
	SourceName = "GoComics"

	DefaultSiteURL  = "https://www.gocomics.com"
	DefaultSelector = `script[type="application/ld+json"]`
	DefaultMaxImage = 20 << 20
)

// Config holds GoComics source configuration.
type Config struct {
	SiteURL       string
	Selector      string
	Timeout       time.Duration
	MaxImageBytes int64
}

// Source implements service.Source for GoComics strip pages.
type Source struct {
	httpClient    *http.Client
	scraper       scraper.Client
	siteURL       string
	selector      string
	maxImageBytes int64
	logger        *slog.Logger
}

// New creates a new GoComics source that scrapes pages through sc.
func New(cfg Config, sc scraper.Client, logger *slog.Logger) *Source {
	if cfg.MaxImageBytes <= 0 {
		cfg.MaxImageBytes = DefaultMaxImage
	}
	return &Source{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		scraper:       sc,
		siteURL:       strings.TrimRight(cfg.SiteURL, "/"),
		selector:      cfg.Selector,
		maxImageBytes: cfg.MaxImageBytes,
		logger:        logger.With("source", SourceID),
	}
}

// ID returns the source identifier.
func (s *Source) ID() string {
	return SourceID
}

// Name returns human-readable name.
func (s *Source) Name() string {
	return SourceName
}

// PageURL is the address of the strip published for slug on date.
func (s *Source) PageURL(slug, date string) string {
	return fmt.Sprintf("%s/%s/%s", s.siteURL, slug, date)
}

// FetchMetadata scrapes every JSON-LD block from the strip page of the given date.
func (s *Source) FetchMetadata(ctx context.Context, slug, date string) (*domain.ScrapeResult, error) {
	target := s.PageURL(slug, date)

	blocks, err := s.scraper.Select(ctx, target, s.selector)
	if err != nil {
		return nil, fmt.Errorf("scrape %s: %w", target, err)
	}
	if len(blocks) == 0 {
		return nil, &domain.NoDataError{URL: target, Selector: s.selector}
	}

	s.logger.Debug("fetched metadata blocks", "url", target, "blocks", len(blocks))

	return &domain.ScrapeResult{
		URL:      target,
		Selector: s.selector,
		Blocks:   blocks,
	}, nil
}

// FetchImage downloads the content behind a metadata record's contentUrl.
func (s *Source) FetchImage(ctx context.Context, url string) (*domain.ImageAsset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "image/*")
	req.Header.Set("User-Agent", "ComicPoster/1.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > s.maxImageBytes {
		return nil, fmt.Errorf("image larger than %d bytes", s.maxImageBytes)
	}

	return &domain.ImageAsset{
		Bytes:       body,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}
