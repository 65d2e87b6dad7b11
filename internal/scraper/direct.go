package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Direct fetches the page itself and runs the selector locally.
type Direct struct {
	httpClient *http.Client
	logger     *slog.Logger
}

func NewDirect(timeout time.Duration, logger *slog.Logger) *Direct {
	return &Direct{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.With("scraper", ModeDirect),
	}
}

func (d *Direct) Select(ctx context.Context, target, selector string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/html")
	req.Header.Set("User-Agent", userAgent)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if !success(resp.StatusCode) {
		return nil, fetchError(resp, target)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var blocks []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		blocks = append(blocks, s.Text())
	})

	d.logger.Debug("scraped page", "target", target, "matches", len(blocks))
	return blocks, nil
}
