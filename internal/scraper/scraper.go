// Package scraper extracts the text of elements matching a CSS selector from a web page.
package scraper

import (
	"context"
	"io"
	"net/http"
	"strings"

	"comic_poster/internal/domain"
)

const (
	ModeProxy  = "proxy"
	ModeDirect = "direct"

	userAgent    = "ComicPoster/1.0"
	maxErrorBody = 1 << 10
)

// Client returns the raw text of every element matched by selector on target, in document order.
type Client interface {
	Select(ctx context.Context, target, selector string) ([]string, error)
}

func fetchError(resp *http.Response, url string) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &domain.FetchError{
		URL:        url,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}

func success(code int) bool {
	return code >= 200 && code < 300
}
