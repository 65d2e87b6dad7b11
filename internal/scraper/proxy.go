package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultProxyURL = "https://web.scraper.workers.dev"

type ProxyConfig struct {
	BaseURL string
	Timeout time.Duration
}

// Proxy delegates page retrieval and extraction to a web.scraper.workers.dev style service.
type Proxy struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

func NewProxy(cfg ProxyConfig, logger *slog.Logger) *Proxy {
	return &Proxy{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		logger:  logger.With("scraper", ModeProxy),
	}
}

// proxyResponse is either {"result": {"<selector>": ["..."]}} in text mode or
// {"result": "..."} in attr mode.
type proxyResponse struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

func (p *Proxy) Select(ctx context.Context, target, selector string) ([]string, error) {
	q := url.Values{}
	q.Set("url", target)
	q.Set("selector", selector)
	q.Set("scrape", "text")
	reqURL := p.baseURL + "/?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if !success(resp.StatusCode) {
		return nil, fetchError(resp, reqURL)
	}

	var body proxyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if body.Error != "" {
		return nil, fmt.Errorf("proxy error: %s", body.Error)
	}

	blocks, err := decodeResult(body.Result, selector)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("scraped page", "target", target, "matches", len(blocks))
	return blocks, nil
}

func decodeResult(raw json.RawMessage, selector string) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var bySelector map[string][]string
	if err := json.Unmarshal(raw, &bySelector); err == nil {
		return bySelector[selector], nil
	}

	var single string
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	if single == "" {
		return nil, nil
	}
	return []string{single}, nil
}
