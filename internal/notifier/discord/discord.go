// Package discord delivers comic notifications to a Discord webhook as a
// multipart upload with the strip attached.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"comic_poster/internal/domain"
)

const DefaultBaseURL = "https://discord.com/api/v10"

type Config struct {
	BaseURL string
	Timeout time.Duration
}

type Notifier struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Notifier {
	return &Notifier{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		logger:  logger.With("notifier", "discord"),
	}
}

var markdownEscaper = strings.NewReplacer(`[`, `\[`, `]`, `\]`)

// Caption links the strip's display name back to the page it came from.
func Caption(name, pageURL string) string {
	return fmt.Sprintf("[%s](<%s>)", markdownEscaper.Replace(name), pageURL)
}

type attachment struct {
	ID       int    `json:"id"`
	Filename string `json:"filename"`
}

type message struct {
	Content     string       `json:"content"`
	Attachments []attachment `json:"attachments"`
}

// Notify posts the payload once. Non-2xx answers are returned as errors carrying
// the status and body.
func (n *Notifier) Notify(ctx context.Context, series domain.SeriesConfig, payload *domain.NotificationPayload) error {
	body, contentType, err := encode(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/webhooks/%s/%s?wait=true", n.baseURL, series.WebhookID, series.WebhookToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return fmt.Errorf("create request: %w", n.redact(err, series))
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("User-Agent", "ComicPoster/1.0")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", n.redact(err, series))
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook responded %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	n.logger.Debug("webhook delivered",
		"status", resp.StatusCode,
		"filename", payload.Filename,
		"bytes", len(payload.Attachment),
	)
	return nil
}

// redact replaces the webhook URL carried by transport errors, since it embeds the token.
func (n *Notifier) redact(err error, series domain.SeriesConfig) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = fmt.Sprintf("%s/webhooks/%s/***", n.baseURL, series.WebhookID)
	}
	return err
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func encode(payload *domain.NotificationPayload) (*bytes.Buffer, string, error) {
	meta, err := json.Marshal(message{
		Content:     payload.Caption,
		Attachments: []attachment{{ID: 0, Filename: payload.Filename}},
	})
	if err != nil {
		return nil, "", fmt.Errorf("marshal message: %w", err)
	}

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="payload_json"`)
	h.Set("Content-Type", "application/json")
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("create json part: %w", err)
	}
	if _, err := part.Write(meta); err != nil {
		return nil, "", fmt.Errorf("write json part: %w", err)
	}

	contentType := payload.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h = make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files[0]"; filename="%s"`, quoteEscaper.Replace(payload.Filename)))
	h.Set("Content-Type", contentType)
	part, err = w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := part.Write(payload.Attachment); err != nil {
		return nil, "", fmt.Errorf("write file part: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close writer: %w", err)
	}
	return buf, w.FormDataContentType(), nil
}
