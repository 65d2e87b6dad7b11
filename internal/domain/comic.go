package domain

import (
	"strings"
	"time"
)

// Schema.org types accepted for a single comic strip.
const (
	TypeImageObject = "ImageObject"
	TypeComicSeries = "ComicSeries"
)

// TriggerEvent is supplied once per invocation by the scheduler.
type TriggerEvent struct {
	ScheduledAt time.Time // intended fire time
	Schedule    string    // which of the daily triggers fired
}

type SeriesConfig struct {
	Slug         string
	WebhookID    string
	WebhookToken string
}

// ScrapeResult holds the raw text of every element matched by Selector, in document order.
type ScrapeResult struct {
	URL      string
	Selector string
	Blocks   []string
}

type ComicMetadata struct {
	Types                []string
	Name                 string
	ContentURL           string
	URL                  string
	DatePublished        string
	RepresentativeOfPage bool
}

// HasType reports whether the record is tagged with the given schema.org type.
func (m ComicMetadata) HasType(t string) bool {
	for _, typ := range m.Types {
		if typ == t {
			return true
		}
	}
	return false
}

// Eligible reports whether the record can stand for the strip of the day.
func (m ComicMetadata) Eligible() bool {
	if !m.HasType(TypeImageObject) && !m.HasType(TypeComicSeries) {
		return false
	}
	return m.RepresentativeOfPage && m.ContentURL != ""
}

type ImageAsset struct {
	Bytes       []byte
	ContentType string
}

func (a ImageAsset) Valid() bool {
	return strings.HasPrefix(strings.ToLower(a.ContentType), "image/")
}

type NotificationPayload struct {
	Caption     string
	Filename    string
	Attachment  []byte
	ContentType string
}
