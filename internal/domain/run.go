package domain

import (
	"time"

	"github.com/google/uuid"
)

type RunStatus string

const (
	RunSkipped RunStatus = "skipped"
	RunPosted  RunStatus = "posted"
	RunFailed  RunStatus = "failed"
)

// RunReport summarizes a single pipeline invocation.
type RunReport struct {
	ID          uuid.UUID     `json:"id"`
	Slug        string        `json:"slug"`
	Schedule    string        `json:"schedule"`
	ScheduledAt time.Time     `json:"scheduled_at"`
	Date        string        `json:"date,omitempty"`
	Status      RunStatus     `json:"status"`
	ComicName   string        `json:"comic_name,omitempty"`
	ContentURL  string        `json:"content_url,omitempty"`
	Attempts    int           `json:"attempts"`
	Delivered   bool          `json:"delivered"`
	Error       string        `json:"error,omitempty"`
	Duration    time.Duration `json:"duration"`
	FinishedAt  time.Time     `json:"finished_at"`
}

func NewRunReport(slug string, ev TriggerEvent) *RunReport {
	return &RunReport{
		ID:          uuid.New(),
		Slug:        slug,
		Schedule:    ev.Schedule,
		ScheduledAt: ev.ScheduledAt,
	}
}
