// Package gate decides which of the two daily triggers is authoritative for a given day.
package gate

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"comic_poster/internal/domain"
)

// Trigger identifiers. The standard-time trigger fires at 15:00 UTC and the
// daylight-time trigger at 14:00 UTC, both meaning 10:00 in New York.
const (
	StandardTime = "standard-time"
	DaylightTime = "daylight-time"

	DefaultLocation = "America/New_York"
)

var aliases = map[string]string{
	"0 15 * * *": StandardTime,
	"0 14 * * *": DaylightTime,
}

// Normalize maps cron-style identifiers to their trigger names.
func Normalize(schedule string) string {
	if name, ok := aliases[schedule]; ok {
		return name
	}
	return schedule
}

type Gate struct {
	loc *time.Location
}

func New(loc *time.Location) *Gate {
	return &Gate{loc: loc}
}

// Load builds a Gate for the named IANA zone.
func Load(name string) (*Gate, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load location %q: %w", name, err)
	}
	return New(loc), nil
}

func (g *Gate) Location() *time.Location {
	return g.loc
}

// DSTObserved reports whether daylight saving is in effect in the gate's zone at t.
func (g *Gate) DSTObserved(t time.Time) bool {
	_, offset := t.In(g.loc).Zone()
	return offset > g.standardOffset(t)
}

// standardOffset is the smaller of the two offsets seen on January 1 and July 1,
// which is standard time in either hemisphere.
func (g *Gate) standardOffset(t time.Time) int {
	year := t.In(g.loc).Year()
	_, jan := time.Date(year, time.January, 1, 0, 0, 0, 0, g.loc).Zone()
	_, jul := time.Date(year, time.July, 1, 0, 0, 0, 0, g.loc).Zone()
	return min(jan, jul)
}

// Proceed reports whether the run described by ev should go past the gate.
// Identifiers other than the two daily triggers always proceed.
func (g *Gate) Proceed(ev domain.TriggerEvent) bool {
	switch Normalize(ev.Schedule) {
	case StandardTime:
		return !g.DSTObserved(ev.ScheduledAt)
	case DaylightTime:
		return g.DSTObserved(ev.ScheduledAt)
	default:
		return true
	}
}
