// Package timeline holds the timeline collection: named timelines, the dated
// events they own, and the Store that keeps events sorted and persisted.
// Types in this package are plain data with JSON tags matching the exported
// text format, so a saved collection can be imported back without mapping.
package timeline

import (
	"strings"
	"time"
)

// =============================================================================
// SEVERITY
// =============================================================================

// Severity is the visual emphasis of an event.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Severities lists every severity from least to most severe.
var Severities = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Rank orders severities for sorting connector lines; unknown values rank as medium.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 0
	case SeverityHigh:
		return 2
	case SeverityCritical:
		return 3
	default:
		return 1
	}
}

// ParseSeverity normalizes user input. An empty string selects medium.
func ParseSeverity(raw string) (Severity, bool) {
	s := Severity(strings.ToLower(strings.TrimSpace(raw)))
	if s == "" {
		return SeverityMedium, true
	}
	return s, s.Valid()
}

// =============================================================================
// EVENTS AND TIMELINES
// =============================================================================

// Event is a dated record owned by exactly one Timeline.
// Month and Day are nil when the event is only known to a coarser granularity.
type Event struct {
	ID          string     `json:"id"`
	Year        int        `json:"year"`
	Month       *int       `json:"month"`
	Day         *int       `json:"day"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Severity    Severity   `json:"severity"`
	Tags        []string   `json:"tags"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// MonthOrZero returns the month, or 0 when the event has no month.
func (e *Event) MonthOrZero() int {
	if e.Month == nil {
		return 0
	}
	return *e.Month
}

// DayOrZero returns the day, or 0 when the event has no day.
func (e *Event) DayOrZero() int {
	if e.Day == nil {
		return 0
	}
	return *e.Day
}

// Timeline is a named, colored collection of chronologically ordered events.
type Timeline struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Color       string    `json:"color"`
	Description string    `json:"description"`
	Events      []*Event  `json:"events"`
	Expanded    bool      `json:"expanded"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Event returns the event with the given id.
func (t *Timeline) Event(id string) (*Event, bool) {
	i := t.eventIndex(id)
	if i < 0 {
		return nil, false
	}
	return t.Events[i], true
}

func (t *Timeline) eventIndex(id string) int {
	for i, e := range t.Events {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// YearSpan returns the smallest and largest event year. ok is false for an
// empty timeline.
func (t *Timeline) YearSpan() (minYear, maxYear int, ok bool) {
	if len(t.Events) == 0 {
		return 0, 0, false
	}
	minYear, maxYear = t.Events[0].Year, t.Events[0].Year
	for _, e := range t.Events[1:] {
		if e.Year < minYear {
			minYear = e.Year
		}
		if e.Year > maxYear {
			maxYear = e.Year
		}
	}
	return minYear, maxYear, true
}

// EventData carries the mutable fields of an event for add and update.
// Tags is the raw comma separated text as typed by the user.
type EventData struct {
	Year        int
	Month       *int
	Day         *int
	Title       string
	Description string
	Severity    Severity
	Tags        string
}

// DefaultColor is used for timelines created without a color.
const DefaultColor = "#3498db"

// IntPtr is a convenience for building optional month/day values.
func IntPtr(v int) *int {
	return &v
}
