// Package command turns user intents into store mutations and layout
// queries. Front ends build a Command, hand it to a Dispatcher and show the
// Result; none of them touch the store directly.
package command

import (
	"errors"
	"time"

	"timeliner/internal/layout"
	"timeliner/internal/timeline"
)

// ErrUnknownCommand is reported for a Command type the dispatcher does not handle.
var ErrUnknownCommand = errors.New("unknown command")

// Level classifies a result message for display.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
)

// Command is one user intent.
type Command interface {
	Kind() string
}

// =============================================================================
// TIMELINE COMMANDS
// =============================================================================

type CreateTimeline struct {
	Name        string
	Color       string
	Description string
}

type DeleteTimeline struct {
	TimelineID string
}

type ToggleTimeline struct {
	TimelineID string
}

func (CreateTimeline) Kind() string { return "create_timeline" }
func (DeleteTimeline) Kind() string { return "delete_timeline" }
func (ToggleTimeline) Kind() string { return "toggle_timeline" }

// =============================================================================
// EVENT COMMANDS
// =============================================================================

type AddEvent struct {
	TimelineID string
	Input      timeline.EventInput
}

// UpdateEvent replaces every editable field of an event with Input.
type UpdateEvent struct {
	TimelineID string
	EventID    string
	Input      timeline.EventInput
}

type DeleteEvent struct {
	TimelineID string
	EventID    string
}

func (AddEvent) Kind() string    { return "add_event" }
func (UpdateEvent) Kind() string { return "update_event" }
func (DeleteEvent) Kind() string { return "delete_event" }

// =============================================================================
// DATA COMMANDS
// =============================================================================

type Export struct{}

// ExportCSV renders CSV with labels for Locale; empty means the dispatcher's locale.
type ExportCSV struct {
	Locale string
}

type Import struct {
	Data string
}

type LoadSample struct{}

type Clear struct{}

// Reload re-reads the persisted collection, picking up writes made by
// another session.
type Reload struct{}

func (Export) Kind() string     { return "export" }
func (ExportCSV) Kind() string  { return "export_csv" }
func (Import) Kind() string     { return "import" }
func (LoadSample) Kind() string { return "load_sample" }
func (Clear) Kind() string      { return "clear" }
func (Reload) Kind() string     { return "reload" }

// =============================================================================
// VIEW COMMANDS
// =============================================================================

// SetZoom sets the zoom percentage, or adjusts it by Zoom when Relative is set.
type SetZoom struct {
	Zoom     int
	Relative bool
}

type Search struct {
	Keyword string
}

type Stats struct{}

// Render lays out one timeline at the current zoom.
type Render struct {
	TimelineID string
}

func (SetZoom) Kind() string { return "set_zoom" }
func (Search) Kind() string  { return "search" }
func (Stats) Kind() string   { return "stats" }
func (Render) Kind() string  { return "render" }

// =============================================================================
// RESULT
// =============================================================================

// Result is the outcome of one command. Message is always set and suitable
// for showing as a notification at Level.
type Result struct {
	Command string
	OK      bool
	Level   Level
	Message string

	// Errors holds field validation failures; nothing was mutated.
	Errors []timeline.FieldError
	// Err is set for failures that are not about user input.
	Err error

	Timeline *timeline.Timeline
	Event    *timeline.Event
	Output   string
	Matches  []timeline.SearchResult
	Stats    *timeline.Statistics
	Frame    *layout.Frame
	Zoom     int
	// Changed reports whether a Reload found different data.
	Changed bool

	Duration time.Duration
}

// IsSuccess returns true if the command took effect.
func (r Result) IsSuccess() bool {
	return r.OK
}
