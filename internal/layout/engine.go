package layout

import (
	"sort"

	"go.uber.org/zap"

	"timeliner/internal/timeline"
)

// Frame is a layout together with whether its overflow advisory should be
// shown now.
type Frame struct {
	*Layout
	TimelineID   string
	ShowAdvisory bool
}

// Engine holds the view state shared across redraws: the current zoom and
// which timelines have already surfaced their overflow advisory.
type Engine struct {
	zoom    int
	advised map[string]bool
	logger  *zap.Logger
}

// NewEngine creates an engine at the given zoom.
func NewEngine(zoom int, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		zoom:    ClampZoom(zoom),
		advised: make(map[string]bool),
		logger:  logger,
	}
}

// Zoom returns the current zoom percentage.
func (e *Engine) Zoom() int {
	return e.zoom
}

// SetZoom clamps and stores a zoom percentage, returning the stored value.
func (e *Engine) SetZoom(zoom int) int {
	e.zoom = ClampZoom(zoom)
	return e.zoom
}

// MarkAdvised records timelines whose advisory has already been shown, for
// example in an earlier session.
func (e *Engine) MarkAdvised(ids ...string) {
	for _, id := range ids {
		e.advised[id] = true
	}
}

// Forget drops timelines from the advised set so their advisory surfaces
// again. With no ids it clears the whole set.
func (e *Engine) Forget(ids ...string) {
	if len(ids) == 0 {
		e.advised = make(map[string]bool)
		return
	}
	for _, id := range ids {
		delete(e.advised, id)
	}
}

// Advised returns the ids of timelines that have shown their advisory, sorted.
func (e *Engine) Advised() []string {
	ids := make([]string, 0, len(e.advised))
	for id := range e.advised {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Frame lays out a timeline at the current zoom. ShowAdvisory is true only
// the first time a truncated layout is produced for that timeline.
func (e *Engine) Frame(t *timeline.Timeline) (Frame, bool) {
	l, ok := Compute(t.Events, e.zoom)
	if !ok {
		return Frame{TimelineID: t.ID}, false
	}
	f := Frame{Layout: l, TimelineID: t.ID}
	if l.Truncated && !e.advised[t.ID] {
		e.advised[t.ID] = true
		f.ShowAdvisory = true
		e.logger.Debug("overflow advisory surfaced",
			zap.String("timeline", t.ID),
			zap.Int("span", l.MaxYear-l.MinYear),
			zap.Int("hidden", len(l.Hidden)))
	}
	return f, true
}
