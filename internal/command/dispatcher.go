package command

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"timeliner/internal/layout"
	"timeliner/internal/timeline"
)

// Dispatcher applies commands to a store and a layout engine. It is not safe
// for concurrent use; front ends drive it from one goroutine.
type Dispatcher struct {
	store  *timeline.Store
	engine *layout.Engine
	labels timeline.Labels
	logger *zap.Logger
}

// NewDispatcher creates a dispatcher. Locale selects CSV and date labels.
func NewDispatcher(store *timeline.Store, engine *layout.Engine, locale string, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if engine == nil {
		engine = layout.NewEngine(layout.DefaultZoom, logger)
	}
	return &Dispatcher{
		store:  store,
		engine: engine,
		labels: timeline.LabelsFor(locale),
		logger: logger,
	}
}

// Store returns the underlying store for read access.
func (d *Dispatcher) Store() *timeline.Store {
	return d.store
}

// Engine returns the layout engine.
func (d *Dispatcher) Engine() *layout.Engine {
	return d.engine
}

// Labels returns the active locale labels.
func (d *Dispatcher) Labels() timeline.Labels {
	return d.labels
}

// Apply runs one command.
func (d *Dispatcher) Apply(cmd Command) Result {
	start := time.Now()

	var res Result
	if cmd == nil {
		res = fail(fmt.Sprintf("%v: nil", ErrUnknownCommand))
		res.Err = ErrUnknownCommand
	} else {
		res = d.apply(cmd)
		res.Command = cmd.Kind()
	}
	res.Duration = time.Since(start)

	d.logger.Debug("command applied",
		zap.String("command", res.Command),
		zap.Bool("ok", res.OK),
		zap.String("level", string(res.Level)),
		zap.Duration("duration", res.Duration))
	return res
}

func (d *Dispatcher) apply(cmd Command) Result {
	switch c := cmd.(type) {
	case CreateTimeline:
		return d.createTimeline(c)
	case DeleteTimeline:
		return d.deleteTimeline(c)
	case ToggleTimeline:
		return d.toggleTimeline(c)
	case AddEvent:
		return d.addEvent(c)
	case UpdateEvent:
		return d.updateEvent(c)
	case DeleteEvent:
		return d.deleteEvent(c)
	case Export:
		return d.export()
	case ExportCSV:
		return d.exportCSV(c)
	case Import:
		return d.importData(c)
	case LoadSample:
		d.store.LoadSample()
		d.engine.Forget()
		return d.persisted(ok(LevelInfo, "Sample data loaded"))
	case Clear:
		d.store.Clear()
		d.engine.Forget()
		return d.persisted(ok(LevelInfo, "All data cleared"))
	case Reload:
		return d.reload()
	case SetZoom:
		return d.setZoom(c)
	case Search:
		return d.search(c)
	case Stats:
		return d.stats()
	case Render:
		return d.render(c)
	default:
		res := fail(fmt.Sprintf("%v: %s", ErrUnknownCommand, cmd.Kind()))
		res.Err = ErrUnknownCommand
		return res
	}
}

func ok(level Level, msg string) Result {
	return Result{OK: true, Level: level, Message: msg}
}

func fail(msg string) Result {
	return Result{OK: false, Level: LevelError, Message: msg}
}

func invalid(errs []timeline.FieldError) Result {
	res := fail(errs[0].Message)
	res.Errors = errs
	return res
}

// persisted downgrades a successful mutation to a warning when the store
// could not write it through; the change still holds in memory.
func (d *Dispatcher) persisted(res Result) Result {
	if err := d.store.Err(); err != nil && res.OK {
		res.Level = LevelWarning
		res.Message = fmt.Sprintf("%s (not saved: %v)", res.Message, err)
		res.Err = err
	}
	return res
}

// =============================================================================
// TIMELINES
// =============================================================================

func (d *Dispatcher) createTimeline(c CreateTimeline) Result {
	if errs := timeline.ValidateTimelineName(c.Name); len(errs) > 0 {
		return invalid(errs)
	}
	t := d.store.CreateTimeline(strings.TrimSpace(c.Name), c.Color, strings.TrimSpace(c.Description))
	res := ok(LevelSuccess, fmt.Sprintf("Timeline %q created", t.Name))
	res.Timeline = t
	return d.persisted(res)
}

func (d *Dispatcher) deleteTimeline(c DeleteTimeline) Result {
	t, found := d.store.Timeline(c.TimelineID)
	if !found || !d.store.DeleteTimeline(c.TimelineID) {
		return fail(fmt.Sprintf("Timeline %q not found", c.TimelineID))
	}
	d.engine.Forget(t.ID)
	res := ok(LevelSuccess, fmt.Sprintf("Timeline %q deleted", t.Name))
	res.Timeline = t
	return d.persisted(res)
}

func (d *Dispatcher) toggleTimeline(c ToggleTimeline) Result {
	if !d.store.ToggleTimeline(c.TimelineID) {
		return fail(fmt.Sprintf("Timeline %q not found", c.TimelineID))
	}
	t, _ := d.store.Timeline(c.TimelineID)
	state := "collapsed"
	if t.Expanded {
		state = "expanded"
	}
	res := ok(LevelInfo, fmt.Sprintf("Timeline %q %s", t.Name, state))
	res.Timeline = t
	return d.persisted(res)
}

// =============================================================================
// EVENTS
// =============================================================================

func (d *Dispatcher) addEvent(c AddEvent) Result {
	data, errs := timeline.ValidateEvent(c.Input)
	if len(errs) > 0 {
		return invalid(errs)
	}
	e, found := d.store.AddEvent(c.TimelineID, data)
	if !found {
		return fail("Failed to add event: timeline not found")
	}
	t, _ := d.store.Timeline(c.TimelineID)
	res := ok(LevelSuccess, fmt.Sprintf("Event %q added", e.Title))
	res.Timeline = t
	res.Event = e
	return d.persisted(res)
}

func (d *Dispatcher) updateEvent(c UpdateEvent) Result {
	data, errs := timeline.ValidateEvent(c.Input)
	if len(errs) > 0 {
		return invalid(errs)
	}
	if !d.store.UpdateEvent(c.TimelineID, c.EventID, data) {
		return fail("Failed to update event: not found")
	}
	t, _ := d.store.Timeline(c.TimelineID)
	e, _ := t.Event(c.EventID)
	res := ok(LevelSuccess, fmt.Sprintf("Event %q updated", e.Title))
	res.Timeline = t
	res.Event = e
	return d.persisted(res)
}

func (d *Dispatcher) deleteEvent(c DeleteEvent) Result {
	var title string
	if t, found := d.store.Timeline(c.TimelineID); found {
		if e, found := t.Event(c.EventID); found {
			title = e.Title
		}
	}
	if !d.store.DeleteEvent(c.TimelineID, c.EventID) {
		return fail("Failed to delete event: not found")
	}
	return d.persisted(ok(LevelSuccess, fmt.Sprintf("Event %q deleted", title)))
}

// =============================================================================
// DATA
// =============================================================================

func (d *Dispatcher) export() Result {
	out, err := d.store.ExportData()
	if err != nil {
		res := fail("Export failed")
		res.Err = err
		return res
	}
	res := ok(LevelSuccess, "Data exported")
	res.Output = out
	return res
}

func (d *Dispatcher) exportCSV(c ExportCSV) Result {
	labels := d.labels
	if c.Locale != "" {
		labels = timeline.LabelsFor(c.Locale)
	}
	res := ok(LevelSuccess, "CSV data exported")
	res.Output = timeline.ExportCSV(d.store.Timelines(), labels)
	return res
}

func (d *Dispatcher) importData(c Import) Result {
	if !d.store.ImportData(c.Data) {
		return fail("Invalid data format, import failed")
	}
	d.engine.Forget()
	return d.persisted(ok(LevelSuccess, "Data imported"))
}

func (d *Dispatcher) reload() Result {
	before, _ := d.store.ExportData()
	if err := d.store.Load(); err != nil {
		res := fail("Failed to reload data")
		res.Err = err
		return res
	}
	after, _ := d.store.ExportData()
	if before == after {
		return ok(LevelInfo, "Already up to date")
	}
	d.forgetMissing()
	res := ok(LevelInfo, "Data changed in another session, reloaded")
	res.Changed = true
	return res
}

// forgetMissing drops advised ids whose timeline no longer exists.
func (d *Dispatcher) forgetMissing() {
	for _, id := range d.engine.Advised() {
		if _, found := d.store.Timeline(id); !found {
			d.engine.Forget(id)
		}
	}
}

// =============================================================================
// VIEW
// =============================================================================

func (d *Dispatcher) setZoom(c SetZoom) Result {
	zoom := c.Zoom
	if c.Relative {
		zoom += d.engine.Zoom()
	}
	res := ok(LevelInfo, "")
	res.Zoom = d.engine.SetZoom(zoom)
	res.Message = fmt.Sprintf("Zoom %d%%", res.Zoom)
	return res
}

func (d *Dispatcher) search(c Search) Result {
	matches := d.store.Search(c.Keyword)
	res := ok(LevelInfo, fmt.Sprintf("%d matching events", len(matches)))
	res.Matches = matches
	return res
}

func (d *Dispatcher) stats() Result {
	s := d.store.Statistics()
	res := ok(LevelInfo, fmt.Sprintf("%d timelines, %d events", s.TotalTimelines, s.TotalEvents))
	res.Stats = &s
	return res
}

func (d *Dispatcher) render(c Render) Result {
	t, found := d.store.Timeline(c.TimelineID)
	if !found {
		return fail(fmt.Sprintf("Timeline %q not found", c.TimelineID))
	}
	frame, hasTrack := d.engine.Frame(t)
	res := ok(LevelInfo, "No events")
	res.Timeline = t
	res.Zoom = d.engine.Zoom()
	if !hasTrack {
		return res
	}
	res.Frame = &frame
	res.Message = fmt.Sprintf("%d-%d", frame.MinYear, frame.AdjustedMaxYear)
	if frame.ShowAdvisory {
		res.Level = LevelWarning
		res.Message = frame.Advisory()
	}
	return res
}
