package timeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Persister is the single-key storage the Store writes through to.
// Load returns empty data and a nil error when nothing has been saved yet.
type Persister interface {
	Load() ([]byte, error)
	Save(data []byte) error
}

// Store is the in-memory timeline collection. Every mutation re-sorts the
// affected timeline and then persists the whole collection synchronously.
//
// A Store is not safe for concurrent use; callers drive it from one goroutine.
type Store struct {
	timelines []*Timeline
	persister Persister
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
	err       error
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for persistence and import diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides id generation.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// NewStore creates an empty store. A nil persister keeps the collection in
// memory only.
func NewStore(p Persister, opts ...Option) *Store {
	s := &Store{
		timelines: []*Timeline{},
		persister: p,
		logger:    zap.NewNop(),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Err returns the error from the most recent persist, or nil if it succeeded.
func (s *Store) Err() error {
	return s.err
}

// Load replaces the collection with the persisted one. Nothing saved yet is
// not an error. A payload that cannot be decoded leaves the store empty.
func (s *Store) Load() error {
	if s.persister == nil {
		return nil
	}
	data, err := s.persister.Load()
	if err != nil {
		return fmt.Errorf("failed to load timelines: %w", err)
	}
	if len(data) == 0 {
		return nil
	}
	timelines, err := decodeTimelines(data, s.newID)
	if err != nil {
		s.logger.Error("discarding unreadable saved timelines", zap.Error(err))
		s.timelines = []*Timeline{}
		return nil
	}
	s.timelines = timelines
	s.logger.Debug("timelines loaded", zap.Int("count", len(timelines)))
	return nil
}

// =============================================================================
// QUERIES
// =============================================================================

// Timelines returns the collection in display order. The slice is shared;
// callers must not modify it.
func (s *Store) Timelines() []*Timeline {
	return s.timelines
}

// Timeline returns the timeline with the given id.
func (s *Store) Timeline(id string) (*Timeline, bool) {
	i := s.timelineIndex(id)
	if i < 0 {
		return nil, false
	}
	return s.timelines[i], true
}

// FindEvent looks an event up across all timelines.
func (s *Store) FindEvent(eventID string) (*Timeline, *Event, bool) {
	for _, t := range s.timelines {
		if e, ok := t.Event(eventID); ok {
			return t, e, true
		}
	}
	return nil, nil, false
}

func (s *Store) timelineIndex(id string) int {
	for i, t := range s.timelines {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// =============================================================================
// TIMELINE MUTATIONS
// =============================================================================

// CreateTimeline appends a new empty timeline. The name is validated by the caller.
func (s *Store) CreateTimeline(name, color, description string) *Timeline {
	if color == "" {
		color = DefaultColor
	}
	t := &Timeline{
		ID:          s.newID(),
		Name:        name,
		Color:       color,
		Description: description,
		Events:      []*Event{},
		CreatedAt:   s.now(),
	}
	s.timelines = append(s.timelines, t)
	s.persist()
	return t
}

// DeleteTimeline removes a timeline together with all of its events.
func (s *Store) DeleteTimeline(id string) bool {
	i := s.timelineIndex(id)
	if i < 0 {
		return false
	}
	s.timelines = append(s.timelines[:i], s.timelines[i+1:]...)
	s.persist()
	return true
}

// ToggleTimeline flips the expanded flag of a timeline.
func (s *Store) ToggleTimeline(id string) bool {
	t, ok := s.Timeline(id)
	if !ok {
		return false
	}
	t.Expanded = !t.Expanded
	s.persist()
	return true
}

// =============================================================================
// EVENT MUTATIONS
// =============================================================================

// AddEvent creates an event on the given timeline and re-sorts it.
// It returns false if the timeline does not exist.
func (s *Store) AddEvent(timelineID string, data EventData) (*Event, bool) {
	t, ok := s.Timeline(timelineID)
	if !ok {
		return nil, false
	}
	e := &Event{
		ID:        s.newID(),
		CreatedAt: s.now(),
	}
	applyEventData(e, data)
	t.Events = append(t.Events, e)
	SortEvents(t.Events)
	s.persist()
	return e, true
}

// UpdateEvent replaces every mutable field of an event and re-sorts its timeline.
func (s *Store) UpdateEvent(timelineID, eventID string, data EventData) bool {
	t, ok := s.Timeline(timelineID)
	if !ok {
		return false
	}
	e, ok := t.Event(eventID)
	if !ok {
		return false
	}
	applyEventData(e, data)
	updated := s.now()
	e.UpdatedAt = &updated
	SortEvents(t.Events)
	s.persist()
	return true
}

// DeleteEvent removes an event from its timeline.
func (s *Store) DeleteEvent(timelineID, eventID string) bool {
	t, ok := s.Timeline(timelineID)
	if !ok {
		return false
	}
	i := t.eventIndex(eventID)
	if i < 0 {
		return false
	}
	t.Events = append(t.Events[:i], t.Events[i+1:]...)
	s.persist()
	return true
}

// applyEventData copies the mutable fields. A day without a month carries no
// meaning and is dropped.
func applyEventData(e *Event, data EventData) {
	e.Year = data.Year
	e.Month = copyInt(data.Month)
	e.Day = copyInt(data.Day)
	if e.Month == nil {
		e.Day = nil
	}
	e.Title = data.Title
	e.Description = data.Description
	e.Severity = data.Severity
	if e.Severity == "" {
		e.Severity = SeverityMedium
	}
	e.Tags = ParseTags(data.Tags)
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// =============================================================================
// BULK OPERATIONS
// =============================================================================

// Replace swaps in a whole collection, re-sorting every timeline.
func (s *Store) Replace(timelines []*Timeline) {
	if timelines == nil {
		timelines = []*Timeline{}
	}
	for _, t := range timelines {
		normalizeTimeline(t, s.newID)
	}
	s.timelines = timelines
	s.persist()
}

// Clear removes every timeline.
func (s *Store) Clear() {
	s.timelines = []*Timeline{}
	s.persist()
}

// LoadSample replaces the collection with the built-in sample timelines.
func (s *Store) LoadSample() {
	s.Replace(SampleTimelines(s.now()))
}

// =============================================================================
// EXPORT / IMPORT
// =============================================================================

// ExportData serializes the whole collection as indented JSON.
func (s *Store) ExportData() (string, error) {
	data, err := json.MarshalIndent(s.timelines, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal timelines: %w", err)
	}
	return string(data), nil
}

// ImportData replaces the collection with the timelines encoded in text.
// Anything other than a JSON array of timeline records is rejected and the
// current collection is left untouched.
func (s *Store) ImportData(text string) bool {
	timelines, err := decodeTimelines([]byte(text), s.newID)
	if err != nil {
		s.logger.Warn("import rejected", zap.Error(err))
		return false
	}
	s.timelines = timelines
	s.persist()
	s.logger.Info("timelines imported", zap.Int("count", len(timelines)))
	return true
}

var errNotArray = errors.New("payload is not an array of timelines")

func decodeTimelines(data []byte, newID func() string) ([]*Timeline, error) {
	var timelines []*Timeline
	if err := json.Unmarshal(data, &timelines); err != nil {
		return nil, fmt.Errorf("failed to decode timelines: %w", err)
	}
	if timelines == nil {
		return nil, errNotArray
	}
	for i, t := range timelines {
		if t == nil {
			return nil, fmt.Errorf("timeline %d: %w", i, errNotArray)
		}
		for j, e := range t.Events {
			if e == nil {
				return nil, fmt.Errorf("timeline %d event %d is null", i, j)
			}
		}
		normalizeTimeline(t, newID)
	}
	return timelines, nil
}

func normalizeTimeline(t *Timeline, newID func() string) {
	if t.ID == "" {
		t.ID = newID()
	}
	if t.Events == nil {
		t.Events = []*Event{}
	}
	for _, e := range t.Events {
		if e.ID == "" {
			e.ID = newID()
		}
		if e.Tags == nil {
			e.Tags = []string{}
		}
	}
	SortEvents(t.Events)
}

func (s *Store) persist() {
	if s.persister == nil {
		return
	}
	data, err := json.Marshal(s.timelines)
	if err != nil {
		s.err = fmt.Errorf("failed to marshal timelines: %w", err)
		s.logger.Error("persist failed", zap.Error(s.err))
		return
	}
	if err := s.persister.Save(data); err != nil {
		s.err = fmt.Errorf("failed to save timelines: %w", err)
		s.logger.Error("persist failed", zap.Error(s.err))
		return
	}
	s.err = nil
}
