package command

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"timeliner/internal/layout"
	"timeliner/internal/storage"
	"timeliner/internal/timeline"
)

type failingPersister struct{}

func (failingPersister) Load() ([]byte, error) { return nil, nil }
func (failingPersister) Save([]byte) error     { return errors.New("quota exceeded") }

func newDispatcher(t *testing.T, p timeline.Persister) *Dispatcher {
	t.Helper()
	if p == nil {
		p = storage.KeyPersister{Backend: storage.NewMemory(), Key: "timeliner_timelines"}
	}
	n := 0
	store := timeline.NewStore(p,
		timeline.WithClock(func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }),
		timeline.WithIDGenerator(func() string { n++; return fmt.Sprintf("id-%d", n) }),
	)
	return NewDispatcher(store, layout.NewEngine(layout.DefaultZoom, zap.NewNop()), timeline.LocaleEnglish, zap.NewNop())
}

func input(year int, title string) timeline.EventInput {
	return timeline.EventInput{Year: timeline.IntPtr(year), Title: title}
}

func TestCreateTimeline(t *testing.T) {
	d := newDispatcher(t, nil)

	res := d.Apply(CreateTimeline{Name: "  History  "})
	require.True(t, res.OK)
	assert.Equal(t, LevelSuccess, res.Level)
	assert.Equal(t, "create_timeline", res.Command)
	assert.Equal(t, "History", res.Timeline.Name)
	assert.Equal(t, timeline.DefaultColor, res.Timeline.Color)
	assert.Len(t, d.Store().Timelines(), 1)
}

func TestCreateTimeline_BlankNameRejected(t *testing.T) {
	d := newDispatcher(t, nil)

	res := d.Apply(CreateTimeline{Name: "   "})
	assert.False(t, res.OK)
	assert.Equal(t, LevelError, res.Level)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "name", res.Errors[0].Field)
	assert.Empty(t, d.Store().Timelines())
}

func TestAddEvent_ValidationBeforeMutation(t *testing.T) {
	d := newDispatcher(t, nil)
	tl := d.Apply(CreateTimeline{Name: "T"}).Timeline

	tests := []struct {
		name  string
		in    timeline.EventInput
		field string
	}{
		{"missing year", timeline.EventInput{Title: "x"}, "year"},
		{"year too large", input(2101, "x"), "year"},
		{"bad month", timeline.EventInput{Year: timeline.IntPtr(2000), Month: timeline.IntPtr(13), Title: "x"}, "month"},
		{"bad day", timeline.EventInput{Year: timeline.IntPtr(2023), Month: timeline.IntPtr(2), Day: timeline.IntPtr(29), Title: "x"}, "day"},
		{"blank title", input(2000, "  "), "title"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := d.Apply(AddEvent{TimelineID: tl.ID, Input: tt.in})
			assert.False(t, res.OK)
			require.NotEmpty(t, res.Errors)
			assert.Equal(t, tt.field, res.Errors[0].Field)
			assert.Empty(t, tl.Events)
		})
	}
}

func TestAddEvent_Sorted(t *testing.T) {
	d := newDispatcher(t, nil)
	tl := d.Apply(CreateTimeline{Name: "T"}).Timeline

	for _, y := range []int{2010, 1990, 2000} {
		res := d.Apply(AddEvent{TimelineID: tl.ID, Input: input(y, fmt.Sprint(y))})
		require.True(t, res.OK, res.Message)
		assert.Equal(t, timeline.SeverityMedium, res.Event.Severity)
	}
	var years []int
	for _, e := range tl.Events {
		years = append(years, e.Year)
	}
	assert.Equal(t, []int{1990, 2000, 2010}, years)
}

func TestAddEvent_UnknownTimeline(t *testing.T) {
	d := newDispatcher(t, nil)
	res := d.Apply(AddEvent{TimelineID: "nope", Input: input(2000, "x")})
	assert.False(t, res.OK)
	assert.Empty(t, res.Errors)
	assert.Contains(t, res.Message, "not found")
}

func TestUpdateAndDeleteEvent(t *testing.T) {
	d := newDispatcher(t, nil)
	tl := d.Apply(CreateTimeline{Name: "T"}).Timeline
	e := d.Apply(AddEvent{TimelineID: tl.ID, Input: input(2000, "old")}).Event

	res := d.Apply(UpdateEvent{TimelineID: tl.ID, EventID: e.ID, Input: timeline.EventInput{
		Year: timeline.IntPtr(1999), Title: "new", Severity: "critical", Tags: "a, b",
	}})
	require.True(t, res.OK, res.Message)
	assert.Equal(t, "new", res.Event.Title)
	assert.Equal(t, timeline.SeverityCritical, res.Event.Severity)
	assert.Equal(t, []string{"a", "b"}, res.Event.Tags)
	assert.NotNil(t, res.Event.UpdatedAt)

	bad := d.Apply(UpdateEvent{TimelineID: tl.ID, EventID: e.ID, Input: input(1999, "")})
	assert.False(t, bad.OK)
	assert.Equal(t, "new", e.Title, "failed validation leaves event untouched")

	res = d.Apply(DeleteEvent{TimelineID: tl.ID, EventID: e.ID})
	require.True(t, res.OK)
	assert.Contains(t, res.Message, "new")
	assert.Empty(t, tl.Events)

	res = d.Apply(DeleteEvent{TimelineID: tl.ID, EventID: e.ID})
	assert.False(t, res.OK)
}

func TestDeleteAndToggleTimeline(t *testing.T) {
	d := newDispatcher(t, nil)
	tl := d.Apply(CreateTimeline{Name: "T"}).Timeline

	res := d.Apply(ToggleTimeline{TimelineID: tl.ID})
	require.True(t, res.OK)
	assert.True(t, tl.Expanded)
	assert.Contains(t, res.Message, "expanded")

	res = d.Apply(DeleteTimeline{TimelineID: tl.ID})
	require.True(t, res.OK)
	assert.Empty(t, d.Store().Timelines())

	assert.False(t, d.Apply(DeleteTimeline{TimelineID: tl.ID}).OK)
	assert.False(t, d.Apply(ToggleTimeline{TimelineID: tl.ID}).OK)
}

func TestExportImport(t *testing.T) {
	d := newDispatcher(t, nil)
	d.Apply(LoadSample{})

	exported := d.Apply(Export{})
	require.True(t, exported.OK)
	assert.Contains(t, exported.Output, `"name": "World Wars"`)

	d.Apply(Clear{})
	assert.Empty(t, d.Store().Timelines())

	res := d.Apply(Import{Data: exported.Output})
	require.True(t, res.OK)
	assert.Len(t, d.Store().Timelines(), 2)
}

func TestImport_MalformedLeavesCollection(t *testing.T) {
	d := newDispatcher(t, nil)
	d.Apply(LoadSample{})

	for _, data := range []string{"", "{}", "null", "[1,2", `{"a":1}`} {
		res := d.Apply(Import{Data: data})
		assert.False(t, res.OK, data)
		assert.Equal(t, LevelError, res.Level)
	}
	assert.Len(t, d.Store().Timelines(), 2)
}

func TestExportCSV_Locale(t *testing.T) {
	d := newDispatcher(t, nil)
	d.Apply(LoadSample{})

	en := d.Apply(ExportCSV{})
	require.True(t, en.OK)
	assert.Contains(t, en.Output, "Critical")

	zh := d.Apply(ExportCSV{Locale: timeline.LocaleChinese})
	require.True(t, zh.OK)
	assert.Contains(t, zh.Output, "关键")
}

func TestSetZoom(t *testing.T) {
	d := newDispatcher(t, nil)

	assert.Equal(t, 150, d.Apply(SetZoom{Zoom: 150}).Zoom)
	assert.Equal(t, 160, d.Apply(SetZoom{Zoom: 10, Relative: true}).Zoom)
	assert.Equal(t, 200, d.Apply(SetZoom{Zoom: 500}).Zoom)
	assert.Equal(t, 0, d.Apply(SetZoom{Zoom: -500, Relative: true}).Zoom)
	assert.Equal(t, 0, d.Engine().Zoom())
}

func TestSearchAndStats(t *testing.T) {
	d := newDispatcher(t, nil)
	d.Apply(LoadSample{})

	res := d.Apply(Search{Keyword: "APPLE"})
	require.True(t, res.OK)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, "event7", res.Matches[0].Event.ID)

	stats := d.Apply(Stats{})
	require.NotNil(t, stats.Stats)
	assert.Equal(t, 2, stats.Stats.TotalTimelines)
	assert.Equal(t, 7, stats.Stats.TotalEvents)
}

func TestRender_AdvisoryOnce(t *testing.T) {
	d := newDispatcher(t, nil)
	tl := d.Apply(CreateTimeline{Name: "Wide"}).Timeline
	d.Apply(AddEvent{TimelineID: tl.ID, Input: input(1900, "start")})
	d.Apply(AddEvent{TimelineID: tl.ID, Input: input(1950, "end")})

	first := d.Apply(Render{TimelineID: tl.ID})
	require.True(t, first.OK)
	require.NotNil(t, first.Frame)
	assert.Equal(t, LevelWarning, first.Level)
	assert.True(t, first.Frame.ShowAdvisory)
	assert.Equal(t, 1924, first.Frame.AdjustedMaxYear)

	second := d.Apply(Render{TimelineID: tl.ID})
	assert.Equal(t, LevelInfo, second.Level)
	assert.False(t, second.Frame.ShowAdvisory)
}

func TestRender_AdvisoryReturnsAfterDataReplaced(t *testing.T) {
	d := newDispatcher(t, nil)
	d.Apply(LoadSample{})

	first := d.Apply(Render{TimelineID: "sample1"})
	require.NotNil(t, first.Frame)
	assert.True(t, first.Frame.ShowAdvisory)
	assert.Equal(t, []string{"sample1"}, d.Engine().Advised())

	d.Apply(Clear{})
	assert.Empty(t, d.Engine().Advised())

	d.Apply(LoadSample{})
	again := d.Apply(Render{TimelineID: "sample1"})
	require.NotNil(t, again.Frame)
	assert.True(t, again.Frame.ShowAdvisory)

	exported := d.Apply(Export{}).Output
	require.True(t, d.Apply(Import{Data: exported}).OK)
	assert.Empty(t, d.Engine().Advised())

	d.Apply(Render{TimelineID: "sample1"})
	require.True(t, d.Apply(DeleteTimeline{TimelineID: "sample1"}).OK)
	assert.Empty(t, d.Engine().Advised())
}

func TestRender_EmptyAndUnknown(t *testing.T) {
	d := newDispatcher(t, nil)
	tl := d.Apply(CreateTimeline{Name: "Empty"}).Timeline

	res := d.Apply(Render{TimelineID: tl.ID})
	assert.True(t, res.OK)
	assert.Nil(t, res.Frame)

	assert.False(t, d.Apply(Render{TimelineID: "missing"}).OK)
}

type bogus struct{}

func (bogus) Kind() string { return "bogus" }

func TestUnknownCommand(t *testing.T) {
	d := newDispatcher(t, nil)

	res := d.Apply(bogus{})
	assert.False(t, res.OK)
	assert.ErrorIs(t, res.Err, ErrUnknownCommand)

	res = d.Apply(nil)
	assert.ErrorIs(t, res.Err, ErrUnknownCommand)
}

func TestPersistFailureIsWarning(t *testing.T) {
	d := newDispatcher(t, failingPersister{})

	res := d.Apply(CreateTimeline{Name: "T"})
	assert.True(t, res.OK, "change holds in memory")
	assert.Equal(t, LevelWarning, res.Level)
	assert.Contains(t, res.Message, "quota exceeded")
	assert.Len(t, d.Store().Timelines(), 1)
}

func TestReload_PicksUpOtherSession(t *testing.T) {
	shared := storage.KeyPersister{Backend: storage.NewMemory(), Key: "timeliner_timelines"}
	mine := newDispatcher(t, shared)
	theirs := newDispatcher(t, shared)

	res := mine.Apply(Reload{})
	require.True(t, res.OK)
	assert.False(t, res.Changed)

	theirs.Apply(CreateTimeline{Name: "From elsewhere"})

	res = mine.Apply(Reload{})
	require.True(t, res.OK)
	assert.True(t, res.Changed)
	require.Len(t, mine.Store().Timelines(), 1)
	assert.Equal(t, "From elsewhere", mine.Store().Timelines()[0].Name)
}

func TestReload_ForgetsAdvisoryOfRemovedTimelines(t *testing.T) {
	shared := storage.KeyPersister{Backend: storage.NewMemory(), Key: "timeliner_timelines"}
	mine := newDispatcher(t, shared)
	theirs := newDispatcher(t, shared)

	mine.Apply(LoadSample{})
	mine.Apply(Render{TimelineID: "sample1"})
	require.Equal(t, []string{"sample1"}, mine.Engine().Advised())

	require.True(t, theirs.Apply(Reload{}).Changed)
	require.True(t, theirs.Apply(DeleteTimeline{TimelineID: "sample1"}).OK)

	res := mine.Apply(Reload{})
	require.True(t, res.Changed)
	assert.Empty(t, mine.Engine().Advised())
}
