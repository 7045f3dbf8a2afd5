package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"timeliner/internal/command"
	"timeliner/internal/layout"
	"timeliner/internal/timeline"
)

// StorageChangedMsg is sent when another session wrote the backend.
type StorageChangedMsg struct{}

// PanStep is how many columns one pan key press moves.
const PanStep = 10

// ZoomStep is how many percent one zoom key press changes.
const ZoomStep = 10

// Options seeds the view state, usually from saved preferences.
type Options struct {
	Pan              int
	SelectedTimeline string
	Styles           Styles
	Logger           *zap.Logger
}

// Model is the interactive timeline view.
type Model struct {
	dispatcher *command.Dispatcher
	styles     Styles
	keys       keyMap
	help       help.Model
	details    viewport.Model
	logger     *zap.Logger

	selected int
	eventIdx int
	pan      int
	frame    *layout.Frame

	status      string
	statusLevel command.Level

	width  int
	height int
}

// NewModel creates the view over a dispatcher.
func NewModel(d *command.Dispatcher, opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	m := Model{
		dispatcher: d,
		styles:     opts.Styles,
		keys:       defaultKeyMap(),
		help:       help.New(),
		details:    viewport.New(80, 6),
		logger:     logger,
		pan:        opts.Pan,
		width:      80,
		height:     24,
	}
	for i, t := range d.Store().Timelines() {
		if t.ID == opts.SelectedTimeline {
			m.selected = i
		}
	}
	m.refresh()
	return m
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Zoom returns the current zoom percentage.
func (m Model) Zoom() int {
	return m.dispatcher.Engine().Zoom()
}

// Pan returns the current pan offset in columns.
func (m Model) Pan() int {
	return m.pan
}

// SelectedTimeline returns the id of the timeline on screen, or "".
func (m Model) SelectedTimeline() string {
	if t := m.current(); t != nil {
		return t.ID
	}
	return ""
}

// SelectedEvent returns the highlighted event, or nil.
func (m Model) SelectedEvent() *timeline.Event {
	t := m.current()
	if t == nil || m.eventIdx < 0 || m.eventIdx >= len(t.Events) {
		return nil
	}
	return t.Events[m.eventIdx]
}

// Status returns the last notification and its level.
func (m Model) Status() (string, command.Level) {
	return m.status, m.statusLevel
}

func (m Model) current() *timeline.Timeline {
	ts := m.dispatcher.Store().Timelines()
	if m.selected < 0 || m.selected >= len(ts) {
		return nil
	}
	return ts[m.selected]
}

func (m *Model) notify(res command.Result) {
	m.status = res.Message
	m.statusLevel = res.Level
}

// refresh recomputes the frame after any change to data, zoom or selection.
func (m *Model) refresh() {
	ts := m.dispatcher.Store().Timelines()
	if m.selected >= len(ts) {
		m.selected = len(ts) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
	t := m.current()
	if t == nil {
		m.frame = nil
		m.details.SetContent("No timelines. Run `timeliner sample` or `timeliner timeline create`.")
		return
	}
	if m.eventIdx >= len(t.Events) {
		m.eventIdx = len(t.Events) - 1
	}
	if m.eventIdx < 0 {
		m.eventIdx = 0
	}

	res := m.dispatcher.Apply(command.Render{TimelineID: t.ID})
	m.frame = res.Frame
	if res.Frame != nil && res.Frame.ShowAdvisory {
		m.notify(res)
	}
	if limit := MaxPan(m.layout(), m.scaleWidth()); m.pan > limit {
		m.pan = limit
	}
	if m.pan < 0 {
		m.pan = 0
	}
	m.details.SetContent(m.renderDetails())
}

func (m Model) layout() *layout.Layout {
	if m.frame == nil {
		return nil
	}
	return m.frame.Layout
}

func (m Model) scaleWidth() int {
	if m.width < 4 {
		return 1
	}
	return m.width - 2
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.details.Width = msg.Width - 4
		m.details.Height = max(3, msg.Height-16)
		m.refresh()
		return m, nil

	case StorageChangedMsg:
		res := m.dispatcher.Apply(command.Reload{})
		if res.Changed || !res.OK {
			m.notify(res)
			m.logger.Info("storage changed externally", zap.Bool("ok", res.OK))
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.details, cmd = m.details.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.ZoomIn):
		m.notify(m.dispatcher.Apply(command.SetZoom{Zoom: ZoomStep, Relative: true}))
		m.refresh()

	case key.Matches(msg, m.keys.ZoomOut):
		m.notify(m.dispatcher.Apply(command.SetZoom{Zoom: -ZoomStep, Relative: true}))
		m.refresh()

	case key.Matches(msg, m.keys.PanLeft):
		m.pan -= PanStep
		m.refresh()

	case key.Matches(msg, m.keys.PanRight):
		m.pan += PanStep
		m.refresh()

	case key.Matches(msg, m.keys.Prev):
		if m.selected > 0 {
			m.selected--
			m.eventIdx = 0
			m.pan = 0
		}
		m.refresh()

	case key.Matches(msg, m.keys.Next):
		if m.selected < len(m.dispatcher.Store().Timelines())-1 {
			m.selected++
			m.eventIdx = 0
			m.pan = 0
		}
		m.refresh()

	case key.Matches(msg, m.keys.NextEvent), key.Matches(msg, m.keys.PrevEvent):
		if t := m.current(); t != nil && len(t.Events) > 0 {
			step := 1
			if key.Matches(msg, m.keys.PrevEvent) {
				step = len(t.Events) - 1
			}
			m.eventIdx = (m.eventIdx + step) % len(t.Events)
			m.followSelection()
		}
		m.refresh()

	case key.Matches(msg, m.keys.Toggle):
		if t := m.current(); t != nil {
			m.notify(m.dispatcher.Apply(command.ToggleTimeline{TimelineID: t.ID}))
		}
		m.refresh()

	default:
		var cmd tea.Cmd
		m.details, cmd = m.details.Update(msg)
		return m, cmd
	}
	return m, nil
}

// followSelection pans so the selected event is on screen.
func (m *Model) followSelection() {
	l := m.layout()
	e := m.SelectedEvent()
	if l == nil || e == nil {
		return
	}
	col, ok := Column(l, e.ID)
	if !ok {
		return
	}
	w := m.scaleWidth()
	if col < m.pan || col >= m.pan+w {
		m.pan = col - w/2
	}
}

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model
func (m Model) View() string {
	var b strings.Builder

	t := m.current()
	header := "timeliner"
	if t != nil {
		header = fmt.Sprintf("%s  (%d/%d)  zoom %d%%", t.Name, m.selected+1,
			len(m.dispatcher.Store().Timelines()), m.Zoom())
	}
	b.WriteString(m.styles.Header.Render(header))
	b.WriteString("\n\n")

	switch {
	case t == nil:
	case m.frame == nil:
		b.WriteString(m.styles.Muted.Render("  No events on this timeline"))
		b.WriteString("\n")
	default:
		sel := ""
		if e := m.SelectedEvent(); e != nil {
			sel = e.ID
		}
		scale := RenderScale(m.frame.Layout, ScaleOptions{
			Pan:      m.pan,
			Width:    m.scaleWidth(),
			Selected: sel,
			Styles:   m.styles,
		})
		b.WriteString(lipgloss.NewStyle().PaddingLeft(1).Render(scale))
		b.WriteString("\n")
		if n := len(m.frame.Hidden); n > 0 {
			b.WriteString(m.styles.Muted.Render(fmt.Sprintf("  %d events beyond %d not shown", n, m.frame.AdjustedMaxYear)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Details.Render(m.details.View()))
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString(m.styles.Level(string(m.statusLevel)).Render(" " + m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.styles.Footer.Render(m.help.View(m.keys)))
	return b.String()
}

func (m Model) renderDetails() string {
	t := m.current()
	if t == nil {
		return ""
	}
	if !t.Expanded {
		return m.styles.Muted.Render(fmt.Sprintf("%d events (collapsed, press enter to expand)", len(t.Events)))
	}
	e := m.SelectedEvent()
	if e == nil {
		if t.Description != "" {
			return t.Description
		}
		return m.styles.Muted.Render("No events")
	}
	labels := m.dispatcher.Labels()
	lines := []string{
		m.styles.Title.Render(e.Title),
		fmt.Sprintf("%s  %s", labels.EventDate(e), m.styles.Severity(e.Severity).Render(labels.Severity(e.Severity))),
	}
	if len(e.Tags) > 0 {
		lines = append(lines, m.styles.Muted.Render("#"+strings.Join(e.Tags, " #")))
	}
	if e.Description != "" {
		lines = append(lines, "", e.Description)
	}
	return strings.Join(lines, "\n")
}
