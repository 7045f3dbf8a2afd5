package ui

import (
	"strings"

	"timeliner/internal/layout"
	"timeliner/internal/timeline"
)

// PixelsPerColumn maps layout pixels onto terminal cells.
const PixelsPerColumn = 10.0

// Marker rows above the axis. Jitter spreads events across them so that
// events in the same year do not sit exactly on top of each other.
const markerRows = 3

// ScaleOptions controls how a layout is drawn.
type ScaleOptions struct {
	// Pan is the first column shown; Width the number of columns. Width <= 0
	// shows the whole track.
	Pan   int
	Width int
	// Selected highlights one event.
	Selected string
	Styles   Styles
}

type cell struct {
	r        rune
	severity timeline.Severity
	event    string
}

// Columns returns the number of terminal columns a layout spans.
func Columns(l *layout.Layout) int {
	return int(l.Width/PixelsPerColumn) + 1
}

// MaxPan returns the largest pan offset that still fills a window of width.
func MaxPan(l *layout.Layout, width int) int {
	if l == nil || width <= 0 {
		return 0
	}
	if m := Columns(l) - width; m > 0 {
		return m
	}
	return 0
}

// Column returns the terminal column of an event, or false if it is hidden.
func Column(l *layout.Layout, eventID string) (int, bool) {
	for _, p := range l.Positions {
		if p.EventID == eventID {
			return int(p.X / PixelsPerColumn), true
		}
	}
	return 0, false
}

func markerRow(jitter float64) int {
	switch {
	case jitter < -5:
		return 0
	case jitter < 5:
		return 1
	default:
		return 2
	}
}

func markerRune(sev timeline.Severity) rune {
	switch sev {
	case timeline.SeverityLow:
		return '·'
	case timeline.SeverityHigh:
		return '◆'
	case timeline.SeverityCritical:
		return '▲'
	default:
		return '●'
	}
}

// RenderScale draws markers, the axis and the two-digit year labels.
func RenderScale(l *layout.Layout, opts ScaleOptions) string {
	cols := Columns(l)
	rows := make([][]cell, markerRows+2)
	for i := range rows {
		rows[i] = make([]cell, cols)
		for j := range rows[i] {
			rows[i][j] = cell{r: ' '}
		}
	}
	axis := rows[markerRows]
	labels := rows[markerRows+1]

	for j := range axis {
		axis[j].r = '─'
	}
	nextFree := 0
	for _, t := range l.Ticks {
		c := int(t.X / PixelsPerColumn)
		if c >= cols {
			continue
		}
		axis[c].r = '┼'
		if c < nextFree {
			continue
		}
		for k, r := range t.Label {
			if c+k < cols {
				labels[c+k].r = r
			}
		}
		nextFree = c + len(t.Label) + 1
	}

	for _, p := range l.Positions {
		c := int(p.X / PixelsPerColumn)
		if c >= cols {
			continue
		}
		row := rows[markerRow(p.Jitter)]
		// the more severe event keeps a shared cell
		if prev := row[c]; prev.event != "" && prev.severity.Rank() >= p.Severity.Rank() {
			continue
		}
		row[c] = cell{r: markerRune(p.Severity), severity: p.Severity, event: p.EventID}
	}

	start, end := 0, cols
	if opts.Width > 0 {
		start = opts.Pan
		if start < 0 {
			start = 0
		}
		if start > cols {
			start = cols
		}
		end = start + opts.Width
		if end > cols {
			end = cols
		}
	}

	lines := make([]string, 0, len(rows))
	for i, row := range rows {
		var b strings.Builder
		for _, c := range row[start:end] {
			s := string(c.r)
			switch {
			case c.r == ' ':
			case c.event != "" && c.event == opts.Selected:
				s = opts.Styles.Selected.Render(s)
			case c.event != "":
				s = opts.Styles.Severity(c.severity).Render(s)
			case i == markerRows:
				s = opts.Styles.Axis.Render(s)
			case i == markerRows+1:
				s = opts.Styles.Tick.Render(s)
			}
			b.WriteString(s)
		}
		lines = append(lines, strings.TrimRight(b.String(), " "))
	}
	return strings.Join(lines, "\n")
}
