// Package layout maps dated events onto a horizontal pixel scale.
//
// The scale shows at most a 25-year window starting at the earliest event.
// Events past the window are reported as hidden, never dropped from data.
// Everything here is pure arithmetic; rendering lives with the front end.
package layout

import (
	"fmt"

	"timeliner/internal/timeline"
)

const (
	// BaseWidth is the track width in pixels at 100% zoom.
	BaseWidth = 2000.0
	// Margin is the horizontal padding on each side of the track.
	Margin = 20.0
	// MaxYearRange is the widest span shown: 24 years between the first and
	// last tick, 25 ticks in total.
	MaxYearRange = 24

	DefaultZoom = 100
	MinZoom     = 0
	MaxZoom     = 200
)

// Position is one event placed on the track.
type Position struct {
	EventID  string
	Year     int
	Month    *int
	Severity timeline.Severity
	// BaseX is the year position; X adds the month offset.
	BaseX float64
	X     float64
	// Jitter is the vertical offset in pixels, in [-15, 15).
	Jitter float64
}

// Tick is a year mark on the scale.
type Tick struct {
	Year  int
	X     float64
	Label string
}

// Layout is the computed scale for one timeline.
type Layout struct {
	MinYear         int
	MaxYear         int
	AdjustedMaxYear int
	YearRange       int
	Zoom            int
	Width           float64
	PixelsPerYear   float64
	Positions       []Position
	// Hidden lists ids of events outside the visible window.
	Hidden    []string
	Ticks     []Tick
	Truncated bool
}

// Advisory is the notice shown when the true span exceeds the window.
// It is empty when nothing was cut off.
func (l *Layout) Advisory() string {
	if !l.Truncated {
		return ""
	}
	return fmt.Sprintf("Timeline spans %d years; only the 25 years %d-%d are shown",
		l.MaxYear-l.MinYear, l.MinYear, l.AdjustedMaxYear)
}

// ClampZoom limits a zoom percentage to the slider range.
func ClampZoom(zoom int) int {
	if zoom < MinZoom {
		return MinZoom
	}
	if zoom > MaxZoom {
		return MaxZoom
	}
	return zoom
}

// TrackWidth returns the pixel width of the track at a zoom percentage.
func TrackWidth(zoom int) float64 {
	return BaseWidth * float64(ClampZoom(zoom)) / 100
}

// Compute lays out events at the given zoom. It returns false when there are
// no events, in which case no track is drawn.
//
// When every visible event falls in one year the range is zero. That single
// year is then stretched over the whole usable track: the year sits on the
// left margin and months spread across the width.
func Compute(events []*timeline.Event, zoom int) (*Layout, bool) {
	if len(events) == 0 {
		return nil, false
	}

	minYear, maxYear := events[0].Year, events[0].Year
	for _, e := range events[1:] {
		if e.Year < minYear {
			minYear = e.Year
		}
		if e.Year > maxYear {
			maxYear = e.Year
		}
	}

	yearRange := maxYear - minYear
	if yearRange > MaxYearRange {
		yearRange = MaxYearRange
	}
	zoom = ClampZoom(zoom)
	width := TrackWidth(zoom)
	usable := width - 2*Margin
	if usable < 0 {
		usable = 0
	}

	l := &Layout{
		MinYear:         minYear,
		MaxYear:         maxYear,
		AdjustedMaxYear: minYear + yearRange,
		YearRange:       yearRange,
		Zoom:            zoom,
		Width:           width,
		PixelsPerYear:   usable,
		Positions:       []Position{},
		Hidden:          []string{},
		Truncated:       maxYear-minYear > MaxYearRange,
	}
	if yearRange > 0 {
		l.PixelsPerYear = usable / float64(yearRange)
	}

	for _, e := range events {
		if e.Year < minYear || e.Year > l.AdjustedMaxYear {
			l.Hidden = append(l.Hidden, e.ID)
			continue
		}
		base := l.yearX(e.Year)
		x := base
		if e.Month != nil {
			x += float64(*e.Month-1) / 12 * l.PixelsPerYear
		}
		l.Positions = append(l.Positions, Position{
			EventID:  e.ID,
			Year:     e.Year,
			Month:    e.Month,
			Severity: e.Severity,
			BaseX:    base,
			X:        x,
			Jitter:   Jitter(e.Year, e.Month, e.Day),
		})
	}

	for y := minYear; y <= l.AdjustedMaxYear; y++ {
		l.Ticks = append(l.Ticks, Tick{
			Year:  y,
			X:     l.yearX(y),
			Label: fmt.Sprintf("%02d", mod100(y)),
		})
	}

	return l, true
}

// yearX is the linear interpolation of a year across the usable track.
func (l *Layout) yearX(year int) float64 {
	return Margin + float64(year-l.MinYear)*l.PixelsPerYear
}

func mod100(y int) int {
	m := y % 100
	if m < 0 {
		m += 100
	}
	return m
}
