// Package timeline converts between video time and timeline columns and
// drives the pointer gestures that edit segments on the timeline.
package timeline

import (
	"math"
	"time"
)

// Mapper converts between time and horizontal positions on a zoomed,
// scrolled timeline. Positions are in cells (or pixels) of the screen;
// Left is the screen position of the first visible cell.
type Mapper struct {
	Duration time.Duration
	Width    float64
	Left     float64
	Zoom     float64
	Scroll   float64
}

// ContentWidth is the width of the whole timeline at the current zoom.
func (m Mapper) ContentWidth() float64 {
	zoom := m.Zoom
	if zoom < MinZoom {
		zoom = MinZoom
	}
	return m.Width * zoom
}

// TimeToPercent places t within the unscaled timeline, 0..100.
func (m Mapper) TimeToPercent(t time.Duration) float64 {
	if m.Duration <= 0 {
		return 0
	}
	return 100 * float64(t) / float64(m.Duration)
}

// TimeToPixel returns the screen position of t, which may fall outside the
// viewport when zoomed in.
func (m Mapper) TimeToPixel(t time.Duration) float64 {
	if m.Duration <= 0 {
		return m.Left
	}
	return m.Left + float64(t)/float64(m.Duration)*m.ContentWidth() - m.Scroll
}

// PositionToTime maps a screen position back to time. The position is
// relative to the viewport, so the scroll offset is added before dividing by
// the scaled width.
func (m Mapper) PositionToTime(x float64) time.Duration {
	width := m.ContentWidth()
	if m.Duration <= 0 || width <= 0 {
		return 0
	}
	frac := (x - m.Left + m.Scroll) / width
	frac = math.Max(0, math.Min(1, frac))
	return time.Duration(math.Round(frac * float64(m.Duration)))
}

// Column is the visible cell index of t, relative to Left. It is negative or
// >= Width when t is scrolled out of view.
func (m Mapper) Column(t time.Duration) int {
	return int(math.Floor(m.TimeToPixel(t) - m.Left))
}

// Visible reports whether t is inside the viewport.
func (m Mapper) Visible(t time.Duration) bool {
	c := m.Column(t)
	return c >= 0 && float64(c) < m.Width
}

// TimeAtColumn is the time at the left edge of a visible cell.
func (m Mapper) TimeAtColumn(col int) time.Duration {
	return m.PositionToTime(m.Left + float64(col))
}
