package timeline

import (
	"math"
	"time"
)

const (
	MinZoom  = 1.0
	MaxZoom  = 20.0
	ZoomStep = 0.5
	// PanStep is how far one wheel tick or key press scrolls, in cells.
	PanStep = 8.0
)

// Viewport is the visible window into the zoomed timeline. At zoom 1 the
// whole timeline fits and scroll is always 0.
type Viewport struct {
	width  float64
	zoom   float64
	scroll float64
}

func NewViewport(width float64) *Viewport {
	return &Viewport{width: math.Max(0, width), zoom: MinZoom}
}

func (v *Viewport) Width() float64  { return v.width }
func (v *Viewport) Zoom() float64   { return v.zoom }
func (v *Viewport) Scroll() float64 { return v.scroll }

func (v *Viewport) MaxScroll() float64 {
	return math.Max(0, v.width*v.zoom-v.width)
}

// SetWidth resizes the viewport and re-clamps the scroll offset.
func (v *Viewport) SetWidth(width float64) {
	v.width = math.Max(0, width)
	v.setScroll(v.scroll)
}

// Reset returns to zoom 1, as on loading a new video.
func (v *Viewport) Reset() {
	v.zoom = MinZoom
	v.scroll = 0
}

// ZoomAt changes the zoom by ticks*ZoomStep and keeps the time under
// pointerX (relative to the viewport's left edge) in place.
func (v *Viewport) ZoomAt(ticks int, pointerX float64) {
	if ticks == 0 || v.width <= 0 {
		return
	}
	px := math.Max(0, math.Min(v.width, pointerX))
	frac := (px + v.scroll) / (v.width * v.zoom)

	v.zoom = clampZoom(v.zoom + float64(ticks)*ZoomStep)
	v.setScroll(frac*v.width*v.zoom - px)
}

// SetZoom sets an absolute zoom, anchored at pointerX.
func (v *Viewport) SetZoom(zoom, pointerX float64) {
	if v.width <= 0 {
		v.zoom = clampZoom(zoom)
		return
	}
	px := math.Max(0, math.Min(v.width, pointerX))
	frac := (px + v.scroll) / (v.width * v.zoom)
	v.zoom = clampZoom(zoom)
	v.setScroll(frac*v.width*v.zoom - px)
}

// Pan scrolls by ticks*PanStep. It does nothing at zoom 1.
func (v *Viewport) Pan(ticks int) {
	if v.zoom <= MinZoom {
		return
	}
	v.setScroll(v.scroll + float64(ticks)*PanStep)
}

// ScrollTo sets an absolute scroll offset, clamped.
func (v *Viewport) ScrollTo(offset float64) {
	v.setScroll(offset)
}

// Reveal scrolls the least amount needed to bring content position x into view.
func (v *Viewport) Reveal(x float64) {
	switch {
	case x < v.scroll:
		v.setScroll(x)
	case x >= v.scroll+v.width:
		v.setScroll(x - v.width + 1)
	}
}

// Mapper builds the coordinate transform for the current viewport state.
func (v *Viewport) Mapper(duration time.Duration, left float64) Mapper {
	return Mapper{
		Duration: duration,
		Width:    v.width,
		Left:     left,
		Zoom:     v.zoom,
		Scroll:   v.scroll,
	}
}

func (v *Viewport) setScroll(offset float64) {
	if v.zoom <= MinZoom {
		v.scroll = 0
		return
	}
	v.scroll = math.Max(0, math.Min(v.MaxScroll(), offset))
}

func clampZoom(z float64) float64 {
	return math.Max(MinZoom, math.Min(MaxZoom, z))
}

// MarkerInterval is the spacing of ruler labels. Deeper zoom gives finer
// spacing; near zoom 1 it follows the video length.
func MarkerInterval(zoom float64, duration time.Duration) time.Duration {
	switch {
	case zoom >= 10:
		return time.Second
	case zoom >= 5:
		return 2 * time.Second
	case zoom >= 3:
		return 5 * time.Second
	case zoom >= 2:
		return 10 * time.Second
	case duration > 300*time.Second:
		return 60 * time.Second
	case duration > 60*time.Second:
		return 10 * time.Second
	default:
		return 5 * time.Second
	}
}

// Markers lists every multiple of the marker interval from 0 to duration
// inclusive.
func Markers(duration time.Duration, zoom float64) []time.Duration {
	if duration <= 0 {
		return nil
	}
	step := MarkerInterval(zoom, duration)
	markers := make([]time.Duration, 0, int(duration/step)+1)
	for t := time.Duration(0); t <= duration; t += step {
		markers = append(markers, t)
	}
	return markers
}
