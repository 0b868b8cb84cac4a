package timeline

import (
	"math"
	"time"

	"lazytrim/segment"
)

type Button int

const (
	ButtonLeft Button = iota
	ButtonMiddle
	ButtonRight
)

type Handle int

const (
	HandleBody Handle = iota
	HandleStart
	HandleEnd
)

func (h Handle) String() string {
	switch h {
	case HandleStart:
		return "start"
	case HandleEnd:
		return "end"
	}
	return "body"
}

type TargetKind int

const (
	TargetNone TargetKind = iota
	TargetBackground
	TargetPlayhead
	TargetSegment
)

// Target is what a pointer press landed on.
type Target struct {
	Kind      TargetKind
	SegmentID string
	Handle    Handle
}

type GestureKind int

const (
	GestureIdle GestureKind = iota
	GestureClick
	GesturePanning
	GestureDraggingPlayhead
	GestureDraggingSegment
)

func (g GestureKind) String() string {
	switch g {
	case GestureClick:
		return "click"
	case GesturePanning:
		return "panning"
	case GestureDraggingPlayhead:
		return "playhead"
	case GestureDraggingSegment:
		return "segment"
	}
	return "idle"
}

// WheelMode selects what a wheel tick does.
type WheelMode int

const (
	WheelNone WheelMode = iota
	WheelZoom
	WheelPan
)

// Seeker moves the playhead.
type Seeker interface {
	Seek(position time.Duration)
}

// Session is one pointer gesture, alive from press to release.
type Session interface {
	Kind() GestureKind
	Move(x float64)
	End(x float64)
}

// Editor routes pointer input on the timeline. It holds at most one Session;
// a press while a session is active is ignored.
type Editor struct {
	segments *segment.List
	viewport *Viewport
	seeker   Seeker
	left     float64
	session  Session
}

func NewEditor(segments *segment.List, viewport *Viewport, seeker Seeker) *Editor {
	return &Editor{
		segments: segments,
		viewport: viewport,
		seeker:   seeker,
	}
}

// SetLeft sets the screen position of the first timeline cell.
func (e *Editor) SetLeft(left float64) {
	e.left = left
}

func (e *Editor) Mapper() Mapper {
	return e.viewport.Mapper(e.segments.Duration(), e.left)
}

// Gesture reports the active gesture, GestureIdle when none.
func (e *Editor) Gesture() GestureKind {
	if e.session == nil {
		return GestureIdle
	}
	return e.session.Kind()
}

// DraggedSegment returns the segment and handle under an active segment drag.
func (e *Editor) DraggedSegment() (string, Handle, bool) {
	s, ok := e.session.(*segmentSession)
	if !ok {
		return "", HandleBody, false
	}
	return s.id, s.handle, true
}

// Press starts a gesture. It reports whether a session was started.
func (e *Editor) Press(b Button, x float64, target Target) bool {
	if e.session != nil || target.Kind == TargetNone {
		return false
	}

	switch b {
	case ButtonMiddle:
		e.session = e.newPan(x, false)
	case ButtonLeft:
		switch target.Kind {
		case TargetPlayhead:
			e.session = &playheadSession{editor: e}
		case TargetSegment:
			s := e.newSegmentDrag(target, x)
			if s == nil {
				return false
			}
			e.session = s
		case TargetBackground:
			if e.viewport.Zoom() > MinZoom {
				e.session = e.newPan(x, true)
			} else {
				e.session = &clickSession{editor: e}
			}
		}
	}
	return e.session != nil
}

func (e *Editor) Move(x float64) {
	if e.session != nil {
		e.session.Move(x)
	}
}

// Release finishes the active gesture.
func (e *Editor) Release(x float64) {
	if e.session == nil {
		return
	}
	s := e.session
	e.session = nil
	s.End(x)
}

// Cancel drops the active gesture without applying the release.
func (e *Editor) Cancel() {
	e.session = nil
}

// Wheel applies ticks (positive = zoom in / scroll right) at screen
// position x.
func (e *Editor) Wheel(ticks int, x float64, mode WheelMode) {
	switch mode {
	case WheelZoom:
		e.viewport.ZoomAt(ticks, x-e.left)
	case WheelPan:
		e.viewport.Pan(ticks)
	}
}

func (e *Editor) seek(x float64) {
	if e.seeker == nil || e.segments.Duration() <= 0 {
		return
	}
	e.seeker.Seek(e.Mapper().PositionToTime(x))
}

func (e *Editor) newPan(x float64, seekOnClick bool) *panSession {
	return &panSession{
		editor:       e,
		originX:      x,
		originScroll: e.viewport.Scroll(),
		seekOnClick:  seekOnClick,
	}
}

func (e *Editor) newSegmentDrag(target Target, x float64) *segmentSession {
	seg, ok := e.segments.Get(target.SegmentID)
	if !ok {
		return nil
	}
	return &segmentSession{
		editor: e,
		id:     seg.ID,
		handle: target.Handle,
		start:  seg.Start,
		end:    seg.End,
		offset: e.Mapper().PositionToTime(x) - seg.Start,
	}
}

// clickSession seeks where the button is released.
type clickSession struct {
	editor *Editor
}

func (s *clickSession) Kind() GestureKind { return GestureClick }
func (s *clickSession) Move(float64)      {}
func (s *clickSession) End(x float64)     { s.editor.seek(x) }

// panSession drags the content with the pointer. A pan that never moved is a
// click and seeks when seekOnClick is set.
type panSession struct {
	editor       *Editor
	originX      float64
	originScroll float64
	moved        bool
	seekOnClick  bool
}

func (s *panSession) Kind() GestureKind { return GesturePanning }

func (s *panSession) Move(x float64) {
	if x != s.originX {
		s.moved = true
	}
	s.editor.viewport.ScrollTo(s.originScroll - (x - s.originX))
}

func (s *panSession) End(x float64) {
	if s.moved {
		s.Move(x)
		return
	}
	if s.seekOnClick {
		s.editor.seek(x)
	}
}

type playheadSession struct {
	editor *Editor
}

func (s *playheadSession) Kind() GestureKind { return GestureDraggingPlayhead }
func (s *playheadSession) Move(x float64)    { s.editor.seek(x) }
func (s *playheadSession) End(x float64)     { s.editor.seek(x) }

// segmentSession resizes or moves one segment. start and end are the bounds
// captured at press; the handle that is not dragged stays fixed.
type segmentSession struct {
	editor *Editor
	id     string
	handle Handle
	start  time.Duration
	end    time.Duration
	offset time.Duration
}

func (s *segmentSession) Kind() GestureKind { return GestureDraggingSegment }

func (s *segmentSession) Move(x float64) {
	t := s.editor.Mapper().PositionToTime(x)
	start, end := s.bounds(t, s.editor.segments.Duration())
	// the segment may have been removed mid-drag
	_ = s.editor.segments.Update(s.id, start, end)
}

func (s *segmentSession) End(x float64) { s.Move(x) }

func (s *segmentSession) bounds(t, duration time.Duration) (time.Duration, time.Duration) {
	switch s.handle {
	case HandleStart:
		return min(t, s.end-segment.MinLength), s.end
	case HandleEnd:
		return s.start, max(t, s.start+segment.MinLength)
	}

	length := s.end - s.start
	start := t - s.offset
	end := start + length
	if start < 0 {
		start, end = 0, length
	}
	if end > duration {
		start, end = duration-length, duration
	}
	return start, end
}

// HitSegment finds the segment part under screen position x. Handles win
// over bodies and later segments are drawn over earlier ones.
func HitSegment(m Mapper, segs []segment.Segment, x float64) (Target, bool) {
	col := int(math.Floor(x - m.Left))
	for i := len(segs) - 1; i >= 0; i-- {
		first, last := SegmentColumns(m, segs[i])
		if col < first || col > last {
			continue
		}
		t := Target{Kind: TargetSegment, SegmentID: segs[i].ID, Handle: HandleBody}
		switch {
		case col == last:
			t.Handle = HandleEnd
		case col == first:
			t.Handle = HandleStart
		}
		return t, true
	}
	return Target{}, false
}

// SegmentColumns returns the first and last cell a segment covers, relative
// to the mapper's Left. A segment always covers at least one cell.
func SegmentColumns(m Mapper, s segment.Segment) (int, int) {
	first := m.Column(s.Start)
	last := int(math.Ceil(m.TimeToPixel(s.End)-m.Left)) - 1
	if last < first {
		last = first
	}
	return first, last
}
