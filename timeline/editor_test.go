package timeline

import (
	"testing"
	"time"

	"lazytrim/segment"
)

type recordingSeeker struct {
	seeks []time.Duration
}

func (r *recordingSeeker) Seek(p time.Duration) {
	r.seeks = append(r.seeks, p)
}

func (r *recordingSeeker) last() (time.Duration, bool) {
	if len(r.seeks) == 0 {
		return 0, false
	}
	return r.seeks[len(r.seeks)-1], true
}

// newTestEditor lays a 100s video over 100 cells, one second per cell.
func newTestEditor(t *testing.T) (*Editor, *segment.List, *recordingSeeker) {
	t.Helper()
	segs := segment.NewList(100 * time.Second)
	seeker := &recordingSeeker{}
	return NewEditor(segs, NewViewport(100), seeker), segs, seeker
}

func addSegment(t *testing.T, segs *segment.List, start, end time.Duration) string {
	t.Helper()
	id, err := segs.Add(start)
	if err != nil {
		t.Fatal(err)
	}
	if err := segs.Update(id, start, end); err != nil {
		t.Fatal(err)
	}
	return id
}

func TestDragStartHandlePastEnd(t *testing.T) {
	e, segs, _ := newTestEditor(t)
	id := addSegment(t, segs, 10*time.Second, 20*time.Second)

	target := Target{Kind: TargetSegment, SegmentID: id, Handle: HandleStart}
	if !e.Press(ButtonLeft, 10, target) {
		t.Fatal("Press() did not start a drag")
	}
	e.Move(25)
	e.Release(25)

	s, _ := segs.Get(id)
	want := 20*time.Second - segment.MinLength
	if s.Start != want || s.End != 20*time.Second {
		t.Errorf("segment = [%v, %v], want [%v, 20s]", s.Start, s.End, want)
	}
	if e.Gesture() != GestureIdle {
		t.Errorf("Gesture() = %v after release", e.Gesture())
	}
}

func TestDragEndHandle(t *testing.T) {
	e, segs, _ := newTestEditor(t)
	id := addSegment(t, segs, 10*time.Second, 20*time.Second)

	e.Press(ButtonLeft, 19, Target{Kind: TargetSegment, SegmentID: id, Handle: HandleEnd})
	e.Move(35)
	if s, _ := segs.Get(id); s.Start != 10*time.Second || s.End != 35*time.Second {
		t.Errorf("after move right = [%v, %v], want [10s, 35s]", s.Start, s.End)
	}
	e.Move(2)
	e.Release(2)
	if s, _ := segs.Get(id); s.End != 10*time.Second+segment.MinLength {
		t.Errorf("end dragged before start = %v, want start+min", s.End)
	}
}

func TestDragBodyPreservesLength(t *testing.T) {
	tests := []struct {
		name      string
		to        float64
		wantStart time.Duration
	}{
		{"right", 40, 35 * time.Second},
		{"clamped at end", 97, 90 * time.Second},
		{"clamped at start", 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, segs, seeker := newTestEditor(t)
			id := addSegment(t, segs, 10*time.Second, 20*time.Second)

			// grab 5s into the segment
			e.Press(ButtonLeft, 15, Target{Kind: TargetSegment, SegmentID: id, Handle: HandleBody})
			e.Move(tt.to)
			e.Release(tt.to)

			s, _ := segs.Get(id)
			if s.Start != tt.wantStart {
				t.Errorf("start = %v, want %v", s.Start, tt.wantStart)
			}
			if s.Length() != 10*time.Second {
				t.Errorf("length = %v, want 10s", s.Length())
			}
			if len(seeker.seeks) != 0 {
				t.Errorf("segment drag seeked: %v", seeker.seeks)
			}
		})
	}
}

func TestClickSeeksAtZoomOne(t *testing.T) {
	e, _, seeker := newTestEditor(t)

	if !e.Press(ButtonLeft, 40, Target{Kind: TargetBackground}) {
		t.Fatal("Press() on background ignored")
	}
	if e.Gesture() != GestureClick {
		t.Errorf("Gesture() = %v, want click", e.Gesture())
	}
	e.Release(40)

	if got, ok := seeker.last(); !ok || got != 40*time.Second {
		t.Errorf("seek = %v (%v), want 40s", got, ok)
	}
}

func TestPanDoesNotSeek(t *testing.T) {
	e, _, seeker := newTestEditor(t)
	e.viewport.SetZoom(2, 0)

	e.Press(ButtonLeft, 40, Target{Kind: TargetBackground})
	if e.Gesture() != GesturePanning {
		t.Fatalf("Gesture() = %v, want panning", e.Gesture())
	}
	e.Move(30)
	e.Release(30)

	if len(seeker.seeks) != 0 {
		t.Errorf("pan seeked: %v", seeker.seeks)
	}
	if e.viewport.Scroll() != 10 {
		t.Errorf("Scroll() = %v, want 10", e.viewport.Scroll())
	}

	// a press and release in place is still a click
	e.Press(ButtonLeft, 40, Target{Kind: TargetBackground})
	e.Release(40)
	if got, ok := seeker.last(); !ok || got != 25*time.Second {
		t.Errorf("seek = %v (%v), want 25s", got, ok)
	}
}

func TestMiddleButtonPansWithoutSeeking(t *testing.T) {
	e, _, seeker := newTestEditor(t)
	e.viewport.SetZoom(4, 0)

	e.Press(ButtonMiddle, 50, Target{Kind: TargetPlayhead})
	e.Release(50)
	if len(seeker.seeks) != 0 {
		t.Errorf("middle click seeked: %v", seeker.seeks)
	}
}

func TestPlayheadDragSeeks(t *testing.T) {
	e, _, seeker := newTestEditor(t)

	e.Press(ButtonLeft, 10, Target{Kind: TargetPlayhead})
	e.Move(20)
	e.Move(30)
	e.Release(31)

	want := []time.Duration{20 * time.Second, 30 * time.Second, 31 * time.Second}
	if len(seeker.seeks) != len(want) {
		t.Fatalf("seeks = %v, want %v", seeker.seeks, want)
	}
	for i := range want {
		if seeker.seeks[i] != want[i] {
			t.Errorf("seek[%d] = %v, want %v", i, seeker.seeks[i], want[i])
		}
	}
}

func TestOneGestureAtATime(t *testing.T) {
	e, segs, _ := newTestEditor(t)
	id := addSegment(t, segs, 10*time.Second, 20*time.Second)

	e.Press(ButtonLeft, 50, Target{Kind: TargetPlayhead})
	if e.Press(ButtonLeft, 15, Target{Kind: TargetSegment, SegmentID: id}) {
		t.Error("second Press() started a session")
	}
	if e.Gesture() != GestureDraggingPlayhead {
		t.Errorf("Gesture() = %v, want playhead", e.Gesture())
	}
	if _, _, ok := e.DraggedSegment(); ok {
		t.Error("DraggedSegment() reported a drag")
	}

	e.Cancel()
	if e.Gesture() != GestureIdle {
		t.Errorf("Gesture() = %v after Cancel", e.Gesture())
	}
}

func TestPressIgnoresNothing(t *testing.T) {
	e, _, _ := newTestEditor(t)
	if e.Press(ButtonLeft, 10, Target{Kind: TargetNone}) {
		t.Error("Press() on nothing started a session")
	}
	if e.Press(ButtonLeft, 10, Target{Kind: TargetSegment, SegmentID: "missing"}) {
		t.Error("Press() on an unknown segment started a session")
	}
}

func TestWheel(t *testing.T) {
	e, _, _ := newTestEditor(t)
	e.SetLeft(10)

	e.Wheel(2, 60, WheelZoom)
	if e.viewport.Zoom() != 2 {
		t.Fatalf("Zoom() = %v, want 2", e.viewport.Zoom())
	}
	// pointer at column 50 keeps 50s under it
	if got := e.Mapper().PositionToTime(60); got != 50*time.Second {
		t.Errorf("time under pointer = %v, want 50s", got)
	}

	before := e.viewport.Scroll()
	e.Wheel(1, 60, WheelPan)
	if e.viewport.Scroll() != before+PanStep {
		t.Errorf("Scroll() = %v, want %v", e.viewport.Scroll(), before+PanStep)
	}
}

func TestHitSegment(t *testing.T) {
	m := Mapper{Duration: 100 * time.Second, Width: 100, Left: 2, Zoom: 1}
	segs := []segment.Segment{
		{ID: "a", Start: 10 * time.Second, End: 20 * time.Second},
		{ID: "b", Start: 18 * time.Second, End: 30 * time.Second},
	}

	tests := []struct {
		x      float64
		want   Target
		wantOK bool
	}{
		{12, Target{Kind: TargetSegment, SegmentID: "a", Handle: HandleStart}, true},
		{17, Target{Kind: TargetSegment, SegmentID: "a", Handle: HandleBody}, true},
		{20, Target{Kind: TargetSegment, SegmentID: "b", Handle: HandleStart}, true},
		{25, Target{Kind: TargetSegment, SegmentID: "b", Handle: HandleBody}, true},
		{31, Target{Kind: TargetSegment, SegmentID: "b", Handle: HandleEnd}, true},
		{32, Target{}, false},
		{5, Target{}, false},
	}
	for _, tt := range tests {
		got, ok := HitSegment(m, segs, tt.x)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("HitSegment(x=%v) = %+v, %v; want %+v, %v", tt.x, got, ok, tt.want, tt.wantOK)
		}
	}
}
