// Package segment holds the cut list: the ordered set of time ranges that an
// export keeps from the source video.
package segment

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// MinLength is the shortest span a segment may cover after any edit.
	MinLength = 100 * time.Millisecond
	// DefaultLength is the span a new segment covers when there is room.
	DefaultLength = 10 * time.Second
)

var (
	ErrNotFound = errors.New("segment not found")
	ErrTooShort = errors.New("video shorter than minimum segment length")
)

type Segment struct {
	ID    string
	Start time.Duration
	End   time.Duration
}

func (s Segment) Length() time.Duration {
	return s.End - s.Start
}

// Contains reports whether t falls inside the segment, bounds included.
func (s Segment) Contains(t time.Duration) bool {
	return t >= s.Start && t <= s.End
}

// List is the single owner of cut segments. Every mutation goes through Add,
// Remove or Update so that the length and bounds invariants always hold.
type List struct {
	mu       sync.RWMutex
	segments []Segment
	duration time.Duration
	newID    func() string
}

func NewList(duration time.Duration) *List {
	return &List{
		duration: duration,
		newID:    uuid.NewString,
	}
}

// SetDuration changes the timeline length and re-clamps every segment into it.
// Segments that can no longer hold MinLength are dropped.
func (l *List) SetDuration(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.duration = d
	kept := l.segments[:0]
	for _, s := range l.segments {
		start, end, ok := l.normalize(s.Start, s.End)
		if !ok {
			continue
		}
		s.Start, s.End = start, end
		kept = append(kept, s)
	}
	l.segments = kept
}

func (l *List) Duration() time.Duration {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.duration
}

// Reset removes every segment, as on loading a new video.
func (l *List) Reset(duration time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.segments = nil
	l.duration = duration
}

// Add appends a segment seeded at current and returns its id.
func (l *List) Add(current time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.duration < MinLength {
		return "", ErrTooShort
	}
	if current < 0 {
		current = 0
	}
	if current > l.duration {
		current = l.duration
	}
	end := min(current+DefaultLength, l.duration)
	start := current
	if end-start < MinLength {
		start = max(0, end-MinLength)
	}

	s := Segment{ID: l.newID(), Start: start, End: end}
	l.segments = append(l.segments, s)
	return s.ID, nil
}

// Restore replaces the segments with a snapshot taken from List, as on undo.
// Snapshot bounds are re-clamped to the current duration.
func (l *List) Restore(snapshot []Segment) {
	l.mu.Lock()
	defer l.mu.Unlock()

	restored := make([]Segment, 0, len(snapshot))
	for _, s := range snapshot {
		start, end, ok := l.normalize(s.Start, s.End)
		if !ok {
			continue
		}
		restored = append(restored, Segment{ID: s.ID, Start: start, End: end})
	}
	l.segments = restored
}

func (l *List) Remove(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, s := range l.segments {
		if s.ID == id {
			l.segments = append(l.segments[:i], l.segments[i+1:]...)
			return true
		}
	}
	return false
}

// Update replaces the bounds of a segment. Bounds are clamped into the
// timeline and widened to MinLength, keeping start fixed where possible.
func (l *List) Update(id string, start, end time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(id)
	if i < 0 {
		return fmt.Errorf("update %q: %w", id, ErrNotFound)
	}
	s, e, ok := l.normalize(start, end)
	if !ok {
		return fmt.Errorf("update %q: %w", id, ErrTooShort)
	}
	l.segments[i].Start = s
	l.segments[i].End = e
	return nil
}

// SetStartAt moves the start of a segment to t when t is before its end.
func (l *List) SetStartAt(id string, t time.Duration) error {
	s, ok := l.Get(id)
	if !ok {
		return fmt.Errorf("set start %q: %w", id, ErrNotFound)
	}
	if t >= s.End {
		return nil
	}
	return l.Update(id, min(t, s.End-MinLength), s.End)
}

// SetEndAt moves the end of a segment to t when t is after its start.
func (l *List) SetEndAt(id string, t time.Duration) error {
	s, ok := l.Get(id)
	if !ok {
		return fmt.Errorf("set end %q: %w", id, ErrNotFound)
	}
	if t <= s.Start {
		return nil
	}
	return l.Update(id, s.Start, max(t, s.Start+MinLength))
}

func (l *List) Get(id string) (Segment, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if i := l.indexOf(id); i >= 0 {
		return l.segments[i], true
	}
	return Segment{}, false
}

// List returns a copy of the segments in insertion order.
func (l *List) List() []Segment {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Segment, len(l.segments))
	copy(out, l.segments)
	return out
}

func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.segments)
}

// TotalDuration sums segment lengths. Overlapping ranges are counted twice.
func (l *List) TotalDuration() time.Duration {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var total time.Duration
	for _, s := range l.segments {
		total += s.Length()
	}
	return total
}

// Spans returns the segment ranges sorted by start, the order they are exported in.
func (l *List) Spans() []Span {
	segs := l.List()
	spans := make([]Span, len(segs))
	for i, s := range segs {
		spans[i] = Span{Start: s.Start, End: s.End}
	}
	sort.SliceStable(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	return spans
}

func (l *List) indexOf(id string) int {
	for i, s := range l.segments {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// normalize must be called with the lock held.
func (l *List) normalize(start, end time.Duration) (time.Duration, time.Duration, bool) {
	if l.duration < MinLength {
		return 0, 0, false
	}
	start = min(max(start, 0), l.duration-MinLength)
	end = min(max(end, start+MinLength), l.duration)
	return start, end, true
}
