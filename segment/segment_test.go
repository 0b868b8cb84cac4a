package segment

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func newTestList(d time.Duration) *List {
	l := NewList(d)
	n := 0
	l.newID = func() string {
		n++
		return fmt.Sprintf("seg-%d", n)
	}
	return l
}

func TestAddSeedsFromCurrentTime(t *testing.T) {
	tests := []struct {
		name      string
		duration  time.Duration
		current   time.Duration
		wantStart time.Duration
		wantEnd   time.Duration
	}{
		{"room for default length", 120 * time.Second, 30 * time.Second, 30 * time.Second, 40 * time.Second},
		{"clamped by duration", 120 * time.Second, 115 * time.Second, 115 * time.Second, 120 * time.Second},
		{"at the very end", 120 * time.Second, 120 * time.Second, 120*time.Second - MinLength, 120 * time.Second},
		{"negative current", 60 * time.Second, -time.Second, 0, 10 * time.Second},
		{"short video", 3 * time.Second, 0, 0, 3 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestList(tt.duration)
			id, err := l.Add(tt.current)
			if err != nil {
				t.Fatalf("Add() error = %v", err)
			}
			s, ok := l.Get(id)
			if !ok {
				t.Fatalf("Get(%q) not found", id)
			}
			if s.Start != tt.wantStart || s.End != tt.wantEnd {
				t.Errorf("Add() = [%v, %v], want [%v, %v]", s.Start, s.End, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestAddRejectsTinyVideo(t *testing.T) {
	l := newTestList(50 * time.Millisecond)
	if _, err := l.Add(0); !errors.Is(err, ErrTooShort) {
		t.Errorf("Add() error = %v, want ErrTooShort", err)
	}
	if l.Len() != 0 {
		t.Errorf("Len() = %d, want 0", l.Len())
	}
}

func TestUpdateKeepsInvariants(t *testing.T) {
	duration := 60 * time.Second
	tests := []struct {
		name       string
		start, end time.Duration
		wantStart  time.Duration
		wantEnd    time.Duration
	}{
		{"valid", 5 * time.Second, 8 * time.Second, 5 * time.Second, 8 * time.Second},
		{"negative start", -2 * time.Second, 8 * time.Second, 0, 8 * time.Second},
		{"end past duration", 50 * time.Second, 70 * time.Second, 50 * time.Second, duration},
		{"inverted", 10 * time.Second, 4 * time.Second, 10 * time.Second, 10*time.Second + MinLength},
		{"start at end of video", duration, duration, duration - MinLength, duration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestList(duration)
			id, _ := l.Add(0)
			if err := l.Update(id, tt.start, tt.end); err != nil {
				t.Fatalf("Update() error = %v", err)
			}
			s, _ := l.Get(id)
			if s.Start != tt.wantStart || s.End != tt.wantEnd {
				t.Errorf("Update() = [%v, %v], want [%v, %v]", s.Start, s.End, tt.wantStart, tt.wantEnd)
			}
			if s.Length() < MinLength || s.Start < 0 || s.End > duration {
				t.Errorf("invariant broken: %+v", s)
			}
		})
	}
}

func TestUpdateUnknownID(t *testing.T) {
	l := newTestList(time.Minute)
	if err := l.Update("nope", 0, time.Second); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestRemoveAndTotals(t *testing.T) {
	l := newTestList(120 * time.Second)
	a, _ := l.Add(0)
	b, _ := l.Add(5 * time.Second)
	c, _ := l.Add(100 * time.Second)

	if got := l.TotalDuration(); got != 30*time.Second {
		t.Errorf("TotalDuration() = %v, want 30s (overlap counted twice)", got)
	}
	if !l.Remove(b) {
		t.Fatalf("Remove(%q) = false", b)
	}
	if l.Remove(b) {
		t.Errorf("second Remove(%q) = true", b)
	}

	segs := l.List()
	if len(segs) != 2 || segs[0].ID != a || segs[1].ID != c {
		t.Errorf("List() = %+v, want [%s %s]", segs, a, c)
	}
	if got := l.TotalDuration(); got != 20*time.Second {
		t.Errorf("TotalDuration() = %v, want 20s", got)
	}
}

func TestListReturnsCopy(t *testing.T) {
	l := newTestList(time.Minute)
	id, _ := l.Add(0)
	segs := l.List()
	segs[0].Start = 30 * time.Second

	s, _ := l.Get(id)
	if s.Start != 0 {
		t.Errorf("mutating List() result changed the model: start = %v", s.Start)
	}
}

func TestRestoreSnapshot(t *testing.T) {
	l := newTestList(time.Minute)
	a, _ := l.Add(0)
	snapshot := l.List()

	b, _ := l.Add(20 * time.Second)
	if err := l.Update(a, 5*time.Second, 8*time.Second); err != nil {
		t.Fatal(err)
	}
	l.Restore(snapshot)

	segs := l.List()
	if len(segs) != 1 || segs[0].ID != a || segs[0].Start != 0 || segs[0].End != 10*time.Second {
		t.Errorf("after Restore: %+v", segs)
	}
	if _, ok := l.Get(b); ok {
		t.Errorf("%s survived Restore", b)
	}

	l.SetDuration(5 * time.Second)
	l.Restore(snapshot)
	if s, _ := l.Get(a); s.End != 5*time.Second {
		t.Errorf("restored segment not clamped: %+v", s)
	}
}

func TestSetStartEndAt(t *testing.T) {
	l := newTestList(time.Minute)
	id, _ := l.Add(10 * time.Second) // [10, 20]

	if err := l.SetStartAt(id, 25*time.Second); err != nil {
		t.Fatal(err)
	}
	if s, _ := l.Get(id); s.Start != 10*time.Second {
		t.Errorf("SetStartAt past end moved start to %v", s.Start)
	}

	if err := l.SetStartAt(id, 12*time.Second); err != nil {
		t.Fatal(err)
	}
	if err := l.SetEndAt(id, 30*time.Second); err != nil {
		t.Fatal(err)
	}
	s, _ := l.Get(id)
	if s.Start != 12*time.Second || s.End != 30*time.Second {
		t.Errorf("got [%v, %v], want [12s, 30s]", s.Start, s.End)
	}

	if err := l.SetEndAt(id, 5*time.Second); err != nil {
		t.Fatal(err)
	}
	if s, _ := l.Get(id); s.End != 30*time.Second {
		t.Errorf("SetEndAt before start moved end to %v", s.End)
	}
}

func TestSpansSortedByStart(t *testing.T) {
	l := newTestList(time.Minute)
	l.Add(40 * time.Second)
	l.Add(5 * time.Second)
	l.Add(20 * time.Second)

	spans := l.Spans()
	for i := 1; i < len(spans); i++ {
		if spans[i-1].Start > spans[i].Start {
			t.Fatalf("Spans() not sorted: %v", spans)
		}
	}
}

func TestSetDurationReclamps(t *testing.T) {
	l := newTestList(time.Minute)
	a, _ := l.Add(5 * time.Second)  // [5, 15]
	b, _ := l.Add(50 * time.Second) // [50, 60]

	l.SetDuration(12 * time.Second)

	sa, ok := l.Get(a)
	if !ok || sa.End != 12*time.Second {
		t.Errorf("segment a = %+v, want end 12s", sa)
	}
	sb, ok := l.Get(b)
	if !ok || sb.Start != 12*time.Second-MinLength || sb.End != 12*time.Second {
		t.Errorf("segment b = %+v, want pinned to the new end", sb)
	}
}

func TestParseSpan(t *testing.T) {
	tests := []struct {
		in      string
		want    Span
		wantErr bool
	}{
		{"10-20", Span{10 * time.Second, 20 * time.Second}, false},
		{"1:30-2:00.5", Span{90 * time.Second, 120*time.Second + 500*time.Millisecond}, false},
		{"00:01:00-00:01:05", Span{60 * time.Second, 65 * time.Second}, false},
		{" 0.25-1 ", Span{250 * time.Millisecond, time.Second}, false},
		{"20-10", Span{}, true},
		{"10-10.05", Span{}, true},
		{"abc-10", Span{}, true},
		{"10", Span{}, true},
		{"1.5:00-2:00", Span{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSpan(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidSpan) {
					t.Errorf("ParseSpan(%q) error = %v, want ErrInvalidSpan", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSpan(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseSpan(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00.00"},
		{1500 * time.Millisecond, "00:01.50"},
		{75*time.Second + 990*time.Millisecond, "01:15.99"},
		{-time.Second, "00:00.00"},
		{61 * time.Minute, "61:00.00"},
	}
	for _, tt := range tests {
		if got := FormatTime(tt.in); got != tt.want {
			t.Errorf("FormatTime(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
