package segment

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidSpan = errors.New("invalid span")

// Span is a plain time range handed to the export backend.
type Span struct {
	Start time.Duration
	End   time.Duration
}

func (s Span) Length() time.Duration {
	return s.End - s.Start
}

func (s Span) String() string {
	return FormatTime(s.Start) + "-" + FormatTime(s.End)
}

// ParseSpan parses "START-END" where each side is seconds ("12.5"),
// "MM:SS(.fff)" or "HH:MM:SS(.fff)".
func ParseSpan(s string) (Span, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 2 {
		return Span{}, fmt.Errorf("%w: %q", ErrInvalidSpan, s)
	}
	start, err := ParseTime(parts[0])
	if err != nil {
		return Span{}, fmt.Errorf("%w: start of %q: %v", ErrInvalidSpan, s, err)
	}
	end, err := ParseTime(parts[1])
	if err != nil {
		return Span{}, fmt.Errorf("%w: end of %q: %v", ErrInvalidSpan, s, err)
	}
	if end-start < MinLength {
		return Span{}, fmt.Errorf("%w: %q is shorter than %s", ErrInvalidSpan, s, MinLength)
	}
	return Span{Start: start, End: end}, nil
}

func ParseTime(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty time")
	}
	fields := strings.Split(s, ":")
	if len(fields) > 3 {
		return 0, fmt.Errorf("too many fields in %q", s)
	}

	var total float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("bad number %q", f)
		}
		// only the last field may carry a fraction
		if i < len(fields)-1 && v != float64(int64(v)) {
			return 0, fmt.Errorf("fractional field %q", f)
		}
		total = total*60 + v
	}
	return time.Duration(total * float64(time.Second)).Round(time.Millisecond), nil
}

// FormatTime renders d as MM:SS.cc (hundredths), the timeline label format.
func FormatTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	cs := int64(d / (10 * time.Millisecond))
	mins := cs / 6000
	secs := (cs / 100) % 60
	return fmt.Sprintf("%02d:%02d.%02d", mins, secs, cs%100)
}
