package video

import (
	"testing"
	"time"
)

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewCache[string, int](2)
	c.Put("a", 1)
	c.Put("b", 2)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a missing")
	}
	c.Put("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %v, %v", v, ok)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}

	c.Put("a", 10)
	if v, _ := c.Get("a"); v != 10 {
		t.Errorf("Put did not replace: %v", v)
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d", c.Len())
	}
}

func TestQuantize(t *testing.T) {
	frame := 40 * time.Millisecond
	tests := []struct {
		in, want time.Duration
	}{
		{0, 0},
		{39 * time.Millisecond, 0},
		{40 * time.Millisecond, 40 * time.Millisecond},
		{1001 * time.Millisecond, 1000 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := quantize(tt.in, frame); got != tt.want {
			t.Errorf("quantize(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if got := quantize(123, 0); got != 123 {
		t.Errorf("quantize with no frame length = %v", got)
	}
}
