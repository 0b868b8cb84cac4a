package panels

import (
	"fmt"
	"image"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/nfnt/resize"

	"lazytrim/thumbnail"
	"lazytrim/timeline"
)

const (
	// ThumbRows is the height of the strip in text rows. Each row shows two
	// pixel rows with half blocks.
	ThumbRows = 2
	// sampleWidth is how many pixel columns each thumbnail is reduced to.
	sampleWidth = 16
)

type stripKey struct {
	epoch    uint64
	duration time.Duration
	width    float64
	zoom     float64
	scroll   float64
}

// ThumbStrip draws a captured thumbnail strip under the ruler. Thumbnails
// are reduced once when the strip arrives; the drawn rows are cached until
// the viewport changes.
type ThumbStrip struct {
	strip   thumbnail.Strip
	images  []image.Image
	loading bool
	ready   bool

	key  stripKey
	rows []string
}

func NewThumbStrip() *ThumbStrip {
	return &ThumbStrip{}
}

// Set replaces the strip. Frames that fail to decode are drawn as
// placeholders.
func (s *ThumbStrip) Set(strip thumbnail.Strip) {
	s.strip = strip
	s.images = make([]image.Image, len(strip.Frames))
	for i, f := range strip.Frames {
		img, err := f.Decode()
		if err != nil || img == nil {
			continue
		}
		s.images[i] = resize.Resize(sampleWidth, ThumbRows*2, img, resize.Bilinear)
	}
	s.ready = true
	s.loading = false
	s.rows = nil
}

func (s *ThumbStrip) SetLoading(loading bool) {
	s.loading = loading
	s.rows = nil
}

// Ready reports whether a strip has been set.
func (s *ThumbStrip) Ready() bool {
	return s.ready
}

func (s *ThumbStrip) Loading() bool {
	return s.loading
}

// Rows renders the strip for the visible part of the timeline.
func (s *ThumbStrip) Rows(m timeline.Mapper) []string {
	width := int(m.Width)
	key := stripKey{s.strip.Epoch, m.Duration, m.Width, m.Zoom, m.Scroll}
	if s.rows != nil && key == s.key {
		return s.rows
	}

	if !s.ready || len(s.strip.Frames) == 0 {
		text := ""
		if s.loading {
			text = "generating thumbnails..."
		}
		rows := make([]string, ThumbRows)
		for i := range rows {
			rows[i] = strings.Repeat(" ", max(0, width))
		}
		if text != "" && width > len(text) {
			rows[ThumbRows/2] = DimStyle.Render(text + strings.Repeat(" ", width-len(text)))
		}
		s.key, s.rows = key, rows
		return rows
	}

	var b [ThumbRows]strings.Builder
	for col := 0; col < width; col++ {
		t := m.PositionToTime(m.Left + float64(col) + 0.5)
		i, u := s.frameAt(t, m.Duration)
		img := s.images[i]
		for row := 0; row < ThumbRows; row++ {
			if img == nil {
				b[row].WriteString(DimStyle.Render("░"))
				continue
			}
			x := min(int(u*sampleWidth), sampleWidth-1)
			top := pixelColor(img, x, row*2)
			bottom := pixelColor(img, x, row*2+1)
			b[row].WriteString(lipgloss.NewStyle().Foreground(top).Background(bottom).Render("▀"))
		}
	}

	rows := make([]string, ThumbRows)
	for i := range rows {
		rows[i] = b[i].String()
	}
	s.key, s.rows = key, rows
	return rows
}

// frameAt returns the frame covering t and how far t is into it, 0..1.
func (s *ThumbStrip) frameAt(t, duration time.Duration) (int, float64) {
	frames := s.strip.Frames
	i := sort.Search(len(frames), func(i int) bool { return frames[i].At > t }) - 1
	i = max(0, i)

	end := duration
	if i+1 < len(frames) {
		end = frames[i+1].At
	}
	span := end - frames[i].At
	if span <= 0 {
		return i, 0
	}
	u := float64(t-frames[i].At) / float64(span)
	return i, max(0, min(u, 1))
}

func pixelColor(img image.Image, x, y int) lipgloss.Color {
	b := img.Bounds()
	r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, bl>>8))
}
