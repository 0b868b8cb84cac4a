// Package thumbnail builds the strip of preview frames shown under the
// timeline. Frames are captured one at a time by seeking a FrameSource and
// waiting for it to report the decoded frame.
package thumbnail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"lazytrim/logging"
	"lazytrim/segment"
)

var (
	ErrSourceUnavailable = errors.New("frame source unavailable")
	ErrInFlight          = errors.New("thumbnail generation already running")
	ErrStale             = errors.New("thumbnail generation superseded")
	ErrFrameTimeout      = errors.New("timed out waiting for frame")
	errSourceClosed      = errors.New("frame source closed")
)

const (
	DefaultThumbWidth    = 160
	DefaultThumbHeight   = 90
	DefaultCellsPerThumb = 8
	DefaultFrameTimeout  = 1500 * time.Millisecond
	DefaultQuality       = 65
	DefaultStartupDelay  = 300 * time.Millisecond
	// ExtraFrames pads the strip so it still covers the bar after a resize.
	ExtraFrames = 2
	// EndMargin keeps the last capture off the final frame, which many
	// decoders cannot seek to.
	EndMargin = 100 * time.Millisecond
	// ReadyTolerance is how far a reported frame may be from the requested
	// time and still count.
	ReadyTolerance = 250 * time.Millisecond
)

// FrameSource is anything that can seek and hand back the frame it shows.
// video.Player and video.Grabber both satisfy it.
type FrameSource interface {
	Duration() time.Duration
	Position() time.Duration
	IsPlaying() bool
	Play() error
	Pause()
	Seek(position time.Duration)
	// FrameReady delivers the position of every newly decoded frame.
	FrameReady() <-chan time.Duration
	RenderFrame(width, height int) (image.Image, error)
}

// Frame is one captured thumbnail. Image holds JPEG bytes; nil marks a
// placeholder for a frame that could not be captured.
type Frame struct {
	At    time.Duration
	Image []byte
	Label string
}

func (f Frame) Placeholder() bool {
	return f.Image == nil
}

// Decode returns the frame as an image.
func (f Frame) Decode() (image.Image, error) {
	if f.Placeholder() {
		return nil, fmt.Errorf("frame at %s: no image", f.Label)
	}
	return jpeg.Decode(bytes.NewReader(f.Image))
}

type Strip struct {
	Epoch  uint64
	Frames []Frame
}

// Captured counts frames that are not placeholders.
func (s Strip) Captured() int {
	n := 0
	for _, f := range s.Frames {
		if !f.Placeholder() {
			n++
		}
	}
	return n
}

type Config struct {
	ThumbWidth    int
	ThumbHeight   int
	CellsPerThumb int
	FrameTimeout  time.Duration
	Quality       int
}

func DefaultConfig() Config {
	return Config{
		ThumbWidth:    DefaultThumbWidth,
		ThumbHeight:   DefaultThumbHeight,
		CellsPerThumb: DefaultCellsPerThumb,
		FrameTimeout:  DefaultFrameTimeout,
		Quality:       DefaultQuality,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ThumbWidth <= 0 {
		c.ThumbWidth = d.ThumbWidth
	}
	if c.ThumbHeight <= 0 {
		c.ThumbHeight = d.ThumbHeight
	}
	if c.CellsPerThumb <= 0 {
		c.CellsPerThumb = d.CellsPerThumb
	}
	if c.FrameTimeout <= 0 {
		c.FrameTimeout = d.FrameTimeout
	}
	if c.Quality <= 0 || c.Quality > 100 {
		c.Quality = d.Quality
	}
	return c
}

// Generator captures thumbnail strips. Only one run may be in flight; each
// request takes a new epoch from Begin so results of superseded runs can be
// recognised and dropped.
type Generator struct {
	cfg     Config
	logger  *slog.Logger
	running atomic.Bool
	epoch   atomic.Uint64
}

func NewGenerator(cfg Config, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Generator{
		cfg:    cfg.withDefaults(),
		logger: logging.WithComponent(logger, "thumbnail"),
	}
}

func (g *Generator) Config() Config {
	return g.cfg
}

// Begin starts a new epoch and returns it.
func (g *Generator) Begin() uint64 {
	return g.epoch.Add(1)
}

// Stale reports whether a newer epoch than epoch has begun.
func (g *Generator) Stale(epoch uint64) bool {
	return epoch < g.epoch.Load()
}

func (g *Generator) Running() bool {
	return g.running.Load()
}

// Count is the number of intervals the strip is split into for a bar of
// width cells. The strip holds Count+1 frames.
func Count(width, cellsPerThumb int) int {
	if width <= 0 || cellsPerThumb <= 0 {
		return ExtraFrames
	}
	return int(math.Ceil(float64(width)/float64(cellsPerThumb))) + ExtraFrames
}

// Times lists the capture times for a strip: count+1 evenly spaced points
// from 0, none later than duration-EndMargin.
func Times(duration time.Duration, width, cellsPerThumb int) []time.Duration {
	if duration <= 0 {
		return nil
	}
	count := Count(width, cellsPerThumb)
	interval := duration / time.Duration(count)
	last := max(duration-EndMargin, 0)

	times := make([]time.Duration, 0, count+1)
	for i := 0; i <= count; i++ {
		times = append(times, min(time.Duration(i)*interval, last))
	}
	return times
}

// Generate captures a strip for a bar of width cells. The source's position
// and play state are restored afterwards. A frame that cannot be captured in
// time becomes a placeholder and the run continues. Cancelling ctx, or a newer
// Begin, stops the run between frames and returns what was captured so far.
func (g *Generator) Generate(ctx context.Context, epoch uint64, src FrameSource, width int) (Strip, error) {
	strip := Strip{Epoch: epoch}
	if src == nil {
		g.logger.Debug("no frame source")
		return strip, ErrSourceUnavailable
	}
	duration := src.Duration()
	if duration <= 0 {
		return strip, nil
	}
	if !g.running.CompareAndSwap(false, true) {
		return strip, ErrInFlight
	}
	defer g.running.Store(false)

	position, playing := src.Position(), src.IsPlaying()
	if playing {
		src.Pause()
	}
	defer func() {
		src.Seek(position)
		if playing {
			if err := src.Play(); err != nil {
				g.logger.Warn("resume playback", "err", err)
			}
		}
	}()

	times := Times(duration, width, g.cfg.CellsPerThumb)
	g.logger.Debug("generating strip", "epoch", epoch, "frames", len(times), "duration", duration)
	start := time.Now()

	strip.Frames = make([]Frame, 0, len(times))
	for _, at := range times {
		if err := ctx.Err(); err != nil {
			return strip, err
		}
		if g.Stale(epoch) {
			return strip, ErrStale
		}
		frame, err := g.capture(ctx, src, at)
		if err != nil {
			if ctx.Err() != nil {
				return strip, ctx.Err()
			}
			g.logger.Warn("capture failed", "at", frame.Label, "err", err)
		}
		strip.Frames = append(strip.Frames, frame)
	}

	g.logger.Debug("strip ready", "epoch", epoch, "captured", strip.Captured(), "took", time.Since(start))
	return strip, nil
}

// capture always returns a frame; on error it is a placeholder.
func (g *Generator) capture(ctx context.Context, src FrameSource, at time.Duration) (Frame, error) {
	frame := Frame{At: at, Label: segment.FormatTime(at)}
	ready := src.FrameReady()

	drain(ready)
	src.Seek(at)
	if err := g.awaitFrame(ctx, ready, at); err != nil {
		return frame, err
	}

	img, err := src.RenderFrame(g.cfg.ThumbWidth, g.cfg.ThumbHeight)
	if err != nil {
		return frame, fmt.Errorf("render frame: %w", err)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: g.cfg.Quality}); err != nil {
		return frame, fmt.Errorf("encode frame: %w", err)
	}
	frame.Image = buf.Bytes()
	return frame, nil
}

func (g *Generator) awaitFrame(ctx context.Context, ready <-chan time.Duration, at time.Duration) error {
	timer := time.NewTimer(g.cfg.FrameTimeout)
	defer timer.Stop()

	for {
		select {
		case pos, ok := <-ready:
			if !ok {
				return errSourceClosed
			}
			if near(pos, at) {
				return nil
			}
		case <-timer.C:
			return ErrFrameTimeout
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func near(a, b time.Duration) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= ReadyTolerance
}

// drain discards notifications left over from earlier seeks.
func drain(ready <-chan time.Duration) {
	for {
		select {
		case _, ok := <-ready:
			if !ok {
				return
			}
		default:
			return
		}
	}
}
