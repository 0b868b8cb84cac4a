package video

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"sync"
	"time"

	"lazytrim/logging"
)

const (
	DefaultGrabWidth  = 160
	DefaultGrabHeight = 90
	grabTimeout       = 10 * time.Second
)

var ErrNoFrame = errors.New("no frame decoded yet")

type GrabberOptions struct {
	FFmpeg  string
	HWAccel HWAccel
	// Width and Height are the decode size; RenderFrame rescales from it.
	Width  int
	Height int
	Logger *slog.Logger
}

// Grabber is an off-screen frame source. Every Seek starts a one-frame
// decode in the background; a newer Seek cancels the previous decode and its
// result is discarded. It never plays, so the preview is left alone while
// thumbnails are captured.
type Grabber struct {
	ffmpeg   string
	path     string
	hw       HWAccel
	duration time.Duration
	width    int
	height   int
	logger   *slog.Logger
	cache    *Cache[frameKey, *image.RGBA]
	ready    chan time.Duration

	mu       sync.Mutex
	position time.Duration
	frame    *image.RGBA
	seq      uint64
	cancel   context.CancelFunc
	closed   bool
	wg       sync.WaitGroup
}

func NewGrabber(path string, duration time.Duration, opts GrabberOptions) (*Grabber, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("grabber: %w", err)
	}
	if opts.FFmpeg == "" {
		opts.FFmpeg = DefaultTools().FFmpeg
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = DefaultGrabWidth, DefaultGrabHeight
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	return &Grabber{
		ffmpeg:   opts.FFmpeg,
		path:     path,
		hw:       opts.HWAccel,
		duration: duration,
		width:    opts.Width,
		height:   opts.Height,
		logger:   logging.WithComponent(opts.Logger, "grabber"),
		cache:    NewCache[frameKey, *image.RGBA](DefaultCacheCapacity),
		ready:    make(chan time.Duration, 4),
	}, nil
}

func (g *Grabber) Duration() time.Duration { return g.duration }
func (g *Grabber) IsPlaying() bool         { return false }
func (g *Grabber) Play() error             { return nil }
func (g *Grabber) Pause()                  {}

func (g *Grabber) FrameReady() <-chan time.Duration {
	return g.ready
}

func (g *Grabber) Position() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.position
}

// Seek moves to position and decodes the frame there in the background.
// FrameReady reports position once it is available.
func (g *Grabber) Seek(position time.Duration) {
	position = max(0, min(position, g.duration))

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	g.position = position
	g.seq++
	if g.cancel != nil {
		g.cancel()
	}
	ctx, cancel := context.WithTimeout(context.Background(), grabTimeout)
	g.cancel = cancel

	g.wg.Add(1)
	go g.decode(ctx, cancel, g.seq, position)
}

func (g *Grabber) decode(ctx context.Context, cancel context.CancelFunc, seq uint64, position time.Duration) {
	defer g.wg.Done()
	defer cancel()

	key := frameKey{Position: position, Width: g.width, Height: g.height}
	img, ok := g.cache.Get(key)
	if !ok {
		var err error
		img, err = decodeRaw(ctx, g.ffmpeg, g.path, position, g.width, g.height, g.hw)
		if err != nil {
			if ctx.Err() == nil {
				g.logger.Debug("decode failed", "position", position, "err", err)
			}
			return
		}
		g.cache.Put(key, img)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed || seq != g.seq {
		return
	}
	g.frame = img
	select {
	case g.ready <- position:
	default:
	}
}

// RenderFrame returns the last decoded frame scaled to width x height.
func (g *Grabber) RenderFrame(width, height int) (image.Image, error) {
	g.mu.Lock()
	frame := g.frame
	g.mu.Unlock()
	if frame == nil {
		return nil, ErrNoFrame
	}
	return scaleTo(frame, width, height), nil
}

// Close cancels any running decode and waits for it.
func (g *Grabber) Close() {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.closed = true
	if g.cancel != nil {
		g.cancel()
	}
	g.mu.Unlock()
	g.wg.Wait()
}
