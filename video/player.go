package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"lazytrim/logging"
)

const frameRenderTimeout = 5 * time.Second

type PlayerOptions struct {
	Tools   Tools
	HWAccel HWAccel
	Quality Quality
	Logger  *slog.Logger
}

// Player drives the preview: it renders the frame at the current position as
// chafa symbols and, while playing, advances through a FrameStream with
// audio from ffplay. It also serves as a shared thumbnail frame source.
type Player struct {
	tools      Tools
	hw         HWAccel
	path       string
	properties *Properties
	logger     *slog.Logger
	cache      *Cache[frameKey, string]
	audio      *AudioPlayer
	ready      chan time.Duration

	mu            sync.Mutex
	position      time.Duration
	playing       bool
	width         int
	height        int
	quality       Quality
	currentFrame  string
	stopChan      chan struct{}
	stream        *FrameStream
	frameInterval time.Duration
}

func NewPlayer(ctx context.Context, path string, opts PlayerOptions) (*Player, error) {
	tools := opts.Tools.withDefaults()
	props, err := Probe(ctx, tools.FFprobe, path)
	if err != nil {
		return nil, fmt.Errorf("read video info: %w", err)
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	return &Player{
		tools:      tools,
		hw:         opts.HWAccel,
		path:       path,
		properties: props,
		logger:     logging.WithComponent(opts.Logger, "player"),
		cache:      NewCache[frameKey, string](DefaultCacheCapacity),
		audio:      NewAudioPlayer(tools.FFplay, path),
		ready:      make(chan time.Duration, 4),
		quality:    opts.Quality,
		stopChan:   make(chan struct{}),
	}, nil
}

func (p *Player) Path() string            { return p.path }
func (p *Player) Properties() *Properties { return p.properties }
func (p *Player) Duration() time.Duration { return p.properties.Duration }
func (p *Player) FrameDuration() time.Duration {
	return p.properties.FrameDuration()
}

// FrameReady reports the position of every frame the player shows.
func (p *Player) FrameReady() <-chan time.Duration {
	return p.ready
}

// SetSize sets the preview size in cells and re-renders when paused.
func (p *Player) SetSize(width, height int) {
	p.mu.Lock()
	changed := width != p.width || height != p.height
	p.width, p.height = width, height
	pos, quality, playing := p.position, p.quality, p.playing
	p.mu.Unlock()

	if changed && !playing && width > 0 && height > 0 {
		p.showFrame(pos, width, height, quality)
	}
}

func (p *Player) Play() error {
	p.mu.Lock()
	if p.playing {
		p.mu.Unlock()
		return nil
	}
	if p.position >= p.properties.Duration {
		p.position = 0
	}
	p.playing = true
	p.stopChan = make(chan struct{})
	p.frameInterval = time.Second / time.Duration(p.previewFPS())
	pos := p.position
	p.mu.Unlock()

	p.audio.Start(pos)
	go p.playbackLoop()
	return nil
}

func (p *Player) Pause() {
	p.mu.Lock()
	if !p.playing {
		p.mu.Unlock()
		return
	}
	p.playing = false
	close(p.stopChan)
	stream := p.stream
	p.stream = nil
	pos, width, height, quality := p.position, p.width, p.height, p.quality
	p.mu.Unlock()

	p.audio.Stop()
	if stream != nil {
		stream.Close()
	}
	if width > 0 && height > 0 {
		p.showFrame(pos, width, height, quality)
	}
}

func (p *Player) Toggle() error {
	if p.IsPlaying() {
		p.Pause()
		return nil
	}
	return p.Play()
}

func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.position
}

// Seek moves the playhead. While paused the frame there is rendered before
// Seek returns.
func (p *Player) Seek(position time.Duration) {
	p.mu.Lock()
	position = max(0, min(position, p.properties.Duration))
	p.position = position
	width, height, quality, playing := p.width, p.height, p.quality, p.playing
	stream := p.stream
	p.stream = nil
	p.mu.Unlock()

	p.audio.Stop()
	if playing {
		if stream != nil {
			stream.Close()
		}
		p.audio.Start(position)
		return
	}

	if width > 0 && height > 0 {
		p.showFrame(position, width, height, quality)
		return
	}
	p.notify(position)
}

func (p *Player) CurrentFrame() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentFrame
}

func (p *Player) Quality() Quality {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.quality
}

func (p *Player) CycleQuality() Quality {
	p.mu.Lock()
	p.quality = p.quality.Next()
	quality, pos := p.quality, p.position
	width, height, playing := p.width, p.height, p.playing
	p.mu.Unlock()

	if !playing && width > 0 && height > 0 {
		p.showFrame(pos, width, height, quality)
	}
	return quality
}

func (p *Player) ToggleMute()   { p.audio.ToggleMute() }
func (p *Player) IsMuted() bool { return p.audio.IsMuted() }

func (p *Player) Close() {
	p.Pause()
	p.audio.Stop()
}

// RenderFrame decodes the frame at the current position as an image.
func (p *Player) RenderFrame(width, height int) (image.Image, error) {
	ctx, cancel := context.WithTimeout(context.Background(), frameRenderTimeout)
	defer cancel()
	return decodeRaw(ctx, p.tools.FFmpeg, p.path, p.Position(), width, height, p.hw)
}

func (p *Player) previewFPS() int {
	fps := int(p.properties.FPS)
	switch {
	case fps <= 0:
		return 24
	case fps > 30:
		return 30
	}
	return fps
}

func (p *Player) notify(position time.Duration) {
	select {
	case p.ready <- position:
	default:
	}
}

func (p *Player) playbackLoop() {
	var stream *FrameStream
	defer func() {
		if stream != nil {
			stream.Close()
		}
	}()

	for {
		p.mu.Lock()
		if !p.playing {
			p.mu.Unlock()
			return
		}
		stop := p.stopChan
		width, height, quality := p.width, p.height, p.quality
		pos, interval := p.position, p.frameInterval
		// a Seek while playing drops the stream so it restarts at pos
		if p.stream == nil && stream != nil {
			stream.Close()
			stream = nil
		}
		p.mu.Unlock()

		select {
		case <-stop:
			return
		default:
		}

		if width <= 0 || height <= 0 {
			time.Sleep(10 * time.Millisecond)
			continue
		}

		fps := p.previewFPS()
		if stream.NeedsRestart(width, height, fps) {
			if stream != nil {
				stream.Close()
			}
			s, err := NewFrameStream(p.tools.FFmpeg, p.path, pos, width, height, fps, p.hw)
			if err != nil {
				p.logger.Warn("start stream", "err", err)
				time.Sleep(20 * time.Millisecond)
				continue
			}
			stream = s
			p.mu.Lock()
			p.stream = s
			p.mu.Unlock()
		}

		bmp, err := stream.NextFrame()
		if err != nil {
			stream.Close()
			stream = nil
			p.mu.Lock()
			p.stream = nil
			p.mu.Unlock()
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), frameRenderTimeout)
		frame, err := symbolize(ctx, p.tools.Chafa, bytes.NewReader(bmp), width, height, quality)
		cancel()
		if err != nil {
			p.logger.Debug("render frame", "err", err)
			continue
		}
		p.cache.Put(p.key(pos, width, height, quality), frame)

		p.mu.Lock()
		if !p.playing {
			p.mu.Unlock()
			return
		}
		p.currentFrame = frame
		p.position += interval
		ended := p.position >= p.properties.Duration
		if ended {
			p.position = p.properties.Duration
			p.playing = false
			p.stream = nil
		}
		shown := p.position
		p.mu.Unlock()

		p.notify(shown)
		if ended {
			p.audio.Stop()
			return
		}
	}
}

func (p *Player) key(pos time.Duration, width, height int, quality Quality) frameKey {
	return frameKey{
		Position: quantize(pos, p.properties.FrameDuration()),
		Width:    width,
		Height:   height,
		Quality:  quality,
	}
}

// showFrame renders the still at position, from the cache when possible.
func (p *Player) showFrame(position time.Duration, width, height int, quality Quality) {
	defer p.notify(position)

	key := p.key(position, width, height, quality)
	if frame, ok := p.cache.Get(key); ok {
		p.setFrame(frame)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), frameRenderTimeout)
	defer cancel()
	bmp, err := decodeStill(ctx, p.tools.FFmpeg, p.path, position, p.hw)
	if err != nil {
		p.logger.Debug("decode still", "position", position, "err", err)
		return
	}
	frame, err := symbolize(ctx, p.tools.Chafa, bytes.NewReader(bmp), width, height, quality)
	if err != nil {
		p.logger.Debug("render still", "position", position, "err", err)
		return
	}
	p.cache.Put(key, frame)
	p.setFrame(frame)
}

func (p *Player) setFrame(frame string) {
	p.mu.Lock()
	p.currentFrame = frame
	p.mu.Unlock()
}
