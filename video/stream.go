package video

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"
)

const bmpHeaderSize = 14

// FrameStream is a long-lived ffmpeg process decoding from a start position
// and writing one BMP per frame to its stdout. Playback reads from it instead
// of starting a process per frame.
type FrameStream struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	cancel context.CancelFunc
	width  int
	height int
	fps    int
	mu     sync.Mutex
}

func streamArgs(path string, start time.Duration, fps int, hw HWAccel) []string {
	args := append([]string{"-hide_banner"}, hw.InputArgs()...)
	return append(args,
		"-ss", formatSeconds(start),
		"-i", path,
		"-vf", fmt.Sprintf("fps=%d", fps),
		"-f", "image2pipe",
		"-vcodec", "bmp",
		"-loglevel", "error",
		"-",
	)
}

func NewFrameStream(ffmpeg, path string, start time.Duration, width, height, fps int, hw HWAccel) (*FrameStream, error) {
	if width <= 0 || height <= 0 || fps <= 0 {
		return nil, fmt.Errorf("frame stream %dx%d@%d: %w", width, height, fps, ErrBadFrame)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, ffmpeg, streamArgs(path, start, fps, hw)...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("start ffmpeg stream: %w", err)
	}

	return &FrameStream{
		cmd:    cmd,
		stdout: stdout,
		cancel: cancel,
		width:  width,
		height: height,
		fps:    fps,
	}, nil
}

// Close stops the ffmpeg process. It is safe to call more than once.
func (s *FrameStream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.cmd != nil {
		_ = s.cmd.Wait()
		s.cmd = nil
	}
	if s.stdout != nil {
		_ = s.stdout.Close()
		s.stdout = nil
	}
}

// NeedsRestart reports whether the stream was started for other settings.
func (s *FrameStream) NeedsRestart(width, height, fps int) bool {
	if s == nil {
		return true
	}
	return s.width != width || s.height != height || s.fps != fps
}

// NextFrame reads the next BMP from the stream.
func (s *FrameStream) NextFrame() ([]byte, error) {
	s.mu.Lock()
	stdout := s.stdout
	s.mu.Unlock()
	if stdout == nil {
		return nil, io.EOF
	}
	return readBMP(stdout)
}

func readBMP(r io.Reader) ([]byte, error) {
	header := make([]byte, bmpHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}
	if header[0] != 'B' || header[1] != 'M' {
		return nil, fmt.Errorf("bmp header %q: %w", header[:2], ErrBadFrame)
	}
	size := binary.LittleEndian.Uint32(header[2:6])
	if size < bmpHeaderSize {
		return nil, fmt.Errorf("bmp size %d: %w", size, ErrBadFrame)
	}

	frame := make([]byte, size)
	copy(frame, header)
	if _, err := io.ReadFull(r, frame[bmpHeaderSize:]); err != nil {
		return nil, err
	}
	return frame, nil
}

func formatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}
