package video

import (
	"os/exec"
	"sync"
	"time"
)

// AudioPlayer plays the soundtrack through an ffplay subprocess, restarted
// at every seek.
type AudioPlayer struct {
	ffplay string
	path   string
	cmd    *exec.Cmd
	muted  bool
	mu     sync.Mutex
}

func NewAudioPlayer(ffplay, path string) *AudioPlayer {
	return &AudioPlayer{ffplay: ffplay, path: path}
}

func audioArgs(path string, position time.Duration) []string {
	return []string{
		"-nodisp",
		"-autoexit",
		"-vn",
		"-ss", formatSeconds(position),
		"-loglevel", "quiet",
		path,
	}
}

// Start plays from position, replacing any running playback.
func (a *AudioPlayer) Start(position time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.muted || a.ffplay == "" {
		return
	}
	a.stopLocked()
	a.cmd = exec.Command(a.ffplay, audioArgs(a.path, position)...)
	if err := a.cmd.Start(); err != nil {
		a.cmd = nil
	}
}

func (a *AudioPlayer) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopLocked()
}

func (a *AudioPlayer) stopLocked() {
	if a.cmd != nil && a.cmd.Process != nil {
		_ = a.cmd.Process.Kill()
		_ = a.cmd.Wait()
	}
	a.cmd = nil
}

func (a *AudioPlayer) ToggleMute() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.muted = !a.muted
	if a.muted {
		a.stopLocked()
	}
}

func (a *AudioPlayer) IsMuted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.muted
}
