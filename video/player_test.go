package video

import (
	"slices"
	"strings"
	"testing"
	"time"
)

func TestQualityCycle(t *testing.T) {
	q := QualityLow
	var seen []string
	for range 4 {
		seen = append(seen, q.String())
		q = q.Next()
	}
	if want := []string{"LOW", "MEDIUM", "HIGH", "LOW"}; !slices.Equal(seen, want) {
		t.Errorf("cycle = %v, want %v", seen, want)
	}
}

func TestChafaArgs(t *testing.T) {
	args := strings.Join(QualityHigh.chafaArgs(80, 24), " ")
	for _, want := range []string{"--size 80x24", "--colors full", "--dither diffusion"} {
		if !strings.Contains(args, want) {
			t.Errorf("high args %q missing %q", args, want)
		}
	}
	if got, want := Quality(7).chafaArgs(10, 5), QualityMedium.chafaArgs(10, 5); !slices.Equal(got, want) {
		t.Errorf("unknown quality = %v, want the medium preset", got)
	}
}

func TestStreamArgs(t *testing.T) {
	args := streamArgs("clip.mp4", 1500*time.Millisecond, 24, HWAccelVAAPI)
	joined := strings.Join(args, " ")
	for _, want := range []string{"-hwaccel vaapi", "-ss 1.500 -i clip.mp4", "-vf fps=24", "-vcodec bmp"} {
		if !strings.Contains(joined, want) {
			t.Errorf("args %q missing %q", joined, want)
		}
	}
}

func TestNeedsRestart(t *testing.T) {
	var none *FrameStream
	if !none.NeedsRestart(80, 24, 24) {
		t.Error("nil stream should need a start")
	}
	s := &FrameStream{width: 80, height: 24, fps: 24}
	if s.NeedsRestart(80, 24, 24) {
		t.Error("same settings restarted")
	}
	if !s.NeedsRestart(100, 24, 24) || !s.NeedsRestart(80, 24, 30) {
		t.Error("changed settings kept the stream")
	}
}

func TestAudioArgs(t *testing.T) {
	args := audioArgs("clip.mp4", 2*time.Second)
	if args[len(args)-1] != "clip.mp4" || !slices.Contains(args, "-nodisp") {
		t.Errorf("args = %v", args)
	}
	if i := slices.Index(args, "-ss"); i < 0 || args[i+1] != "2.000" {
		t.Errorf("args = %v, want -ss 2.000", args)
	}
}

func TestAudioMutedDoesNotStart(t *testing.T) {
	a := NewAudioPlayer("ffplay-that-does-not-exist", "clip.mp4")
	a.ToggleMute()
	a.Start(0)
	if a.cmd != nil || !a.IsMuted() {
		t.Errorf("muted player started ffplay")
	}
	a.ToggleMute()
	a.Start(0)
	if a.cmd != nil {
		t.Error("missing binary left a command behind")
	}
	a.Stop()
}

func TestToolsDefaults(t *testing.T) {
	tools := Tools{FFmpeg: "/opt/ffmpeg"}.withDefaults()
	if tools.FFmpeg != "/opt/ffmpeg" || tools.FFprobe != "ffprobe" || tools.Chafa != "chafa" {
		t.Errorf("tools = %+v", tools)
	}
}
