package video

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Tools names the external binaries lazytrim drives.
type Tools struct {
	FFmpeg  string
	FFprobe string
	FFplay  string
	Chafa   string
}

func DefaultTools() Tools {
	return Tools{FFmpeg: "ffmpeg", FFprobe: "ffprobe", FFplay: "ffplay", Chafa: "chafa"}
}

func (t Tools) withDefaults() Tools {
	d := DefaultTools()
	if t.FFmpeg == "" {
		t.FFmpeg = d.FFmpeg
	}
	if t.FFprobe == "" {
		t.FFprobe = d.FFprobe
	}
	if t.FFplay == "" {
		t.FFplay = d.FFplay
	}
	if t.Chafa == "" {
		t.Chafa = d.Chafa
	}
	return t
}

type dependency struct {
	name, bin, pkg string
}

// CheckDependencies verifies the binaries are on PATH. The editor needs all
// four; headless commands only need ffmpeg and ffprobe.
func (t Tools) CheckDependencies(editor bool) error {
	t = t.withDefaults()
	required := []dependency{
		{"ffmpeg", t.FFmpeg, "ffmpeg"},
		{"ffprobe", t.FFprobe, "ffmpeg"},
	}
	if editor {
		required = append(required,
			dependency{"ffplay", t.FFplay, "ffmpeg"},
			dependency{"chafa", t.Chafa, "chafa"},
		)
	}
	for _, d := range required {
		if _, err := exec.LookPath(d.bin); err != nil {
			return fmt.Errorf("%s not found (%s). %s", d.name, d.bin, installHint(d.pkg))
		}
	}
	return nil
}

func installHint(pkg string) string {
	switch runtime.GOOS {
	case "darwin":
		return "Install: brew install " + pkg
	case "linux":
		return "Install: apt-get install " + pkg + " (Debian/Ubuntu) or your distribution's package"
	case "windows":
		return "Install " + pkg + " and add it to PATH"
	default:
		return "Install " + pkg
	}
}
