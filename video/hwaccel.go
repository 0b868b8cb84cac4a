package video

import (
	"context"
	"os/exec"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"
)

type HWAccel string

const (
	HWAccelNone         HWAccel = ""
	HWAccelVideoToolbox HWAccel = "videotoolbox"
	HWAccelVAAPI        HWAccel = "vaapi"
	HWAccelCUDA         HWAccel = "cuda"
	HWAccelDXVA2        HWAccel = "dxva2"
)

var (
	hwAccelMu    sync.Mutex
	hwAccelCache = map[string]HWAccel{}
)

// DetectHWAccel asks ffmpeg which decoders it supports and picks the best
// one for this OS. The answer is remembered per ffmpeg binary.
func DetectHWAccel(ctx context.Context, ffmpeg string) HWAccel {
	hwAccelMu.Lock()
	defer hwAccelMu.Unlock()
	if hw, ok := hwAccelCache[ffmpeg]; ok {
		return hw
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	output, err := exec.CommandContext(ctx, ffmpeg, "-hide_banner", "-hwaccels").Output()
	hw := HWAccelNone
	if err == nil {
		hw = pickHWAccel(runtime.GOOS, parseHWAccels(string(output)))
	}
	hwAccelCache[ffmpeg] = hw
	return hw
}

func parseHWAccels(output string) []string {
	var accels []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasSuffix(line, ":") {
			continue
		}
		accels = append(accels, line)
	}
	return accels
}

func pickHWAccel(goos string, available []string) HWAccel {
	var prefs []HWAccel
	switch goos {
	case "darwin":
		prefs = []HWAccel{HWAccelVideoToolbox}
	case "linux":
		prefs = []HWAccel{HWAccelCUDA, HWAccelVAAPI}
	case "windows":
		prefs = []HWAccel{HWAccelDXVA2, HWAccelCUDA}
	}
	for _, p := range prefs {
		if slices.Contains(available, string(p)) {
			return p
		}
	}
	return HWAccelNone
}

// InputArgs are the flags that go before -i.
func (h HWAccel) InputArgs() []string {
	if h == HWAccelNone {
		return nil
	}
	return []string{"-hwaccel", string(h)}
}

func (h HWAccel) String() string {
	switch h {
	case HWAccelVideoToolbox:
		return "VideoToolbox (macOS)"
	case HWAccelVAAPI:
		return "VAAPI (Linux)"
	case HWAccelCUDA:
		return "CUDA (NVIDIA)"
	case HWAccelDXVA2:
		return "DXVA2 (Windows)"
	}
	return "Software decoding"
}
