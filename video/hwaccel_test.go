package video

import (
	"slices"
	"testing"
)

func TestParseHWAccels(t *testing.T) {
	out := "Hardware acceleration methods:\nvdpau\ncuda\nvaapi\n\n"
	want := []string{"vdpau", "cuda", "vaapi"}
	if got := parseHWAccels(out); !slices.Equal(got, want) {
		t.Errorf("parseHWAccels() = %v, want %v", got, want)
	}
}

func TestPickHWAccel(t *testing.T) {
	tests := []struct {
		goos      string
		available []string
		want      HWAccel
	}{
		{"darwin", []string{"videotoolbox"}, HWAccelVideoToolbox},
		{"linux", []string{"vaapi", "cuda"}, HWAccelCUDA},
		{"linux", []string{"vaapi"}, HWAccelVAAPI},
		{"windows", []string{"cuda", "dxva2"}, HWAccelDXVA2},
		{"linux", nil, HWAccelNone},
		{"plan9", []string{"cuda"}, HWAccelNone},
	}
	for _, tt := range tests {
		if got := pickHWAccel(tt.goos, tt.available); got != tt.want {
			t.Errorf("pickHWAccel(%s, %v) = %q, want %q", tt.goos, tt.available, got, tt.want)
		}
	}
}

func TestInputArgs(t *testing.T) {
	if args := HWAccelNone.InputArgs(); args != nil {
		t.Errorf("InputArgs() = %v, want nil", args)
	}
	if args := HWAccelVAAPI.InputArgs(); !slices.Equal(args, []string{"-hwaccel", "vaapi"}) {
		t.Errorf("InputArgs() = %v", args)
	}
	if !slices.Contains(rawArgs("in.mp4", 0, 16, 9, HWAccelCUDA), "cuda") {
		t.Error("rawArgs() ignores hwaccel")
	}
}
