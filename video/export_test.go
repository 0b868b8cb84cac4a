package video

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"lazytrim/segment"
)

func span(start, end float64) segment.Span {
	return segment.Span{
		Start: time.Duration(start * float64(time.Second)),
		End:   time.Duration(end * float64(time.Second)),
	}
}

func TestBuildCropFilter(t *testing.T) {
	tests := []struct {
		name  string
		w, h  int
		ratio AspectRatio
		want  string
	}{
		{"landscape to square", 1920, 1080, Aspect1x1, "crop=1080:1080"},
		{"landscape to portrait", 1920, 1080, Aspect9x16, "crop=606:1080"},
		{"portrait to landscape", 1080, 1920, Aspect16x9, "crop=1080:606"},
		{"original", 1920, 1080, AspectOriginal, ""},
		{"unknown size", 0, 0, Aspect1x1, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildCropFilter(tt.w, tt.h, tt.ratio); got != tt.want {
				t.Errorf("buildCropFilter() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEncodeArgs(t *testing.T) {
	args := encodeArgs("in.mp4", span(10, 12.5), "crop=100:100", "out.mp4")
	joined := strings.Join(args, " ")
	for _, want := range []string{
		"-ss 10.000 -i in.mp4 -t 2.500",
		"-vf crop=100:100",
		"-c:v libx264 -preset fast -crf 18",
		"-c:a aac -b:a 192k",
		"-avoid_negative_ts make_zero",
		"-progress pipe:2",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("encodeArgs() = %s\nmissing %q", joined, want)
		}
	}
	if args[len(args)-1] != "out.mp4" {
		t.Errorf("output must be last: %v", args)
	}
	if slices.Contains(encodeArgs("in.mp4", span(0, 1), "", "out.mp4"), "-vf") {
		t.Error("encodeArgs() adds -vf without a crop")
	}
}

func TestConcat(t *testing.T) {
	got := concatList([]string{"/tmp/a.mp4", "/tmp/it's.mp4"})
	want := "file '/tmp/a.mp4'\nfile '/tmp/it'\\''s.mp4'\n"
	if got != want {
		t.Errorf("concatList() = %q, want %q", got, want)
	}

	args := strings.Join(concatArgs("list.txt", "out.mp4"), " ")
	if !strings.Contains(args, "-f concat -safe 0 -i list.txt -c copy") {
		t.Errorf("concatArgs() = %s", args)
	}
}

func TestParseProgress(t *testing.T) {
	tests := []struct {
		line   string
		length time.Duration
		want   float64
		ok     bool
	}{
		{"out_time_us=1000000", 4 * time.Second, 0.25, true},
		{"out_time_us=9000000", 4 * time.Second, 1, true},
		{"out_time_us=-5", 4 * time.Second, 0, true},
		{"out_time_us=N/A", 4 * time.Second, 0, false},
		{"out_time_us=100", 0, 0, false},
		{"frame=10", 4 * time.Second, 0, false},
	}
	for _, tt := range tests {
		got, ok := parseProgress(tt.line, tt.length)
		if got != tt.want || ok != tt.ok {
			t.Errorf("parseProgress(%q) = %v, %v, want %v, %v", tt.line, got, ok, tt.want, tt.ok)
		}
	}
}

func TestIsProgressLine(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"progress=continue", true},
		{"bitrate=N/A", true},
		{"speed=1.2x", true},
		{"[libx264 @ 0x1] using cpu capabilities", false},
		{"Error opening input: No such file", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isProgressLine(tt.line); got != tt.want {
			t.Errorf("isProgressLine(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestOutputNames(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "clip.mov")

	if got := OutputNames(input, "", 3, true); !slices.Equal(got, []string{filepath.Join(dir, "clip_edited.mp4")}) {
		t.Errorf("merged default = %v", got)
	}
	want := []string{
		filepath.Join(dir, "clip_1.mp4"),
		filepath.Join(dir, "clip_2.mp4"),
	}
	if got := OutputNames(input, "", 2, false); !slices.Equal(got, want) {
		t.Errorf("separate default = %v, want %v", got, want)
	}
	if got := OutputNames(input, "final.mkv", 1, true); got[0] != filepath.Join(dir, "final.mp4") {
		t.Errorf("relative name = %v", got)
	}
	abs := filepath.Join(t.TempDir(), "out")
	if got := OutputNames(input, abs, 1, true); got[0] != abs+".mp4" {
		t.Errorf("absolute name = %v", got)
	}

	if err := os.WriteFile(filepath.Join(dir, "clip_edited.mp4"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if got := OutputNames(input, "", 1, true); got[0] != filepath.Join(dir, "clip_edited_001.mp4") {
		t.Errorf("existing file not avoided: %v", got)
	}
}

func TestBuildFFmpegCommand(t *testing.T) {
	opts := ExportOptions{
		Input:    filepath.Join(t.TempDir(), "clip.mp4"),
		Segments: []segment.Span{span(1, 3), span(5, 6)},
		Merge:    true,
	}
	got := BuildFFmpegCommand(opts)
	if !strings.HasPrefix(got, "ffmpeg -y -ss 1.000 -i clip.mp4 -t 2.000") {
		t.Errorf("BuildFFmpegCommand() = %s", got)
	}
	if !strings.HasSuffix(got, "clip_edited.mp4  (+1 more, then concat)") {
		t.Errorf("BuildFFmpegCommand() = %s", got)
	}
	if strings.Contains(got, "pipe:2") {
		t.Errorf("progress flags leaked: %s", got)
	}
	if BuildFFmpegCommand(ExportOptions{}) != "" {
		t.Error("empty export has a command")
	}
}

func TestProgressTracker(t *testing.T) {
	out := make(chan float64, 16)
	tr := newProgressTracker([]segment.Span{span(0, 3), span(10, 11)}, out)

	tr.set(0, 0.5)
	if got := <-out; got != 0.375 {
		t.Errorf("after half of the long segment = %v, want 0.375", got)
	}
	tr.set(0, 0.25)
	tr.set(1, 1)
	if got := <-out; got != 0.625 {
		t.Errorf("after the short segment = %v, want 0.625", got)
	}
	tr.set(0, 1)
	if got := <-out; got != 0.99 {
		t.Errorf("all encoded = %v, want 0.99 until finish", got)
	}
	tr.finish()
	if got := <-out; got != 1 {
		t.Errorf("finish = %v", got)
	}
	if len(out) != 0 {
		t.Errorf("%d extra updates", len(out))
	}
}

func TestExportValidation(t *testing.T) {
	e := NewExporter("ffmpeg-not-used", nil)
	ctx := context.Background()

	progress := make(chan float64, 1)
	if _, err := e.Export(ctx, ExportOptions{Input: "in.mp4"}, progress); !errors.Is(err, ErrNoSegments) {
		t.Errorf("Export() without segments = %v", err)
	}
	if _, open := <-progress; open {
		t.Error("progress not closed")
	}

	_, err := e.Export(ctx, ExportOptions{
		Input:    "in.mp4",
		Segments: []segment.Span{span(0, 1), span(2, 3)},
		Outputs:  []string{"only-one.mp4"},
	}, nil)
	if err == nil || !strings.Contains(err.Error(), "1 output paths for 2 files") {
		t.Errorf("Export() with missing outputs = %v", err)
	}
}
