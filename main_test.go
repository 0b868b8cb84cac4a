package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"

	"lazytrim/video"
)

func parseCLI(t *testing.T, args ...string) (*CLI, string) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kong.Exit(func(int) { t.Fatal("kong exited") }))
	if err != nil {
		t.Fatal(err)
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		t.Fatalf("Parse(%v) error = %v", args, err)
	}
	return &cli, ctx.Command()
}

func fixtureFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, []byte("not really a video"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestEditIsDefault(t *testing.T) {
	path := fixtureFile(t)
	cli, cmd := parseCLI(t, path)
	if cmd != "edit <video>" {
		t.Errorf("command = %q, want edit <video>", cmd)
	}
	if cli.Edit.Video != path {
		t.Errorf("video = %q", cli.Edit.Video)
	}
}

func TestExportFlags(t *testing.T) {
	path := fixtureFile(t)
	cli, cmd := parseCLI(t, "export", path, "-s", "0:05-0:10", "--segment", "1:00-1:02.5", "--merge", "--aspect", "9:16", "--export-workers", "4")
	if cmd != "export <video>" {
		t.Fatalf("command = %q", cmd)
	}
	if len(cli.Export.Segments) != 2 || !cli.Export.Merge {
		t.Errorf("segments %v merge %v", cli.Export.Segments, cli.Export.Merge)
	}
	if parseAspect(cli.Export.Aspect) != video.Aspect9x16 {
		t.Errorf("aspect %q", cli.Export.Aspect)
	}
	if cli.ExportWorkers != 4 {
		t.Errorf("global flag not applied: workers %d", cli.ExportWorkers)
	}
}

func TestParseAspect(t *testing.T) {
	tests := map[string]video.AspectRatio{
		"original": video.AspectOriginal,
		"16:9":     video.Aspect16x9,
		"1:1":      video.Aspect1x1,
		"4:5":      video.Aspect4x5,
		"bogus":    video.AspectOriginal,
	}
	for in, want := range tests {
		if got := parseAspect(in); got != want {
			t.Errorf("parseAspect(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestThumbsDefaults(t *testing.T) {
	path := fixtureFile(t)
	cli, cmd := parseCLI(t, "thumbs", path)
	if cmd != "thumbs <video>" || cli.Thumbs.Width != 120 {
		t.Errorf("command %q width %d", cmd, cli.Thumbs.Width)
	}
	if filepath.Base(cli.Thumbs.Out) != "thumbs" {
		t.Errorf("out = %q", cli.Thumbs.Out)
	}
}
