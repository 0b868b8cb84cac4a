package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"lazytrim/config"
	"lazytrim/logging"
	"lazytrim/segment"
	"lazytrim/thumbnail"
	"lazytrim/ui"
	"lazytrim/video"
)

var version = "dev"

type CLI struct {
	config.Config `embed:""`

	Edit    EditCmd    `cmd:"" default:"withargs" help:"Open a video in the timeline editor."`
	Export  ExportCmd  `cmd:"" help:"Cut segments out of a video without the editor."`
	Thumbs  ThumbsCmd  `cmd:"" help:"Write the thumbnail strip of a video as JPEG files."`
	Version VersionCmd `cmd:"" help:"Print the version."`
}

type EditCmd struct {
	Video string `arg:"" type:"existingfile" help:"Video to edit."`
}

func (c *EditCmd) Run(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	tools := cfg.Tools()
	if err := tools.CheckDependencies(true); err != nil {
		return err
	}

	logger, closer, err := logging.ForEditor(cfg.LogFile, cfg.LogLevel, cfg.Debug)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer closer.Close()

	ctx := context.Background()
	hw := detectHWAccel(ctx, cfg, tools)
	logger.Info("opening video", "path", logging.SanitizePath(c.Video), "hwaccel", hw.String())

	player, err := video.NewPlayer(ctx, c.Video, video.PlayerOptions{
		Tools:   tools,
		HWAccel: hw,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("open video: %w", err)
	}
	defer player.Close()

	opts := ui.Options{
		Generator:     thumbnail.NewGenerator(cfg.Thumbnail(), logger),
		ThumbDelay:    cfg.ThumbDelay,
		Exporter:      video.NewExporter(tools.FFmpeg, logger),
		ExportWorkers: cfg.ExportWorkers,
		Logger:        logger,
	}
	if cfg.OffscreenThumbnails() {
		grabber, err := video.NewGrabber(c.Video, player.Duration(), video.GrabberOptions{
			FFmpeg:  tools.FFmpeg,
			HWAccel: hw,
			Logger:  logger,
		})
		if err != nil {
			logger.Warn("off-screen thumbnails unavailable, using the player", "err", err)
		} else {
			defer grabber.Close()
			opts.Thumbs = grabber
		}
	}

	p := tea.NewProgram(
		ui.NewModel(player, opts),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		logger.Error("editor stopped", "err", err)
		return err
	}
	return nil
}

type ExportCmd struct {
	Video    string   `arg:"" type:"existingfile" help:"Video to cut."`
	Segments []string `name:"segment" short:"s" required:"" help:"Range to keep as start-end, e.g. 1:05-1:30.5. Repeatable."`
	Merge    bool     `help:"Join the segments into one file."`
	Out      []string `short:"o" help:"Output path: one when merging, else one per segment. Defaults to names next to the video."`
	Name     string   `help:"Output name, resolved next to the video. Ignored with --out."`
	Aspect   string   `default:"original" enum:"original,16:9,9:16,1:1,4:5" help:"Crop to an aspect ratio (${enum})."`
}

func (c *ExportCmd) Run(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	tools := cfg.Tools()
	if err := tools.CheckDependencies(false); err != nil {
		return err
	}
	logger := logging.ForCommand(cfg.LogLevel, cfg.Debug)

	spans := make([]segment.Span, 0, len(c.Segments))
	for _, s := range c.Segments {
		span, err := segment.ParseSpan(s)
		if err != nil {
			return fmt.Errorf("--segment %q: %w", s, err)
		}
		spans = append(spans, span)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	props, err := video.Probe(ctx, tools.FFprobe, c.Video)
	if err != nil {
		return fmt.Errorf("read video info: %w", err)
	}
	for _, span := range spans {
		if span.End > props.Duration {
			return fmt.Errorf("segment %s ends after the video (%s)", span, segment.FormatTime(props.Duration))
		}
	}

	opts := video.ExportOptions{
		Input:       c.Video,
		Segments:    spans,
		Merge:       c.Merge,
		Name:        c.Name,
		Outputs:     c.Out,
		AspectRatio: parseAspect(c.Aspect),
		Width:       props.Width,
		Height:      props.Height,
		Workers:     cfg.ExportWorkers,
	}
	logger.Info("exporting", "segments", len(spans), "merge", c.Merge, "command", video.BuildFFmpegCommand(opts))

	progress := make(chan float64, 100)
	done := make(chan struct{})
	go func() {
		defer close(done)
		reportProgress(progress, logger)
	}()

	outputs, err := video.NewExporter(tools.FFmpeg, logger).Export(ctx, opts, progress)
	<-done
	if errors.Is(err, context.Canceled) {
		return errors.New("export cancelled")
	}
	if err != nil {
		return err
	}
	for _, out := range outputs {
		fmt.Println(out)
	}
	return nil
}

// reportProgress draws a bar on an interactive stderr and logs otherwise.
// It returns once progress is closed.
func reportProgress(progress <-chan float64, logger *slog.Logger) {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		for p := range progress {
			logger.Debug("export progress", "percent", int(p*100))
		}
		return
	}

	bar := progressbar.NewOptions(100,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("exporting"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
	)
	for p := range progress {
		_ = bar.Set(int(p * 100))
	}
	_ = bar.Finish()
	fmt.Fprintln(os.Stderr)
}

func parseAspect(s string) video.AspectRatio {
	for _, opt := range video.AspectRatioOptions {
		if strings.EqualFold(opt.Label, s) {
			return opt.Ratio
		}
	}
	return video.AspectOriginal
}

type ThumbsCmd struct {
	Video string `arg:"" type:"existingfile" help:"Video to sample."`
	Width int    `default:"120" help:"Timeline width in cells the strip is laid out for."`
	Out   string `short:"o" type:"path" default:"thumbs" help:"Directory for the JPEG files."`
}

func (c *ThumbsCmd) Run(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if c.Width < 1 {
		return fmt.Errorf("--width %d: must be positive", c.Width)
	}
	tools := cfg.Tools()
	if err := tools.CheckDependencies(false); err != nil {
		return err
	}
	logger := logging.ForCommand(cfg.LogLevel, cfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	props, err := video.Probe(ctx, tools.FFprobe, c.Video)
	if err != nil {
		return fmt.Errorf("read video info: %w", err)
	}
	grabber, err := video.NewGrabber(c.Video, props.Duration, video.GrabberOptions{
		FFmpeg:  tools.FFmpeg,
		HWAccel: detectHWAccel(ctx, cfg, tools),
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	defer grabber.Close()

	gen := thumbnail.NewGenerator(cfg.Thumbnail(), logger)
	strip, err := gen.Generate(ctx, gen.Begin(), grabber, c.Width)
	if err != nil {
		return fmt.Errorf("generate thumbnails: %w", err)
	}

	if err := os.MkdirAll(c.Out, 0o755); err != nil {
		return err
	}
	written := 0
	for i, frame := range strip.Frames {
		if frame.Placeholder() {
			logger.Warn("no frame captured", "at", frame.Label)
			continue
		}
		path := filepath.Join(c.Out, fmt.Sprintf("thumb_%03d.jpg", i))
		if err := os.WriteFile(path, frame.Image, 0o644); err != nil {
			return err
		}
		written++
	}
	fmt.Printf("Wrote %d of %d thumbnails to %s\n", written, len(strip.Frames), c.Out)
	return nil
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println("lazytrim", version)
	return nil
}

func detectHWAccel(ctx context.Context, cfg *config.Config, tools video.Tools) video.HWAccel {
	if !cfg.HWAccel {
		return video.HWAccelNone
	}
	return video.DetectHWAccel(ctx, tools.FFmpeg)
}

func main() {
	config.LoadDotEnv()

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("lazytrim"),
		kong.Description("Trim videos on a zoomable terminal timeline."),
		kong.UsageOnError(),
	)
	err := ctx.Run(&cli.Config)
	ctx.FatalIfErrorf(err)
}
