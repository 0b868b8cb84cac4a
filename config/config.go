// Package config holds the settings shared by every lazytrim command.
// Values come from flags, then LAZYTRIM_* environment variables, then a
// .env file in the working directory, then the defaults below.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"

	"lazytrim/thumbnail"
	"lazytrim/video"
)

const (
	StrategyOffscreen = "offscreen"
	StrategyShared    = "shared"

	DefaultExportWorkers = 2
	MaxExportWorkers     = 16
	MaxThumbCells        = 64
	MaxThumbTimeout      = 30 * time.Second
)

var ErrInvalid = errors.New("invalid configuration")

// Config is embedded into the kong CLI, so its fields are global flags.
type Config struct {
	FFmpeg  string `name:"ffmpeg" env:"LAZYTRIM_FFMPEG" default:"ffmpeg" help:"ffmpeg binary."`
	FFprobe string `name:"ffprobe" env:"LAZYTRIM_FFPROBE" default:"ffprobe" help:"ffprobe binary."`
	FFplay  string `name:"ffplay" env:"LAZYTRIM_FFPLAY" default:"ffplay" help:"ffplay binary, used for audio."`
	Chafa   string `name:"chafa" env:"LAZYTRIM_CHAFA" default:"chafa" help:"chafa binary, used for the preview."`

	LogLevel string `name:"log-level" env:"LAZYTRIM_LOG_LEVEL" default:"info" enum:"debug,info,warn,error" help:"Log level (${enum})."`
	LogFile  string `name:"log-file" env:"LAZYTRIM_LOG_FILE" type:"path" help:"Write logs to this file while the editor runs."`
	Debug    bool   `name:"debug" env:"LAZYTRIM_DEBUG" help:"Debug logging (to lazytrim.log unless --log-file is set)."`
	HWAccel  bool   `name:"hwaccel" env:"LAZYTRIM_HWACCEL" default:"true" negatable:"" help:"Use hardware decoding when available."`

	ThumbStrategy string        `name:"thumb-strategy" env:"LAZYTRIM_THUMB_STRATEGY" default:"offscreen" enum:"offscreen,shared" help:"Decode thumbnails off-screen or on the preview player (${enum})."`
	ThumbTimeout  time.Duration `name:"thumb-timeout" env:"LAZYTRIM_THUMB_TIMEOUT" default:"1.5s" help:"How long to wait for each thumbnail frame."`
	ThumbDelay    time.Duration `name:"thumb-delay" env:"LAZYTRIM_THUMB_DELAY" default:"300ms" help:"Delay before thumbnails start after a video loads."`
	ThumbCells    int           `name:"thumb-cells" env:"LAZYTRIM_THUMB_CELLS" default:"8" help:"Timeline cells covered by one thumbnail."`

	ExportWorkers int `name:"export-workers" env:"LAZYTRIM_EXPORT_WORKERS" default:"2" help:"Segments encoded at once."`
}

// LoadDotEnv loads .env (or the given files) into the environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(paths ...string) {
	_ = godotenv.Load(paths...)
}

func (c *Config) Validate() error {
	var errs []error
	if c.ThumbStrategy != StrategyOffscreen && c.ThumbStrategy != StrategyShared {
		errs = append(errs, fmt.Errorf("thumb-strategy %q: want %s or %s", c.ThumbStrategy, StrategyOffscreen, StrategyShared))
	}
	if c.ThumbTimeout <= 0 || c.ThumbTimeout > MaxThumbTimeout {
		errs = append(errs, fmt.Errorf("thumb-timeout %s: want (0, %s]", c.ThumbTimeout, MaxThumbTimeout))
	}
	if c.ThumbDelay < 0 {
		errs = append(errs, fmt.Errorf("thumb-delay %s: must not be negative", c.ThumbDelay))
	}
	if c.ThumbCells < 1 || c.ThumbCells > MaxThumbCells {
		errs = append(errs, fmt.Errorf("thumb-cells %d: want 1..%d", c.ThumbCells, MaxThumbCells))
	}
	if c.ExportWorkers < 1 || c.ExportWorkers > MaxExportWorkers {
		errs = append(errs, fmt.Errorf("export-workers %d: want 1..%d", c.ExportWorkers, MaxExportWorkers))
	}
	for name, bin := range map[string]string{"ffmpeg": c.FFmpeg, "ffprobe": c.FFprobe, "ffplay": c.FFplay, "chafa": c.Chafa} {
		if bin == "" {
			errs = append(errs, fmt.Errorf("%s: binary must not be empty", name))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// Tools returns the external binaries to run.
func (c *Config) Tools() video.Tools {
	return video.Tools{FFmpeg: c.FFmpeg, FFprobe: c.FFprobe, FFplay: c.FFplay, Chafa: c.Chafa}
}

// Thumbnail returns the generator settings.
func (c *Config) Thumbnail() thumbnail.Config {
	cfg := thumbnail.DefaultConfig()
	cfg.CellsPerThumb = c.ThumbCells
	cfg.FrameTimeout = c.ThumbTimeout
	return cfg
}

// OffscreenThumbnails reports whether thumbnails use their own decoder.
func (c *Config) OffscreenThumbnails() bool {
	return c.ThumbStrategy != StrategyShared
}
