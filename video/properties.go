package video

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

type Properties struct {
	Width    int
	Height   int
	Codec    string
	FPS      float64
	Bitrate  int64
	FileSize int64
	Duration time.Duration
	HasAudio bool
}

type ffprobeOutput struct {
	Streams []struct {
		CodecType  string `json:"codec_type"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		CodecName  string `json:"codec_name"`
		RFrameRate string `json:"r_frame_rate"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
		Size     string `json:"size"`
		BitRate  string `json:"bit_rate"`
	} `json:"format"`
}

// Probe reads stream and container information with ffprobe.
func Probe(ctx context.Context, ffprobe, path string) (*Properties, error) {
	cmd := exec.CommandContext(ctx, ffprobe,
		"-v", "error",
		"-show_entries", "format=duration,size,bit_rate",
		"-show_entries", "stream=codec_type,width,height,codec_name,r_frame_rate",
		"-of", "json",
		path,
	)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		return nil, commandError("ffprobe", err, []byte(stderr.String()))
	}

	props, err := parseProbe(output)
	if err != nil {
		return nil, err
	}
	if props.FileSize == 0 {
		if info, err := os.Stat(path); err == nil {
			props.FileSize = info.Size()
		}
	}
	return props, nil
}

func parseProbe(output []byte) (*Properties, error) {
	var probe ffprobeOutput
	if err := json.Unmarshal(output, &probe); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}

	props := &Properties{}
	found := false
	for _, stream := range probe.Streams {
		switch {
		case stream.CodecType == "audio":
			props.HasAudio = true
		case !found && stream.Width > 0 && stream.Height > 0:
			found = true
			props.Width = stream.Width
			props.Height = stream.Height
			props.Codec = stream.CodecName
			props.FPS = parseFrameRate(stream.RFrameRate)
		}
	}
	if !found {
		return nil, ErrNoVideoStream
	}

	if probe.Format.Duration != "" {
		seconds, err := strconv.ParseFloat(probe.Format.Duration, 64)
		if err == nil && seconds > 0 {
			props.Duration = time.Duration(seconds * float64(time.Second))
		}
	}
	if probe.Format.Size != "" {
		props.FileSize, _ = strconv.ParseInt(probe.Format.Size, 10, 64)
	}
	if probe.Format.BitRate != "" {
		props.Bitrate, _ = strconv.ParseInt(probe.Format.BitRate, 10, 64)
	}
	return props, nil
}

func parseFrameRate(s string) float64 {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		f, _ := strconv.ParseFloat(s, 64)
		return f
	}
	n, _ := strconv.ParseFloat(num, 64)
	d, _ := strconv.ParseFloat(den, 64)
	if d == 0 {
		return 0
	}
	return n / d
}

// FrameDuration is the length of one frame, 1/24s when the rate is unknown.
func (p *Properties) FrameDuration() time.Duration {
	if p.FPS <= 0 {
		return time.Second / 24
	}
	return time.Duration(float64(time.Second) / p.FPS)
}

func (p *Properties) Resolution() string {
	return fmt.Sprintf("%dx%d", p.Width, p.Height)
}

func (p *Properties) FormattedFPS() string {
	return fmt.Sprintf("%.2f fps", p.FPS)
}

func (p *Properties) FormattedBitrate() string {
	if p.Bitrate == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.1f Mbps", float64(p.Bitrate)/1_000_000)
}

func (p *Properties) FormattedFileSize() string {
	return formatBytes(p.FileSize)
}

// EstimateSize scales the file size by the share of the video kept.
func (p *Properties) EstimateSize(kept time.Duration) string {
	if p.FileSize == 0 || p.Duration <= 0 {
		return "N/A"
	}
	ratio := float64(kept) / float64(p.Duration)
	return "~" + formatBytes(int64(float64(p.FileSize)*ratio))
}

func formatBytes(n int64) string {
	if n <= 0 {
		return "N/A"
	}
	mb := float64(n) / (1024 * 1024)
	if mb >= 1024 {
		return fmt.Sprintf("%.1f GB", mb/1024)
	}
	return fmt.Sprintf("%.1f MB", mb)
}
