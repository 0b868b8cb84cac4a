package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os/exec"
	"time"

	"github.com/nfnt/resize"
)

// stillArgs decodes the frame at position as a BMP at the source size.
func stillArgs(path string, position time.Duration, hw HWAccel) []string {
	args := append([]string{"-hide_banner"}, hw.InputArgs()...)
	return append(args,
		"-ss", formatSeconds(position),
		"-i", path,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "bmp",
		"-loglevel", "error",
		"-",
	)
}

// rawArgs decodes the frame at position as packed RGB, letterboxed to
// exactly width x height.
func rawArgs(path string, position time.Duration, width, height int, hw HWAccel) []string {
	scale := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2",
		width, height, width, height,
	)
	args := append([]string{"-hide_banner"}, hw.InputArgs()...)
	return append(args,
		"-ss", formatSeconds(position),
		"-i", path,
		"-frames:v", "1",
		"-vf", scale,
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-loglevel", "error",
		"-",
	)
}

func decodeStill(ctx context.Context, ffmpeg, path string, position time.Duration, hw HWAccel) ([]byte, error) {
	cmd := exec.CommandContext(ctx, ffmpeg, stillArgs(path, position, hw)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, commandError("ffmpeg still", err, stderr.Bytes())
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("still at %s: %w", formatSeconds(position), ErrShortFrame)
	}
	return stdout.Bytes(), nil
}

func decodeRaw(ctx context.Context, ffmpeg, path string, position time.Duration, width, height int, hw HWAccel) (*image.RGBA, error) {
	cmd := exec.CommandContext(ctx, ffmpeg, rawArgs(path, position, width, height, hw)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, commandError("ffmpeg frame", err, stderr.Bytes())
	}
	return rgbToImage(stdout.Bytes(), width, height)
}

func rgbToImage(data []byte, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("frame %dx%d: %w", width, height, ErrBadFrame)
	}
	want := width * height * 3
	if len(data) < want {
		return nil, fmt.Errorf("got %d of %d bytes: %w", len(data), want, ErrShortFrame)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i, j := 0, 0; i < want; i, j = i+3, j+4 {
		img.Pix[j] = data[i]
		img.Pix[j+1] = data[i+1]
		img.Pix[j+2] = data[i+2]
		img.Pix[j+3] = 0xff
	}
	return img, nil
}

// scaleTo returns img at width x height, resizing only when needed.
func scaleTo(img image.Image, width, height int) image.Image {
	b := img.Bounds()
	if width <= 0 || height <= 0 || (b.Dx() == width && b.Dy() == height) {
		return img
	}
	return resize.Resize(uint(width), uint(height), img, resize.Bilinear)
}
