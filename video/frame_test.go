package video

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"io"
	"slices"
	"testing"
	"time"
)

func TestRGBToImage(t *testing.T) {
	data := []byte{
		255, 0, 0, 0, 255, 0,
		0, 0, 255, 10, 20, 30,
	}
	img, err := rgbToImage(data, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	r, g, b, a := img.At(1, 1).RGBA()
	if r>>8 != 10 || g>>8 != 20 || b>>8 != 30 || a>>8 != 255 {
		t.Errorf("pixel (1,1) = %d %d %d %d", r>>8, g>>8, b>>8, a>>8)
	}

	if _, err := rgbToImage(data[:5], 2, 2); !errors.Is(err, ErrShortFrame) {
		t.Errorf("short data error = %v", err)
	}
	if _, err := rgbToImage(data, 0, 2); !errors.Is(err, ErrBadFrame) {
		t.Errorf("zero width error = %v", err)
	}
}

func TestScaleTo(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 160, 90))
	if got := scaleTo(src, 160, 90); got != image.Image(src) {
		t.Error("scaleTo() copied an image that already fits")
	}
	got := scaleTo(src, 32, 18)
	if b := got.Bounds(); b.Dx() != 32 || b.Dy() != 18 {
		t.Errorf("scaled to %dx%d", b.Dx(), b.Dy())
	}
}

func TestRawArgs(t *testing.T) {
	args := rawArgs("in.mp4", 1500*time.Millisecond, 160, 90, HWAccelNone)
	for _, want := range []string{"rawvideo", "rgb24", "1.500", "in.mp4"} {
		if !slices.Contains(args, want) {
			t.Errorf("rawArgs() = %v, missing %q", args, want)
		}
	}
	i := slices.Index(args, "-ss")
	j := slices.Index(args, "-i")
	if i < 0 || j < 0 || i > j {
		t.Errorf("-ss must come before -i for fast seeking: %v", args)
	}
}

func bmp(payload []byte) []byte {
	frame := make([]byte, bmpHeaderSize+len(payload))
	frame[0], frame[1] = 'B', 'M'
	binary.LittleEndian.PutUint32(frame[2:6], uint32(len(frame)))
	copy(frame[bmpHeaderSize:], payload)
	return frame
}

func TestReadBMP(t *testing.T) {
	stream := append(bmp([]byte("first")), bmp([]byte("second!"))...)
	r := bytes.NewReader(stream)

	a, err := readBMP(r)
	if err != nil || !bytes.HasSuffix(a, []byte("first")) {
		t.Fatalf("first frame = %q, %v", a, err)
	}
	b, err := readBMP(r)
	if err != nil || !bytes.HasSuffix(b, []byte("second!")) {
		t.Fatalf("second frame = %q, %v", b, err)
	}
	if _, err := readBMP(r); !errors.Is(err, io.EOF) {
		t.Errorf("end of stream error = %v", err)
	}

	if _, err := readBMP(bytes.NewReader([]byte("PNG-not-a-bitmap"))); !errors.Is(err, ErrBadFrame) {
		t.Errorf("bad header error = %v", err)
	}
}

func TestCommandError(t *testing.T) {
	base := errors.New("exit status 1")
	err := commandError("ffmpeg", base, []byte("  No such file  \n"))
	if !errors.Is(err, base) {
		t.Error("commandError() does not wrap")
	}
	if got := err.Error(); got != "ffmpeg: exit status 1\nNo such file" {
		t.Errorf("Error() = %q", got)
	}
	if got := commandError("ffmpeg", base, nil).Error(); got != "ffmpeg: exit status 1" {
		t.Errorf("Error() without output = %q", got)
	}
}
