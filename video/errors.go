package video

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoVideoStream = errors.New("no video stream")
	ErrNoSegments    = errors.New("no segments to export")
	ErrShortFrame    = errors.New("short frame")
	ErrBadFrame      = errors.New("invalid frame")
)

// commandError wraps a failed external command with what it printed.
func commandError(what string, err error, output []byte) error {
	out := strings.TrimSpace(string(output))
	if out == "" {
		return fmt.Errorf("%s: %w", what, err)
	}
	const maxOutput = 2000
	if len(out) > maxOutput {
		out = "..." + out[len(out)-maxOutput:]
	}
	return fmt.Errorf("%s: %w\n%s", what, err, out)
}
