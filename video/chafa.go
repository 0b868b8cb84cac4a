package video

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
)

// Quality selects how much work chafa puts into each preview frame.
type Quality int

const (
	QualityLow Quality = iota
	QualityMedium
	QualityHigh
)

func (q Quality) String() string {
	switch q {
	case QualityLow:
		return "LOW"
	case QualityMedium:
		return "MEDIUM"
	case QualityHigh:
		return "HIGH"
	}
	return "UNKNOWN"
}

func (q Quality) Next() Quality {
	return (q + 1) % 3
}

type chafaPreset struct {
	colors     string
	optimize   int
	work       int
	colorSpace string
	dither     string
	extractor  string
}

var chafaPresets = map[Quality]chafaPreset{
	QualityLow:    {"256", 9, 1, "rgb", "none", "average"},
	QualityMedium: {"256", 5, 5, "rgb", "ordered", "average"},
	QualityHigh:   {"full", 3, 9, "din99d", "diffusion", "median"},
}

func (q Quality) chafaArgs(width, height int) []string {
	p, ok := chafaPresets[q]
	if !ok {
		p = chafaPresets[QualityMedium]
	}
	return []string{
		"--format=symbols",
		"--size", fmt.Sprintf("%dx%d", width, height),
		"--colors", p.colors,
		"-O", strconv.Itoa(p.optimize),
		"--work", strconv.Itoa(p.work),
		"--color-space", p.colorSpace,
		"--dither", p.dither,
		"--color-extractor", p.extractor,
		"-",
	}
}

// symbolize turns an encoded image read from in into terminal symbols.
func symbolize(ctx context.Context, chafa string, in io.Reader, width, height int, q Quality) (string, error) {
	cmd := exec.CommandContext(ctx, chafa, q.chafaArgs(width, height)...)
	cmd.Stdin = in
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", commandError("chafa", err, stderr.Bytes())
	}
	return out.String(), nil
}
