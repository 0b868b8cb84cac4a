package video

import (
	"bufio"
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"lazytrim/logging"
	"lazytrim/segment"
)

const outputExt = ".mp4"

type AspectRatio int

const (
	AspectOriginal AspectRatio = iota
	Aspect16x9
	Aspect9x16
	Aspect1x1
	Aspect4x5
)

var AspectRatioOptions = []struct {
	Ratio AspectRatio
	Label string
	W, H  int
}{
	{AspectOriginal, "Original", 0, 0},
	{Aspect16x9, "16:9", 16, 9},
	{Aspect9x16, "9:16", 9, 16},
	{Aspect1x1, "1:1", 1, 1},
	{Aspect4x5, "4:5", 4, 5},
}

type ExportOptions struct {
	Input    string
	Segments []segment.Span
	// Merge joins every segment into one file; otherwise each segment is
	// written to its own file.
	Merge bool
	// Name is the output name as typed by the user. Empty picks a name next
	// to the input.
	Name string
	// Outputs overrides Name with explicit paths: one when merging, one per
	// segment otherwise.
	Outputs []string

	AspectRatio AspectRatio
	// Width and Height are the source dimensions, needed for cropping.
	Width   int
	Height  int
	Workers int
	TempDir string
}

// Exporter cuts segments out of a video with ffmpeg. Each segment is
// re-encoded to a temporary file first so cuts are frame accurate; the files
// are then joined with the concat demuxer or copied out one by one.
type Exporter struct {
	ffmpeg string
	logger *slog.Logger
}

func NewExporter(ffmpeg string, logger *slog.Logger) *Exporter {
	if ffmpeg == "" {
		ffmpeg = DefaultTools().FFmpeg
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Exporter{ffmpeg: ffmpeg, logger: logging.WithComponent(logger, "export")}
}

// Export writes the segments and returns the files it created. Progress
// receives the fraction done, weighted by segment length, and is closed when
// Export returns.
func (e *Exporter) Export(ctx context.Context, opts ExportOptions, progress chan<- float64) ([]string, error) {
	if progress != nil {
		defer close(progress)
	}
	if len(opts.Segments) == 0 {
		return nil, ErrNoSegments
	}

	spans := slices.Clone(opts.Segments)
	slices.SortStableFunc(spans, func(a, b segment.Span) int {
		return cmp.Compare(a.Start, b.Start)
	})

	outputs := opts.Outputs
	if len(outputs) == 0 {
		outputs = OutputNames(opts.Input, opts.Name, len(spans), opts.Merge)
	}
	want := len(spans)
	if opts.Merge {
		want = 1
	}
	if len(outputs) != want {
		return nil, fmt.Errorf("export: %d output paths for %d files", len(outputs), want)
	}

	tmp, err := os.MkdirTemp(opts.TempDir, "lazytrim-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	tracker := newProgressTracker(spans, progress)
	crop := ""
	if opts.AspectRatio != AspectOriginal && opts.Width > 0 && opts.Height > 0 {
		crop = buildCropFilter(opts.Width, opts.Height, opts.AspectRatio)
	}

	parts := make([]string, len(spans))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, span := range spans {
		parts[i] = filepath.Join(tmp, fmt.Sprintf("segment_%d%s", i, outputExt))
		g.Go(func() error {
			args := encodeArgs(opts.Input, span, crop, parts[i])
			if err := e.run(gctx, args, span.Length(), func(f float64) { tracker.set(i, f) }); err != nil {
				return fmt.Errorf("segment %d (%s): %w", i+1, span, err)
			}
			tracker.set(i, 1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if opts.Merge {
		if err := e.merge(ctx, tmp, parts, outputs[0]); err != nil {
			return nil, err
		}
	} else {
		for i, part := range parts {
			if err := copyFile(part, outputs[i]); err != nil {
				return nil, err
			}
		}
	}

	e.logger.Info("export finished", "segments", len(spans), "merge", opts.Merge, "outputs", len(outputs))
	tracker.finish()
	return outputs, nil
}

func (e *Exporter) merge(ctx context.Context, tmp string, parts []string, output string) error {
	if len(parts) == 1 {
		return copyFile(parts[0], output)
	}

	list := filepath.Join(tmp, "concat_list.txt")
	if err := os.WriteFile(list, []byte(concatList(parts)), 0o644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}
	cmd := exec.CommandContext(ctx, e.ffmpeg, concatArgs(list, output)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return commandError("ffmpeg concat", err, out)
	}
	return nil
}

// run executes ffmpeg with -progress on stderr and reports the fraction of
// length encoded so far.
func (e *Exporter) run(ctx context.Context, args []string, length time.Duration, report func(float64)) error {
	cmd := exec.CommandContext(ctx, e.ffmpeg, args...)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	e.logger.Debug("ffmpeg", "args", strings.Join(args, " "))
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	var diag strings.Builder
	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		line := scanner.Text()
		if f, ok := parseProgress(line, length); ok {
			report(f)
			continue
		}
		if !isProgressLine(line) {
			diag.WriteString(line)
			diag.WriteByte('\n')
		}
	}

	if err := cmd.Wait(); err != nil {
		return commandError("ffmpeg encode", err, []byte(diag.String()))
	}
	return nil
}

func encodeArgs(input string, span segment.Span, crop, output string) []string {
	args := []string{"-y", "-hide_banner",
		"-ss", formatSeconds(span.Start),
		"-i", input,
		"-t", formatSeconds(span.Length()),
	}
	if crop != "" {
		args = append(args, "-vf", crop)
	}
	return append(args,
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "18",
		"-c:a", "aac",
		"-b:a", "192k",
		"-movflags", "+faststart",
		"-avoid_negative_ts", "make_zero",
		"-progress", "pipe:2",
		"-nostats",
		output,
	)
}

func concatArgs(list, output string) []string {
	return []string{"-y", "-hide_banner",
		"-f", "concat",
		"-safe", "0",
		"-i", list,
		"-c", "copy",
		"-movflags", "+faststart",
		output,
	}
}

// concatList is the concat demuxer input. Paths are quoted; a quote inside a
// path is closed, escaped and reopened.
func concatList(parts []string) string {
	var b strings.Builder
	for _, p := range parts {
		p = filepath.ToSlash(p)
		fmt.Fprintf(&b, "file '%s'\n", strings.ReplaceAll(p, "'", `'\''`))
	}
	return b.String()
}

func parseProgress(line string, length time.Duration) (float64, bool) {
	value, ok := strings.CutPrefix(line, "out_time_us=")
	if !ok || length <= 0 {
		return 0, false
	}
	micros, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}
	return max(0, min(1, micros/float64(length.Microseconds()))), true
}

// isProgressLine matches the key=value lines ffmpeg writes with -progress.
func isProgressLine(line string) bool {
	key, _, ok := strings.Cut(line, "=")
	return ok && key != "" && !strings.ContainsAny(key, " :[")
}

// BuildFFmpegCommand shows the command that encodes one segment, with file
// names shortened for display.
func BuildFFmpegCommand(opts ExportOptions) string {
	if len(opts.Segments) == 0 {
		return ""
	}
	span := opts.Segments[0]
	crop := ""
	if opts.AspectRatio != AspectOriginal && opts.Width > 0 && opts.Height > 0 {
		crop = buildCropFilter(opts.Width, opts.Height, opts.AspectRatio)
	}
	outputs := OutputNames(opts.Input, opts.Name, len(opts.Segments), opts.Merge)
	args := encodeArgs(filepath.Base(opts.Input), span, crop, filepath.Base(outputs[0]))
	// progress flags are internal
	args = slices.DeleteFunc(args, func(a string) bool {
		return a == "-progress" || a == "pipe:2" || a == "-nostats" || a == "-hide_banner"
	})
	cmd := "ffmpeg " + strings.Join(args, " ")
	if n := len(opts.Segments); n > 1 {
		cmd += fmt.Sprintf("  (+%d more", n-1)
		if opts.Merge {
			cmd += ", then concat"
		}
		cmd += ")"
	}
	return cmd
}

func buildCropFilter(srcW, srcH int, ratio AspectRatio) string {
	var targetW, targetH int
	for _, opt := range AspectRatioOptions {
		if opt.Ratio == ratio {
			targetW, targetH = opt.W, opt.H
			break
		}
	}
	if targetW == 0 || targetH == 0 || srcW <= 0 || srcH <= 0 {
		return ""
	}

	srcRatio := float64(srcW) / float64(srcH)
	targetRatio := float64(targetW) / float64(targetH)

	var cropW, cropH int
	if srcRatio > targetRatio {
		cropH = srcH
		cropW = int(float64(srcH) * targetRatio)
	} else {
		cropW = srcW
		cropH = int(float64(srcW) / targetRatio)
	}

	// H.264 requires even dimensions
	cropW = cropW &^ 1
	cropH = cropH &^ 1

	return fmt.Sprintf("crop=%d:%d", cropW, cropH)
}

// OutputNames picks output paths. With no name, a merged export is written
// to <input>_edited.mp4 and separate segments to <input>_<i>.mp4, next to the
// input. A relative name is placed next to the input too. Existing files are
// never overwritten; a numeric suffix is added instead.
func OutputNames(input, name string, count int, merge bool) []string {
	dir := filepath.Dir(input)
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))

	base := stem
	if merge {
		base = stem + "_edited"
	}
	if name = strings.TrimSpace(name); name != "" {
		base = strings.TrimSuffix(name, filepath.Ext(name))
		if filepath.IsAbs(name) {
			dir, base = filepath.Dir(base), filepath.Base(base)
		} else {
			dir = filepath.Join(dir, filepath.Dir(base))
			base = filepath.Base(base)
		}
	}

	if merge {
		return []string{uniquePath(filepath.Join(dir, base+outputExt))}
	}
	outputs := make([]string, count)
	for i := range outputs {
		outputs[i] = uniquePath(filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, i+1, outputExt)))
	}
	return outputs
}

func uniquePath(path string) string {
	if !fileExists(path) {
		return path
	}
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for i := 1; i <= 999; i++ {
		candidate := fmt.Sprintf("%s_%03d%s", stem, i, ext)
		if !fileExists(candidate) {
			return candidate
		}
	}
	return stem + "_new" + ext
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", dst, err)
	}
	return out.Close()
}

// progressTracker folds per-segment progress into one fraction weighted by
// segment length.
type progressTracker struct {
	mu      sync.Mutex
	weights []float64
	done    []float64
	total   float64
	last    float64
	out     chan<- float64
}

func newProgressTracker(spans []segment.Span, out chan<- float64) *progressTracker {
	t := &progressTracker{
		weights: make([]float64, len(spans)),
		done:    make([]float64, len(spans)),
		out:     out,
	}
	for i, s := range spans {
		t.weights[i] = s.Length().Seconds()
		t.total += t.weights[i]
	}
	return t
}

func (t *progressTracker) set(i int, frac float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if frac <= t.done[i] {
		return
	}
	t.done[i] = frac

	sum := 0.0
	for j, w := range t.weights {
		sum += w * t.done[j]
	}
	p := 0.0
	if t.total > 0 {
		p = sum / t.total
	}
	// leave the last step for finish
	p = min(p, 0.99)
	if p > t.last {
		t.last = p
		t.send(p)
	}
}

func (t *progressTracker) finish() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = 1
	if t.out != nil {
		t.out <- 1
	}
}

func (t *progressTracker) send(p float64) {
	if t.out == nil {
		return
	}
	select {
	case t.out <- p:
	default:
	}
}
