// Package media shells out to ffmpeg and ffprobe for recording inspection
// and lossless audio chunk extraction.
package media

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"minutes/internal/chunk"
	"minutes/internal/services"
)

// Runner executes an external command and returns its combined output.
// Injected in tests to avoid invoking real binaries.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func defaultRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Toolkit wraps the ffmpeg/ffprobe operations the pipeline needs.
type Toolkit struct {
	ffmpeg  string
	ffprobe string
	run     Runner
}

// Option customizes the toolkit.
type Option func(*Toolkit)

// WithRunner overrides command execution.
func WithRunner(run Runner) Option {
	return func(t *Toolkit) {
		if run != nil {
			t.run = run
		}
	}
}

// New constructs a toolkit using the provided binary names.
func New(ffmpeg, ffprobe string, opts ...Option) *Toolkit {
	t := &Toolkit{
		ffmpeg:  strings.TrimSpace(ffmpeg),
		ffprobe: strings.TrimSpace(ffprobe),
		run:     defaultRunner,
	}
	if t.ffmpeg == "" {
		t.ffmpeg = "ffmpeg"
	}
	if t.ffprobe == "" {
		t.ffprobe = "ffprobe"
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Duration returns the recording length in seconds.
func (t *Toolkit) Duration(ctx context.Context, path string) (float64, error) {
	out, err := t.run(ctx, t.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return 0, services.Wrap(services.ErrValidation, "media", "probe", fmt.Sprintf("ffprobe %s: %s", path, summarizeOutput(out)), err)
	}
	value := strings.TrimSpace(string(out))
	duration, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, services.Wrap(services.ErrValidation, "media", "probe", fmt.Sprintf("parse duration %q", value), err)
	}
	if duration < 0 {
		return 0, services.Wrap(services.ErrValidation, "media", "probe", fmt.Sprintf("negative duration %f", duration), nil)
	}
	return duration, nil
}

var (
	silenceStartRe = regexp.MustCompile(`silence_start:\s*([0-9.]+)`)
	silenceEndRe   = regexp.MustCompile(`silence_end:\s*([0-9.]+)`)
)

// DetectSilences runs silencedetect and returns the midpoint of each
// detected silence interval, for use as preferred chunk cut points.
func (t *Toolkit) DetectSilences(ctx context.Context, path string) ([]float64, error) {
	out, err := t.run(ctx, t.ffmpeg,
		"-hide_banner",
		"-i", path,
		"-af", "silencedetect=noise=-30dB:d=0.5",
		"-f", "null", "-",
	)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "media", "silencedetect", fmt.Sprintf("ffmpeg %s: %s", path, summarizeOutput(out)), err)
	}
	return parseSilenceMidpoints(string(out)), nil
}

func parseSilenceMidpoints(output string) []float64 {
	starts := silenceStartRe.FindAllStringSubmatch(output, -1)
	ends := silenceEndRe.FindAllStringSubmatch(output, -1)

	var midpoints []float64
	for i, start := range starts {
		if i >= len(ends) {
			break
		}
		s, err1 := strconv.ParseFloat(start[1], 64)
		e, err2 := strconv.ParseFloat(ends[i][1], 64)
		if err1 != nil || err2 != nil || e < s {
			continue
		}
		midpoints = append(midpoints, s+(e-s)/2)
	}
	return midpoints
}

// Cut extracts a span of the recording into dst without re-encoding.
func (t *Toolkit) Cut(ctx context.Context, src string, span chunk.Span, dst string) error {
	out, err := t.run(ctx, t.ffmpeg,
		"-hide_banner",
		"-y",
		"-ss", formatSeconds(span.Start),
		"-t", formatSeconds(span.Duration()),
		"-i", src,
		"-c", "copy",
		dst,
	)
	if err != nil {
		return services.Wrap(services.ErrValidation, "media", "cut", fmt.Sprintf("ffmpeg chunk %d: %s", span.Index, summarizeOutput(out)), err)
	}
	return nil
}

func formatSeconds(value float64) string {
	return strconv.FormatFloat(value, 'f', 3, 64)
}

func summarizeOutput(out []byte) string {
	trimmed := strings.TrimSpace(string(out))
	if trimmed == "" {
		return "<no output>"
	}
	lines := strings.Split(trimmed, "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	const limit = 200
	if len(last) > limit {
		last = last[:limit] + "..."
	}
	return last
}
