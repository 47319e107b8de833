package media

import (
	"bytes"
	"context"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"video-grid/internal/logging"
	"video-grid/internal/metrics"
)

// Runner executes an external tool and returns its standard output.
// Standard error is discarded.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs tools with os/exec.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	err := cmd.Run()
	return stdout.Bytes(), err
}

// DurationProber reports a video's duration in seconds, or NaN.
type DurationProber interface {
	ProbeDuration(ctx context.Context, videoPath string) float64
}

// Sampler obtains container durations with ffprobe.
type Sampler struct {
	ffprobePath string
	timeout     time.Duration
	runner      Runner
}

// NewSampler creates a Sampler. A zero timeout waits for ffprobe indefinitely.
// A nil runner uses ExecRunner.
func NewSampler(ffprobePath string, timeout time.Duration, runner Runner) *Sampler {
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Sampler{ffprobePath: ffprobePath, timeout: timeout, runner: runner}
}

// ProbeDuration asks ffprobe for the container duration of videoPath.
// Any failure, including a missing binary, a nonzero exit or output that is
// not a finite non-negative number, yields NaN.
func (s *Sampler) ProbeDuration(ctx context.Context, videoPath string) float64 {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := s.runner.Run(ctx, s.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		videoPath,
	)
	metrics.ThumbnailProbeDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		logging.Debug("ffprobe failed for %s: %v", videoPath, err)
		return math.NaN()
	}

	return parseDuration(out)
}

// parseDuration reads the first line of ffprobe output as seconds.
func parseDuration(out []byte) float64 {
	text := strings.TrimSpace(string(out))
	if i := strings.IndexAny(text, "\r\n"); i >= 0 {
		text = strings.TrimSpace(text[:i])
	}

	d, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsInf(d, 0) || d < 0 {
		return math.NaN()
	}
	return d
}
