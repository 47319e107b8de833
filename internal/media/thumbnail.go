package media

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/disintegration/imaging"
	"github.com/spf13/afero"

	"video-grid/internal/filesystem"
	"video-grid/internal/logging"
	"video-grid/internal/mediatypes"
	"video-grid/internal/metrics"
)

// MaterializerConfig configures a Materializer.
type MaterializerConfig struct {
	// ThumbsRoot is the directory that mirrors the media tree.
	ThumbsRoot string
	// FFmpegPath defaults to "ffmpeg" on PATH.
	FFmpegPath string
	// ExtractTimeout bounds one ffmpeg run; zero means no limit.
	ExtractTimeout time.Duration
	// Policy decides whether an existing thumbnail is reused.
	Policy StalePolicy
}

// Materializer writes one midpoint frame per video under a mirrored layout.
type Materializer struct {
	fs         afero.Fs
	thumbsRoot string
	ffmpegPath string
	timeout    time.Duration
	policy     StalePolicy
	prober     DurationProber
	runner     Runner
	retry      filesystem.RetryConfig
}

// NewMaterializer creates a Materializer. A nil runner uses ExecRunner.
func NewMaterializer(fs afero.Fs, cfg MaterializerConfig, prober DurationProber, runner Runner) *Materializer {
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = "ffmpeg"
	}
	if runner == nil {
		runner = ExecRunner{}
	}

	logging.Debug("Materializer: thumbs root %s, policy %s", cfg.ThumbsRoot, cfg.Policy)

	return &Materializer{
		fs:         fs,
		thumbsRoot: cfg.ThumbsRoot,
		ffmpegPath: cfg.FFmpegPath,
		timeout:    cfg.ExtractTimeout,
		policy:     cfg.Policy,
		prober:     prober,
		runner:     runner,
		retry:      filesystem.DefaultRetryConfig(),
	}
}

// ThumbsRoot returns the root of the thumbnail tree.
func (m *Materializer) ThumbsRoot() string {
	return m.thumbsRoot
}

// ThumbnailPath returns where the thumbnail for a video at relativePath
// (relative to the media root) lives: thumbsRoot/relativePath.jpg.
func ThumbnailPath(thumbsRoot, relativePath string) string {
	return filepath.Join(thumbsRoot, filepath.FromSlash(relativePath)) + mediatypes.ThumbnailExtension
}

// SeekOffset formats the extraction instant for a duration: exactly half of
// it, in plain decimal seconds.
func SeekOffset(duration float64) string {
	return strconv.FormatFloat(duration/2, 'f', -1, 64)
}

// Materialize ensures a thumbnail exists for videoPath. Failures are logged
// and reported through the Outcome only; no placeholder is written and
// nothing is retried.
func (m *Materializer) Materialize(ctx context.Context, videoPath, relativePath string) Outcome {
	target := ThumbnailPath(m.thumbsRoot, relativePath)

	if m.isCurrent(videoPath, target) {
		return OutcomeSkipped
	}

	if err := m.fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		logging.Error("Failed to generate thumbnail for %s: %v", videoPath, err)
		return OutcomeFailed
	}

	duration := m.prober.ProbeDuration(ctx, videoPath)
	if math.IsNaN(duration) {
		logging.Warn("Could not determine duration for %s", videoPath)
		return OutcomeNoDuration
	}

	tmp := filesystem.TempSibling(target)
	if err := m.extract(ctx, videoPath, SeekOffset(duration), tmp); err != nil {
		_ = m.fs.Remove(tmp)
		logging.Error("Failed to generate thumbnail for %s: %v", videoPath, err)
		return OutcomeFailed
	}

	if err := m.fs.Rename(tmp, target); err != nil {
		_ = m.fs.Remove(tmp)
		logging.Error("Failed to generate thumbnail for %s: %v", videoPath, err)
		return OutcomeFailed
	}

	logging.Info("Generated: %s", target)
	return OutcomeGenerated
}

// isCurrent reports whether target can be kept under the configured policy.
func (m *Materializer) isCurrent(videoPath, target string) bool {
	thumbInfo, err := filesystem.StatWithRetry(m.fs, target, m.retry)
	if err != nil {
		return false
	}

	if m.policy != StaleModTime {
		return true
	}

	videoInfo, err := filesystem.StatWithRetry(m.fs, videoPath, m.retry)
	if err != nil {
		return true
	}

	if thumbInfo.ModTime().Before(videoInfo.ModTime()) {
		logging.Debug("Thumbnail %s is older than %s, regenerating", target, videoPath)
		return false
	}
	return true
}

// extract runs ffmpeg for a single frame at seek and checks that the result
// decodes as an image.
func (m *Materializer) extract(ctx context.Context, videoPath, seek, out string) error {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	start := time.Now()
	_, err := m.runner.Run(ctx, m.ffmpegPath,
		"-ss", seek,
		"-i", videoPath,
		"-vframes", "1",
		"-q:v", "2",
		out,
	)
	metrics.ThumbnailExtractDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("ffmpeg: %w", err)
	}

	return m.verify(out)
}

func (m *Materializer) verify(path string) error {
	f, err := m.fs.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("ffmpeg produced no output")
		}
		return fmt.Errorf("open extracted frame: %w", err)
	}
	defer f.Close()

	img, err := imaging.Decode(f)
	if err != nil {
		return fmt.Errorf("decode extracted frame: %w", err)
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return fmt.Errorf("extracted frame is empty")
	}
	return nil
}
