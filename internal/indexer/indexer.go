package indexer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"video-grid/internal/logging"
	"video-grid/internal/media"
	"video-grid/internal/metrics"
)

// ErrIndexInProgress is returned by Run when another run has not finished.
var ErrIndexInProgress = errors.New("thumbnail index already in progress")

// Materializer produces the thumbnail for one video.
type Materializer interface {
	Materialize(ctx context.Context, videoPath, relativePath string) media.Outcome
}

// Indexer drives the Materializer over every video under the media
// directory, one video at a time.
type Indexer struct {
	walker       *Walker
	materializer Materializer
	mediaDir     string

	indexInterval time.Duration
	stopChan      chan struct{}
	stopOnce      sync.Once

	indexMu              sync.Mutex
	isIndexing           bool
	lastIndexTime        time.Time
	lastResult           RunResult
	initialIndexComplete bool
	initialIndexError    error
	startTime            time.Time

	filesIndexed   atomic.Int64
	foldersIndexed atomic.Int64
	indexProgress  atomic.Value

	onIndexComplete func(RunResult)
}

// RunResult summarizes one batch run.
type RunResult struct {
	Directories int           `json:"directories"`
	Videos      int           `json:"videos"`
	Generated   int           `json:"generated"`
	Skipped     int           `json:"skipped"`
	NoDuration  int           `json:"noDuration"`
	Failed      int           `json:"failed"`
	DirErrors   int           `json:"dirErrors"`
	Duration    time.Duration `json:"duration"`
}

// IndexProgress tracks the current indexing progress
type IndexProgress struct {
	FilesIndexed   int64     `json:"filesIndexed"`
	FoldersIndexed int64     `json:"foldersIndexed"`
	IsIndexing     bool      `json:"isIndexing"`
	StartedAt      time.Time `json:"startedAt,omitempty"`
}

// HealthStatus contains health check information.
type HealthStatus struct {
	Indexing          bool           `json:"indexing"`
	StartTime         time.Time      `json:"startTime"`
	Uptime            string         `json:"uptime"`
	LastIndexed       time.Time      `json:"lastIndexed,omitempty"`
	InitialIndexError string         `json:"initialIndexError,omitempty"`
	FilesIndexed      int64          `json:"filesIndexed"`
	FoldersIndexed    int64          `json:"foldersIndexed"`
	LastRun           *RunResult     `json:"lastRun,omitempty"`
	IndexProgress     *IndexProgress `json:"indexProgress,omitempty"`
}

// New creates an Indexer. indexInterval is used by Start; zero disables
// periodic runs.
func New(walker *Walker, materializer Materializer, mediaDir string, indexInterval time.Duration) *Indexer {
	idx := &Indexer{
		walker:        walker,
		materializer:  materializer,
		mediaDir:      mediaDir,
		indexInterval: indexInterval,
		stopChan:      make(chan struct{}),
		startTime:     time.Now(),
	}
	idx.indexProgress.Store(IndexProgress{})
	return idx
}

// SetOnIndexComplete sets a callback to be invoked when a run completes.
func (idx *Indexer) SetOnIndexComplete(callback func(RunResult)) {
	idx.onIndexComplete = callback
}

// Start runs an initial index in the background and, when an interval is
// configured, re-runs it periodically until Stop or ctx cancellation.
func (idx *Indexer) Start(ctx context.Context) {
	go func() {
		logging.Info("Starting initial thumbnail index in background...")
		if _, err := idx.Run(ctx); err != nil && !errors.Is(err, ErrIndexInProgress) {
			logging.Error("Initial thumbnail index error: %v", err)
			idx.indexMu.Lock()
			idx.initialIndexError = err
			idx.indexMu.Unlock()
		}
	}()

	if idx.indexInterval > 0 {
		go idx.periodicIndex(ctx)
	}
}

// Stop stops periodic indexing.
func (idx *Indexer) Stop() {
	idx.stopOnce.Do(func() { close(idx.stopChan) })
}

// Run walks the media directory and materializes a thumbnail for every
// video, sequentially. Per-video failures are tallied in the result; the
// returned error is reserved for an unreadable media root, cancellation, or
// a run already being in progress.
func (idx *Indexer) Run(ctx context.Context) (RunResult, error) {
	if !idx.tryStartIndexing() {
		logging.Info("Thumbnail index already in progress, skipping...")
		return RunResult{}, ErrIndexInProgress
	}
	defer idx.finishIndexing()

	metrics.IndexerIsRunning.Set(1)
	defer metrics.IndexerIsRunning.Set(0)
	metrics.IndexerRunsTotal.Inc()

	startTime := time.Now()
	idx.resetCounters(startTime)

	var result RunResult
	stats, err := idx.walker.Walk(ctx, idx.mediaDir, idx.mediaDir, func(ctx context.Context, e Entry) {
		if e.IsDir {
			idx.foldersIndexed.Add(1)
			idx.updateProgress(startTime)
			return
		}

		outcome := idx.materializer.Materialize(ctx, e.Path, e.Rel)
		metrics.ThumbnailOutcomesTotal.WithLabelValues(outcome.String()).Inc()
		result.record(outcome)

		idx.filesIndexed.Add(1)
		idx.updateProgress(startTime)
	})

	result.Directories = stats.Directories
	result.Videos = stats.Videos
	result.DirErrors = stats.DirErrors
	result.Duration = time.Since(startTime)

	if err != nil {
		logging.Error("Thumbnail index stopped: %v", err)
		return result, err
	}

	idx.finalizeIndex(result)
	return result, nil
}

func (r *RunResult) record(o media.Outcome) {
	switch o {
	case media.OutcomeGenerated:
		r.Generated++
	case media.OutcomeSkipped:
		r.Skipped++
	case media.OutcomeNoDuration:
		r.NoDuration++
	case media.OutcomeFailed:
		r.Failed++
	}
}

// tryStartIndexing marks indexing as started, returning false if a run is
// already active.
func (idx *Indexer) tryStartIndexing() bool {
	idx.indexMu.Lock()
	defer idx.indexMu.Unlock()

	if idx.isIndexing {
		return false
	}
	idx.isIndexing = true
	return true
}

// finishIndexing marks indexing as complete.
func (idx *Indexer) finishIndexing() {
	idx.indexMu.Lock()
	defer idx.indexMu.Unlock()

	idx.isIndexing = false
	idx.initialIndexComplete = true
}

func (idx *Indexer) resetCounters(startTime time.Time) {
	idx.filesIndexed.Store(0)
	idx.foldersIndexed.Store(0)
	idx.indexProgress.Store(IndexProgress{
		IsIndexing: true,
		StartedAt:  startTime,
	})
}

func (idx *Indexer) updateProgress(startTime time.Time) {
	idx.indexProgress.Store(IndexProgress{
		FilesIndexed:   idx.filesIndexed.Load(),
		FoldersIndexed: idx.foldersIndexed.Load(),
		IsIndexing:     true,
		StartedAt:      startTime,
	})
}

func (idx *Indexer) finalizeIndex(result RunResult) {
	idx.indexMu.Lock()
	idx.lastIndexTime = time.Now()
	idx.lastResult = result
	idx.indexMu.Unlock()

	idx.indexProgress.Store(IndexProgress{
		FilesIndexed:   int64(result.Videos),
		FoldersIndexed: int64(result.Directories),
		IsIndexing:     false,
	})

	metrics.IndexerLastRunTimestamp.Set(float64(time.Now().Unix()))
	metrics.IndexerLastRunDuration.Set(result.Duration.Seconds())
	metrics.IndexerFilesProcessed.Add(float64(result.Videos))
	metrics.IndexerFoldersProcessed.Add(float64(result.Directories))
	metrics.ThumbnailGenerationFilesTotal.WithLabelValues("generated").Set(float64(result.Generated))
	metrics.ThumbnailGenerationFilesTotal.WithLabelValues("skipped").Set(float64(result.Skipped))
	metrics.ThumbnailGenerationFilesTotal.WithLabelValues("no_duration").Set(float64(result.NoDuration))
	metrics.ThumbnailGenerationFilesTotal.WithLabelValues("failed").Set(float64(result.Failed))

	logging.Info("Thumbnail index complete: %d videos in %d folders (%d generated, %d skipped, %d without duration, %d failed) in %v",
		result.Videos, result.Directories, result.Generated, result.Skipped, result.NoDuration, result.Failed, result.Duration)

	if idx.onIndexComplete != nil {
		idx.onIndexComplete(result)
	}
}

func (idx *Indexer) periodicIndex(ctx context.Context) {
	ticker := time.NewTicker(idx.indexInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			logging.Debug("Periodic thumbnail index triggered")
			if _, err := idx.Run(ctx); err != nil && !errors.Is(err, ErrIndexInProgress) {
				logging.Error("periodic thumbnail index failed: %v", err)
			}
		case <-idx.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// TriggerIndex starts a run in the background.
func (idx *Indexer) TriggerIndex(ctx context.Context) {
	go func() {
		if _, err := idx.Run(ctx); err != nil && !errors.Is(err, ErrIndexInProgress) {
			logging.Error("manually triggered thumbnail index failed: %v", err)
		}
	}()
}

// IsIndexing returns whether a run is currently in progress.
func (idx *Indexer) IsIndexing() bool {
	idx.indexMu.Lock()
	defer idx.indexMu.Unlock()
	return idx.isIndexing
}

// LastIndexTime returns the time of the last completed run.
func (idx *Indexer) LastIndexTime() time.Time {
	idx.indexMu.Lock()
	defer idx.indexMu.Unlock()
	return idx.lastIndexTime
}

// GetProgress returns the current indexing progress.
func (idx *Indexer) GetProgress() IndexProgress {
	if progress, ok := idx.indexProgress.Load().(IndexProgress); ok {
		return progress
	}
	return IndexProgress{}
}

// GetHealthStatus returns detailed health information.
func (idx *Indexer) GetHealthStatus() HealthStatus {
	idx.indexMu.Lock()
	defer idx.indexMu.Unlock()

	status := HealthStatus{
		Indexing:       idx.isIndexing,
		StartTime:      idx.startTime,
		Uptime:         time.Since(idx.startTime).String(),
		LastIndexed:    idx.lastIndexTime,
		FilesIndexed:   idx.filesIndexed.Load(),
		FoldersIndexed: idx.foldersIndexed.Load(),
	}

	if idx.isIndexing {
		progress := idx.GetProgress()
		status.IndexProgress = &progress
	}
	if !idx.lastIndexTime.IsZero() {
		last := idx.lastResult
		status.LastRun = &last
	}
	if idx.initialIndexError != nil {
		status.InitialIndexError = idx.initialIndexError.Error()
	}

	return status
}

// GetStats implements metrics.StatsProvider with totals from the last run.
func (idx *Indexer) GetStats() metrics.Stats {
	idx.indexMu.Lock()
	defer idx.indexMu.Unlock()

	r := idx.lastResult
	return metrics.Stats{
		TotalVideos:     r.Videos,
		TotalFolders:    r.Directories,
		TotalThumbnails: r.Generated + r.Skipped,
	}
}
