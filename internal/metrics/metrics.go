package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_grid_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "video_grid_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_grid_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Indexer metrics
var (
	IndexerRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "video_grid_indexer_runs_total",
			Help: "Total number of thumbnail indexer runs",
		},
	)

	IndexerLastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_grid_indexer_last_run_timestamp",
			Help: "Timestamp of the last indexer run",
		},
	)

	IndexerLastRunDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_grid_indexer_last_run_duration_seconds",
			Help: "Duration of the last indexer run in seconds",
		},
	)

	IndexerFilesProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "video_grid_indexer_files_processed_total",
			Help: "Total number of video files visited by the indexer",
		},
	)

	IndexerFoldersProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "video_grid_indexer_folders_processed_total",
			Help: "Total number of folders visited by the indexer",
		},
	)

	IndexerIsRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_grid_indexer_running",
			Help: "Whether the indexer is currently running (1 = running, 0 = idle)",
		},
	)
)

// Walker metrics
var (
	WalkerDirectoryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_grid_walker_directory_errors_total",
			Help: "Total number of subdirectories that could not be read during a walk",
		},
		[]string{"walk"}, // "thumbnails" or "catalog"
	)
)

// Thumbnail metrics
var (
	ThumbnailOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_grid_thumbnail_outcomes_total",
			Help: "Total number of thumbnail materializations by outcome",
		},
		[]string{"outcome"}, // "generated", "skipped", "no_duration", "failed"
	)

	ThumbnailProbeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "video_grid_thumbnail_probe_duration_seconds",
			Help:    "Duration of ffprobe invocations in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	ThumbnailExtractDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "video_grid_thumbnail_extract_duration_seconds",
			Help:    "Duration of ffmpeg frame extractions in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	ThumbnailGenerationFilesTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "video_grid_thumbnail_generation_files",
			Help: "Number of files in the last generation run by outcome",
		},
		[]string{"outcome"},
	)
)

// Catalog metrics
var (
	CatalogOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_grid_catalog_operations_total",
			Help: "Total number of catalog and listing operations",
		},
		[]string{"operation", "status"}, // operation: "build", "list"
	)

	CatalogOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "video_grid_catalog_operation_duration_seconds",
			Help:    "Catalog and listing operation duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	CatalogItemsReturned = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "video_grid_catalog_items_returned",
			Help:    "Number of entries returned by catalog and listing operations",
			Buckets: []float64{0, 1, 10, 50, 100, 500, 1000, 5000, 10000, 50000},
		},
		[]string{"operation"},
	)
)

// Media library metrics
var (
	MediaVideosTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_grid_media_videos_total",
			Help: "Number of videos seen by the last indexer run",
		},
	)

	MediaFoldersTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_grid_media_folders_total",
			Help: "Number of folders seen by the last indexer run",
		},
	)

	MediaThumbnailsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_grid_media_thumbnails_total",
			Help: "Number of videos that had a thumbnail after the last indexer run",
		},
	)
)

// Watcher metrics
var (
	WatcherEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_grid_watcher_events_total",
			Help: "Total number of filesystem watcher events",
		},
		[]string{"event_type"},
	)

	WatcherErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "video_grid_watcher_errors_total",
			Help: "Total number of filesystem watcher errors",
		},
	)

	WatchedDirectories = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_grid_watched_directories",
			Help: "Number of directories currently being watched",
		},
	)
)

// Filesystem metrics
var (
	FilesystemOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "video_grid_filesystem_operation_duration_seconds",
			Help:    "Filesystem operation duration in seconds by volume",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"volume", "operation"},
	)

	FilesystemOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_grid_filesystem_operation_errors_total",
			Help: "Total number of failed filesystem operations by volume",
		},
		[]string{"volume", "operation"},
	)

	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_grid_filesystem_retry_attempts_total",
			Help: "Total number of filesystem retry attempts after ESTALE",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_grid_filesystem_retry_success_total",
			Help: "Total number of filesystem operations that succeeded after retrying",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_grid_filesystem_retry_failures_total",
			Help: "Total number of filesystem operations that failed after all retries",
		},
		[]string{"operation", "volume"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_grid_filesystem_stale_errors_total",
			Help: "Total number of NFS stale file handle errors",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "video_grid_filesystem_retry_duration_seconds",
			Help:    "Total time spent in retried filesystem operations",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2},
		},
		[]string{"operation", "volume"},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "video_grid_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
