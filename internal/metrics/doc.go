// Package metrics provides Prometheus instrumentation for video-grid.
//
// All metrics are registered with promauto and prefixed with "video_grid_".
// They are exposed on a separate port (METRICS_PORT, default 9090) so the
// main listener stays free of operational endpoints.
//
// # Metric Categories
//
// ## HTTP Metrics
//
//   - HTTPRequestsTotal: Counter of requests by method, path and status
//   - HTTPRequestDuration: Histogram of request duration by method and path
//   - HTTPRequestsInFlight: Gauge of currently processing requests
//
// ## Indexer and Thumbnail Metrics
//
//   - IndexerRunsTotal, IndexerLastRunTimestamp, IndexerLastRunDuration
//   - IndexerFilesProcessed, IndexerFoldersProcessed, IndexerIsRunning
//   - ThumbnailOutcomesTotal: generated / skipped / no_duration / failed
//   - ThumbnailProbeDuration, ThumbnailExtractDuration: ffprobe and ffmpeg timings
//   - WalkerDirectoryErrors: unreadable subdirectories per walk kind
//
// ## Catalog Metrics
//
//   - CatalogOperationsTotal, CatalogOperationDuration, CatalogItemsReturned
//     for full catalog builds and single directory listings
//
// ## Library Gauges
//
// A Collector copies the latest indexer totals into MediaVideosTotal,
// MediaFoldersTotal and MediaThumbnailsTotal on an interval.
//
// ## Filesystem Metrics
//
// The filesystem package reports through the filesystem.Observer interface;
// NewFilesystemObserver returns the implementation backed by the counters in
// this package:
//
//	filesystem.SetObserver(metrics.NewFilesystemObserver())
//
// ## Initialization
//
// InitializeMetrics pre-creates every known label combination so dashboards
// see zero values before the first event.
package metrics
