// Package indexer walks the media tree and keeps the thumbnail tree in step
// with it.
//
// Walker is the shared depth-first traversal: directories are reported
// before their contents, files are filtered by the video allow-list, and an
// unreadable subdirectory is logged and skipped without aborting the walk.
// The catalog package reuses it with hidden entries skipped.
//
// Indexer runs the Materializer over every video, strictly one at a time,
// and guards against overlapping runs. It reports progress for health
// checks and totals for Prometheus.
//
// Watcher uses fsnotify to pick up videos created after a run and
// materializes them once they stop changing.
package indexer
