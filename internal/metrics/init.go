package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	volumes := []string{"media", "thumbs", "settings", "unknown"}
	fsOps := []string{"stat", "open", "readdir", "write"}

	for _, vol := range volumes {
		for _, op := range fsOps {
			FilesystemOperationDuration.WithLabelValues(vol, op)
			FilesystemOperationErrors.WithLabelValues(vol, op)
			FilesystemRetryAttempts.WithLabelValues(op, vol)
			FilesystemRetrySuccess.WithLabelValues(op, vol)
			FilesystemRetryFailures.WithLabelValues(op, vol)
			FilesystemStaleErrors.WithLabelValues(op, vol)
			FilesystemRetryDuration.WithLabelValues(op, vol)
		}
	}

	for _, outcome := range []string{"generated", "skipped", "no_duration", "failed"} {
		ThumbnailOutcomesTotal.WithLabelValues(outcome)
		ThumbnailGenerationFilesTotal.WithLabelValues(outcome)
	}

	for _, walk := range []string{"thumbnails", "catalog"} {
		WalkerDirectoryErrors.WithLabelValues(walk)
	}

	for _, op := range []string{"build", "list"} {
		CatalogOperationsTotal.WithLabelValues(op, "success")
		CatalogOperationsTotal.WithLabelValues(op, "error")
		CatalogOperationDuration.WithLabelValues(op)
		CatalogItemsReturned.WithLabelValues(op)
	}

	for _, ev := range []string{"create", "write", "remove", "rename"} {
		WatcherEventsTotal.WithLabelValues(ev)
	}
}
