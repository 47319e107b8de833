/*
Package filesystem provides resilient filesystem operations with automatic retry logic
for NFS stale file handle errors, on top of afero.

# Purpose

Media libraries are commonly NFS mounts. This package wraps Stat, Open and
directory reads with retry logic for ESTALE (stale file handle) errors, and
provides an atomic write helper used for thumbnails and settings.

All functions take an afero.Fs so callers and tests can swap the OS
filesystem for an in-memory one.

# Usage

	fs := afero.NewOsFs()

	info, err := filesystem.StatWithRetry(fs, "/videos/clip.mp4", filesystem.DefaultRetryConfig())
	entries, err := filesystem.ReadDirWithRetry(fs, "/videos", filesystem.DefaultRetryConfig())

	err = filesystem.WriteFileAtomic(fs, "config.json", data, 0o644)

# Retry Behavior

The retry logic implements exponential backoff with the following defaults:
  - MaxRetries: 3 attempts
  - InitialBackoff: 50ms
  - MaxBackoff: 500ms

Only NFS stale file handle errors (ESTALE) trigger retries. All other errors
fail immediately without retry attempts.

# Metrics

Metrics are reported through the Observer interface, which the metrics
package implements. Paths are labelled by volume ("media", "thumbs",
"settings") through a VolumeResolver set at startup.
*/
package filesystem
