package indexer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"video-grid/internal/filesystem"
	"video-grid/internal/logging"
	"video-grid/internal/mediatypes"
	"video-grid/internal/metrics"
)

// Entry is one directory or recognized video found during a walk.
type Entry struct {
	// Path is the full path on the walked filesystem.
	Path string
	// Rel is the path relative to the walk root, always with '/' separators.
	Rel     string
	Name    string
	IsDir   bool
	ModTime time.Time
}

// Visitor receives every entry of a walk in traversal order. Directories are
// reported before their contents.
type Visitor func(ctx context.Context, e Entry)

// WalkStats counts what a walk saw.
type WalkStats struct {
	Directories int
	Videos      int
	// DirErrors is the number of subdirectories that could not be read.
	DirErrors int
}

// Options tunes a Walker.
type Options struct {
	// SkipHidden ignores names starting with '.' (files and directories).
	SkipHidden bool
	// Exclude lists directories that are never entered or reported.
	Exclude []string
	// Label names the walk in metrics: "thumbnails" or "catalog".
	Label string
}

// Walker performs depth-first traversals of a media tree.
type Walker struct {
	fs      afero.Fs
	exts    mediatypes.ExtensionSet
	opts    Options
	exclude map[string]bool
	retry   filesystem.RetryConfig
}

// NewWalker creates a Walker. A nil exts uses the default video allow-list.
func NewWalker(fs afero.Fs, exts mediatypes.ExtensionSet, opts Options) *Walker {
	if exts == nil {
		exts = mediatypes.DefaultVideoExtensions()
	}
	if opts.Label == "" {
		opts.Label = "thumbnails"
	}

	exclude := make(map[string]bool, len(opts.Exclude))
	for _, dir := range opts.Exclude {
		if dir != "" {
			exclude[cleanAbs(dir)] = true
		}
	}

	return &Walker{
		fs:      fs,
		exts:    exts,
		opts:    opts,
		exclude: exclude,
		retry:   filesystem.DefaultRetryConfig(),
	}
}

// Walk visits every descendant of currentDir once, in directory-listing
// order, reporting paths relative to rootDir. A subdirectory that cannot be
// read is logged and counted and its siblings are still walked. Only a
// failure to read currentDir itself or cancellation of ctx is returned.
func (w *Walker) Walk(ctx context.Context, currentDir, rootDir string, visit Visitor) (WalkStats, error) {
	var stats WalkStats

	entries, err := filesystem.ReadDirWithRetry(w.fs, currentDir, w.retry)
	if err != nil {
		return stats, fmt.Errorf("read directory %s: %w", currentDir, err)
	}

	err = w.walkEntries(ctx, currentDir, rootDir, entries, visit, &stats)
	return stats, err
}

func (w *Walker) walkEntries(ctx context.Context, dir, root string, entries []os.FileInfo, visit Visitor, stats *WalkStats) error {
	for _, info := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		name := info.Name()
		if w.opts.SkipHidden && mediatypes.IsHidden(name) {
			continue
		}

		full := filepath.Join(dir, name)

		if info.IsDir() {
			if w.exclude[cleanAbs(full)] {
				continue
			}

			stats.Directories++
			visit(ctx, w.entry(full, root, info.Name(), true, info.ModTime()))

			sub, err := filesystem.ReadDirWithRetry(w.fs, full, w.retry)
			if err != nil {
				logging.Error("Error scanning %s: %v", full, err)
				stats.DirErrors++
				metrics.WalkerDirectoryErrors.WithLabelValues(w.opts.Label).Inc()
				continue
			}

			if err := w.walkEntries(ctx, full, root, sub, visit, stats); err != nil {
				return err
			}
			continue
		}

		if !w.exts.Match(name) {
			continue
		}

		stats.Videos++
		visit(ctx, w.entry(full, root, name, false, info.ModTime()))
	}

	return nil
}

func (w *Walker) entry(full, root, name string, isDir bool, modTime time.Time) Entry {
	rel, err := filepath.Rel(root, full)
	if err != nil {
		rel = name
	}
	return Entry{
		Path:    full,
		Rel:     filepath.ToSlash(rel),
		Name:    name,
		IsDir:   isDir,
		ModTime: modTime,
	}
}

func cleanAbs(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
