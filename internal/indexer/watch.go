package indexer

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"video-grid/internal/logging"
	"video-grid/internal/metrics"
)

// Watcher materializes thumbnails for videos that appear after a batch run.
// A video is processed once no event has been seen for it during the settle
// period, so files that are still being copied are not probed half-written.
type Watcher struct {
	walker       *Walker
	materializer Materializer
	mediaDir     string
	settle       time.Duration

	mu      sync.Mutex
	pending map[string]time.Time
}

// NewWatcher creates a Watcher. settle defaults to two seconds.
func NewWatcher(walker *Walker, materializer Materializer, mediaDir string, settle time.Duration) *Watcher {
	if settle <= 0 {
		settle = 2 * time.Second
	}
	return &Watcher{
		walker:       walker,
		materializer: materializer,
		mediaDir:     mediaDir,
		settle:       settle,
		pending:      make(map[string]time.Time),
	}
}

// Run watches the media tree until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.mediaDir); err != nil {
		return fmt.Errorf("watch %s: %w", w.mediaDir, err)
	}
	count := 1 + w.addTree(ctx, fw, w.mediaDir, false)
	metrics.WatchedDirectories.Set(float64(count))
	logging.Info("Watching %d directories under %s for new videos", count, w.mediaDir)

	tick := w.settle / 2
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info("Watcher stopped")
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, fw, event)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logging.Error("Watcher error: %v", err)
			metrics.WatcherErrors.Inc()

		case now := <-ticker.C:
			w.flush(ctx, now)
		}
	}
}

// addTree watches every directory below dir. When schedule is set, the
// videos already inside are queued, which covers directories that were
// moved or copied in whole.
func (w *Watcher) addTree(ctx context.Context, fw *fsnotify.Watcher, dir string, schedule bool) int {
	added := 0
	_, err := w.walker.Walk(ctx, dir, w.mediaDir, func(_ context.Context, e Entry) {
		if e.IsDir {
			if err := fw.Add(e.Path); err != nil {
				logging.Warn("failed to add path to watcher %s: %v", e.Path, err)
				metrics.WatcherErrors.Inc()
				return
			}
			added++
			return
		}
		if schedule {
			w.schedule(e.Path, time.Now())
		}
	})
	if err != nil {
		logging.Error("failed to walk %s for watcher: %v", dir, err)
		metrics.WatcherErrors.Inc()
	}
	return added
}

func (w *Watcher) handleEvent(ctx context.Context, fw *fsnotify.Watcher, event fsnotify.Event) {
	metrics.WatcherEventsTotal.WithLabelValues(eventType(event.Op)).Inc()

	switch {
	case event.Op&fsnotify.Create != 0:
		info, err := w.walker.fs.Stat(event.Name)
		if err != nil {
			return
		}
		if info.IsDir() {
			if w.walker.exclude[cleanAbs(event.Name)] {
				return
			}
			if w.walker.opts.SkipHidden && isHiddenPath(event.Name) {
				return
			}
			if err := fw.Add(event.Name); err != nil {
				logging.Warn("failed to add new directory to watcher %s: %v", event.Name, err)
				metrics.WatcherErrors.Inc()
				return
			}
			added := 1 + w.addTree(ctx, fw, event.Name, true)
			metrics.WatchedDirectories.Add(float64(added))
			logging.Debug("Added new directory to watcher: %s", event.Name)
			return
		}
		if w.walker.exts.Match(event.Name) {
			w.schedule(event.Name, time.Now())
		}

	case event.Op&fsnotify.Write != 0:
		if w.walker.exts.Match(event.Name) {
			w.schedule(event.Name, time.Now())
		}

	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		w.mu.Lock()
		delete(w.pending, event.Name)
		w.mu.Unlock()
	}
}

func (w *Watcher) schedule(path string, at time.Time) {
	w.mu.Lock()
	w.pending[path] = at
	w.mu.Unlock()
}

// flush materializes every pending video that has been quiet for the settle
// period, one at a time and in path order.
func (w *Watcher) flush(ctx context.Context, now time.Time) {
	w.mu.Lock()
	var ready []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.settle {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	sort.Strings(ready)
	for _, path := range ready {
		if ctx.Err() != nil {
			return
		}
		rel, err := filepath.Rel(w.mediaDir, path)
		if err != nil {
			continue
		}
		outcome := w.materializer.Materialize(ctx, path, filepath.ToSlash(rel))
		metrics.ThumbnailOutcomesTotal.WithLabelValues(outcome.String()).Inc()
	}
}

func eventType(op fsnotify.Op) string {
	switch {
	case op&fsnotify.Create != 0:
		return "create"
	case op&fsnotify.Write != 0:
		return "write"
	case op&fsnotify.Remove != 0:
		return "remove"
	case op&fsnotify.Rename != 0:
		return "rename"
	case op&fsnotify.Chmod != 0:
		return "chmod"
	default:
		return "unknown"
	}
}

func isHiddenPath(path string) bool {
	base := filepath.Base(path)
	return len(base) > 0 && base[0] == '.'
}
