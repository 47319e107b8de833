package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"video-grid/internal/filesystem"
	"video-grid/internal/indexer"
	"video-grid/internal/mediatypes"
	"video-grid/internal/metrics"
)

var (
	// ErrForbidden is returned for paths that resolve outside the root.
	ErrForbidden = errors.New("path escapes media root")
	// ErrNotDirectory is returned when a listing targets a file.
	ErrNotDirectory = errors.New("not a directory")
)

// Entry is one record of a catalog or directory listing.
type Entry struct {
	Name string               `json:"name"`
	Type mediatypes.EntryType `json:"type"`
	// Path is relative to the media root with '/' separators.
	Path string `json:"path"`
}

// IsDir reports whether the entry is a directory.
func (e Entry) IsDir() bool {
	return e.Type == mediatypes.EntryTypeDirectory
}

// Scanner builds catalogs and listings for one media root. Every call reads
// the filesystem afresh; nothing is cached between requests.
type Scanner struct {
	fs      afero.Fs
	root    string
	exts    mediatypes.ExtensionSet
	exclude []string
	retry   filesystem.RetryConfig
}

// NewScanner creates a Scanner. exclude lists directories (such as a
// thumbnails root inside the media root) that never appear in results.
func NewScanner(fs afero.Fs, root string, exts mediatypes.ExtensionSet, exclude ...string) *Scanner {
	if exts == nil {
		exts = mediatypes.DefaultVideoExtensions()
	}
	return &Scanner{
		fs:      fs,
		root:    root,
		exts:    exts,
		exclude: exclude,
		retry:   filesystem.DefaultRetryConfig(),
	}
}

// Root returns the media root.
func (s *Scanner) Root() string {
	return s.root
}

// Build returns every directory and video under the root in traversal
// order, each directory before its contents. Hidden entries are skipped.
func (s *Scanner) Build(ctx context.Context) ([]Entry, error) {
	start := time.Now()
	var err error
	entries := make([]Entry, 0, 256)
	defer func() {
		observe("build", start, len(entries), err)
	}()

	walker := indexer.NewWalker(s.fs, s.exts, indexer.Options{
		SkipHidden: true,
		Exclude:    s.exclude,
		Label:      "catalog",
	})

	_, err = walker.Walk(ctx, s.root, s.root, func(_ context.Context, e indexer.Entry) {
		entries = append(entries, fromWalk(e))
	})
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}
	return entries, nil
}

// Build is a convenience wrapper for a one-off catalog of root.
func Build(ctx context.Context, fs afero.Fs, root string) ([]Entry, error) {
	return NewScanner(fs, root, nil).Build(ctx)
}

// ListDirectory returns the immediate children of rel (relative to the
// root), directories first and then by name in locale order. Hidden entries
// and files outside the allow-list are omitted.
func (s *Scanner) ListDirectory(rel string) ([]Entry, error) {
	start := time.Now()
	var err error
	var items []Entry
	defer func() {
		observe("list", start, len(items), err)
	}()

	var full string
	full, err = ResolveWithin(s.root, rel)
	if err != nil {
		return nil, err
	}

	var info os.FileInfo
	info, err = filesystem.StatWithRetry(s.fs, full, s.retry)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		err = ErrNotDirectory
		return nil, err
	}

	var infos []os.FileInfo
	infos, err = filesystem.ReadDirWithRetry(s.fs, full, s.retry)
	if err != nil {
		return nil, err
	}

	base := cleanRel(rel)
	for _, fi := range infos {
		name := fi.Name()
		if mediatypes.IsHidden(name) {
			continue
		}
		if fi.IsDir() {
			if s.isExcluded(filepath.Join(full, name)) {
				continue
			}
			items = append(items, Entry{Name: name, Type: mediatypes.EntryTypeDirectory, Path: joinRel(base, name)})
			continue
		}
		if s.exts.Match(name) {
			items = append(items, Entry{Name: name, Type: mediatypes.EntryTypeFile, Path: joinRel(base, name)})
		}
	}

	SortListing(items)
	return items, nil
}

func (s *Scanner) isExcluded(path string) bool {
	for _, ex := range s.exclude {
		if ex != "" && sameDir(ex, path) {
			return true
		}
	}
	return false
}

var (
	collatorMu sync.Mutex
	collator   = collate.New(language.Und)
)

// SortListing orders entries directories first, then by name using
// locale-aware collation.
func SortListing(items []Entry) {
	collatorMu.Lock()
	defer collatorMu.Unlock()

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].IsDir() != items[j].IsDir() {
			return items[i].IsDir()
		}
		return collator.CompareString(items[i].Name, items[j].Name) < 0
	})
}

// ResolveWithin joins rel onto root and rejects results outside root with
// ErrForbidden. rel may use either separator and may be empty.
func ResolveWithin(root, rel string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve root: %w", err)
	}

	full := filepath.Join(absRoot, filepath.FromSlash(strings.ReplaceAll(rel, "\\", "/")))

	within, err := filepath.Rel(absRoot, full)
	if err != nil || within == ".." || strings.HasPrefix(within, ".."+string(filepath.Separator)) {
		return "", ErrForbidden
	}

	if filepath.IsAbs(root) {
		return full, nil
	}
	// Keep relative roots relative so in-memory filesystems see the same
	// names they were populated with.
	return filepath.Join(root, within), nil
}

func fromWalk(e indexer.Entry) Entry {
	t := mediatypes.EntryTypeFile
	if e.IsDir {
		t = mediatypes.EntryTypeDirectory
	}
	return Entry{Name: e.Name, Type: t, Path: e.Rel}
}

func cleanRel(rel string) string {
	rel = filepath.ToSlash(filepath.Clean(filepath.FromSlash(rel)))
	rel = strings.TrimPrefix(rel, "/")
	if rel == "." {
		return ""
	}
	return rel
}

func joinRel(base, name string) string {
	if base == "" {
		return name
	}
	return base + "/" + name
}

func sameDir(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

func observe(op string, start time.Time, n int, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.CatalogOperationsTotal.WithLabelValues(op, status).Inc()
	metrics.CatalogOperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err == nil {
		metrics.CatalogItemsReturned.WithLabelValues(op).Observe(float64(n))
	}
}
