package handlers

import (
	"time"

	"github.com/spf13/afero"

	"video-grid/internal/catalog"
	"video-grid/internal/filesystem"
	"video-grid/internal/indexer"
	"video-grid/internal/search"
	"video-grid/internal/settings"
	"video-grid/internal/startup"
)

// IndexStatus is the part of the indexer the health endpoints read.
type IndexStatus interface {
	GetHealthStatus() indexer.HealthStatus
}

type Handlers struct {
	fs        afero.Fs
	scanner   *catalog.Scanner
	shared    *search.SharedCatalog
	settings  *settings.Store
	indexer   IndexStatus
	mediaDir  string
	thumbsDir string
	retry     filesystem.RetryConfig
	startTime time.Time
}

// New wires the handlers. idx may be nil when periodic thumbnail
// generation is disabled.
func New(fs afero.Fs, scanner *catalog.Scanner, shared *search.SharedCatalog, store *settings.Store, idx IndexStatus, config *startup.Config) *Handlers {
	h := &Handlers{
		fs:        fs,
		scanner:   scanner,
		shared:    shared,
		settings:  store,
		mediaDir:  config.MediaDir,
		thumbsDir: config.ThumbsDir,
		retry:     filesystem.DefaultRetryConfig(),
		startTime: time.Now(),
	}
	// Avoid a typed-nil interface when no indexer was created.
	if idx != nil {
		if ix, ok := idx.(*indexer.Indexer); !ok || ix != nil {
			h.indexer = idx
		}
	}
	return h
}
