package search

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"video-grid/internal/catalog"
	"video-grid/internal/logging"
)

// Loader fetches the full catalog.
type Loader func(ctx context.Context) ([]catalog.Entry, error)

// SharedCatalog lazily loads one catalog for all sessions. Concurrent
// callers share a single in-flight load; a finished load is kept read-only
// until Invalidate or, when a max age is set, until it expires.
type SharedCatalog struct {
	load  Loader
	group singleflight.Group
	now   func() time.Time

	mu         sync.RWMutex
	index      *Index
	loadedAt   time.Time
	maxAge     time.Duration
	generation uint64

	loads atomic.Int64
}

// NewSharedCatalog creates a SharedCatalog backed by load.
func NewSharedCatalog(load Loader) *SharedCatalog {
	return &SharedCatalog{load: load, generation: 1, now: time.Now}
}

// SetMaxAge makes a loaded index expire d after its load finished. Zero
// keeps it until Invalidate.
func (c *SharedCatalog) SetMaxAge(d time.Duration) {
	c.mu.Lock()
	c.maxAge = d
	c.mu.Unlock()
}

// Peek returns the loaded index, or nil if no load has finished or the
// loaded one has expired. It never blocks on a load.
func (c *SharedCatalog) Peek() *Index {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.index == nil || c.expiredLocked() {
		return nil
	}
	return c.index
}

func (c *SharedCatalog) expiredLocked() bool {
	return c.maxAge > 0 && c.now().Sub(c.loadedAt) >= c.maxAge
}

// Get returns the loaded index, loading it if needed. Callers arriving while
// a load is in flight wait for that load instead of starting another one.
// Cancelling ctx abandons the wait but not the shared load.
func (c *SharedCatalog) Get(ctx context.Context) (*Index, error) {
	if ix := c.Peek(); ix != nil {
		return ix, nil
	}

	ch := c.group.DoChan("catalog", func() (interface{}, error) {
		// A load may have finished between Peek and DoChan.
		if ix := c.Peek(); ix != nil {
			return ix, nil
		}
		return c.fetch(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Index), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *SharedCatalog) fetch(ctx context.Context) (*Index, error) {
	c.mu.Lock()
	if c.index != nil {
		// Expired: sessions must not keep results from it.
		c.index = nil
		c.generation++
	}
	gen := c.generation
	c.mu.Unlock()

	c.loads.Add(1)
	entries, err := c.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	ix := NewIndex(entries, gen)

	c.mu.Lock()
	if c.generation == gen {
		c.index = ix
		c.loadedAt = c.now()
	}
	c.mu.Unlock()

	logging.Debug("Catalog loaded: %d entries (generation %d)", ix.Len(), gen)
	return ix, nil
}

// Prefetch starts a background load if none has completed yet.
func (c *SharedCatalog) Prefetch() {
	if c.Peek() != nil {
		return
	}
	go func() {
		if _, err := c.Get(context.Background()); err != nil {
			logging.Warn("Catalog prefetch failed: %v", err)
		}
	}()
}

// Invalidate drops the loaded index. The next Get loads a new generation
// and sessions discard results cached against the old one.
func (c *SharedCatalog) Invalidate() {
	c.mu.Lock()
	c.index = nil
	c.generation++
	c.mu.Unlock()
	c.group.Forget("catalog")
}

// Loads returns how many times the loader has been called.
func (c *SharedCatalog) Loads() int64 {
	return c.loads.Load()
}
