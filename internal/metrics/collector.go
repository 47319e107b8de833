package metrics

import (
	"time"

	"video-grid/internal/logging"
)

// StatsProvider interface for collecting stats
type StatsProvider interface {
	GetStats() Stats
}

// Stats holds the current library statistics
type Stats struct {
	TotalVideos     int
	TotalFolders    int
	TotalThumbnails int
}

// Collector periodically collects and updates library gauges
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider == nil {
		return
	}

	stats := c.statsProvider.GetStats()

	MediaVideosTotal.Set(float64(stats.TotalVideos))
	MediaFoldersTotal.Set(float64(stats.TotalFolders))
	MediaThumbnailsTotal.Set(float64(stats.TotalThumbnails))

	logging.Debug("Metrics collected: videos=%d, folders=%d, thumbnails=%d",
		stats.TotalVideos, stats.TotalFolders, stats.TotalThumbnails)
}
