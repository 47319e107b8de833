package handlers

import (
	"net/http"
	"runtime"
	"time"

	"video-grid/internal/filesystem"
	"video-grid/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusDegraded = "degraded"
	statusDown     = "unavailable"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Ready   bool   `json:"ready"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`

	// Thumbnail indexer, present when periodic generation is enabled
	Indexing          bool   `json:"indexing"`
	LastIndexed       string `json:"lastIndexed,omitempty"`
	InitialIndexError string `json:"initialIndexError,omitempty"`
	FilesIndexed      int64  `json:"filesIndexed"`
	FoldersIndexed    int64  `json:"foldersIndexed"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`

	// Catalog snapshot held for suggestions
	CatalogEntries int `json:"catalogEntries,omitempty"`
}

// ready reports whether the media root can be read.
func (h *Handlers) ready() bool {
	info, err := filesystem.StatWithRetry(h.fs, h.mediaDir, h.retry)
	return err == nil && info.IsDir()
}

// HealthCheck returns the health status of the service
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	ready := h.ready()

	response := HealthResponse{
		Ready:        ready,
		Version:      startup.Version,
		Uptime:       time.Since(h.startTime).Round(time.Second).String(),
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
		Status:       statusHealthy,
	}

	if h.indexer != nil {
		status := h.indexer.GetHealthStatus()
		response.Indexing = status.Indexing
		response.FilesIndexed = status.FilesIndexed
		response.FoldersIndexed = status.FoldersIndexed
		if !status.LastIndexed.IsZero() {
			response.LastIndexed = status.LastIndexed.Format(time.RFC3339)
		}
		if status.InitialIndexError != "" {
			response.InitialIndexError = status.InitialIndexError
			response.Status = statusDegraded
		}
	}

	if h.shared != nil {
		if ix := h.shared.Peek(); ix != nil {
			response.CatalogEntries = ix.Len()
		}
	}

	w.Header().Set("Content-Type", "application/json")

	if !ready {
		response.Status = statusDown
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	writeJSON(w, response)
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	// For HEAD requests, only send headers (no body)
	if r.Method == http.MethodHead {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		return
	}
	writeJSONStatus(w, "alive", http.StatusOK)
}

// ReadinessCheck returns 200 only while the media root is readable
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, _ *http.Request) {
	if h.ready() {
		writeJSONStatus(w, "ready", http.StatusOK)
		return
	}
	writeJSONStatus(w, "not_ready", http.StatusServiceUnavailable)
}
