// Package main provides the entry point for the video grid server.
//
// The server lets a browser play several videos at once in a grid. Each
// cell browses the media tree on its own, searches the whole catalog
// incrementally and plays one video.
//
// # Application Lifecycle
//
//  1. Configuration Loading: environment variables, an optional TOML file
//     (CONFIG_FILE) and the media directory as the first argument
//  2. Instrumentation: Prometheus metrics and filesystem retry observers
//  3. Component Initialization:
//     - Catalog Scanner: flattens the media tree on every request
//     - Shared Catalog: one snapshot for fuzzy suggestions
//     - Settings Store: persisted grid defaults in SETTINGS_FILE
//     - Thumbnail Indexer: periodic midpoint frames (THUMBNAIL_INTERVAL)
//  4. HTTP Server Setup: routes, middleware and port fallback
//  5. Graceful Shutdown: SIGINT/SIGTERM stop every component
//
// # HTTP Server
//
// The application runs two HTTP servers:
//
//  1. Main Server (PORT, falling back to FALLBACK_PORTS):
//     - Static frontend from PUBLIC_DIR
//     - /api/catalog, /api/list, /api/search/suggestions, /api/config
//     - /videos/{path} with Range support and /thumbs/{path}
//     - /health, /healthz, /livez, /readyz and /version
//
//  2. Metrics Server (METRICS_PORT, optional):
//     - Prometheus metrics endpoint (/metrics)
//
// Thumbnails are normally produced ahead of time with cmd/genthumbs; the
// server only generates them itself when THUMBNAIL_INTERVAL is set.
//
// # Related Packages
//
//   - [video-grid/internal/catalog]: directory listings and the flat catalog
//   - [video-grid/internal/handlers]: HTTP request handlers
//   - [video-grid/internal/indexer]: media tree walks and thumbnail runs
//   - [video-grid/internal/media]: ffprobe sampling and ffmpeg extraction
//   - [video-grid/internal/middleware]: HTTP middleware (logging, metrics, gzip)
//   - [video-grid/internal/search]: incremental search and suggestions
//   - [video-grid/internal/startup]: configuration and initialization
package main
