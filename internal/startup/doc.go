// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// Configuration is loaded by [LoadConfig] from environment variables. When
// CONFIG_FILE names a TOML file, keys it sets (lowercased variable names,
// e.g. media_dir) are used for variables that are not set in the
// environment.
//
//   - MEDIA_DIR: Video tree to serve (default: first argument, else ".")
//   - THUMBS_DIR: Thumbnail tree (default: ./thumbs)
//   - PUBLIC_DIR: Static web UI (default: ./public)
//   - SETTINGS_FILE: Persisted UI settings (default: ./config.json)
//   - PORT, FALLBACK_PORTS: Listen port and ports tried when it is taken (default: 8080, 8081)
//   - METRICS_PORT, METRICS_ENABLED: Prometheus server (default: 9090, true)
//   - FFMPEG_PATH, FFPROBE_PATH: Tool locations (default: looked up in PATH)
//   - PROBE_TIMEOUT, EXTRACT_TIMEOUT: Per-invocation tool timeouts (default: none)
//   - THUMBNAIL_INTERVAL: Periodic thumbnail generation in the server (default: off)
//   - SUGGEST_CACHE_TTL: How long search suggestions reuse one catalog walk (default: 30s, 0 = until the next index run)
//   - THUMBNAIL_STALE_CHECK: Regenerate thumbnails older than their video (default: false)
//   - VIDEO_EXTENSIONS: Recognized extensions (default: .mp4 .mkv .webm .mov .avi .m4v)
//   - LOG_LEVEL, LOG_FILE: Log level and optional rotated log file
//   - LOG_STATIC_FILES, LOG_HEALTH_CHECKS: Access log filters
//
// # Listening
//
// [Listen] tries each configured port in order and skips ports that are
// already in use. [LocalAddresses] lists the URLs printed at startup.
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo].
package startup
