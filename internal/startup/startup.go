package startup

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/pelletier/go-toml/v2"

	"video-grid/internal/logging"
	"video-grid/internal/mediatypes"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// Config holds all application configuration
type Config struct {
	MediaDir     string
	ThumbsDir    string
	PublicDir    string
	SettingsFile string
	ConfigFile   string
	LogFile      string

	Port          string
	FallbackPorts []string
	MetricsPort   string

	MetricsEnabled  bool
	LogStaticFiles  bool
	LogHealthChecks bool

	FFmpegPath        string
	FFprobePath       string
	ProbeTimeout      time.Duration
	ExtractTimeout    time.Duration
	ThumbnailInterval time.Duration
	SuggestCacheTTL   time.Duration
	StaleCheck        bool
	VideoExtensions   mediatypes.ExtensionSet

	// ThumbnailsEnabled is false when ThumbsDir cannot be created or written.
	ThumbnailsEnabled bool
}

// Ports returns the listen ports in the order they should be tried.
func (c *Config) Ports() []string {
	return append([]string{c.Port}, c.FallbackPorts...)
}

// source resolves a setting from the environment first, then the optional
// TOML config file. File keys are the lowercased variable names, e.g.
// media_dir = "/srv/videos".
type source struct {
	file map[string]interface{}
}

func loadSource(path string) (*source, error) {
	src := &source{file: map[string]interface{}{}}
	if path == "" {
		return src, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := toml.Unmarshal(data, &src.file); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return src, nil
}

func (s *source) get(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	if value, ok := s.file[strings.ToLower(key)]; ok {
		return fmt.Sprint(value)
	}
	return defaultValue
}

func (s *source) getBool(key string, defaultValue bool) bool {
	return parseBool(key, s.get(key, ""), defaultValue)
}

func (s *source) getDuration(key string, defaultValue time.Duration) time.Duration {
	return parseDuration(key, s.get(key, ""), defaultValue)
}

// LoadConfig loads and validates configuration. The media directory comes
// from MEDIA_DIR or, failing that, the first command line argument.
func LoadConfig(args []string) (*Config, error) {
	printBanner()
	logSystemInfo()

	configFile := getEnv("CONFIG_FILE", "")
	src, err := loadSource(configFile)
	if err != nil {
		return nil, err
	}

	mediaDefault := "."
	if len(args) > 0 && args[0] != "" {
		mediaDefault = args[0]
	}

	cfg := &Config{
		MediaDir:          src.get("MEDIA_DIR", mediaDefault),
		ThumbsDir:         src.get("THUMBS_DIR", "./thumbs"),
		PublicDir:         src.get("PUBLIC_DIR", "./public"),
		SettingsFile:      src.get("SETTINGS_FILE", "./config.json"),
		ConfigFile:        configFile,
		LogFile:           src.get("LOG_FILE", ""),
		Port:              src.get("PORT", "8080"),
		FallbackPorts:     splitList(src.get("FALLBACK_PORTS", "8081")),
		MetricsPort:       src.get("METRICS_PORT", "9090"),
		MetricsEnabled:    src.getBool("METRICS_ENABLED", true),
		LogStaticFiles:    src.getBool("LOG_STATIC_FILES", false),
		LogHealthChecks:   src.getBool("LOG_HEALTH_CHECKS", true),
		FFmpegPath:        src.get("FFMPEG_PATH", "ffmpeg"),
		FFprobePath:       src.get("FFPROBE_PATH", "ffprobe"),
		ProbeTimeout:      src.getDuration("PROBE_TIMEOUT", 0),
		ExtractTimeout:    src.getDuration("EXTRACT_TIMEOUT", 0),
		ThumbnailInterval: src.getDuration("THUMBNAIL_INTERVAL", 0),
		SuggestCacheTTL:   src.getDuration("SUGGEST_CACHE_TTL", 30*time.Second),
		StaleCheck:        src.getBool("THUMBNAIL_STALE_CHECK", false),
		VideoExtensions:   mediatypes.ParseExtensions(src.get("VIDEO_EXTENSIONS", "")),
	}

	if cfg.LogFile != "" {
		logging.Setup(logging.Options{File: cfg.LogFile})
	}

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")
	if cfg.ConfigFile != "" {
		logging.Info("  CONFIG_FILE:           %s", cfg.ConfigFile)
	}
	logging.Info("  MEDIA_DIR:             %s", cfg.MediaDir)
	logging.Info("  THUMBS_DIR:            %s", cfg.ThumbsDir)
	logging.Info("  PUBLIC_DIR:            %s", cfg.PublicDir)
	logging.Info("  SETTINGS_FILE:         %s", cfg.SettingsFile)
	logging.Info("  PORT:                  %s", cfg.Port)
	logging.Info("  FALLBACK_PORTS:        %s", strings.Join(cfg.FallbackPorts, ","))
	logging.Info("  METRICS_PORT:          %s", cfg.MetricsPort)
	logging.Info("  METRICS_ENABLED:       %v", cfg.MetricsEnabled)
	logging.Info("  FFMPEG_PATH:           %s", cfg.FFmpegPath)
	logging.Info("  FFPROBE_PATH:          %s", cfg.FFprobePath)
	logging.Info("  PROBE_TIMEOUT:         %s", durationString(cfg.ProbeTimeout))
	logging.Info("  EXTRACT_TIMEOUT:       %s", durationString(cfg.ExtractTimeout))
	logging.Info("  THUMBNAIL_INTERVAL:    %s", durationString(cfg.ThumbnailInterval))
	logging.Info("  SUGGEST_CACHE_TTL:     %s", durationString(cfg.SuggestCacheTTL))
	logging.Info("  THUMBNAIL_STALE_CHECK: %v", cfg.StaleCheck)
	logging.Info("  VIDEO_EXTENSIONS:      %s", cfg.VideoExtensions)
	logging.Info("  LOG_STATIC_FILES:      %v", cfg.LogStaticFiles)
	logging.Info("  LOG_HEALTH_CHECKS:     %v", cfg.LogHealthChecks)
	logging.Info("  LOG_LEVEL:             %s", logging.GetLevel())
	if cfg.LogFile != "" {
		logging.Info("  LOG_FILE:              %s", cfg.LogFile)
	}

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	for _, p := range []struct {
		name string
		dst  *string
	}{
		{"media", &cfg.MediaDir},
		{"thumbnails", &cfg.ThumbsDir},
		{"public", &cfg.PublicDir},
		{"settings file", &cfg.SettingsFile},
	} {
		abs, err := filepath.Abs(*p.dst)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s path: %w", p.name, err)
		}
		*p.dst = abs
		logging.Info("  %-14s %s", p.name+":", abs)
	}

	if err := checkDirectory(cfg.MediaDir, "media"); err != nil {
		return nil, fmt.Errorf("media directory error: %w", err)
	}
	if err := checkDirectory(cfg.PublicDir, "public"); err != nil {
		logging.Warn("  Public directory issue: %v", err)
		logging.Warn("  The web UI will not be served")
	}

	cfg.ThumbnailsEnabled = setupOptionalDir(cfg.ThumbsDir, "thumbnails")

	logging.Info("")
	logging.Info("  Feature availability:")
	logging.Info("    Thumbnails:  %s", enabledString(cfg.ThumbnailsEnabled))
	logging.Info("    Metrics:     %s", enabledString(cfg.MetricsEnabled))

	return cfg, nil
}

func setupOptionalDir(path, name string) bool {
	logging.Debug("  Setting up %s directory: %s", name, path)

	if err := os.MkdirAll(path, 0o755); err != nil {
		logging.Warn("    Failed to create %s directory: %v", name, err)
		logging.Warn("    %s will be disabled", name)
		return false
	}

	if err := testWriteAccess(path); err != nil {
		logging.Warn("    %s directory is not writable: %v", name, err)
		logging.Warn("    %s will be disabled", name)
		return false
	}

	logging.Debug("    [OK] %s directory ready", name)
	return true
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

func durationString(d time.Duration) string {
	if d <= 0 {
		return "none"
	}
	return d.String()
}

// LogToolsInit checks that ffmpeg and ffprobe can be run.
func LogToolsInit(ffmpegPath, ffprobePath string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("THUMBNAIL TOOLS")
	logging.Info("------------------------------------------------------------")

	for _, tool := range []string{ffprobePath, ffmpegPath} {
		if err := checkTool(tool); err != nil {
			logging.Warn("  %s check failed: %v", filepath.Base(tool), err)
			logging.Warn("  Thumbnail generation will skip every video")
			continue
		}
		logging.Info("  [OK] %s is available", filepath.Base(tool))
	}
}

// LogThumbnailInit logs thumbnail generation settings
func LogThumbnailInit(enabled bool, interval time.Duration) {
	if !enabled {
		logging.Info("  Thumbnails disabled (thumbnail directory not writable)")
		logging.Info("  Placeholders will be shown instead")
		return
	}
	if interval <= 0 {
		logging.Info("  Periodic thumbnail generation: OFF (run genthumbs or set THUMBNAIL_INTERVAL)")
		return
	}
	logging.Info("  Periodic thumbnail generation every %v", interval)
}

// LogIndexerInit logs indexer initialization
func LogIndexerInit(interval time.Duration) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("INDEXER INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Thumbnail interval: %v", interval)
	logging.Info("  Starting indexer...")
}

// LogIndexerStarted logs successful indexer start
func LogIndexerStarted() {
	logging.Info("  [OK] Indexer started")
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			// Prefix-only routes such as the static file server have a prefix template.
			pathTemplate, err = route.GetPathRegexp()
			if err != nil {
				return nil
			}
		}

		methods, err := route.GetMethods()
		if err != nil {
			methods = []string{"*"}
		}

		name := route.GetName()

		for _, method := range methods {
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   pathTemplate,
				Name:   name,
			})
		}

		return nil
	})

	return routes, err
}

// LogHTTPRoutes logs all registered HTTP routes dynamically
func LogHTTPRoutes(router *mux.Router, logStaticFiles, logHealthChecks bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("HTTP SERVER SETUP")
	logging.Info("------------------------------------------------------------")

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("error walking routes: %v", err)
		}

		logging.Debug("  Registered routes (%d total):", len(routes))
		logging.Debug("")

		groups := make(map[string][]RouteInfo)
		for _, route := range routes {
			prefix := getRouteGroup(route.Path)
			groups[prefix] = append(groups[prefix], route)
		}

		groupKeys := make([]string, 0, len(groups))
		for k := range groups {
			groupKeys = append(groupKeys, k)
		}
		sort.Strings(groupKeys)

		for _, group := range groupKeys {
			if group != "" {
				logging.Debug("  [%s]", group)
			} else {
				logging.Debug("  [root]")
			}

			for _, route := range groups[group] {
				logging.Debug("    %-6s %s", route.Method, route.Path)
			}
			logging.Debug("")
		}
	}

	logging.Info("  HTTP logging enabled")
	if logStaticFiles {
		logging.Info("    Static file logging: ON")
	} else {
		logging.Info("    Static file logging: OFF (set LOG_STATIC_FILES=true to enable)")
	}
	if logHealthChecks {
		logging.Info("    Health check logging: ON")
	} else {
		logging.Info("    Health check logging: OFF (set LOG_HEALTH_CHECKS=true to enable)")
	}
}

// getRouteGroup extracts a group name from a route path
func getRouteGroup(path string) string {
	path = strings.TrimPrefix(path, "/")

	parts := strings.SplitN(path, "/", 2)
	first := parts[0]

	if first == "api" && len(parts) > 1 {
		subParts := strings.SplitN(parts[1], "/", 2)
		return "api/" + subParts[0]
	}

	return first
}

// Listen binds the first free port from ports on host. A port already in
// use is skipped; any other error stops the search.
func Listen(host string, ports []string) (net.Listener, string, error) {
	for i, port := range ports {
		ln, err := net.Listen("tcp", net.JoinHostPort(host, port))
		if err == nil {
			_, bound, _ := net.SplitHostPort(ln.Addr().String())
			return ln, bound, nil
		}
		if !errors.Is(err, syscall.EADDRINUSE) {
			return nil, "", fmt.Errorf("listen on port %s: %w", port, err)
		}
		if i < len(ports)-1 {
			logging.Warn("Port %s is in use, trying next...", port)
		}
	}
	return nil, "", errors.New("could not find a free port")
}

// LocalAddresses returns URLs the server can be reached at: localhost, the
// loopback address and every non-loopback IPv4 interface address.
func LocalAddresses(port string) []string {
	out := []string{
		"http://" + net.JoinHostPort("localhost", port),
		"http://" + net.JoinHostPort("127.0.0.1", port),
	}

	addrs, err := net.InterfaceAddrs()
	if err != nil {
		logging.Debug("Failed to list interface addresses: %v", err)
		return out
	}
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipNet.IP.To4(); ip4 != nil {
			out = append(out, "http://"+net.JoinHostPort(ip4.String(), port))
		}
	}
	return out
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted logs successful server start with all endpoint information
func LogServerStarted(config ServerConfig) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SERVER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("")
	logging.Info("  Available addresses:")
	for _, addr := range LocalAddresses(config.Port) {
		logging.Info("    %s", addr)
	}
	logging.Info("")
	if config.MetricsEnabled {
		logging.Info("  Metrics:         http://localhost:%s/metrics", config.MetricsPort)
	} else {
		logging.Info("  Metrics:         DISABLED")
	}
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

// Helper functions

func printBanner() {
	banner := `
------------------------------------------------------------
        _     _                            _     _
 __   _(_) __| | ___  ___         __ _ _ __(_) __| |
 \ \ / / |/ _' |/ _ \/ _ \ _____ / _' | '__| |/ _' |
  \ V /| | (_| |  __/ (_) |_____| (_| | |  | | (_| |
   \_/ |_|\__,_|\___|\___/       \__, |_|  |_|\__,_|
                                 |___/
------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())

	if logging.IsDebugEnabled() {
		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}
		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

// checkDirectory verifies that path exists and is a directory. Unlike the
// thumbnails directory it is never created.
func checkDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s exists but is not a directory", path)
	}

	logging.Debug("    [OK] Directory exists")

	if name == "media" && logging.IsDebugEnabled() {
		entries, err := os.ReadDir(path)
		if err == nil {
			fileCount := 0
			dirCount := 0
			for _, e := range entries {
				if e.IsDir() {
					dirCount++
				} else {
					fileCount++
				}
			}
			logging.Debug("    Contents: %d files, %d directories (top level)", fileCount, dirCount)
		}
	}

	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
	}
	return nil
}

func checkTool(tool string) error {
	path, err := exec.LookPath(tool)
	if err != nil {
		return fmt.Errorf("%s not found in PATH", tool)
	}
	logging.Debug("  %s path: %s", filepath.Base(tool), path)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	output, err := exec.CommandContext(ctx, path, "-version").Output()
	if err != nil {
		return fmt.Errorf("failed to get %s version: %w", tool, err)
	}

	if first, _, _ := strings.Cut(string(output), "\n"); first != "" {
		logging.Debug("  %s version: %s", filepath.Base(tool), strings.TrimSpace(first))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseBool(key, value string, defaultValue bool) bool {
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

// parseDuration accepts Go durations ("90s") and bare numbers of seconds.
func parseDuration(key, value string, defaultValue time.Duration) time.Duration {
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil && d >= 0 {
		return d
	}
	if secs, err := strconv.ParseFloat(value, 64); err == nil && secs >= 0 {
		return time.Duration(secs * float64(time.Second))
	}
	logging.Warn("Invalid duration for %s: %q, using default: %v", key, value, defaultValue)
	return defaultValue
}

func splitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
}
