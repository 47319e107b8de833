package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/afero"

	"video-grid/internal/catalog"
	"video-grid/internal/filesystem"
	"video-grid/internal/handlers"
	"video-grid/internal/indexer"
	"video-grid/internal/logging"
	"video-grid/internal/media"
	"video-grid/internal/metrics"
	"video-grid/internal/middleware"
	"video-grid/internal/search"
	"video-grid/internal/settings"
	"video-grid/internal/startup"
)

func main() {
	startTime := time.Now()

	// Load configuration
	config, err := startup.LoadConfig(os.Args[1:])
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	// Metrics and filesystem instrumentation
	metrics.InitializeMetrics()
	buildInfo := startup.GetBuildInfo()
	metrics.SetAppInfo(buildInfo.Version, buildInfo.Commit, buildInfo.GoVersion)
	filesystem.SetObserver(metrics.NewFilesystemObserver())
	filesystem.SetDefaultVolumeResolver(filesystem.NewVolumeResolver(map[string]string{
		"media":  config.MediaDir,
		"thumbs": config.ThumbsDir,
	}))

	fs := afero.NewOsFs()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scanner := catalog.NewScanner(fs, config.MediaDir, config.VideoExtensions, config.ThumbsDir)
	shared := search.NewSharedCatalog(scanner.Build)
	shared.SetMaxAge(config.SuggestCacheTTL)
	store := settings.NewStore(fs, config.SettingsFile)

	// Initialize thumbnail indexer
	startup.LogToolsInit(config.FFmpegPath, config.FFprobePath)
	startup.LogThumbnailInit(config.ThumbnailsEnabled, config.ThumbnailInterval)

	var idx *indexer.Indexer
	var collector *metrics.Collector
	if config.ThumbnailsEnabled && config.ThumbnailInterval > 0 {
		startup.LogIndexerInit(config.ThumbnailInterval)
		idx = newIndexer(fs, config)
		idx.SetOnIndexComplete(func(indexer.RunResult) {
			shared.Invalidate()
		})
		idx.Start(ctx)
		startup.LogIndexerStarted()

		collector = metrics.NewCollector(idx, time.Minute)
		collector.Start()
	}

	// Initialize handlers
	h := handlers.New(fs, scanner, shared, store, idx, config)

	// Setup router
	router := setupRouter(h, config.PublicDir)

	// Log routes dynamically
	startup.LogHTTPRoutes(router, config.LogStaticFiles, config.LogHealthChecks)

	// Apply metrics middleware
	var handler http.Handler = router
	if config.MetricsEnabled {
		handler = middleware.Metrics(middleware.DefaultMetricsConfig())(handler)
	}

	// Apply logging middleware
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogStaticFiles = config.LogStaticFiles
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	handler = middleware.Logger(loggingConfig)(handler)

	// Apply compression middleware
	handler = middleware.Compression(middleware.DefaultCompressionConfig())(handler)

	listener, port, err := startup.Listen("", config.Ports())
	if err != nil {
		startup.LogFatal("No port available: %v", err)
	}

	// Create server
	srv := &http.Server{
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // videos stream for as long as they play
		IdleTimeout:  60 * time.Second,
	}

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsSrv = startMetricsServer(h, config.MetricsPort)
	}

	// Start graceful shutdown handler
	go handleShutdown(srv, metricsSrv, idx, collector, cancel)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
		startup.LogFatal("Server error: %v", err)
	}
}

func newIndexer(fs afero.Fs, config *startup.Config) *indexer.Indexer {
	policy := media.StaleNever
	if config.StaleCheck {
		policy = media.StaleModTime
	}

	sampler := media.NewSampler(config.FFprobePath, config.ProbeTimeout, nil)
	materializer := media.NewMaterializer(fs, media.MaterializerConfig{
		ThumbsRoot:     config.ThumbsDir,
		FFmpegPath:     config.FFmpegPath,
		ExtractTimeout: config.ExtractTimeout,
		Policy:         policy,
	}, sampler, nil)

	walker := indexer.NewWalker(fs, config.VideoExtensions, indexer.Options{
		Exclude: []string{config.ThumbsDir},
		Label:   "thumbnails",
	})
	return indexer.New(walker, materializer, config.MediaDir, config.ThumbnailInterval)
}

func setupRouter(h *handlers.Handlers, publicDir string) *mux.Router {
	r := mux.NewRouter()

	// Health check and version routes
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	// API routes
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/catalog", h.GetCatalog).Methods("GET")
	api.HandleFunc("/list", h.ListDirectory).Methods("GET")
	api.HandleFunc("/search/suggestions", h.SearchSuggestions).Methods("GET")
	api.HandleFunc("/config", h.GetConfig).Methods("GET")
	api.HandleFunc("/config", h.SaveConfig).Methods("POST")

	// Files
	r.HandleFunc("/thumbs/{path:.*}", h.GetThumbnail).Methods("GET", "HEAD")
	r.HandleFunc("/videos/{path:.*}", h.StreamVideo).Methods("GET", "HEAD")

	// Static files
	r.PathPrefix("/").Handler(http.FileServer(http.Dir(publicDir)))

	return r
}

func startMetricsServer(h *handlers.Handlers, port string) *http.Server {
	mr := mux.NewRouter()
	mr.Handle("/metrics", h.MetricsHandler()).Methods("GET")

	srv := &http.Server{
		Addr:              net.JoinHostPort("", port),
		Handler:           mr,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Metrics server error: %v", err)
		}
	}()
	return srv
}

func handleShutdown(srv, metricsSrv *http.Server, idx *indexer.Indexer, collector *metrics.Collector, cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	if idx != nil {
		startup.LogShutdownStep("Stopping thumbnail indexer")
		idx.Stop()
		cancel()
		startup.LogShutdownStepComplete("Thumbnail indexer stopped")
	}

	if collector != nil {
		collector.Stop()
	}

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownComplete()
}
