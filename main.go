package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"album-server/internal/collection"
	"album-server/internal/handlers"
	"album-server/internal/logging"
	"album-server/internal/mailer"
	"album-server/internal/memory"
	"album-server/internal/metrics"
	"album-server/internal/middleware"
	"album-server/internal/participation"
	"album-server/internal/startup"
	"album-server/internal/thumbnail"

	"github.com/gorilla/mux"
)

func main() {
	startTime := time.Now()

	// Configure the Go memory limit before any large allocations
	memory.ConfigureFromEnv()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	// Initialize thumbnail cache
	thumbs := thumbnail.NewCache(config.ThumbnailDir, config.ThumbnailsEnabled)
	startup.LogThumbnailInit(config.ThumbnailsEnabled)

	// Initialize collection library
	library := collection.NewLibrary(config.CollectionDir, config.AudioDir, thumbs)

	// Initialize participation store
	store := participation.NewStore(config.DataDir, config.UploadDir, config.AudioDir)

	// Initialize mailer
	mail := mailer.New(mailer.Config{
		Host:         config.SMTPHost,
		Port:         config.SMTPPort,
		Username:     config.SMTPUsername,
		Password:     config.SMTPPassword,
		From:         config.MailFrom,
		OwnerAddress: config.MailOwner,
	})
	startup.LogMailerInit(mail.Enabled(), config.SMTPHost)

	// Start collection observer in background (non-blocking)
	observer := collection.NewObserver(library)
	go observer.Run()
	startup.LogObserverStarted(config.CollectionDir)

	// Initialize handlers
	h := handlers.New(library, store, mail, thumbs, config)

	// Setup router
	router := setupRouter(h, config.PublicDir)

	// Log routes dynamically
	startup.LogHTTPRoutes(router, config.LogStaticFiles, config.LogHealthChecks)

	// Apply middleware chain: CORS -> logging -> metrics -> compression
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogStaticFiles = config.LogStaticFiles
	loggingConfig.LogHealthChecks = config.LogHealthChecks

	handler := middleware.CORS()(
		middleware.Logger(loggingConfig)(
			middleware.Metrics(middleware.DefaultMetricsConfig())(
				middleware.Compression(middleware.DefaultCompressionConfig())(router))))

	// Publish build info and pre-populate metric labels
	info := startup.GetBuildInfo()
	metrics.SetAppInfo(info.Version, info.Commit, info.GoVersion)
	metrics.InitializeMetrics()

	// Metrics server on its own port
	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", h.MetricsHandler())
		metricsSrv = &http.Server{
			Addr:        ":" + config.MetricsPort,
			Handler:     metricsMux,
			ReadTimeout: 15 * time.Second,
			IdleTimeout: 60 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != http.ErrServerClosed {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	// Create server
	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	// Start graceful shutdown handler
	go handleShutdown(srv, metricsSrv, observer, thumbs)

	// Start server
	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		startup.LogFatal("Server error: %v", err)
	}
}

func setupRouter(h *handlers.Handlers, publicDir string) *mux.Router {
	r := mux.NewRouter()

	// Health check and version routes
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	// Collection browsing routes (paths kept from the original front end)
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/test", h.Ping).Methods("GET")
	api.HandleFunc("/coleccion/carpetas", h.ListFolders).Methods("GET")
	api.HandleFunc("/coleccion/subcarpetas/{categoria}", h.ListSubfolders).Methods("GET")
	api.HandleFunc("/coleccion/fotos/{carpeta}", h.ListPhotos).Methods("GET")
	api.HandleFunc("/coleccion/stats", h.GetStats).Methods("GET")

	// Contributions
	api.HandleFunc("/participa", h.Participate).Methods("POST")

	// Admin
	admin := api.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/participaciones", h.ListParticipations).Methods("GET")
	admin.HandleFunc("/participaciones/{id}", h.DeleteParticipation).Methods("DELETE")
	admin.HandleFunc("/miniaturas/{carpeta}", h.WarmThumbnails).Methods("POST")

	// Static files (front end, collection images, thumbnails, audio)
	r.PathPrefix("/").Handler(http.FileServer(http.Dir(publicDir)))

	return r
}

func handleShutdown(srv, metricsSrv *http.Server, observer *collection.Observer, thumbs *thumbnail.Cache) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Stopping collection observer")
	observer.Stop()
	startup.LogShutdownStepComplete("Collection observer stopped")

	// In-flight requests may still schedule thumbnail jobs, so the HTTP
	// server drains before the cache closes.
	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownStep("Draining thumbnail workers")
	thumbs.Close()
	startup.LogShutdownStepComplete("Thumbnail workers drained")

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownComplete()
}
