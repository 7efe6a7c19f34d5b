package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "album_server_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "album_server_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "album_server_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Thumbnail metrics
var (
	ThumbnailGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "album_server_thumbnail_generations_total",
			Help: "Total number of thumbnail generation attempts",
		},
		[]string{"status"},
	)

	ThumbnailGenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "album_server_thumbnail_generation_duration_seconds",
			Help:    "Thumbnail generation duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	ThumbnailCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "album_server_thumbnail_cache_hits_total",
			Help: "Total number of thumbnail cache hits",
		},
	)

	ThumbnailCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "album_server_thumbnail_cache_misses_total",
			Help: "Total number of thumbnail cache misses",
		},
	)

	ThumbnailCacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "album_server_thumbnail_cache_entries",
			Help: "Number of entries in the in-memory thumbnail cache",
		},
	)

	ThumbnailQueueDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "album_server_thumbnail_queue_dropped_total",
			Help: "Generation requests dropped because the queue was full",
		},
	)
)

// Filename parser metrics
var (
	FilenameParsesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "album_server_filename_parses_total",
			Help: "Filename metadata parses by resulting date precision",
		},
		[]string{"precision"},
	)
)

// Collection metrics
var (
	CollectionLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "album_server_collection_lookups_total",
			Help: "Collection read operations by outcome",
		},
		[]string{"operation", "status"},
	)

	CollectionPhotos = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "album_server_collection_photos",
			Help: "Number of photos per category, maintained by the observer",
		},
		[]string{"category"},
	)

	CollectionFolders = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "album_server_collection_folders",
			Help: "Number of top-level categories in the collection",
		},
	)

	WatcherEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "album_server_watcher_events_total",
			Help: "Total number of filesystem watcher events",
		},
		[]string{"event_type"},
	)

	WatcherErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "album_server_watcher_errors_total",
			Help: "Total number of filesystem watcher errors",
		},
	)
)

// Participation metrics
var (
	ParticipationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "album_server_participations_total",
			Help: "Participation submissions by outcome",
		},
		[]string{"status"},
	)

	ParticipationFilesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "album_server_participation_files_total",
			Help: "Total number of uploaded files accepted",
		},
	)

	MailSendsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "album_server_mail_sends_total",
			Help: "Email dispatch attempts by kind and outcome",
		},
		[]string{"kind", "status"},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "album_server_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
