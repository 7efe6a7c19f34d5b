package handlers

import (
	"net/http"
	"runtime"
	"time"

	"album-server/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusDegraded = "degraded"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Ready   bool   `json:"ready"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`

	// Collection summary
	TotalPhotos  int `json:"totalFotos"`
	TotalFolders int `json:"totalCarpetas"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`

	ThumbnailsEnabled bool `json:"thumbnailsEnabled"`
	ThumbnailsCached  int  `json:"thumbnailsCached"`
}

// HealthCheck returns the health status of the service. The collection
// root being unreadable degrades the status but the server stays up.
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	response := HealthResponse{
		Status:            statusHealthy,
		Ready:             true,
		Version:           startup.Version,
		Uptime:            time.Since(h.startTime).Round(time.Second).String(),
		GoVersion:         runtime.Version(),
		NumCPU:            runtime.NumCPU(),
		NumGoroutine:      runtime.NumGoroutine(),
		ThumbnailsEnabled: h.thumbs.IsEnabled(),
		ThumbnailsCached:  h.thumbs.Len(),
	}

	stats, err := h.library.Stats()
	if err != nil {
		response.Status = statusDegraded
	} else {
		response.TotalPhotos = stats.TotalPhotos
		response.TotalFolders = stats.TotalFolders
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	writeJSON(w, response)
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	// For HEAD requests, only send headers (no body)
	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{
			"status": "alive",
		})
	}
}

// ReadinessCheck returns 200 when the server can serve traffic. There is
// no warm-up phase: readiness matches liveness unless the collection root
// disappears.
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := h.library.Folders(); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		writeJSON(w, map[string]string{
			"status": "not_ready",
		})
		return
	}

	w.WriteHeader(http.StatusOK)
	writeJSON(w, map[string]string{
		"status": "ready",
	})
}
