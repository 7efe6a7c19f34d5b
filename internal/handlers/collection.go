package handlers

import (
	"errors"
	"net/http"

	"album-server/internal/collection"
	"album-server/internal/logging"
	"album-server/internal/metrics"
	"album-server/internal/photo"

	"github.com/gorilla/mux"
)

// ListFolders returns the top-level categories. Lookup failures degrade
// to an empty list with HTTP 200: the gallery renders empty instead of
// breaking while the disk is unavailable.
func (h *Handlers) ListFolders(w http.ResponseWriter, _ *http.Request) {
	folders, err := h.library.Folders()
	if err != nil {
		logging.Error("folders listing degraded: %v", err)
		metrics.CollectionLookupsTotal.WithLabelValues("folders", "degraded").Inc()
		folders = []photo.FolderSummary{}
	}

	writeJSON(w, map[string]interface{}{
		"success":  true,
		"carpetas": folders,
	})
}

// ListSubfolders returns the subfolders of one category.
func (h *Handlers) ListSubfolders(w http.ResponseWriter, r *http.Request) {
	category := mux.Vars(r)["categoria"]

	subs, err := h.library.Subfolders(category)
	if err != nil {
		logging.Warn("subfolders listing degraded for %q: %v", category, err)
		metrics.CollectionLookupsTotal.WithLabelValues("subfolders", "degraded").Inc()
		subs = []photo.SubfolderSummary{}
	}

	writeJSON(w, map[string]interface{}{
		"success":     true,
		"subcarpetas": subs,
	})
}

// ListPhotos returns the assembled records of one folder. An unknown
// folder yields an empty list, not a 404; the front end treats both the
// same way.
func (h *Handlers) ListPhotos(w http.ResponseWriter, r *http.Request) {
	folderKey := mux.Vars(r)["carpeta"]

	records, err := h.library.Photos(folderKey)
	if err != nil {
		if errors.Is(err, collection.ErrFolderNotFound) {
			logging.Debug("photos requested for unknown folder %q", folderKey)
		} else {
			logging.Error("photos listing degraded for %q: %v", folderKey, err)
		}
		metrics.CollectionLookupsTotal.WithLabelValues("photos", "degraded").Inc()
		records = []photo.Record{}
	}
	if records == nil {
		records = []photo.Record{}
	}

	writeJSON(w, map[string]interface{}{
		"success": true,
		"fotos":   records,
	})
}

// GetStats returns collection-wide aggregates.
func (h *Handlers) GetStats(w http.ResponseWriter, _ *http.Request) {
	stats, err := h.library.Stats()
	if err != nil {
		logging.Error("stats degraded: %v", err)
		metrics.CollectionLookupsTotal.WithLabelValues("stats", "degraded").Inc()
	}

	writeJSON(w, map[string]interface{}{
		"success": true,
		"stats":   stats,
	})
}

// Ping is a trivial API reachability check used by the front end.
func (h *Handlers) Ping(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]interface{}{
		"success": true,
		"message": "Servidor funcionando correctamente",
	})
}
