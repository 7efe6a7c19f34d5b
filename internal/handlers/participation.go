package handlers

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"album-server/internal/collection"
	"album-server/internal/logging"
	"album-server/internal/participation"

	"github.com/gorilla/mux"
)

// maxFormMemory bounds the in-memory portion of a multipart parse;
// larger files spill to temp files.
const maxFormMemory = 32 << 20

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Participate handles the contribution form: validates the fields, stores
// the files and fires the notification emails without blocking the
// response.
func (h *Handlers) Participate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		writeError(w, "Debe subir al menos una imagen", http.StatusBadRequest)
		return
	}

	sub := participation.Submission{
		Name:        strings.TrimSpace(r.FormValue("nombre")),
		Email:       strings.TrimSpace(r.FormValue("email")),
		Phone:       strings.TrimSpace(r.FormValue("telefono")),
		PhotoDate:   strings.TrimSpace(r.FormValue("fechaFoto")),
		Description: strings.TrimSpace(r.FormValue("descripcion")),
		Category:    strings.TrimSpace(r.FormValue("categoria")),
		Comments:    strings.TrimSpace(r.FormValue("comentarios")),
	}

	if sub.Name == "" || sub.Email == "" || sub.Description == "" {
		writeError(w, "Faltan campos requeridos: nombre, email y descripción son obligatorios", http.StatusBadRequest)
		return
	}
	if !emailPattern.MatchString(sub.Email) {
		writeError(w, "El formato del email no es válido", http.StatusBadRequest)
		return
	}

	files := r.MultipartForm.File["fotos"]
	if len(files) == 0 {
		writeError(w, "Debe subir al menos una imagen", http.StatusBadRequest)
		return
	}

	rec, err := h.store.Process(sub, files)
	if err != nil {
		if errors.Is(err, participation.ErrInvalidFile) {
			writeError(w, "Solo se permiten archivos de imagen (jpg, jpeg, png, gif) de hasta 25MB", http.StatusBadRequest)
			return
		}
		logging.Error("participation processing failed: %v", err)
		writeError(w, "Error interno del servidor al procesar la participación", http.StatusInternalServerError)
		return
	}

	// Emails are best effort and must not delay the response.
	go func() {
		if err := h.mail.SendParticipationEmails(rec); err != nil {
			logging.Warn("participation %s emails incomplete: %v", rec.ID, err)
		}
	}()

	writeJSON(w, map[string]interface{}{
		"success":         true,
		"message":         "¡Gracias por tu participación! Tus fotos han sido recibidas correctamente.",
		"participacionId": rec.ID,
	})
}

// ListParticipations returns every logged contribution (admin).
func (h *Handlers) ListParticipations(w http.ResponseWriter, _ *http.Request) {
	records := h.store.List()
	writeJSON(w, map[string]interface{}{
		"success":         true,
		"total":           len(records),
		"participaciones": records,
	})
}

// DeleteParticipation removes one contribution and its files (admin).
func (h *Handlers) DeleteParticipation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.store.Delete(id); err != nil {
		if errors.Is(err, participation.ErrNotFound) {
			writeError(w, "Participación no encontrada", http.StatusNotFound)
			return
		}
		logging.Error("failed to delete participation %s: %v", id, err)
		writeError(w, "Error al eliminar participación", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]interface{}{
		"success": true,
		"message": "Participación eliminada correctamente",
	})
}

// WarmThumbnails synchronously generates missing thumbnails for a folder
// (admin).
func (h *Handlers) WarmThumbnails(w http.ResponseWriter, r *http.Request) {
	folderKey := mux.Vars(r)["carpeta"]

	generated, err := h.library.WarmThumbnails(folderKey)
	if err != nil {
		if errors.Is(err, collection.ErrFolderNotFound) {
			writeError(w, "Carpeta no encontrada", http.StatusNotFound)
			return
		}
		logging.Error("thumbnail warm-up failed for %q: %v", folderKey, err)
		writeError(w, "Error al generar miniaturas", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]interface{}{
		"success":   true,
		"generadas": generated,
	})
}
