package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"album-server/internal/collection"
	"album-server/internal/mailer"
	"album-server/internal/participation"
	"album-server/internal/startup"
	"album-server/internal/thumbnail"

	"github.com/gorilla/mux"
)

func newTestHandlers(t *testing.T) (*Handlers, string) {
	t.Helper()

	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "pueblo"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "pueblo", "19970715-Fiesta.jpg"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	thumbs := thumbnail.NewCache(t.TempDir(), false)
	t.Cleanup(thumbs.Close)

	library := collection.NewLibrary(root, "", thumbs)
	store := participation.NewStore(t.TempDir(), t.TempDir(), "")
	mail := mailer.New(mailer.Config{})

	h := New(library, store, mail, thumbs, &startup.Config{Port: "3000"})
	return h, root
}

func newTestRouter(h *Handlers) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/test", h.Ping).Methods(http.MethodGet)
	r.HandleFunc("/api/coleccion/carpetas", h.ListFolders).Methods(http.MethodGet)
	r.HandleFunc("/api/coleccion/subcarpetas/{categoria}", h.ListSubfolders).Methods(http.MethodGet)
	r.HandleFunc("/api/coleccion/fotos/{carpeta}", h.ListPhotos).Methods(http.MethodGet)
	r.HandleFunc("/api/coleccion/stats", h.GetStats).Methods(http.MethodGet)
	r.HandleFunc("/api/participa", h.Participate).Methods(http.MethodPost)
	r.HandleFunc("/api/admin/participaciones", h.ListParticipations).Methods(http.MethodGet)
	r.HandleFunc("/api/admin/participaciones/{id}", h.DeleteParticipation).Methods(http.MethodDelete)
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods(http.MethodGet)
	r.HandleFunc("/version", h.GetVersion).Methods(http.MethodGet)
	return r
}

func doRequest(t *testing.T, h *Handlers, method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, body)
		req.Header.Set("Content-Type", contentType)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	rec := httptest.NewRecorder()
	newTestRouter(h).ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	return body
}

func TestPing(t *testing.T) {
	h, _ := newTestHandlers(t)

	rec := doRequest(t, h, http.MethodGet, "/api/test", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["success"] != true {
		t.Error("success should be true")
	}
	if body["message"] != "Servidor funcionando correctamente" {
		t.Errorf("message = %v", body["message"])
	}
}

func TestListFolders(t *testing.T) {
	h, _ := newTestHandlers(t)

	rec := doRequest(t, h, http.MethodGet, "/api/coleccion/carpetas", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	body := decodeBody(t, rec)
	carpetas, ok := body["carpetas"].([]interface{})
	if !ok || len(carpetas) != 1 {
		t.Fatalf("carpetas = %v", body["carpetas"])
	}
}

func TestListFoldersDegradesToEmpty(t *testing.T) {
	h, root := newTestHandlers(t)
	if err := os.RemoveAll(root); err != nil {
		t.Fatal(err)
	}

	rec := doRequest(t, h, http.MethodGet, "/api/coleccion/carpetas", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 even when the root is gone", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["success"] != true {
		t.Error("success should stay true on degradation")
	}
	carpetas, ok := body["carpetas"].([]interface{})
	if !ok || len(carpetas) != 0 {
		t.Errorf("carpetas = %v, want empty array", body["carpetas"])
	}
}

func TestListPhotos(t *testing.T) {
	h, _ := newTestHandlers(t)

	rec := doRequest(t, h, http.MethodGet, "/api/coleccion/fotos/pueblo", nil, "")
	body := decodeBody(t, rec)

	fotos, ok := body["fotos"].([]interface{})
	if !ok || len(fotos) != 1 {
		t.Fatalf("fotos = %v", body["fotos"])
	}

	foto := fotos[0].(map[string]interface{})
	if foto["titulo"] != "Fiesta" {
		t.Errorf("titulo = %v", foto["titulo"])
	}
	if foto["decada"] != "1990s" {
		t.Errorf("decada = %v", foto["decada"])
	}
}

func TestListPhotosUnknownFolderIsEmpty(t *testing.T) {
	h, _ := newTestHandlers(t)

	rec := doRequest(t, h, http.MethodGet, "/api/coleccion/fotos/no_existe", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	body := decodeBody(t, rec)
	fotos, ok := body["fotos"].([]interface{})
	if !ok || len(fotos) != 0 {
		t.Errorf("fotos = %v, want empty array", body["fotos"])
	}
}

func TestGetStats(t *testing.T) {
	h, _ := newTestHandlers(t)

	rec := doRequest(t, h, http.MethodGet, "/api/coleccion/stats", nil, "")
	body := decodeBody(t, rec)

	stats, ok := body["stats"].(map[string]interface{})
	if !ok {
		t.Fatalf("stats = %v", body["stats"])
	}
	if stats["totalFotos"].(float64) != 1 {
		t.Errorf("totalFotos = %v", stats["totalFotos"])
	}
}

func participationForm(t *testing.T, fields map[string]string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	for name, content := range files {
		part, err := w.CreateFormFile("fotos", name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, w.FormDataContentType()
}

func TestParticipate(t *testing.T) {
	h, _ := newTestHandlers(t)

	body, contentType := participationForm(t,
		map[string]string{
			"nombre":      "María",
			"email":       "maria@example.com",
			"descripcion": "La plaza en fiestas",
		},
		map[string][]byte{"abuela.jpg": []byte("fake")},
	)

	rec := doRequest(t, h, http.MethodPost, "/api/participa", body, contentType)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	resp := decodeBody(t, rec)
	if resp["success"] != true {
		t.Error("success should be true")
	}
	if resp["participacionId"] == "" || resp["participacionId"] == nil {
		t.Error("response missing participacionId")
	}

	if len(h.store.List()) != 1 {
		t.Error("participation was not logged")
	}
}

func TestParticipateValidation(t *testing.T) {
	h, _ := newTestHandlers(t)

	tests := []struct {
		name    string
		fields  map[string]string
		files   map[string][]byte
		message string
	}{
		{
			name:    "missing required fields",
			fields:  map[string]string{"nombre": "X"},
			files:   map[string][]byte{"a.jpg": []byte("x")},
			message: "Faltan campos requeridos: nombre, email y descripción son obligatorios",
		},
		{
			name:    "bad email",
			fields:  map[string]string{"nombre": "X", "email": "not-an-email", "descripcion": "Y"},
			files:   map[string][]byte{"a.jpg": []byte("x")},
			message: "El formato del email no es válido",
		},
		{
			name:    "no files",
			fields:  map[string]string{"nombre": "X", "email": "x@example.com", "descripcion": "Y"},
			files:   nil,
			message: "Debe subir al menos una imagen",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, contentType := participationForm(t, tt.fields, tt.files)
			rec := doRequest(t, h, http.MethodPost, "/api/participa", body, contentType)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			resp := decodeBody(t, rec)
			if resp["message"] != tt.message {
				t.Errorf("message = %v, want %q", resp["message"], tt.message)
			}
		})
	}
}

func TestListAndDeleteParticipations(t *testing.T) {
	h, _ := newTestHandlers(t)

	body, contentType := participationForm(t,
		map[string]string{"nombre": "X", "email": "x@example.com", "descripcion": "Y"},
		map[string][]byte{"a.jpg": []byte("x")},
	)
	doRequest(t, h, http.MethodPost, "/api/participa", body, contentType)

	rec := doRequest(t, h, http.MethodGet, "/api/admin/participaciones", nil, "")
	resp := decodeBody(t, rec)
	if resp["total"].(float64) != 1 {
		t.Fatalf("total = %v", resp["total"])
	}

	list := resp["participaciones"].([]interface{})
	id := list[0].(map[string]interface{})["id"].(string)

	rec = doRequest(t, h, http.MethodDelete, "/api/admin/participaciones/"+id, nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = doRequest(t, h, http.MethodDelete, "/api/admin/participaciones/"+id, nil, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
	resp = decodeBody(t, rec)
	if resp["message"] != "Participación no encontrada" {
		t.Errorf("message = %v", resp["message"])
	}
}

func TestHealthCheck(t *testing.T) {
	h, _ := newTestHandlers(t)

	rec := doRequest(t, h, http.MethodGet, "/health", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Status != statusHealthy || !resp.Ready {
		t.Errorf("status = %q ready = %v", resp.Status, resp.Ready)
	}
	if resp.TotalPhotos != 1 {
		t.Errorf("TotalPhotos = %d, want 1", resp.TotalPhotos)
	}
}

func TestReadinessCheck(t *testing.T) {
	h, root := newTestHandlers(t)

	rec := doRequest(t, h, http.MethodGet, "/readyz", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	if err := os.RemoveAll(root); err != nil {
		t.Fatal(err)
	}
	rec = doRequest(t, h, http.MethodGet, "/readyz", nil, "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 when root is gone", rec.Code)
	}
}

func TestGetVersion(t *testing.T) {
	h, _ := newTestHandlers(t)

	rec := doRequest(t, h, http.MethodGet, "/version", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["version"] == "" {
		t.Error("version missing from response")
	}
	if body["goVersion"] == "" {
		t.Error("goVersion missing from response")
	}
}
