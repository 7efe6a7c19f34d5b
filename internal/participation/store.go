package participation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"album-server/internal/logging"
	"album-server/internal/metrics"

	"github.com/google/uuid"
	"github.com/rwcarlsen/goexif/exif"
)

var (
	// ErrNotFound is returned when no participation has the given ID.
	ErrNotFound = errors.New("participation not found")

	// ErrInvalidFile is returned when an uploaded file is not an accepted
	// image or exceeds the size limit.
	ErrInvalidFile = errors.New("invalid upload")
)

const (
	maxFileSize = 25 << 20
	maxFiles    = 10

	logFileName = "participaciones.json"
)

// uploadExtensions lists the accepted upload types. Stricter than the
// browsing whitelist: contributions are reviewed as plain photos.
var uploadExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// FileRecord describes one stored upload.
type FileRecord struct {
	OriginalName string `json:"nombreOriginal"`
	StoredName   string `json:"nombreGuardado"`
	Path         string `json:"ruta"`
	Size         int64  `json:"tamaño"`
	ContentType  string `json:"tipo"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
	CaptureDate  string `json:"fechaCaptura,omitempty"`
	AudioURL     string `json:"audio,omitempty"`
}

// Record is one visitor contribution as stored in the append log.
type Record struct {
	ID          string       `json:"id"`
	Date        string       `json:"fecha"`
	Name        string       `json:"nombre"`
	Email       string       `json:"email"`
	Phone       string       `json:"telefono"`
	PhotoDate   string       `json:"fechaFoto"`
	Description string       `json:"descripcion"`
	Category    string       `json:"categoria"`
	Comments    string       `json:"comentarios"`
	Folder      string       `json:"carpeta"`
	FolderPath  string       `json:"rutaCarpeta"`
	Files       []FileRecord `json:"archivos"`
	Status      string       `json:"estado"`
}

// Submission carries the form fields of a contribution.
type Submission struct {
	Name        string
	Email       string
	Phone       string
	PhotoDate   string
	Description string
	Category    string
	Comments    string
}

// Store persists visitor contributions: uploaded files under a
// per-contribution directory and metadata in a single JSON array file.
// The log is a flat file, not a database; review happens out of band.
type Store struct {
	logPath   string
	uploadDir string
	audioDir  string
	mu        sync.Mutex
}

// NewStore creates a store writing metadata to dataDir and files to
// uploadDir. audioDir is checked for narration siblings of uploads.
func NewStore(dataDir, uploadDir, audioDir string) *Store {
	return &Store{
		logPath:   filepath.Join(dataDir, logFileName),
		uploadDir: uploadDir,
		audioDir:  audioDir,
	}
}

// Process stores the uploaded files and appends the metadata record. On
// any file error the whole contribution is discarded: the directory is
// removed and nothing is logged.
func (s *Store) Process(sub Submission, files []*multipart.FileHeader) (Record, error) {
	if len(files) == 0 {
		metrics.ParticipationsTotal.WithLabelValues("rejected").Inc()
		return Record{}, fmt.Errorf("%w: no files", ErrInvalidFile)
	}
	if len(files) > maxFiles {
		metrics.ParticipationsTotal.WithLabelValues("rejected").Inc()
		return Record{}, fmt.Errorf("%w: too many files (max %d)", ErrInvalidFile, maxFiles)
	}

	id := uuid.NewString()
	dir := filepath.Join(s.uploadDir, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		metrics.ParticipationsTotal.WithLabelValues("error").Inc()
		return Record{}, fmt.Errorf("create upload dir: %w", err)
	}

	stored := make([]FileRecord, 0, len(files))
	for i, fh := range files {
		fr, err := s.saveFile(dir, id, i, fh)
		if err != nil {
			os.RemoveAll(dir)
			metrics.ParticipationsTotal.WithLabelValues("rejected").Inc()
			return Record{}, err
		}
		stored = append(stored, fr)
	}

	rec := Record{
		ID:          id,
		Date:        time.Now().Format(time.RFC3339),
		Name:        sub.Name,
		Email:       sub.Email,
		Phone:       sub.Phone,
		PhotoDate:   sub.PhotoDate,
		Description: sub.Description,
		Category:    sub.Category,
		Comments:    sub.Comments,
		Folder:      id,
		FolderPath:  dir,
		Files:       stored,
		Status:      "enviado",
	}

	if err := s.Append(rec); err != nil {
		os.RemoveAll(dir)
		metrics.ParticipationsTotal.WithLabelValues("error").Inc()
		return Record{}, err
	}

	metrics.ParticipationsTotal.WithLabelValues("accepted").Inc()
	metrics.ParticipationFilesTotal.Add(float64(len(stored)))
	logging.Info("participation %s stored: %d file(s) from %s", id, len(stored), sub.Email)
	return rec, nil
}

// saveFile validates and writes one upload into dir.
func (s *Store) saveFile(dir, id string, idx int, fh *multipart.FileHeader) (FileRecord, error) {
	if fh.Size > maxFileSize {
		return FileRecord{}, fmt.Errorf("%w: %s exceeds %d bytes", ErrInvalidFile, fh.Filename, int64(maxFileSize))
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !uploadExtensions[ext] {
		return FileRecord{}, fmt.Errorf("%w: %s is not an accepted image type", ErrInvalidFile, fh.Filename)
	}

	src, err := fh.Open()
	if err != nil {
		return FileRecord{}, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer src.Close()

	storedName := fmt.Sprintf("%s-%d%s", id, idx, ext)
	path := filepath.Join(dir, storedName)
	dst, err := os.Create(path)
	if err != nil {
		return FileRecord{}, fmt.Errorf("create %s: %w", path, err)
	}
	written, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return FileRecord{}, fmt.Errorf("write %s: %w", path, err)
	}

	fr := FileRecord{
		OriginalName: fh.Filename,
		StoredName:   storedName,
		Path:         path,
		Size:         written,
		ContentType:  fh.Header.Get("Content-Type"),
	}

	probeEXIF(path, &fr)

	stem := strings.TrimSuffix(fh.Filename, ext)
	if s.audioDir != "" {
		if _, err := os.Stat(filepath.Join(s.audioDir, stem+".mp3")); err == nil {
			fr.AudioURL = "assets/audios/" + stem + ".mp3"
		}
	}

	return fr, nil
}

// probeEXIF enriches the record with capture date and dimensions when the
// image carries EXIF data. Absence of EXIF is not an error.
func probeEXIF(path string, fr *FileRecord) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return
	}

	if dt, err := x.DateTime(); err == nil {
		fr.CaptureDate = dt.Format("2006-01-02")
	}
	if tag, err := x.Get(exif.PixelXDimension); err == nil {
		if w, err := tag.Int(0); err == nil {
			fr.Width = w
		}
	}
	if tag, err := x.Get(exif.PixelYDimension); err == nil {
		if h, err := tag.Int(0); err == nil {
			fr.Height = h
		}
	}
}

// Append adds a record to the log file.
func (s *Store) Append(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.readLocked()
	records = append(records, rec)
	return s.writeLocked(records)
}

// List returns all logged participations, oldest first.
func (s *Store) List() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked()
}

// Delete removes a participation record and its uploaded files.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.readLocked()
	idx := -1
	for i, rec := range records {
		if rec.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}

	dir := records[idx].FolderPath
	records = append(records[:idx], records[idx+1:]...)
	if err := s.writeLocked(records); err != nil {
		return err
	}

	if dir != "" {
		if err := os.RemoveAll(dir); err != nil {
			logging.Warn("participation: failed to remove %s: %v", dir, err)
		}
	}
	return nil
}

// readLocked loads the log. A missing or corrupt file yields an empty
// list so a damaged log never blocks new contributions.
func (s *Store) readLocked() []Record {
	data, err := os.ReadFile(s.logPath)
	if err != nil {
		return []Record{}
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		logging.Warn("participation: corrupt log %s, starting fresh: %v", s.logPath, err)
		return []Record{}
	}
	return records
}

func (s *Store) writeLocked(records []Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode participation log: %w", err)
	}
	if err := os.WriteFile(s.logPath, data, 0o644); err != nil {
		return fmt.Errorf("write participation log: %w", err)
	}
	return nil
}
