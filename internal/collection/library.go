package collection

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"album-server/internal/logging"
	"album-server/internal/metrics"
	"album-server/internal/photo"
	"album-server/internal/thumbnail"
)

var (
	// ErrFolderNotFound is returned when a requested folder matches no
	// category and no subfolder.
	ErrFolderNotFound = errors.New("folder not found")

	// ErrRootUnavailable is returned when the collection root directory
	// cannot be read at all.
	ErrRootUnavailable = errors.New("collection root unavailable")
)

const (
	imageURLPrefix = "assets/images/coleccion"
	audioURLPrefix = "assets/audios"

	defaultLocation = "aledo"
	defaultStatus   = "publicada"
)

// defaultCoordinates pins every photo to the town center.
var defaultCoordinates = photo.Coordinates{Latitude: 37.7941, Longitude: -1.5734}

// imageExtensions lists the file types served as photos. Anything else in
// a collection folder is ignored.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Library reads the photo collection from the filesystem. The directory
// tree is the source of truth; nothing is indexed ahead of time, every
// call reflects the disk state at that moment.
type Library struct {
	root     string
	audioDir string
	thumbs   *thumbnail.Cache
}

// NewLibrary creates a Library over the collection root. audioDir is
// scanned for narration files sharing a photo's stem.
func NewLibrary(root, audioDir string, thumbs *thumbnail.Cache) *Library {
	return &Library{
		root:     root,
		audioDir: audioDir,
		thumbs:   thumbs,
	}
}

// Folders lists the top-level categories with recursive photo counts.
func (l *Library) Folders() ([]photo.FolderSummary, error) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		metrics.CollectionLookupsTotal.WithLabelValues("folders", "error").Inc()
		logging.Error("collection: cannot read root %s: %v", l.root, err)
		return []photo.FolderSummary{}, ErrRootUnavailable
	}

	folders := make([]photo.FolderSummary, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		folders = append(folders, photo.FolderSummary{
			Name:        entry.Name(),
			DisplayName: photo.TitleCase(entry.Name()),
			PhotoCount:  l.countPhotos(filepath.Join(l.root, entry.Name())),
		})
	}

	sort.Slice(folders, func(i, j int) bool { return folders[i].Name < folders[j].Name })
	metrics.CollectionLookupsTotal.WithLabelValues("folders", "success").Inc()
	return folders, nil
}

// Subfolders lists the second-level folders of a category. A category
// with no subfolders yields an empty list, not an error.
func (l *Library) Subfolders(category string) ([]photo.SubfolderSummary, error) {
	if !validKey(category) {
		metrics.CollectionLookupsTotal.WithLabelValues("subfolders", "error").Inc()
		return nil, ErrFolderNotFound
	}

	dir := filepath.Join(l.root, category)
	entries, err := os.ReadDir(dir)
	if err != nil {
		metrics.CollectionLookupsTotal.WithLabelValues("subfolders", "error").Inc()
		return nil, fmt.Errorf("%w: %s", ErrFolderNotFound, category)
	}

	subs := make([]photo.SubfolderSummary, 0)
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		subs = append(subs, photo.SubfolderSummary{
			Name:        entry.Name(),
			DisplayName: photo.TitleCase(entry.Name()),
			PhotoCount:  countImages(filepath.Join(dir, entry.Name())),
			Category:    category,
		})
	}

	sort.Slice(subs, func(i, j int) bool { return subs[i].Name < subs[j].Name })
	metrics.CollectionLookupsTotal.WithLabelValues("subfolders", "success").Inc()
	return subs, nil
}

// Photos assembles the records of a folder. The key is looked up first as
// a subfolder of any category, then as a category itself; a subfolder
// match wins so that a subfolder shadowing a category name resolves to
// its own photos.
func (l *Library) Photos(folderKey string) ([]photo.Record, error) {
	if !validKey(folderKey) {
		metrics.CollectionLookupsTotal.WithLabelValues("photos", "error").Inc()
		return nil, ErrFolderNotFound
	}

	dir, category, err := l.resolve(folderKey)
	if err != nil {
		metrics.CollectionLookupsTotal.WithLabelValues("photos", "error").Inc()
		return nil, err
	}

	records := l.assemble(dir, category, folderKey)
	metrics.CollectionLookupsTotal.WithLabelValues("photos", "success").Inc()
	return records, nil
}

// Stats walks the whole collection and aggregates counts by decade and by
// category.
func (l *Library) Stats() (photo.Stats, error) {
	stats := photo.Stats{
		ByDecade:   make(map[string]int),
		ByCategory: make(map[string]int),
	}

	entries, err := os.ReadDir(l.root)
	if err != nil {
		metrics.CollectionLookupsTotal.WithLabelValues("stats", "error").Inc()
		return stats, ErrRootUnavailable
	}

	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		stats.TotalFolders++

		count := 0
		dir := filepath.Join(l.root, entry.Name())
		filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil || info.IsDir() {
				return nil
			}
			if !imageExtensions[strings.ToLower(filepath.Ext(info.Name()))] {
				return nil
			}
			count++
			stem := strings.TrimSuffix(info.Name(), filepath.Ext(info.Name()))
			stats.ByDecade[photo.Parse(stem).Decade]++
			return nil
		})

		stats.ByCategory[entry.Name()] = count
		stats.TotalPhotos += count
	}

	metrics.CollectionLookupsTotal.WithLabelValues("stats", "success").Inc()
	return stats, nil
}

// WarmThumbnails generates any missing derivatives for a folder
// synchronously and returns how many were produced.
func (l *Library) WarmThumbnails(folderKey string) (int, error) {
	if !validKey(folderKey) {
		return 0, ErrFolderNotFound
	}

	dir, _, err := l.resolve(folderKey)
	if err != nil {
		return 0, err
	}

	generated := 0
	for _, name := range imageFiles(dir) {
		if l.thumbs.Has(folderKey, name) {
			continue
		}
		if _, err := l.thumbs.Generate(filepath.Join(dir, name), folderKey, name); err != nil {
			logging.Warn("collection: warm-up skipped %s/%s: %v", folderKey, name, err)
			continue
		}
		generated++
	}
	return generated, nil
}

// resolve maps a folder key to its directory on disk and the category it
// belongs to.
func (l *Library) resolve(folderKey string) (dir, category string, err error) {
	categories, err := os.ReadDir(l.root)
	if err != nil {
		return "", "", ErrRootUnavailable
	}

	// Subfolder match first.
	for _, cat := range categories {
		if !cat.IsDir() || strings.HasPrefix(cat.Name(), ".") {
			continue
		}
		candidate := filepath.Join(l.root, cat.Name(), folderKey)
		if info, statErr := os.Stat(candidate); statErr == nil && info.IsDir() {
			return candidate, cat.Name(), nil
		}
	}

	candidate := filepath.Join(l.root, folderKey)
	if info, statErr := os.Stat(candidate); statErr == nil && info.IsDir() {
		return candidate, folderKey, nil
	}

	return "", "", fmt.Errorf("%w: %s", ErrFolderNotFound, folderKey)
}

// assemble builds the wire records for every image in dir. Records are
// built fresh on each call; nothing is cached except thumbnails.
func (l *Library) assemble(dir, category, folderKey string) []photo.Record {
	names := imageFiles(dir)
	records := make([]photo.Record, 0, len(names))
	today := time.Now().Format("2006-01-02")

	for i, name := range names {
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		info := photo.Parse(stem)
		metrics.FilenameParsesTotal.WithLabelValues(string(info.Precision)).Inc()

		imageURL := imageURLPrefix + "/" + category + "/" + name
		if category != folderKey {
			imageURL = imageURLPrefix + "/" + category + "/" + folderKey + "/" + name
		}

		thumbURL := imageURL
		if url, ok := l.thumbs.GetOrCreate(filepath.Join(dir, name), folderKey, name); ok {
			thumbURL = url
		}

		rec := photo.Record{
			ID:           fmt.Sprintf("%s-%d", folderKey, i),
			Title:        info.Title,
			Description:  "Fotografía de " + strings.ReplaceAll(folderKey, "_", " "),
			Date:         info.FormatDate(),
			Year:         info.Year,
			Month:        info.Month,
			Day:          info.Day,
			Decade:       info.Decade,
			Category:     category,
			Subcategory:  folderKey,
			Location:     defaultLocation,
			People:       []string{},
			Event:        strings.ToUpper(strings.ReplaceAll(folderKey, "_", " ")),
			FileName:     name,
			Folder:       folderKey,
			UploadDate:   today,
			Coordinates:  defaultCoordinates,
			Status:       defaultStatus,
			ImageURL:     imageURL,
			ThumbnailURL: thumbURL,
		}

		if audio := l.audioFor(stem); audio != "" {
			rec.AudioURL = audio
		}

		records = append(records, rec)
	}

	return records
}

// audioFor returns the URL of a narration file sharing the photo's stem,
// or "" when there is none.
func (l *Library) audioFor(stem string) string {
	if l.audioDir == "" {
		return ""
	}
	name := stem + ".mp3"
	if _, err := os.Stat(filepath.Join(l.audioDir, name)); err != nil {
		return ""
	}
	return audioURLPrefix + "/" + name
}

// countPhotos counts images in dir and one level of subdirectories.
func (l *Library) countPhotos(dir string) int {
	total := countImages(dir)
	for _, sub := range subdirs(dir) {
		total += countImages(filepath.Join(dir, sub))
	}
	return total
}

// imageFiles returns the sorted image filenames directly inside dir.
func imageFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names
}

func countImages(dir string) int {
	return len(imageFiles(dir))
}

func subdirs(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
			names = append(names, entry.Name())
		}
	}
	return names
}

// validKey rejects folder names that could escape the collection root.
func validKey(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return filepath.Base(name) == name
}
