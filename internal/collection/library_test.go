package collection

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"album-server/internal/thumbnail"
)

// newTestLibrary builds a collection tree:
//
//	root/
//	  pueblo/            19970715-Fiesta_Mayor.jpg, sin_fecha.png, notas.txt
//	  fiestas/           portada.jpg
//	    verano/          1985XXXX-Verbena.jpg
func newTestLibrary(t *testing.T) (*Library, string) {
	t.Helper()

	root := t.TempDir()
	dirs := []string{
		filepath.Join(root, "pueblo"),
		filepath.Join(root, "fiestas", "verano"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatalf("failed to create %s: %v", d, err)
		}
	}

	files := []string{
		filepath.Join(root, "pueblo", "19970715-Fiesta_Mayor.jpg"),
		filepath.Join(root, "pueblo", "sin_fecha.png"),
		filepath.Join(root, "pueblo", "notas.txt"),
		filepath.Join(root, "fiestas", "portada.jpg"),
		filepath.Join(root, "fiestas", "verano", "1985XXXX-Verbena.jpg"),
	}
	for _, f := range files {
		if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", f, err)
		}
	}

	thumbs := thumbnail.NewCache(t.TempDir(), false)
	t.Cleanup(thumbs.Close)

	return NewLibrary(root, "", thumbs), root
}

func TestFolders(t *testing.T) {
	lib, _ := newTestLibrary(t)

	folders, err := lib.Folders()
	if err != nil {
		t.Fatalf("Folders failed: %v", err)
	}
	if len(folders) != 2 {
		t.Fatalf("got %d folders, want 2", len(folders))
	}

	// Sorted by name: fiestas first.
	if folders[0].Name != "fiestas" || folders[1].Name != "pueblo" {
		t.Errorf("unexpected order: %s, %s", folders[0].Name, folders[1].Name)
	}
	if folders[0].PhotoCount != 2 {
		t.Errorf("fiestas count = %d, want 2 (direct + subfolder)", folders[0].PhotoCount)
	}
	if folders[1].PhotoCount != 2 {
		t.Errorf("pueblo count = %d, want 2 (txt file excluded)", folders[1].PhotoCount)
	}
	if folders[1].DisplayName != "Pueblo" {
		t.Errorf("DisplayName = %q, want %q", folders[1].DisplayName, "Pueblo")
	}
}

func TestFoldersMissingRoot(t *testing.T) {
	thumbs := thumbnail.NewCache(t.TempDir(), false)
	defer thumbs.Close()
	lib := NewLibrary(filepath.Join(t.TempDir(), "nope"), "", thumbs)

	folders, err := lib.Folders()
	if !errors.Is(err, ErrRootUnavailable) {
		t.Fatalf("err = %v, want ErrRootUnavailable", err)
	}
	if folders == nil || len(folders) != 0 {
		t.Errorf("want empty non-nil slice, got %v", folders)
	}
}

func TestSubfolders(t *testing.T) {
	lib, _ := newTestLibrary(t)

	subs, err := lib.Subfolders("fiestas")
	if err != nil {
		t.Fatalf("Subfolders failed: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("got %d subfolders, want 1", len(subs))
	}
	if subs[0].Name != "verano" || subs[0].Category != "fiestas" || subs[0].PhotoCount != 1 {
		t.Errorf("unexpected subfolder: %+v", subs[0])
	}

	// A category without subdirectories is not an error.
	subs, err = lib.Subfolders("pueblo")
	if err != nil {
		t.Fatalf("Subfolders(pueblo) failed: %v", err)
	}
	if len(subs) != 0 {
		t.Errorf("got %d subfolders, want 0", len(subs))
	}

	if _, err := lib.Subfolders("no_existe"); !errors.Is(err, ErrFolderNotFound) {
		t.Errorf("err = %v, want ErrFolderNotFound", err)
	}
	if _, err := lib.Subfolders("../etc"); !errors.Is(err, ErrFolderNotFound) {
		t.Errorf("traversal key: err = %v, want ErrFolderNotFound", err)
	}
}

func TestPhotosCategory(t *testing.T) {
	lib, _ := newTestLibrary(t)

	records, err := lib.Photos("pueblo")
	if err != nil {
		t.Fatalf("Photos failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	rec := records[0]
	if rec.ID != "pueblo-0" {
		t.Errorf("ID = %q, want pueblo-0", rec.ID)
	}
	if rec.Title != "Fiesta Mayor" {
		t.Errorf("Title = %q, want Fiesta Mayor", rec.Title)
	}
	if rec.Year != 1997 || rec.Month != 7 || rec.Day != 15 {
		t.Errorf("date = %d-%d-%d, want 1997-7-15", rec.Year, rec.Month, rec.Day)
	}
	if rec.Decade != "1990s" {
		t.Errorf("Decade = %q, want 1990s", rec.Decade)
	}
	// A direct category match repeats the folder name as subcategory.
	if rec.Category != "pueblo" || rec.Subcategory != "pueblo" {
		t.Errorf("category = %q/%q, want pueblo/pueblo", rec.Category, rec.Subcategory)
	}
	if rec.ImageURL != "assets/images/coleccion/pueblo/19970715-Fiesta_Mayor.jpg" {
		t.Errorf("ImageURL = %q", rec.ImageURL)
	}
	// Thumbnails are disabled, so the record falls back to the full image.
	if rec.ThumbnailURL != rec.ImageURL {
		t.Errorf("ThumbnailURL = %q, want fallback to ImageURL", rec.ThumbnailURL)
	}
	if rec.People == nil {
		t.Error("People must be a non-nil slice")
	}
	if rec.Event != "PUEBLO" {
		t.Errorf("Event = %q, want PUEBLO", rec.Event)
	}
	if rec.AudioURL != "" {
		t.Errorf("AudioURL = %q, want empty", rec.AudioURL)
	}
}

func TestPhotosSubfolder(t *testing.T) {
	lib, _ := newTestLibrary(t)

	records, err := lib.Photos("verano")
	if err != nil {
		t.Fatalf("Photos failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	rec := records[0]
	if rec.Category != "fiestas" || rec.Subcategory != "verano" {
		t.Errorf("category = %q/%q, want fiestas/verano", rec.Category, rec.Subcategory)
	}
	if rec.ImageURL != "assets/images/coleccion/fiestas/verano/1985XXXX-Verbena.jpg" {
		t.Errorf("ImageURL = %q", rec.ImageURL)
	}
	if rec.Year != 1985 || rec.Month != 0 || rec.Day != 0 {
		t.Errorf("date = %d-%d-%d, want 1985-0-0", rec.Year, rec.Month, rec.Day)
	}
}

func TestPhotosSubfolderShadowsCategory(t *testing.T) {
	lib, root := newTestLibrary(t)

	// A subfolder named like an existing category must win.
	shadow := filepath.Join(root, "pueblo", "fiestas")
	if err := os.MkdirAll(shadow, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(shadow, "unica.jpg"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	records, err := lib.Photos("fiestas")
	if err != nil {
		t.Fatalf("Photos failed: %v", err)
	}
	if len(records) != 1 || records[0].Category != "pueblo" {
		t.Errorf("subfolder should shadow category, got %d records", len(records))
	}
}

func TestPhotosNotFound(t *testing.T) {
	lib, _ := newTestLibrary(t)

	if _, err := lib.Photos("no_existe"); !errors.Is(err, ErrFolderNotFound) {
		t.Errorf("err = %v, want ErrFolderNotFound", err)
	}
	if _, err := lib.Photos("../../etc"); !errors.Is(err, ErrFolderNotFound) {
		t.Errorf("traversal key: err = %v, want ErrFolderNotFound", err)
	}
}

func TestPhotosAudioSibling(t *testing.T) {
	root := t.TempDir()
	audioDir := t.TempDir()

	if err := os.MkdirAll(filepath.Join(root, "pueblo"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "pueblo", "19800101-Plaza.jpg"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(audioDir, "19800101-Plaza.mp3"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	thumbs := thumbnail.NewCache(t.TempDir(), false)
	defer thumbs.Close()
	lib := NewLibrary(root, audioDir, thumbs)

	records, err := lib.Photos("pueblo")
	if err != nil {
		t.Fatalf("Photos failed: %v", err)
	}
	if records[0].AudioURL != "assets/audios/19800101-Plaza.mp3" {
		t.Errorf("AudioURL = %q", records[0].AudioURL)
	}
}

func TestStats(t *testing.T) {
	lib, _ := newTestLibrary(t)

	stats, err := lib.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalPhotos != 4 {
		t.Errorf("TotalPhotos = %d, want 4", stats.TotalPhotos)
	}
	if stats.TotalFolders != 2 {
		t.Errorf("TotalFolders = %d, want 2", stats.TotalFolders)
	}
	if stats.ByCategory["pueblo"] != 2 || stats.ByCategory["fiestas"] != 2 {
		t.Errorf("ByCategory = %v", stats.ByCategory)
	}
	if stats.ByDecade["1990s"] != 1 || stats.ByDecade["1980s"] != 1 {
		t.Errorf("ByDecade = %v", stats.ByDecade)
	}
	// Undated photos land in the default decade.
	if stats.ByDecade["2020s"] != 2 {
		t.Errorf("ByDecade[2020s] = %d, want 2", stats.ByDecade["2020s"])
	}
}
