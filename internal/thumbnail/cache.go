package thumbnail

import (
	"fmt"
	"image/jpeg"
	"os"
	"path/filepath"
	"sync"
	"time"

	"album-server/internal/logging"
	"album-server/internal/metrics"
	"album-server/internal/workers"

	"github.com/disintegration/imaging"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// URLPrefix is the public path under which generated thumbnails are served.
// The front end composes thumbnail URLs from this prefix, so it must not
// change.
const URLPrefix = "assets/images/thumbnails"

const (
	thumbWidth  = 300
	thumbHeight = 200
	jpegQuality = 80

	queueSize  = 256
	maxWorkers = 8
)

type job struct {
	sourcePath string
	folderKey  string
	fileName   string
}

// Cache maps (folder, file) keys to generated thumbnail URLs. An entry is
// only inserted after its derivative exists on disk, so a hit never points
// at a missing file. Entries are never evicted: a source image changed
// after generation is not reflected until its derivative is removed out of
// band.
type Cache struct {
	outputDir string
	enabled   bool

	mu      sync.RWMutex
	closed  bool
	entries map[string]string
	pending map[string]struct{}

	jobs      chan job
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewCache creates the cache and, when enabled, starts the generation
// worker pool. The cache is owned by whoever constructs it; there is no
// package-level instance.
func NewCache(outputDir string, enabled bool) *Cache {
	c := &Cache{
		outputDir: outputDir,
		enabled:   enabled,
		entries:   make(map[string]string),
		pending:   make(map[string]struct{}),
		jobs:      make(chan job, queueSize),
	}

	if !enabled {
		logging.Debug("thumbnail: disabled")
		return c
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		logging.Warn("thumbnail: failed to create output dir %s: %v", outputDir, err)
	}

	n := workers.ForCPU(maxWorkers)
	logging.Debug("thumbnail: starting %d generation workers, output dir: %s", n, outputDir)
	for i := 0; i < n; i++ {
		c.wg.Add(1)
		go c.worker()
	}

	return c
}

// IsEnabled reports whether thumbnail generation is available.
func (c *Cache) IsEnabled() bool {
	return c.enabled
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// GetOrCreate returns the thumbnail URL for the given source image when a
// derivative already exists, scheduling background generation otherwise.
// ok is false while the derivative is not yet available; the caller falls
// back to the full-resolution image until a later request observes the
// populated cache.
func (c *Cache) GetOrCreate(sourcePath, folderKey, fileName string) (string, bool) {
	if !c.enabled {
		return "", false
	}
	key := cacheKey(folderKey, fileName)

	c.mu.RLock()
	url, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		metrics.ThumbnailCacheHits.Inc()
		return url, true
	}
	metrics.ThumbnailCacheMisses.Inc()

	// A derivative may survive from a previous process lifetime.
	if _, err := os.Stat(c.outputPath(folderKey, fileName)); err == nil {
		url = thumbnailURL(folderKey, fileName)
		c.insert(key, url)
		return url, true
	}

	c.schedule(sourcePath, folderKey, fileName)
	return "", false
}

// Has reports whether a derivative already exists for the key without
// scheduling anything.
func (c *Cache) Has(folderKey, fileName string) bool {
	if !c.enabled {
		return false
	}

	c.mu.RLock()
	_, ok := c.entries[cacheKey(folderKey, fileName)]
	c.mu.RUnlock()
	if ok {
		return true
	}

	_, err := os.Stat(c.outputPath(folderKey, fileName))
	return err == nil
}

// Generate produces the derivative synchronously. It is the deterministic
// variant of the fire-and-forget request path, used by tests and the admin
// warm-up endpoint.
func (c *Cache) Generate(sourcePath, folderKey, fileName string) (string, error) {
	if !c.enabled {
		return "", fmt.Errorf("thumbnails disabled")
	}
	return c.generate(sourcePath, folderKey, fileName)
}

// Close stops accepting new jobs and waits for in-flight generation to
// finish. Lookups after Close fall back to the full-resolution image.
func (c *Cache) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		close(c.jobs)
	})
	c.wg.Wait()
}

// schedule enqueues a generation job unless one for the same key is
// already queued or running. Repeated requests for the same photo cause at
// most one generation. The send happens under the same lock Close takes
// before closing the channel, so a request racing shutdown is dropped
// rather than sent on a closed channel.
func (c *Cache) schedule(sourcePath, folderKey, fileName string) {
	key := cacheKey(folderKey, fileName)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if _, exists := c.pending[key]; exists {
		return
	}
	if _, exists := c.entries[key]; exists {
		return
	}

	select {
	case c.jobs <- job{sourcePath: sourcePath, folderKey: folderKey, fileName: fileName}:
		c.pending[key] = struct{}{}
	default:
		// Queue full. Drop the request; a later listing reschedules it.
		metrics.ThumbnailQueueDropped.Inc()
		logging.Warn("thumbnail: generation queue full, dropped %s", key)
	}
}

func (c *Cache) worker() {
	defer c.wg.Done()
	for j := range c.jobs {
		if _, err := c.generate(j.sourcePath, j.folderKey, j.fileName); err != nil {
			logging.Error("thumbnail: generation failed for %s: %v", j.sourcePath, err)
		}
	}
}

// generate decodes the source, resizes it to a 300x200 center crop,
// encodes JPEG quality 80 at the canonical output path and inserts the
// cache entry. On failure the key stays absent so the browsing path keeps
// its full-image fallback.
func (c *Cache) generate(sourcePath, folderKey, fileName string) (url string, err error) {
	key := cacheKey(folderKey, fileName)
	defer func() {
		c.mu.Lock()
		delete(c.pending, key)
		c.mu.Unlock()

		if err != nil {
			metrics.ThumbnailGenerationsTotal.WithLabelValues("error").Inc()
		}
	}()

	// Another worker may have finished the same key already.
	c.mu.RLock()
	cached, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	start := time.Now()

	img, err := imaging.Open(sourcePath, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", sourcePath, err)
	}

	thumb := imaging.Fill(img, thumbWidth, thumbHeight, imaging.Center, imaging.Lanczos)

	outPath := c.outputPath(folderKey, fileName)
	if err = os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", fmt.Errorf("create thumbnail dir: %w", err)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", outPath, err)
	}
	if err = jpeg.Encode(f, thumb, &jpeg.Options{Quality: jpegQuality}); err != nil {
		f.Close()
		os.Remove(outPath)
		return "", fmt.Errorf("encode %s: %w", outPath, err)
	}
	if err = f.Close(); err != nil {
		os.Remove(outPath)
		return "", fmt.Errorf("close %s: %w", outPath, err)
	}

	url = thumbnailURL(folderKey, fileName)
	c.insert(key, url)

	metrics.ThumbnailGenerationsTotal.WithLabelValues("success").Inc()
	metrics.ThumbnailGenerationDuration.Observe(time.Since(start).Seconds())
	logging.Debug("thumbnail: generated %s in %v", outPath, time.Since(start))

	return url, nil
}

func (c *Cache) insert(key, url string) {
	c.mu.Lock()
	c.entries[key] = url
	metrics.ThumbnailCacheEntries.Set(float64(len(c.entries)))
	c.mu.Unlock()
}

// outputPath is the canonical derivative location: the folder key and the
// original filename (extension included) under the output root. The JPEG
// bytes keep the source name so existing client URLs stay valid.
func (c *Cache) outputPath(folderKey, fileName string) string {
	return filepath.Join(c.outputDir, folderKey, fileName)
}

func thumbnailURL(folderKey, fileName string) string {
	return URLPrefix + "/" + folderKey + "/" + fileName
}

func cacheKey(folderKey, fileName string) string {
	return folderKey + "/" + fileName
}
