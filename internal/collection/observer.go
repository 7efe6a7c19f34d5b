package collection

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"album-server/internal/logging"
	"album-server/internal/metrics"

	"github.com/fsnotify/fsnotify"
)

// Observer watches the collection tree and keeps the photo and folder
// gauges current. The library itself reads the disk on every request, so
// the observer only feeds metrics; it never caches listing data.
type Observer struct {
	library  *Library
	stop     chan struct{}
	stopOnce sync.Once
}

// NewObserver creates an observer over the library's root.
func NewObserver(library *Library) *Observer {
	return &Observer{
		library: library,
		stop:    make(chan struct{}),
	}
}

// Run starts watching and blocks until Stop is called. Watcher setup
// failures are logged and counted; the server keeps running without live
// gauges.
func (o *Observer) Run() {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logging.Error("observer: failed to create watcher: %v", err)
		metrics.WatcherErrors.Inc()
		return
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			logging.Error("observer: failed to close watcher: %v", err)
		}
	}()

	count := o.addDirectories(watcher)
	logging.Debug("observer: watching %d directories under %s", count, o.library.root)

	o.refreshGauges()
	o.processEvents(watcher)
}

// Stop terminates Run.
func (o *Observer) Stop() {
	o.stopOnce.Do(func() {
		close(o.stop)
	})
}

func (o *Observer) addDirectories(watcher *fsnotify.Watcher) int {
	count := 0
	err := filepath.Walk(o.library.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() && !strings.HasPrefix(info.Name(), ".") {
			if addErr := watcher.Add(path); addErr != nil {
				logging.Warn("observer: failed to watch %s: %v", path, addErr)
				metrics.WatcherErrors.Inc()
			} else {
				count++
			}
		}
		return nil
	})
	if err != nil {
		logging.Error("observer: failed to walk collection root: %v", err)
		metrics.WatcherErrors.Inc()
	}
	return count
}

func (o *Observer) processEvents(watcher *fsnotify.Watcher) {
	for {
		select {
		case <-o.stop:
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			o.handleEvent(watcher, event)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logging.Error("observer: watcher error: %v", err)
			metrics.WatcherErrors.Inc()
		}
	}
}

func (o *Observer) handleEvent(watcher *fsnotify.Watcher, event fsnotify.Event) {
	// Skip hidden files.
	if strings.Contains(event.Name, "/.") {
		return
	}

	metrics.WatcherEventsTotal.WithLabelValues(eventType(event.Op)).Inc()

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := watcher.Add(event.Name); err != nil {
				logging.Warn("observer: failed to watch new directory %s: %v", event.Name, err)
				metrics.WatcherErrors.Inc()
			} else {
				logging.Debug("observer: watching new directory %s", event.Name)
			}
		}
	}

	if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
		o.refreshGauges()
	}
}

// refreshGauges recounts the collection and updates the gauges.
func (o *Observer) refreshGauges() {
	folders, err := o.library.Folders()
	if err != nil {
		return
	}

	metrics.CollectionFolders.Set(float64(len(folders)))
	for _, f := range folders {
		metrics.CollectionPhotos.WithLabelValues(f.Name).Set(float64(f.PhotoCount))
	}
}

func eventType(op fsnotify.Op) string {
	switch {
	case op&fsnotify.Create != 0:
		return "create"
	case op&fsnotify.Write != 0:
		return "write"
	case op&fsnotify.Remove != 0:
		return "remove"
	case op&fsnotify.Rename != 0:
		return "rename"
	case op&fsnotify.Chmod != 0:
		return "chmod"
	default:
		return "unknown"
	}
}
