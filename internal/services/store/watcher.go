package store

import (
	"context"
	"crypto/sha256"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	// DefaultDebounce is used when no debounce delay is configured
	DefaultDebounce = 200 * time.Millisecond

	eventBuffer = 16
)

// Event reports that the watched project file changed on disk
type Event struct {
	Path    string
	Removed bool
}

// Watcher emits an Event when the project file's content changes.
//
// The parent directory is watched rather than the file itself, so editors
// and atomic saves that replace the file by rename are still seen. Bursts of
// writes are collapsed per debounce tick, and a flush whose content hash
// matches the last one seen is dropped.
type Watcher struct {
	path     string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	logger   *slog.Logger

	pendingMu sync.Mutex
	pending   bool

	hashMu sync.Mutex
	hash   [sha256.Size]byte
	exists bool

	events  chan Event
	dropped atomic.Int64
}

// NewWatcher creates a watcher for the project file at path
func NewWatcher(path string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		fsw.Close()
		return nil, err
	}

	return &Watcher{
		path:     abs,
		debounce: debounce,
		watcher:  fsw,
		logger:   logger,
		events:   make(chan Event, eventBuffer),
	}, nil
}

// Events returns the channel of change events. It is closed when the
// watcher stops.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start records the current content and begins watching
func (w *Watcher) Start(ctx context.Context) error {
	w.Acknowledge()

	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	go w.processEvents(ctx)

	w.logger.Info("watching project file", "path", w.path, "debounce", w.debounce)
	return nil
}

// Stop stops the watcher. The events channel is closed by processEvents.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

// Dropped returns the number of events dropped because nobody was reading
func (w *Watcher) Dropped() int64 {
	return w.dropped.Load()
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.events)
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			w.pendingMu.Lock()
			w.pending = true
			w.pendingMu.Unlock()
			w.logger.Debug("project file event", "op", event.Op.String())

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "error", err)

		case <-ticker.C:
			w.flush()
		}
	}
}

func (w *Watcher) flush() {
	w.pendingMu.Lock()
	if !w.pending {
		w.pendingMu.Unlock()
		return
	}
	w.pending = false
	w.pendingMu.Unlock()

	data, err := os.ReadFile(w.path)
	if err != nil {
		if !os.IsNotExist(err) {
			w.logger.Warn("failed to read project file", "path", w.path, "error", err)
			return
		}
		w.hashMu.Lock()
		wasPresent := w.exists
		w.exists = false
		w.hashMu.Unlock()
		if wasPresent {
			w.send(Event{Path: w.path, Removed: true})
		}
		return
	}

	sum := sha256.Sum256(data)
	w.hashMu.Lock()
	unchanged := w.exists && sum == w.hash
	w.hash = sum
	w.exists = true
	w.hashMu.Unlock()

	if unchanged {
		return
	}
	w.send(Event{Path: w.path})
}

// Acknowledge records the file's current content as already seen, so a
// save made by this process does not come back as an external change
func (w *Watcher) Acknowledge() {
	data, err := os.ReadFile(w.path)
	w.hashMu.Lock()
	defer w.hashMu.Unlock()
	if err != nil {
		w.exists = false
		return
	}
	w.hash = sha256.Sum256(data)
	w.exists = true
}

func (w *Watcher) send(ev Event) {
	select {
	case w.events <- ev:
		w.logger.Debug("project file changed", "path", ev.Path, "removed", ev.Removed)
	default:
		dropped := w.dropped.Add(1)
		w.logger.Warn("event channel full, dropping event", "path", ev.Path, "total_dropped", dropped)
	}
}
