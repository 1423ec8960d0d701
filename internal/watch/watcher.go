// Package watch re-runs work when an index file changes on disk.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"fibcalc/internal/logging"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a file must be quiet before the callback fires.
const DefaultDebounce = 200 * time.Millisecond

// ChangeFunc is called with the watched path after it settles.
type ChangeFunc func(ctx context.Context, path string)

// FileWatcher watches a single file. It watches the parent directory so
// editors that save by rename are still seen.
type FileWatcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	path        string
	dir         string
	onChange    ChangeFunc
	debounceDur time.Duration
	pendingAt   time.Time
	pending     bool
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool

	stats Stats
}

// Stats tracks watcher activity.
type Stats struct {
	Events    int
	Triggered int
	Errors    int
	LastEvent time.Time
}

// NewFileWatcher creates a watcher for path.
func NewFileWatcher(path string, onChange ChangeFunc) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &FileWatcher{
		watcher:     w,
		path:        abs,
		dir:         filepath.Dir(abs),
		onChange:    onChange,
		debounceDur: DefaultDebounce,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// SetDebounce changes the quiet period. Call before Start.
func (fw *FileWatcher) SetDebounce(d time.Duration) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	fw.debounceDur = d
}

// Path returns the absolute path being watched.
func (fw *FileWatcher) Path() string { return fw.path }

// Start begins watching. It is non-blocking. If Start fails the watcher is
// closed and cannot be restarted.
func (fw *FileWatcher) Start(ctx context.Context) error {
	fw.mu.Lock()
	if fw.running {
		fw.mu.Unlock()
		return nil
	}
	fw.running = true
	fw.mu.Unlock()

	if err := fw.watcher.Add(fw.dir); err != nil {
		fw.mu.Lock()
		fw.running = false
		fw.mu.Unlock()
		if cerr := fw.watcher.Close(); cerr != nil {
			logging.Get(logging.CategoryWatch).Error("error closing watcher: %v", cerr)
		}
		return fmt.Errorf("watch %s: %w", fw.dir, err)
	}
	logging.Watch("Watching %s", fw.path)

	go fw.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (fw *FileWatcher) Stop() {
	fw.mu.Lock()
	if !fw.running {
		fw.mu.Unlock()
		return
	}
	fw.running = false
	fw.mu.Unlock()

	close(fw.stopCh)
	<-fw.doneCh

	if err := fw.watcher.Close(); err != nil {
		logging.Get(logging.CategoryWatch).Error("error closing watcher: %v", err)
	}
	logging.Watch("Stopped watching %s", fw.path)
}

// GetStats returns a snapshot of watcher activity.
func (fw *FileWatcher) GetStats() Stats {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.stats
}

func (fw *FileWatcher) run(ctx context.Context) {
	defer close(fw.doneCh)

	ticker := time.NewTicker(fw.tick())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-fw.stopCh:
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleEvent(event)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logging.Get(logging.CategoryWatch).Error("watcher error: %v", err)
			fw.mu.Lock()
			fw.stats.Errors++
			fw.mu.Unlock()

		case <-ticker.C:
			if fw.settled() {
				fw.fire(ctx)
			}
		}
	}
}

// tick polls at a fraction of the debounce window.
func (fw *FileWatcher) tick() time.Duration {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	t := fw.debounceDur / 4
	if t < 5*time.Millisecond {
		t = 5 * time.Millisecond
	}
	return t
}

func (fw *FileWatcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != fw.path {
		return
	}
	// Chmod alone does not change content
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return
	}
	logging.WatchDebug("%s event for %s", event.Op, event.Name)

	fw.mu.Lock()
	fw.stats.Events++
	fw.stats.LastEvent = time.Now()
	fw.pending = true
	fw.pendingAt = time.Now()
	fw.mu.Unlock()
}

// settled reports whether a pending change has been quiet long enough and
// clears it if so.
func (fw *FileWatcher) settled() bool {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if !fw.pending || time.Since(fw.pendingAt) < fw.debounceDur {
		return false
	}
	fw.pending = false
	fw.stats.Triggered++
	return true
}

func (fw *FileWatcher) fire(ctx context.Context) {
	// Renamed away and not recreated: nothing to evaluate
	if _, err := os.Stat(fw.path); err != nil {
		logging.WatchDebug("skipping %s: %v", fw.path, err)
		return
	}
	logging.Watch("Change settled: %s", fw.path)
	fw.onChange(ctx, fw.path)
}
