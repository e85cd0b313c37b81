// Package watcher observes the corpus directory and triggers a re-index when
// markdown files change. Because the indexer always rebuilds the whole
// snapshot, events are not tracked per file; any relevant change within the
// debounce window collapses into a single reload.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the window during which rapid bursts of file events
// (editor save sequences, git checkouts) are coalesced into one reload.
const DefaultDebounce = 500 * time.Millisecond

// ReloadFunc is invoked after the debounce window closes. Errors are logged
// by the watcher; the watch loop keeps running.
type ReloadFunc func(ctx context.Context) error

// Watcher watches a single corpus directory for markdown changes.
type Watcher struct {
	dir      string
	debounce time.Duration
	reload   ReloadFunc

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool

	fsw    *fsnotify.Watcher
	stopCh chan struct{}
}

// New creates a watcher over dir. A debounce of 0 uses DefaultDebounce.
func New(dir string, debounce time.Duration, reload ReloadFunc) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	return &Watcher{
		dir:      dir,
		debounce: debounce,
		reload:   reload,
		fsw:      fsw,
		stopCh:   make(chan struct{}),
	}, nil
}

// Start runs the watch loop until the context is cancelled or Stop is
// called. It blocks; run it in a goroutine.
func (w *Watcher) Start(ctx context.Context) error {
	abs, err := filepath.Abs(w.dir)
	if err != nil {
		return fmt.Errorf("resolve corpus path: %w", err)
	}
	if err := w.fsw.Add(abs); err != nil {
		return fmt.Errorf("watch %s: %w", abs, err)
	}

	slog.Info("corpus_watch_started",
		slog.String("dir", abs),
		slog.Duration("debounce", w.debounce))

	for {
		select {
		case <-ctx.Done():
			_ = w.Stop()
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if relevant(event) {
				w.schedule(ctx)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("corpus_watch_error", slog.String("error", err.Error()))
		}
	}
}

// Stop halts the watch loop and releases the fsnotify handle. Safe to call
// more than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
	close(w.stopCh)
	return w.fsw.Close()
}

// schedule arms (or re-arms) the debounce timer.
func (w *Watcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.fire(ctx)
	})
}

func (w *Watcher) fire(ctx context.Context) {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	start := time.Now()
	if err := w.reload(ctx); err != nil {
		slog.Warn("corpus_reload_failed",
			slog.String("error", err.Error()))
		return
	}
	slog.Info("corpus_reloaded_on_change",
		slog.Duration("took", time.Since(start)))
}

// relevant filters events down to the files the indexer actually reads:
// markdown files whose basename does not start with an underscore. Chmod
// noise is dropped.
func relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, "_") {
		return false
	}
	return strings.EqualFold(filepath.Ext(base), ".md")
}
