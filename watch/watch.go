// Package watch regenerates the dashboard documents whenever the journal
// changes.
//
// At most one regeneration runs at a time. A change that arrives while a
// regeneration is in flight is dropped, not queued, and there is no
// debounce: the next change after the run finishes starts a new one.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// RefreshFunc regenerates the documents.
type RefreshFunc func(ctx context.Context) error

// Watcher runs a RefreshFunc when the watched journal changes.
type Watcher struct {
	path      string
	refresh   RefreshFunc
	onRefresh func()
	logger    *slog.Logger

	running atomic.Bool
	wg      sync.WaitGroup
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// OnRefresh registers fn to be called after every successful regeneration.
func OnRefresh(fn func()) Option {
	return func(w *Watcher) {
		w.onRefresh = fn
	}
}

// New creates a Watcher for the journal at path.
func New(path string, refresh RefreshFunc, opts ...Option) *Watcher {
	w := &Watcher{
		path:    path,
		refresh: refresh,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Trigger starts a regeneration in the background. It returns false, and
// does nothing, when a regeneration is already running.
func (w *Watcher) Trigger(ctx context.Context, reason string) bool {
	if !w.running.CompareAndSwap(false, true) {
		w.logger.Info("regeneration in progress, dropping change", "reason", reason)
		return false
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer w.running.Store(false)

		w.logger.Info("regenerating", "reason", reason)
		if err := w.refresh(ctx); err != nil {
			w.logger.Error("regeneration failed", "error", err)
			return
		}
		w.logger.Info("regeneration finished")

		if w.onRefresh != nil {
			w.onRefresh()
		}
	}()
	return true
}

// Busy reports whether a regeneration is running.
func (w *Watcher) Busy() bool {
	return w.running.Load()
}

// Wait blocks until the running regeneration, if any, has finished.
func (w *Watcher) Wait() {
	w.wg.Wait()
}

// Run regenerates once and then on every change of the journal until ctx
// is done. It waits for an in-flight regeneration before returning.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	if err := watcher.Add(w.path); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.path, err)
	}

	w.logger.Info("watching journal", "path", w.path)
	w.Trigger(ctx, "startup")
	defer w.Wait()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			// Editors that save atomically replace the file, which drops
			// the watch on the old inode.
			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				if err := watcher.Add(w.path); err != nil {
					w.logger.Warn("failed to re-watch journal", "path", w.path, "error", err)
				}
			}

			w.Trigger(ctx, event.Op.String())

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("file watcher error", "error", err)
		}
	}
}
