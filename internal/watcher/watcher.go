// Package watcher re-runs indexing passes when the data folder changes.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driving"
	"github.com/custodia-labs/ragchat-cli/internal/logger"
)

// DefaultDebounce is how long the watcher waits after the last event
// before triggering a pass, coalescing bursts of writes into one run.
const DefaultDebounce = 1500 * time.Millisecond

// Watcher triggers incremental indexing passes on filesystem changes.
type Watcher struct {
	indexer  driving.Indexer
	dataDir  string
	debounce time.Duration
	log      *logger.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides the debounce interval.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// New creates a watcher over dataDir.
func New(indexer driving.Indexer, dataDir string, log *logger.Logger, opts ...Option) *Watcher {
	if log == nil {
		log = logger.Nop()
	}
	w := &Watcher{
		indexer:  indexer,
		dataDir:  dataDir,
		debounce: DefaultDebounce,
		log:      log,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches the data folder until ctx is cancelled. Each burst of
// create/write/remove/rename events triggers one debounced incremental
// pass. Directories created while watching are added to the watch set.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := w.addRecursive(fsw, w.dataDir); err != nil {
		return err
	}
	w.log.Info("watching %s (debounce %s)", w.dataDir, w.debounce)

	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.log.Debug("change detected: %s %s", event.Op, event.Name)
			if event.Op&fsnotify.Create != 0 {
				// New subdirectories must be watched too.
				if err := w.addRecursive(fsw, event.Name); err != nil {
					w.log.Debug("watch %s: %v", event.Name, err)
				}
			}
			timer.Reset(w.debounce)

		case <-timer.C:
			report, err := w.indexer.RunIncremental(ctx)
			if err != nil {
				w.log.Warn("indexing pass failed: %v", err)
				continue
			}
			if report.NewFiles > 0 || report.UpdatedFiles > 0 {
				w.log.Info("reindexed: %d new, %d updated", report.NewFiles, report.UpdatedFiles)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error: %v", err)
		}
	}
}

// addRecursive watches path and every directory below it. Non-directory
// paths are ignored.
func (w *Watcher) addRecursive(fsw *fsnotify.Watcher, path string) error {
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// The entry may have vanished between event and walk.
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := fsw.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
		return nil
	})
}
