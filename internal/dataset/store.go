package dataset

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Store holds the current canonical table snapshot and optionally rebuilds
// it when the source file changes on disk. Readers always get a complete,
// immutable snapshot; a reload swaps the pointer atomically under the lock.
// The snapshot is keyed by the source content hash, so a write that leaves
// the bytes identical does not produce a new table.
type Store struct {
	loader *Loader
	logger *slog.Logger
	path   string

	mu    sync.RWMutex
	table *Table

	onSwap        func(*Table)
	onReloadError func(error)

	watcher *fsnotify.Watcher
}

// NewStore loads the dataset once and returns a store serving that snapshot.
func NewStore(ctx context.Context, loader *Loader, logger *slog.Logger, path string) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	table, err := loader.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	return &Store{
		loader: loader,
		logger: logger.With(slog.String("component", "dataset_store")),
		path:   path,
		table:  table,
	}, nil
}

// SetOnSwap registers fn to run whenever a new snapshot is installed,
// including the initial one if called before Reload. Must be set before
// Watch starts.
func (s *Store) SetOnSwap(fn func(*Table)) {
	s.onSwap = fn
	if fn != nil {
		fn(s.Table())
	}
}

// SetOnReloadError registers fn to run when a reload attempt fails.
// Must be set before Watch starts.
func (s *Store) SetOnReloadError(fn func(error)) {
	s.onReloadError = fn
}

// Table returns the current snapshot.
func (s *Store) Table() *Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table
}

// Reload rebuilds the canonical table from the source file. If the content
// hash is unchanged the existing snapshot is kept. A failed reload keeps the
// previous snapshot so the dashboard stays usable.
func (s *Store) Reload(ctx context.Context) (bool, error) {
	table, err := s.loader.Load(ctx, s.path)
	if err != nil {
		if s.onReloadError != nil {
			s.onReloadError(err)
		}
		return false, err
	}

	s.mu.Lock()
	if s.table != nil && s.table.SourceHash() == table.SourceHash() {
		s.mu.Unlock()
		return false, nil
	}
	s.table = table
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "dataset snapshot replaced",
		slog.String("source_hash", table.SourceHash()[:12]),
		slog.Int("rows", table.Len()))
	if s.onSwap != nil {
		s.onSwap(table)
	}
	return true, nil
}

// Watch starts reloading on file-system writes to the source file until ctx
// is cancelled. It returns immediately; reload errors are logged, not fatal.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch the directory: editors and exporters typically replace the file
	// rather than write it in place.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return err
	}
	s.watcher = watcher

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(s.path) {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if _, err := s.Reload(ctx); err != nil {
					s.logger.WarnContext(ctx, "dataset reload failed, keeping previous snapshot",
						slog.String("error", err.Error()))
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.WarnContext(ctx, "dataset watcher error",
					slog.String("error", err.Error()))
			}
		}
	}()

	return nil
}
