package personas

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Store holds the active registry and supports atomic hot swaps when the
// personas file changes on disk. Each run reads one snapshot up front, so
// a reload never mutates an in-flight run.
type Store struct {
	current atomic.Pointer[Registry]
	path    string
	logger  *zap.Logger
}

// NewStore creates a store seeded with the given registry
func NewStore(initial *Registry, path string, logger *zap.Logger) *Store {
	s := &Store{path: path, logger: logger}
	s.current.Store(initial)
	return s
}

// Registry returns the current registry snapshot
func (s *Store) Registry() *Registry {
	return s.current.Load()
}

// Watch reloads the personas file on change until ctx is cancelled.
// A reload that fails validation keeps the previous registry; startup
// validation already guaranteed a good one exists.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	// Watch the directory: editors replace files on save, which drops
	// a watch registered on the file itself.
	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		var debounce *time.Timer
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
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(200*time.Millisecond, s.reload)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn("Personas watcher error", zap.Error(err))
			}
		}
	}()

	s.logger.Info("Watching personas file for changes", zap.String("path", s.path))
	return nil
}

func (s *Store) reload() {
	cfg, err := LoadConfig(s.path)
	if err != nil {
		s.logger.Warn("Personas reload rejected, keeping previous registry",
			zap.String("path", s.path),
			zap.Error(err))
		return
	}
	s.current.Store(NewRegistry(cfg))
	s.logger.Info("Personas registry reloaded",
		zap.Int("personas", len(cfg.Personas)),
		zap.Strings("order", cfg.Order))
}
