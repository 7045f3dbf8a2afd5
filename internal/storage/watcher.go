package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce coalesces the burst of events a single save produces.
const DefaultDebounce = 200 * time.Millisecond

// Watcher reports changes made to a backend's files by other processes, the
// terminal counterpart of the browser's cross-tab storage event.
type Watcher struct {
	watcher  *fsnotify.Watcher
	dirs     map[string]struct{} // every entry inside counts
	files    map[string]struct{} // only these exact files count
	debounce time.Duration
	logger   *zap.Logger
}

// NewWatcher watches paths. A directory matches any non-hidden file in it;
// a file (which need not exist yet) is watched through its parent directory.
func NewWatcher(paths []string, debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("nothing to watch")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{
		watcher:  fw,
		dirs:     make(map[string]struct{}),
		files:    make(map[string]struct{}),
		debounce: debounce,
		logger:   logger,
	}

	watched := make(map[string]bool)
	for _, p := range paths {
		p = filepath.Clean(p)
		dir := filepath.Dir(p)
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			dir = p
			w.dirs[p] = struct{}{}
		} else {
			w.files[p] = struct{}{}
		}
		if watched[dir] {
			continue
		}
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		watched[dir] = true
	}
	return w, nil
}

func (w *Watcher) relevant(name string) bool {
	name = filepath.Clean(name)
	if _, ok := w.files[name]; ok {
		return true
	}
	if strings.HasPrefix(filepath.Base(name), ".") {
		return false
	}
	_, ok := w.dirs[filepath.Dir(name)]
	return ok
}

// Run delivers debounced change notifications to onChange until ctx is
// cancelled. It closes the underlying watcher before returning.
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	defer w.watcher.Close()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
				continue
			}
			if !w.relevant(ev.Name) {
				continue
			}
			w.logger.Debug("storage change", zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case <-fire:
			onChange()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}
