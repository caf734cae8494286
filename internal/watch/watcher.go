// Package watch triggers reindexing when indexed source folders change on
// disk. Rapid change bursts (saves, branch switches, builds) collapse into
// one trigger through a debounce window.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ErrWatcherFailed indicates the filesystem watcher failed to initialize.
var ErrWatcherFailed = errors.New("failed to initialize filesystem watcher")

// DefaultDebounce is the quiet period required before a trigger fires.
const DefaultDebounce = 2 * time.Second

// Watcher observes a set of folders recursively and fires a callback after
// changes settle.
type Watcher struct {
	folders     []string
	excludeDirs map[string]bool
	debounce    time.Duration
	onChange    func()
	watcher     *fsnotify.Watcher
	stop        chan struct{}
	logger      *zap.Logger
}

// NewWatcher creates a watcher over folders. excludeDirs entries are matched
// against path segment names, the same rule the indexer applies. onChange
// runs on the watcher goroutine after each settled change burst.
func NewWatcher(folders []string, excludeDirs []string, debounce time.Duration, onChange func(), logger *zap.Logger) (*Watcher, error) {
	if len(folders) == 0 {
		return nil, errors.New("at least one folder is required")
	}
	if onChange == nil {
		return nil, errors.New("onChange callback is required")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWatcherFailed, err)
	}

	excluded := make(map[string]bool, len(excludeDirs))
	for _, d := range excludeDirs {
		excluded[d] = true
	}

	return &Watcher{
		folders:     folders,
		excludeDirs: excluded,
		debounce:    debounce,
		onChange:    onChange,
		watcher:     fsw,
		stop:        make(chan struct{}),
		logger:      logger,
	}, nil
}

// Start registers all watched directories and begins processing events in a
// background goroutine. Call Stop to clean up.
func (w *Watcher) Start(ctx context.Context) error {
	for _, folder := range w.folders {
		if err := w.addRecursive(folder); err != nil {
			return fmt.Errorf("watching %s: %w", folder, err)
		}
	}
	go w.processEvents(ctx)
	return nil
}

// Stop stops the watcher and releases its resources.
func (w *Watcher) Stop() {
	select {
	case <-w.stop:
	default:
		close(w.stop)
		_ = w.watcher.Close()
	}
}

// addRecursive registers folder and every non-excluded subdirectory.
func (w *Watcher) addRecursive(folder string) error {
	return filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.excludeDirs[d.Name()] {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

// processEvents folds filesystem events into debounced onChange calls.
func (w *Watcher) processEvents(ctx context.Context) {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-w.stop:
			return
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.excludedPath(event.Name) {
				continue
			}
			// New directories must be registered to keep recursion live.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.addRecursive(event.Name)
				}
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug("change detected", zap.String("path", event.Name))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-fire:
			timer = nil
			fire = nil
			w.logger.Info("changes settled, triggering reindex")
			w.onChange()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

// excludedPath reports whether any segment of path names an excluded
// directory.
func (w *Watcher) excludedPath(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if w.excludeDirs[part] {
			return true
		}
	}
	return false
}
