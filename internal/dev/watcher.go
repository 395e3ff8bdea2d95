// Package dev provides the live-reload file watcher used in dev mode.
package dev

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet window that coalesces bursts of file
// events into one reload.
const DefaultDebounce = 100 * time.Millisecond

// Config configures the file watcher.
type Config struct {
	// Paths are the directories to watch, recursively.
	Paths []string

	// Debounce is the delay before triggering on change.
	Debounce time.Duration

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Watcher monitors directories and fires a callback once per burst of
// changes.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	debounce  time.Duration
	onReload  func()
	logger    *slog.Logger

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// Watch starts watching the configured paths. onReload is called from
// the watcher's goroutine after each settled burst of changes.
func Watch(config Config, onReload func()) (*Watcher, error) {
	if config.Debounce == 0 {
		config.Debounce = DefaultDebounce
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("dev: create watcher: %w", err)
	}

	w := &Watcher{
		fsWatcher: fsw,
		debounce:  config.Debounce,
		onReload:  onReload,
		logger:    config.Logger,
		done:      make(chan struct{}),
	}

	for _, p := range config.Paths {
		if err := w.addRecursive(p); err != nil {
			fsw.Close()
			return nil, err
		}
	}

	w.wg.Add(1)
	go w.loop()

	return w, nil
}

// addRecursive watches dir and every subdirectory under it.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if ignoredDir(d.Name()) && path != dir {
			return filepath.SkipDir
		}
		if err := w.fsWatcher.Add(path); err != nil {
			return fmt.Errorf("dev: watch %s: %w", path, err)
		}
		return nil
	})
}

// loop turns raw file events into debounced reloads.
func (w *Watcher) loop() {
	defer w.wg.Done()

	var fire <-chan time.Time
	for {
		select {
		case <-w.done:
			return

		case ev, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if ignoredFile(ev.Name) {
				continue
			}
			// Directories created mid-run get watched too.
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(ev.Name); err != nil {
						w.logger.Warn("watch new directory", "path", ev.Name, "error", err)
					}
					continue
				}
			}
			w.logger.Debug("file changed", "path", ev.Name, "op", ev.Op.String())
			fire = time.After(w.debounce)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)

		case <-fire:
			fire = nil
			w.logger.Info("change detected, reloading clients")
			w.onReload()
		}
	}
}

// Stop shuts the watcher down and waits for its goroutine. Idempotent.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.fsWatcher.Close()
	})
	w.wg.Wait()
}

// ignoredDir reports directories that never hold reloadable sources.
func ignoredDir(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	switch name {
	case "node_modules", "dist", "tmp":
		return true
	}
	return false
}

// ignoredFile reports editor droppings and lock files.
func ignoredFile(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return true
	}
	for _, suffix := range []string{".swp", ".tmp", "~"} {
		if strings.HasSuffix(base, suffix) {
			return true
		}
	}
	return false
}
