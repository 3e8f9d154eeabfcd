package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Logger defines the logging interface used by the watcher.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// debounceWindow coalesces the burst of filesystem events an editor's
// save (write + rename + chmod) produces into one reload.
const debounceWindow = 500 * time.Millisecond

// Watch monitors the config file and invokes onReload with the freshly
// loaded configuration every time the file changes and still validates.
// A reload that fails to parse or validate is logged and dropped; the
// last good configuration stays active.
//
// The parent directory is watched rather than the file itself so that
// atomic-rename saves (the common editor and configuration-management
// pattern) are picked up. Watch blocks until ctx is cancelled.
//
// Parameters:
//   - ctx: cancellation context; Watch returns when it is done
//   - path: path of the YAML config file passed to Load
//   - logger: Logger instance (must not be nil)
//   - onReload: called with each successfully reloaded config
func Watch(ctx context.Context, path string, logger Logger, onReload func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating config watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching config directory %s: %w", dir, err)
	}

	logger.Info("config watcher started", "path", path)

	var debounce *time.Timer
	var debounceC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			if debounce == nil {
				debounce = time.NewTimer(debounceWindow)
				debounceC = debounce.C
			} else {
				debounce.Reset(debounceWindow)
			}

		case <-debounceC:
			debounce = nil
			debounceC = nil

			cfg, loadErr := Load(path)
			if loadErr != nil {
				// Keep running on the last good config.
				logger.Warn("config reload rejected", "error", loadErr)
				continue
			}

			logger.Info("config reloaded", "path", path)
			onReload(cfg)

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("config watcher error", "error", watchErr)
		}
	}
}
