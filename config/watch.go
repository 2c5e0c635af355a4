package config

import (
	"context"
	"path/filepath"
	"reflect"

	"github.com/fsnotify/fsnotify"
	"github.com/sarchlab/packetgraph/logging"
)

// Watch calls onChange with the new pipeline every time the file at path is
// written and parses into something different from the previous version.
// Files that fail to load are logged and skipped. Watch blocks until ctx is
// done or the watcher fails.
func Watch(ctx context.Context, path string, onChange func(*Pipeline)) error {
	path = filepath.Clean(path)
	logger := logging.Get(logging.Config)

	current, err := Load(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Editors often replace the file, so the directory is watched.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(event.Name) != path ||
				!event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			next, err := Load(path)
			if err != nil {
				logger.Warn("ignoring pipeline update", "path", path, "error", err)
				continue
			}

			if reflect.DeepEqual(current, next) {
				logger.Debug("pipeline unchanged", "path", path)
				continue
			}

			logger.Info("pipeline changed", "path", path)

			current = next
			onChange(next)
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			return watchErr
		}
	}
}
