package main

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/schemakit/jsonschema/retrieve"
)

const debounceDuration = 100 * time.Millisecond

// watch runs the validation and reruns it whenever the schema or an
// instance file changes. It blocks until ctx is cancelled.
func (v *validator) watch(ctx context.Context, schema string, instances []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// parent directories are watched since editors often replace files
	files := map[string]bool{}
	dirs := map[string]bool{}
	for _, arg := range append([]string{schema}, instances...) {
		abs, ok, err := localPath(arg)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		files[abs] = true
		if dir := filepath.Dir(abs); !dirs[dir] {
			if err := watcher.Add(dir); err != nil {
				return err
			}
			dirs[dir] = true
		}
	}

	rerun := func() {
		err := v.run(ctx, schema, instances)
		if err != nil && !errors.Is(err, errInvalid) && !errors.Is(err, context.Canceled) {
			v.logger.Error("validation failed", "error", err)
		}
	}
	rerun()
	v.logger.Info("watching for changes", "files", len(files))

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()
		case err := <-watcher.Errors:
			v.logger.Error("watcher error", "error", err)
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			changed := event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
			if !changed || !files[filepath.Clean(event.Name)] {
				continue
			}
			v.logger.Debug("file changed", "path", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(debounceDuration)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(debounceDuration)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			rerun()
		}
	}
}

// localPath returns the absolute file path of arg, if arg is a file.
func localPath(arg string) (string, bool, error) {
	switch {
	case arg == "-", strings.HasPrefix(arg, "http://"), strings.HasPrefix(arg, "https://"):
		return "", false, nil
	case strings.HasPrefix(arg, "file://"):
		path, err := retrieve.FileLoader{}.ToFile(arg)
		return filepath.Clean(path), err == nil, err
	}
	abs, err := filepath.Abs(arg)
	return abs, err == nil, err
}
