package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"ember/internal/analysis"
	"ember/internal/diag"
	"ember/internal/feedback"
	"ember/internal/project"
)

const watchDebounce = 150 * time.Millisecond

// watchProject checks the project once and then again after every burst of
// source or manifest changes, until ctx is cancelled. A manifest change
// rebuilds the engine; a manifest that fails to load keeps the previous one.
func watchProject(ctx context.Context, out, errOut io.Writer, opts checkOptions) error {
	logger := logFor(opts)
	engine, err := analysis.New(opts.engine)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start file watcher: %w", err)
	}
	defer func() { _ = w.Close() }()

	root := engine.Manifest().Root
	if err := addWatchDirs(w, root); err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}

	if _, err := render(out, engine.RunFullAnalysis(ctx), engine, opts); err != nil {
		return err
	}

	var (
		debounce        *time.Timer
		fire            <-chan time.Time
		manifestChanged bool
	)
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := addWatchDirs(w, ev.Name); err != nil {
						logger.Warn("cannot watch new directory", zap.String("path", ev.Name), zap.Error(err))
					}
					continue
				}
			}
			switch {
			case filepath.Base(ev.Name) == project.ManifestName:
				manifestChanged = true
			case !strings.EqualFold(filepath.Ext(ev.Name), engine.Manifest().Config.Project.Extension):
				continue
			}
			logger.Debug("change", zap.String("path", ev.Name), zap.Stringer("op", ev.Op))
			if debounce == nil {
				debounce = time.NewTimer(watchDebounce)
			} else {
				debounce.Reset(watchDebounce)
			}
			fire = debounce.C

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("file watcher error", zap.Error(err))

		case <-fire:
			fire = nil
			var fb feedback.Feedback
			if manifestChanged {
				manifestChanged = false
				next, err := analysis.New(opts.engine)
				if err != nil {
					fb.AppendMessage(diag.LevelError, "Could not reload the project configuration", err.Error())
				} else {
					engine = next
				}
			}
			if !opts.quiet {
				fmt.Fprintf(errOut, "\n[%s] change detected, checking again\n", time.Now().Format("15:04:05"))
			}
			fb.Merge(engine.RunFullAnalysis(ctx))
			if _, err := render(out, fb, engine, opts); err != nil {
				return err
			}
		}
	}
}

// addWatchDirs watches dir and every directory below it, skipping hidden ones.
func addWatchDirs(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
