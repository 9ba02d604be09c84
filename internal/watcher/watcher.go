// Package watcher re-tags documents as they change on disk.
package watcher

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/autotag/internal/autotag"
)

// Event kinds passed to EventCallback.
const (
	KindProcessed = "processed"
	KindForgotten = "forgotten"
	KindFailed    = "failed"
)

// DefaultDebounce is used when Config.Debounce is zero.
const DefaultDebounce = 300 * time.Millisecond

// EventCallback is called after the watcher handled a document.
type EventCallback func(kind string, path string)

// Handler runs the pipeline for changed and deleted documents.
// *autotag.Processor implements it.
type Handler interface {
	Accepts(rel string) bool
	ProcessFile(ctx context.Context, rel string) (*autotag.Result, error)
	Forget(ctx context.Context, rel string) (*autotag.Report, error)
}

// Config tunes a watcher.
type Config struct {
	// Debounce is the quiet period after the last event before pending
	// documents are handled.
	Debounce time.Duration
	// SkipDirs are directory names that are never watched, e.g. the
	// keywords directory and ".git".
	SkipDirs []string
	OnEvent  EventCallback
}

// Watch starts an fsnotify watcher on root and handles document changes
// until ctx is cancelled.
//
// Events are collected per path and handled once no new event arrived for
// the debounce period. A pending path that still exists is processed; one
// that is gone is forgotten, which covers deletes, renames and editors that
// save through a temporary file. New directories are added to the watch
// list and their documents processed.
func Watch(ctx context.Context, root string, h Handler, logger *slog.Logger, cfg Config) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	skip := make(map[string]struct{}, len(cfg.SkipDirs))
	for _, d := range cfg.SkipDirs {
		skip[d] = struct{}{}
	}

	if err := addDirsRecursive(w, root, skip); err != nil {
		return err
	}
	logger.Info("watcher: started", slog.String("root", root))

	pending := map[string]struct{}{}
	timer := time.NewTimer(debounce)
	timer.Stop()

	enqueue := func(rel string) {
		if !h.Accepts(rel) {
			return
		}
		pending[rel] = struct{}{}
		timer.Reset(debounce)
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			logger.Info("watcher: stopped")
			return nil

		case <-timer.C:
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			pending = map[string]struct{}{}
			flush(ctx, root, paths, h, logger, cfg.OnEvent)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			rel, relErr := filepath.Rel(root, ev.Name)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if _, skipped := skip[info.Name()]; skipped {
						continue
					}
					if addErr := addDirsRecursive(w, ev.Name, skip); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", rel),
							slog.String("error", addErr.Error()))
						continue
					}
					logger.Debug("watcher: watching new dir", slog.String("path", rel))
					for _, doc := range documentsIn(root, ev.Name, skip) {
						enqueue(doc)
					}
					continue
				}
			}

			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				enqueue(rel)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// flush handles paths in sorted order, gone paths first. A move between
// directories keeps its title, so the old path is forgotten before the new
// one is processed.
func flush(ctx context.Context, root string, paths []string, h Handler, logger *slog.Logger, cb EventCallback) {
	var gone, live []string
	for _, rel := range paths {
		if exists(root, rel) {
			live = append(live, rel)
		} else {
			gone = append(gone, rel)
		}
	}
	sort.Strings(gone)
	sort.Strings(live)
	for _, rel := range append(gone, live...) {
		if ctx.Err() != nil {
			return
		}
		handle(ctx, root, rel, h, logger, cb)
	}
}

func exists(root, rel string) bool {
	_, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
	return !errors.Is(err, fs.ErrNotExist)
}

func handle(ctx context.Context, root, rel string, h Handler, logger *slog.Logger, cb EventCallback) {
	kind := KindProcessed
	var err error
	if !exists(root, rel) {
		kind = KindForgotten
		_, err = h.Forget(ctx, rel)
	} else {
		_, err = h.ProcessFile(ctx, rel)
	}
	if err != nil {
		logger.Warn("watcher: "+kind+" failed", slog.String("path", rel), slog.String("error", err.Error()))
		kind = KindFailed
	} else {
		logger.Debug("watcher: "+kind, slog.String("path", rel))
	}
	if cb != nil {
		cb(kind, rel)
	}
}

// documentsIn lists files below dir as slash-separated paths relative to
// root.
func documentsIn(root, dir string, skip map[string]struct{}) []string {
	var out []string
	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if _, skipped := skip[d.Name()]; skipped && p != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if rel, relErr := filepath.Rel(root, p); relErr == nil {
			out = append(out, filepath.ToSlash(rel))
		}
		return nil
	})
	return out
}

// addDirsRecursive adds root and all its subdirectories to the watcher,
// leaving out skipped directory names.
func addDirsRecursive(w *fsnotify.Watcher, root string, skip map[string]struct{}) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if _, skipped := skip[d.Name()]; skipped && p != root {
			return filepath.SkipDir
		}
		return w.Add(p)
	})
}
