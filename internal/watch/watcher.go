// Package watch re-runs the full site build whenever the input tree
// changes. Rebuilds are debounced and never overlap: events arriving while
// a build runs coalesce into a single follow-up run.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/mdsite/internal/logfields"
)

// RebuildFunc performs one full synchronous build.
type RebuildFunc func(ctx context.Context) error

// Options tunes the watcher.
type Options struct {
	// Debounce is the quiet window events must close before a rebuild runs.
	Debounce time.Duration
	// RebuildEvery, when >0, forces a periodic full rebuild regardless of
	// events (for filesystems without reliable change notification).
	RebuildEvery time.Duration
}

// Watcher observes an input tree and triggers full rebuilds.
type Watcher struct {
	root    string
	opts    Options
	rebuild RebuildFunc
}

// New constructs a Watcher over root.
func New(root string, opts Options, rebuild RebuildFunc) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = 300 * time.Millisecond
	}
	return &Watcher{root: root, opts: opts, rebuild: rebuild}
}

// Run watches until ctx is canceled. A failed rebuild logs and waits for
// the next trigger; it never stops the loop.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer fw.Close()

	if err := addRecursive(fw, w.root); err != nil {
		return fmt.Errorf("watch input tree: %w", err)
	}
	slog.Info("Watching for changes", logfields.Input(w.root))

	forced := make(chan struct{}, 1)
	requestForced := func() {
		select {
		case forced <- struct{}{}:
		default:
		}
	}

	var scheduler gocron.Scheduler
	if w.opts.RebuildEvery > 0 {
		scheduler, err = gocron.NewScheduler()
		if err != nil {
			return fmt.Errorf("create scheduler: %w", err)
		}
		if _, err := scheduler.NewJob(
			gocron.DurationJob(w.opts.RebuildEvery),
			gocron.NewTask(requestForced),
			gocron.WithName("periodic-rebuild"),
		); err != nil {
			return fmt.Errorf("schedule periodic rebuild: %w", err)
		}
		scheduler.Start()
		defer func() { _ = scheduler.Shutdown() }()
		slog.Info("Periodic rebuild enabled", slog.Duration("every", w.opts.RebuildEvery))
	}

	var timer *time.Timer
	var timerC <-chan time.Time

	runBuild := func() {
		if err := w.rebuild(ctx); err != nil {
			slog.Error("Rebuild failed", logfields.Error(err))
		}
	}

	for {
		select {
		case <-ctx.Done():
			slog.Info("Watcher stopping")
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			// New directories must be added to the watch as they appear.
			if ev.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := addRecursive(fw, ev.Name); err != nil {
						slog.Warn("Failed to watch new directory", logfields.Path(ev.Name), logfields.Error(err))
					}
				}
			}
			slog.Debug("Change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.opts.Debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.opts.Debounce)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", logfields.Error(err))

		case <-timerC:
			timer = nil
			timerC = nil
			runBuild()

		case <-forced:
			runBuild()
		}
	}
}

// addRecursive adds dir and every subdirectory to the watch.
func addRecursive(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return fw.Add(p)
	})
}
