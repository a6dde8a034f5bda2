// Package watch reruns a pipeline whenever new images land in the tree.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DebounceDefault is the quiet period after the last file event before a
// pass starts.
const DebounceDefault = 2 * time.Second

// PollDefault is the scan interval in poll mode.
const PollDefault = 5 * time.Second

// Config holds watcher configuration.
type Config struct {
	Roots    []string                        // directories watched recursively
	Ignore   []string                        // subtrees whose events never trigger a pass
	Match    func(name string) bool          // base names that count as input images
	OnChange func(ctx context.Context) error // one pass over the tree
	Debounce time.Duration
	Poll     bool
	Interval time.Duration // poll interval
}

// Watcher triggers OnChange after input images are added or replaced.
type Watcher struct {
	cfg    Config
	ignore []string
}

// New creates a watcher with validated configuration.
func New(cfg Config) (*Watcher, error) {
	if len(cfg.Roots) == 0 {
		return nil, errors.New("at least one root is required")
	}
	if cfg.OnChange == nil {
		return nil, errors.New("change handler is required")
	}
	if cfg.Match == nil {
		cfg.Match = func(string) bool { return true }
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DebounceDefault
	}
	if cfg.Interval <= 0 {
		cfg.Interval = PollDefault
	}
	w := &Watcher{cfg: cfg}
	for _, p := range cfg.Ignore {
		if abs, err := filepath.Abs(p); err == nil {
			w.ignore = append(w.ignore, abs)
		}
	}
	return w, nil
}

// Run performs an initial pass, then watches until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	for _, root := range w.cfg.Roots {
		info, err := os.Stat(root)
		if err != nil {
			return fmt.Errorf("watch root %s: %w", root, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("watch root %s: not a directory", root)
		}
	}

	w.pass(ctx)
	if w.cfg.Poll {
		return w.runPoll(ctx)
	}
	return w.runFS(ctx)
}

func (w *Watcher) pass(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := w.cfg.OnChange(ctx); err != nil {
		slog.Error("watch pass failed", "error", err)
	}
}

func (w *Watcher) ignored(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, p := range w.ignore {
		if abs == p || strings.HasPrefix(abs, p+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// addTree registers dir and every subdirectory not ignored.
func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.ignored(path) || (path != dir && strings.HasPrefix(d.Name(), ".")) {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Rename) {
		return false
	}
	if w.ignored(ev.Name) {
		return false
	}
	return w.cfg.Match(filepath.Base(ev.Name))
}

// runFS watches with fsnotify. A pass runs once no relevant event arrived
// for the debounce period. Files as they stood when the last pass ended never
// trigger another one, so events caused by the pass itself, however late
// fsnotify delivers them, are ignored.
func (w *Watcher) runFS(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = fw.Close() }()

	for _, root := range w.cfg.Roots {
		if err := w.addTree(fw, root); err != nil {
			return err
		}
	}
	slog.Info("watching for new images", "mode", "fsnotify", "roots", w.cfg.Roots)
	settled := w.snapshot()

	trigger := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			slog.Info("watch stopped")
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() && !w.ignored(ev.Name) {
					if err := w.addTree(fw, ev.Name); err != nil {
						slog.Warn("watch new folder", "dir", ev.Name, "error", err)
					}
					continue
				}
			}
			if !w.relevant(ev) || unchanged(settled, ev.Name) {
				continue
			}
			slog.Debug("file event", "op", ev.Op.String(), "file", ev.Name)
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.cfg.Debounce, func() {
				select {
				case trigger <- struct{}{}:
				default:
				}
			})

		case <-trigger:
			w.pass(ctx)
			drain(fw.Events)
			settled = w.snapshot()

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

func drain(events <-chan fsnotify.Event) {
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

// unchanged reports whether path is gone or still the version recorded in
// settled.
func unchanged(settled map[string]fileStamp, path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return true
	}
	st, ok := settled[path]
	return ok && st.size == info.Size() && st.modTime.Equal(info.ModTime())
}

// fileStamp identifies one version of a file.
type fileStamp struct {
	size    int64
	modTime time.Time
}

// runPoll rescans the roots every interval and runs a pass when the set of
// matching files changed. The snapshot is retaken after each pass so the
// pass's own outputs do not trigger another one.
func (w *Watcher) runPoll(ctx context.Context) error {
	slog.Info("watching for new images", "mode", "poll", "roots", w.cfg.Roots, "interval", w.cfg.Interval)

	seen := w.snapshot()
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("watch stopped")
			return nil
		case <-ticker.C:
			current := w.snapshot()
			if sameFiles(seen, current) {
				continue
			}
			w.pass(ctx)
			seen = w.snapshot()
		}
	}
}

func (w *Watcher) snapshot() map[string]fileStamp {
	files := make(map[string]fileStamp)
	for _, root := range w.cfg.Roots {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				if w.ignored(path) || (path != root && strings.HasPrefix(d.Name(), ".")) {
					return filepath.SkipDir
				}
				return nil
			}
			if !w.cfg.Match(d.Name()) {
				return nil
			}
			if info, err := d.Info(); err == nil {
				files[path] = fileStamp{size: info.Size(), modTime: info.ModTime()}
			}
			return nil
		})
	}
	return files
}

func sameFiles(a, b map[string]fileStamp) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || !bv.modTime.Equal(v.modTime) || bv.size != v.size {
			return false
		}
	}
	return true
}
