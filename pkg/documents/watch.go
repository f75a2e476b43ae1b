package documents

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	loggerpkg "github.com/minhyannv/docqa-go/pkg/logger"
)

// defaultSettle is how long Changed keeps draining after a relevant event.
const defaultSettle = 100 * time.Millisecond

// Watcher reports changes to readable files under a data directory.
// Events are buffered by fsnotify and drained by Changed; nothing runs on the caller's behalf.
type Watcher struct {
	watcher *fsnotify.Watcher
	logger  loggerpkg.Logger
	settle  time.Duration
}

// NewWatcher watches dir and all its non-hidden subdirectories. A symlinked dir is resolved first.
func NewWatcher(dir string, log loggerpkg.Logger) (*Watcher, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}
	if root, err = filepath.EvalSymlinks(root); err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &Watcher{watcher: fw, logger: loggerpkg.OrNop(log), settle: defaultSettle}
	if err := w.addTree(root); err != nil {
		_ = fw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && isHidden(d.Name()) {
			return fs.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// Changed drains pending events and reports whether any readable file was created,
// written, removed or renamed since the last call. It does not block when nothing happened.
// After a relevant event it keeps draining until the directory has been quiet for the
// settle window, so one burst of edits is reported once.
func (w *Watcher) Changed() bool {
	changed := false
	var wait time.Duration
	for {
		ev, ok := w.next(wait)
		if !ok {
			return changed
		}
		if w.handle(ev) {
			changed = true
			wait = w.settle
		}
	}
}

// next returns the next event, waiting up to d for one. A zero d does not block.
func (w *Watcher) next(d time.Duration) (fsnotify.Event, bool) {
	var timeout <-chan time.Time
	if d > 0 {
		t := time.NewTimer(d)
		defer t.Stop()
		timeout = t.C
	}
	for {
		if timeout == nil {
			select {
			case ev, ok := <-w.watcher.Events:
				return ev, ok
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return fsnotify.Event{}, false
				}
				w.logger.Warn("watcher error", map[string]any{"error": err.Error()})
			default:
				return fsnotify.Event{}, false
			}
			continue
		}
		select {
		case ev, ok := <-w.watcher.Events:
			return ev, ok
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fsnotify.Event{}, false
			}
			w.logger.Warn("watcher error", map[string]any{"error": err.Error()})
		case <-timeout:
			return fsnotify.Event{}, false
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) bool {
	if isHidden(filepath.Base(ev.Name)) {
		return false
	}
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addTree(ev.Name); err != nil {
				w.logger.Warn("watch new directory", map[string]any{"path": ev.Name, "error": err.Error()})
			}
			return true
		}
	}
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	if _, ok := readerFor(ev.Name); !ok {
		return false
	}
	w.logger.Debug("data directory changed", map[string]any{"path": ev.Name, "op": ev.Op.String()})
	return true
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
