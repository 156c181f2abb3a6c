// Package fsnotify watches the compiled-grammar cache directory using
// github.com/fsnotify/fsnotify. A long-lived renderer keeps dlopen'd
// grammars cached; when an artifact is rebuilt underneath it (by another
// process or a re-provision), the watcher reports the path so the loader
// cache can be invalidated. Events are debounced since a compile shows up
// as several writes in quick succession.
package fsnotify

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceInterval = 100 * time.Millisecond

// Watcher monitors one artifact cache directory.
type Watcher struct {
	fw      *fsnotify.Watcher
	mu      sync.Mutex
	stopped bool
}

// NewWatcher creates a watcher. Call Watch to start it.
func NewWatcher() (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{fw: fw}, nil
}

// Watch monitors libDir and invokes onChange with the absolute path of
// each shared-library artifact that is written or replaced. The callback
// may be invoked from any goroutine.
func (w *Watcher) Watch(libDir string, onChange func(soPath string)) error {
	if err := w.fw.Add(libDir); err != nil {
		return err
	}

	// Trailing-edge debounce: each event resets the path's timer, and the
	// callback fires only after the path has been quiet for the interval.
	// A burst of writes from one compile collapses into a single report
	// carrying the final artifact, and fired timers leave no state behind.
	timers := make(map[string]*time.Timer)
	var dmu sync.Mutex

	go func() {
		for {
			select {
			case event, ok := <-w.fw.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				path := event.Name
				if !isArtifact(path) {
					continue
				}

				dmu.Lock()
				if tm, ok := timers[path]; ok {
					tm.Reset(debounceInterval)
				} else {
					timers[path] = time.AfterFunc(debounceInterval, func() {
						dmu.Lock()
						delete(timers, path)
						dmu.Unlock()
						onChange(path)
					})
				}
				dmu.Unlock()

			case _, ok := <-w.fw.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return nil
}

// Stop ends monitoring. Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return nil
	}
	w.stopped = true
	return w.fw.Close()
}

// isArtifact reports whether a path looks like a compiled grammar, not a
// temp file mid-compile.
func isArtifact(path string) bool {
	base := filepath.Base(path)
	if strings.Contains(base, ".tmp-") {
		return false
	}
	return strings.HasSuffix(base, ".so") || strings.HasSuffix(base, ".dylib")
}
