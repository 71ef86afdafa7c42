package snippet

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a library when its backing file changes on disk. Editors
// often emit several events per save (write, chmod, rename for atomic
// saves), so events are debounced before the reload fires.
type Watcher struct {
	fw      *fsnotify.Watcher
	done    chan struct{}
	stopped bool
	mu      sync.Mutex
}

// NewWatcher creates a file system watcher for snippet libraries.
func NewWatcher() (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fw:   fw,
		done: make(chan struct{}),
	}, nil
}

// Watch monitors the library's backing file and invokes onReload after each
// successful reload. The parent directory is watched rather than the file
// itself so replace-on-save editors keep working.
func (w *Watcher) Watch(lib *Library, onReload func()) error {
	path := lib.Path()
	if path == "" {
		return fmt.Errorf("library has no backing file to watch")
	}
	dir := filepath.Dir(path)
	target := filepath.Base(path)
	if err := w.fw.Add(dir); err != nil {
		return err
	}

	var dmu sync.Mutex
	var last time.Time
	const debounceInterval = 100 * time.Millisecond

	go func() {
		for {
			select {
			case event, ok := <-w.fw.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
					!event.Has(fsnotify.Rename) {
					continue
				}

				dmu.Lock()
				now := time.Now()
				if now.Sub(last) < debounceInterval {
					dmu.Unlock()
					continue
				}
				last = now
				dmu.Unlock()

				if err := lib.Reload(); err != nil {
					log.Errorf("Reloading snippets from %s: %v", path, err)
					continue
				}
				log.Debugf("Snippet file changed, %d snippets loaded", lib.Count())
				onReload()

			case _, ok := <-w.fw.Errors:
				if !ok {
					return
				}
				// fsnotify recovers on its own; nothing useful to do here

			case <-w.done:
				return
			}
		}
	}()

	return nil
}

// Stop ends monitoring and releases all resources. Safe to call twice.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.done)
	return w.fw.Close()
}
