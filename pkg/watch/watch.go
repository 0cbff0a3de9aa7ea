// Package watch re-runs the processing pipeline when source documents
// in an input directory appear or change. Events are debounced so a
// burst of writes to the same file triggers one run.
package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/fsnotify.v1"
)

// DefaultDebounce is how long the watcher waits after the last event
// on a file before handing it off.
const DefaultDebounce = 2 * time.Second

// Handler processes one changed input file.
type Handler func(path string) error

// Watcher watches an input directory for text documents.
type Watcher struct {
	dir        string
	extensions map[string]bool
	debounce   time.Duration
	handler    Handler

	watcher  *fsnotify.Watcher
	stopChan chan struct{}

	mu      sync.Mutex
	pending map[string]*time.Timer

	// OnError receives watch-loop errors; nil means they are dropped.
	OnError func(error)
}

// New builds a watcher over dir that hands matching files to handler.
// Only files with the given extensions (e.g. ".txt") are considered;
// an empty list accepts ".txt" only.
func New(dir string, handler Handler, extensions ...string) (*Watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("watch directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	if handler == nil {
		return nil, fmt.Errorf("nil handler")
	}

	if len(extensions) == 0 {
		extensions = []string{".txt"}
	}
	extSet := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		extSet[strings.ToLower(ext)] = true
	}

	return &Watcher{
		dir:        dir,
		extensions: extSet,
		debounce:   DefaultDebounce,
		handler:    handler,
		pending:    make(map[string]*time.Timer),
	}, nil
}

// SetDebounce overrides the debounce interval.
func (w *Watcher) SetDebounce(d time.Duration) {
	if d > 0 {
		w.debounce = d
	}
}

// Start begins watching. It returns once the watch is established; the
// event loop runs until Stop.
func (w *Watcher) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	w.watcher = watcher
	w.stopChan = make(chan struct{})

	go w.loop()

	if err := watcher.Add(w.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}
	return nil
}

// loop dispatches file events until Stop is called.
func (w *Watcher) loop() {
	for {
		select {
		case <-w.stopChan:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.wanted(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.schedule(event.Name)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if w.OnError != nil {
				w.OnError(err)
			}
		}
	}
}

// wanted reports whether the path has a watched extension.
func (w *Watcher) wanted(path string) bool {
	return w.extensions[strings.ToLower(filepath.Ext(path))]
}

// schedule arms (or re-arms) the debounce timer for one file.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Stop()
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		if err := w.handler(path); err != nil && w.OnError != nil {
			w.OnError(fmt.Errorf("processing %s: %w", path, err))
		}
	})
}

// Stop ends the watch and cancels pending handoffs.
func (w *Watcher) Stop() {
	if w.stopChan != nil {
		close(w.stopChan)
	}
	if w.watcher != nil {
		w.watcher.Close()
	}
	w.mu.Lock()
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()
}
