package pattern

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/fsnotify.v1"
	"gopkg.in/yaml.v3"
)

// MarkerFile is the YAML document shape for marker overrides: a named
// list of marker definitions that extend or replace built-in markers.
type MarkerFile struct {
	Name    string    `yaml:"name"`
	Markers []*Marker `yaml:"markers"`
}

// Registry manages a marker table that can be extended from YAML files
// on disk, with optional live reload when the directory changes.
type Registry struct {
	mu       sync.RWMutex
	table    *Table
	dir      string
	watcher  *fsnotify.Watcher
	stopChan chan struct{}
	onChange func(event string, path string)
}

// NewRegistry creates a registry seeded with the built-in marker table.
func NewRegistry() *Registry {
	return &Registry{table: DefaultTable()}
}

// NewRegistryWithDirectory creates a registry and loads marker override
// files from the directory. A missing directory is not an error.
func NewRegistryWithDirectory(dir string) (*Registry, error) {
	r := NewRegistry()
	if err := r.LoadDirectory(dir); err != nil {
		return nil, err
	}
	return r, nil
}

// Table returns the current marker table.
func (r *Registry) Table() *Table {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.table
}

// LoadDirectory loads every YAML marker file in the directory.
func (r *Registry) LoadDirectory(dir string) error {
	r.dir = dir

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("checking directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var loadErrors []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		if err := r.LoadFile(filepath.Join(dir, name)); err != nil {
			loadErrors = append(loadErrors, fmt.Sprintf("%s: %v", name, err))
		}
	}

	if len(loadErrors) > 0 {
		return fmt.Errorf("errors loading markers: %s", strings.Join(loadErrors, "; "))
	}
	return nil
}

// LoadFile loads a single marker override file into the table.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	var file MarkerFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range file.Markers {
		if err := r.table.Add(m); err != nil {
			return fmt.Errorf("registering marker: %w", err)
		}
	}
	return nil
}

// Reload rebuilds the table from the built-ins plus the configured
// directory.
func (r *Registry) Reload() error {
	if r.dir == "" {
		return fmt.Errorf("no directory configured for reload")
	}

	r.mu.Lock()
	r.table = DefaultTable()
	r.mu.Unlock()

	return r.LoadDirectory(r.dir)
}

// SetOnChange sets a callback invoked when a marker file changes.
func (r *Registry) SetOnChange(fn func(event string, path string)) {
	r.onChange = fn
}

// Watch starts watching the marker directory for changes, reloading
// affected files as they appear.
func (r *Registry) Watch() error {
	if r.dir == "" {
		return fmt.Errorf("no directory configured for watching")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}

	r.watcher = watcher
	r.stopChan = make(chan struct{})

	go r.watchLoop()

	if err := watcher.Add(r.dir); err != nil {
		r.watcher.Close()
		return fmt.Errorf("watching directory %s: %w", r.dir, err)
	}
	return nil
}

// watchLoop handles file system events until StopWatch is called.
func (r *Registry) watchLoop() {
	for {
		select {
		case <-r.stopChan:
			return

		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(event.Name, ".yaml") && !strings.HasSuffix(event.Name, ".yml") {
				continue
			}

			switch {
			case event.Op&fsnotify.Create == fsnotify.Create:
				r.handleFileChange(event.Name, "create")
			case event.Op&fsnotify.Write == fsnotify.Write:
				r.handleFileChange(event.Name, "modify")
			case event.Op&fsnotify.Remove == fsnotify.Remove:
				r.handleFileRemove(event.Name)
			case event.Op&fsnotify.Rename == fsnotify.Rename:
				r.handleFileRemove(event.Name)
			}

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			_ = err
		}
	}
}

// handleFileChange reloads a created or modified marker file.
func (r *Registry) handleFileChange(path string, eventType string) {
	if err := r.LoadFile(path); err != nil {
		return
	}
	if r.onChange != nil {
		r.onChange(eventType, path)
	}
}

// handleFileRemove rebuilds the table after a marker file disappears.
func (r *Registry) handleFileRemove(path string) {
	if err := r.Reload(); err != nil {
		return
	}
	if r.onChange != nil {
		r.onChange("remove", path)
	}
}

// StopWatch stops watching the marker directory.
func (r *Registry) StopWatch() {
	if r.stopChan != nil {
		close(r.stopChan)
	}
	if r.watcher != nil {
		r.watcher.Close()
	}
}
