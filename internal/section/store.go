package section

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// FileStore abstracts file access so that generation can run against the
// real tree or an in-memory overlay.
type FileStore interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
}

// OSStore reads and writes the local filesystem.
type OSStore struct{}

func (OSStore) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile keeps the mode of an existing file and creates parent directories
// for new ones.
func (OSStore) WriteFile(path string, data []byte) error {
	perm := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	} else if errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", path, err)
		}
	}
	return os.WriteFile(path, data, perm)
}

// Overlay buffers writes in memory on top of a base store. Reads see buffered
// content first, so a multi-step run behaves as if the writes had happened.
type Overlay struct {
	base  FileStore
	mu    sync.Mutex
	files map[string][]byte
}

func NewOverlay(base FileStore) *Overlay {
	return &Overlay{base: base, files: make(map[string][]byte)}
}

func (o *Overlay) ReadFile(path string) ([]byte, error) {
	o.mu.Lock()
	data, ok := o.files[path]
	o.mu.Unlock()
	if ok {
		return append([]byte(nil), data...), nil
	}
	return o.base.ReadFile(path)
}

func (o *Overlay) WriteFile(path string, data []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.files[path] = append([]byte(nil), data...)
	return nil
}

// Pending lists buffered paths in sorted order.
func (o *Overlay) Pending() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	paths := make([]string, 0, len(o.files))
	for p := range o.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Base returns the store the overlay reads through to.
func (o *Overlay) Base() FileStore {
	return o.base
}

// Commit flushes buffered writes to the base store.
func (o *Overlay) Commit() error {
	for _, p := range o.Pending() {
		o.mu.Lock()
		data := o.files[p]
		o.mu.Unlock()
		if err := o.base.WriteFile(p, data); err != nil {
			return fmt.Errorf("failed to write %s: %w", p, err)
		}
	}
	return nil
}
