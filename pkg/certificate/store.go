// store.go - Template storage behind a small interface so the shared
// mutable template file is never a bare global.
package certificate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// TemplateStore hands out the current template bytes and accepts atomic
// replacements. Reads during a replace observe either the old or the new
// template, never a torn one; last replace wins and no read-your-writes
// ordering is promised.
type TemplateStore interface {
	Bytes() ([]byte, error)
	Replace(data []byte) error
}

// ── File-backed store ──

// FileTemplateStore keeps the template in a file and replaces it by writing
// a sibling temp file and renaming it over the original.
type FileTemplateStore struct {
	path string
	mu   sync.Mutex // serializes replacements, not reads
}

// NewFileTemplateStore returns a store for the template at path. The file
// is read lazily at render time; it does not need to exist yet.
func NewFileTemplateStore(path string) *FileTemplateStore {
	return &FileTemplateStore{path: path}
}

// Bytes reads the current template file.
func (s *FileTemplateStore) Bytes() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	return data, nil
}

// Replace atomically swaps in a new template. The data is written to a temp
// file in the same directory, synced, then renamed over the target so a
// crash or concurrent read never sees a partial write.
func (s *FileTemplateStore) Replace(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".template-*")
	if err != nil {
		return fmt.Errorf("stage template: %w", err)
	}
	tmpName := tmp.Name()

	_, werr := tmp.Write(data)
	if werr == nil {
		werr = tmp.Sync()
	}
	if cerr := tmp.Close(); werr == nil {
		werr = cerr
	}
	if werr == nil {
		werr = os.Chmod(tmpName, 0644)
	}
	if werr == nil {
		werr = os.Rename(tmpName, s.path)
	}
	if werr != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace template: %w", werr)
	}

	return nil
}

// ── In-memory store ──

// ErrNoTemplate is returned by a memory store that was never given a
// template.
var ErrNoTemplate = errors.New("no template loaded")

// MemTemplateStore keeps the template in memory. Used by tests and the
// browser client, where there is no filesystem to speak of.
type MemTemplateStore struct {
	mu   sync.RWMutex
	data []byte
}

// NewMemTemplateStore returns a store seeded with initial, which may be nil.
func NewMemTemplateStore(initial []byte) *MemTemplateStore {
	s := &MemTemplateStore{}
	if initial != nil {
		s.data = append([]byte(nil), initial...)
	}
	return s
}

// Bytes returns a copy of the current template.
func (s *MemTemplateStore) Bytes() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data == nil {
		return nil, ErrNoTemplate
	}
	return append([]byte(nil), s.data...), nil
}

// Replace swaps the stored template.
func (s *MemTemplateStore) Replace(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append([]byte(nil), data...)
	return nil
}
