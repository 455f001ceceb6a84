// Package persist stores mind maps as JSON blobs and reads them back leniently.
package persist

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// BlobStore is the key-value boundary the editor saves through. Load reports
// ok=false when nothing has been stored yet.
type BlobStore interface {
	Load() (data []byte, ok bool, err error)
	Save(data []byte) error
}

// FileStore keeps the blob in a single file. Writes go through a temp file and
// a rename so readers never see a half-written document.
type FileStore struct {
	path string

	mu   sync.Mutex
	last []byte
}

// NewFileStore returns a store backed by path. The file need not exist yet.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file.
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Load() ([]byte, bool, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", f.path, err)
	}
	return data, true, nil
}

func (f *FileStore) Save(data []byte) error {
	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// Remember the blob before it becomes visible so a watcher racing the
	// rename already recognises it.
	f.mu.Lock()
	f.last = bytes.Clone(data)
	f.mu.Unlock()

	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", f.path, err)
	}
	return nil
}

// IsOwnWrite reports whether data equals the last blob this store saved.
func (f *FileStore) IsOwnWrite(data []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last != nil && bytes.Equal(f.last, data)
}

// MemoryStore keeps the blob in memory.
type MemoryStore struct {
	mu    sync.Mutex
	data  []byte
	saves int
}

// NewMemoryStore returns a store holding data, or an empty one for nil.
func NewMemoryStore(data []byte) *MemoryStore {
	return &MemoryStore{data: bytes.Clone(data)}
}

func (m *MemoryStore) Load() ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil, false, nil
	}
	return bytes.Clone(m.data), true, nil
}

func (m *MemoryStore) Save(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = bytes.Clone(data)
	m.saves++
	return nil
}

// Saves returns how many times Save was called.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
