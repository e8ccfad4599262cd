package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// DefaultFile is the session file used when no path is configured.
const DefaultFile = "session.json"

// FileBackend keeps entries in a JSON object on disk, replaced atomically on
// every change.
type FileBackend struct {
	path    string
	mu      sync.Mutex
	entries map[string]string
}

// NewFileBackend loads path if it exists. A missing file yields an empty backend.
func NewFileBackend(path string) (*FileBackend, error) {
	fb := &FileBackend{path: path, entries: make(map[string]string)}
	if err := fb.load(); err != nil {
		return nil, err
	}
	return fb, nil
}

func (fb *FileBackend) load() error {
	f, err := os.Open(fb.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()
	return json.NewDecoder(f).Decode(&fb.entries)
}

// save writes the entries to a temporary file next to path and renames it
// into place, so a crash mid-write never leaves a truncated session file.
func (fb *FileBackend) save() error {
	tmp, err := os.CreateTemp(filepath.Dir(fb.path), filepath.Base(fb.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := json.NewEncoder(tmp).Encode(fb.entries); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("encode session file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close session file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0600); err != nil {
		return fmt.Errorf("chmod session file: %w", err)
	}
	return os.Rename(tmp.Name(), fb.path)
}

// Get implements Backend.
func (fb *FileBackend) Get(key string) (string, error) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	v, ok := fb.entries[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set implements Backend.
func (fb *FileBackend) Set(key, value string) error {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.entries[key] = value
	return fb.save()
}

// Remove implements Backend.
func (fb *FileBackend) Remove(key string) error {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if _, ok := fb.entries[key]; !ok {
		return nil
	}
	delete(fb.entries, key)
	return fb.save()
}

// MemoryBackend is a Backend that lives only as long as the process.
type MemoryBackend struct {
	mu      sync.Mutex
	entries map[string]string
}

// NewMemoryBackend returns an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{entries: make(map[string]string)}
}

// Get implements Backend.
func (m *MemoryBackend) Get(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set implements Backend.
func (m *MemoryBackend) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

// Remove implements Backend.
func (m *MemoryBackend) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// Len reports how many entries are stored.
func (m *MemoryBackend) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
