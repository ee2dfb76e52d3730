package models

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// DefaultSaveName matches the storage key used by the browser version of the scorer.
const DefaultSaveName = "german_bridge_game"

// Store is the save/load capability the engine persists through.
// Load returns (nil, nil) when nothing has been saved.
type Store interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context) (*Snapshot, error)
	Clear(ctx context.Context) error
}

// FileStore keeps one snapshot as a YAML file under Dir.
type FileStore struct {
	Dir  string
	Name string
}

func NewFileStore(dir, name string) *FileStore {
	if name == "" {
		name = DefaultSaveName
	}
	return &FileStore{Dir: dir, Name: name}
}

func (f *FileStore) path() string {
	return filepath.Join(f.Dir, f.Name+".yaml")
}

func (f *FileStore) Save(_ context.Context, snap Snapshot) error {
	if err := os.MkdirAll(f.Dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(snap)
	if err != nil {
		return err
	}

	// Write then rename so a crash mid-write never leaves a truncated save.
	tmp := f.path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path())
}

func (f *FileStore) Load(_ context.Context) (*Snapshot, error) {
	data, err := os.ReadFile(f.path())
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeSnapshot(data)
}

func (f *FileStore) Clear(_ context.Context) error {
	err := os.Remove(f.path())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// MemoryStore keeps the last snapshot in memory. Useful for tests and
// sessions that should not outlive the process.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Save(_ context.Context, snap Snapshot) error {
	data, err := yaml.Marshal(snap)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = data
	return nil
}

func (m *MemoryStore) Load(_ context.Context) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil, nil
	}
	return decodeSnapshot(m.data)
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = nil
	return nil
}

func decodeSnapshot(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	return &snap, nil
}
