package store

import (
	"io/fs"
	"sync"
)

// MemoryMedium keeps collection files in memory. Nothing survives a restart.
type MemoryMedium struct {
	mu    sync.Mutex
	files map[string][]byte
}

func NewMemoryMedium() *MemoryMedium {
	return &MemoryMedium{files: make(map[string][]byte)}
}

func (m *MemoryMedium) Read(name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[name]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return append([]byte(nil), data...), nil
}

func (m *MemoryMedium) Write(name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = append([]byte(nil), data...)
	return nil
}

var _ Medium = (*MemoryMedium)(nil)
