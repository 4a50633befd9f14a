package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileMedium stores each collection as a JSON file under Dir. Writes go to a
// temp file that is renamed over the target.
type FileMedium struct {
	Dir string

	mu sync.Mutex
}

func NewFileMedium(dir string) *FileMedium {
	return &FileMedium{Dir: dir}
}

func (m *FileMedium) Read(name string) ([]byte, error) {
	return os.ReadFile(filepath.Join(m.Dir, name))
}

func (m *FileMedium) Write(name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.MkdirAll(m.Dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	tmp, err := os.CreateTemp(m.Dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(m.Dir, name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

var _ Medium = (*FileMedium)(nil)
