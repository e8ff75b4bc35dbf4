package chain

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrChainNotFound is returned when loading or removing a name with no
// persisted record.
var ErrChainNotFound = errors.New("chain: not found")

// Store persists chains as opaque blobs keyed by name.
type Store interface {
	Persist(c *Chain) error
	Load(name string) (*Chain, error)
	Remove(name string) error
}

// FileStore keeps one JSON blob per chain in a directory.
type FileStore struct {
	Dir string
}

// NewFileStore creates the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("chain: create store dir: %w", err)
	}
	return &FileStore{Dir: dir}, nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.Dir, name+".chain.json")
}

func (s *FileStore) Persist(c *Chain) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("chain: marshal %q: %w", c.Name, err)
	}
	if err := os.WriteFile(s.path(c.Name), data, 0o644); err != nil {
		return fmt.Errorf("chain: write %q: %w", c.Name, err)
	}
	return nil
}

func (s *FileStore) Load(name string) (*Chain, error) {
	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrChainNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("chain: read %q: %w", name, err)
	}
	c := &Chain{}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("chain: decode %q: %w", name, err)
	}
	return c, nil
}

func (s *FileStore) Remove(name string) error {
	err := os.Remove(s.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrChainNotFound, name)
	}
	return err
}
