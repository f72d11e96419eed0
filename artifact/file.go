package artifact

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore keeps artifacts under a local directory:
// <dir>/<name>/<version>.bson plus a <dir>/<name>/LATEST pointer.
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Put writes data and advances the latest pointer.
func (s *FileStore) Put(_ context.Context, key Key, data []byte) error {
	if key.IsLatest() {
		return InvalidKeyError(key.String())
	}

	path := s.URI(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}
	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("failed to write artifact %s: %w", key, err)
	}

	pointer := filepath.Join(s.dir, filepath.FromSlash(latestName("", key.Name)))
	if err := writeFileAtomic(pointer, []byte(key.Version+"\n")); err != nil {
		return fmt.Errorf("failed to update latest pointer for %s: %w", key.Name, err)
	}
	return nil
}

// Get reads the artifact stored under key.
func (s *FileStore) Get(_ context.Context, key Key) ([]byte, error) {
	if key.IsLatest() {
		return nil, InvalidKeyError(key.String())
	}

	data, err := os.ReadFile(s.URI(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, NotFoundError(key)
		}
		return nil, fmt.Errorf("failed to read artifact %s: %w", key, err)
	}
	return data, nil
}

// Latest reads the latest pointer for name.
func (s *FileStore) Latest(_ context.Context, name string) (Key, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, filepath.FromSlash(latestName("", name))))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Key{}, NotFoundError(Key{Name: name})
		}
		return Key{}, fmt.Errorf("failed to read latest pointer for %s: %w", name, err)
	}
	return Key{Name: name, Version: strings.TrimSpace(string(data))}, nil
}

// URI returns the path of the file holding key.
func (s *FileStore) URI(key Key) string {
	return filepath.Join(s.dir, filepath.FromSlash(objectName("", key)))
}

// Close is a no-op.
func (s *FileStore) Close() error {
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
