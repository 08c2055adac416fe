// Package storage provides the narrow blob-store contract the save codec
// persists through, with a compressed on-disk implementation and an
// in-memory one for tests.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// ErrNotFound means no blob exists under the key.
var ErrNotFound = errors.New("storage: key not found")

// Store is the persistence contract. Implementations catch their own
// I/O failures and surface them as errors here; the engine core never
// sees raw storage exceptions.
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, data []byte) error
	Remove(key string) error
	Exists(key string) bool
}

// FileStore keeps each key as a zstd-compressed file under a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) path(key string) string {
	return filepath.Join(f.dir, key+".zst")
}

func (f *FileStore) Get(key string) ([]byte, error) {
	raw, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	data, err := dec.DecodeAll(raw, nil)
	if err != nil {
		return nil, fmt.Errorf("decompressing %s: %w", key, err)
	}
	return data, nil
}

// Set writes atomically: compress to a temp file, then rename over the
// final path, so a crash mid-write never corrupts the previous blob.
func (f *FileStore) Set(key string, data []byte) error {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return err
	}
	compressed := enc.EncodeAll(data, nil)
	if err := enc.Close(); err != nil {
		return err
	}

	tmp := f.path(key) + ".tmp"
	if err := os.WriteFile(tmp, compressed, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	if err := os.Rename(tmp, f.path(key)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("committing %s: %w", key, err)
	}
	return nil
}

func (f *FileStore) Remove(key string) error {
	err := os.Remove(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (f *FileStore) Exists(key string) bool {
	_, err := os.Stat(f.path(key))
	return err == nil
}

// MemStore is an in-memory Store for tests.
type MemStore struct {
	blobs map[string][]byte
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{blobs: map[string][]byte{}}
}

func (m *MemStore) Get(key string) ([]byte, error) {
	data, ok := m.blobs[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *MemStore) Set(key string, data []byte) error {
	stored := make([]byte, len(data))
	copy(stored, data)
	m.blobs[key] = stored
	return nil
}

func (m *MemStore) Remove(key string) error {
	delete(m.blobs, key)
	return nil
}

func (m *MemStore) Exists(key string) bool {
	_, ok := m.blobs[key]
	return ok
}
