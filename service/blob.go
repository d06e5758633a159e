package service

import (
	"os"
	"path/filepath"
)

// Blob keys. Each collection is read and written as a whole blob so a
// failed write never leaves cross-references half-updated.
const (
	blobUsers   = "users"
	blobChats   = "chats"
	blobCurrent = "currentUser"
)

// BlobStore is the durability port: get/set/delete of named blobs. It
// provides no integrity guarantees of its own; the service layers all
// consistency on top.
type BlobStore interface {
	// Get returns the blob and true, or nil and false when the key is absent.
	Get(key string) ([]byte, bool, error)
	Set(key string, data []byte) error
	Delete(key string) error
}

// FileStore keeps each blob as a JSON file in a directory.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *FileStore) Get(key string) ([]byte, bool, error) {
	if _, err := os.Stat(s.path(key)); os.IsNotExist(err) {
		return nil, false, nil
	}
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (s *FileStore) Set(key string, data []byte) error {
	return os.WriteFile(s.path(key), data, 0644)
}

func (s *FileStore) Delete(key string) error {
	err := os.Remove(s.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// MemStore is an in-memory BlobStore for tests and throwaway sessions.
type MemStore struct {
	blobs map[string][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{blobs: make(map[string][]byte)}
}

func (s *MemStore) Get(key string) ([]byte, bool, error) {
	data, ok := s.blobs[key]
	return data, ok, nil
}

func (s *MemStore) Set(key string, data []byte) error {
	s.blobs[key] = data
	return nil
}

func (s *MemStore) Delete(key string) error {
	delete(s.blobs, key)
	return nil
}
