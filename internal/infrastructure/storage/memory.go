package storage

import (
	"context"
	"errors"
	"sync"

	harvestapp "github.com/pentol/backend/internal/application/harvest"
)

var _ harvestapp.PhotoStorage = (*MemoryObjectStorage)(nil)

// MemoryObject is a stored payload
type MemoryObject struct {
	Data        []byte
	ContentType string
}

// MemoryObjectStorage keeps uploads in process memory. Development servers
// without object storage use it for harvest photos.
type MemoryObjectStorage struct {
	mu      sync.RWMutex
	objects map[string]MemoryObject
}

// NewMemoryObjectStorage creates an empty MemoryObjectStorage
func NewMemoryObjectStorage() *MemoryObjectStorage {
	return &MemoryObjectStorage{objects: make(map[string]MemoryObject)}
}

// Upload stores a copy of data under storageKey
func (s *MemoryObjectStorage) Upload(_ context.Context, storageKey string, data []byte, contentType string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}
	buf := make([]byte, len(data))
	copy(buf, data)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[storageKey] = MemoryObject{Data: buf, ContentType: contentType}
	return nil
}

// Get returns the object stored under storageKey
func (s *MemoryObjectStorage) Get(storageKey string) (MemoryObject, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[storageKey]
	return obj, ok
}

// Len returns the number of stored objects
func (s *MemoryObjectStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
