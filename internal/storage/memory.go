package storage

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/MarcosNahuel/aps-preliquidacion-app/pkg/errors"
)

type object struct {
	data        []byte
	contentType string
}

// MemoryStorage keeps objects in process. Used for local runs and tests.
type MemoryStorage struct {
	mu      sync.RWMutex
	objects map[string]object
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{objects: make(map[string]object)}
}

func (m *MemoryStorage) Download(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[key]
	if !ok {
		return nil, errors.ErrFileNotFound
	}
	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

func (m *MemoryStorage) Upload(_ context.Context, key string, data io.Reader, contentType string) error {
	body, err := io.ReadAll(data)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = object{data: body, contentType: contentType}
	return nil
}

func (m *MemoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *MemoryStorage) Exists(_ context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[key]
	return ok, nil
}

// ContentType returns the content type stored with key.
func (m *MemoryStorage) ContentType(key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.objects[key].contentType
}
