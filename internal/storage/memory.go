package storage

import (
	"context"
	"io"
	"sync"
)

// MemoryUploader keeps uploaded files in memory.
type MemoryUploader struct {
	mu    sync.Mutex
	files map[string][]byte
}

func NewMemoryUploader() *MemoryUploader {
	return &MemoryUploader{
		files: make(map[string][]byte),
	}
}

func (m *MemoryUploader) Upload(ctx context.Context, key string, f File) (string, error) {
	data, err := io.ReadAll(f.Body)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.files[key] = data

	return "memory://" + key, nil
}

func (m *MemoryUploader) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.files, key)

	return nil
}

// File returns the contents stored under key.
func (m *MemoryUploader) File(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.files[key]
	return data, ok
}

// Len returns the number of stored files.
func (m *MemoryUploader) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.files)
}
