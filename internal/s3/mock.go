package s3

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// MockStore keeps uploaded objects in memory. Used by tests and by local runs
// without S3 credentials.
type MockStore struct {
	files map[string][]byte
	mu    sync.RWMutex
}

func NewMockStore() *MockStore {
	return &MockStore{files: make(map[string][]byte)}
}

func (m *MockStore) UploadFile(ctx context.Context, file io.Reader, objectKey, contentType string) (string, error) {
	content, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	m.mu.Lock()
	m.files[objectKey] = content
	m.mu.Unlock()
	return "https://mock-bucket.local/" + objectKey, nil
}

func (m *MockStore) PresignedURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	m.mu.RLock()
	_, ok := m.files[objectKey]
	m.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("file not found in mock store: %s", objectKey)
	}
	return fmt.Sprintf("https://mock-bucket.local/%s?expires=%d", objectKey, int(expires.Seconds())), nil
}

func (m *MockStore) DeleteFile(ctx context.Context, objectKey string) error {
	m.mu.Lock()
	delete(m.files, objectKey)
	m.mu.Unlock()
	return nil
}

// Object returns a stored object's bytes.
func (m *MockStore) Object(objectKey string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	content, ok := m.files[objectKey]
	return content, ok
}
