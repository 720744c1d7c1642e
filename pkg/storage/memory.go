package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

type memoryObject struct {
	data        []byte
	contentType string
	metadata    map[string]string
}

// MemoryStorage holds objects in process; URLs point at baseURL.
type MemoryStorage struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]*memoryObject
}

func NewMemoryStorage(baseURL string) *MemoryStorage {
	return &MemoryStorage{
		baseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string]*memoryObject),
	}
}

func (m *MemoryStorage) Upload(ctx context.Context, request *UploadRequest) (*UploadResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	size, err := io.Copy(&buf, request.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	metadata := make(map[string]string, len(request.Metadata))
	for k, v := range request.Metadata {
		metadata[k] = v
	}

	m.mu.Lock()
	m.objects[request.Key] = &memoryObject{
		data:        buf.Bytes(),
		contentType: request.ContentType,
		metadata:    metadata,
	}
	m.mu.Unlock()

	return &UploadResponse{Key: request.Key, Size: size}, nil
}

func (m *MemoryStorage) GetURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	m.mu.RLock()
	_, ok := m.objects[key]
	m.mu.RUnlock()

	if !ok {
		return "", fmt.Errorf("%w: %s", ErrObjectNotFound, key)
	}
	return m.baseURL + "/" + key, nil
}

// Object returns the stored bytes and content type of key.
func (m *MemoryStorage) Object(key string) ([]byte, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[key]
	if !ok {
		return nil, "", false
	}
	return obj.data, obj.contentType, true
}

func (m *MemoryStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
