package remote

import (
	"context"
	"io"
	"sync"
	"time"

	"tabl/internal/identity"
	"tabl/pkg/docstore"
	"tabl/pkg/logger"
	"tabl/pkg/storage"
)

// countingStore counts every request that would reach the backend and can fail writes on demand.
type countingStore struct {
	docstore.Store

	mu        sync.Mutex
	calls     int
	failWrite error
}

func newCountingStore() *countingStore {
	return &countingStore{Store: docstore.NewMemoryStore()}
}

func (s *countingStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *countingStore) hit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.failWrite
}

func (s *countingStore) Create(ctx context.Context, collection string, data map[string]interface{}) (string, error) {
	if err := s.hit(); err != nil {
		return "", err
	}
	return s.Store.Create(ctx, collection, data)
}

func (s *countingStore) Set(ctx context.Context, collection, id string, data map[string]interface{}) error {
	if err := s.hit(); err != nil {
		return err
	}
	return s.Store.Set(ctx, collection, id, data)
}

func (s *countingStore) Merge(ctx context.Context, collection, id string, data map[string]interface{}) error {
	if err := s.hit(); err != nil {
		return err
	}
	return s.Store.Merge(ctx, collection, id, data)
}

func (s *countingStore) Delete(ctx context.Context, collection, id string) error {
	if err := s.hit(); err != nil {
		return err
	}
	return s.Store.Delete(ctx, collection, id)
}

func (s *countingStore) Get(ctx context.Context, collection, id string) (*docstore.Document, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.Store.Get(ctx, collection, id)
}

func (s *countingStore) List(ctx context.Context, collection string, limit int) ([]*docstore.Document, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.Store.List(ctx, collection, limit)
}

// flakyStorage wraps the in-memory blob store with injectable upload and URL failures.
type flakyStorage struct {
	*storage.MemoryStorage
	uploads   int
	uploadErr error
	urlErr    error
	noURL     bool
}

func newFlakyStorage() *flakyStorage {
	return &flakyStorage{MemoryStorage: storage.NewMemoryStorage("https://blobs.test")}
}

func (f *flakyStorage) Upload(ctx context.Context, request *storage.UploadRequest) (*storage.UploadResponse, error) {
	f.uploads++
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return f.MemoryStorage.Upload(ctx, request)
}

func (f *flakyStorage) GetURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	if f.urlErr != nil {
		return "", f.urlErr
	}
	if f.noURL {
		return "", nil
	}
	return f.MemoryStorage.GetURL(ctx, key, expiration)
}

var alice = identity.StaticProvider{Principal: &identity.Principal{UID: "u-alice", Email: "alice@tabl.app"}}

func testLogger() *logger.Logger {
	return logger.New(io.Discard, logger.DebugLevel)
}
