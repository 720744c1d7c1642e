package docstore

import (
	"context"
	"fmt"
	"iter"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps documents in process. Values are normalized the way Firestore returns them
// (integers as int64, arrays as []interface{}), so codecs exercised against it behave the same
// against the real backend.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]interface{}
	watchers    map[string]map[*watcher]struct{}
	now         func() time.Time
}

type watcher struct {
	notify chan struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]map[string]interface{}),
		watchers:    make(map[string]map[*watcher]struct{}),
		now:         time.Now,
	}
}

// SetClock replaces the clock used for ServerTimestamp fields.
func (m *MemoryStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *MemoryStore) Create(ctx context.Context, collection string, data map[string]interface{}) (string, error) {
	if !validCollection(collection) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, collection)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:20]

	m.mu.Lock()
	m.docs(collection)[id] = m.normalizeMap(data)
	m.mu.Unlock()

	m.notify(collection, id)
	return id, nil
}

func (m *MemoryStore) Set(ctx context.Context, collection, id string, data map[string]interface{}) error {
	if err := checkDocPath(collection, id); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	m.docs(collection)[id] = m.normalizeMap(data)
	m.mu.Unlock()

	m.notify(collection, id)
	return nil
}

func (m *MemoryStore) Merge(ctx context.Context, collection, id string, data map[string]interface{}) error {
	if err := checkDocPath(collection, id); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	docs := m.docs(collection)
	existing, ok := docs[id]
	if !ok {
		existing = make(map[string]interface{})
	}
	docs[id] = mergeMaps(existing, m.normalizeMap(data))
	m.mu.Unlock()

	m.notify(collection, id)
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	if err := checkDocPath(collection, id); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := m.snapshot(collection, id)
	if doc == nil {
		return nil, ErrNotFound
	}
	return doc, nil
}

func (m *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	if err := checkDocPath(collection, id); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	delete(m.docs(collection), id)
	m.mu.Unlock()

	m.notify(collection, id)
	return nil
}

func (m *MemoryStore) List(ctx context.Context, collection string, limit int) ([]*Document, error) {
	if !validCollection(collection) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPath, collection)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return m.list(collection, limit), nil
}

func (m *MemoryStore) WatchDocument(ctx context.Context, collection, id string) iter.Seq2[*Document, error] {
	return func(yield func(*Document, error) bool) {
		if err := checkDocPath(collection, id); err != nil {
			yield(nil, err)
			return
		}

		key := Path(collection, id)
		w := m.subscribe(key)
		defer m.unsubscribe(key, w)

		for {
			if !yield(m.snapshot(collection, id), nil) {
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-w.notify:
			}
		}
	}
}

func (m *MemoryStore) WatchCollection(ctx context.Context, collection string) iter.Seq2[[]*Document, error] {
	return func(yield func([]*Document, error) bool) {
		if !validCollection(collection) {
			yield(nil, fmt.Errorf("%w: %q", ErrInvalidPath, collection))
			return
		}

		w := m.subscribe(collection)
		defer m.unsubscribe(collection, w)

		for {
			if !yield(m.list(collection, 0), nil) {
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-w.notify:
			}
		}
	}
}

// docs must be called with m.mu held.
func (m *MemoryStore) docs(collection string) map[string]map[string]interface{} {
	docs, ok := m.collections[collection]
	if !ok {
		docs = make(map[string]map[string]interface{})
		m.collections[collection] = docs
	}
	return docs
}

func (m *MemoryStore) snapshot(collection, id string) *Document {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.collections[collection][id]
	if !ok {
		return nil
	}
	return &Document{ID: id, Data: copyValue(data).(map[string]interface{})}
}

func (m *MemoryStore) list(collection string, limit int) []*Document {
	m.mu.RLock()
	defer m.mu.RUnlock()

	docs := m.collections[collection]
	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}

	out := make([]*Document, 0, len(ids))
	for _, id := range ids {
		out = append(out, &Document{ID: id, Data: copyValue(docs[id]).(map[string]interface{})})
	}
	return out
}

func (m *MemoryStore) subscribe(key string) *watcher {
	w := &watcher{notify: make(chan struct{}, 1)}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.watchers[key] == nil {
		m.watchers[key] = make(map[*watcher]struct{})
	}
	m.watchers[key][w] = struct{}{}
	return w
}

func (m *MemoryStore) unsubscribe(key string, w *watcher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.watchers[key], w)
	if len(m.watchers[key]) == 0 {
		delete(m.watchers, key)
	}
}

func (m *MemoryStore) notify(collection, id string) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, key := range []string{collection, Path(collection, id)} {
		for w := range m.watchers[key] {
			select {
			case w.notify <- struct{}{}:
			default:
			}
		}
	}
}

// normalizeMap must be called with m.mu held.
func (m *MemoryStore) normalizeMap(data map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		out[k] = m.normalize(v)
	}
	return out
}

func (m *MemoryStore) normalize(v interface{}) interface{} {
	switch value := v.(type) {
	case sentinel:
		if value == ServerTimestamp {
			return m.now().UTC()
		}
		return nil
	case int:
		return int64(value)
	case int32:
		return int64(value)
	case float32:
		return float64(value)
	case time.Time:
		return value.UTC()
	case []string:
		out := make([]interface{}, len(value))
		for i, s := range value {
			out[i] = s
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(value))
		for i, item := range value {
			out[i] = m.normalize(item)
		}
		return out
	case map[string]interface{}:
		return m.normalizeMap(value)
	default:
		return v
	}
}

func mergeMaps(dst, src map[string]interface{}) map[string]interface{} {
	for k, v := range src {
		if nested, ok := v.(map[string]interface{}); ok {
			if existing, ok := dst[k].(map[string]interface{}); ok {
				dst[k] = mergeMaps(existing, nested)
				continue
			}
		}
		dst[k] = v
	}
	return dst
}

func copyValue(v interface{}) interface{} {
	switch value := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(value))
		for k, item := range value {
			out[k] = copyValue(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(value))
		for i, item := range value {
			out[i] = copyValue(item)
		}
		return out
	default:
		return v
	}
}

