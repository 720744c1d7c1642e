package docstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreCreateAssignsID(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	id, err := store.Create(ctx, "clubs", map[string]interface{}{"name": "Bijou", "rating": 4})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	doc, err := store.Get(ctx, "clubs", id)
	require.NoError(t, err)
	assert.Equal(t, id, doc.ID)
	assert.Equal(t, "Bijou", doc.Data["name"])
	assert.Equal(t, int64(4), doc.Data["rating"])
}

func TestMemoryStoreGetMissing(t *testing.T) {
	_, err := NewMemoryStore().Get(context.Background(), "clubs", "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreRejectsDocumentPathAsCollection(t *testing.T) {
	_, err := NewMemoryStore().Create(context.Background(), "clubs/abc", map[string]interface{}{})
	assert.ErrorIs(t, err, ErrInvalidPath)

	err = NewMemoryStore().Set(context.Background(), "clubs", "", map[string]interface{}{})
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestMemoryStoreMergeKeepsOtherFields(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Set(ctx, "users", "u1", map[string]interface{}{
		"email":   "a@b.c",
		"profile": map[string]interface{}{"theme": "dark"},
	}))
	require.NoError(t, store.Merge(ctx, "users", "u1", map[string]interface{}{
		"favoriteClubs": []string{"v1"},
		"profile":       map[string]interface{}{"lang": "en"},
	}))

	doc, err := store.Get(ctx, "users", "u1")
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", doc.Data["email"])
	assert.Equal(t, []interface{}{"v1"}, doc.Data["favoriteClubs"])
	assert.Equal(t, map[string]interface{}{"theme": "dark", "lang": "en"}, doc.Data["profile"])
}

func TestMemoryStoreServerTimestamp(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	fixed := time.Date(2025, 12, 4, 22, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return fixed })

	id, err := store.Create(ctx, Path("clubs", "c1", "reviews"), map[string]interface{}{"postedOn": ServerTimestamp})
	require.NoError(t, err)

	doc, err := store.Get(ctx, "clubs/c1/reviews", id)
	require.NoError(t, err)
	assert.Equal(t, fixed, doc.Data["postedOn"])
}

func TestMemoryStoreListLimit(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, store.Set(ctx, "clubs", id, map[string]interface{}{}))
	}

	docs, err := store.List(ctx, "clubs", 0)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "a", docs[0].ID)

	docs, err = store.List(ctx, "clubs", 1)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestMemoryStoreReturnedDataIsACopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Set(ctx, "clubs", "c1", map[string]interface{}{"name": "Bijou"}))

	doc, err := store.Get(ctx, "clubs", "c1")
	require.NoError(t, err)
	doc.Data["name"] = "changed"

	doc, err = store.Get(ctx, "clubs", "c1")
	require.NoError(t, err)
	assert.Equal(t, "Bijou", doc.Data["name"])
}

func TestMemoryStoreWatchDocument(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	store := NewMemoryStore()

	snapshots := make(chan *Document, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for doc, err := range store.WatchDocument(ctx, "users", "u1") {
			if err != nil {
				return
			}
			snapshots <- doc
			if doc != nil && doc.Data["n"] == int64(2) {
				return
			}
		}
	}()

	assert.Nil(t, <-snapshots, "missing document is delivered as nil")

	require.NoError(t, store.Set(ctx, "users", "u1", map[string]interface{}{"n": 1}))
	require.NoError(t, store.Set(ctx, "users", "u1", map[string]interface{}{"n": 2}))

	var last *Document
	for last == nil || last.Data["n"] != int64(2) {
		select {
		case last = <-snapshots:
		case <-ctx.Done():
			t.Fatal("no snapshot with n=2")
		}
	}

	<-done
	store.mu.RLock()
	assert.Empty(t, store.watchers, "breaking the loop unsubscribes")
	store.mu.RUnlock()
}

func TestMemoryStoreWatchCollectionStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := NewMemoryStore()

	first := make(chan int, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for docs, err := range store.WatchCollection(ctx, "clubs") {
			if err != nil {
				return
			}
			select {
			case first <- len(docs):
			default:
			}
		}
	}()

	assert.Equal(t, 0, <-first)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}
