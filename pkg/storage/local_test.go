package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageUploadAndResolve(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewLocalStorage(dir, "http://localhost:8080/uploads/")
	require.NoError(t, err)

	resp, err := store.Upload(ctx, &UploadRequest{
		Key:         "club1/photo1",
		Reader:      strings.NewReader("jpeg-bytes"),
		ContentType: "image/jpeg",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), resp.Size)

	data, err := os.ReadFile(filepath.Join(dir, "club1", "photo1"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))

	url, err := store.GetURL(ctx, "club1/photo1", 0)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/uploads/club1/photo1", url)
}

func TestLocalStorageMissingObject(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), "http://localhost")
	require.NoError(t, err)

	_, err = store.GetURL(context.Background(), "club1/none", 0)
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestLocalStorageRejectsEscapingKeys(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), "http://localhost")
	require.NoError(t, err)

	_, err = store.Upload(context.Background(), &UploadRequest{Key: "../outside", Reader: strings.NewReader("x")})
	assert.Error(t, err)
}

func TestMemoryStorage(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage("mem://blobs/")

	_, err := store.GetURL(ctx, "a/b", 0)
	assert.ErrorIs(t, err, ErrObjectNotFound)

	_, err = store.Upload(ctx, &UploadRequest{Key: "a/b", Reader: strings.NewReader("xyz"), ContentType: "image/jpeg"})
	require.NoError(t, err)

	url, err := store.GetURL(ctx, "a/b", 0)
	require.NoError(t, err)
	assert.Equal(t, "mem://blobs/a/b", url)

	data, contentType, ok := store.Object("a/b")
	require.True(t, ok)
	assert.Equal(t, "xyz", string(data))
	assert.Equal(t, "image/jpeg", contentType)
}
