package remote

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabl/internal/models"
	"tabl/internal/repositories/interfaces"
)

func TestPhotoUploadLinksBlobAndDocument(t *testing.T) {
	ctx := context.Background()
	store := newCountingStore()
	blobs := newFlakyStorage()
	venue := savedVenue(t, store)
	repo := NewPhotoRepository(store, blobs, alice, time.Hour, testLogger())

	photo := models.NewPhoto("dance floor")
	require.NoError(t, repo.Upload(ctx, venue, photo, []byte{0xff, 0xd8, 0xff}))

	require.NotEmpty(t, photo.ID)
	assert.Equal(t, "https://blobs.test/"+venue.ID+"/"+photo.ID, photo.ImageURL)
	assert.Equal(t, "alice@tabl.app", photo.Reviewer)

	data, contentType, ok := blobs.Object(models.BlobKey(venue.ID, photo.ID))
	require.True(t, ok)
	assert.Equal(t, []byte{0xff, 0xd8, 0xff}, data)
	assert.Equal(t, models.PhotoContentType, contentType)

	photos, err := repo.List(ctx, venue, 10)
	require.NoError(t, err)
	require.Len(t, photos, 1)
	assert.Equal(t, photo.ID, photos[0].ID)
	assert.Equal(t, photo.ImageURL, photos[0].ImageURL)
	assert.Equal(t, "dance floor", photos[0].Description)
}

func TestPhotoUploadKeepsExistingID(t *testing.T) {
	store := newCountingStore()
	blobs := newFlakyStorage()
	venue := savedVenue(t, store)
	repo := NewPhotoRepository(store, blobs, alice, time.Hour, testLogger())

	photo := &models.Photo{ID: "p-1", PostedOn: time.Now()}
	require.NoError(t, repo.Upload(context.Background(), venue, photo, []byte("jpeg")))
	assert.Equal(t, "p-1", photo.ID)

	_, _, ok := blobs.Object(venue.ID + "/p-1")
	assert.True(t, ok)
}

func TestPhotoUploadURLFailureLeavesOrphanBlob(t *testing.T) {
	for name, blobs := range map[string]*flakyStorage{
		"error": {MemoryStorage: newFlakyStorage().MemoryStorage, urlErr: errors.New("forbidden")},
		"empty": {MemoryStorage: newFlakyStorage().MemoryStorage, noURL: true},
	} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := newCountingStore()
			venue := savedVenue(t, store)
			repo := NewPhotoRepository(store, blobs, alice, time.Hour, testLogger())

			photo := models.NewPhoto("")
			err := repo.Upload(ctx, venue, photo, []byte("jpeg"))
			assert.ErrorIs(t, err, interfaces.ErrURLResolution)

			assert.Equal(t, 1, blobs.Len())
			photos, err := repo.List(ctx, venue, 0)
			require.NoError(t, err)
			assert.Empty(t, photos)
		})
	}
}

func TestPhotoUploadRequiresSavedVenue(t *testing.T) {
	store := newCountingStore()
	blobs := newFlakyStorage()
	repo := NewPhotoRepository(store, blobs, alice, time.Hour, testLogger())

	err := repo.Upload(context.Background(), &models.Venue{Name: "Draft"}, models.NewPhoto(""), []byte("jpeg"))
	assert.ErrorIs(t, err, interfaces.ErrNotPersisted)
	assert.Zero(t, blobs.uploads)
	assert.Zero(t, store.count())
}

func TestPhotoUploadBlobFailureWritesNothing(t *testing.T) {
	ctx := context.Background()
	store := newCountingStore()
	venue := savedVenue(t, store)
	blobs := newFlakyStorage()
	blobs.uploadErr = errors.New("bucket unavailable")
	repo := NewPhotoRepository(store, blobs, alice, time.Hour, testLogger())
	before := store.count()

	err := repo.Upload(ctx, venue, models.NewPhoto("dance floor"), []byte("jpeg"))
	assert.ErrorIs(t, err, interfaces.ErrBlobUpload)
	assert.NotErrorIs(t, err, interfaces.ErrURLResolution)

	assert.Equal(t, 1, blobs.uploads)
	assert.Zero(t, blobs.Len())
	assert.Equal(t, before, store.count())
}

func TestPhotoUploadDocumentFailureOrphansBlob(t *testing.T) {
	ctx := context.Background()
	store := newCountingStore()
	venue := savedVenue(t, store)
	blobs := newFlakyStorage()
	repo := NewPhotoRepository(store, blobs, alice, time.Hour, testLogger())

	store.mu.Lock()
	store.failWrite = errors.New("deadline exceeded")
	store.mu.Unlock()

	photo := models.NewPhoto("dance floor")
	err := repo.Upload(ctx, venue, photo, []byte("jpeg"))
	assert.ErrorIs(t, err, interfaces.ErrWriteFailed)

	_, _, ok := blobs.Object(models.BlobKey(venue.ID, photo.ID))
	assert.True(t, ok)

	photos, err := repo.List(ctx, venue, 0)
	require.NoError(t, err)
	assert.Empty(t, photos)
}
