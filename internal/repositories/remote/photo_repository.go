package remote

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tabl/internal/identity"
	"tabl/internal/models"
	"tabl/internal/repositories/interfaces"
	"tabl/internal/validators"
	"tabl/pkg/docstore"
	"tabl/pkg/logger"
	"tabl/pkg/storage"
)

type photoRepository struct {
	store     docstore.Store
	blobs     storage.StorageProvider
	identity  identity.Provider
	urlExpiry time.Duration
	logger    *logger.Logger
}

func NewPhotoRepository(store docstore.Store, blobs storage.StorageProvider, ident identity.Provider, urlExpiry time.Duration, log *logger.Logger) interfaces.PhotoRepository {
	return &photoRepository{
		store:     store,
		blobs:     blobs,
		identity:  ident,
		urlExpiry: urlExpiry,
		logger:    log.WithField("repository", "photos"),
	}
}

// Upload stores data in the blob store at {clubID}/{photoID}, resolves its download URL and
// then links it to the venue with a photo document under the same id. A failure after the
// blob is stored leaves the blob without a document; nothing is rolled back.
func (r *photoRepository) Upload(ctx context.Context, venue *models.Venue, photo *models.Photo, data []byte) error {
	log := r.logger.WithContext(ctx)

	if !venue.IsPersisted() {
		log.Error("Photo upload called without a saved club")
		return interfaces.ErrNotPersisted
	}

	if photo.ID == "" {
		photo.ID = uuid.NewString()
	}
	log = log.WithClubID(venue.ID).WithField("photo_id", photo.ID)

	principal, err := r.identity.Current(ctx)
	if err != nil {
		return err
	}

	if errs := validators.ValidatePhoto(photo); len(errs) > 0 {
		return errs
	}

	key := models.BlobKey(venue.ID, photo.ID)
	_, err = r.blobs.Upload(ctx, &storage.UploadRequest{
		Key:         key,
		Reader:      bytes.NewReader(data),
		ContentType: models.PhotoContentType,
		Size:        int64(len(data)),
	})
	if err != nil {
		log.WithError(err).Error("Could not save photo to storage")
		return fmt.Errorf("%w: %s: %w", interfaces.ErrBlobUpload, key, err)
	}

	url, err := r.blobs.GetURL(ctx, key, r.urlExpiry)
	if err == nil && url == "" {
		err = fmt.Errorf("empty URL for %s", key)
	}
	if err != nil {
		log.WithError(err).Error("Could not get download URL, blob left without a photo document")
		return fmt.Errorf("%w: %s: %w", interfaces.ErrURLResolution, key, err)
	}

	photo.ImageURL = url
	photo.Reviewer = principal.Email

	if err := r.store.Set(ctx, models.PhotosCollection(venue.ID), photo.ID, photo.ToDocument()); err != nil {
		log.WithError(err).Error("Could not write photo document")
		return fmt.Errorf("%w: photo %s: %w", interfaces.ErrWriteFailed, photo.ID, err)
	}

	log.WithUserID(principal.UID).Info("Photo uploaded")
	return nil
}

func (r *photoRepository) List(ctx context.Context, venue *models.Venue, limit int) ([]*models.Photo, error) {
	if !venue.IsPersisted() {
		return nil, interfaces.ErrNotPersisted
	}

	docs, err := r.store.List(ctx, models.PhotosCollection(venue.ID), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos of club %s: %w", venue.ID, err)
	}

	return decodeAll(docs, models.PhotoFromDocument), nil
}
