package remote

import (
	"context"
	"fmt"
	"iter"

	"tabl/internal/models"
	"tabl/internal/repositories/interfaces"
	"tabl/internal/validators"
	"tabl/pkg/docstore"
	"tabl/pkg/logger"
)

type venueRepository struct {
	store  docstore.Store
	logger *logger.Logger
}

func NewVenueRepository(store docstore.Store, log *logger.Logger) interfaces.VenueRepository {
	return &venueRepository{
		store:  store,
		logger: log.WithField("repository", "clubs"),
	}
}

func (r *venueRepository) Save(ctx context.Context, venue *models.Venue) (string, error) {
	if errs := validators.ValidateVenue(venue); len(errs) > 0 {
		return "", errs
	}

	log := r.logger.WithContext(ctx)

	if venue.IsPersisted() {
		if err := r.store.Set(ctx, models.ClubsCollection, venue.ID, venue.ToDocument()); err != nil {
			log.WithClubID(venue.ID).WithError(err).Error("Could not update club")
			return "", fmt.Errorf("%w: update club %s: %w", interfaces.ErrWriteFailed, venue.ID, err)
		}
		log.WithClubID(venue.ID).Debug("Club updated")
		return venue.ID, nil
	}

	id, err := r.store.Create(ctx, models.ClubsCollection, venue.ToDocument())
	if err != nil {
		log.WithError(err).Error("Could not create club")
		return "", fmt.Errorf("%w: create club: %w", interfaces.ErrWriteFailed, err)
	}

	venue.ID = id
	log.WithClubID(id).Info("Club created")
	return id, nil
}

func (r *venueRepository) Get(ctx context.Context, id string) (*models.Venue, error) {
	if id == "" {
		return nil, interfaces.ErrNotPersisted
	}

	doc, err := r.store.Get(ctx, models.ClubsCollection, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get club %s: %w", id, notFound(err))
	}

	return models.VenueFromDocument(doc), nil
}

func (r *venueRepository) List(ctx context.Context, limit int) ([]*models.Venue, error) {
	docs, err := r.store.List(ctx, models.ClubsCollection, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list clubs: %w", err)
	}

	return decodeAll(docs, models.VenueFromDocument), nil
}

// Delete never reaches the store for a venue that was not saved.
func (r *venueRepository) Delete(ctx context.Context, venue *models.Venue) error {
	log := r.logger.WithContext(ctx)

	if !venue.IsPersisted() {
		log.Warn("Tried to delete a club with no id")
		return interfaces.ErrNotPersisted
	}

	if err := r.store.Delete(ctx, models.ClubsCollection, venue.ID); err != nil {
		log.WithClubID(venue.ID).WithError(err).Error("Could not delete club")
		return fmt.Errorf("%w: delete club %s: %w", interfaces.ErrWriteFailed, venue.ID, err)
	}

	log.WithClubID(venue.ID).Info("Club deleted")
	return nil
}

func (r *venueRepository) Watch(ctx context.Context) iter.Seq2[[]*models.Venue, error] {
	return watchAll(r.store.WatchCollection(ctx, models.ClubsCollection), models.VenueFromDocument)
}
