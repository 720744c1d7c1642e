package remote

import (
	"context"
	"fmt"
	"iter"

	"tabl/internal/identity"
	"tabl/internal/models"
	"tabl/internal/repositories/interfaces"
	"tabl/internal/validators"
	"tabl/pkg/docstore"
	"tabl/pkg/logger"
)

type reviewRepository struct {
	store    docstore.Store
	identity identity.Provider
	logger   *logger.Logger
}

func NewReviewRepository(store docstore.Store, ident identity.Provider, log *logger.Logger) interfaces.ReviewRepository {
	return &reviewRepository{
		store:    store,
		identity: ident,
		logger:   log.WithField("repository", "reviews"),
	}
}

// Save writes the review under the venue. The reviewer is always the signed-in user at write
// time, whatever the review carried before.
func (r *reviewRepository) Save(ctx context.Context, venue *models.Venue, review *models.Review) (string, error) {
	log := r.logger.WithContext(ctx)

	if !venue.IsPersisted() {
		log.Warn("Tried to save a review for a club with no id")
		return "", interfaces.ErrNotPersisted
	}

	principal, err := r.identity.Current(ctx)
	if err != nil {
		return "", err
	}

	if errs := validators.ValidateReview(review); len(errs) > 0 {
		return "", errs
	}

	stamped := *review
	stamped.Reviewer = principal.Email
	collection := models.ReviewsCollection(venue.ID)
	log = log.WithClubID(venue.ID).WithUserID(principal.UID)

	if review.ID != "" {
		if err := r.store.Set(ctx, collection, review.ID, stamped.ToDocument()); err != nil {
			log.WithField("review_id", review.ID).WithError(err).Error("Could not update review")
			return "", fmt.Errorf("%w: update review %s: %w", interfaces.ErrWriteFailed, review.ID, err)
		}
		review.Reviewer = stamped.Reviewer
		return review.ID, nil
	}

	id, err := r.store.Create(ctx, collection, stamped.ToDocument())
	if err != nil {
		log.WithError(err).Error("Could not create review")
		return "", fmt.Errorf("%w: create review: %w", interfaces.ErrWriteFailed, err)
	}

	review.ID = id
	review.Reviewer = stamped.Reviewer
	log.WithField("review_id", id).Info("Review created")
	return id, nil
}

func (r *reviewRepository) Get(ctx context.Context, venue *models.Venue, id string) (*models.Review, error) {
	if !venue.IsPersisted() || id == "" {
		return nil, interfaces.ErrNotPersisted
	}

	doc, err := r.store.Get(ctx, models.ReviewsCollection(venue.ID), id)
	if err != nil {
		return nil, fmt.Errorf("failed to get review %s: %w", id, notFound(err))
	}

	return models.ReviewFromDocument(doc), nil
}

func (r *reviewRepository) List(ctx context.Context, venue *models.Venue) ([]*models.Review, error) {
	if !venue.IsPersisted() {
		return nil, interfaces.ErrNotPersisted
	}

	docs, err := r.store.List(ctx, models.ReviewsCollection(venue.ID), 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews of club %s: %w", venue.ID, err)
	}

	return decodeAll(docs, models.ReviewFromDocument), nil
}

func (r *reviewRepository) Delete(ctx context.Context, venue *models.Venue, review *models.Review) error {
	log := r.logger.WithContext(ctx)

	if !venue.IsPersisted() || review.ID == "" {
		log.Warn("Tried to delete a review with no id")
		return interfaces.ErrNotPersisted
	}

	if err := r.store.Delete(ctx, models.ReviewsCollection(venue.ID), review.ID); err != nil {
		log.WithClubID(venue.ID).WithField("review_id", review.ID).WithError(err).Error("Could not delete review")
		return fmt.Errorf("%w: delete review %s: %w", interfaces.ErrWriteFailed, review.ID, err)
	}

	return nil
}

// AverageRating recomputes the mean from the current reviews on every call.
func (r *reviewRepository) AverageRating(ctx context.Context, venue *models.Venue) (models.AverageRating, error) {
	reviews, err := r.List(ctx, venue)
	if err != nil {
		return models.AverageRating{}, err
	}
	return ComputeAverageRating(reviews), nil
}

func (r *reviewRepository) Watch(ctx context.Context, venue *models.Venue) iter.Seq2[[]*models.Review, error] {
	if !venue.IsPersisted() {
		return func(yield func([]*models.Review, error) bool) {
			yield(nil, interfaces.ErrNotPersisted)
		}
	}
	return watchAll(r.store.WatchCollection(ctx, models.ReviewsCollection(venue.ID)), models.ReviewFromDocument)
}

// ComputeAverageRating returns the arithmetic mean of the ratings rounded half up to one
// decimal. An empty slice gives an empty AverageRating, which renders as "N/A".
func ComputeAverageRating(reviews []*models.Review) models.AverageRating {
	if len(reviews) == 0 {
		return models.AverageRating{}
	}

	var sum int64
	for _, review := range reviews {
		sum += int64(review.Rating)
	}

	// floor(sum*10/n + 1/2) in integers: floor((20*sum + n) / 2n)
	n := int64(len(reviews))
	num, den := 20*sum+n, 2*n
	tenths := num / den
	if num%den != 0 && num < 0 {
		tenths--
	}

	return models.AverageRating{Count: len(reviews), Tenths: int(tenths)}
}
