package interfaces

import (
	"context"
	"iter"

	"tabl/internal/models"
)

type VenueRepository interface {
	// Save creates the venue when it has no ID (assigning the new one) and overwrites it otherwise.
	Save(ctx context.Context, venue *models.Venue) (string, error)
	Get(ctx context.Context, id string) (*models.Venue, error)
	// List returns at most limit venues; zero means all.
	List(ctx context.Context, limit int) ([]*models.Venue, error)
	Delete(ctx context.Context, venue *models.Venue) error
	Watch(ctx context.Context) iter.Seq2[[]*models.Venue, error]
}

type ReviewRepository interface {
	Save(ctx context.Context, venue *models.Venue, review *models.Review) (string, error)
	Get(ctx context.Context, venue *models.Venue, id string) (*models.Review, error)
	// List order is unspecified.
	List(ctx context.Context, venue *models.Venue) ([]*models.Review, error)
	Delete(ctx context.Context, venue *models.Venue, review *models.Review) error
	AverageRating(ctx context.Context, venue *models.Venue) (models.AverageRating, error)
	Watch(ctx context.Context, venue *models.Venue) iter.Seq2[[]*models.Review, error]
}

type PhotoRepository interface {
	Upload(ctx context.Context, venue *models.Venue, photo *models.Photo, data []byte) error
	List(ctx context.Context, venue *models.Venue, limit int) ([]*models.Photo, error)
}

type UserRepository interface {
	Register(ctx context.Context, userType models.UserType) (*models.UserProfile, error)
	Get(ctx context.Context, uid string) (*models.UserProfile, error)
}
