package remote

import (
	"context"
	"errors"
	"fmt"

	"tabl/internal/identity"
	"tabl/internal/models"
	"tabl/internal/repositories/interfaces"
	"tabl/pkg/docstore"
	"tabl/pkg/logger"
)

type userRepository struct {
	store    docstore.Store
	identity identity.Provider
	logger   *logger.Logger
}

func NewUserRepository(store docstore.Store, ident identity.Provider, log *logger.Logger) interfaces.UserRepository {
	return &userRepository{
		store:    store,
		identity: ident,
		logger:   log.WithField("repository", "users"),
	}
}

// Register records the signed-in user's email and type with a merge write, so favorites and
// any other fields on the user document survive. createdAt is only set the first time.
func (r *userRepository) Register(ctx context.Context, userType models.UserType) (*models.UserProfile, error) {
	principal, err := r.identity.Current(ctx)
	if err != nil {
		return nil, err
	}

	profile := &models.UserProfile{ID: principal.UID, Email: principal.Email, UserType: userType}
	doc := profile.ToDocument()

	existing, err := r.store.Get(ctx, models.UsersCollection, principal.UID)
	switch {
	case err == nil:
		if _, ok := existing.Data["createdAt"]; ok {
			delete(doc, "createdAt")
		}
	case !errors.Is(err, docstore.ErrNotFound):
		return nil, fmt.Errorf("failed to read user %s: %w", principal.UID, err)
	}

	if err := r.store.Merge(ctx, models.UsersCollection, principal.UID, doc); err != nil {
		r.logger.WithContext(ctx).WithUserID(principal.UID).WithError(err).Error("Could not store user type")
		return nil, fmt.Errorf("%w: user %s: %w", interfaces.ErrWriteFailed, principal.UID, err)
	}

	r.logger.LogUserAction(principal.UID, "register", map[string]interface{}{"user_type": string(userType)})
	return r.Get(ctx, principal.UID)
}

func (r *userRepository) Get(ctx context.Context, uid string) (*models.UserProfile, error) {
	if uid == "" {
		return nil, interfaces.ErrNotPersisted
	}

	doc, err := r.store.Get(ctx, models.UsersCollection, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", uid, notFound(err))
	}

	return models.UserProfileFromDocument(doc), nil
}
