// Package favorites keeps the signed-in user's favorite clubs in memory, mirrored from the
// users/{uid} document through a live subscription.
package favorites

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"tabl/internal/identity"
	"tabl/internal/models"
	"tabl/internal/repositories/interfaces"
	"tabl/pkg/docstore"
	"tabl/pkg/logger"
)

var ErrSubscriptionClosed = errors.New("favorites subscription closed")

// Store is scoped to one session. Load must succeed before the set reflects the backend; a
// store whose Load failed is discarded.
type Store struct {
	docs     docstore.Store
	identity identity.Provider
	logger   *logger.Logger

	// writeMu orders toggles so merge writes reach the backend in flip order.
	writeMu sync.Mutex

	mu      sync.RWMutex
	uid     string
	ids     []string
	err     error
	changes chan []string
	done    chan struct{}
}

func NewStore(docs docstore.Store, ident identity.Provider, log *logger.Logger) *Store {
	return &Store{
		docs:     docs,
		identity: ident,
		logger:   log.WithField("component", "favorites"),
		changes:  make(chan []string, 1),
		done:     make(chan struct{}),
	}
}

// Load subscribes to the user's document and returns once the first snapshot has been applied.
// The subscription keeps replacing the set until ctx ends.
func (s *Store) Load(ctx context.Context) error {
	principal, err := s.identity.Current(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.uid != "" {
		s.mu.Unlock()
		return fmt.Errorf("favorites already loaded for %s", s.uid)
	}
	s.uid = principal.UID
	s.mu.Unlock()

	ready := make(chan error, 1)
	go s.listen(ctx, principal.UID, ready)

	select {
	case err := <-ready:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) listen(ctx context.Context, uid string, ready chan<- error) {
	log := s.logger.WithUserID(uid)
	first := true
	exit := ErrSubscriptionClosed

	defer func() {
		if first {
			ready <- exit
		}
		s.mu.Lock()
		s.err = exit
		s.mu.Unlock()
		close(s.done)
	}()

	for doc, err := range s.docs.WatchDocument(ctx, models.UsersCollection, uid) {
		if err != nil {
			log.WithError(err).Error("Favorites subscription failed")
			exit = err
			return
		}

		s.apply(models.FavoritesFromDocument(doc))
		if first {
			first = false
			ready <- nil
		}
	}

	if ctx.Err() != nil {
		exit = ctx.Err()
	}
	log.Debug("Favorites subscription closed")
}

func (s *Store) apply(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ids = unique(ids)
	s.publish()
}

func unique(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

// publish must be called with s.mu held. Only the latest set is kept for slow readers.
func (s *Store) publish() {
	ids := slices.Clone(s.ids)
	select {
	case <-s.changes:
	default:
	}
	s.changes <- ids
}

// Toggle flips venueID locally, then merge-writes the whole set. A failed write is logged and
// returned; the local flip stays until the next snapshot replaces it.
func (s *Store) Toggle(ctx context.Context, venueID string) (bool, error) {
	if venueID == "" {
		return false, interfaces.ErrNotPersisted
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	uid := s.uid
	if uid == "" {
		s.mu.Unlock()
		return false, identity.ErrNotAuthenticated
	}

	favorite := !slices.Contains(s.ids, venueID)
	if favorite {
		s.ids = append(s.ids, venueID)
	} else {
		s.ids = slices.DeleteFunc(s.ids, func(id string) bool { return id == venueID })
	}
	ids := slices.Clone(s.ids)
	s.publish()
	s.mu.Unlock()

	if err := s.docs.Merge(ctx, models.UsersCollection, uid, models.FavoritesDocument(ids)); err != nil {
		s.logger.WithContext(ctx).WithUserID(uid).WithClubID(venueID).WithError(err).Error("Could not update favorites")
		return favorite, fmt.Errorf("%w: favorites of %s: %w", interfaces.ErrWriteFailed, uid, err)
	}

	return favorite, nil
}

func (s *Store) IsFavorite(venueID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.ids, venueID)
}

func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.ids)
}

// Filter keeps the venues in the favorite set, preserving their order.
func (s *Store) Filter(venues []*models.Venue) []*models.Venue {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Venue, 0, len(s.ids))
	for _, v := range venues {
		if v.IsPersisted() && slices.Contains(s.ids, v.ID) {
			out = append(out, v)
		}
	}
	return out
}

// Changes delivers the set after every snapshot or toggle. Intermediate sets may be skipped.
func (s *Store) Changes() <-chan []string {
	return s.changes
}

// Done is closed when the subscription ends; Err then reports why.
func (s *Store) Done() <-chan struct{} {
	return s.done
}

func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}
