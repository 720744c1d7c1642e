package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tabl/internal/models"
	"tabl/pkg/cache"
	"tabl/pkg/logger"
	"tabl/pkg/maps"
)

// Cache is the subset of pkg/cache the place lookups need.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

type cachedPlaceService struct {
	next   PlaceService
	cache  Cache
	ttl    time.Duration
	logger *logger.Logger
}

// NewCachedPlaceService keeps provider answers for ttl. Cache failures fall through to the
// provider; only successful lookups are stored.
func NewCachedPlaceService(next PlaceService, c Cache, ttl time.Duration, log *logger.Logger) PlaceService {
	return &cachedPlaceService{
		next:   next,
		cache:  c,
		ttl:    ttl,
		logger: log.WithField("service", "places_cache"),
	}
}

func (s *cachedPlaceService) Search(ctx context.Context, text string, near *maps.Location, radius int) ([]*models.Place, error) {
	key := fmt.Sprintf("places:search:%s", strings.ToLower(strings.TrimSpace(text)))
	if near != nil {
		key += fmt.Sprintf(":%.4f,%.4f:%d", near.Latitude, near.Longitude, radius)
	}

	var places []*models.Place
	if s.lookup(ctx, key, &places) {
		return places, nil
	}

	places, err := s.next.Search(ctx, text, near, radius)
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, places)
	return places, nil
}

func (s *cachedPlaceService) ReverseGeocode(ctx context.Context, lat, lng float64) (*models.Place, error) {
	key := fmt.Sprintf("places:reverse:%.5f,%.5f", lat, lng)

	var place models.Place
	if s.lookup(ctx, key, &place) {
		return &place, nil
	}

	found, err := s.next.ReverseGeocode(ctx, lat, lng)
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, found)
	return found, nil
}

func (s *cachedPlaceService) lookup(ctx context.Context, key string, dest interface{}) bool {
	err := s.cache.Get(ctx, key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.logger.WithContext(ctx).WithError(err).Warn("Place cache read failed")
	}
	return false
}

func (s *cachedPlaceService) store(ctx context.Context, key string, value interface{}) {
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		s.logger.WithContext(ctx).WithError(err).Warn("Place cache write failed")
	}
}
