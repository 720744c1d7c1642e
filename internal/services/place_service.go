package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tabl/internal/models"
	"tabl/pkg/logger"
	"tabl/pkg/maps"
)

// ErrNoPlacesFound is a successful lookup with nothing in it, as opposed to a provider failure.
var ErrNoPlacesFound = errors.New("no places found")

const DefaultSearchRadius = 5000

type PlaceService interface {
	Search(ctx context.Context, text string, near *maps.Location, radius int) ([]*models.Place, error)
	ReverseGeocode(ctx context.Context, lat, lng float64) (*models.Place, error)
}

type placeService struct {
	provider maps.PlacesProvider
	logger   *logger.Logger
}

func NewPlaceService(provider maps.PlacesProvider, log *logger.Logger) PlaceService {
	return &placeService{
		provider: provider,
		logger:   log.WithField("service", "places"),
	}
}

func (s *placeService) Search(ctx context.Context, text string, near *maps.Location, radius int) ([]*models.Place, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("search text is required")
	}
	if near != nil && radius <= 0 {
		radius = DefaultSearchRadius
	}

	results, err := s.provider.SearchPlaces(ctx, &maps.PlaceSearchRequest{
		Query:    text,
		Location: near,
		Radius:   radius,
	})
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Warn("Place search failed")
		return nil, fmt.Errorf("failed to search places: %w", err)
	}
	if len(results) == 0 {
		return nil, ErrNoPlacesFound
	}

	places := make([]*models.Place, len(results))
	for i := range results {
		places[i] = toPlace(&results[i])
	}
	return places, nil
}

// ReverseGeocode returns the first match, or a place named Unknown at the given coordinates when
// the provider has nothing for them.
func (s *placeService) ReverseGeocode(ctx context.Context, lat, lng float64) (*models.Place, error) {
	results, err := s.provider.ReverseGeocode(ctx, lat, lng)
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Warn("Reverse geocoding failed")
		return nil, fmt.Errorf("failed to reverse geocode: %w", err)
	}

	if len(results) == 0 || results[0].Name == "" {
		place := &models.Place{Name: models.UnknownPlaceName, Latitude: lat, Longitude: lng}
		if len(results) > 0 {
			place.Address = results[0].Address
		}
		return place, nil
	}

	return toPlace(&results[0]), nil
}

func toPlace(r *maps.PlaceResult) *models.Place {
	return &models.Place{
		ID:        r.PlaceID,
		Name:      r.Name,
		Address:   r.Address,
		Latitude:  r.Location.Latitude,
		Longitude: r.Location.Longitude,
	}
}
