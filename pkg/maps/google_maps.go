package maps

import (
	"context"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"
)

type GoogleMapsProvider struct {
	client *maps.Client
}

func NewGoogleMapsProvider(apiKey string) (*GoogleMapsProvider, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	return &GoogleMapsProvider{
		client: client,
	}, nil
}

func (g *GoogleMapsProvider) SearchPlaces(ctx context.Context, request *PlaceSearchRequest) ([]PlaceResult, error) {
	req := &maps.TextSearchRequest{
		Query: request.Query,
	}

	if request.Location != nil {
		req.Location = &maps.LatLng{
			Lat: request.Location.Latitude,
			Lng: request.Location.Longitude,
		}
		if request.Radius > 0 {
			req.Radius = uint(request.Radius)
		}
	}

	resp, err := g.client.TextSearch(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("place search request failed: %w", err)
	}

	results := make([]PlaceResult, len(resp.Results))
	for i, result := range resp.Results {
		results[i] = PlaceResult{
			PlaceID: result.PlaceID,
			Name:    result.Name,
			Address: result.FormattedAddress,
			Location: Location{
				Latitude:  result.Geometry.Location.Lat,
				Longitude: result.Geometry.Location.Lng,
			},
		}
	}

	return results, nil
}

// ReverseGeocode names each result after the first part of its formatted address.
func (g *GoogleMapsProvider) ReverseGeocode(ctx context.Context, lat, lng float64) ([]PlaceResult, error) {
	req := &maps.GeocodingRequest{
		LatLng: &maps.LatLng{Lat: lat, Lng: lng},
	}

	resp, err := g.client.ReverseGeocode(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("reverse geocoding failed: %w", err)
	}

	results := make([]PlaceResult, len(resp))
	for i, result := range resp {
		name, _, _ := strings.Cut(result.FormattedAddress, ",")
		results[i] = PlaceResult{
			PlaceID: result.PlaceID,
			Name:    name,
			Address: result.FormattedAddress,
			Location: Location{
				Latitude:  result.Geometry.Location.Lat,
				Longitude: result.Geometry.Location.Lng,
			},
		}
	}

	return results, nil
}
