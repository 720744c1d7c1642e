package maps

import "context"

// PlacesProvider looks up venues by free text and names coordinates.
type PlacesProvider interface {
	SearchPlaces(ctx context.Context, request *PlaceSearchRequest) ([]PlaceResult, error)
	ReverseGeocode(ctx context.Context, lat, lng float64) ([]PlaceResult, error)
}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type PlaceSearchRequest struct {
	Query    string    `json:"query"`
	Location *Location `json:"location,omitempty"`
	Radius   int       `json:"radius,omitempty"` // meters
}

type PlaceResult struct {
	PlaceID  string   `json:"place_id"`
	Name     string   `json:"name"`
	Address  string   `json:"formatted_address"`
	Location Location `json:"geometry"`
}
