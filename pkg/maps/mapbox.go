package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

type MapboxProvider struct {
	accessToken string
	httpClient  *http.Client
	baseURL     string
}

func NewMapboxProvider(accessToken string) *MapboxProvider {
	return &MapboxProvider{
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		baseURL:     "https://api.mapbox.com",
	}
}

type mapboxFeature struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	PlaceName string    `json:"place_name"`
	Center    []float64 `json:"center"`
}

func (m *MapboxProvider) SearchPlaces(ctx context.Context, request *PlaceSearchRequest) ([]PlaceResult, error) {
	query := url.Values{}
	if request.Location != nil {
		query.Set("proximity", formatLngLat(request.Location.Longitude, request.Location.Latitude))
	}
	query.Set("types", "poi")

	return m.geocode(ctx, request.Query, query)
}

func (m *MapboxProvider) ReverseGeocode(ctx context.Context, lat, lng float64) ([]PlaceResult, error) {
	return m.geocode(ctx, formatLngLat(lng, lat), url.Values{})
}

func (m *MapboxProvider) geocode(ctx context.Context, search string, query url.Values) ([]PlaceResult, error) {
	query.Set("access_token", m.accessToken)
	apiURL := fmt.Sprintf("%s/geocoding/v5/mapbox.places/%s.json?%s",
		m.baseURL, url.PathEscape(search), query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Mapbox API error %d: %s", resp.StatusCode, string(body))
	}

	var mapboxResp struct {
		Features []mapboxFeature `json:"features"`
	}
	if err := json.Unmarshal(body, &mapboxResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	results := make([]PlaceResult, 0, len(mapboxResp.Features))
	for _, feature := range mapboxResp.Features {
		if len(feature.Center) < 2 {
			continue
		}
		results = append(results, PlaceResult{
			PlaceID: feature.ID,
			Name:    feature.Text,
			Address: feature.PlaceName,
			Location: Location{
				Latitude:  feature.Center[1],
				Longitude: feature.Center[0],
			},
		})
	}

	return results, nil
}

func formatLngLat(lng, lat float64) string {
	return strconv.FormatFloat(lng, 'f', -1, 64) + "," + strconv.FormatFloat(lat, 'f', -1, 64)
}
