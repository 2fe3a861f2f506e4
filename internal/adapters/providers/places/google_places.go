package places

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/homematch-ai/recommender/internal/domain/providers"
)

const (
	defaultSearchNearbyURL = "https://places.googleapis.com/v1/places:searchNearby"
	metersPerMile          = 1609.34
	defaultHTTPTimeout     = 10 * time.Second
)

// GooglePlacesProvider implements the PlacesProvider interface using the
// Google Places API (New) nearby search.
type GooglePlacesProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewGooglePlacesProvider creates a new Places provider
func NewGooglePlacesProvider(apiKey string) providers.PlacesProvider {
	return NewGooglePlacesProviderWithOptions(apiKey, defaultSearchNearbyURL, nil)
}

// NewGooglePlacesProviderWithOptions allows overriding the base URL and HTTP
// client (used for tests)
func NewGooglePlacesProviderWithOptions(apiKey, baseURL string, httpClient *http.Client) providers.PlacesProvider {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultSearchNearbyURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &GooglePlacesProvider{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

type nearbyResponse struct {
	Places []struct {
		ID          string `json:"id"`
		DisplayName struct {
			Text string `json:"text"`
		} `json:"displayName"`
		Location *struct {
			Latitude  *float64 `json:"latitude"`
			Longitude *float64 `json:"longitude"`
		} `json:"location"`
	} `json:"places"`
}

// NearbyPlaces searches for places of the given types within a radius of a
// point, ranked by distance.
func (p *GooglePlacesProvider) NearbyPlaces(ctx context.Context, lat, lon float64, includedTypes []string, radiusMiles float64, maxResults int) ([]providers.Place, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("places api key not configured")
	}

	body := map[string]interface{}{
		"includedTypes":  includedTypes,
		"maxResultCount": maxResults,
		"rankPreference": "DISTANCE",
		"locationRestriction": map[string]interface{}{
			"circle": map[string]interface{}{
				"center": map[string]float64{"latitude": lat, "longitude": lon},
				"radius": radiusMiles * metersPerMile,
			},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Goog-Api-Key", p.apiKey)
	req.Header.Set("X-Goog-FieldMask", "places.id,places.displayName,places.location")
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("places search returned status %d", resp.StatusCode)
	}

	var parsed nearbyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("places search returned malformed payload: %w", err)
	}

	results := make([]providers.Place, 0, len(parsed.Places))
	for _, place := range parsed.Places {
		result := providers.Place{
			ID:   place.ID,
			Name: place.DisplayName.Text,
		}
		if place.Location != nil && place.Location.Latitude != nil && place.Location.Longitude != nil {
			result.Coordinates = &providers.Coordinates{
				Latitude:  *place.Location.Latitude,
				Longitude: *place.Location.Longitude,
			}
		}
		results = append(results, result)
	}

	return results, nil
}
