package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/homematch-ai/recommender/internal/domain/providers"
)

const defaultGoogleGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"

// GoogleProvider implements the Geocoder interface using the Google
// Geocoding API. It is the general-purpose last strategy in the resolution
// chain and requires an API credential.
type GoogleProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewGoogleProvider creates a new Google geocoder
func NewGoogleProvider(apiKey string, timeout time.Duration) providers.Geocoder {
	return NewGoogleProviderWithOptions(apiKey, defaultGoogleGeocodeURL, timeout)
}

// NewGoogleProviderWithOptions allows overriding the base URL (used for tests)
func NewGoogleProviderWithOptions(apiKey, baseURL string, timeout time.Duration) providers.Geocoder {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultGoogleGeocodeURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &GoogleProvider{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type googleGeocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Geocode resolves an address and city to coordinates
func (p *GoogleProvider) Geocode(ctx context.Context, address, city string) (*providers.Coordinates, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("geocoding api key not configured")
	}

	params := url.Values{
		"address": []string{fmt.Sprintf("%s, %s, CA", address, city)},
		"key":     []string{p.apiKey},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google geocoder returned status %d", resp.StatusCode)
	}

	var payload googleGeocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("google geocoder returned malformed payload: %w", err)
	}

	if payload.Status != "OK" || len(payload.Results) == 0 {
		return nil, nil
	}

	loc := payload.Results[0].Geometry.Location
	return &providers.Coordinates{Latitude: loc.Lat, Longitude: loc.Lng}, nil
}
