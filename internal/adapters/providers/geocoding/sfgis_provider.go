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

const defaultSFGeocoderURL = "https://sfplanninggis.org/arcgiswa/rest/services/Geocoder_V2/GeocodeServer/findAddressCandidates"

// SFGISProvider implements the Geocoder interface using the SF Planning GIS
// address-candidate service. It only knows San Francisco addresses; the
// resolver gates calls to it by city.
type SFGISProvider struct {
	baseURL    string
	httpClient *http.Client
}

// NewSFGISProvider creates a new SF Planning GIS geocoder
func NewSFGISProvider(baseURL string, timeout time.Duration) providers.Geocoder {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultSFGeocoderURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &SFGISProvider{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type sfCandidateResponse struct {
	Candidates []struct {
		Location struct {
			X float64 `json:"x"`
			Y float64 `json:"y"`
		} `json:"location"`
	} `json:"candidates"`
}

// Geocode resolves an address to coordinates. The city argument is unused;
// this geocoder is single-city by construction.
func (p *SFGISProvider) Geocode(ctx context.Context, address, _ string) (*providers.Coordinates, error) {
	params := url.Values{
		"f":            []string{"json"},
		"SingleLine":   []string{address},
		"maxLocations": []string{"1"},
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
		return nil, fmt.Errorf("sf geocoder returned status %d", resp.StatusCode)
	}

	var payload sfCandidateResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("sf geocoder returned malformed payload: %w", err)
	}

	if len(payload.Candidates) == 0 {
		return nil, nil
	}

	loc := payload.Candidates[0].Location
	if loc.X == 0 && loc.Y == 0 {
		return nil, nil
	}

	// ArcGIS returns x=longitude, y=latitude
	return &providers.Coordinates{Latitude: loc.Y, Longitude: loc.X}, nil
}
