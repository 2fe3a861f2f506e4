package risk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/homematch-ai/recommender/internal/domain/providers"
)

const defaultHTTPTimeout = 10 * time.Second

// Client implements the RiskProvider interface against the hosted
// risk-scoring microservice. Calls run through a circuit breaker so a
// degraded service stops consuming the per-listing enrichment budget.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

// NewClient creates a new risk service client
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "risk-service",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

type scoreRequest struct {
	Property struct {
		ListingID string  `json:"listing_id"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		City      string  `json:"city"`
	} `json:"property"`
}

// Score calls the risk service for a listing. A 400 response means the
// property is outside the service's coverage area and yields (nil, nil).
func (c *Client) Score(ctx context.Context, listingID, city string, lat, lon float64) (*providers.RiskResult, error) {
	var request scoreRequest
	request.Property.ListingID = listingID
	request.Property.Latitude = lat
	request.Property.Longitude = lon
	request.Property.City = city

	payload, err := json.Marshal(request)
	if err != nil {
		return nil, err
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/score", bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusBadRequest {
			// Outside coverage; not a service failure
			return (*providers.RiskResult)(nil), nil
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("risk service returned status %d", resp.StatusCode)
		}

		var parsed providers.RiskResult
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return nil, fmt.Errorf("risk service returned malformed payload: %w", err)
		}
		return &parsed, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*providers.RiskResult), nil
}
