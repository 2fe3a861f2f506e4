package providers

import "context"

// RiskResult is the raw output of the external risk-scoring service.
// Total is on the service's native 0-10 scale.
type RiskResult struct {
	Total     float64            `json:"score_total"`
	Subscores map[string]float64 `json:"subscores"`
}

// RiskProvider obtains a quality/risk score for a listing from the hosted
// risk-scoring service. A nil result with a nil error means the listing is
// outside the service's coverage.
type RiskProvider interface {
	Score(ctx context.Context, listingID, city string, lat, lon float64) (*RiskResult, error)
}
