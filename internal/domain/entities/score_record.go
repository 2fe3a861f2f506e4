package entities

import "strings"

// MaxMatchReasons caps how many match reasons a score record carries.
const MaxMatchReasons = 4

// PersistedReasonCount is how many reasons make it into the persisted summary.
const PersistedReasonCount = 3

// ScoreRecord is the per-listing output of the hybrid pipeline. Every
// component score and the hybrid score lie in [0, 100].
type ScoreRecord struct {
	ListingID    string  `json:"id"`
	ZPID         string  `json:"zpid,omitempty"`
	Address      string  `json:"address"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	Price        int64   `json:"price"`
	Bedrooms     int     `json:"bedrooms"`
	Bathrooms    float64 `json:"bathrooms"`
	Sqft         int     `json:"sqft"`
	LotSize      float64 `json:"lot_size"`
	PropertyType string  `json:"property_type"`
	YearBuilt    int     `json:"year_built,omitempty"`

	AvgSchoolRating float64 `json:"avg_school_rating"`

	HybridScore     float64            `json:"hybrid_score"`
	JudgmentScore   float64            `json:"judgment_score"`
	RegressionScore float64            `json:"regression_score"`
	RuleScore       float64            `json:"rule_score"`
	RiskScore       *float64           `json:"risk_score,omitempty"`
	RiskSubscores   map[string]float64 `json:"risk_subscores,omitempty"`

	MatchReasons []string `json:"match_reasons"`
}

// ReasonSummary joins the leading reasons into the persisted summary string.
func (r *ScoreRecord) ReasonSummary() string {
	reasons := r.MatchReasons
	if len(reasons) > PersistedReasonCount {
		reasons = reasons[:PersistedReasonCount]
	}
	return strings.Join(reasons, "; ")
}
