package entities

// POI categories used for proximity enrichment
const (
	POISchool      = "school"
	POISupermarket = "supermarket"
	POIPark        = "park"
	POITransit     = "transit"
)

// RiskAssessment is an external quality/risk score on a 0-100 scale with its
// component subscores. Cached is true when the score came from a previous
// run's persisted columns rather than a fresh service call.
type RiskAssessment struct {
	Score     float64            `json:"score"`
	Subscores map[string]float64 `json:"subscores,omitempty"`
	Cached    bool               `json:"-"`
}

// Enrichment is the per-listing signal bundle produced by the enrichment
// stage. It is built once by the fan-out workers and treated as immutable
// afterwards; absent keys mean "unknown", never zero.
type Enrichment struct {
	AvgSchoolRating    float64              `json:"avg_school_rating"`
	ClosestSchoolMiles *float64             `json:"closest_school_miles,omitempty"`
	POIMinMiles        map[string]*float64  `json:"poi_min_miles"`
	POICounts          map[string]int       `json:"poi_counts"`
	Risk               *RiskAssessment      `json:"risk,omitempty"`
}

// NewEnrichment returns an enrichment with empty, non-nil maps
func NewEnrichment() *Enrichment {
	return &Enrichment{
		POIMinMiles: map[string]*float64{},
		POICounts:   map[string]int{},
	}
}

// HasRisk reports whether an external risk score is present. This is the
// capability predicate the combiner uses to pick a weight profile.
func (e *Enrichment) HasRisk() bool {
	return e != nil && e.Risk != nil
}
