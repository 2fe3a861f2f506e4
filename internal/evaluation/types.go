package evaluation

import (
	"time"

	"github.com/homematch-ai/recommender/internal/domain/entities"
)

// CaseListing is a candidate listing in a golden case, paired with a
// prerecorded judgment score so evaluation runs offline without a model
// call.
type CaseListing struct {
	Listing       entities.Listing `json:"listing"`
	JudgmentScore float64          `json:"judgment_score"`
}

// GoldenCase represents a labeled scoring scenario with expected outcomes.
type GoldenCase struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Preferences entities.Preferences `json:"preferences"`
	Listings    []CaseListing        `json:"listings"`
	RelevantIDs []string             `json:"relevant_ids"`
	Difficulty  string               `json:"difficulty"` // easy, medium, hard
}

// EvalResult holds the evaluation outcome for a single case.
type EvalResult struct {
	CaseID       string
	Name         string
	Difficulty   string
	RecallAt10   float64
	MRRAt10      float64
	TopListingID string
	Violations   []string
	Latency      time.Duration
}

// EvalSummary holds aggregate metrics across all golden cases.
type EvalSummary struct {
	TotalCases          int
	AvgRecallAt10       float64
	AvgMRRAt10          float64
	AvgLatency          time.Duration
	GuardrailViolations int
	ByDifficulty        map[string]*DifficultySummary
}

// DifficultySummary holds metrics grouped by case difficulty.
type DifficultySummary struct {
	Count         int
	AvgRecallAt10 float64
	AvgMRRAt10    float64
}
