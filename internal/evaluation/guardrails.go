package evaluation

import (
	"fmt"

	"github.com/homematch-ai/recommender/internal/domain/entities"
)

// CheckRecords returns the structural invariants violated by a ranked
// output: every score in bounds, the reason list capped, and records
// ordered by descending hybrid score.
func CheckRecords(records []*entities.ScoreRecord) []string {
	var violations []string

	for i, rec := range records {
		if rec.HybridScore < 0 || rec.HybridScore > 100 {
			violations = append(violations, fmt.Sprintf("listing %s: hybrid score %.2f out of bounds", rec.ListingID, rec.HybridScore))
		}
		if rec.RuleScore < 0 || rec.RuleScore > 100 {
			violations = append(violations, fmt.Sprintf("listing %s: rule score %.2f out of bounds", rec.ListingID, rec.RuleScore))
		}
		if len(rec.MatchReasons) > entities.MaxMatchReasons {
			violations = append(violations, fmt.Sprintf("listing %s: %d match reasons exceeds cap", rec.ListingID, len(rec.MatchReasons)))
		}
		if i > 0 && records[i-1].HybridScore < rec.HybridScore {
			violations = append(violations, fmt.Sprintf("position %d: ranking not descending", i))
		}
	}

	return violations
}
