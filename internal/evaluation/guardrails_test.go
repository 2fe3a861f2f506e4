package evaluation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/homematch-ai/recommender/internal/domain/entities"
	"github.com/homematch-ai/recommender/internal/evaluation"
)

func TestCheckRecords_CleanOutput(t *testing.T) {
	records := []*entities.ScoreRecord{
		{ListingID: "a", HybridScore: 90, RuleScore: 85, MatchReasons: []string{"within budget"}},
		{ListingID: "b", HybridScore: 70, RuleScore: 60},
	}

	assert.Empty(t, evaluation.CheckRecords(records))
}

func TestCheckRecords_OutOfBoundsScore(t *testing.T) {
	records := []*entities.ScoreRecord{
		{ListingID: "a", HybridScore: 120, RuleScore: 50},
	}

	violations := evaluation.CheckRecords(records)
	assert.Len(t, violations, 1)
	assert.Contains(t, violations[0], "out of bounds")
}

func TestCheckRecords_ReasonCap(t *testing.T) {
	records := []*entities.ScoreRecord{
		{ListingID: "a", HybridScore: 80, RuleScore: 50, MatchReasons: []string{"1", "2", "3", "4", "5"}},
	}

	violations := evaluation.CheckRecords(records)
	assert.Len(t, violations, 1)
	assert.Contains(t, violations[0], "exceeds cap")
}

func TestCheckRecords_NonDescendingOrder(t *testing.T) {
	records := []*entities.ScoreRecord{
		{ListingID: "a", HybridScore: 60, RuleScore: 50},
		{ListingID: "b", HybridScore: 80, RuleScore: 50},
	}

	violations := evaluation.CheckRecords(records)
	assert.Len(t, violations, 1)
	assert.Contains(t, violations[0], "not descending")
}
