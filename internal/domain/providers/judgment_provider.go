package providers

import (
	"context"

	"github.com/homematch-ai/recommender/internal/domain/entities"
)

// JudgmentProvider scores an entire candidate batch in one call against the
// buyer's preference summary. The result maps the listing's position in the
// submitted batch to a 0-100 score; positions absent from the map default to
// a neutral score at the call site.
type JudgmentProvider interface {
	ScoreListings(ctx context.Context, preferenceSummary string, listingSummaries []string) (map[int]float64, error)
}

// PreferenceExtractor turns a buyer's free-text description into structured
// preferences.
type PreferenceExtractor interface {
	ExtractPreferences(ctx context.Context, text string) (*entities.Preferences, error)
}
