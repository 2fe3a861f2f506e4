package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/homematch-ai/recommender/internal/domain/entities"
	"github.com/homematch-ai/recommender/internal/domain/providers"
)

const (
	judgmentDefaultScore  = 50.0
	descriptionSummaryLen = 200
)

// JudgmentScorer scores listings with an LLM judge. It builds compact
// textual summaries of the buyer's preferences and each candidate, then
// asks the model for one score per candidate. Listings the model omits
// fall back to a neutral score.
type JudgmentScorer struct {
	provider providers.JudgmentProvider
}

func NewJudgmentScorer(provider providers.JudgmentProvider) *JudgmentScorer {
	return &JudgmentScorer{provider: provider}
}

// Score returns one judgment score per listing, index-aligned with the
// input. An empty batch returns an empty slice without calling the model.
func (s *JudgmentScorer) Score(ctx context.Context, prefs *entities.Preferences, listings []*entities.Listing, enrichments []*entities.Enrichment) ([]float64, error) {
	if len(listings) == 0 {
		return []float64{}, nil
	}

	summaries := make([]string, len(listings))
	for i, listing := range listings {
		var enrichment *entities.Enrichment
		if i < len(enrichments) {
			enrichment = enrichments[i]
		}
		summaries[i] = summarizeListing(listing, enrichment)
	}

	scores, err := s.provider.ScoreListings(ctx, summarizePreferences(prefs), summaries)
	if err != nil {
		return nil, err
	}

	result := make([]float64, len(listings))
	for i := range result {
		if score, ok := scores[i]; ok {
			result[i] = clampScore(score)
		} else {
			result[i] = judgmentDefaultScore
		}
	}
	return result, nil
}

func summarizePreferences(prefs *entities.Preferences) string {
	var parts []string
	if prefs.BudgetMax > 0 && prefs.BudgetMax < entities.UnboundedBudget {
		parts = append(parts, fmt.Sprintf("budget up to $%d", prefs.BudgetMax))
	}
	if prefs.MinBeds > 0 {
		parts = append(parts, fmt.Sprintf("at least %d bedrooms", prefs.MinBeds))
	}
	if prefs.MinBaths > 0 {
		parts = append(parts, fmt.Sprintf("at least %.1f bathrooms", prefs.MinBaths))
	}
	if prefs.MinSqft > 0 {
		parts = append(parts, fmt.Sprintf("at least %d sqft", prefs.MinSqft))
	}
	if len(prefs.MustHaves) > 0 {
		parts = append(parts, "must have: "+strings.Join(prefs.MustHaves, ", "))
	}
	if len(prefs.NiceToHaves) > 0 {
		parts = append(parts, "nice to have: "+strings.Join(prefs.NiceToHaves, ", "))
	}
	if len(prefs.PreferredAreas) > 0 {
		parts = append(parts, "preferred areas: "+strings.Join(prefs.PreferredAreas, ", "))
	}
	if prefs.SchoolPriority != "" {
		parts = append(parts, fmt.Sprintf("school priority: %s", prefs.SchoolPriority))
	}
	if len(parts) == 0 {
		return "no specific preferences stated"
	}
	return strings.Join(parts, "; ")
}

func summarizeListing(listing *entities.Listing, enrichment *entities.Enrichment) string {
	var parts []string
	if listing.Address != "" {
		parts = append(parts, fmt.Sprintf("%s, %s", listing.Address, listing.City))
	}
	if listing.Price > 0 {
		parts = append(parts, fmt.Sprintf("$%d", listing.Price))
	}
	parts = append(parts, fmt.Sprintf("%d bed / %.1f bath", listing.Bedrooms, listing.Bathrooms))
	if listing.LivingArea > 0 {
		parts = append(parts, fmt.Sprintf("%d sqft", listing.LivingArea))
	}
	if listing.LotSize > 0 {
		parts = append(parts, fmt.Sprintf("%.0f sqft lot", listing.LotSize))
	}
	if listing.PropertyType != "" {
		parts = append(parts, listing.PropertyType)
	}
	if listing.YearBuilt > 0 {
		parts = append(parts, fmt.Sprintf("built %d", listing.YearBuilt))
	}
	if enrichment != nil && enrichment.AvgSchoolRating > 0 {
		parts = append(parts, fmt.Sprintf("avg school rating %.1f", enrichment.AvgSchoolRating))
	}
	if desc := strings.TrimSpace(listing.Description); desc != "" {
		if len(desc) > descriptionSummaryLen {
			// Back up to a rune boundary so the cut never splits a
			// multi-byte character.
			cut := descriptionSummaryLen
			for cut > 0 && !utf8.RuneStart(desc[cut]) {
				cut--
			}
			desc = desc[:cut]
		}
		parts = append(parts, desc)
	}
	return strings.Join(parts, ". ")
}
