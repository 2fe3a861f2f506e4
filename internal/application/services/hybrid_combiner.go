package services

import (
	"math"
	"sort"

	"github.com/homematch-ai/recommender/internal/domain/entities"
)

// WeightProfile is one of the fixed blends applied to component scores.
// The profile is selected per listing by a capability predicate (does the
// listing carry an external risk score) plus whether the regression
// component is enabled at all.
type WeightProfile struct {
	Name       string
	Judgment   float64
	Regression float64
	Rule       float64
	Risk       float64
}

var (
	profileWithRisk = WeightProfile{
		Name: "with_risk", Judgment: 0.40, Regression: 0.25, Rule: 0.15, Risk: 0.20,
	}
	profileNoRisk = WeightProfile{
		Name: "no_risk", Judgment: 0.50, Regression: 0.30, Rule: 0.20,
	}
	profileNoRegression = WeightProfile{
		Name: "no_regression", Judgment: 0.70, Rule: 0.30,
	}
)

// HybridCombiner blends the component scores into a single ranked list.
type HybridCombiner struct {
	regressionEnabled bool
}

func NewHybridCombiner(regressionEnabled bool) *HybridCombiner {
	return &HybridCombiner{regressionEnabled: regressionEnabled}
}

// ComponentScores carries the index-aligned outputs of the scoring stages.
type ComponentScores struct {
	Judgment   []float64
	Regression []float64
	Rule       []float64
	Reasons    [][]string
}

// Combine blends scores per listing and returns records sorted by hybrid
// score, highest first. Ties keep the input order.
func (c *HybridCombiner) Combine(listings []*entities.Listing, enrichments []*entities.Enrichment, scores ComponentScores) []*entities.ScoreRecord {
	normalizedRule := normalizeByBatchMax(scores.Rule)

	records := make([]*entities.ScoreRecord, len(listings))
	for i, listing := range listings {
		var enrichment *entities.Enrichment
		if i < len(enrichments) {
			enrichment = enrichments[i]
		}

		profile := c.selectProfile(enrichment)

		judgment := scores.Judgment[i]
		rule := normalizedRule[i]
		hybrid := profile.Judgment*judgment + profile.Rule*rule

		record := &entities.ScoreRecord{
			ListingID:     listing.ID,
			ZPID:          listing.ZPID,
			Address:       listing.Address,
			City:          listing.City,
			State:         listing.State,
			Price:         listing.Price,
			Bedrooms:      listing.Bedrooms,
			Bathrooms:     listing.Bathrooms,
			Sqft:          listing.LivingArea,
			LotSize:       listing.LotSize,
			PropertyType:  listing.PropertyType,
			YearBuilt:     listing.YearBuilt,
			JudgmentScore: judgment,
			RuleScore:     rule,
		}
		if enrichment != nil {
			record.AvgSchoolRating = enrichment.AvgSchoolRating
		}
		if profile.Regression > 0 {
			record.RegressionScore = scores.Regression[i]
			hybrid += profile.Regression * record.RegressionScore
		}
		if profile.Risk > 0 {
			risk := enrichment.Risk.Score
			hybrid += profile.Risk * risk
			record.RiskScore = &risk
			record.RiskSubscores = enrichment.Risk.Subscores
		}
		if i < len(scores.Reasons) {
			record.MatchReasons = scores.Reasons[i]
		}
		record.HybridScore = math.Round(hybrid*100) / 100
		records[i] = record
	}

	sort.SliceStable(records, func(a, b int) bool {
		return records[a].HybridScore > records[b].HybridScore
	})
	return records
}

func (c *HybridCombiner) selectProfile(enrichment *entities.Enrichment) WeightProfile {
	if !c.regressionEnabled {
		return profileNoRegression
	}
	if enrichment != nil && enrichment.HasRisk() {
		return profileWithRisk
	}
	return profileNoRisk
}

// clampScore bounds a component score to the 0-100 scale. Scores that arrive
// from outside the process (model judgments, risk service totals) pass
// through here before they are blended.
func clampScore(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

// normalizeByBatchMax rescales rule scores relative to the best listing in
// the batch, mapping the maximum to 100. A non-positive maximum divides by
// one so a degenerate batch stays at its raw values.
func normalizeByBatchMax(scores []float64) []float64 {
	max := 0.0
	for _, s := range scores {
		if s > max {
			max = s
		}
	}
	if max <= 0 {
		max = 1
	}
	out := make([]float64, len(scores))
	for i, s := range scores {
		out[i] = s / max * 100
	}
	return out
}
