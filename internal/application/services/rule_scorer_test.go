package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/homematch-ai/recommender/internal/application/services"
	"github.com/homematch-ai/recommender/internal/domain/entities"
)

func floatPtr(v float64) *float64 { return &v }

func baseListing() *entities.Listing {
	return &entities.Listing{
		ID:          "l1",
		Address:     "123 Main St",
		City:        "San Francisco",
		Price:       900_000,
		Bedrooms:    3,
		Bathrooms:   2,
		LivingArea:  1500,
		Description: "Charming home with a sunny yard and a two-car garage.",
	}
}

func TestRuleScorer_WithinBudget(t *testing.T) {
	scorer := services.NewRuleScorer()
	prefs := entities.NewPreferences()
	prefs.BudgetMax = 1_000_000

	score, reasons := scorer.Score(baseListing(), entities.NewEnrichment(), prefs)

	// 50 base + 30 within budget; no floor stated, so no extra bonus
	assert.Equal(t, 80.0, score)
	assert.Contains(t, reasons, "within budget")
}

func TestRuleScorer_BudgetFloorBonus(t *testing.T) {
	scorer := services.NewRuleScorer()
	prefs := entities.NewPreferences()
	prefs.BudgetMin = 800_000
	prefs.BudgetMax = 1_000_000

	listing := baseListing()
	listing.Price = 1_000_000

	score, _ := scorer.Score(listing, entities.NewEnrichment(), prefs)

	// at the ceiling exactly and above the stated floor: 50 + 30 + 5
	assert.Equal(t, 85.0, score)
}

func TestRuleScorer_BudgetFloorBonusNeedsFloorMet(t *testing.T) {
	scorer := services.NewRuleScorer()
	prefs := entities.NewPreferences()
	prefs.BudgetMin = 950_000
	prefs.BudgetMax = 1_000_000

	// 900k is within budget but under the floor
	score, _ := scorer.Score(baseListing(), entities.NewEnrichment(), prefs)
	assert.Equal(t, 80.0, score)
}

func TestRuleScorer_OverBudgetPenalty(t *testing.T) {
	scorer := services.NewRuleScorer()
	prefs := entities.NewPreferences()
	prefs.BudgetMax = 1_000_000

	listing := baseListing()
	listing.Price = 1_200_000

	score, reasons := scorer.Score(listing, entities.NewEnrichment(), prefs)

	// over by 20%: penalty = min(25, 100*0.2*0.5) = 10
	assert.Equal(t, 40.0, score)
	assert.NotContains(t, reasons, "within budget")
	assert.Contains(t, reasons, "over budget")
}

func TestRuleScorer_OverBudgetPenaltyCapped(t *testing.T) {
	scorer := services.NewRuleScorer()
	prefs := entities.NewPreferences()
	prefs.BudgetMax = 500_000

	listing := baseListing()
	listing.Price = 2_000_000

	score, _ := scorer.Score(listing, entities.NewEnrichment(), prefs)

	// over by 300%: uncapped penalty would be 150, capped at 25
	assert.Equal(t, 25.0, score)
}

func TestRuleScorer_SizeBonusesAndClamp(t *testing.T) {
	scorer := services.NewRuleScorer()
	prefs := entities.NewPreferences()
	prefs.BudgetMax = 1_000_000
	prefs.MinBeds = 3
	prefs.MinBaths = 2
	prefs.MinSqft = 1200

	score, reasons := scorer.Score(baseListing(), entities.NewEnrichment(), prefs)

	// 50 + 30 + 10 + 8 + 8 = 106, clamped to 100
	assert.Equal(t, 100.0, score)
	assert.Contains(t, reasons, "meets bathroom need")
	assert.LessOrEqual(t, len(reasons), entities.MaxMatchReasons)
}

func TestRuleScorer_SizeRequirementNotMet(t *testing.T) {
	scorer := services.NewRuleScorer()
	prefs := entities.NewPreferences()
	prefs.MinBeds = 4

	score, _ := scorer.Score(baseListing(), entities.NewEnrichment(), prefs)

	// budget unbounded so within-budget applies, but no beds bonus
	assert.Equal(t, 80.0, score)
}

func TestRuleScorer_SchoolProximityByPriority(t *testing.T) {
	listing := baseListing()
	enrichment := entities.NewEnrichment()
	enrichment.POIMinMiles[entities.POISchool] = floatPtr(0.0)

	scorer := services.NewRuleScorer()

	prefs := entities.NewPreferences()
	prefs.SchoolPriority = entities.SchoolPriorityLow
	lowScore, _ := scorer.Score(listing, enrichment, prefs)

	prefs.SchoolPriority = entities.SchoolPriorityHigh
	highScore, reasons := scorer.Score(listing, enrichment, prefs)

	// cap 2 vs cap 10 at zero distance
	assert.Equal(t, 8.0, highScore-lowScore)
	assert.Contains(t, reasons, "school 0.0 mi away")
}

func TestRuleScorer_SchoolReasonOnlyWhenClose(t *testing.T) {
	listing := baseListing()
	enrichment := entities.NewEnrichment()
	enrichment.POIMinMiles[entities.POISchool] = floatPtr(1.5)

	scorer := services.NewRuleScorer()
	_, reasons := scorer.Score(listing, enrichment, entities.NewPreferences())

	for _, r := range reasons {
		assert.NotContains(t, r, "school")
	}
}

func TestRuleScorer_ProximityDecaysToZeroAtCutoff(t *testing.T) {
	listing := baseListing()
	scorer := services.NewRuleScorer()
	prefs := entities.NewPreferences()

	base, _ := scorer.Score(listing, entities.NewEnrichment(), prefs)

	enrichment := entities.NewEnrichment()
	enrichment.POIMinMiles[entities.POIPark] = floatPtr(1.2)
	enrichment.POIMinMiles[entities.POITransit] = floatPtr(2.0)

	atCutoff, _ := scorer.Score(listing, enrichment, prefs)
	assert.Equal(t, base, atCutoff)
}

func TestRuleScorer_KeywordBonusAndPenalty(t *testing.T) {
	scorer := services.NewRuleScorer()

	prefs := entities.NewPreferences()
	prefs.MustHaves = []string{"EV charger"}

	withEV := baseListing()
	withEV.Description = "Updated home with a level 2 EV charging station in the garage."
	scoreWith, reasons := scorer.Score(withEV, entities.NewEnrichment(), prefs)
	assert.Contains(t, reasons, "EV charging mentioned")

	withoutEV := baseListing()
	withoutEV.Description = "Updated home with hardwood floors."
	scoreWithout, _ := scorer.Score(withoutEV, entities.NewEnrichment(), prefs)

	// +4 bonus vs -3 penalty
	assert.Equal(t, 7.0, scoreWith-scoreWithout)
}

func TestRuleScorer_KeywordMatchesAddressToo(t *testing.T) {
	scorer := services.NewRuleScorer()

	prefs := entities.NewPreferences()
	prefs.MustHaves = []string{"parking"}

	listing := baseListing()
	listing.Price = 0
	listing.Description = "Bright two-bedroom flat."
	listing.Address = "12 Garage Parking Way"

	score, reasons := scorer.Score(listing, entities.NewEnrichment(), prefs)

	// the feature appears only in the address: 50 + 3
	assert.Equal(t, 53.0, score)
	assert.Contains(t, reasons, "parking available")
}

func TestRuleScorer_KeywordGroupNeedsExactMustHave(t *testing.T) {
	scorer := services.NewRuleScorer()

	prefs := entities.NewPreferences()
	prefs.MustHaves = []string{"seven bedrooms"}

	listing := baseListing()
	listing.Price = 0
	listing.Description = "Bright two-bedroom flat."

	// "seven bedrooms" is not an EV synonym, so no group fires
	score, _ := scorer.Score(listing, entities.NewEnrichment(), prefs)
	assert.Equal(t, 50.0, score)
}

func TestRuleScorer_NiceToHavesNeverPenalized(t *testing.T) {
	scorer := services.NewRuleScorer()

	prefs := entities.NewPreferences()
	prefs.NiceToHaves = []string{"garage"}

	listing := baseListing()
	listing.Price = 0
	listing.Description = "Bright two-bedroom flat."

	score, _ := scorer.Score(listing, entities.NewEnrichment(), prefs)
	assert.Equal(t, 50.0, score)
}

func TestRuleScorer_ScoreBounds(t *testing.T) {
	scorer := services.NewRuleScorer()

	prefs := entities.NewPreferences()
	prefs.BudgetMax = 100_000
	prefs.MustHaves = []string{"ev charger", "yard", "garage"}

	listing := baseListing()
	listing.Price = 5_000_000
	listing.Description = "Bare lot."

	score, _ := scorer.Score(listing, entities.NewEnrichment(), prefs)
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 100.0)
}
