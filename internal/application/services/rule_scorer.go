package services

import (
	"fmt"
	"math"
	"strings"

	"github.com/homematch-ai/recommender/internal/domain/entities"
)

const (
	ruleBaseScore = 50.0
	ruleScoreMin  = 0.0
	ruleScoreMax  = 100.0

	budgetFitBonus      = 30.0
	budgetAboveMinBonus = 5.0
	budgetPenaltyCap    = 25.0

	bedsBonus  = 10.0
	bathsBonus = 8.0
	sqftBonus  = 8.0

	schoolReasonMaxMiles = 0.5
)

// keywordGroup scores free-text feature matches against the listing's
// description and address. A group is evaluated only when one of the buyer's
// must-have tokens names it exactly; a positive hit adds bonus and a reason,
// a miss takes the penalty instead.
type keywordGroup struct {
	wanted  []string
	terms   []string
	bonus   float64
	penalty float64
	reason  string
}

var keywordGroups = []keywordGroup{
	{
		wanted:  []string{"ev", "ev charger", "charger", "charging"},
		terms:   []string{"ev charg", "electric vehicle", "240v", "level 2", "tesla charger"},
		bonus:   4.0,
		penalty: 3.0,
		reason:  "EV charging mentioned",
	},
	{
		wanted:  []string{"yard", "garden", "backyard", "outdoor space"},
		terms:   []string{"yard", "garden", "patio", "deck", "outdoor space"},
		bonus:   3.0,
		penalty: 3.0,
		reason:  "outdoor space mentioned",
	},
	{
		wanted:  []string{"garage", "two car", "2-car", "parking"},
		terms:   []string{"garage", "parking", "carport"},
		bonus:   3.0,
		penalty: 2.0,
		reason:  "parking available",
	},
}

// proximityBoost maps a distance to a bonus that decays linearly from cap
// at zero distance to zero at cutoff miles.
func proximityBoost(distMiles, cap, cutoffMiles float64) float64 {
	if cutoffMiles <= 0 {
		return 0
	}
	frac := distMiles / cutoffMiles
	if frac > 1 {
		frac = 1
	}
	return math.Max(0, cap*(1-frac))
}

func schoolBoostCap(priority entities.SchoolPriority) float64 {
	switch priority {
	case entities.SchoolPriorityHigh:
		return 10.0
	case entities.SchoolPriorityMedium:
		return 6.0
	default:
		return 2.0
	}
}

// RuleScorer produces a deterministic, explainable score for a listing
// against the buyer's stated preferences. Scores start at a neutral
// baseline and accumulate bounded bonuses and penalties; the result is
// clamped to [0, 100].
type RuleScorer struct{}

func NewRuleScorer() *RuleScorer {
	return &RuleScorer{}
}

// Score returns the rule score and the match reasons that earned it, most
// significant first, capped at MaxMatchReasons.
func (s *RuleScorer) Score(listing *entities.Listing, enrichment *entities.Enrichment, prefs *entities.Preferences) (float64, []string) {
	score := ruleBaseScore
	var reasons []string

	score, reasons = s.scoreBudget(listing, prefs, score, reasons)
	score, reasons = s.scoreSize(listing, prefs, score, reasons)
	score, reasons = s.scoreProximity(enrichment, prefs, score, reasons)
	score, reasons = s.scoreKeywords(listing, prefs, score, reasons)

	score = math.Max(ruleScoreMin, math.Min(ruleScoreMax, score))
	if len(reasons) > entities.MaxMatchReasons {
		reasons = reasons[:entities.MaxMatchReasons]
	}
	return score, reasons
}

func (s *RuleScorer) scoreBudget(listing *entities.Listing, prefs *entities.Preferences, score float64, reasons []string) (float64, []string) {
	price := float64(listing.Price)
	budgetMax := float64(prefs.BudgetMax)
	if price <= 0 || budgetMax <= 0 {
		return score, reasons
	}

	if price <= budgetMax {
		score += budgetFitBonus
		reasons = append(reasons, "within budget")
		// Clearing the buyer's stated floor earns a little extra.
		if prefs.BudgetMin > 0 && price >= float64(prefs.BudgetMin) {
			score += budgetAboveMinBonus
		}
	} else {
		overRatio := (price - budgetMax) / budgetMax
		score -= math.Min(budgetPenaltyCap, ruleScoreMax*overRatio*0.5)
		reasons = append(reasons, "over budget")
	}
	return score, reasons
}

func (s *RuleScorer) scoreSize(listing *entities.Listing, prefs *entities.Preferences, score float64, reasons []string) (float64, []string) {
	if prefs.MinBeds > 0 && listing.Bedrooms >= prefs.MinBeds {
		score += bedsBonus
		reasons = append(reasons, fmt.Sprintf("%d bedrooms", listing.Bedrooms))
	}
	if prefs.MinBaths > 0 && listing.Bathrooms >= prefs.MinBaths {
		score += bathsBonus
		reasons = append(reasons, "meets bathroom need")
	}
	if prefs.MinSqft > 0 && listing.LivingArea >= prefs.MinSqft {
		score += sqftBonus
		reasons = append(reasons, fmt.Sprintf("%d sqft living area", listing.LivingArea))
	}
	return score, reasons
}

func (s *RuleScorer) scoreProximity(enrichment *entities.Enrichment, prefs *entities.Preferences, score float64, reasons []string) (float64, []string) {
	if enrichment == nil {
		return score, reasons
	}

	if d := enrichment.POIMinMiles[entities.POISchool]; d != nil {
		score += proximityBoost(*d, schoolBoostCap(prefs.SchoolPriority), 2.0)
		if *d < schoolReasonMaxMiles {
			reasons = append(reasons, fmt.Sprintf("school %.1f mi away", *d))
		}
	}
	if d := enrichment.POIMinMiles[entities.POISupermarket]; d != nil {
		score += proximityBoost(*d, 6.0, 2.0)
	}
	if d := enrichment.POIMinMiles[entities.POIPark]; d != nil {
		score += proximityBoost(*d, 5.0, 1.2)
	}
	if d := enrichment.POIMinMiles[entities.POITransit]; d != nil {
		score += proximityBoost(*d, 6.0, 1.0)
		if *d < 1.0 {
			reasons = append(reasons, "near transit")
		}
	}
	return score, reasons
}

func (s *RuleScorer) scoreKeywords(listing *entities.Listing, prefs *entities.Preferences, score float64, reasons []string) (float64, []string) {
	text := strings.ToLower(listing.Description + " " + listing.Address)

	for _, group := range keywordGroups {
		if !mustHaveNames(prefs.MustHaves, group.wanted) {
			continue
		}
		if containsAny(text, group.terms) {
			score += group.bonus
			reasons = append(reasons, group.reason)
		} else {
			score -= group.penalty
		}
	}
	return score, reasons
}

// mustHaveNames reports whether any must-have token equals one of the group's
// synonyms. Tokens are compared whole so a phrase like "seven bedrooms" never
// triggers the EV group, and nice-to-haves never incur missing-feature
// penalties.
func mustHaveNames(mustHaves, synonyms []string) bool {
	for _, have := range mustHaves {
		have = strings.ToLower(strings.TrimSpace(have))
		for _, syn := range synonyms {
			if have == syn {
				return true
			}
		}
	}
	return false
}

func containsAny(haystack string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}
