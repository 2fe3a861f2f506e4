package evaluation

import (
	"time"

	"github.com/homematch-ai/recommender/internal/application/services"
	"github.com/homematch-ai/recommender/internal/domain/entities"
)

// Runner replays golden cases through the deterministic scoring stages.
// Judgment scores come prerecorded from the case file, so a run needs no
// model, database, or network.
type Runner struct {
	ruler      *services.RuleScorer
	regression *services.RidgeRegression
	combiner   *services.HybridCombiner
}

func NewRunner(ridgeAlpha float64) *Runner {
	return &Runner{
		ruler:      services.NewRuleScorer(),
		regression: services.NewRidgeRegression(ridgeAlpha),
		combiner:   services.NewHybridCombiner(true),
	}
}

func (r *Runner) Run(cases []GoldenCase) (*EvalSummary, error) {
	summary := &EvalSummary{
		TotalCases:   len(cases),
		ByDifficulty: make(map[string]*DifficultySummary),
	}

	for _, c := range cases {
		result := r.runCase(c)
		r.updateSummary(summary, result)
	}

	r.finalizeSummary(summary)
	return summary, nil
}

func (r *Runner) runCase(c GoldenCase) EvalResult {
	start := time.Now()

	prefs := c.Preferences
	prefs.Normalize()

	listings := make([]*entities.Listing, len(c.Listings))
	enrichments := make([]*entities.Enrichment, len(c.Listings))
	judgment := make([]float64, len(c.Listings))
	for i := range c.Listings {
		listing := c.Listings[i].Listing
		listings[i] = &listing
		judgment[i] = c.Listings[i].JudgmentScore

		enrichment := entities.NewEnrichment()
		enrichment.AvgSchoolRating, enrichment.ClosestSchoolMiles = services.AggregateSchools(listing.Schools)
		enrichments[i] = enrichment
	}

	features := services.BuildFeatureRows(listings, enrichments)
	regressionScores := r.regression.FitPredict(features, judgment)

	ruleScores := make([]float64, len(listings))
	reasons := make([][]string, len(listings))
	for i, listing := range listings {
		ruleScores[i], reasons[i] = r.ruler.Score(listing, enrichments[i], &prefs)
	}

	records := r.combiner.Combine(listings, enrichments, services.ComponentScores{
		Judgment:   judgment,
		Regression: regressionScores,
		Rule:       ruleScores,
		Reasons:    reasons,
	})

	rankedIDs := make([]string, len(records))
	for i, rec := range records {
		rankedIDs[i] = rec.ListingID
	}

	result := EvalResult{
		CaseID:     c.ID,
		Name:       c.Name,
		Difficulty: c.Difficulty,
		RecallAt10: RecallAtK(c.RelevantIDs, rankedIDs, 10),
		MRRAt10:    MRRAtK(c.RelevantIDs, rankedIDs, 10),
		Violations: CheckRecords(records),
		Latency:    time.Since(start),
	}
	if len(rankedIDs) > 0 {
		result.TopListingID = rankedIDs[0]
	}
	return result
}

func (r *Runner) updateSummary(s *EvalSummary, res EvalResult) {
	s.AvgRecallAt10 += res.RecallAt10
	s.AvgMRRAt10 += res.MRRAt10
	s.AvgLatency += res.Latency
	s.GuardrailViolations += len(res.Violations)

	if _, ok := s.ByDifficulty[res.Difficulty]; !ok {
		s.ByDifficulty[res.Difficulty] = &DifficultySummary{}
	}
	ds := s.ByDifficulty[res.Difficulty]
	ds.Count++
	ds.AvgRecallAt10 += res.RecallAt10
	ds.AvgMRRAt10 += res.MRRAt10
}

func (r *Runner) finalizeSummary(s *EvalSummary) {
	if s.TotalCases > 0 {
		n := float64(s.TotalCases)
		s.AvgRecallAt10 /= n
		s.AvgMRRAt10 /= n
		s.AvgLatency /= time.Duration(s.TotalCases)
	}

	for _, ds := range s.ByDifficulty {
		if ds.Count > 0 {
			n := float64(ds.Count)
			ds.AvgRecallAt10 /= n
			ds.AvgMRRAt10 /= n
		}
	}
}
