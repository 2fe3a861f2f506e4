package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/homematch-ai/recommender/internal/domain/entities"
	"github.com/homematch-ai/recommender/internal/domain/providers"
	"github.com/homematch-ai/recommender/internal/domain/repositories"
	"github.com/homematch-ai/recommender/internal/infrastructure/observability"
	apperrors "github.com/homematch-ai/recommender/pkg/errors"
	"github.com/homematch-ai/recommender/pkg/retry"
)

const defaultRecommendationLimit = 50

// RecommendInput is a single recommendation request. Either Preferences or
// PreferencesText must be set; free text is converted to structured
// preferences by the extraction model.
type RecommendInput struct {
	BuyerID         string
	PreferencesText string
	Preferences     *entities.Preferences
	PreferredAreas  []string
	Limit           int
}

// RecommendResult is the ranked output plus request-level metadata.
type RecommendResult struct {
	Records     []*entities.ScoreRecord `json:"recommendations"`
	Preferences *entities.Preferences   `json:"preferences"`
	Candidates  int                     `json:"candidate_count"`
	Persisted   bool                    `json:"persisted"`
}

// RecommendationService drives the full pipeline: preference resolution,
// candidate fetch, enrichment, the three scoring stages, blending, and
// optional score persistence.
type RecommendationService struct {
	listings   repositories.ListingRepository
	scores     repositories.ScoreRepository
	extractor  providers.PreferenceExtractor
	enrichment *EnrichmentService
	judgment   *JudgmentScorer
	regression *RidgeRegression
	ruler      *RuleScorer
	combiner   *HybridCombiner
	eventBus   providers.EventBus

	regressionEnabled bool
}

func NewRecommendationService(
	listings repositories.ListingRepository,
	scores repositories.ScoreRepository,
	extractor providers.PreferenceExtractor,
	enrichment *EnrichmentService,
	judgment *JudgmentScorer,
	regression *RidgeRegression,
	regressionEnabled bool,
) *RecommendationService {
	return &RecommendationService{
		listings:          listings,
		scores:            scores,
		extractor:         extractor,
		enrichment:        enrichment,
		judgment:          judgment,
		regression:        regression,
		ruler:             NewRuleScorer(),
		combiner:          NewHybridCombiner(regressionEnabled),
		regressionEnabled: regressionEnabled,
	}
}

// SetEventBus enables publishing a scored-run event after persistence.
func (s *RecommendationService) SetEventBus(bus providers.EventBus) {
	s.eventBus = bus
}

// Recommend runs the pipeline for one request. The judgment stage is the
// only hard dependency; enrichment and persistence failures degrade
// rather than abort.
func (s *RecommendationService) Recommend(ctx context.Context, input RecommendInput) (*RecommendResult, error) {
	ctx, span := observability.StartSpan(ctx, "recommendation.recommend")
	defer span.End()

	prefs, err := s.resolvePreferences(ctx, input)
	if err != nil {
		return nil, err
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultRecommendationLimit
	}

	var excludedIDs []string
	if input.BuyerID != "" {
		excludedIDs, err = s.listings.SeenListingIDs(ctx, input.BuyerID)
		if err != nil {
			log.Warn().Err(err).Str("buyer_id", input.BuyerID).Msg("failed to load seen listings, proceeding without exclusions")
			excludedIDs = nil
		}
	}

	listings, err := s.listings.FetchListings(ctx, buildFilters(prefs), excludedIDs, limit)
	if err != nil {
		return nil, err
	}
	if len(listings) == 0 {
		return &RecommendResult{
			Records:     []*entities.ScoreRecord{},
			Preferences: prefs,
		}, nil
	}

	enrichments := s.enrichment.EnrichAll(ctx, listings)

	judgmentScores, err := s.judgment.Score(ctx, prefs, listings, enrichments)
	if err != nil {
		return nil, err
	}

	var regressionScores []float64
	if s.regressionEnabled {
		features := BuildFeatureRows(listings, enrichments)
		regressionScores = s.regression.FitPredict(features, judgmentScores)
	}

	ruleScores := make([]float64, len(listings))
	reasons := make([][]string, len(listings))
	for i, listing := range listings {
		ruleScores[i], reasons[i] = s.ruler.Score(listing, enrichments[i], prefs)
	}

	records := s.combiner.Combine(listings, enrichments, ComponentScores{
		Judgment:   judgmentScores,
		Regression: regressionScores,
		Rule:       ruleScores,
		Reasons:    reasons,
	})

	result := &RecommendResult{
		Records:     records,
		Preferences: prefs,
		Candidates:  len(listings),
	}
	if input.BuyerID != "" {
		result.Persisted = s.persistScores(ctx, input.BuyerID, records)
		if result.Persisted {
			s.publishScoredEvent(ctx, input.BuyerID, records)
		}
	}
	return result, nil
}

// publishScoredEvent is best effort; consumers poll the tracking store if
// the bus is unavailable.
func (s *RecommendationService) publishScoredEvent(ctx context.Context, buyerID string, records []*entities.ScoreRecord) {
	if s.eventBus == nil || len(records) == 0 {
		return
	}

	listingIDs := make([]string, len(records))
	for i, rec := range records {
		listingIDs[i] = rec.ListingID
	}
	event := &entities.RecommendationEvent{
		ID:         uuid.NewString(),
		BuyerID:    buyerID,
		ListingIDs: listingIDs,
		TopScore:   records[0].HybridScore,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.eventBus.Publish(ctx, entities.RecommendationEventChannel, event); err != nil {
		log.Warn().Err(err).Str("buyer_id", buyerID).Msg("failed to publish scored event")
	}
}

func (s *RecommendationService) resolvePreferences(ctx context.Context, input RecommendInput) (*entities.Preferences, error) {
	var prefs *entities.Preferences
	switch {
	case input.Preferences != nil:
		prefs = input.Preferences
	case input.PreferencesText != "":
		extracted, err := s.extractor.ExtractPreferences(ctx, input.PreferencesText)
		if err != nil {
			return nil, err
		}
		prefs = extracted
	default:
		return nil, apperrors.NewValidationError("either preferences or preferences_text is required")
	}

	prefs.Normalize()
	if len(input.PreferredAreas) > 0 {
		prefs.PreferredAreas = input.PreferredAreas
	}
	return prefs, nil
}

// persistScores upserts with retries but never fails the request; scoring
// output is still returned when the tracking store is down.
func (s *RecommendationService) persistScores(ctx context.Context, buyerID string, records []*entities.ScoreRecord) bool {
	err := retry.Do(ctx, retry.DefaultConfig(), func() error {
		return s.scores.UpsertScores(ctx, buyerID, records)
	})
	if err != nil {
		log.Error().Err(err).Str("buyer_id", buyerID).Int("records", len(records)).Msg("failed to persist scores")
		return false
	}
	return true
}

func buildFilters(prefs *entities.Preferences) repositories.ListingFilters {
	filters := repositories.ListingFilters{
		PreferredAreas: prefs.PreferredAreas,
		MinBeds:        prefs.MinBeds,
		MinBaths:       prefs.MinBaths,
		PropertyTypes:  prefs.PropertyTypes,
	}
	if prefs.BudgetMin > 0 {
		filters.MinPrice = prefs.BudgetMin
	}
	if prefs.BudgetMax > 0 && prefs.BudgetMax < entities.UnboundedBudget {
		filters.MaxPrice = prefs.BudgetMax
	}
	return filters
}
