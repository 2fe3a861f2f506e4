package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/homematch-ai/recommender/internal/domain/entities"
	"github.com/homematch-ai/recommender/internal/domain/providers"
)

// riskScaleFactor converts the service's native 0-10 scale to 0-100.
const riskScaleFactor = 10

// RiskService obtains an external quality/risk score for eligible listings.
// Absence of a score is an expected outcome, not an error: it simply shifts
// the combiner to the no-risk weight profile.
type RiskService struct {
	provider        providers.RiskProvider
	resolver        *CoordinateResolver
	enabled         bool
	supportedCities map[string]struct{}
}

// NewRiskService creates a new risk service
func NewRiskService(provider providers.RiskProvider, resolver *CoordinateResolver, enabled bool, supportedCities []string) *RiskService {
	cities := make(map[string]struct{}, len(supportedCities))
	for _, city := range supportedCities {
		cities[city] = struct{}{}
	}
	return &RiskService{
		provider:        provider,
		resolver:        resolver,
		enabled:         enabled,
		supportedCities: cities,
	}
}

// Assess returns the listing's risk assessment on a 0-100 scale, or nil
// when the listing is ineligible or the service is unavailable.
//
// A score cached on the listing record from a previous run short-circuits
// the coverage gates and the service call entirely.
func (s *RiskService) Assess(ctx context.Context, listing *entities.Listing) *entities.RiskAssessment {
	if cached := cachedRiskAssessment(listing); cached != nil {
		log.Debug().Str("listing_id", listing.ID).Float64("score", cached.Score).Msg("using cached risk score")
		return cached
	}

	if !s.enabled || s.provider == nil {
		return nil
	}
	if _, ok := s.supportedCities[listing.City]; !ok {
		return nil
	}

	coords, ok := s.resolver.Resolve(ctx, listing)
	if !ok {
		log.Debug().Str("listing_id", listing.ID).Msg("skipping risk score, no coordinates")
		return nil
	}

	result, err := s.provider.Score(ctx, listing.ID, listing.City, coords.Latitude, coords.Longitude)
	if err != nil {
		log.Warn().Err(err).Str("listing_id", listing.ID).Msg("risk service call failed")
		return nil
	}
	if result == nil {
		log.Debug().Str("listing_id", listing.ID).Msg("listing outside risk service coverage")
		return nil
	}

	return &entities.RiskAssessment{
		Score:     clampScore(result.Total * riskScaleFactor),
		Subscores: result.Subscores,
	}
}

// cachedRiskAssessment reads a previous run's persisted risk columns off the
// listing's raw record. The cached total is on the native 0-10 scale.
func cachedRiskAssessment(listing *entities.Listing) *entities.RiskAssessment {
	total, ok := asFloat(listing.Raw["risk_score"])
	if !ok {
		return nil
	}

	assessment := &entities.RiskAssessment{
		Score:  clampScore(total * riskScaleFactor),
		Cached: true,
	}

	if rawSubscores, ok := listing.Raw["risk_subscores"].(map[string]any); ok {
		subscores := make(map[string]float64, len(rawSubscores))
		for name, value := range rawSubscores {
			if f, ok := asFloat(value); ok {
				subscores[name] = f
			}
		}
		if len(subscores) > 0 {
			assessment.Subscores = subscores
		}
	}

	return assessment
}
