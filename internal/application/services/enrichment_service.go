package services

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/homematch-ai/recommender/internal/domain/entities"
	"github.com/homematch-ai/recommender/internal/infrastructure/observability"
)

const defaultEnrichmentWorkers = 8

// EnrichmentService runs all per-listing enrichment (school aggregation,
// coordinate resolution, POI proximity, external risk) over a candidate
// batch with bounded concurrency. Each listing's enrichment is independent
// and failure-isolated: a degraded signal never aborts the batch.
type EnrichmentService struct {
	resolver  *CoordinateResolver
	proximity *ProximityEnricher
	risk      *RiskService
	metrics   *observability.Metrics
	workers   int
}

// NewEnrichmentService creates a new enrichment service. proximity, risk
// and metrics may be nil when the corresponding collaborator is not
// configured.
func NewEnrichmentService(resolver *CoordinateResolver, proximity *ProximityEnricher, risk *RiskService, metrics *observability.Metrics, workers int) *EnrichmentService {
	if workers <= 0 {
		workers = defaultEnrichmentWorkers
	}
	return &EnrichmentService{
		resolver:  resolver,
		proximity: proximity,
		risk:      risk,
		metrics:   metrics,
		workers:   workers,
	}
}

// EnrichAll returns one enrichment patch per listing, index-aligned with
// the input. Workers write to distinct indices, so no locking is needed on
// the result slice.
func (s *EnrichmentService) EnrichAll(ctx context.Context, listings []*entities.Listing) []*entities.Enrichment {
	enrichments := make([]*entities.Enrichment, len(listings))
	if len(listings) == 0 {
		return enrichments
	}

	indexes := make(chan int)
	var wg sync.WaitGroup

	workers := s.workers
	if workers > len(listings) {
		workers = len(listings)
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexes {
				enrichments[idx] = s.enrichOne(ctx, listings[idx])
			}
		}()
	}

	for idx := range listings {
		select {
		case indexes <- idx:
		case <-ctx.Done():
			close(indexes)
			wg.Wait()
			// Listings not reached get an empty patch so downstream
			// iteration stays total.
			for i, enr := range enrichments {
				if enr == nil {
					enrichments[i] = entities.NewEnrichment()
				}
			}
			return enrichments
		}
	}

	close(indexes)
	wg.Wait()
	return enrichments
}

func (s *EnrichmentService) enrichOne(ctx context.Context, listing *entities.Listing) *entities.Enrichment {
	start := time.Now()
	enrichment := entities.NewEnrichment()

	enrichment.AvgSchoolRating, enrichment.ClosestSchoolMiles = AggregateSchools(listing.Schools)

	if s.proximity != nil {
		if coords, ok := s.resolver.Resolve(ctx, listing); ok {
			enrichment.POIMinMiles, enrichment.POICounts = s.proximity.Enrich(ctx, coords.Latitude, coords.Longitude)
		} else {
			log.Debug().Str("listing_id", listing.ID).Msg("skipping proximity enrichment, no coordinates")
			if s.metrics != nil {
				observability.RecordEnrichmentFailure(ctx, s.metrics, "proximity")
			}
		}
	}

	if s.risk != nil {
		enrichment.Risk = s.risk.Assess(ctx, listing)
	}

	if s.metrics != nil {
		observability.RecordEnrichmentMetric(ctx, s.metrics, "listing", time.Since(start))
	}
	return enrichment
}
