package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homematch-ai/recommender/internal/application/services"
	"github.com/homematch-ai/recommender/internal/domain/entities"
	"github.com/homematch-ai/recommender/internal/domain/providers"
)

type stubPlaces struct {
	byType map[string][]providers.Place
	err    error
}

func (p *stubPlaces) NearbyPlaces(_ context.Context, _, _ float64, includedTypes []string, _ float64, _ int) ([]providers.Place, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.byType[includedTypes[0]], nil
}

func TestProximityEnricher_MinDistancePerCategory(t *testing.T) {
	// Two schools roughly 0.35 and 0.7 miles north of the origin.
	places := &stubPlaces{byType: map[string][]providers.Place{
		"school": {
			{ID: "s1", Coordinates: &providers.Coordinates{Latitude: 37.765, Longitude: -122.41}},
			{ID: "s2", Coordinates: &providers.Coordinates{Latitude: 37.770, Longitude: -122.41}},
		},
	}}
	enricher := services.NewProximityEnricher(places, 8)

	minMiles, counts := enricher.Enrich(context.Background(), 37.760, -122.41)

	require.NotNil(t, minMiles[entities.POISchool])
	assert.InDelta(t, 0.345, *minMiles[entities.POISchool], 0.02)
	assert.Equal(t, 2, counts[entities.POISchool])
}

func TestProximityEnricher_LookupFailureDegradesCategory(t *testing.T) {
	enricher := services.NewProximityEnricher(&stubPlaces{err: errors.New("quota exceeded")}, 8)

	minMiles, counts := enricher.Enrich(context.Background(), 37.76, -122.41)

	for _, category := range []string{entities.POISchool, entities.POISupermarket, entities.POIPark, entities.POITransit} {
		assert.Nil(t, minMiles[category])
		assert.Zero(t, counts[category])
	}
}

func TestProximityEnricher_PlacesWithoutCoordinatesStillCounted(t *testing.T) {
	places := &stubPlaces{byType: map[string][]providers.Place{
		"park": {
			{ID: "p1"},
			{ID: "p2"},
		},
	}}
	enricher := services.NewProximityEnricher(places, 8)

	minMiles, counts := enricher.Enrich(context.Background(), 37.76, -122.41)

	assert.Nil(t, minMiles[entities.POIPark])
	assert.Equal(t, 2, counts[entities.POIPark])
}

func TestProximityEnricher_AllCategoriesPresent(t *testing.T) {
	enricher := services.NewProximityEnricher(&stubPlaces{byType: map[string][]providers.Place{}}, 8)

	minMiles, counts := enricher.Enrich(context.Background(), 37.76, -122.41)

	assert.Len(t, minMiles, 4)
	assert.Len(t, counts, 4)
}
