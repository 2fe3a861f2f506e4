package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/homematch-ai/recommender/internal/domain/entities"
	"github.com/homematch-ai/recommender/internal/domain/providers"
)

const defaultPlacesMaxResults = 8

// poiCategorySpec fixes the place types and search radius for a category.
type poiCategorySpec struct {
	includedTypes []string
	radiusMiles   float64
}

var poiCategories = map[string]poiCategorySpec{
	entities.POISchool:      {includedTypes: []string{"school"}, radiusMiles: 2.0},
	entities.POISupermarket: {includedTypes: []string{"supermarket", "grocery_store"}, radiusMiles: 2.0},
	entities.POIPark:        {includedTypes: []string{"park"}, radiusMiles: 1.2},
	entities.POITransit:     {includedTypes: []string{"transit_station", "subway_station", "train_station"}, radiusMiles: 1.0},
}

// poiCategoryOrder keeps enrichment output deterministic.
var poiCategoryOrder = []string{
	entities.POISchool,
	entities.POISupermarket,
	entities.POIPark,
	entities.POITransit,
}

// ProximityEnricher converts resolved coordinates into per-category minimum
// POI distances and counts using the places collaborator.
type ProximityEnricher struct {
	places     providers.PlacesProvider
	maxResults int
}

// NewProximityEnricher creates a new proximity enricher
func NewProximityEnricher(places providers.PlacesProvider, maxResults int) *ProximityEnricher {
	if maxResults <= 0 {
		maxResults = defaultPlacesMaxResults
	}
	return &ProximityEnricher{
		places:     places,
		maxResults: maxResults,
	}
}

// Enrich queries each POI category around the given point. A failed lookup
// degrades that category to unknown (nil distance, zero count); it is never
// an error. Counts reflect the raw number of returned places, not the
// subset with usable coordinates.
func (e *ProximityEnricher) Enrich(ctx context.Context, lat, lon float64) (map[string]*float64, map[string]int) {
	minMiles := make(map[string]*float64, len(poiCategoryOrder))
	counts := make(map[string]int, len(poiCategoryOrder))

	for _, category := range poiCategoryOrder {
		spec := poiCategories[category]

		found, err := e.places.NearbyPlaces(ctx, lat, lon, spec.includedTypes, spec.radiusMiles, e.maxResults)
		if err != nil {
			log.Warn().Err(err).Str("category", category).Msg("places lookup failed, skipping category")
			minMiles[category] = nil
			counts[category] = 0
			continue
		}

		var closest *float64
		for _, place := range found {
			if place.Coordinates == nil {
				continue
			}
			distance := haversineMiles(lat, lon, place.Coordinates.Latitude, place.Coordinates.Longitude)
			if closest == nil || distance < *closest {
				d := distance
				closest = &d
			}
		}

		minMiles[category] = closest
		counts[category] = len(found)
	}

	return minMiles, counts
}
