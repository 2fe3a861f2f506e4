package repositories

import (
	"context"

	"github.com/homematch-ai/recommender/internal/domain/entities"
)

// ListingFilters narrows the candidate listing fetch. Zero values mean
// "no constraint".
type ListingFilters struct {
	PreferredAreas []string
	MinPrice       int
	MaxPrice       int
	MinBeds        int
	MinBaths       float64
	PropertyTypes  []string
}

// ListingRepository fetches candidate listings for scoring.
//
// FetchListings applies the area filter at city granularity first; if that
// yields zero rows the repository retries without it, since preferred areas
// may name neighborhoods rather than cities. Callers treat both shapes
// identically.
type ListingRepository interface {
	FetchListings(ctx context.Context, filters ListingFilters, excludedIDs []string, limit int) ([]*entities.Listing, error)

	// SeenListingIDs returns the listings a buyer has already interacted
	// with, so a new recommendation run can exclude them.
	SeenListingIDs(ctx context.Context, buyerID string) ([]string, error)
}
