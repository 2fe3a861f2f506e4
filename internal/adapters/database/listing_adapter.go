package database

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/rs/zerolog/log"

	"github.com/homematch-ai/recommender/internal/domain/entities"
	"github.com/homematch-ai/recommender/internal/domain/repositories"
	"github.com/homematch-ai/recommender/internal/infrastructure/clients/postgres"
	apperrors "github.com/homematch-ai/recommender/pkg/errors"
)

// listingColumns are the columns selected for scoring, including the cached
// risk-score columns persisted by previous runs.
var listingColumns = []interface{}{
	"id", "address", "city", "state", "zip_code", "coordinates",
	"listing_price", "bedrooms", "bathrooms", "square_feet", "lot_size",
	"property_type", "year_built", "description", "schools",
	"zillow_property_id", "data_source",
	"risk_score", "risk_env_risk", "risk_regulatory_friction",
	"risk_expandability", "risk_reno_recency", "risk_nuisance",
}

// ListingAdapter implements the ListingRepository interface
type ListingAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewListingAdapter creates a new listing adapter
func NewListingAdapter(client *postgres.Client) repositories.ListingRepository {
	return &ListingAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// FetchListings retrieves candidate listings matching the filters. When the
// preferred-area filter matches no rows, the query is retried without it:
// the areas the buyer named may be neighborhoods rather than cities.
func (a *ListingAdapter) FetchListings(ctx context.Context, filters repositories.ListingFilters, excludedIDs []string, limit int) ([]*entities.Listing, error) {
	listings, err := a.fetch(ctx, filters, excludedIDs, limit, true)
	if err != nil {
		return nil, err
	}

	if len(listings) == 0 && len(filters.PreferredAreas) > 0 {
		log.Debug().
			Strs("preferred_areas", filters.PreferredAreas).
			Msg("no listings matched preferred areas as cities, retrying without area filter")
		return a.fetch(ctx, filters, excludedIDs, limit, false)
	}

	return listings, nil
}

func (a *ListingAdapter) fetch(ctx context.Context, filters repositories.ListingFilters, excludedIDs []string, limit int, useAreaFilter bool) ([]*entities.Listing, error) {
	ds := a.db.From("listings").Select(listingColumns...)

	if len(excludedIDs) > 0 {
		ds = ds.Where(goqu.C("id").NotIn(excludedIDs))
	}
	if filters.MinPrice > 0 {
		ds = ds.Where(goqu.C("listing_price").Gte(filters.MinPrice))
	}
	if filters.MaxPrice > 0 && filters.MaxPrice < entities.UnboundedBudget {
		ds = ds.Where(goqu.C("listing_price").Lte(filters.MaxPrice))
	}
	if filters.MinBeds > 0 {
		ds = ds.Where(goqu.C("bedrooms").Gte(filters.MinBeds))
	}
	if filters.MinBaths > 0 {
		ds = ds.Where(goqu.C("bathrooms").Gte(filters.MinBaths))
	}
	// Property types are deliberately not filtered here: an extracted type
	// like "Single Family" inferred from "house" would silently drop condos
	// the buyer might accept. The scoring stage weighs type preference.
	if useAreaFilter && len(filters.PreferredAreas) > 0 {
		ds = ds.Where(goqu.C("city").In(filters.PreferredAreas))
	}
	if limit > 0 {
		ds = ds.Limit(uint(limit))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build listing query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to fetch listings", err)
	}
	defer rows.Close()

	var listings []*entities.Listing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, listing)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate listings", err)
	}

	return listings, nil
}

// SeenListingIDs returns the listings a buyer has already interacted with
func (a *ListingAdapter) SeenListingIDs(ctx context.Context, buyerID string) ([]string, error) {
	query, args, err := a.db.From("buyer_listings").
		Select("listing_id").
		Where(goqu.C("buyer_id").Eq(buyerID)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build seen-listings query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to fetch seen listings", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperrors.NewInternalError("failed to scan seen listing id", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanListing(row rowScanner) (*entities.Listing, error) {
	var (
		listing        entities.Listing
		zipCode        sql.NullString
		coordsJSON     []byte
		price          sql.NullInt64
		bedrooms       sql.NullInt64
		bathrooms      sql.NullFloat64
		sqft           sql.NullInt64
		lotSize        sql.NullFloat64
		propertyType   sql.NullString
		yearBuilt      sql.NullInt64
		description    sql.NullString
		schoolsJSON    []byte
		zpid           sql.NullString
		dataSource     sql.NullString
		riskScore      sql.NullFloat64
		riskEnv        sql.NullFloat64
		riskRegulatory sql.NullFloat64
		riskExpand     sql.NullFloat64
		riskReno       sql.NullFloat64
		riskNuisance   sql.NullFloat64
	)

	err := row.Scan(
		&listing.ID, &listing.Address, &listing.City, &listing.State, &zipCode, &coordsJSON,
		&price, &bedrooms, &bathrooms, &sqft, &lotSize,
		&propertyType, &yearBuilt, &description, &schoolsJSON,
		&zpid, &dataSource,
		&riskScore, &riskEnv, &riskRegulatory, &riskExpand, &riskReno, &riskNuisance,
	)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to scan listing", err)
	}

	listing.ZipCode = zipCode.String
	listing.Price = price.Int64
	listing.Bedrooms = int(bedrooms.Int64)
	listing.Bathrooms = bathrooms.Float64
	listing.LivingArea = int(sqft.Int64)
	listing.LotSize = lotSize.Float64
	listing.PropertyType = propertyType.String
	listing.YearBuilt = int(yearBuilt.Int64)
	listing.Description = description.String
	listing.ZPID = zpid.String
	listing.DataSource = dataSource.String
	listing.Schools = []entities.SchoolRecord{}
	listing.Raw = map[string]any{}

	if len(coordsJSON) > 0 {
		var coords struct {
			Lat *float64 `json:"lat"`
			Lng *float64 `json:"lng"`
		}
		if err := json.Unmarshal(coordsJSON, &coords); err == nil {
			listing.Latitude = coords.Lat
			listing.Longitude = coords.Lng
			listing.Raw["coordinates"] = map[string]any{"lat": coords.Lat, "lng": coords.Lng}
		}
	}

	if len(schoolsJSON) > 0 {
		var schools []entities.SchoolRecord
		if err := json.Unmarshal(schoolsJSON, &schools); err == nil {
			listing.Schools = schools
		}
	}

	if riskScore.Valid {
		listing.Raw["risk_score"] = riskScore.Float64
		subscores := map[string]any{}
		for name, value := range map[string]sql.NullFloat64{
			"env_risk":            riskEnv,
			"regulatory_friction": riskRegulatory,
			"expandability":       riskExpand,
			"reno_recency":        riskReno,
			"nuisance":            riskNuisance,
		} {
			if value.Valid {
				subscores[name] = value.Float64
			}
		}
		listing.Raw["risk_subscores"] = subscores
	}

	return &listing, nil
}
