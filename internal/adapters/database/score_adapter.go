package database

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/homematch-ai/recommender/internal/domain/entities"
	"github.com/homematch-ai/recommender/internal/domain/repositories"
	"github.com/homematch-ai/recommender/internal/infrastructure/clients/postgres"
	apperrors "github.com/homematch-ai/recommender/pkg/errors"
)

// ScoreAdapter implements the ScoreRepository interface
type ScoreAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewScoreAdapter creates a new score adapter
func NewScoreAdapter(client *postgres.Client) repositories.ScoreRepository {
	return &ScoreAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// UpsertScores persists scored recommendations, keyed by (buyer_id,
// listing_id) so the write is idempotent on retry. A single failed row is
// logged and skipped rather than aborting the batch.
func (a *ScoreAdapter) UpsertScores(ctx context.Context, buyerID string, records []*entities.ScoreRecord) error {
	if buyerID == "" {
		return apperrors.NewValidationError("buyer id is required")
	}

	now := time.Now().UTC()
	var failures int

	for _, rec := range records {
		record := goqu.Record{
			"id":               uuid.NewString(),
			"buyer_id":         buyerID,
			"listing_id":       rec.ListingID,
			"hybrid_score":     rec.HybridScore,
			"judgment_score":   rec.JudgmentScore,
			"regression_score": rec.RegressionScore,
			"rule_score":       rec.RuleScore,
			"match_summary":    rec.ReasonSummary(),
			"is_active":        true,
			"created_at":       now,
			"updated_at":       now,
		}

		update := goqu.Record{
			"hybrid_score":     rec.HybridScore,
			"judgment_score":   rec.JudgmentScore,
			"regression_score": rec.RegressionScore,
			"rule_score":       rec.RuleScore,
			"match_summary":    rec.ReasonSummary(),
			"is_active":        true,
			"updated_at":       now,
		}

		if rec.RiskScore != nil {
			record["risk_score"] = *rec.RiskScore
			update["risk_score"] = *rec.RiskScore
			record["risk_scored_at"] = now
			update["risk_scored_at"] = now
			for name, value := range rec.RiskSubscores {
				col := "risk_" + name
				record[col] = value
				update[col] = value
			}
		}

		query, args, err := a.db.Insert("buyer_listings").
			Rows(record).
			OnConflict(goqu.DoUpdate("buyer_id, listing_id", update)).
			ToSQL()
		if err != nil {
			return apperrors.NewInternalError("failed to build score upsert", err)
		}

		if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
			failures++
			log.Warn().Err(err).
				Str("buyer_id", buyerID).
				Str("listing_id", rec.ListingID).
				Msg("failed to persist score record")
		}
	}

	if failures == len(records) && len(records) > 0 {
		return apperrors.NewInternalError("all score upserts failed", nil)
	}
	return nil
}

// ScoresForBuyer reads back the buyer's active persisted scores joined to
// their listings, highest hybrid score first.
func (a *ScoreAdapter) ScoresForBuyer(ctx context.Context, buyerID string, limit int) ([]*entities.ScoreRecord, error) {
	if buyerID == "" {
		return nil, apperrors.NewValidationError("buyer id is required")
	}
	if limit <= 0 {
		limit = 50
	}

	query, args, err := a.db.From(goqu.T("buyer_listings").As("bl")).
		Join(goqu.T("listings").As("l"), goqu.On(goqu.Ex{"bl.listing_id": goqu.I("l.id")})).
		Select(
			"bl.listing_id", "l.zillow_property_id", "l.address", "l.city", "l.state",
			"l.listing_price", "l.bedrooms", "l.bathrooms", "l.square_feet",
			"l.lot_size", "l.property_type", "l.year_built",
			"bl.hybrid_score", "bl.judgment_score", "bl.regression_score",
			"bl.rule_score", "bl.risk_score", "bl.match_summary",
		).
		Where(goqu.Ex{"bl.buyer_id": buyerID, "bl.is_active": true}).
		Order(goqu.I("bl.hybrid_score").Desc()).
		Limit(uint(limit)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build score query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query buyer scores", err)
	}
	defer rows.Close()

	var records []*entities.ScoreRecord
	for rows.Next() {
		rec := &entities.ScoreRecord{}
		var (
			zpid, address, city, state, propertyType sql.NullString
			price                                    sql.NullInt64
			bedrooms, sqft, yearBuilt                sql.NullInt64
			bathrooms, lotSize                       sql.NullFloat64
			riskScore                                sql.NullFloat64
			matchSummary                             sql.NullString
		)
		if err := rows.Scan(
			&rec.ListingID, &zpid, &address, &city, &state,
			&price, &bedrooms, &bathrooms, &sqft,
			&lotSize, &propertyType, &yearBuilt,
			&rec.HybridScore, &rec.JudgmentScore, &rec.RegressionScore,
			&rec.RuleScore, &riskScore, &matchSummary,
		); err != nil {
			return nil, apperrors.NewInternalError("failed to scan score row", err)
		}
		rec.ZPID = zpid.String
		rec.Address = address.String
		rec.City = city.String
		rec.State = state.String
		rec.Price = price.Int64
		rec.Bedrooms = int(bedrooms.Int64)
		rec.Bathrooms = bathrooms.Float64
		rec.Sqft = int(sqft.Int64)
		rec.LotSize = lotSize.Float64
		rec.PropertyType = propertyType.String
		rec.YearBuilt = int(yearBuilt.Int64)
		if riskScore.Valid {
			rec.RiskScore = &riskScore.Float64
		}
		if matchSummary.String != "" {
			rec.MatchReasons = strings.Split(matchSummary.String, "; ")
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read score rows", err)
	}
	return records, nil
}
