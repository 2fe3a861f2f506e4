package repositories

import (
	"context"

	"github.com/homematch-ai/recommender/internal/domain/entities"
)

// ScoreRepository persists scored recommendations for a buyer. The upsert is
// keyed by (buyer_id, listing_id) and is idempotent on retry.
type ScoreRepository interface {
	UpsertScores(ctx context.Context, buyerID string, records []*entities.ScoreRecord) error
	// ScoresForBuyer returns the buyer's active persisted scores, highest
	// hybrid score first.
	ScoresForBuyer(ctx context.Context, buyerID string, limit int) ([]*entities.ScoreRecord, error)
}
