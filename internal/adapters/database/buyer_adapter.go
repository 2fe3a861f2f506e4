package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/doug-martin/goqu/v9"

	"github.com/homematch-ai/recommender/internal/domain/repositories"
	"github.com/homematch-ai/recommender/internal/infrastructure/clients/postgres"
	apperrors "github.com/homematch-ai/recommender/pkg/errors"
)

// BuyerAdapter implements the BuyerRepository interface
type BuyerAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewBuyerAdapter creates a new buyer adapter
func NewBuyerAdapter(client *postgres.Client) repositories.BuyerRepository {
	return &BuyerAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// ContactPhone returns the buyer's notification phone number. An unknown
// buyer or a buyer who opted out yields an empty string, not an error.
func (a *BuyerAdapter) ContactPhone(ctx context.Context, buyerID string) (string, error) {
	query, args, err := a.db.From("buyers").
		Select("phone").
		Where(goqu.Ex{"id": buyerID, "notifications_enabled": true}).
		ToSQL()
	if err != nil {
		return "", apperrors.NewInternalError("failed to build buyer query", err)
	}

	var phone sql.NullString
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(&phone)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", apperrors.NewInternalError("failed to fetch buyer phone", err)
	}
	return phone.String, nil
}
