package database_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homematch-ai/recommender/internal/adapters/database"
	"github.com/homematch-ai/recommender/internal/domain/repositories"
	"github.com/homematch-ai/recommender/internal/infrastructure/clients/postgres"
)

func newBuyerAdapter(t *testing.T) (repositories.BuyerRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return database.NewBuyerAdapter(postgres.NewClientWithDB(db)), mock
}

func TestContactPhone(t *testing.T) {
	adapter, mock := newBuyerAdapter(t)

	mock.ExpectQuery(`SELECT "phone" FROM "buyers"`).
		WillReturnRows(sqlmock.NewRows([]string{"phone"}).AddRow("+14155550100"))

	phone, err := adapter.ContactPhone(context.Background(), "buyer-1")

	require.NoError(t, err)
	assert.Equal(t, "+14155550100", phone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContactPhone_UnknownBuyer(t *testing.T) {
	adapter, mock := newBuyerAdapter(t)

	mock.ExpectQuery(`SELECT "phone" FROM "buyers"`).
		WillReturnError(sql.ErrNoRows)

	phone, err := adapter.ContactPhone(context.Background(), "missing")

	require.NoError(t, err, "an unknown or opted-out buyer is not an error")
	assert.Empty(t, phone)
}
