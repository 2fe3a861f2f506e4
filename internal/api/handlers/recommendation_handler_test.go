package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homematch-ai/recommender/internal/api/handlers"
	"github.com/homematch-ai/recommender/internal/application/services"
	"github.com/homematch-ai/recommender/internal/domain/entities"
	"github.com/homematch-ai/recommender/internal/domain/repositories"
)

type fakeListingRepo struct {
	listings []*entities.Listing
}

func (r *fakeListingRepo) FetchListings(_ context.Context, _ repositories.ListingFilters, _ []string, _ int) ([]*entities.Listing, error) {
	return r.listings, nil
}

func (r *fakeListingRepo) SeenListingIDs(_ context.Context, _ string) ([]string, error) {
	return nil, nil
}

type fakeScoreRepo struct {
	records []*entities.ScoreRecord
	err     error
}

func (r *fakeScoreRepo) UpsertScores(_ context.Context, _ string, _ []*entities.ScoreRecord) error {
	return nil
}

func (r *fakeScoreRepo) ScoresForBuyer(_ context.Context, _ string, _ int) ([]*entities.ScoreRecord, error) {
	return r.records, r.err
}

type fakeJudgment struct{}

func (fakeJudgment) ScoreListings(_ context.Context, _ string, summaries []string) (map[int]float64, error) {
	scores := make(map[int]float64, len(summaries))
	for i := range summaries {
		scores[i] = 75
	}
	return scores, nil
}

type fakeExtractor struct{}

func (fakeExtractor) ExtractPreferences(_ context.Context, _ string) (*entities.Preferences, error) {
	return entities.NewPreferences(), nil
}

func newHandler(listings []*entities.Listing, scores *fakeScoreRepo) *handlers.RecommendationHandler {
	resolver := services.NewCoordinateResolver(nil, nil, false, 0, nil)
	enrichment := services.NewEnrichmentService(resolver, nil, nil, nil, 2)
	service := services.NewRecommendationService(
		&fakeListingRepo{listings: listings},
		scores,
		fakeExtractor{},
		enrichment,
		services.NewJudgmentScorer(fakeJudgment{}),
		services.NewRidgeRegression(1.0),
		false,
	)
	return handlers.NewRecommendationHandler(service, scores)
}

func TestRecommend_Success(t *testing.T) {
	listings := []*entities.Listing{{
		ID:         "l1",
		Address:    "456 Valencia St",
		City:       "San Francisco",
		Price:      950_000,
		Bedrooms:   2,
		Bathrooms:  1,
		LivingArea: 1100,
	}}
	handler := newHandler(listings, &fakeScoreRepo{})

	body := `{"preferences": {"budget_max": 1000000, "min_beds": 2}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Recommend(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result services.RecommendResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	require.Len(t, result.Records, 1)
	assert.Equal(t, "l1", result.Records[0].ListingID)
	assert.Equal(t, 1, result.Candidates)
}

func TestRecommend_InvalidBody(t *testing.T) {
	handler := newHandler(nil, &fakeScoreRepo{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	handler.Recommend(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecommend_MissingPreferencesIs400WithMessage(t *testing.T) {
	handler := newHandler(nil, &fakeScoreRepo{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", strings.NewReader(`{"buyer_id":"b1"}`))
	rec := httptest.NewRecorder()

	handler.Recommend(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var payload map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&payload))
	assert.Contains(t, payload["error"], "preferences")
}

func TestBuyerRecommendations_ReturnsPersistedScores(t *testing.T) {
	scores := &fakeScoreRepo{records: []*entities.ScoreRecord{
		{ListingID: "l1", HybridScore: 91.5},
		{ListingID: "l2", HybridScore: 88.0},
	}}
	handler := newHandler(nil, scores)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/buyers/b1/recommendations", nil)
	req.SetPathValue("id", "b1")
	rec := httptest.NewRecorder()

	handler.BuyerRecommendations(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		BuyerID         string                  `json:"buyer_id"`
		Recommendations []*entities.ScoreRecord `json:"recommendations"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&payload))
	assert.Equal(t, "b1", payload.BuyerID)
	require.Len(t, payload.Recommendations, 2)
	assert.Equal(t, 91.5, payload.Recommendations[0].HybridScore)
}

func TestBuyerRecommendations_EmptyIsNotAnError(t *testing.T) {
	handler := newHandler(nil, &fakeScoreRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/buyers/b1/recommendations", nil)
	req.SetPathValue("id", "b1")
	rec := httptest.NewRecorder()

	handler.BuyerRecommendations(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"recommendations":[]`)
}

func TestBuyerRecommendations_InvalidLimit(t *testing.T) {
	handler := newHandler(nil, &fakeScoreRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/buyers/b1/recommendations?limit=zero", nil)
	req.SetPathValue("id", "b1")
	rec := httptest.NewRecorder()

	handler.BuyerRecommendations(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBuyerRecommendations_StoreFailure(t *testing.T) {
	handler := newHandler(nil, &fakeScoreRepo{err: errors.New("connection refused")})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/buyers/b1/recommendations", nil)
	req.SetPathValue("id", "b1")
	rec := httptest.NewRecorder()

	handler.BuyerRecommendations(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
