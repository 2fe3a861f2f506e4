package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homematch-ai/recommender/internal/application/services"
	"github.com/homematch-ai/recommender/internal/domain/entities"
)

func TestBuildFeatureRows(t *testing.T) {
	listings := []*entities.Listing{
		{Price: 1_000_000, Bedrooms: 3, Bathrooms: 2, LivingArea: 2000, LotSize: 3000, YearBuilt: 1950},
		{Price: 500_000, Bedrooms: 2, Bathrooms: 1, LivingArea: 0, LotSize: 0, YearBuilt: 0},
	}
	enrichments := []*entities.Enrichment{
		{AvgSchoolRating: 8},
		nil,
	}

	rows := services.BuildFeatureRows(listings, enrichments)

	require.Len(t, rows, 2)
	require.Len(t, rows[0], 8)
	assert.Equal(t, 1_000_000.0, rows[0][0])
	assert.Equal(t, 8.0, rows[0][6])
	assert.Equal(t, 500.0, rows[0][7]) // price per sqft
	// zero living area must not divide by zero
	assert.Equal(t, 0.0, rows[1][7])
	assert.Equal(t, 0.0, rows[1][6])
}

func TestRidgeRegression_DegenerateBatchFallsBack(t *testing.T) {
	reg := services.NewRidgeRegression(1.0)

	targets := []float64{73}
	preds := reg.FitPredict([][]float64{{1, 2, 3, 4, 5, 6, 7, 8}}, targets)

	assert.Equal(t, targets, preds)
}

func TestRidgeRegression_IdenticalRowsPredictMean(t *testing.T) {
	reg := services.NewRidgeRegression(1.0)

	// all feature columns have zero variance, so predictions collapse to
	// the target mean
	features := [][]float64{
		{1, 2, 3, 4, 5, 6, 7, 8},
		{1, 2, 3, 4, 5, 6, 7, 8},
		{1, 2, 3, 4, 5, 6, 7, 8},
	}
	targets := []float64{40, 50, 60}

	preds := reg.FitPredict(features, targets)

	require.Len(t, preds, 3)
	for _, p := range preds {
		assert.InDelta(t, 50.0, p, 0.001)
	}
}

func TestRidgeRegression_PredictionsClipped(t *testing.T) {
	reg := services.NewRidgeRegression(0.001)

	// strong linear signal; unregularised extrapolation could leave bounds
	features := make([][]float64, 6)
	targets := make([]float64, 6)
	for i := range features {
		v := float64(i)
		features[i] = []float64{v, v, v, v, v, v, v, v}
		targets[i] = v * 30
	}

	preds := reg.FitPredict(features, targets)

	for _, p := range preds {
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 100.0)
	}
}

func TestRidgeRegression_SmoothsTowardTrend(t *testing.T) {
	reg := services.NewRidgeRegression(1.0)

	features := [][]float64{
		{100, 1, 1, 10, 1, 1, 1, 10},
		{200, 2, 2, 20, 2, 2, 2, 20},
		{300, 3, 3, 30, 3, 3, 3, 30},
		{400, 4, 4, 40, 4, 4, 4, 40},
	}
	targets := []float64{20, 40, 60, 80}

	preds := reg.FitPredict(features, targets)

	require.Len(t, preds, 4)
	// monotone targets over monotone features stay ordered
	for i := 1; i < len(preds); i++ {
		assert.Greater(t, preds[i], preds[i-1])
	}
}
