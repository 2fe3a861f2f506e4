package services

import (
	"math"

	"github.com/homematch-ai/recommender/internal/domain/entities"
)

const regressionFeatureCount = 8

// BuildFeatureRows converts listings and their enrichments into the fixed
// numeric feature matrix used by the regression scorer. Missing values are
// left at zero; standardization downstream makes the columns comparable.
func BuildFeatureRows(listings []*entities.Listing, enrichments []*entities.Enrichment) [][]float64 {
	rows := make([][]float64, len(listings))
	for i, listing := range listings {
		var avgSchoolRating float64
		if i < len(enrichments) && enrichments[i] != nil {
			avgSchoolRating = enrichments[i].AvgSchoolRating
		}
		pricePerSqft := 0.0
		if listing.LivingArea > 0 {
			pricePerSqft = float64(listing.Price) / float64(listing.LivingArea)
		}
		rows[i] = []float64{
			float64(listing.Price),
			float64(listing.Bedrooms),
			listing.Bathrooms,
			float64(listing.LivingArea),
			listing.LotSize,
			float64(listing.YearBuilt),
			avgSchoolRating,
			pricePerSqft,
		}
	}
	return rows
}

// RidgeRegression fits a small L2-regularised linear model on the batch
// itself, using the judgment scores as targets, and predicts smoothed
// scores back for the same rows. With the handful of features involved,
// solving the normal equations directly is plenty.
type RidgeRegression struct {
	Alpha float64
}

func NewRidgeRegression(alpha float64) *RidgeRegression {
	if alpha <= 0 {
		alpha = 1.0
	}
	return &RidgeRegression{Alpha: alpha}
}

// FitPredict fits on (features, targets) and returns predictions clipped
// to [0, 100]. Degenerate batches (fewer than two rows, or a singular
// system) fall back to the targets unchanged.
func (r *RidgeRegression) FitPredict(features [][]float64, targets []float64) []float64 {
	n := len(features)
	if n != len(targets) || n < 2 {
		return copyScores(targets)
	}
	p := regressionFeatureCount

	// Standardize each column; zero-variance columns contribute nothing.
	means := make([]float64, p)
	stds := make([]float64, p)
	for j := 0; j < p; j++ {
		var sum float64
		for i := 0; i < n; i++ {
			sum += features[i][j]
		}
		means[j] = sum / float64(n)
		var variance float64
		for i := 0; i < n; i++ {
			d := features[i][j] - means[j]
			variance += d * d
		}
		stds[j] = math.Sqrt(variance / float64(n))
	}

	x := make([][]float64, n)
	for i := 0; i < n; i++ {
		x[i] = make([]float64, p)
		for j := 0; j < p; j++ {
			if stds[j] > 0 {
				x[i][j] = (features[i][j] - means[j]) / stds[j]
			}
		}
	}

	var yMean float64
	for _, t := range targets {
		yMean += t
	}
	yMean /= float64(n)
	y := make([]float64, n)
	for i, t := range targets {
		y[i] = t - yMean
	}

	// (XᵀX + αI) w = Xᵀy
	a := make([][]float64, p)
	b := make([]float64, p)
	for j := 0; j < p; j++ {
		a[j] = make([]float64, p)
		for k := 0; k < p; k++ {
			var sum float64
			for i := 0; i < n; i++ {
				sum += x[i][j] * x[i][k]
			}
			a[j][k] = sum
		}
		a[j][j] += r.Alpha
		var sum float64
		for i := 0; i < n; i++ {
			sum += x[i][j] * y[i]
		}
		b[j] = sum
	}

	weights, ok := solveLinearSystem(a, b)
	if !ok {
		return copyScores(targets)
	}

	predictions := make([]float64, n)
	for i := 0; i < n; i++ {
		pred := yMean
		for j := 0; j < p; j++ {
			pred += x[i][j] * weights[j]
		}
		predictions[i] = math.Max(0, math.Min(100, pred))
	}
	return predictions
}

// solveLinearSystem solves a*w = b via Gaussian elimination with partial
// pivoting. Returns false when the system is numerically singular.
func solveLinearSystem(a [][]float64, b []float64) ([]float64, bool) {
	n := len(a)
	for col := 0; col < n; col++ {
		pivot := col
		for row := col + 1; row < n; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return nil, false
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]

		for row := col + 1; row < n; row++ {
			factor := a[row][col] / a[col][col]
			for k := col; k < n; k++ {
				a[row][k] -= factor * a[col][k]
			}
			b[row] -= factor * b[col]
		}
	}

	w := make([]float64, n)
	for row := n - 1; row >= 0; row-- {
		sum := b[row]
		for k := row + 1; k < n; k++ {
			sum -= a[row][k] * w[k]
		}
		w[row] = sum / a[row][row]
	}
	return w, true
}

func copyScores(scores []float64) []float64 {
	out := make([]float64, len(scores))
	copy(out, scores)
	return out
}
