package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "homematch", cfg.Database.Database)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	assert.Equal(t, 8, cfg.Places.MaxResults)
	assert.Equal(t, 4096, cfg.Geocoding.MemoCacheSize)
	assert.True(t, cfg.Scoring.RegressionEnabled)
	assert.Equal(t, 1.0, cfg.Scoring.RidgeAlpha)
	assert.Contains(t, cfg.Risk.SupportedCities, "San Francisco")
}

func TestLoad_ScoringConfig(t *testing.T) {
	t.Setenv("SCORING_REGRESSION_ENABLED", "false")
	t.Setenv("SCORING_RIDGE_ALPHA", "2.5")
	t.Setenv("ENRICHMENT_WORKERS", "16")

	cfg, err := Load()
	assert.NoError(t, err)

	assert.False(t, cfg.Scoring.RegressionEnabled)
	assert.Equal(t, 2.5, cfg.Scoring.RidgeAlpha)
	assert.Equal(t, 16, cfg.Scoring.EnrichmentWorkers)
}

func TestLoad_RiskConfig(t *testing.T) {
	t.Setenv("RISK_SERVICE_URL", "http://risk:9000")
	t.Setenv("RISK_SUPPORTED_CITIES", "San Francisco,Oakland")

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, "http://risk:9000", cfg.Risk.BaseURL)
	assert.Equal(t, []string{"San Francisco", "Oakland"}, cfg.Risk.SupportedCities)
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "app",
		Password: "secret",
		Database: "homematch",
		SSLMode:  "require",
	}

	dsn := cfg.DatabaseDSN()
	assert.Contains(t, dsn, "host=db.internal")
	assert.Contains(t, dsn, "port=5433")
	assert.Contains(t, dsn, "sslmode=require")
}
