package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	OpenAI    OpenAIConfig
	Places    PlacesConfig
	Geocoding GeocodingConfig
	Risk      RiskConfig
	Scoring   ScoringConfig
	OTEL      OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// OpenAIConfig holds OpenAI configuration
type OpenAIConfig struct {
	APIKey         string
	Model          string
	RateLimitRPM   int
	RateLimitBurst int
}

// PlacesConfig holds Google Places (New) configuration. The same key is
// used by the general-purpose geocoding fallback.
type PlacesConfig struct {
	APIKey     string
	MaxResults int
}

// GeocodingConfig holds coordinate resolution configuration
type GeocodingConfig struct {
	CityGeocoderURL string
	TimeoutSeconds  int
	MemoCacheSize   int
}

// RiskConfig holds external risk-scoring service configuration
type RiskConfig struct {
	BaseURL         string
	Enabled         bool
	TimeoutSeconds  int
	SupportedCities []string
}

// ScoringConfig holds hybrid scoring configuration
type ScoringConfig struct {
	RegressionEnabled bool
	RidgeAlpha        float64
	EnrichmentWorkers int
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "homematch"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		OpenAI: OpenAIConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			Model:          getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			RateLimitRPM:   getEnvAsInt("OPENAI_RATE_LIMIT_RPM", 60),
			RateLimitBurst: getEnvAsInt("OPENAI_RATE_LIMIT_BURST", 5),
		},
		Places: PlacesConfig{
			APIKey:     getEnv("GOOGLE_PLACES_API_KEY", ""),
			MaxResults: getEnvAsInt("PLACES_MAX_RESULTS", 8),
		},
		Geocoding: GeocodingConfig{
			CityGeocoderURL: getEnv("SF_GEOCODER_URL", "https://sfplanninggis.org/arcgiswa/rest/services/Geocoder_V2/GeocodeServer/findAddressCandidates"),
			TimeoutSeconds:  getEnvAsInt("GEOCODING_TIMEOUT_SECONDS", 5),
			MemoCacheSize:   getEnvAsInt("GEOCODING_MEMO_CACHE_SIZE", 4096),
		},
		Risk: RiskConfig{
			BaseURL:         getEnv("RISK_SERVICE_URL", ""),
			Enabled:         getEnvAsBool("RISK_SERVICE_ENABLED", true),
			TimeoutSeconds:  getEnvAsInt("RISK_SERVICE_TIMEOUT_SECONDS", 10),
			SupportedCities: getEnvAsSlice("RISK_SUPPORTED_CITIES", []string{"San Francisco", "san francisco", "SF"}),
		},
		Scoring: ScoringConfig{
			RegressionEnabled: getEnvAsBool("SCORING_REGRESSION_ENABLED", true),
			RidgeAlpha:        getEnvAsFloat("SCORING_RIDGE_ALPHA", 1.0),
			EnrichmentWorkers: getEnvAsInt("ENRICHMENT_WORKERS", 8),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "homematch-recommender"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}, nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
