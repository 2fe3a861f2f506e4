package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/homematch-ai/recommender/internal/adapters/cache"
	"github.com/homematch-ai/recommender/internal/adapters/database"
	"github.com/homematch-ai/recommender/internal/adapters/events"
	"github.com/homematch-ai/recommender/internal/adapters/providers/geocoding"
	"github.com/homematch-ai/recommender/internal/adapters/providers/places"
	"github.com/homematch-ai/recommender/internal/adapters/providers/risk"
	"github.com/homematch-ai/recommender/internal/api/handlers"
	"github.com/homematch-ai/recommender/internal/api/middleware"
	"github.com/homematch-ai/recommender/internal/api/routes"
	"github.com/homematch-ai/recommender/internal/application/services"
	"github.com/homematch-ai/recommender/internal/domain/providers"
	"github.com/homematch-ai/recommender/internal/infrastructure/clients/openai"
	"github.com/homematch-ai/recommender/internal/infrastructure/clients/postgres"
	"github.com/homematch-ai/recommender/internal/infrastructure/clients/redis"
	"github.com/homematch-ai/recommender/internal/infrastructure/notifications"
	"github.com/homematch-ai/recommender/internal/infrastructure/observability"
	"github.com/homematch-ai/recommender/pkg/config"
	"github.com/homematch-ai/recommender/pkg/secrets"
)

func main() {
	// Secrets from Vault land in the environment before config is read
	vaultCtx, vaultCancel := context.WithTimeout(context.Background(), 10*time.Second)
	vaultResult, err := secrets.ApplyVaultSecrets(vaultCtx, secrets.LoadVaultConfigFromEnv(""))
	vaultCancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: vault secrets not applied: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, os.Getenv("ENVIRONMENT"))
	if vaultResult.Enabled {
		log.Info().Int("loaded", vaultResult.Loaded).Int("skipped", vaultResult.Skipped).Msg("vault secrets applied")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Warn().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	log.Info().Msg("PostgreSQL client initialized")

	// Redis is optional; the service degrades to in-process caching only.
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize Redis client, continuing without shared cache")
		redisClient = nil
	} else {
		defer redisClient.Close()
		log.Info().Msg("Redis client initialized")
	}

	var cacheProvider providers.CacheProvider
	var eventBus providers.EventBus
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
		eventBus = events.NewRedisEventBus(redisClient)
	}

	// Repositories
	listingAdapter := database.NewListingAdapter(pgClient)
	scoreAdapter := database.NewScoreAdapter(pgClient)

	// Judgment and preference extraction share one OpenAI client
	openaiClient, err := openai.NewClient(&cfg.OpenAI)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize OpenAI client")
	}

	// Coordinate resolution: city geocoder first, general geocoder fallback
	geocodeTimeout := time.Duration(cfg.Geocoding.TimeoutSeconds) * time.Second
	cityGeocoder := geocoding.NewSFGISProvider(cfg.Geocoding.CityGeocoderURL, geocodeTimeout)
	var generalGeocoder providers.Geocoder
	generalConfigured := cfg.Places.APIKey != ""
	if generalConfigured {
		generalGeocoder = geocoding.NewGoogleProvider(cfg.Places.APIKey, geocodeTimeout)
	}
	resolver := services.NewCoordinateResolver(
		cityGeocoder,
		generalGeocoder,
		generalConfigured,
		cfg.Geocoding.MemoCacheSize,
		cacheProvider,
	).WithMetrics(metrics)

	var proximity *services.ProximityEnricher
	if cfg.Places.APIKey != "" {
		placesProvider := places.NewGooglePlacesProvider(cfg.Places.APIKey)
		proximity = services.NewProximityEnricher(placesProvider, cfg.Places.MaxResults)
	} else {
		log.Warn().Msg("GOOGLE_PLACES_API_KEY not set, proximity enrichment disabled")
	}

	var riskService *services.RiskService
	if cfg.Risk.Enabled && cfg.Risk.BaseURL != "" {
		riskClient := risk.NewClient(cfg.Risk.BaseURL, time.Duration(cfg.Risk.TimeoutSeconds)*time.Second)
		riskService = services.NewRiskService(riskClient, resolver, cfg.Risk.Enabled, cfg.Risk.SupportedCities)
	} else {
		// Cached risk columns on listings are still honored
		riskService = services.NewRiskService(nil, resolver, false, cfg.Risk.SupportedCities)
	}

	enrichmentService := services.NewEnrichmentService(resolver, proximity, riskService, metrics, cfg.Scoring.EnrichmentWorkers)

	recommendationService := services.NewRecommendationService(
		listingAdapter,
		scoreAdapter,
		openaiClient,
		enrichmentService,
		services.NewJudgmentScorer(openaiClient),
		services.NewRidgeRegression(cfg.Scoring.RidgeAlpha),
		cfg.Scoring.RegressionEnabled,
	)
	if eventBus != nil {
		recommendationService.SetEventBus(eventBus)
		log.Info().Msg("event bus configured")
	}

	// Buyer notifications ride on the event bus when the sender is configured
	var notifier *services.NotificationService
	if eventBus != nil {
		sender, err := notifications.NewWhatsAppCloudSender()
		if err != nil {
			log.Info().Msg("WhatsApp sender not configured, buyer notifications disabled")
		} else {
			notifier = services.NewNotificationService(database.NewBuyerAdapter(pgClient), eventBus, sender)
			if err := notifier.Start(); err != nil {
				log.Warn().Err(err).Msg("failed to start notification service")
				notifier = nil
			} else {
				log.Info().Msg("notification service started")
			}
		}
	}

	recommendationHandler := handlers.NewRecommendationHandler(recommendationService, scoreAdapter)

	healthDeps := map[string]handlers.Pinger{"postgres": pgClient}
	if redisClient != nil {
		healthDeps["redis"] = redisClient
	}
	healthHandler := handlers.NewHealthHandler(healthDeps)

	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider)
	}

	router := routes.NewRouter(recommendationHandler, healthHandler, cacheMiddleware, metrics)
	handler := router.SetupRoutes()

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // a full scoring run can be slow
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("error during server shutdown")
	}

	if notifier != nil {
		notifier.Stop()
	}
	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing event bus")
		}
	}

	log.Info().Msg("server stopped")
}
