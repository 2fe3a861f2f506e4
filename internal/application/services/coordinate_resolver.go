package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"

	"github.com/homematch-ai/recommender/internal/domain/entities"
	"github.com/homematch-ai/recommender/internal/domain/providers"
	"github.com/homematch-ai/recommender/internal/infrastructure/observability"
)

const (
	defaultMemoCacheSize = 4096
	sharedGeocodeTTL     = 30 * 24 * time.Hour
)

// sfBounds is the acceptance bounding box for the city-specific geocoder.
// Results outside it are rejected and the chain continues.
var sfBounds = struct {
	minLat, maxLat, minLon, maxLon float64
}{37.70, 37.83, -122.52, -122.35}

// coordinateStrategy is one step of the resolution chain. ok=false means the
// strategy did not produce coordinates; the chain moves on.
type coordinateStrategy interface {
	name() string
	resolve(ctx context.Context, listing *entities.Listing) (*providers.Coordinates, bool)
}

// CoordinateResolver resolves a listing's coordinates by trying strategies
// in strict order and short-circuiting on the first success. All strategy
// failures are swallowed; an unresolvable listing is a valid outcome.
type CoordinateResolver struct {
	strategies []coordinateStrategy
	memo       *geocodeMemo
}

// NewCoordinateResolver builds the standard four-strategy chain. The general
// geocoder is only consulted when its credential is configured. sharedCache
// may be nil; when present it acts as a second memoization tier behind the
// in-process LRU.
func NewCoordinateResolver(cityGeocoder, generalGeocoder providers.Geocoder, generalConfigured bool, memoSize int, sharedCache providers.CacheProvider) *CoordinateResolver {
	memo := newGeocodeMemo(memoSize, sharedCache)

	return &CoordinateResolver{
		strategies: []coordinateStrategy{
			directFieldsStrategy{},
			rawCoordinatesStrategy{},
			&cityGeocoderStrategy{geocoder: cityGeocoder, memo: memo},
			&generalGeocoderStrategy{geocoder: generalGeocoder, configured: generalConfigured, memo: memo},
		},
		memo: memo,
	}
}

// WithMetrics attaches cache hit/miss counters to the geocode memo.
func (r *CoordinateResolver) WithMetrics(metrics *observability.Metrics) *CoordinateResolver {
	r.memo.metrics = metrics
	return r
}

// Resolve returns the listing's coordinates, or ok=false when every
// strategy failed.
func (r *CoordinateResolver) Resolve(ctx context.Context, listing *entities.Listing) (*providers.Coordinates, bool) {
	for _, strategy := range r.strategies {
		if coords, ok := strategy.resolve(ctx, listing); ok {
			return coords, true
		}
	}
	log.Debug().Str("listing_id", listing.ID).Msg("no coordinates found for listing")
	return nil, false
}

// directFieldsStrategy uses the listing's own latitude/longitude fields.
type directFieldsStrategy struct{}

func (directFieldsStrategy) name() string { return "direct" }

func (directFieldsStrategy) resolve(_ context.Context, listing *entities.Listing) (*providers.Coordinates, bool) {
	if listing.Latitude == nil || listing.Longitude == nil {
		return nil, false
	}
	return &providers.Coordinates{Latitude: *listing.Latitude, Longitude: *listing.Longitude}, true
}

// rawCoordinatesStrategy reads the nested coordinate object carried in the
// listing's raw record.
type rawCoordinatesStrategy struct{}

func (rawCoordinatesStrategy) name() string { return "raw" }

func (rawCoordinatesStrategy) resolve(_ context.Context, listing *entities.Listing) (*providers.Coordinates, bool) {
	raw, ok := listing.Raw["coordinates"].(map[string]any)
	if !ok {
		return nil, false
	}
	lat, latOK := asFloat(raw["lat"])
	lon, lonOK := asFloat(raw["lng"])
	if !latOK || !lonOK || (lat == 0 && lon == 0) {
		return nil, false
	}
	return &providers.Coordinates{Latitude: lat, Longitude: lon}, true
}

// cityGeocoderStrategy invokes the SF-specific geocoder for San Francisco
// listings and accepts results only inside the city bounding box.
type cityGeocoderStrategy struct {
	geocoder providers.Geocoder
	memo     *geocodeMemo
}

func (s *cityGeocoderStrategy) name() string { return "city_geocoder" }

func (s *cityGeocoderStrategy) resolve(ctx context.Context, listing *entities.Listing) (*providers.Coordinates, bool) {
	if s.geocoder == nil || listing.Address == "" || !isSanFrancisco(listing.City) {
		return nil, false
	}

	key := s.name() + ":" + strings.ToLower(listing.Address)
	if coords, ok := s.memo.get(ctx, key); ok {
		return coords, true
	}

	coords, err := s.geocoder.Geocode(ctx, listing.Address, listing.City)
	if err != nil || coords == nil {
		if err != nil {
			log.Warn().Err(err).Str("listing_id", listing.ID).Msg("city geocoder failed")
		}
		return nil, false
	}

	if coords.Latitude < sfBounds.minLat || coords.Latitude > sfBounds.maxLat ||
		coords.Longitude < sfBounds.minLon || coords.Longitude > sfBounds.maxLon {
		log.Debug().Str("listing_id", listing.ID).Msg("city geocoder result outside bounds, rejected")
		return nil, false
	}

	s.memo.put(ctx, key, coords)
	return coords, true
}

// generalGeocoderStrategy invokes the general-purpose geocoding service,
// gated on a configured credential plus address and city being present.
type generalGeocoderStrategy struct {
	geocoder   providers.Geocoder
	configured bool
	memo       *geocodeMemo
}

func (s *generalGeocoderStrategy) name() string { return "general_geocoder" }

func (s *generalGeocoderStrategy) resolve(ctx context.Context, listing *entities.Listing) (*providers.Coordinates, bool) {
	if s.geocoder == nil || !s.configured || listing.Address == "" || listing.City == "" {
		return nil, false
	}

	key := s.name() + ":" + strings.ToLower(listing.Address) + ":" + strings.ToLower(listing.City)
	if coords, ok := s.memo.get(ctx, key); ok {
		return coords, true
	}

	coords, err := s.geocoder.Geocode(ctx, listing.Address, listing.City)
	if err != nil || coords == nil {
		if err != nil {
			log.Warn().Err(err).Str("listing_id", listing.ID).Msg("general geocoder failed")
		}
		return nil, false
	}

	s.memo.put(ctx, key, coords)
	return coords, true
}

// geocodeMemo memoizes successful geocoder results. Writes are idempotent:
// the same key always maps to the same resolved value, so a duplicate call
// on a populate race is harmless.
type geocodeMemo struct {
	local   *lru.Cache[string, providers.Coordinates]
	shared  providers.CacheProvider
	metrics *observability.Metrics
}

func newGeocodeMemo(size int, shared providers.CacheProvider) *geocodeMemo {
	if size <= 0 {
		size = defaultMemoCacheSize
	}
	local, _ := lru.New[string, providers.Coordinates](size)
	return &geocodeMemo{local: local, shared: shared}
}

func (m *geocodeMemo) get(ctx context.Context, key string) (*providers.Coordinates, bool) {
	if coords, ok := m.local.Get(key); ok {
		m.recordLookup(ctx, true)
		return &coords, true
	}
	if m.shared != nil {
		if payload, err := m.shared.Get(ctx, "geocode:"+key); err == nil && len(payload) > 0 {
			var coords providers.Coordinates
			if err := json.Unmarshal(payload, &coords); err == nil {
				m.local.Add(key, coords)
				m.recordLookup(ctx, true)
				return &coords, true
			}
		}
	}
	m.recordLookup(ctx, false)
	return nil, false
}

func (m *geocodeMemo) recordLookup(ctx context.Context, hit bool) {
	if m.metrics == nil {
		return
	}
	if hit {
		m.metrics.GeocodeCacheHits.Add(ctx, 1)
	} else {
		m.metrics.GeocodeCacheMisses.Add(ctx, 1)
	}
}

func (m *geocodeMemo) put(ctx context.Context, key string, coords *providers.Coordinates) {
	m.local.Add(key, *coords)
	if m.shared != nil {
		if payload, err := json.Marshal(coords); err == nil {
			_ = m.shared.Set(ctx, "geocode:"+key, payload, sharedGeocodeTTL)
		}
	}
}

func isSanFrancisco(city string) bool {
	lowered := strings.ToLower(city)
	return strings.Contains(lowered, "san francisco") || lowered == "sf"
}

func asFloat(v any) (float64, bool) {
	switch value := v.(type) {
	case float64:
		return value, true
	case *float64:
		if value == nil {
			return 0, false
		}
		return *value, true
	case int:
		return float64(value), true
	case json.Number:
		f, err := value.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
