package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homematch-ai/recommender/internal/application/services"
	"github.com/homematch-ai/recommender/internal/domain/entities"
	"github.com/homematch-ai/recommender/internal/domain/providers"
	"github.com/homematch-ai/recommender/internal/infrastructure/observability"
)

type stubGeocoder struct {
	coords *providers.Coordinates
	err    error
	calls  int
}

func (g *stubGeocoder) Geocode(_ context.Context, _, _ string) (*providers.Coordinates, error) {
	g.calls++
	return g.coords, g.err
}

func sfCoords() *providers.Coordinates {
	return &providers.Coordinates{Latitude: 37.7599, Longitude: -122.4148}
}

func TestCoordinateResolver_DirectFieldsWin(t *testing.T) {
	city := &stubGeocoder{coords: sfCoords()}
	resolver := services.NewCoordinateResolver(city, nil, false, 0, nil)

	listing := baseListing()
	listing.Latitude = floatPtr(37.75)
	listing.Longitude = floatPtr(-122.41)

	coords, ok := resolver.Resolve(context.Background(), listing)

	require.True(t, ok)
	assert.Equal(t, 37.75, coords.Latitude)
	assert.Equal(t, -122.41, coords.Longitude)
	assert.Zero(t, city.calls, "geocoder must not be consulted when fields are set")
}

func TestCoordinateResolver_RawCoordinatesBeforeGeocoder(t *testing.T) {
	city := &stubGeocoder{coords: sfCoords()}
	resolver := services.NewCoordinateResolver(city, nil, false, 0, nil)

	listing := baseListing()
	listing.Raw = map[string]any{
		"coordinates": map[string]any{"lat": 37.76, "lng": -122.42},
	}

	coords, ok := resolver.Resolve(context.Background(), listing)

	require.True(t, ok)
	assert.Equal(t, 37.76, coords.Latitude)
	assert.Zero(t, city.calls)
}

func TestCoordinateResolver_ZeroRawCoordinatesSkipped(t *testing.T) {
	city := &stubGeocoder{coords: sfCoords()}
	resolver := services.NewCoordinateResolver(city, nil, false, 0, nil)

	listing := baseListing()
	listing.Raw = map[string]any{
		"coordinates": map[string]any{"lat": 0.0, "lng": 0.0},
	}

	coords, ok := resolver.Resolve(context.Background(), listing)

	require.True(t, ok)
	assert.Equal(t, sfCoords().Latitude, coords.Latitude)
	assert.Equal(t, 1, city.calls)
}

func TestCoordinateResolver_CityGeocoderOnlyForSanFrancisco(t *testing.T) {
	city := &stubGeocoder{coords: sfCoords()}
	general := &stubGeocoder{coords: &providers.Coordinates{Latitude: 34.05, Longitude: -118.24}}
	resolver := services.NewCoordinateResolver(city, general, true, 0, nil)

	listing := baseListing()
	listing.City = "Los Angeles"

	coords, ok := resolver.Resolve(context.Background(), listing)

	require.True(t, ok)
	assert.Equal(t, 34.05, coords.Latitude)
	assert.Zero(t, city.calls)
	assert.Equal(t, 1, general.calls)
}

func TestCoordinateResolver_RejectsOutOfBoundsCityResult(t *testing.T) {
	city := &stubGeocoder{coords: &providers.Coordinates{Latitude: 40.71, Longitude: -74.0}}
	general := &stubGeocoder{coords: sfCoords()}
	resolver := services.NewCoordinateResolver(city, general, true, 0, nil)

	coords, ok := resolver.Resolve(context.Background(), baseListing())

	require.True(t, ok)
	assert.Equal(t, sfCoords().Latitude, coords.Latitude)
	assert.Equal(t, 1, city.calls)
	assert.Equal(t, 1, general.calls, "chain must fall through past the rejected result")
}

func TestCoordinateResolver_GeneralGeocoderRequiresCredential(t *testing.T) {
	general := &stubGeocoder{coords: sfCoords()}
	resolver := services.NewCoordinateResolver(nil, general, false, 0, nil)

	listing := baseListing()
	listing.City = "Oakland"

	_, ok := resolver.Resolve(context.Background(), listing)

	assert.False(t, ok)
	assert.Zero(t, general.calls)
}

func TestCoordinateResolver_MemoizesAcceptedResults(t *testing.T) {
	city := &stubGeocoder{coords: sfCoords()}
	resolver := services.NewCoordinateResolver(city, nil, false, 0, nil)

	ctx := context.Background()
	_, ok := resolver.Resolve(ctx, baseListing())
	require.True(t, ok)
	_, ok = resolver.Resolve(ctx, baseListing())
	require.True(t, ok)

	assert.Equal(t, 1, city.calls, "second lookup for the same address must hit the memo")
}

func TestCoordinateResolver_MemoizesWithMetricsAttached(t *testing.T) {
	metrics, err := observability.InitMetrics()
	require.NoError(t, err)

	city := &stubGeocoder{coords: sfCoords()}
	resolver := services.NewCoordinateResolver(city, nil, false, 0, nil).WithMetrics(metrics)

	ctx := context.Background()
	_, ok := resolver.Resolve(ctx, baseListing())
	require.True(t, ok)
	_, ok = resolver.Resolve(ctx, baseListing())
	require.True(t, ok)

	// counting memo hits and misses must not change resolution behavior
	assert.Equal(t, 1, city.calls)
}

func TestCoordinateResolver_FailuresDoNotMemoize(t *testing.T) {
	city := &stubGeocoder{err: errors.New("gis unavailable")}
	resolver := services.NewCoordinateResolver(city, nil, false, 0, nil)

	ctx := context.Background()
	_, ok := resolver.Resolve(ctx, baseListing())
	assert.False(t, ok)
	_, ok = resolver.Resolve(ctx, baseListing())
	assert.False(t, ok)

	assert.Equal(t, 2, city.calls)
}

func TestCoordinateResolver_UnresolvableIsNotAnError(t *testing.T) {
	resolver := services.NewCoordinateResolver(nil, nil, false, 0, nil)

	listing := &entities.Listing{ID: "bare"}
	coords, ok := resolver.Resolve(context.Background(), listing)

	assert.False(t, ok)
	assert.Nil(t, coords)
}
