package geocoding_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homematch-ai/recommender/internal/adapters/providers/geocoding"
)

func TestGoogleProvider_ResolvesAddress(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "123 Main St, Oakland, CA", r.URL.Query().Get("address"))
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		w.Write([]byte(`{"status":"OK","results":[{"geometry":{"location":{"lat":37.8044,"lng":-122.2712}}}]}`))
	}))
	defer server.Close()

	geocoder := geocoding.NewGoogleProviderWithOptions("secret", server.URL, time.Second)
	coords, err := geocoder.Geocode(context.Background(), "123 Main St", "Oakland")

	require.NoError(t, err)
	require.NotNil(t, coords)
	assert.Equal(t, 37.8044, coords.Latitude)
	assert.Equal(t, -122.2712, coords.Longitude)
}

func TestGoogleProvider_ZeroResultsIsNilNil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status":"ZERO_RESULTS","results":[]}`))
	}))
	defer server.Close()

	geocoder := geocoding.NewGoogleProviderWithOptions("secret", server.URL, time.Second)
	coords, err := geocoder.Geocode(context.Background(), "1 Nowhere Ln", "Oakland")

	assert.NoError(t, err)
	assert.Nil(t, coords)
}

func TestGoogleProvider_MissingKeyFails(t *testing.T) {
	geocoder := geocoding.NewGoogleProvider("", time.Second)

	_, err := geocoder.Geocode(context.Background(), "123 Main St", "Oakland")

	assert.Error(t, err)
}
