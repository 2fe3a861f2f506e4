package places_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homematch-ai/recommender/internal/adapters/providers/places"
)

func TestGooglePlacesProvider_SearchRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-Goog-Api-Key"))
		assert.Equal(t, "places.id,places.displayName,places.location", r.Header.Get("X-Goog-FieldMask"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "DISTANCE", body["rankPreference"])
		assert.Equal(t, float64(8), body["maxResultCount"])

		circle := body["locationRestriction"].(map[string]any)["circle"].(map[string]any)
		assert.InDelta(t, 2.0*1609.34, circle["radius"].(float64), 0.01)

		w.Write([]byte(`{"places":[
			{"id":"p1","displayName":{"text":"Mission Branch Library"},"location":{"latitude":37.758,"longitude":-122.419}},
			{"id":"p2","displayName":{"text":"No Location Place"}}
		]}`))
	}))
	defer server.Close()

	provider := places.NewGooglePlacesProviderWithOptions("secret", server.URL, server.Client())
	found, err := provider.NearbyPlaces(context.Background(), 37.76, -122.42, []string{"school"}, 2.0, 8)

	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Mission Branch Library", found[0].Name)
	require.NotNil(t, found[0].Coordinates)
	assert.Equal(t, 37.758, found[0].Coordinates.Latitude)
	assert.Nil(t, found[1].Coordinates, "places without location still appear in the result")
}

func TestGooglePlacesProvider_MissingKeyFails(t *testing.T) {
	provider := places.NewGooglePlacesProvider("")

	_, err := provider.NearbyPlaces(context.Background(), 37.76, -122.42, []string{"park"}, 1.2, 8)

	assert.Error(t, err)
}

func TestGooglePlacesProvider_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	provider := places.NewGooglePlacesProviderWithOptions("secret", server.URL, server.Client())
	_, err := provider.NearbyPlaces(context.Background(), 37.76, -122.42, []string{"park"}, 1.2, 8)

	assert.Error(t, err)
}
