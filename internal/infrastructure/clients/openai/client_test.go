package openai_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homematch-ai/recommender/internal/infrastructure/clients/openai"
	"github.com/homematch-ai/recommender/pkg/config"
	apperrors "github.com/homematch-ai/recommender/pkg/errors"
)

func testConfig() *config.OpenAIConfig {
	return &config.OpenAIConfig{
		APIKey:       "test-key",
		Model:        "gpt-4o-mini",
		RateLimitRPM: -1,
	}
}

func modelServer(t *testing.T, outputText string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/responses", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		envelope := map[string]any{
			"output": []map[string]any{
				{"content": []map[string]any{
					{"type": "output_text", "text": outputText},
				}},
			},
		}
		_ = json.NewEncoder(w).Encode(envelope)
	}))
}

func TestClient_RequiresAPIKey(t *testing.T) {
	_, err := openai.NewClient(&config.OpenAIConfig{})
	assert.Error(t, err)
}

func TestExtractPreferences_ParsesStructuredOutput(t *testing.T) {
	server := modelServer(t, `{"budget_max": 1200000, "min_beds": 3, "must_haves": ["garage"]}`, http.StatusOK)
	defer server.Close()

	client, err := openai.NewClientWithOptions(testConfig(), server.URL, server.Client())
	require.NoError(t, err)

	prefs, err := client.ExtractPreferences(context.Background(), "3 beds with a garage under 1.2M")

	require.NoError(t, err)
	assert.Equal(t, 1_200_000, prefs.BudgetMax)
	assert.Equal(t, 3, prefs.MinBeds)
	assert.Equal(t, []string{"garage"}, prefs.MustHaves)
	assert.NotNil(t, prefs.NiceToHaves, "normalization must fill nil list fields")
}

func TestExtractPreferences_StripsCodeFences(t *testing.T) {
	server := modelServer(t, "```json\n{\"min_beds\": 2}\n```", http.StatusOK)
	defer server.Close()

	client, err := openai.NewClientWithOptions(testConfig(), server.URL, server.Client())
	require.NoError(t, err)

	prefs, err := client.ExtractPreferences(context.Background(), "two bedrooms")

	require.NoError(t, err)
	assert.Equal(t, 2, prefs.MinBeds)
}

func TestExtractPreferences_RejectsEmptyText(t *testing.T) {
	client, err := openai.NewClient(testConfig())
	require.NoError(t, err)

	_, err = client.ExtractPreferences(context.Background(), "   ")

	assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.TypeOf(err))
}

func TestExtractPreferences_MalformedJSONIsDataError(t *testing.T) {
	server := modelServer(t, "I think the buyer wants a house", http.StatusOK)
	defer server.Close()

	client, err := openai.NewClientWithOptions(testConfig(), server.URL, server.Client())
	require.NoError(t, err)

	_, err = client.ExtractPreferences(context.Background(), "a house")

	assert.Equal(t, apperrors.ErrorTypeData, apperrors.TypeOf(err))
}

func TestScoreListings_ParsesScoreMap(t *testing.T) {
	server := modelServer(t, `{"0": 85, "1": 40.5}`, http.StatusOK)
	defer server.Close()

	client, err := openai.NewClientWithOptions(testConfig(), server.URL, server.Client())
	require.NoError(t, err)

	scores, err := client.ScoreListings(context.Background(), "budget up to $1000000", []string{"a", "b"})

	require.NoError(t, err)
	assert.Equal(t, map[int]float64{0: 85, 1: 40.5}, scores)
}

func TestScoreListings_SkipsInvalidIndices(t *testing.T) {
	server := modelServer(t, `{"0": 85, "oops": 10, "-1": 20, "9": 30}`, http.StatusOK)
	defer server.Close()

	client, err := openai.NewClientWithOptions(testConfig(), server.URL, server.Client())
	require.NoError(t, err)

	scores, err := client.ScoreListings(context.Background(), "prefs", []string{"a", "b"})

	require.NoError(t, err)
	assert.Equal(t, map[int]float64{0: 85}, scores)
}

func TestScoreListings_EmptyBatchSkipsCall(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := openai.NewClientWithOptions(testConfig(), server.URL, server.Client())
	require.NoError(t, err)

	scores, err := client.ScoreListings(context.Background(), "prefs", nil)

	require.NoError(t, err)
	assert.Empty(t, scores)
	assert.Zero(t, calls)
}

func TestScoreListings_UpstreamErrorIsExternal(t *testing.T) {
	server := modelServer(t, "", http.StatusTooManyRequests)
	defer server.Close()

	client, err := openai.NewClientWithOptions(testConfig(), server.URL, server.Client())
	require.NoError(t, err)

	_, err = client.ScoreListings(context.Background(), "prefs", []string{"a"})

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeExternal, apperrors.TypeOf(err))
	assert.Contains(t, err.Error(), fmt.Sprint(http.StatusTooManyRequests))
}

func TestScoreListings_NonMapResponseIsDataError(t *testing.T) {
	server := modelServer(t, `[85, 40]`, http.StatusOK)
	defer server.Close()

	client, err := openai.NewClientWithOptions(testConfig(), server.URL, server.Client())
	require.NoError(t, err)

	_, err = client.ScoreListings(context.Background(), "prefs", []string{"a", "b"})

	assert.Equal(t, apperrors.ErrorTypeData, apperrors.TypeOf(err))
}
