package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/homematch-ai/recommender/internal/domain/entities"
	"github.com/homematch-ai/recommender/pkg/config"
	apperrors "github.com/homematch-ai/recommender/pkg/errors"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client implements the preference extraction and batch judgment providers
// on top of the OpenAI API.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	limiter    *tokenBucket
}

// NewClient creates a new OpenAI client.
func NewClient(cfg *config.OpenAIConfig) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &Client{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
		limiter: newTokenBucket(cfg.RateLimitRPM, cfg.RateLimitBurst),
	}, nil
}

// NewClientWithOptions allows overriding the base URL and HTTP client (used for tests).
func NewClientWithOptions(cfg *config.OpenAIConfig, baseURL string, httpClient *http.Client) (*Client, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(baseURL) != "" {
		client.baseURL = strings.TrimSuffix(baseURL, "/")
	}
	if httpClient != nil {
		client.httpClient = httpClient
	}
	return client, nil
}

type responseContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type responseOutput struct {
	Content []responseContent `json:"content"`
}

type responseEnvelope struct {
	Output []responseOutput `json:"output"`
}

// ExtractPreferences parses a buyer's free-text description into structured
// preferences.
func (c *Client) ExtractPreferences(ctx context.Context, text string) (*entities.Preferences, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.NewValidationError("preference text is empty")
	}

	raw, err := c.complete(ctx, extractionSystemPrompt, buildExtractionUserPrompt(text), 400)
	if err != nil {
		return nil, err
	}

	prefs := entities.NewPreferences()
	if err := json.Unmarshal([]byte(raw), prefs); err != nil {
		return nil, apperrors.NewDataError("preference extraction returned invalid JSON", err)
	}
	prefs.Normalize()
	return prefs, nil
}

// ScoreListings submits the whole candidate batch in a single call and
// returns a batch-position to score map. Positions the model omitted are
// simply absent; the caller applies the neutral default.
func (c *Client) ScoreListings(ctx context.Context, preferenceSummary string, listingSummaries []string) (map[int]float64, error) {
	if len(listingSummaries) == 0 {
		return map[int]float64{}, nil
	}

	raw, err := c.complete(ctx, judgmentSystemPrompt, buildJudgmentUserPrompt(preferenceSummary, listingSummaries), 1200)
	if err != nil {
		return nil, err
	}

	var byIndex map[string]float64
	if err := json.Unmarshal([]byte(raw), &byIndex); err != nil {
		return nil, apperrors.NewDataError("judgment response is not a valid JSON score map", err)
	}

	scores := make(map[int]float64, len(byIndex))
	for key, value := range byIndex {
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= len(listingSummaries) {
			continue
		}
		scores[idx] = value
	}
	return scores, nil
}

// complete runs a single model call and returns the cleaned output text.
func (c *Client) complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	if c.limiter != nil {
		waitStart := time.Now()
		if err := c.limiter.Wait(ctx); err != nil {
			recordModelMetric(ctx, c.model, 0, 0, err)
			return "", apperrors.NewExternalError("rate limiter wait cancelled", err)
		}
		recordModelRateLimitWait(ctx, c.model, time.Since(waitStart))
	}

	payload := map[string]interface{}{
		"model": c.model,
		"input": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": userPrompt},
		},
		"temperature":       0.0,
		"max_output_tokens": maxTokens,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", apperrors.NewInternalError("failed to marshal model request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/responses", bytes.NewReader(body))
	if err != nil {
		return "", apperrors.NewInternalError("failed to build model request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		recordModelMetric(ctx, c.model, 0, time.Since(start), err)
		return "", apperrors.NewExternalError("model request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		recordModelMetric(ctx, c.model, resp.StatusCode, time.Since(start), fmt.Errorf("status %d", resp.StatusCode))
		return "", apperrors.NewExternalError(fmt.Sprintf("model request failed with status %d", resp.StatusCode), nil)
	}

	var envelope responseEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		recordModelMetric(ctx, c.model, resp.StatusCode, time.Since(start), err)
		return "", apperrors.NewDataError("failed to decode model response envelope", err)
	}

	var text string
	for _, out := range envelope.Output {
		for _, content := range out.Content {
			if content.Type == "output_text" && content.Text != "" {
				text = content.Text
				break
			}
		}
		if text != "" {
			break
		}
	}

	if text == "" {
		recordModelMetric(ctx, c.model, resp.StatusCode, time.Since(start), errors.New("missing output text"))
		return "", apperrors.NewDataError("model response missing output text", nil)
	}

	recordModelMetric(ctx, c.model, resp.StatusCode, time.Since(start), nil)
	return stripCodeFences(text), nil
}

// stripCodeFences removes Markdown code blocks the model sometimes wraps
// JSON output in.
func stripCodeFences(text string) string {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimSuffix(cleaned, "```")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
	}
	return strings.TrimSpace(cleaned)
}

func newTokenBucket(rpm int, burst int) *tokenBucket {
	if rpm == 0 {
		rpm = 60
	}
	if rpm < 0 {
		return nil
	}
	if burst <= 0 {
		burst = 5
	}
	return newTokenBucketWithRate(rpm, burst)
}

type tokenBucket struct {
	tokens chan struct{}
}

func newTokenBucketWithRate(rpm int, burst int) *tokenBucket {
	bucket := &tokenBucket{
		tokens: make(chan struct{}, burst),
	}

	for i := 0; i < burst; i++ {
		bucket.tokens <- struct{}{}
	}

	interval := time.Minute / time.Duration(rpm)
	if interval <= 0 {
		interval = time.Millisecond
	}

	ticker := time.NewTicker(interval)
	go func() {
		for range ticker.C {
			select {
			case bucket.tokens <- struct{}{}:
			default:
			}
		}
	}()

	return bucket
}

func (b *tokenBucket) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.tokens:
		return nil
	}
}
