package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/homematch-ai/recommender/internal/domain/providers"
)

// CacheConfig holds cache configuration for specific routes
type CacheConfig struct {
	TTLSeconds int
	Enabled    bool
}

// CacheMiddleware provides HTTP response caching for read endpoints.
// Recommendation generation is a POST and is never cached; the persisted
// score reads are cheap to serve from Redis between re-scores.
type CacheMiddleware struct {
	cache        providers.CacheProvider
	routeConfigs map[string]CacheConfig
}

// NewCacheMiddleware creates a new cache middleware
func NewCacheMiddleware(cache providers.CacheProvider) *CacheMiddleware {
	return &CacheMiddleware{
		cache: cache,
		routeConfigs: map[string]CacheConfig{
			"/api/v1/buyers/": {TTLSeconds: 60, Enabled: true}, // prefix match
		},
	}
}

// Middleware returns the cache middleware handler
func (m *CacheMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || m.cache == nil {
			next.ServeHTTP(w, r)
			return
		}

		config := m.getRouteConfig(r.URL.Path)
		if !config.Enabled {
			next.ServeHTTP(w, r)
			return
		}

		key := m.cacheKey(r)

		if cached, err := m.cache.Get(r.Context(), key); err == nil && len(cached) > 0 {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Cache", "HIT")
			w.WriteHeader(http.StatusOK)
			if _, err := w.Write(cached); err != nil {
				log.Warn().Err(err).Msg("failed to write cached response")
			}
			return
		}

		rec := &cachingResponseWriter{ResponseWriter: w, buffer: &bytes.Buffer{}, statusCode: http.StatusOK}
		rec.Header().Set("X-Cache", "MISS")
		next.ServeHTTP(rec, r)

		if rec.statusCode == http.StatusOK && rec.buffer.Len() > 0 {
			ttl := time.Duration(config.TTLSeconds) * time.Second
			if err := m.cache.Set(r.Context(), key, rec.buffer.Bytes(), ttl); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("failed to cache response")
			}
		}
	})
}

func (m *CacheMiddleware) getRouteConfig(path string) CacheConfig {
	if config, ok := m.routeConfigs[path]; ok {
		return config
	}
	for prefix, config := range m.routeConfigs {
		if strings.HasSuffix(prefix, "/") && strings.HasPrefix(path, prefix) {
			return config
		}
	}
	return CacheConfig{Enabled: false}
}

func (m *CacheMiddleware) cacheKey(r *http.Request) string {
	hash := sha256.Sum256([]byte(r.URL.Path + "?" + r.URL.RawQuery))
	return fmt.Sprintf("http:%s", hex.EncodeToString(hash[:16]))
}

// cachingResponseWriter tees the response body so a 200 can be stored.
type cachingResponseWriter struct {
	http.ResponseWriter
	buffer     *bytes.Buffer
	statusCode int
}

func (w *cachingResponseWriter) Write(b []byte) (int, error) {
	w.buffer.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *cachingResponseWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
