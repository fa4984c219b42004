package http

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tair/farm-management/pkg/logger"
)

// dashboardCacheTTL bounds how stale a cached dashboard may get; sale
// registration also invalidates the cache eagerly.
const dashboardCacheTTL = 5 * time.Minute

const cacheKeyPrefix = "cache:sales-dashboard"

// cachingResponseWriter buffers the response so it can be stored in Redis
type cachingResponseWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (w *cachingResponseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *cachingResponseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// CacheDashboard caches GET dashboard responses in Redis. With a nil client
// the middleware is a pass-through.
func CacheDashboard(redisClient *redis.Client, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if redisClient == nil || r.Method != http.MethodGet {
			next(w, r)
			return
		}

		cacheKey := dashboardCacheKey(r)
		ctx := r.Context()

		cached, err := redisClient.Get(ctx, cacheKey).Bytes()
		if err == nil && len(cached) > 0 {
			logger.Logger.Debug().
				Str("path", r.URL.Path).
				Str("cache_key", cacheKey).
				Msg("Cache hit")

			w.Header().Set("X-Cache", "HIT")
			w.Header().Set("Content-Type", "application/json")
			w.Write(cached)
			return
		}

		logger.Logger.Debug().
			Str("path", r.URL.Path).
			Str("cache_key", cacheKey).
			Msg("Cache miss")

		recorder := &cachingResponseWriter{ResponseWriter: w, status: http.StatusOK}
		recorder.Header().Set("X-Cache", "MISS")
		next(recorder, r)

		if recorder.status == http.StatusOK {
			if err := redisClient.Set(ctx, cacheKey, recorder.body.Bytes(), dashboardCacheTTL).Err(); err != nil {
				logger.Logger.Warn().
					Err(err).
					Str("cache_key", cacheKey).
					Msg("Failed to cache response")
			}
		}
	}
}

// InvalidateDashboardCache drops every cached dashboard response. Called
// after a sale is registered, since any window may now be stale.
func InvalidateDashboardCache(ctx context.Context, redisClient *redis.Client) error {
	if redisClient == nil {
		return nil
	}

	iter := redisClient.Scan(ctx, 0, cacheKeyPrefix+":*", 0).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}

	if len(keys) > 0 {
		if err := redisClient.Del(ctx, keys...).Err(); err != nil {
			return err
		}

		logger.Logger.Info().
			Int("count", len(keys)).
			Msg("Dashboard cache invalidated")
	}

	return nil
}

func dashboardCacheKey(r *http.Request) string {
	keyComponents := fmt.Sprintf("%s:%s:%s", r.Method, r.URL.Path, r.URL.RawQuery)
	hash := sha256.Sum256([]byte(keyComponents))
	return fmt.Sprintf("%s:%s", cacheKeyPrefix, hex.EncodeToString(hash[:]))
}
