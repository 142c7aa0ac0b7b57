package main

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/relaykit/relay/pkg/cache"
	"github.com/relaykit/relay/pkg/client"
	"github.com/relaykit/relay/pkg/logging"
)

func main() {
	// Configuration from environment
	baseURL := getEnv("BASE_URL", "")
	port := getEnv("PORT", "8080")
	redisURL := getEnv("REDIS_URL", "")
	logLevel := getEnv("LOG_LEVEL", "info")
	maxConcurrent := getEnvInt("MAX_CONCURRENT", 10)
	cacheTTL := getEnvDuration("CACHE_TTL", 60*time.Second)

	logging.Setup(logging.Config{Level: logging.LogLevel(logLevel)})
	logger := logging.NewLogger("relay-proxy")

	if baseURL == "" {
		logger.Fatal().Msg("BASE_URL is required")
	}

	cfg := client.DefaultConfig(baseURL)
	cfg.MaxConcurrent = maxConcurrent
	cfg.MaxRetries = 2
	cfg.RetryOn = []int{429, 502, 503, 504}

	// Optional Redis-backed cache; in-memory otherwise.
	if redisURL != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: redisURL})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Fatal().Err(err).Str("redis_url", redisURL).Msg("Failed to connect to Redis")
		}
		store, err := cache.NewRedisStore(redisClient)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to create Redis cache store")
		}
		cfg.Cache = store
		logger.Info().Str("redis_url", redisURL).Msg("Using Redis cache store")
	}

	relayClient, err := client.New(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create relay client")
	}

	http.HandleFunc("/health", healthHandler)
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/proxy/", proxyHandler(relayClient, cacheTTL))

	addr := ":" + port
	logger.Info().Str("addr", addr).Str("base_url", baseURL).Msg("Starting relay proxy")

	if err := http.ListenAndServe(addr, nil); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// proxyHandler forwards the request path below /proxy/ to the upstream via
// the relay client, so every forwarded call gets the retry, concurrency and
// cache behavior.
func proxyHandler(c *client.Client, cacheTTL time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		endpoint := r.URL.Path[len("/proxy"):]

		opts := &client.Options{Query: r.URL.Query()}
		if r.Method == http.MethodGet {
			opts.CacheTTL = cacheTTL
		}

		res := c.Do(r.Context(), r.Method, endpoint, opts)
		if res.Err != nil && res.StatusCode == 0 {
			http.Error(w, res.Err.Message, http.StatusBadGateway)
			return
		}

		for key, values := range res.Header {
			for _, value := range values {
				w.Header().Add(key, value)
			}
		}
		if res.FromCache {
			w.Header().Set("X-Relay-Cache", "hit")
		}
		w.WriteHeader(res.StatusCode)
		w.Write(res.Body)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
