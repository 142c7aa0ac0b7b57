package client

import (
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/relaykit/relay/pkg/cache"
)

// Config holds the client configuration.
type Config struct {
	// BaseURL is joined with relative request paths. Absolute request
	// URLs bypass it.
	BaseURL string

	// Timeout bounds each transport attempt (0 = none).
	Timeout time.Duration

	// Headers are applied to every request; per-call headers win.
	Headers map[string]string

	// MaxConcurrent bounds simultaneous in-flight transport operations
	// (0 = unbounded).
	MaxConcurrent int

	// MaxRetries is the default number of retries after the first attempt.
	MaxRetries int

	// RetryDelay is the default backoff base.
	RetryDelay time.Duration

	// RetryOn lists response statuses that trigger a retry by default.
	RetryOn []int

	// Transport performs the physical sends (default: net/http).
	Transport Transport

	// Cache stores responses for cacheable GETs (default: in-memory).
	Cache cache.Store

	// Logger overrides the component logger.
	Logger *zerolog.Logger
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:       baseURL,
		Timeout:       30 * time.Second,
		MaxConcurrent: 10,
		MaxRetries:    0,
		RetryDelay:    100 * time.Millisecond,
	}
}

// validate rejects configurations the orchestrator cannot honor.
func (cfg Config) validate() error {
	if cfg.BaseURL != "" {
		u, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return fmt.Errorf("parse base url: %w", err)
		}
		if u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("base url must be absolute (got %q)", cfg.BaseURL)
		}
	}
	if cfg.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0 (got %v)", cfg.Timeout)
	}
	if cfg.MaxConcurrent < 0 {
		return fmt.Errorf("max_concurrent must be >= 0 (got %d)", cfg.MaxConcurrent)
	}
	if cfg.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be >= 0 (got %d)", cfg.MaxRetries)
	}
	if cfg.RetryDelay < 0 {
		return fmt.Errorf("retry_delay must be >= 0 (got %v)", cfg.RetryDelay)
	}
	return nil
}
