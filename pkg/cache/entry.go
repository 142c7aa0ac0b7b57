package cache

import (
	"net/http"
	"time"
)

// Entry is a cached response. Entries are immutable once stored; a write to
// an existing key overwrites the previous entry wholesale (last write wins).
type Entry struct {
	// Body is the response body.
	Body []byte `json:"body"`

	// StatusCode is the HTTP status code of the cached response.
	StatusCode int `json:"status_code"`

	// Status is the HTTP status line text.
	Status string `json:"status"`

	// Header holds the response headers.
	Header http.Header `json:"header"`

	// ExpiresAt is the instant the entry becomes stale.
	ExpiresAt time.Time `json:"expires_at"`

	// CachedAt is when the entry was stored.
	CachedAt time.Time `json:"cached_at"`
}

// Expired reports whether the entry's TTL has elapsed.
func (e *Entry) Expired() bool {
	return !e.ExpiresAt.IsZero() && time.Now().After(e.ExpiresAt)
}

// TTL returns the remaining time until expiry, 0 if already expired.
func (e *Entry) TTL() time.Duration {
	ttl := time.Until(e.ExpiresAt)
	if ttl < 0 {
		return 0
	}
	return ttl
}
