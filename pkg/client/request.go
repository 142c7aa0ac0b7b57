package client

import (
	"net/http"
	"net/url"
	"time"

	"github.com/relaykit/relay/pkg/cancel"
)

// NoRetry disables retries for a single call even when the client default
// is positive.
const NoRetry = -1

// NoTimeout disables the per-attempt timeout for a single call.
const NoTimeout = -1 * time.Millisecond

// Options carries per-call overrides. The zero value inherits the client
// configuration for every knob.
type Options struct {
	// Headers are merged over the client default headers; per-call wins.
	Headers map[string]string

	// Query parameters appended to the resolved URL.
	Query url.Values

	// Body is the outgoing payload: []byte and string pass through
	// unchanged, everything else is JSON-encoded when the content type is
	// JSON-like.
	Body any

	// Timeout bounds each transport attempt. 0 inherits, NoTimeout disables.
	Timeout time.Duration

	// Retry is the number of retries after the first attempt. 0 inherits,
	// NoRetry disables.
	Retry int

	// RetryDelay is the backoff base. 0 inherits.
	RetryDelay time.Duration

	// RetryOn lists response statuses that trigger a retry. Nil inherits.
	RetryOn []int

	// CacheTTL enables caching of this request for the given duration.
	// Only GET requests are cache candidates; 0 disables.
	CacheTTL time.Duration

	// Token is an optional per-request cancellation handle.
	Token *cancel.Token

	// Group optionally attaches this request to a cancellation group.
	Group *cancel.Group
}

// Request is the fully resolved request configuration. Interceptors may
// replace or mutate it before submission; once handed to the queue it is
// treated as immutable.
type Request struct {
	// ID tags the logical request in logs across all its attempts.
	ID string

	Method string
	URL    string
	Header http.Header
	Body   []byte

	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
	RetryOn    map[int]struct{}
	CacheTTL   time.Duration
}

// Clone returns a deep enough copy for an interceptor to modify freely.
func (r *Request) Clone() *Request {
	cp := *r
	cp.Header = r.Header.Clone()
	if r.Body != nil {
		cp.Body = append([]byte(nil), r.Body...)
	}
	if r.RetryOn != nil {
		cp.RetryOn = make(map[int]struct{}, len(r.RetryOn))
		for s := range r.RetryOn {
			cp.RetryOn[s] = struct{}{}
		}
	}
	return &cp
}

// retryable reports whether the given response status is configured to
// trigger a retry.
func (r *Request) retryable(status int) bool {
	_, ok := r.RetryOn[status]
	return ok
}
