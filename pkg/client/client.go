// Package client provides the core request orchestrator: hook pipelines,
// bounded concurrency, retry with backoff, response caching and composable
// cancellation over a pluggable transport.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/relaykit/relay/pkg/cache"
	"github.com/relaykit/relay/pkg/cancel"
	"github.com/relaykit/relay/pkg/logging"
	"github.com/relaykit/relay/pkg/queue"
)

// Prometheus metrics for request orchestration.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_requests_total",
		Help: "Total requests by method and outcome status",
	}, []string{"method", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "relay_request_duration_seconds",
		Help:    "Request duration from submission to settlement",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
	}, []string{"method"})

	failuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_failures_total",
		Help: "Requests settled as failures, by error kind",
	}, []string{"kind"})
)

// Client is the request orchestrator. It is safe for concurrent use; the
// registration methods are visible to subsequent calls on the same handle.
type Client struct {
	cfg       Config
	transport Transport
	cache     cache.Store
	limiter   *queue.Limiter
	logger    zerolog.Logger

	mu             sync.RWMutex
	defaultHeaders map[string]string
	reqHooks       []hook[*Request]
	respHooks      []hook[*Result]
	reqTransforms  []hook[any]
	respTransforms []hook[[]byte]
	errorHandlers  []ErrorHandler
}

// New creates a client from cfg.
func New(cfg Config) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	transport := cfg.Transport
	if transport == nil {
		transport = defaultTransport()
	}

	store := cfg.Cache
	if store == nil {
		store = cache.NewMemoryStore()
	}

	logger := logging.NewLogger("relay-client")
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	headers := make(map[string]string, len(cfg.Headers))
	for k, v := range cfg.Headers {
		headers[k] = v
	}

	return &Client{
		cfg:            cfg,
		transport:      transport,
		cache:          store,
		limiter:        queue.NewLimiter(cfg.MaxConcurrent),
		logger:         logger,
		defaultHeaders: headers,
	}, nil
}

// Do executes one logical request and always settles it into a non-nil
// Result: transport failures, cancellations and HTTP error statuses are all
// returned tagged, never raised.
func (c *Client) Do(ctx context.Context, method, path string, opts *Options) *Result {
	start := time.Now()
	if ctx == nil {
		ctx = context.Background()
	}
	if opts == nil {
		opts = &Options{}
	}

	requestID := uuid.NewString()
	logger := c.logger.With().
		Str("request_id", requestID).
		Str("method", method).
		Logger()

	defer func() {
		requestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	}()

	req, err := c.buildRequest(requestID, method, path, opts, logger)
	if err != nil {
		res := c.failResult(&Request{ID: requestID, Method: method, URL: path}, KindTransport, 0, nil, "invalid request", err, 0, time.Since(start))
		c.settleFailure(res, logger)
		return res
	}

	// Request interceptors see the fully shaped configuration.
	req = c.applyRequestHooks(req, logger)
	logger = logger.With().Str("url", req.URL).Logger()

	parents := []context.Context{ctx}
	if opts.Token != nil {
		parents = append(parents, opts.Token.Context())
	}
	if opts.Group != nil {
		parents = append(parents, opts.Group.Context())
	}
	reqCtx, stop := cancel.Compose(parents...)
	defer stop()

	cacheable := req.Method == http.MethodGet && req.CacheTTL > 0
	var key string
	if cacheable {
		key = cache.Key(req.Method, req.URL, req.Body)
		if entry, err := c.cache.Get(reqCtx, key); err == nil {
			logger.Debug().Str("cache_key", key).Msg("Cache hit")
			res := c.resultFromEntry(req, entry, time.Since(start))
			res = c.applyResponsePipelines(res, logger)
			requestsTotal.WithLabelValues(method, strconv.Itoa(res.StatusCode)).Inc()
			return res
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			logger.Warn().Err(err).Str("cache_key", key).Msg("Cache get failed")
		}
	}

	// A fired signal must short-circuit queued work without consuming a
	// concurrency slot.
	if err := c.limiter.Acquire(reqCtx); err != nil {
		res := c.failResult(req, KindAbort, 0, nil, "request canceled before start", err, 0, time.Since(start))
		c.settleFailure(res, logger)
		return res
	}
	defer c.limiter.Release()

	res := c.doWithRetry(reqCtx, req, logger)

	// The cache stores the raw response, before any response-side hook
	// touches it. A later hit replays the pipelines on the same input a
	// fresh response would, so non-idempotent transforms run exactly once
	// per settlement.
	if cacheable && res.OK {
		now := time.Now()
		entry := &cache.Entry{
			Body:       res.Body,
			StatusCode: res.StatusCode,
			Status:     res.Status,
			Header:     res.Header.Clone(),
			ExpiresAt:  now.Add(req.CacheTTL),
			CachedAt:   now,
		}
		if err := c.cache.Set(reqCtx, key, entry); err != nil {
			logger.Warn().Err(err).Str("cache_key", key).Msg("Cache set failed")
		} else {
			logger.Debug().Str("cache_key", key).Dur("ttl", req.CacheTTL).Msg("Response cached")
		}
	}

	// Response-side hooks shape every received response, including http
	// failures carrying a body. Pure transport/abort failures have no
	// response to shape.
	if res.StatusCode > 0 {
		res = c.applyResponsePipelines(res, logger)
	}

	requestsTotal.WithLabelValues(method, strconv.Itoa(res.StatusCode)).Inc()
	if res.Err != nil {
		c.settleFailure(res, logger)
	}
	return res
}

// buildRequest resolves the target URL, merges headers, runs the request
// body transforms and encodes the payload.
func (c *Client) buildRequest(requestID, method, path string, opts *Options, logger zerolog.Logger) (*Request, error) {
	target, err := c.resolveURL(path, opts.Query)
	if err != nil {
		return nil, err
	}

	header := make(http.Header)
	c.mu.RLock()
	for k, v := range c.defaultHeaders {
		header.Set(k, v)
	}
	c.mu.RUnlock()
	for k, v := range opts.Headers {
		header.Set(k, v)
	}

	body := opts.Body
	transforms := c.snapshotRequestTransforms()
	if body != nil && len(transforms) > 0 {
		var failures []HookFailure
		body, failures = runHooks(transforms, body)
		logHookFailures(logger, "transform_request", failures)
	}

	encoded := encodeBody(body, header.Get("Content-Type"))
	if encoded != nil && header.Get("Content-Type") == "" {
		header.Set("Content-Type", "application/json")
	}

	timeout := c.cfg.Timeout
	if opts.Timeout != 0 {
		timeout = opts.Timeout
	}
	if timeout < 0 {
		timeout = 0
	}

	retries := c.cfg.MaxRetries
	if opts.Retry != 0 {
		retries = opts.Retry
	}
	if retries < 0 {
		retries = 0
	}

	retryDelay := c.cfg.RetryDelay
	if opts.RetryDelay > 0 {
		retryDelay = opts.RetryDelay
	}

	retryOn := opts.RetryOn
	if retryOn == nil {
		retryOn = c.cfg.RetryOn
	}
	var retrySet map[int]struct{}
	if len(retryOn) > 0 {
		retrySet = make(map[int]struct{}, len(retryOn))
		for _, s := range retryOn {
			retrySet[s] = struct{}{}
		}
	}

	return &Request{
		ID:         requestID,
		Method:     strings.ToUpper(method),
		URL:        target,
		Header:     header,
		Body:       encoded,
		Timeout:    timeout,
		MaxRetries: retries,
		RetryDelay: retryDelay,
		RetryOn:    retrySet,
		CacheTTL:   opts.CacheTTL,
	}, nil
}

// resolveURL joins relative paths with the configured base; absolute URLs
// pass through untouched.
func (c *Client) resolveURL(path string, query url.Values) (string, error) {
	target := path
	if !isAbsoluteURL(path) {
		if c.cfg.BaseURL == "" {
			return "", fmt.Errorf("relative path %q requires a base url", path)
		}
		target = strings.TrimRight(c.cfg.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
	}

	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func isAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// encodeBody serializes the payload. Strings and byte slices pass through;
// anything else is JSON-encoded when the content type is JSON-like, falling
// back to its plain string form when encoding fails.
func encodeBody(body any, contentType string) []byte {
	switch b := body.(type) {
	case nil:
		return nil
	case []byte:
		return b
	case string:
		return []byte(b)
	default:
		if jsonLike(contentType) {
			if data, err := json.Marshal(body); err == nil {
				return data
			}
		}
		return []byte(fmt.Sprint(body))
	}
}

func jsonLike(contentType string) bool {
	return contentType == "" || strings.Contains(strings.ToLower(contentType), "json")
}

func (c *Client) applyRequestHooks(req *Request, logger zerolog.Logger) *Request {
	c.mu.RLock()
	hooks := append([]hook[*Request](nil), c.reqHooks...)
	c.mu.RUnlock()

	out, failures := runHooks(hooks, req)
	logHookFailures(logger, "intercept_request", failures)
	return out
}

// applyResponsePipelines transforms the body first, then lets response
// interceptors see the fully shaped result. Runs for network responses and
// cache hits alike.
func (c *Client) applyResponsePipelines(res *Result, logger zerolog.Logger) *Result {
	c.mu.RLock()
	transforms := append([]hook[[]byte](nil), c.respTransforms...)
	hooks := append([]hook[*Result](nil), c.respHooks...)
	c.mu.RUnlock()

	if len(transforms) > 0 {
		body, failures := runHooks(transforms, res.Body)
		logHookFailures(logger, "transform_response", failures)
		res.Body = body
		if res.Err != nil {
			res.Err.Body = body
		}
	}

	out, failures := runHooks(hooks, res)
	logHookFailures(logger, "intercept_response", failures)
	return out
}

func (c *Client) snapshotRequestTransforms() []hook[any] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]hook[any](nil), c.reqTransforms...)
}

func (c *Client) resultFromEntry(req *Request, entry *cache.Entry, elapsed time.Duration) *Result {
	return &Result{
		OK:         true,
		StatusCode: entry.StatusCode,
		Status:     entry.Status,
		Header:     entry.Header.Clone(),
		Body:       append([]byte(nil), entry.Body...),
		FromCache:  true,
		Request:    req,
		Elapsed:    elapsed,
	}
}

// settleFailure records metrics and notifies the registered global error
// handlers. Handlers run best effort: a panicking handler is skipped.
func (c *Client) settleFailure(res *Result, logger zerolog.Logger) {
	failuresTotal.WithLabelValues(string(res.Err.Kind)).Inc()
	logger.Error().
		Str("kind", string(res.Err.Kind)).
		Int("status_code", res.Err.StatusCode).
		Int("attempts", res.Err.Attempts).
		Err(res.Err.Cause).
		Msg("Request settled as failure")

	c.mu.RLock()
	handlers := append([]ErrorHandler(nil), c.errorHandlers...)
	c.mu.RUnlock()

	for _, h := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Warn().Interface("panic", r).Msg("Error handler panicked, skipped")
				}
			}()
			h(res.Err)
		}()
	}
}

// Use registers an interceptor pair under a name used in hook-failure logs.
func (c *Client) Use(name string, i Interceptors) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i.Request != nil {
		c.reqHooks = append(c.reqHooks, hook[*Request]{name: name, fn: i.Request})
	}
	if i.Response != nil {
		c.respHooks = append(c.respHooks, hook[*Result]{name: name, fn: i.Response})
	}
}

// AddTransformRequest appends an outgoing body transform.
func (c *Client) AddTransformRequest(name string, fn RequestTransform) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reqTransforms = append(c.reqTransforms, hook[any]{name: name, fn: fn})
}

// AddTransformResponse appends an incoming body transform.
func (c *Client) AddTransformResponse(name string, fn ResponseTransform) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.respTransforms = append(c.respTransforms, hook[[]byte]{name: name, fn: fn})
}

// OnError registers a global failure handler. Handlers observe failures,
// they cannot alter them; hook failures are never reported here.
func (c *Client) OnError(fn ErrorHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errorHandlers = append(c.errorHandlers, fn)
}

// SetToken sets the Authorization default header. An empty token removes
// it; an empty scheme defaults to Bearer.
func (c *Client) SetToken(token, scheme string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if token == "" {
		delete(c.defaultHeaders, "Authorization")
		return
	}
	if scheme == "" {
		scheme = "Bearer"
	}
	c.defaultHeaders["Authorization"] = scheme + " " + token
}

// ClearCache drops every cached response.
func (c *Client) ClearCache(ctx context.Context) error {
	return c.cache.Clear(ctx)
}

// InvalidateCache removes the cached response for one request, identified
// the same way the cache write identified it: the body runs through the
// registered request transforms before it is encoded into the fingerprint.
func (c *Client) InvalidateCache(ctx context.Context, method, path string, body any) error {
	target, err := c.resolveURL(path, nil)
	if err != nil {
		return err
	}
	if transforms := c.snapshotRequestTransforms(); body != nil && len(transforms) > 0 {
		body, _ = runHooks(transforms, body)
	}
	key := cache.Key(method, target, encodeBody(body, ""))
	return c.cache.Delete(ctx, key)
}
