package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/relaykit/relay/pkg/cancel"
)

// Prometheus metrics for retry behavior.
var (
	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_retries_total",
		Help: "Total retry attempts by trigger",
	}, []string{"trigger"}) // "transport", "timeout", "status"

	retryBackoffSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "relay_retry_backoff_seconds",
		Help:    "Backoff duration before retry attempts",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	})

	retryExhaustedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_retry_exhausted_total",
		Help: "Requests that failed after consuming every attempt",
	})
)

// doWithRetry drives one logical request as a bounded sequence of transport
// attempts. ctx is the composed cancellation signal (caller context, token,
// group); each attempt additionally arms its own timeout timer.
//
// Explicit cancellation settles immediately. Transport errors and timed-out
// attempts are transient and retried while attempts remain, as are response
// statuses listed in RetryOn. Any other response is final, ok or not.
func (c *Client) doWithRetry(ctx context.Context, req *Request, logger zerolog.Logger) *Result {
	start := time.Now()

	for attempt := 1; ; attempt++ {
		attemptCtx, disarm := cancel.WithAttemptTimeout(ctx, req.Timeout)
		res, sendErr := c.sendOnce(attemptCtx, req)
		// The body is fully read by now, so disarming here cannot
		// truncate it.
		disarm()

		if sendErr != nil {
			var abortCause error
			if attemptCtx.Err() != nil {
				abortCause = context.Cause(attemptCtx)
			}

			if cancel.IsExplicit(abortCause) {
				return c.failResult(req, KindAbort, 0, nil, "request canceled", abortCause, attempt, time.Since(start))
			}

			trigger := "transport"
			if cancel.IsTimeout(abortCause) {
				trigger = "timeout"
			}

			if attempt > req.MaxRetries {
				cause := sendErr
				if trigger == "timeout" {
					cause = abortCause
				}
				if req.MaxRetries > 0 {
					retryExhaustedTotal.Inc()
					cause = fmt.Errorf("%w: %w", ErrRetryExhausted, cause)
				}
				if trigger == "timeout" {
					return c.failResult(req, KindAbort, 0, nil, "attempt timed out", cause, attempt, time.Since(start))
				}
				return c.failResult(req, KindTransport, 0, nil, "network request failed", cause, attempt, time.Since(start))
			}

			if err := c.waitBackoff(ctx, req, attempt, trigger, logger); err != nil {
				return c.failResult(req, KindAbort, 0, nil, "request canceled", err, attempt, time.Since(start))
			}
			continue
		}

		if !res.OK && req.retryable(res.StatusCode) && attempt <= req.MaxRetries {
			if err := c.waitBackoff(ctx, req, attempt, "status", logger); err != nil {
				return c.failResult(req, KindAbort, res.StatusCode, res.Body, "request canceled", err, attempt, time.Since(start))
			}
			continue
		}

		res.Elapsed = time.Since(start)
		if !res.OK {
			if req.retryable(res.StatusCode) {
				retryExhaustedTotal.Inc()
			}
			res.Err = &RequestError{
				Kind:       KindHTTP,
				StatusCode: res.StatusCode,
				Body:       res.Body,
				Message:    res.Status,
				Method:     req.Method,
				URL:        req.URL,
				Attempts:   attempt,
				Duration:   res.Elapsed,
			}
		} else if attempt > 1 {
			logger.Info().Int("attempt", attempt).Msg("Request succeeded after retry")
		}
		return res
	}
}

// sendOnce performs one physical transport attempt and drains the body.
func (c *Client) sendOnce(ctx context.Context, req *Request) (*Result, error) {
	var bodyReader io.Reader
	if len(req.Body) > 0 {
		bodyReader = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bodyReader)
	if err != nil {
		return nil, err
	}
	httpReq.Header = req.Header.Clone()

	resp, err := c.transport.Send(httpReq)
	if err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}

	return &Result{
		OK:         resp.StatusCode < 400,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		Body:       body,
		Request:    req,
	}, nil
}

// waitBackoff sleeps the exponential backoff for the given attempt, giving
// up immediately if a cancellation signal fires during the wait.
func (c *Client) waitBackoff(ctx context.Context, req *Request, attempt int, trigger string, logger zerolog.Logger) error {
	delay := backoffDelay(req.RetryDelay, attempt)

	retriesTotal.WithLabelValues(trigger).Inc()
	retryBackoffSeconds.Observe(delay.Seconds())
	logger.Warn().
		Int("attempt", attempt).
		Int("max_retries", req.MaxRetries).
		Dur("backoff", delay).
		Str("trigger", trigger).
		Msg("Retrying request after backoff")

	if delay <= 0 {
		if err := ctx.Err(); err != nil {
			return context.Cause(ctx)
		}
		return nil
	}

	select {
	case <-ctx.Done():
		return context.Cause(ctx)
	case <-time.After(delay):
		return nil
	}
}

// backoffDelay doubles the base per attempt and adds uniform jitter in
// [0, base) to spread synchronized retries.
func backoffDelay(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	delay := base << (attempt - 1)
	return delay + time.Duration(rand.Int63n(int64(base)))
}

func (c *Client) failResult(req *Request, kind ErrorKind, status int, body []byte, message string, cause error, attempts int, elapsed time.Duration) *Result {
	return &Result{
		OK:         false,
		StatusCode: status,
		Body:       body,
		Request:    req,
		Elapsed:    elapsed,
		Err: &RequestError{
			Kind:       kind,
			StatusCode: status,
			Body:       body,
			Message:    message,
			Cause:      cause,
			Method:     req.Method,
			URL:        req.URL,
			Attempts:   attempts,
			Duration:   elapsed,
		},
	}
}
