// Package queue bounds the number of simultaneously in-flight transport
// operations. Waiting work is admitted in strict arrival order as capacity
// frees up.
package queue

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/semaphore"
)

// Prometheus metrics for queue admission.
var (
	queueActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "relay_queue_active",
		Help: "Transport operations currently holding a concurrency slot",
	})

	queueWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "relay_queue_wait_seconds",
		Help:    "Time spent waiting for a concurrency slot",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})
)

// Limiter admits work up to a fixed capacity, serving waiters in FIFO order.
// A Limiter with limit <= 0 is a pass-through. Safe for concurrent use.
type Limiter struct {
	sem    *semaphore.Weighted
	limit  int
	active atomic.Int64
}

// NewLimiter creates a limiter with the given capacity. limit <= 0 disables
// admission control entirely.
func NewLimiter(limit int) *Limiter {
	l := &Limiter{limit: limit}
	if limit > 0 {
		l.sem = semaphore.NewWeighted(int64(limit))
	}
	return l
}

// Acquire blocks until a slot is free or ctx fires, whichever comes first.
// A context that is already done fails fast; in either case no slot is
// consumed and the context's cancellation cause is returned. Waiters are
// admitted in the order they arrive.
func (l *Limiter) Acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return context.Cause(ctx)
	}

	if l.sem != nil {
		start := time.Now()
		if err := l.sem.Acquire(ctx, 1); err != nil {
			return context.Cause(ctx)
		}
		queueWaitSeconds.Observe(time.Since(start).Seconds())
	}

	l.active.Add(1)
	queueActive.Inc()
	return nil
}

// Release frees the slot taken by a successful Acquire. It must run exactly
// once per admitted task, on the success and failure settlement paths alike;
// skipping it on a failure path deadlocks waiting work.
func (l *Limiter) Release() {
	l.active.Add(-1)
	queueActive.Dec()
	if l.sem != nil {
		l.sem.Release(1)
	}
}

// Active returns the number of tasks currently holding a slot.
func (l *Limiter) Active() int {
	return int(l.active.Load())
}

// Limit returns the configured capacity, 0 meaning unbounded.
func (l *Limiter) Limit() int {
	if l.limit <= 0 {
		return 0
	}
	return l.limit
}
