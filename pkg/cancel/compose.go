package cancel

import (
	"context"
	"time"
)

// Compose derives a context that fires the instant any of the given parents
// fires, propagating the first firing parent's cause. Nil parents are
// ignored; with no live parents the derived context is inert until the
// returned stop function is called. Parents remain independently observable.
//
// The stop function releases the watchers and must be called once the
// derived context is no longer needed, on every settlement path.
func Compose(parents ...context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(context.Background())

	stops := make([]func() bool, 0, len(parents))
	for _, parent := range parents {
		if parent == nil {
			continue
		}
		if parent.Err() != nil {
			// First writer wins, so firing for an already-cancelled
			// parent short-circuits the rest.
			cancel(context.Cause(parent))
			break
		}
		p := parent
		stops = append(stops, context.AfterFunc(p, func() {
			cancel(context.Cause(p))
		}))
	}

	stop := func() {
		for _, s := range stops {
			s()
		}
		cancel(context.Canceled)
	}
	return ctx, stop
}

// WithAttemptTimeout arms a fresh timeout timer for a single transport
// attempt. The timer's cause is ErrAttemptTimeout so the executor can tell
// a timed-out attempt from an explicit cancellation. A non-positive duration
// disables the timer. The returned cancel function disarms the timer and
// must be called as soon as the attempt settles.
func WithAttemptTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return parent, func() {}
	}
	return context.WithTimeoutCause(parent, d, ErrAttemptTimeout)
}
