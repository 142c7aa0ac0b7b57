// Package cancel provides the cancellation primitives used by the request
// orchestrator: single-use tokens, request groups, and composition of
// multiple cancellation sources into one derived signal.
package cancel

import (
	"context"
	"errors"
	"fmt"
)

// ErrAttemptTimeout is the cancellation cause recorded when a per-attempt
// timeout fires. Timeouts are transient and remain eligible for retry;
// explicit token or group cancellation is not.
var ErrAttemptTimeout = errors.New("attempt timed out")

// CanceledError is the cancellation cause recorded when a Token or Group is
// cancelled explicitly by the caller.
type CanceledError struct {
	Reason string
}

// Error implements the error interface.
func (e *CanceledError) Error() string {
	if e.Reason == "" {
		return "request canceled"
	}
	return fmt.Sprintf("request canceled: %s", e.Reason)
}

// IsExplicit reports whether a cancellation cause originates from a Token or
// Group rather than a timeout or an unrelated context.
func IsExplicit(err error) bool {
	var ce *CanceledError
	return errors.As(err, &ce)
}

// IsTimeout reports whether a cancellation cause originates from a timer,
// either the per-attempt timeout or an ambient context deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrAttemptTimeout) || errors.Is(err, context.DeadlineExceeded)
}

// Token is a single-use cancellation handle for one request. Cancelling is
// irreversible; cancelling twice has no additional effect and the first
// reason wins.
type Token struct {
	ctx    context.Context
	cancel context.CancelCauseFunc
}

// NewToken creates an unfired cancellation token.
func NewToken() *Token {
	ctx, cancel := context.WithCancelCause(context.Background())
	return &Token{ctx: ctx, cancel: cancel}
}

// Cancel fires the token's signal with the given reason.
func (t *Token) Cancel(reason string) {
	t.cancel(&CanceledError{Reason: reason})
}

// Context returns the token's signal as a context.
func (t *Token) Context() context.Context {
	return t.ctx
}

// Fired reports whether the token has been cancelled.
func (t *Token) Fired() bool {
	return t.ctx.Err() != nil
}

// Group cancels every request attached to it as a single unit, including
// requests that are still queued and have not started a transport attempt.
type Group struct {
	ctx    context.Context
	cancel context.CancelCauseFunc
}

// NewGroup creates an unfired cancellation group.
func NewGroup() *Group {
	ctx, cancel := context.WithCancelCause(context.Background())
	return &Group{ctx: ctx, cancel: cancel}
}

// Cancel fires the group's signal with the given reason. Idempotent.
func (g *Group) Cancel(reason string) {
	g.cancel(&CanceledError{Reason: reason})
}

// Context returns the group's signal as a context.
func (g *Group) Context() context.Context {
	return g.ctx
}

// Fired reports whether the group has been cancelled.
func (g *Group) Fired() bool {
	return g.ctx.Err() != nil
}
