package client

import (
	"errors"
	"fmt"
	"time"
)

// ErrRetryExhausted marks failures that consumed every configured attempt.
var ErrRetryExhausted = errors.New("retry attempts exhausted")

// ErrorKind classifies a request failure.
type ErrorKind string

const (
	// KindTransport is a failed physical send: DNS, connection, read.
	KindTransport ErrorKind = "transport"

	// KindAbort is a cancellation by a derived signal, either a per-attempt
	// timeout or an explicit token/group cancel.
	KindAbort ErrorKind = "abort"

	// KindHTTP is a received response whose status indicates failure.
	KindHTTP ErrorKind = "http"
)

// RequestError describes why a request settled as a failure. It is carried
// inside the Result; the client never returns it as a raised error.
type RequestError struct {
	Kind       ErrorKind
	StatusCode int // 0 when no HTTP reply was received
	Body       []byte
	Message    string
	Cause      error
	Method     string
	URL        string
	Attempts   int
	Duration   time.Duration
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	msg := fmt.Sprintf("%s error (%s %s): %s", e.Kind, e.Method, e.URL, e.Message)
	if e.StatusCode > 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Attempts > 1 {
		msg = fmt.Sprintf("%s (after %d attempts)", msg, e.Attempts)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *RequestError) Unwrap() error {
	return e.Cause
}

// Is matches RequestErrors by kind, so callers can write
// errors.Is(res.Err, &RequestError{Kind: KindAbort}).
func (e *RequestError) Is(target error) bool {
	if t, ok := target.(*RequestError); ok {
		return e.Kind == t.Kind
	}
	return false
}
