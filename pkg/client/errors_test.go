package client

import (
	"errors"
	"strings"
	"testing"
)

func TestRequestErrorMessage(t *testing.T) {
	err := &RequestError{
		Kind:       KindHTTP,
		StatusCode: 503,
		Message:    "service unavailable",
		Method:     "GET",
		URL:        "http://api.test/x",
		Attempts:   3,
	}

	msg := err.Error()
	for _, want := range []string{"http error", "GET http://api.test/x", "status 503", "3 attempts"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
}

func TestRequestErrorIsMatchesKind(t *testing.T) {
	err := &RequestError{Kind: KindAbort, Message: "canceled"}

	if !errors.Is(err, &RequestError{Kind: KindAbort}) {
		t.Error("same-kind match failed")
	}
	if errors.Is(err, &RequestError{Kind: KindTransport}) {
		t.Error("cross-kind match succeeded")
	}
}

func TestRequestErrorUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := &RequestError{Kind: KindTransport, Cause: cause}

	if !errors.Is(err, cause) {
		t.Error("Unwrap chain does not reach the cause")
	}
}
