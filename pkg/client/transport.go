package client

import "net/http"

// Transport performs one physical HTTP exchange. It is an opaque capability
// to the orchestrator: net/http, a pooled client or a test stub all conform.
// Cancellation reaches the transport through the request context; honoring
// it is the transport's responsibility.
type Transport interface {
	Send(req *http.Request) (*http.Response, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(*http.Request) (*http.Response, error)

// Send implements Transport.
func (f TransportFunc) Send(req *http.Request) (*http.Response, error) {
	return f(req)
}

// defaultTransport wraps net/http. No client-level timeout: per-attempt
// deadlines arrive via the request context.
func defaultTransport() Transport {
	return TransportFunc((&http.Client{}).Do)
}
