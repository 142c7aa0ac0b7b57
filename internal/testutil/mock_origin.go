// Package testutil provides testing utilities for the relay client.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockResponse defines the behavior of one mock origin response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockOrigin is a configurable origin server for testing the orchestrator
// against real HTTP exchanges.
type MockOrigin struct {
	server *httptest.Server

	mu         sync.Mutex
	handlers   map[string]http.HandlerFunc
	total      int
	perPath    map[string]int
	lastHeader http.Header
}

// NewMockOrigin starts a mock origin server. Callers must Close it.
func NewMockOrigin() *MockOrigin {
	m := &MockOrigin{
		handlers: make(map[string]http.HandlerFunc),
		perPath:  make(map[string]int),
	}

	m.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.total++
		m.perPath[r.URL.Path]++
		m.lastHeader = r.Header.Clone()
		handler, ok := m.handlers[r.URL.Path]
		m.mu.Unlock()

		if ok {
			handler(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	}))

	return m
}

// URL returns the origin's base URL.
func (m *MockOrigin) URL() string {
	return m.server.URL
}

// Close shuts the origin down.
func (m *MockOrigin) Close() {
	m.server.Close()
}

// Reset clears counters and handlers.
func (m *MockOrigin) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.total = 0
	m.perPath = make(map[string]int)
	m.handlers = make(map[string]http.HandlerFunc)
	m.lastHeader = nil
}

// SetHandler installs a custom handler for a path.
func (m *MockOrigin) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed response for a path.
func (m *MockOrigin) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		writeMockResponse(w, resp)
	})
}

// SetSequence configures a path to serve the given responses in order; the
// last one repeats once the sequence is exhausted.
func (m *MockOrigin) SetSequence(path string, responses ...MockResponse) {
	var mu sync.Mutex
	i := 0
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		resp := responses[i]
		if i < len(responses)-1 {
			i++
		}
		mu.Unlock()
		writeMockResponse(w, resp)
	})
}

// SetStuck configures a path that never responds, blocking until the client
// abandons the request.
func (m *MockOrigin) SetStuck(path string) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
}

// RequestCount returns the total number of requests received.
func (m *MockOrigin) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.total
}

// CountFor returns the number of requests received for one path.
func (m *MockOrigin) CountFor(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.perPath[path]
}

// LastHeader returns the headers of the most recent request.
func (m *MockOrigin) LastHeader() http.Header {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastHeader
}

func writeMockResponse(w http.ResponseWriter, resp MockResponse) {
	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}
	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	status := resp.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if resp.Body != "" {
		w.Write([]byte(resp.Body))
	}
}
