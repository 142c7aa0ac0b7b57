package client

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("https://api.example.com")

	if cfg.BaseURL != "https://api.example.com" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
	if cfg.MaxConcurrent != 10 {
		t.Errorf("MaxConcurrent = %d, want 10", cfg.MaxConcurrent)
	}
	if cfg.MaxRetries != 0 {
		t.Errorf("MaxRetries = %d, want 0", cfg.MaxRetries)
	}
	if cfg.RetryDelay != 100*time.Millisecond {
		t.Errorf("RetryDelay = %v, want 100ms", cfg.RetryDelay)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"zero value", Config{}, false},
		{"defaults", DefaultConfig("http://api.test"), false},
		{"empty base url", Config{Timeout: time.Second}, false},
		{"relative base url", Config{BaseURL: "api.test/v1"}, true},
		{"scheme only", Config{BaseURL: "http://"}, true},
		{"negative timeout", Config{Timeout: -1}, true},
		{"negative concurrency", Config{MaxConcurrent: -1}, true},
		{"negative retries", Config{MaxRetries: -1}, true},
		{"negative delay", Config{RetryDelay: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRequestClone(t *testing.T) {
	orig := &Request{
		ID:     "req-1",
		Method: "GET",
		URL:    "http://api.test/x",
		Header: map[string][]string{"X-A": {"1"}},
		Body:   []byte("payload"),
		RetryOn: map[int]struct{}{
			503: {},
		},
	}

	cp := orig.Clone()
	cp.Header.Set("X-A", "2")
	cp.Body[0] = 'P'
	cp.RetryOn[429] = struct{}{}

	if orig.Header.Get("X-A") != "1" {
		t.Error("clone shares headers with the original")
	}
	if orig.Body[0] != 'p' {
		t.Error("clone shares the body slice with the original")
	}
	if _, ok := orig.RetryOn[429]; ok {
		t.Error("clone shares the retry status set with the original")
	}
}

func TestRequestRetryable(t *testing.T) {
	r := &Request{RetryOn: map[int]struct{}{503: {}, 429: {}}}

	if !r.retryable(503) || !r.retryable(429) {
		t.Error("configured statuses not retryable")
	}
	if r.retryable(500) || r.retryable(200) {
		t.Error("unlisted status reported retryable")
	}

	empty := &Request{}
	if empty.retryable(503) {
		t.Error("nil retry set reported a status retryable")
	}
}
