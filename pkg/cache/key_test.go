package cache

import (
	"strings"
	"testing"
)

func TestKeyDeterministic(t *testing.T) {
	body := []byte(`{"a":1}`)
	k1 := Key("GET", "https://api.example.com/posts", body)
	k2 := Key("GET", "https://api.example.com/posts", body)

	if k1 != k2 {
		t.Errorf("identical requests produced different keys: %q vs %q", k1, k2)
	}
}

func TestKeyDiscriminates(t *testing.T) {
	base := Key("GET", "https://api.example.com/posts", nil)

	tests := []struct {
		name   string
		method string
		url    string
		body   []byte
	}{
		{"different method", "POST", "https://api.example.com/posts", nil},
		{"different url", "GET", "https://api.example.com/users", nil},
		{"different body", "GET", "https://api.example.com/posts", []byte("x")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Key(tt.method, tt.url, tt.body); got == base {
				t.Errorf("Key(%s, %s, %q) collided with base key", tt.method, tt.url, tt.body)
			}
		})
	}
}

func TestKeyNormalizesMethod(t *testing.T) {
	if Key("get", "http://x/", nil) != Key("GET", "http://x/", nil) {
		t.Error("method case must not change the key")
	}
}

func TestKeyNilBodyMatchesEmptyBody(t *testing.T) {
	if Key("GET", "http://x/", nil) != Key("GET", "http://x/", []byte{}) {
		t.Error("nil and empty body must fingerprint identically")
	}
}

func TestKeyShape(t *testing.T) {
	k := Key("DELETE", "http://x/a", []byte("b"))
	if !strings.HasPrefix(k, "DELETE:http://x/a:") {
		t.Errorf("unexpected key shape: %q", k)
	}
}
