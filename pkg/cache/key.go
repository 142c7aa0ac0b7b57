package cache

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// Key builds the deterministic fingerprint identifying a request for cache
// purposes: method, full URL and a hash of the serialized body. Identical
// requests always map to the same key; requests differing in any of the
// three parts never collide on the body hash alone because method and URL
// are carried verbatim.
func Key(method, url string, body []byte) string {
	h := fnv.New64a()
	h.Write(body)
	return fmt.Sprintf("%s:%s:%016x", strings.ToUpper(method), url, h.Sum64())
}
