// Package cache stores responses for idempotent reads under a deterministic
// request fingerprint, with a per-entry TTL.
//
// Three Store implementations are provided:
//
//   - MemoryStore: sharded in-process map, the default
//   - RedisStore: shared cache for multi-process deployments
//   - BigCacheStore: allocation-friendly in-process store for high churn
//
// Expired entries are treated as absent and evicted lazily on the next
// lookup; there is no background janitor.
package cache
