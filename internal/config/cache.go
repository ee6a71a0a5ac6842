package config

import (
	"time"
)

// CacheConfig defines settings for the public response cache. The cache
// fronts the read-only content endpoints (projects, services, artists,
// team) whose payloads change only when an editor saves in the back
// office. When Enabled is false or no Redis client is available, caching
// is disabled and requests fall through to the store.
type CacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig reads CACHE_* environment variables, with defaults sized
// for the small JSON documents this site serves.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		TTL:          envDur("CACHE_TTL", 30*time.Second),
		Prefix:       envStr("CACHE_PREFIX", "av:cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
	}
}
