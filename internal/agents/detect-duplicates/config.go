// internal/agents/detect-duplicates/config.go
package detectduplicates

import "time"

type Config struct {
	Timeout time.Duration
	// CacheKey is where the latest report is stored; CacheTTL bounds how
	// long a stale report can be served.
	CacheKey string
	CacheTTL time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:  60 * time.Second,
		CacheKey: "dedupe:report:latest",
		CacheTTL: 1 * time.Hour,
	}
}
