// internal/agents/enrich-provider-info/config.go
package enrichproviderinfo

import "time"

type Config struct {
	Timeout time.Duration
	// Seed makes the simulated findings reproducible. Zero means seed from
	// the clock.
	Seed int64
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}
