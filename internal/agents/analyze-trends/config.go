// internal/agents/analyze-trends/config.go
package analyzetrends

import "time"

type Config struct {
	Timeout time.Duration
	// Seed makes the simulated seasonal series reproducible. Zero means
	// seed from the clock.
	Seed int64
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 60 * time.Second,
	}
}
