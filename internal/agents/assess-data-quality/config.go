// internal/agents/assess-data-quality/config.go
package assessdataquality

import "time"

type Config struct {
	Timeout time.Duration
	// Seed makes the simulated review-time estimate reproducible. Zero
	// means seed from the clock.
	Seed int64
	// StaleAfterDays marks records not verified within this window.
	StaleAfterDays int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:        30 * time.Second,
		StaleAfterDays: 180,
	}
}
