// internal/agents/validate-provider-data/config.go
package validateproviderdata

import "time"

type Config struct {
	Timeout time.Duration
	// Seed makes the simulated confidence scores reproducible. Zero means
	// seed from the clock.
	Seed int64
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}
