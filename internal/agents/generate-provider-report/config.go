// internal/agents/generate-provider-report/config.go
package generateproviderreport

import "time"

type Config struct {
	Timeout time.Duration
	// ProviderRelationsPhone appears in outreach emails.
	ProviderRelationsPhone string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:                30 * time.Second,
		ProviderRelationsPhone: "(800) 555-0199",
	}
}
