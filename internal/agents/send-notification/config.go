// internal/agents/send-notification/config.go
package sendnotification

import "time"

type Config struct {
	Timeout time.Duration
	// FromAddress is the sender on outbound update-request emails.
	FromAddress string
	// AlertTopicARN receives SNS alerts for critical-priority providers.
	AlertTopicARN string
	// DryRun skips actual delivery and only generates notification content.
	DryRun bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout:     30 * time.Second,
		FromAddress: "provider-relations@healthnetwork.example.com",
		DryRun:      true,
	}
}
