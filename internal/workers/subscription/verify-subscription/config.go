// internal/workers/subscription/verify-subscription/config.go
package verifysubscription

import "time"

type Config struct {
	Timeout        time.Duration
	ResultCacheTTL time.Duration
	// InputSchema is the activity registry's JSON schema for this task's
	// variables. Empty means no schema validation.
	InputSchema map[string]interface{}
}

func LoadConfig() *Config {
	return &Config{
		Timeout:        30 * time.Second,
		ResultCacheTTL: 5 * time.Minute,
	}
}
