// internal/workers/user/fetch-core-info/config.go
package fetchcoreinfo

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}
