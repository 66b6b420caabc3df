package elasticsearch

import (
	"time"

	"github.com/jonesrussell/north-cloud/infrastructure/retry"
)

// Default connection values.
const (
	DefaultURL         = "http://localhost:9200"
	DefaultMaxRetries  = 3
	DefaultPingTimeout = 5 * time.Second
)

// Config holds connection settings. APIKey takes precedence over basic auth.
type Config struct {
	URL         string        `env:"ELASTICSEARCH_URL"      yaml:"url"`
	Username    string        `env:"ELASTICSEARCH_USERNAME" yaml:"username"`
	Password    string        `env:"ELASTICSEARCH_PASSWORD" yaml:"password"`
	APIKey      string        `env:"ELASTICSEARCH_API_KEY"  yaml:"api_key"`
	MaxRetries  int           `yaml:"max_retries"`
	PingTimeout time.Duration `yaml:"ping_timeout"`
	// Retry governs the startup ping loop.
	Retry retry.Config `yaml:"-"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.URL == "" {
		c.URL = DefaultURL
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.PingTimeout == 0 {
		c.PingTimeout = DefaultPingTimeout
	}
	if c.Retry.MaxAttempts == 0 {
		c.Retry = retry.Config{
			MaxAttempts:  5,
			InitialDelay: time.Second,
			MaxDelay:     10 * time.Second,
		}
	}
}
