package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultRequestTimeout    = 30 * time.Second
	DefaultRequestsPerMinute = 100
	DefaultMaxRetries        = 3
)

type Config struct {
	ServiceName       string        `koanf:"service_name" mapstructure:"service_name"`
	InstanceURL       string        `koanf:"instance_url" mapstructure:"instance_url"`
	Auth              AuthConfig    `koanf:"auth" mapstructure:"auth"`
	Timeout           time.Duration `koanf:"timeout" mapstructure:"timeout"`
	RequestsPerMinute int           `koanf:"requests_per_minute" mapstructure:"requests_per_minute"`
	MaxRetries        int           `koanf:"max_retries" mapstructure:"max_retries"`
	GatewayID         string        `koanf:"gateway_id" mapstructure:"gateway_id"`
	Debug             bool          `koanf:"debug" mapstructure:"debug"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName:       "itsm-gateway",
		Timeout:           DefaultRequestTimeout,
		RequestsPerMinute: DefaultRequestsPerMinute,
		MaxRetries:        DefaultMaxRetries,
		GatewayID:         "default",
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("core: timeout must not be negative")
	}
	if c.RequestsPerMinute < 0 {
		return fmt.Errorf("core: requests_per_minute must not be negative")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("core: max_retries must not be negative")
	}
	switch strings.TrimSpace(strings.ToLower(c.Auth.Type)) {
	case "", AuthKindBasic, AuthKindOAuth, AuthKindAPIKey:
	default:
		return fmt.Errorf("core: unsupported auth type: %s", c.Auth.Type)
	}
	return nil
}

// APIURL returns the backend table API root derived from the instance URL.
func (c Config) APIURL() string {
	base := strings.TrimRight(strings.TrimSpace(c.InstanceURL), "/")
	if base == "" {
		return ""
	}
	return base + "/api/now"
}

// TokenURL returns the OAuth token endpoint, preferring the configured
// override and falling back to the instance default.
func (c Config) TokenURL() string {
	if c.Auth.OAuth != nil {
		if override := strings.TrimSpace(c.Auth.OAuth.TokenURL); override != "" {
			return override
		}
	}
	base := strings.TrimRight(strings.TrimSpace(c.InstanceURL), "/")
	if base == "" {
		return ""
	}
	return base + "/oauth_token.do"
}
