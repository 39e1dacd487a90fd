package core

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL              = "https://api.tink.com"
	DefaultTransportKind        = "rest"
	defaultTransportTimeoutMS   = 30000
	defaultMaxResponseBodyBytes = 10 << 20
	defaultPollingIntervalMS    = 1000
	defaultPollingMaxAttempts   = 120
	defaultProviderCacheTTL     = 300
)

type TransportConfig struct {
	Kind         string `koanf:"kind" mapstructure:"kind"`
	TimeoutMS    int    `koanf:"timeout_ms" mapstructure:"timeout_ms"`
	MaxBodyBytes int64  `koanf:"max_body_bytes" mapstructure:"max_body_bytes"`
}

type PollingConfig struct {
	IntervalMS  int `koanf:"interval_ms" mapstructure:"interval_ms"`
	MaxAttempts int `koanf:"max_attempts" mapstructure:"max_attempts"`
}

type CacheConfig struct {
	ProviderTTLSeconds int `koanf:"provider_ttl_seconds" mapstructure:"provider_ttl_seconds"`
}

type Config struct {
	ServiceName string          `koanf:"service_name" mapstructure:"service_name"`
	BaseURL     string          `koanf:"base_url" mapstructure:"base_url"`
	UserAgent   string          `koanf:"user_agent" mapstructure:"user_agent"`
	Transport   TransportConfig `koanf:"transport" mapstructure:"transport"`
	Polling     PollingConfig   `koanf:"polling" mapstructure:"polling"`
	Cache       CacheConfig     `koanf:"cache" mapstructure:"cache"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "tink",
		BaseURL:     DefaultBaseURL,
		UserAgent:   "go-tink",
		Transport: TransportConfig{
			Kind:         DefaultTransportKind,
			TimeoutMS:    defaultTransportTimeoutMS,
			MaxBodyBytes: defaultMaxResponseBodyBytes,
		},
		Polling: PollingConfig{
			IntervalMS:  defaultPollingIntervalMS,
			MaxAttempts: defaultPollingMaxAttempts,
		},
		Cache: CacheConfig{
			ProviderTTLSeconds: defaultProviderCacheTTL,
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	base := strings.TrimSpace(c.BaseURL)
	if base == "" {
		return fmt.Errorf("core: base_url is required")
	}
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("core: base_url %q is invalid", base)
	}
	if c.Transport.TimeoutMS < 0 {
		return fmt.Errorf("core: transport.timeout_ms must not be negative")
	}
	if c.Transport.MaxBodyBytes < 0 {
		return fmt.Errorf("core: transport.max_body_bytes must not be negative")
	}
	if c.Polling.IntervalMS < 0 || c.Polling.MaxAttempts < 0 {
		return fmt.Errorf("core: polling settings must not be negative")
	}
	if c.Cache.ProviderTTLSeconds < 0 {
		return fmt.Errorf("core: cache.provider_ttl_seconds must not be negative")
	}
	return nil
}

func (c Config) TransportTimeout() time.Duration {
	if c.Transport.TimeoutMS <= 0 {
		return 0
	}
	return time.Duration(c.Transport.TimeoutMS) * time.Millisecond
}

func (c Config) PollingInterval() time.Duration {
	if c.Polling.IntervalMS <= 0 {
		return time.Duration(defaultPollingIntervalMS) * time.Millisecond
	}
	return time.Duration(c.Polling.IntervalMS) * time.Millisecond
}

func (c Config) PollingMaxAttempts() int {
	if c.Polling.MaxAttempts <= 0 {
		return defaultPollingMaxAttempts
	}
	return c.Polling.MaxAttempts
}

func (c Config) ProviderCacheTTL() time.Duration {
	return time.Duration(c.Cache.ProviderTTLSeconds) * time.Second
}
