package main

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "TINK"

var configKeys = []string{
	"service_name",
	"base_url",
	"user_agent",
	"transport.kind",
	"transport.timeout_ms",
	"transport.max_body_bytes",
	"polling.interval_ms",
	"polling.max_attempts",
	"cache.provider_ttl_seconds",
}

// viperLoader feeds core.CfgxConfigProvider from an optional config file and
// TINK_* environment variables. Environment wins over the file.
type viperLoader struct {
	v *viper.Viper
}

func newViperLoader(path string) (*viperLoader, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range configKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}
	if path = strings.TrimSpace(path); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, err
			}
		}
	}
	return &viperLoader{v: v}, nil
}

func (l *viperLoader) LoadRaw(context.Context) (map[string]any, error) {
	if l == nil || l.v == nil {
		return map[string]any{}, nil
	}
	return l.v.AllSettings(), nil
}
