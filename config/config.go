// Package config loads configuration using koanf, following env → compiled
// defaults precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds all service configuration.
type Config struct {
	Environment string `koanf:"environment"`
	LogLevel    string `koanf:"log_level"`

	HTTPPort int    `koanf:"http_port"`
	DataDir  string `koanf:"data_dir"`
	Issuer   string `koanf:"issuer"`

	Lambda  LambdaConfig  `koanf:"lambda"`
	NATS    NATSConfig    `koanf:"nats"`
	OTEL    OTELConfig    `koanf:"otel"`
}

// LambdaConfig configures the goja-based synchronous trigger runner.
type LambdaConfig struct {
	Dir       string            `koanf:"dir"`
	Timeout   time.Duration     `koanf:"timeout"`
	Functions map[string]string `koanf:"functions"`
}

// NATSConfig configures the JetStream domain event publisher. Empty URL
// disables event publishing.
type NATSConfig struct {
	URL     string `koanf:"url"`
	Stream  string `koanf:"stream"`
	Subject string `koanf:"subject"`
}

// OTELConfig configures trace export. Empty Endpoint disables export.
type OTELConfig struct {
	Endpoint    string `koanf:"endpoint"`
	ServiceName string `koanf:"service_name"`
}

func defaults() *Config {
	return &Config{
		Environment: "local",
		LogLevel:    "info",
		HTTPPort:    9229,
		DataDir:     "./.cognito-local",
		Issuer:      "http://localhost:9229",
		Lambda: LambdaConfig{
			Dir:       "./lambda",
			Timeout:   15 * time.Second,
			Functions: map[string]string{},
		},
		NATS: NATSConfig{
			Stream:  "IDENTITY",
			Subject: "identity.>",
		},
		OTEL: OTELConfig{
			ServiceName: "cognito-local",
		},
	}
}

// Load loads configuration from environment variables over compiled
// defaults. Variable names use "_" as the nesting delimiter, lower-cased,
// e.g. LAMBDA_TIMEOUT -> lambda.timeout.
func Load() (*Config, error) {
	k := koanf.New(".")
	cfg := defaults()

	err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(s), "_", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}

func (c *Config) IsLocal() bool {
	return c.Environment == "local"
}
