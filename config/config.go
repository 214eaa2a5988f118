// Package config loads layered configuration: built-in defaults,
// an optional YAML file, then DEVTOOLS_-prefixed environment
// variables, with later sources taking priority.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	env "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/robinmagnussen/go-devtools/httpclient"
	"github.com/robinmagnussen/go-devtools/validation"
)

// DefaultFile is the YAML file Load looks for in the working
// directory.
const DefaultFile = "devtools.yaml"

// EnvPrefix marks environment variables that override file and
// default values, e.g. DEVTOOLS_HTTP_RETRY_MAX=5.
const EnvPrefix = "DEVTOOLS_"

// Load reads configuration from DefaultFile if it exists, applying
// defaults below it and environment variables above it.
func Load() (*Config, error) {
	return LoadFile(DefaultFile)
}

// LoadFile is Load with an explicit YAML path. A missing file is
// skipped; any other read or parse failure is returned.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("load %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.TrimPrefix(key, EnvPrefix)
			return strings.ReplaceAll(strings.ToLower(key), "_", "."), value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.k = k

	if err := validation.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func defaults() map[string]any {
	return map[string]any{
		"log.level":       "info",
		"log.pretty":      false,
		"log.output.file": "",

		"http.url":           "",
		"http.timeout":       "30s",
		"http.retry.max":     3,
		"http.retry.backoff": "1s",
	}
}

// ClientConfig converts the HTTP section into a client configuration.
func (h HTTPConfig) ClientConfig() httpclient.Config {
	return httpclient.Config{
		BaseURL:        h.URL,
		DefaultHeaders: h.Headers,
		Timeout:        h.Timeout,
		MaxRetries:     h.Retry.Max,
		RetryBackoff:   h.Retry.Backoff,
	}
}

// String returns the raw value at key, for settings outside the typed
// struct. Returns "" when the key is absent or the config was built
// without a backing store.
func (c *Config) String(key string) string {
	if c.k == nil {
		return ""
	}
	return c.k.String(key)
}

// Int returns the integer value at key, or 0 when absent.
func (c *Config) Int(key string) int {
	if c.k == nil {
		return 0
	}
	return c.k.Int(key)
}

// Bool returns the boolean value at key, or false when absent.
func (c *Config) Bool(key string) bool {
	if c.k == nil {
		return false
	}
	return c.k.Bool(key)
}

// Duration returns the duration value at key, or 0 when absent.
func (c *Config) Duration(key string) time.Duration {
	if c.k == nil {
		return 0
	}
	return c.k.Duration(key)
}

// Exists reports whether key is set by any source.
func (c *Config) Exists(key string) bool {
	return c.k != nil && c.k.Exists(key)
}
