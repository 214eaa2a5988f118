package config

import (
	"time"

	"github.com/knadh/koanf/v2"
)

// Config is the root configuration for applications built on this
// library.
type Config struct {
	Log  LogConfig  `koanf:"log"`
	HTTP HTTPConfig `koanf:"http"`

	k *koanf.Koanf
}

// LogConfig controls logger construction.
type LogConfig struct {
	Level  string       `koanf:"level" validate:"oneof=trace debug info warn error fatal"`
	Pretty bool         `koanf:"pretty"`
	Output OutputConfig `koanf:"output"`
}

// OutputConfig selects an optional log file destination.
type OutputConfig struct {
	File string `koanf:"file"`
}

// HTTPConfig holds settings for the HTTP client.
type HTTPConfig struct {
	URL     string            `koanf:"url" validate:"omitempty,url"`
	Timeout time.Duration     `koanf:"timeout" validate:"min=0"`
	Retry   RetryConfig       `koanf:"retry"`
	Headers map[string]string `koanf:"headers"`
}

// RetryConfig bounds the client retry loop.
type RetryConfig struct {
	Max     int           `koanf:"max" validate:"min=0"`
	Backoff time.Duration `koanf:"backoff" validate:"min=0"`
}
