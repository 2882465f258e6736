// Package config loads the CLI configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v10"

	"github.com/adamwoolhether/genai/internal/validate"
	"github.com/adamwoolhether/genai/request"
)

// Config is the CLI configuration read from the environment. Command
// line flags are applied on top by the caller.
type Config struct {
	APIKey string `env:"GEMINI_API_KEY"`

	// Output selects how command results are printed.
	Output   string     `env:"GENAI_OUTPUT" envDefault:"json" validate:"oneof=json yaml"`
	LogLevel slog.Level `env:"GENAI_LOG_LEVEL" envDefault:"INFO"`

	API      APIConfig      `envPrefix:"GENAI_"`
	Emulator EmulatorConfig `envPrefix:"GENAI_EMULATOR_"`
}

// APIConfig configures the HTTP client and request defaults.
type APIConfig struct {
	BaseURL    string        `env:"BASE_URL" envDefault:"https://generativelanguage.googleapis.com" validate:"url"`
	APIVersion string        `env:"API_VERSION" envDefault:"v1beta" validate:"required"`
	Timeout    time.Duration `env:"TIMEOUT" envDefault:"0s" validate:"gte=0"`
	RPS        int           `env:"RPS" envDefault:"0" validate:"gte=0"`
	Burst      int           `env:"BURST" envDefault:"1" validate:"gte=1"`
	UserAgent  string        `env:"USER_AGENT" envDefault:"genai-cli/1.0"`
}

// EmulatorConfig configures the emulate command's HTTP server.
type EmulatorConfig struct {
	Addr            string        `env:"ADDR" envDefault:"127.0.0.1:8089" validate:"hostname_port"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"20s"`
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, err
	}

	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// RequestOptions returns the request options implied by the API settings.
func (c *Config) RequestOptions() []request.Option {
	opts := []request.Option{
		request.WithBaseURL(c.API.BaseURL),
		request.WithAPIVersion(c.API.APIVersion),
	}
	if c.API.Timeout > 0 {
		opts = append(opts, request.WithTimeout(c.API.Timeout))
	}

	return opts
}
