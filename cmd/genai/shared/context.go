// Package shared holds the context passed to all CLI commands.
package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/adamwoolhether/genai/client"
	"github.com/adamwoolhether/genai/internal/config"
	"github.com/adamwoolhether/genai/request"
)

// Context carries global CLI state. Flags set on the root command take
// precedence over the environment.
type Context struct {
	// Output overrides GENAI_OUTPUT.
	Output string
	// BaseURL overrides GENAI_BASE_URL.
	BaseURL string
	// APIKey overrides GEMINI_API_KEY.
	APIKey string
	// Stderr receives log output. Defaults to os.Stderr.
	Stderr io.Writer

	cfg *config.Config
	log *slog.Logger
}

// Config loads the environment configuration once and applies flag
// overrides.
func (c *Context) Config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if c.Output != "" {
		if c.Output != "json" && c.Output != "yaml" {
			return nil, fmt.Errorf("unknown output format %q: must be json or yaml", c.Output)
		}
		cfg.Output = c.Output
	}
	if c.BaseURL != "" {
		cfg.API.BaseURL = c.BaseURL
	}
	if c.APIKey != "" {
		cfg.APIKey = c.APIKey
	}

	c.cfg = cfg
	return cfg, nil
}

// Logger returns a text logger writing to Stderr at the configured level.
func (c *Context) Logger() *slog.Logger {
	if c.log != nil {
		return c.log
	}

	level := slog.LevelInfo
	if cfg, err := c.Config(); err == nil {
		level = cfg.LogLevel
	}

	w := c.Stderr
	if w == nil {
		w = os.Stderr
	}

	c.log = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	return c.log
}

// API returns the API key and the request options every API command
// shares. Requests go through a client built from the configuration.
func (c *Context) API() (string, []request.Option, error) {
	cfg, err := c.Config()
	if err != nil {
		return "", nil, err
	}
	if cfg.APIKey == "" {
		return "", nil, errors.New("no API key: set GEMINI_API_KEY or pass --api-key")
	}

	clientOpts := []client.Option{
		client.WithUserAgent(cfg.API.UserAgent),
		client.WithLogger(c.Logger()),
	}
	if cfg.API.RPS > 0 {
		clientOpts = append(clientOpts, client.WithThrottle(cfg.API.RPS, cfg.API.Burst))
	}

	cl, err := client.Build(clientOpts...)
	if err != nil {
		return "", nil, fmt.Errorf("building client: %w", err)
	}

	opts := append(cfg.RequestOptions(), request.WithFetch(cl.Fetch))

	return cfg.APIKey, opts, nil
}

// Print writes v to w in the configured output format.
func (c *Context) Print(w io.Writer, v any) error {
	cfg, err := c.Config()
	if err != nil {
		return err
	}

	if cfg.Output == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	// Round trip through JSON so YAML keys match the API's field names.
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}

	b, err = yaml.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}
