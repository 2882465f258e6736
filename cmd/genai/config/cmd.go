// Package configcmd implements the `genai config` command.
package configcmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/adamwoolhether/genai/cmd/genai/shared"
)

// Command implements `genai config`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the config command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "config",
		Short: "Show the resolved configuration",
		Args:  cobra.NoArgs,
		RunE:  c.runShow,
	}
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) runShow(cmd *cobra.Command, _ []string) error {
	cfg, err := c.ctx.Config()
	if err != nil {
		return err
	}

	data := map[string]any{
		"api_key":   redactAPIKey(cfg.APIKey),
		"output":    cfg.Output,
		"log_level": cfg.LogLevel.String(),
		"api": map[string]any{
			"base_url":    cfg.API.BaseURL,
			"api_version": cfg.API.APIVersion,
			"timeout":     cfg.API.Timeout.String(),
			"rps":         cfg.API.RPS,
			"burst":       cfg.API.Burst,
			"user_agent":  cfg.API.UserAgent,
		},
		"emulator": map[string]any{
			"addr":             cfg.Emulator.Addr,
			"read_timeout":     cfg.Emulator.ReadTimeout.String(),
			"write_timeout":    cfg.Emulator.WriteTimeout.String(),
			"shutdown_timeout": cfg.Emulator.ShutdownTimeout.String(),
		},
	}
	b, err := yaml.Marshal(data)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), string(b))
	return nil
}

func redactAPIKey(key string) string {
	if key != "" {
		return "<redacted>"
	}
	return ""
}
