// Package emulatecmd implements the `genai emulate` command.
package emulatecmd

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"github.com/adamwoolhether/genai/cmd/genai/shared"
	"github.com/adamwoolhether/genai/emulator"
	"github.com/adamwoolhether/genai/internal/web/server"
)

// Command implements `genai emulate`.
type Command struct {
	ctx  *shared.Context
	cmd  *cobra.Command
	addr string
	key  string

	// listener, when set, is served instead of listening on addr.
	listener net.Listener
}

// New creates the emulate command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "emulate",
		Short: "Serve an in-memory emulator of the cachedContents and files endpoints",
		Long: "Serve an in-memory emulator of the cachedContents and files endpoints.\n" +
			"Point the other commands at it with --base-url or GENAI_BASE_URL.\n" +
			"Prometheus metrics are served at /metrics.\n" +
			"State is lost when the process exits.",
		Args: cobra.NoArgs,
		RunE: c.run,
	}

	c.cmd.Flags().StringVar(&c.addr, "addr", "", "Listen address (default: $GENAI_EMULATOR_ADDR → 127.0.0.1:8089)")
	c.cmd.Flags().StringVar(&c.key, "require-key", "", "Reject requests without this API key (default: accept any)")

	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, _ []string) error {
	cfg, err := c.ctx.Config()
	if err != nil {
		return err
	}
	log := c.ctx.Logger()

	addr := cfg.Emulator.Addr
	if c.addr != "" {
		addr = c.addr
	}

	em := emulator.New(
		emulator.WithAPIKey(c.key),
		emulator.WithLogger(log),
	)

	opts := []server.Option{
		server.WithHost(addr),
		server.WithLogger(log),
		server.WithReadTimeout(cfg.Emulator.ReadTimeout),
		server.WithWriteTimeout(cfg.Emulator.WriteTimeout),
		server.WithShutdownTimeout(cfg.Emulator.ShutdownTimeout),
	}
	if c.listener != nil {
		opts = append(opts, server.WithListener(c.listener))
		addr = c.listener.Addr().String()
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Emulator listening on http://%s\n", addr)

	return server.New(em, opts...).Run(cmd.Context())
}
