// Package rootcmd wires the root cobra.Command for the genai CLI binary.
package rootcmd

import (
	"github.com/spf13/cobra"

	cachescmd "github.com/adamwoolhether/genai/cmd/genai/caches"
	configcmd "github.com/adamwoolhether/genai/cmd/genai/config"
	emulatecmd "github.com/adamwoolhether/genai/cmd/genai/emulate"
	filescmd "github.com/adamwoolhether/genai/cmd/genai/files"
	"github.com/adamwoolhether/genai/cmd/genai/shared"
)

// New creates and returns the root cobra.Command for the genai CLI.
func New() *cobra.Command {
	ctx := &shared.Context{}

	root := &cobra.Command{
		Use:           "genai",
		Short:         "Manage Generative Language API cached contents and files",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          func(cmd *cobra.Command, _ []string) error { return cmd.Help() },
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if ctx.Stderr == nil {
				ctx.Stderr = cmd.ErrOrStderr()
			}
		},
	}

	root.PersistentFlags().StringVarP(&ctx.Output, "output", "o", "", "Output format: json or yaml (default: $GENAI_OUTPUT → json)")
	root.PersistentFlags().StringVar(&ctx.BaseURL, "base-url", "", "API base URL (default: $GENAI_BASE_URL)")
	root.PersistentFlags().StringVar(&ctx.APIKey, "api-key", "", "API key (default: $GEMINI_API_KEY)")

	root.AddCommand(
		cachescmd.New(ctx).Cmd(),
		filescmd.New(ctx).Cmd(),
		emulatecmd.New(ctx).Cmd(),
		configcmd.New(ctx).Cmd(),
	)

	return root
}
