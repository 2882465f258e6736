// Package cachescmd implements the `genai caches` command group.
package cachescmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/adamwoolhether/genai/cache"
	"github.com/adamwoolhether/genai/cmd/genai/shared"
	"github.com/adamwoolhether/genai/files"
)

// Command implements `genai caches`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the caches command group.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:     "caches",
		Aliases: []string{"cache"},
		Short:   "Create and manage cached contents",
	}
	c.cmd.AddCommand(
		newCreate(ctx),
		newList(ctx),
		newGet(ctx),
		newUpdate(ctx),
		newDelete(ctx),
	)
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func manager(ctx *shared.Context) (*cache.Manager, *files.Manager, error) {
	key, opts, err := ctx.API()
	if err != nil {
		return nil, nil, err
	}

	return cache.NewManager(key, opts...), files.NewManager(key, opts...), nil
}

// ---------------------------------------------------------------------------
// caches create
// ---------------------------------------------------------------------------

func newCreate(ctx *shared.Context) *cobra.Command {
	var (
		params     cache.CreateParams
		system     string
		texts      []string
		fileIDs    []string
		expireTime string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a cached content from text and uploaded files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			caches, fm, err := manager(ctx)
			if err != nil {
				return err
			}

			if system != "" {
				params.SystemInstruction = cache.Text("system", system)
			}

			var user cache.Content
			user.Role = "user"
			for _, t := range texts {
				user.Parts = append(user.Parts, cache.Part{Text: t})
			}
			for _, id := range fileIDs {
				f, err := fm.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				user.Parts = append(user.Parts, cache.Part{
					FileData: &cache.FileData{MIMEType: f.MIMEType, FileURI: f.URI},
				})
			}
			if len(user.Parts) > 0 {
				params.Contents = []cache.Content{user}
			}

			if expireTime != "" {
				t, err := time.Parse(time.RFC3339, expireTime)
				if err != nil {
					return fmt.Errorf("parsing --expire-time: %w", err)
				}
				params.ExpireTime = &t
			}

			cc, err := caches.Create(cmd.Context(), params)
			if err != nil {
				return err
			}

			return ctx.Print(cmd.OutOrStdout(), cc)
		},
	}

	cmd.Flags().StringVar(&params.Model, "model", "", "Model the cache is bound to, e.g. models/gemini-1.5-flash-001")
	cmd.Flags().StringVar(&params.DisplayName, "display-name", "", "Human readable name")
	cmd.Flags().StringVar(&system, "system", "", "System instruction text")
	cmd.Flags().StringArrayVar(&texts, "text", nil, "Text part to cache (repeatable)")
	cmd.Flags().StringArrayVar(&fileIDs, "file", nil, "Uploaded file to cache, e.g. files/abc (repeatable)")
	cmd.Flags().DurationVar(&params.TTL, "ttl", 0, "Time to live (default 1h on the server)")
	cmd.Flags().StringVar(&expireTime, "expire-time", "", "Absolute expiry in RFC 3339")
	cmd.MarkFlagsMutuallyExclusive("ttl", "expire-time")
	_ = cmd.MarkFlagRequired("model")

	return cmd
}

// ---------------------------------------------------------------------------
// caches list
// ---------------------------------------------------------------------------

func newList(ctx *shared.Context) *cobra.Command {
	var (
		params cache.ListParams
		all    bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached contents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			caches, _, err := manager(ctx)
			if err != nil {
				return err
			}

			if !all {
				resp, err := caches.List(cmd.Context(), params)
				if err != nil {
					return err
				}
				return ctx.Print(cmd.OutOrStdout(), resp)
			}

			var out []cache.CachedContent
			for {
				resp, err := caches.List(cmd.Context(), params)
				if err != nil {
					return err
				}
				out = append(out, resp.CachedContents...)
				if resp.NextPageToken == "" {
					break
				}
				params.PageToken = resp.NextPageToken
			}

			return ctx.Print(cmd.OutOrStdout(), cache.ListResponse{CachedContents: out})
		},
	}

	cmd.Flags().IntVar(&params.PageSize, "page-size", 0, "Maximum results per page")
	cmd.Flags().StringVar(&params.PageToken, "page-token", "", "Token from a previous list")
	cmd.Flags().BoolVar(&all, "all", false, "Follow page tokens until every result is listed")

	return cmd
}

// ---------------------------------------------------------------------------
// caches get
// ---------------------------------------------------------------------------

func newGet(ctx *shared.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Show a cached content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			caches, _, err := manager(ctx)
			if err != nil {
				return err
			}

			cc, err := caches.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return ctx.Print(cmd.OutOrStdout(), cc)
		},
	}
}

// ---------------------------------------------------------------------------
// caches update
// ---------------------------------------------------------------------------

func newUpdate(ctx *shared.Context) *cobra.Command {
	var (
		ttl        time.Duration
		expireTime string
	)

	cmd := &cobra.Command{
		Use:   "update <name>",
		Short: "Change the expiry of a cached content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var params cache.UpdateParams
			switch {
			case ttl > 0:
				params.CachedContent.TTL = ttl
				params.UpdateMask = []string{"ttl"}
			case expireTime != "":
				t, err := time.Parse(time.RFC3339, expireTime)
				if err != nil {
					return fmt.Errorf("parsing --expire-time: %w", err)
				}
				params.CachedContent.ExpireTime = &t
				params.UpdateMask = []string{"expireTime"}
			default:
				return errors.New("one of --ttl or --expire-time is required")
			}

			caches, _, err := manager(ctx)
			if err != nil {
				return err
			}

			cc, err := caches.Update(cmd.Context(), args[0], params)
			if err != nil {
				return err
			}

			return ctx.Print(cmd.OutOrStdout(), cc)
		},
	}

	cmd.Flags().DurationVar(&ttl, "ttl", 0, "New time to live, counted from now")
	cmd.Flags().StringVar(&expireTime, "expire-time", "", "New absolute expiry in RFC 3339")
	cmd.MarkFlagsMutuallyExclusive("ttl", "expire-time")

	return cmd
}

// ---------------------------------------------------------------------------
// caches delete
// ---------------------------------------------------------------------------

func newDelete(ctx *shared.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a cached content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			caches, _, err := manager(ctx)
			if err != nil {
				return err
			}

			if err := caches.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}
