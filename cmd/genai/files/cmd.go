// Package filescmd implements the `genai files` command group.
package filescmd

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	"github.com/adamwoolhether/genai/cmd/genai/shared"
	"github.com/adamwoolhether/genai/files"
	"github.com/adamwoolhether/genai/internal/download"
)

// Command implements `genai files`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the files command group.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:     "files",
		Aliases: []string{"file"},
		Short:   "Upload, download and manage files",
	}
	c.cmd.AddCommand(
		newUpload(ctx),
		newList(ctx),
		newGet(ctx),
		newDelete(ctx),
		newDownload(ctx),
	)
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func manager(ctx *shared.Context) (*files.Manager, error) {
	key, opts, err := ctx.API()
	if err != nil {
		return nil, err
	}

	return files.NewManager(key, opts...), nil
}

// ---------------------------------------------------------------------------
// files upload
// ---------------------------------------------------------------------------

func newUpload(ctx *shared.Context) *cobra.Command {
	var meta files.Metadata

	cmd := &cobra.Command{
		Use:   "upload <path>",
		Short: "Upload a local file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fm, err := manager(ctx)
			if err != nil {
				return err
			}

			if meta.DisplayName == "" {
				meta.DisplayName = filepath.Base(args[0])
			}

			resp, err := fm.UploadFile(cmd.Context(), args[0], meta)
			if err != nil {
				return err
			}

			return ctx.Print(cmd.OutOrStdout(), resp.File)
		},
	}

	cmd.Flags().StringVar(&meta.Name, "name", "", "Resource name, e.g. files/report (default: server assigned)")
	cmd.Flags().StringVar(&meta.DisplayName, "display-name", "", "Human readable name (default: file base name)")
	cmd.Flags().StringVar(&meta.MIMEType, "mime-type", "", "MIME type (default: detected from contents)")

	return cmd
}

// ---------------------------------------------------------------------------
// files list
// ---------------------------------------------------------------------------

func newList(ctx *shared.Context) *cobra.Command {
	var params files.ListParams

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List uploaded files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fm, err := manager(ctx)
			if err != nil {
				return err
			}

			resp, err := fm.List(cmd.Context(), params)
			if err != nil {
				return err
			}

			return ctx.Print(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().IntVar(&params.PageSize, "page-size", 0, "Maximum results per page")
	cmd.Flags().StringVar(&params.PageToken, "page-token", "", "Token from a previous list")

	return cmd
}

// ---------------------------------------------------------------------------
// files get
// ---------------------------------------------------------------------------

func newGet(ctx *shared.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "get <file-id>",
		Short: "Show file metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fm, err := manager(ctx)
			if err != nil {
				return err
			}

			f, err := fm.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return ctx.Print(cmd.OutOrStdout(), f)
		},
	}
}

// ---------------------------------------------------------------------------
// files delete
// ---------------------------------------------------------------------------

func newDelete(ctx *shared.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <file-id>",
		Short: "Delete an uploaded file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fm, err := manager(ctx)
			if err != nil {
				return err
			}

			if err := fm.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// files download
// ---------------------------------------------------------------------------

func newDownload(ctx *shared.Context) *cobra.Command {
	var (
		dir          string
		concurrency  int
		skipExisting bool
		failFast     bool
		progress     bool
		noVerify     bool
	)

	cmd := &cobra.Command{
		Use:   "download <file-id>...",
		Short: "Download one or more files into a directory",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fm, err := manager(ctx)
			if err != nil {
				return err
			}
			log := ctx.Logger()

			var mu sync.Mutex
			report := func(format string, a ...any) {
				mu.Lock()
				defer mu.Unlock()
				fmt.Fprintf(cmd.OutOrStdout(), format, a...)
			}

			q := download.NewQueue(cmd.Context(), concurrency, failFast)
			for _, id := range args {
				q.Add(id, func(jobCtx context.Context) error {
					f, err := fm.Get(jobCtx, id)
					if err != nil {
						return err
					}

					name, err := localName(f)
					if err != nil {
						return err
					}
					dest := filepath.Join(dir, name)

					if skipExisting {
						if _, err := os.Stat(dest); err == nil {
							report("Skipped %s: %s exists\n", f.Name, dest)
							return nil
						}
					}

					params := files.DownloadParams{
						Progress: progress,
						Logger:   log,
					}
					if !noVerify {
						params.SHA256 = f.SHA256Hash
					}

					if err := fm.Download(jobCtx, f.Name, dest, params); err != nil {
						return err
					}

					report("Downloaded %s to %s\n", f.Name, dest)
					return nil
				})
			}

			err = q.Wait()
			for _, id := range q.Skipped() {
				report("Cancelled %s\n", id)
			}

			return err
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Directory to write files into")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 4, "Maximum parallel downloads (0 for unlimited)")
	cmd.Flags().BoolVar(&skipExisting, "skip-existing", false, "Leave files already present untouched")
	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "Stop the remaining downloads after the first failure")
	cmd.Flags().BoolVar(&progress, "progress", false, "Log download progress")
	cmd.Flags().BoolVar(&noVerify, "no-verify", false, "Skip the SHA-256 check")

	return cmd
}

// localName is the file's id plus an extension matching its MIME type.
// The id comes from the server, so anything other than a single local
// path element is refused.
func localName(f files.File) (string, error) {
	name, ok := strings.CutPrefix(f.Name, "files/")
	if !ok || name == "." || !filepath.IsLocal(name) || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("refusing to write file with unsafe name %q", f.Name)
	}
	if filepath.Ext(name) != "" {
		return name, nil
	}

	mediaType, _, err := mime.ParseMediaType(f.MIMEType)
	if err != nil {
		return name, nil
	}
	if mt := mimetype.Lookup(mediaType); mt != nil {
		return name + mt.Extension(), nil
	}

	return name, nil
}
