package cli

import (
	"context"
	"fmt"
	"strings"

	"getmytext-cli/internal/model"

	"github.com/spf13/cobra"
)

func newShareCmd(app *App) *cobra.Command {
	var open bool

	cmd := &cobra.Command{
		Use:   "share <id>",
		Short: "Create a persistent read-only link to a document",
		Long: strings.TrimSpace(`
Create a share link. The link shows the document's content as it is right now
and can be viewed any number of times.
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreateLink(cmd, app, args[0], model.ShareKindPersistent, func(url string) (map[string]any, error) {
				if !open {
					return nil, nil
				}
				if err := app.Opener.Open(url); err != nil {
					return map[string]any{"opened": false, "openError": err.Error()}, nil
				}
				return map[string]any{"opened": true}, nil
			})
		},
	}
	cmd.Flags().BoolVar(&open, "open", false, "Open the link in your default browser")
	return cmd
}

func newBurnCmd(app *App) *cobra.Command {
	var copyLink bool

	cmd := &cobra.Command{
		Use:   "burn <id>",
		Short: "Create a link that can be viewed exactly once",
		Long: strings.TrimSpace(`
Create a burn-after-read link. The first visit consumes it, so the link is
printed and never opened for you.
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreateLink(cmd, app, args[0], model.ShareKindBurn, func(url string) (map[string]any, error) {
				if !copyLink {
					return nil, nil
				}
				if err := app.Copy(url); err != nil {
					return nil, fmt.Errorf("copy link: %w", err)
				}
				return map[string]any{"copied": true}, nil
			})
		},
	}
	cmd.Flags().BoolVar(&copyLink, "copy", false, "Copy the link to the clipboard")
	return cmd
}

// runCreateLink issues one link request and prints it. after may act on the
// link and contribute extra fields to the output.
func runCreateLink(cmd *cobra.Command, app *App, raw string, kind model.ShareKind, after func(url string) (map[string]any, error)) error {
	id, err := parseDocID(raw)
	if err != nil {
		return writeErr(cmd, err)
	}
	cfg, err := loadConfig(app)
	if err != nil {
		return writeErr(cmd, err)
	}
	api, err := newClient(cfg, stderrLogger(cmd, cfg))
	if err != nil {
		return writeErr(cmd, err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Autosave.RequestTimeout)
	defer cancel()
	var url string
	if kind == model.ShareKindBurn {
		url, err = api.CreateBurn(ctx, id)
	} else {
		url, err = api.CreateShare(ctx, id)
	}
	if err != nil {
		return writeErr(cmd, err)
	}

	data := map[string]any{
		"id":   id.String(),
		"kind": string(kind),
		"url":  url,
	}
	extra, err := after(url)
	if err != nil {
		return writeErr(cmd, err)
	}
	for k, v := range extra {
		data[k] = v
	}

	out := map[string]any{"data": data}
	if kind == model.ShareKindBurn {
		out["_hints"] = []string{"the link stops working after its first view"}
	}
	return writeOut(cmd, app, out)
}
