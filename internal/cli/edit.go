package cli

import (
	"strings"

	"getmytext-cli/internal/logging"
	"getmytext-cli/internal/model"
	"getmytext-cli/internal/tui"

	"github.com/spf13/cobra"
)

const logFileName = "getmytext.log"

func newEditCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "edit [id]",
		Short: "Edit a document in the terminal with autosave",
		Long: strings.TrimSpace(`
Open the full-screen editor. Changes are saved to the server about once a
second while you type; a "Saved" mark shows briefly after each save.

Without an id the editor asks for one first.

Keys: ctrl+s share link (opens a browser tab), ctrl+x burn link (shown in a
dialog), ctrl+r markdown preview, ctrl+q quit.
`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := ""
			if len(args) == 1 {
				raw = args[0]
			}
			return runEdit(cmd, app, raw)
		},
	}
}

func runEdit(cmd *cobra.Command, app *App, raw string) error {
	var id model.DocID
	if strings.TrimSpace(raw) != "" {
		v, err := parseDocID(raw)
		if err != nil {
			return writeErr(cmd, err)
		}
		id = v
	}

	cfg, err := loadConfig(app)
	if err != nil {
		return writeErr(cmd, err)
	}
	// The editor owns the terminal, so logs go to a file.
	logger, closeLog, err := logging.ToFile(cfg.LogsDir(), logFileName, cfg.Log.Level)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer func() { _ = closeLog() }()

	api, err := newClient(cfg, logger)
	if err != nil {
		return writeErr(cmd, err)
	}
	logger.Info("editor start", "server", cfg.Server.URL, "doc", id.String())

	err = tui.Run(cmd.Context(), tui.Options{
		ID:             id,
		API:            api,
		Opener:         app.Opener,
		Copy:           app.Copy,
		Interval:       cfg.Autosave.Interval,
		Decay:          cfg.Autosave.IndicatorDecay,
		RequestTimeout: cfg.Autosave.RequestTimeout,
		Logger:         logger,
	})
	if err != nil {
		return writeErr(cmd, err)
	}
	return nil
}
