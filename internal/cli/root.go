package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"getmytext-cli/internal/browser"
	"getmytext-cli/internal/client"
	"getmytext-cli/internal/config"
	"getmytext-cli/internal/format"
	"getmytext-cli/internal/logging"

	"github.com/spf13/cobra"
)

type App struct {
	ConfigPath string
	Server     string
	LogLevel   string
	PrettyJSON bool

	// Opener and Copy default to the system browser and clipboard.
	Opener browser.Opener
	Copy   func(string) error
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(&App{})
}

func newRootCmd(app *App) *cobra.Command {
	if app.Opener == nil {
		app.Opener = browser.System
	}
	if app.Copy == nil {
		app.Copy = browser.Copy
	}

	cmd := &cobra.Command{
		Use:          "getmytext",
		Short:        "Autosaving text pad: terminal editor, file watcher and server",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Ask for a document id, then edit it
  getmytext

  # Edit a document directly (shortcut for: getmytext edit <id>)
  getmytext dqjl

  # Keep a local file saved to a document
  getmytext watch dqjl notes.txt

  # Run the server
  getmytext serve
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive editor with an id prompt.
			return runEdit(cmd, app, "")
		},
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("GETMYTEXT_CONFIG", ""), "Path to config.yaml (default: $GETMYTEXT_HOME/config.yaml)")
	cmd.PersistentFlags().StringVar(&app.Server, "server", "", "Server base URL (overrides server.url)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Log level (debug|info|warn|error)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")

	cmd.AddCommand(newEditCmd(app))
	cmd.AddCommand(newWatchCmd(app))
	cmd.AddCommand(newShareCmd(app))
	cmd.AddCommand(newBurnCmd(app))
	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

// loadConfig reads the config file and layers the global flags on top.
func loadConfig(app *App) (config.Config, error) {
	cfg, err := config.Load(app.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	if v := strings.TrimSpace(app.Server); v != "" {
		cfg.Server.URL = v
	}
	if v := strings.TrimSpace(app.LogLevel); v != "" {
		cfg.Log.Level = v
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// stderrLogger is the logger for commands that do not own the terminal.
func stderrLogger(cmd *cobra.Command, cfg config.Config) *slog.Logger {
	logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level)
	if err != nil {
		// Level was checked in loadConfig.
		return slog.Default()
	}
	return logger
}

func newClient(cfg config.Config, logger *slog.Logger) (*client.Client, error) {
	return client.New(client.Options{
		BaseURL: cfg.Server.URL,
		Timeout: cfg.Autosave.RequestTimeout,
		Logger:  logger,
	})
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.WriteJSON(cmd.OutOrStdout(), v, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
