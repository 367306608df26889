package cli

import (
	"getmytext-cli/internal/config"

	"github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the config file",
	}
	cmd.AddCommand(newConfigShowCmd(app))
	cmd.AddCommand(newConfigInitCmd(app))
	return cmd
}

func newConfigShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			b, err := cfg.Marshal()
			if err != nil {
				return writeErr(cmd, err)
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}
}

func newConfigInitCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a commented default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, created, err := config.Init(app.ConfigPath)
			if err != nil {
				return writeErr(cmd, err)
			}
			out := map[string]any{
				"data": map[string]any{"path": path, "created": created},
			}
			if !created {
				out["_hints"] = []string{"config already exists; edit " + path}
			}
			return writeOut(cmd, app, out)
		},
	}
}
