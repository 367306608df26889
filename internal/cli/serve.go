package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"getmytext-cli/internal/store"
	"getmytext-cli/internal/web"

	"github.com/spf13/cobra"
)

func newServeCmd(app *App) *cobra.Command {
	var addr, db, mainText, render, favicon string
	var open bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the text-pad server",
		Long: strings.TrimSpace(`
Run the HTTP server that stores documents and serves the browser editor.

  /            read-only main text (also /0, /1, /main, /index)
  /<id>        editable page with autosave
  /s/<token>   share link
  /b/<token>   burn-after-read link
  /meta/<file> files from serve.meta_dir (meta/bg.png is the page background)

Flags override the serve section of the config file.
`),
		Example: strings.TrimSpace(`
# Serve on localhost only
getmytext serve --addr 127.0.0.1:19998

# Render documents as markdown
getmytext serve --render markdown
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			flags := cmd.Flags()
			if flags.Changed("addr") {
				cfg.Serve.Addr = addr
			}
			if flags.Changed("db") {
				cfg.Serve.DB = db
			}
			if flags.Changed("main-text") {
				cfg.Serve.MainText = mainText
			}
			if flags.Changed("render") {
				cfg.Serve.Render = render
			}
			logger := stderrLogger(cmd, cfg)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			mainPath := cfg.Resolve(cfg.Serve.MainText)
			created, err := store.EnsureMainText(mainPath)
			if err != nil {
				return writeErr(cmd, err)
			}
			if created {
				logger.Info("wrote default main text", "path", mainPath)
			}

			metaDir := cfg.Resolve(cfg.Serve.MetaDir)
			if metaDir != "" {
				if err := os.MkdirAll(metaDir, 0o755); err != nil {
					return writeErr(cmd, err)
				}
			}

			dbPath := cfg.Resolve(cfg.Serve.DB)
			st, err := store.Open(ctx, dbPath)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer func() { _ = st.Close() }()

			srv, err := web.NewServer(web.ServerConfig{
				Addr:         cfg.Serve.Addr,
				MainTextPath: mainPath,
				FaviconPath:  cfg.Resolve(favicon),
				MetaDir:      metaDir,
				Render:       cfg.Serve.Render,
				Logger:       logger,
			}, st)
			if err != nil {
				return writeErr(cmd, err)
			}

			err = srv.ListenAndServe(ctx, func(actualAddr string) {
				url := "http://" + actualAddr + "/"

				opened := false
				openErr := ""
				if open {
					if err := app.Opener.Open(url); err != nil {
						openErr = err.Error()
					} else {
						opened = true
					}
				}

				out := map[string]any{
					"data": map[string]any{
						"addr":      actualAddr,
						"url":       url,
						"db":        dbPath,
						"mainText":  mainPath,
						"render":    cfg.Serve.Render,
						"opened":    opened,
						"openError": openErr,
						"startedAt": time.Now().UTC().Format(time.RFC3339Nano),
					},
				}
				if !opened {
					out["_hints"] = []string{"open " + url}
				}
				_ = writeOut(cmd, app, out)

				fmt.Fprintf(cmd.ErrOrStderr(), "getmytext server running at %s\n", url)
				if openErr != "" {
					fmt.Fprintf(cmd.ErrOrStderr(), "Failed to open browser: %s\n", openErr)
				}
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			logger.Info("server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Bind address (host:port or :port; default: serve.addr)")
	cmd.Flags().StringVar(&db, "db", "", "SQLite database path (default: serve.db)")
	cmd.Flags().StringVar(&mainText, "main-text", "", "Main text file (default: serve.main_text)")
	cmd.Flags().StringVar(&render, "render", "", "Render mode for shares (text|markdown; default: serve.render)")
	cmd.Flags().StringVar(&favicon, "favicon", "", "Optional favicon.ico to serve")
	cmd.Flags().BoolVar(&open, "open", false, "Open the main page in your default browser")
	return cmd
}
