package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"getmytext-cli/internal/browser"
	"getmytext-cli/internal/format"
	"getmytext-cli/internal/model"
	"getmytext-cli/internal/session"

	"github.com/spf13/cobra"
)

func newWatchCmd(app *App) *cobra.Command {
	var pull bool
	var noOpen bool
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch <id> <file>",
		Short: "Keep a local file saved to a document",
		Long: strings.TrimSpace(`
Poll a local file and save it to the document whenever its content differs
from what the server last acknowledged. Events are written to stdout as one
JSON object per line.

Commands are read from stdin, one per line:
  share   create a share link and open it in the browser
  burn    create a burn-after-read link and print it
  close   dismiss the burn link
  quit    stop watching
`),
		Example: strings.TrimSpace(`
# Start from the server's copy, then keep saving local edits
getmytext watch dqjl notes.txt --pull
`),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseDocID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			path := args[1]

			cfg, err := loadConfig(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if interval > 0 {
				cfg.Autosave.Interval = interval
			}
			logger := stderrLogger(cmd, cfg)
			api, err := newClient(cfg, logger)
			if err != nil {
				return writeErr(cmd, err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if pull {
				fetchCtx, cancel := context.WithTimeout(ctx, cfg.Autosave.RequestTimeout)
				content, err := api.Fetch(fetchCtx, id)
				cancel()
				if err != nil {
					return writeErr(cmd, err)
				}
				if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
					return writeErr(cmd, err)
				}
			}

			surface := &consoleSurface{
				id:     id,
				out:    cmd.OutOrStdout(),
				errOut: cmd.ErrOrStderr(),
				opener: app.Opener,
				noOpen: noOpen,
			}
			s, err := session.New(id, fileField{path: path}, api, surface, session.Options{
				Interval:       cfg.Autosave.Interval,
				Decay:          cfg.Autosave.IndicatorDecay,
				RequestTimeout: cfg.Autosave.RequestTimeout,
				Logger:         logger,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Start(ctx); err != nil {
				return writeErr(cmd, err)
			}
			surface.emit(watchEvent{Event: "started", Path: path})

			lineCtx, stopLines := context.WithCancel(ctx)
			defer stopLines()
			lines := readLines(lineCtx, cmd.InOrStdin())
		loop:
			for {
				select {
				case <-ctx.Done():
					break loop
				case line, ok := <-lines:
					if !ok {
						// stdin closed; keep watching until interrupted.
						lines = nil
						continue
					}
					switch strings.ToLower(strings.TrimSpace(line)) {
					case "":
					case "share":
						s.Share()
					case "burn":
						s.Burn()
					case "close":
						s.CloseModal()
					case "quit", "exit":
						break loop
					default:
						fmt.Fprintf(cmd.ErrOrStderr(), "unknown command %q (share|burn|close|quit)\n", line)
					}
				}
			}

			s.Stop()
			s.Wait()
			if s.State().Dirty {
				logger.Warn("stopped with unsaved changes", "doc", id.String(), "path", path)
			}
			surface.emit(watchEvent{Event: "stopped"})
			return nil
		},
	}

	cmd.Flags().BoolVar(&pull, "pull", false, "Overwrite the file with the server's copy before watching")
	cmd.Flags().BoolVar(&noOpen, "no-open", false, "Print share links instead of opening them")
	cmd.Flags().DurationVar(&interval, "interval", 0, "Poll interval (default: autosave.interval)")
	return cmd
}

// fileField reads the watched file on every poll.
type fileField struct {
	path string
}

func (f fileField) Value() (string, error) {
	b, err := os.ReadFile(f.path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

type watchEvent struct {
	Event   string `json:"event"`
	Doc     string `json:"doc"`
	Path    string `json:"path,omitempty"`
	URL     string `json:"url,omitempty"`
	Message string `json:"message,omitempty"`
	At      string `json:"at"`
}

// consoleSurface renders session effects as JSON lines.
type consoleSurface struct {
	mu     sync.Mutex
	id     model.DocID
	out    io.Writer
	errOut io.Writer
	opener browser.Opener
	noOpen bool
}

func (c *consoleSurface) emit(ev watchEvent) {
	ev.Doc = c.id.String()
	ev.At = time.Now().UTC().Format(time.RFC3339Nano)
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = format.WriteJSON(c.out, ev, false)
}

// Alert has nobody to wait for, so it prints and returns.
func (c *consoleSurface) Alert(message string) {
	fmt.Fprintln(c.errOut, "alert: "+message)
	c.emit(watchEvent{Event: "alert", Message: message})
}

func (c *consoleSurface) IndicatorChanged(visible bool) {
	if visible {
		c.emit(watchEvent{Event: "saved"})
		return
	}
	c.emit(watchEvent{Event: "saved_hidden"})
}

func (c *consoleSurface) ModalChanged(visible bool, url string) {
	if visible {
		c.emit(watchEvent{Event: "burn_link", URL: url})
		return
	}
	c.emit(watchEvent{Event: "burn_link_closed"})
}

func (c *consoleSurface) OpenTab(url string) error {
	if c.noOpen {
		c.emit(watchEvent{Event: "share_link", URL: url})
		return nil
	}
	if err := c.opener.Open(url); err != nil {
		return err
	}
	c.emit(watchEvent{Event: "share_opened", URL: url})
	return nil
}

// readLines feeds r into a channel line by line and closes it at EOF. ctx is
// only checked between lines: after quit the goroutine stays parked in Scan
// until stdin yields or the process exits, which is fine for a CLI command.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case ch <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}
