// Package tui is the interactive terminal editor. It runs the same autosave,
// indicator and modal state machines as the headless session, driven by the
// bubbletea update loop.
package tui

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"getmytext-cli/internal/browser"
	"getmytext-cli/internal/model"
	"getmytext-cli/internal/session"

	tea "github.com/charmbracelet/bubbletea"
)

// API is what the editor needs from the server client.
type API interface {
	session.API
	Fetch(ctx context.Context, id model.DocID) (string, error)
}

type Options struct {
	// ID may be empty, in which case the editor asks for one first.
	ID model.DocID

	API    API
	Opener browser.Opener
	// Copy places text on the clipboard.
	Copy func(string) error

	Interval       time.Duration
	Decay          time.Duration
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = session.DefaultInterval
	}
	if o.Decay <= 0 {
		o.Decay = session.DefaultDecay
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = session.DefaultRequestTimeout
	}
	if o.Opener == nil {
		o.Opener = browser.System
	}
	if o.Copy == nil {
		o.Copy = browser.Copy
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Run starts the editor and blocks until the user quits or ctx is done.
func Run(ctx context.Context, opts Options) error {
	if opts.API == nil {
		return errors.New("tui: api is required")
	}
	applyColorProfilePreference()
	applyThemePreference()

	p := tea.NewProgram(newAppModel(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		err = nil
	}
	if m, ok := final.(appModel); ok && m.autosave != nil && m.autosave.Dirty() {
		m.logger.Warn("exiting with unsaved changes", "doc", m.id.String())
	}
	return err
}
