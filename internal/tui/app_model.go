package tui

import (
	"context"
	"log/slog"
	"time"

	"getmytext-cli/internal/editor"
	"getmytext-cli/internal/model"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const flashDuration = 2 * time.Second

type appModel struct {
	opts   Options
	logger *slog.Logger
	keys   keyMap
	mkeys  modalKeyMap
	help   help.Model

	width  int
	height int
	mode   appMode

	prompt    textinput.Model
	promptErr string
	loading   bool

	id        model.DocID
	field     textarea.Model
	autosave  *editor.Autosave
	indicator editor.Indicator
	modal     editor.Modal
	// alerts are shown one at a time; autosave dispatch waits while any is up.
	alerts []string

	spin    spinner.Model
	pending int

	lastSavedAt time.Time
	preview     bool

	flash    string
	flashSeq int

	now func() time.Time
}

func newAppModel(opts Options) appModel {
	opts = opts.withDefaults()

	in := textinput.New()
	in.Placeholder = "document id (3-24 letters or digits)"
	in.CharLimit = 24
	in.Prompt = "/"
	in.Focus()

	ta := textarea.New()
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.CharLimit = 0
	ta.MaxHeight = 0

	m := appModel{
		opts:   opts,
		logger: opts.Logger,
		keys:   defaultKeyMap(),
		mkeys:  defaultModalKeyMap(),
		help:   help.New(),
		prompt: in,
		field:  ta,
		spin:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		now:    time.Now,
	}
	if opts.ID != "" {
		m.id = opts.ID
		m.loading = true
	}
	return m
}

func (m appModel) Init() tea.Cmd {
	if m.loading {
		return m.loadCmd(m.id)
	}
	return textinput.Blink
}

// enterEditor switches to editing id with content as the acknowledged value.
func (m *appModel) enterEditor(id model.DocID, content string) tea.Cmd {
	m.mode = modeEditor
	m.loading = false
	m.id = id
	m.field.SetValue(content)
	// The field rewrites some input (tabs, CR). Its value is what counts as
	// saved, so opening a document never writes it back.
	m.autosave = editor.NewAutosave(m.field.Value())
	m.logger = m.opts.Logger.With("doc", id.String())
	m.resize()
	cmds := []tea.Cmd{m.field.Focus(), m.tickCmd()}
	if m.field.Value() != content {
		m.logger.Info("document normalized for editing", "bytes", len(content))
		cmds = append(cmds, m.showFlash("Tabs or line endings will be normalized on your next edit"))
	}
	return tea.Batch(cmds...)
}

func (m *appModel) resize() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	h := m.height - 2 // header + footer
	if h < 1 {
		h = 1
	}
	w := m.width
	if m.preview {
		w = m.width / 2
	}
	m.field.SetWidth(w)
	m.field.SetHeight(h)
	m.help.Width = m.width
}

func (m *appModel) showFlash(s string) tea.Cmd {
	m.flashSeq++
	m.flash = s
	seq := m.flashSeq
	return tea.Tick(flashDuration, func(time.Time) tea.Msg { return flashDoneMsg{seq: seq} })
}

// beginRequest tracks one more outstanding request and starts the spinner
// when it is the first.
func (m *appModel) beginRequest() tea.Cmd {
	m.pending++
	if m.pending == 1 {
		return m.spin.Tick
	}
	return nil
}

func (m *appModel) endRequest() {
	if m.pending > 0 {
		m.pending--
	}
}

func (m appModel) tickCmd() tea.Cmd {
	return tea.Tick(m.opts.Interval, func(time.Time) tea.Msg { return autosaveTickMsg{} })
}

// withTimeout runs call with a fresh request context. Requests are never
// cancelled early; the timeout bounds how long a dead server can stall one.
func withTimeout(timeout time.Duration, call func(ctx context.Context) tea.Msg) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return call(ctx)
	}
}

func (m appModel) loadCmd(id model.DocID) tea.Cmd {
	api := m.opts.API
	return withTimeout(m.opts.RequestTimeout, func(ctx context.Context) tea.Msg {
		content, err := api.Fetch(ctx, id)
		return loadDoneMsg{id: id, content: content, err: err}
	})
}

func (m appModel) saveCmd(req editor.SaveRequest) tea.Cmd {
	api, id := m.opts.API, m.id
	return withTimeout(m.opts.RequestTimeout, func(ctx context.Context) tea.Msg {
		return saveDoneMsg{req: req, err: api.Update(ctx, id, req.Content)}
	})
}

func (m appModel) linkCmd(kind editor.LinkKind) tea.Cmd {
	api, id := m.opts.API, m.id
	return withTimeout(m.opts.RequestTimeout, func(ctx context.Context) tea.Msg {
		var url string
		var err error
		if kind == editor.LinkBurn {
			url, err = api.CreateBurn(ctx, id)
		} else {
			url, err = api.CreateShare(ctx, id)
		}
		return linkDoneMsg{kind: kind, url: url, err: err}
	})
}

func (m appModel) openCmd(url string) tea.Cmd {
	opener := m.opts.Opener
	return func() tea.Msg {
		return openDoneMsg{url: url, err: opener.Open(url)}
	}
}

func (m appModel) copyCmd(s string) tea.Cmd {
	cp := m.opts.Copy
	return func() tea.Msg {
		return copyDoneMsg{err: cp(s)}
	}
}
