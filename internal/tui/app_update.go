package tui

import (
	"time"

	"getmytext-cli/internal/client"
	"getmytext-cli/internal/editor"
	"getmytext-cli/internal/model"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case spinner.TickMsg:
		if m.pending == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case flashDoneMsg:
		if msg.seq == m.flashSeq {
			m.flash = ""
		}
		return m, nil

	case loadDoneMsg:
		return m.handleLoaded(msg)

	case autosaveTickMsg:
		return m.handleTick()

	case saveDoneMsg:
		return m.handleSaved(msg)

	case indicatorDoneMsg:
		m.indicator.Expire(msg.seq)
		return m, nil

	case linkDoneMsg:
		return m.handleLink(msg)

	case openDoneMsg:
		if msg.err != nil {
			m.logger.Warn("open share link", "url", msg.url, "err", msg.err)
			cmd := m.showFlash("Could not open browser: " + msg.url)
			return m, cmd
		}
		return m, nil

	case copyDoneMsg:
		if msg.err != nil {
			m.logger.Warn("copy link", "err", msg.err)
			cmd := m.showFlash("Clipboard error: " + msg.err.Error())
			return m, cmd
		}
		cmd := m.showFlash("Link copied")
		return m, cmd

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		if m.mode == modePrompt {
			return m.updatePrompt(msg)
		}
		return m.updateEditor(msg)
	}

	// Cursor blink and anything else the focused input understands.
	var cmd tea.Cmd
	if m.mode == modePrompt {
		m.prompt, cmd = m.prompt.Update(msg)
	} else {
		m.field, cmd = m.field.Update(msg)
	}
	return m, cmd
}

func (m appModel) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.loading {
		return m, nil
	}
	if msg.Type == tea.KeyEnter {
		id, err := model.ValidateDocID(m.prompt.Value())
		if err != nil {
			m.promptErr = "Use 3-24 letters or digits."
			return m, nil
		}
		m.promptErr = ""
		m.loading = true
		m.id = id
		return m, m.loadCmd(id)
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m appModel) handleLoaded(msg loadDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.loading = false
		m.mode = modePrompt
		if text, ok := client.Rejection(msg.err); ok {
			m.promptErr = text
		} else {
			m.logger.Warn("load document", "doc", msg.id.String(), "err", msg.err)
			m.promptErr = "Could not reach the server."
		}
		m.prompt.SetValue(msg.id.String())
		return m, nil
	}
	cmd := m.enterEditor(msg.id, msg.content)
	return m, cmd
}

// handleTick is one poll of the field. Dispatch is held back while an alert
// is being shown.
func (m appModel) handleTick() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{m.tickCmd()}
	if m.mode != modeEditor || m.autosave == nil || len(m.alerts) > 0 {
		return m, tea.Batch(cmds...)
	}
	if req, ok := m.autosave.Tick(m.field.Value()); ok {
		m.logger.Debug("dispatching save", "seq", req.Seq, "bytes", len(req.Content))
		spin := m.beginRequest()
		cmds = append(cmds, m.saveCmd(req), spin)
	}
	return m, tea.Batch(cmds...)
}

func (m appModel) handleSaved(msg saveDoneMsg) (tea.Model, tea.Cmd) {
	m.endRequest()
	res := m.autosave.Resolve(msg.req, msg.err)
	switch res.Kind {
	case editor.ResolutionSaved:
		m.lastSavedAt = m.now()
		seq := m.indicator.Show()
		m.logger.Debug("update successful", "seq", msg.req.Seq)
		return m, tea.Tick(m.opts.Decay, func(_ time.Time) tea.Msg { return indicatorDoneMsg{seq: seq} })
	case editor.ResolutionRejected:
		m.alerts = append(m.alerts, res.Message)
	case editor.ResolutionFailed:
		m.logger.Warn("update failed", "seq", msg.req.Seq, "err", res.Err)
	case editor.ResolutionStale:
		m.logger.Debug("ignoring stale save response", "seq", msg.req.Seq)
	}
	return m, nil
}

func (m appModel) handleLink(msg linkDoneMsg) (tea.Model, tea.Cmd) {
	m.endRequest()
	route := editor.RouteLink(msg.kind, msg.url, msg.err)
	switch route.Action {
	case editor.LinkOpenTab:
		return m, m.openCmd(route.URL)
	case editor.LinkShowModal:
		m.modal.Show(route.URL)
		return m, tea.EnableMouseCellMotion
	case editor.LinkAlert:
		m.alerts = append(m.alerts, route.Message)
	case editor.LinkLogOnly:
		m.logger.Warn("create link failed", "kind", msg.kind.String(), "err", route.Err)
	}
	return m, nil
}

func (m appModel) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if len(m.alerts) > 0 {
		switch msg.Type {
		case tea.KeyEnter, tea.KeyEsc, tea.KeySpace:
			m.alerts = m.alerts[1:]
		}
		return m, nil
	}
	if m.modal.Visible() {
		switch {
		case key.Matches(msg, m.mkeys.Close):
			closed := m.modal.Close()
			return m.closeModal(closed)
		case key.Matches(msg, m.mkeys.Copy):
			return m, m.copyCmd(m.modal.Href())
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Share):
		spin := m.beginRequest()
		return m, tea.Batch(m.linkCmd(editor.LinkShare), spin)
	case key.Matches(msg, m.keys.Burn):
		spin := m.beginRequest()
		return m, tea.Batch(m.linkCmd(editor.LinkBurn), spin)
	case key.Matches(msg, m.keys.Preview):
		m.preview = !m.preview
		m.resize()
		return m, nil
	}

	var cmd tea.Cmd
	m.field, cmd = m.field.Update(msg)
	return m, cmd
}

// handleMouse only matters while the link modal is up: a click outside the
// box dismisses it, a click inside does nothing.
func (m appModel) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !m.modal.Visible() || len(m.alerts) > 0 {
		return m, nil
	}
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	target := editor.TargetBackdrop
	if m.linkModalRect().contains(msg.X, msg.Y) {
		target = editor.TargetContent
	}
	closed := m.modal.Click(target)
	return m.closeModal(closed)
}

func (m appModel) closeModal(closed bool) (tea.Model, tea.Cmd) {
	if !closed {
		return m, nil
	}
	return m, tea.DisableMouse
}
