package tui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"getmytext-cli/internal/browser"
	"getmytext-cli/internal/client"
	"getmytext-cli/internal/model"

	tea "github.com/charmbracelet/bubbletea"
)

type fakeAPI struct {
	mu        sync.Mutex
	updates   []string
	updateErr error
	fetched   []model.DocID
	content   string
	fetchErr  error
	shareURL  string
	burnURL   string
	linkErr   error
}

func (a *fakeAPI) Update(ctx context.Context, id model.DocID, content string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.updates = append(a.updates, content)
	return a.updateErr
}

func (a *fakeAPI) CreateShare(ctx context.Context, id model.DocID) (string, error) {
	return a.shareURL, a.linkErr
}

func (a *fakeAPI) CreateBurn(ctx context.Context, id model.DocID) (string, error) {
	return a.burnURL, a.linkErr
}

func (a *fakeAPI) Fetch(ctx context.Context, id model.DocID) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.fetched = append(a.fetched, id)
	return a.content, a.fetchErr
}

type recordingOpener struct{ opened []string }

func (o *recordingOpener) Open(u string) error {
	o.opened = append(o.opened, u)
	return nil
}

var _ browser.Opener = (*recordingOpener)(nil)

func newTestModel(api *fakeAPI, opener *recordingOpener) appModel {
	m := newAppModel(Options{
		API:      api,
		Opener:   opener,
		Copy:     func(string) error { return nil },
		Interval: time.Millisecond,
		Decay:    time.Millisecond,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	mm, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return mm.(appModel)
}

// editorWith puts the model straight into the editor with content acknowledged.
func editorWith(t *testing.T, api *fakeAPI, opener *recordingOpener, id model.DocID, content string) appModel {
	t.Helper()
	m := newTestModel(api, opener)
	mm, _ := m.Update(loadDoneMsg{id: id, content: content})
	m = mm.(appModel)
	if m.mode != modeEditor {
		t.Fatalf("expected editor mode after load")
	}
	return m
}

// runCmd executes cmd and flattens batches. Ticks are short in tests.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func saveMsgs(msgs []tea.Msg) []saveDoneMsg {
	var out []saveDoneMsg
	for _, msg := range msgs {
		if s, ok := msg.(saveDoneMsg); ok {
			out = append(out, s)
		}
	}
	return out
}

func tick(t *testing.T, m appModel) (appModel, []saveDoneMsg) {
	t.Helper()
	mm, cmd := m.Update(autosaveTickMsg{})
	m = mm.(appModel)
	return m, saveMsgs(runCmd(cmd))
}

func deliver(m appModel, msg tea.Msg) (appModel, tea.Cmd) {
	mm, cmd := m.Update(msg)
	return mm.(appModel), cmd
}

func TestEditor_UnchangedFieldDoesNotSave(t *testing.T) {
	api := &fakeAPI{}
	m := editorWith(t, api, &recordingOpener{}, "abc", "hi y")

	for i := 0; i < 3; i++ {
		var saves []saveDoneMsg
		m, saves = tick(t, m)
		if len(saves) != 0 {
			t.Fatalf("tick %d: expected no save; got %d", i, len(saves))
		}
	}
	if len(api.updates) != 0 {
		t.Fatalf("expected no updates; got %v", api.updates)
	}
}

func TestEditor_LoadNormalizedByFieldDoesNotSave(t *testing.T) {
	api := &fakeAPI{}
	m := editorWith(t, api, &recordingOpener{}, "abc", "a\tb\r\nc")

	if got, acked := m.field.Value(), m.autosave.Acknowledged(); got != acked {
		t.Fatalf("expected field value acknowledged; got field=%q acked=%q", got, acked)
	}
	if m.flash == "" {
		t.Fatalf("expected a notice that the text was normalized")
	}
	for i := 0; i < 3; i++ {
		var saves []saveDoneMsg
		m, saves = tick(t, m)
		if len(saves) != 0 {
			t.Fatalf("tick %d: expected no save; got %+v", i, saves)
		}
	}
	if len(api.updates) != 0 {
		t.Fatalf("expected no updates; got %q", api.updates)
	}
}

func TestEditor_StaleAckSavesNewerContent(t *testing.T) {
	api := &fakeAPI{}
	m := editorWith(t, api, &recordingOpener{}, "abc", "A")

	m.field.SetValue("B")
	m, saves := tick(t, m)
	if len(saves) != 1 || saves[0].req.Content != "B" {
		t.Fatalf("expected one save for B; got %+v", saves)
	}
	pendingB := saves[0]

	m.field.SetValue("C")
	m, saves = tick(t, m)
	if len(saves) != 0 {
		t.Fatalf("expected no overlapping save while B is in flight; got %+v", saves)
	}

	m, _ = deliver(m, pendingB)
	if got := m.autosave.Acknowledged(); got != "B" {
		t.Fatalf("expected B acknowledged; got %q", got)
	}
	if !m.indicator.Visible() {
		t.Fatalf("expected saved indicator after success")
	}

	m, saves = tick(t, m)
	if len(saves) != 1 || saves[0].req.Content != "C" {
		t.Fatalf("expected follow-up save for C; got %+v", saves)
	}
	m, _ = deliver(m, saves[0])
	if got := m.autosave.Acknowledged(); got != "C" {
		t.Fatalf("expected C acknowledged; got %q", got)
	}
}

func TestEditor_RejectionShowsAlertAndHoldsDispatch(t *testing.T) {
	api := &fakeAPI{updateErr: &client.RejectedError{Op: client.OpUpdate, StatusCode: 400, Message: "invalid identifier"}}
	m := editorWith(t, api, &recordingOpener{}, "abc", "A")

	m.field.SetValue("B")
	m, saves := tick(t, m)
	m, _ = deliver(m, saves[0])
	if len(m.alerts) != 1 || m.alerts[0] != "invalid identifier" {
		t.Fatalf("expected alert with server message; got %v", m.alerts)
	}
	if !strings.Contains(m.View(), "invalid identifier") {
		t.Fatalf("expected alert to be rendered")
	}

	m, saves = tick(t, m)
	if len(saves) != 0 {
		t.Fatalf("expected dispatch held while the alert is up")
	}

	m, _ = deliver(m, tea.KeyMsg{Type: tea.KeyEnter})
	if len(m.alerts) != 0 {
		t.Fatalf("expected enter to dismiss the alert")
	}
	_, saves = tick(t, m)
	if len(saves) != 1 {
		t.Fatalf("expected retry after dismissal; got %d", len(saves))
	}
}

func TestEditor_TransportFailureIsSilent(t *testing.T) {
	api := &fakeAPI{updateErr: &client.TransportError{Op: client.OpUpdate, Err: errors.New("connection refused")}}
	m := editorWith(t, api, &recordingOpener{}, "abc", "A")

	m.field.SetValue("B")
	m, saves := tick(t, m)
	m, _ = deliver(m, saves[0])
	if len(m.alerts) != 0 {
		t.Fatalf("expected no alert; got %v", m.alerts)
	}
	if m.autosave.Acknowledged() != "A" {
		t.Fatalf("expected acknowledged content unchanged")
	}
	_, saves = tick(t, m)
	if len(saves) != 1 || saves[0].req.Content != "B" {
		t.Fatalf("expected retry on next tick; got %+v", saves)
	}
}

func TestEditor_IndicatorOnlyLatestDecayHides(t *testing.T) {
	api := &fakeAPI{}
	m := editorWith(t, api, &recordingOpener{}, "abc", "A")

	m.field.SetValue("B")
	m, saves := tick(t, m)
	m, decay1 := deliver(m, saves[0])
	first := runCmd(decay1)

	m.field.SetValue("C")
	m, saves = tick(t, m)
	m, decay2 := deliver(m, saves[0])
	second := runCmd(decay2)

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("expected one decay message per save; got %v and %v", first, second)
	}
	m, _ = deliver(m, first[0])
	if !m.indicator.Visible() {
		t.Fatalf("expected the earlier decay not to hide the indicator")
	}
	m, _ = deliver(m, second[0])
	if m.indicator.Visible() {
		t.Fatalf("expected the latest decay to hide the indicator")
	}
}

func TestEditor_BurnLinkShowsModalNeverOpens(t *testing.T) {
	api := &fakeAPI{burnURL: "https://host/b/xyz"}
	opener := &recordingOpener{}
	m := editorWith(t, api, opener, "abc", "A")

	m, cmd := deliver(m, tea.KeyMsg{Type: tea.KeyCtrlX})
	for _, msg := range runCmd(cmd) {
		if link, ok := msg.(linkDoneMsg); ok {
			m, cmd = deliver(m, link)
			runCmd(cmd)
		}
	}
	if !m.modal.Visible() || m.modal.Href() != "https://host/b/xyz" || m.modal.LinkText() != "https://host/b/xyz" {
		t.Fatalf("expected modal bound to the burn link; got visible=%v href=%q", m.modal.Visible(), m.modal.Href())
	}
	if len(opener.opened) != 0 {
		t.Fatalf("expected burn link never opened; got %v", opener.opened)
	}
	if !strings.Contains(m.View(), "https://host/b/xyz") {
		t.Fatalf("expected link in the rendered modal")
	}

	r := m.linkModalRect()
	m, _ = deliver(m, tea.MouseMsg{X: r.x + 1, Y: r.y + 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if !m.modal.Visible() {
		t.Fatalf("expected click inside the box to keep the modal")
	}
	m, _ = deliver(m, tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if m.modal.Visible() {
		t.Fatalf("expected backdrop click to close the modal")
	}

	m.modal.Show("https://host/b/xyz")
	m, _ = deliver(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.modal.Visible() {
		t.Fatalf("expected close key to close the modal")
	}
}

func TestEditor_ShareLinkOpensNeverModals(t *testing.T) {
	api := &fakeAPI{shareURL: "https://host/s/abc"}
	opener := &recordingOpener{}
	m := editorWith(t, api, opener, "abc", "A")

	m, cmd := deliver(m, tea.KeyMsg{Type: tea.KeyCtrlS})
	for _, msg := range runCmd(cmd) {
		if link, ok := msg.(linkDoneMsg); ok {
			m, cmd = deliver(m, link)
			for _, done := range runCmd(cmd) {
				m, _ = deliver(m, done)
			}
		}
	}
	if len(opener.opened) != 1 || opener.opened[0] != "https://host/s/abc" {
		t.Fatalf("expected share link opened once; got %v", opener.opened)
	}
	if m.modal.Visible() {
		t.Fatalf("expected no modal for share links")
	}
}

func TestEditor_ModalCopy(t *testing.T) {
	var copied string
	m := editorWith(t, &fakeAPI{}, &recordingOpener{}, "abc", "A")
	m.opts.Copy = func(s string) error { copied = s; return nil }
	m.modal.Show("https://host/b/xyz")

	m, cmd := deliver(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	for _, msg := range runCmd(cmd) {
		m, _ = deliver(m, msg)
	}
	if copied != "https://host/b/xyz" {
		t.Fatalf("expected link copied; got %q", copied)
	}
	if m.flash != "Link copied" {
		t.Fatalf("expected flash; got %q", m.flash)
	}
	if !m.modal.Visible() {
		t.Fatalf("expected copy to leave the modal open")
	}
}

func TestPrompt_ValidatesAndLoads(t *testing.T) {
	api := &fakeAPI{content: "hi y"}
	m := newTestModel(api, &recordingOpener{})
	if m.mode != modePrompt {
		t.Fatalf("expected prompt without an id")
	}

	m.prompt.SetValue("a!")
	m, _ = deliver(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.promptErr == "" || m.loading {
		t.Fatalf("expected validation error for bad id")
	}

	m.prompt.SetValue("dqjl")
	m, cmd := deliver(m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.loading {
		t.Fatalf("expected loading after a valid id")
	}
	for _, msg := range runCmd(cmd) {
		m, _ = deliver(m, msg)
	}
	if m.mode != modeEditor || m.id != "dqjl" {
		t.Fatalf("expected editor for dqjl; got mode=%v id=%q", m.mode, m.id)
	}
	if m.field.Value() != "hi y" || m.autosave.Acknowledged() != "hi y" {
		t.Fatalf("expected fetched content as baseline")
	}
}

func TestPrompt_LoadRejectionStaysOnPrompt(t *testing.T) {
	api := &fakeAPI{fetchErr: &client.RejectedError{Op: client.OpContent, StatusCode: 400, Message: "invalid identifier"}}
	m := newTestModel(api, &recordingOpener{})

	m, _ = deliver(m, loadDoneMsg{id: "abc", err: api.fetchErr})
	if m.mode != modePrompt || m.promptErr != "invalid identifier" {
		t.Fatalf("expected prompt with server message; got mode=%v err=%q", m.mode, m.promptErr)
	}
}

func TestView_ShowsSavedIndicator(t *testing.T) {
	m := editorWith(t, &fakeAPI{}, &recordingOpener{}, "abc", "A")
	if strings.Contains(m.View(), "Saved") {
		t.Fatalf("expected no indicator before a save")
	}
	m.field.SetValue("B")
	m, saves := tick(t, m)
	m, _ = deliver(m, saves[0])
	view := m.View()
	if !strings.Contains(view, "Saved") {
		t.Fatalf("expected indicator after a save")
	}
	if got := len(strings.Split(view, "\n")); got != m.height {
		t.Fatalf("expected %d lines; got %d", m.height, got)
	}
}
