package tui

import (
	"getmytext-cli/internal/editor"
	"getmytext-cli/internal/model"

	"github.com/charmbracelet/bubbles/key"
)

type appMode int

const (
	modePrompt appMode = iota
	modeEditor
)

type autosaveTickMsg struct{}

type saveDoneMsg struct {
	req editor.SaveRequest
	err error
}

type indicatorDoneMsg struct{ seq uint64 }

type linkDoneMsg struct {
	kind editor.LinkKind
	url  string
	err  error
}

type openDoneMsg struct {
	url string
	err error
}

type copyDoneMsg struct{ err error }

type loadDoneMsg struct {
	id      model.DocID
	content string
	err     error
}

type flashDoneMsg struct{ seq int }

type keyMap struct {
	Share   key.Binding
	Burn    key.Binding
	Preview key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Share:   key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "share")),
		Burn:    key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "burn link")),
		Preview: key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "preview")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "ctrl+q"), key.WithHelp("ctrl+q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Share, k.Burn, k.Preview, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

type modalKeyMap struct {
	Close key.Binding
	Copy  key.Binding
}

func defaultModalKeyMap() modalKeyMap {
	return modalKeyMap{
		Close: key.NewBinding(key.WithKeys("esc", "enter", "q")),
		Copy:  key.NewBinding(key.WithKeys("c", "y")),
	}
}
