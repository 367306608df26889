package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

func itoa(n int) string { return strconv.Itoa(n) }

func (m appModel) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	if m.mode == modePrompt {
		return m.viewPrompt()
	}

	screen := strings.Join([]string{m.viewHeader(), m.viewBody(), m.viewFooter()}, "\n")
	switch {
	case len(m.alerts) > 0:
		box := renderAlertModal(m.width, m.alerts[0], len(m.alerts)-1)
		w, h := boxSize(box)
		return overlay(screen, box, centerRect(w, h, m.width, m.height), m.width, m.height)
	case m.modal.Visible():
		box := renderLinkModal(m.width, m.modal.LinkText())
		return overlay(screen, box, m.linkModalRect(), m.width, m.height)
	}
	return normalizePane(screen, m.width, m.height)
}

// linkModalRect is where the burn link modal is drawn; mouse hit-testing uses
// the same geometry.
func (m appModel) linkModalRect() rect {
	w, h := boxSize(renderLinkModal(m.width, m.modal.LinkText()))
	return centerRect(w, h, m.width, m.height)
}

func (m appModel) viewPrompt() string {
	bodyW := modalBodyWidth(m.width)
	lines := []string{
		"Which document do you want to edit?",
		"",
		lipgloss.NewStyle().Background(colorControlBg).Width(bodyW).Render(m.prompt.View()),
	}
	switch {
	case m.loading:
		lines = append(lines, "", styleMuted().Render("Loading /"+m.id.String()+"…"))
	case m.promptErr != "":
		lines = append(lines, "", lipgloss.NewStyle().Foreground(colorDanger).Width(bodyW).Render(m.promptErr))
	}
	lines = append(lines, "", styleMuted().Render("enter: open   ctrl+q: quit"))
	box := renderModalBox(m.width, "getmytext", strings.Join(lines, "\n"))
	w, h := boxSize(box)
	return overlay("", box, centerRect(w, h, m.width, m.height), m.width, m.height)
}

func (m appModel) viewHeader() string {
	left := styleTitle().Render("getmytext") + styleMuted().Render("  /"+m.id.String())

	var right []string
	if m.pending > 0 {
		right = append(right, m.spin.View())
	}
	if m.indicator.Visible() {
		right = append(right, styleSaved().Render("✓ Saved"))
	}
	r := strings.Join(right, " ")

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(r)
	if gap < 1 {
		gap = 1
	}
	return normalizePane(left+strings.Repeat(" ", gap)+r, m.width, 1)
}

func (m appModel) viewBody() string {
	h := m.height - 2
	if h < 1 {
		h = 1
	}
	if !m.preview {
		return normalizePane(m.field.View(), m.width, h)
	}
	leftW := m.width / 2
	rightW := m.width - leftW - 1
	sep := lipgloss.NewStyle().Foreground(colorBorder).Render(strings.TrimRight(strings.Repeat("│\n", h), "\n"))
	pv := renderMarkdown(m.field.Value(), rightW)
	if pv == "" {
		pv = styleMuted().Render("(nothing to preview)")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		normalizePane(m.field.View(), leftW, h),
		sep,
		normalizePane(pv, rightW, h),
	)
}

func (m appModel) viewFooter() string {
	var status string
	switch {
	case m.flash != "":
		status = m.flash
	case !m.lastSavedAt.IsZero():
		status = "saved " + humanize.RelTime(m.lastSavedAt, m.now(), "ago", "from now")
	case m.autosave != nil && m.autosave.Dirty():
		status = "unsaved changes"
	}
	helpView := m.help.View(m.keys)
	if status == "" {
		return normalizePane(helpView, m.width, 1)
	}
	s := styleMuted().Render(status)
	gap := m.width - lipgloss.Width(helpView) - lipgloss.Width(s)
	if gap < 1 {
		gap = 1
	}
	return normalizePane(helpView+strings.Repeat(" ", gap)+s, m.width, 1)
}
