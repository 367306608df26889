package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	modalMinWidth = 30
	modalMaxWidth = 72
)

func modalWidth(screenW int) int {
	w := screenW - 8
	if w > modalMaxWidth {
		w = modalMaxWidth
	}
	if w < modalMinWidth {
		w = modalMinWidth
	}
	if w > screenW {
		w = screenW
	}
	return w
}

// modalBodyWidth is the usable text width inside a modal box.
func modalBodyWidth(screenW int) int {
	// border (2) + padding (4)
	w := modalWidth(screenW) - 6
	if w < 1 {
		w = 1
	}
	return w
}

// renderModalBox draws a titled, bordered box.
func renderModalBox(screenW int, title, body string) string {
	bodyW := modalBodyWidth(screenW)
	header := styleTitle().Width(bodyW).Render(title)
	content := strings.Join([]string{header, "", body}, "\n")
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 2).
		Width(bodyW + 4).
		Render(content)
}

// renderAlertModal is the blocking message box for server rejections.
func renderAlertModal(screenW int, message string, pending int) string {
	bodyW := modalBodyWidth(screenW)
	msg := lipgloss.NewStyle().Foreground(colorDanger).Width(bodyW).Render(message)
	hint := "enter: ok"
	if pending > 0 {
		hint += "   (" + itoa(pending) + " more)"
	}
	body := strings.Join([]string{msg, "", styleMuted().Width(bodyW).Render(hint)}, "\n")
	return renderModalBox(screenW, "The server says", body)
}

// renderLinkModal shows a burn-after-read link. The link is displayed only;
// opening it would consume it.
func renderLinkModal(screenW int, url string) string {
	bodyW := modalBodyWidth(screenW)
	link := styleLink().Width(bodyW).Render(url)
	body := strings.Join([]string{
		"This link can be opened once:",
		"",
		link,
		"",
		styleMuted().Width(bodyW).Render("c: copy   esc/enter: close   click outside: close"),
	}, "\n")
	return renderModalBox(screenW, "Burn after reading", body)
}
