package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// normalizePane forces s to be exactly width columns wide (ANSI-aware) and, if
// height > 0, exactly height lines tall.
func normalizePane(s string, width, height int) string {
	if width < 0 {
		width = 0
	}
	lines := strings.Split(s, "\n")
	if height > 0 {
		if len(lines) > height {
			lines = lines[:height]
		}
		for len(lines) < height {
			lines = append(lines, "")
		}
	}
	for i, ln := range lines {
		// Bound the width computation on huge lines.
		if width > 0 && len(ln) > 8192 {
			ln = xansi.Cut(ln, 0, width)
		}
		w := xansi.StringWidth(ln)
		if w > width {
			switch {
			case width <= 0:
				ln = ""
			case width == 1:
				ln = xansi.Cut(ln, 0, 1)
			default:
				ln = xansi.Cut(ln, 0, width-1) + "…"
			}
			w = xansi.StringWidth(ln)
		}
		if w < width {
			ln += strings.Repeat(" ", width-w)
		}
		lines[i] = ln
	}
	return strings.Join(lines, "\n")
}

// rect is a screen region in cells.
type rect struct {
	x, y, w, h int
}

func (r rect) contains(x, y int) bool {
	return x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h
}

// centerRect places a box of the given size in the middle of the screen.
func centerRect(boxW, boxH, width, height int) rect {
	x := (width - boxW) / 2
	y := (height - boxH) / 2
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	return rect{x: x, y: y, w: boxW, h: boxH}
}

// overlay draws fg over bg at r. bg is normalized to width x height first.
func overlay(bg, fg string, r rect, width, height int) string {
	lines := strings.Split(normalizePane(bg, width, height), "\n")
	fgLines := strings.Split(normalizePane(fg, r.w, r.h), "\n")
	for i, fl := range fgLines {
		row := r.y + i
		if row < 0 || row >= len(lines) {
			continue
		}
		ln := lines[row]
		left := xansi.Cut(ln, 0, r.x)
		right := xansi.Cut(ln, r.x+r.w, width)
		lines[row] = left + fl + right
	}
	return strings.Join(lines, "\n")
}

func boxSize(s string) (int, int) {
	return lipgloss.Width(s), lipgloss.Height(s)
}
