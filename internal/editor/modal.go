package editor

// ClickTarget says where a pointer interaction landed relative to the dialog.
type ClickTarget int

const (
	TargetBackdrop ClickTarget = iota
	TargetContent
)

// Modal holds the burn-link dialog state. It has no timed hide.
type Modal struct {
	visible bool
	url     string
}

// Show binds url into the dialog and displays it.
func (m *Modal) Show(url string) {
	m.url = url
	m.visible = true
}

// Close hides the dialog (explicit close control). It reports whether it was visible.
func (m *Modal) Close() bool {
	was := m.visible
	m.visible = false
	return was
}

// Click handles a pointer interaction; only the backdrop dismisses the dialog.
func (m *Modal) Click(target ClickTarget) bool {
	if !m.visible || target != TargetBackdrop {
		return false
	}
	m.visible = false
	return true
}

func (m *Modal) Visible() bool { return m.visible }

// Href is the link target bound into the dialog.
func (m *Modal) Href() string { return m.url }

// LinkText is the visible text of the dialog's link; it always equals Href.
func (m *Modal) LinkText() string { return m.url }
