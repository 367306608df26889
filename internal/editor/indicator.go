package editor

// Indicator is the transient "saved" acknowledgement. Every Show starts a new
// decay window; only the hide scheduled for the latest window takes effect.
type Indicator struct {
	visible bool
	seq     uint64
}

// Show makes the indicator visible and returns the sequence the caller must
// pass to Expire when the decay window elapses.
func (i *Indicator) Show() uint64 {
	i.seq++
	i.visible = true
	return i.seq
}

// Expire hides the indicator if seq is the latest window. It reports whether
// the indicator was hidden.
func (i *Indicator) Expire(seq uint64) bool {
	if !i.visible || seq != i.seq {
		return false
	}
	i.visible = false
	return true
}

func (i *Indicator) Visible() bool { return i.visible }

// Reset hides the indicator and invalidates any pending decay.
func (i *Indicator) Reset() {
	i.seq++
	i.visible = false
}
