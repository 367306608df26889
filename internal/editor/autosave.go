package editor

import "errors"

// SaveRequest is the snapshot carried by one update request.
type SaveRequest struct {
	Seq     uint64
	Content string
}

type ResolutionKind int

const (
	// ResolutionStale means the response did not belong to the request in flight.
	ResolutionStale ResolutionKind = iota
	ResolutionSaved
	ResolutionRejected
	ResolutionFailed
)

func (k ResolutionKind) String() string {
	switch k {
	case ResolutionSaved:
		return "saved"
	case ResolutionRejected:
		return "rejected"
	case ResolutionFailed:
		return "failed"
	default:
		return "stale"
	}
}

type Resolution struct {
	Kind ResolutionKind
	// Message is the server-provided text for ResolutionRejected.
	Message string
	// Err is the underlying error for ResolutionRejected and ResolutionFailed.
	Err error
}

// rejection is implemented by errors that carry a server-provided message
// (the server understood the request and declined it).
type rejection interface {
	error
	RejectionMessage() string
}

// Autosave tracks the last acknowledged content and the single in-flight update.
//
// It is not safe for concurrent use; callers drive it from one logical thread.
type Autosave struct {
	acked    string
	seq      uint64
	inFlight *SaveRequest
	dirty    bool
}

func NewAutosave(initial string) *Autosave {
	return &Autosave{acked: initial}
}

// Acknowledged returns the content last confirmed by the server.
func (a *Autosave) Acknowledged() string { return a.acked }

func (a *Autosave) InFlight() bool { return a.inFlight != nil }

// Dirty reports whether the last Tick observed content different from Acknowledged.
func (a *Autosave) Dirty() bool { return a.dirty }

// Tick compares current against the acknowledged content. When it differs and
// no request is outstanding it returns the request to dispatch.
func (a *Autosave) Tick(current string) (SaveRequest, bool) {
	a.dirty = current != a.acked
	if !a.dirty || a.inFlight != nil {
		return SaveRequest{}, false
	}
	a.seq++
	req := SaveRequest{Seq: a.seq, Content: current}
	a.inFlight = &req
	return req, true
}

// Resolve applies the outcome of req. Only the content carried by req is ever
// recorded as acknowledged.
func (a *Autosave) Resolve(req SaveRequest, err error) Resolution {
	if a.inFlight == nil || a.inFlight.Seq != req.Seq {
		return Resolution{Kind: ResolutionStale}
	}
	a.inFlight = nil

	if err == nil {
		a.acked = req.Content
		return Resolution{Kind: ResolutionSaved}
	}
	var rej rejection
	if errors.As(err, &rej) {
		return Resolution{Kind: ResolutionRejected, Message: rej.RejectionMessage(), Err: err}
	}
	return Resolution{Kind: ResolutionFailed, Err: err}
}

// Abandon forgets the in-flight request so its response is treated as stale.
func (a *Autosave) Abandon() {
	a.inFlight = nil
}
