package editor

import "errors"

type LinkKind int

const (
	// LinkShare is a persistent share link; it is opened in a new tab.
	LinkShare LinkKind = iota
	// LinkBurn is consumed on first view, so it is displayed instead of opened.
	LinkBurn
)

func (k LinkKind) String() string {
	if k == LinkBurn {
		return "burn"
	}
	return "share"
}

type LinkAction int

const (
	LinkOpenTab LinkAction = iota
	LinkShowModal
	LinkAlert
	LinkLogOnly
)

type LinkRoute struct {
	Action  LinkAction
	URL     string
	Message string
	Err     error
}

// RouteLink decides what to do with the result of a link-creation request.
func RouteLink(kind LinkKind, url string, err error) LinkRoute {
	if err != nil {
		var rej rejection
		if errors.As(err, &rej) {
			return LinkRoute{Action: LinkAlert, Message: rej.RejectionMessage(), Err: err}
		}
		return LinkRoute{Action: LinkLogOnly, Err: err}
	}
	if kind == LinkBurn {
		return LinkRoute{Action: LinkShowModal, URL: url}
	}
	return LinkRoute{Action: LinkOpenTab, URL: url}
}
