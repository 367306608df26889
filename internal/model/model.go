package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DocID is the opaque key that routes every request to one server-side document.
type DocID string

func (id DocID) String() string { return string(id) }

var docIDPattern = regexp.MustCompile(`^[A-Za-z0-9]{3,24}$`)

type InvalidDocIDError struct {
	ID string
}

func (e InvalidDocIDError) Error() string {
	return fmt.Sprintf("invalid document identifier: %q", e.ID)
}

// ValidateDocID reports whether id is accepted by the server (3-24 ASCII letters or digits).
func ValidateDocID(id string) (DocID, error) {
	id = strings.TrimSpace(id)
	if !docIDPattern.MatchString(id) {
		return "", InvalidDocIDError{ID: id}
	}
	return DocID(id), nil
}

// IsDocID is the non-error form of ValidateDocID.
func IsDocID(s string) bool {
	return docIDPattern.MatchString(strings.TrimSpace(s))
}

// Reserved paths that always show the read-only main text.
var MainTextPaths = []string{"", "0", "1", "main", "index"}

func IsMainTextPath(p string) bool {
	p = strings.Trim(p, "/")
	for _, m := range MainTextPaths {
		if p == m {
			return true
		}
	}
	return false
}

// MaxContentBytes is the largest document the server stores.
const MaxContentBytes = 4 << 20

// MaxEncodedContentBytes bounds a JSON body carrying at most MaxContentBytes
// of content: the worst case escape is \u00XX (6 bytes) per input byte.
const MaxEncodedContentBytes = 6*MaxContentBytes + 64<<10

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

type UpdateRequest struct {
	Content *string `json:"content"`
}

// Response is the envelope shared by every endpoint.
type Response struct {
	Status   string  `json:"status"`
	Message  string  `json:"message,omitempty"`
	ShareURL string  `json:"share_url,omitempty"`
	BurnURL  string  `json:"burn_url,omitempty"`
	Content  *string `json:"content,omitempty"`
}

type ShareKind string

const (
	ShareKindPersistent ShareKind = "share"
	ShareKindBurn       ShareKind = "burn"
)

// PathPrefix is the URL prefix a share of this kind is served under.
func (k ShareKind) PathPrefix() string {
	if k == ShareKindBurn {
		return "/b/"
	}
	return "/s/"
}

type Document struct {
	ID        DocID     `json:"id"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Share struct {
	Token     string    `json:"token"`
	Kind      ShareKind `json:"kind"`
	DocID     DocID     `json:"docId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
