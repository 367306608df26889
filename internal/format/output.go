package format

import (
	"encoding/json"
	"fmt"
	"io"
)

// Envelope is the shape of every JSON document a command prints. Hints tell a
// human or script what to do next; they never carry data.
type Envelope struct {
	Data  any            `json:"data"`
	Meta  map[string]any `json:"meta,omitempty"`
	Hints []string       `json:"_hints,omitempty"`
}

// WriteJSON writes v as a single JSON document followed by a newline.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
