package cli

import (
	"fmt"

	"getmytext-cli/internal/model"
)

type reservedIDError struct {
	id string
}

func (e reservedIDError) Error() string {
	return fmt.Sprintf("document id %q is reserved for the read-only main text", e.id)
}

// parseDocID accepts exactly what the server's editable pages accept.
func parseDocID(raw string) (model.DocID, error) {
	id, err := model.ValidateDocID(raw)
	if err != nil {
		return "", err
	}
	if model.IsMainTextPath(id.String()) {
		return "", reservedIDError{id: id.String()}
	}
	return id, nil
}
