package store

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

const DefaultMainText = "This is the content of main.txt."

// EnsureMainText creates the read-only landing text if it does not exist yet.
func EnsureMainText(path string) (created bool, err error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, err
	}
	return true, os.WriteFile(path, []byte(DefaultMainText), 0o644)
}

// ReadMainText returns the landing text; a missing file reads as empty.
func ReadMainText(path string) (string, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}
