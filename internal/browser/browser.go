// Package browser hands URLs to the desktop: opening them in the user's
// browser and placing them on the clipboard.
package browser

import (
	"errors"
	"net/url"
	"os/exec"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"
)

// Opener opens a URL in a new browser tab.
type Opener interface {
	Open(rawURL string) error
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(rawURL string) error

func (f OpenerFunc) Open(rawURL string) error { return f(rawURL) }

// System opens URLs with the platform launcher.
var System Opener = OpenerFunc(Open)

func Open(rawURL string) error {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return errors.New("empty url")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("refusing to open non-http url: " + rawURL)
	}
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", rawURL).Run()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL).Run()
	default:
		return exec.Command("xdg-open", rawURL).Run()
	}
}

// Copy places s on the system clipboard.
func Copy(s string) error {
	if clipboard.Unsupported {
		return errors.New("clipboard: no clipboard utility available")
	}
	return clipboard.WriteAll(strings.ReplaceAll(s, "\r\n", "\n"))
}
