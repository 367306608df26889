package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "", want: slog.LevelInfo},
		{in: "WARN", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil || got != tt.want {
			t.Fatalf("ParseLevel(%q): expected %v; got %v (%v)", tt.in, tt.want, got, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestNew_FiltersBelowLevel(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger, err := New(&buf, "warn")
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("quiet")
	logger.Warn("update failed", "doc", "abc")
	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Fatalf("expected info to be filtered; got %q", out)
	}
	if !strings.Contains(out, "doc=abc") {
		t.Fatalf("expected warn line with attrs; got %q", out)
	}
}

func TestToFile_Appends(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	dir := filepath.Join(t.TempDir(), "logs")
	logger, closeFn, err := ToFile(dir, "getmytext.log", "info")
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("hello")
	if err := closeFn(); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "getmytext.log"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "msg=hello") {
		t.Fatalf("expected log line in file; got %q", b)
	}
}
