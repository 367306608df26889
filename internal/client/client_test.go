package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"getmytext-cli/internal/model"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Options{BaseURL: srv.URL, Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, srv
}

func TestUpdate_SendsContentAndAcceptsSuccess(t *testing.T) {
	t.Parallel()

	var gotPath, gotCT string
	var gotBody map[string]any
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotCT = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		_, _ = w.Write([]byte(`{"status":"success","message":"content updated"}`))
	})

	if err := c.Update(context.Background(), "abc", "hello\nworld"); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if gotPath != "/update/abc" {
		t.Fatalf("expected path /update/abc; got %q", gotPath)
	}
	if gotCT != "application/json" {
		t.Fatalf("expected json content type; got %q", gotCT)
	}
	if gotBody["content"] != "hello\nworld" {
		t.Fatalf("expected content in body; got %#v", gotBody)
	}
}

func TestUpdate_SendsMarkupUnescaped(t *testing.T) {
	t.Parallel()

	var raw string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		raw = string(b)
		_, _ = w.Write([]byte(`{"status":"success"}`))
	})

	if err := c.Update(context.Background(), "abc", "<b>&</b>"); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !strings.Contains(raw, `"content":"<b>&</b>"`) {
		t.Fatalf("expected markup sent as-is; got %q", raw)
	}
}

func TestUpdate_EscapesDocumentIdentifier(t *testing.T) {
	t.Parallel()

	var gotPath string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`{"status":"success"}`))
	})

	if err := c.Update(context.Background(), model.DocID("a b/c"), "x"); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if gotPath != "/update/a%20b%2Fc" {
		t.Fatalf("expected escaped id; got %q", gotPath)
	}
}

func TestUpdate_RejectionCarriesServerMessage(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status":"error","message":"invalid identifier"}`))
	})

	err := c.Update(context.Background(), "x", "y")
	msg, ok := Rejection(err)
	if !ok {
		t.Fatalf("expected rejection; got %v", err)
	}
	if msg != "invalid identifier" {
		t.Fatalf("expected server message; got %q", msg)
	}
	var te *TransportError
	if errors.As(err, &te) {
		t.Fatalf("expected rejection not to be a transport error")
	}
}

func TestDo_TransportFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		code int
		body string
	}{
		{name: "html error page", code: http.StatusBadGateway, body: "<html>bad gateway</html>"},
		{name: "truncated json", code: http.StatusOK, body: `{"status":"succ`},
		{name: "json array", code: http.StatusOK, body: `["success"]`},
		{name: "empty body", code: http.StatusOK, body: ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
				_, _ = w.Write([]byte(tt.body))
			})
			err := c.Update(context.Background(), "abc", "x")
			var te *TransportError
			if !errors.As(err, &te) {
				t.Fatalf("expected transport error; got %v", err)
			}
			if _, ok := Rejection(err); ok {
				t.Fatalf("expected no rejection for %s", tt.name)
			}
		})
	}
}

func TestDo_UnreachableServerIsTransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := New(Options{BaseURL: base, Timeout: time.Second})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = c.CreateShare(context.Background(), "abc")
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected transport error; got %v", err)
	}
}

func TestCreateLinks_BuildAbsoluteURLs(t *testing.T) {
	t.Parallel()

	var paths []string
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST; got %s", r.Method)
		}
		paths = append(paths, r.URL.Path)
		switch {
		case strings.HasPrefix(r.URL.Path, "/create_share/"):
			_, _ = w.Write([]byte(`{"status":"success","share_url":"/s/abc"}`))
		case strings.HasPrefix(r.URL.Path, "/create_burn/"):
			_, _ = w.Write([]byte(`{"status":"success","burn_url":"/b/xyz"}`))
		}
	})

	share, err := c.CreateShare(context.Background(), "doc1")
	if err != nil {
		t.Fatalf("CreateShare: %v", err)
	}
	if share != srv.URL+"/s/abc" {
		t.Fatalf("expected %q; got %q", srv.URL+"/s/abc", share)
	}
	burn, err := c.CreateBurn(context.Background(), "doc1")
	if err != nil {
		t.Fatalf("CreateBurn: %v", err)
	}
	if burn != srv.URL+"/b/xyz" {
		t.Fatalf("expected %q; got %q", srv.URL+"/b/xyz", burn)
	}
	if len(paths) != 2 || paths[0] != "/create_share/doc1" || paths[1] != "/create_burn/doc1" {
		t.Fatalf("unexpected request paths: %v", paths)
	}
}

func TestCreateShare_MissingURLIsTransportError(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"success"}`))
	})
	_, err := c.CreateShare(context.Background(), "doc1")
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected transport error; got %v", err)
	}
}

func TestFetch_ReturnsContent(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/content/doc1" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"status":"success","content":"hi y"}`))
	})
	got, err := c.Fetch(context.Background(), "doc1")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got != "hi y" {
		t.Fatalf("expected %q; got %q", "hi y", got)
	}
}

func TestAbsoluteURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		origin string
		rel    string
		want   string
	}{
		{origin: "https://host", rel: "/b/xyz", want: "https://host/b/xyz"},
		{origin: "https://host/", rel: "/s/abc", want: "https://host/s/abc"},
		{origin: "http://127.0.0.1:19998", rel: "s/abc", want: "http://127.0.0.1:19998/s/abc"},
		{origin: "https://host", rel: "https://cdn.example/s/1", want: "https://cdn.example/s/1"},
	}
	for _, tt := range tests {
		if got := AbsoluteURL(tt.origin, tt.rel); got != tt.want {
			t.Fatalf("AbsoluteURL(%q, %q): expected %q; got %q", tt.origin, tt.rel, tt.want, got)
		}
	}
}

func TestNew_RejectsBadBaseURL(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "ftp://host", "http://", "::nope"} {
		if _, err := New(Options{BaseURL: raw}); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestNew_OriginDropsPath(t *testing.T) {
	t.Parallel()

	c, err := New(Options{BaseURL: "https://host:8443/pad/"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.Origin() != "https://host:8443" {
		t.Fatalf("expected origin without path; got %q", c.Origin())
	}
	if got := c.endpoint(OpUpdate, "abc"); got != "https://host:8443/pad/update/abc" {
		t.Fatalf("expected endpoint under base path; got %q", got)
	}
}
