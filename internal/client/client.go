package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"getmytext-cli/internal/model"

	"github.com/tidwall/gjson"
)

// maxResponseBytes bounds how much of a response body is read. It is above
// anything the server sends for a document it accepted.
const maxResponseBytes = model.MaxEncodedContentBytes + 1<<20

const (
	OpUpdate      = "update"
	OpCreateShare = "create_share"
	OpCreateBurn  = "create_burn"
	OpContent     = "content"
)

type Options struct {
	// BaseURL is the server root, e.g. http://127.0.0.1:19998. Its origin is
	// used to build absolute share and burn links.
	BaseURL string
	// HTTPClient overrides the default client (Timeout is ignored when set).
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     *slog.Logger
}

// Client talks to the text-pad server. Every call is a single request; there
// are no retries.
type Client struct {
	base   string
	origin string
	http   *http.Client
	logger *slog.Logger
}

func New(opts Options) (*Client, error) {
	raw := strings.TrimSpace(opts.BaseURL)
	if raw == "" {
		return nil, errors.New("client: base url is empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("client: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("client: unsupported scheme %q (expected http or https)", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("client: base url %q has no host", raw)
	}

	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	u.RawQuery = ""
	u.Fragment = ""
	return &Client{
		base:   strings.TrimRight(u.String(), "/"),
		origin: u.Scheme + "://" + u.Host,
		http:   hc,
		logger: logger,
	}, nil
}

// Origin is the scheme://host[:port] of the server.
func (c *Client) Origin() string { return c.origin }

// Update stores content as the document's new value.
func (c *Client) Update(ctx context.Context, id model.DocID, content string) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(model.UpdateRequest{Content: &content}); err != nil {
		return &TransportError{Op: OpUpdate, Err: err}
	}
	_, err := c.do(ctx, http.MethodPost, OpUpdate, id, buf.Bytes())
	return err
}

// CreateShare mints a persistent share link and returns it as an absolute URL.
func (c *Client) CreateShare(ctx context.Context, id model.DocID) (string, error) {
	return c.createLink(ctx, OpCreateShare, "share_url", id)
}

// CreateBurn mints a burn-after-read link and returns it as an absolute URL.
func (c *Client) CreateBurn(ctx context.Context, id model.DocID) (string, error) {
	return c.createLink(ctx, OpCreateBurn, "burn_url", id)
}

// Fetch returns the document's stored content (empty for unknown documents).
func (c *Client) Fetch(ctx context.Context, id model.DocID) (string, error) {
	res, err := c.do(ctx, http.MethodGet, OpContent, id, nil)
	if err != nil {
		return "", err
	}
	content := res.Get("content")
	if content.Exists() && content.Type != gjson.String && content.Type != gjson.Null {
		return "", &TransportError{Op: OpContent, Err: errors.New("content is not a string")}
	}
	return content.String(), nil
}

func (c *Client) createLink(ctx context.Context, op, field string, id model.DocID) (string, error) {
	res, err := c.do(ctx, http.MethodPost, op, id, nil)
	if err != nil {
		return "", err
	}
	rel := res.Get(field)
	if rel.Type != gjson.String || strings.TrimSpace(rel.String()) == "" {
		return "", &TransportError{Op: op, Err: fmt.Errorf("response has no %s", field)}
	}
	return AbsoluteURL(c.origin, rel.String()), nil
}

func (c *Client) endpoint(op string, id model.DocID) string {
	return c.base + "/" + op + "/" + url.PathEscape(string(id))
}

// do performs one request and classifies the response. A body that is not a
// JSON object is a transport failure whatever the HTTP status; a JSON object
// whose status is not "success" is a rejection.
func (c *Client) do(ctx context.Context, method, op string, id model.DocID, body []byte) (gjson.Result, error) {
	if strings.TrimSpace(string(id)) == "" {
		return gjson.Result{}, &TransportError{Op: op, Err: errors.New("empty document identifier")}
	}

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(op, id), rd)
	if err != nil {
		return gjson.Result{}, &TransportError{Op: op, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return gjson.Result{}, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return gjson.Result{}, &TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	c.logger.Debug("request done", "op", op, "doc", string(id), "status", resp.StatusCode, "duration", time.Since(start))

	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, &TransportError{Op: op, StatusCode: resp.StatusCode, Err: errors.New("malformed response body")}
	}
	res := gjson.ParseBytes(raw)
	if !res.IsObject() {
		return gjson.Result{}, &TransportError{Op: op, StatusCode: resp.StatusCode, Err: errors.New("response is not an object")}
	}

	status := res.Get("status").String()
	if status == model.StatusSuccess {
		return res, nil
	}
	msg := res.Get("message").String()
	if strings.TrimSpace(msg) == "" {
		msg = fmt.Sprintf("%s failed (status %q, HTTP %d)", op, status, resp.StatusCode)
	}
	return res, &RejectedError{Op: op, StatusCode: resp.StatusCode, Message: msg}
}

// AbsoluteURL joins the page origin and a server-relative path.
func AbsoluteURL(origin, rel string) string {
	rel = strings.TrimSpace(rel)
	if u, err := url.Parse(rel); err == nil && u.IsAbs() {
		return rel
	}
	if !strings.HasPrefix(rel, "/") {
		rel = "/" + rel
	}
	return strings.TrimRight(origin, "/") + rel
}
