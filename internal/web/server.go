// Package web serves the document pages, the autosave endpoints and the
// share/burn links.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"getmytext-cli/internal/model"

	"github.com/CAFxX/httpcompression"
	"github.com/felixge/httpsnoop"
	"github.com/go-chi/chi/v5"
)

//go:embed templates/*.html static/*.js static/*.css
var assetsFS embed.FS

const (
	RenderText     = "text"
	RenderMarkdown = "markdown"
)

// Documents is the storage the server needs.
type Documents interface {
	Get(ctx context.Context, id model.DocID) (model.Document, error)
	Put(ctx context.Context, id model.DocID, content string) error
	CreateShare(ctx context.Context, id model.DocID, kind model.ShareKind) (model.Share, error)
	GetShare(ctx context.Context, token string) (model.Share, error)
	Burn(ctx context.Context, token string) (model.Share, error)
}

type ServerConfig struct {
	Addr         string
	MainTextPath string
	// FaviconPath is optional; without it /favicon.ico answers 204.
	FaviconPath string
	// MetaDir holds page decorations served under /meta/ (bg.png). Optional.
	MetaDir string
	Render  string // text|markdown
	Logger  *slog.Logger
}

type Server struct {
	cfg    ServerConfig
	docs   Documents
	tmpl   *template.Template
	logger *slog.Logger
}

func NewServer(cfg ServerConfig, docs Documents) (*Server, error) {
	cfg.Addr = strings.TrimSpace(cfg.Addr)
	cfg.MainTextPath = strings.TrimSpace(cfg.MainTextPath)
	cfg.Render = strings.ToLower(strings.TrimSpace(cfg.Render))
	if docs == nil {
		return nil, errors.New("web: documents store is nil")
	}
	if cfg.MainTextPath == "" {
		return nil, errors.New("web: main text path is empty")
	}
	if cfg.Render == "" {
		cfg.Render = RenderText
	}
	if cfg.Render != RenderText && cfg.Render != RenderMarkdown {
		return nil, errors.New("web: invalid render mode (expected text|markdown)")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tmpl, err := template.ParseFS(assetsFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Server{cfg: cfg, docs: docs, tmpl: tmpl, logger: logger}, nil
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.accessLog)
	if compress, err := httpcompression.DefaultAdapter(); err == nil {
		r.Use(compress)
	} else {
		s.logger.Warn("compression disabled", "err", err)
	}

	r.Get("/health", s.handleHealth)
	r.Get("/favicon.ico", s.handleFavicon)
	r.Get("/static/{name}", s.handleStatic)
	r.Get("/meta/*", s.handleMeta)
	r.Get("/content/{id}", s.handleContent)
	r.Get("/s/{token}", s.handleShare)
	r.Get("/b/{token}", s.handleBurn)
	r.Post("/update/{id}", s.handleUpdate)
	r.Post("/create_share/{id}", s.handleCreateLink(model.ShareKindPersistent))
	r.Post("/create_burn/{id}", s.handleCreateLink(model.ShareKindBurn))
	r.Get("/", s.handlePage)
	r.Get("/{path}", s.handlePage)
	return r
}

// accessLog writes one line per request.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)
		s.logger.Info("handled",
			"remote", r.RemoteAddr,
			"method", r.Method,
			"path", r.URL.Path,
			"status", m.Code,
			"duration", m.Duration,
		)
	})
}

// ListenAndServe serves on cfg.Addr until ctx is cancelled. ready, if non-nil,
// receives the bound address once the listener is up.
func (s *Server) ListenAndServe(ctx context.Context, ready func(addr string)) error {
	if s.cfg.Addr == "" {
		return errors.New("web: addr is empty")
	}
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	if ready != nil {
		ready(ln.Addr().String())
	}
	hs := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- hs.Serve(ln) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := hs.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}
