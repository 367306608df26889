package web

import (
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"net/http"
	"os"
	"path"
	"strings"

	"getmytext-cli/internal/model"
	"getmytext-cli/internal/store"

	"github.com/go-chi/chi/v5"
)

const (
	msgInvalidID      = "invalid identifier"
	msgMissingContent = "missing content"
	msgUpdated        = "content updated"
	msgTooLarge       = "content too large"
	msgNotFound       = "not found"
	msgInternal       = "internal error"
)

type pageVM struct {
	Path     string
	ID       string
	Content  string
	ReadOnly bool
}

type shareVM struct {
	Title string
	Burn  bool
	Body  template.HTML
}

// writeJSON leaves <, > and & unescaped; the body is never inlined in HTML
// and escaping would inflate markup-heavy documents sixfold.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, model.Response{Status: model.StatusError, Message: msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleFavicon(w http.ResponseWriter, r *http.Request) {
	if s.cfg.FaviconPath != "" {
		if _, err := os.Stat(s.cfg.FaviconPath); err == nil {
			http.ServeFile(w, r, s.cfg.FaviconPath)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	name := path.Base(chi.URLParam(r, "name"))
	b, err := assetsFS.ReadFile("static/" + name)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	switch path.Ext(name) {
	case ".js":
		w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	case ".css":
		w.Header().Set("Content-Type", "text/css; charset=utf-8")
	}
	_, _ = w.Write(b)
}

// handleMeta serves files from MetaDir. Directory listings are not exposed.
func (s *Server) handleMeta(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")
	if s.cfg.MetaDir == "" || name == "" || strings.HasSuffix(name, "/") {
		http.NotFound(w, r)
		return
	}
	f, err := http.Dir(s.cfg.MetaDir).Open("/" + name)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil || fi.IsDir() {
		http.NotFound(w, r)
		return
	}
	http.ServeContent(w, r, fi.Name(), fi.ModTime(), f)
}

// handlePage serves the read-only main text on the reserved paths and an
// editable page for any valid document identifier.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	p := chi.URLParam(r, "path")
	if model.IsMainTextPath(p) {
		text, err := store.ReadMainText(s.cfg.MainTextPath)
		if err != nil {
			s.logger.Error("read main text", "err", err)
			http.Error(w, msgInternal, http.StatusInternalServerError)
			return
		}
		s.render(w, "page.html", pageVM{Path: "/" + p, Content: text, ReadOnly: true})
		return
	}
	id, err := model.ValidateDocID(p)
	if err != nil || id.String() != p {
		http.NotFound(w, r)
		return
	}
	doc, err := s.docs.Get(r.Context(), id)
	if err != nil {
		s.logger.Error("load document", "doc", p, "err", err)
		http.Error(w, msgInternal, http.StatusInternalServerError)
		return
	}
	s.render(w, "page.html", pageVM{Path: "/" + p, ID: p, Content: doc.Content})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := s.docID(w, r)
	if !ok {
		return
	}
	var req model.UpdateRequest
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, model.MaxEncodedContentBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, msgTooLarge)
			return
		}
		writeError(w, http.StatusBadRequest, msgMissingContent)
		return
	}
	if err := json.Unmarshal(body, &req); err != nil || req.Content == nil {
		writeError(w, http.StatusBadRequest, msgMissingContent)
		return
	}
	if len(*req.Content) > model.MaxContentBytes {
		writeError(w, http.StatusRequestEntityTooLarge, msgTooLarge)
		return
	}
	if err := s.docs.Put(r.Context(), id, *req.Content); err != nil {
		s.logger.Error("save document", "doc", id.String(), "err", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	writeJSON(w, http.StatusOK, model.Response{Status: model.StatusSuccess, Message: msgUpdated})
}

func (s *Server) handleCreateLink(kind model.ShareKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := s.docID(w, r)
		if !ok {
			return
		}
		sh, err := s.docs.CreateShare(r.Context(), id, kind)
		if err != nil {
			s.logger.Error("create link", "doc", id.String(), "kind", string(kind), "err", err)
			writeError(w, http.StatusInternalServerError, msgInternal)
			return
		}
		resp := model.Response{Status: model.StatusSuccess}
		rel := kind.PathPrefix() + sh.Token
		if kind == model.ShareKindBurn {
			resp.BurnURL = rel
		} else {
			resp.ShareURL = rel
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	id, ok := s.docID(w, r)
	if !ok {
		return
	}
	doc, err := s.docs.Get(r.Context(), id)
	if err != nil {
		s.logger.Error("load document", "doc", id.String(), "err", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	writeJSON(w, http.StatusOK, model.Response{Status: model.StatusSuccess, Content: &doc.Content})
}

func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	sh, err := s.docs.GetShare(r.Context(), chi.URLParam(r, "token"))
	s.renderShare(w, r, sh, err)
}

func (s *Server) handleBurn(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	sh, err := s.docs.Burn(r.Context(), chi.URLParam(r, "token"))
	s.renderShare(w, r, sh, err)
}

func (s *Server) renderShare(w http.ResponseWriter, r *http.Request, sh model.Share, err error) {
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, msgNotFound, http.StatusNotFound)
		return
	}
	if err != nil {
		s.logger.Error("load share", "err", err)
		http.Error(w, msgInternal, http.StatusInternalServerError)
		return
	}
	s.render(w, "share.html", shareVM{
		Title: sh.DocID.String(),
		Burn:  sh.Kind == model.ShareKindBurn,
		Body:  renderBody(sh.Content, s.cfg.Render),
	})
}

// docID validates the {id} URL parameter, answering 400 when it is not a
// document identifier.
func (s *Server) docID(w http.ResponseWriter, r *http.Request) (model.DocID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := model.ValidateDocID(raw)
	if err != nil || id.String() != raw {
		writeError(w, http.StatusBadRequest, msgInvalidID)
		return "", false
	}
	return id, true
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("render template", "template", name, "err", err)
	}
}
