// Package web serves the note API, the editing session API and the browser UI.
package web

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"mdnotes/internal/config"
	"mdnotes/internal/index"
	"mdnotes/internal/render"
	"mdnotes/internal/session"
	"mdnotes/internal/storage/fs"
)

type Server struct {
	cfg      config.Config
	store    *fs.Store
	idx      *index.Index
	sessions *session.Manager
	md       *render.Renderer
	views    *Templates
	auth     *Auth
	router   chi.Router
}

func NewServer(cfg config.Config, store *fs.Store, idx *index.Index, sessions *session.Manager, md *render.Renderer) (*Server, error) {
	if store == nil || idx == nil || sessions == nil || md == nil {
		return nil, errors.New("web: store, index, sessions and renderer are required")
	}
	auth, err := newAuth(cfg)
	if err != nil {
		return nil, err
	}
	views, err := ParseTemplates()
	if err != nil {
		return nil, err
	}
	s := &Server{
		cfg:      cfg,
		store:    store,
		idx:      idx,
		sessions: sessions,
		md:       md,
		views:    views,
		auth:     auth,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	if s.auth != nil {
		r.Use(s.auth.Middleware)
	}

	r.Get("/", s.handleIndex)
	r.Get("/static/chroma.css", s.handleChromaCSS)
	r.Handle("/static/*", staticHandler())

	r.Route("/api", func(r chi.Router) {
		r.Use(s.limitBody)

		r.Get("/notes", s.handleListNotes)
		r.Post("/notes", s.handleCreateNote)
		r.Get("/notes/{id}", s.handleGetNote)
		r.Post("/notes/{id}", s.handleSaveNote)
		r.Delete("/notes/{id}", s.handleDeleteNote)
		r.Post("/notes/{id}/rename", s.handleRenameNote)
		r.Get("/search", s.handleSearch)
		r.Post("/preview", s.handlePreview)
		r.Post("/import", s.handleImport)

		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{sid}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/open", s.handleOpenSession)
			r.Post("/command", s.handleCommand)
			r.Post("/input", s.handleInput)
			r.Post("/undo", s.handleUndo)
			r.Post("/redo", s.handleRedo)
			r.Post("/save", s.handleSaveSession)
		})
	})
}

func (s *Server) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.MaxBodyBytes > 0 && r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
		}
		next.ServeHTTP(w, r)
	})
}
