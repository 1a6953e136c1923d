package web

import (
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"mdnotes/internal/storage/fs"
)

const searchLimit = 50

type noteResponse struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

type titleRequest struct {
	Title string `json:"title"`
}

type contentRequest struct {
	Content string `json:"content"`
}

type previewResponse struct {
	HTML string `json:"html"`
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := s.store.List()
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request) {
	id := noteParam(r)
	content, err := s.store.Read(id)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, noteResponse{ID: id, Content: content})
}

func (s *Server) handleSaveNote(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, r, err)
		return
	}
	id, err := s.saveNote(r, noteParam(r), req.Content)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true, ID: id})
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	var req titleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, r, err)
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "untitled"
	}
	id, content, err := s.store.Create(title)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	s.reindex(r, id, content)
	slog.Info("note created", "note", id, "user", userName(r))
	writeJSON(w, http.StatusOK, okResponse{OK: true, ID: id})
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	id, err := fs.NormalizeNoteID(noteParam(r))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	if err := s.store.Delete(id); err != nil {
		writeFailure(w, r, err)
		return
	}
	if err := s.idx.RemoveNote(r.Context(), id); err != nil {
		slog.Warn("unindex note", "note", id, "err", err)
	}
	closed := s.sessions.CloseNote(id)
	slog.Info("note deleted", "note", id, "sessions_closed", closed, "user", userName(r))
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (s *Server) handleRenameNote(w http.ResponseWriter, r *http.Request) {
	var req titleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, r, err)
		return
	}
	oldID, err := fs.NormalizeNoteID(noteParam(r))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	newID, err := s.store.Rename(oldID, req.Title)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	if err := s.idx.RenameNote(r.Context(), oldID, newID); err != nil {
		slog.Warn("reindex renamed note", "from", oldID, "to", newID, "err", err)
	}
	s.sessions.RenameNote(oldID, newID)
	slog.Info("note renamed", "from", oldID, "to", newID, "user", userName(r))
	writeJSON(w, http.StatusOK, okResponse{OK: true, ID: newID})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		s.handleListNotes(w, r)
		return
	}
	results, err := s.idx.Search(r.Context(), query, searchLimit)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	if results == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, r, err)
		return
	}
	html, err := s.md.Render(req.Content)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, previewResponse{HTML: html})
}

// noteParam returns the {id} path parameter, decoded when the client escaped
// it.
func noteParam(r *http.Request) string {
	id := chi.URLParam(r, "id")
	if decoded, err := url.PathUnescape(id); err == nil {
		return decoded
	}
	return id
}

func (s *Server) saveNote(r *http.Request, id, content string) (string, error) {
	saved, err := s.store.Save(id, content)
	if err != nil {
		return "", err
	}
	s.reindex(r, saved, content)
	slog.Info("note saved", "note", saved, "bytes", len(content), "user", userName(r))
	return saved, nil
}

// reindex updates the search index right away instead of waiting for the
// watcher. Index failures are only logged.
func (s *Server) reindex(r *http.Request, id, content string) {
	mtime, size := time.Now(), int64(len(content))
	if path, err := s.store.Path(id); err == nil {
		if info, err := os.Stat(path); err == nil {
			mtime, size = info.ModTime(), info.Size()
		}
	}
	if err := s.idx.IndexNote(r.Context(), id, []byte(content), mtime, size); err != nil {
		slog.Warn("index note", "note", id, "err", err)
	}
}
