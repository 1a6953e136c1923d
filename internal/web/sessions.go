package web

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mdnotes/internal/editor"
	"mdnotes/internal/history"
	"mdnotes/internal/session"
)

// selectionJSON carries offsets in UTF-16 code units, as the browser reports
// them for a textarea.
type selectionJSON struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

type sessionView struct {
	Session   string        `json:"session"`
	NoteID    string        `json:"noteId"`
	Content   string        `json:"content"`
	Selection selectionJSON `json:"selection"`
	history.Affordances
	Dirty bool   `json:"dirty"`
	HTML  string `json:"html"`
}

type openRequest struct {
	NoteID string `json:"noteId"`
}

type commandRequest struct {
	Command   string        `json:"command"`
	Selection selectionJSON `json:"selection"`
}

type inputRequest struct {
	Kind      history.Kind  `json:"kind"`
	Data      string        `json:"data"`
	Selection selectionJSON `json:"selection"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req openRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, r, err)
		return
	}
	sess := s.sessions.Create()
	snap := sess.Snapshot()
	if req.NoteID != "" {
		content, err := s.store.Read(req.NoteID)
		if err != nil {
			s.sessions.Remove(sess.ID())
			writeFailure(w, r, err)
			return
		}
		snap = sess.Open(req.NoteID, content)
	}
	slog.Debug("session created", "session", sess.ID(), "note", snap.NoteID)
	s.writeView(w, r, snap)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.writeView(w, r, sess.Snapshot())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.Remove(chi.URLParam(r, "sid")) {
		writeFailure(w, r, errSessionNotFound)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req openRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, r, err)
		return
	}
	content, err := s.store.Read(req.NoteID)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	s.writeView(w, r, sess.Open(req.NoteID, content))
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req commandRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, r, err)
		return
	}
	sel := toSelection(sess.Snapshot().Text, req.Selection)
	snap, applied := sess.Command(req.Command, sel)
	if !applied {
		slog.Debug("unknown editor command", "session", sess.ID(), "command", req.Command)
	}
	s.writeView(w, r, snap)
}

func (s *Server) handleInput(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req inputRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, r, err)
		return
	}
	sel := toSelection(sess.Snapshot().Text, req.Selection)
	snap, err := sess.Input(session.Input{Kind: req.Kind, Data: req.Data, Sel: sel})
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	s.writeView(w, r, snap)
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	snap, _ := sess.Undo()
	s.writeView(w, r, snap)
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	snap, _ := sess.Redo()
	s.writeView(w, r, snap)
}

func (s *Server) handleSaveSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	snap := sess.Snapshot()
	if snap.NoteID == "" {
		writeFailure(w, r, errNoNoteOpen)
		return
	}
	id, err := s.saveNote(r, snap.NoteID, snap.Text)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	s.writeView(w, r, sess.MarkSaved(id, snap.Text))
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, ok := s.sessions.Get(chi.URLParam(r, "sid"))
	if !ok {
		writeFailure(w, r, errSessionNotFound)
		return nil, false
	}
	return sess, true
}

func (s *Server) writeView(w http.ResponseWriter, r *http.Request, snap session.Snapshot) {
	html, err := s.md.Render(snap.Text)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	start, end := editor.UTF16Range(snap.Text, snap.Sel)
	writeJSON(w, http.StatusOK, sessionView{
		Session:     snap.ID,
		NoteID:      snap.NoteID,
		Content:     snap.Text,
		Selection:   selectionJSON{Start: start, End: end},
		Affordances: snap.Affordances,
		Dirty:       snap.Dirty,
		HTML:        html,
	})
}

func toSelection(text string, sel selectionJSON) editor.Selection {
	return editor.SelectionFromUTF16(text, sel.Start, sel.End)
}
