package web

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"mdnotes/internal/session"
	"mdnotes/internal/storage/fs"
)

var (
	errInvalidJSON     = errors.New("invalid JSON")
	errSessionNotFound = errors.New("session not found")
	errNoNoteOpen      = errors.New("no note open")
)

type errorResponse struct {
	Error string `json:"error"`
}

type okResponse struct {
	OK bool   `json:"ok"`
	ID string `json:"id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encode response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeFailure maps domain errors onto HTTP statuses.
func writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
	case errors.Is(err, errInvalidJSON):
		writeError(w, http.StatusBadRequest, errInvalidJSON.Error())
	case errors.Is(err, fs.ErrNotFound):
		writeError(w, http.StatusNotFound, "note not found")
	case errors.Is(err, errSessionNotFound):
		writeError(w, http.StatusNotFound, errSessionNotFound.Error())
	case errors.Is(err, fs.ErrExists):
		writeError(w, http.StatusBadRequest, "note exists")
	case errors.Is(err, fs.ErrEmptyTitle):
		writeError(w, http.StatusBadRequest, "missing title")
	case errors.Is(err, fs.ErrUnsafePath):
		writeError(w, http.StatusBadRequest, "invalid id")
	case errors.Is(err, session.ErrUnknownInput), errors.Is(err, errNoNoteOpen):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON reads an optional JSON body into v. An empty body leaves v as is.
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	return errInvalidJSON
}
