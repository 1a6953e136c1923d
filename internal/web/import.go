package web

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"unicode/utf8"

	"mdnotes/internal/storage/fs"
)

const (
	importField  = "file"
	importMemory = 8 << 20
)

var (
	errNoFiles   = errors.New("no files uploaded")
	errEmptyFile = errors.New("file is empty")
	errNotText   = errors.New("file is not UTF-8 text")
)

type importResult struct {
	Name  string `json:"name"`
	ID    string `json:"id,omitempty"`
	Error string `json:"error,omitempty"`
}

// handleImport stores uploaded Markdown files as notes. Each file gets its own
// result so one bad file does not fail the batch.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(importMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeFailure(w, r, err)
			return
		}
		writeError(w, http.StatusBadRequest, "invalid upload")
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File[importField]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, errNoFiles.Error())
		return
	}
	results := make([]importResult, 0, len(files))
	for _, fh := range files {
		res := importResult{Name: fh.Filename}
		if id, err := s.importFile(r, fh); err != nil {
			res.Error = importError(r, fh.Filename, err)
		} else {
			res.ID = id
		}
		results = append(results, res)
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) importFile(r *http.Request, fh *multipart.FileHeader) (string, error) {
	if _, err := fs.ImportID(fh.Filename); err != nil {
		return "", err
	}
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return "", errEmptyFile
	}
	if !utf8.Valid(data) {
		return "", errNotText
	}

	content := string(data)
	id, err := s.store.Import(fh.Filename, content)
	if err != nil {
		return "", err
	}
	s.reindex(r, id, content)
	slog.Info("note imported", "note", id, "file", fh.Filename, "bytes", len(data), "user", userName(r))
	return id, nil
}

func importError(r *http.Request, name string, err error) string {
	switch {
	case errors.Is(err, fs.ErrNotMarkdown), errors.Is(err, errEmptyFile), errors.Is(err, errNotText):
		return err.Error()
	case errors.Is(err, fs.ErrEmptyTitle):
		return "missing title"
	case errors.Is(err, fs.ErrUnsafePath):
		return "invalid id"
	}
	slog.Error("import failed", "file", name, "path", r.URL.Path, "err", err)
	return "internal error"
}
