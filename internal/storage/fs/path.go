package fs

import (
	"errors"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	ErrUnsafePath  = errors.New("unsafe path")
	ErrEmptyTitle  = errors.New("missing title")
	ErrNotMarkdown = errors.New("only Markdown files (.md, .markdown) are allowed")
)

const noteExt = ".md"

var importExts = []string{".md", ".markdown"}

var (
	titleUnsafe = regexp.MustCompile(`[^a-zA-Z0-9\-_ ]`)
	titleSpaces = regexp.MustCompile(`\s+`)
)

// NormalizeNoteID reduces id to a bare file name inside the notes directory.
func NormalizeNoteID(id string) (string, error) {
	if strings.ContainsRune(id, 0) {
		return "", ErrUnsafePath
	}
	id = strings.ReplaceAll(id, "\\", "/")
	base := filepath.Base(filepath.FromSlash(id))
	if base == "." || base == ".." || base == string(filepath.Separator) || strings.HasPrefix(base, ".") {
		return "", ErrUnsafePath
	}
	return base, nil
}

// NoteFilePath resolves id to a file inside root.
func NoteFilePath(root, id string) (string, error) {
	base, err := NormalizeNoteID(id)
	if err != nil {
		return "", err
	}
	full := filepath.Join(root, base)
	rel, err := filepath.Rel(root, full)
	if err != nil || strings.HasPrefix(rel, "..") || strings.ContainsRune(rel, filepath.Separator) {
		return "", ErrUnsafePath
	}
	return full, nil
}

// IDFromTitle turns a user title into a note file name: anything outside
// letters, digits, '-', '_' and spaces is dropped and whitespace runs become
// '-'.
func IDFromTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrEmptyTitle
	}
	safe := titleUnsafe.ReplaceAllString(title, "")
	safe = titleSpaces.ReplaceAllString(strings.TrimSpace(safe), "-")
	if safe == "" {
		safe = "untitled"
	}
	return safe + noteExt, nil
}

// ImportID maps an uploaded file name to a note id. The extension must be
// .md or .markdown in any case; the rest goes through IDFromTitle.
func ImportID(fileName string) (string, error) {
	name := strings.ReplaceAll(fileName, "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	lower := strings.ToLower(name)
	for _, ext := range importExts {
		if strings.HasSuffix(lower, ext) {
			return IDFromTitle(name[:len(name)-len(ext)])
		}
	}
	return "", ErrNotMarkdown
}

// TitleFromID is the display title of a note file.
func TitleFromID(id string) string {
	return strings.TrimSuffix(id, noteExt)
}

func IsNoteFile(name string) bool {
	return strings.HasSuffix(name, noteExt) && !strings.HasPrefix(name, ".")
}

func EnsureMDExt(p string) string {
	if strings.HasSuffix(strings.ToLower(p), noteExt) {
		return p
	}
	return p + noteExt
}
