package fs

import (
	"errors"
	"fmt"
	"os"
	"sort"
)

var (
	ErrNotFound = errors.New("note not found")
	ErrExists   = errors.New("note exists")
)

type Note struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Store keeps notes as flat *.md files in one directory. The note id is the
// file name.
type Store struct {
	root   string
	locker *Locker
}

func NewStore(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create notes dir: %w", err)
	}
	return &Store{root: root, locker: NewLocker()}, nil
}

func (s *Store) Root() string {
	return s.root
}

func (s *Store) Path(id string) (string, error) {
	return NoteFilePath(s.root, id)
}

func (s *Store) List() ([]Note, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read notes: %w", err)
	}
	notes := make([]Note, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !IsNoteFile(e.Name()) {
			continue
		}
		notes = append(notes, Note{ID: e.Name(), Title: TitleFromID(e.Name())})
	}
	sort.Slice(notes, func(i, j int) bool { return notes[i].ID < notes[j].ID })
	return notes, nil
}

func (s *Store) Read(id string) (string, error) {
	full, err := NoteFilePath(s.root, id)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", err
	}
	return string(data), nil
}

// Save creates or overwrites a note and returns the id it was stored under.
func (s *Store) Save(id, content string) (string, error) {
	base, err := NormalizeNoteID(id)
	if err != nil {
		return "", err
	}
	base = EnsureMDExt(base)
	full, err := NoteFilePath(s.root, base)
	if err != nil {
		return "", err
	}

	unlock := s.locker.Lock(base)
	defer unlock()
	if err := WriteFileAtomic(full, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("save %s: %w", base, err)
	}
	return base, nil
}

// Import stores content under the id derived from an uploaded file name,
// replacing any note of that name.
func (s *Store) Import(fileName, content string) (string, error) {
	id, err := ImportID(fileName)
	if err != nil {
		return "", err
	}
	return s.Save(id, content)
}

// Create starts a new note named after title with a level-one heading.
func (s *Store) Create(title string) (string, string, error) {
	id, err := IDFromTitle(title)
	if err != nil {
		return "", "", err
	}
	full, err := NoteFilePath(s.root, id)
	if err != nil {
		return "", "", err
	}

	unlock := s.locker.Lock(id)
	defer unlock()
	if _, err := os.Stat(full); err == nil {
		return "", "", ErrExists
	} else if !os.IsNotExist(err) {
		return "", "", err
	}
	content := "# " + title + "\n"
	if err := WriteFileAtomic(full, []byte(content), 0o644); err != nil {
		return "", "", fmt.Errorf("create %s: %w", id, err)
	}
	return id, content, nil
}

func (s *Store) Delete(id string) error {
	full, err := NoteFilePath(s.root, id)
	if err != nil {
		return err
	}
	base, _ := NormalizeNoteID(id)
	unlock := s.locker.Lock(base)
	defer unlock()
	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Rename moves a note to the id derived from title. The target must not exist.
func (s *Store) Rename(id, title string) (string, error) {
	oldID, err := NormalizeNoteID(id)
	if err != nil {
		return "", err
	}
	newID, err := IDFromTitle(title)
	if err != nil {
		return "", err
	}
	oldPath, err := NoteFilePath(s.root, oldID)
	if err != nil {
		return "", err
	}
	newPath, err := NoteFilePath(s.root, newID)
	if err != nil {
		return "", err
	}
	if oldID == newID {
		if _, err := os.Stat(oldPath); err != nil {
			return "", ErrNotFound
		}
		return newID, nil
	}

	unlock := s.locker.LockPair(oldID, newID)
	defer unlock()
	if _, err := os.Stat(oldPath); err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", err
	}
	if _, err := os.Stat(newPath); err == nil {
		return "", ErrExists
	}
	if err := os.Rename(oldPath, newPath); err != nil {
		return "", fmt.Errorf("rename %s: %w", oldID, err)
	}
	return newID, nil
}
