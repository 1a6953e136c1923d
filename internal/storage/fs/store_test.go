package fs

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "notes"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

func TestStoreCreateReadList(t *testing.T) {
	s := newTestStore(t)
	id, content, err := s.Create("Shopping List")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id != "Shopping-List.md" || content != "# Shopping List\n" {
		t.Fatalf("unexpected create result %q %q", id, content)
	}
	if _, _, err := s.Create("Shopping List"); !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}

	got, err := s.Read(id)
	if err != nil || got != content {
		t.Fatalf("read: %q %v", got, err)
	}

	if err := os.WriteFile(filepath.Join(s.Root(), "ignored.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := s.Save("alpha", "a"); err != nil {
		t.Fatalf("save: %v", err)
	}
	notes, err := s.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(notes) != 2 || notes[0].ID != "Shopping-List.md" || notes[1] != (Note{ID: "alpha.md", Title: "alpha"}) {
		t.Fatalf("unexpected list %+v", notes)
	}
}

func TestStoreSaveStripsDirectories(t *testing.T) {
	s := newTestStore(t)
	id, err := s.Save("../../escape.md", "x")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if id != "escape.md" {
		t.Fatalf("expected escape.md, got %q", id)
	}
	if _, err := os.Stat(filepath.Join(s.Root(), "escape.md")); err != nil {
		t.Fatalf("expected file inside root: %v", err)
	}
}

func TestStoreImport(t *testing.T) {
	s := newTestStore(t)
	id, err := s.Import("Meeting Notes.markdown", "# agenda\n")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if id != "Meeting-Notes.md" {
		t.Fatalf("expected Meeting-Notes.md, got %q", id)
	}
	if got, err := s.Read(id); err != nil || got != "# agenda\n" {
		t.Fatalf("read imported note: %q %v", got, err)
	}
	if _, err := s.Import("Meeting Notes.md", "second"); err != nil {
		t.Fatalf("re-import: %v", err)
	}
	if got, _ := s.Read(id); got != "second" {
		t.Fatalf("expected import to replace the note, got %q", got)
	}
	if _, err := s.Import("image.png", "x"); !errors.Is(err, ErrNotMarkdown) {
		t.Fatalf("expected ErrNotMarkdown, got %v", err)
	}
}

func TestStoreReadMissing(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Read("nope.md"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Delete("nope.md"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on delete, got %v", err)
	}
}

func TestStoreRename(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Save("old.md", "body"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := s.Save("taken.md", "other"); err != nil {
		t.Fatalf("save: %v", err)
	}

	if _, err := s.Rename("old.md", ""); !errors.Is(err, ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle, got %v", err)
	}
	if _, err := s.Rename("old.md", "taken"); !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	newID, err := s.Rename("old.md", "New Name")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if newID != "New-Name.md" {
		t.Fatalf("unexpected id %q", newID)
	}
	if got, err := s.Read(newID); err != nil || got != "body" {
		t.Fatalf("read renamed: %q %v", got, err)
	}
	if _, err := s.Read("old.md"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected old id to be gone, got %v", err)
	}
	if _, err := s.Rename("missing.md", "whatever"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreDelete(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Save("gone.md", "x"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Delete("gone.md"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	notes, _ := s.List()
	if len(notes) != 0 {
		t.Fatalf("expected no notes, got %+v", notes)
	}
}

func TestLockerReleasesEntries(t *testing.T) {
	l := NewLocker()
	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.LockPair("a.md", "b.md")
			counter++
			unlock()
		}()
	}
	wg.Wait()
	if counter != 20 {
		t.Fatalf("expected 20 increments, got %d", counter)
	}
	if l.size() != 0 {
		t.Fatalf("expected lock table to drain, got %d", l.size())
	}
}
