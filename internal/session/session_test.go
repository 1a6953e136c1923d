package session

import (
	"errors"
	"testing"
	"time"

	"mdnotes/internal/editor"
	"mdnotes/internal/history"
)

func typeInto(t *testing.T, s *Session, text string) Snapshot {
	t.Helper()
	snap := s.Snapshot()
	for _, r := range text {
		var err error
		snap, err = s.Input(Input{Kind: history.InsertText, Data: string(r), Sel: snap.Sel})
		if err != nil {
			t.Fatalf("input %q: %v", r, err)
		}
	}
	return snap
}

func TestTypingThenUndoRestoresWordSteps(t *testing.T) {
	s := New("s1", 0)
	s.Open("note.md", "")

	snap := typeInto(t, s, "hello world")
	if snap.Text != "hello world" || snap.Sel != editor.Caret(11) {
		t.Fatalf("unexpected state %+v", snap)
	}
	if !snap.Dirty || !snap.CanUndo {
		t.Fatalf("expected dirty buffer with undo, got %+v", snap)
	}

	snap, ok := s.Undo()
	if !ok || snap.Text != "hello" {
		t.Fatalf("expected undo to %q, got %q", "hello", snap.Text)
	}
	if snap.Sel != editor.Caret(5) {
		t.Fatalf("expected caret at 5, got %+v", snap.Sel)
	}
	snap, _ = s.Undo()
	if snap.Text != "" {
		t.Fatalf("expected empty buffer, got %q", snap.Text)
	}
	if snap.CanUndo || !snap.CanRedo {
		t.Fatalf("unexpected affordances %+v", snap.Affordances)
	}
	snap, _ = s.Redo()
	snap, _ = s.Redo()
	if snap.Text != "hello world" {
		t.Fatalf("expected redo to restore text, got %q", snap.Text)
	}
}

func TestUndoOnFreshSessionIsNoop(t *testing.T) {
	s := New("s1", 0)
	s.Open("a.md", "content")
	snap, ok := s.Undo()
	if ok {
		t.Fatalf("expected no-op")
	}
	if snap.Text != "content" || snap.CanUndo || snap.CanRedo {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestCommandIsUndoable(t *testing.T) {
	s := New("s1", 0)
	s.Open("a.md", "hello")
	snap, ok := s.Command("bold", editor.Selection{Start: 0, End: 5})
	if !ok || snap.Text != "**hello**" || snap.Sel != (editor.Selection{Start: 2, End: 7}) {
		t.Fatalf("unexpected command result %+v", snap)
	}
	snap, _ = s.Undo()
	if snap.Text != "hello" {
		t.Fatalf("expected undo to remove bold, got %q", snap.Text)
	}
}

func TestTypingOverSelectionIsItsOwnStep(t *testing.T) {
	s := New("s1", 0)
	s.Open("a.md", "ab")
	if _, err := s.Input(Input{Kind: history.InsertText, Data: " ", Sel: editor.Caret(1)}); err != nil {
		t.Fatalf("input: %v", err)
	}
	snap, err := s.Input(Input{Kind: history.InsertText, Data: "c", Sel: editor.Selection{Start: 2, End: 3}})
	if err != nil {
		t.Fatalf("input: %v", err)
	}
	if snap.Text != "a c" {
		t.Fatalf("unexpected text %q", snap.Text)
	}
	if snap, _ = s.Undo(); snap.Text != "a b" {
		t.Fatalf("expected undo to bring back the replaced selection, got %q", snap.Text)
	}
	if snap, _ = s.Undo(); snap.Text != "ab" {
		t.Fatalf("expected second undo to drop the space, got %q", snap.Text)
	}
}

func TestUnknownCommandLeavesHistoryAlone(t *testing.T) {
	s := New("s1", 0)
	s.Open("a.md", "hello")
	snap, ok := s.Command("blink", editor.Selection{Start: 1, End: 2})
	if ok {
		t.Fatalf("expected unknown command to be ignored")
	}
	if snap.Text != "hello" || snap.CanUndo {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if snap.Sel != (editor.Selection{Start: 1, End: 2}) {
		t.Fatalf("expected selection to be kept, got %+v", snap.Sel)
	}
}

func TestEditAfterUndoClearsRedo(t *testing.T) {
	s := New("s1", 0)
	s.Open("a.md", "")
	typeInto(t, s, "one two")
	snap, _ := s.Undo()
	if !snap.CanRedo {
		t.Fatalf("expected redo after undo")
	}
	snap, err := s.Input(Input{Kind: history.DeleteBackward, Sel: snap.Sel})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if snap.CanRedo {
		t.Fatalf("expected redo to be cleared by a new edit")
	}
	if _, ok := s.Redo(); ok {
		t.Fatalf("expected redo to be a no-op")
	}
}

func TestOpenResetsHistory(t *testing.T) {
	s := New("s1", 0)
	s.Open("a.md", "")
	typeInto(t, s, "abc def")
	snap := s.Open("b.md", "other")
	if snap.NoteID != "b.md" || snap.Text != "other" || snap.Dirty {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if snap.CanUndo || snap.CanRedo {
		t.Fatalf("expected empty history after open")
	}
}

func TestCloseClearsEverything(t *testing.T) {
	s := New("s1", 0)
	s.Open("a.md", "x")
	typeInto(t, s, " y")
	snap := s.Close()
	if snap.NoteID != "" || snap.Text != "" || snap.CanUndo || snap.CanRedo {
		t.Fatalf("unexpected snapshot after close %+v", snap)
	}
}

func TestInputKinds(t *testing.T) {
	cases := []struct {
		name string
		text string
		in   Input
		want string
		sel  editor.Selection
	}{
		{"insert replaces selection", "abc", Input{Kind: history.InsertText, Data: "X", Sel: editor.Selection{Start: 1, End: 2}}, "aXc", editor.Caret(2)},
		{"line break", "ab", Input{Kind: history.InsertLineBreak, Sel: editor.Caret(1)}, "a\nb", editor.Caret(2)},
		{"paste", "ab", Input{Kind: history.InsertFromPaste, Data: "123", Sel: editor.Caret(2)}, "ab123", editor.Caret(5)},
		{"backspace", "abc", Input{Kind: history.DeleteBackward, Sel: editor.Caret(2)}, "ac", editor.Caret(1)},
		{"backspace at start", "abc", Input{Kind: history.DeleteBackward, Sel: editor.Caret(0)}, "abc", editor.Caret(0)},
		{"delete forward", "abc", Input{Kind: history.DeleteForward, Sel: editor.Caret(0)}, "bc", editor.Caret(0)},
		{"delete selection", "abcd", Input{Kind: history.DeleteForward, Sel: editor.Selection{Start: 1, End: 3}}, "ad", editor.Caret(1)},
		{"delete word backward", "foo bar  ", Input{Kind: history.DeleteWordBackward, Sel: editor.Caret(9)}, "foo ", editor.Caret(4)},
		{"delete word forward", "foo bar", Input{Kind: history.DeleteWordForward, Sel: editor.Caret(3)}, "foo", editor.Caret(3)},
		{"delete to line start", "ab\ncd ef", Input{Kind: history.DeleteLineBackward, Sel: editor.Caret(6)}, "ab\nef", editor.Caret(3)},
		{"delete line backward joins lines", "ab\ncd", Input{Kind: history.DeleteLineBackward, Sel: editor.Caret(3)}, "abcd", editor.Caret(2)},
		{"delete line backward at start", "ab", Input{Kind: history.DeleteLineBackward, Sel: editor.Caret(0)}, "ab", editor.Caret(0)},
		{"delete to line end", "ab cd\nef", Input{Kind: history.DeleteLineForward, Sel: editor.Caret(2)}, "ab\nef", editor.Caret(2)},
		{"delete line forward joins lines", "ab\ncd", Input{Kind: history.DeleteLineForward, Sel: editor.Caret(2)}, "abcd", editor.Caret(2)},
		{"delete line forward at end", "ab", Input{Kind: history.DeleteLineForward, Sel: editor.Caret(2)}, "ab", editor.Caret(2)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := New("s", 0)
			s.Open("n.md", c.text)
			snap, err := s.Input(c.in)
			if err != nil {
				t.Fatalf("input: %v", err)
			}
			if snap.Text != c.want || snap.Sel != c.sel {
				t.Fatalf("expected %q %+v, got %q %+v", c.want, c.sel, snap.Text, snap.Sel)
			}
		})
	}
}

func TestInputRejectsUnknownKind(t *testing.T) {
	s := New("s", 0)
	_, err := s.Input(Input{Kind: history.Format})
	if !errors.Is(err, ErrUnknownInput) {
		t.Fatalf("expected ErrUnknownInput, got %v", err)
	}
}

func TestManagerLifecycle(t *testing.T) {
	m := NewManager(0, time.Minute)
	a := m.Create()
	b := m.Create()
	a.Open("x.md", "x")
	b.Open("y.md", "y")

	if got, ok := m.Get(a.ID()); !ok || got != a {
		t.Fatalf("expected to find session a")
	}
	if n := m.RenameNote("x.md", "z.md"); n != 1 || a.NoteID() != "z.md" {
		t.Fatalf("expected rename to retarget a, got %d %q", n, a.NoteID())
	}
	if n := m.CloseNote("y.md"); n != 1 || b.Snapshot().Text != "" {
		t.Fatalf("expected close to clear b")
	}
	if removed := m.Sweep(time.Now().Add(2 * time.Minute)); removed != 2 {
		t.Fatalf("expected both sessions to expire, got %d", removed)
	}
	if m.Len() != 0 {
		t.Fatalf("expected empty registry")
	}
	if m.Remove(a.ID()) {
		t.Fatalf("expected remove of expired session to report false")
	}
}
