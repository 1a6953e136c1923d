package session

import (
	"errors"
	"sync"
	"time"

	"mdnotes/internal/editor"
	"mdnotes/internal/history"
)

var ErrUnknownInput = errors.New("unknown input kind")

type Snapshot struct {
	ID     string
	NoteID string
	Text   string
	Sel    editor.Selection
	Dirty  bool
	history.Affordances
}

// Session is one editing context: the open note, its buffer and selection, and
// the undo history. Every method holds the session lock, so events apply one
// at a time in arrival order.
type Session struct {
	mu       sync.Mutex
	id       string
	noteID   string
	buf      editor.Buffer
	saved    string
	hist     *history.History
	lastUsed time.Time
}

func New(id string, depth int) *Session {
	return &Session{
		id:       id,
		hist:     history.New(depth),
		lastUsed: time.Now(),
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) NoteID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.noteID
}

func (s *Session) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Open loads content as the buffer of noteID. The write is a replay, so it is
// never recorded, and both history stacks start empty.
func (s *Session) Open(noteID, content string) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.noteID = noteID
	s.saved = content
	s.apply(history.Replaying, history.Change{Kind: history.Replace}, editor.Buffer{Text: content})
	s.hist.Reset()
	return s.snapshotLocked()
}

// Close drops the note, the buffer and all history.
func (s *Session) Close() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.noteID = ""
	s.saved = ""
	s.apply(history.Replaying, history.Change{Kind: history.Replace}, editor.Buffer{})
	s.hist.Reset()
	return s.snapshotLocked()
}

// Retarget points the session at a renamed note without touching the buffer.
func (s *Session) Retarget(noteID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.noteID = noteID
}

// MarkSaved records content as persisted for the dirty flag.
func (s *Session) MarkSaved(noteID, content string) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.noteID = noteID
	s.saved = content
	return s.snapshotLocked()
}

// Command runs a toolbar command over sel. Commands that change the text are
// checkpointed like any other non-typing edit. Unknown commands only move the
// selection and report false.
func (s *Session) Command(cmd string, sel editor.Selection) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	cur := editor.Buffer{Text: s.buf.Text, Sel: sel.Normalize(textLen(s.buf.Text))}
	next, ok := editor.Dispatch(cmd, cur)
	if !ok {
		s.buf = cur
		return s.snapshotLocked(), false
	}
	if next.Text == cur.Text {
		s.buf = next
		return s.snapshotLocked(), true
	}
	ch := history.ChangeAt(history.Format, "", cur.Text, cur.Sel.Start)
	s.apply(history.Interactive, ch, next)
	return s.snapshotLocked(), true
}

// Input applies a raw input event. Events that would not change the buffer,
// such as a backspace at the start, are ignored without touching history.
func (s *Session) Input(in Input) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	cur := editor.Buffer{Text: s.buf.Text, Sel: in.Sel.Normalize(textLen(s.buf.Text))}
	next, err := applyInput(cur, in)
	if err != nil {
		return s.snapshotLocked(), err
	}
	if next.Text == cur.Text {
		s.buf = next
		return s.snapshotLocked(), nil
	}
	ch := history.ChangeAt(in.Kind, in.Data, cur.Text, cur.Sel.Start)
	ch.Replacing = !cur.Sel.IsEmpty()
	s.apply(history.Interactive, ch, next)
	return s.snapshotLocked(), nil
}

func (s *Session) Undo() (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	prev, ok := s.hist.Undo(s.buf.Text)
	if ok {
		s.replay(prev)
	}
	return s.snapshotLocked(), ok
}

func (s *Session) Redo() (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	next, ok := s.hist.Redo(s.buf.Text)
	if ok {
		s.replay(next)
	}
	return s.snapshotLocked(), ok
}

func (s *Session) replay(text string) {
	sel := editor.Caret(changeEnd(s.buf.Text, text))
	s.apply(history.Replaying, history.Change{Kind: history.Replace}, editor.Buffer{Text: text, Sel: sel})
}

// apply is the only path that writes the buffer. mode decides whether the
// pre-mutation hook may record a checkpoint.
func (s *Session) apply(mode history.Mode, ch history.Change, next editor.Buffer) {
	s.hist.BeforeChange(mode, s.buf.Text, ch)
	next.Sel = next.Sel.Normalize(textLen(next.Text))
	s.buf = next
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		ID:          s.id,
		NoteID:      s.noteID,
		Text:        s.buf.Text,
		Sel:         s.buf.Sel,
		Dirty:       s.buf.Text != s.saved,
		Affordances: s.hist.State(),
	}
}

func (s *Session) touch() {
	s.lastUsed = time.Now()
}

// changeEnd returns the rune offset in next just past the region that differs
// from prev, which is where a replayed edit leaves the caret.
func changeEnd(prev, next string) int {
	a, b := []rune(prev), []rune(next)
	p := 0
	for p < len(a) && p < len(b) && a[p] == b[p] {
		p++
	}
	sa, sb := len(a), len(b)
	for sa > p && sb > p && a[sa-1] == b[sb-1] {
		sa--
		sb--
	}
	return sb
}
