// Package history keeps the undo and redo stacks of one editing session.
//
// Snapshots are whole buffer values. Typing is grouped into word-sized steps:
// the pre-mutation hook BeforeChange only checkpoints at word boundaries,
// while pastes, deletions and formatting commands always checkpoint.
package history

import (
	"unicode"
	"unicode/utf8"
)

const DefaultDepth = 200

// Mode says whether a buffer mutation comes from the user or from replaying
// history. Replayed mutations are never recorded.
type Mode int

const (
	Interactive Mode = iota
	Replaying
)

func (m Mode) String() string {
	if m == Replaying {
		return "replaying"
	}
	return "interactive"
}

// Affordances reports which of undo and redo can do anything.
type Affordances struct {
	CanUndo bool `json:"undoEnabled"`
	CanRedo bool `json:"redoEnabled"`
}

type History struct {
	undo  []string
	redo  []string
	depth int

	// caret offset right after the last separator keystroke that checkpointed;
	// -1 when the previous change was anything else
	boundaryCaret int
}

func New(depth int) *History {
	if depth <= 0 {
		depth = DefaultDepth
	}
	return &History{depth: depth, boundaryCaret: -1}
}

// BeforeChange runs before a mutation applies, with current being the buffer
// value prior to the change. It reports whether a checkpoint was recorded.
func (h *History) BeforeChange(mode Mode, current string, ch Change) bool {
	if mode == Replaying {
		return false
	}

	boundary := h.boundaryCaret
	h.boundaryCaret = -1

	if ch.Kind == InsertText {
		r, size := utf8.DecodeRuneInString(ch.Data)
		single := ch.Data != "" && size == len(ch.Data)
		if single && IsWordRune(r) && !ch.Replacing {
			if ch.Caret == boundary {
				// the separator typed just before already committed the
				// previous word; this letter joins that step
				return false
			}
			if !ch.AtWordStart() {
				return false
			}
			h.Checkpoint(current)
			return true
		}
		h.Checkpoint(current)
		if single {
			h.boundaryCaret = ch.Caret + 1
		}
		return true
	}

	h.Checkpoint(current)
	return true
}

// Checkpoint pushes current onto the undo stack unless it equals the top, and
// invalidates redo history.
func (h *History) Checkpoint(current string) {
	if n := len(h.undo); n == 0 || h.undo[n-1] != current {
		h.undo = h.pushBounded(h.undo, current)
	}
	h.redo = nil
}

// Undo returns the previous buffer value and records current for redo.
func (h *History) Undo(current string) (string, bool) {
	n := len(h.undo)
	if n == 0 {
		return current, false
	}
	h.boundaryCaret = -1
	prev := h.undo[n-1]
	h.undo = h.undo[:n-1]
	h.redo = h.pushBounded(h.redo, current)
	return prev, true
}

// Redo is the inverse of Undo.
func (h *History) Redo(current string) (string, bool) {
	n := len(h.redo)
	if n == 0 {
		return current, false
	}
	h.boundaryCaret = -1
	next := h.redo[n-1]
	h.redo = h.redo[:n-1]
	h.undo = h.pushBounded(h.undo, current)
	return next, true
}

func (h *History) Reset() {
	h.undo = nil
	h.redo = nil
	h.boundaryCaret = -1
}

func (h *History) State() Affordances {
	return Affordances{CanUndo: len(h.undo) > 0, CanRedo: len(h.redo) > 0}
}

func (h *History) UndoLen() int { return len(h.undo) }

func (h *History) RedoLen() int { return len(h.redo) }

func (h *History) Depth() int { return h.depth }

// Entries returns a copy of the undo stack, oldest first.
func (h *History) Entries() []string {
	return append([]string(nil), h.undo...)
}

func (h *History) pushBounded(stack []string, v string) []string {
	stack = append(stack, v)
	if len(stack) > h.depth {
		stack = append(stack[:0:0], stack[len(stack)-h.depth:]...)
	}
	return stack
}

// IsWordRune reports whether r continues a word: a letter, digit or underscore.
func IsWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
