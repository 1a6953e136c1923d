package history

import (
	"strings"
	"unicode"
)

// Kind mirrors the browser's beforeinput input types.
type Kind string

const (
	InsertText            Kind = "insertText"
	InsertLineBreak       Kind = "insertLineBreak"
	InsertFromPaste       Kind = "insertFromPaste"
	InsertFromDrop        Kind = "insertFromDrop"
	InsertFromComposition Kind = "insertFromComposition"
	DeleteBackward        Kind = "deleteContentBackward"
	DeleteForward         Kind = "deleteContentForward"
	DeleteWordBackward    Kind = "deleteWordBackward"
	DeleteWordForward     Kind = "deleteWordForward"
	DeleteLineBackward    Kind = "deleteHardLineBackward"
	DeleteLineForward     Kind = "deleteHardLineForward"
	Replace               Kind = "insertReplacementText"
	Format                Kind = "format"
)

var kinds = map[Kind]bool{
	InsertText:            true,
	InsertLineBreak:       true,
	InsertFromPaste:       true,
	InsertFromDrop:        true,
	InsertFromComposition: true,
	DeleteBackward:        true,
	DeleteForward:         true,
	DeleteWordBackward:    true,
	DeleteWordForward:     true,
	DeleteLineBackward:    true,
	DeleteLineForward:     true,
	Replace:               true,
	Format:                true,
}

func (k Kind) Valid() bool {
	return kinds[k]
}

// Change describes a mutation that is about to apply.
type Change struct {
	Kind Kind
	// Data is the inserted text, if any.
	Data string
	// Caret is the rune offset of the selection start before the change.
	Caret int
	// Preceding is the rune just before Caret; HasPreceding is false at the
	// start of the buffer.
	Preceding    rune
	HasPreceding bool
	// Replacing is set when the change overwrites a non-empty selection.
	Replacing bool
}

// boundaryPunct are the characters after which a word character starts a new
// undo step.
const boundaryPunct = ".,;:!?(){}[]\"'`~@#%^&*+=<>\\/|-"

// AtWordStart reports whether a word character typed at Caret begins a word.
func (c Change) AtWordStart() bool {
	if c.Caret == 0 || !c.HasPreceding {
		return true
	}
	return unicode.IsSpace(c.Preceding) || strings.ContainsRune(boundaryPunct, c.Preceding)
}

// ChangeAt builds a Change for an edit at caret (a rune offset into text).
func ChangeAt(kind Kind, data, text string, caret int) Change {
	ch := Change{Kind: kind, Data: data, Caret: caret}
	if caret <= 0 {
		return ch
	}
	i := 0
	for _, r := range text {
		if i == caret-1 {
			ch.Preceding = r
			ch.HasPreceding = true
			break
		}
		i++
	}
	return ch
}
