package session

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"mdnotes/internal/editor"
	"mdnotes/internal/history"
)

// Input is a raw editing event from the text box, with the selection it
// applies to.
type Input struct {
	Kind history.Kind
	Data string
	Sel  editor.Selection
}

func applyInput(b editor.Buffer, in Input) (editor.Buffer, error) {
	text := []rune(b.Text)
	sel := b.Sel

	switch in.Kind {
	case history.InsertText, history.InsertFromPaste, history.InsertFromDrop,
		history.InsertFromComposition, history.Replace:
		return splice(text, sel.Start, sel.End, in.Data), nil
	case history.InsertLineBreak:
		return splice(text, sel.Start, sel.End, "\n"), nil
	case history.DeleteBackward:
		if !sel.IsEmpty() {
			return splice(text, sel.Start, sel.End, ""), nil
		}
		if sel.Start == 0 {
			return b, nil
		}
		return splice(text, sel.Start-1, sel.Start, ""), nil
	case history.DeleteForward:
		if !sel.IsEmpty() {
			return splice(text, sel.Start, sel.End, ""), nil
		}
		if sel.End == len(text) {
			return b, nil
		}
		return splice(text, sel.End, sel.End+1, ""), nil
	case history.DeleteWordBackward:
		if !sel.IsEmpty() {
			return splice(text, sel.Start, sel.End, ""), nil
		}
		return splice(text, wordStartBefore(text, sel.Start), sel.Start, ""), nil
	case history.DeleteWordForward:
		if !sel.IsEmpty() {
			return splice(text, sel.Start, sel.End, ""), nil
		}
		return splice(text, sel.End, wordEndAfter(text, sel.End), ""), nil
	case history.DeleteLineBackward:
		if !sel.IsEmpty() {
			return splice(text, sel.Start, sel.End, ""), nil
		}
		start := lineStartBefore(text, sel.Start)
		if start == sel.Start {
			if start == 0 {
				return b, nil
			}
			start--
		}
		return splice(text, start, sel.Start, ""), nil
	case history.DeleteLineForward:
		if !sel.IsEmpty() {
			return splice(text, sel.Start, sel.End, ""), nil
		}
		end := lineEndAfter(text, sel.End)
		if end == sel.End {
			if end == len(text) {
				return b, nil
			}
			end++
		}
		return splice(text, sel.End, end, ""), nil
	}
	return b, fmt.Errorf("%w: %q", ErrUnknownInput, in.Kind)
}

// splice replaces text[start:end] with repl and puts the caret after it.
func splice(text []rune, start, end int, repl string) editor.Buffer {
	out := string(text[:start]) + repl + string(text[end:])
	return editor.Buffer{Text: out, Sel: editor.Caret(start + utf8.RuneCountInString(repl))}
}

func wordStartBefore(text []rune, i int) int {
	for i > 0 && unicode.IsSpace(text[i-1]) {
		i--
	}
	if i > 0 && !history.IsWordRune(text[i-1]) {
		return i - 1
	}
	for i > 0 && history.IsWordRune(text[i-1]) {
		i--
	}
	return i
}

func wordEndAfter(text []rune, i int) int {
	for i < len(text) && unicode.IsSpace(text[i]) {
		i++
	}
	if i < len(text) && !history.IsWordRune(text[i]) {
		return i + 1
	}
	for i < len(text) && history.IsWordRune(text[i]) {
		i++
	}
	return i
}

// lineStartBefore returns the offset just past the newline before i.
func lineStartBefore(text []rune, i int) int {
	for i > 0 && text[i-1] != '\n' {
		i--
	}
	return i
}

func lineEndAfter(text []rune, i int) int {
	for i < len(text) && text[i] != '\n' {
		i++
	}
	return i
}

func textLen(s string) int {
	return utf8.RuneCountInString(s)
}
