// Package editor implements the Markdown formatting engine used by the note
// editor. Every operation is a pure function from a Buffer to a new Buffer;
// nothing here touches rendering, storage or undo history.
//
// Offsets are rune offsets into Buffer.Text. Use RuneOffset and UTF16Offset to
// convert from and to the UTF-16 code units browsers report.
package editor

import (
	"strings"
	"unicode/utf8"
)

// Selection is a half-open range [Start, End) into the buffer text.
// Start == End denotes a caret.
type Selection struct {
	Start int
	End   int
}

// Caret returns an empty selection at off.
func Caret(off int) Selection {
	return Selection{Start: off, End: off}
}

func (s Selection) IsEmpty() bool {
	return s.Start == s.End
}

// Normalize clamps the selection into [0, n] and orders its ends.
func (s Selection) Normalize(n int) Selection {
	s.Start = clamp(s.Start, 0, n)
	s.End = clamp(s.End, 0, n)
	if s.Start > s.End {
		s.Start, s.End = s.End, s.Start
	}
	return s
}

// Buffer is the full note text plus the current selection.
type Buffer struct {
	Text string
	Sel  Selection
}

// LineSlice covers every line touched by a selection. Start and End are rune
// offsets of the first line's start and the last line's end (exclusive of the
// trailing newline).
type LineSlice struct {
	Start int
	End   int
	Lines []string
}

// SelectedLines expands the selection of b to whole-line boundaries.
func SelectedLines(b Buffer) LineSlice {
	text := []rune(b.Text)
	sel := b.Sel.Normalize(len(text))

	start := sel.Start
	for start > 0 && text[start-1] != '\n' {
		start--
	}
	end := sel.End
	for end < len(text) && text[end] != '\n' {
		end++
	}
	return LineSlice{
		Start: start,
		End:   end,
		Lines: strings.Split(string(text[start:end]), "\n"),
	}
}

// replaceLines swaps the line slice for repl and selects the replacement.
func replaceLines(b Buffer, ls LineSlice, repl string) Buffer {
	text := []rune(b.Text)
	out := string(text[:ls.Start]) + repl + string(text[ls.End:])
	return Buffer{
		Text: out,
		Sel:  Selection{Start: ls.Start, End: ls.Start + runeLen(repl)},
	}
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
