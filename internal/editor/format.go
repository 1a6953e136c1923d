package editor

import "strings"

const (
	HorizontalRule = "\n---\n"

	alignOpenPrefix = "<div"
	alignClose      = "</div>"
)

// Wrap inserts before and after around the selection. The originally selected
// text stays selected, shifted past the opening marker; an empty selection
// leaves the caret between the markers.
func Wrap(b Buffer, before, after string) Buffer {
	text := []rune(b.Text)
	sel := b.Sel.Normalize(len(text))

	var out strings.Builder
	out.WriteString(string(text[:sel.Start]))
	out.WriteString(before)
	out.WriteString(string(text[sel.Start:sel.End]))
	out.WriteString(after)
	out.WriteString(string(text[sel.End:]))

	shift := runeLen(before)
	return Buffer{
		Text: out.String(),
		Sel:  Selection{Start: sel.Start + shift, End: sel.End + shift},
	}
}

// ToggleLinePrefix decides per line: a line carrying prefix loses it, a blank
// line is kept, any other line gains it.
func ToggleLinePrefix(b Buffer, prefix string) Buffer {
	ls := SelectedLines(b)
	out := make([]string, len(ls.Lines))
	for i, line := range ls.Lines {
		switch {
		case strings.HasPrefix(line, prefix):
			out[i] = line[len(prefix):]
		case isBlank(line):
			out[i] = line
		default:
			out[i] = prefix + line
		}
	}
	return replaceLines(b, ls, strings.Join(out, "\n"))
}

// HeadingPrefix returns the Markdown marker for a heading of the given level.
func HeadingPrefix(level int) string {
	level = clamp(level, 1, maxHeading)
	return strings.Repeat("#", level) + " "
}

// ToggleHeading makes one decision for the whole slice: when every non-blank
// line already carries the heading marker it is removed everywhere, otherwise
// it is added to every non-blank line. Blank lines are never touched.
func ToggleHeading(b Buffer, level int) Buffer {
	prefix := HeadingPrefix(level)
	ls := SelectedLines(b)

	allHave := true
	for _, line := range ls.Lines {
		if !isBlank(line) && !strings.HasPrefix(line, prefix) {
			allHave = false
			break
		}
	}

	out := make([]string, len(ls.Lines))
	for i, line := range ls.Lines {
		switch {
		case isBlank(line):
			out[i] = line
		case allHave:
			out[i] = strings.TrimPrefix(line, prefix)
		default:
			out[i] = prefix + line
		}
	}
	return replaceLines(b, ls, strings.Join(out, "\n"))
}

// InsertHorizontalRule replaces the selected lines with a thematic break.
func InsertHorizontalRule(b Buffer) Buffer {
	return replaceLines(b, SelectedLines(b), HorizontalRule)
}

// AlignOpenTag is the opening line of an alignment container.
func AlignOpenTag(value string) string {
	return `<div style="text-align:` + value + `;">`
}

// ToggleAlignment wraps the selected lines in an alignment container, or
// unwraps them when the slice already starts with a <div line and ends with a
// </div> line. The existing alignment value is not compared, so toggling a
// different alignment over a wrapped block unwraps it.
func ToggleAlignment(b Buffer, value string) Buffer {
	ls := SelectedLines(b)
	first := ls.Lines[0]
	last := ls.Lines[len(ls.Lines)-1]
	if strings.HasPrefix(first, alignOpenPrefix) && strings.HasSuffix(last, alignClose) {
		var inner []string
		if len(ls.Lines) > 2 {
			inner = ls.Lines[1 : len(ls.Lines)-1]
		}
		return replaceLines(b, ls, strings.Join(inner, "\n"))
	}
	wrapped := AlignOpenTag(value) + "\n" + strings.Join(ls.Lines, "\n") + "\n" + alignClose
	return replaceLines(b, ls, wrapped)
}

// InlineStyle wraps a non-empty selection in a coloured span and leaves the
// caret after the closing tag. An empty selection is returned unchanged.
func InlineStyle(b Buffer, color string) Buffer {
	text := []rune(b.Text)
	sel := b.Sel.Normalize(len(text))
	if sel.IsEmpty() {
		return Buffer{Text: b.Text, Sel: sel}
	}
	span := `<span style="color:` + color + `">` + string(text[sel.Start:sel.End]) + `</span>`
	out := string(text[:sel.Start]) + span + string(text[sel.End:])
	return Buffer{Text: out, Sel: Caret(sel.Start + runeLen(span))}
}
