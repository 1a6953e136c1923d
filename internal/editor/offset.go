package editor

import "unicode/utf16"

// RuneOffset converts an offset in UTF-16 code units into a rune offset.
// Offsets past the end clamp to the rune length; an offset in the middle of a
// surrogate pair resolves to the rune that owns it.
func RuneOffset(text string, units int) int {
	if units <= 0 {
		return 0
	}
	seen := 0
	runes := 0
	for _, r := range text {
		w := utf16.RuneLen(r)
		if w < 0 {
			w = 1
		}
		if seen+w > units {
			return runes
		}
		seen += w
		runes++
	}
	return runes
}

// UTF16Offset converts a rune offset into UTF-16 code units.
func UTF16Offset(text string, runes int) int {
	if runes <= 0 {
		return 0
	}
	units := 0
	i := 0
	for _, r := range text {
		if i == runes {
			break
		}
		w := utf16.RuneLen(r)
		if w < 0 {
			w = 1
		}
		units += w
		i++
	}
	return units
}

// SelectionFromUTF16 converts a browser selection into rune offsets.
func SelectionFromUTF16(text string, start, end int) Selection {
	return Selection{Start: RuneOffset(text, start), End: RuneOffset(text, end)}
}

// UTF16Range converts sel back into UTF-16 code units.
func UTF16Range(text string, sel Selection) (int, int) {
	return UTF16Offset(text, sel.Start), UTF16Offset(text, sel.End)
}
