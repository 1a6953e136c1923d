package editor

import (
	"strconv"
	"strings"
)

// Command tokens accepted by Dispatch.
const (
	CmdBold   = "bold"
	CmdItalic = "italic"
	CmdUL     = "ul"
	CmdOL     = "ol"
	CmdQuote  = "quote"
	CmdCode   = "code"
	CmdLink   = "link"
	CmdHR     = "hr"

	headingPrefix = "h"
	maxHeading    = 6
	alignPrefix   = "align-"
	colorPrefix   = "color-"
)

var alignments = map[string]bool{
	"left":    true,
	"center":  true,
	"right":   true,
	"justify": true,
}

// Dispatch applies the formatting command named by cmd. Unknown or malformed
// commands leave b untouched and report false.
func Dispatch(cmd string, b Buffer) (Buffer, bool) {
	switch cmd {
	case CmdBold:
		return Wrap(b, "**", "**"), true
	case CmdItalic:
		return Wrap(b, "*", "*"), true
	case CmdUL:
		return ToggleLinePrefix(b, "- "), true
	case CmdOL:
		return ToggleLinePrefix(b, "1. "), true
	case CmdQuote:
		return ToggleLinePrefix(b, "> "), true
	case CmdCode:
		return Wrap(b, "```\n", "\n```"), true
	case CmdLink:
		return Wrap(b, "[", "](http://)"), true
	case CmdHR:
		return InsertHorizontalRule(b), true
	}

	if level, ok := HeadingLevel(cmd); ok {
		return ToggleHeading(b, level), true
	}
	if value, ok := strings.CutPrefix(cmd, alignPrefix); ok {
		if !alignments[value] {
			return b, false
		}
		return ToggleAlignment(b, value), true
	}
	if value, ok := strings.CutPrefix(cmd, colorPrefix); ok {
		if !validColor(value) {
			return b, false
		}
		return InlineStyle(b, value), true
	}
	return b, false
}

// HeadingLevel parses an h<N> token. Markdown only has six heading levels;
// anything outside 1..6 is not a heading command.
func HeadingLevel(cmd string) (int, bool) {
	rest, ok := strings.CutPrefix(cmd, headingPrefix)
	if !ok || rest == "" || len(rest) > 1 {
		return 0, false
	}
	level, err := strconv.Atoi(rest)
	if err != nil || level < 1 || level > maxHeading {
		return 0, false
	}
	return level, true
}

// validColor accepts CSS colour values that cannot break out of the style
// attribute: hex notation, names and functional notation.
func validColor(v string) bool {
	if v == "" || len(v) > 64 {
		return false
	}
	for _, r := range v {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune("#(),.% ", r):
		default:
			return false
		}
	}
	return true
}
