package editor

import "testing"

func TestRuneOffsetRoundTrip(t *testing.T) {
	text := "a😀b\né"
	cases := []struct {
		units int
		runes int
	}{
		{0, 0},
		{1, 1},
		{3, 2},
		{4, 3},
		{5, 4},
		{6, 5},
		{100, 5},
	}
	for _, c := range cases {
		if got := RuneOffset(text, c.units); got != c.runes {
			t.Fatalf("RuneOffset(%d): expected %d, got %d", c.units, c.runes, got)
		}
		if c.units <= 6 {
			if got := UTF16Offset(text, c.runes); got != c.units {
				t.Fatalf("UTF16Offset(%d): expected %d, got %d", c.runes, c.units, got)
			}
		}
	}
}

func TestRuneOffsetInsideSurrogatePair(t *testing.T) {
	if got := RuneOffset("😀x", 1); got != 0 {
		t.Fatalf("expected offset inside pair to resolve to 0, got %d", got)
	}
}

func TestSelectionFromUTF16(t *testing.T) {
	text := "😀 bold"
	sel := SelectionFromUTF16(text, 3, 7)
	if sel != (Selection{2, 6}) {
		t.Fatalf("unexpected selection %+v", sel)
	}
	start, end := UTF16Range(text, sel)
	if start != 3 || end != 7 {
		t.Fatalf("expected (3,7), got (%d,%d)", start, end)
	}
}
