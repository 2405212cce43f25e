package terminal

import "golang.org/x/text/width"

// Style packs the per-cell rendition attributes described in spec.md §3:
// a foreground index, a background index, and a handful of boolean
// attributes, plus flags recording whether the foreground/background were
// ever explicitly set (as opposed to "default").
type Style struct {
	FG, BG         uint8
	HasFG, HasBG   bool
	Bold           bool
	Underline      bool
	Reverse        bool
	Blink          bool
	FG256, BG256   bool // FG/BG hold a 256-color palette index rather than 0-7
	TrueColorFG    uint32
	TrueColorBG    uint32
	HasTrueColorFG bool
	HasTrueColorBG bool
}

// DefaultStyle is the well-known "no attributes, default colors" constant
// required by spec.md §3.
var DefaultStyle = Style{}

// Equal reports whether two styles render identically, used by
// styledSegments to merge neighbouring cells of equal style into one run.
func (s Style) Equal(o Style) bool {
	return s == o
}

// Special sentinel runes used by Line to encode a tab as a run of cells
// instead of a single wide cell (spec.md §3, "Tab run"), and a wide
// East-Asian character as a run of two cells (SPEC_FULL.md's cell
// column-span supplement): the first cell holds the rune itself and the
// second holds WideContinue, mirroring how a tab's continuation cells work.
const (
	TabStart     rune = -1
	TabContinue  rune = -2
	WideContinue rune = -3
)

// Cell is one position in a Line: a code point (or tab sentinel) plus the
// style in effect when it was written.
type Cell struct {
	Char  rune
	Style Style
}

// RuneWidth returns the terminal column width of r: 2 for wide and
// fullwidth East-Asian characters, 1 for everything else (combining marks
// included; it never returns 0). Tab sentinels are not passed through here;
// callers special-case them.
func RuneWidth(r rune) int {
	if r == 0 {
		return 1
	}
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	case width.EastAsianNarrow, width.EastAsianAmbiguous, width.Neutral, width.EastAsianHalfwidth:
		return 1
	default:
		return 1
	}
}
