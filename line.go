package terminal

import "strings"

// Line stores one row of the screen: a sequence of code points and a
// parallel style array of equal length (spec.md §3/§4.1).
//
// Tabs are stored as a run of cells: the first holds TabStart, and each
// further column the tab spans holds TabContinue. This keeps a tab's
// screen-width stable even if later edits touch only part of the run, and
// lets the clipboard view drop the padding while keeping a single '\t'.
type Line struct {
	chars  []rune
	styles []Style
}

// NewLine returns an empty line.
func NewLine() *Line {
	return &Line{}
}

// Clear truncates the line to zero length.
func (l *Line) Clear() {
	l.chars = l.chars[:0]
	l.styles = l.styles[:0]
}

// Length returns the number of stored cells (tab-run cells included).
func (l *Line) Length() int {
	return len(l.chars)
}

// StyleAt returns the style of the cell at i. Out-of-range reads return
// DefaultStyle.
func (l *Line) StyleAt(i int) Style {
	if i < 0 || i >= len(l.styles) {
		return DefaultStyle
	}
	return l.styles[i]
}

// CharAt returns the raw stored rune at i (may be a tab sentinel).
func (l *Line) CharAt(i int) rune {
	if i < 0 || i >= len(l.chars) {
		return ' '
	}
	return l.chars[i]
}

// styledRun is one maximal run of equal-style cells, as returned by
// StyledSegments.
type styledRun struct {
	Text  string
	Style Style
}

// StyledSegments returns the line's display text split into maximal runs of
// equal style, merging equal-style neighbours as required by spec.md §4.1.
func (l *Line) StyledSegments() []styledRun {
	if len(l.chars) == 0 {
		return nil
	}
	var out []styledRun
	var b strings.Builder
	cur := l.styles[0]
	for i, c := range l.chars {
		if i > 0 && !l.styles[i].Equal(cur) {
			out = append(out, styledRun{Text: b.String(), Style: cur})
			b.Reset()
			cur = l.styles[i]
		}
		b.WriteRune(displayRune(c))
	}
	out = append(out, styledRun{Text: b.String(), Style: cur})
	return out
}

// displayRune projects tab and wide-character continuation sentinels to
// spaces for the display view.
func displayRune(c rune) rune {
	if c == TabStart || c == TabContinue || c == WideContinue {
		return ' '
	}
	return c
}

// DisplayString renders the full line with tab sentinels projected to
// spaces, per spec.md §3's "display string" view.
func (l *Line) DisplayString() string {
	var b strings.Builder
	b.Grow(len(l.chars))
	for _, c := range l.chars {
		b.WriteRune(displayRune(c))
	}
	return b.String()
}

// ClipboardString returns the [a,b) range with TabStart kept as '\t' and
// every TabContinue dropped, per spec.md §3's "clipboard string" view.
func (l *Line) ClipboardString(a, b int) string {
	if a < 0 {
		a = 0
	}
	if b > len(l.chars) {
		b = len(l.chars)
	}
	if a >= b {
		return ""
	}
	var out strings.Builder
	for i := a; i < b; i++ {
		switch l.chars[i] {
		case TabContinue, WideContinue:
			continue
		case TabStart:
			out.WriteRune('\t')
		default:
			out.WriteRune(l.chars[i])
		}
	}
	return out.String()
}

// ensureLength extends the line to n cells with spaces in the given style,
// used by WriteText when the write offset lies beyond the current length.
func (l *Line) ensureLength(n int, style Style) {
	for len(l.chars) < n {
		l.chars = append(l.chars, ' ')
		l.styles = append(l.styles, style)
	}
}

// InsertText inserts s at offset, shifting any existing content at or past
// offset to the right. Negative offsets are rejected (no-op), matching
// spec.md §4.1's failure mode.
func (l *Line) InsertText(offset int, s string, style Style) {
	if offset < 0 {
		return
	}
	l.ensureLength(offset, style)
	runes := []rune(s)
	n := len(runes)
	newChars := make([]rune, len(l.chars)+n)
	newStyles := make([]Style, len(l.styles)+n)
	copy(newChars, l.chars[:offset])
	copy(newStyles, l.styles[:offset])
	copy(newChars[offset:], runes)
	for i := 0; i < n; i++ {
		newStyles[offset+i] = style
	}
	copy(newChars[offset+n:], l.chars[offset:])
	copy(newStyles[offset+n:], l.styles[offset:])
	l.chars = newChars
	l.styles = newStyles
}

// WriteText overwrites the line starting at offset with s, extending the
// line with default-styled spaces first if offset is beyond the current
// length (spec.md §4.1). If the cell right after the written text was a
// TabContinue, it is promoted to TabStart so the remnant stays a
// well-formed, shorter tab.
func (l *Line) WriteText(offset int, s string, style Style) {
	if offset < 0 {
		return
	}
	runes := []rune(s)
	need := offset + len(runes)
	l.ensureLength(offset, DefaultStyle)
	l.ensureLength(need, style)
	for i, r := range runes {
		l.chars[offset+i] = r
		l.styles[offset+i] = style
	}
	if need < len(l.chars) && l.chars[need] == TabContinue {
		l.chars[need] = TabStart
	}
}

// KillText removes the [a,b) range from the line.
func (l *Line) KillText(a, b int) {
	if a < 0 {
		a = 0
	}
	if b > len(l.chars) {
		b = len(l.chars)
	}
	if a >= b {
		return
	}
	l.chars = append(l.chars[:a], l.chars[b:]...)
	l.styles = append(l.styles[:a], l.styles[b:]...)
}

// InsertTab inserts a tab run of the given width at offset, shifting any
// existing content right.
func (l *Line) InsertTab(offset, width int, style Style) {
	if offset < 0 || width <= 0 {
		return
	}
	run := make([]rune, width)
	run[0] = TabStart
	for i := 1; i < width; i++ {
		run[i] = TabContinue
	}
	l.ensureLength(offset, style)
	newChars := make([]rune, len(l.chars)+width)
	newStyles := make([]Style, len(l.styles)+width)
	copy(newChars, l.chars[:offset])
	copy(newStyles, l.styles[:offset])
	copy(newChars[offset:], run)
	for i := 0; i < width; i++ {
		newStyles[offset+i] = style
	}
	copy(newChars[offset+width:], l.chars[offset:])
	copy(newStyles[offset+width:], l.styles[offset:])
	l.chars = newChars
	l.styles = newStyles
}

// WriteTab overwrites a tab run of the given width starting at offset. If
// the cell immediately after the new run was a TabContinue belonging to a
// longer pre-existing tab, it is promoted to TabStart so the remnant
// becomes a well-formed, shorter tab of its own (spec.md §4.1).
func (l *Line) WriteTab(offset, width int, style Style) {
	if offset < 0 || width <= 0 {
		return
	}
	need := offset + width
	l.ensureLength(need, style)
	for i := 0; i < width; i++ {
		if i == 0 {
			l.chars[offset] = TabStart
		} else {
			l.chars[offset+i] = TabContinue
		}
		l.styles[offset+i] = style
	}
	after := offset + width
	if after < len(l.chars) && l.chars[after] == TabContinue {
		l.chars[after] = TabStart
	}
}

// EffectiveCharStart returns the greatest j <= i whose stored char is not
// TabContinue or WideContinue (spec.md §3).
func (l *Line) EffectiveCharStart(i int) int {
	if i < 0 {
		return 0
	}
	if i >= len(l.chars) {
		i = len(l.chars) - 1
	}
	for i > 0 && (l.chars[i] == TabContinue || l.chars[i] == WideContinue) {
		i--
	}
	return i
}

// EffectiveCharEnd returns the least j >= i whose stored char is not
// TabContinue or WideContinue (spec.md §3).
func (l *Line) EffectiveCharEnd(i int) int {
	if i < 0 {
		i = 0
	}
	for i < len(l.chars) && (l.chars[i] == TabContinue || l.chars[i] == WideContinue) {
		i++
	}
	return i
}

// Clone returns an independent deep copy of the line.
func (l *Line) Clone() *Line {
	c := &Line{
		chars:  make([]rune, len(l.chars)),
		styles: make([]Style, len(l.styles)),
	}
	copy(c.chars, l.chars)
	copy(c.styles, l.styles)
	return c
}

// PadTo extends the line with spaces in the given style until it has at
// least n cells, without touching any existing content.
func (l *Line) PadTo(n int, style Style) {
	l.ensureLength(n, style)
}
