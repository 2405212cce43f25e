package terminal

// TextBuffer is the screen model (C2) of spec.md §3/§4.2: a grid of Lines,
// cursor, margins, scroll regions, primary/alternate screens and
// scrollback. All methods must be invoked from the single confined
// "UI thread" per spec.md §5 — TextBuffer does no locking of its own; the
// single-writer discipline is enforced by the dispatch boundary (C7, see
// dispatch.go), exactly as spec.md §5's "shared resources" note describes.
type TextBuffer struct {
	cols, rows int

	cursorCol, cursorRow int
	wrapPending          bool

	scrollTop, scrollBottom int

	tabStops map[int]bool

	primaryLines []*Line
	altLines     []*Line
	altActive    bool

	scrollback    []*Line
	maxScrollback int

	autowrap    bool
	originMode  bool
	insertMode  bool
	newLineMode bool

	currentStyle Style

	// g holds the DEC charset designated into each of G0-G3; curG is the
	// currently invoked slot (0 or 1, shifted by SO/SI). This is a mirror
	// of the parser's own live translation state, updated in lockstep by
	// ActDesignateCharset/ActInvokeCharset so that DECSC's saved state
	// (spec.md §3) can snapshot it without reaching into the parser.
	g    [4]Charset
	curG int

	saved savedCursorState

	modes map[Mode]bool

	// ClearScrollbackOnErase implements the spec.md §9 open-question
	// extension point: when set, EraseInDisplay(2) also drops scrollback.
	// Default false preserves the spec'd original behaviour.
	ClearScrollbackOnErase bool

	onBell       func()
	onTitle      func(string)
	onCursorMove func(row, col int)
}

type savedCursorState struct {
	col, row    int
	style       Style
	g           [4]Charset
	curG        int
	originMode  bool
	autowrap    bool
	valid       bool
}

// NewTextBuffer constructs a cols x rows screen with the given scrollback
// cap (spec.md §3's "bounded by a configured maximum").
func NewTextBuffer(cols, rows, maxScrollback int) *TextBuffer {
	b := &TextBuffer{
		cols:          cols,
		rows:          rows,
		scrollBottom:  rows - 1,
		maxScrollback: maxScrollback,
		autowrap:      true,
		modes:         make(map[Mode]bool),
	}
	b.modes[ModeAutowrap] = true
	b.modes[ModeCursorVisible] = true
	b.primaryLines = makeBlankLines(rows)
	b.altLines = makeBlankLines(rows)
	b.tabStops = defaultTabStops(cols)
	return b
}

func makeBlankLines(n int) []*Line {
	lines := make([]*Line, n)
	for i := range lines {
		lines[i] = NewLine()
	}
	return lines
}

func defaultTabStops(cols int) map[int]bool {
	stops := make(map[int]bool)
	for c := 8; c < cols; c += 8 {
		stops[c] = true
	}
	return stops
}

// active returns a pointer to the currently visible line array (primary or
// alternate) so callers can splice it in place.
func (b *TextBuffer) active() *[]*Line {
	if b.altActive {
		return &b.altLines
	}
	return &b.primaryLines
}

// Lines returns the currently visible rows, top to bottom.
func (b *TextBuffer) Lines() []*Line {
	return *b.active()
}

// Scrollback returns the lines that have scrolled off the primary screen,
// oldest first.
func (b *TextBuffer) Scrollback() []*Line {
	return b.scrollback
}

// Cols, Rows report the current grid dimensions.
func (b *TextBuffer) Cols() int { return b.cols }
func (b *TextBuffer) Rows() int { return b.rows }

// CursorRowCol reports the 0-based cursor position.
func (b *TextBuffer) CursorRowCol() (row, col int) { return b.cursorRow, b.cursorCol }

// CurrentStyle returns the style new characters are written with.
func (b *TextBuffer) CurrentStyle() Style { return b.currentStyle }

// SetOnBell/SetOnTitle/SetOnCursorMove register the narrow observer
// capabilities spec.md §9 recommends in place of a UI back-reference: the
// interpreter holds a *TextBuffer, not the other way around, but the
// front-end still needs to hear about bell/title/cursor events, so those
// are exposed as plain callback fields rather than an interface the buffer
// must import a UI package to satisfy.
func (b *TextBuffer) SetOnBell(f func())                  { b.onBell = f }
func (b *TextBuffer) SetOnTitle(f func(string))            { b.onTitle = f }
func (b *TextBuffer) SetOnCursorMove(f func(row, col int)) { b.onCursorMove = f }

func (b *TextBuffer) lineAt(row int) *Line {
	lines := *b.active()
	if row < 0 || row >= len(lines) {
		return NewLine()
	}
	return lines[row]
}

func (b *TextBuffer) clampCursor() {
	if b.cursorCol < 0 {
		b.cursorCol = 0
	}
	if b.cursorCol >= b.cols {
		b.cursorCol = b.cols - 1
	}
	if b.cursorRow < 0 {
		b.cursorRow = 0
	}
	if b.cursorRow >= b.rows {
		b.cursorRow = b.rows - 1
	}
}

// setCursor moves the cursor to an absolute, already-origin-adjusted
// position, clamping to the grid and clearing any pending deferred wrap —
// spec.md §4.2 ties "any explicit cursor movement clears pending wrap".
func (b *TextBuffer) setCursor(row, col int) {
	b.wrapPending = false
	b.cursorRow, b.cursorCol = row, col
	b.clampCursor()
	if b.onCursorMove != nil {
		b.onCursorMove(b.cursorRow, b.cursorCol)
	}
}

// SizeChanged implements the resize contract of spec.md §4.2: no reflow,
// cursor clamped, scroll region reset to full screen, alternate screen
// resized in place, primary scrollback preserved (rows scrolled off the
// top during a shrink are pushed into scrollback).
func (b *TextBuffer) SizeChanged(cols, rows int) {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	b.primaryLines = resizeRows(b.primaryLines, rows, func(l *Line) { b.pushScrollback(l) })
	b.altLines = resizeRows(b.altLines, rows, nil)
	b.cols, b.rows = cols, rows
	b.scrollTop, b.scrollBottom = 0, rows-1
	b.wrapPending = false
	b.clampCursor()
}

func resizeRows(lines []*Line, newRows int, onEvict func(*Line)) []*Line {
	switch {
	case len(lines) > newRows:
		if onEvict != nil {
			for _, l := range lines[:len(lines)-newRows] {
				onEvict(l)
			}
		}
		return append([]*Line{}, lines[len(lines)-newRows:]...)
	case len(lines) < newRows:
		out := make([]*Line, newRows)
		copy(out, lines)
		for i := len(lines); i < newRows; i++ {
			out[i] = NewLine()
		}
		return out
	default:
		return lines
	}
}

func (b *TextBuffer) pushScrollback(l *Line) {
	if b.maxScrollback <= 0 {
		return
	}
	b.scrollback = append(b.scrollback, l)
	if len(b.scrollback) > b.maxScrollback {
		b.scrollback = b.scrollback[len(b.scrollback)-b.maxScrollback:]
	}
}

// scrollRegionUp removes the topmost line of the scroll region and appends
// a blank line at the bottom, evicting to scrollback when the region spans
// the whole primary screen (spec.md §4.2's scroll algorithm).
func (b *TextBuffer) scrollRegionUp(n int) {
	lines := *b.active()
	fullScreen := b.scrollTop == 0 && b.scrollBottom == b.rows-1 && !b.altActive
	for i := 0; i < n; i++ {
		if b.scrollTop > len(lines)-1 || b.scrollBottom > len(lines)-1 {
			break
		}
		evicted := lines[b.scrollTop]
		if fullScreen {
			b.pushScrollback(evicted)
		}
		copy(lines[b.scrollTop:b.scrollBottom], lines[b.scrollTop+1:b.scrollBottom+1])
		lines[b.scrollBottom] = NewLine()
	}
}

// scrollRegionDown inserts a blank line at the top of the scroll region and
// drops the bottom line (reverse index / CSI T).
func (b *TextBuffer) scrollRegionDown(n int) {
	lines := *b.active()
	for i := 0; i < n; i++ {
		if b.scrollTop > len(lines)-1 || b.scrollBottom > len(lines)-1 {
			break
		}
		copy(lines[b.scrollTop+1:b.scrollBottom+1], lines[b.scrollTop:b.scrollBottom])
		lines[b.scrollTop] = NewLine()
	}
}

// Write places plain text at the cursor honouring insert/overwrite mode,
// deferred autowrap, and scroll-on-output (spec.md §4.2).
func (b *TextBuffer) Write(s string) {
	for _, r := range s {
		b.writeRune(r)
	}
}

func (b *TextBuffer) writeRune(r rune) {
	if b.wrapPending {
		b.wrapPending = false
		if b.autowrap {
			b.cursorCol = 0
			b.lineFeed()
		} else if b.cols > 0 {
			b.cursorCol = b.cols - 1
		}
	}

	lastCol := b.cols - 1
	w := RuneWidth(r)
	if w < 1 {
		// Combining marks (width 0) have no cell of their own to occupy;
		// Cell stores one rune per column, so fold them in as ordinary
		// single-width glyphs rather than leaving the cursor un-advanced.
		w = 1
	}
	if w == 2 && b.cursorCol == lastCol {
		if b.autowrap {
			// A wide rune doesn't fit in the final column: xterm blanks the
			// column and wraps the rune onto the next row whole, rather
			// than splitting it across two rows.
			b.lineAt(b.cursorRow).WriteText(b.cursorCol, " ", b.currentStyle)
			b.cursorCol = 0
			b.lineFeed()
		} else {
			// No room to wrap and no room for a continuation cell either;
			// fall back to single-width so the glyph itself isn't dropped.
			w = 1
		}
	}

	line := b.lineAt(b.cursorRow)
	text := string(r)
	if w == 2 {
		// string(WideContinue) would encode as U+FFFD, so reserve the
		// continuation cell with a space and store the sentinel below.
		text += " "
	}
	if b.insertMode {
		line.InsertText(b.cursorCol, text, b.currentStyle)
		if line.Length() > b.cols {
			line.KillText(b.cols, line.Length())
		}
	} else {
		line.WriteText(b.cursorCol, text, b.currentStyle)
	}
	if w == 2 {
		line.chars[b.cursorCol+1] = WideContinue
	}

	if b.cursorCol+w-1 >= lastCol {
		if b.autowrap {
			b.wrapPending = true
			b.cursorCol = b.cols
		}
	} else {
		b.cursorCol += w
	}
}

// Special implements spec.md §4.2's LF/CR/BS/HT/VT dispatch.
func (b *TextBuffer) Special(c SpecialChar) {
	switch c {
	case CharLF, CharVT:
		b.lineFeed()
	case CharCR:
		b.wrapPending = false
		b.cursorCol = 0
	case CharBS:
		if b.cursorCol > 0 {
			b.cursorCol--
		}
	case CharHT:
		b.tab()
	}
}

func (b *TextBuffer) lineFeed() {
	if b.cursorRow == b.scrollBottom {
		b.scrollRegionUp(1)
		if b.newLineMode {
			b.cursorCol = 0
		}
		return
	}
	if b.cursorRow < b.rows-1 {
		b.cursorRow++
	}
	if b.newLineMode {
		b.cursorCol = 0
	}
}

// ReverseLineFeed implements RI (ESC M): move the cursor up one row,
// scrolling the scroll region down when already at its top.
func (b *TextBuffer) ReverseLineFeed() {
	if b.cursorRow == b.scrollTop {
		b.scrollRegionDown(1)
		return
	}
	if b.cursorRow > 0 {
		b.cursorRow--
	}
}

// Reset implements RIS (ESC c): reinitialise the screen model to its
// power-on state at the current dimensions, per spec.md §7's "full reset"
// recovery action.
func (b *TextBuffer) Reset(cols, rows int) {
	onBell, onTitle, onCursorMove := b.onBell, b.onTitle, b.onCursorMove
	clearOnErase := b.ClearScrollbackOnErase
	*b = *NewTextBuffer(cols, rows, b.maxScrollback)
	b.onBell, b.onTitle, b.onCursorMove = onBell, onTitle, onCursorMove
	b.ClearScrollbackOnErase = clearOnErase
}

func (b *TextBuffer) tab() {
	next := b.nextTabStop(b.cursorCol)
	width := next - b.cursorCol
	if width <= 0 {
		return
	}
	line := b.lineAt(b.cursorRow)
	line.WriteTab(b.cursorCol, width, b.currentStyle)
	b.cursorCol = next
	if b.cursorCol > b.cols-1 {
		b.cursorCol = b.cols - 1
	}
}

func (b *TextBuffer) nextTabStop(from int) int {
	for c := from + 1; c < b.cols; c++ {
		if b.tabStops[c] {
			return c
		}
	}
	return b.cols - 1
}

// TabSet marks the current cursor column as a tab stop.
func (b *TextBuffer) TabSet() {
	b.tabStops[b.cursorCol] = true
}

// TabClear implements mode 0 (clear stop at cursor) and mode 3 (clear all).
func (b *TextBuffer) TabClear(mode int) {
	switch mode {
	case 3:
		b.tabStops = make(map[int]bool)
	default:
		delete(b.tabStops, b.cursorCol)
	}
}

// CursorMove implements absolute (CUP/HVP) and relative cursor motion,
// honouring origin mode's scroll-region-relative clamp (spec.md §4.2).
func (b *TextBuffer) CursorMove(absolute bool, row, col int) {
	if absolute {
		if row == rowSentinel {
			row = b.cursorRow
		} else if b.originMode {
			row += b.scrollTop
		}
		if col == colSentinel {
			col = b.cursorCol
		}
	} else {
		row, col = b.cursorRow+row, b.cursorCol+col
	}
	if b.originMode {
		row = min(max(row, b.scrollTop), b.scrollBottom)
	}
	b.setCursor(row, col)
}

// EraseInLine implements modes 0 (to EOL), 1 (from start), 2 (whole line).
func (b *TextBuffer) EraseInLine(mode int) {
	line := b.lineAt(b.cursorRow)
	switch mode {
	case 0:
		line.PadTo(b.cols, b.currentStyle)
		line.WriteText(b.cursorCol, spaces(b.cols-b.cursorCol), b.currentStyle)
	case 1:
		line.PadTo(b.cols, b.currentStyle)
		end := b.cursorCol + 1
		if end > b.cols {
			end = b.cols
		}
		line.WriteText(0, spaces(end), b.currentStyle)
	case 2:
		line.Clear()
		line.PadTo(b.cols, b.currentStyle)
	}
}

// EraseInDisplay implements modes 0 (cursor to end), 1 (start to cursor),
// 2 (entire screen) and the xterm extension mode 3 (scrollback only).
// Modes 0 and 1 never touch scrollback; mode 2 leaves it alone unless
// ClearScrollbackOnErase is set.
func (b *TextBuffer) EraseInDisplay(mode int) {
	lines := *b.active()
	switch mode {
	case 0:
		b.EraseInLine(0)
		for r := b.cursorRow + 1; r < len(lines); r++ {
			lines[r].Clear()
			lines[r].PadTo(b.cols, b.currentStyle)
		}
	case 1:
		b.EraseInLine(1)
		for r := 0; r < b.cursorRow; r++ {
			lines[r].Clear()
			lines[r].PadTo(b.cols, b.currentStyle)
		}
	case 2:
		for _, l := range lines {
			l.Clear()
			l.PadTo(b.cols, b.currentStyle)
		}
		if b.ClearScrollbackOnErase {
			b.scrollback = nil
		}
	case 3:
		b.scrollback = nil
	}
}

func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	out := make([]byte, n)
	for i := range out {
		out[i] = ' '
	}
	return string(out)
}

// InsertLines inserts n blank lines at the cursor row within the scroll
// region, pushing lines at the bottom of the region out.
func (b *TextBuffer) InsertLines(n int) {
	if b.cursorRow < b.scrollTop || b.cursorRow > b.scrollBottom {
		return
	}
	lines := *b.active()
	for i := 0; i < n; i++ {
		copy(lines[b.cursorRow+1:b.scrollBottom+1], lines[b.cursorRow:b.scrollBottom])
		lines[b.cursorRow] = NewLine()
	}
}

// DeleteLines deletes n lines at the cursor row within the scroll region,
// pulling lines below up and padding the bottom of the region with blanks.
func (b *TextBuffer) DeleteLines(n int) {
	if b.cursorRow < b.scrollTop || b.cursorRow > b.scrollBottom {
		return
	}
	lines := *b.active()
	for i := 0; i < n; i++ {
		copy(lines[b.cursorRow:b.scrollBottom], lines[b.cursorRow+1:b.scrollBottom+1])
		lines[b.scrollBottom] = NewLine()
	}
}

// InsertChars inserts n blank cells at the cursor, shifting the remainder
// of the line right and dropping anything past the right margin.
func (b *TextBuffer) InsertChars(n int) {
	line := b.lineAt(b.cursorRow)
	line.InsertText(b.cursorCol, spaces(n), b.currentStyle)
	if line.Length() > b.cols {
		line.KillText(b.cols, line.Length())
	}
}

// DeleteChars removes n cells at the cursor, shifting the remainder left.
func (b *TextBuffer) DeleteChars(n int) {
	line := b.lineAt(b.cursorRow)
	end := b.cursorCol + n
	if end > line.Length() {
		end = line.Length()
	}
	line.KillText(b.cursorCol, end)
}

// SetScrollRegion implements DECSTBM, clamping to legal bounds and homing
// the cursor the way the teacher's escape handling does.
func (b *TextBuffer) SetScrollRegion(top, bottom int) {
	if top < 0 {
		top = 0
	}
	if bottom >= b.rows || bottom < 0 {
		bottom = b.rows - 1
	}
	if top >= bottom {
		top, bottom = 0, b.rows-1
	}
	b.scrollTop, b.scrollBottom = top, bottom
	b.setCursor(b.scrollTop, 0)
}

// SaveCursor / RestoreCursor implement DECSC/DECRC's combined snapshot of
// cursor position, pen style, charset designations, origin mode and
// autowrap (spec.md §3's "Cursor saved state").
func (b *TextBuffer) SaveCursor() {
	b.saved = savedCursorState{
		col: b.cursorCol, row: b.cursorRow,
		style: b.currentStyle,
		g:     b.g, curG: b.curG,
		originMode: b.originMode, autowrap: b.autowrap,
		valid: true,
	}
}

func (b *TextBuffer) RestoreCursor() {
	if !b.saved.valid {
		b.setCursor(0, 0)
		return
	}
	s := b.saved
	b.currentStyle = s.style
	b.g, b.curG = s.g, s.curG
	b.originMode, b.autowrap = s.originMode, s.autowrap
	b.setCursor(s.row, s.col)
}

// SetMode toggles a named mode. Modes that carry screen-model meaning
// (insert, origin, autowrap, new-line, alternate screen) also update
// dedicated fields; everything else (cursor visibility, mouse reporting,
// application cursor keys, bracketed paste, local echo) is simply recorded
// for the interpreter/session layer to query via Modes(), since those are
// input-side concerns riding the same closed action set (spec.md §3).
func (b *TextBuffer) SetMode(m Mode, on bool) {
	b.modes[m] = on
	switch m {
	case ModeInsert:
		b.insertMode = on
	case ModeOriginMode:
		b.originMode = on
	case ModeAutowrap:
		b.autowrap = on
	case ModeNewLine:
		b.newLineMode = on
	case ModeAlternateScreen:
		b.setAlternateScreen(on)
	}
}

// Modes exposes the full mode table for read-only consultation by Session
// (e.g. deciding whether to encode arrow keys as application or normal
// cursor key sequences).
func (b *TextBuffer) Modes() map[Mode]bool {
	out := make(map[Mode]bool, len(b.modes))
	for k, v := range b.modes {
		out[k] = v
	}
	return out
}

func (b *TextBuffer) Mode(m Mode) bool { return b.modes[m] }

func (b *TextBuffer) setAlternateScreen(on bool) {
	if on == b.altActive {
		return
	}
	b.altActive = on
	if on {
		for _, l := range b.altLines {
			l.Clear()
		}
	}
	b.setCursor(0, 0)
}

// DesignateCharset / InvokeCharset update the mirrored G0-G3 designation
// table used only for DECSC snapshotting; live translation of ground-state
// text is owned by Parser (C3), which emits these actions to keep this
// mirror in sync (spec.md §4.4, §9).
func (b *TextBuffer) DesignateCharset(g int, cs Charset) {
	if g < 0 || g > 3 {
		return
	}
	b.g[g] = cs
}

func (b *TextBuffer) InvokeCharset(g int) {
	if g < 0 || g > 3 {
		return
	}
	b.curG = g
}

// Apply dispatches one TerminalAction to the buffer, the single entry
// point spec.md §9 calls for in place of a class-hierarchy visitor.
func (b *TextBuffer) Apply(a TerminalAction) {
	switch a.Kind {
	case ActPlainText:
		b.Write(a.Text)
	case ActSpecialChar:
		b.Special(a.Char)
	case ActSetStyle:
		b.currentStyle = ApplySGR(b.currentStyle, a.SGRParams)
	case ActCursorMove:
		b.CursorMove(a.Absolute, a.Row, a.Col)
	case ActEraseInDisplay:
		b.EraseInDisplay(a.EraseMode)
	case ActEraseInLine:
		b.EraseInLine(a.EraseMode)
	case ActInsertLines:
		b.InsertLines(a.N)
	case ActDeleteLines:
		b.DeleteLines(a.N)
	case ActInsertChars:
		b.InsertChars(a.N)
	case ActDeleteChars:
		b.DeleteChars(a.N)
	case ActSetScrollRegion:
		b.SetScrollRegion(a.Row, a.Col)
	case ActSaveCursor:
		b.SaveCursor()
	case ActRestoreCursor:
		b.RestoreCursor()
	case ActSetMode:
		b.SetMode(a.Mode, a.ModeOn)
	case ActTabSet:
		b.TabSet()
	case ActTabClear:
		b.TabClear(a.TabClearMode)
	case ActDesignateCharset:
		b.DesignateCharset(a.G, a.Charset)
	case ActInvokeCharset:
		b.InvokeCharset(a.G)
	case ActResize:
		b.SizeChanged(a.Col, a.Row)
	case ActBell:
		if b.onBell != nil {
			b.onBell()
		}
	case ActWindowTitle:
		if b.onTitle != nil {
			b.onTitle(a.Text)
		}
	case ActSetCursorStyle:
		// Cursor glyph shape is a rendering concern; TextBuffer does not
		// record it, so this action has no effect on the screen model.
	case ActReverseIndex:
		b.ReverseLineFeed()
	case ActFullReset:
		b.Reset(b.cols, b.rows)
	}
}

// ApplyBatch applies a sequence of actions in emission order, the atomic
// "processActions" contract of spec.md §4.2.
func (b *TextBuffer) ApplyBatch(batch []TerminalAction) {
	for _, a := range batch {
		b.Apply(a)
	}
}

// Text returns the full visible screen as newline-joined display strings,
// with no style information — used by the clipboard "select all" and by
// tests.
func (b *TextBuffer) Text() string {
	lines := *b.active()
	out := make([]byte, 0, len(lines)*(b.cols+1))
	for i, l := range lines {
		if i > 0 {
			out = append(out, '\n')
		}
		out = append(out, l.DisplayString()...)
	}
	return string(out)
}
