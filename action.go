package terminal

// TerminalAction is the closed set of actions the parser/interpreter (C3/C4)
// emit and the screen model (C2) applies, per spec.md §3. Rather than a
// class hierarchy with a visitor, this follows spec.md §9's guidance and
// uses a single tagged struct dispatched through one Apply entry point —
// the "capability set of small function values" alternative the spec
// mentions collapses here to a type switch on Kind, which is the idiomatic
// Go rendering of the same idea.
type ActionKind int

const (
	ActPlainText ActionKind = iota
	ActSpecialChar
	ActSetStyle
	ActCursorMove
	ActEraseInDisplay
	ActEraseInLine
	ActInsertLines
	ActDeleteLines
	ActInsertChars
	ActDeleteChars
	ActSetScrollRegion
	ActSaveCursor
	ActRestoreCursor
	ActSetMode
	ActTabSet
	ActTabClear
	ActDesignateCharset
	ActInvokeCharset
	ActResize
	ActBell
	ActWindowTitle
	ActSetCursorStyle
	ActReverseIndex
	ActFullReset
)

// SpecialChar identifies one of the C0 control characters the spec
// dispatches distinctly from plain text.
type SpecialChar int

const (
	CharLF SpecialChar = iota
	CharCR
	CharBS
	CharHT
	CharVT
)

// Mode identifies a settable terminal mode flag (spec.md §3/§4.2).
type Mode int

const (
	ModeInsert Mode = iota
	ModeOriginMode
	ModeAutowrap
	ModeNewLine
	ModeCursorVisible
	ModeApplicationCursorKeys
	ModeBracketedPaste
	ModeAlternateScreen
	ModeMouseX10
	ModeMouseVT200
	ModeMouseSGR
	ModeLocalEcho
)

// TerminalAction is one parsed unit of work. Only the fields relevant to
// Kind are meaningful; this mirrors a tagged union without requiring a type
// switch over distinct Go types for each variant.
type TerminalAction struct {
	Kind ActionKind

	Text      string      // ActPlainText, ActWindowTitle
	Char      SpecialChar // ActSpecialChar
	SGRParams []int       // ActSetStyle: raw SGR parameters, applied onto the current pen

	Absolute bool // ActCursorMove: true = CUP-style absolute, false = relative
	Row, Col int  // ActCursorMove, ActSetScrollRegion (Row=top, Col=bottom), ActResize (Col=cols, Row=rows)

	EraseMode int // ActEraseInDisplay, ActEraseInLine

	N int // ActInsertLines, ActDeleteLines, ActInsertChars, ActDeleteChars

	Mode   Mode // ActSetMode
	ModeOn bool // ActSetMode

	TabClearMode int // ActTabClear: 0 = current column, 3 = all

	G       int   // ActDesignateCharset, ActInvokeCharset
	Charset Charset // ActDesignateCharset

	CursorStyle string // ActSetCursorStyle: "block", "underline" or "bar", optionally with a "-blink" suffix
}

// Charset identifies one of the character sets a G-slot may designate.
type Charset int

const (
	CharsetASCII Charset = iota
	CharsetDECSpecialGraphics
	CharsetUK
)

// PlainText builds a plain-text action.
func PlainText(s string) TerminalAction { return TerminalAction{Kind: ActPlainText, Text: s} }

// Special builds a special-character action.
func Special(c SpecialChar) TerminalAction { return TerminalAction{Kind: ActSpecialChar, Char: c} }
