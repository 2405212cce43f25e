package terminal

import (
	"strconv"
	"unicode/utf8"
)

// parserState names the escape-recognizer's position in the state machine
// of spec.md §4.3: GROUND -> ESC -> (CSI | OSC | CHARSET_Gn | DCS | APC |
// a one-byte "simple" ESC command handled inline).
type parserState int

const (
	stGround parserState = iota
	stEscape
	stCSI
	stOSC
	stDCS
	stAPC
	stStringEsc
	stCharsetG0
	stCharsetG1
	stCharsetG2
	stCharsetG3
	stDiscardOne
)

// Parser recognizes CSI/OSC/ESC/DCS/APC escape sequences and charset
// designations in a raw byte stream and turns them into TerminalActions,
// per spec.md §4.3. It is the structural counterpart to Control (C4), which
// owns UTF-8 decoding; Parser receives already-decoded runes and itself
// applies charset translation to ground-state text.
//
// Parser is stateful across Feed calls so a sequence split across two PTY
// reads is recognized correctly, grounded on the teacher's persistent
// parseState in output.go.
type Parser struct {
	state parserState

	params    []int
	haveParam bool
	private   bool // leading '?' on a CSI sequence (DEC private mode)

	strBuf []byte // OSC/DCS/APC payload accumulator

	// pendingTerm remembers which string-collecting state (stOSC, stDCS or
	// stAPC) was active when an ESC arrived, so stStringEsc knows what to
	// resume (on '\\', a genuine ST) or abort (on anything else).
	pendingTerm parserState

	// g/curG hold the live G0-G3 charset designations and the currently
	// invoked slot, used to translate Ground-state printable runes (DEC
	// Special Graphics line drawing, the UK charset) before they become
	// PlainText actions. Translation can only happen here, not in Control,
	// because only the state machine knows a given rune is genuinely
	// Ground-state text and not part of a sequence it is busy collecting
	// (spec.md §4.3/§4.4).
	g    [4]Charset
	curG int

	// OnDeviceQuery fires for CSI sequences that require a reply written
	// back to the PTY (DA via 'c', DSR via 'n') rather than a screen
	// mutation; Session wires this to the PTY's write side.
	OnDeviceQuery func(final byte, private bool, params []int)

	// OnMediaCopy fires for CSI 5i/4i (DEC print-to-host start/stop),
	// wired by Session to the printer spooler.
	OnMediaCopy func(params []int)

	// OnOSC fires for any OSC sequence not already turned into a
	// TerminalAction (window title is handled inline; shell-integration
	// markers and anything a caller registers of its own are surfaced
	// here instead, per spec.md §9's capability-not-inheritance guidance).
	OnOSC func(code int, payload string)

	// OnStringSeq fires when a DCS ('P') or APC ('_') string sequence
	// terminates, carrying its raw payload. Used for tmux/screen
	// passthrough and similar multiplexer guest protocols the PTY host
	// may face; the parser itself never interprets the payload.
	OnStringSeq func(kind byte, payload string)
}

// NewParser returns a Parser ready to consume a fresh byte stream, with G0
// and G1 designated ASCII per the power-on default.
func NewParser() *Parser {
	p := &Parser{}
	p.g[0] = CharsetASCII
	p.g[1] = CharsetASCII
	return p
}

// Feed consumes a chunk of raw ASCII-safe bytes and returns the actions
// recognized from it. It is a convenience for callers that already have
// single-byte-safe content (escape-sequence fixtures, tests); production
// input goes through FeedRune, fed by Control (C4) after UTF-8 decoding.
func (p *Parser) Feed(data []byte) []TerminalAction {
	var out []TerminalAction
	for _, c := range data {
		out = p.FeedRune(rune(c), out)
	}
	return out
}

// bypassDuringCollection implements spec.md §4.3's vttest compatibility
// note: CR, BS and VT arriving mid-sequence are handled immediately as
// plain special characters and the parser stays in its current collecting
// state, rather than treating them as (or aborting on) sequence bytes.
func bypassDuringCollection(c rune) (SpecialChar, bool) {
	switch c {
	case 0x0D:
		return CharCR, true
	case 0x08:
		return CharBS, true
	case 0x0B:
		return CharVT, true
	default:
		return 0, false
	}
}

// FeedRune consumes one already-decoded rune, translating it through the
// invoked charset if it is ground-state text, and returns any actions it
// completes, appending them to out.
func (p *Parser) FeedRune(c rune, out []TerminalAction) []TerminalAction {
	if p.state != stGround {
		if sc, ok := bypassDuringCollection(c); ok {
			return append(out, Special(sc))
		}
	}

	switch p.state {
	case stGround:
		return p.feedGround(c, out)
	case stEscape:
		return p.feedEscape(byte(c), out)
	case stCSI:
		return p.feedCSI(byte(c), out)
	case stOSC:
		return p.feedOSC(c, out)
	case stDCS, stAPC:
		return p.feedStringSeq(c, out)
	case stStringEsc:
		return p.feedStringEsc(byte(c), out)
	case stCharsetG0, stCharsetG1, stCharsetG2, stCharsetG3:
		return p.feedCharsetFinal(byte(c), out)
	case stDiscardOne:
		p.state = stGround
		return out
	}
	return out
}

func (p *Parser) feedGround(c rune, out []TerminalAction) []TerminalAction {
	switch c {
	case 0x1B:
		p.state = stEscape
		return out
	case 0x0A:
		return append(out, Special(CharLF))
	case 0x0D:
		return append(out, Special(CharCR))
	case 0x08:
		return append(out, Special(CharBS))
	case 0x09:
		return append(out, Special(CharHT))
	case 0x0B, 0x0C:
		return append(out, Special(CharVT))
	case 0x07:
		return append(out, TerminalAction{Kind: ActBell})
	case 0x0E: // SO: invoke G1
		p.curG = 1
		return append(out, TerminalAction{Kind: ActInvokeCharset, G: 1})
	case 0x0F: // SI: invoke G0
		p.curG = 0
		return append(out, TerminalAction{Kind: ActInvokeCharset, G: 0})
	case 0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06:
		return out // unhandled C0 controls are dropped, not echoed as text
	default:
		if c >= 0x20 && c < 0x7F {
			c = translateCharset(p.g[p.curG], c)
		}
		return append(out, PlainText(string(c)))
	}
}

func (p *Parser) feedEscape(c byte, out []TerminalAction) []TerminalAction {
	switch c {
	case '[':
		p.state = stCSI
		p.params = p.params[:0]
		p.haveParam = false
		p.private = false
	case ']':
		p.state = stOSC
		p.strBuf = p.strBuf[:0]
	case 'P':
		p.state = stDCS
		p.strBuf = p.strBuf[:0]
	case '_':
		p.state = stAPC
		p.strBuf = p.strBuf[:0]
	case '(':
		p.state = stCharsetG0
	case ')':
		p.state = stCharsetG1
	case '*':
		p.state = stCharsetG2
	case '+':
		p.state = stCharsetG3
	case '7':
		p.state = stGround
		return append(out, TerminalAction{Kind: ActSaveCursor})
	case '8':
		p.state = stGround
		return append(out, TerminalAction{Kind: ActRestoreCursor})
	case 'D':
		p.state = stGround
		return append(out, Special(CharLF))
	case 'E':
		p.state = stGround
		return append(out, Special(CharCR), Special(CharLF))
	case 'M':
		p.state = stGround
		return append(out, TerminalAction{Kind: ActReverseIndex})
	case 'H':
		p.state = stGround
		return append(out, TerminalAction{Kind: ActTabSet})
	case 'c':
		p.state = stGround
		return append(out, TerminalAction{Kind: ActFullReset})
	case '=', '>':
		p.state = stGround // keypad application/normal mode: no screen effect
	case '#':
		// DECALN and friends take one more byte; not wired to a screen
		// effect, so just discard it rather than leaking it as text.
		p.state = stDiscardOne
	default:
		p.state = stGround
	}
	return out
}

func (p *Parser) feedCharsetFinal(c byte, out []TerminalAction) []TerminalAction {
	g := map[parserState]int{stCharsetG0: 0, stCharsetG1: 1, stCharsetG2: 2, stCharsetG3: 3}[p.state]
	p.state = stGround
	if cs, ok := charsetFromDesignator(c); ok {
		p.g[g] = cs
		return append(out, TerminalAction{Kind: ActDesignateCharset, G: g, Charset: cs})
	}
	return out
}

func (p *Parser) feedCSI(c byte, out []TerminalAction) []TerminalAction {
	switch {
	case c == '?':
		p.private = true
		return out
	case c >= '0' && c <= '9':
		if !p.haveParam {
			p.params = append(p.params, 0)
			p.haveParam = true
		}
		last := len(p.params) - 1
		p.params[last] = p.params[last]*10 + int(c-'0')
		return out
	case c == ';':
		p.params = append(p.params, 0)
		p.haveParam = false
		return out
	case c >= 0x20 && c <= 0x2F:
		return out // intermediate bytes: not used by any sequence we implement
	case c >= 0x40 && c <= 0x7E:
		p.state = stGround
		return p.dispatchCSI(c, out)
	default:
		p.state = stGround
		return out
	}
}

func (p *Parser) param(i, def int) int {
	if i >= len(p.params) || p.params[i] == 0 {
		return def
	}
	return p.params[i]
}

// isWindowManipReport reports whether a CSI Ps t request is one of the
// query forms (report position/size in pixels or characters, report
// title stack depth) rather than a mutating op (resize/raise/iconify)
// with no host-side answer.
func isWindowManipReport(ps int) bool {
	switch ps {
	case 11, 13, 14, 18, 19, 21:
		return true
	}
	return false
}

func (p *Parser) dispatchCSI(final byte, out []TerminalAction) []TerminalAction {
	params := append([]int{}, p.params...)

	switch final {
	case 'm':
		return append(out, TerminalAction{Kind: ActSetStyle, SGRParams: params})
	case 'A':
		return append(out, TerminalAction{Kind: ActCursorMove, Row: -p.param(0, 1), Col: 0})
	case 'B', 'e':
		return append(out, TerminalAction{Kind: ActCursorMove, Row: p.param(0, 1), Col: 0})
	case 'C', 'a':
		return append(out, TerminalAction{Kind: ActCursorMove, Row: 0, Col: p.param(0, 1)})
	case 'D':
		return append(out, TerminalAction{Kind: ActCursorMove, Row: 0, Col: -p.param(0, 1)})
	case 'G', '`':
		return append(out, TerminalAction{Kind: ActCursorMove, Absolute: true, Row: rowSentinel, Col: p.param(0, 1) - 1})
	case 'd':
		return append(out, TerminalAction{Kind: ActCursorMove, Absolute: true, Row: p.param(0, 1) - 1, Col: colSentinel})
	case 'H', 'f':
		return append(out, TerminalAction{Kind: ActCursorMove, Absolute: true, Row: p.param(0, 1) - 1, Col: p.param(1, 1) - 1})
	case 'J':
		return append(out, TerminalAction{Kind: ActEraseInDisplay, EraseMode: p.param(0, 0)})
	case 'K':
		return append(out, TerminalAction{Kind: ActEraseInLine, EraseMode: p.param(0, 0)})
	case 'L':
		return append(out, TerminalAction{Kind: ActInsertLines, N: p.param(0, 1)})
	case 'M':
		return append(out, TerminalAction{Kind: ActDeleteLines, N: p.param(0, 1)})
	case '@':
		return append(out, TerminalAction{Kind: ActInsertChars, N: p.param(0, 1)})
	case 'P':
		return append(out, TerminalAction{Kind: ActDeleteChars, N: p.param(0, 1)})
	case 'X':
		return append(out, TerminalAction{Kind: ActEraseInLine, EraseMode: 0})
	case 'r':
		top := p.param(0, 1) - 1
		bottomParam := p.param(1, 0)
		bottom := bottomParam - 1
		if bottomParam == 0 {
			bottom = -1
		}
		return append(out, TerminalAction{Kind: ActSetScrollRegion, Row: top, Col: bottom})
	case 's':
		return append(out, TerminalAction{Kind: ActSaveCursor})
	case 'u':
		return append(out, TerminalAction{Kind: ActRestoreCursor})
	case 'h', 'l':
		return p.dispatchMode(final == 'h', out)
	case 'g':
		return append(out, TerminalAction{Kind: ActTabClear, TabClearMode: p.param(0, 0)})
	case 'c':
		if p.OnDeviceQuery != nil {
			p.OnDeviceQuery(final, p.private, params)
		}
	case 'n':
		if p.OnDeviceQuery != nil {
			p.OnDeviceQuery(final, p.private, params)
		}
	case 'i':
		if p.OnMediaCopy != nil {
			p.OnMediaCopy(params)
		}
	case 'q':
		return append(out, TerminalAction{Kind: ActSetCursorStyle, CursorStyle: decscusrName(p.param(0, 0))})
	case 't':
		// Window manipulation (resize/raise/iconify/report): no screen
		// model effect. Report requests (11/13/14/18/19/21) expect a reply on
		// the PTY, so route those through the same query callback DA/DSR
		// use; the mutating ops (resize/raise/iconify) have no host-side
		// answer and are dropped.
		if p.OnDeviceQuery != nil && isWindowManipReport(p.param(0, 0)) {
			p.OnDeviceQuery(final, p.private, params)
		}
	}
	return out
}

// rowSentinel/colSentinel mark "leave this axis alone" in a CursorMove
// absolute action built from a single-axis CSI (CHA/VPA), resolved by the
// interpreter/buffer layer which substitutes the current cursor position.
const (
	rowSentinel = -1 << 30
	colSentinel = -1 << 30
)

func decscusrName(n int) string {
	switch n {
	case 0, 1:
		return "block-blink"
	case 2:
		return "block"
	case 3:
		return "underline-blink"
	case 4:
		return "underline"
	case 5:
		return "bar-blink"
	case 6:
		return "bar"
	default:
		return "block"
	}
}

// dispatchMode maps a CSI h/l (DECSET/DECRST when private, ANSI SM/RM
// otherwise) to SetMode actions for every parameter in the sequence.
func (p *Parser) dispatchMode(on bool, out []TerminalAction) []TerminalAction {
	for _, n := range p.params {
		if m, ok := modeFromParam(p.private, n); ok {
			out = append(out, TerminalAction{Kind: ActSetMode, Mode: m, ModeOn: on})
		}
	}
	return out
}

func modeFromParam(private bool, n int) (Mode, bool) {
	if private {
		switch n {
		case 1:
			return ModeApplicationCursorKeys, true
		case 6:
			return ModeOriginMode, true
		case 7:
			return ModeAutowrap, true
		case 25:
			return ModeCursorVisible, true
		case 47, 1049:
			return ModeAlternateScreen, true
		case 1000:
			return ModeMouseVT200, true
		case 9:
			return ModeMouseX10, true
		case 1006:
			return ModeMouseSGR, true
		case 2004:
			return ModeBracketedPaste, true
		}
		return 0, false
	}
	switch n {
	case 4:
		return ModeInsert, true
	case 12:
		return ModeLocalEcho, true
	case 20:
		return ModeNewLine, true
	}
	return 0, false
}

func (p *Parser) feedOSC(c rune, out []TerminalAction) []TerminalAction {
	if c == 0x07 {
		p.state = stGround
		return p.dispatchOSC(out)
	}
	if c == 0x1B {
		// Might be the start of an ST (ESC \\) terminator (spec.md §4.3);
		// hold off terminating until the next byte confirms it.
		p.pendingTerm = stOSC
		p.state = stStringEsc
		return out
	}
	p.strBuf = utf8.AppendRune(p.strBuf, c)
	return out
}

func (p *Parser) dispatchOSC(out []TerminalAction) []TerminalAction {
	s := string(p.strBuf)
	semi := -1
	for i, c := range s {
		if c == ';' {
			semi = i
			break
		}
	}
	if semi < 0 {
		return out
	}
	code, err := strconv.Atoi(s[:semi])
	if err != nil {
		return out
	}
	payload := s[semi+1:]
	switch code {
	case 0, 2:
		return append(out, TerminalAction{Kind: ActWindowTitle, Text: payload})
	default:
		// Current-directory reports (OSC 7), shell-integration markers
		// (OSC 133 A/B/C/D) and anything else don't mutate the screen
		// model; a registered observer gets the raw code/payload instead.
		if p.OnOSC != nil {
			p.OnOSC(code, payload)
		}
	}
	return out
}

// feedStringSeq accumulates DCS/APC payloads until BEL or a genuine ST
// (ESC \\, confirmed by feedStringEsc). The accumulated payload is handed
// to OnStringSeq rather than interpreted here, the same tmux/screen
// passthrough posture the teacher's apc.go takes toward payloads it
// doesn't itself understand.
func (p *Parser) feedStringSeq(c rune, out []TerminalAction) []TerminalAction {
	if c == 0x07 {
		kind := p.state
		p.state = stGround
		p.dispatchStringSeq(kind)
		return out
	}
	if c == 0x1B {
		// Might be the start of an ST (ESC \\) terminator (spec.md §4.3);
		// hold off terminating until the next byte confirms it.
		p.pendingTerm = p.state
		p.state = stStringEsc
		return out
	}
	p.strBuf = utf8.AppendRune(p.strBuf, c)
	return out
}

// dispatchStringSeq fires OnStringSeq for a completed DCS/APC payload. kind
// is the collecting state (stDCS or stAPC) the sequence was terminated
// from, used only to pick the 'P'/'_' tag OnStringSeq reports.
func (p *Parser) dispatchStringSeq(kind parserState) {
	tag := byte('_')
	if kind == stDCS {
		tag = 'P'
	}
	if p.OnStringSeq != nil {
		p.OnStringSeq(tag, string(p.strBuf))
	}
}

// feedStringEsc is reached after an ESC byte arrives while collecting an
// OSC/DCS/APC payload. A following '\\' confirms a genuine ST terminator
// (spec.md §4.3) and the sequence dispatches normally. Anything else means
// the ESC was the start of a new, unrelated sequence: per spec.md §5, "an
// incomplete sequence interrupted by a new ESC is discarded", so the
// pending payload is dropped and c is re-fed as if it had just followed a
// fresh ESC.
func (p *Parser) feedStringEsc(c byte, out []TerminalAction) []TerminalAction {
	pending := p.pendingTerm
	if c == '\\' {
		p.state = stGround
		if pending == stOSC {
			return p.dispatchOSC(out)
		}
		p.dispatchStringSeq(pending)
		return out
	}
	p.strBuf = p.strBuf[:0]
	p.state = stEscape
	return p.feedEscape(c, out)
}
