package terminal

import "unicode/utf8"

// Dispatcher hands a batch of actions to the screen model and blocks until
// it has been applied, the "apply and wait" rendezvous of spec.md §4.7/§9
// that confines all TextBuffer mutation to a single thread. dispatch.go's
// Dispatch implements this over a bounded queue; tests may supply a trivial
// synchronous implementation.
type Dispatcher interface {
	Dispatch(batch []TerminalAction)
}

// Control is the interpreter (C4): it decodes the raw PTY byte stream as
// UTF-8, carrying partial multi-byte sequences across reads, hands decoded
// runes to Parser (C3) for escape recognition and charset translation, and
// hands the resulting action batch to a Dispatcher for synchronous
// application to the screen model. Grounded on the teacher's handleOutput
// loop in output.go, split here into a dedicated type instead of a Terminal
// method so it has no Fyne/widget dependency.
type Control struct {
	parser *Parser

	pending []byte // undecoded UTF-8 continuation bytes held across reads

	dispatcher Dispatcher

	// OnConnectionLost is invoked once when the PTY signals EOF or a
	// non-normal child exit, per spec.md §4.7's connection-loss protocol:
	// the interpreter synthesizes an inline notice and hides the cursor
	// rather than silently going quiet.
	OnConnectionLost func(normalExit bool, detail string)

	// Registered observer callbacks, held here (not just on the live
	// Parser) so Reset's fresh Parser can be rewired to them: RIS (ESC c)
	// must not silently drop a caller's DA/DSR, OSC, or APC registration.
	onDeviceQuery func(final byte, private bool, params []int)
	onMediaCopy   func(params []int)
	onOSC         func(code int, payload string)
	onStringSeq   func(kind byte, payload string)
}

// NewControl builds an interpreter that designates G0 as ASCII and feeds
// completed action batches to d.
func NewControl(d Dispatcher) *Control {
	c := &Control{
		parser:     NewParser(),
		dispatcher: d,
	}
	c.wireParser()
	return c
}

func (c *Control) wireParser() {
	c.parser.OnDeviceQuery = c.onDeviceQuery
	c.parser.OnMediaCopy = c.onMediaCopy
	c.parser.OnOSC = c.onOSC
	c.parser.OnStringSeq = c.onStringSeq
}

// OnDeviceQuery lets Session observe DA ('c') / DSR ('n') queries that need
// a reply written back to the PTY.
func (c *Control) OnDeviceQuery(f func(final byte, private bool, params []int)) {
	c.onDeviceQuery = f
	c.parser.OnDeviceQuery = f
}

// OnMediaCopy lets Session observe CSI 5i/4i (print-to-host start/stop).
func (c *Control) OnMediaCopy(f func(params []int)) {
	c.onMediaCopy = f
	c.parser.OnMediaCopy = f
}

// RegisterOSCHandler lets a caller observe OSC sequences spec.md's core
// doesn't turn into a TerminalAction itself: OSC 7 (cwd reports), OSC 133
// A/B/C/D (shell-integration markers), or any other application-defined
// code.
func (c *Control) RegisterOSCHandler(f func(code int, payload string)) {
	c.onOSC = f
	c.parser.OnOSC = f
}

// RegisterAPCHandler lets a caller observe DCS ('P') and APC ('_') string
// sequences once they terminate, e.g. for tmux/screen control-passthrough
// guests running inside the PTY.
func (c *Control) RegisterAPCHandler(f func(kind byte, payload string)) {
	c.onStringSeq = f
	c.parser.OnStringSeq = f
}

// HandleChunk decodes one PTY read, translates charset-designated runes,
// recognizes escape structure, and dispatches the resulting action batch.
// It is meant to be called from the single reader thread of spec.md §5;
// Dispatch blocks until C2 has applied the batch, giving the synchronous
// "apply and wait" handoff spec.md §9 calls for.
func (c *Control) HandleChunk(data []byte) {
	buf := data
	if len(c.pending) > 0 {
		buf = append(append([]byte{}, c.pending...), data...)
		c.pending = nil
	}

	var batch []TerminalAction
	for len(buf) > 0 {
		r, size := utf8.DecodeRune(buf)
		if r == utf8.RuneError && size <= 1 {
			if !utf8.FullRune(buf) && len(buf) < utf8.UTFMax {
				c.pending = append([]byte{}, buf...)
				break
			}
			// Genuinely invalid byte: consume it as a replacement glyph so
			// a corrupt stream cannot wedge decoding forever.
			buf = buf[1:]
			batch = c.parser.FeedRune(0xFFFD, batch)
			continue
		}
		buf = buf[size:]
		batch = c.parser.FeedRune(r, batch)
	}

	for _, a := range batch {
		if a.Kind == ActFullReset {
			c.Reset()
		}
	}

	if len(batch) > 0 && c.dispatcher != nil {
		c.dispatcher.Dispatch(batch)
	}
}

// Reset reinitializes decode-time charset state, used after RIS (ESC c).
// Parser owns G0-G3/GL translation state directly (spec.md §4.3/§4.4), so a
// fresh Parser is sufficient to restore power-on defaults.
func (c *Control) Reset() {
	c.pending = nil
	c.parser = NewParser()
	c.wireParser()
}
