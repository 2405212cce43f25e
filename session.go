package terminal

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Session wires the PTY host (C5), the interpreter (C4), the screen model
// (C2) and its dispatcher (C7) together into the three-thread concurrency
// model spec.md §5 describes: a reader thread decoding PTY output and
// handing batches to the UI thread, a single writer thread serializing
// outbound bytes, and the forker/reaper thread StartPTY itself owns.
type Session struct {
	pty    PTYHost
	ctrl   *Control
	disp   *UIDispatcher
	buffer *TextBuffer
	log    *SessionLog
	printr *PrintSpooler
	mirror io.Writer

	writeCh   chan []byte
	closeCh   chan struct{}
	closeOnce sync.Once

	exitMu   sync.Mutex
	exitInfo *ExitInfo

	onExit func(ExitInfo)
}

// SessionOptions configures a new Session.
type SessionOptions struct {
	Command    string
	Args       []string
	Env        []string
	Dir        string
	Cols, Rows int

	MaxScrollback int
	LogDir        string // empty disables session logging
	PrinterName   string

	// Mirror, if set, receives every raw byte read from the PTY verbatim,
	// in addition to it being parsed into the screen model. A bare CLI
	// front-end that wants the terminal's own rendering (rather than
	// drawing from Buffer()) wires this to its stdout.
	Mirror io.Writer

	OnExit func(ExitInfo)
}

// NewSession starts the child process under a PTY and begins the reader
// and writer threads. The returned Session owns its TextBuffer exclusively
// through its UIDispatcher; callers read screen state via Buffer().
func NewSession(opts SessionOptions) (*Session, error) {
	cols, rows := opts.Cols, opts.Rows
	if cols <= 0 {
		cols = 80
	}
	if rows <= 0 {
		rows = 24
	}

	host, err := StartPTY(SpawnOptions{
		Command: opts.Command, Args: opts.Args, Env: opts.Env, Dir: opts.Dir,
		Cols: cols, Rows: rows,
	})
	if err != nil {
		return nil, err
	}

	buf := NewTextBuffer(cols, rows, opts.MaxScrollback)
	disp := NewUIDispatcher(buf)

	s := &Session{
		pty:     host,
		disp:    disp,
		buffer:  buf,
		writeCh: make(chan []byte, 256),
		closeCh: make(chan struct{}),
		onExit:  opts.OnExit,
		mirror:  opts.Mirror,
	}

	if opts.LogDir != "" {
		s.log = NewSessionLog(opts.LogDir, opts.Command, time.Now())
	}
	s.printr = NewPrintSpooler(opts.PrinterName)

	s.ctrl = NewControl(disp)
	s.ctrl.OnDeviceQuery(s.handleDeviceQuery)
	s.ctrl.OnMediaCopy(s.printr.HandleMediaCopy)

	go s.readLoop()
	go s.writeLoop()
	go s.waitLoop()

	return s, nil
}

// Buffer returns the session's screen model for read access (rendering,
// selection, clipboard). Mutating it directly would violate the
// single-writer discipline; always go through Write/Resize instead.
func (s *Session) Buffer() *TextBuffer { return s.buffer }

// OnOSC registers a callback for OSC sequences that don't already produce a
// screen mutation: OSC 7 (cwd reports), OSC 133 A/B/C/D (shell-integration
// markers), or any other application-defined code. One callback covers the
// whole surface rather than each code needing its own Session method, per
// spec.md §9's capability-not-inheritance guidance.
func (s *Session) OnOSC(f func(code int, payload string)) {
	s.ctrl.RegisterOSCHandler(f)
}

// OnAPC registers a callback for DCS/APC string sequences, e.g. tmux/screen
// control-passthrough guests running inside the PTY.
func (s *Session) OnAPC(f func(kind byte, payload string)) {
	s.ctrl.RegisterAPCHandler(f)
}

// Write enqueues data for the single writer thread, returning
// WriteAfterDeath if the session has already been torn down, per
// spec.md §4.5/§7.
func (s *Session) Write(p []byte) error {
	select {
	case <-s.closeCh:
		return newError(WriteAfterDeath, nil, "write after session closed")
	default:
	}
	cp := append([]byte{}, p...)
	select {
	case s.writeCh <- cp:
		return nil
	case <-s.closeCh:
		return newError(WriteAfterDeath, nil, "write after session closed")
	}
}

// Resize applies a new window size to both the PTY (TIOCSWINSZ) and the
// screen model, through the same UI-thread dispatch boundary as every
// other mutation so there is no race with in-flight output processing.
func (s *Session) Resize(cols, rows int) error {
	if err := s.pty.Resize(cols, rows); err != nil {
		return err
	}
	s.disp.Dispatch([]TerminalAction{{Kind: ActResize, Row: rows, Col: cols}})
	return nil
}

// readLoop is the reader thread: it blocks on PTY reads, feeds each chunk
// to the interpreter (which dispatches to the UI thread and waits), and
// mirrors the raw bytes to the session log and any open print job.
func (s *Session) readLoop() {
	buf := make([]byte, 4096)
	for {
		n, err := s.pty.Read(buf)
		if n > 0 {
			chunk := append([]byte{}, buf[:n]...)
			if s.log != nil {
				s.log.Write(chunk)
			}
			if s.printr != nil {
				s.printr.Write(chunk)
			}
			if s.mirror != nil {
				s.mirror.Write(chunk)
			}
			s.ctrl.HandleChunk(chunk)
		}
		if err != nil {
			s.handleConnectionLost(err)
			return
		}
	}
}

// writeLoop is the single writer thread spec.md §5 requires: every
// outbound write is serialized through one goroutine so no two writers can
// interleave bytes on the PTY's input side.
func (s *Session) writeLoop() {
	for {
		select {
		case p := <-s.writeCh:
			s.pty.Write(p)
		case <-s.closeCh:
			return
		}
	}
}

// waitLoop blocks for child exit (on the forker/reaper thread StartPTY
// already pinned) and records the result.
func (s *Session) waitLoop() {
	info, _ := s.pty.Wait()
	s.exitMu.Lock()
	s.exitInfo = &info
	s.exitMu.Unlock()
	if s.onExit != nil {
		s.onExit(info)
	}
}

// handleConnectionLost implements spec.md §4.7's connection-loss protocol:
// synthesize an inline notice in the screen buffer and hide the cursor,
// rather than leaving the display silently frozen.
func (s *Session) handleConnectionLost(err error) {
	s.exitMu.Lock()
	info := s.exitInfo
	s.exitMu.Unlock()

	// CR/LF are emitted as Special actions rather than embedded literally in
	// the PlainText, since Write() (unlike the parser's own ground state)
	// does not special-case control characters inside plain text runs.
	detail := connectionLostDetail(info, err)
	notice := "[" + detail + "]"
	s.disp.Dispatch([]TerminalAction{
		Special(CharCR),
		Special(CharLF),
		PlainText(notice),
		Special(CharCR),
		Special(CharLF),
		{Kind: ActSetMode, Mode: ModeCursorVisible, ModeOn: false},
	})
	if s.ctrl.OnConnectionLost != nil {
		s.ctrl.OnConnectionLost(info != nil && info.DidExitNormally, detail)
	}
}

// connectionLostDetail builds the bracketed notice text spec.md §4.4
// requires verbatim: "Process killed by signal N (NAME) --- core dumped"
// for a signaled child (the "--- core dumped" clause only when a core was
// actually produced), or "Process exited with status N." for a normal
// exit. If the reaper thread hasn't recorded an ExitInfo yet (the reader
// observed EOF slightly ahead of waitLoop), falls back to the underlying
// read error, or a generic notice if there is none.
func connectionLostDetail(info *ExitInfo, err error) string {
	switch {
	case info != nil && info.WasSignaled:
		detail := fmt.Sprintf("Process killed by signal %d (%s)", info.SignalNumber, signalName(info.SignalNumber))
		if info.DidDumpCore {
			detail += " --- core dumped"
		}
		return detail
	case info != nil && info.DidExitNormally:
		return fmt.Sprintf("Process exited with status %d.", info.ExitStatus)
	case err != nil && !os.IsTimeout(err):
		return err.Error()
	default:
		return "connection lost"
	}
}

func (s *Session) handleDeviceQuery(final byte, private bool, params []int) {
	switch final {
	case 'c':
		if !private {
			s.Write([]byte("\x1b[?1;2c"))
		}
	case 'n':
		if len(params) > 0 && params[0] == 6 {
			row, col := s.buffer.CursorRowCol()
			s.Write([]byte(fmt.Sprintf("\x1b[%d;%dR", row+1, col+1)))
		} else {
			s.Write([]byte("\x1b[0n"))
		}
	case 't':
		s.handleWindowManipReport(params)
	}
}

// handleWindowManipReport answers CSI Ps t report requests (spec.md's
// window-manipulation supplement) directly on the PTY, the same way
// cursor-position and device-attribute queries are answered, rather than
// surfacing them as a TerminalAction: the reply reports the screen model's
// current size and produces no screen mutation. Pixel sizes assume 8x16
// cells; position and title reports are fixed replies.
func (s *Session) handleWindowManipReport(params []int) {
	ps := 0
	if len(params) > 0 {
		ps = params[0]
	}
	cols, rows := s.buffer.Cols(), s.buffer.Rows()
	switch ps {
	case 11:
		s.Write([]byte("\x1b[1t")) // not iconified
	case 13:
		s.Write([]byte("\x1b[3;0;0t")) // report window position
	case 14:
		s.Write([]byte(fmt.Sprintf("\x1b[4;%d;%dt", rows*16, cols*8))) // size in pixels, assumed cell metrics
	case 18:
		s.Write([]byte(fmt.Sprintf("\x1b[8;%d;%dt", rows, cols))) // size in characters
	case 19:
		s.Write([]byte(fmt.Sprintf("\x1b[9;%d;%dt", rows, cols))) // screen size in characters
	case 21:
		s.Write([]byte("\x1b]l\x1b\\")) // report title (empty)
	}
}

// Close tears down the writer/reader goroutines and the underlying PTY.
// Any output already in flight is allowed to finish dispatching first.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		close(s.closeCh)
		s.pty.Close()
		s.disp.Close()
		if s.log != nil {
			s.log.Close()
		}
	})
	return nil
}

// ExitInfo returns the child's exit status, or nil if it hasn't exited
// yet.
func (s *Session) ExitInfo() *ExitInfo {
	s.exitMu.Lock()
	defer s.exitMu.Unlock()
	return s.exitInfo
}
