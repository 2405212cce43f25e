package terminal

import (
	"bytes"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakePTY is an in-memory PTYHost stand-in so Session's wiring can be
// exercised without forking a real child process.
type fakePTY struct {
	mu      sync.Mutex
	toRead  bytes.Buffer
	written bytes.Buffer
	readCh  chan struct{}
	closed  bool
	resized struct{ cols, rows int }
	exit    ExitInfo
	waitCh  chan struct{}
}

func newFakePTY() *fakePTY {
	return &fakePTY{readCh: make(chan struct{}, 1), waitCh: make(chan struct{})}
}

func (f *fakePTY) feed(p []byte) {
	f.mu.Lock()
	f.toRead.Write(p)
	f.mu.Unlock()
	select {
	case f.readCh <- struct{}{}:
	default:
	}
}

func (f *fakePTY) Read(p []byte) (int, error) {
	for {
		f.mu.Lock()
		if f.toRead.Len() > 0 {
			n, _ := f.toRead.Read(p)
			f.mu.Unlock()
			return n, nil
		}
		if f.closed {
			f.mu.Unlock()
			return 0, io.EOF
		}
		f.mu.Unlock()
		<-f.readCh
	}
}

func (f *fakePTY) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.written.Write(p)
}

func (f *fakePTY) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	select {
	case f.readCh <- struct{}{}:
	default:
	}
	return nil
}

func (f *fakePTY) Resize(cols, rows int) error {
	f.mu.Lock()
	f.resized = struct{ cols, rows int }{cols, rows}
	f.mu.Unlock()
	return nil
}

func (f *fakePTY) Wait() (ExitInfo, error) {
	<-f.waitCh
	return f.exit, nil
}

func newTestSession(pty *fakePTY) *Session {
	buf := NewTextBuffer(80, 24, 1000)
	disp := NewUIDispatcher(buf)
	s := &Session{
		pty:     pty,
		disp:    disp,
		buffer:  buf,
		writeCh: make(chan []byte, 256),
		closeCh: make(chan struct{}),
	}
	s.printr = NewPrintSpooler("")
	s.ctrl = NewControl(disp)
	s.ctrl.OnDeviceQuery(s.handleDeviceQuery)
	s.ctrl.OnMediaCopy(s.printr.HandleMediaCopy)

	go s.readLoop()
	go s.writeLoop()
	go s.waitLoop()
	return s
}

func waitForCondition(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestSessionFeedsPTYOutputIntoBuffer(t *testing.T) {
	pty := newFakePTY()
	s := newTestSession(pty)
	defer s.Close()

	pty.feed([]byte("hi"))
	waitForCondition(t, func() bool { return s.Buffer().Lines()[0].CharAt(0) == 'h' })
	assert.Equal(t, 'i', s.Buffer().Lines()[0].CharAt(1))
}

func TestSessionWriteQueuesOntoPTY(t *testing.T) {
	pty := newFakePTY()
	s := newTestSession(pty)
	defer s.Close()

	err := s.Write([]byte("ls\n"))
	assert.NoError(t, err)

	waitForCondition(t, func() bool {
		pty.mu.Lock()
		defer pty.mu.Unlock()
		return pty.written.String() == "ls\n"
	})
}

func TestSessionWriteAfterCloseFails(t *testing.T) {
	pty := newFakePTY()
	s := newTestSession(pty)
	s.Close()

	err := s.Write([]byte("x"))
	assert.Error(t, err)
	assert.True(t, IsKind(err, WriteAfterDeath))
}

func TestSessionResizePropagatesToPTYAndBuffer(t *testing.T) {
	pty := newFakePTY()
	s := newTestSession(pty)
	defer s.Close()

	err := s.Resize(100, 40)
	assert.NoError(t, err)
	assert.Equal(t, 100, s.Buffer().Cols())
	assert.Equal(t, 40, s.Buffer().Rows())

	pty.mu.Lock()
	defer pty.mu.Unlock()
	assert.Equal(t, 100, pty.resized.cols)
	assert.Equal(t, 40, pty.resized.rows)
}

func TestSessionDeviceQueryRepliesOnPTY(t *testing.T) {
	pty := newFakePTY()
	s := newTestSession(pty)
	defer s.Close()

	pty.feed([]byte("\x1b[c"))
	waitForCondition(t, func() bool {
		pty.mu.Lock()
		defer pty.mu.Unlock()
		return pty.written.Len() > 0
	})
	pty.mu.Lock()
	defer pty.mu.Unlock()
	assert.Equal(t, "\x1b[?1;2c", pty.written.String())
}

func TestSessionOnOSCReceivesShellIntegrationMarker(t *testing.T) {
	pty := newFakePTY()
	s := newTestSession(pty)
	defer s.Close()

	var gotCode int
	var gotPayload string
	done := make(chan struct{})
	s.OnOSC(func(code int, payload string) {
		gotCode, gotPayload = code, payload
		close(done)
	})

	pty.feed([]byte("\x1b]133;A\x07"))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("OnOSC callback never fired")
	}
	assert.Equal(t, 133, gotCode)
	assert.Equal(t, "A", gotPayload)
}

func TestSessionOnAPCReceivesDCSPassthrough(t *testing.T) {
	pty := newFakePTY()
	s := newTestSession(pty)
	defer s.Close()

	var gotKind byte
	var gotPayload string
	done := make(chan struct{})
	s.OnAPC(func(kind byte, payload string) {
		gotKind, gotPayload = kind, payload
		close(done)
	})

	pty.feed([]byte("\x1bPtmux;\x07"))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("OnAPC callback never fired")
	}
	assert.Equal(t, byte('P'), gotKind)
	assert.Equal(t, "tmux;", gotPayload)
}

func TestSessionWindowManipReportsSizeInCharacters(t *testing.T) {
	pty := newFakePTY()
	s := newTestSession(pty)
	defer s.Close()

	pty.feed([]byte("\x1b[18t"))
	waitForCondition(t, func() bool {
		pty.mu.Lock()
		defer pty.mu.Unlock()
		return pty.written.Len() > 0
	})
	pty.mu.Lock()
	defer pty.mu.Unlock()
	assert.Equal(t, "\x1b[8;24;80t", pty.written.String())
}

func TestSessionConnectionLostSynthesizesNoticeForNormalExit(t *testing.T) {
	pty := newFakePTY()
	s := newTestSession(pty)
	defer s.Close()

	pty.exit = ExitInfo{DidExitNormally: true, ExitStatus: 2}
	close(pty.waitCh) // child "exits" immediately
	pty.Close()       // PTY read now returns EOF

	waitForCondition(t, func() bool {
		return !s.Buffer().Mode(ModeCursorVisible)
	})
	assert.Contains(t, s.Buffer().Text(), "[Process exited with status 2.]")
}

func TestSessionConnectionLostSynthesizesNoticeForSignaledExit(t *testing.T) {
	pty := newFakePTY()
	s := newTestSession(pty)
	defer s.Close()

	pty.exit = ExitInfo{WasSignaled: true, SignalNumber: 11, DidDumpCore: true}
	close(pty.waitCh)
	pty.Close()

	waitForCondition(t, func() bool {
		return !s.Buffer().Mode(ModeCursorVisible)
	})
	assert.Contains(t, s.Buffer().Text(), "[Process killed by signal 11 (SIGSEGV) --- core dumped]")
}
