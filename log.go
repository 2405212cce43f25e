package terminal

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SessionLog is the per-session append-only transcript writer of spec.md
// §4.6 (C6): every byte the child writes to the PTY is appended to a file
// named after the command that was run and the time the session started,
// buffered and flushed whenever a newline is seen so a `tail -f` reader
// sees output promptly without a syscall per byte.
//
// If the log file cannot be opened, logging is permanently suspended for
// the life of the session (not retried), and the reason is retrievable via
// SuspendReason so the caller can surface it once instead of spamming
// retries on every write.
type SessionLog struct {
	w             *bufio.Writer
	f             *os.File
	suspended     bool
	permanent     bool
	suspendReason string
}

// NewSessionLog opens (creating if needed) `<dir>/<urlencoded command>-
// <yyyy-MM-dd-HHmmssZ>.txt` and returns a log writing to it. If dir cannot
// be used, the returned log is permanently suspended and every Write is a
// no-op; callers should still check SuspendReason to inform the user.
func NewSessionLog(dir, command string, start time.Time) *SessionLog {
	name := fmt.Sprintf("%s-%s.txt", url.QueryEscape(command), start.UTC().Format("2006-01-02-150405Z"))
	path := filepath.Join(dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return &SessionLog{permanent: true, suspendReason: err.Error()}
	}
	return &SessionLog{f: f, w: bufio.NewWriter(f)}
}

// Write appends p to the log, flushing once a newline is seen. It never
// returns an error: a failing log must not interrupt the terminal session
// it is recording, per spec.md §7's "logging failures are non-fatal" note.
func (l *SessionLog) Write(p []byte) {
	if l.permanent || l.suspended || l.w == nil {
		return
	}
	l.w.Write(p)
	if strings.ContainsRune(string(p), '\n') {
		l.w.Flush()
	}
}

// Suspend stops writes until Resume is called, for a user-initiated
// "pause logging" toggle.
func (l *SessionLog) Suspend() {
	if l.permanent {
		return
	}
	l.suspended = true
}

// Resume re-enables writes after Suspend, a no-op if logging was
// permanently suspended at open time.
func (l *SessionLog) Resume() {
	if l.permanent {
		return
	}
	l.suspended = false
}

// Suspended reports whether writes are currently being dropped, for either
// reason.
func (l *SessionLog) Suspended() bool { return l.permanent || l.suspended }

// SuspendReason returns why logging is permanently suspended, or "" if it
// isn't (or is only temporarily suspended).
func (l *SessionLog) SuspendReason() string { return l.suspendReason }

// Close flushes and closes the underlying file, a no-op if the log was
// never successfully opened.
func (l *SessionLog) Close() error {
	if l.w == nil {
		return nil
	}
	l.w.Flush()
	return l.f.Close()
}
