package terminal

import (
	"fmt"
	"io"
)

// ExitInfo reports how the child process under the PTY terminated,
// matching the fields spec.md §4.5 requires the forker/reaper thread to
// expose: didExitNormally, exitStatus, wasSignaled, signalNumber,
// didDumpCore.
type ExitInfo struct {
	DidExitNormally bool
	ExitStatus      int
	WasSignaled     bool
	SignalNumber    int
	DidDumpCore     bool
}

// SignalNames maps a POSIX signal number to its conventional name, used to
// resolve the "(NAME)" portion of the connection-loss notice spec.md §4.4
// requires after a signaled child exit. spec.md §4.5 calls this out as "a
// configurable table (name keyed by number)"; callers on platforms whose
// numbering differs may overwrite entries or replace the map wholesale.
var SignalNames = map[int]string{
	1:  "SIGHUP",
	2:  "SIGINT",
	3:  "SIGQUIT",
	4:  "SIGILL",
	5:  "SIGTRAP",
	6:  "SIGABRT",
	7:  "SIGBUS",
	8:  "SIGFPE",
	9:  "SIGKILL",
	10: "SIGUSR1",
	11: "SIGSEGV",
	12: "SIGUSR2",
	13: "SIGPIPE",
	14: "SIGALRM",
	15: "SIGTERM",
	16: "SIGSTKFLT",
	17: "SIGCHLD",
	18: "SIGCONT",
	19: "SIGSTOP",
	20: "SIGTSTP",
	21: "SIGTTIN",
	22: "SIGTTOU",
	23: "SIGURG",
	24: "SIGXCPU",
	25: "SIGXFSZ",
	26: "SIGVTALRM",
	27: "SIGPROF",
	28: "SIGWINCH",
	29: "SIGIO",
	30: "SIGPWR",
	31: "SIGSYS",
}

// signalName resolves n via SignalNames, falling back to a generic label
// for a signal number the table doesn't cover.
func signalName(n int) string {
	if name, ok := SignalNames[n]; ok {
		return name
	}
	return fmt.Sprintf("SIG%d", n)
}

// PTYHost is the C5 PTY-hosting contract: spawn a child under a
// controlling pseudo-terminal, read/write its I/O, resize the terminal
// window, and report how it exited. pty_unix.go implements this over
// github.com/creack/pty; pty_windows.go implements it over
// github.com/ActiveState/termtest/conpty.
type PTYHost interface {
	io.ReadWriteCloser
	Resize(cols, rows int) error
	// Wait blocks until the child exits and returns how.
	Wait() (ExitInfo, error)
}

// SpawnOptions configures a new PTYHost.
type SpawnOptions struct {
	Command    string
	Args       []string
	Env        []string
	Dir        string
	Cols, Rows int
}

// sanitizeEnv scrubs the inherited environment the way spec.md §4.5
// requires: force TERM to this emulator's own terminfo name, and strip
// variables that would otherwise leak the host terminal's identity into
// the child (WINDOWID, COLORTERM, TERM_PROGRAM, TERM_PROGRAM_VERSION).
func sanitizeEnv(env []string) []string {
	drop := map[string]bool{
		"WINDOWID":            true,
		"COLORTERM":           true,
		"TERM_PROGRAM":        true,
		"TERM_PROGRAM_VERSION": true,
	}
	out := make([]string, 0, len(env)+1)
	sawTerm := false
	for _, kv := range env {
		key := kv
		if i := indexByte(kv, '='); i >= 0 {
			key = kv[:i]
		}
		if drop[key] {
			continue
		}
		if key == "TERM" {
			sawTerm = true
			out = append(out, "TERM=terminator")
			continue
		}
		out = append(out, kv)
	}
	if !sawTerm {
		out = append(out, "TERM=terminator")
	}
	return stripMacLauncherVars(out)
}

func indexByte(s string, c byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			return i
		}
	}
	return -1
}
