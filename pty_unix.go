//go:build !windows

package terminal

import (
	"os"
	"os/exec"
	"runtime"
	"syscall"

	"github.com/creack/pty"
)

// unixPTY implements PTYHost over github.com/creack/pty, grounded on the
// teacher's startPTY/updatePTYSize in term_unix.go.
type unixPTY struct {
	cmd    *exec.Cmd
	master *os.File

	exitCh chan ExitInfo
	errCh  chan error
}

// StartPTY forks the requested command under a new pseudo-terminal. Per
// spec.md §4.5, the fork/exec and the later waitpid must happen on the
// same dedicated OS thread, so both run inside one goroutine pinned with
// runtime.LockOSThread; the result (or start error) comes back over a
// channel so the caller is not blocked waiting for the child to exit.
func StartPTY(opts SpawnOptions) (PTYHost, error) {
	cmd := exec.Command(opts.Command, opts.Args...)
	cmd.Dir = opts.Dir
	cmd.Env = sanitizeEnv(opts.Env)

	started := make(chan error, 1)
	u := &unixPTY{
		exitCh: make(chan ExitInfo, 1),
		errCh:  make(chan error, 1),
	}

	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		master, err := pty.StartWithSize(cmd, &pty.Winsize{
			Rows: uint16(opts.Rows), Cols: uint16(opts.Cols),
		})
		if err != nil {
			started <- err
			return
		}
		u.master = master
		u.cmd = cmd
		started <- nil

		waitErr := cmd.Wait()
		u.exitCh <- exitInfoFromErr(waitErr)
	}()

	if err := <-started; err != nil {
		return nil, newError(ChildStartFailure, err, "start %q under pty", opts.Command)
	}
	return u, nil
}

func exitInfoFromErr(err error) ExitInfo {
	if err == nil {
		return ExitInfo{DidExitNormally: true, ExitStatus: 0}
	}
	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		return ExitInfo{}
	}
	status, ok := exitErr.Sys().(syscall.WaitStatus)
	if !ok {
		return ExitInfo{}
	}
	info := ExitInfo{}
	switch {
	case status.Exited():
		info.DidExitNormally = true
		info.ExitStatus = status.ExitStatus()
	case status.Signaled():
		info.WasSignaled = true
		info.SignalNumber = int(status.Signal())
		info.DidDumpCore = status.CoreDump()
	}
	return info
}

func (u *unixPTY) Read(p []byte) (int, error)  { return u.master.Read(p) }
func (u *unixPTY) Write(p []byte) (int, error) { return u.master.Write(p) }
func (u *unixPTY) Close() error                { return u.master.Close() }

// Resize applies a new window size via TIOCSWINSZ, per spec.md §4.5.
func (u *unixPTY) Resize(cols, rows int) error {
	return pty.Setsize(u.master, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
}

// Wait blocks until the child has been reaped and reports how it exited.
func (u *unixPTY) Wait() (ExitInfo, error) {
	info := <-u.exitCh
	return info, nil
}
