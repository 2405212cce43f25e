//go:build windows

package terminal

import (
	"context"
	"fmt"
	"strings"

	"github.com/ActiveState/termtest/conpty"
)

// winPTY implements PTYHost over github.com/ActiveState/termtest/conpty,
// the Windows ConPTY-backed equivalent of the Unix creack/pty path in
// pty_unix.go. conpty.ConPty already serializes process creation and its
// own wait loop internally, so there is no separate dedicated-thread
// requirement to enforce here the way POSIX fork/waitpid needs.
type winPTY struct {
	cp *conpty.ConPty
}

// StartPTY spawns the requested command line under a new ConPTY screen
// buffer of the requested size.
func StartPTY(opts SpawnOptions) (PTYHost, error) {
	cp, err := conpty.New(int16(opts.Cols), int16(opts.Rows))
	if err != nil {
		return nil, newError(EnvironmentFailure, err, "create conpty")
	}

	cmdLine := opts.Command
	if len(opts.Args) > 0 {
		cmdLine = cmdLine + " " + strings.Join(opts.Args, " ")
	}
	if _, _, err := cp.Spawn(cmdLine, opts.Args, &conpty.SpawnOptions{
		Env: sanitizeEnv(opts.Env),
		Dir: opts.Dir,
	}); err != nil {
		cp.Close()
		return nil, newError(ChildStartFailure, err, "spawn %q under conpty", cmdLine)
	}

	return &winPTY{cp: cp}, nil
}

func (w *winPTY) Read(p []byte) (int, error)  { return w.cp.OutputPipe().Read(p) }
func (w *winPTY) Write(p []byte) (int, error) { return w.cp.InPipe().Write(p) }
func (w *winPTY) Close() error                { return w.cp.Close() }

func (w *winPTY) Resize(cols, rows int) error {
	return w.cp.Resize(cols, rows)
}

func (w *winPTY) Wait() (ExitInfo, error) {
	code, err := w.cp.Wait(context.Background())
	if err != nil {
		return ExitInfo{}, fmt.Errorf("conpty wait: %w", err)
	}
	if code == 0 {
		return ExitInfo{DidExitNormally: true}, nil
	}
	return ExitInfo{DidExitNormally: true, ExitStatus: int(code)}, nil
}
