// Command terminator is a minimal terminal host built on the terminatorcore
// screen model and PTY layer: it puts the controlling tty into raw mode,
// spawns the requested command under a fresh pseudo-terminal, and pipes
// bytes in both directions while the package's own parser/interpreter/
// screen-model stack keeps score of the session's state. It exists to
// exercise the core package end to end, not as a full-featured emulator
// front-end (spec.md's Non-goals exclude a GUI).
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	terminalcore "github.com/terminatorcore/term"
)

const usage = `usage: terminator [options] [[-n name] [--working-directory dir] command]

options:
  -h, --help                 show this help and exit
  -v, --version              show version and exit
  -n NAME                    set the session title to NAME (applies to the
                              next command, then resets)
  --working-directory DIR    start the next command in DIR (applies to the
                              next command, then resets)
  -xrm RESOURCE               apply one X-resource-style setting line,
                              e.g. -xrm 'Terminator*fontsize: 16'

Only one command is hosted per process invocation: spec.md §6's "each
positional command spawns one tab" describes the windowed front-end this
core package has no part of; this driver exercises a single session.
`

const version = "terminator 1.0.0"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "terminator:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	settings := terminalcore.DefaultSettings()
	dir := ""
	title := ""
	var command []string

	for i := 0; i < len(args); i++ {
		switch a := args[i]; a {
		case "-h", "--help":
			fmt.Print(usage)
			return nil
		case "-v", "--version":
			fmt.Println(version)
			return nil
		case "-n":
			i++
			if i >= len(args) {
				return fmt.Errorf("%s requires an argument", a)
			}
			title = args[i]
		case "--working-directory":
			i++
			if i >= len(args) {
				return fmt.Errorf("%s requires an argument", a)
			}
			dir = args[i]
		case "-xrm":
			i++
			if i >= len(args) {
				return fmt.Errorf("-xrm requires an argument")
			}
			if err := settings.ParseResources(strings.NewReader(args[i])); err != nil {
				return err
			}
		case "--":
			command = args[i+1:]
			i = len(args)
		default:
			command = args[i:]
			i = len(args)
		}
	}

	if len(command) == 0 {
		shell := os.Getenv("SHELL")
		if shell == "" {
			shell = "/bin/sh"
		}
		command = []string{shell}
	}

	return hostSession(settings, dir, title, command)
}

func hostSession(settings terminalcore.Settings, dir, title string, command []string) error {
	cols, rows := settings.InitialColumnCount, settings.InitialRowCount
	if isatty.IsTerminal(os.Stdout.Fd()) {
		if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			cols, rows = w, h
		}
	}

	var restore func()
	if isatty.IsTerminal(os.Stdin.Fd()) {
		state, err := term.MakeRaw(int(os.Stdin.Fd()))
		if err == nil {
			restore = func() { term.Restore(int(os.Stdin.Fd()), state) }
			defer restore()
		}
	}

	exited := make(chan terminalcore.ExitInfo, 1)
	sess, err := terminalcore.NewSession(terminalcore.SessionOptions{
		Command:       command[0],
		Args:          command[1:],
		Env:           os.Environ(),
		Dir:           dir,
		Cols:          cols,
		Rows:          rows,
		MaxScrollback: settings.MaxScrollback,
		Mirror:        os.Stdout,
		OnExit:        func(info terminalcore.ExitInfo) { exited <- info },
	})
	if err != nil {
		return err
	}
	defer sess.Close()

	if title != "" {
		setHostTitle(title)
	}
	sess.Buffer().SetOnTitle(setHostTitle)

	go copyStdinToSession(sess)
	go watchResize(sess)

	<-exited
	return nil
}

// setHostTitle forwards a window-title change to the host terminal via the
// same OSC 0 sequence the child would have sent, so -n's initial title and
// any later WindowTitle action from the child both reach the real terminal
// this process is itself running inside.
func setHostTitle(title string) {
	fmt.Fprintf(os.Stdout, "\x1b]0;%s\x07", title)
}

// copyStdinToSession forwards the host tty's stdin to the child over the
// session's single writer thread.
func copyStdinToSession(sess *terminalcore.Session) {
	buf := make([]byte, 4096)
	for {
		n, err := os.Stdin.Read(buf)
		if n > 0 {
			sess.Write(buf[:n])
		}
		if err != nil {
			return
		}
	}
}

// resizeSession re-applies the host terminal's current size to sess; the
// platform-specific watchResize in main_unix.go/main_windows.go decides
// when to call it.
func resizeSession(sess *terminalcore.Session) {
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		sess.Resize(w, h)
	}
}
