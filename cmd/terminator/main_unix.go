//go:build !windows

package main

import (
	"os"
	"os/signal"
	"syscall"

	terminalcore "github.com/terminatorcore/term"
)

// watchResize re-applies the host terminal's size to the session whenever
// SIGWINCH arrives.
func watchResize(sess *terminalcore.Session) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGWINCH)
	for range ch {
		resizeSession(sess)
	}
}
