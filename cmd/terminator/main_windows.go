//go:build windows

package main

import (
	"time"

	terminalcore "github.com/terminatorcore/term"
)

// watchResize polls the host console's size, since Windows consoles have
// no SIGWINCH equivalent to wait on.
func watchResize(sess *terminalcore.Session) {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for range ticker.C {
		resizeSession(sess)
	}
}
