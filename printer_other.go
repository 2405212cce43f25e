//go:build !windows

package terminal

// openPrinter has no OS print-spooler backend outside Windows in this
// module (the teacher only ever wired github.com/alexbrainman/printer,
// which is Windows-only); CSI 5i/4i are recognized everywhere but a print
// job simply never opens on this platform.
func openPrinter(name string) (Printer, error) {
	return nil, newError(EnvironmentFailure, nil, "print-to-host is not supported on this platform")
}
