//go:build windows

package terminal

import "github.com/alexbrainman/printer"

// winPrinter adapts github.com/alexbrainman/printer's raw document writer
// to the Printer interface.
type winPrinter struct {
	p *printer.Printer
}

func openPrinter(name string) (Printer, error) {
	if name == "" {
		var err error
		name, err = printer.Default()
		if err != nil {
			return nil, newError(EnvironmentFailure, err, "no default printer")
		}
	}
	p, err := printer.Open(name)
	if err != nil {
		return nil, newError(EnvironmentFailure, err, "open printer %q", name)
	}
	if err := p.StartDocument("terminator print job", "RAW"); err != nil {
		p.Close()
		return nil, newError(EnvironmentFailure, err, "start print document")
	}
	if err := p.StartPage(); err != nil {
		p.Close()
		return nil, newError(EnvironmentFailure, err, "start print page")
	}
	return &winPrinter{p: p}, nil
}

func (w *winPrinter) Write(p []byte) (int, error) {
	return w.p.Write(p)
}

func (w *winPrinter) Close() error {
	w.p.EndPage()
	w.p.EndDocument()
	return w.p.Close()
}
