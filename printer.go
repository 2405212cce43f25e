package terminal

// Printer is the DEC print-to-host spooling interface spec.md §6's media
// copy support needs: CSI 5i starts a print job receiving every
// subsequently written byte, CSI 4i ends it and flushes to the OS print
// spooler. Grounded on the teacher's PrintOn/media-copy notes and backed
// for real by github.com/alexbrainman/printer on Windows (printer_windows.go);
// printer_other.go supplies a spoolless stub everywhere else, since the
// teacher itself only ever wired a Windows backend for this feature.
type Printer interface {
	Write(p []byte) (int, error)
	Close() error
}

// PrintSpooler tracks DEC media-copy state for one session: whether a
// print job is currently open, and where to route bytes while it is.
type PrintSpooler struct {
	printerName string
	active      Printer
}

// NewPrintSpooler returns a spooler that opens jobs against the named
// printer (the empty string selects the OS default).
func NewPrintSpooler(printerName string) *PrintSpooler {
	return &PrintSpooler{printerName: printerName}
}

// HandleMediaCopy implements the CSI ... i dispatch Parser.OnMediaCopy
// expects: params containing 5 starts a job, params containing 4 ends one.
func (s *PrintSpooler) HandleMediaCopy(params []int) {
	for _, p := range params {
		switch p {
		case 5:
			s.start()
		case 4:
			s.stop()
		}
	}
}

func (s *PrintSpooler) start() {
	if s.active != nil {
		return
	}
	p, err := openPrinter(s.printerName)
	if err != nil {
		return // media-copy failures are not fatal; the job simply does not open
	}
	s.active = p
}

func (s *PrintSpooler) stop() {
	if s.active == nil {
		return
	}
	s.active.Close()
	s.active = nil
}

// Write routes bytes to the open print job, if any; it is a no-op when no
// job is open, so Session can call it unconditionally on every PTY read.
func (s *PrintSpooler) Write(p []byte) {
	if s.active == nil {
		return
	}
	s.active.Write(p)
}
