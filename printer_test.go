package terminal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintSpoolerMediaCopyWithoutBackendStaysInactive(t *testing.T) {
	s := NewPrintSpooler("")
	s.HandleMediaCopy([]int{5}) // start: openPrinter fails on this platform
	assert.Nil(t, s.active)

	s.Write([]byte("should be dropped silently"))
	s.HandleMediaCopy([]int{4}) // stop: no-op, nothing was open
	assert.Nil(t, s.active)
}

func TestPrintSpoolerIgnoresUnrelatedParams(t *testing.T) {
	s := NewPrintSpooler("lp0")
	s.HandleMediaCopy([]int{1, 2, 3})
	assert.Nil(t, s.active)
}
