package terminal

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseColorHexAndNames(t *testing.T) {
	c, err := ParseColor("#112233")
	assert.NoError(t, err)
	assert.Equal(t, RGB{0x11, 0x22, 0x33}, c)

	c, err = ParseColor("brightred")
	assert.NoError(t, err)
	assert.Equal(t, RGB{0xFF, 0x00, 0x00}, c)

	_, err = ParseColor("not-a-color")
	assert.Error(t, err)
}

func TestParseResourcesAppliesRecognizedKeys(t *testing.T) {
	s := DefaultSettings()
	src := strings.NewReader(`
! a comment
# another comment
Terminator*initialColumnCount: 100
Terminator.initialRowCount: 40
foreground: #aabbcc
antialias: true
unknownkey: whatever
`)
	err := s.ParseResources(src)
	assert.NoError(t, err)
	assert.Equal(t, 100, s.InitialColumnCount)
	assert.Equal(t, 40, s.InitialRowCount)
	assert.Equal(t, RGB{0xaa, 0xbb, 0xcc}, s.Foreground)
	assert.True(t, s.AntiAlias)
}

func TestParseResourcesRejectsMalformedValue(t *testing.T) {
	s := DefaultSettings()
	err := s.ParseResources(strings.NewReader("initialColumnCount: not-a-number\n"))
	assert.Error(t, err)
}

func TestColorBDDefaultsByBrighteningForeground(t *testing.T) {
	s := DefaultSettings()
	s.Foreground = RGB{0x10, 0x20, 0x30}
	err := s.ParseResources(strings.NewReader("background: #000000\n"))
	assert.NoError(t, err)
	assert.False(t, s.HasColorBD)
	assert.Equal(t, RGB{0x10 + 85, 0x20 + 85, 0x30 + 85}, s.ColorBD)
}

func TestColorBDMatchesBasePaletteUsesBrightCounterpart(t *testing.T) {
	s := DefaultSettings()
	s.Foreground = s.Color1
	err := s.ParseResources(strings.NewReader("background: #000000\n"))
	assert.NoError(t, err)
	assert.False(t, s.HasColorBD)
	assert.Equal(t, brightPalette[1], s.ColorBD)
}

func TestColorBDExplicitValueWins(t *testing.T) {
	s := DefaultSettings()
	err := s.ParseResources(strings.NewReader("colorbd: #ff0000\n"))
	assert.NoError(t, err)
	assert.True(t, s.HasColorBD)
	assert.Equal(t, RGB{0xff, 0x00, 0x00}, s.ColorBD)
}
