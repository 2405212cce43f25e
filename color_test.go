package terminal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplySGRBasicAndBright(t *testing.T) {
	s := ApplySGR(Style{}, []int{1, 32})
	assert.True(t, s.Bold)
	assert.True(t, s.HasFG)
	assert.Equal(t, uint8(2), s.FG)
	assert.False(t, s.FG256)

	s = ApplySGR(s, []int{95})
	assert.Equal(t, uint8(13), s.FG)
	assert.True(t, s.FG256)
}

func TestApplySGR256Color(t *testing.T) {
	s := ApplySGR(Style{}, []int{38, 5, 201})
	assert.True(t, s.HasFG)
	assert.True(t, s.FG256)
	assert.Equal(t, uint8(201), s.FG)
}

func TestApplySGRTrueColor(t *testing.T) {
	s := ApplySGR(Style{}, []int{48, 2, 10, 20, 30})
	assert.True(t, s.HasTrueColorBG)
	assert.Equal(t, uint32(10<<16|20<<8|30), s.TrueColorBG)
}

func TestApplySGRResetClearsEverything(t *testing.T) {
	s := ApplySGR(Style{}, []int{1, 4, 31})
	s = ApplySGR(s, []int{0})
	assert.Equal(t, Style{}, s)
}

func TestApplySGRDefaultForegroundClearsColorOnly(t *testing.T) {
	s := ApplySGR(Style{}, []int{1, 31})
	s = ApplySGR(s, []int{39})
	assert.True(t, s.Bold)
	assert.False(t, s.HasFG)
}
