package terminal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParserSplitsSequenceAcrossFeeds(t *testing.T) {
	p := NewParser()
	actions := p.Feed([]byte("\x1b[1"))
	assert.Empty(t, actions)

	actions = p.Feed([]byte("0;5H"))
	assert.Len(t, actions, 1)
	assert.Equal(t, ActCursorMove, actions[0].Kind)
	assert.Equal(t, 9, actions[0].Row)
	assert.Equal(t, 4, actions[0].Col)
}

func TestParserBypassesCRDuringCSICollection(t *testing.T) {
	p := NewParser()
	actions := p.Feed([]byte("\x1b[1\r2H"))
	assert.Len(t, actions, 2)
	assert.Equal(t, ActSpecialChar, actions[0].Kind)
	assert.Equal(t, CharCR, actions[0].Char)
	assert.Equal(t, ActCursorMove, actions[1].Kind)
	assert.Equal(t, 11, actions[1].Row)
}

func TestParserDECPrivateModeSet(t *testing.T) {
	p := NewParser()
	actions := p.Feed([]byte("\x1b[?25l"))
	assert.Len(t, actions, 1)
	assert.Equal(t, ActSetMode, actions[0].Kind)
	assert.Equal(t, ModeCursorVisible, actions[0].Mode)
	assert.False(t, actions[0].ModeOn)
}

func TestParserOSCWindowTitle(t *testing.T) {
	p := NewParser()
	actions := p.Feed([]byte("\x1b]0;my title\x07"))
	assert.Len(t, actions, 1)
	assert.Equal(t, ActWindowTitle, actions[0].Kind)
	assert.Equal(t, "my title", actions[0].Text)
}

func TestParserDeviceQueryCallback(t *testing.T) {
	p := NewParser()
	var gotFinal byte
	p.OnDeviceQuery = func(final byte, private bool, params []int) {
		gotFinal = final
	}
	actions := p.Feed([]byte("\x1b[c"))
	assert.Empty(t, actions)
	assert.Equal(t, byte('c'), gotFinal)
}

func TestParserHTSEmitsTabSet(t *testing.T) {
	p := NewParser()
	actions := p.Feed([]byte("\x1bH"))
	assert.Len(t, actions, 1)
	assert.Equal(t, ActTabSet, actions[0].Kind)
}

func TestParserOSCWindowTitleTerminatedByST(t *testing.T) {
	p := NewParser()
	actions := p.Feed([]byte("\x1b]0;hi\x1b\\"))
	assert.Len(t, actions, 1)
	assert.Equal(t, ActWindowTitle, actions[0].Kind)
	assert.Equal(t, "hi", actions[0].Text)
}

func TestParserDCSTerminatedBySTDoesNotLeakBackslash(t *testing.T) {
	p := NewParser()
	var gotKind byte
	var gotPayload string
	p.OnStringSeq = func(kind byte, payload string) {
		gotKind, gotPayload = kind, payload
	}
	actions := p.Feed([]byte("\x1bPtmux;\x1b\\"))
	assert.Empty(t, actions)
	assert.Equal(t, byte('P'), gotKind)
	assert.Equal(t, "tmux;", gotPayload)
}

func TestParserESCDuringOSCAbortsAndStartsFresh(t *testing.T) {
	p := NewParser()
	var gotOSC bool
	p.OnOSC = func(code int, payload string) { gotOSC = true }
	actions := p.Feed([]byte("\x1b]133;A\x1b[1;1H"))
	assert.False(t, gotOSC)
	assert.Len(t, actions, 1)
	assert.Equal(t, ActCursorMove, actions[0].Kind)
}

func TestParserPlainTextPassthrough(t *testing.T) {
	p := NewParser()
	actions := p.Feed([]byte("ab"))
	assert.Len(t, actions, 2)
	assert.Equal(t, "a", actions[0].Text)
	assert.Equal(t, "b", actions[1].Text)
}
