package terminal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestControlDecodesUTF8SplitAcrossChunks(t *testing.T) {
	b := NewTextBuffer(80, 24, 1000)
	ctrl := NewControl(SyncDispatcher{Buffer: b})

	euro := []byte("€") // 3-byte UTF-8 sequence
	ctrl.HandleChunk(euro[:1])
	ctrl.HandleChunk(euro[1:])

	assert.Equal(t, '€', b.Lines()[0].CharAt(0))
}

func TestControlTranslatesDECSpecialGraphicsLive(t *testing.T) {
	b := NewTextBuffer(80, 24, 1000)
	ctrl := NewControl(SyncDispatcher{Buffer: b})

	ctrl.HandleChunk([]byte("\x1b(0"))
	ctrl.HandleChunk([]byte("x"))
	ctrl.HandleChunk([]byte("\x1b(B"))
	ctrl.HandleChunk([]byte("x"))

	assert.Equal(t, '│', b.Lines()[0].CharAt(0))
	assert.Equal(t, 'x', b.Lines()[0].CharAt(1))
}

func TestControlShiftOutShiftIn(t *testing.T) {
	b := NewTextBuffer(80, 24, 1000)
	ctrl := NewControl(SyncDispatcher{Buffer: b})

	ctrl.HandleChunk([]byte("\x1b)0")) // designate G1 as DEC special graphics
	ctrl.HandleChunk([]byte("\x0e"))   // SO: invoke G1
	ctrl.HandleChunk([]byte("q"))
	ctrl.HandleChunk([]byte("\x0f")) // SI: invoke G0 (ASCII)
	ctrl.HandleChunk([]byte("q"))

	assert.Equal(t, '─', b.Lines()[0].CharAt(0))
	assert.Equal(t, 'q', b.Lines()[0].CharAt(1))
}

func TestControlFullResetReinitializesDecodeState(t *testing.T) {
	b := NewTextBuffer(80, 24, 1000)
	ctrl := NewControl(SyncDispatcher{Buffer: b})

	ctrl.HandleChunk([]byte("\x1b(0"))
	ctrl.HandleChunk([]byte("\x1bc")) // RIS
	ctrl.HandleChunk([]byte("q"))

	assert.Equal(t, 'q', b.Lines()[0].CharAt(0))
}
