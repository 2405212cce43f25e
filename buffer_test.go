package terminal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func feedAll(b *TextBuffer, p *Parser, s string) {
	b.ApplyBatch(p.Feed([]byte(s)))
}

func TestWritePlainTextAdvancesCursorAcrossCRLF(t *testing.T) {
	b := NewTextBuffer(80, 24, 1000)
	p := NewParser()

	feedAll(b, p, "hello\r\nworld")

	assert.Equal(t, "hello", b.Lines()[0].DisplayString()[:5])
	assert.Equal(t, "world", b.Lines()[1].DisplayString()[:5])
	row, col := b.CursorRowCol()
	assert.Equal(t, 1, row)
	assert.Equal(t, 5, col)
}

func TestWideRuneOccupiesTwoColumns(t *testing.T) {
	b := NewTextBuffer(10, 5, 1000)
	ctrl := NewControl(SyncDispatcher{Buffer: b})

	ctrl.HandleChunk([]byte("世X")) // a CJK wide character followed by an ASCII one

	line := b.Lines()[0]
	assert.Equal(t, '世', line.CharAt(0))
	assert.Equal(t, WideContinue, line.CharAt(1))
	assert.Equal(t, 'X', line.CharAt(2))
	assert.Equal(t, "世 X", string([]rune(line.DisplayString())[:3]))

	_, col := b.CursorRowCol()
	assert.Equal(t, 3, col)
}

func TestWideRuneAtLastColumnWrapsWhole(t *testing.T) {
	b := NewTextBuffer(4, 3, 1000)
	ctrl := NewControl(SyncDispatcher{Buffer: b})

	ctrl.HandleChunk([]byte("abc世"))

	first := b.Lines()[0]
	assert.Equal(t, "abc ", first.DisplayString())
	second := b.Lines()[1]
	assert.Equal(t, '世', second.CharAt(0))
	assert.Equal(t, WideContinue, second.CharAt(1))
}

func TestCursorBackAndOverwrite(t *testing.T) {
	b := NewTextBuffer(80, 24, 1000)
	p := NewParser()

	feedAll(b, p, "abc\x1b[2Ddef")

	assert.Equal(t, "adef", b.Lines()[0].DisplayString()[:4])
	row, col := b.CursorRowCol()
	assert.Equal(t, 0, row)
	assert.Equal(t, 4, col)
}

func TestSGRColorAndReset(t *testing.T) {
	b := NewTextBuffer(80, 24, 1000)
	p := NewParser()

	feedAll(b, p, "\x1b[31mred\x1b[0mplain")

	line := b.Lines()[0]
	redStyle := line.StyleAt(0)
	assert.True(t, redStyle.HasFG)
	assert.Equal(t, uint8(1), redStyle.FG)

	plainStyle := line.StyleAt(6)
	assert.False(t, plainStyle.HasFG)
}

func TestScrollRegionConfinesScrolling(t *testing.T) {
	b := NewTextBuffer(10, 5, 1000)
	p := NewParser()

	// Confine scrolling to rows 2-4 (1-based), fill it, then overflow by one
	// line and confirm row 0 (outside the region) is untouched.
	feedAll(b, p, "\x1b[2;4r")
	feedAll(b, p, "\x1b[1;1Htop")
	feedAll(b, p, "\x1b[2;1Hline2\r\nline3\r\nline4\r\nline5")

	assert.Equal(t, "top", b.Lines()[0].DisplayString()[:3])
}

func TestSaveRestoreCursor(t *testing.T) {
	b := NewTextBuffer(80, 24, 1000)
	p := NewParser()

	feedAll(b, p, "\x1b[10;10H\x1b7\x1b[1;1Hhi\x1b8X")

	row, col := b.CursorRowCol()
	assert.Equal(t, 9, row)
	assert.Equal(t, 10, col)
	assert.Equal(t, byte('X'), byte(b.Lines()[9].CharAt(9)))
}

func TestDECSpecialGraphicsLineDrawing(t *testing.T) {
	b := NewTextBuffer(80, 24, 1000)
	ctrl := NewControl(SyncDispatcher{Buffer: b})

	ctrl.HandleChunk([]byte("\x1b(0" + "q" + "\x1b(B"))

	assert.Equal(t, '─', b.Lines()[0].CharAt(0))
}

func TestDECSpecialGraphicsBoxDrawingScenario(t *testing.T) {
	b := NewTextBuffer(80, 24, 1000)
	ctrl := NewControl(SyncDispatcher{Buffer: b})

	ctrl.HandleChunk([]byte("\x1b(0lqk\x1b(B"))

	assert.Equal(t, '┌', b.Lines()[0].CharAt(0))
	assert.Equal(t, '─', b.Lines()[0].CharAt(1))
	assert.Equal(t, '┐', b.Lines()[0].CharAt(2))
}

func TestEraseInDisplayLeavesScrollbackIntact(t *testing.T) {
	b := NewTextBuffer(10, 3, 1000)
	p := NewParser()

	for i := 0; i < 10; i++ {
		feedAll(b, p, "row\r\n")
	}
	before := len(b.Scrollback())
	assert.Greater(t, before, 0)

	feedAll(b, p, "\x1b[2J")
	assert.Equal(t, before, len(b.Scrollback()))
	assert.Equal(t, "          ", b.Lines()[0].DisplayString())
}

func TestAlternateScreenHasNoScrollback(t *testing.T) {
	b := NewTextBuffer(10, 3, 1000)
	p := NewParser()

	feedAll(b, p, "\x1b[?1049h")
	for i := 0; i < 10; i++ {
		feedAll(b, p, "row\r\n")
	}
	feedAll(b, p, "\x1b[?1049l")

	assert.Equal(t, 0, len(b.Scrollback()))
}

func TestResizeClampsCursorAndResetsRegion(t *testing.T) {
	b := NewTextBuffer(80, 24, 1000)
	b.CursorMove(true, 20, 70)
	b.SetScrollRegion(5, 10)

	b.SizeChanged(40, 10)

	row, col := b.CursorRowCol()
	assert.Less(t, row, 10)
	assert.Less(t, col, 40)
	assert.Equal(t, 0, b.scrollTop)
	assert.Equal(t, 9, b.scrollBottom)
}

func TestTabRunInsertAndOverwrite(t *testing.T) {
	l := NewLine()
	l.WriteTab(0, 8, DefaultStyle)
	assert.Equal(t, 8, l.Length())
	assert.Equal(t, TabStart, l.CharAt(0))
	for i := 1; i < 8; i++ {
		assert.Equal(t, TabContinue, l.CharAt(i))
	}
	assert.Equal(t, "\t", l.ClipboardString(0, 8))

	l.WriteText(2, "x", DefaultStyle)
	assert.Equal(t, TabStart, l.CharAt(3))
}
