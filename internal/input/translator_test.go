package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateCtrlCQuits(t *testing.T) {
	tr := New(80, 24, 800, 480)
	events := tr.Translate([]byte{0x03}, 0)
	require.Len(t, events, 1)
	assert.Equal(t, EventQuit, events[0].Kind)
}

func TestTranslateCtrlQQuits(t *testing.T) {
	tr := New(80, 24, 800, 480)
	events := tr.Translate([]byte{0x11}, 0)
	require.Len(t, events, 1)
	assert.Equal(t, EventQuit, events[0].Kind)
}

func TestTranslatePlainCharacter(t *testing.T) {
	tr := New(80, 24, 800, 480)
	events := tr.Translate([]byte("q"), 0)
	require.Len(t, events, 1)
	assert.Equal(t, EventKeyboardKey, events[0].Kind)
	assert.Equal(t, Keysym('q'), events[0].Keysym)
	assert.Equal(t, StatePressed, events[0].State)
}

func TestTranslateArrowKeys(t *testing.T) {
	tr := New(80, 24, 800, 480)
	events := tr.Translate([]byte("\x1b[A\x1b[B\x1b[C\x1b[D"), 0)
	require.Len(t, events, 4)
	assert.Equal(t, KeysymUp, events[0].Keysym)
	assert.Equal(t, KeysymDown, events[1].Keysym)
	assert.Equal(t, KeysymRight, events[2].Keysym)
	assert.Equal(t, KeysymLeft, events[3].Keysym)
}

func TestTranslateTildeNavigationKeys(t *testing.T) {
	tr := New(80, 24, 800, 480)
	events := tr.Translate([]byte("\x1b[3~\x1b[5~\x1b[6~"), 0)
	require.Len(t, events, 3)
	assert.Equal(t, KeysymDelete, events[0].Keysym)
	assert.Equal(t, KeysymPageUp, events[1].Keysym)
	assert.Equal(t, KeysymPageDown, events[2].Keysym)
}

// TestCellToPixelIsCellCenter covers the coordinate formula the mouse
// translation depends on: a click on cell (col, row) reports the
// pixel at that cell's center, not its top-left corner.
func TestCellToPixelIsCellCenter(t *testing.T) {
	tr := New(80, 24, 800, 480)
	x, y := tr.cellToPixel(0, 0)
	assert.InDelta(t, 5.0, x, 0.001)  // cellW = 800/80 = 10, center = 5
	assert.InDelta(t, 10.0, y, 0.001) // cellH = 480/24 = 20, center = 10
}

func TestTranslateSGRMousePressAndRelease(t *testing.T) {
	tr := New(80, 24, 800, 480)
	events := tr.Translate([]byte("\x1b[<0;1;1M\x1b[<0;1;1m"), 0)
	require.Len(t, events, 2)
	assert.Equal(t, EventPointerButton, events[0].Kind)
	assert.Equal(t, BtnLeft, events[0].Button)
	assert.Equal(t, StatePressed, events[0].State)
	assert.Equal(t, StateReleased, events[1].State)
}

func TestTranslateSGRMouseMotion(t *testing.T) {
	tr := New(80, 24, 800, 480)
	events := tr.Translate([]byte("\x1b[<32;10;5M"), 0)
	require.Len(t, events, 1)
	assert.Equal(t, EventPointerMotion, events[0].Kind)
}

func TestTranslateSGRMouseScroll(t *testing.T) {
	tr := New(80, 24, 800, 480)
	up := tr.Translate([]byte("\x1b[<64;1;1M"), 0)
	require.Len(t, up, 1)
	assert.Equal(t, EventPointerAxis, up[0].Kind)
	assert.Equal(t, -15.0, up[0].Vertical)

	down := tr.Translate([]byte("\x1b[<65;1;1M"), 0)
	require.Len(t, down, 1)
	assert.Equal(t, 15.0, down[0].Vertical)

	left := tr.Translate([]byte("\x1b[<66;1;1M"), 0)
	require.Len(t, left, 1)
	assert.Equal(t, EventPointerAxis, left[0].Kind)
	assert.Equal(t, -15.0, left[0].Horizontal)
	assert.Equal(t, 0.0, left[0].Vertical)

	right := tr.Translate([]byte("\x1b[<67;1;1M"), 0)
	require.Len(t, right, 1)
	assert.Equal(t, 15.0, right[0].Horizontal)
	assert.Equal(t, 0.0, right[0].Vertical)
}

// TestTranslateSplitEscapeSequence covers a read boundary landing in
// the middle of a CSI sequence: the partial bytes must be buffered
// and completed by the next Translate call rather than dropped.
func TestTranslateSplitEscapeSequence(t *testing.T) {
	tr := New(80, 24, 800, 480)
	first := tr.Translate([]byte("\x1b["), 0)
	assert.Empty(t, first)

	second := tr.Translate([]byte("A"), 0)
	require.Len(t, second, 1)
	assert.Equal(t, KeysymUp, second[0].Keysym)
}

func TestKeysymForRuneASCIIAndUnicode(t *testing.T) {
	assert.Equal(t, Keysym('a'), KeysymForRune('a'))
	assert.Equal(t, unicodeKeysymBase+Keysym(0x00e9), KeysymForRune('é'))
}

func TestToXKBKeycodeKnownAndUnknown(t *testing.T) {
	code, ok := ToXKBKeycode('q')
	require.True(t, ok)
	assert.Equal(t, uint32(16+8), code)

	_, ok = ToXKBKeycode(KeysymF1)
	assert.False(t, ok)
}
