package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func xrgbPixel(b, g, r, a byte) []byte { return []byte{b, g, r, a} }

func TestCaptureXRGB8888SwapsChannelsAndPacksTight(t *testing.T) {
	// A 2x1 buffer with stride 16 (8 bytes of real pixel data, 8 bytes
	// of padding per row) to prove the output is tightly packed
	// regardless of the source stride.
	stride := 16
	pool := make([]byte, stride)
	copy(pool[0:4], xrgbPixel(0x10, 0x20, 0x30, 0xff))
	copy(pool[4:8], xrgbPixel(0x40, 0x50, 0x60, 0x00))

	frame, err := CaptureXRGB8888(pool, 0, 2, 1, stride)
	require.NoError(t, err)
	assert.Equal(t, 2, frame.Width)
	assert.Equal(t, 1, frame.Height)
	assert.Equal(t, []byte{0x30, 0x20, 0x10, 0xff, 0x60, 0x50, 0x40, 0x00}, frame.Data)
}

func TestCaptureXRGB8888RejectsOutOfBounds(t *testing.T) {
	pool := make([]byte, 10)
	_, err := CaptureXRGB8888(pool, 0, 4, 4, 16)
	assert.Error(t, err)
}

func TestCaptureXRGB8888HonorsOffset(t *testing.T) {
	stride := 4
	pool := make([]byte, stride*3)
	copy(pool[stride:stride+4], xrgbPixel(0xAA, 0xBB, 0xCC, 0xDD))

	frame, err := CaptureXRGB8888(pool, stride, 1, 1, stride)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xCC, 0xBB, 0xAA, 0xDD}, frame.Data)
}

func TestPendingSlotMostRecentWins(t *testing.T) {
	var slot PendingSlot
	_, ok := slot.Take()
	assert.False(t, ok)

	slot.Store(&PixelFrame{Width: 1, Height: 1, Data: []byte{1, 2, 3, 4}})
	slot.Store(&PixelFrame{Width: 2, Height: 2, Data: []byte{5, 6, 7, 8}})

	frame, ok := slot.Take()
	require.True(t, ok)
	assert.Equal(t, 2, frame.Width)

	_, ok = slot.Take()
	assert.False(t, ok, "slot is empty after Take")
}
