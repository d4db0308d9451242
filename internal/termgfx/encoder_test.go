package termgfx

import (
	"bytes"
	"encoding/base64"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDisplayFrameFirstChunkCarriesParameters covers spec.md scenario
// S5: a small RGBA frame encodes to a single chunk containing every
// required parameter and the exact base64 of the input bytes.
func TestDisplayFrameFirstChunkCarriesParameters(t *testing.T) {
	var buf bytes.Buffer
	enc := New(&buf)

	pixels := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x00, 0x11, 0x22, 0x33}
	require.NoError(t, enc.DisplayFrame(2, 1, pixels))

	out := buf.String()
	assert.Contains(t, out, "s=2,v=1")
	assert.Contains(t, out, "f=32")
	assert.Contains(t, out, "m=0")
	assert.Contains(t, out, "3q2+7wARIjM=")
}

// TestDisplayFrameDeletesOnDimensionChange covers the delete-all
// emitted when the displayed size changes between frames.
func TestDisplayFrameDeletesOnDimensionChange(t *testing.T) {
	var buf bytes.Buffer
	enc := New(&buf)

	require.NoError(t, enc.DisplayFrame(2, 2, make([]byte, 2*2*4)))
	firstDeletes := bytesCount(buf.String(), "\x1b_Ga=d;\x1b\\")
	assert.Equal(t, 1, firstDeletes, "first frame always deletes (dimensions change from zero)")

	buf.Reset()
	require.NoError(t, enc.DisplayFrame(2, 2, make([]byte, 2*2*4)))
	assert.Equal(t, 0, bytesCount(buf.String(), "\x1b_Ga=d;\x1b\\"), "same dimensions: no delete")

	buf.Reset()
	require.NoError(t, enc.DisplayFrame(4, 4, make([]byte, 4*4*4)))
	assert.Equal(t, 1, bytesCount(buf.String(), "\x1b_Ga=d;\x1b\\"), "dimension change: one delete")
}

// TestDisplayFrameChunksRoundTrip covers property test #4: a payload
// spanning multiple chunks reproduces the original bytes once every
// chunk's base64 segment is concatenated and decoded, and only the
// last chunk clears the more-chunks flag.
func TestDisplayFrameChunksRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	enc := New(&buf)

	width, height := 64, 64 // 16384 RGBA bytes -> base64 > one 4096-char chunk
	pixels := make([]byte, width*height*4)
	for i := range pixels {
		pixels[i] = byte(i)
	}

	require.NoError(t, enc.DisplayFrame(width, height, pixels))

	re := regexp.MustCompile(`\x1b_G([^;]*);([^\x1b]*)\x1b\\`)
	matches := re.FindAllStringSubmatch(buf.String(), -1)
	require.Greater(t, len(matches), 1, "expected a delete-all plus multiple graphics chunks")

	var payload bytes.Buffer
	var sawFirstGraphicsChunk bool
	var graphicsParams []string
	for _, m := range matches {
		params, chunk := m[1], m[2]
		if params == "a=d" {
			continue
		}
		if !sawFirstGraphicsChunk {
			assert.Contains(t, params, "a=T")
			assert.Contains(t, params, "f=32")
			assert.Contains(t, params, "i=")
			assert.Contains(t, params, "q=2")
			sawFirstGraphicsChunk = true
		}
		graphicsParams = append(graphicsParams, params)
		payload.WriteString(chunk)
	}

	for i, params := range graphicsParams {
		if i == len(graphicsParams)-1 {
			assert.Contains(t, params, "m=0")
		} else {
			assert.Contains(t, params, "m=1")
		}
	}

	decoded, err := base64.StdEncoding.DecodeString(payload.String())
	require.NoError(t, err)
	assert.Equal(t, pixels, decoded)
}

// TestDisplayFrameRejectsMismatchedLength covers the invariant that a
// frame buffer must equal width*height*4.
func TestDisplayFrameRejectsMismatchedLength(t *testing.T) {
	var buf bytes.Buffer
	enc := New(&buf)
	err := enc.DisplayFrame(2, 2, make([]byte, 3))
	assert.Error(t, err)
}

// TestImageIDCyclesWithinRange ensures the per-frame identifier stays
// within [1, 1000] across many frames.
func TestImageIDCyclesWithinRange(t *testing.T) {
	var buf bytes.Buffer
	enc := New(&buf)
	for i := 0; i < 1100; i++ {
		require.NoError(t, enc.DisplayFrame(1, 1, make([]byte, 4)))
		assert.GreaterOrEqual(t, enc.imageID, uint32(1))
		assert.LessOrEqual(t, enc.imageID, uint32(1000))
	}
}

func bytesCount(s, substr string) int {
	return len(regexp.MustCompile(regexp.QuoteMeta(substr)).FindAllString(s, -1))
}
