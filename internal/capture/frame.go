// Package capture implements frame capture (C4): reading a client's
// shared-memory buffer into a tightly packed RGBA frame, and the
// single-slot handoff between the compositor's commit handler and the
// frame-timer callback that actually encodes it.
package capture

import "fmt"

// PixelFrame is a fully decoded, tightly packed RGBA frame ready for
// the image encoder: 4 bytes per pixel, row-major, no padding.
type PixelFrame struct {
	Width  int
	Height int
	Data   []byte
}

// CaptureXRGB8888 reads a width x height region out of an shm pool
// buffer encoded as XRGB8888 (bytes B, G, R, X per pixel,
// little-endian) starting at offset with the given row stride, and
// returns it as a tightly packed RGBA frame. The fourth (X) byte is
// carried through as the alpha channel verbatim, matching what the
// source buffer actually contains rather than forcing opacity.
func CaptureXRGB8888(pool []byte, offset, width, height, stride int) (*PixelFrame, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("capture: invalid dimensions %dx%d", width, height)
	}
	bufferSize := height * stride
	if offset < 0 || offset+bufferSize > len(pool) {
		return nil, fmt.Errorf("capture: buffer extends beyond pool (offset=%d size=%d pool=%d)", offset, bufferSize, len(pool))
	}

	base := pool[offset:]
	rgba := make([]byte, width*height*4)
	for y := 0; y < height; y++ {
		rowStart := y * stride
		for x := 0; x < width; x++ {
			pixelOffset := rowStart + x*4
			if pixelOffset+4 > bufferSize {
				continue
			}
			b := base[pixelOffset]
			g := base[pixelOffset+1]
			r := base[pixelOffset+2]
			a := base[pixelOffset+3]

			dst := (y*width + x) * 4
			rgba[dst] = r
			rgba[dst+1] = g
			rgba[dst+2] = b
			rgba[dst+3] = a
		}
	}
	return &PixelFrame{Width: width, Height: height, Data: rgba}, nil
}
