// Package termgfx implements the image-transmission encoder (C1): it
// turns a captured RGBA pixel array into the terminal graphics escape
// sequence (the kitty graphics protocol) that actually paints it,
// handling scale-to-fit, chunking, and stable per-frame replacement.
//
// Framing is grounded on the kitty action/format vocabulary the
// danielgatis-go-headless-term package's kitty.go enumerates for the
// decode side; the scale/chunk/replace algorithm itself follows
// spec.md §4.1.
package termgfx

import (
	"encoding/base64"
	"fmt"
	"image"
	"io"

	"golang.org/x/image/draw"

	"github.com/vanpelt/termui/internal/config"
)

// Encoder renders successive RGBA frames to a writer (ordinarily
// os.Stdout) using the kitty graphics protocol, tracking enough state
// across calls to replace rather than accumulate images.
type Encoder struct {
	out io.Writer

	imageID    uint32
	lastWidth  int
	lastHeight int
}

// New creates an Encoder writing to out. The first frame always emits
// a delete-all because lastWidth/lastHeight start at zero.
func New(out io.Writer) *Encoder {
	return &Encoder{
		out:     out,
		imageID: config.FrameImageIDMin,
	}
}

// DisplayFrame renders width x height RGBA pixels (4 bytes/pixel,
// row-major, tightly packed) so they fully replace whatever was
// previously displayed at the terminal's top-left, per spec.md §4.1.
func (e *Encoder) DisplayFrame(width, height int, rgba []byte) error {
	if len(rgba) != width*height*4 {
		return fmt.Errorf("termgfx: frame buffer length %d does not match %dx%d RGBA", len(rgba), width, height)
	}

	outWidth, outHeight, outPixels := width, height, rgba
	if width > config.ImageCeilingWidth || height > config.ImageCeilingHeight {
		outWidth, outHeight, outPixels = scaleToFit(width, height, rgba, config.ImageCeilingWidth, config.ImageCeilingHeight)
	}

	if outWidth != e.lastWidth || outHeight != e.lastHeight {
		if _, err := io.WriteString(e.out, "\x1b_Ga=d;\x1b\\"); err != nil {
			return fmt.Errorf("termgfx: delete previous image: %w", err)
		}
		e.lastWidth, e.lastHeight = outWidth, outHeight
	}

	// Home the cursor before the new frame lands.
	if _, err := io.WriteString(e.out, "\x1b[H"); err != nil {
		return fmt.Errorf("termgfx: cursor home: %w", err)
	}

	encoded := base64.StdEncoding.EncodeToString(outPixels)
	if err := e.writeChunks(encoded, outWidth, outHeight); err != nil {
		return err
	}

	if f, ok := e.out.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("termgfx: flush: %w", err)
		}
	} else if f, ok := e.out.(interface{ Sync() error }); ok {
		_ = f.Sync()
	}

	e.imageID++
	if e.imageID > config.FrameImageIDMax {
		e.imageID = config.FrameImageIDMin
	}
	return nil
}

// writeChunks emits the base64 payload as a sequence of
// config.ChunkSize-character chunks wrapped in the kitty graphics
// escape framing. The first chunk carries every parameter; later
// chunks carry only the more-chunks flag, per spec.md §4.1 step 5.
func (e *Encoder) writeChunks(encoded string, width, height int) error {
	total := len(encoded)
	if total == 0 {
		// Still emit a single empty-payload chunk so the terminal sees
		// a complete, well-formed sequence.
		_, err := fmt.Fprintf(e.out, "\x1b_Ga=T,f=32,s=%d,v=%d,m=0,i=%d,q=2;\x1b\\", width, height, e.imageID)
		return err
	}

	for offset := 0; offset < total; offset += config.ChunkSize {
		end := offset + config.ChunkSize
		if end > total {
			end = total
		}
		chunk := encoded[offset:end]
		more := 0
		if end < total {
			more = 1
		}

		var err error
		if offset == 0 {
			_, err = fmt.Fprintf(e.out, "\x1b_Ga=T,f=32,s=%d,v=%d,m=%d,i=%d,q=2;%s\x1b\\", width, height, more, e.imageID, chunk)
		} else {
			_, err = fmt.Fprintf(e.out, "\x1b_Gm=%d;%s\x1b\\", more, chunk)
		}
		if err != nil {
			return fmt.Errorf("termgfx: write chunk at offset %d: %w", offset, err)
		}
	}
	return nil
}

// DeleteAll clears every image the terminal is currently displaying;
// used on restore/shutdown.
func (e *Encoder) DeleteAll() error {
	_, err := io.WriteString(e.out, "\x1b_Ga=d;\x1b\\")
	e.lastWidth, e.lastHeight = 0, 0
	return err
}

// scaleToFit downscales an RGBA buffer with bilinear interpolation so
// max(width, height) fits inside ceilW/ceilH, preserving aspect ratio.
// Uses golang.org/x/image/draw's bilinear scaler rather than a
// hand-rolled resampler.
func scaleToFit(width, height int, rgba []byte, ceilW, ceilH int) (int, int, []byte) {
	scale := minFloat(float64(ceilW)/float64(width), float64(ceilH)/float64(height))
	dstW := maxInt(1, int(float64(width)*scale))
	dstH := maxInt(1, int(float64(height)*scale))

	src := &image.RGBA{
		Pix:    rgba,
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}
	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dstW, dstH, dst.Pix
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
