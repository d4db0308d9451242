package wlcore

import (
	"encoding/binary"
	"fmt"
)

// ArgWriter builds a Wayland wire message argument block: every
// Wayland argument type is 4-byte aligned, including strings and
// arrays, which are length-prefixed and nul/zero-padded.
type ArgWriter struct {
	buf []byte
}

func (w *ArgWriter) PutUint(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *ArgWriter) PutInt(v int32) { w.PutUint(uint32(v)) }

// PutString writes a nul-terminated string with its length (including
// the nul) as a leading uint32, padded to a 4-byte boundary.
func (w *ArgWriter) PutString(s string) {
	n := uint32(len(s) + 1)
	w.PutUint(n)
	w.buf = append(w.buf, s...)
	w.buf = append(w.buf, 0)
	w.pad(int(n))
}

func (w *ArgWriter) PutArray(data []byte) {
	w.PutUint(uint32(len(data)))
	w.buf = append(w.buf, data...)
	w.pad(len(data))
}

func (w *ArgWriter) pad(n int) {
	if rem := n % 4; rem != 0 {
		w.buf = append(w.buf, make([]byte, 4-rem)...)
	}
}

// Bytes returns the accumulated argument block.
func (w *ArgWriter) Bytes() []byte { return w.buf }

// ArgReader walks a Wayland wire message's argument block in order;
// callers must read arguments in the exact order the protocol
// interface declares them.
type ArgReader struct {
	buf []byte
	pos int
}

func NewArgReader(buf []byte) *ArgReader { return &ArgReader{buf: buf} }

func (r *ArgReader) Uint() (uint32, error) {
	if r.pos+4 > len(r.buf) {
		return 0, fmt.Errorf("wlcore: truncated uint argument")
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos : r.pos+4])
	r.pos += 4
	return v, nil
}

func (r *ArgReader) Int() (int32, error) {
	v, err := r.Uint()
	return int32(v), err
}

func (r *ArgReader) String() (string, error) {
	n, err := r.Uint()
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	end := r.pos + int(n)
	if end > len(r.buf) {
		return "", fmt.Errorf("wlcore: truncated string argument")
	}
	s := string(r.buf[r.pos : end-1]) // drop the trailing nul
	r.pos = end
	r.skipPad(int(n))
	return s, nil
}

func (r *ArgReader) Array() ([]byte, error) {
	n, err := r.Uint()
	if err != nil {
		return nil, err
	}
	end := r.pos + int(n)
	if end > len(r.buf) {
		return nil, fmt.Errorf("wlcore: truncated array argument")
	}
	out := append([]byte{}, r.buf[r.pos:end]...)
	r.pos = end
	r.skipPad(int(n))
	return out, nil
}

func (r *ArgReader) skipPad(n int) {
	if rem := n % 4; rem != 0 {
		r.pos += 4 - rem
	}
}
