// Package input translates raw terminal byte sequences (key presses,
// SGR mouse reports, resize notifications) into the event vocabulary
// the compositor's seat understands — the C3 Input Translator.
package input

import (
	"unicode/utf8"
)

// EventKind tags which fields of Event are populated.
type EventKind int

const (
	EventPointerMotion EventKind = iota
	EventPointerButton
	EventPointerAxis
	EventKeyboardKey
	EventResize
	EventQuit
)

// KeyState mirrors the Wayland wl_pointer/wl_keyboard press state enum.
type KeyState int

const (
	StatePressed KeyState = iota
	StateReleased
)

// Wayland input-event button codes (Linux input-event-codes.h).
const (
	BtnLeft   uint32 = 0x110
	BtnRight  uint32 = 0x111
	BtnMiddle uint32 = 0x112
)

// Event is the translator's single output type; which fields are
// meaningful depends on Kind.
type Event struct {
	Kind EventKind

	X, Y float64 // PointerMotion, PointerButton

	Button uint32   // PointerButton
	State  KeyState // PointerButton, KeyboardKey

	Horizontal, Vertical float64 // PointerAxis

	Keysym Keysym // KeyboardKey

	Width, Height int // Resize

	TimeMS uint32
}

// modifiers records the Shift/Ctrl/Alt bits of the last kitty CSI-u
// key report that carried a modifier field. Keysym derivation does not
// consult it: a character keysym is the codepoint the terminal
// reported, shifted or not.
type modifiers struct {
	Shift bool
	Ctrl  bool
	Alt   bool
}

// Translator converts raw terminal bytes into compositor input
// events. It is not safe for concurrent use; the input-polling
// goroutine owns it and hands decoded events to the reactor across a
// channel, never the Translator itself.
type Translator struct {
	cols, rows     int
	pixelW, pixelH int

	mods modifiers

	// pending carries an incomplete multi-byte sequence across calls
	// when a read splits an escape sequence; termui's terminal reads
	// are large enough in practice that this rarely triggers, but a
	// slow pty can still split one.
	pending []byte
}

// New creates a Translator scaled to the given cell and pixel
// dimensions (cmd/termui passes the terminal's cell count and the
// virtual output's size).
func New(cols, rows, pixelW, pixelH int) *Translator {
	return &Translator{cols: cols, rows: rows, pixelW: pixelW, pixelH: pixelH}
}

// UpdateDimensions is called whenever the terminal reports a resize so
// subsequent cell-to-pixel math uses the new geometry.
func (t *Translator) UpdateDimensions(cols, rows, pixelW, pixelH int) {
	t.cols, t.rows, t.pixelW, t.pixelH = cols, rows, pixelW, pixelH
}

// cellToPixel maps a terminal cell to the pixel coordinate of its
// center, the same convention the original pointer-motion math uses.
func (t *Translator) cellToPixel(col, row int) (float64, float64) {
	if t.cols == 0 || t.rows == 0 {
		return 0, 0
	}
	cellW := float64(t.pixelW) / float64(t.cols)
	cellH := float64(t.pixelH) / float64(t.rows)
	x := float64(col)*cellW + cellW/2.0
	y := float64(row)*cellH + cellH/2.0
	return x, y
}

// Translate decodes as many complete events as are present in raw,
// prepending any bytes left over from a previous, truncated call.
func (t *Translator) Translate(raw []byte, nowMS uint32) []Event {
	buf := raw
	if len(t.pending) > 0 {
		buf = append(append([]byte{}, t.pending...), raw...)
		t.pending = nil
	}

	var events []Event
	for i := 0; i < len(buf); {
		n, ev, ok := t.decodeOne(buf[i:], nowMS)
		if n == 0 {
			// Incomplete sequence at the tail: stash it for the next read.
			t.pending = append(t.pending, buf[i:]...)
			break
		}
		if ok {
			events = append(events, ev)
		}
		i += n
	}
	return events
}

// Resize builds the Resize event the input-polling goroutine sends to
// the reactor whenever the terminal reports new pixel dimensions
// (SIGWINCH, in the real terminal's case).
func Resize(width, height int) Event {
	return Event{Kind: EventResize, Width: width, Height: height}
}

// decodeOne consumes the first logical input unit from b, returning
// how many bytes it occupied (0 meaning "need more bytes"), the
// translated event, and whether an event was actually produced (some
// sequences, like a bare modifier update, translate to nothing).
func (t *Translator) decodeOne(b []byte, nowMS uint32) (int, Event, bool) {
	if len(b) == 0 {
		return 0, Event{}, false
	}

	switch b[0] {
	case 0x03: // Ctrl+C
		return 1, Event{Kind: EventQuit}, true
	case 0x11: // Ctrl+Q
		return 1, Event{Kind: EventQuit}, true
	case 0x1b:
		return t.decodeEscape(b, nowMS)
	case '\r':
		return 1, t.keyEvent(KeysymReturn, StatePressed, nowMS), true
	case '\n':
		return 1, t.keyEvent(KeysymReturn, StatePressed, nowMS), true
	case '\t':
		return 1, t.keyEvent(KeysymTab, StatePressed, nowMS), true
	case 0x7f, 0x08:
		return 1, t.keyEvent(KeysymBackSpace, StatePressed, nowMS), true
	}

	if b[0] < 0x20 {
		// Other C0 controls (Ctrl+A..Ctrl+Z minus the cases above):
		// recover the letter they correspond to so the keysym still
		// maps to a physical key.
		sym := KeysymForRune(rune(b[0] + 0x60))
		return 1, t.keyEvent(sym, StatePressed, nowMS), true
	}

	r, size := utf8.DecodeRune(b)
	if r == utf8.RuneError && size <= 1 {
		if len(b) < 4 {
			return 0, Event{}, false // might just be a split UTF-8 rune
		}
		return 1, Event{}, false
	}
	return size, t.keyEvent(KeysymForRune(r), StatePressed, nowMS), true
}

func (t *Translator) keyEvent(sym Keysym, state KeyState, nowMS uint32) Event {
	return Event{Kind: EventKeyboardKey, Keysym: sym, State: state, TimeMS: nowMS}
}

// Modifiers reports the Shift/Ctrl/Alt state last reported by the
// kitty keyboard protocol. Nothing in termui calls it; keysyms are
// derived without it.
func (t *Translator) Modifiers() (shift, ctrl, alt bool) {
	return t.mods.Shift, t.mods.Ctrl, t.mods.Alt
}
