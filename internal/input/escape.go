package input

import "strconv"

// decodeEscape parses everything that starts with ESC: arrow/nav keys,
// function keys, SGR mouse reports (ESC[<...M/m), the kitty keyboard
// protocol's CSI-u key reporting, bracketed-paste markers (consumed
// and ignored, paste content arrives as ordinary runes in between),
// and a bare ESC press.
func (t *Translator) decodeEscape(b []byte, nowMS uint32) (int, Event, bool) {
	if len(b) < 2 {
		return 0, Event{}, false // need to see what follows ESC
	}
	if b[1] != '[' && b[1] != 'O' {
		// Bare Escape key, or an unsupported ESC-prefixed sequence we
		// treat as a standalone Escape press.
		return 1, t.keyEvent(KeysymEscape, StatePressed, nowMS), true
	}

	// Find the terminating byte: CSI sequences end on the first byte
	// in the 0x40-0x7e range.
	end := -1
	for i := 2; i < len(b); i++ {
		if b[i] >= 0x40 && b[i] <= 0x7e {
			end = i
			break
		}
	}
	if end == -1 {
		if len(b) > 32 {
			// Runaway/garbled sequence: drop the ESC and resync rather
			// than blocking forever on "need more bytes".
			return 1, Event{}, false
		}
		return 0, Event{}, false
	}

	final := b[end]
	params := string(b[2:end])
	total := end + 1

	// SS3 sequences (ESC O <letter>): used by some terminals for
	// arrows/Home/End when not in application-cursor mode.
	if b[1] == 'O' {
		if sym, ok := ss3Keysym(final); ok {
			return total, t.keyEvent(sym, StatePressed, nowMS), true
		}
		return total, Event{}, false
	}

	if final == '~' {
		return total, t.decodeTilde(params, nowMS)
	}

	if final == 'M' || final == 'm' {
		if ev, ok := t.decodeSGRMouse(params, final, nowMS); ok {
			return total, ev, true
		}
		return total, Event{}, false
	}

	if sym, ok := ss3Keysym(final); ok {
		return total, t.keyEvent(sym, StatePressed, nowMS), true
	}
	if final == 'u' {
		return total, t.decodeKittyKey(params, nowMS)
	}

	return total, Event{}, false
}

func ss3Keysym(final byte) (Keysym, bool) {
	switch final {
	case 'A':
		return KeysymUp, true
	case 'B':
		return KeysymDown, true
	case 'C':
		return KeysymRight, true
	case 'D':
		return KeysymLeft, true
	case 'H':
		return KeysymHome, true
	case 'F':
		return KeysymEnd, true
	}
	return 0, false
}

// decodeTilde handles the `ESC[<n>~` family: navigation and function
// keys that crossterm (and every VT-derived terminal) reports this
// way.
func (t *Translator) decodeTilde(params string, nowMS uint32) (Event, bool) {
	code, _, _ := splitParams(params)
	switch code {
	case 1, 7:
		return t.keyEvent(KeysymHome, StatePressed, nowMS), true
	case 2:
		return t.keyEvent(KeysymInsert, StatePressed, nowMS), true
	case 3:
		return t.keyEvent(KeysymDelete, StatePressed, nowMS), true
	case 4, 8:
		return t.keyEvent(KeysymEnd, StatePressed, nowMS), true
	case 5:
		return t.keyEvent(KeysymPageUp, StatePressed, nowMS), true
	case 6:
		return t.keyEvent(KeysymPageDown, StatePressed, nowMS), true
	case 11, 12, 13, 14, 15:
		return t.keyEvent(KeysymForFunctionKey(code-10), StatePressed, nowMS), true
	case 17, 18, 19, 20, 21:
		return t.keyEvent(KeysymForFunctionKey(code-11), StatePressed, nowMS), true
	case 23, 24:
		return t.keyEvent(KeysymForFunctionKey(code-12), StatePressed, nowMS), true
	}
	return Event{}, false
}

// decodeKittyKey handles CSI-u reporting: `ESC[<codepoint>;<modifiers>u`
// and, with the kitty keyboard protocol's event-type extension,
// `ESC[<codepoint>;<modifiers>:<event-type>u` where event-type 3 means
// key release. The modifier field, when present, is `1 + bitmask`
// (shift=1, alt=2, ctrl=4, ...) per the kitty protocol spec.
func (t *Translator) decodeKittyKey(params string, nowMS uint32) (Event, bool) {
	fields := splitAll(params, ';')
	codepoint, err := strconv.Atoi(fields[0])
	if err != nil || codepoint == 0 {
		return Event{}, false
	}

	state := StatePressed
	ctrl := false
	if len(fields) >= 2 {
		modFields := splitAll(fields[1], ':')
		if mod, err := strconv.Atoi(modFields[0]); err == nil && mod > 0 {
			bits := mod - 1
			t.mods.Shift = bits&0x1 != 0
			t.mods.Alt = bits&0x2 != 0
			t.mods.Ctrl = bits&0x4 != 0
			ctrl = t.mods.Ctrl
		}
		if len(modFields) >= 2 && modFields[1] == "3" {
			state = StateReleased
		}
	}

	// Ctrl+C / Ctrl+Q arrive in CSI-u form once the kitty protocol is
	// on; they stay local quit gestures, and their releases are dropped.
	if ctrl && (codepoint == 'c' || codepoint == 'q') {
		if state == StateReleased {
			return Event{}, false
		}
		return Event{Kind: EventQuit}, true
	}

	return t.keyEvent(KeysymForRune(rune(codepoint)), state, nowMS), true
}

// splitParams parses "a;b" (or "a" alone) into two ints, reporting
// whether the second was present. Used by the tilde-sequence decoder,
// which never carries a colon-separated sub-field.
func splitParams(s string) (int, int, bool) {
	if s == "" {
		return 0, 0, false
	}
	parts := splitAll(s, ';')
	a, _ := strconv.Atoi(parts[0])
	if len(parts) == 1 {
		return a, 0, false
	}
	b, _ := strconv.Atoi(parts[1])
	return a, b, true
}

// decodeSGRMouse handles `ESC[<Cb;Cx;Cy(M|m)`: SGR extended mouse
// reporting, where M is press/motion and m is release.
func (t *Translator) decodeSGRMouse(params string, final byte, nowMS uint32) (Event, bool) {
	if len(params) > 0 && params[0] == '<' {
		params = params[1:]
	}
	parts := splitAll(params, ';')
	if len(parts) != 3 {
		return Event{}, false
	}
	cb, err1 := strconv.Atoi(parts[0])
	col, err2 := strconv.Atoi(parts[1])
	row, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return Event{}, false
	}

	// Columns/rows are 1-based in the report.
	x, y := t.cellToPixel(col-1, row-1)

	const (
		sgrMotionFlag = 0x20
		sgrScrollFlag = 0x40
		sgrButtonMask = 0x03
	)

	if cb&sgrScrollFlag != 0 {
		// Cb&3: 0 wheel-up, 1 wheel-down, 2 wheel-left, 3 wheel-right
		// (xterm convention); up/down and left/right are mutually
		// exclusive axes on a single SGR scroll report.
		switch cb & sgrButtonMask {
		case 0:
			return Event{Kind: EventPointerAxis, Vertical: -15.0, TimeMS: nowMS}, true
		case 1:
			return Event{Kind: EventPointerAxis, Vertical: 15.0, TimeMS: nowMS}, true
		case 2:
			return Event{Kind: EventPointerAxis, Horizontal: -15.0, TimeMS: nowMS}, true
		default:
			return Event{Kind: EventPointerAxis, Horizontal: 15.0, TimeMS: nowMS}, true
		}
	}

	if cb&sgrMotionFlag != 0 {
		return Event{Kind: EventPointerMotion, X: x, Y: y, TimeMS: nowMS}, true
	}

	button, ok := sgrButtonCode(cb & sgrButtonMask)
	if !ok {
		return Event{}, false
	}
	state := StatePressed
	if final == 'm' {
		state = StateReleased
	}
	return Event{Kind: EventPointerButton, X: x, Y: y, Button: button, State: state, TimeMS: nowMS}, true
}

func sgrButtonCode(n int) (uint32, bool) {
	switch n {
	case 0:
		return BtnLeft, true
	case 1:
		return BtnMiddle, true
	case 2:
		return BtnRight, true
	}
	return 0, false
}

func splitAll(s string, sep byte) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}
