package input

// Keysym is an XKB keysym value, matching xkbcommon's namespace: ASCII
// characters map directly, everything else (named keys, non-ASCII
// codepoints) uses the ranges below.
type Keysym uint32

// Named-key keysyms, taken from the xkbcommon keysym table (values
// termui actually needs to translate terminal key events into).
const (
	KeysymBackSpace Keysym = 0xff08
	KeysymTab       Keysym = 0xff09
	KeysymReturn    Keysym = 0xff0d
	KeysymEscape    Keysym = 0xff1b
	KeysymHome      Keysym = 0xff50
	KeysymLeft      Keysym = 0xff51
	KeysymUp        Keysym = 0xff52
	KeysymRight     Keysym = 0xff53
	KeysymDown      Keysym = 0xff54
	KeysymPageUp    Keysym = 0xff55
	KeysymPageDown  Keysym = 0xff56
	KeysymEnd       Keysym = 0xff57
	KeysymInsert    Keysym = 0xff63
	KeysymDelete    Keysym = 0xffff
	KeysymF1        Keysym = 0xffbe
)

// unicodeKeysymBase is added to any codepoint >= 128 to build its
// keysym, per the xkbcommon Unicode keysym convention.
const unicodeKeysymBase Keysym = 0x01000000

// KeysymForRune derives the keysym for a single decoded character: a
// direct ASCII codepoint, or the Unicode-keysym-range encoding for
// anything beyond it.
func KeysymForRune(r rune) Keysym {
	code := uint32(r)
	if code < 128 {
		return Keysym(code)
	}
	return unicodeKeysymBase + Keysym(code)
}

// KeysymForFunctionKey derives the keysym for F1..F(n); F1 through F35
// are contiguous in the xkbcommon table.
func KeysymForFunctionKey(n int) Keysym {
	return KeysymF1 + Keysym(n-1)
}

// evdevKeycodes maps a keysym to its Linux evdev keycode, the table a
// US-QWERTY keyboard's physical layout is wired to. Keysyms the table
// does not cover (function keys, most Unicode codepoints) simply have
// no entry; ToXKBKeycode reports that with its bool return rather than
// guessing.
var evdevKeycodes = map[Keysym]uint32{
	KeysymEscape:    1,
	KeysymReturn:    28,
	KeysymTab:       15,
	KeysymBackSpace: 14,
	' ':             57,

	KeysymLeft:  105,
	KeysymRight: 106,
	KeysymUp:    103,
	KeysymDown:  108,

	KeysymHome:     102,
	KeysymEnd:      107,
	KeysymPageUp:   104,
	KeysymPageDown: 109,
	KeysymInsert:   110,
	KeysymDelete:   111,

	'1': 2, '!': 2,
	'2': 3, '@': 3,
	'3': 4, '#': 4,
	'4': 5, '$': 5,
	'5': 6, '%': 6,
	'6': 7, '^': 7,
	'7': 8, '&': 8,
	'8': 9, '*': 9,
	'9': 10, '(': 10,
	'0': 11, ')': 11,
	'-': 12, '_': 12,
	'=': 13, '+': 13,

	'q': 16, 'Q': 16,
	'w': 17, 'W': 17,
	'e': 18, 'E': 18,
	'r': 19, 'R': 19,
	't': 20, 'T': 20,
	'y': 21, 'Y': 21,
	'u': 22, 'U': 22,
	'i': 23, 'I': 23,
	'o': 24, 'O': 24,
	'p': 25, 'P': 25,
	'[': 26, '{': 26,
	']': 27, '}': 27,

	'a': 30, 'A': 30,
	's': 31, 'S': 31,
	'd': 32, 'D': 32,
	'f': 33, 'F': 33,
	'g': 34, 'G': 34,
	'h': 35, 'H': 35,
	'j': 36, 'J': 36,
	'k': 37, 'K': 37,
	'l': 38, 'L': 38,
	';': 39, ':': 39,
	'\'': 40, '"': 40,
	'`': 41, '~': 41,
	'\\': 43, '|': 43,

	'z': 44, 'Z': 44,
	'x': 45, 'X': 45,
	'c': 46, 'C': 46,
	'v': 47, 'V': 47,
	'b': 48, 'B': 48,
	'n': 49, 'N': 49,
	'm': 50, 'M': 50,
	',': 51, '<': 51,
	'.': 52, '>': 52,
	'/': 53, '?': 53,
}

// ToXKBKeycode converts a keysym to its XKB keycode (evdev + 8), the
// numbering the Wayland keyboard protocol expects. The bool result is
// false when the keysym has no entry in evdevKeycodes.
func ToXKBKeycode(sym Keysym) (uint32, bool) {
	code, ok := evdevKeycodes[sym]
	if !ok {
		return 0, false
	}
	return code + 8, true
}
