package compositor

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// minimalXKBKeymap is a self-contained US-QWERTY XKB keymap in the
// text format wl_keyboard.keymap hands clients: a default rules/model
// that resolves the same evdev keycodes internal/input's ToXKBKeycode
// produces. Clients compile this themselves; termui never needs to
// interpret it, only supply something valid.
const minimalXKBKeymap = `xkb_keymap {
  xkb_keycodes { include "evdev+aliases(qwerty)" };
  xkb_types    { include "complete" };
  xkb_compat   { include "complete" };
  xkb_symbols  { include "pc+us+inet(evdev)" };
};
`

// writeEmptyKeymap creates an anonymous memfd (no seals applied) containing the
// keymap text and returns its fd and size, ready to hand a client via
// wl_keyboard.keymap.
func writeEmptyKeymap() (int, int, error) {
	fd, err := unix.MemfdCreate("termui-keymap", 0)
	if err != nil {
		return 0, 0, fmt.Errorf("compositor: memfd_create: %w", err)
	}
	data := []byte(minimalXKBKeymap)
	if err := unix.Ftruncate(fd, int64(len(data))); err != nil {
		_ = unix.Close(fd)
		return 0, 0, fmt.Errorf("compositor: ftruncate keymap memfd: %w", err)
	}
	mapped, err := unix.Mmap(fd, 0, len(data), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		_ = unix.Close(fd)
		return 0, 0, fmt.Errorf("compositor: mmap keymap memfd: %w", err)
	}
	copy(mapped, data)
	_ = unix.Munmap(mapped)
	return fd, len(data), nil
}
