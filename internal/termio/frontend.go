// Package termio is the terminal I/O front-end (C2): raw-mode and
// alt-screen entry/exit, mouse/paste/keyboard-enhancement toggles, and
// the two size queries (cells and pixels) the rest of the system
// scales against. It never parses input itself — that's C3
// (internal/input) — it only owns the fd and the raw byte stream.
package termio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/creack/pty"
	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/vanpelt/termui/internal/logger"
)

// Frontend owns the controlling terminal's raw-mode state and input
// stream. All escape-sequence writes go straight to the fd so they
// interleave correctly with the image encoder's own writes to stdout.
type Frontend struct {
	in  *os.File
	out *os.File

	oldState         *term.State
	keyboardEnhanced bool
	reader           *bufio.Reader
}

// New wraps the given input/output files (ordinarily os.Stdin/os.Stdout).
func New(in, out *os.File) *Frontend {
	return &Frontend{in: in, out: out, reader: bufio.NewReaderSize(in, 4096)}
}

// Setup enters the alternate screen, hides the cursor, and clears it,
// homing the cursor — spec.md §4.2 setup_terminal().
func (f *Frontend) Setup() error {
	return f.write("\x1b[?1049h\x1b[?25l\x1b[2J\x1b[H")
}

// Restore deletes any displayed images, shows the cursor, and leaves
// the alternate screen — spec.md §4.2 restore_terminal(). Called on
// every exit path, including error paths.
func (f *Frontend) Restore() error {
	return f.write("\x1b_Ga=d;\x1b\\\x1b[?25h\x1b[?1049l")
}

// EnableInput puts the terminal into raw mode and turns on mouse
// reporting, bracketed paste, and (if supported) the kitty keyboard
// protocol so key-release events are delivered.
func (f *Frontend) EnableInput() error {
	state, err := term.MakeRaw(int(f.in.Fd()))
	if err != nil {
		return fmt.Errorf("termio: enter raw mode: %w", err)
	}
	f.oldState = state

	if err := f.write("\x1b[?1000h\x1b[?1003h\x1b[?1006h\x1b[?2004h"); err != nil {
		return err
	}

	// Kitty keyboard protocol: push flags 1|2 (disambiguate escape
	// codes + report event types, including release). Not all
	// terminals support this; the translator must tolerate its
	// absence (spec.md §4.2/§4.3).
	if err := f.write("\x1b[>3u"); err == nil {
		f.keyboardEnhanced = true
	}
	return nil
}

// DisableInput reverses EnableInput, popping the keyboard-enhancement
// stack only if it was pushed, and always restoring cooked mode even
// if an earlier step in the sequence fails.
func (f *Frontend) DisableInput() error {
	if f.keyboardEnhanced {
		_ = f.write("\x1b[<1u")
		f.keyboardEnhanced = false
	}
	_ = f.write("\x1b[?2004l\x1b[?1006l\x1b[?1003l\x1b[?1000l")

	if f.oldState != nil {
		if err := term.Restore(int(f.in.Fd()), f.oldState); err != nil {
			return fmt.Errorf("termio: restore terminal state: %w", err)
		}
		f.oldState = nil
	}
	return nil
}

// QuerySizeChars returns the terminal's (cols, rows).
func (f *Frontend) QuerySizeChars() (int, int, error) {
	cols, rows, err := term.GetSize(int(f.out.Fd()))
	if err != nil {
		return 0, 0, fmt.Errorf("termio: query cell size: %w", err)
	}
	return cols, rows, nil
}

// QuerySizePixels returns the terminal's pixel dimensions via
// TIOCGWINSZ, falling back to a cols*10,rows*20 heuristic when the
// terminal doesn't report pixel geometry (spec.md §4.2). The ioctl
// itself goes through creack/pty's Winsize helper, the same one the
// teacher uses to size a PTY, rather than hand-rolling the syscall.
func (f *Frontend) QuerySizePixels() (int, int, error) {
	ws, err := pty.GetsizeFull(f.out)
	if err != nil {
		return 0, 0, fmt.Errorf("termio: TIOCGWINSZ: %w", err)
	}

	if ws.X > 0 && ws.Y > 0 {
		return int(ws.X), int(ws.Y), nil
	}

	cols, rows := int(ws.Cols), int(ws.Rows)
	if cols == 0 || rows == 0 {
		cols, rows, err = f.QuerySizeChars()
		if err != nil {
			return 0, 0, err
		}
	}
	logger.Debugf("termio: terminal did not report pixel size, falling back to %dx10,%dx20 heuristic", cols, rows)
	return cols * 10, rows * 20, nil
}

// RawEvent is an unparsed byte sequence read from the terminal within
// the poll deadline; translation into display-server events happens
// in internal/input.
type RawEvent struct {
	Bytes []byte
}

// PollEvent blocks for at most timeout waiting for terminal input,
// returning nil if nothing arrived.
func (f *Frontend) PollEvent(timeout time.Duration) (*RawEvent, error) {
	ready, err := waitReadable(int(f.in.Fd()), timeout)
	if err != nil {
		return nil, fmt.Errorf("termio: poll: %w", err)
	}
	if !ready {
		return nil, nil
	}

	buf := make([]byte, 256)
	n, err := f.reader.Read(buf)
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("termio: read: %w", err)
	}
	return &RawEvent{Bytes: buf[:n]}, nil
}

func (f *Frontend) write(s string) error {
	_, err := io.WriteString(f.out, s)
	return err
}

// waitReadable blocks until fd is readable or timeout elapses, using
// a ppoll(2)-style wait via golang.org/x/sys/unix so the input-polling
// thread (C6 §5) never busy-spins.
func waitReadable(fd int, timeout time.Duration) (bool, error) {
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	ms := int(timeout.Milliseconds())
	n, err := unix.Poll(fds, ms)
	if err != nil {
		if err == unix.EINTR {
			return false, nil
		}
		return false, err
	}
	return n > 0 && fds[0].Revents&unix.POLLIN != 0, nil
}
