package wlcore

import (
	"fmt"
	"net"
	"os"
	"path/filepath"

	"github.com/vanpelt/termui/internal/config"
)

// Listener binds a Unix domain socket named termui-N, for the
// smallest free N in [config.SocketMin, config.SocketMax], inside the
// given runtime directory — mirroring how a real Wayland compositor
// picks wayland-0, wayland-1, and so on.
type Listener struct {
	ln         *net.UnixListener
	SocketName string
	SocketPath string
}

// Bind tries termui-N in order and binds the first name not already
// in use.
func Bind(runtimeDir string) (*Listener, error) {
	var lastErr error
	for n := config.SocketMin; n <= config.SocketMax; n++ {
		name := fmt.Sprintf("%s-%d", config.SocketNamePrefix, n)
		path := filepath.Join(runtimeDir, name)

		addr := &net.UnixAddr{Name: path, Net: "unix"}
		ln, err := net.ListenUnix("unix", addr)
		if err != nil {
			lastErr = err
			continue
		}
		return &Listener{ln: ln, SocketName: name, SocketPath: path}, nil
	}
	return nil, fmt.Errorf("wlcore: no free socket name in %s-%d..%d: %w", config.SocketNamePrefix, config.SocketMin, config.SocketMax, lastErr)
}

// Accept blocks for the next client connection.
func (l *Listener) Accept() (*Conn, error) {
	uc, err := l.ln.AcceptUnix()
	if err != nil {
		return nil, err
	}
	return NewConn(uc), nil
}

// RawFd exposes the listening socket's fd for a level-triggered poll
// loop (the reactor never blocks in Accept directly).
func (l *Listener) RawFd() (int, error) {
	sc, err := l.ln.SyscallConn()
	if err != nil {
		return -1, err
	}
	var fd int
	cerr := sc.Control(func(f uintptr) { fd = int(f) })
	if cerr != nil {
		return -1, cerr
	}
	return fd, nil
}

// Close closes the listening socket and removes the socket file.
func (l *Listener) Close() error {
	err := l.ln.Close()
	_ = os.Remove(l.SocketPath)
	return err
}
