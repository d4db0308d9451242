package wlcore

import (
	"net"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestMessageRoundTrip(t *testing.T) {
	server, client := socketPair(t)
	defer server.Close()
	defer client.Close()

	var w ArgWriter
	w.PutUint(42)
	w.PutString("xdg_wm_base")

	msg := &Message{Sender: 1, Opcode: 3, Args: w.Bytes()}
	require.NoError(t, client.WriteMessage(msg))

	got, err := server.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, uint32(1), got.Sender)
	assert.Equal(t, uint16(3), got.Opcode)

	r := NewArgReader(got.Args)
	n, err := r.Uint()
	require.NoError(t, err)
	assert.Equal(t, uint32(42), n)
	s, err := r.String()
	require.NoError(t, err)
	assert.Equal(t, "xdg_wm_base", s)
}

func TestArgWriterPadsStringsAndArraysTo4Bytes(t *testing.T) {
	var w ArgWriter
	w.PutString("abc") // len 4 (incl nul), already aligned
	w.PutString("ab")  // len 3 (incl nul), needs 1 pad byte
	// array of 5 bytes, needs 3 pad bytes
	w.PutArray([]byte{1, 2, 3, 4, 5})
	assert.Equal(t, 0, len(w.Bytes())%4)
}

func socketPair(t *testing.T) (*Conn, *Conn) {
	t.Helper()
	a, b, err := unixSocketPair()
	require.NoError(t, err)
	return NewConn(a), NewConn(b)
}

func unixSocketPair() (*net.UnixConn, *net.UnixConn, error) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, nil, err
	}
	a, err := fdToUnixConn(fds[0])
	if err != nil {
		return nil, nil, err
	}
	b, err := fdToUnixConn(fds[1])
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

func fdToUnixConn(fd int) (*net.UnixConn, error) {
	f := os.NewFile(uintptr(fd), "socketpair")
	c, err := net.FileConn(f)
	if err != nil {
		return nil, err
	}
	_ = f.Close()
	return c.(*net.UnixConn), nil
}
