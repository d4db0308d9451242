// Package wlcore is the anti-corruption layer around the Wayland wire
// protocol: message framing, argument encoding, and fd passing over a
// Unix domain socket. Nothing in here knows about any specific
// interface (wl_surface, xdg_toplevel, ...) — internal/compositor
// builds the actual protocol handlers on top of these primitives so
// that protocol-specific code never has to reason about word
// alignment or SCM_RIGHTS directly.
package wlcore

import (
	"encoding/binary"
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// Message is one Wayland wire message: a request (client->server) or
// event (server->client) addressed to an object id.
type Message struct {
	Sender uint32
	Opcode uint16
	Args   []byte
	Fds    []int
}

// headerSize is the fixed 8-byte header: object id (4), opcode (2),
// message size in bytes including the header (2).
const headerSize = 8

// Conn wraps a Unix domain socket connection carrying Wayland wire
// messages, including the out-of-band file descriptors shm buffers
// and keymaps are passed through.
type Conn struct {
	uc *net.UnixConn
}

// NewConn wraps an already-accepted Unix connection.
func NewConn(uc *net.UnixConn) *Conn {
	return &Conn{uc: uc}
}

// Close closes the underlying socket.
func (c *Conn) Close() error { return c.uc.Close() }

// RawFd exposes the connection's file descriptor for poll(2)-based
// reactors that dispatch on readability rather than blocking reads.
func (c *Conn) RawFd() (int, error) {
	sc, err := c.uc.SyscallConn()
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

// ReadMessage reads one complete Wayland message, including any file
// descriptors sent alongside it via SCM_RIGHTS.
func (c *Conn) ReadMessage() (*Message, error) {
	header := make([]byte, headerSize)
	oob := make([]byte, unix.CmsgSpace(16*4)) // room for a handful of fds

	n, oobn, _, _, err := c.uc.ReadMsgUnix(header, oob)
	if err != nil {
		return nil, err
	}
	if n < headerSize {
		return nil, fmt.Errorf("wlcore: short message header (%d bytes)", n)
	}

	sender := binary.LittleEndian.Uint32(header[0:4])
	opcodeSize := binary.LittleEndian.Uint32(header[4:8])
	opcode := uint16(opcodeSize & 0xffff)
	size := int(opcodeSize >> 16)

	fds, err := parseFds(oob[:oobn])
	if err != nil {
		return nil, err
	}

	if size < headerSize {
		return nil, fmt.Errorf("wlcore: invalid message size %d", size)
	}
	argsLen := size - headerSize
	args := make([]byte, argsLen)
	if argsLen > 0 {
		got := 0
		for got < argsLen {
			m, err := c.uc.Read(args[got:])
			if err != nil {
				return nil, fmt.Errorf("wlcore: read args: %w", err)
			}
			got += m
		}
	}

	return &Message{Sender: sender, Opcode: opcode, Args: args, Fds: fds}, nil
}

// WriteMessage writes msg, attaching any file descriptors via
// SCM_RIGHTS on the same sendmsg(2) call as the header+args.
func (c *Conn) WriteMessage(msg *Message) error {
	size := headerSize + len(msg.Args)
	buf := make([]byte, size)
	binary.LittleEndian.PutUint32(buf[0:4], msg.Sender)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(msg.Opcode)|uint32(size)<<16)
	copy(buf[headerSize:], msg.Args)

	var oob []byte
	if len(msg.Fds) > 0 {
		oob = unix.UnixRights(msg.Fds...)
	}

	_, _, err := c.uc.WriteMsgUnix(buf, oob, nil)
	return err
}

func parseFds(oob []byte) ([]int, error) {
	if len(oob) == 0 {
		return nil, nil
	}
	cmsgs, err := unix.ParseSocketControlMessage(oob)
	if err != nil {
		return nil, fmt.Errorf("wlcore: parse control message: %w", err)
	}
	var fds []int
	for _, cmsg := range cmsgs {
		got, err := unix.ParseUnixRights(&cmsg)
		if err != nil {
			continue
		}
		fds = append(fds, got...)
	}
	return fds, nil
}
