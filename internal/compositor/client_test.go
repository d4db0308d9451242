package compositor

import (
	"net"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/vanpelt/termui/internal/wlcore"
)

// clientSocketPair builds a connected pair of wlcore.Conn the same way
// wlcore's own wire tests do, so this package can drive a Client
// end-to-end without a real listening socket.
func clientSocketPair(t *testing.T) (*wlcore.Conn, *wlcore.Conn) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	require.NoError(t, err)

	toConn := func(fd int) *wlcore.Conn {
		f := os.NewFile(uintptr(fd), "socketpair")
		c, err := net.FileConn(f)
		require.NoError(t, err)
		_ = f.Close()
		return wlcore.NewConn(c.(*net.UnixConn))
	}
	return toConn(fds[0]), toConn(fds[1])
}

// fakeShmFd builds a memfd holding a tiny 2x1 XRGB8888 pixel buffer, to
// stand in for the shared memory a real client would mmap and hand to
// wl_shm.create_pool.
func fakeShmFd(t *testing.T) int {
	t.Helper()
	data := []byte{
		0x10, 0x20, 0x30, 0x40, // pixel 0: B,G,R,X
		0x50, 0x60, 0x70, 0x80, // pixel 1: B,G,R,X
	}
	fd, err := unix.MemfdCreate("test-shm", 0)
	require.NoError(t, err)
	require.NoError(t, unix.Ftruncate(fd, int64(len(data))))
	mapped, err := unix.Mmap(fd, 0, len(data), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	require.NoError(t, err)
	copy(mapped, data)
	require.NoError(t, unix.Munmap(mapped))
	return fd
}

func TestClientHandshakeCapturesForegroundFrameOnCommit(t *testing.T) {
	serverConn, clientConn := clientSocketPair(t)
	defer serverConn.Close()
	defer clientConn.Close()

	state := NewState(80, 60)
	c := newClient(serverConn, state)

	send := func(obj uint32, opcode uint16, build func(w *wlcore.ArgWriter)) {
		var w wlcore.ArgWriter
		if build != nil {
			build(&w)
		}
		require.NoError(t, clientConn.WriteMessage(&wlcore.Message{Sender: obj, Opcode: opcode, Args: w.Bytes()}))
	}
	sendFd := func(obj uint32, opcode uint16, fd int, build func(w *wlcore.ArgWriter)) {
		var w wlcore.ArgWriter
		if build != nil {
			build(&w)
		}
		require.NoError(t, clientConn.WriteMessage(&wlcore.Message{Sender: obj, Opcode: opcode, Args: w.Bytes(), Fds: []int{fd}}))
	}
	dispatch := func() {
		require.NoError(t, c.Dispatch())
	}

	// wl_display.get_registry(new_id=2)
	send(displayObjectID, reqDisplayGetRegistry, func(w *wlcore.ArgWriter) { w.PutUint(2) })
	dispatch()

	// wl_registry.bind(name=1 "wl_compositor", new_id=3)
	send(2, reqRegistryBind, func(w *wlcore.ArgWriter) {
		w.PutUint(1)
		w.PutString("wl_compositor")
		w.PutUint(4)
		w.PutUint(3)
	})
	dispatch()

	// wl_registry.bind(name=2 "wl_shm", new_id=5)
	send(2, reqRegistryBind, func(w *wlcore.ArgWriter) {
		w.PutUint(2)
		w.PutString("wl_shm")
		w.PutUint(1)
		w.PutUint(5)
	})
	dispatch()

	// wl_registry.bind(name=5 "xdg_wm_base", new_id=8)
	send(2, reqRegistryBind, func(w *wlcore.ArgWriter) {
		w.PutUint(5)
		w.PutString("xdg_wm_base")
		w.PutUint(3)
		w.PutUint(8)
	})
	dispatch()

	// wl_compositor.create_surface(new_id=4)
	send(3, reqCompositorCreateSurface, func(w *wlcore.ArgWriter) { w.PutUint(4) })
	dispatch()

	// wl_shm.create_pool(new_id=6, size, fd)
	fd := fakeShmFd(t)
	sendFd(5, reqShmCreatePool, fd, func(w *wlcore.ArgWriter) {
		w.PutUint(6)
		w.PutInt(8)
	})
	dispatch()

	// wl_shm_pool.create_buffer(new_id=7, offset=0, width=2, height=1, stride=8, format=XRGB8888)
	send(6, reqPoolCreateBuffer, func(w *wlcore.ArgWriter) {
		w.PutUint(7)
		w.PutInt(0)
		w.PutInt(2)
		w.PutInt(1)
		w.PutInt(8)
		w.PutUint(shmFormatXRGB8888)
	})
	dispatch()

	// wl_surface.attach(buffer=7, x=0, y=0)
	send(4, reqSurfaceAttach, func(w *wlcore.ArgWriter) {
		w.PutUint(7)
		w.PutInt(0)
		w.PutInt(0)
	})
	dispatch()

	// xdg_wm_base.get_xdg_surface(new_id=9, surface=4)
	send(8, reqWmBaseGetXdgSurface, func(w *wlcore.ArgWriter) {
		w.PutUint(9)
		w.PutUint(4)
	})
	dispatch()

	// xdg_surface.get_toplevel(new_id=10)
	send(9, reqXdgSurfaceGetToplevel, func(w *wlcore.ArgWriter) { w.PutUint(10) })
	dispatch()

	require.Len(t, state.Toplevels, 1)

	// wl_surface.commit()
	send(4, reqSurfaceCommit, nil)
	dispatch()

	frame, ok := state.PendingFrame.Take()
	require.True(t, ok)
	assert.Equal(t, 2, frame.Width)
	assert.Equal(t, 1, frame.Height)
	assert.Equal(t, []byte{
		0x30, 0x20, 0x10, 0x40,
		0x70, 0x60, 0x50, 0x80,
	}, frame.Data)
}

func TestDisplaySyncRepliesWithCallbackDoneAndDeleteID(t *testing.T) {
	serverConn, clientConn := clientSocketPair(t)
	defer serverConn.Close()
	defer clientConn.Close()

	state := NewState(80, 60)
	c := newClient(serverConn, state)

	var w wlcore.ArgWriter
	w.PutUint(2) // new_id for the callback
	require.NoError(t, clientConn.WriteMessage(&wlcore.Message{Sender: displayObjectID, Opcode: reqDisplaySync, Args: w.Bytes()}))
	require.NoError(t, c.Dispatch())

	msg, err := clientConn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, uint32(2), msg.Sender)
	assert.Equal(t, uint16(evtCallbackDone), msg.Opcode)

	deleteMsg, err := clientConn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, uint32(displayObjectID), deleteMsg.Sender)
	assert.Equal(t, uint16(evtDisplayDeleteID), deleteMsg.Opcode)
}
