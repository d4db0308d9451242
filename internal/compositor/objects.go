package compositor

// Object ids below this threshold are reserved. wl_display is always
// id 1; the client picks every other object's id itself when it
// issues the request that creates it (create_surface, get_registry,
// and so on), which is why the server never needs its own id
// allocator.
const displayObjectID = 1

// kind tags the protocol interface an object id was bound to, since
// Go has no generated per-interface proxy types here: wlcore hands us
// raw (object id, opcode, args) triples and compositor dispatch picks
// the right handler by kind.
type kind int

const (
	kindDisplay kind = iota
	kindRegistry
	kindCompositor
	kindSurface
	kindCallback
	kindShm
	kindShmPool
	kindBuffer
	kindSeat
	kindPointer
	kindKeyboard
	kindOutput
	kindXdgWmBase
	kindXdgSurface
	kindXdgToplevel
	kindRegion
)

// object is the server's record of one client-allocated protocol
// object. Only the fields relevant to its kind are populated; this is
// deliberately a flat struct rather than one type per interface,
// since the object set the spec needs is small and fixed.
type object struct {
	id   uint32
	kind kind

	// wl_surface / xdg_surface / xdg_toplevel
	surface     *surfaceState
	toplevel    *toplevelState
	xdgSurfaceOf *object // xdg_surface -> its wl_surface object

	// wl_shm_pool
	pool *shmPool

	// wl_buffer
	buffer *bufferState
}

// surfaceState tracks the pending/current double-buffered surface
// state the Wayland commit model requires: attach/damage/frame
// requests accumulate against "pending" until commit promotes them.
type surfaceState struct {
	client *Client

	pendingBuffer *object // wl_buffer attached but not yet committed
	currentBuffer *object

	frameCallbacks []uint32 // wl_callback ids awaiting the next frame done

	parent *object // set on subsurfaces; nil for toplevels (MVP has none)
}

// toplevelState is the xdg_toplevel data a surface carries once the
// client has turned it into a window.
type toplevelState struct {
	surfaceObj *object
	title      string
	appID      string
	configured bool
}

// shmPool is a client's shared-memory pool: an mmap'd region backing
// zero or more wl_buffer objects.
type shmPool struct {
	data []byte
	size int
}

// bufferState is one wl_buffer: a view into its pool.
type bufferState struct {
	pool   *shmPool
	offset int
	width  int
	height int
	stride int
	format uint32
}
