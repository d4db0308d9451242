package compositor

// Request/event opcodes below match the stable, versioned core
// Wayland protocol (wayland.xml) and the xdg-shell stable protocol
// (xdg-shell.xml); these numbers are part of the wire format and
// never change between implementations.

// wl_display
const (
	reqDisplaySync        = 0
	reqDisplayGetRegistry = 1

	evtDisplayError    = 0
	evtDisplayDeleteID = 1
)

// wl_registry
const (
	reqRegistryBind = 0

	evtRegistryGlobal       = 0
	evtRegistryGlobalRemove = 1
)

// wl_compositor
const (
	reqCompositorCreateSurface = 0
	reqCompositorCreateRegion  = 1
)

// wl_surface
const (
	reqSurfaceDestroy    = 0
	reqSurfaceAttach     = 1
	reqSurfaceDamage     = 2
	reqSurfaceFrame      = 3
	reqSurfaceSetOpaque  = 4
	reqSurfaceSetInput   = 5
	reqSurfaceCommit     = 6
	reqSurfaceSetBufTran = 7
	reqSurfaceSetBufScl  = 8
	reqSurfaceDamageBuf  = 9

	evtSurfaceEnter = 0
	evtSurfaceLeave = 1
)

// wl_callback
const evtCallbackDone = 0

// wl_shm
const (
	reqShmCreatePool = 0

	evtShmFormat = 0
)

// wl_shm_pool
const (
	reqPoolCreateBuffer = 0
	reqPoolDestroy      = 1
	reqPoolResize       = 2
)

// wl_buffer
const (
	reqBufferDestroy = 0

	evtBufferRelease = 0
)

// wl_seat
const (
	reqSeatGetPointer  = 0
	reqSeatGetKeyboard = 1
	reqSeatGetTouch    = 2
	reqSeatRelease     = 3

	evtSeatCapabilities = 0
	evtSeatName         = 1
)

// wl_pointer
const (
	reqPointerSetCursor = 0
	reqPointerRelease   = 1

	evtPointerEnter      = 0
	evtPointerLeave      = 1
	evtPointerMotion     = 2
	evtPointerButton     = 3
	evtPointerAxis       = 4
	evtPointerFrame      = 5
	evtPointerAxisSource = 6
)

// wl_keyboard
const (
	reqKeyboardRelease = 0

	evtKeyboardKeymap     = 0
	evtKeyboardEnter      = 1
	evtKeyboardLeave      = 2
	evtKeyboardKey        = 3
	evtKeyboardModifiers  = 4
	evtKeyboardRepeatInfo = 5
)

// wl_output
const (
	reqOutputRelease = 0

	evtOutputGeometry = 0
	evtOutputMode     = 1
	evtOutputDone     = 2
	evtOutputScale    = 3
)

// xdg_wm_base
const (
	reqWmBaseDestroy          = 0
	reqWmBaseCreatePositioner = 1
	reqWmBaseGetXdgSurface    = 2
	reqWmBasePong             = 3

	evtWmBasePing = 0
)

// xdg_surface
const (
	reqXdgSurfaceDestroy     = 0
	reqXdgSurfaceGetToplevel = 1
	reqXdgSurfaceGetPopup    = 2
	reqXdgSurfaceSetGeometry = 3
	reqXdgSurfaceAckConfig   = 4

	evtXdgSurfaceConfigure = 0
)

// xdg_toplevel
const (
	reqToplevelDestroy        = 0
	reqToplevelSetParent      = 1
	reqToplevelSetTitle       = 2
	reqToplevelSetAppID       = 3
	reqToplevelMove           = 5
	reqToplevelResize         = 6
	reqToplevelSetMaxSize     = 7
	reqToplevelSetMinSize     = 8
	reqToplevelSetMaximized   = 9
	reqToplevelUnsetMaximized = 10
	reqToplevelSetFullscreen  = 11
	reqToplevelUnsetFullscr   = 12
	reqToplevelSetMinimized   = 13

	evtToplevelConfigure       = 0
	evtToplevelClose           = 1
	evtToplevelConfigureBounds = 2
	evtToplevelWmCapabilities  = 3
)

// xdg_toplevel.state, the enum carried in configure's states array.
const (
	xdgToplevelStateMaximized = 1
	xdgToplevelStateActivated = 4
)

// wl_shm buffer formats (fourcc-derived, stable).
const (
	shmFormatARGB8888 = 0
	shmFormatXRGB8888 = 1
)
