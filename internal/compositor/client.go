package compositor

import (
	"encoding/binary"
	"fmt"

	"github.com/vanpelt/termui/internal/capture"
	"github.com/vanpelt/termui/internal/logger"
	"github.com/vanpelt/termui/internal/wlcore"
)

// Client is one connected Wayland client: its wire connection plus
// the object table the protocol requests it has sent so far have
// populated. All methods run on the reactor's single goroutine.
type Client struct {
	conn    *wlcore.Conn
	state   *State
	objects map[uint32]*object

	pointerObj, keyboardObj, seatObj *object

	pointerFocus, keyboardFocus *object

	closed bool
}

func newClient(conn *wlcore.Conn, state *State) *Client {
	c := &Client{
		conn:    conn,
		state:   state,
		objects: make(map[uint32]*object),
	}
	c.objects[displayObjectID] = &object{id: displayObjectID, kind: kindDisplay}
	return c
}

// RawFd exposes the underlying connection's fd for the reactor's poll
// set.
func (c *Client) RawFd() (int, error) { return c.conn.RawFd() }

// Dispatch reads and handles exactly one wire message.
func (c *Client) Dispatch() error {
	msg, err := c.conn.ReadMessage()
	if err != nil {
		return err
	}
	obj, ok := c.objects[msg.Sender]
	if !ok {
		return fmt.Errorf("compositor: request for unknown object %d", msg.Sender)
	}
	return c.handle(obj, msg)
}

func (c *Client) handle(obj *object, msg *wlcore.Message) error {
	r := wlcore.NewArgReader(msg.Args)
	switch obj.kind {
	case kindDisplay:
		return c.handleDisplay(msg.Opcode, r)
	case kindRegistry:
		return c.handleRegistry(msg.Opcode, r)
	case kindCompositor:
		return c.handleCompositor(msg.Opcode, r)
	case kindSurface:
		return c.handleSurface(obj, msg.Opcode, r)
	case kindShm:
		return c.handleShm(msg.Opcode, r, msg.Fds)
	case kindShmPool:
		return c.handlePool(obj, msg.Opcode, r)
	case kindBuffer:
		return c.handleBuffer(obj, msg.Opcode, r)
	case kindSeat:
		return c.handleSeat(obj, msg.Opcode, r)
	case kindPointer, kindKeyboard, kindOutput, kindCallback, kindRegion:
		return c.handleRelease(obj, msg.Opcode)
	case kindXdgWmBase:
		return c.handleWmBase(msg.Opcode, r)
	case kindXdgSurface:
		return c.handleXdgSurface(obj, msg.Opcode, r)
	case kindXdgToplevel:
		return c.handleToplevel(obj, msg.Opcode, r)
	default:
		return fmt.Errorf("compositor: no handler for object kind %d", obj.kind)
	}
}

// handleRelease covers every interface whose only client request
// worth honoring is "release"/"destroy" with no side effects beyond
// freeing the id (wl_pointer, wl_keyboard, wl_output, wl_callback,
// wl_region: termui never actually clips input to regions).
func (c *Client) handleRelease(obj *object, opcode uint16) error {
	release := uint16(0)
	if obj.kind == kindPointer {
		release = reqPointerRelease // wl_pointer.set_cursor is opcode 0
	}
	if opcode == release {
		delete(c.objects, obj.id)
	}
	return nil
}

func (c *Client) handleDisplay(opcode uint16, r *wlcore.ArgReader) error {
	switch opcode {
	case reqDisplaySync:
		id, err := r.Uint()
		if err != nil {
			return err
		}
		if err := c.sendEvent(id, evtCallbackDone, encode(func(w *wlcore.ArgWriter) { w.PutUint(0) })); err != nil {
			return err
		}
		return c.deleteID(id)
	case reqDisplayGetRegistry:
		id, err := r.Uint()
		if err != nil {
			return err
		}
		c.objects[id] = &object{id: id, kind: kindRegistry}
		for _, g := range c.state.Globals {
			if err := c.sendEvent(id, evtRegistryGlobal, encode(func(w *wlcore.ArgWriter) {
				w.PutUint(g.name)
				w.PutString(g.interfce)
				w.PutUint(g.version)
			})); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("compositor: unknown wl_display opcode %d", opcode)
}

func (c *Client) handleRegistry(opcode uint16, r *wlcore.ArgReader) error {
	if opcode != reqRegistryBind {
		return fmt.Errorf("compositor: unknown wl_registry opcode %d", opcode)
	}
	name, err := r.Uint()
	if err != nil {
		return err
	}
	_ = name // looked up below: termui has exactly one global per interface, so the name alone picks it

	var iface string
	for _, g := range c.state.Globals {
		if g.name == name {
			iface = g.interfce
		}
	}
	// The bind request's new_id argument is encoded inline as
	// interface name + version + id, not via the usual trailing
	// uint32 alone, because the registry doesn't statically know the
	// interface being bound.
	boundIface, err := r.String()
	if err != nil {
		return err
	}
	if _, err := r.Uint(); err != nil { // version, unused: termui always speaks its one supported version
		return err
	}
	id, err := r.Uint()
	if err != nil {
		return err
	}
	if iface == "" {
		iface = boundIface
	}

	switch iface {
	case "wl_compositor":
		c.objects[id] = &object{id: id, kind: kindCompositor}
	case "wl_shm":
		c.objects[id] = &object{id: id, kind: kindShm}
		return c.sendEvent(id, evtShmFormat, encode(func(w *wlcore.ArgWriter) { w.PutUint(shmFormatXRGB8888) }))
	case "wl_seat":
		obj := &object{id: id, kind: kindSeat}
		c.objects[id] = obj
		c.seatObj = obj
		return c.sendEvent(id, evtSeatCapabilities, encode(func(w *wlcore.ArgWriter) { w.PutUint(0x3) })) // pointer|keyboard
	case "wl_output":
		c.objects[id] = &object{id: id, kind: kindOutput}
		return c.sendOutputGeometry(id)
	case "xdg_wm_base":
		c.objects[id] = &object{id: id, kind: kindXdgWmBase}
	default:
		return fmt.Errorf("compositor: bind request for unknown interface %q", iface)
	}
	return nil
}

func (c *Client) sendOutputGeometry(id uint32) error {
	if err := c.sendEvent(id, evtOutputGeometry, encode(func(w *wlcore.ArgWriter) {
		w.PutInt(0)
		w.PutInt(0)
		w.PutInt(0) // physical size unknown/irrelevant for a virtual output
		w.PutInt(0)
		w.PutInt(0) // subpixel: unknown
		w.PutString("termui")
		w.PutString("virtual")
		w.PutInt(0) // transform: normal
	})); err != nil {
		return err
	}
	if err := c.sendEvent(id, evtOutputMode, encode(func(w *wlcore.ArgWriter) {
		w.PutUint(0x3) // current|preferred
		w.PutInt(int32(c.state.TermWidth))
		w.PutInt(int32(c.state.TermHeight))
		w.PutInt(60000)
	})); err != nil {
		return err
	}
	return c.sendEvent(id, evtOutputDone, nil)
}

func (c *Client) handleCompositor(opcode uint16, r *wlcore.ArgReader) error {
	switch opcode {
	case reqCompositorCreateSurface:
		id, err := r.Uint()
		if err != nil {
			return err
		}
		obj := &object{id: id, kind: kindSurface, surface: &surfaceState{client: c}}
		c.objects[id] = obj
		return nil
	case reqCompositorCreateRegion:
		id, err := r.Uint()
		if err != nil {
			return err
		}
		c.objects[id] = &object{id: id, kind: kindRegion}
		return nil
	}
	return fmt.Errorf("compositor: unknown wl_compositor opcode %d", opcode)
}

func (c *Client) handleSurface(obj *object, opcode uint16, r *wlcore.ArgReader) error {
	ss := obj.surface
	switch opcode {
	case reqSurfaceDestroy:
		c.state.removeToplevel(obj)
		delete(c.objects, obj.id)
		return nil
	case reqSurfaceAttach:
		bufID, err := r.Uint()
		if err != nil {
			return err
		}
		if _, err := r.Int(); err != nil { // x, always 0 in practice
			return err
		}
		if _, err := r.Int(); err != nil { // y
			return err
		}
		if bufID == 0 {
			ss.pendingBuffer = nil
			return nil
		}
		ss.pendingBuffer = c.objects[bufID]
		return nil
	case reqSurfaceDamage, reqSurfaceDamageBuf:
		// termui always recaptures the whole surface on commit; damage
		// regions don't change what gets sent.
		_, _ = r.Int()
		_, _ = r.Int()
		_, _ = r.Int()
		_, _ = r.Int()
		return nil
	case reqSurfaceFrame:
		id, err := r.Uint()
		if err != nil {
			return err
		}
		c.objects[id] = &object{id: id, kind: kindCallback}
		ss.frameCallbacks = append(ss.frameCallbacks, id)
		return nil
	case reqSurfaceSetOpaque, reqSurfaceSetInput:
		_, err := r.Uint()
		return err
	case reqSurfaceCommit:
		return c.commitSurface(obj)
	case reqSurfaceSetBufTran, reqSurfaceSetBufScl:
		_, err := r.Int()
		return err
	}
	return fmt.Errorf("compositor: unknown wl_surface opcode %d", opcode)
}

// commitSurface promotes the pending buffer, captures a frame if this
// surface backs a live toplevel, and immediately fires any queued
// frame callbacks — matching the original's commit handler, which
// captures and signals frame-done in the same call rather than
// waiting for the next render tick.
func (c *Client) commitSurface(obj *object) error {
	ss := obj.surface
	ss.currentBuffer = ss.pendingBuffer
	ss.pendingBuffer = nil

	isForeground := false
	for _, tl := range c.state.Toplevels {
		if tl == obj {
			isForeground = true
			break
		}
	}

	if isForeground && ss.currentBuffer != nil && ss.currentBuffer.buffer != nil {
		buf := ss.currentBuffer.buffer
		if buf.pool != nil {
			frame, err := capture.CaptureXRGB8888(buf.pool.data, buf.offset, buf.width, buf.height, buf.stride)
			if err != nil {
				logger.Warnf("compositor: capture failed: %v", err)
			} else {
				c.state.PendingFrame.Store(frame)
			}
		}
	}

	callbacks := ss.frameCallbacks
	ss.frameCallbacks = nil
	for _, id := range callbacks {
		if err := c.sendEvent(id, evtCallbackDone, encode(func(w *wlcore.ArgWriter) { w.PutUint(0) })); err != nil {
			return err
		}
		if err := c.deleteID(id); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) handleShm(opcode uint16, r *wlcore.ArgReader, fds []int) error {
	if opcode != reqShmCreatePool {
		return fmt.Errorf("compositor: unknown wl_shm opcode %d", opcode)
	}
	id, err := r.Uint()
	if err != nil {
		return err
	}
	size, err := r.Int()
	if err != nil {
		return err
	}
	if len(fds) == 0 {
		return fmt.Errorf("compositor: create_pool without an fd")
	}
	pool, err := mmapPool(fds[0], int(size))
	if err != nil {
		return err
	}
	c.objects[id] = &object{id: id, kind: kindShmPool, pool: pool}
	return nil
}

func (c *Client) handlePool(obj *object, opcode uint16, r *wlcore.ArgReader) error {
	switch opcode {
	case reqPoolCreateBuffer:
		id, err := r.Uint()
		if err != nil {
			return err
		}
		offset, err := r.Int()
		if err != nil {
			return err
		}
		width, err := r.Int()
		if err != nil {
			return err
		}
		height, err := r.Int()
		if err != nil {
			return err
		}
		stride, err := r.Int()
		if err != nil {
			return err
		}
		format, err := r.Uint()
		if err != nil {
			return err
		}
		c.objects[id] = &object{id: id, kind: kindBuffer, buffer: &bufferState{
			pool: obj.pool, offset: int(offset), width: int(width), height: int(height), stride: int(stride), format: format,
		}}
		return nil
	case reqPoolDestroy:
		delete(c.objects, obj.id)
		return nil
	case reqPoolResize:
		size, err := r.Int()
		if err != nil {
			return err
		}
		return resizePool(obj.pool, int(size))
	}
	return fmt.Errorf("compositor: unknown wl_shm_pool opcode %d", opcode)
}

func (c *Client) handleBuffer(obj *object, opcode uint16, _ *wlcore.ArgReader) error {
	if opcode != reqBufferDestroy {
		return fmt.Errorf("compositor: unknown wl_buffer opcode %d", opcode)
	}
	delete(c.objects, obj.id)
	return nil
}

func (c *Client) handleSeat(obj *object, opcode uint16, r *wlcore.ArgReader) error {
	switch opcode {
	case reqSeatGetPointer:
		id, err := r.Uint()
		if err != nil {
			return err
		}
		p := &object{id: id, kind: kindPointer}
		c.objects[id] = p
		c.pointerObj = p
		return nil
	case reqSeatGetKeyboard:
		id, err := r.Uint()
		if err != nil {
			return err
		}
		k := &object{id: id, kind: kindKeyboard}
		c.objects[id] = k
		c.keyboardObj = k
		return c.sendKeymap(id)
	case reqSeatGetTouch:
		id, err := r.Uint()
		if err != nil {
			return err
		}
		c.objects[id] = &object{id: id, kind: kindOutput} // touch unsupported; register so release doesn't error
		return nil
	case reqSeatRelease:
		delete(c.objects, obj.id)
		return nil
	}
	return fmt.Errorf("compositor: unknown wl_seat opcode %d", opcode)
}

func (c *Client) handleWmBase(opcode uint16, r *wlcore.ArgReader) error {
	switch opcode {
	case reqWmBaseDestroy:
		return nil
	case reqWmBaseCreatePositioner:
		id, err := r.Uint()
		if err != nil {
			return err
		}
		c.objects[id] = &object{id: id, kind: kindRegion} // positioner geometry is unused (no popups)
		return nil
	case reqWmBaseGetXdgSurface:
		id, err := r.Uint()
		if err != nil {
			return err
		}
		surfID, err := r.Uint()
		if err != nil {
			return err
		}
		surfObj := c.objects[surfID]
		c.objects[id] = &object{id: id, kind: kindXdgSurface, xdgSurfaceOf: surfObj}
		return nil
	case reqWmBasePong:
		_, err := r.Uint()
		return err
	}
	return fmt.Errorf("compositor: unknown xdg_wm_base opcode %d", opcode)
}

func (c *Client) handleXdgSurface(obj *object, opcode uint16, r *wlcore.ArgReader) error {
	switch opcode {
	case reqXdgSurfaceDestroy:
		delete(c.objects, obj.id)
		return nil
	case reqXdgSurfaceGetToplevel:
		id, err := r.Uint()
		if err != nil {
			return err
		}
		surfObj := obj.xdgSurfaceOf
		tl := &toplevelState{surfaceObj: surfObj}
		tlObj := &object{id: id, kind: kindXdgToplevel, toplevel: tl, surface: surfObj.surface}
		c.objects[id] = tlObj
		surfObj.toplevel = tl
		c.state.Toplevels = append(c.state.Toplevels, surfObj)
		logger.Info("new toplevel surface created")
		return sendToplevelConfigure(surfObj, c.state.TermWidth, c.state.TermHeight, c.state.nextSerialValue())
	case reqXdgSurfaceGetPopup:
		id, err := r.Uint()
		if err != nil {
			return err
		}
		c.objects[id] = &object{id: id, kind: kindXdgSurface} // MVP: popups are tracked but never shown
		return nil
	case reqXdgSurfaceSetGeometry:
		_, _ = r.Int()
		_, _ = r.Int()
		_, _ = r.Int()
		_, _ = r.Int()
		return nil
	case reqXdgSurfaceAckConfig:
		_, err := r.Uint()
		return err
	}
	return fmt.Errorf("compositor: unknown xdg_surface opcode %d", opcode)
}

func (c *Client) handleToplevel(obj *object, opcode uint16, r *wlcore.ArgReader) error {
	switch opcode {
	case reqToplevelDestroy:
		c.state.removeToplevel(obj.toplevel.surfaceObj)
		delete(c.objects, obj.id)
		return nil
	case reqToplevelSetTitle:
		title, err := r.String()
		if err != nil {
			return err
		}
		obj.toplevel.title = title
		return nil
	case reqToplevelSetAppID:
		appID, err := r.String()
		if err != nil {
			return err
		}
		obj.toplevel.appID = appID
		return nil
	case reqToplevelSetParent:
		_, _ = r.Uint()
		return nil
	case reqToplevelSetMaxSize, reqToplevelSetMinSize:
		_, _ = r.Uint()
		_, _ = r.Uint()
		return nil
	case reqToplevelMove, reqToplevelResize:
		return nil // MVP: termui owns placement; interactive move/resize is a no-op
	case reqToplevelSetMaximized, reqToplevelUnsetMaximized,
		reqToplevelSetFullscreen, reqToplevelUnsetFullscr, reqToplevelSetMinimized:
		return nil
	}
	return fmt.Errorf("compositor: unknown xdg_toplevel opcode %d", opcode)
}

// sendEvent writes an event addressed to object id, carrying the
// already-encoded args (nil if the event carries no arguments).
func (c *Client) sendEvent(id uint32, opcode uint16, args []byte) error {
	return c.conn.WriteMessage(&wlcore.Message{Sender: id, Opcode: opcode, Args: args})
}

// deleteID tells the client an id is free to reuse, via wl_display's
// delete_id event — required after destroying any object the client
// allocated via a new_id argument.
func (c *Client) deleteID(id uint32) error {
	delete(c.objects, id)
	return c.sendEvent(displayObjectID, evtDisplayDeleteID, encode(func(w *wlcore.ArgWriter) { w.PutUint(id) }))
}

func encode(build func(w *wlcore.ArgWriter)) []byte {
	var w wlcore.ArgWriter
	build(&w)
	return w.Bytes()
}

// encodeStates packs an xdg_toplevel.state list into the little-endian
// int32 array the configure event's states argument carries.
func encodeStates(states ...int32) []byte {
	out := make([]byte, 0, len(states)*4)
	for _, s := range states {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], uint32(s))
		out = append(out, b[:]...)
	}
	return out
}

func sendToplevelConfigure(surfObj *object, width, height int, serial uint32) error {
	c := surfObj.surface.client
	tlObj := findToplevelObject(c, surfObj)
	if tlObj == nil {
		return nil
	}
	if err := c.sendEvent(tlObj.id, evtToplevelConfigure, encode(func(w *wlcore.ArgWriter) {
		w.PutInt(int32(width))
		w.PutInt(int32(height))
		w.PutArray(encodeStates(xdgToplevelStateActivated, xdgToplevelStateMaximized))
	})); err != nil {
		return err
	}
	// xdg_surface.configure must follow, carrying the serial the
	// client acks back.
	xdgObj := findXdgSurfaceObject(c, surfObj)
	if xdgObj == nil {
		return nil
	}
	return c.sendEvent(xdgObj.id, evtXdgSurfaceConfigure, encode(func(w *wlcore.ArgWriter) { w.PutUint(serial) }))
}

func findToplevelObject(c *Client, surfObj *object) *object {
	for _, obj := range c.objects {
		if obj.kind == kindXdgToplevel && obj.toplevel == surfObj.toplevel {
			return obj
		}
	}
	return nil
}

func findXdgSurfaceObject(c *Client, surfObj *object) *object {
	for _, obj := range c.objects {
		if obj.kind == kindXdgSurface && obj.xdgSurfaceOf == surfObj {
			return obj
		}
	}
	return nil
}

func (c *Client) sendKeymap(keyboardID uint32) error {
	// termui hands the client the small include-based US-QWERTY keymap
	// in minimalXKBKeymap; the client compiles it to turn the evdev
	// keycodes termui sends in wl_keyboard.key back into keysyms.
	fd, size, err := writeEmptyKeymap()
	if err != nil {
		return err
	}
	return c.conn.WriteMessage(&wlcore.Message{
		Sender: keyboardID,
		Opcode: evtKeyboardKeymap,
		Args: encode(func(w *wlcore.ArgWriter) {
			w.PutUint(1) // XKB_V1
			w.PutUint(uint32(size))
		}),
		Fds: []int{fd},
	})
}
