package compositor

import (
	"github.com/vanpelt/termui/internal/input"
	"github.com/vanpelt/termui/internal/logger"
	"github.com/vanpelt/termui/internal/wlcore"
)

// applyInputEvent routes one translated terminal input event to the
// foreground toplevel's client, per spec.md's seat-routing rule: the
// pointer and keyboard always target the foreground toplevel, there's
// no cross-client focus negotiation to model.
func (srv *Server) applyInputEvent(ev input.Event) {
	fg := srv.state.ForegroundToplevel()

	switch ev.Kind {
	case input.EventQuit:
		srv.state.Running = false
	case input.EventResize:
		srv.state.ResizeOutput(ev.Width, ev.Height)
	case input.EventPointerMotion:
		srv.state.PointerX, srv.state.PointerY = ev.X, ev.Y
		if fg == nil {
			return
		}
		c := fg.surface.client
		if err := c.ensurePointerFocus(fg, ev.X, ev.Y, srv.state.nextSerialValue()); err != nil {
			logger.Warnf("compositor: pointer focus: %v", err)
			return
		}
		if err := c.sendPointerMotion(ev.X, ev.Y, ev.TimeMS); err != nil {
			logger.Warnf("compositor: pointer motion: %v", err)
		}
	case input.EventPointerButton:
		if fg == nil {
			return
		}
		c := fg.surface.client
		if err := c.ensurePointerFocus(fg, srv.state.PointerX, srv.state.PointerY, srv.state.nextSerialValue()); err != nil {
			return
		}
		if err := c.sendPointerButton(ev.Button, ev.State, ev.TimeMS, srv.state.nextSerialValue()); err != nil {
			logger.Warnf("compositor: pointer button: %v", err)
		}
	case input.EventPointerAxis:
		if fg == nil {
			return
		}
		c := fg.surface.client
		if err := c.sendPointerAxis(ev.Horizontal, ev.Vertical, ev.TimeMS); err != nil {
			logger.Warnf("compositor: pointer axis: %v", err)
		}
	case input.EventKeyboardKey:
		if fg == nil {
			return
		}
		c := fg.surface.client
		if err := c.ensureKeyboardFocus(fg, srv.state.nextSerialValue()); err != nil {
			return
		}
		code, ok := input.ToXKBKeycode(ev.Keysym)
		if !ok {
			logger.Warnf("compositor: no keycode for keysym %#x, dropping key event", uint32(ev.Keysym))
			return
		}
		if err := c.sendKeyboardKey(code, ev.State, ev.TimeMS, srv.state.nextSerialValue()); err != nil {
			logger.Warnf("compositor: keyboard key: %v", err)
		}
	}
}

func (c *Client) ensurePointerFocus(surfObj *object, x, y float64, serial uint32) error {
	if c.pointerObj == nil {
		return nil
	}
	if c.pointerFocus == surfObj {
		return nil
	}
	if c.pointerFocus != nil {
		if err := c.sendEvent(c.pointerObj.id, evtPointerLeave, encode(func(w *wlcore.ArgWriter) {
			w.PutUint(serial)
			w.PutUint(findSurfaceObjectID(c, c.pointerFocus))
		})); err != nil {
			return err
		}
	}
	c.pointerFocus = surfObj
	return c.sendEvent(c.pointerObj.id, evtPointerEnter, encode(func(w *wlcore.ArgWriter) {
		w.PutUint(serial)
		w.PutUint(findSurfaceObjectID(c, surfObj))
		w.PutInt(fixedFromFloat(x))
		w.PutInt(fixedFromFloat(y))
	}))
}

func (c *Client) ensureKeyboardFocus(surfObj *object, serial uint32) error {
	if c.keyboardObj == nil {
		return nil
	}
	if c.keyboardFocus == surfObj {
		return nil
	}
	c.keyboardFocus = surfObj
	return c.sendEvent(c.keyboardObj.id, evtKeyboardEnter, encode(func(w *wlcore.ArgWriter) {
		w.PutUint(serial)
		w.PutUint(findSurfaceObjectID(c, surfObj))
		w.PutArray(nil)
	}))
}

func (c *Client) sendPointerMotion(x, y float64, timeMS uint32) error {
	if err := c.sendEvent(c.pointerObj.id, evtPointerMotion, encode(func(w *wlcore.ArgWriter) {
		w.PutUint(timeMS)
		w.PutInt(fixedFromFloat(x))
		w.PutInt(fixedFromFloat(y))
	})); err != nil {
		return err
	}
	return c.sendEvent(c.pointerObj.id, evtPointerFrame, nil)
}

func (c *Client) sendPointerButton(button uint32, state input.KeyState, timeMS, serial uint32) error {
	pressed := uint32(0)
	if state == input.StatePressed {
		pressed = 1
	}
	if err := c.sendEvent(c.pointerObj.id, evtPointerButton, encode(func(w *wlcore.ArgWriter) {
		w.PutUint(serial)
		w.PutUint(timeMS)
		w.PutUint(button)
		w.PutUint(pressed)
	})); err != nil {
		return err
	}
	return c.sendEvent(c.pointerObj.id, evtPointerFrame, nil)
}

func (c *Client) sendPointerAxis(horizontal, vertical float64, timeMS uint32) error {
	if horizontal != 0 {
		if err := c.sendEvent(c.pointerObj.id, evtPointerAxis, encode(func(w *wlcore.ArgWriter) {
			w.PutUint(timeMS)
			w.PutUint(0) // axis: horizontal_scroll
			w.PutInt(fixedFromFloat(horizontal))
		})); err != nil {
			return err
		}
	}
	if vertical != 0 {
		if err := c.sendEvent(c.pointerObj.id, evtPointerAxis, encode(func(w *wlcore.ArgWriter) {
			w.PutUint(timeMS)
			w.PutUint(1) // axis: vertical_scroll
			w.PutInt(fixedFromFloat(vertical))
		})); err != nil {
			return err
		}
	}
	return c.sendEvent(c.pointerObj.id, evtPointerFrame, nil)
}

func (c *Client) sendKeyboardKey(xkbCode uint32, state input.KeyState, timeMS, serial uint32) error {
	pressed := uint32(0)
	if state == input.StatePressed {
		pressed = 1
	}
	// Wayland key codes are evdev codes (xkb - 8), not the xkb
	// keycodes ToXKBKeycode returns.
	return c.sendEvent(c.keyboardObj.id, evtKeyboardKey, encode(func(w *wlcore.ArgWriter) {
		w.PutUint(serial)
		w.PutUint(timeMS)
		w.PutUint(xkbCode - 8)
		w.PutUint(pressed)
	}))
}

func findSurfaceObjectID(c *Client, surfObj *object) uint32 {
	for _, obj := range c.objects {
		if obj == surfObj {
			return obj.id
		}
	}
	return 0
}

// fixedFromFloat converts to wl_fixed_t: a 24.8 signed fixed-point
// representation, the format every Wayland pointer coordinate uses.
func fixedFromFloat(v float64) int32 {
	return int32(v * 256.0)
}
