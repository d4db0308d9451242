package compositor

import (
	"time"

	"github.com/vanpelt/termui/internal/capture"
	"github.com/vanpelt/termui/internal/logger"
)

// globalEntry is one entry in the wl_registry a client's get_registry
// sees: a stable name, the interface string, and the version termui
// implements it at.
type globalEntry struct {
	name     uint32
	interfce string
	version  uint32
}

// State is the compositor's single instance of shared, protocol-level
// state. Every field here is only ever touched from the reactor's one
// goroutine except PendingFrame, which is documented as such.
type State struct {
	Running bool

	Clients map[*Client]struct{}

	Globals    []globalEntry
	nextSerial uint32

	Toplevels []*object // in z-order; index 0 is the rendered foreground window

	TermWidth, TermHeight int // virtual output size, in pixels

	PendingFrame *capture.PendingSlot

	PointerX, PointerY float64

	frameCount    int
	frameLogStart time.Time
}

// NewState builds the initial compositor state, advertising the fixed
// global set a minimal compositor needs: wl_compositor, wl_shm,
// wl_seat, wl_output, xdg_wm_base.
func NewState(termWidth, termHeight int) *State {
	s := &State{
		Running:      true,
		Clients:      make(map[*Client]struct{}),
		TermWidth:    termWidth,
		TermHeight:   termHeight,
		PendingFrame: &capture.PendingSlot{},
		nextSerial:   1,
	}
	s.Globals = []globalEntry{
		{name: 1, interfce: "wl_compositor", version: 4},
		{name: 2, interfce: "wl_shm", version: 1},
		{name: 3, interfce: "wl_seat", version: 7},
		{name: 4, interfce: "wl_output", version: 3},
		{name: 5, interfce: "xdg_wm_base", version: 3},
	}
	s.frameLogStart = time.Now()
	return s
}

// nextSerialValue hands out a monotonically increasing serial, used
// for configure events and input event serials alike.
func (s *State) nextSerialValue() uint32 {
	v := s.nextSerial
	s.nextSerial++
	return v
}

// ResizeOutput updates the virtual output's size and reconfigures
// every live toplevel to match, the same propagation the original's
// resize_output performs.
func (s *State) ResizeOutput(width, height int) {
	s.TermWidth, s.TermHeight = width, height
	for _, tl := range s.Toplevels {
		if err := sendToplevelConfigure(tl, width, height, s.nextSerialValue()); err != nil {
			logger.Warnf("compositor: resize configure: %v", err)
		}
	}
}

// ForegroundToplevel returns the toplevel the pointer and keyboard are
// routed to: the original always picks the first live toplevel.
func (s *State) ForegroundToplevel() *object {
	if len(s.Toplevels) == 0 {
		return nil
	}
	return s.Toplevels[0]
}

// removeToplevel drops a destroyed or disconnected client's toplevel
// from z-order tracking. If this was the last toplevel, it stops the
// reactor (S6: destroying the last window ends the session, same as
// a quit event or the child process exiting).
func (s *State) removeToplevel(obj *object) {
	for i, tl := range s.Toplevels {
		if tl == obj {
			s.Toplevels = append(s.Toplevels[:i], s.Toplevels[i+1:]...)
			if len(s.Toplevels) == 0 {
				s.Running = false
			}
			return
		}
	}
}

// logFrameRate is the periodic diagnostic the original logs at trace
// level: actual vs. nominal frame cadence, purely observational.
func (s *State) logFrameRate(nominalHz float64) {
	s.frameCount++
	elapsed := time.Since(s.frameLogStart)
	if elapsed < 10*time.Second {
		return
	}
	actualHz := float64(s.frameCount) / elapsed.Seconds()
	logger.Debugf("frame rate: %.1f Hz actual (nominal %.1f Hz)", actualHz, nominalHz)
	s.frameCount = 0
	s.frameLogStart = time.Now()
}
