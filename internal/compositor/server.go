// Package compositor implements the protocol handler set (C5), the
// single-threaded event-loop orchestrator (C6), and the virtual
// output (C7): it is termui's Wayland display server.
package compositor

import (
	"time"

	"golang.org/x/sys/unix"

	"github.com/vanpelt/termui/internal/config"
	"github.com/vanpelt/termui/internal/input"
	"github.com/vanpelt/termui/internal/logger"
	"github.com/vanpelt/termui/internal/termgfx"
	"github.com/vanpelt/termui/internal/wlcore"
)

// Server owns the listening socket, every connected client, and the
// render pipeline. Run is the reactor: it is the only place any of
// this state is touched, per spec.md's single-threaded scheduling
// model.
type Server struct {
	listener *wlcore.Listener
	state    *State
	encoder  *termgfx.Encoder
	clients  map[*Client]struct{}
	inputCh  <-chan input.Event
}

// New builds a Server accepting clients on listener, rendering
// into encoder and consuming translated input from inputCh (nil when
// headless — Run simply never selects on it).
func New(listener *wlcore.Listener, termWidth, termHeight int, encoder *termgfx.Encoder, inputCh <-chan input.Event) *Server {
	return &Server{
		listener: listener,
		state:    NewState(termWidth, termHeight),
		encoder:  encoder,
		clients:  make(map[*Client]struct{}),
		inputCh:  inputCh,
	}
}

// State exposes the compositor's state for the caller to signal
// external shutdown (an OS signal handler) by clearing Running.
func (srv *Server) State() *State { return srv.state }

// Run drives the reactor until Running is cleared by a Quit event,
// the last toplevel being destroyed (whether or not clients remain
// connected), or an external signal handler.
func (srv *Server) Run() error {
	lastFrame := time.Now()

	for srv.state.Running {
		listenerFd, err := srv.listener.RawFd()
		if err != nil {
			return err
		}

		pollfds := []unix.PollFd{{Fd: int32(listenerFd), Events: unix.POLLIN}}
		order := make([]*Client, 0, len(srv.clients))
		for c := range srv.clients {
			fd, err := c.RawFd()
			if err != nil {
				continue
			}
			pollfds = append(pollfds, unix.PollFd{Fd: int32(fd), Events: unix.POLLIN})
			order = append(order, c)
		}

		n, err := unix.Poll(pollfds, config.DispatchDeadline)
		if err != nil && err != unix.EINTR {
			return err
		}

		if n > 0 {
			if pollfds[0].Revents&unix.POLLIN != 0 {
				srv.acceptClient()
			}
			for i, c := range order {
				fd := pollfds[i+1]
				if fd.Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0 {
					srv.dispatchClient(c)
				}
			}
		}

		srv.drainInput()

		if time.Since(lastFrame) >= config.FrameInterval*time.Millisecond {
			srv.renderTick()
			lastFrame = time.Now()
		}
	}
	return nil
}

func (srv *Server) acceptClient() {
	conn, err := srv.listener.Accept()
	if err != nil {
		logger.Warnf("compositor: accept: %v", err)
		return
	}
	c := newClient(conn, srv.state)
	srv.clients[c] = struct{}{}
	logger.Debug("client connected")
}

func (srv *Server) dispatchClient(c *Client) {
	if err := c.Dispatch(); err != nil {
		srv.disconnectClient(c, err)
	}
}

// disconnectClient implements the per-client cleanup supplement: a
// crashed or hung-up client has every toplevel it owned removed
// immediately, so it can't leave a phantom foreground window behind.
func (srv *Server) disconnectClient(c *Client, cause error) {
	logger.Debugf("client disconnected: %v", cause)
	for _, obj := range c.objects {
		if obj.kind == kindSurface {
			srv.state.removeToplevel(obj)
		}
	}
	_ = c.conn.Close()
	delete(srv.clients, c)
}

func (srv *Server) drainInput() {
	if srv.inputCh == nil {
		return
	}
	for {
		select {
		case ev, ok := <-srv.inputCh:
			if !ok {
				srv.state.Running = false
				return
			}
			srv.applyInputEvent(ev)
		default:
			return
		}
	}
}

// renderTick is the frame-timer source: it takes whatever frame was
// captured since the last tick (if any) and pushes it to the
// terminal, unconditionally at the nominal 33ms cadence regardless of
// how many (or how few) commits happened in between.
func (srv *Server) renderTick() {
	srv.state.logFrameRate(1000.0 / float64(config.FrameInterval))

	frame, ok := srv.state.PendingFrame.Take()
	if !ok {
		return
	}
	if err := srv.encoder.DisplayFrame(frame.Width, frame.Height, frame.Data); err != nil {
		logger.Warnf("termgfx: display frame: %v", err)
	}
}
