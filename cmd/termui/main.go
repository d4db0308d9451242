// Command termui runs a graphical Wayland client inside the terminal,
// rendering its output via the kitty graphics protocol and translating
// terminal input back into Wayland events.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vanpelt/termui/internal/childproc"
	"github.com/vanpelt/termui/internal/compositor"
	"github.com/vanpelt/termui/internal/config"
	"github.com/vanpelt/termui/internal/input"
	"github.com/vanpelt/termui/internal/logger"
	"github.com/vanpelt/termui/internal/recovery"
	"github.com/vanpelt/termui/internal/termgfx"
	"github.com/vanpelt/termui/internal/termio"
	"github.com/vanpelt/termui/internal/wlcore"
)

var headless bool

var rootCmd = &cobra.Command{
	Use:   "termui <command> [args...]",
	Short: "Run a graphical Wayland application in the terminal using the kitty graphics protocol",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(args[0], args[1:])
	},
}

func init() {
	rootCmd.Flags().BoolVar(&headless, "headless", false, "run without terminal graphics (for testing)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "termui: %v\n", err)
		os.Exit(1)
	}
}

// run wires every package together: it resolves the runtime
// environment, binds the Wayland socket, sets up the terminal (unless
// headless), spawns the child client, and drives the compositor's
// reactor until something clears its Running flag.
func run(childName string, childArgs []string) error {
	if err := logger.Configure(logger.LevelFromEnv(), logger.DefaultLogPath, false); err != nil {
		return fmt.Errorf("configure logger: %w", err)
	}
	logger.Infof("headless mode: %v", headless)

	rc, err := config.Resolve(headless)
	if err != nil {
		return fmt.Errorf("resolve runtime config: %w", err)
	}
	defer rc.Cleanup()

	listener, err := wlcore.Bind(rc.RuntimeDir)
	if err != nil {
		return fmt.Errorf("bind wayland socket: %w", err)
	}
	defer listener.Close()
	logger.Infof("listening on %s", listener.SocketPath)

	termCols, termRows := 80, 24
	pixelW, pixelH := 800, 600

	var frontend *termio.Frontend
	if !headless {
		frontend = termio.New(os.Stdin, os.Stdout)
		if err := frontend.Setup(); err != nil {
			return fmt.Errorf("set up terminal: %w", err)
		}
		defer frontend.Restore()

		if cols, rows, err := frontend.QuerySizeChars(); err == nil {
			termCols, termRows = cols, rows
		}
		if w, h, err := frontend.QuerySizePixels(); err == nil {
			pixelW, pixelH = w, h
		}

		if err := frontend.EnableInput(); err != nil {
			logger.Warnf("enable input: %v", err)
		}
		defer frontend.DisableInput()
	}

	virtualWidth := pixelW / config.Scale
	virtualHeight := pixelH / config.Scale

	var inputCh chan input.Event
	if !headless {
		inputCh = make(chan input.Event, 64)
	}

	encoder := termgfx.New(os.Stdout)
	srv := compositor.New(listener, virtualWidth, virtualHeight, encoder, inputCh)

	if !headless {
		startInputThread(frontend, srv.State(), termCols, termRows, virtualWidth, virtualHeight, inputCh)
	}

	logger.Info("display ready, spawning client...")
	mgr := childproc.NewManager()
	sess, err := mgr.Spawn("client", childName, childArgs, childproc.Env{
		SocketName: listener.SocketName,
		RuntimeDir: rc.RuntimeDir,
	})
	if err != nil {
		return fmt.Errorf("spawn %s: %w", childName, err)
	}
	logger.Info("spawned child process")

	recovery.SafeGo("child-wait", func() {
		if err := sess.Wait(); err != nil {
			logger.Warnf("child process exited: %v", err)
		}
		mgr.Remove("client")
		srv.State().Running = false
	})

	if err := srv.Run(); err != nil {
		return fmt.Errorf("run compositor: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

// startInputThread runs the dedicated terminal-input polling loop:
// the second (and last) extra goroutine the reactor model permits,
// per spec.md's exactly-two-threads invariant. Terminal resize
// (SIGWINCH) and shutdown signals (SIGINT/SIGTERM) are folded into
// this same loop rather than spawning yet more goroutines to watch
// for them — the loop already wakes at least every InputPollTimeout,
// which is plenty responsive for either. It terminates on a poll
// failure, a shutdown signal, or after forwarding a quit event, and
// always restores terminal state via its cleanup callback.
func startInputThread(frontend *termio.Frontend, state *compositor.State, cols, rows, virtualWidth, virtualHeight int, inputCh chan<- input.Event) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	winchCh := make(chan os.Signal, 1)
	signal.Notify(winchCh, syscall.SIGWINCH)

	recovery.SafeGoWithCleanup("terminal-input", func() {
		translator := input.New(cols, rows, virtualWidth, virtualHeight)

		for {
			select {
			case <-sigCh:
				logger.Info("received shutdown signal")
				state.Running = false
				return
			case <-winchCh:
				c, r, err := frontend.QuerySizeChars()
				if err != nil {
					logger.Warnf("query terminal size on resize: %v", err)
					continue
				}
				w, h, err := frontend.QuerySizePixels()
				if err != nil {
					logger.Warnf("query pixel size on resize: %v", err)
					continue
				}
				vw, vh := w/config.Scale, h/config.Scale
				translator.UpdateDimensions(c, r, vw, vh)
				select {
				case inputCh <- input.Resize(vw, vh):
				default:
				}
				continue
			default:
			}

			ev, err := frontend.PollEvent(config.InputPollTimeout * time.Millisecond)
			if err != nil {
				logger.Warnf("input poll: %v", err)
				return
			}
			if ev == nil {
				continue
			}

			for _, translated := range translator.Translate(ev.Bytes, nowMillis()) {
				isQuit := translated.Kind == input.EventQuit
				select {
				case inputCh <- translated:
				default:
					// Reactor hasn't drained the last batch yet; drop
					// rather than block the input thread.
				}
				if isQuit {
					return
				}
			}
		}
	}, func() {
		if err := frontend.DisableInput(); err != nil {
			logger.Warnf("disable input on thread exit: %v", err)
		}
	})
}

func nowMillis() uint32 {
	return uint32(time.Now().UnixMilli())
}
