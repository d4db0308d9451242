// Package config resolves the runtime environment termui executes in:
// the XDG runtime directory a client socket is bound inside, and the
// small set of compile-time constants every other package reads
// instead of re-declaring its own magic numbers.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// Scale is the compile-time factor between terminal pixels and the
// virtual output's logical size (virtual = terminal_pixels / Scale).
// Higher values shrink UI elements in the client; spec calls this a
// compile-time constant, not a runtime flag.
const Scale = 4

const (
	// ImageCeilingWidth/Height bound the frame passed to the image
	// encoder before bilinear downscaling kicks in.
	ImageCeilingWidth  = 1920
	ImageCeilingHeight = 1080

	// ChunkSize is the maximum number of base64 payload characters per
	// graphics-escape chunk.
	ChunkSize = 4096

	// FrameImageIDMin/Max bound the cycling per-frame image identifier.
	FrameImageIDMin = 1
	FrameImageIDMax = 1000
)

const (
	// FrameInterval is the nominal period of the render tick (~30Hz).
	FrameInterval = 33 // milliseconds

	// DispatchDeadline bounds how long a single reactor dispatch may
	// block waiting for a ready source.
	DispatchDeadline = 16 // milliseconds

	// InputPollTimeout bounds a single poll of the terminal for the
	// next raw input event on the dedicated input-polling thread.
	InputPollTimeout = 10 // milliseconds
)

// Socket naming: termui binds "termui-N" for the smallest free N in
// [SocketMin, SocketMax] inside the runtime directory.
const (
	SocketNamePrefix = "termui"
	SocketMin        = 1
	SocketMax        = 32
)

// RuntimeConfig bundles the directories and headless switch every
// component consults, the same "one instance everybody reads" shape
// the teacher's RuntimeConfig was built around.
type RuntimeConfig struct {
	Headless     bool
	RuntimeDir   string
	OwnedTempDir bool // true if RuntimeDir was created by us (cleanup on exit)
}

// Resolve determines XDG_RUNTIME_DIR, falling back to a process-scoped
// directory under /tmp when the environment doesn't provide one, and
// validates the directory is usable before any socket is bound inside
// it.
func Resolve(headless bool) (*RuntimeConfig, error) {
	rc := &RuntimeConfig{Headless: headless}

	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = fmt.Sprintf("/tmp/termui-%d", os.Getpid())
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create runtime dir %s: %w", dir, err)
		}
		rc.OwnedTempDir = true
	} else if err := ensureDir(dir); err != nil {
		return nil, fmt.Errorf("prepare runtime dir %s: %w", dir, err)
	}

	if err := checkRuntimeDirOwnership(dir); err != nil {
		return nil, err
	}

	rc.RuntimeDir = dir
	return rc, nil
}

func ensureDir(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return os.MkdirAll(path, 0o700)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s exists and is not a directory", path)
	}
	return nil
}

// checkRuntimeDirOwnership guards against binding a socket inside a
// directory we don't own or that's world-writable, a standard sanity
// check any Wayland-compositor-style server applies to its runtime
// directory.
func checkRuntimeDirOwnership(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("stat runtime dir %s: %w", dir, err)
	}

	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		if int(stat.Uid) != os.Getuid() {
			return fmt.Errorf("runtime dir %s is not owned by the current user", dir)
		}
	}

	if info.Mode().Perm()&0o077 != 0 {
		return fmt.Errorf("runtime dir %s is group/world accessible (mode %o); refusing to bind a socket inside it", dir, info.Mode().Perm())
	}

	return nil
}

// Cleanup removes a process-owned runtime directory on shutdown.
// Directories supplied via XDG_RUNTIME_DIR are left untouched; they're
// owned by the session, not by this process.
func (rc *RuntimeConfig) Cleanup() {
	if rc.OwnedTempDir && rc.RuntimeDir != "" {
		_ = os.RemoveAll(rc.RuntimeDir)
	}
}

// SocketPath joins the runtime dir and socket name for logging/display
// purposes; the actual bind call resolves the name itself.
func (rc *RuntimeConfig) SocketPath(socketName string) string {
	return filepath.Join(rc.RuntimeDir, socketName)
}
