// Package recovery wraps the goroutines termui spawns (the
// input-polling thread and the child-wait goroutine) with panic
// recovery, so a translator edge case is logged with its stack trace
// instead of crashing the process. The reactor itself runs on the
// caller's goroutine and is not wrapped: a panic while handling a
// client request still ends the process.
package recovery

import (
	"runtime/debug"

	"github.com/vanpelt/termui/internal/logger"
)

// SafeGo runs fn in a goroutine; a panic is logged with its stack
// trace instead of crashing the process.
func SafeGo(name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorf("panic recovered in goroutine %q: %v", name, r)
				logger.Errorf("stack trace:\n%s", debug.Stack())
			}
		}()
		fn()
	}()
}

// SafeGoWithCleanup is SafeGo plus a cleanup callback that always runs,
// panic or not, used for the input-polling thread whose teardown must
// restore terminal state regardless of how it exits.
func SafeGoWithCleanup(name string, fn func(), cleanup func()) {
	go func() {
		defer func() {
			if cleanup != nil {
				cleanup()
			}
			if r := recover(); r != nil {
				logger.Errorf("panic recovered in goroutine %q: %v", name, r)
				logger.Errorf("stack trace:\n%s", debug.Stack())
			}
		}()
		fn()
	}()
}
