package termio

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSetupAndRestoreAreIdempotentPairs covers the round-trip of
// escape sequences written to a pipe standing in for the terminal fd.
func TestSetupAndRestoreAreIdempotentPairs(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	f := New(r, w)
	require.NoError(t, f.Setup())
	require.NoError(t, f.Restore())

	w.Close()
	buf := make([]byte, 4096)
	n, _ := r.Read(buf)
	out := string(buf[:n])

	assert.Contains(t, out, "\x1b[?1049h")
	assert.Contains(t, out, "\x1b[?25l")
	assert.Contains(t, out, "\x1b_Ga=d;\x1b\\")
	assert.Contains(t, out, "\x1b[?25h")
	assert.Contains(t, out, "\x1b[?1049l")
}

// TestPollEventReturnsNilOnTimeout covers the non-blocking-forever
// contract the input-polling thread's 10ms poll depends on.
func TestPollEventReturnsNilOnTimeout(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	f := New(r, w)
	start := time.Now()
	ev, err := f.PollEvent(20 * time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, ev)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

// TestPollEventReturnsBytesWhenReady covers the happy path: bytes
// written to the read side of the pipe before the deadline are
// delivered as a RawEvent.
func TestPollEventReturnsBytesWhenReady(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	f := New(r, w)
	go func() {
		_, _ = w.Write([]byte("q"))
	}()

	ev, err := f.PollEvent(500 * time.Millisecond)
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, []byte("q"), ev.Bytes)
}
