package childproc

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpawnEnvSetsWaylandVarsAndRemovesDisplay(t *testing.T) {
	t.Setenv("DISPLAY", ":0")
	t.Setenv("SOME_OTHER_VAR", "keep-me")

	env := spawnEnv(Env{SocketName: "termui-3", RuntimeDir: "/run/user/1000"})

	got := map[string]string{}
	for _, kv := range env {
		for i := 0; i < len(kv); i++ {
			if kv[i] == '=' {
				got[kv[:i]] = kv[i+1:]
				break
			}
		}
	}

	assert.Equal(t, "termui-3", got["WAYLAND_DISPLAY"])
	assert.Equal(t, "/run/user/1000", got["XDG_RUNTIME_DIR"])
	assert.Equal(t, "wayland", got["XDG_SESSION_TYPE"])
	assert.Equal(t, "termui", got["XDG_CURRENT_DESKTOP"])
	assert.Equal(t, "1", got["LIBGL_ALWAYS_SOFTWARE"])
	assert.Equal(t, "pixman", got["WLR_RENDERER"])
	assert.Equal(t, "keep-me", got["SOME_OTHER_VAR"])
	_, hasDisplay := got["DISPLAY"]
	assert.False(t, hasDisplay)
}

func TestSpawnAndWait(t *testing.T) {
	m := NewManager()
	sess, err := m.Spawn("child-1", "true", nil, Env{SocketName: "termui-1", RuntimeDir: os.TempDir()})
	require.NoError(t, err)
	require.NoError(t, sess.Wait())
	m.Remove("child-1")
}

func TestSpawnReturnsErrorForMissingBinary(t *testing.T) {
	m := NewManager()
	_, err := m.Spawn("child-2", "this-binary-does-not-exist-termui-test", nil, Env{})
	assert.Error(t, err)
}
