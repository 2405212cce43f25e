package terminal

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIPCServerRoundTripsCommand(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
	display := ":test-ipc-1"

	srv, err := NewIPCServer(display)
	assert.NoError(t, err)
	defer srv.Close()

	var mu sync.Mutex
	var gotCmd, gotArg string
	done := make(chan struct{})
	srv.OnCommand = func(cmd, arg string) {
		mu.Lock()
		gotCmd, gotArg = cmd, arg
		mu.Unlock()
		close(done)
	}

	err = SendCommand(display, "open-tab", "/home/user")
	assert.NoError(t, err)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for command")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "open-tab", gotCmd)
	assert.Equal(t, "/home/user", gotArg)
}

func TestSendCommandFailsWithoutRunningInstance(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
	err := SendCommand(":no-such-display", "ping", "")
	assert.Error(t, err)
}
