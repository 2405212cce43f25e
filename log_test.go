package terminal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionLogWritesAndFlushesOnNewline(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	l := NewSessionLog(dir, "/bin/bash", start)
	assert.False(t, l.Suspended())

	l.Write([]byte("hello"))
	l.Write([]byte(" world\n"))
	assert.NoError(t, l.Close())

	entries, err := os.ReadDir(dir)
	assert.NoError(t, err)
	assert.Len(t, entries, 1)

	contents, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	assert.NoError(t, err)
	assert.Equal(t, "hello world\n", string(contents))
}

func TestSessionLogSuspendResume(t *testing.T) {
	dir := t.TempDir()
	l := NewSessionLog(dir, "sh", time.Now())
	l.Suspend()
	assert.True(t, l.Suspended())
	l.Write([]byte("dropped"))
	l.Resume()
	assert.False(t, l.Suspended())
	l.Write([]byte("kept\n"))
	assert.NoError(t, l.Close())

	entries, _ := os.ReadDir(dir)
	contents, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	assert.NoError(t, err)
	assert.Equal(t, "kept\n", string(contents))
}

func TestSessionLogPermanentlySuspendsOnOpenFailure(t *testing.T) {
	l := NewSessionLog("/nonexistent-directory-for-test", "sh", time.Now())
	assert.True(t, l.Suspended())
	assert.NotEmpty(t, l.SuspendReason())

	l.Resume() // must not un-suspend a permanent failure
	assert.True(t, l.Suspended())

	l.Write([]byte("ignored")) // must not panic
	assert.NoError(t, l.Close())
}
