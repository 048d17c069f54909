package log

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogStore_RecordAndFailedResources(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewStore(tmpDir)
	require.NoError(t, err)

	store.RecordStart("tool", "ripgrep", "14.0.0", "install", "download")
	store.RecordStart("tool", "gopls", "0.16.0", "install", "go install")

	store.RecordOutput("tool", "ripgrep", "downloading...")
	store.RecordOutput("tool", "ripgrep", "verifying checksum...")

	store.RecordOutput("tool", "gopls", "go: downloading golang.org/x/tools")
	store.RecordOutput("tool", "gopls", "compile error: something broke")

	store.RecordError("tool", "gopls", errors.New("command failed: exit status 1"))
	store.RecordComplete("tool", "ripgrep")

	failed := store.FailedResources()
	require.Len(t, failed, 1)

	assert.Equal(t, "tool", failed[0].Kind)
	assert.Equal(t, "gopls", failed[0].Name)
	assert.Equal(t, "0.16.0", failed[0].Version)
	assert.Equal(t, "install", failed[0].Action)
	assert.Equal(t, "go install", failed[0].Method)
	require.EqualError(t, failed[0].Error, "command failed: exit status 1")
	assert.Contains(t, failed[0].Output, "go: downloading golang.org/x/tools\n")
	assert.Contains(t, failed[0].Output, "compile error: something broke\n")
}

func TestLogStore_RecordComplete_DiscardsBuffer(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewStore(tmpDir)
	require.NoError(t, err)

	store.RecordStart("tool", "foo", "1.0.0", "install", "download")
	store.RecordOutput("tool", "foo", "some output")
	store.RecordComplete("tool", "foo")

	failed := store.FailedResources()
	assert.Empty(t, failed)

	store.mu.Lock()
	_, bufExists := store.buffers[resourceKey("tool", "foo")]
	_, metaExists := store.metadata[resourceKey("tool", "foo")]
	store.mu.Unlock()

	assert.False(t, bufExists)
	assert.False(t, metaExists)
}

func TestLogStore_Flush(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewStore(tmpDir)
	require.NoError(t, err)

	store.RecordStart("tool", "gopls", "0.16.0", "install", "go install")
	store.RecordOutput("tool", "gopls", "go: downloading something")
	store.RecordOutput("tool", "gopls", "error: build failed")
	store.RecordError("tool", "gopls", errors.New("exit status 1"))

	store.RecordStart("runtime", "rust", "stable", "install", "rustup")
	store.RecordOutput("runtime", "rust", "info: installing component")
	store.RecordError("runtime", "rust", errors.New("network error"))

	err = store.Flush()
	require.NoError(t, err)

	goplsLog := filepath.Join(store.SessionDir(), "tool_gopls.log")
	rustLog := filepath.Join(store.SessionDir(), "runtime_rust.log")

	goplsContent, err := os.ReadFile(goplsLog)
	require.NoError(t, err)
	assert.Contains(t, string(goplsContent), "# Resource: tool/gopls")
	assert.Contains(t, string(goplsContent), "# Version: 0.16.0")
	assert.Contains(t, string(goplsContent), "# Action: install")
	assert.Contains(t, string(goplsContent), "# Method: go install")
	assert.Contains(t, string(goplsContent), "# Error: exit status 1")
	assert.Contains(t, string(goplsContent), "go: downloading something")
	assert.Contains(t, string(goplsContent), "error: build failed")

	rustContent, err := os.ReadFile(rustLog)
	require.NoError(t, err)
	assert.Contains(t, string(rustContent), "# Resource: runtime/rust")
	assert.Contains(t, string(rustContent), "info: installing component")
}

func TestLogStore_Flush_NoFailures(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewStore(tmpDir)
	require.NoError(t, err)

	store.RecordStart("tool", "foo", "1.0.0", "install", "download")
	store.RecordComplete("tool", "foo")

	err = store.Flush()
	require.NoError(t, err)

	_, err = os.Stat(store.SessionDir())
	assert.True(t, os.IsNotExist(err))
}

func TestLogStore_Cleanup(t *testing.T) {
	tmpDir := t.TempDir()

	sessions := []string{
		"20260201T100000",
		"20260202T100000",
		"20260203T100000",
		"20260204T100000",
		"20260205T100000",
		"20260206T100000",
		"20260207T100000",
	}
	for _, s := range sessions {
		require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, s), 0755))
	}

	store, err := NewStore(tmpDir)
	require.NoError(t, err)

	err = store.Cleanup(3)
	require.NoError(t, err)

	entries, err := os.ReadDir(tmpDir)
	require.NoError(t, err)

	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}

	assert.Len(t, dirs, 3)
	assert.Contains(t, dirs, "20260205T100000")
	assert.Contains(t, dirs, "20260206T100000")
	assert.Contains(t, dirs, "20260207T100000")
}

func TestLogStore_Cleanup_FewSessions(t *testing.T) {
	tmpDir := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "20260201T100000"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "20260202T100000"), 0755))

	store, err := NewStore(tmpDir)
	require.NoError(t, err)

	err = store.Cleanup(5)
	require.NoError(t, err)

	entries, err := os.ReadDir(tmpDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestLogStore_MultipleFailures_Sorted(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewStore(tmpDir)
	require.NoError(t, err)

	store.RecordStart("tool", "zebra", "1.0.0", "install", "download")
	store.RecordStart("runtime", "go", "1.25.0", "install", "download")
	store.RecordStart("tool", "alpha", "2.0.0", "install", "cargo install")

	store.RecordError("tool", "zebra", errors.New("err1"))
	store.RecordError("runtime", "go", errors.New("err2"))
	store.RecordError("tool", "alpha", errors.New("err3"))

	failed := store.FailedResources()
	require.Len(t, failed, 3)

	assert.Equal(t, "runtime", failed[0].Kind)
	assert.Equal(t, "go", failed[0].Name)
	assert.Equal(t, "tool", failed[1].Kind)
	assert.Equal(t, "alpha", failed[1].Name)
	assert.Equal(t, "tool", failed[2].Kind)
	assert.Equal(t, "zebra", failed[2].Name)
}
