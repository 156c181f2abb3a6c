package fsnotify

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsArtifact(t *testing.T) {
	assert.True(t, isArtifact("/cache/lib/python.so"))
	assert.True(t, isArtifact("/cache/lib/rust.dylib"))
	assert.False(t, isArtifact("/cache/lib/python.so.tmp-1234"))
	assert.False(t, isArtifact("/cache/lib/notes.txt"))
	assert.False(t, isArtifact("/cache/lib/builds.db"))
}

func TestWatchReportsArtifactWrites(t *testing.T) {
	libDir := t.TempDir()

	w, err := NewWatcher()
	require.NoError(t, err)
	defer w.Stop()

	var mu sync.Mutex
	var got []string
	require.NoError(t, w.Watch(libDir, func(soPath string) {
		mu.Lock()
		got = append(got, filepath.Base(soPath))
		mu.Unlock()
	}))

	require.NoError(t, os.WriteFile(filepath.Join(libDir, "python.so"), []byte("x"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(libDir, "go.so.tmp-99"), []byte("x"), 0755))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, name := range got {
			if name == "python.so" {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.NotContains(t, got, "go.so.tmp-99", "temp files mid-compile must be ignored")
}

func TestWatchRenameIntoPlace(t *testing.T) {
	libDir := t.TempDir()

	w, err := NewWatcher()
	require.NoError(t, err)
	defer w.Stop()

	done := make(chan string, 1)
	require.NoError(t, w.Watch(libDir, func(soPath string) {
		select {
		case done <- soPath:
		default:
		}
	}))

	// The provisioner's install step: compile to temp, rename into place.
	tmp := filepath.Join(libDir, "rust.so.tmp-42")
	require.NoError(t, os.WriteFile(tmp, []byte("x"), 0755))
	require.NoError(t, os.Rename(tmp, filepath.Join(libDir, "rust.so")))

	select {
	case path := <-done:
		assert.Equal(t, "rust.so", filepath.Base(path))
	case <-time.After(2 * time.Second):
		t.Fatal("no event for renamed artifact")
	}
}

func TestWatchBurstCollapsesButIsNotDropped(t *testing.T) {
	libDir := t.TempDir()

	w, err := NewWatcher()
	require.NoError(t, err)
	defer w.Stop()

	var mu sync.Mutex
	count := 0
	require.NoError(t, w.Watch(libDir, func(string) {
		mu.Lock()
		count++
		mu.Unlock()
	}))
	counted := func() int {
		mu.Lock()
		defer mu.Unlock()
		return count
	}

	// Two rebuilds in quick succession: the report fires after the burst,
	// never only for the first write.
	soPath := filepath.Join(libDir, "python.so")
	require.NoError(t, os.WriteFile(soPath, []byte("v1"), 0755))
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, os.WriteFile(soPath, []byte("v2"), 0755))

	assert.Eventually(t, func() bool { return counted() >= 1 }, 2*time.Second, 10*time.Millisecond)

	// A later rebuild triggers again: firing pruned the path's timer state.
	seen := counted()
	require.NoError(t, os.WriteFile(soPath, []byte("v3"), 0755))
	assert.Eventually(t, func() bool { return counted() > seen }, 2*time.Second, 10*time.Millisecond)
}

func TestStopIdempotent(t *testing.T) {
	w, err := NewWatcher()
	require.NoError(t, err)

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}
