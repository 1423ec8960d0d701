package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestFileWatcher_FiresOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "indices.txt")
	require.NoError(t, os.WriteFile(path, []byte("1 2 3\n"), 0o644))

	changed := make(chan string, 4)
	fw, err := NewFileWatcher(path, func(_ context.Context, p string) {
		changed <- p
	})
	require.NoError(t, err)
	fw.SetDebounce(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, fw.Start(ctx))
	defer fw.Stop()

	require.NoError(t, os.WriteFile(path, []byte("10 20\n"), 0o644))

	select {
	case got := <-changed:
		assert.Equal(t, fw.Path(), got)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change callback")
	}

	stats := fw.GetStats()
	assert.GreaterOrEqual(t, stats.Events, 1)
	assert.GreaterOrEqual(t, stats.Triggered, 1)
}

func TestFileWatcher_IgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "indices.txt")
	require.NoError(t, os.WriteFile(path, []byte("1\n"), 0o644))

	changed := make(chan string, 1)
	fw, err := NewFileWatcher(path, func(_ context.Context, p string) { changed <- p })
	require.NoError(t, err)
	fw.SetDebounce(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, fw.Start(ctx))
	defer fw.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644))

	select {
	case p := <-changed:
		t.Fatalf("unexpected callback for %s", p)
	case <-time.After(200 * time.Millisecond):
	}
	assert.Zero(t, fw.GetStats().Events)
}

func TestFileWatcher_StartMissingDir(t *testing.T) {
	fw, err := NewFileWatcher(filepath.Join(t.TempDir(), "missing", "f.txt"), func(context.Context, string) {})
	require.NoError(t, err)

	assert.Error(t, fw.Start(context.Background()))
	// Stop after a failed Start returns at once; goleak in TestMain checks
	// that the fsnotify goroutine is gone.
	fw.Stop()
}

func TestFileWatcher_StopIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.txt")
	fw, err := NewFileWatcher(path, func(context.Context, string) {})
	require.NoError(t, err)

	require.NoError(t, fw.Start(context.Background()))
	fw.Stop()
	fw.Stop()
}
