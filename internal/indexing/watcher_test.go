package indexing

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mathworks/MATLAB-language-server-sub001/internal/config"
	"github.com/mathworks/MATLAB-language-server-sub001/internal/engine/enginetest"
	"github.com/mathworks/MATLAB-language-server-sub001/internal/index"
)

func TestFileWatcher_DisabledByConfiguration(t *testing.T) {
	fake := enginetest.NewFake()
	ix, _ := newTestIndexer(fake, nil)

	fw, err := NewFileWatcher(ix, ix.settings)
	require.NoError(t, err)
	defer fw.Stop()

	require.NoError(t, fw.Start([]string{t.TempDir()}))

	// Watch mode is off by default: file churn must not reach the engine.
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, fake.ComputeCalls)
}

func TestFileWatcher_ReindexesChangedFile(t *testing.T) {
	dir := t.TempDir()
	fake := enginetest.NewFake()

	settings := config.DefaultSettings()
	settings.DebounceMs = 20
	settings.WatchMode = true
	manager := config.NewManager(settings)

	files := index.NewFileIndex()
	ix := NewIndexer(fake, &enginetest.ScriptedBulkParser{}, files, manager)

	fw, err := NewFileWatcher(ix, manager)
	require.NoError(t, err)
	require.NoError(t, fw.Start([]string{dir}))
	defer fw.Stop()

	path := filepath.Join(dir, "a.m")
	require.NoError(t, os.WriteFile(path, []byte("x = 1;\n"), 0o644))

	require.Eventually(t, func() bool {
		return files.Has(path)
	}, 10*time.Second, 20*time.Millisecond)
}

func TestFileWatcher_RemoveDropsRecord(t *testing.T) {
	dir := t.TempDir()
	fake := enginetest.NewFake()

	settings := config.DefaultSettings()
	settings.DebounceMs = 20
	settings.WatchMode = true
	manager := config.NewManager(settings)

	files := index.NewFileIndex()
	ix := NewIndexer(fake, &enginetest.ScriptedBulkParser{}, files, manager)

	fw, err := NewFileWatcher(ix, manager)
	require.NoError(t, err)
	require.NoError(t, fw.Start([]string{dir}))
	defer fw.Stop()

	path := filepath.Join(dir, "a.m")
	require.NoError(t, os.WriteFile(path, []byte("x = 1;\n"), 0o644))

	require.Eventually(t, func() bool {
		return files.Has(path)
	}, 10*time.Second, 20*time.Millisecond)

	require.NoError(t, os.Remove(path))

	require.Eventually(t, func() bool {
		return !files.Has(path)
	}, 10*time.Second, 20*time.Millisecond)
}
