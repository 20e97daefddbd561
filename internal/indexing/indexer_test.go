package indexing

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mathworks/MATLAB-language-server-sub001/internal/config"
	"github.com/mathworks/MATLAB-language-server-sub001/internal/engine"
	"github.com/mathworks/MATLAB-language-server-sub001/internal/engine/enginetest"
	"github.com/mathworks/MATLAB-language-server-sub001/internal/index"
	"github.com/mathworks/MATLAB-language-server-sub001/internal/types"
)

func newTestIndexer(fake *enginetest.Fake, bulk engine.BulkParser) (*Indexer, *index.FileIndex) {
	settings := config.DefaultSettings()
	settings.DebounceMs = 20
	if bulk == nil {
		bulk = &enginetest.ScriptedBulkParser{}
	}
	files := index.NewFileIndex()
	return NewIndexer(fake, bulk, files, config.NewManager(settings)), files
}

// captureBulk records the batches handed to it and terminates each stream
// immediately.
type captureBulk struct {
	mu      sync.Mutex
	batches [][]string
}

func (b *captureBulk) Parse(_ context.Context, files []string, _ int) <-chan types.CodeDataMessage {
	b.mu.Lock()
	b.batches = append(b.batches, files)
	b.mu.Unlock()
	out := make(chan types.CodeDataMessage, 1)
	out <- types.CodeDataMessage{Done: true}
	close(out)
	return out
}

func (b *captureBulk) all() [][]string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.batches
}

func writeWorkspace(t *testing.T, names ...string) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x = 1;\n"), 0o644))
		paths = append(paths, path)
	}
	return dir, paths
}

func TestIndexDocument_StoresRecord(t *testing.T) {
	fake := enginetest.NewFake()
	fake.Records["/ws/a.m"] = &types.FileRecord{
		FilePath:  "/ws/a.m",
		Functions: []types.FunctionInfo{{Name: "f"}},
	}
	ix, files := newTestIndexer(fake, nil)

	ix.IndexDocument(context.Background(), "/ws/a.m", "function f\nend\n")

	record := files.Get("/ws/a.m")
	require.NotNil(t, record)
	assert.Len(t, record.Functions, 1)
	assert.Equal(t, index.HashContent("function f\nend\n"), record.ContentHash)
}

func TestIndexDocument_UnchangedContentSkipsEngine(t *testing.T) {
	fake := enginetest.NewFake()
	ix, _ := newTestIndexer(fake, nil)

	ix.IndexDocument(context.Background(), "/ws/a.m", "x = 1;")
	ix.IndexDocument(context.Background(), "/ws/a.m", "x = 1;")

	assert.Equal(t, 1, fake.ComputeCallCount("/ws/a.m"))

	ix.IndexDocument(context.Background(), "/ws/a.m", "x = 2;")
	assert.Equal(t, 2, fake.ComputeCallCount("/ws/a.m"))
}

func TestIndexDocument_StaleRecordIsRecomputed(t *testing.T) {
	fake := enginetest.NewFake()
	ix, files := newTestIndexer(fake, nil)

	ix.IndexDocument(context.Background(), "/ws/a.m", "x = 1;")
	files.MarkStale([]string{"/ws/a.m"})
	ix.IndexDocument(context.Background(), "/ws/a.m", "x = 1;")

	assert.Equal(t, 2, fake.ComputeCallCount("/ws/a.m"))
	assert.False(t, files.Stale("/ws/a.m"))
}

func TestIndexDocument_ConcurrentWithStaleMarking(t *testing.T) {
	fake := enginetest.NewFake()
	ix, files := newTestIndexer(fake, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			files.MarkStale([]string{"/ws/a.m"})
		}
	}()
	for i := 0; i < 500; i++ {
		ix.IndexDocument(context.Background(), "/ws/a.m", "x = 1;")
	}
	<-done

	assert.True(t, files.Has("/ws/a.m"))
}

func TestIndexDocument_DisconnectedIsNoop(t *testing.T) {
	fake := enginetest.NewFake()
	fake.Disconnected = true
	ix, files := newTestIndexer(fake, nil)

	ix.IndexDocument(context.Background(), "/ws/a.m", "x = 1;")

	assert.Nil(t, files.Get("/ws/a.m"))
	assert.Empty(t, fake.ComputeCalls)
}

func TestIndexFolders_AppliesStreamedRecords(t *testing.T) {
	dir, paths := writeWorkspace(t, "a.m", "b.m", "sub/c.m")

	// Records arrive in a different order than enumeration; the last message
	// both carries a record and terminates the batch.
	script := &enginetest.ScriptedBulkParser{Messages: []types.CodeDataMessage{
		{FilePath: paths[2], Record: types.EmptyFileRecord(paths[2])},
		{FilePath: paths[0], Record: types.EmptyFileRecord(paths[0])},
		{FilePath: paths[1], Record: types.EmptyFileRecord(paths[1]), Done: true},
	}}

	fake := enginetest.NewFake()
	ix, files := newTestIndexer(fake, script)

	done := make(chan int, 1)
	ix.SetOnBulkComplete(func(n int) { done <- n })

	ix.IndexFolders(context.Background(), []string{dir})

	select {
	case n := <-done:
		assert.Equal(t, 3, n)
	case <-time.After(5 * time.Second):
		t.Fatal("bulk pass did not complete")
	}

	for _, p := range paths {
		require.NotNil(t, files.Get(p), "missing record for %s", p)
		assert.False(t, files.Stale(p))
	}
}

func TestIndexFolders_EmptyFolderCompletesImmediately(t *testing.T) {
	fake := enginetest.NewFake()
	ix, _ := newTestIndexer(fake, &captureBulk{})

	done := make(chan int, 1)
	ix.SetOnBulkComplete(func(n int) { done <- n })

	ix.IndexFolders(context.Background(), []string{t.TempDir()})

	select {
	case n := <-done:
		assert.Equal(t, 0, n)
	case <-time.After(5 * time.Second):
		t.Fatal("bulk pass did not complete")
	}
}

func TestIndexFolders_DisconnectedIsNoop(t *testing.T) {
	dir, _ := writeWorkspace(t, "a.m")
	fake := enginetest.NewFake()
	fake.Disconnected = true
	bulk := &captureBulk{}
	ix, _ := newTestIndexer(fake, bulk)

	ix.IndexFolders(context.Background(), []string{dir})

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, bulk.all())
}

func TestHandleDocumentClosed_InsideWorkspaceKeepsRecord(t *testing.T) {
	fake := enginetest.NewFake()
	ix, files := newTestIndexer(fake, nil)
	files.Set(types.EmptyFileRecord("/ws/proj/a.m"))

	ix.HandleDocumentClosed("/ws/proj/a.m", []string{"/ws/proj"})

	assert.True(t, files.Has("/ws/proj/a.m"))
}

func TestHandleDocumentClosed_OutsideWorkspaceDeletesRecord(t *testing.T) {
	fake := enginetest.NewFake()
	ix, files := newTestIndexer(fake, nil)
	files.Set(types.EmptyFileRecord("/elsewhere/scratch.m"))

	ix.HandleDocumentClosed("/elsewhere/scratch.m", []string{"/ws/proj"})

	assert.False(t, files.Has("/elsewhere/scratch.m"))
}

func TestStart_ReindexesOpenDocumentsOnConnect(t *testing.T) {
	fake := enginetest.NewFake()
	fake.Disconnected = true
	ix, files := newTestIndexer(fake, nil)

	ix.SetOpenDocumentSupplier(func() []Document {
		return []Document{TextDocument{FilePath: "/ws/open.m", Content: "x = 1;"}}
	})
	ix.Start()

	fake.FireConnected()

	require.Eventually(t, func() bool {
		return files.Has("/ws/open.m")
	}, 5*time.Second, 10*time.Millisecond)
}
