package indexing

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/mathworks/MATLAB-language-server-sub001/internal/config"
	"github.com/mathworks/MATLAB-language-server-sub001/internal/engine/enginetest"
)

func capsFromJSON(t *testing.T, raw string) *protocol.ClientCapabilities {
	t.Helper()
	var caps protocol.ClientCapabilities
	require.NoError(t, json.Unmarshal([]byte(raw), &caps))
	return &caps
}

func TestSetupCallbacks_ArmsFolderTracking(t *testing.T) {
	ix, _ := newTestIndexer(enginetest.NewFake(), nil)

	ix.Workspace.SetupCallbacks(capsFromJSON(t, `{"workspace": {"workspaceFolders": true}}`))
	assert.True(t, ix.Workspace.FolderTrackingEnabled())

	ix.Workspace.SetupCallbacks(capsFromJSON(t, `{"workspace": {"workspaceFolders": false}}`))
	assert.False(t, ix.Workspace.FolderTrackingEnabled())

	ix.Workspace.SetupCallbacks(capsFromJSON(t, `{}`))
	assert.False(t, ix.Workspace.FolderTrackingEnabled())
}

func TestIndexWorkspace_DisabledByConfiguration(t *testing.T) {
	dir, _ := writeWorkspace(t, "a.m")
	fake := enginetest.NewFake()
	bulk := &captureBulk{}
	ix, _ := newTestIndexer(fake, bulk)

	settings := config.DefaultSettings()
	settings.IndexWorkspace = false
	ix.settings.Replace(settings)

	ix.Workspace.IndexWorkspace(context.Background(), []string{dir})

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, bulk.all())
}

func TestHandleFoldersAdded_RequiresTracking(t *testing.T) {
	dir, _ := writeWorkspace(t, "a.m")
	bulk := &captureBulk{}
	ix, _ := newTestIndexer(enginetest.NewFake(), bulk)

	ix.Workspace.HandleFoldersAdded(context.Background(), []string{dir})

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, bulk.all())
}

func TestHandleFoldersAdded_IndexesOnlyAddedFolders(t *testing.T) {
	dir, paths := writeWorkspace(t, "a.m")
	bulk := &captureBulk{}
	ix, _ := newTestIndexer(enginetest.NewFake(), bulk)
	ix.Workspace.SetupCallbacks(capsFromJSON(t, `{"workspace": {"workspaceFolders": true}}`))

	done := make(chan int, 1)
	ix.SetOnBulkComplete(func(n int) { done <- n })

	ix.Workspace.HandleFoldersAdded(context.Background(), []string{dir})

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("bulk pass did not complete")
	}

	batches := bulk.all()
	require.Len(t, batches, 1)
	assert.Equal(t, paths, batches[0])
}
