package indexing

import (
	"context"
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/mathworks/MATLAB-language-server-sub001/internal/config"
	"github.com/mathworks/MATLAB-language-server-sub001/internal/debug"
)

// WorkspaceIndexer discovers indexable files under workspace folders and
// schedules bulk passes. Folder-change tracking is armed only when the
// client declares workspace-folder support; otherwise the component is
// permanently inert for folder events.
type WorkspaceIndexer struct {
	indexer  *Indexer
	settings *config.Manager

	mu             sync.Mutex
	folderTracking bool
}

// NewWorkspaceIndexer creates a workspace indexer bound to the facade.
func NewWorkspaceIndexer(ix *Indexer, settings *config.Manager) *WorkspaceIndexer {
	return &WorkspaceIndexer{indexer: ix, settings: settings}
}

// SetupCallbacks arms folder-change tracking if the client supports
// workspace folders. Called once during initialization.
func (wi *WorkspaceIndexer) SetupCallbacks(caps *protocol.ClientCapabilities) {
	supported := caps != nil &&
		caps.Workspace != nil &&
		caps.Workspace.WorkspaceFolders != nil &&
		*caps.Workspace.WorkspaceFolders

	wi.mu.Lock()
	wi.folderTracking = supported
	wi.mu.Unlock()

	debug.LogIndexing("workspace folder tracking supported: %v", supported)
}

// FolderTrackingEnabled reports whether folder-change events are honored.
func (wi *WorkspaceIndexer) FolderTrackingEnabled() bool {
	wi.mu.Lock()
	defer wi.mu.Unlock()
	return wi.folderTracking
}

// IndexWorkspace bulk-indexes all given workspace folders. No-op when
// workspace indexing is disabled by configuration.
func (wi *WorkspaceIndexer) IndexWorkspace(ctx context.Context, folders []string) {
	if !wi.settings.Get().IndexWorkspace {
		debug.LogIndexing("workspace indexing disabled by configuration")
		return
	}
	wi.indexer.IndexFolders(ctx, folders)
}

// HandleFoldersAdded bulk-indexes only the newly added folders. The
// enablement conditions are re-checked because settings may have changed
// since setup.
func (wi *WorkspaceIndexer) HandleFoldersAdded(ctx context.Context, added []string) {
	if !wi.FolderTrackingEnabled() {
		return
	}
	if !wi.settings.Get().IndexWorkspace {
		return
	}
	wi.indexer.IndexFolders(ctx, added)
}
