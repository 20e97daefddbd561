// Package indexing maintains the workspace-wide incremental symbol index:
// per-document debounced re-indexing, bulk workspace passes consuming the
// engine's streamed results, and the facade the rest of the server calls.
package indexing

import (
	"context"
	"sync"

	"github.com/mathworks/MATLAB-language-server-sub001/internal/config"
	"github.com/mathworks/MATLAB-language-server-sub001/internal/debug"
	"github.com/mathworks/MATLAB-language-server-sub001/internal/engine"
	"github.com/mathworks/MATLAB-language-server-sub001/internal/index"
)

// Indexer is the facade composing the file index, the per-document debounce
// layer, the workspace bulk layer, and the engine client. All indexing
// operations silently no-op while the engine is disconnected; "no record"
// and "not yet indexed" are deliberately the same observable state.
type Indexer struct {
	engine   engine.Core
	bulk     engine.BulkParser
	files    *index.FileIndex
	settings *config.Manager

	// Documents debounces per-document re-indexing.
	Documents *DocumentIndexer
	// Workspace schedules bulk passes over workspace folders.
	Workspace *WorkspaceIndexer

	mu               sync.Mutex
	folderSupplier   func() []string
	openDocsSupplier func() []Document
	onBulkComplete   func(fileCount int)
}

// NewIndexer wires up the indexing facade.
func NewIndexer(core engine.Core, bulk engine.BulkParser, files *index.FileIndex, settings *config.Manager) *Indexer {
	ix := &Indexer{
		engine:   core,
		bulk:     bulk,
		files:    files,
		settings: settings,
	}
	ix.Documents = NewDocumentIndexer(ix, settings)
	ix.Workspace = NewWorkspaceIndexer(ix, settings)
	return ix
}

// FileIndex exposes the underlying index for query components.
func (ix *Indexer) FileIndex() *index.FileIndex {
	return ix.files
}

// SetWorkspaceFolderSupplier registers the source of current workspace
// folder paths, used when the engine (re)connects.
func (ix *Indexer) SetWorkspaceFolderSupplier(fn func() []string) {
	ix.mu.Lock()
	ix.folderSupplier = fn
	ix.mu.Unlock()
}

// SetOpenDocumentSupplier registers the source of currently open documents,
// used when the engine (re)connects.
func (ix *Indexer) SetOpenDocumentSupplier(fn func() []Document) {
	ix.mu.Lock()
	ix.openDocsSupplier = fn
	ix.mu.Unlock()
}

// SetOnBulkComplete registers a callback fired after a bulk pass observes
// its terminal message (for tests).
func (ix *Indexer) SetOnBulkComplete(fn func(fileCount int)) {
	ix.mu.Lock()
	ix.onBulkComplete = fn
	ix.mu.Unlock()
}

// Start subscribes to engine lifecycle events. On connect the workspace and
// all open documents are (re)indexed, since any records computed before the
// connection are empty placeholders.
func (ix *Indexer) Start() {
	ix.engine.OnConnectionEvent(func(ev engine.ConnectionEvent) {
		if ev != engine.EventConnected {
			return
		}
		go ix.reindexAfterConnect()
	})
}

func (ix *Indexer) reindexAfterConnect() {
	ix.mu.Lock()
	folderSupplier := ix.folderSupplier
	openDocsSupplier := ix.openDocsSupplier
	ix.mu.Unlock()

	debug.LogIndexing("engine connected, refreshing index")

	if folderSupplier != nil {
		ix.Workspace.IndexWorkspace(context.Background(), folderSupplier())
	}
	if openDocsSupplier != nil {
		for _, doc := range openDocsSupplier() {
			ix.IndexDocument(context.Background(), doc.Path(), doc.Text())
		}
	}
}

// IndexDocument computes code data for one document snapshot and replaces
// its index entry. Returns once the write is visible. Unchanged content is
// detected by hash and skipped without an engine round trip.
func (ix *Indexer) IndexDocument(ctx context.Context, filePath, content string) {
	if filePath == "" || !ix.engine.Connected() {
		return
	}

	hash := index.HashContent(content)
	if ix.files.UpToDate(filePath, hash) {
		return
	}

	limit := ix.settings.Get().MaxFileSizeForAnalysis
	record := ix.engine.ComputeCodeData(ctx, content, filePath, limit)
	record.ContentHash = hash
	ix.files.Set(record)
	debug.LogIndexing("indexed %s (%d functions)", filePath, len(record.Functions))
}

// IndexFolders schedules a bulk pass over the given folders and returns
// immediately. Completion is observable only through FileIndex state (and
// the test callback); the pass ends when the stream's terminal message is
// seen.
func (ix *Indexer) IndexFolders(ctx context.Context, folders []string) {
	if len(folders) == 0 || !ix.engine.Connected() {
		return
	}
	go ix.runBulkPass(ctx, folders)
}

func (ix *Indexer) runBulkPass(ctx context.Context, folders []string) {
	settings := ix.settings.Get()

	paths := EnumerateFolders(ctx, folders, settings)
	debug.LogIndexing("bulk pass over %d folders: %d files", len(folders), len(paths))

	ix.mu.Lock()
	onComplete := ix.onBulkComplete
	ix.mu.Unlock()

	if len(paths) == 0 {
		if onComplete != nil {
			onComplete(0)
		}
		return
	}

	ix.files.MarkStale(paths)

	indexed := 0
	for msg := range ix.bulk.Parse(ctx, paths, settings.MaxFileSizeForAnalysis) {
		if msg.Record != nil {
			ix.files.Set(msg.Record)
			indexed++
		}
		if msg.Done {
			break
		}
	}

	debug.LogIndexing("bulk pass complete: %d/%d files indexed", indexed, len(paths))
	if onComplete != nil {
		onComplete(indexed)
	}
}

// EnsureDocumentIndexIsUpdated flushes any pending debounced index for the
// document and guarantees a record exists before returning. Query handlers
// call this so navigation never sees stale-by-keystroke data.
func (ix *Indexer) EnsureDocumentIndexIsUpdated(ctx context.Context, doc Document) {
	ix.Documents.EnsureUpdated(ctx, doc)
}

// HandleDocumentClosed drops the document's pending work and removes its
// record when the file lies outside every workspace folder; records inside
// the workspace stay and are simply overwritten later.
func (ix *Indexer) HandleDocumentClosed(filePath string, workspaceFolders []string) {
	ix.Documents.CancelPending(filePath)

	for _, folder := range workspaceFolders {
		if folder != "" && pathWithin(filePath, folder) {
			return
		}
	}
	ix.files.Delete(filePath)
}
