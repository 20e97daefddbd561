// Package lsphandler adapts protocol-shaped requests onto the indexing and
// search subsystems. It owns no logic beyond shape conversion, the open
// document store, and the ensure-fresh flush before every query.
package lsphandler

import (
	"context"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/mathworks/MATLAB-language-server-sub001/internal/config"
	"github.com/mathworks/MATLAB-language-server-sub001/internal/debug"
	"github.com/mathworks/MATLAB-language-server-sub001/internal/indexing"
	"github.com/mathworks/MATLAB-language-server-sub001/internal/search"
	"github.com/mathworks/MATLAB-language-server-sub001/pkg/pathutil"
)

// ServerName identifies this server in the initialize handshake.
const ServerName = "MATLAB Language Server"

// Handler holds the server state behind the protocol surface.
type Handler struct {
	settings *config.Manager
	indexer  *indexing.Indexer
	search   *search.Service
	watcher  *indexing.FileWatcher
	docs     *documentStore

	mu      sync.Mutex
	folders []string
}

// New creates the protocol handler over the indexing facade.
func New(settings *config.Manager, ix *indexing.Indexer, searchService *search.Service, watcher *indexing.FileWatcher) *Handler {
	h := &Handler{
		settings: settings,
		indexer:  ix,
		search:   searchService,
		watcher:  watcher,
		docs:     newDocumentStore(),
	}
	ix.SetWorkspaceFolderSupplier(h.workspaceFolders)
	ix.SetOpenDocumentSupplier(h.docs.all)
	return h
}

func (h *Handler) workspaceFolders() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.folders))
	copy(out, h.folders)
	return out
}

// Initialize records workspace folders, arms folder tracking if the client
// supports it, and reports server capabilities.
func (h *Handler) Initialize(_ *glsp.Context, params *protocol.InitializeParams) (any, error) {
	var folders []string
	for _, wf := range params.WorkspaceFolders {
		if path := pathutil.FromURI(wf.URI); path != "" {
			folders = append(folders, path)
		}
	}
	if len(folders) == 0 && params.RootURI != nil {
		if path := pathutil.FromURI(string(*params.RootURI)); path != "" {
			folders = append(folders, path)
		}
	}

	h.mu.Lock()
	h.folders = folders
	h.mu.Unlock()

	h.indexer.Workspace.SetupCallbacks(&params.Capabilities)
	h.indexer.Start()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities := protocol.ServerCapabilities{
		TextDocumentSync:          syncKind,
		DefinitionProvider:        true,
		ReferencesProvider:        true,
		DocumentSymbolProvider:    true,
		DocumentHighlightProvider: true,
		RenameProvider:            true,
		WorkspaceSymbolProvider:   true,
	}

	serverName := ServerName
	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo:   &protocol.InitializeResultServerInfo{Name: serverName},
	}, nil
}

// Initialized kicks off the first workspace pass and watch mode.
func (h *Handler) Initialized(_ *glsp.Context, _ *protocol.InitializedParams) error {
	folders := h.workspaceFolders()
	h.indexer.Workspace.IndexWorkspace(context.Background(), folders)
	if h.watcher != nil {
		if err := h.watcher.Start(folders); err != nil {
			debug.LogLSP("file watcher failed to start: %v", err)
		}
	}
	return nil
}

// Shutdown stops background machinery.
func (h *Handler) Shutdown(_ *glsp.Context) error {
	if h.watcher != nil {
		h.watcher.Stop()
	}
	return nil
}

func (h *Handler) TextDocumentDidOpen(_ *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	doc := h.docs.open(params.TextDocument.URI, params.TextDocument.Text)
	h.indexer.Documents.IndexNow(context.Background(), doc)
	return nil
}

func (h *Handler) TextDocumentDidChange(_ *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	doc := h.docs.get(params.TextDocument.URI)
	if doc == nil {
		return nil
	}
	// Full sync: the last whole-document event wins.
	for _, change := range params.ContentChanges {
		if whole, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
			doc.setText(whole.Text)
		}
	}
	h.indexer.Documents.QueueIndexing(doc)
	return nil
}

func (h *Handler) TextDocumentDidClose(_ *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	if doc := h.docs.close(params.TextDocument.URI); doc != nil {
		h.indexer.HandleDocumentClosed(doc.Path(), h.workspaceFolders())
	}
	return nil
}

func (h *Handler) TextDocumentDefinition(_ *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	doc, name := h.resolveQuery(params.TextDocument.URI, params.Position)
	if name == "" {
		return nil, nil
	}
	locations := h.search.FindDefinitions(context.Background(), name, doc.Path(), search.ScopeWorkspace)
	if len(locations) == 0 {
		return nil, nil
	}
	return locations, nil
}

func (h *Handler) TextDocumentReferences(_ *glsp.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	doc, name := h.resolveQuery(params.TextDocument.URI, params.Position)
	if name == "" {
		return nil, nil
	}
	return h.search.FindReferences(context.Background(), name, doc.Path()), nil
}

func (h *Handler) TextDocumentDocumentHighlight(_ *glsp.Context, params *protocol.DocumentHighlightParams) ([]protocol.DocumentHighlight, error) {
	doc, name := h.resolveQuery(params.TextDocument.URI, params.Position)
	if name == "" {
		return nil, nil
	}
	record := h.indexer.FileIndex().Get(doc.Path())
	return h.search.DocumentHighlights(name, record), nil
}

func (h *Handler) TextDocumentDocumentSymbol(_ *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	doc := h.docs.get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	h.indexer.EnsureDocumentIndexIsUpdated(context.Background(), doc)
	record := h.indexer.FileIndex().Get(doc.Path())
	symbols := h.search.DocumentSymbols(record)
	if len(symbols) == 0 {
		return nil, nil
	}
	return symbols, nil
}

func (h *Handler) TextDocumentRename(_ *glsp.Context, params *protocol.RenameParams) (*protocol.WorkspaceEdit, error) {
	doc, name := h.resolveQuery(params.TextDocument.URI, params.Position)
	if name == "" {
		return nil, nil
	}
	return h.search.RenameEdits(context.Background(), name, doc.Path(), params.NewName), nil
}

func (h *Handler) WorkspaceSymbol(_ *glsp.Context, params *protocol.WorkspaceSymbolParams) ([]protocol.SymbolInformation, error) {
	return h.search.WorkspaceSymbols(params.Query), nil
}

func (h *Handler) WorkspaceDidChangeWorkspaceFolders(_ *glsp.Context, params *protocol.DidChangeWorkspaceFoldersParams) error {
	var added []string
	for _, wf := range params.Event.Added {
		if path := pathutil.FromURI(wf.URI); path != "" {
			added = append(added, path)
		}
	}
	removed := make(map[string]bool)
	for _, wf := range params.Event.Removed {
		if path := pathutil.FromURI(wf.URI); path != "" {
			removed[path] = true
		}
	}

	h.mu.Lock()
	var folders []string
	for _, f := range h.folders {
		if !removed[f] {
			folders = append(folders, f)
		}
	}
	folders = append(folders, added...)
	h.folders = folders
	h.mu.Unlock()

	h.indexer.Workspace.HandleFoldersAdded(context.Background(), added)
	return nil
}

func (h *Handler) WorkspaceDidChangeConfiguration(_ *glsp.Context, params *protocol.DidChangeConfigurationParams) error {
	raw, ok := params.Settings.(map[string]interface{})
	if !ok {
		return nil
	}
	if nested, ok := raw["matlab"].(map[string]interface{}); ok {
		raw = nested
	}
	h.settings.ApplyClientSettings(raw)
	return nil
}

// resolveQuery flushes the document's index and extracts the identifier at
// the query position.
func (h *Handler) resolveQuery(uri string, pos protocol.Position) (*trackedDocument, string) {
	doc := h.docs.get(uri)
	if doc == nil {
		return &trackedDocument{path: pathutil.FromURI(uri)}, ""
	}
	h.indexer.EnsureDocumentIndexIsUpdated(context.Background(), doc)
	return doc, identifierAt(doc.Text(), pos)
}
