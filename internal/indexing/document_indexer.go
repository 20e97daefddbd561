package indexing

import (
	"context"
	"sync"
	"time"

	"github.com/mathworks/MATLAB-language-server-sub001/internal/config"
)

// DocumentIndexer debounces re-indexing of open documents so rapid edits
// collapse to one index operation, and provides the forced flush queries
// rely on for freshness.
type DocumentIndexer struct {
	indexer  *Indexer
	settings *config.Manager

	mu      sync.Mutex
	pending map[string]*time.Timer

	// onIndexed fires after a debounced index completes (for tests).
	onIndexed func(filePath string)
}

// NewDocumentIndexer creates a document indexer bound to the facade.
func NewDocumentIndexer(ix *Indexer, settings *config.Manager) *DocumentIndexer {
	return &DocumentIndexer{
		indexer:  ix,
		settings: settings,
		pending:  make(map[string]*time.Timer),
	}
}

// QueueIndexing schedules an index of the document after the debounce
// delay, replacing any timer already pending for the same path. The text is
// read when the timer fires, so the operation indexes the content present
// after the last edit.
func (di *DocumentIndexer) QueueIndexing(doc Document) {
	path := doc.Path()
	delay := time.Duration(di.settings.Get().DebounceMs) * time.Millisecond

	di.mu.Lock()
	defer di.mu.Unlock()

	if t, ok := di.pending[path]; ok {
		t.Stop()
	}

	di.pending[path] = time.AfterFunc(delay, func() {
		di.mu.Lock()
		delete(di.pending, path)
		callback := di.onIndexed
		di.mu.Unlock()

		di.indexer.IndexDocument(context.Background(), path, doc.Text())
		if callback != nil {
			callback(path)
		}
	})
}

// IndexNow indexes the document immediately, bypassing the debounce.
func (di *DocumentIndexer) IndexNow(ctx context.Context, doc Document) {
	di.indexer.IndexDocument(ctx, doc.Path(), doc.Text())
}

// EnsureUpdated guarantees the document's index entry reflects its current
// text before returning: a pending debounce is cancelled and the index runs
// now; with nothing pending, the document is indexed only if no record
// exists yet. The cancel-before-force order prevents a stale queued timer
// from overwriting the fresher forced result.
func (di *DocumentIndexer) EnsureUpdated(ctx context.Context, doc Document) {
	path := doc.Path()

	di.mu.Lock()
	t, wasPending := di.pending[path]
	if wasPending {
		t.Stop()
		delete(di.pending, path)
	}
	di.mu.Unlock()

	if wasPending || !di.indexer.FileIndex().Has(path) {
		di.indexer.IndexDocument(ctx, path, doc.Text())
	}
}

// CancelPending drops any queued index for the path without running it.
func (di *DocumentIndexer) CancelPending(filePath string) {
	di.mu.Lock()
	if t, ok := di.pending[filePath]; ok {
		t.Stop()
		delete(di.pending, filePath)
	}
	di.mu.Unlock()
}

// PendingCount returns the number of documents with a queued index.
func (di *DocumentIndexer) PendingCount() int {
	di.mu.Lock()
	defer di.mu.Unlock()
	return len(di.pending)
}

// SetOnIndexed registers a callback fired after each debounced index
// completes (for tests).
func (di *DocumentIndexer) SetOnIndexed(fn func(filePath string)) {
	di.mu.Lock()
	di.onIndexed = fn
	di.mu.Unlock()
}
