package lsphandler

import (
	"sync"

	"github.com/mathworks/MATLAB-language-server-sub001/internal/indexing"
	"github.com/mathworks/MATLAB-language-server-sub001/pkg/pathutil"
)

// trackedDocument is one open editor document. Text is read under lock so a
// debounced index firing mid-edit still sees a consistent snapshot.
type trackedDocument struct {
	path string

	mu      sync.RWMutex
	content string
}

func (d *trackedDocument) Path() string {
	return d.path
}

func (d *trackedDocument) Text() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.content
}

func (d *trackedDocument) setText(content string) {
	d.mu.Lock()
	d.content = content
	d.mu.Unlock()
}

// documentStore tracks the open documents by URI.
type documentStore struct {
	mu   sync.RWMutex
	docs map[string]*trackedDocument
}

func newDocumentStore() *documentStore {
	return &documentStore{docs: make(map[string]*trackedDocument)}
}

func (s *documentStore) open(uri, content string) *trackedDocument {
	doc := &trackedDocument{path: pathutil.FromURI(uri), content: content}
	s.mu.Lock()
	s.docs[uri] = doc
	s.mu.Unlock()
	return doc
}

func (s *documentStore) get(uri string) *trackedDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs[uri]
}

func (s *documentStore) close(uri string) *trackedDocument {
	s.mu.Lock()
	doc := s.docs[uri]
	delete(s.docs, uri)
	s.mu.Unlock()
	return doc
}

func (s *documentStore) all() []indexing.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]indexing.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		out = append(out, doc)
	}
	return out
}
