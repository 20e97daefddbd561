package indexing

// Document is the minimal view of an open editor document the indexer
// needs. Text is read at index time, so a debounced operation always sees
// the content present when it fires, not when it was queued.
type Document interface {
	Path() string
	Text() string
}

// TextDocument is the plain value implementation used by the protocol layer
// and tests.
type TextDocument struct {
	FilePath string
	Content  string
}

func (d TextDocument) Path() string { return d.FilePath }
func (d TextDocument) Text() string { return d.Content }
