// Package index holds the workspace-wide file index: the single shared
// mutable store of the subsystem. Writes are whole-record replacements keyed
// by file path, so arbitrary interleaving of document and bulk indexing is
// safe under last-write-wins.
package index

import (
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/mathworks/MATLAB-language-server-sub001/internal/types"
)

// FileIndex maps absolute file paths to their most recent FileRecord. It
// exclusively owns the records; callers must not mutate a record after
// handing it over. Staleness is index-side bookkeeping, not record state, so
// records stay immutable after insertion.
type FileIndex struct {
	mu      sync.RWMutex
	records map[string]*types.FileRecord
	stale   map[string]bool
}

// NewFileIndex creates an empty index.
func NewFileIndex() *FileIndex {
	return &FileIndex{
		records: make(map[string]*types.FileRecord),
		stale:   make(map[string]bool),
	}
}

// Set inserts or wholesale-replaces the record for its file path and clears
// any stale mark: a fresh write is by definition up to date.
func (fi *FileIndex) Set(record *types.FileRecord) {
	if record == nil || record.FilePath == "" {
		return
	}
	fi.mu.Lock()
	fi.records[record.FilePath] = record
	delete(fi.stale, record.FilePath)
	fi.mu.Unlock()
}

// Get returns the record for filePath, or nil when the file has not been
// indexed. Absence is indistinguishable from "not yet indexed" on purpose.
func (fi *FileIndex) Get(filePath string) *types.FileRecord {
	fi.mu.RLock()
	defer fi.mu.RUnlock()
	return fi.records[filePath]
}

// Has reports whether a record exists for filePath.
func (fi *FileIndex) Has(filePath string) bool {
	fi.mu.RLock()
	defer fi.mu.RUnlock()
	_, ok := fi.records[filePath]
	return ok
}

// Delete removes the record for filePath, if any.
func (fi *FileIndex) Delete(filePath string) {
	fi.mu.Lock()
	delete(fi.records, filePath)
	delete(fi.stale, filePath)
	fi.mu.Unlock()
}

// Len returns the number of indexed files.
func (fi *FileIndex) Len() int {
	fi.mu.RLock()
	defer fi.mu.RUnlock()
	return len(fi.records)
}

// All returns a snapshot of every record. The slice is fresh; the records
// are the live ones and must be treated as read-only.
func (fi *FileIndex) All() []*types.FileRecord {
	fi.mu.RLock()
	defer fi.mu.RUnlock()
	out := make([]*types.FileRecord, 0, len(fi.records))
	for _, r := range fi.records {
		out = append(out, r)
	}
	return out
}

// MarkStale flags every currently indexed path in the given set. Bulk passes
// use this so the unchanged-content fast path cannot keep a record that
// predates the pass in flight.
func (fi *FileIndex) MarkStale(paths []string) {
	fi.mu.Lock()
	for _, p := range paths {
		if _, ok := fi.records[p]; ok {
			fi.stale[p] = true
		}
	}
	fi.mu.Unlock()
}

// Stale reports whether the path's record is flagged by an in-flight bulk
// pass.
func (fi *FileIndex) Stale(filePath string) bool {
	fi.mu.RLock()
	defer fi.mu.RUnlock()
	return fi.stale[filePath]
}

// UpToDate reports, atomically, whether a record exists for filePath with
// the given content hash and no stale mark. This is the unchanged-content
// fast path check.
func (fi *FileIndex) UpToDate(filePath string, hash uint64) bool {
	fi.mu.RLock()
	defer fi.mu.RUnlock()
	r := fi.records[filePath]
	return r != nil && r.ContentHash == hash && !fi.stale[filePath]
}

// HashContent returns the content hash stored on records to detect
// unchanged source text.
func HashContent(text string) uint64 {
	return xxhash.Sum64String(text)
}
