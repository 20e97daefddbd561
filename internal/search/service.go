// Package search answers navigation queries against the file index:
// definitions, references with read/write classification, document symbols,
// and workspace symbol lookup. It never errors toward callers; an engine
// outage or unresolvable name yields empty results.
package search

import (
	"context"
	"os"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/mathworks/MATLAB-language-server-sub001/internal/debug"
	"github.com/mathworks/MATLAB-language-server-sub001/internal/index"
	"github.com/mathworks/MATLAB-language-server-sub001/internal/indexing"
	"github.com/mathworks/MATLAB-language-server-sub001/internal/resolver"
	"github.com/mathworks/MATLAB-language-server-sub001/internal/types"
	"github.com/mathworks/MATLAB-language-server-sub001/pkg/pathutil"
)

// Scope controls how far a definition search may reach.
type Scope int

const (
	// ScopeFile restricts the search to the requesting file.
	ScopeFile Scope = iota
	// ScopeWorkspace allows cross-file resolution through the path resolver.
	ScopeWorkspace
)

// Service is the symbol search facade over the file index.
type Service struct {
	files    *index.FileIndex
	resolver *resolver.PathResolver
	indexer  *indexing.Indexer
}

// NewService creates a search service.
func NewService(files *index.FileIndex, pathResolver *resolver.PathResolver, ix *indexing.Indexer) *Service {
	return &Service{files: files, resolver: pathResolver, indexer: ix}
}

// FindDefinitions resolves a name to its definition locations. The
// requesting file's own record is searched first, so local and nested
// definitions shadow same-named globals; only on a miss, and only with
// workspace scope, is the name resolved to another file.
func (s *Service) FindDefinitions(ctx context.Context, name, contextFilePath string, scope Scope) []protocol.Location {
	if record := s.files.Get(contextFilePath); record != nil {
		if locs := definitionsInRecord(record, name); len(locs) > 0 {
			return locs
		}
	}

	if scope != ScopeWorkspace {
		return nil
	}

	resolved := s.resolver.Resolve(ctx, name, contextFilePath)
	if resolved == "" || resolved == contextFilePath {
		return nil
	}

	record := s.ensureRecord(ctx, resolved)
	if record == nil {
		return nil
	}
	if locs := definitionsInRecord(record, name); len(locs) > 0 {
		return locs
	}
	// The resolved file is the definition even when its record carries no
	// matching symbol (degraded parse): point at the top of the file.
	return []protocol.Location{{
		URI:   protocol.DocumentUri(pathutil.ToURI(resolved)),
		Range: protocol.Range{},
	}}
}

// definitionsInRecord searches one record for declarations of name:
// function declarations first, then class and class-member declarations,
// then local variable definitions.
func definitionsInRecord(record *types.FileRecord, name string) []protocol.Location {
	uri := protocol.DocumentUri(pathutil.ToURI(record.FilePath))

	for _, fn := range record.Functions {
		if fn.Name == name {
			return []protocol.Location{{URI: uri, Range: fn.DeclarationRange}}
		}
	}

	if record.Class != nil {
		if record.Class.Name == name {
			return []protocol.Location{{URI: uri, Range: record.Class.DeclarationRange}}
		}
		for _, prop := range record.Class.Properties {
			if prop.Name == name {
				return []protocol.Location{{URI: uri, Range: prop.Range}}
			}
		}
		for _, enum := range record.Class.Enumerations {
			if enum.Name == name {
				return []protocol.Location{{URI: uri, Range: enum.Range}}
			}
		}
	}

	var out []protocol.Location
	for _, fn := range record.Functions {
		for _, def := range fn.Variables.Definitions {
			if def.Name == name {
				out = append(out, protocol.Location{URI: uri, Range: def.Range})
			}
		}
		if len(out) > 0 {
			// Definitions of one variable stay within one function scope.
			break
		}
	}
	return out
}

// FindReferencesInFile returns every occurrence of name recorded for one
// file, in record order: the file-level reference list first (properties,
// then call-style references), then per-function variable occurrences.
// Duplicate ranges are collapsed.
func (s *Service) FindReferencesInFile(name string, record *types.FileRecord) []protocol.Location {
	if record == nil {
		return nil
	}
	uri := protocol.DocumentUri(pathutil.ToURI(record.FilePath))

	var out []protocol.Location
	seen := make(map[protocol.Range]bool)
	add := func(nr types.NameRange) {
		if nr.Name != name || seen[nr.Range] {
			return
		}
		seen[nr.Range] = true
		out = append(out, protocol.Location{URI: uri, Range: nr.Range})
	}

	for _, ref := range record.References {
		add(ref)
	}
	for _, fn := range record.Functions {
		for _, def := range fn.Variables.Definitions {
			add(def)
		}
		for _, ref := range fn.Variables.References {
			add(ref)
		}
	}
	return out
}

// FindReferences returns occurrences of name across the whole index,
// starting with the requesting file. Cross-file search is just the in-file
// primitive applied per record.
func (s *Service) FindReferences(ctx context.Context, name, contextFilePath string) []protocol.Location {
	var out []protocol.Location

	if record := s.files.Get(contextFilePath); record != nil {
		out = append(out, s.FindReferencesInFile(name, record)...)
	}
	for _, record := range s.files.All() {
		if record.FilePath == contextFilePath {
			continue
		}
		out = append(out, s.FindReferencesInFile(name, record)...)
	}

	debug.LogSearch("references for %q: %d locations", name, len(out))
	return out
}

// ensureRecord returns the record for path, forcing a synchronous index
// from on-disk content when the file has never been indexed.
func (s *Service) ensureRecord(ctx context.Context, path string) *types.FileRecord {
	if record := s.files.Get(path); record != nil {
		return record
	}
	content, err := os.ReadFile(path)
	if err != nil {
		debug.LogSearch("cannot read %s for on-demand indexing: %v", path, err)
		return nil
	}
	s.indexer.IndexDocument(ctx, path, string(content))
	return s.files.Get(path)
}
