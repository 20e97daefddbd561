package search

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/mathworks/MATLAB-language-server-sub001/internal/types"
)

// ClassifyOccurrence labels one occurrence of name as a write when its
// range coincides, by containment, with a variable definition or a class
// member declaration of the same name; everything else is a read.
// Containment rather than string identity keeps a same-named but unrelated
// identifier from being promoted to a write.
func ClassifyOccurrence(record *types.FileRecord, name string, rng protocol.Range) protocol.DocumentHighlightKind {
	if record == nil {
		return protocol.DocumentHighlightKindRead
	}

	for _, fn := range record.Functions {
		for _, def := range fn.Variables.Definitions {
			if def.Name == name && rangeContains(def.Range, rng) {
				return protocol.DocumentHighlightKindWrite
			}
		}
	}

	if record.Class != nil {
		for _, prop := range record.Class.Properties {
			if prop.Name == name && rangeContains(prop.Range, rng) {
				return protocol.DocumentHighlightKindWrite
			}
		}
		for _, enum := range record.Class.Enumerations {
			if enum.Name == name && rangeContains(enum.Range, rng) {
				return protocol.DocumentHighlightKindWrite
			}
		}
	}

	return protocol.DocumentHighlightKindRead
}

// DocumentHighlights returns every occurrence of name in the record, each
// classified read or write.
func (s *Service) DocumentHighlights(name string, record *types.FileRecord) []protocol.DocumentHighlight {
	locations := s.FindReferencesInFile(name, record)
	out := make([]protocol.DocumentHighlight, 0, len(locations))
	for _, loc := range locations {
		kind := ClassifyOccurrence(record, name, loc.Range)
		out = append(out, protocol.DocumentHighlight{Range: loc.Range, Kind: &kind})
	}
	return out
}

// rangeContains reports whether outer fully contains inner. Equal ranges
// contain each other.
func rangeContains(outer, inner protocol.Range) bool {
	return !positionBefore(inner.Start, outer.Start) && !positionBefore(outer.End, inner.End)
}

func positionBefore(a, b protocol.Position) bool {
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Character < b.Character
}
