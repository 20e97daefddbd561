package search

import (
	"strings"

	"github.com/hbollon/go-edlib"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/mathworks/MATLAB-language-server-sub001/internal/types"
	"github.com/mathworks/MATLAB-language-server-sub001/pkg/pathutil"
)

// workspaceSymbolMinSimilarity is the JaroWinkler score below which a
// non-substring candidate is dropped from workspace symbol results.
const workspaceSymbolMinSimilarity = 0.8

// DocumentSymbols flattens a record into the protocol's symbol tree: the
// class (with properties, enumeration members, and methods as children),
// free functions, and sections. No computation happens here beyond
// reshaping the record.
func (s *Service) DocumentSymbols(record *types.FileRecord) []protocol.DocumentSymbol {
	if record == nil {
		return nil
	}

	var out []protocol.DocumentSymbol

	if record.Class != nil {
		class := protocol.DocumentSymbol{
			Name:           record.Class.Name,
			Kind:           protocol.SymbolKindClass,
			Range:          record.Class.FullRange,
			SelectionRange: record.Class.DeclarationRange,
		}
		for _, prop := range record.Class.Properties {
			class.Children = append(class.Children, protocol.DocumentSymbol{
				Name:           prop.Name,
				Kind:           protocol.SymbolKindProperty,
				Range:          prop.Range,
				SelectionRange: prop.Range,
			})
		}
		for _, enum := range record.Class.Enumerations {
			class.Children = append(class.Children, protocol.DocumentSymbol{
				Name:           enum.Name,
				Kind:           protocol.SymbolKindEnumMember,
				Range:          enum.Range,
				SelectionRange: enum.Range,
			})
		}
		for _, fn := range record.Functions {
			if fn.ParentClassName != record.Class.Name {
				continue
			}
			class.Children = append(class.Children, protocol.DocumentSymbol{
				Name:           fn.Name,
				Kind:           protocol.SymbolKindMethod,
				Range:          fn.FullRange,
				SelectionRange: fn.DeclarationRange,
			})
		}
		out = append(out, class)
	}

	for _, fn := range record.Functions {
		if record.Class != nil && fn.ParentClassName == record.Class.Name {
			continue
		}
		out = append(out, protocol.DocumentSymbol{
			Name:           fn.Name,
			Kind:           protocol.SymbolKindFunction,
			Range:          fn.FullRange,
			SelectionRange: fn.DeclarationRange,
		})
	}

	for _, sec := range record.Sections {
		out = append(out, protocol.DocumentSymbol{
			Name:           sec.Title,
			Kind:           protocol.SymbolKindModule,
			Range:          sec.Range,
			SelectionRange: sec.Range,
		})
	}

	return out
}

// WorkspaceSymbols returns indexed classes and functions matching the
// query: substring matches always qualify, near matches qualify by
// JaroWinkler similarity. An empty query returns everything.
func (s *Service) WorkspaceSymbols(query string) []protocol.SymbolInformation {
	var out []protocol.SymbolInformation

	for _, record := range s.files.All() {
		uri := protocol.DocumentUri(pathutil.ToURI(record.FilePath))

		if record.Class != nil && matchesQuery(record.Class.Name, query) {
			out = append(out, protocol.SymbolInformation{
				Name:     record.Class.Name,
				Kind:     protocol.SymbolKindClass,
				Location: protocol.Location{URI: uri, Range: record.Class.DeclarationRange},
			})
		}

		for _, fn := range record.Functions {
			if !matchesQuery(fn.Name, query) {
				continue
			}
			kind := protocol.SymbolKindFunction
			var container *string
			if fn.ParentClassName != "" {
				kind = protocol.SymbolKindMethod
				parent := fn.ParentClassName
				container = &parent
			}
			out = append(out, protocol.SymbolInformation{
				Name:          fn.Name,
				Kind:          kind,
				Location:      protocol.Location{URI: uri, Range: fn.DeclarationRange},
				ContainerName: container,
			})
		}
	}

	return out
}

func matchesQuery(name, query string) bool {
	if query == "" {
		return true
	}
	lowerName := strings.ToLower(name)
	lowerQuery := strings.ToLower(query)
	if strings.Contains(lowerName, lowerQuery) {
		return true
	}
	score, err := edlib.StringsSimilarity(lowerQuery, lowerName, edlib.JaroWinkler)
	if err != nil {
		return false
	}
	return score >= workspaceSymbolMinSimilarity
}
