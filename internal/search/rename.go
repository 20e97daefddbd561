package search

import (
	"context"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/mathworks/MATLAB-language-server-sub001/pkg/pathutil"
)

// RenameEdits builds the workspace edit renaming every occurrence of name
// reachable from the context file: all occurrences in the file itself plus,
// when the name resolves to another file, the occurrences there. Returns
// nil when nothing matches.
func (s *Service) RenameEdits(ctx context.Context, name, contextFilePath, newName string) *protocol.WorkspaceEdit {
	if name == "" || newName == "" || name == newName {
		return nil
	}

	changes := make(map[protocol.DocumentUri][]protocol.TextEdit)

	appendEdits := func(path string) {
		record := s.files.Get(path)
		if record == nil {
			return
		}
		uri := protocol.DocumentUri(pathutil.ToURI(path))
		for _, loc := range s.FindReferencesInFile(name, record) {
			changes[uri] = append(changes[uri], protocol.TextEdit{
				Range:   loc.Range,
				NewText: newName,
			})
		}
	}

	appendEdits(contextFilePath)

	if resolved := s.resolver.Resolve(ctx, name, contextFilePath); resolved != "" && resolved != contextFilePath {
		if record := s.ensureRecord(ctx, resolved); record != nil {
			appendEdits(resolved)
		}
	}

	if len(changes) == 0 {
		return nil
	}
	return &protocol.WorkspaceEdit{Changes: changes}
}
