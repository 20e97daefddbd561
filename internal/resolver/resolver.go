// Package resolver turns bare identifiers into file paths by asking the
// engine, with a package-root retry that accounts for the engine's
// cwd-sensitive name lookup.
package resolver

import (
	"context"
	"path/filepath"

	"github.com/mathworks/MATLAB-language-server-sub001/internal/debug"
	"github.com/mathworks/MATLAB-language-server-sub001/internal/engine"
	lserrors "github.com/mathworks/MATLAB-language-server-sub001/internal/errors"
	"github.com/mathworks/MATLAB-language-server-sub001/pkg/pathutil"
)

// PathResolver resolves names against the engine's path machinery.
type PathResolver struct {
	engine engine.Core
}

// NewPathResolver creates a resolver over the given engine.
func NewPathResolver(core engine.Core) *PathResolver {
	return &PathResolver{engine: core}
}

// Resolve maps a bare name plus a context file to an absolute path, or ""
// when the name is external or unresolvable. Not found is a normal outcome.
//
// When the direct lookup misses, the lookup is retried with the engine's
// working directory moved to the context file's package root (the first
// ancestor above any +package folders); the prior working directory is
// restored unconditionally afterwards.
func (r *PathResolver) Resolve(ctx context.Context, name, contextFilePath string) string {
	if name == "" || !r.engine.Connected() {
		return ""
	}

	if path, ok := r.engine.ResolvePath(ctx, name, contextFilePath); ok {
		return path
	}

	contextDir := filepath.Dir(contextFilePath)
	root := pathutil.PackageRoot(contextDir)
	if root == contextDir {
		// No package context: nothing to gain from a directory change.
		return ""
	}

	prev, err := r.engine.Cd(ctx, root)
	if err != nil {
		debug.LogSearch("%v", lserrors.NewResolveError(name, contextFilePath, err))
		return ""
	}
	defer func() {
		if _, err := r.engine.Cd(ctx, prev); err != nil {
			debug.LogSearch("%v", lserrors.NewResolveError(name, contextFilePath, err))
		}
	}()

	if path, ok := r.engine.ResolvePath(ctx, name, contextFilePath); ok {
		return path
	}
	return ""
}
