package indexing

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/mathworks/MATLAB-language-server-sub001/internal/config"
	"github.com/mathworks/MATLAB-language-server-sub001/internal/debug"
)

// EnumerateFolders lists every indexable source file under the given
// folders, applying the configured include/exclude globs relative to each
// folder. Folders are scanned concurrently; the result is deduplicated and
// sorted so bulk batches are deterministic. Unreadable folders are skipped,
// not errors.
func EnumerateFolders(ctx context.Context, folders []string, settings config.Settings) []string {
	var mu sync.Mutex
	seen := make(map[string]bool)

	g, ctx := errgroup.WithContext(ctx)
	for _, folder := range folders {
		folder := folder
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			for _, path := range enumerateFolder(folder, settings) {
				mu.Lock()
				seen[path] = true
				mu.Unlock()
			}
			return nil
		})
	}
	// Enumeration errors are already absorbed per folder.
	_ = g.Wait()

	out := make([]string, 0, len(seen))
	for path := range seen {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

func enumerateFolder(folder string, settings config.Settings) []string {
	folder = filepath.Clean(folder)
	if info, err := os.Stat(folder); err != nil || !info.IsDir() {
		debug.LogIndexing("skipping unindexable folder %s", folder)
		return nil
	}

	fsys := os.DirFS(folder)
	var out []string
	for _, pattern := range settings.Include {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			debug.LogIndexing("bad include pattern %q: %v", pattern, err)
			continue
		}
		for _, rel := range matches {
			if excluded(rel, settings.Exclude) {
				continue
			}
			out = append(out, filepath.Join(folder, filepath.FromSlash(rel)))
		}
	}
	return out
}

func excluded(relPath string, patterns []string) bool {
	normalized := filepath.ToSlash(relPath)
	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, normalized)
		if err != nil {
			continue // bad pattern must not break scanning
		}
		if matched {
			return true
		}
	}
	return false
}

// pathWithin reports whether path lies under root.
func pathWithin(path, root string) bool {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
