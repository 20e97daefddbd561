// Package pathutil provides path helpers shared across the server.
//
// The indexer uses absolute, cleaned file paths as record keys; the protocol
// boundary speaks URIs. This package is the conversion layer between the two,
// plus the MATLAB-specific directory conventions (+package folders, .m
// source files).
package pathutil

import (
	"path/filepath"
	"strings"

	"go.lsp.dev/uri"
)

// FromURI converts a document URI to the absolute, cleaned file path used as
// an index key. Returns "" for non-file URIs.
func FromURI(documentURI string) string {
	parsed := uri.New(documentURI)
	fname := parsed.Filename()
	if fname == "" {
		return ""
	}
	return filepath.Clean(fname)
}

// ToURI converts an absolute file path to a file:// URI string.
func ToURI(path string) string {
	return string(uri.File(path))
}

// IsMATLABFile reports whether path names an indexable MATLAB source file.
func IsMATLABFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".m")
}

// IsPackageDir reports whether base names a MATLAB package folder.
func IsPackageDir(base string) bool {
	return strings.HasPrefix(base, "+")
}

// PackageRoot walks up from dir past every +package segment and returns the
// first non-package ancestor. A dir with no package segments is its own
// root. Walking stops at the filesystem root.
func PackageRoot(dir string) string {
	dir = filepath.Clean(dir)
	for {
		base := filepath.Base(dir)
		if !IsPackageDir(base) {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}

// PackageName derives the dotted package name of a file from the +package
// segments of its directory chain, innermost last. Returns "" for files
// outside any package folder.
func PackageName(path string) string {
	var segments []string
	dir := filepath.Dir(filepath.Clean(path))
	for {
		base := filepath.Base(dir)
		if !IsPackageDir(base) {
			break
		}
		segments = append([]string{strings.TrimPrefix(base, "+")}, segments...)
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return strings.Join(segments, ".")
}
