// Package types defines the data model shared by the indexing and symbol
// search subsystems. All ranges are LSP protocol ranges so that records can
// flow to the protocol boundary without conversion.
package types

import (
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// NameRange ties one identifier occurrence to its source range.
type NameRange struct {
	Name  string
	Range protocol.Range
}

// VariableInfo holds the variable occurrences of a single function, split
// into definitions (assignments, declarations) and plain references. Both
// lists are in document order.
type VariableInfo struct {
	Definitions []NameRange
	References  []NameRange
}

// FunctionInfo describes one function found in a file. Order within
// FileRecord.Functions follows declaration-scan order: local functions
// first, then nested functions inside-out, then the primary function last.
type FunctionInfo struct {
	Name                string
	FullRange           protocol.Range
	DeclarationRange    protocol.Range
	ParentClassName     string
	IsPublic            bool
	IsAbstractPrototype bool
	GlobalVariableNames []string
	Variables           VariableInfo
}

// PropertyInfo describes one class property declaration.
type PropertyInfo struct {
	Name  string
	Range protocol.Range
}

// EnumInfo describes one enumeration member declaration.
type EnumInfo struct {
	Name  string
	Range protocol.Range
}

// ClassInfo describes the single class a file may declare.
type ClassInfo struct {
	Name                     string
	DeclarationRange         protocol.Range
	FullRange                protocol.Range
	BaseClassNames           []string
	Properties               []PropertyInfo
	Enumerations             []EnumInfo
	IsPrimaryDeclarationFile bool
	DeclarationFolder        string
}

// Section is one code-folding/outline section.
type Section struct {
	Title string
	Range protocol.Range
}

// FileRecord is the complete indexed view of one file. Records are owned by
// the FileIndex and are replaced wholesale, never mutated in place.
//
// References groups property accesses first, then function-call style
// references, each group in document order. That grouping is a contract,
// not an implementation accident.
type FileRecord struct {
	FilePath    string
	PackageName string
	Class       *ClassInfo
	Functions   []FunctionInfo
	References  []NameRange
	Sections    []Section

	// ContentHash is the xxhash of the source text the record was computed
	// from. Set once before insertion; used to skip recomputation for
	// unchanged content.
	ContentHash uint64
}

// EmptyFileRecord returns the degraded record used when the engine is
// unavailable or the parse failed. Valid but contains no symbol data.
func EmptyFileRecord(filePath string) *FileRecord {
	return &FileRecord{FilePath: filePath}
}

// HasClassInfo reports whether the file declares a class.
func (r *FileRecord) HasClassInfo() bool {
	return r != nil && r.Class != nil
}

// IsEmpty reports whether the record carries no symbol data at all.
func (r *FileRecord) IsEmpty() bool {
	return r == nil || (r.Class == nil && len(r.Functions) == 0 &&
		len(r.References) == 0 && len(r.Sections) == 0)
}

// CodeDataMessage is one unit of a bulk-parse result stream. Done is true
// only on the terminal message of a batch; a terminal message may or may not
// carry a record.
type CodeDataMessage struct {
	FilePath string
	Record   *FileRecord
	Done     bool
}
