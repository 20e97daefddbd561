package engine

import (
	"github.com/tidwall/gjson"

	"github.com/mathworks/MATLAB-language-server-sub001/internal/debug"
	lserrors "github.com/mathworks/MATLAB-language-server-sub001/internal/errors"
	"github.com/mathworks/MATLAB-language-server-sub001/internal/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// DecodeCodeData converts the engine's code-data payload into a FileRecord.
// Decoding is tolerant: any missing or malformed part degrades to its empty
// value so that a partially valid payload still yields a usable record.
func DecodeCodeData(filePath string, raw gjson.Result) *types.FileRecord {
	record := types.EmptyFileRecord(filePath)

	if pkg := raw.Get("packageName"); pkg.Exists() {
		record.PackageName = pkg.String()
	}

	if ci := raw.Get("classInfo"); ci.IsObject() {
		record.Class = decodeClassInfo(ci)
	}

	raw.Get("functionInfo").ForEach(func(_, fn gjson.Result) bool {
		record.Functions = append(record.Functions, decodeFunctionInfo(fn))
		return true
	})

	record.References = decodeNameRanges(raw.Get("references"))

	raw.Get("sections").ForEach(func(_, sec gjson.Result) bool {
		record.Sections = append(record.Sections, types.Section{
			Title: sec.Get("title").String(),
			Range: decodeRange(sec.Get("range")),
		})
		return true
	})

	return record
}

func decodeClassInfo(ci gjson.Result) *types.ClassInfo {
	info := &types.ClassInfo{
		Name:                     ci.Get("name").String(),
		DeclarationRange:         decodeRange(ci.Get("declaration")),
		FullRange:                decodeRange(ci.Get("range")),
		IsPrimaryDeclarationFile: ci.Get("isPrimary").Bool(),
		DeclarationFolder:        ci.Get("classFolder").String(),
	}

	ci.Get("baseClasses").ForEach(func(_, base gjson.Result) bool {
		info.BaseClassNames = append(info.BaseClassNames, base.String())
		return true
	})
	ci.Get("properties").ForEach(func(_, prop gjson.Result) bool {
		info.Properties = append(info.Properties, types.PropertyInfo{
			Name:  prop.Get("name").String(),
			Range: decodeRange(prop.Get("range")),
		})
		return true
	})
	ci.Get("enumerations").ForEach(func(_, enum gjson.Result) bool {
		info.Enumerations = append(info.Enumerations, types.EnumInfo{
			Name:  enum.Get("name").String(),
			Range: decodeRange(enum.Get("range")),
		})
		return true
	})

	return info
}

func decodeFunctionInfo(fn gjson.Result) types.FunctionInfo {
	info := types.FunctionInfo{
		Name:             fn.Get("name").String(),
		FullRange:        decodeRange(fn.Get("range")),
		DeclarationRange: decodeRange(fn.Get("declaration")),
		ParentClassName:  fn.Get("parentClass").String(),
		// The engine reports hidden/private methods with isPublic=true.
		// Copied verbatim; downstream consumers depend on the flag as-is.
		IsPublic:            fn.Get("isPublic").Bool(),
		IsAbstractPrototype: fn.Get("isPrototype").Bool(),
	}

	fn.Get("globals").ForEach(func(_, g gjson.Result) bool {
		info.GlobalVariableNames = append(info.GlobalVariableNames, g.String())
		return true
	})

	vi := fn.Get("variableInfo")
	info.Variables = types.VariableInfo{
		Definitions: decodeNameRanges(vi.Get("definitions")),
		References:  decodeNameRanges(vi.Get("references")),
	}

	return info
}

func decodeNameRanges(list gjson.Result) []types.NameRange {
	var out []types.NameRange
	list.ForEach(func(_, entry gjson.Result) bool {
		name := entry.Get("name").String()
		if name == "" {
			return true
		}
		out = append(out, types.NameRange{
			Name:  name,
			Range: decodeRange(entry.Get("range")),
		})
		return true
	})
	return out
}

// decodeRange converts the engine's 1-based line/column quadruple into a
// 0-based protocol range.
func decodeRange(v gjson.Result) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{
			Line:      oneToZeroBased(v.Get("lineStart").Int()),
			Character: oneToZeroBased(v.Get("charStart").Int()),
		},
		End: protocol.Position{
			Line:      oneToZeroBased(v.Get("lineEnd").Int()),
			Character: oneToZeroBased(v.Get("charEnd").Int()),
		},
	}
}

func oneToZeroBased(v int64) protocol.UInteger {
	if v <= 1 {
		return 0
	}
	return protocol.UInteger(v - 1)
}

// DecodeBulkMessage parses one bulk stream notification. Messages missing a
// file path that are not terminal are malformed; the caller logs and skips
// them without aborting the batch.
func DecodeBulkMessage(raw []byte) (types.CodeDataMessage, error) {
	parsed := gjson.ParseBytes(raw)

	msg := types.CodeDataMessage{
		FilePath: parsed.Get("filePath").String(),
		Done:     parsed.Get("isDone").Bool(),
	}

	if msg.FilePath == "" && !msg.Done {
		err := lserrors.NewBulkStreamError(string(raw), "missing filePath")
		debug.LogEngine("%v", err)
		return types.CodeDataMessage{}, err
	}

	if cd := parsed.Get("codeData"); cd.IsObject() && msg.FilePath != "" {
		msg.Record = DecodeCodeData(msg.FilePath, cd)
	}

	return msg, nil
}
