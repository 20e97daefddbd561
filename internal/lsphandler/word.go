package lsphandler

import (
	"strings"
	"unicode/utf16"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// identifierAt extracts the identifier under the given position, or "" when
// the position does not touch one. Position characters are UTF-16 code
// units, per the protocol.
func identifierAt(text string, pos protocol.Position) string {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return ""
	}
	line := lines[pos.Line]
	col := byteOffsetForUTF16(line, int(pos.Character))

	start := col
	for start > 0 && isIdentifierChar(line[start-1]) {
		start--
	}
	end := col
	for end < len(line) && isIdentifierChar(line[end]) {
		end++
	}
	if start == end {
		return ""
	}
	word := line[start:end]
	if word[0] >= '0' && word[0] <= '9' {
		return ""
	}
	return word
}

// byteOffsetForUTF16 maps a UTF-16 code-unit column to the byte offset of
// the rune it lands on, clamping past-the-end columns to len(line).
func byteOffsetForUTF16(line string, col int) int {
	units := 0
	for i, r := range line {
		if units >= col {
			return i
		}
		units += len(utf16.Encode([]rune{r}))
	}
	return len(line)
}

func isIdentifierChar(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}
