// Package format renders rvl's identifiers and numbers for both the human
// and JSON output paths from one shared set of rules (see internal/output).
package format

import (
	"strings"
	"unicode/utf8"
)

const hexDigits = "0123456789abcdef"

// IdentifierJSON renders an identifier (header name, key bytes, column
// name) for the JSON output path. The result is always prefixed: `u8:<utf8>`
// when the bytes are valid UTF-8 and contain no ASCII control byte,
// otherwise `hex:<lowercase>`.
func IdentifierJSON(b []byte) string {
	if utf8.Valid(b) && !containsASCIIControl(b) {
		var sb strings.Builder
		sb.Grow(3 + len(b))
		sb.WriteString("u8:")
		sb.Write(b)
		return sb.String()
	}
	return hexEncode(b)
}

// IdentifierHuman renders an identifier for human-readable text. Valid,
// control-free UTF-8 is printed bare unless it already looks like one of
// rvl's own prefixes, in which case a `u8:` prefix disambiguates it.
// Anything else falls back to the hex form.
func IdentifierHuman(b []byte) string {
	if utf8.Valid(b) {
		if containsASCIIControl(b) {
			return hexEncode(b)
		}
		s := string(b)
		if strings.HasPrefix(s, "u8:") || strings.HasPrefix(s, "hex:") {
			return "u8:" + s
		}
		return s
	}
	return hexEncode(b)
}

func containsASCIIControl(b []byte) bool {
	for _, c := range b {
		if c <= 0x1F || c == 0x7F {
			return true
		}
	}
	return false
}

func hexEncode(b []byte) string {
	var sb strings.Builder
	sb.Grow(4 + len(b)*2)
	sb.WriteString("hex:")
	for _, c := range b {
		sb.WriteByte(hexDigits[c>>4])
		sb.WriteByte(hexDigits[c&0x0F])
	}
	return sb.String()
}
