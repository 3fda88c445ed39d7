package csvio

import "golang.org/x/net/html/charset"

// NulScanLimit bounds how much of the input is scanned for an embedded
// NUL byte.
const NulScanLimit = 8 * 1024

var (
	utf8BOM    = []byte{0xEF, 0xBB, 0xBF}
	utf16BEBOM = []byte{0xFE, 0xFF}
	utf16LEBOM = []byte{0xFF, 0xFE}
	utf32BEBOM = []byte{0x00, 0x00, 0xFE, 0xFF}
	utf32LEBOM = []byte{0xFF, 0xFE, 0x00, 0x00}
)

// EncodingIssue classifies why the Input Guard refused a file outright.
type EncodingIssue int

const (
	EncodingIssueUTF16Or32BOM EncodingIssue = iota
	EncodingIssueNulByte
)

// StripUTF8BOM removes a leading UTF-8 BOM, if present.
func StripUTF8BOM(input []byte) (stripped []byte, hadBOM bool) {
	if len(input) >= 3 && bytesEqual(input[:3], utf8BOM) {
		return input[3:], true
	}
	return input, false
}

// HasUTF16Or32BOM reports whether input begins with a UTF-16 or UTF-32 BOM.
// The 4-byte UTF-32 LE pattern is checked before the 2-byte UTF-16 LE
// pattern, since [0xFF,0xFE,0x00,0x00,...] would otherwise match the
// shorter UTF-16 LE prefix first.
func HasUTF16Or32BOM(input []byte) bool {
	if len(input) >= 4 && bytesEqual(input[:4], utf32BEBOM) {
		return true
	}
	if len(input) >= 4 && bytesEqual(input[:4], utf32LEBOM) {
		return true
	}
	if len(input) >= 2 && bytesEqual(input[:2], utf16BEBOM) {
		return true
	}
	if len(input) >= 2 && bytesEqual(input[:2], utf16LEBOM) {
		return true
	}
	return false
}

// HasNulInFirst8K reports whether a NUL byte appears in the first
// NulScanLimit bytes of input.
func HasNulInFirst8K(input []byte) bool {
	limit := len(input)
	if limit > NulScanLimit {
		limit = NulScanLimit
	}
	for i := 0; i < limit; i++ {
		if input[i] == 0 {
			return true
		}
	}
	return false
}

// GuardInputBytes applies the Input Guard's encoding checks and strips a
// UTF-8 BOM, in order: a UTF-16/UTF-32 BOM refuses outright; a UTF-8 BOM is
// stripped and scanning continues; a NUL byte in the (post-strip) first 8KB
// refuses outright.
func GuardInputBytes(input []byte) ([]byte, EncodingIssue, bool) {
	if HasUTF16Or32BOM(input) {
		return nil, EncodingIssueUTF16Or32BOM, false
	}
	stripped, _ := StripUTF8BOM(input)
	if HasNulInFirst8K(stripped) {
		return nil, EncodingIssueNulByte, false
	}
	return stripped, 0, true
}

// SniffEncodingHint guesses the likely source encoding of a refused file,
// purely to enrich the refusal's remediation text. It never changes the
// refusal decision and never transcodes the input.
func SniffEncodingHint(input []byte) string {
	_, name, _ := charset.DetermineEncoding(input, "")
	if name == "" || name == "utf-8" {
		return ""
	}
	return name
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
