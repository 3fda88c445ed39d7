// Package normalize handles header normalization, ASCII trimming, and
// record-width reconciliation against the header row.
package normalize

// AsciiTrim trims only ASCII space (0x20) and tab (0x09) from both ends of
// b. Unicode whitespace and other control bytes are left alone: rvl's data
// model is byte-oriented, not text-oriented.
func AsciiTrim(b []byte) []byte {
	start := 0
	for start < len(b) && isAsciiBlankByte(b[start]) {
		start++
	}
	end := len(b)
	for end > start && isAsciiBlankByte(b[end-1]) {
		end--
	}
	return b[start:end]
}

// IsAsciiBlankSlice reports whether every byte in b is ASCII space or tab.
func IsAsciiBlankSlice(b []byte) bool {
	for _, c := range b {
		if !isAsciiBlankByte(c) {
			return false
		}
	}
	return true
}

func isAsciiBlankByte(c byte) bool {
	return c == ' ' || c == '\t'
}
