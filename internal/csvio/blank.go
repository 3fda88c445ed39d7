package csvio

import "github.com/cmdrvl/rvl/internal/normalize"

// IsBlankLine reports whether line (without its trailing '\n') is blank
// after ASCII-trim and stripping a single trailing '\r'.
func IsBlankLine(line []byte) bool {
	return normalize.IsAsciiBlankSlice(StripTrailingCR(line))
}

// StripTrailingCR removes a single trailing '\r' byte, if present.
func StripTrailingCR(line []byte) []byte {
	if len(line) > 0 && line[len(line)-1] == '\r' {
		return line[:len(line)-1]
	}
	return line
}

// IsBlankRecord reports whether every field of record is empty after
// ASCII-trim. An empty record (no fields) counts as blank. The header
// record must never be skipped on this basis; callers apply this only to
// data records.
func IsBlankRecord(record [][]byte) bool {
	if len(record) == 0 {
		return true
	}
	for _, field := range record {
		if len(normalize.AsciiTrim(field)) != 0 {
			return false
		}
	}
	return true
}
