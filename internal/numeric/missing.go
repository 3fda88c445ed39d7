// Package numeric parses and classifies numeric column values: token
// parsing (parse.go), missing-value detection (missing.go), and
// per-column typing across both snapshots (columns.go).
package numeric

import (
	"bytes"

	"github.com/cmdrvl/rvl/internal/normalize"
)

// IsMissingToken reports whether input, after ASCII-trim, is a recognized
// missing-value token: empty, "-", or one of NA, N/A, NULL, NAN, NONE
// (case-insensitive).
func IsMissingToken(input []byte) bool {
	trimmed := normalize.AsciiTrim(input)
	if len(trimmed) == 0 {
		return true
	}
	if bytes.Equal(trimmed, []byte("-")) {
		return true
	}
	return asciiEqualFold(trimmed, []byte("NA")) ||
		asciiEqualFold(trimmed, []byte("N/A")) ||
		asciiEqualFold(trimmed, []byte("NULL")) ||
		asciiEqualFold(trimmed, []byte("NAN")) ||
		asciiEqualFold(trimmed, []byte("NONE"))
}

func asciiEqualFold(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
