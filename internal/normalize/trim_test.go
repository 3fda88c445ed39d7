package normalize

import (
	"bytes"
	"testing"
)

func TestAsciiTrimStripsOnlySpaceAndTab(t *testing.T) {
	if got := AsciiTrim([]byte("  \t hello \t ")); string(got) != "hello" {
		t.Fatalf("AsciiTrim = %q, want hello", got)
	}
	unicodeSpace := []byte(" hello ")
	if got := AsciiTrim(unicodeSpace); !bytes.Equal(got, unicodeSpace) {
		t.Fatalf("AsciiTrim should not strip unicode whitespace, got %q", got)
	}
}

func TestIsAsciiBlankSlice(t *testing.T) {
	if !IsAsciiBlankSlice([]byte("   \t")) {
		t.Fatalf("IsAsciiBlankSlice(spaces/tabs) = false, want true")
	}
	if IsAsciiBlankSlice([]byte(" x ")) {
		t.Fatalf("IsAsciiBlankSlice(with content) = true, want false")
	}
}
