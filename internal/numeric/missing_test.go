package numeric

import "testing"

func TestIsMissingToken(t *testing.T) {
	missing := []string{"", "  ", "-", "NA", "na", "N/A", "n/a", "NULL", "null", "NaN", "nan", "None", "none"}
	for _, in := range missing {
		if !IsMissingToken([]byte(in)) {
			t.Fatalf("IsMissingToken(%q) = false, want true", in)
		}
	}
	present := []string{"0", "100", "abc", "N", "A", "--"}
	for _, in := range present {
		if IsMissingToken([]byte(in)) {
			t.Fatalf("IsMissingToken(%q) = true, want false", in)
		}
	}
}
