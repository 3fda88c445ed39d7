package csvio

import "testing"

func TestScanFirstNonBlankLineFindsDirective(t *testing.T) {
	lines := SplitLines([]byte("\nsep=;\nid;amount\n1;100\n"))
	scan := ScanFirstNonBlankLine(lines)
	if scan.Kind != SepDirective || scan.Delimiter != ';' {
		t.Fatalf("scan = %+v, want SepDirective delimiter=;", scan)
	}
}

func TestScanFirstNonBlankLineOnlyHonorsFirstLine(t *testing.T) {
	lines := SplitLines([]byte("id,amount\nsep=;\n1,100\n"))
	scan := ScanFirstNonBlankLine(lines)
	if scan.Kind != SepFirstNonBlank {
		t.Fatalf("scan.Kind = %v, want SepFirstNonBlank (a later sep= line must not count)", scan.Kind)
	}
}

func TestScanFirstNonBlankLineNoLines(t *testing.T) {
	scan := ScanFirstNonBlankLine(SplitLines([]byte("\n\n")))
	if scan.Kind != SepNoLines {
		t.Fatalf("scan.Kind = %v, want SepNoLines", scan.Kind)
	}
}

func TestParseSepDirectiveRejectsInvalidDelimiterByte(t *testing.T) {
	if _, ok := ParseSepDirective([]byte("sep=\"")); ok {
		t.Fatalf("ParseSepDirective(sep=\") ok = true, want false (quote isn't a valid delimiter)")
	}
	if _, ok := ParseSepDirective([]byte("sep=,,")); ok {
		t.Fatalf("ParseSepDirective(sep=,,) ok = true, want false (wrong length)")
	}
}

func TestIsValidDelimiterRange(t *testing.T) {
	valid := []byte{',', ';', '|', '^', '\t', 0x01, 0x7F}
	for _, b := range valid {
		if !IsValidDelimiter(b) {
			t.Fatalf("IsValidDelimiter(%#x) = false, want true", b)
		}
	}
	invalid := []byte{0x00, '"', '\r', '\n', 0x80}
	for _, b := range invalid {
		if IsValidDelimiter(b) {
			t.Fatalf("IsValidDelimiter(%#x) = true, want false", b)
		}
	}
}
