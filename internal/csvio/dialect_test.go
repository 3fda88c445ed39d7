package csvio

import "testing"

func TestAutoDetectPicksCommaForClearCSV(t *testing.T) {
	dialect, err := AutoDetect([]byte("id,amount\n1,100\n2,200\n"))
	if err != nil {
		t.Fatalf("AutoDetect() error = %+v", err)
	}
	if dialect.Delimiter != ',' {
		t.Fatalf("Delimiter = %q, want comma", dialect.Delimiter)
	}
	if dialect.HeaderFields != 2 {
		t.Fatalf("HeaderFields = %d, want 2", dialect.HeaderFields)
	}
}

func TestAutoDetectSingleColumnRefuses(t *testing.T) {
	_, err := AutoDetect([]byte("onlycolumn\n5\n5\n"))
	if err == nil {
		t.Fatalf("AutoDetect() error = nil, want DialectErrSingleColumn")
	}
	if err.Kind != DialectErrSingleColumn {
		t.Fatalf("err.Kind = %v, want DialectErrSingleColumn", err.Kind)
	}
	if err.Delimiter != ',' {
		t.Fatalf("err.Delimiter = %q, want comma (rank-0 tie-break)", err.Delimiter)
	}
}

func TestAutoDetectAmbiguousTieRefuses(t *testing.T) {
	_, err := AutoDetect([]byte("a;b|c\n1;2|3\n"))
	if err == nil {
		t.Fatalf("AutoDetect() error = nil, want DialectErrAmbiguous")
	}
	if err.Kind != DialectErrAmbiguous {
		t.Fatalf("err.Kind = %v, want DialectErrAmbiguous", err.Kind)
	}
	if len(err.Tied) != 2 || err.Tied[0] != ';' || err.Tied[1] != '|' {
		t.Fatalf("err.Tied = %q, want [; |] in rank order", err.Tied)
	}
}

func TestAutoDetectEmptyInputIsNoHeader(t *testing.T) {
	_, err := AutoDetect([]byte("\n\n"))
	if err == nil || err.Kind != DialectErrNoHeader {
		t.Fatalf("AutoDetect(blank input) = %+v, want DialectErrNoHeader", err)
	}
}

func TestDialectScoreLessLexicographic(t *testing.T) {
	a := DialectScore{RecordsParsed: 3, ModeCount: 3, ModeFields: 2}
	b := DialectScore{RecordsParsed: 3, ModeCount: 3, ModeFields: 3}
	if !a.Less(b) {
		t.Fatalf("expected a < b comparing ModeFields as the final tiebreaker")
	}
}
