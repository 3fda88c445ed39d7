package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cmdrvl/rvl/internal/csvio"
	"github.com/cmdrvl/rvl/internal/refusal"
)

func TestWriteHumanRealChange(t *testing.T) {
	r := Result{
		OldPath:   "old.csv",
		NewPath:   "new.csv",
		Threshold: 0.95,
		Tolerance: 1e-9,
		Alignment: KeyMode,
		KeyColumn: []byte("id"),
		Counts:    Counts{Known: true, CommonColumns: 2, Rows: 2, NumericColumns: 1, Cells: 2},
		DialectOld: &DialectInfo{Delimiter: ',', Escape: csvio.EscapeNone},
		DialectNew: &DialectInfo{Delimiter: ',', Escape: csvio.EscapeNone},
		Outcome:    RealChange,
		Coverage:   1.0,
		TotalChange: 50,
		Contributors: []ContributorView{
			{RowIDHuman: "1", RowIDJSON: "u8:1", Column: "amount", OldRaw: "100", NewRaw: "150", Delta: 50, Contribution: 50, Share: 1, CumulativeShare: 1},
		},
	}

	var buf bytes.Buffer
	if err := WriteHuman(&buf, r); err != nil {
		t.Fatalf("WriteHuman() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Compared: old.csv -> new.csv",
		"Alignment: key=id",
		"Columns: common=2 old_only=0 new_only=0",
		"Dialect(old): delimiter=comma quote=\" escape=none",
		"1. 1.amount  +50  (100 -> 150)",
		"All of the measured change is accounted for above.",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q, got:\n%s", want, out)
		}
	}
}

func TestWriteHumanNoRealChange(t *testing.T) {
	r := Result{
		OldPath: "old.csv", NewPath: "new.csv",
		Threshold: 0.95, Tolerance: 0.01,
		Alignment:   RowOrder,
		Counts:      Counts{Known: true, Rows: 1, NumericColumns: 1, Cells: 1},
		Outcome:     NoRealChange,
		MaxAbsDelta: 0.001,
	}
	var buf bytes.Buffer
	if err := WriteHuman(&buf, r); err != nil {
		t.Fatalf("WriteHuman() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Alignment: row-order (no key)") {
		t.Fatalf("expected row-order alignment line, got:\n%s", out)
	}
	if !strings.Contains(out, "Max abs delta: 0.001 (<= tolerance 0.01).") {
		t.Fatalf("expected max abs delta line, got:\n%s", out)
	}
}

func TestWriteHumanRefusalAbbreviatedHeader(t *testing.T) {
	detail := refusal.WithDefaultNext(refusal.NeedKey, refusal.Kind{SuggestedKeys: [][]byte{[]byte("id")}}, refusal.RerunPaths{Old: "old.csv", New: "new.csv"})
	r := Result{
		OldPath: "old.csv", NewPath: "new.csv",
		Outcome:       Refusal,
		RefusalDetail: &detail,
	}
	var buf bytes.Buffer
	if err := WriteHuman(&buf, r); err != nil {
		t.Fatalf("WriteHuman() error = %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "Columns:") || strings.Contains(out, "Checked:") {
		t.Fatalf("refusal header should not include Columns/Checked lines, got:\n%s", out)
	}
	if !strings.Contains(out, "RVL ERROR (E_NEED_KEY)") {
		t.Fatalf("expected RVL ERROR header, got:\n%s", out)
	}
	if !strings.Contains(out, "Cannot produce a verdict.") {
		t.Fatalf("expected standard refusal sentence, got:\n%s", out)
	}
}

func TestDelimiterDisplay(t *testing.T) {
	cases := map[byte]string{
		',': "comma", '\t': "tab", ';': "semicolon", '|': "pipe", '^': "caret",
		'~': "~", 0x01: "0x01",
	}
	for b, want := range cases {
		if got := delimiterDisplay(b); got != want {
			t.Fatalf("delimiterDisplay(%#x) = %q, want %q", b, got, want)
		}
	}
}
