package output

import (
	"bytes"
	"fmt"
	"io"

	"github.com/cmdrvl/rvl/internal/format"
	"github.com/cmdrvl/rvl/internal/refusal"
)

// WriteHuman renders r as the stable human text format to w. Verdicts
// (REAL_CHANGE, NO_REAL_CHANGE) use the full header; refusals use a
// separate, abbreviated header builder.
func WriteHuman(w io.Writer, r Result) error {
	var buf bytes.Buffer
	if r.Outcome == Refusal {
		writeRefusalHeader(&buf, r)
		writeRefusalBody(&buf, r)
	} else {
		writeVerdictHeader(&buf, r)
		switch r.Outcome {
		case RealChange:
			writeRealChange(&buf, r)
		case NoRealChange:
			writeNoRealChange(&buf, r)
		}
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func writeVerdictHeader(buf *bytes.Buffer, r Result) {
	fmt.Fprintf(buf, "Compared: %s -> %s\n", r.OldPath, r.NewPath)
	fmt.Fprintf(buf, "Alignment: %s\n", alignmentLine(r))
	fmt.Fprintf(buf, "Columns: common=%d old_only=%d new_only=%d\n",
		r.Counts.CommonColumns, r.Counts.OldOnlyColumns, r.Counts.NewOnlyColumns)
	fmt.Fprintf(buf, "Checked: %s rows, %d numeric columns (%s cells)\n",
		format.IntWithCommas(int64(r.Counts.Rows)), r.Counts.NumericColumns,
		format.IntWithCommas(int64(r.Counts.Cells)))
	if r.DialectOld != nil {
		fmt.Fprintf(buf, "Dialect(old): %s\n", dialectLine(*r.DialectOld))
	}
	if r.DialectNew != nil {
		fmt.Fprintf(buf, "Dialect(new): %s\n", dialectLine(*r.DialectNew))
	}
	buf.WriteString("Ranking: abs(delta) (unscaled)\n")
	fmt.Fprintf(buf, "Settings: threshold=%s tolerance=%s\n",
		format.PercentOneDecimal(r.Threshold), format.FloatShortest(r.Tolerance))
}

func writeRefusalHeader(buf *bytes.Buffer, r Result) {
	fmt.Fprintf(buf, "Compared: %s -> %s\n", r.OldPath, r.NewPath)
	if r.DialectOld != nil {
		fmt.Fprintf(buf, "Dialect(old): %s\n", dialectLine(*r.DialectOld))
	}
	if r.DialectNew != nil {
		fmt.Fprintf(buf, "Dialect(new): %s\n", dialectLine(*r.DialectNew))
	}
}

func alignmentLine(r Result) string {
	if r.Alignment == KeyMode {
		return fmt.Sprintf("key=%s", format.IdentifierHuman(r.KeyColumn))
	}
	return "row-order (no key)"
}

func dialectLine(d DialectInfo) string {
	return fmt.Sprintf("delimiter=%s quote=%s escape=%s", delimiterDisplay(d.Delimiter), `"`, d.Escape.DisplayStr())
}

func delimiterDisplay(b byte) string {
	switch b {
	case ',':
		return "comma"
	case '\t':
		return "tab"
	case ';':
		return "semicolon"
	case '|':
		return "pipe"
	case '^':
		return "caret"
	}
	if b >= 0x21 && b <= 0x7E {
		return string(rune(b))
	}
	return fmt.Sprintf("0x%02X", b)
}

func writeRealChange(buf *bytes.Buffer, r Result) {
	plural := "s"
	if len(r.Contributors) == 1 {
		plural = ""
	}
	fmt.Fprintf(buf, "%d cell%s explain %s of total numeric change (threshold %s):\n",
		len(r.Contributors), plural, format.PercentOneDecimal(r.Coverage), format.PercentOneDecimal(r.Threshold))
	for i, c := range r.Contributors {
		fmt.Fprintf(buf, "%d. %s.%s  %s  (%s -> %s)\n",
			i+1, c.RowIDHuman, c.Column, format.Delta(c.Delta), c.OldRaw, c.NewRaw)
	}
	tail := 1 - r.Coverage
	if tail > 0 {
		fmt.Fprintf(buf, "Remaining change (~%s) is spread across cells not listed above.\n", format.PercentOneDecimal(tail))
	} else {
		buf.WriteString("All of the measured change is accounted for above.\n")
	}
}

func writeNoRealChange(buf *bytes.Buffer, r Result) {
	fmt.Fprintf(buf, "Max abs delta: %s (<= tolerance %s).\n", format.FloatShortest(r.MaxAbsDelta), format.FloatShortest(r.Tolerance))
	buf.WriteString("No numeric cell changed by more than tolerance; treating the snapshots as unchanged.\n")
}

func writeRefusalBody(buf *bytes.Buffer, r Result) {
	d := r.RefusalDetail
	fmt.Fprintf(buf, "RVL ERROR (%s)\n", d.Code.String())
	buf.WriteString("Cannot produce a verdict.\n")
	fmt.Fprintf(buf, "Reason (%s): %s.\n", d.Code.String(), d.Code.Reason())
	fmt.Fprintf(buf, "Example: %s\n", refusalExample(d))
	fmt.Fprintf(buf, "Next: %s\n", d.Next)
}

// refusalExample renders a short, code-specific illustration of the
// offending input, built from the refusal's own detail fields so the
// human reader sees exactly what rvl saw.
func refusalExample(d *refusal.Detail) string {
	k := d.Kind
	switch d.Code {
	case refusal.Io:
		return fmt.Sprintf("could not read the %s file: %s", k.IoFile, k.IoError)
	case refusal.Encoding:
		hint := k.EncIssue.String()
		if k.EncHint != "" {
			hint = fmt.Sprintf("%s (looks like %s)", hint, k.EncHint)
		}
		return fmt.Sprintf("%s file has encoding issue: %s", k.EncFile, hint)
	case refusal.CsvParse:
		if k.ParseLine != nil {
			return fmt.Sprintf("%s file failed to parse at line %d", k.ParseFile, *k.ParseLine)
		}
		return fmt.Sprintf("%s file failed to parse", k.ParseFile)
	case refusal.Headers:
		switch k.HeadersIssue {
		case refusal.DuplicateHeader:
			return fmt.Sprintf("duplicate header %q in %s file", format.IdentifierHuman(k.HeadersName), k.HeadersFile)
		case refusal.ExtraFields:
			return fmt.Sprintf("record %d in %s file has non-blank fields past the header", k.HeadersRecord, k.HeadersFile)
		default:
			return fmt.Sprintf("%s file has no usable header row", k.HeadersFile)
		}
	case refusal.NoKey:
		return fmt.Sprintf("key column %s not found on both sides", format.IdentifierHuman(k.KeyColumn))
	case refusal.KeyEmpty:
		return fmt.Sprintf("empty key value at %s record %d", k.KeyEmptyFile, k.KeyEmptyRecord)
	case refusal.KeyDup:
		return fmt.Sprintf("duplicate key %s at %s record %d", format.IdentifierHuman(k.KeyDupValue), k.KeyDupFile, k.KeyDupRecord)
	case refusal.KeyMismatch:
		return fmt.Sprintf("%d key(s) missing in new, %d extra in new", k.MissingInNew, k.ExtraInNew)
	case refusal.RowCount:
		return fmt.Sprintf("old has %s rows, new has %s rows", format.IntWithCommas(int64(k.RowsOld)), format.IntWithCommas(int64(k.RowsNew)))
	case refusal.NeedKey:
		return "row order changed between old and new under a candidate key"
	case refusal.Dialect:
		return dialectExample(k)
	case refusal.MixedTypes:
		return fmt.Sprintf("column %s has value %q at %s record %d", format.IdentifierHuman(k.CellColumn), k.CellValue, k.CellFile, k.CellRecord)
	case refusal.NoNumeric:
		return "no common column parsed as numeric on both sides"
	case refusal.Missingness:
		return fmt.Sprintf("column %s is missing on %s but numeric (%q) on the other side, record %d", format.IdentifierHuman(k.CellColumn), k.CellFile, k.CellValue, k.CellRecord)
	case refusal.Diffuse:
		return fmt.Sprintf("top contributors cover %s of total change, below the %s threshold", format.PercentOneDecimal(k.TopKCoverage), format.PercentOneDecimal(k.Threshold))
	default:
		return "see Next for remediation"
	}
}

func dialectExample(k refusal.Kind) string {
	if len(k.TiedDelimiters) > 0 {
		names := make([]string, len(k.TiedDelimiters))
		for i, b := range k.TiedDelimiters {
			names[i] = delimiterDisplay(b)
		}
		return fmt.Sprintf("delimiters tied: %v", names)
	}
	return "delimiter could not be determined from a single-column header"
}
