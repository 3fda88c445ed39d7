package refusal

import (
	"fmt"

	"github.com/cmdrvl/rvl/internal/format"
)

// defaultNext computes the Next-step remediation string for a refusal,
// mirroring the original implementation's RefusalKind::default_next policy:
// prefer a concrete rerun command when one is derivable, otherwise a terse
// imperative.
func defaultNext(code Code, k Kind, paths RerunPaths) string {
	switch code {
	case Io:
		return "check file paths/permissions and rerun"
	case Encoding:
		return "convert/re-export both files as UTF-8 CSV and rerun"
	case CsvParse:
		return "re-export as standard CSV (RFC4180 quoting) and rerun"
	case Headers:
		switch k.HeadersIssue {
		case MissingHeader:
			return "ensure the file has a header row and rerun"
		case DuplicateHeader:
			return "make header names unique and rerun"
		case ExtraFields:
			return "remove extra columns or re-export with consistent headers, then rerun"
		}
		return "fix the header row and rerun"
	case NoKey:
		return fmt.Sprintf("rvl %s %s --key %s", paths.Old, paths.New, format.IdentifierJSON(k.KeyColumn))
	case KeyEmpty:
		return "choose a key column with no empty values (or fill missing keys), then rerun"
	case KeyDup:
		return "choose a unique key column or dedupe the data, then rerun"
	case KeyMismatch:
		return "export comparable scopes or fix the join key, then rerun"
	case RowCount:
		if len(k.SuggestedKeys) > 0 {
			key := format.IdentifierJSON(k.SuggestedKeys[0])
			return fmt.Sprintf("rvl %s %s --key %s to get a missing/extra-keys report (or export comparable scopes)", paths.Old, paths.New, key)
		}
		return "export comparable scopes or rerun with --key <column>"
	case NeedKey:
		if len(k.SuggestedKeys) > 0 {
			key := format.IdentifierJSON(k.SuggestedKeys[0])
			return fmt.Sprintf("rvl %s %s --key %s", paths.Old, paths.New, key)
		}
		return "rerun with --key <column>"
	case Dialect:
		if hint := k.DialectSuggestion.ForceDelimiter; hint != nil {
			return fmt.Sprintf("rvl %s %s --delimiter %s", paths.Old, paths.New, hint.String())
		}
		if delim := k.DialectSuggestion.SepDirective; delim != nil {
			if sep, ok := renderSepDirective(*delim); ok {
				return fmt.Sprintf("add `%s` as the first non-blank line of the %s file (no whitespace), then rerun", sep, k.DialectFile.String())
			}
			return fmt.Sprintf("rvl %s %s --delimiter %s", paths.Old, paths.New, ByteHint(*delim).String())
		}
		return "force a delimiter with --delimiter and rerun"
	case MixedTypes:
		return "normalize column values to numeric (or exclude the column) and rerun"
	case NoNumeric:
		return "ensure common numeric columns exist (or adjust inputs) and rerun"
	case Missingness:
		return "fill missing values or remove the column, then rerun"
	case Diffuse:
		return fmt.Sprintf("rvl %s %s --threshold 0.80", paths.Old, paths.New)
	default:
		return "rerun with corrected input"
	}
}

func renderSepDirective(delimiter byte) (string, bool) {
	if delimiter == '"' || delimiter == '\r' || delimiter == '\n' {
		return "", false
	}
	if delimiter >= 0x21 && delimiter <= 0x7e {
		return fmt.Sprintf("sep=%c", delimiter), true
	}
	return "", false
}

func formatHexByte(b byte) string {
	return fmt.Sprintf("0x%02X", b)
}
