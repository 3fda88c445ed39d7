package output

import (
	"encoding/json"
	"io"

	"github.com/cmdrvl/rvl/internal/format"
	"github.com/cmdrvl/rvl/internal/refusal"
)

// SchemaVersion is the JSON object's stable version tag.
const SchemaVersion = "rvl.v0"

type jsonFiles struct {
	Old string `json:"old"`
	New string `json:"new"`
}

type jsonAlignment struct {
	Mode      string  `json:"mode"`
	KeyColumn *string `json:"key_column,omitempty"`
}

type jsonDialect struct {
	Delimiter string `json:"delimiter"`
	Escape    string `json:"escape"`
}

type jsonDialectPair struct {
	Old *jsonDialect `json:"old,omitempty"`
	New *jsonDialect `json:"new,omitempty"`
}

type jsonCounts struct {
	Common         *int `json:"common,omitempty"`
	OldOnly        *int `json:"old_only,omitempty"`
	NewOnly        *int `json:"new_only,omitempty"`
	Rows           *int `json:"rows,omitempty"`
	NumericColumns *int `json:"numeric_columns,omitempty"`
	Cells          *int `json:"cells,omitempty"`
}

type jsonMetrics struct {
	TotalChange  *float64 `json:"total_change,omitempty"`
	MaxAbsDelta  *float64 `json:"max_abs_delta,omitempty"`
	TopKCoverage *float64 `json:"top_k_coverage,omitempty"`
}

type jsonLimits struct {
	MaxContributors int `json:"max_contributors"`
}

type jsonContributor struct {
	RowID           string  `json:"row_id"`
	Column          string  `json:"column"`
	Old             string  `json:"old"`
	New             string  `json:"new"`
	Delta           float64 `json:"delta"`
	Contribution    float64 `json:"contribution"`
	Share           float64 `json:"share"`
	CumulativeShare float64 `json:"cumulative_share"`
}

type jsonRefusal struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Detail  map[string]any `json:"detail"`
}

type jsonDoc struct {
	Version      string            `json:"version"`
	Outcome      string            `json:"outcome"`
	Files        jsonFiles         `json:"files"`
	Alignment    jsonAlignment     `json:"alignment"`
	Dialect      *jsonDialectPair  `json:"dialect,omitempty"`
	Threshold    float64           `json:"threshold"`
	Tolerance    float64           `json:"tolerance"`
	Counts       jsonCounts        `json:"counts"`
	Metrics      jsonMetrics       `json:"metrics"`
	Limits       jsonLimits        `json:"limits"`
	Contributors []jsonContributor `json:"contributors"`
	Refusal      *jsonRefusal      `json:"refusal,omitempty"`
}

// WriteJSON renders r as the single `rvl.v0` JSON object to w.
func WriteJSON(w io.Writer, r Result) error {
	doc := buildJSONDoc(r)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func buildJSONDoc(r Result) jsonDoc {
	doc := jsonDoc{
		Version:   SchemaVersion,
		Outcome:   outcomeName(r.Outcome),
		Files:     jsonFiles{Old: r.OldPath, New: r.NewPath},
		Alignment: jsonAlignmentOf(r),
		Dialect:   jsonDialectPairOf(r),
		Threshold: r.Threshold,
		Tolerance: r.Tolerance,
		Counts:    jsonCountsOf(r),
		Metrics:   jsonMetricsOf(r),
		Limits:    jsonLimits{MaxContributors: MaxContributors},
	}
	doc.Contributors = []jsonContributor{}
	if r.Outcome == RealChange {
		for _, c := range r.Contributors {
			doc.Contributors = append(doc.Contributors, jsonContributor{
				RowID: c.RowIDJSON, Column: c.Column, Old: c.OldRaw, New: c.NewRaw,
				Delta: c.Delta, Contribution: c.Contribution, Share: c.Share,
				CumulativeShare: c.CumulativeShare,
			})
		}
	}
	if r.Outcome == Refusal && r.RefusalDetail != nil {
		doc.Refusal = &jsonRefusal{
			Code:    r.RefusalDetail.Code.String(),
			Message: r.RefusalDetail.Code.Reason(),
			Detail:  refusalDetailJSON(r.RefusalDetail),
		}
	}
	return doc
}

func outcomeName(o Outcome) string {
	switch o {
	case RealChange:
		return "REAL_CHANGE"
	case NoRealChange:
		return "NO_REAL_CHANGE"
	default:
		return "REFUSAL"
	}
}

func jsonAlignmentOf(r Result) jsonAlignment {
	if r.Alignment == KeyMode {
		ident := format.IdentifierJSON(r.KeyColumn)
		return jsonAlignment{Mode: "key", KeyColumn: &ident}
	}
	return jsonAlignment{Mode: "row_order"}
}

func jsonDialectPairOf(r Result) *jsonDialectPair {
	if r.DialectOld == nil && r.DialectNew == nil {
		return nil
	}
	pair := &jsonDialectPair{}
	if r.DialectOld != nil {
		pair.Old = jsonDialectOf(*r.DialectOld)
	}
	if r.DialectNew != nil {
		pair.New = jsonDialectOf(*r.DialectNew)
	}
	return pair
}

func jsonDialectOf(d DialectInfo) *jsonDialect {
	return &jsonDialect{Delimiter: delimiterDisplay(d.Delimiter), Escape: d.Escape.DisplayStr()}
}

func jsonCountsOf(r Result) jsonCounts {
	if !r.Counts.Known {
		return jsonCounts{}
	}
	common, oldOnly, newOnly := r.Counts.CommonColumns, r.Counts.OldOnlyColumns, r.Counts.NewOnlyColumns
	rows, numCols, cells := r.Counts.Rows, r.Counts.NumericColumns, r.Counts.Cells
	return jsonCounts{
		Common: &common, OldOnly: &oldOnly, NewOnly: &newOnly,
		Rows: &rows, NumericColumns: &numCols, Cells: &cells,
	}
}

func jsonMetricsOf(r Result) jsonMetrics {
	var m jsonMetrics
	switch r.Outcome {
	case RealChange:
		total := r.TotalChange
		m.TotalChange = &total
		cov := r.Coverage
		m.TopKCoverage = &cov
	case NoRealChange:
		max := r.MaxAbsDelta
		m.MaxAbsDelta = &max
	}
	return m
}

func refusalDetailJSON(d *refusal.Detail) map[string]any {
	k := d.Kind
	out := map[string]any{}
	switch d.Code {
	case refusal.Io:
		out["file"] = k.IoFile.String()
		out["error"] = k.IoError
	case refusal.Encoding:
		out["file"] = k.EncFile.String()
		out["issue"] = k.EncIssue.String()
		if k.EncHint != "" {
			out["hint"] = k.EncHint
		}
	case refusal.CsvParse:
		out["file"] = k.ParseFile.String()
		if k.ParseLine != nil {
			out["line"] = *k.ParseLine
		}
		if k.ParseColumn != nil {
			out["column"] = *k.ParseColumn
		}
	case refusal.Headers:
		out["file"] = k.HeadersFile.String()
		out["issue"] = headersIssueName(k.HeadersIssue)
		if k.HeadersIssue == refusal.DuplicateHeader {
			out["name"] = format.IdentifierJSON(k.HeadersName)
		}
		if k.HeadersIssue == refusal.ExtraFields {
			out["record"] = k.HeadersRecord
		}
	case refusal.NoKey:
		out["key_column"] = format.IdentifierJSON(k.KeyColumn)
	case refusal.KeyEmpty:
		out["file"] = k.KeyEmptyFile.String()
		out["record"] = k.KeyEmptyRecord
	case refusal.KeyDup:
		out["file"] = k.KeyDupFile.String()
		out["record"] = k.KeyDupRecord
		out["key"] = format.IdentifierJSON(k.KeyDupValue)
	case refusal.KeyMismatch:
		out["missing_in_new"] = k.MissingInNew
		out["extra_in_new"] = k.ExtraInNew
		out["missing_samples"] = identifierList(k.MissingSamples)
		out["extra_samples"] = identifierList(k.ExtraSamples)
	case refusal.RowCount:
		out["rows_old"] = k.RowsOld
		out["rows_new"] = k.RowsNew
		out["suggested_keys"] = identifierList(k.SuggestedKeys)
	case refusal.NeedKey:
		out["suggested_keys"] = identifierList(k.SuggestedKeys)
	case refusal.Dialect:
		out["tied_delimiters"] = delimiterList(k.TiedDelimiters)
		out["suggestion"] = dialectSuggestionJSON(k.DialectSuggestion)
	case refusal.MixedTypes:
		out["file"] = k.CellFile.String()
		out["record"] = k.CellRecord
		out["column"] = format.IdentifierJSON(k.CellColumn)
		out["value"] = string(k.CellValue)
	case refusal.NoNumeric:
		// no code-specific fields beyond code/message
	case refusal.Missingness:
		out["file"] = k.CellFile.String()
		out["record"] = k.CellRecord
		out["column"] = format.IdentifierJSON(k.CellColumn)
		out["value"] = string(k.CellValue)
	case refusal.Diffuse:
		out["top_k_coverage"] = k.TopKCoverage
		out["threshold"] = k.Threshold
	}
	return out
}

func headersIssueName(k refusal.HeadersIssueKind) string {
	switch k {
	case refusal.DuplicateHeader:
		return "duplicate"
	case refusal.ExtraFields:
		return "extra_fields"
	default:
		return "missing_header"
	}
}

func identifierList(items [][]byte) []string {
	out := make([]string, len(items))
	for i, b := range items {
		out[i] = format.IdentifierJSON(b)
	}
	return out
}

func delimiterList(items []byte) []string {
	out := make([]string, len(items))
	for i, b := range items {
		out[i] = delimiterDisplay(b)
	}
	return out
}

func dialectSuggestionJSON(s refusal.DialectSuggestion) map[string]any {
	out := map[string]any{}
	if s.ForceDelimiter != nil {
		out["force_delimiter"] = s.ForceDelimiter.String()
	}
	if s.SepDirective != nil {
		out["sep_directive"] = delimiterDisplay(*s.SepDirective)
	}
	return out
}
