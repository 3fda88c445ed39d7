// Package orchestrator wires the seven pipeline components — input guard,
// dialect detection, CSV parsing, header/record normalization, alignment,
// numeric diffing, and verdict/coverage — into the single synchronous pass
// described by the system overview, producing one output.Result per run.
package orchestrator

import (
	"fmt"
	"os"

	"github.com/cmdrvl/rvl/internal/align"
	"github.com/cmdrvl/rvl/internal/csvio"
	"github.com/cmdrvl/rvl/internal/diff"
	"github.com/cmdrvl/rvl/internal/format"
	"github.com/cmdrvl/rvl/internal/normalize"
	"github.com/cmdrvl/rvl/internal/numeric"
	"github.com/cmdrvl/rvl/internal/output"
	"github.com/cmdrvl/rvl/internal/refusal"
)

// Args is the orchestrator's entry contract, populated by the CLI or HTTP
// collaborator after flag/body parsing.
type Args struct {
	OldPath   string
	NewPath   string
	KeyColumn []byte // nil selects row-order alignment
	Threshold float64
	Tolerance float64
	Delimiter *byte // forced delimiter; nil lets the Dialect Detector choose
	// AllowSingleColumn disables the degenerate single-column-header refusal
	// (the documented --allow-single-column escape hatch, see DESIGN.md).
	AllowSingleColumn bool
}

// Run executes the full pipeline. A non-nil error is always a process
// error (the file could not be opened/read at the OS level, before the
// Input Guard ever sees a byte); every other failure mode, including a
// malformed file, is reported as a domain refusal inside the returned
// Result.
func Run(args Args) (output.Result, error) {
	oldRaw, err := os.ReadFile(args.OldPath)
	if err != nil {
		return output.Result{}, fmt.Errorf("reading %s: %w", args.OldPath, err)
	}
	newRaw, err := os.ReadFile(args.NewPath)
	if err != nil {
		return output.Result{}, fmt.Errorf("reading %s: %w", args.NewPath, err)
	}

	base := output.Result{
		OldPath:   args.OldPath,
		NewPath:   args.NewPath,
		Threshold: args.Threshold,
		Tolerance: args.Tolerance,
	}
	if args.KeyColumn != nil {
		base.Alignment = output.KeyMode
		base.KeyColumn = args.KeyColumn
	}
	paths := refusal.RerunPaths{Old: args.OldPath, New: args.NewPath}

	oldSide, sf := readSide(oldRaw, refusal.Old, args.Delimiter, args.AllowSingleColumn)
	if sf != nil {
		return refuse(base, *sf, paths), nil
	}
	base.DialectOld = &output.DialectInfo{Delimiter: oldSide.dialect.Delimiter, Escape: oldSide.dialect.Escape}

	newSide, sf := readSide(newRaw, refusal.New, args.Delimiter, args.AllowSingleColumn)
	if sf != nil {
		return refuse(base, *sf, paths), nil
	}
	base.DialectNew = &output.DialectInfo{Delimiter: newSide.dialect.Delimiter, Escape: newSide.dialect.Escape}

	return runAligned(base, paths, args, oldSide, newSide)
}

// sideFailure carries everything needed to build a refusal.Detail once the
// caller supplies the RerunPaths (both paths are needed for rerun-command
// remediation even though a side failure only knows about one file).
type sideFailure struct {
	code refusal.Code
	kind refusal.Kind
}

func refuse(base output.Result, sf sideFailure, paths refusal.RerunPaths) output.Result {
	base.Outcome = output.Refusal
	detail := refusal.WithDefaultNext(sf.code, sf.kind, paths)
	base.RefusalDetail = &detail
	return base
}

// sideData is one snapshot's fully read, normalized state: the header
// names and the blank-filtered, width-reconciled data records in file
// order, each tagged with its 1-based data-record number.
type sideData struct {
	headers       [][]byte
	records       []normalize.Record
	recordNumbers []uint64
	dialect       csvio.Dialect
}

func readSide(raw []byte, side refusal.FileSide, forced *byte, allowSingleColumn bool) (sideData, *sideFailure) {
	guarded, issue, ok := csvio.GuardInputBytes(raw)
	if !ok {
		kind := refusal.Kind{EncFile: side}
		switch issue {
		case csvio.EncodingIssueUTF16Or32BOM:
			kind.EncIssue = classifyBOM(raw)
		case csvio.EncodingIssueNulByte:
			kind.EncIssue = refusal.EncodingNulByte
		}
		kind.EncHint = csvio.SniffEncodingHint(raw)
		return sideData{}, &sideFailure{code: refusal.Encoding, kind: kind}
	}

	var delimiter byte
	var escape csvio.EscapeMode
	var parseBuf []byte

	switch {
	case forced != nil:
		delimiter = *forced
		parseBuf = guarded
		var perr *csvio.ParseError
		escape, perr = csvio.DetectEscapeMode(guarded, delimiter)
		if perr != nil {
			return sideData{}, &sideFailure{code: refusal.CsvParse, kind: refusal.Kind{
				ParseFile: side, ParseLine: perr.Line,
			}}
		}
	default:
		lines := csvio.SplitLines(guarded)
		scan := csvio.ScanFirstNonBlankLine(lines)
		switch scan.Kind {
		case csvio.SepNoLines:
			return sideData{}, &sideFailure{code: refusal.Headers, kind: refusal.Kind{
				HeadersFile: side, HeadersIssue: refusal.MissingHeader,
			}}
		case csvio.SepDirective:
			delimiter = scan.Delimiter
			parseBuf = bufWithoutLine(lines, scan.LineIndex)
			var perr *csvio.ParseError
			escape, perr = csvio.DetectEscapeMode(parseBuf, delimiter)
			if perr != nil {
				return sideData{}, &sideFailure{code: refusal.CsvParse, kind: refusal.Kind{
					ParseFile: side, ParseLine: perr.Line,
				}}
			}
		default:
			dialect, dialectErr := csvio.AutoDetect(guarded)
			if dialectErr != nil {
				resolved, sf := resolveDialectError(side, dialectErr, allowSingleColumn, guarded)
				if sf != nil {
					return sideData{}, sf
				}
				delimiter, escape, parseBuf = resolved.Delimiter, resolved.Escape, guarded
			} else {
				delimiter, escape, parseBuf = dialect.Delimiter, dialect.Escape, guarded
			}
		}
	}

	reader := csvio.NewReader(parseBuf, delimiter, escape)
	headerRaw, hasHeader, perr := reader.ReadRecord()
	if perr != nil {
		return sideData{}, &sideFailure{code: refusal.CsvParse, kind: refusal.Kind{ParseFile: side, ParseLine: perr.Line}}
	}
	if !hasHeader {
		return sideData{}, &sideFailure{code: refusal.Headers, kind: refusal.Kind{HeadersFile: side, HeadersIssue: refusal.MissingHeader}}
	}

	headers, dupErr := normalize.Headers(headerRaw)
	if dupErr != nil {
		return sideData{}, &sideFailure{code: refusal.Headers, kind: refusal.Kind{
			HeadersFile: side, HeadersIssue: refusal.DuplicateHeader, HeadersName: dupErr.Name,
		}}
	}

	var records []normalize.Record
	var recordNumbers []uint64
	var recordNumber uint64
	for {
		raw, ok, perr := reader.ReadRecord()
		if perr != nil {
			return sideData{}, &sideFailure{code: refusal.CsvParse, kind: refusal.Kind{ParseFile: side, ParseLine: perr.Line}}
		}
		if !ok {
			break
		}
		if csvio.IsBlankRecord(raw) {
			continue
		}
		recordNumber++
		rec, werr := normalize.NormalizeRecord(raw, len(headers), recordNumber)
		if werr != nil {
			return sideData{}, &sideFailure{code: refusal.Headers, kind: refusal.Kind{
				HeadersFile: side, HeadersIssue: refusal.ExtraFields, HeadersRecord: recordNumber,
			}}
		}
		records = append(records, rec)
		recordNumbers = append(recordNumbers, recordNumber)
	}

	return sideData{
		headers:       headers,
		records:       records,
		recordNumbers: recordNumbers,
		dialect:       csvio.Dialect{Delimiter: delimiter, Escape: escape, Quote: '"'},
	}, nil
}

func classifyBOM(raw []byte) refusal.EncodingIssue {
	if len(raw) >= 4 && (bytesHasPrefix(raw, []byte{0x00, 0x00, 0xFE, 0xFF}) || bytesHasPrefix(raw, []byte{0xFF, 0xFE, 0x00, 0x00})) {
		return refusal.EncodingUTF32
	}
	return refusal.EncodingUTF16
}

func bytesHasPrefix(b, prefix []byte) bool {
	if len(b) < len(prefix) {
		return false
	}
	for i := range prefix {
		if b[i] != prefix[i] {
			return false
		}
	}
	return true
}

func bufWithoutLine(lines [][]byte, index int) []byte {
	var out []byte
	for i, line := range lines {
		if i == index {
			continue
		}
		out = append(out, line...)
		if i != len(lines)-1 {
			out = append(out, '\n')
		}
	}
	return out
}

// resolvedDialect is the (delimiter, escape) pair recovered after a
// DialectErrSingleColumn is tolerated under --allow-single-column.
type resolvedDialect struct {
	Delimiter byte
	Escape    csvio.EscapeMode
}

// resolveDialectError turns a failed auto-detection into either a refusal,
// or (only for the single-column case, only when explicitly allowed) a
// resolved dialect the caller can proceed with.
func resolveDialectError(side refusal.FileSide, derr *csvio.DialectError, allowSingleColumn bool, guarded []byte) (resolvedDialect, *sideFailure) {
	switch derr.Kind {
	case csvio.DialectErrNoHeader:
		return resolvedDialect{}, &sideFailure{code: refusal.Headers, kind: refusal.Kind{HeadersFile: side, HeadersIssue: refusal.MissingHeader}}
	case csvio.DialectErrCsvParse:
		return resolvedDialect{}, &sideFailure{code: refusal.CsvParse, kind: refusal.Kind{ParseFile: side, ParseLine: derr.ParseErr.Line}}
	case csvio.DialectErrAmbiguous:
		return resolvedDialect{}, &sideFailure{code: refusal.Dialect, kind: refusal.Kind{DialectFile: side, TiedDelimiters: derr.Tied}}
	case csvio.DialectErrSingleColumn:
		if allowSingleColumn {
			escape, perr := csvio.DetectEscapeMode(guarded, derr.Delimiter)
			if perr != nil {
				return resolvedDialect{}, &sideFailure{code: refusal.CsvParse, kind: refusal.Kind{ParseFile: side, ParseLine: perr.Line}}
			}
			return resolvedDialect{Delimiter: derr.Delimiter, Escape: escape}, nil
		}
		return resolvedDialect{}, &sideFailure{code: refusal.Dialect, kind: refusal.Kind{
			DialectFile: side, DialectSuggestion: refusal.DialectSuggestion{ForceDelimiter: preferredOtherDelimiter(derr.Delimiter)},
		}}
	default:
		return resolvedDialect{}, &sideFailure{code: refusal.CsvParse, kind: refusal.Kind{ParseFile: side}}
	}
}

func preferredOtherDelimiter(current byte) *refusal.DelimiterHint {
	for _, d := range csvio.CandidateDelimiters {
		if d != current {
			hint := namedDelimiterHint(d)
			return &hint
		}
	}
	return nil
}

func namedDelimiterHint(b byte) refusal.DelimiterHint {
	switch b {
	case ',':
		return refusal.NamedHint(refusal.Comma)
	case '\t':
		return refusal.NamedHint(refusal.Tab)
	case ';':
		return refusal.NamedHint(refusal.Semicolon)
	case '|':
		return refusal.NamedHint(refusal.Pipe)
	case '^':
		return refusal.NamedHint(refusal.Caret)
	default:
		return refusal.ByteHint(b)
	}
}

// alignedRow is one cross-snapshot aligned row, reconciling the row-order
// and key-mode alignment strategies into the single shape the numeric
// typing and diff passes walk.
type alignedRow struct {
	cellRowID       diff.RowId
	oldRecordNumber uint64
	newRecordNumber uint64
	old             numeric.FieldAccessor
	new             numeric.FieldAccessor
}

type fieldsAccessor [][]byte

func (f fieldsAccessor) Field(index int) []byte {
	if index < 0 || index >= len(f) {
		return nil
	}
	return f[index]
}

func keyRowsOf(records []normalize.Record) []align.KeyRow {
	out := make([]align.KeyRow, len(records))
	for i, r := range records {
		out[i] = r
	}
	return out
}

func recordFields(rec normalize.Record) [][]byte {
	out := make([][]byte, rec.Len())
	for i := range out {
		out[i] = rec.Field(i)
	}
	return out
}

func runAligned(base output.Result, paths refusal.RerunPaths, args Args, oldSide, newSide sideData) (output.Result, error) {
	var rows []alignedRow

	if args.KeyColumn == nil {
		base.Alignment = output.RowOrder
		pairs, rerr := align.PairRowsByOrder(oldSide.records, newSide.records)
		if rerr != nil {
			suggested := candidateNames(align.DiscoverKeyCandidates(oldSide.headers, newSide.headers, keyRowsOf(oldSide.records), keyRowsOf(newSide.records)))
			return refuse(base, sideFailure{code: refusal.RowCount, kind: refusal.Kind{
				RowsOld: rerr.RowsOld, RowsNew: rerr.RowsNew, SuggestedKeys: suggested,
			}}, paths), nil
		}
		rows = make([]alignedRow, len(pairs))
		for i, p := range pairs {
			rows[i] = alignedRow{
				cellRowID:       diff.NewRowIndex(p.RowID),
				oldRecordNumber: uint64(p.RowID),
				newRecordNumber: uint64(p.RowID),
				old:             p.Old,
				new:             p.New,
			}
		}
	} else {
		base.Alignment = output.KeyMode
		oldIdx := indexOfHeader(oldSide.headers, args.KeyColumn)
		newIdx := indexOfHeader(newSide.headers, args.KeyColumn)
		if oldIdx < 0 || newIdx < 0 {
			return refuse(base, sideFailure{code: refusal.NoKey, kind: refusal.Kind{KeyColumn: args.KeyColumn}}, paths), nil
		}

		oldNumbered := toNumberedRecords(oldSide.records, oldSide.recordNumbers)
		newNumbered := toNumberedRecords(newSide.records, newSide.recordNumbers)

		oldMap, kerr := align.BuildKeyMap(oldNumbered, oldIdx)
		if kerr != nil {
			return refuse(base, keyJoinFailure(refusal.Old, kerr), paths), nil
		}
		newMap, kerr := align.BuildKeyMap(newNumbered, newIdx)
		if kerr != nil {
			return refuse(base, keyJoinFailure(refusal.New, kerr), paths), nil
		}
		joined, kerr := align.JoinKeyMaps(oldMap, newMap)
		if kerr != nil {
			return refuse(base, sideFailure{code: refusal.KeyMismatch, kind: refusal.Kind{
				MissingInNew: kerr.MissingCount, ExtraInNew: kerr.ExtraCount,
				MissingSamples: kerr.MissingSamples, ExtraSamples: kerr.ExtraSamples,
			}}, paths), nil
		}

		rows = make([]alignedRow, len(joined))
		for i, j := range joined {
			rows[i] = alignedRow{
				cellRowID:       diff.NewRowKey(j.Key),
				oldRecordNumber: j.Old.RecordNumber,
				newRecordNumber: j.New.RecordNumber,
				old:             fieldsAccessor(j.Old.Fields),
				new:             fieldsAccessor(j.New.Fields),
			}
		}
	}

	intersection := numeric.IntersectHeaders(oldSide.headers, newSide.headers, args.KeyColumn)
	base.Counts = output.Counts{
		Known:          true,
		CommonColumns:  len(intersection.Common),
		OldOnlyColumns: len(intersection.OldOnly),
		NewOnlyColumns: len(intersection.NewOnly),
		Rows:           len(rows),
	}

	numericRows := make([]numeric.Row, len(rows))
	for i, r := range rows {
		numericRows[i] = numeric.Row{RowID: uint64(i), Old: r.old, New: r.new}
	}
	numericColumns, mixedErr, missingErr := numeric.DetectNumericColumns(intersection.Common, numericRows)
	if missingErr != nil {
		return refuse(base, typingFailure(refusal.Missingness, rows, missingErr.RowID, missingErr.MissingSide, missingErr.Column, missingErr.PresentValue, args.KeyColumn != nil), paths), nil
	}
	if mixedErr != nil {
		return refuse(base, typingFailure(refusal.MixedTypes, rows, mixedErr.RowID, mixedErr.Side, mixedErr.Column, mixedErr.Value, args.KeyColumn != nil), paths), nil
	}
	if len(numericColumns) == 0 {
		return refuse(base, sideFailure{code: refusal.NoNumeric, kind: refusal.Kind{}}, paths), nil
	}

	base.Counts.NumericColumns = len(numericColumns)
	base.Counts.Cells = len(rows) * len(numericColumns)

	tracker := diff.NewToleranceTracker(args.Tolerance)
	acc := diff.NewDiffAccumulatorDefault[diff.CellId]()
	tie := &diff.TieBreaker{}

	for i, r := range rows {
		for j, col := range numericColumns {
			oldRaw := r.old.Field(col.OldIndex)
			newRaw := r.new.Field(col.NewIndex)
			if numeric.IsMissingToken(oldRaw) && numeric.IsMissingToken(newRaw) {
				continue
			}
			oldVal, _ := numeric.ParseNumeric(oldRaw)
			newVal, _ := numeric.ParseNumeric(newRaw)
			delta, contribution := tracker.Apply(oldVal, newVal)
			acc.Observe(diff.CellId{RowID: r.cellRowID, Column: j}, delta, contribution, tie.NextValue())
		}
	}

	sorted := acc.Top.IntoSlice()
	diff.SortContributors(sorted)
	contributionsDesc := make([]float64, len(sorted))
	for i, c := range sorted {
		contributionsDesc[i] = c.Contribution
	}

	if args.KeyColumn == nil && acc.TotalChange > 0 {
		shuffle := align.DetectShuffle(oldSide.headers, newSide.headers, keyRowsOf(oldSide.records), keyRowsOf(newSide.records))
		if shuffle.NeedsKey() {
			return refuse(base, sideFailure{code: refusal.NeedKey, kind: refusal.Kind{SuggestedKeys: shuffle.SuggestedKeys}}, paths), nil
		}
	}

	decision := diff.EvaluateCoverage(contributionsDesc, acc.TotalChange, args.Threshold)
	switch decision.Kind {
	case diff.CoverageNoChange:
		base.Outcome = output.NoRealChange
		base.MaxAbsDelta = acc.MaxAbsDelta
		return base, nil
	case diff.CoverageDiffuse:
		return refuse(base, sideFailure{code: refusal.Diffuse, kind: refusal.Kind{
			TopKCoverage: decision.TopKCoverage, Threshold: args.Threshold,
		}}, paths), nil
	default:
		base.Outcome = output.RealChange
		base.Cutoff = decision.Cutoff
		base.Coverage = decision.Coverage
		base.TotalChange = acc.TotalChange
		shown := sorted[:decision.Cutoff]
		base.Contributors = buildContributorViews(rows, numericColumns, shown, acc.TotalChange)
		return base, nil
	}
}

func buildContributorViews(rows []alignedRow, numericColumns []numeric.CommonColumn, shown []diff.Contributor[diff.CellId], totalChange float64) []output.ContributorView {
	views := make([]output.ContributorView, len(shown))
	var cumulative float64
	for i, c := range shown {
		oldRaw, newRaw := lookupRawValues(rows, numericColumns, c.ID)
		cumulative += c.Contribution
		views[i] = output.ContributorView{
			RowIDHuman:      rowIDHuman(c.ID.RowID),
			RowIDJSON:       rowIDJSON(c.ID.RowID),
			Column:          string(numericColumns[c.ID.Column].Name),
			OldRaw:          string(oldRaw),
			NewRaw:          string(newRaw),
			Delta:           c.Delta,
			Contribution:    c.Contribution,
			Share:           c.Contribution / totalChange,
			CumulativeShare: cumulative / totalChange,
		}
	}
	return views
}

func lookupRawValues(rows []alignedRow, numericColumns []numeric.CommonColumn, id diff.CellId) ([]byte, []byte) {
	for _, r := range rows {
		if r.cellRowID.Compare(id.RowID) == 0 {
			col := numericColumns[id.Column]
			return r.old.Field(col.OldIndex), r.new.Field(col.NewIndex)
		}
	}
	return nil, nil
}

func rowIDHuman(id diff.RowId) string {
	if id.IsKey() {
		return format.IdentifierHuman(id.Key())
	}
	return fmt.Sprintf("%d", id.Index())
}

func rowIDJSON(id diff.RowId) string {
	if id.IsKey() {
		return format.IdentifierJSON(id.Key())
	}
	return fmt.Sprintf("%d", id.Index())
}

func toNumberedRecords(records []normalize.Record, numbers []uint64) []align.NumberedRecord {
	out := make([]align.NumberedRecord, len(records))
	for i, r := range records {
		out[i] = align.NumberedRecord{RecordNumber: numbers[i], Fields: recordFields(r)}
	}
	return out
}

func indexOfHeader(headers [][]byte, name []byte) int {
	for i, h := range headers {
		if bytesEqual(h, name) {
			return i
		}
	}
	return -1
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func keyJoinFailure(side refusal.FileSide, kerr *align.KeyJoinError) sideFailure {
	switch kerr.Kind {
	case align.KeyJoinEmptyKey:
		return sideFailure{code: refusal.KeyEmpty, kind: refusal.Kind{KeyEmptyFile: side, KeyEmptyRecord: kerr.RecordNumber}}
	default:
		return sideFailure{code: refusal.KeyDup, kind: refusal.Kind{
			KeyDupFile: side, KeyDupRecord: kerr.SecondRecord, KeyDupValue: kerr.Key,
		}}
	}
}

func typingFailure(code refusal.Code, rows []alignedRow, rowIndex uint64, side numeric.Side, column []byte, value []byte, keyMode bool) sideFailure {
	r := rows[rowIndex]
	fileSide := refusal.Old
	recordNumber := r.oldRecordNumber
	if side == numeric.SideNew {
		fileSide = refusal.New
		recordNumber = r.newRecordNumber
	}
	kind := refusal.Kind{CellFile: fileSide, CellRecord: recordNumber, CellColumn: column, CellValue: value}
	if keyMode {
		kind.CellKey = r.cellRowID.Key()
	}
	return sideFailure{code: code, kind: kind}
}

func candidateNames(candidates []align.KeyCandidate) [][]byte {
	limit := align.MaxSuggestedKeys
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	names := make([][]byte, len(candidates))
	for i, c := range candidates {
		names[i] = c.Name
	}
	return names
}
