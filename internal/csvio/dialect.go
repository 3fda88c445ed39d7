package csvio

import (
	"bytes"

	"github.com/cmdrvl/rvl/internal/normalize"
)

// CandidateDelimiters are tried in this priority order, both for scoring
// and as the tie-break rank when multiple candidates score equally.
var CandidateDelimiters = []byte{',', '\t', ';', '|', '^'}

const (
	maxDataRecords = 200
	maxSampleBytes = 64 * 1024
)

// DialectScore is the (records_parsed, mode_count, mode_fields) tuple
// compared lexicographically to pick the best-scoring delimiter candidate.
type DialectScore struct {
	RecordsParsed uint64
	ModeCount     uint64
	ModeFields    int
}

// Less reports whether s sorts before other under the lexicographic
// (records_parsed, mode_count, mode_fields) ordering.
func (s DialectScore) Less(other DialectScore) bool {
	if s.RecordsParsed != other.RecordsParsed {
		return s.RecordsParsed < other.RecordsParsed
	}
	if s.ModeCount != other.ModeCount {
		return s.ModeCount < other.ModeCount
	}
	return s.ModeFields < other.ModeFields
}

func (s DialectScore) Equal(other DialectScore) bool {
	return s.RecordsParsed == other.RecordsParsed && s.ModeCount == other.ModeCount && s.ModeFields == other.ModeFields
}

// Dialect is the detected delimiter + escape mode for a CSV input.
type Dialect struct {
	Delimiter    byte
	Quote        byte
	Escape       EscapeMode
	HeaderFields int
	Score        DialectScore
}

// DialectErrorKind classifies an auto-detection failure.
type DialectErrorKind int

const (
	DialectErrCsvParse DialectErrorKind = iota
	DialectErrAmbiguous
	DialectErrSingleColumn
	DialectErrNoHeader
)

// DialectError reports why auto-detection failed.
type DialectError struct {
	Kind      DialectErrorKind
	ParseErr  *ParseError // CsvParse
	Tied      []byte      // Ambiguous, sorted by candidate rank
	Delimiter byte        // SingleColumn
}

func (e *DialectError) Error() string { return "dialect detection failed" }

type normalizedRecord [][]byte

type sampleParse struct {
	escape       EscapeMode
	headerFields int
	score        DialectScore
	records      []normalizedRecord
	err          *ParseError
}

type candidateSample struct {
	delimiter    byte
	escape       EscapeMode
	headerFields int
	score        DialectScore
	records      []normalizedRecord
}

// AutoDetect picks a delimiter and escape mode for input by sampling each
// candidate delimiter (under EscapeNone, retrying with EscapeBackslash only
// when that fails) and comparing scores.
func AutoDetect(input []byte) (Dialect, *DialectError) {
	trimmed := skipLeadingBlankLines(input)
	if len(trimmed) == 0 {
		return Dialect{}, &DialectError{Kind: DialectErrNoHeader}
	}

	var candidates []candidateSample
	var firstErr *ParseError

	for _, delimiter := range CandidateDelimiters {
		if sample, ok := scoreDelimiter(trimmed, delimiter, &firstErr); ok {
			candidates = append(candidates, sample)
		}
	}

	if len(candidates) == 0 {
		return Dialect{}, &DialectError{Kind: DialectErrCsvParse, ParseErr: firstErr}
	}

	best := candidates[0].score
	for _, c := range candidates[1:] {
		if best.Less(c.score) {
			best = c.score
		}
	}

	var tied []candidateSample
	for _, c := range candidates {
		if c.score.Equal(best) {
			tied = append(tied, c)
		}
	}

	var chosen candidateSample
	if len(tied) == 1 {
		chosen = tied[0]
	} else if samplesIdentical(tied) {
		chosen = tied[delimiterRankMinIndex(tied)]
	} else {
		tiedDelims := make([]byte, len(tied))
		for i, c := range tied {
			tiedDelims[i] = c.delimiter
		}
		sortByDelimiterRank(tiedDelims)
		return Dialect{}, &DialectError{Kind: DialectErrAmbiguous, Tied: tiedDelims}
	}

	if chosen.headerFields == 1 {
		return Dialect{}, &DialectError{Kind: DialectErrSingleColumn, Delimiter: chosen.delimiter}
	}

	return Dialect{
		Delimiter:    chosen.delimiter,
		Quote:        quoteByte,
		Escape:       chosen.escape,
		HeaderFields: chosen.headerFields,
		Score:        chosen.score,
	}, nil
}

func scoreDelimiter(input []byte, delimiter byte, firstErr **ParseError) (candidateSample, bool) {
	rfc := sampleWithEscape(input, delimiter, EscapeNone)
	rfcFailed := rfc.err != nil
	if rfc.err != nil && *firstErr == nil {
		*firstErr = rfc.err
	}

	chosen := rfc
	if rfcFailed {
		backslash := sampleWithEscape(input, delimiter, EscapeBackslash)
		if backslash.err != nil && *firstErr == nil {
			*firstErr = backslash.err
		}
		chosen = chooseBest(rfc, backslash)
	}

	if chosen.score.RecordsParsed == 0 {
		return candidateSample{}, false
	}

	return candidateSample{
		delimiter:    delimiter,
		escape:       chosen.escape,
		headerFields: chosen.headerFields,
		score:        chosen.score,
		records:      chosen.records,
	}, true
}

func chooseBest(left, right sampleParse) sampleParse {
	if left.score.Less(right.score) {
		return right
	}
	return left
}

func sampleWithEscape(input []byte, delimiter byte, escape EscapeMode) sampleParse {
	if err := ValidateQuotes(input, delimiter, escape); err != nil {
		return sampleParse{escape: escape, err: newParseError(err.Error(), 1, escape)}
	}

	reader := NewReader(input, delimiter, escape)
	headerFields := 0
	dataRecords := 0
	var recordsParsed uint64
	histogram := map[int]uint64{}
	var records []normalizedRecord
	var parseErr *ParseError
	seenHeader := false

	for {
		record, ok, err := reader.ReadRecord()
		if err != nil {
			parseErr = err
			break
		}
		if !ok {
			break
		}
		if !seenHeader {
			seenHeader = true
			headerFields = len(record)
			recordsParsed++
			histogram[effectiveFieldCount(record, headerFields)]++
			records = append(records, normalizeRecordForCompare(record, headerFields))
		} else if !IsBlankRecord(record) {
			dataRecords++
			if dataRecords > maxDataRecords {
				break
			}
			recordsParsed++
			histogram[effectiveFieldCount(record, headerFields)]++
			records = append(records, normalizeRecordForCompare(record, headerFields))
		}
		if reader.pos >= maxSampleBytes {
			break
		}
	}

	modeCount, modeFields := computeMode(histogram)

	return sampleParse{
		escape:       escape,
		headerFields: headerFields,
		score:        DialectScore{RecordsParsed: recordsParsed, ModeCount: modeCount, ModeFields: modeFields},
		records:      records,
		err:          parseErr,
	}
}

func computeMode(histogram map[int]uint64) (uint64, int) {
	var modeCount uint64
	var modeFields int
	for fields, count := range histogram {
		if count > modeCount || (count == modeCount && fields > modeFields) {
			modeCount = count
			modeFields = fields
		}
	}
	return modeCount, modeFields
}

func effectiveFieldCount(record [][]byte, headerFields int) int {
	if len(record) <= headerFields {
		return headerFields
	}
	allBlank := true
	for _, field := range record[headerFields:] {
		if !normalize.IsAsciiBlankSlice(field) {
			allBlank = false
			break
		}
	}
	if allBlank {
		return headerFields
	}
	return len(record)
}

func normalizeRecordForCompare(record [][]byte, headerFields int) normalizedRecord {
	normalized := make(normalizedRecord, len(record))
	copy(normalized, record)
	if len(normalized) < headerFields {
		for len(normalized) < headerFields {
			normalized = append(normalized, nil)
		}
		return normalized
	}
	for len(normalized) > headerFields {
		last := normalized[len(normalized)-1]
		if normalize.IsAsciiBlankSlice(last) {
			normalized = normalized[:len(normalized)-1]
		} else {
			break
		}
	}
	return normalized
}

func samplesIdentical(candidates []candidateSample) bool {
	if len(candidates) == 0 {
		return true
	}
	first := candidates[0].records
	for _, c := range candidates[1:] {
		if !recordsEqual(c.records, first) {
			return false
		}
	}
	return true
}

func recordsEqual(a, b []normalizedRecord) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			if !bytes.Equal(a[i][j], b[i][j]) {
				return false
			}
		}
	}
	return true
}

func delimiterRank(delimiter byte) int {
	for i, c := range CandidateDelimiters {
		if c == delimiter {
			return i
		}
	}
	return len(CandidateDelimiters)
}

func delimiterRankMinIndex(candidates []candidateSample) int {
	best := 0
	for i := range candidates {
		if delimiterRank(candidates[i].delimiter) < delimiterRank(candidates[best].delimiter) {
			best = i
		}
	}
	return best
}

func sortByDelimiterRank(delims []byte) {
	for i := 1; i < len(delims); i++ {
		for j := i; j > 0 && delimiterRank(delims[j-1]) > delimiterRank(delims[j]); j-- {
			delims[j-1], delims[j] = delims[j], delims[j-1]
		}
	}
}

func skipLeadingBlankLines(input []byte) []byte {
	offset := 0
	for _, line := range SplitLines(input) {
		if IsBlankLine(line) {
			offset += len(line) + 1
			continue
		}
		if offset >= len(input) {
			return nil
		}
		return input[offset:]
	}
	return nil
}
