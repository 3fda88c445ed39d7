package normalize

import "fmt"

// RecordWidthError reports a data row with non-empty fields beyond the
// header width.
type RecordWidthError struct {
	RecordNumber    uint64
	FirstExtraIndex int
}

func (e *RecordWidthError) Error() string {
	return fmt.Sprintf("record %d has non-empty field at column %d beyond the header", e.RecordNumber, e.FirstExtraIndex)
}

// Record is a record reconciled to the header width: missing trailing
// fields read as empty, present but empty extra trailing fields are
// dropped, and any non-empty extra trailing field is an error.
type Record struct {
	fields    [][]byte
	headerLen int
}

// NormalizeRecord reconciles record against headerLen, validating that any
// fields beyond headerLen are empty after ASCII-trim.
func NormalizeRecord(record [][]byte, headerLen int, recordNumber uint64) (Record, *RecordWidthError) {
	if len(record) > headerLen {
		for index := headerLen; index < len(record); index++ {
			if len(AsciiTrim(record[index])) != 0 {
				return Record{}, &RecordWidthError{RecordNumber: recordNumber, FirstExtraIndex: index}
			}
		}
	}
	return Record{fields: record, headerLen: headerLen}, nil
}

// Field returns the field at index, or an empty slice if the row had fewer
// fields than the header.
func (r Record) Field(index int) []byte {
	if index >= r.headerLen {
		return nil
	}
	if index >= len(r.fields) {
		return nil
	}
	return r.fields[index]
}

// Len returns the normalized width (the header length).
func (r Record) Len() int { return r.headerLen }
