package numeric

import "bytes"

// Side identifies which snapshot a column-typing error points at.
type Side int

const (
	SideOld Side = iota
	SideNew
)

// CommonColumn is a column present (by normalized name) in both snapshots.
type CommonColumn struct {
	Name     []byte
	OldIndex int
	NewIndex int
}

// ColumnIntersection is the header intersection result, excluding the key
// column when one was supplied.
type ColumnIntersection struct {
	Common  []CommonColumn
	OldOnly [][]byte
	NewOnly [][]byte
}

// MixedTypesError reports a column that mixes numeric and non-numeric
// values across the two snapshots.
type MixedTypesError struct {
	RowID  uint64
	Column []byte
	Side   Side
	Value  []byte
}

// MissingnessError reports a column where one side is missing and the
// other side holds a numeric value.
type MissingnessError struct {
	RowID        uint64
	Column       []byte
	MissingSide  Side
	PresentValue []byte
}

// FieldAccessor exposes fields by index, matching a normalized record.
type FieldAccessor interface {
	Field(index int) []byte
}

// Row pairs a row identifier with its old/new field views for typing.
type Row struct {
	RowID uint64
	Old   FieldAccessor
	New   FieldAccessor
}

// IntersectHeaders computes the common columns (by normalized name) and the
// old-only/new-only lists, excluding key (if non-nil) from all three.
func IntersectHeaders(oldHeaders, newHeaders [][]byte, key []byte) ColumnIntersection {
	newIndex := make(map[string]int, len(newHeaders))
	for idx, name := range newHeaders {
		if bytes.Equal(name, key) {
			continue
		}
		newIndex[string(name)] = idx
	}

	var common []CommonColumn
	var oldOnly [][]byte
	oldSeen := make(map[string]struct{}, len(oldHeaders))

	for idx, name := range oldHeaders {
		if bytes.Equal(name, key) {
			continue
		}
		oldSeen[string(name)] = struct{}{}
		if newIdx, ok := newIndex[string(name)]; ok {
			common = append(common, CommonColumn{Name: name, OldIndex: idx, NewIndex: newIdx})
		} else {
			oldOnly = append(oldOnly, name)
		}
	}

	var newOnly [][]byte
	for _, name := range newHeaders {
		if bytes.Equal(name, key) {
			continue
		}
		if _, ok := oldSeen[string(name)]; !ok {
			newOnly = append(newOnly, name)
		}
	}

	return ColumnIntersection{Common: common, OldOnly: oldOnly, NewOnly: newOnly}
}

type nonNumeric struct {
	rowID uint64
	side  Side
	value []byte
}

type columnState struct {
	column          CommonColumn
	sawNumeric      bool
	firstNonNumeric *nonNumeric
}

// DetectNumericColumns walks rows and classifies each common column as
// numeric (every non-missing pair parsed on both sides across the whole
// walk) or non-numeric (never saw a numeric pair). Mixed numeric/
// non-numeric values, or a missing value paired with a numeric one,
// refuse immediately with the first offending row.
func DetectNumericColumns(columns []CommonColumn, rows []Row) ([]CommonColumn, *MixedTypesError, *MissingnessError) {
	states := make([]*columnState, len(columns))
	for i, c := range columns {
		states[i] = &columnState{column: c}
	}

	for _, row := range rows {
		for _, state := range states {
			oldRaw := state.column.fieldOf(row.Old, true)
			newRaw := state.column.fieldOf(row.New, false)

			oldMissing := IsMissingToken(oldRaw)
			newMissing := IsMissingToken(newRaw)

			if oldMissing && newMissing {
				continue
			}

			if oldMissing || newMissing {
				var presentRaw []byte
				var presentSide, missingSide Side
				if oldMissing {
					presentRaw, presentSide, missingSide = newRaw, SideNew, SideOld
				} else {
					presentRaw, presentSide, missingSide = oldRaw, SideOld, SideNew
				}

				if _, ok := ParseNumeric(presentRaw); ok {
					return nil, nil, &MissingnessError{
						RowID: row.RowID, Column: state.column.Name,
						MissingSide: missingSide, PresentValue: presentRaw,
					}
				}

				if state.sawNumeric {
					return nil, &MixedTypesError{
						RowID: row.RowID, Column: state.column.Name,
						Side: presentSide, Value: presentRaw,
					}, nil
				}
				state.recordNonNumeric(row.RowID, presentSide, presentRaw)
				continue
			}

			_, oldOK := ParseNumeric(oldRaw)
			_, newOK := ParseNumeric(newRaw)

			switch {
			case oldOK && newOK:
				if nn := state.firstNonNumeric; nn != nil {
					return nil, &MixedTypesError{
						RowID: nn.rowID, Column: state.column.Name,
						Side: nn.side, Value: nn.value,
					}, nil
				}
				state.sawNumeric = true
			case oldOK != newOK:
				var nonNumericRaw []byte
				var nonNumericSide Side
				if oldOK {
					nonNumericRaw, nonNumericSide = newRaw, SideNew
				} else {
					nonNumericRaw, nonNumericSide = oldRaw, SideOld
				}
				if state.sawNumeric {
					return nil, &MixedTypesError{
						RowID: row.RowID, Column: state.column.Name,
						Side: nonNumericSide, Value: nonNumericRaw,
					}, nil
				}
				state.recordNonNumeric(row.RowID, nonNumericSide, nonNumericRaw)
			default:
				if state.sawNumeric {
					return nil, &MixedTypesError{
						RowID: row.RowID, Column: state.column.Name,
						Side: SideOld, Value: oldRaw,
					}, nil
				}
				state.recordNonNumeric(row.RowID, SideOld, oldRaw)
			}
		}
	}

	var numeric []CommonColumn
	for _, state := range states {
		if state.sawNumeric {
			numeric = append(numeric, state.column)
		}
	}
	return numeric, nil, nil
}

func (c CommonColumn) fieldOf(accessor FieldAccessor, old bool) []byte {
	if old {
		return accessor.Field(c.OldIndex)
	}
	return accessor.Field(c.NewIndex)
}

func (s *columnState) recordNonNumeric(rowID uint64, side Side, value []byte) {
	if s.firstNonNumeric == nil {
		s.firstNonNumeric = &nonNumeric{rowID: rowID, side: side, value: value}
	}
}
