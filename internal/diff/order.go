package diff

import (
	"bytes"
	"sort"
)

// RowId identifies a row either by its row-order index or by its join-key
// bytes. A RowIndex always orders before any Key, regardless of value.
type RowId struct {
	isKey bool
	index int
	key   []byte
}

// NewRowIndex builds a row-order-based RowId.
func NewRowIndex(index int) RowId { return RowId{index: index} }

// NewRowKey builds a key-based RowId.
func NewRowKey(key []byte) RowId { return RowId{isKey: true, key: key} }

// IsKey reports whether this RowId is key-based rather than index-based.
func (r RowId) IsKey() bool { return r.isKey }

// Index returns the row-order index. Only meaningful when !IsKey().
func (r RowId) Index() int { return r.index }

// Key returns the join-key bytes. Only meaningful when IsKey().
func (r RowId) Key() []byte { return r.key }

// Compare orders RowIndex before Key; within a variant, by value.
func (r RowId) Compare(other RowId) int {
	if r.isKey != other.isKey {
		if !r.isKey {
			return -1
		}
		return 1
	}
	if !r.isKey {
		switch {
		case r.index < other.index:
			return -1
		case r.index > other.index:
			return 1
		default:
			return 0
		}
	}
	return bytes.Compare(r.key, other.key)
}

// CellId identifies a single cell: its row and column.
type CellId struct {
	RowID  RowId
	Column int
}

// Compare orders by row id, then column.
func (c CellId) Compare(other CellId) int {
	if cmp := c.RowID.Compare(other.RowID); cmp != 0 {
		return cmp
	}
	switch {
	case c.Column < other.Column:
		return -1
	case c.Column > other.Column:
		return 1
	default:
		return 0
	}
}

// TieBreaker hands out monotonically increasing values to break exact
// contribution ties deterministically in favor of earlier observations.
type TieBreaker struct {
	next uint64
}

// NextValue returns the next tie-break value, then advances.
func (t *TieBreaker) NextValue() uint64 {
	v := t.next
	t.next++
	return v
}

// SortContributors sorts contributors by contribution descending, ties
// broken by CellId ascending.
func SortContributors(items []Contributor[CellId]) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Contribution != b.Contribution {
			return a.Contribution > b.Contribution
		}
		return a.ID.Compare(b.ID) < 0
	})
}

// SortBytes sorts byte slices lexicographically.
func SortBytes(items [][]byte) {
	sort.Slice(items, func(i, j int) bool {
		return bytes.Compare(items[i], items[j]) < 0
	})
}

// SortAndTruncateBytes sorts byte slices lexicographically and truncates
// to at most limit entries.
func SortAndTruncateBytes(items [][]byte, limit int) [][]byte {
	SortBytes(items)
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}
