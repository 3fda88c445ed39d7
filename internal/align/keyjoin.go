package align

import (
	"sort"

	"github.com/cmdrvl/rvl/internal/normalize"
)

// MaxKeyMismatchSamples bounds how many missing/extra keys a
// KeySetMismatch error lists.
const MaxKeyMismatchSamples = 10

// KeyEntry is one data record keyed by its join-key value.
type KeyEntry struct {
	RecordNumber uint64
	Fields       [][]byte
}

// KeyMap indexes data records by trimmed key value.
type KeyMap struct {
	Entries map[string]KeyEntry
}

// KeyAlignedRow pairs an old and new record sharing the same key.
type KeyAlignedRow struct {
	Key []byte
	Old KeyEntry
	New KeyEntry
}

// KeyJoinErrorKind classifies a key-mode alignment failure.
type KeyJoinErrorKind int

const (
	KeyJoinEmptyKey KeyJoinErrorKind = iota
	KeyJoinDuplicateKey
	KeyJoinKeySetMismatch
)

// KeyJoinError reports a key-mode alignment failure.
type KeyJoinError struct {
	Kind         KeyJoinErrorKind
	RecordNumber uint64 // EmptyKey

	Key          []byte // DuplicateKey
	FirstRecord  uint64
	SecondRecord uint64

	MissingCount   int // KeySetMismatch
	ExtraCount     int
	MissingSamples [][]byte
	ExtraSamples   [][]byte
}

func (e *KeyJoinError) Error() string {
	switch e.Kind {
	case KeyJoinEmptyKey:
		return "empty key"
	case KeyJoinDuplicateKey:
		return "duplicate key"
	default:
		return "key set mismatch"
	}
}

// NumberedRecord pairs a 1-based data-record number with its fields, the
// input shape BuildKeyMap consumes.
type NumberedRecord struct {
	RecordNumber uint64
	Fields       [][]byte
}

// BuildKeyMap indexes data records (header already excluded, widths
// already normalized) by their trimmed key-column value. Blank records are
// skipped. An empty or duplicate key value fails immediately.
func BuildKeyMap(records []NumberedRecord, keyIndex int) (KeyMap, *KeyJoinError) {
	entries := make(map[string]KeyEntry, len(records))
	for _, rec := range records {
		if isBlankOwnedRecord(rec.Fields) {
			continue
		}
		var rawKey []byte
		if keyIndex < len(rec.Fields) {
			rawKey = rec.Fields[keyIndex]
		}
		key := normalize.AsciiTrim(rawKey)
		if len(key) == 0 {
			return KeyMap{}, &KeyJoinError{Kind: KeyJoinEmptyKey, RecordNumber: rec.RecordNumber}
		}
		keyStr := string(key)
		if existing, ok := entries[keyStr]; ok {
			return KeyMap{}, &KeyJoinError{
				Kind: KeyJoinDuplicateKey, Key: append([]byte(nil), key...),
				FirstRecord: existing.RecordNumber, SecondRecord: rec.RecordNumber,
			}
		}
		entries[keyStr] = KeyEntry{RecordNumber: rec.RecordNumber, Fields: rec.Fields}
	}
	return KeyMap{Entries: entries}, nil
}

// JoinKeyMaps joins two key maps by exact key match, returning aligned
// rows sorted by key bytes. KeySetMismatch is reported before any join is
// attempted if the key sets differ.
func JoinKeyMaps(old, new KeyMap) ([]KeyAlignedRow, *KeyJoinError) {
	if mismatch := compareKeySets(old.Entries, new.Entries); mismatch != nil {
		return nil, mismatch
	}

	keys := make([]string, 0, len(old.Entries))
	for k := range old.Entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	aligned := make([]KeyAlignedRow, 0, len(keys))
	for _, k := range keys {
		aligned = append(aligned, KeyAlignedRow{
			Key: []byte(k),
			Old: old.Entries[k],
			New: new.Entries[k],
		})
	}
	return aligned, nil
}

func compareKeySets(oldEntries, newEntries map[string]KeyEntry) *KeyJoinError {
	var missing, extra []string
	for k := range oldEntries {
		if _, ok := newEntries[k]; !ok {
			missing = append(missing, k)
		}
	}
	for k := range newEntries {
		if _, ok := oldEntries[k]; !ok {
			extra = append(extra, k)
		}
	}
	if len(missing) == 0 && len(extra) == 0 {
		return nil
	}

	sort.Strings(missing)
	sort.Strings(extra)
	missingCount := len(missing)
	extraCount := len(extra)
	if len(missing) > MaxKeyMismatchSamples {
		missing = missing[:MaxKeyMismatchSamples]
	}
	if len(extra) > MaxKeyMismatchSamples {
		extra = extra[:MaxKeyMismatchSamples]
	}

	return &KeyJoinError{
		Kind: KeyJoinKeySetMismatch, MissingCount: missingCount, ExtraCount: extraCount,
		MissingSamples: toByteSlices(missing), ExtraSamples: toByteSlices(extra),
	}
}

func toByteSlices(ss []string) [][]byte {
	out := make([][]byte, len(ss))
	for i, s := range ss {
		out[i] = []byte(s)
	}
	return out
}

func isBlankOwnedRecord(record [][]byte) bool {
	for _, field := range record {
		if len(normalize.AsciiTrim(field)) != 0 {
			return false
		}
	}
	return true
}
