package align

import (
	"bytes"

	"github.com/cmdrvl/rvl/internal/normalize"
)

// MaxSuggestedKeys bounds how many candidate key names a shuffle
// detection or row-count refusal suggests.
const MaxSuggestedKeys = 3

// ShuffleDetection is the result of checking whether row order changed
// under any perfect key candidate.
type ShuffleDetection struct {
	Reordered     bool
	SuggestedKeys [][]byte
}

// NeedsKey reports whether the detection found an actual reorder.
func (d ShuffleDetection) NeedsKey() bool { return d.Reordered }

// DetectShuffle checks whether rows were reordered under any perfect key
// candidate. oldRows and newRows must already exclude blank records.
// Suggested keys are capped at MaxSuggestedKeys, in candidate order.
func DetectShuffle(oldHeaders, newHeaders [][]byte, oldRows, newRows []KeyRow) ShuffleDetection {
	candidates := DiscoverKeyCandidates(oldHeaders, newHeaders, oldRows, newRows)
	suggested := candidateNames(candidates, MaxSuggestedKeys)

	for _, c := range candidates {
		if c.Kind != CandidatePerfect {
			continue
		}
		if hasReorder(c, oldRows, newRows) {
			return ShuffleDetection{Reordered: true, SuggestedKeys: suggested}
		}
	}

	return ShuffleDetection{Reordered: false, SuggestedKeys: suggested}
}

func candidateNames(candidates []KeyCandidate, limit int) [][]byte {
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	names := make([][]byte, len(candidates))
	for i, c := range candidates {
		names[i] = c.Name
	}
	return names
}

func hasReorder(candidate KeyCandidate, oldRows, newRows []KeyRow) bool {
	oldKeys := keySequence(oldRows, candidate.OldIndex)
	newKeys := keySequence(newRows, candidate.NewIndex)
	if len(oldKeys) != len(newKeys) {
		return true
	}
	for i := range oldKeys {
		if !bytes.Equal(oldKeys[i], newKeys[i]) {
			return true
		}
	}
	return false
}

func keySequence(rows []KeyRow, index int) [][]byte {
	out := make([][]byte, len(rows))
	for i, row := range rows {
		out[i] = normalize.AsciiTrim(row.Field(index))
	}
	return out
}
