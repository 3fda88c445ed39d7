package align

import "testing"

type fieldRow []string

func (r fieldRow) Field(i int) []byte { return []byte(r[i]) }

func toKeyRows(rows [][]string) []KeyRow {
	out := make([]KeyRow, len(rows))
	for i, r := range rows {
		out[i] = fieldRow(r)
	}
	return out
}

func TestDiscoverKeyCandidatesRanksPerfectBeforeJoinable(t *testing.T) {
	headers := [][]byte{[]byte("id"), []byte("status")}
	oldRows := toKeyRows([][]string{{"1", "open"}, {"2", "closed"}})
	newRows := toKeyRows([][]string{{"1", "closed"}, {"2", "pending"}})

	candidates := DiscoverKeyCandidates(headers, headers, oldRows, newRows)
	if len(candidates) != 2 {
		t.Fatalf("candidates = %+v, want 2 (id perfect, status joinable)", candidates)
	}
	if string(candidates[0].Name) != "id" || candidates[0].Kind != CandidatePerfect {
		t.Fatalf("candidates[0] = %+v, want id/perfect", candidates[0])
	}
	if string(candidates[1].Name) != "status" || candidates[1].Kind != CandidateJoinable {
		t.Fatalf("candidates[1] = %+v, want status/joinable", candidates[1])
	}
}

func TestDiscoverKeyCandidatesExcludesColumnsWithEmptyOrDuplicateValues(t *testing.T) {
	headers := [][]byte{[]byte("id"), []byte("dup"), []byte("blank")}
	oldRows := toKeyRows([][]string{{"1", "a", "x"}, {"2", "a", ""}})
	newRows := toKeyRows([][]string{{"1", "b", "x"}, {"2", "b", "y"}})

	candidates := DiscoverKeyCandidates(headers, headers, oldRows, newRows)
	if len(candidates) != 1 || string(candidates[0].Name) != "id" {
		t.Fatalf("candidates = %+v, want only id (dup has duplicate values, blank has an empty value)", candidates)
	}
}

func TestDiscoverKeyCandidatesRequiresSharedHeaderName(t *testing.T) {
	oldHeaders := [][]byte{[]byte("id")}
	newHeaders := [][]byte{[]byte("identifier")}
	candidates := DiscoverKeyCandidates(oldHeaders, newHeaders, toKeyRows([][]string{{"1"}}), toKeyRows([][]string{{"1"}}))
	if candidates != nil {
		t.Fatalf("candidates = %+v, want nil (no shared header name)", candidates)
	}
}
