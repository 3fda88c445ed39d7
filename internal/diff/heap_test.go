package diff

import "testing"

func TestTopKKeepsLargestContributions(t *testing.T) {
	top := NewTopContributors[string](2)
	top.Push(Contributor[string]{ID: "a", Contribution: 1.0, TieBreak: 0})
	top.Push(Contributor[string]{ID: "b", Contribution: 3.0, TieBreak: 1})
	top.Push(Contributor[string]{ID: "c", Contribution: 2.0, TieBreak: 2})

	if top.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", top.Len())
	}
	seen := map[string]bool{}
	for _, c := range top.IntoSlice() {
		seen[c.ID] = true
	}
	if !seen["b"] || !seen["c"] {
		t.Fatalf("expected b and c retained, got %v", seen)
	}
}

func TestTopKTieBreakKeepsEarlierEntry(t *testing.T) {
	top := NewTopContributors[string](1)
	top.Push(Contributor[string]{ID: "first", Contribution: 2.0, TieBreak: 1})
	top.Push(Contributor[string]{ID: "second", Contribution: 2.0, TieBreak: 2})

	got := top.IntoSlice()
	if len(got) != 1 || got[0].ID != "first" {
		t.Fatalf("got %v, want [first]", got)
	}
}

func TestAccumulatorTracksTotalsAndMax(t *testing.T) {
	acc := NewDiffAccumulatorDefault[int]()
	acc.Observe(1, 3.0, 3.0, 0)
	acc.Observe(2, -5.0, 5.0, 1)
	acc.Observe(3, 0.2, 0, 2)

	if acc.TotalChange != 8.0 {
		t.Fatalf("TotalChange = %v, want 8.0", acc.TotalChange)
	}
	if acc.MaxAbsDelta != 5.0 {
		t.Fatalf("MaxAbsDelta = %v, want 5.0", acc.MaxAbsDelta)
	}
	if acc.Top.Len() != 2 {
		t.Fatalf("Top.Len() = %d, want 2 (zero-contribution entries excluded)", acc.Top.Len())
	}
}
