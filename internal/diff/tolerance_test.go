package diff

import "testing"

func TestToleranceZerosWithinTolerance(t *testing.T) {
	tr := NewToleranceTracker(1.0)
	delta, contribution := tr.Apply(10.0, 10.5)
	if delta != 0.5 {
		t.Fatalf("delta = %v, want 0.5", delta)
	}
	if contribution != 0 {
		t.Fatalf("contribution = %v, want 0", contribution)
	}
}

func TestToleranceContributesOutsideTolerance(t *testing.T) {
	tr := NewToleranceTracker(1.0)
	delta, contribution := tr.Apply(10.0, 13.0)
	if delta != 3.0 {
		t.Fatalf("delta = %v, want 3.0", delta)
	}
	if contribution != 3.0 {
		t.Fatalf("contribution = %v, want 3.0", contribution)
	}
}

func TestToleranceTracksMaxAbsDeltaPreZeroing(t *testing.T) {
	tr := NewToleranceTracker(1.0)
	tr.Apply(10.0, 10.5)
	tr.Apply(10.0, 8.0)
	if got := tr.MaxAbsDelta(); got != 2.0 {
		t.Fatalf("MaxAbsDelta() = %v, want 2.0", got)
	}
}
