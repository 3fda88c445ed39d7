package diff

import "container/heap"

// MaxContributors is the default bound on how many top contributors a
// DiffAccumulator retains.
const MaxContributors = 25

// Contributor is one observed (id, delta, contribution) triple, tagged
// with a tie-break value for deterministic ordering on exact ties.
type Contributor[T any] struct {
	ID           T
	Delta        float64
	Contribution float64
	TieBreak     uint64
}

// DiffAccumulator tracks the L1 total change and max absolute delta across
// all observed cells, plus a bounded top-K set of the largest contributors.
type DiffAccumulator[T any] struct {
	TotalChange float64
	MaxAbsDelta float64
	Top         *TopContributors[T]
}

// NewDiffAccumulator builds an accumulator retaining at most max
// contributors.
func NewDiffAccumulator[T any](max int) *DiffAccumulator[T] {
	return &DiffAccumulator[T]{Top: NewTopContributors[T](max)}
}

// NewDiffAccumulatorDefault builds an accumulator using MaxContributors.
func NewDiffAccumulatorDefault[T any]() *DiffAccumulator[T] {
	return NewDiffAccumulator[T](MaxContributors)
}

// Observe records one cell's delta and contribution. Only
// contribution-positive cells are pushed into the top-K set; every
// observation still feeds TotalChange and MaxAbsDelta.
func (a *DiffAccumulator[T]) Observe(id T, delta, contribution float64, tieBreak uint64) {
	abs := delta
	if abs < 0 {
		abs = -abs
	}
	if abs > a.MaxAbsDelta {
		a.MaxAbsDelta = abs
	}
	a.TotalChange += contribution
	if contribution > 0 {
		a.Top.Push(Contributor[T]{ID: id, Delta: delta, Contribution: contribution, TieBreak: tieBreak})
	}
}

// TopContributors is a bounded max-K set of the largest-contribution
// entries observed, backed by a min-heap so the smallest surviving entry
// can be evicted in O(log n) when a new entry arrives over capacity.
type TopContributors[T any] struct {
	max  int
	heap contributorHeap[T]
}

// NewTopContributors builds a top-K set bounded at max entries.
func NewTopContributors[T any](max int) *TopContributors[T] {
	return &TopContributors[T]{max: max}
}

// Max returns the configured capacity.
func (t *TopContributors[T]) Max() int { return t.max }

// Len returns the number of entries currently retained.
func (t *TopContributors[T]) Len() int { return len(t.heap) }

// IsEmpty reports whether no entries are retained.
func (t *TopContributors[T]) IsEmpty() bool { return len(t.heap) == 0 }

// MinContribution returns the smallest contribution currently retained.
// Only meaningful when Len() > 0.
func (t *TopContributors[T]) MinContribution() float64 {
	return t.heap[0].Contribution
}

// Push adds an entry, evicting the smallest-contribution entry if the set
// is over capacity afterward. A zero-capacity set silently discards.
func (t *TopContributors[T]) Push(c Contributor[T]) {
	if t.max == 0 {
		return
	}
	heap.Push(&t.heap, c)
	if len(t.heap) > t.max {
		heap.Pop(&t.heap)
	}
}

// IntoSlice returns the retained entries in unspecified order.
func (t *TopContributors[T]) IntoSlice() []Contributor[T] {
	out := make([]Contributor[T], len(t.heap))
	copy(out, t.heap)
	return out
}

// contributorHeap is a min-heap ordered by contribution ascending; on
// exact ties, the entry with the larger tie-break (the later observation)
// sorts smaller, so it is evicted first and earlier entries survive ties.
type contributorHeap[T any] []Contributor[T]

func (h contributorHeap[T]) Len() int { return len(h) }

func (h contributorHeap[T]) Less(i, j int) bool {
	if h[i].Contribution != h[j].Contribution {
		return h[i].Contribution < h[j].Contribution
	}
	return h[i].TieBreak > h[j].TieBreak
}

func (h contributorHeap[T]) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *contributorHeap[T]) Push(x any) {
	*h = append(*h, x.(Contributor[T]))
}

func (h *contributorHeap[T]) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
