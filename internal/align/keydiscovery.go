package align

import (
	"bytes"

	"github.com/cmdrvl/rvl/internal/normalize"
)

// CandidateKind classifies a discovered key candidate.
type CandidateKind int

const (
	CandidatePerfect CandidateKind = iota
	CandidateJoinable
)

// KeyCandidate is a column shared by both snapshots that could serve as a
// join key for a rerun suggestion.
type KeyCandidate struct {
	Name     []byte
	OldIndex int
	NewIndex int
	Kind     CandidateKind
}

// KeyRow exposes a row's fields by index, for key discovery and shuffle
// detection over already-normalized records.
type KeyRow interface {
	Field(index int) []byte
}

type columnStats struct {
	values  map[string]struct{}
	hasEmpty bool
	hasDup   bool
}

func newColumnStats() *columnStats {
	return &columnStats{values: map[string]struct{}{}}
}

func (s *columnStats) observe(raw []byte) {
	trimmed := normalize.AsciiTrim(raw)
	if len(trimmed) == 0 {
		s.hasEmpty = true
		return
	}
	key := string(trimmed)
	if _, ok := s.values[key]; ok {
		s.hasDup = true
		return
	}
	s.values[key] = struct{}{}
}

func (s *columnStats) isJoinable() bool {
	return !s.hasEmpty && !s.hasDup
}

func (s *columnStats) equalValues(other *columnStats) bool {
	if len(s.values) != len(other.values) {
		return false
	}
	for k := range s.values {
		if _, ok := other.values[k]; !ok {
			return false
		}
	}
	return true
}

type candidateWork struct {
	name              []byte
	oldIndex, newIndex int
	oldStats, newStats *columnStats
}

// DiscoverKeyCandidates finds columns shared by both headers (by
// normalized name) that are non-empty and duplicate-free on both sides.
// The result lists perfect candidates (identical value sets) first in
// header order, then remaining joinable candidates in header order.
func DiscoverKeyCandidates(oldHeaders, newHeaders [][]byte, oldRows, newRows []KeyRow) []KeyCandidate {
	var work []*candidateWork
	for oldIdx, name := range oldHeaders {
		newIdx := indexOfHeader(newHeaders, name)
		if newIdx < 0 {
			continue
		}
		work = append(work, &candidateWork{
			name: name, oldIndex: oldIdx, newIndex: newIdx,
			oldStats: newColumnStats(), newStats: newColumnStats(),
		})
	}
	if len(work) == 0 {
		return nil
	}

	for _, row := range oldRows {
		for _, c := range work {
			c.oldStats.observe(row.Field(c.oldIndex))
		}
	}
	for _, row := range newRows {
		for _, c := range work {
			c.newStats.observe(row.Field(c.newIndex))
		}
	}

	var perfect, joinable []KeyCandidate
	for _, c := range work {
		if !c.oldStats.isJoinable() || !c.newStats.isJoinable() {
			continue
		}
		candidate := KeyCandidate{Name: c.name, OldIndex: c.oldIndex, NewIndex: c.newIndex}
		if c.oldStats.equalValues(c.newStats) {
			candidate.Kind = CandidatePerfect
			perfect = append(perfect, candidate)
		} else {
			candidate.Kind = CandidateJoinable
			joinable = append(joinable, candidate)
		}
	}

	return append(perfect, joinable...)
}

func indexOfHeader(headers [][]byte, name []byte) int {
	for i, h := range headers {
		if bytes.Equal(h, name) {
			return i
		}
	}
	return -1
}
