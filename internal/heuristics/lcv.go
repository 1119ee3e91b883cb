package heuristics

import (
	"sort"

	"github.com/gitrdm/eternity-solver/internal/domain"
	"github.com/gitrdm/eternity-solver/internal/puzzle"
)

// Candidate is a (piece, rotation) pair ready to be tried at a cell, in
// the value order the caller requested.
type Candidate struct {
	PieceID  int
	Rotation int
}

// OrderCandidates flattens a cell's domain into a candidate list ordered by
// the LCV/difficulty rule of spec §4.5: Ascending tries the least
// constraining piece first (fail-slow), Descending tries the most
// constrained piece first (fail-fast). Ties break on piece id then
// rotation for determinism (needed for reproducible resume, spec §8 S4).
func OrderCandidates(dom domain.Domain, scores map[int]int, order puzzle.SortOrder) []Candidate {
	out := make([]Candidate, 0, dom.RotationCount())
	for pieceID, rots := range dom {
		for _, rot := range rots {
			out = append(out, Candidate{PieceID: pieceID, Rotation: rot})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		si, sj := scores[out[i].PieceID], scores[out[j].PieceID]
		if si != sj {
			if order == puzzle.Descending {
				return si > sj
			}
			return si < sj
		}
		if out[i].PieceID != out[j].PieceID {
			return out[i].PieceID < out[j].PieceID
		}
		return out[i].Rotation < out[j].Rotation
	})
	return out
}
