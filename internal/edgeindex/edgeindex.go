// Package edgeindex builds the precomputed "which pieces can expose label L
// on side S" maps used to seed domains and drive AC-3 propagation. Built
// once per puzzle and never mutated afterward — shared immutably across
// every engine in a parallel run (spec §4.2, §3 "Ownership").
package edgeindex

import "github.com/gitrdm/eternity-solver/internal/puzzle"

// RotatedCandidate names one (piece, rotation) pair.
type RotatedCandidate struct {
	PieceID  int
	Rotation int
}

// Index holds, for each of the four directions, a map from edge label to
// the set of (piece, rotation) pairs that expose that label on that side.
type Index struct {
	bySide [4]map[int][]RotatedCandidate
}

// Build constructs an Index in one pass over all pieces x 4 rotations, as
// described in spec §4.2.
func Build(pieces []puzzle.Piece) *Index {
	idx := &Index{}
	for d := 0; d < 4; d++ {
		idx.bySide[d] = make(map[int][]RotatedCandidate)
	}
	for _, p := range pieces {
		for r := 0; r < 4; r++ {
			edges := p.EdgesRotated(r)
			for d := 0; d < 4; d++ {
				label := edges[d]
				idx.bySide[d][label] = append(idx.bySide[d][label], RotatedCandidate{PieceID: p.ID, Rotation: r})
			}
		}
	}
	return idx
}

// Exposing returns every (piece, rotation) that exposes label on side d.
// O(1) lookup plus O(matches) to hand back the slice; the returned slice
// must not be mutated by callers since it is shared index storage.
func (idx *Index) Exposing(d puzzle.Direction, label int) []RotatedCandidate {
	return idx.bySide[d][label]
}

// Constrainedness returns, for the given piece, the sum over its four
// (unrotated) edges of the number of *other* pieces that expose that same
// label on any side in any rotation — each such piece counted once per
// label, regardless of how many sides/rotations of its own expose it. Used
// as the LCV "difficulty" score in spec §4.5 — higher means the piece is
// more constraining to place early.
func (idx *Index) Constrainedness(p puzzle.Piece) int {
	total := 0
	seen := map[int]bool{}
	for _, label := range p.Edges {
		for id := range seen {
			delete(seen, id)
		}
		for d := puzzle.North; d <= puzzle.West; d++ {
			for _, cand := range idx.bySide[d][label] {
				if cand.PieceID != p.ID && !seen[cand.PieceID] {
					seen[cand.PieceID] = true
					total++
				}
			}
		}
	}
	return total
}
