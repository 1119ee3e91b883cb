// Package heuristics implements MRV cell selection, border prioritization,
// gap-trap avoidance, the degree/center tie-breaks, and LCV value ordering
// described in spec §4.5.
package heuristics

import (
	"github.com/gitrdm/eternity-solver/internal/edgeindex"
	"github.com/gitrdm/eternity-solver/internal/puzzle"
)

// DifficultyScores precomputes, for every piece, the LCV "constrainedness"
// score: the sum over the piece's four edges of the number of other pieces
// that expose that label in any rotation (spec §4.5). Computed once per
// puzzle and shared read-only thereafter, the same way EdgeIndex itself is
// built once and shared.
func DifficultyScores(idx *edgeindex.Index, pieces []puzzle.Piece) map[int]int {
	scores := make(map[int]int, len(pieces))
	for _, p := range pieces {
		scores[p.ID] = idx.Constrainedness(p)
	}
	return scores
}
