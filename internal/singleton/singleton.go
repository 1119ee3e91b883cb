// Package singleton implements the forced-move scan of spec §4.6: a cell
// with exactly one candidate, or a piece with exactly one fitting cell
// across the whole board, must be placed before ordinary branching.
package singleton

import (
	"sort"

	"github.com/gitrdm/eternity-solver/internal/domain"
	"github.com/gitrdm/eternity-solver/internal/puzzle"
)

// Move is a forced placement discovered by Find.
type Move struct {
	Cell     puzzle.Coord
	PieceID  int
	Rotation int
}

// Find scans every empty cell's domain once (O(cells x avg domain), per
// spec §4.6) and returns the first forced move it encounters: either a
// cell with exactly one (piece, rotation) candidate, or a piece that fits
// exactly one (cell, rotation) across the whole board. Cell-singletons are
// checked first since they are discovered in the same pass at no extra
// cost; piece-singletons require a second pass over the accumulated
// per-piece placement counts.
func Find(board *puzzle.Board, store *domain.Store) (Move, bool) {
	pieceCells := make(map[int][]Move)

	var cellSingleton *Move
	board.EachEmpty(func(r, c int) {
		dom := store.GetDomain(r, c)
		if dom.RotationCount() == 1 && cellSingleton == nil {
			for pieceID, rots := range dom {
				cellSingleton = &Move{Cell: puzzle.Coord{Row: r, Col: c}, PieceID: pieceID, Rotation: rots[0]}
			}
		}
		for pieceID, rots := range dom {
			for _, rot := range rots {
				pieceCells[pieceID] = append(pieceCells[pieceID], Move{
					Cell: puzzle.Coord{Row: r, Col: c}, PieceID: pieceID, Rotation: rot,
				})
			}
		}
	})

	if cellSingleton != nil {
		return *cellSingleton, true
	}

	// Iterate piece ids in ascending order so the forced move chosen when
	// several pieces are each singletons is deterministic across runs and
	// across a snapshot/resume boundary (spec §8 "Resume fidelity"), rather
	// than depending on Go's randomized map iteration order.
	pieceIDs := make([]int, 0, len(pieceCells))
	for pieceID := range pieceCells {
		pieceIDs = append(pieceIDs, pieceID)
	}
	sort.Ints(pieceIDs)
	for _, pieceID := range pieceIDs {
		if moves := pieceCells[pieceID]; len(moves) == 1 {
			return moves[0], true
		}
	}

	return Move{}, false
}
