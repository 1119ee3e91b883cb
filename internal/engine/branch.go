package engine

import (
	"github.com/pkg/errors"

	"github.com/gitrdm/eternity-solver/internal/heuristics"
	"github.com/gitrdm/eternity-solver/internal/puzzle"
	"github.com/gitrdm/eternity-solver/internal/singleton"
	"github.com/gitrdm/eternity-solver/internal/symmetry"
)

// Branch is one branching decision the search would make next: either a
// single forced (singleton) move, or an MRV-selected cell with its
// LCV-ordered, diversification-shifted candidate list. ParallelCoordinator's
// work-stealing fork/join strategy (spec §4.10) uses this to fan candidates
// out across a worker pool instead of trying them one at a time in-process.
type Branch struct {
	Cell         puzzle.Coord
	Candidates   []heuristics.Candidate
	TopLeftID    int
	TopLeftKnown bool
}

// OpenFrames reports the current search depth (placements not yet undone),
// the quantity RunForkJoin compares against its fork threshold.
func (e *Engine) OpenFrames() int {
	return e.store.OpenFrames()
}

// UsedPieces returns a copy of the piece ids consumed so far (fixed
// placements plus everything placed during search).
func (e *Engine) UsedPieces() map[int]bool {
	out := make(map[int]bool, len(e.usedPieces))
	for id := range e.usedPieces {
		out[id] = true
	}
	return out
}

// NextBranch computes the next branching decision without applying it:
// a forced singleton move if one exists, otherwise an MRV cell with its
// candidate list. ok is false if the board has no empty cells left, or
// the selected cell's domain is already empty (a dead end).
func (e *Engine) NextBranch() (branch Branch, forced bool, ok bool) {
	tlID, tlKnown := e.topLeft()

	if move, found := singleton.Find(e.board, e.store); found {
		return Branch{
			Cell:         move.Cell,
			Candidates:   []heuristics.Candidate{{PieceID: move.PieceID, Rotation: move.Rotation}},
			TopLeftID:    tlID,
			TopLeftKnown: tlKnown,
		}, true, true
	}

	cell, found := heuristics.SelectCell(e.board, e.store, heuristics.Config{PrioritizeBorders: e.puzzle.PrioritizeBorders})
	if !found {
		return Branch{}, false, false
	}
	dom := e.store.GetDomain(cell.Row, cell.Col)
	if dom.Size() == 0 {
		return Branch{}, false, false
	}

	cands := shiftCandidates(heuristics.OrderCandidates(dom, e.scores, e.puzzle.SortOrder), e.candidateShift)
	return Branch{Cell: cell, Candidates: cands, TopLeftID: tlID, TopLeftKnown: tlKnown}, false, true
}

// ApplyBranch applies a forced (single-candidate) Branch in place,
// returning an error without mutating anything if the move is
// symmetry-forbidden, and undoing it and returning an error if it wipes a
// domain out or is rejected by reflection pruning — all three signal a
// dead end to the caller, matching search's tryForcedMove.
func (e *Engine) ApplyBranch(b Branch) error {
	if len(b.Candidates) != 1 {
		return errors.New("engine: ApplyBranch requires exactly one candidate")
	}
	cand := b.Candidates[0]

	tlID, tlKnown := e.topLeft()
	if !symmetry.Allowed(e.puzzle.Rows, e.puzzle.Cols, b.Cell.Row, b.Cell.Col, cand.PieceID, cand.Rotation, tlID, tlKnown) {
		return errors.New("engine: forced move rejected by symmetry breaking")
	}

	result := e.applyPlacement(b.Cell.Row, b.Cell.Col, cand.PieceID, cand.Rotation)
	if result.Wiped {
		e.undoPlacement(b.Cell.Row, b.Cell.Col, cand.PieceID)
		return errors.New("engine: forced move produced a wipeout")
	}
	if e.reflectionRejected() {
		e.undoPlacement(b.Cell.Row, b.Cell.Col, cand.PieceID)
		return errors.New("engine: forced move rejected by reflection pruning")
	}

	depth := e.store.OpenFrames()
	e.shared.ObserveDepth(depth)
	e.maybeMilestone(depth)
	return nil
}

// PieceEdges returns the rotated edges for (pieceID, rotation) using this
// engine's piece lookup, so a caller building a child board for a forked
// subtree (RunForkJoin) does not need its own copy of the puzzle's pieces.
func (e *Engine) PieceEdges(pieceID, rotation int) [4]int {
	return e.pieceLookup[pieceID].EdgesRotated(rotation)
}
