package engine

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/gitrdm/eternity-solver/internal/heuristics"
	"github.com/gitrdm/eternity-solver/internal/propagate"
	"github.com/gitrdm/eternity-solver/internal/puzzle"
	"github.com/gitrdm/eternity-solver/internal/save"
	"github.com/gitrdm/eternity-solver/internal/singleton"
	"github.com/gitrdm/eternity-solver/internal/symmetry"
)

// ErrNoSolution reports that the search exhausted every legal placement
// without completing the board — the puzzle as configured has no solution
// reachable from its fixed placements.
var ErrNoSolution = errors.New("engine: no solution found")

// Solve runs the backtracking search to completion, cancellation, or
// deadline. A non-nil board is only ever returned alongside a nil error.
func (e *Engine) Solve(ctx context.Context) (*puzzle.Board, error) {
	if e.board.IsComplete() {
		e.shared.MarkSolutionFound()
		return e.board, nil
	}

	solved, err := e.search(ctx)
	if err != nil {
		return nil, err
	}
	if !solved {
		return nil, ErrNoSolution
	}

	e.shared.MarkSolutionFound()
	if e.saveStore != nil {
		if werr := e.saveStore.WriteCurrent(e.puzzleClass, e.configID, e.snapshot()); werr != nil {
			e.log.Warn().Err(werr).Msg("final snapshot write failed")
		}
	}
	return e.board, nil
}

// search is the recursive backtracking core of spec §4.8: singleton forced
// moves first, then MRV cell selection and LCV-ordered candidates, with
// symmetry breaking applied to every placement attempt and AC-3
// propagation after every one that survives it.
func (e *Engine) search(ctx context.Context) (bool, error) {
	e.stats.RecursiveCalls++

	if e.board.IsComplete() {
		return true, nil
	}
	if err := ctx.Err(); err != nil {
		return false, ErrCancelled
	}
	if e.shared.IsCancelled() {
		return false, ErrCancelled
	}
	if e.shared.IsSolutionFound() {
		return false, ErrCancelled
	}
	if e.budget.DeadlineExceeded() {
		return false, ErrDeadlineExceeded
	}

	e.maybeCheckpoint()

	if move, ok := singleton.Find(e.board, e.store); ok {
		return e.tryForcedMove(ctx, move)
	}

	cell, ok := heuristics.SelectCell(e.board, e.store, heuristics.Config{PrioritizeBorders: e.puzzle.PrioritizeBorders})
	if !ok {
		return true, nil
	}
	dom := e.store.GetDomain(cell.Row, cell.Col)
	if dom.Size() == 0 {
		e.stats.DeadEndsDetected++
		return false, nil
	}

	tlID, tlKnown := e.topLeft()
	for _, cand := range shiftCandidates(heuristics.OrderCandidates(dom, e.scores, e.puzzle.SortOrder), e.candidateShift) {
		e.stats.FitChecks++
		if !symmetry.Allowed(e.puzzle.Rows, e.puzzle.Cols, cell.Row, cell.Col, cand.PieceID, cand.Rotation, tlID, tlKnown) {
			continue
		}

		solved, err := e.tryCandidate(ctx, cell.Row, cell.Col, cand.PieceID, cand.Rotation)
		if err != nil {
			return false, err
		}
		if solved {
			return true, nil
		}
	}

	e.stats.DeadEndsDetected++
	return false, nil
}

func (e *Engine) tryForcedMove(ctx context.Context, move singleton.Move) (bool, error) {
	e.stats.SingletonsFound++

	tlID, tlKnown := e.topLeft()
	if !symmetry.Allowed(e.puzzle.Rows, e.puzzle.Cols, move.Cell.Row, move.Cell.Col, move.PieceID, move.Rotation, tlID, tlKnown) {
		// The one move the domain allows here is symmetry-forbidden: this
		// branch of the search tree cannot lead to a canonical solution.
		e.stats.DeadEndsDetected++
		return false, nil
	}
	e.stats.SingletonsPlaced++
	return e.tryCandidate(ctx, move.Cell.Row, move.Cell.Col, move.PieceID, move.Rotation)
}

// tryCandidate places one (piece, rotation) at (r,c), propagates, and
// recurses. On any failure (wipeout or exhausted recursion) it undoes the
// placement before returning so the caller's domain state is exactly as it
// found it — the O(frame size) undo contract of spec §4.3.
func (e *Engine) tryCandidate(ctx context.Context, r, c, pieceID, rotation int) (bool, error) {
	e.stats.PlacementsTried++
	result := e.applyPlacement(r, c, pieceID, rotation)
	if result.Wiped {
		e.stats.ForwardCheckRejects++
		e.undoPlacement(r, c, pieceID)
		return false, nil
	}

	if e.reflectionRejected() {
		e.stats.DeadEndsDetected++
		e.undoPlacement(r, c, pieceID)
		return false, nil
	}

	depth := e.store.OpenFrames()
	e.shared.ObserveDepth(depth)
	e.maybeMilestone(depth)

	solved, err := e.search(ctx)
	if err != nil {
		return false, err
	}
	if solved {
		return true, nil
	}

	e.undoPlacement(r, c, pieceID)
	e.stats.Backtracks++
	return false, nil
}

// shiftCandidates cyclically rotates an ordered candidate list by n
// positions without disturbing the LCV ordering within it — used only to
// diversify which candidate a parallel worker tries first.
func shiftCandidates(cands []heuristics.Candidate, n int) []heuristics.Candidate {
	if len(cands) == 0 {
		return cands
	}
	n = ((n % len(cands)) + len(cands)) % len(cands)
	if n == 0 {
		return cands
	}
	out := make([]heuristics.Candidate, len(cands))
	copy(out, cands[n:])
	copy(out[len(cands)-n:], cands[:n])
	return out
}

// reflectionRejected reports whether the board's border is completely
// filled and, if symmetry.Config.ReflectionPruning is enabled, whether its
// clockwise piece sequence from (0,0) is lexicographically greater than
// its counter-clockwise sequence — the off-by-default rule documented in
// SPEC_FULL.md. A border that isn't fully filled yet is never rejected.
func (e *Engine) reflectionRejected() bool {
	if !e.symmetryCfg.ReflectionPruning {
		return false
	}
	ring := heuristics.PerimeterRing(e.board)
	clockwise := make([]int, 0, len(ring))
	for _, coord := range ring {
		p, ok := e.board.Get(coord.Row, coord.Col)
		if !ok {
			return false
		}
		clockwise = append(clockwise, p.PieceID)
	}
	counterClockwise := make([]int, len(clockwise))
	counterClockwise[0] = clockwise[0]
	for i := 1; i < len(clockwise); i++ {
		counterClockwise[i] = clockwise[len(clockwise)-i]
	}
	return !symmetry.ReflectionAllowed(e.symmetryCfg, clockwise, counterClockwise)
}

func (e *Engine) topLeft() (pieceID int, known bool) {
	p, ok := e.board.Get(0, 0)
	if !ok {
		return 0, false
	}
	return p.PieceID, true
}

func (e *Engine) applyPlacement(r, c, pieceID, rotation int) propagate.Result {
	edges := e.pieceLookup[pieceID].EdgesRotated(rotation)
	e.board.Place(r, c, pieceID, rotation, edges)
	e.store.ApplyPlacement(r, c, pieceID, edges)
	result := propagate.Propagate(e.store, e.board, puzzle.Coord{Row: r, Col: c}, e.pieceLookup)

	e.placementOrder = append(e.placementOrder, save.PlacementRecord{Row: r, Col: c, PieceID: pieceID, Rotation: rotation})
	e.usedPieces[pieceID] = true
	return result
}

func (e *Engine) undoPlacement(r, c, pieceID int) {
	e.store.Undo()
	e.board.Remove(r, c)
	if n := len(e.placementOrder); n > 0 {
		e.placementOrder = e.placementOrder[:n-1]
	}
	delete(e.usedPieces, pieceID)
}

// place replays one placement through the identical apply path tryCandidate
// uses, without the backtracking bookkeeping — used only by Resume, which
// trusts the snapshot's placement order to be internally consistent and
// treats a wipeout during replay as snapshot corruption.
func (e *Engine) place(r, c, pieceID, rotation int) error {
	result := e.applyPlacement(r, c, pieceID, rotation)
	if result.Wiped {
		return errors.Errorf("replaying saved placement produced a wipeout at (%d,%d)", result.Cell.Row, result.Cell.Col)
	}
	e.shared.ObserveDepth(e.store.OpenFrames())
	return nil
}

func (e *Engine) maybeCheckpoint() {
	if e.saveStore == nil {
		return
	}
	if time.Since(e.lastCheckpoint) < e.checkpointInterval {
		return
	}
	e.lastCheckpoint = time.Now()
	if err := e.saveStore.WriteCurrent(e.puzzleClass, e.configID, e.snapshot()); err != nil {
		e.log.Warn().Err(err).Msg("periodic snapshot write failed")
	}
}

func (e *Engine) maybeMilestone(depth int) {
	if e.saveStore == nil {
		return
	}
	if e.shared.GlobalMaxDepth() != depth {
		return
	}
	if err := e.saveStore.WriteMilestone(e.puzzleClass, e.configID, e.snapshot()); err != nil {
		e.log.Warn().Err(err).Msg("milestone snapshot write failed")
	}
}

func (e *Engine) snapshot() save.Snapshot {
	placements := make([]save.PlacementRecord, 0, e.puzzle.Rows*e.puzzle.Cols)
	for r := 0; r < e.puzzle.Rows; r++ {
		for c := 0; c < e.puzzle.Cols; c++ {
			if p, ok := e.board.Get(r, c); ok {
				placements = append(placements, save.PlacementRecord{Row: r, Col: c, PieceID: p.PieceID, Rotation: p.Rotation})
			}
		}
	}

	fixed := make([]save.PlacementRecord, 0, len(e.puzzle.FixedPlacements))
	for _, fp := range e.puzzle.FixedPlacements {
		fixed = append(fixed, save.PlacementRecord{Row: fp.Row, Col: fp.Col, PieceID: fp.PieceID, Rotation: fp.Rotation})
	}

	maxID := 0
	unused := make([]int, 0, len(e.puzzle.Pieces))
	for _, p := range e.puzzle.Pieces {
		if p.ID > maxID {
			maxID = p.ID
		}
		if !e.usedPieces[p.ID] {
			unused = append(unused, p.ID)
		}
	}

	order := make([]save.PlacementRecord, len(e.placementOrder))
	copy(order, e.placementOrder)

	return save.Snapshot{
		PuzzleID:         e.configID,
		Rows:             e.puzzle.Rows,
		Cols:             e.puzzle.Cols,
		Timestamp:        time.Now(),
		CumulativeTimeMs: e.budget.CumulativeElapsed().Milliseconds(),
		Depth:            e.store.OpenFrames(),
		Placements:       placements,
		PlacementOrder:   order,
		UnusedPieceIDs:   unused,
		FixedPlacements:  fixed,
		MaxPieceID:       maxID,
		Stats:            e.stats.toSave(),
	}
}
