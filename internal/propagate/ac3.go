// Package propagate implements AC3Propagator (spec §4.4): arc-consistency
// propagation restricted to the neighborhood of a just-placed cell, run to
// a transitive fixed point, detecting "wipeout" when any domain becomes
// empty.
package propagate

import (
	"github.com/gitrdm/eternity-solver/internal/domain"
	"github.com/gitrdm/eternity-solver/internal/puzzle"
)

// Result is the outcome of a propagation pass.
type Result struct {
	Wiped bool
	Cell  puzzle.Coord // valid only if Wiped
}

// Ok is the zero-value success Result, returned when propagation reaches a
// fixed point without any domain going empty.
var Ok = Result{}

// arc means "revise u's domain against v's domain": every candidate at u
// that faces v must have a supporter in v facing back.
type arc struct {
	u, v       puzzle.Coord
	uToVFacing puzzle.Direction
}

// Propagate runs AC-3 starting from the up-to-four empty neighbors of
// `placed`, then transitively, per spec §4.4. board must already reflect
// the placement (the engine places into the Board before calling this).
// lookup resolves piece ids to Piece values so edges can be recomputed.
func Propagate(store *domain.Store, board *puzzle.Board, placed puzzle.Coord, lookup map[int]puzzle.Piece) Result {
	var queue []arc

	emptyNeighbors := func(cell puzzle.Coord) []puzzle.Coord {
		var out []puzzle.Coord
		for d := puzzle.North; d <= puzzle.West; d++ {
			nr, nc := puzzle.Neighbor(cell.Row, cell.Col, d)
			if !board.InBounds(nr, nc) {
				continue
			}
			if board.IsEmpty(nr, nc) {
				out = append(out, puzzle.Coord{Row: nr, Col: nc})
			}
		}
		return out
	}

	directionTo := func(from, to puzzle.Coord) puzzle.Direction {
		for d := puzzle.North; d <= puzzle.West; d++ {
			nr, nc := puzzle.Neighbor(from.Row, from.Col, d)
			if nr == to.Row && nc == to.Col {
				return d
			}
		}
		panic("propagate: cells are not adjacent")
	}

	for _, u := range emptyNeighbors(placed) {
		if dom := store.GetDomain(u.Row, u.Col); dom != nil && dom.Size() == 0 {
			return Result{Wiped: true, Cell: u}
		}
		for _, w := range emptyNeighbors(u) {
			if w == placed {
				continue
			}
			queue = append(queue, arc{u: w, v: u, uToVFacing: directionTo(w, u)})
		}
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		changed, wiped := revise(store, cur, lookup)
		if wiped {
			return Result{Wiped: true, Cell: cur.u}
		}
		if !changed {
			continue
		}
		for _, x := range emptyNeighbors(cur.u) {
			if x == cur.v {
				continue
			}
			queue = append(queue, arc{u: x, v: cur.u, uToVFacing: directionTo(x, cur.u)})
		}
	}

	return Ok
}

// revise removes every (piece, rotation) candidate at a.u whose edge facing
// a.v has no supporting candidate in a.v's domain with the matching
// opposite-facing edge. Returns whether anything changed and whether a.u's
// domain is now empty.
func revise(store *domain.Store, a arc, lookup map[int]puzzle.Piece) (changed, wiped bool) {
	uDom := store.GetDomain(a.u.Row, a.u.Col)
	vDom := store.GetDomain(a.v.Row, a.v.Col)
	if uDom == nil || vDom == nil {
		return false, false
	}
	back := a.uToVFacing.Opposite()

	// Collect the set of edge labels v can currently present back toward u.
	supported := make(map[int]bool)
	for pieceID, rots := range vDom {
		p := lookup[pieceID]
		for _, rot := range rots {
			supported[p.EdgeAt(rot, back)] = true
		}
	}

	var toRemove []struct{ pieceID, rotation int }
	for pieceID, rots := range uDom {
		p := lookup[pieceID]
		for _, rot := range rots {
			if !supported[p.EdgeAt(rot, a.uToVFacing)] {
				toRemove = append(toRemove, struct{ pieceID, rotation int }{pieceID, rot})
			}
		}
	}

	for _, r := range toRemove {
		ok, _ := store.RemoveRotation(a.u.Row, a.u.Col, r.pieceID, r.rotation)
		if ok {
			changed = true
		}
	}
	if changed {
		wiped = store.GetDomain(a.u.Row, a.u.Col).Size() == 0
	}
	return changed, wiped
}
