// Package symmetry implements the rotational-symmetry breaking of spec
// §4.7: rotation-fixing the (0,0) corner and lexicographically ordering the
// remaining three corners, plus an explicit off-by-default reflection-
// pruning rule (see SPEC_FULL.md "Reflection pruning as an explicit,
// off-by-default knob").
package symmetry

import "github.com/gitrdm/eternity-solver/internal/puzzle"

// Config toggles the optional third rule. The two mandatory rules
// (rotation-fixing and lexicographic corner ordering) are always active.
type Config struct {
	ReflectionPruning bool
}

// Corners returns the board's four corner coordinates in the fixed order
// top-left, top-right, bottom-left, bottom-right.
func Corners(rows, cols int) [4]puzzle.Coord {
	return [4]puzzle.Coord{
		{Row: 0, Col: 0},
		{Row: 0, Col: cols - 1},
		{Row: rows - 1, Col: 0},
		{Row: rows - 1, Col: cols - 1},
	}
}

// Allowed reports whether placing pieceID at rotation `rot` into cell
// (r,c) is consistent with the symmetry-breaking rules, given the piece id
// already committed at (0,0). topLeftKnown is false when nothing has been
// placed at (0,0) yet; topLeftPieceID is then ignored.
//
//   - Rotation fixing: the piece at (0,0) must use rotation 0.
//   - Lexicographic corner ordering: each of the other three corners must
//     receive a piece id >= the id placed at (0,0). While (0,0) is still
//     empty, the other corners are unrestricted.
//
// Non-corner cells are always allowed (returns true unconditionally).
func Allowed(rows, cols, r, c, pieceID, rot, topLeftPieceID int, topLeftKnown bool) bool {
	corners := Corners(rows, cols)
	cell := puzzle.Coord{Row: r, Col: c}

	if cell == corners[0] {
		return rot == 0
	}

	isOtherCorner := cell == corners[1] || cell == corners[2] || cell == corners[3]
	if !isOtherCorner {
		return true
	}
	if !topLeftKnown {
		// (0,0) has not been placed yet; nothing to compare against.
		return true
	}
	return pieceID >= topLeftPieceID
}

// ReflectionAllowed implements the optional, off-by-default reflection
// rule described in SPEC_FULL.md: reject a completed corner assignment
// whose border sequence read clockwise from (0,0) is lexicographically
// greater than the same sequence read counter-clockwise. clockwise and
// counterClockwise are the piece ids encountered walking the border ring
// starting at (0,0) in each direction; both must be fully populated
// (every border cell filled) for the comparison to be meaningful.
func ReflectionAllowed(cfg Config, clockwise, counterClockwise []int) bool {
	if !cfg.ReflectionPruning {
		return true
	}
	for i := range clockwise {
		if i >= len(counterClockwise) {
			break
		}
		if clockwise[i] != counterClockwise[i] {
			return clockwise[i] <= counterClockwise[i]
		}
	}
	return true
}
