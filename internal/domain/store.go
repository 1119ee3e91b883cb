package domain

import (
	"github.com/gitrdm/eternity-solver/internal/edgeindex"
	"github.com/gitrdm/eternity-solver/internal/puzzle"
)

// removal records that rotations were taken away from one cell's domain
// entry for one piece, so undo can add them back. If wholeEntryRemoved is
// true the piece id had no entry at all before this removal (restoring
// means re-creating the map entry, not appending to an existing one).
type removal struct {
	cell              puzzle.Coord
	pieceID           int
	rotationsRemoved  []int
	wholeEntryRemoved bool
}

// changeFrame is one undo unit: everything the Store did in response to a
// single placement (its direct neighbor restriction, the no-repeat removal
// across the rest of the board, and any transitive AC-3 removals layered on
// top before the frame was closed).
type changeFrame struct {
	consumedCell   puzzle.Coord
	consumedDomain Domain // nil if the cell had already been consumed (never happens in practice)
	removed        []removal
}

// Store is the DomainStore of spec §4.3: a per-empty-cell candidate map
// with a stack of change frames supporting O(frame size) undo.
type Store struct {
	rows, cols       int
	cells            []Domain // row-major; nil entry means the cell is occupied/consumed
	frames           []*changeFrame
	pieceLookupTable map[int]puzzle.Piece
}

func (s *Store) idx(r, c int) int { return r*s.cols + c }

// NewStore allocates a Store sized for an R x C board. Callers must call
// Init before using it.
func NewStore(rows, cols int) *Store {
	return &Store{rows: rows, cols: cols, cells: make([]Domain, rows*cols)}
}

// Init enumerates, for every empty cell, the (piece, rotation) pairs
// satisfying the boundary rule and every currently-placed neighbor's
// facing edge, per spec §4.3 "init". used is the set of piece ids already
// consumed by fixed placements (or otherwise unavailable) before search.
func (s *Store) Init(board *puzzle.Board, pieces []puzzle.Piece, used map[int]bool, idx *edgeindex.Index) {
	for r := 0; r < s.rows; r++ {
		for c := 0; c < s.cols; c++ {
			if !board.IsEmpty(r, c) {
				s.cells[s.idx(r, c)] = nil
				continue
			}
			s.cells[s.idx(r, c)] = s.initCell(board, r, c, pieces, used, idx)
		}
	}
}

func (s *Store) initCell(board *puzzle.Board, r, c int, pieces []puzzle.Piece, used map[int]bool, idx *edgeindex.Index) Domain {
	type constraint struct {
		d     puzzle.Direction
		label int
	}
	var constraints []constraint
	for d := puzzle.North; d <= puzzle.West; d++ {
		nr, nc := puzzle.Neighbor(r, c, d)
		if !board.InBounds(nr, nc) {
			constraints = append(constraints, constraint{d, puzzle.BorderLabel})
			continue
		}
		if !board.IsEmpty(nr, nc) {
			neighbor, _ := board.Get(nr, nc)
			constraints = append(constraints, constraint{d, neighbor.Edges[d.Opposite()]})
		}
		// else: empty neighbor, free side, no constraint yet.
	}

	var candidates map[edgeindex.RotatedCandidate]bool
	if len(constraints) == 0 {
		// No neighbor is placed or boundary-adjacent (true only for an
		// interior cell of a board bigger than the region filled so far);
		// every rotation of every unused piece is a candidate.
		candidates = make(map[edgeindex.RotatedCandidate]bool)
		for _, p := range pieces {
			for rot := 0; rot < 4; rot++ {
				candidates[edgeindex.RotatedCandidate{PieceID: p.ID, Rotation: rot}] = true
			}
		}
	} else {
		for i, ct := range constraints {
			matches := idx.Exposing(ct.d, ct.label)
			if i == 0 {
				candidates = make(map[edgeindex.RotatedCandidate]bool, len(matches))
				for _, m := range matches {
					candidates[m] = true
				}
				continue
			}
			next := make(map[edgeindex.RotatedCandidate]bool)
			for _, m := range matches {
				if candidates[m] {
					next[m] = true
				}
			}
			candidates = next
		}
	}

	out := make(Domain)
	for cand := range candidates {
		if used[cand.PieceID] {
			continue
		}
		out[cand.PieceID] = append(out[cand.PieceID], cand.Rotation)
	}
	return out
}

// GetDomain returns the domain at (r,c). An empty (non-nil, zero-length)
// map means wipeout; a nil map means the cell is occupied.
func (s *Store) GetDomain(r, c int) Domain {
	return s.cells[s.idx(r, c)]
}

// CellRotationCount sums rotation-list lengths for (r,c). O(domain size).
func (s *Store) CellRotationCount(r, c int) int {
	return s.cells[s.idx(r, c)].RotationCount()
}

// ApplyPlacement pushes a new change frame, marks (r,c) consumed, removes
// pieceID from every other empty cell's domain (no-repeat), and restricts
// each of up to four empty neighbors of (r,c) to rotations whose facing
// edge matches the newly placed piece's edge toward them. Per spec §4.3,
// after this returns, every remaining candidate anywhere on the board would
// still `fits` if attempted.
func (s *Store) ApplyPlacement(r, c, pieceID int, edges [4]int) {
	frame := &changeFrame{
		consumedCell:   puzzle.Coord{Row: r, Col: c},
		consumedDomain: s.cells[s.idx(r, c)],
	}
	s.cells[s.idx(r, c)] = nil

	for row := 0; row < s.rows; row++ {
		for col := 0; col < s.cols; col++ {
			if row == r && col == c {
				continue
			}
			cell := s.idx(row, col)
			dom := s.cells[cell]
			if dom == nil {
				continue
			}
			if rots, ok := dom[pieceID]; ok {
				delete(dom, pieceID)
				frame.removed = append(frame.removed, removal{
					cell:              puzzle.Coord{Row: row, Col: col},
					pieceID:           pieceID,
					rotationsRemoved:  rots,
					wholeEntryRemoved: true,
				})
			}
		}
	}

	s.frames = append(s.frames, frame)

	for d := puzzle.North; d <= puzzle.West; d++ {
		nr, nc := puzzle.Neighbor(r, c, d)
		if !s.inBounds(nr, nc) {
			continue
		}
		dom := s.cells[s.idx(nr, nc)]
		if dom == nil {
			continue
		}
		required := edges[d]
		back := d.Opposite()
		s.restrictCellToFacing(nr, nc, back, required)
	}
}

// restrictCellToFacing removes, from the domain at (r,c), every rotation
// whose edge facing direction `facing` is not equal to `required`, recording
// the removals in the currently open frame. It is a no-op when no frame is
// open; ApplyPlacement calls it after pushing its frame.
func (s *Store) restrictCellToFacing(r, c int, facing puzzle.Direction, required int) (changed, wipeout bool) {
	dom := s.cells[s.idx(r, c)]
	if dom == nil || len(s.frames) == 0 {
		return false, false
	}
	frame := s.frames[len(s.frames)-1]

	for pieceID, rots := range dom {
		var keep, drop []int
		for _, rot := range rots {
			edge := pieceEdgeAt(pieceID, rot, facing, s.pieceLookupTable)
			if edge == required {
				keep = append(keep, rot)
			} else {
				drop = append(drop, rot)
			}
		}
		if len(drop) == 0 {
			continue
		}
		changed = true
		if len(keep) == 0 {
			delete(dom, pieceID)
			frame.removed = append(frame.removed, removal{
				cell: puzzle.Coord{Row: r, Col: c}, pieceID: pieceID,
				rotationsRemoved: drop, wholeEntryRemoved: true,
			})
		} else {
			dom[pieceID] = keep
			frame.removed = append(frame.removed, removal{
				cell: puzzle.Coord{Row: r, Col: c}, pieceID: pieceID,
				rotationsRemoved: drop, wholeEntryRemoved: false,
			})
		}
	}
	return changed, len(dom) == 0
}

// RemoveRotation removes a single (pieceID, rotation) candidate from (r,c),
// recording it in the currently open frame. Used by AC3Propagator. Returns
// whether the domain at (r,c) is now empty (a wipeout).
func (s *Store) RemoveRotation(r, c, pieceID, rotation int) (removed, wipeout bool) {
	dom := s.cells[s.idx(r, c)]
	if dom == nil || len(s.frames) == 0 {
		return false, false
	}
	rots, ok := dom[pieceID]
	if !ok {
		return false, len(dom) == 0
	}
	next, found := removeRotation(rots, rotation)
	if !found {
		return false, len(dom) == 0
	}

	frame := s.frames[len(s.frames)-1]
	if len(next) == 0 {
		delete(dom, pieceID)
		frame.removed = append(frame.removed, removal{
			cell: puzzle.Coord{Row: r, Col: c}, pieceID: pieceID,
			rotationsRemoved: rots, wholeEntryRemoved: true,
		})
	} else {
		dom[pieceID] = next
		frame.removed = append(frame.removed, removal{
			cell: puzzle.Coord{Row: r, Col: c}, pieceID: pieceID,
			rotationsRemoved: []int{rotation}, wholeEntryRemoved: false,
		})
	}
	return true, len(dom) == 0
}

// Undo pops the most recent change frame and exactly restores the domains
// it touched, in reverse order of application (spec §4.3, testable
// property "Undo restores state").
func (s *Store) Undo() {
	if len(s.frames) == 0 {
		return
	}
	frame := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]

	for i := len(frame.removed) - 1; i >= 0; i-- {
		rem := frame.removed[i]
		cell := s.idx(rem.cell.Row, rem.cell.Col)
		dom := s.cells[cell]
		if dom == nil {
			dom = make(Domain)
			s.cells[cell] = dom
		}
		if rem.wholeEntryRemoved {
			dom[rem.pieceID] = rem.rotationsRemoved
		} else {
			dom[rem.pieceID] = append(dom[rem.pieceID], rem.rotationsRemoved...)
		}
	}

	s.cells[s.idx(frame.consumedCell.Row, frame.consumedCell.Col)] = frame.consumedDomain
}

// OpenFrames reports how many change frames are currently pushed — equal to
// the search depth (number of placements not yet undone).
func (s *Store) OpenFrames() int {
	return len(s.frames)
}

func (s *Store) inBounds(r, c int) bool {
	return r >= 0 && r < s.rows && c >= 0 && c < s.cols
}

// SetPieceLookup is set once by the engine via SetPieceLookup before any
// ApplyPlacement call; it lets the store compute a candidate's facing edge
// without threading the whole piece slice through every call.
func (s *Store) SetPieceLookup(lookup map[int]puzzle.Piece) {
	s.pieceLookupTable = lookup
}

func pieceEdgeAt(pieceID, rotation int, d puzzle.Direction, lookup map[int]puzzle.Piece) int {
	return lookup[pieceID].EdgeAt(rotation, d)
}
