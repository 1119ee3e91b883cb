package heuristics

import (
	"sort"

	"github.com/gitrdm/eternity-solver/internal/domain"
	"github.com/gitrdm/eternity-solver/internal/puzzle"
)

// Config selects the MRV tie-break behavior for one puzzle.
type Config struct {
	PrioritizeBorders bool
}

type cellStats struct {
	coord             puzzle.Coord
	size              int
	rotationCount     int
	isBorder          bool
	isGapTrap         bool
	occupiedNeighbors int
	centerDist        int
}

// SelectCell picks the next cell to branch on per spec §4.5: smallest
// domain size wins, with five tie-break rules in order. A cell with zero
// candidates is returned immediately (found=true, Size()==0) so the caller
// can trigger backtracking without scanning the rest of the board.
func SelectCell(board *puzzle.Board, store *domain.Store, cfg Config) (puzzle.Coord, bool) {
	ring := perimeterRing(board)

	var stats []cellStats
	var starved *cellStats

	board.EachEmpty(func(r, c int) {
		dom := store.GetDomain(r, c)
		s := cellStats{
			coord:             puzzle.Coord{Row: r, Col: c},
			size:              dom.Size(),
			rotationCount:     dom.RotationCount(),
			isBorder:          board.IsBorder(r, c),
			occupiedNeighbors: occupiedNeighborCount(board, r, c),
			centerDist:        manhattanToCenter(board, r, c),
		}
		if s.isBorder {
			s.isGapTrap = isGapTrap(board, ring, r, c)
		}
		if s.size == 0 && starved == nil {
			cp := s
			starved = &cp
		}
		stats = append(stats, s)
	})

	if starved != nil {
		return starved.coord, true
	}
	if len(stats) == 0 {
		return puzzle.Coord{}, false
	}

	sort.Slice(stats, func(i, j int) bool {
		a, b := stats[i], stats[j]
		if a.size != b.size {
			return a.size < b.size
		}
		if cfg.PrioritizeBorders && a.isBorder != b.isBorder {
			return a.isBorder
		}
		if a.isGapTrap != b.isGapTrap {
			return !a.isGapTrap // prefer the one that is NOT a gap trap
		}
		if a.occupiedNeighbors != b.occupiedNeighbors {
			return a.occupiedNeighbors > b.occupiedNeighbors
		}
		if a.centerDist != b.centerDist {
			return a.centerDist < b.centerDist
		}
		return a.rotationCount < b.rotationCount
	})

	return stats[0].coord, true
}

func occupiedNeighborCount(board *puzzle.Board, r, c int) int {
	count := 0
	for d := puzzle.North; d <= puzzle.West; d++ {
		nr, nc := puzzle.Neighbor(r, c, d)
		if board.InBounds(nr, nc) && !board.IsEmpty(nr, nc) {
			count++
		}
	}
	return count
}

func manhattanToCenter(board *puzzle.Board, r, c int) int {
	// Use doubled coordinates so odd dimensions still have an exact center.
	cr, cc := board.Rows()-1, board.Cols()-1
	dr := abs(2*r - cr)
	dc := abs(2*c - cc)
	return dr + dc
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// PerimeterRing exposes perimeterRing to other packages that need the
// border traversal order without duplicating its degenerate-board handling
// — currently the optional reflection-pruning check in package engine.
func PerimeterRing(board *puzzle.Board) []puzzle.Coord {
	return perimeterRing(board)
}

// perimeterRing returns the board's outer cells in clockwise order starting
// at (0,0). For a 1xN or Nx1 board the ring degenerates to the single row
// or column traversed once.
func perimeterRing(board *puzzle.Board) []puzzle.Coord {
	rows, cols := board.Rows(), board.Cols()
	var ring []puzzle.Coord
	if rows == 1 {
		for c := 0; c < cols; c++ {
			ring = append(ring, puzzle.Coord{Row: 0, Col: c})
		}
		return ring
	}
	if cols == 1 {
		for r := 0; r < rows; r++ {
			ring = append(ring, puzzle.Coord{Row: r, Col: 0})
		}
		return ring
	}
	for c := 0; c < cols; c++ {
		ring = append(ring, puzzle.Coord{Row: 0, Col: c})
	}
	for r := 1; r < rows; r++ {
		ring = append(ring, puzzle.Coord{Row: r, Col: cols - 1})
	}
	for c := cols - 2; c >= 0; c-- {
		ring = append(ring, puzzle.Coord{Row: rows - 1, Col: c})
	}
	for r := rows - 2; r >= 1; r-- {
		ring = append(ring, puzzle.Coord{Row: r, Col: 0})
	}
	return ring
}

// isGapTrap reports whether filling (r,c) — a border cell — would leave an
// adjacent empty border cell sandwiched between (r,c) and an already-filled
// cell further along the ring, per spec §4.5's gap-trap definition.
func isGapTrap(board *puzzle.Board, ring []puzzle.Coord, r, c int) bool {
	pos := -1
	for i, coord := range ring {
		if coord.Row == r && coord.Col == c {
			pos = i
			break
		}
	}
	if pos == -1 || len(ring) < 3 {
		return false
	}
	n := len(ring)

	checkSide := func(neighborPos, beyondPos int) bool {
		neighbor := ring[(neighborPos%n+n)%n]
		beyond := ring[(beyondPos%n+n)%n]
		if !board.IsEmpty(neighbor.Row, neighbor.Col) {
			return false
		}
		return !board.IsEmpty(beyond.Row, beyond.Col)
	}

	return checkSide(pos-1, pos-2) || checkSide(pos+1, pos+2)
}
