package save

// PlacementAt answers spec §3's "historical cell-detail queries from
// monitoring" note: given a cell, which placement landed there and at
// which step of PlacementOrder, read-only and without reconstructing a
// live Engine. ok is false if the cell was never placed (e.g. it is one
// of UnusedPieceIDs' cells in a still-in-progress snapshot).
func (s Snapshot) PlacementAt(row, col int) (rec PlacementRecord, step int, ok bool) {
	for i, p := range s.PlacementOrder {
		if p.Row == row && p.Col == col {
			return p, i, true
		}
	}
	return PlacementRecord{}, 0, false
}
