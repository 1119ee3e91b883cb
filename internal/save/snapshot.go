// Package save implements SaveStore (spec §4.11): atomic, content-addressed
// snapshots of in-progress searches, milestone/current files, and resume
// with preserved cumulative compute time.
package save

import "time"

// PlacementRecord is the on-disk shape of a Placement: enough to look the
// piece back up in the original piece list and re-derive its rotated edges.
type PlacementRecord struct {
	Row, Col int
	PieceID  int
	Rotation int
}

// Stats is the subset of engine.Stats worth persisting across save/resume,
// per SPEC_FULL.md's "engine run statistics exported as a stable snapshot
// value" supplement. Field order here is also the binary format's counter
// order and the text format's extra header-line order.
type Stats struct {
	RecursiveCalls      int64
	PlacementsTried     int64
	Backtracks          int64
	FitChecks           int64
	ForwardCheckRejects int64
	SingletonsFound     int64
	SingletonsPlaced    int64
	DeadEndsDetected    int64
}

// counters returns the stats as an ordered (name, value) list, the single
// source of truth both writers and readers iterate over.
func (s Stats) counters() []struct {
	name  string
	value int64
} {
	return []struct {
		name  string
		value int64
	}{
		{"RecursiveCalls", s.RecursiveCalls},
		{"PlacementsTried", s.PlacementsTried},
		{"Backtracks", s.Backtracks},
		{"FitChecks", s.FitChecks},
		{"ForwardCheckRejects", s.ForwardCheckRejects},
		{"SingletonsFound", s.SingletonsFound},
		{"SingletonsPlaced", s.SingletonsPlaced},
		{"DeadEndsDetected", s.DeadEndsDetected},
	}
}

// Snapshot is the self-contained state of one search, per spec §3
// "Snapshot": restoring requires only the snapshot and the original piece
// definitions.
type Snapshot struct {
	PuzzleID         string
	Rows, Cols       int
	Timestamp        time.Time
	CumulativeTimeMs int64
	Depth            int
	Placements       []PlacementRecord
	PlacementOrder   []PlacementRecord
	UnusedPieceIDs   []int
	FixedPlacements  []PlacementRecord
	MaxPieceID       int
	Stats            Stats

	// PlacementOrderApproximated is set by Read when a legacy save's
	// placementOrder was shorter than its placements set and had to be
	// completed by (row,col) ordering (spec §9 open question: this
	// approximates but does not equal true chronological order).
	PlacementOrderApproximated bool
}
