package save

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot() Snapshot {
	return Snapshot{
		PuzzleID:         "16x16-classic",
		Rows:             2,
		Cols:             2,
		Timestamp:        time.UnixMilli(1_700_000_000_000).UTC(),
		CumulativeTimeMs: 123456,
		Depth:            3,
		Placements: []PlacementRecord{
			{Row: 0, Col: 0, PieceID: 1, Rotation: 0},
			{Row: 0, Col: 1, PieceID: 2, Rotation: 2},
			{Row: 1, Col: 0, PieceID: 3, Rotation: 1},
		},
		PlacementOrder: []PlacementRecord{
			{Row: 0, Col: 0, PieceID: 1, Rotation: 0},
			{Row: 1, Col: 0, PieceID: 3, Rotation: 1},
			{Row: 0, Col: 1, PieceID: 2, Rotation: 2},
		},
		UnusedPieceIDs:  []int{4},
		FixedPlacements: []PlacementRecord{{Row: 0, Col: 0, PieceID: 1, Rotation: 0}},
		MaxPieceID:      4,
		Stats: Stats{
			RecursiveCalls:  10,
			PlacementsTried: 7,
			Backtracks:      2,
		},
	}
}

func TestSnapshotPlacementAtFindsStepAndRecord(t *testing.T) {
	snap := sampleSnapshot()

	rec, step, ok := snap.PlacementAt(0, 1)
	require.True(t, ok)
	require.Equal(t, 2, step)
	require.Equal(t, PlacementRecord{Row: 0, Col: 1, PieceID: 2, Rotation: 2}, rec)

	_, _, ok = snap.PlacementAt(1, 1)
	require.False(t, ok)
}

func TestBinaryRoundTrip(t *testing.T) {
	snap := sampleSnapshot()
	var buf bytes.Buffer
	require.NoError(t, WriteBinary(&buf, snap))

	got, err := ReadBinary(&buf)
	require.NoError(t, err)
	require.Equal(t, snap.Rows, got.Rows)
	require.Equal(t, snap.Cols, got.Cols)
	require.Equal(t, snap.Depth, got.Depth)
	require.Equal(t, snap.CumulativeTimeMs, got.CumulativeTimeMs)
	require.ElementsMatch(t, snap.Placements, got.Placements)
	require.Equal(t, snap.PlacementOrder, got.PlacementOrder)
	require.ElementsMatch(t, snap.UnusedPieceIDs, got.UnusedPieceIDs)
	require.Equal(t, snap.Stats, got.Stats)
	require.False(t, got.PlacementOrderApproximated)
}

func TestTextRoundTrip(t *testing.T) {
	snap := sampleSnapshot()
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, snap))

	got, err := ReadText(&buf)
	require.NoError(t, err)
	require.Equal(t, snap.Rows, got.Rows)
	require.Equal(t, snap.Cols, got.Cols)
	require.Equal(t, snap.PuzzleID, got.PuzzleID)
	require.Equal(t, snap.Depth, got.Depth)
	require.Equal(t, snap.CumulativeTimeMs, got.CumulativeTimeMs)
	require.ElementsMatch(t, snap.Placements, got.Placements)
	require.Equal(t, snap.PlacementOrder, got.PlacementOrder)
	require.ElementsMatch(t, snap.UnusedPieceIDs, got.UnusedPieceIDs)
	require.Equal(t, snap.Stats, got.Stats)
	require.Equal(t, snap.Timestamp, got.Timestamp)
}

func TestCompletePlacementOrderApproximatesLegacySave(t *testing.T) {
	placements := []PlacementRecord{
		{Row: 0, Col: 0, PieceID: 1},
		{Row: 0, Col: 1, PieceID: 2},
		{Row: 1, Col: 0, PieceID: 3},
	}
	order := []PlacementRecord{{Row: 0, Col: 0, PieceID: 1}} // legacy: only first move recorded

	completed, approximated := completePlacementOrder(order, placements)
	require.True(t, approximated)
	require.Len(t, completed, 3)
	require.Equal(t, PlacementRecord{Row: 0, Col: 1, PieceID: 2}, completed[1])
	require.Equal(t, PlacementRecord{Row: 1, Col: 0, PieceID: 3}, completed[2])
}

func TestStoreWriteCurrentAndResume(t *testing.T) {
	dir := t.TempDir()
	store := New(dir, FormatBinary, zerolog.Nop())

	snap := sampleSnapshot()
	require.NoError(t, store.WriteCurrent("classA", "cfg1", snap))

	got, found, err := store.Resume("classA", "cfg1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, snap.Depth, got.Depth)

	later := snap
	later.Timestamp = snap.Timestamp.Add(time.Second)
	later.Depth = 5
	require.NoError(t, store.WriteCurrent("classA", "cfg1", later))

	entries, err := os.ReadDir(store.dir("classA", "cfg1"))
	require.NoError(t, err)
	currentCount := 0
	for _, e := range entries {
		if len(e.Name()) >= 8 && e.Name()[:8] == "current_" {
			currentCount++
		}
	}
	require.Equal(t, 1, currentCount)

	got2, found2, err := store.Resume("classA", "cfg1")
	require.NoError(t, err)
	require.True(t, found2)
	require.Equal(t, 5, got2.Depth)
}

func TestStoreResumeWithNoSaveFound(t *testing.T) {
	store := New(t.TempDir(), FormatBinary, zerolog.Nop())
	got, found, err := store.Resume("classA", "missing")
	require.NoError(t, err)
	require.False(t, found)
	require.Nil(t, got)
}

func TestStoreResumeWithCorruptSaveIsNonFatal(t *testing.T) {
	dir := t.TempDir()
	store := New(dir, FormatBinary, zerolog.Nop())
	target := store.dir("classA", "cfg1")
	require.NoError(t, os.MkdirAll(target, 0o755))
	require.NoError(t, os.WriteFile(target+"/current_1.bin", []byte("not a valid snapshot"), 0o644))

	got, found, err := store.Resume("classA", "cfg1")
	require.NoError(t, err)
	require.False(t, found)
	require.Nil(t, got)
}

func TestWriteMilestonePrunesOldestBackups(t *testing.T) {
	dir := t.TempDir()
	store := New(dir, FormatBinary, zerolog.Nop())
	store.maxBackups = 2

	for depth := 1; depth <= 4; depth++ {
		snap := sampleSnapshot()
		snap.Depth = depth
		require.NoError(t, store.WriteMilestone("classA", "cfg1", snap))
	}

	entries, err := os.ReadDir(store.dir("classA", "cfg1"))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "best_3.bin", entries[0].Name())
	require.Equal(t, "best_4.bin", entries[1].Name())
}
