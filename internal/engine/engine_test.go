package engine

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/gitrdm/eternity-solver/internal/puzzle"
	"github.com/gitrdm/eternity-solver/internal/save"
	"github.com/gitrdm/eternity-solver/internal/shared"
)

// twoByTwoPuzzle is spec §8 scenario S3: a fully solvable 2x2 instance
// where every piece fits each corner at exactly one rotation. Symmetry
// breaking leaves piece 1 at rotation 0 as the only allowed move at (0,0);
// once it is placed, the singleton detector forces the remaining three.
func twoByTwoPuzzle() *puzzle.Puzzle {
	return &puzzle.Puzzle{
		Rows: 2,
		Cols: 2,
		Pieces: []puzzle.Piece{
			puzzle.NewPiece(1, 0, 1, 2, 0),
			puzzle.NewPiece(2, 0, 0, 3, 1),
			puzzle.NewPiece(3, 2, 4, 0, 0),
			puzzle.NewPiece(4, 3, 0, 0, 4),
		},
	}
}

func TestSolveFullyForcedPuzzle(t *testing.T) {
	e, err := New(Config{Puzzle: twoByTwoPuzzle(), Logger: zerolog.Nop()})
	require.NoError(t, err)

	board, err := e.Solve(context.Background())
	require.NoError(t, err)
	require.True(t, board.IsComplete())

	p, ok := board.Get(0, 0)
	require.True(t, ok)
	require.Equal(t, 1, p.PieceID)
	require.Equal(t, 0, p.Rotation)

	require.True(t, e.SharedState().IsSolutionFound())
	require.Greater(t, e.Stats().PlacementsTried, int64(0))
}

func TestSolveRespectsCancellation(t *testing.T) {
	st := shared.New()
	st.Cancel()
	e, err := New(Config{Puzzle: twoByTwoPuzzle(), Shared: st, Logger: zerolog.Nop()})
	require.NoError(t, err)

	_, err = e.Solve(context.Background())
	require.ErrorIs(t, err, ErrCancelled)
}

func TestSolveRespectsDeadline(t *testing.T) {
	e, err := New(Config{
		Puzzle:   twoByTwoPuzzle(),
		Deadline: 1 * time.Nanosecond,
		Logger:   zerolog.Nop(),
	})
	require.NoError(t, err)
	time.Sleep(1 * time.Millisecond)

	_, err = e.Solve(context.Background())
	require.ErrorIs(t, err, ErrDeadlineExceeded)
}

func TestSolveWritesSnapshotAndResumeReplaysIt(t *testing.T) {
	store := save.New(t.TempDir(), save.FormatBinary, zerolog.Nop())
	cfg := Config{
		Puzzle:             twoByTwoPuzzle(),
		SaveStore:          store,
		PuzzleClass:        "2x2",
		ConfigID:           "demo",
		CheckpointInterval: time.Nanosecond,
		Logger:             zerolog.Nop(),
	}

	e, err := New(cfg)
	require.NoError(t, err)
	_, err = e.Solve(context.Background())
	require.NoError(t, err)

	resumed, found, err := Resume(cfg)
	require.NoError(t, err)
	require.True(t, found)
	require.True(t, resumed.Board().IsComplete())
	require.Equal(t, e.Stats().PlacementsTried, resumed.Stats().PlacementsTried)
}

func TestNewGeneratesConfigIDWhenSaveStoreSetButConfigIDEmpty(t *testing.T) {
	root := t.TempDir()
	store := save.New(root, save.FormatText, zerolog.Nop())
	e, err := New(Config{
		Puzzle:      twoByTwoPuzzle(),
		SaveStore:   store,
		PuzzleClass: "2x2-autoid",
		Logger:      zerolog.Nop(),
	})
	require.NoError(t, err)

	_, err = e.Solve(context.Background())
	require.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join(root, "2x2-autoid", "*"))
	require.NoError(t, err)
	require.Len(t, matches, 1, "expected exactly one generated-ConfigID save directory")
}

func TestResumeWithNoSnapshotBuildsFreshEngine(t *testing.T) {
	store := save.New(t.TempDir(), save.FormatBinary, zerolog.Nop())
	cfg := Config{
		Puzzle:      twoByTwoPuzzle(),
		SaveStore:   store,
		PuzzleClass: "2x2",
		ConfigID:    "none-yet",
		Logger:      zerolog.Nop(),
	}

	e, found, err := Resume(cfg)
	require.NoError(t, err)
	require.False(t, found)
	require.False(t, e.Board().IsComplete())
}
