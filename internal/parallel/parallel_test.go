package parallel

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/gitrdm/eternity-solver/internal/engine"
	"github.com/gitrdm/eternity-solver/internal/puzzle"
)

// twoByTwoPuzzle mirrors engine's scenario-S3 fixture: symmetry breaking
// leaves one allowed move at (0,0) and the singleton detector forces the
// rest, useful for exercising RunDiversified's race without caring which
// worker wins.
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

// branchingRowPuzzle is a single row of two cells filled by two pieces
// that carry identical edges (N=0, E=5, S=0, W=0): at (0,0), only
// rotation 0 satisfies the triple-border requirement, so both piece ids
// sit in that cell's domain and MRV/LCV must actually branch on which one
// goes first — the other is forced into (0,1) by the singleton detector
// immediately afterward. Used to force RunForkJoin to genuinely fork.
func branchingRowPuzzle() *puzzle.Puzzle {
	return &puzzle.Puzzle{
		Rows: 1,
		Cols: 2,
		Pieces: []puzzle.Piece{
			puzzle.NewPiece(1, 0, 5, 0, 0),
			puzzle.NewPiece(2, 0, 5, 0, 0),
		},
	}
}

func TestRunDiversifiedRacesWorkersToFirstSolution(t *testing.T) {
	base := engine.Config{Puzzle: twoByTwoPuzzle(), Logger: zerolog.Nop()}
	res, err := RunDiversified(context.Background(), DiversifiedConfig{
		Base:       base,
		Workers:    4,
		SeedOffset: 1,
	})
	require.NoError(t, err)
	require.NotNil(t, res)
	require.True(t, res.Board.IsComplete())
	require.Greater(t, res.Stats.PlacementsTried, int64(0))
}

func TestRunDiversifiedSingleWorker(t *testing.T) {
	base := engine.Config{Puzzle: twoByTwoPuzzle(), Logger: zerolog.Nop()}
	res, err := RunDiversified(context.Background(), DiversifiedConfig{Base: base, Workers: 1})
	require.NoError(t, err)
	require.True(t, res.Board.IsComplete())
}

func TestRunForkJoinForcesAGenuineForkAndSolves(t *testing.T) {
	base := engine.Config{Puzzle: branchingRowPuzzle(), Logger: zerolog.Nop()}
	board, err := RunForkJoin(context.Background(), ForkJoinConfig{
		Base:      base,
		Threshold: 0,
		Workers:   2,
	})
	require.NoError(t, err)
	require.True(t, board.IsComplete())

	left, ok := board.Get(0, 0)
	require.True(t, ok)
	right, ok := board.Get(0, 1)
	require.True(t, ok)
	require.NotEqual(t, left.PieceID, right.PieceID)
	require.Equal(t, 0, left.Rotation)
	require.Equal(t, 2, right.Rotation)
}

func TestRunForkJoinDefaultThresholdSolves(t *testing.T) {
	base := engine.Config{Puzzle: twoByTwoPuzzle(), Logger: zerolog.Nop()}
	board, err := RunForkJoin(context.Background(), ForkJoinConfig{
		Base:      base,
		Threshold: DefaultForkThreshold,
		Workers:   2,
	})
	require.NoError(t, err)
	require.True(t, board.IsComplete())
}
