package edgeindex

import (
	"testing"

	"github.com/gitrdm/eternity-solver/internal/puzzle"
	"github.com/stretchr/testify/require"
)

func TestBuildAndExposing(t *testing.T) {
	pieces := []puzzle.Piece{
		puzzle.NewPiece(1, 0, 10, 20, 0),
		puzzle.NewPiece(2, 0, 0, 30, 10),
	}
	idx := Build(pieces)

	// Piece 1 exposes 10 on East at rotation 0.
	matches := idx.Exposing(puzzle.East, 10)
	require.Contains(t, matches, RotatedCandidate{PieceID: 1, Rotation: 0})

	// Piece 2 exposes 10 on West at rotation 0, and somewhere after
	// rotating it will expose 10 on other sides too.
	found := false
	for d := puzzle.North; d <= puzzle.West; d++ {
		for _, c := range idx.Exposing(d, 10) {
			if c.PieceID == 2 {
				found = true
			}
		}
	}
	require.True(t, found)
}

func TestConstrainedness(t *testing.T) {
	pieces := []puzzle.Piece{
		puzzle.NewPiece(1, 5, 5, 5, 5),
		puzzle.NewPiece(2, 5, 5, 5, 5),
		puzzle.NewPiece(3, 9, 9, 9, 9),
	}
	idx := Build(pieces)

	// Piece 1 shares label 5 with piece 2 on every side/rotation; piece 3
	// shares nothing with anyone.
	require.Greater(t, idx.Constrainedness(pieces[0]), idx.Constrainedness(pieces[2]))
	require.Equal(t, 0, idx.Constrainedness(pieces[2]))
}
