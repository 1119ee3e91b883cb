package puzzle

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func twoByTwo() Puzzle {
	return Puzzle{
		Rows: 2, Cols: 2,
		Pieces: []Piece{
			NewPiece(1, 0, 10, 20, 0),
			NewPiece(2, 0, 0, 30, 10),
			NewPiece(3, 20, 30, 0, 0),
			NewPiece(4, 30, 0, 0, 30),
		},
	}
}

func TestValidatePuzzleOK(t *testing.T) {
	p := twoByTwo()
	require.NoError(t, p.Validate())
}

func TestValidateRejectsDuplicatePieceID(t *testing.T) {
	p := twoByTwo()
	p.Pieces[1].ID = 1
	err := p.Validate()
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalidPuzzle))
}

func TestValidateRejectsBadDimensions(t *testing.T) {
	p := twoByTwo()
	p.Rows = 0
	require.Error(t, p.Validate())
}

func TestValidateRejectsUnknownFixedPiece(t *testing.T) {
	p := twoByTwo()
	p.FixedPlacements = []FixedPlacement{{Row: 0, Col: 0, PieceID: 99, Rotation: 0}}
	require.Error(t, p.Validate())
}

func TestValidateRejectsConflictingFixedPlacements(t *testing.T) {
	p := twoByTwo()
	p.FixedPlacements = []FixedPlacement{
		{Row: 0, Col: 0, PieceID: 1, Rotation: 0},
		{Row: 0, Col: 0, PieceID: 2, Rotation: 0},
	}
	require.Error(t, p.Validate())
}

func TestValidateRejectsSamePieceFixedTwice(t *testing.T) {
	p := twoByTwo()
	p.FixedPlacements = []FixedPlacement{
		{Row: 0, Col: 0, PieceID: 1, Rotation: 0},
		{Row: 1, Col: 1, PieceID: 1, Rotation: 0},
	}
	require.Error(t, p.Validate())
}

func TestPieceByID(t *testing.T) {
	p := twoByTwo()
	m := p.PieceByID()
	require.Len(t, m, 4)
	require.Equal(t, 1, m[1].ID)
}
