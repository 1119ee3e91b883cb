package puzzle

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBoardPlaceGetRemove(t *testing.T) {
	b := NewBoard(2, 2)
	require.True(t, b.IsEmpty(0, 0))

	edges := NewPiece(5, 0, 1, 2, 0).EdgesRotated(0)
	b.Place(0, 0, 5, 0, edges)
	require.False(t, b.IsEmpty(0, 0))

	got, ok := b.Get(0, 0)
	require.True(t, ok)
	require.Equal(t, 5, got.PieceID)
	require.Equal(t, edges, got.Edges)

	b.Remove(0, 0)
	require.True(t, b.IsEmpty(0, 0))
	_, ok = b.Get(0, 0)
	require.False(t, ok)
}

func TestBoardCloneIsIndependent(t *testing.T) {
	b := NewBoard(2, 2)
	b.Place(0, 0, 1, 0, [4]int{0, 1, 1, 0})

	clone := b.Clone()
	clone.Place(1, 1, 2, 0, [4]int{1, 0, 0, 1})

	require.True(t, b.IsEmpty(1, 1))
	p, ok := clone.Get(0, 0)
	require.True(t, ok)
	require.Equal(t, 1, p.PieceID)
}

func TestNeighborAndBorder(t *testing.T) {
	r, c := Neighbor(1, 1, North)
	require.Equal(t, 0, r)
	require.Equal(t, 1, c)

	b := NewBoard(3, 3)
	require.True(t, b.IsBorder(0, 1))
	require.True(t, b.IsBorder(1, 0))
	require.False(t, b.IsBorder(1, 1))
}

func TestBoardIndexOutOfRangePanics(t *testing.T) {
	b := NewBoard(2, 2)
	require.Panics(t, func() { b.IsEmpty(5, 5) })
}
