package puzzle

import "testing"

import "github.com/stretchr/testify/require"

func TestEdgesRotated(t *testing.T) {
	p := NewPiece(1, 1, 2, 3, 4) // N=1 E=2 S=3 W=4

	require.Equal(t, [4]int{1, 2, 3, 4}, p.EdgesRotated(0))
	// One clockwise step: what was West (4) now faces North, etc.
	require.Equal(t, [4]int{4, 1, 2, 3}, p.EdgesRotated(1))
	require.Equal(t, [4]int{3, 4, 1, 2}, p.EdgesRotated(2))
	require.Equal(t, [4]int{2, 3, 4, 1}, p.EdgesRotated(3))
	// Rotation is mod 4 and never mutates the receiver.
	require.Equal(t, p.EdgesRotated(0), p.EdgesRotated(4))
	require.Equal(t, [4]int{1, 2, 3, 4}, p.Edges)
}

func TestEdgeAtMatchesEdgesRotated(t *testing.T) {
	p := NewPiece(7, 9, 8, 7, 6)
	for r := 0; r < 4; r++ {
		rotated := p.EdgesRotated(r)
		for d := North; d <= West; d++ {
			require.Equal(t, rotated[d], p.EdgeAt(r, d))
		}
	}
}

func TestDirectionOpposite(t *testing.T) {
	require.Equal(t, South, North.Opposite())
	require.Equal(t, West, East.Opposite())
	require.Equal(t, North, South.Opposite())
	require.Equal(t, East, West.Opposite())
}
