package shared

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMarkSolutionFoundOnlyOneWinner(t *testing.T) {
	s := New()
	const n = 64
	var wg sync.WaitGroup
	wins := make([]bool, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			wins[i] = s.MarkSolutionFound()
		}(i)
	}
	wg.Wait()

	count := 0
	for _, w := range wins {
		if w {
			count++
		}
	}
	require.Equal(t, 1, count)
	require.True(t, s.IsSolutionFound())
}

func TestObserveDepthIsMonotone(t *testing.T) {
	s := New()
	s.ObserveDepth(5)
	require.Equal(t, 5, s.GlobalMaxDepth())
	s.ObserveDepth(3) // lower, ignored
	require.Equal(t, 5, s.GlobalMaxDepth())
	s.ObserveDepth(9)
	require.Equal(t, 9, s.GlobalMaxDepth())
}

func TestObserveDepthConcurrentNeverDecreases(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for d := 0; d < 100; d++ {
		wg.Add(1)
		go func(d int) {
			defer wg.Done()
			s.ObserveDepth(d)
		}(d)
	}
	wg.Wait()
	require.Equal(t, 99, s.GlobalMaxDepth())
}

func TestCancelAndShouldStop(t *testing.T) {
	s := New()
	require.False(t, s.ShouldStop())
	s.Cancel()
	require.True(t, s.IsCancelled())
	require.True(t, s.ShouldStop())
}
