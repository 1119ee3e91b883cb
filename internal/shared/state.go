// Package shared implements SharedState (spec §4.9): the small set of
// atomic, lock-free fields every worker engine in a parallel run reads and
// writes, with no critical sections across recursive calls (spec §5).
package shared

import "sync/atomic"

// State holds the fields concurrently shared by every engine in a parallel
// search. Zero value is ready to use.
type State struct {
	solutionFound  atomic.Bool
	globalMaxDepth atomic.Int64
	cancel         atomic.Bool
}

// New returns a fresh, unset State.
func New() *State {
	return &State{}
}

// MarkSolutionFound sets the solution flag exactly once and reports
// whether THIS call was the one that set it (spec §8 testable property
// "exactly one solutionFound setter"). Once true, the flag never reverts.
func (s *State) MarkSolutionFound() (wasFirst bool) {
	return s.solutionFound.CompareAndSwap(false, true)
}

// IsSolutionFound is a simple atomic load.
func (s *State) IsSolutionFound() bool {
	return s.solutionFound.Load()
}

// ObserveDepth updates globalMaxDepth to the maximum of its current value
// and d via a compare-and-swap loop, so the field is monotonically
// non-decreasing across every engine that calls it (spec §8 "monotone
// best-depth").
func (s *State) ObserveDepth(d int) {
	for {
		cur := s.globalMaxDepth.Load()
		if int64(d) <= cur {
			return
		}
		if s.globalMaxDepth.CompareAndSwap(cur, int64(d)) {
			return
		}
	}
}

// GlobalMaxDepth is a simple atomic load of the best depth observed by any
// engine so far.
func (s *State) GlobalMaxDepth() int {
	return int(s.globalMaxDepth.Load())
}

// Cancel requests cooperative termination of every engine sharing this
// state. Idempotent.
func (s *State) Cancel() {
	s.cancel.Store(true)
}

// IsCancelled is a simple atomic load.
func (s *State) IsCancelled() bool {
	return s.cancel.Load()
}

// ShouldStop is the one check the engine's placement hot loop needs: true
// once either cancellation was requested or any worker already found a
// solution.
func (s *State) ShouldStop() bool {
	return s.IsCancelled() || s.IsSolutionFound()
}
