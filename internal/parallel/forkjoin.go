package parallel

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/gitrdm/eternity-solver/internal/engine"
	"github.com/gitrdm/eternity-solver/internal/puzzle"
	"github.com/gitrdm/eternity-solver/internal/shared"
	"github.com/gitrdm/eternity-solver/internal/symmetry"
)

// DefaultForkThreshold is spec §4.10's "T=4": the search-tree depth below
// which a fork/join run still branches across the worker pool. Past it,
// a forked task finishes its subtree with one sequential Engine.
const DefaultForkThreshold = 4

// ForkJoinConfig parameterizes the work-stealing fork/join strategy.
type ForkJoinConfig struct {
	Base      engine.Config
	Threshold int // DefaultForkThreshold if <= 0
	Workers   int // pool size; GOMAXPROCS if <= 0
}

// RunForkJoin recursively forks the search at every branching decision up
// to Threshold open frames deep, submitting each candidate's subtree to a
// bounded worker pool, then finishes sequentially below the threshold.
// Every forked subtree clones the parent Board (puzzle.Board.Clone, the
// BoardCopyService of DESIGN.md) and continues with a fresh DomainStore
// via engine.Continue, sharing one SharedState so the first subtree to
// complete cancels every sibling still running.
func RunForkJoin(ctx context.Context, cfg ForkJoinConfig) (*puzzle.Board, error) {
	threshold := cfg.Threshold
	if threshold <= 0 {
		threshold = DefaultForkThreshold
	}
	st := cfg.Base.Shared
	if st == nil {
		st = shared.New()
	}
	base := cfg.Base
	base.Shared = st

	root, err := engine.New(base)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := newPool(cfg.Workers, cancel)
	defer p.close()

	fj := &forkJoiner{cfg: base, threshold: threshold, pool: p, shared: st}
	board, solved, err := fj.solve(ctx, root)
	if err != nil {
		return nil, err
	}
	if !solved {
		return nil, engine.ErrNoSolution
	}
	return board, nil
}

type forkJoiner struct {
	cfg       engine.Config
	threshold int
	pool      *pool
	shared    *shared.State
}

// solve drives e sequentially — applying forced singleton moves in place
// — until it either completes, hits a dead end, or reaches a genuine
// branching decision at or past the fork threshold, at which point it
// fans the candidates out across the pool.
func (fj *forkJoiner) solve(ctx context.Context, e *engine.Engine) (*puzzle.Board, bool, error) {
	for {
		if fj.shared.ShouldStop() {
			return nil, false, nil
		}
		if e.Board().IsComplete() {
			fj.shared.MarkSolutionFound()
			return e.Board(), true, nil
		}

		branch, forced, ok := e.NextBranch()
		if !ok {
			return nil, false, nil
		}

		if !forced && e.OpenFrames() >= fj.threshold {
			board, err := e.Solve(ctx)
			if err != nil {
				if err == engine.ErrCancelled || err == engine.ErrDeadlineExceeded {
					return nil, false, nil
				}
				return nil, false, err
			}
			return board, true, nil
		}

		if forced {
			if err := e.ApplyBranch(branch); err != nil {
				return nil, false, nil
			}
			continue
		}

		return fj.fork(ctx, e, branch)
	}
}

// fork submits one subtree per candidate in branch.Candidates to the
// pool, each continuing from its own cloned board, and returns the first
// subtree to complete.
func (fj *forkJoiner) fork(ctx context.Context, e *engine.Engine, branch engine.Branch) (*puzzle.Board, bool, error) {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winner  *puzzle.Board
		firstOk atomic.Bool
	)

	parentBoard := e.Board()
	parentUsed := e.UsedPieces()

	for _, cand := range branch.Candidates {
		if !symmetry.Allowed(fj.cfg.Puzzle.Rows, fj.cfg.Puzzle.Cols, branch.Cell.Row, branch.Cell.Col, cand.PieceID, cand.Rotation, branch.TopLeftID, branch.TopLeftKnown) {
			continue
		}
		cand := cand

		wg.Add(1)
		task := func() {
			defer wg.Done()

			childBoard := parentBoard.Clone()
			edges := e.PieceEdges(cand.PieceID, cand.Rotation)
			childBoard.Place(branch.Cell.Row, branch.Cell.Col, cand.PieceID, cand.Rotation, edges)

			used := make(map[int]bool, len(parentUsed)+1)
			for id := range parentUsed {
				used[id] = true
			}
			used[cand.PieceID] = true

			child, err := engine.Continue(fj.cfg, childBoard, used)
			if err != nil {
				return
			}
			board, solved, err := fj.solve(ctx, child)
			if err != nil || !solved {
				return
			}

			mu.Lock()
			if winner == nil {
				winner = board
			}
			mu.Unlock()
			firstOk.Store(true)
		}

		if err := fj.pool.submit(ctx, task); err != nil {
			wg.Done()
		}
	}

	wg.Wait()
	return winner, firstOk.Load(), nil
}
