package parallel

import (
	"context"
	"fmt"
	"sync"

	"github.com/gitrdm/eternity-solver/internal/engine"
	"github.com/gitrdm/eternity-solver/internal/puzzle"
	"github.com/gitrdm/eternity-solver/internal/shared"
)

// DiversifiedConfig parameterizes the fixed-pool diversified strategy of
// spec §4.10: Workers independent engines share one SharedState so
// MarkSolutionFound/Cancel stop every sibling as soon as one finishes.
type DiversifiedConfig struct {
	Base    engine.Config
	Workers int
	// SeedOffset is the per-worker stride added to worker index to derive
	// each engine's CandidateShift: worker t gets Base.CandidateShift +
	// t*SeedOffset (spec §4.10 "deterministic seed base + t*offset").
	SeedOffset int
}

// DiversifiedResult reports which worker (if any) completed the board and
// that worker's final counters.
type DiversifiedResult struct {
	Board       *puzzle.Board
	Stats       engine.Stats
	WorkerIndex int
}

// RunDiversified races Workers independently-seeded engines, built from
// Base.Puzzle, against each other. All workers share one SharedState; the
// first to complete the board wins, and every other worker observes
// ShouldStop() at its next placement check and unwinds. Workers resume
// from their own per-worker save slot when Base.SaveStore is set, so a
// restarted run picks up each worker's own saved thread state rather than
// restarting the whole pool from scratch.
func RunDiversified(ctx context.Context, cfg DiversifiedConfig) (*DiversifiedResult, error) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	st := cfg.Base.Shared
	if st == nil {
		st = shared.New()
	}

	type outcome struct {
		res *DiversifiedResult
		err error
	}
	results := make([]outcome, workers)

	var wg sync.WaitGroup
	for t := 0; t < workers; t++ {
		wg.Add(1)
		go func(t int) {
			defer wg.Done()

			workerCfg := cfg.Base
			workerCfg.Shared = st
			workerCfg.CandidateShift = cfg.Base.CandidateShift + t*cfg.SeedOffset
			if workerCfg.ConfigID != "" {
				workerCfg.ConfigID = fmt.Sprintf("%s-worker%d", cfg.Base.ConfigID, t)
			}

			var (
				e   *engine.Engine
				err error
			)
			if cfg.Base.SaveStore != nil {
				e, _, err = engine.Resume(workerCfg)
			} else {
				e, err = engine.New(workerCfg)
			}
			if err != nil {
				results[t] = outcome{err: err}
				return
			}

			board, solveErr := e.Solve(ctx)
			if solveErr != nil {
				results[t] = outcome{err: solveErr}
				return
			}
			results[t] = outcome{res: &DiversifiedResult{Board: board, Stats: e.Stats(), WorkerIndex: t}}
		}(t)
	}
	wg.Wait()

	for _, o := range results {
		if o.res != nil {
			st.Cancel()
			return o.res, nil
		}
	}
	// No worker found a solution; surface the first non-cooperative error,
	// if any, else report that the puzzle has no solution.
	for _, o := range results {
		if o.err != nil && o.err != engine.ErrCancelled && o.err != engine.ErrDeadlineExceeded {
			return nil, o.err
		}
	}
	for _, o := range results {
		if o.err != nil {
			return nil, o.err
		}
	}
	return nil, engine.ErrNoSolution
}
