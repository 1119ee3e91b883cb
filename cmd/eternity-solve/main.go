// Command eternity-solve is a reference caller demonstrating how an
// external CLI or service would assemble a puzzle.Puzzle and an
// engine.Config and drive a search to completion — it is intentionally
// small and not the CLI surface itself (flag loading, file parsing, and
// the monitoring dashboard are out of scope; see SPEC_FULL.md).
//
// What this shows
//   - Building a small, hardcoded edge-matching puzzle in code (a real
//     CLI would parse one from a file instead).
//   - Wiring a SaveStore so the run checkpoints periodically and can be
//     resumed if interrupted.
//   - Choosing between a solo Engine, the diversified fixed-pool
//     ParallelCoordinator strategy, and the work-stealing fork/join
//     strategy via a flag.
//
// Command-line flags
//   - -strategy string (default "solo"): "solo", "diversified", or "forkjoin"
//   - -workers int (default runtime.GOMAXPROCS(0)): parallel worker count
//   - -deadline duration (default 0, no deadline): abort the search after
//     this long
//   - -save string (default "./eternity-saves"): SaveStore root directory
//
// Usage examples
//   - Run sequentially: go run ./cmd/eternity-solve
//   - Race 4 diversified workers: go run ./cmd/eternity-solve -strategy diversified -workers 4
//   - Fork/join with an 8-second deadline: go run ./cmd/eternity-solve -strategy forkjoin -deadline 8s
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog"

	"github.com/gitrdm/eternity-solver/internal/engine"
	"github.com/gitrdm/eternity-solver/internal/parallel"
	"github.com/gitrdm/eternity-solver/internal/puzzle"
	"github.com/gitrdm/eternity-solver/internal/save"
)

func main() {
	strategy := flag.String("strategy", "solo", `"solo", "diversified", or "forkjoin"`)
	workers := flag.Int("workers", runtime.GOMAXPROCS(0), "parallel worker count")
	deadline := flag.Duration("deadline", 0, "abort the search after this long (0 = no deadline)")
	saveDir := flag.String("save", "./eternity-saves", "SaveStore root directory")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}).With().Timestamp().Logger()

	p := demoPuzzle()
	store := save.New(*saveDir, save.FormatText, log)

	base := engine.Config{
		Puzzle:             p,
		SaveStore:          store,
		PuzzleClass:        "demo-2x2",
		ConfigID:           "cmd-eternity-solve",
		CheckpointInterval: 5 * time.Second,
		Deadline:           *deadline,
		Logger:             log,
	}

	board, err := solve(*strategy, base, *workers)
	if err != nil {
		fmt.Fprintf(os.Stderr, "solve failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("=== Solution ===")
	printBoard(board)
}

func solve(strategy string, base engine.Config, workers int) (*puzzle.Board, error) {
	switch strategy {
	case "diversified":
		res, err := parallel.RunDiversified(context.Background(), parallel.DiversifiedConfig{
			Base:       base,
			Workers:    workers,
			SeedOffset: 7,
		})
		if err != nil {
			return nil, err
		}
		return res.Board, nil
	case "forkjoin":
		return parallel.RunForkJoin(context.Background(), parallel.ForkJoinConfig{
			Base:    base,
			Workers: workers,
		})
	default:
		e, err := engine.New(base)
		if err != nil {
			return nil, err
		}
		return e.Solve(context.Background())
	}
}

// demoPuzzle is the 2x2 instance from spec §8 scenario S3: every piece
// fits each corner at exactly one rotation, symmetry breaking leaves one
// allowed first move at (0,0), and the singleton detector forces the rest
// — good for demonstrating the wiring above without needing a real
// puzzle-file loader.
func demoPuzzle() *puzzle.Puzzle {
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

func printBoard(b *puzzle.Board) {
	for r := 0; r < b.Rows(); r++ {
		for c := 0; c < b.Cols(); c++ {
			p, ok := b.Get(r, c)
			if !ok {
				fmt.Print(" .. ")
				continue
			}
			fmt.Printf("%2d/%d ", p.PieceID, p.Rotation)
		}
		fmt.Println()
	}
}
