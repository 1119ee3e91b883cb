// Package engine implements the Engine of spec §4.8: the sequential
// backtracking driver that ties DomainStore, AC3Propagator, the MRV/LCV
// heuristics, the singleton detector, and symmetry breaking into one
// recursive search, with periodic checkpointing and cooperative
// cancellation via SharedState.
package engine

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/gitrdm/eternity-solver/internal/clock"
	"github.com/gitrdm/eternity-solver/internal/domain"
	"github.com/gitrdm/eternity-solver/internal/edgeindex"
	"github.com/gitrdm/eternity-solver/internal/heuristics"
	"github.com/gitrdm/eternity-solver/internal/puzzle"
	"github.com/gitrdm/eternity-solver/internal/save"
	"github.com/gitrdm/eternity-solver/internal/shared"
	"github.com/gitrdm/eternity-solver/internal/symmetry"
)

// ErrDeadlineExceeded and ErrCancelled are the two cooperative-termination
// error kinds: neither indicates a bug, both simply mean the search
// stopped before finding or exhausting.
var (
	ErrDeadlineExceeded = errors.New("engine: deadline exceeded")
	ErrCancelled        = errors.New("engine: cancelled")
)

// DefaultCheckpointInterval is spec §4.11's "periodic SaveStore.writeCurrent
// every 30s wall time".
const DefaultCheckpointInterval = 30 * time.Second

// Config assembles everything one Engine needs. PuzzleClass/ConfigID name
// the save directory (spec §4.11 layout); Shared may be nil for a solo run
// (a fresh *shared.State is created) or shared across a ParallelCoordinator
// pool.
type Config struct {
	Puzzle             *puzzle.Puzzle
	Shared             *shared.State
	SaveStore          *save.Store
	PuzzleClass        string
	ConfigID           string
	CheckpointInterval time.Duration
	Deadline           time.Duration
	SymmetryConfig     symmetry.Config
	Logger             zerolog.Logger

	// CandidateShift cyclically rotates each cell's LCV-ordered candidate
	// list before branching, a seed a ParallelCoordinator's diversified
	// strategy uses to make sibling workers explore candidates in a
	// different order without touching the LCV ordering itself (see
	// parallel.RunDiversified).
	CandidateShift int
}

// Stats counts the search-progress events spec §3 tracks per engine,
// exported as save.Stats for persistence (SPEC_FULL.md "stable snapshot
// across resume").
type Stats struct {
	RecursiveCalls      int64
	PlacementsTried     int64
	Backtracks          int64
	FitChecks           int64
	ForwardCheckRejects int64
	SingletonsFound     int64
	SingletonsPlaced    int64
	DeadEndsDetected    int64
}

func (s Stats) toSave() save.Stats {
	return save.Stats{
		RecursiveCalls:      s.RecursiveCalls,
		PlacementsTried:     s.PlacementsTried,
		Backtracks:          s.Backtracks,
		FitChecks:           s.FitChecks,
		ForwardCheckRejects: s.ForwardCheckRejects,
		SingletonsFound:     s.SingletonsFound,
		SingletonsPlaced:    s.SingletonsPlaced,
		DeadEndsDetected:    s.DeadEndsDetected,
	}
}

func fromSaveStats(s save.Stats) Stats {
	return Stats{
		RecursiveCalls:      s.RecursiveCalls,
		PlacementsTried:     s.PlacementsTried,
		Backtracks:          s.Backtracks,
		FitChecks:           s.FitChecks,
		ForwardCheckRejects: s.ForwardCheckRejects,
		SingletonsFound:     s.SingletonsFound,
		SingletonsPlaced:    s.SingletonsPlaced,
		DeadEndsDetected:    s.DeadEndsDetected,
	}
}

// Engine owns one Board and one DomainStore for the duration of a search.
// It is never shared between goroutines; ParallelCoordinator gives each
// worker its own Engine over a cloned Board (spec §3 "Ownership").
type Engine struct {
	puzzle      *puzzle.Puzzle
	pieceLookup map[int]puzzle.Piece
	board       *puzzle.Board
	store       *domain.Store
	idx         *edgeindex.Index
	scores      map[int]int
	symmetryCfg symmetry.Config

	shared    *shared.State
	saveStore *save.Store
	puzzleClass,
	configID string
	checkpointInterval time.Duration
	lastCheckpoint     time.Time

	budget *clock.Budget
	log    zerolog.Logger

	stats          Stats
	placementOrder []save.PlacementRecord
	usedPieces     map[int]bool
	candidateShift int
}

// New builds an Engine from scratch: validates the puzzle, applies fixed
// placements (bypassing symmetry, per spec §3 "FixedPlacement"), and
// initializes the EdgeIndex and DomainStore.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Puzzle.Validate(); err != nil {
		return nil, err
	}

	e := newEngineSkeleton(cfg)

	used := make(map[int]bool, len(cfg.Puzzle.FixedPlacements))
	for _, fp := range cfg.Puzzle.FixedPlacements {
		piece := e.pieceLookup[fp.PieceID]
		edges := piece.EdgesRotated(fp.Rotation)
		e.board.Place(fp.Row, fp.Col, fp.PieceID, fp.Rotation, edges)
		used[fp.PieceID] = true
	}
	e.usedPieces = used
	e.store.Init(e.board, cfg.Puzzle.Pieces, used, e.idx)

	e.budget = clock.NewBudget()
	if cfg.Deadline > 0 {
		e.budget = e.budget.WithDeadline(cfg.Deadline)
	}

	return e, nil
}

// Resume builds an Engine and, if a saved snapshot exists for
// (PuzzleClass, ConfigID), replays it: fixed placements from New, then
// every snapshot placement in its (possibly legacy-completed)
// PlacementOrder, via the exact same ApplyPlacement+propagate path New
// placements go through during search, so the restored DomainStore is
// identical to what it would have been had the process never stopped.
// found reports whether a snapshot was actually applied.
func Resume(cfg Config) (e *Engine, found bool, err error) {
	e, err = New(cfg)
	if err != nil {
		return nil, false, err
	}
	if cfg.SaveStore == nil {
		return e, false, nil
	}

	snap, ok, err := cfg.SaveStore.Resume(cfg.PuzzleClass, cfg.ConfigID)
	if err != nil {
		return e, false, err
	}
	if !ok {
		return e, false, nil
	}

	for _, rec := range snap.PlacementOrder {
		if e.usedPieces[rec.PieceID] {
			continue // already applied as a fixed placement
		}
		if err := e.place(rec.Row, rec.Col, rec.PieceID, rec.Rotation); err != nil {
			return nil, false, errors.Wrapf(err, "resume: replaying placement (%d,%d) piece %d", rec.Row, rec.Col, rec.PieceID)
		}
	}

	e.stats = fromSaveStats(snap.Stats)
	e.budget = clock.Resume(time.Duration(snap.CumulativeTimeMs) * time.Millisecond)
	if cfg.Deadline > 0 {
		e.budget = e.budget.WithDeadline(cfg.Deadline)
	}
	e.shared.ObserveDepth(e.store.OpenFrames())
	return e, true, nil
}

func newEngineSkeleton(cfg Config) *Engine {
	st := cfg.Shared
	if st == nil {
		st = shared.New()
	}
	checkpoint := cfg.CheckpointInterval
	if checkpoint <= 0 {
		checkpoint = DefaultCheckpointInterval
	}

	configID := cfg.ConfigID
	if configID == "" && cfg.SaveStore != nil {
		// The external caller left puzzleConfigId unset; generate one so
		// SaveStore still has a stable directory segment for this run
		// (spec §6 "Environment variables" / §4.11 directory layout).
		configID = uuid.NewString()
	}

	lookup := cfg.Puzzle.PieceByID()
	idx := edgeindex.Build(cfg.Puzzle.Pieces)
	store := domain.NewStore(cfg.Puzzle.Rows, cfg.Puzzle.Cols)
	store.SetPieceLookup(lookup)

	return &Engine{
		puzzle:             cfg.Puzzle,
		pieceLookup:        lookup,
		board:              puzzle.NewBoard(cfg.Puzzle.Rows, cfg.Puzzle.Cols),
		store:              store,
		idx:                idx,
		scores:             heuristics.DifficultyScores(idx, cfg.Puzzle.Pieces),
		symmetryCfg:        cfg.SymmetryConfig,
		shared:             st,
		saveStore:          cfg.SaveStore,
		puzzleClass:        cfg.PuzzleClass,
		configID:           configID,
		checkpointInterval: checkpoint,
		lastCheckpoint:     time.Now(),
		log:                cfg.Logger,
		usedPieces:         map[int]bool{},
		candidateShift:     cfg.CandidateShift,
	}
}

// Continue builds an Engine that starts its search from an already
// partially-filled board rather than an empty one, per spec §4.10's
// work-stealing fork/join strategy: a forked task clones the parent's
// board (puzzle.Board.Clone, the "BoardCopyService" of DESIGN.md),
// applies the one extra placement that forked it, and resumes search
// from there with a freshly initialized DomainStore — cheaper than deep
// cloning the store's frame stack, and just as correct since Init
// recomputes every empty cell's domain from the board it is given.
func Continue(cfg Config, board *puzzle.Board, used map[int]bool) (*Engine, error) {
	if err := cfg.Puzzle.Validate(); err != nil {
		return nil, err
	}
	e := newEngineSkeleton(cfg)
	e.board = board

	usedCopy := make(map[int]bool, len(used))
	for id := range used {
		usedCopy[id] = true
	}
	e.usedPieces = usedCopy
	e.store.Init(e.board, cfg.Puzzle.Pieces, usedCopy, e.idx)

	e.budget = clock.NewBudget()
	if cfg.Deadline > 0 {
		e.budget = e.budget.WithDeadline(cfg.Deadline)
	}
	return e, nil
}

// Board exposes the engine's current board, primarily for callers
// inspecting a successful result; mutating it directly is unsupported.
func (e *Engine) Board() *puzzle.Board { return e.board }

// Stats returns a copy of the engine's progress counters.
func (e *Engine) Stats() Stats { return e.stats }

// SharedState returns the engine's shared coordination state, so a
// ParallelCoordinator can observe depth/solutionFound across workers that
// each own their own Engine.
func (e *Engine) SharedState() *shared.State { return e.shared }
