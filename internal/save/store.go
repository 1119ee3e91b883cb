package save

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Format selects the on-disk encoding for a SaveStore.
type Format int

const (
	// FormatBinary is the compact, versioned binary encoding (binary.go).
	FormatBinary Format = iota
	// FormatText is the human-readable `# key: value` encoding (text.go).
	FormatText
)

func (f Format) ext() string {
	if f == FormatText {
		return "txt"
	}
	return "bin"
}

// MaxBackups is the default number of best_* milestone files kept per
// puzzle configuration before the oldest are pruned (spec §4.11
// "MAX_BACKUP=50").
const MaxBackups = 50

// Store is the facade described in spec §3 as "shared-immutable facade;
// internal per-configuration locking": callers share one *Store across
// every engine in a parallel run, and the store serializes writes to the
// same puzzle configuration's directory internally.
type Store struct {
	root       string
	format     Format
	maxBackups int
	log        zerolog.Logger

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// New returns a Store rooted at dir (default "saves" if dir is empty),
// writing snapshots in the given format.
func New(dir string, format Format, logger zerolog.Logger) *Store {
	if dir == "" {
		dir = "saves"
	}
	return &Store{
		root:       dir,
		format:     format,
		maxBackups: MaxBackups,
		log:        logger,
		locks:      make(map[string]*sync.Mutex),
	}
}

func (s *Store) dir(puzzleClass, configID string) string {
	return filepath.Join(s.root, puzzleClass, configID)
}

func (s *Store) lockFor(key string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	m, ok := s.locks[key]
	if !ok {
		m = &sync.Mutex{}
		s.locks[key] = m
	}
	return m
}

// WriteCurrent atomically writes the latest snapshot as
// current_<timestampMillis>.<ext>, then removes any other current_*
// file so at most one survives (spec §4.11 directory layout).
func (s *Store) WriteCurrent(puzzleClass, configID string, snap Snapshot) error {
	dir := s.dir(puzzleClass, configID)
	key := dir
	mu := s.lockFor(key)
	mu.Lock()
	defer mu.Unlock()

	name := fmt.Sprintf("current_%d.%s", snap.Timestamp.UnixMilli(), s.format.ext())
	if err := s.atomicWrite(dir, name, snap); err != nil {
		s.log.Warn().Err(err).Str("dir", dir).Msg("snapshot write failed, will retry on next periodic save")
		return errors.Wrap(ErrSnapshotIO, err.Error())
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	for _, e := range entries {
		if e.Name() != name && strings.HasPrefix(e.Name(), "current_") {
			_ = os.Remove(filepath.Join(dir, e.Name()))
		}
	}
	return nil
}

// WriteMilestone atomically writes a new best_<depth>.<ext> file and prunes
// the oldest backups beyond maxBackups (spec §4.11 "best_* backup
// rotation, MAX_BACKUP=50, oldest-first removal").
func (s *Store) WriteMilestone(puzzleClass, configID string, snap Snapshot) error {
	dir := s.dir(puzzleClass, configID)
	mu := s.lockFor(dir)
	mu.Lock()
	defer mu.Unlock()

	name := fmt.Sprintf("best_%d.%s", snap.Depth, s.format.ext())
	if err := s.atomicWrite(dir, name, snap); err != nil {
		s.log.Warn().Err(err).Str("dir", dir).Msg("milestone write failed")
		return errors.Wrap(ErrSnapshotIO, err.Error())
	}
	s.pruneBackups(dir)
	return nil
}

func (s *Store) atomicWrite(dir, name string, snap Snapshot) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	final := filepath.Join(dir, name)
	tmp := final + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	var writeErr error
	if s.format == FormatText {
		writeErr = WriteText(f, snap)
	} else {
		writeErr = WriteBinary(f, snap)
	}
	if syncErr := f.Sync(); writeErr == nil {
		writeErr = syncErr
	}
	if closeErr := f.Close(); writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		_ = os.Remove(tmp)
		return writeErr
	}
	return os.Rename(tmp, final)
}

func (s *Store) pruneBackups(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	type backup struct {
		depth int
		name  string
	}
	var backups []backup
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "best_") {
			continue
		}
		base := strings.TrimPrefix(e.Name(), "best_")
		base = strings.TrimSuffix(base, ".bin")
		base = strings.TrimSuffix(base, ".txt")
		depth, err := strconv.Atoi(base)
		if err != nil {
			continue
		}
		backups = append(backups, backup{depth: depth, name: e.Name()})
	}
	if len(backups) <= s.maxBackups {
		return
	}
	sort.Slice(backups, func(i, j int) bool { return backups[i].depth < backups[j].depth })
	toRemove := len(backups) - s.maxBackups
	for _, b := range backups[:toRemove] {
		_ = os.Remove(filepath.Join(dir, b.name))
	}
}

// Resume looks for the newest current_* file for the given puzzle
// configuration and parses it. It never returns a hard error for "no save
// exists" or "save is corrupt": both cases are logged (the latter only)
// and reported as found=false, matching spec §7's non-fatal treatment of
// Snapshot-I/O-error and Snapshot-parse-error.
func (s *Store) Resume(puzzleClass, configID string) (snap *Snapshot, found bool, err error) {
	dir := s.dir(puzzleClass, configID)
	entries, readErr := os.ReadDir(dir)
	if readErr != nil {
		return nil, false, nil
	}

	var newest string
	var newestMillis int64 = -1
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "current_") {
			continue
		}
		base := strings.TrimPrefix(e.Name(), "current_")
		base = strings.TrimSuffix(base, ".bin")
		base = strings.TrimSuffix(base, ".txt")
		millis, parseErr := strconv.ParseInt(base, 10, 64)
		if parseErr != nil {
			continue
		}
		if millis > newestMillis {
			newestMillis = millis
			newest = e.Name()
		}
	}
	if newest == "" {
		return nil, false, nil
	}

	f, openErr := os.Open(filepath.Join(dir, newest))
	if openErr != nil {
		s.log.Warn().Err(openErr).Str("file", newest).Msg("could not open snapshot, starting fresh")
		return nil, false, nil
	}
	defer f.Close()

	var parsed *Snapshot
	var parseErr error
	if strings.HasSuffix(newest, ".txt") {
		parsed, parseErr = ReadText(f)
	} else {
		parsed, parseErr = ReadBinary(f)
	}
	if parseErr != nil {
		s.log.Warn().Err(parseErr).Str("file", newest).Msg("snapshot corrupted or incompatible, starting fresh")
		return nil, false, nil
	}
	if parsed.PlacementOrderApproximated {
		s.log.Warn().Str("file", newest).Msg("legacy save had incomplete placement order; completed by (row,col) position")
	}
	return parsed, true, nil
}
