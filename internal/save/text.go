package save

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Text format: a `# key: value` header block, then sectioned placement
// lists, e.g.:
//
//	# Timestamp: 2026-07-30T10:15:00Z
//	# Puzzle: 16x16-classic
//	# Dimensions: 16x16
//	# Depth: 42
//	# TotalComputeTime: 1234567
//	# MaxPieceID: 256
//	# RecursiveCalls: 9001
//	...
//	# Fixed Pieces
//	0,0 1 0
//	# Placement Order
//	0,0 1 0
//	0,1 7 2
//	# Placements
//	0,0 1 0
//	0,1 7 2
//	# Unused pieces
//	3 4 5 6
const (
	sectionFixed      = "# Fixed Pieces"
	sectionOrder      = "# Placement Order"
	sectionPlacements = "# Placements"
	sectionUnused     = "# Unused pieces"
)

// WriteText serializes snap in the human-readable format documented above.
func WriteText(w io.Writer, snap Snapshot) error {
	bw := bufio.NewWriter(w)

	headers := []struct {
		key, value string
	}{
		{"Timestamp", snap.Timestamp.UTC().Format(time.RFC3339)},
		{"Puzzle", snap.PuzzleID},
		{"Dimensions", fmt.Sprintf("%dx%d", snap.Rows, snap.Cols)},
		{"Depth", strconv.Itoa(snap.Depth)},
		{"TotalComputeTime", strconv.FormatInt(snap.CumulativeTimeMs, 10)},
		{"MaxPieceID", strconv.Itoa(snap.MaxPieceID)},
	}
	for _, c := range snap.Stats.counters() {
		headers = append(headers, struct{ key, value string }{c.name, strconv.FormatInt(c.value, 10)})
	}
	for _, h := range headers {
		if _, err := fmt.Fprintf(bw, "# %s: %s\n", h.key, h.value); err != nil {
			return errors.Wrap(ErrSnapshotIO, err.Error())
		}
	}

	writeSection := func(title string, recs []PlacementRecord) error {
		if _, err := fmt.Fprintln(bw, title); err != nil {
			return err
		}
		for _, r := range recs {
			if _, err := fmt.Fprintf(bw, "%d,%d %d %d\n", r.Row, r.Col, r.PieceID, r.Rotation); err != nil {
				return err
			}
		}
		return nil
	}
	if err := writeSection(sectionFixed, snap.FixedPlacements); err != nil {
		return errors.Wrap(ErrSnapshotIO, err.Error())
	}
	if err := writeSection(sectionOrder, snap.PlacementOrder); err != nil {
		return errors.Wrap(ErrSnapshotIO, err.Error())
	}
	if err := writeSection(sectionPlacements, snap.Placements); err != nil {
		return errors.Wrap(ErrSnapshotIO, err.Error())
	}

	if _, err := fmt.Fprintln(bw, sectionUnused); err != nil {
		return errors.Wrap(ErrSnapshotIO, err.Error())
	}
	parts := make([]string, len(snap.UnusedPieceIDs))
	for i, id := range snap.UnusedPieceIDs {
		parts[i] = strconv.Itoa(id)
	}
	if _, err := fmt.Fprintln(bw, strings.Join(parts, " ")); err != nil {
		return errors.Wrap(ErrSnapshotIO, err.Error())
	}

	if err := bw.Flush(); err != nil {
		return errors.Wrap(ErrSnapshotIO, err.Error())
	}
	return nil
}

// ReadText parses the format WriteText produces. Unrecognized header keys
// or comment lines are ignored, matching the forward-compatibility posture
// of spec §4.11 ("additive extension").
func ReadText(r io.Reader) (*Snapshot, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	snap := &Snapshot{}
	statValues := map[string]int64{}
	section := ""

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		switch line {
		case sectionFixed, sectionOrder, sectionPlacements, sectionUnused:
			section = line
			continue
		}
		if strings.HasPrefix(line, "# ") && section == "" {
			if err := parseHeaderLine(snap, statValues, line); err != nil {
				return nil, errors.Wrap(ErrSnapshotParse, err.Error())
			}
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue // any other comment line is ignored
		}

		switch section {
		case sectionFixed, sectionOrder, sectionPlacements:
			rec, err := parsePlacementLine(line)
			if err != nil {
				return nil, errors.Wrap(ErrSnapshotParse, err.Error())
			}
			switch section {
			case sectionFixed:
				snap.FixedPlacements = append(snap.FixedPlacements, rec)
			case sectionOrder:
				snap.PlacementOrder = append(snap.PlacementOrder, rec)
			case sectionPlacements:
				snap.Placements = append(snap.Placements, rec)
			}
		case sectionUnused:
			for _, tok := range strings.Fields(line) {
				id, err := strconv.Atoi(tok)
				if err != nil {
					return nil, errors.Wrap(ErrSnapshotParse, "unused pieces: "+err.Error())
				}
				snap.UnusedPieceIDs = append(snap.UnusedPieceIDs, id)
			}
		default:
			return nil, errors.Wrapf(ErrSnapshotParse, "data line outside any section: %q", line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(ErrSnapshotParse, err.Error())
	}

	snap.Stats = statsFromValues(statValues)
	order, approximated := completePlacementOrder(snap.PlacementOrder, snap.Placements)
	snap.PlacementOrder = order
	snap.PlacementOrderApproximated = approximated

	return snap, nil
}

func parseHeaderLine(snap *Snapshot, statValues map[string]int64, line string) error {
	body := strings.TrimPrefix(line, "# ")
	idx := strings.Index(body, ":")
	if idx < 0 {
		return nil // a plain comment, not a key: value header
	}
	key := strings.TrimSpace(body[:idx])
	value := strings.TrimSpace(body[idx+1:])

	switch key {
	case "Timestamp":
		t, err := time.Parse(time.RFC3339, value)
		if err != nil {
			return errors.Wrap(err, "Timestamp")
		}
		snap.Timestamp = t
	case "Puzzle":
		snap.PuzzleID = value
	case "Dimensions":
		var rows, cols int
		if _, err := fmt.Sscanf(value, "%dx%d", &rows, &cols); err != nil {
			return errors.Wrap(err, "Dimensions")
		}
		snap.Rows, snap.Cols = rows, cols
	case "Depth":
		d, err := strconv.Atoi(value)
		if err != nil {
			return errors.Wrap(err, "Depth")
		}
		snap.Depth = d
	case "TotalComputeTime":
		v, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return errors.Wrap(err, "TotalComputeTime")
		}
		snap.CumulativeTimeMs = v
	case "MaxPieceID":
		v, err := strconv.Atoi(value)
		if err != nil {
			return errors.Wrap(err, "MaxPieceID")
		}
		snap.MaxPieceID = v
	default:
		v, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			statValues[key] = v
		}
		// Unknown, non-numeric header: ignored for forward compatibility.
	}
	return nil
}

func parsePlacementLine(line string) (PlacementRecord, error) {
	var row, col, piece, rot int
	n, err := fmt.Sscanf(line, "%d,%d %d %d", &row, &col, &piece, &rot)
	if err != nil || n != 4 {
		return PlacementRecord{}, errors.Errorf("malformed placement line %q", line)
	}
	return PlacementRecord{Row: row, Col: col, PieceID: piece, Rotation: rot}, nil
}
