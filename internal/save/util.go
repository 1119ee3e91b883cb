package save

import (
	"sort"
	"time"
)

func timeFromMillis(ms uint64) time.Time {
	return time.UnixMilli(int64(ms)).UTC()
}

// completePlacementOrder implements spec §9's resolved open question: a
// legacy save whose placementOrder is shorter than its placements set is
// completed by appending the missing placements in (row, col) order. The
// caller is expected to log a warning when approximated is true.
func completePlacementOrder(order, placements []PlacementRecord) (completed []PlacementRecord, approximated bool) {
	if len(order) >= len(placements) {
		return order, false
	}

	seen := make(map[[2]int]bool, len(order))
	for _, p := range order {
		seen[[2]int{p.Row, p.Col}] = true
	}

	missing := make([]PlacementRecord, 0, len(placements)-len(order))
	for _, p := range placements {
		if !seen[[2]int{p.Row, p.Col}] {
			missing = append(missing, p)
		}
	}
	sort.Slice(missing, func(i, j int) bool {
		if missing[i].Row != missing[j].Row {
			return missing[i].Row < missing[j].Row
		}
		return missing[i].Col < missing[j].Col
	})

	completed = make([]PlacementRecord, 0, len(placements))
	completed = append(completed, order...)
	completed = append(completed, missing...)
	return completed, true
}
