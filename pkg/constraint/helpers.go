package constraint

import (
	"time"

	"github.com/danfeder/schedule-engine/pkg/grid"
)

// gridVariable aliases grid.Variable for brevity in constraint
// predicates.
type gridVariable = grid.Variable

func unixToTime(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

// allDates returns the distinct raw dates present anywhere in the grid.
func allDates(g *grid.Grid) []int64 {
	seen := make(map[int64]bool)
	for _, v := range g.Variables {
		seen[v.RawDate] = true
	}
	out := make([]int64, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	return out
}
