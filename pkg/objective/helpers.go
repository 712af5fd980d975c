package objective

import (
	"math"
	"sort"

	"github.com/samber/lo"

	"github.com/danfeder/schedule-engine/pkg/schedule"
)

func dateKey(a schedule.Assignment) string { return a.Date.UTC().Format("2006-01-02") }

// byWeek groups assignments by their week index relative to ctx's
// request start date.
func byWeek(assignments []schedule.Assignment, ctx *Context) map[int][]schedule.Assignment {
	return lo.GroupBy(assignments, ctx.weekOf)
}

// byDate groups assignments by calendar date (as a sortable key).
func byDate(assignments []schedule.Assignment) map[string][]schedule.Assignment {
	return lo.GroupBy(assignments, dateKey)
}

// sortedDates returns the distinct date keys of assignments in
// ascending order.
func sortedDates(byDateMap map[string][]schedule.Assignment) []string {
	keys := lo.Keys(byDateMap)
	sort.Strings(keys)
	return keys
}

// adjacentPairs returns every pair of assignments on the same date
// whose periods differ by exactly one, each pair reported once
// (lower period first).
func adjacentPairs(assignments []schedule.Assignment) [][2]schedule.Assignment {
	var pairs [][2]schedule.Assignment
	for _, day := range byDate(assignments) {
		sorted := make([]schedule.Assignment, len(day))
		copy(sorted, day)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Period < sorted[j].Period })
		for i := 0; i < len(sorted)-1; i++ {
			if sorted[i+1].Period-sorted[i].Period == 1 {
				pairs = append(pairs, [2]schedule.Assignment{sorted[i], sorted[i+1]})
			}
		}
	}
	return pairs
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func absFloat(f float64) float64 { return math.Abs(f) }

// gradeSimilarity scores how close two grade groups are, per spec.md
// §4.3's GradeGrouping table.
func gradeSimilarity(a, b int) float64 {
	switch d := absInt(a - b); d {
	case 0:
		return 1.0
	case 1:
		return 0.8
	case 2:
		return 0.4
	default:
		return 0
	}
}
