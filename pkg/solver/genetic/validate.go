package genetic

import (
	"github.com/danfeder/schedule-engine/pkg/constraint"
	"github.com/danfeder/schedule-engine/pkg/grid"
)

// Valid reports whether a chromosome satisfies the structural
// feasibility checks spec.md §4.5 requires before fitness scoring:
// per-(week,day) count within the daily cap, per-week count within
// the weekly cap, no triple of adjacent periods on the same date, and
// (when the request forbids it) no adjacent pair either. Invalid
// offspring never reach Fitness — the population manager discards
// and replaces them; the initial population is scored unchecked.
func Valid(c Chromosome, m *constraint.Model, g *grid.Grid) bool {
	dailyCount := make(map[int64]int)
	weeklyCount := make(map[int]int)
	periodsByDate := make(map[int64]map[int]bool)

	for _, varID := range c.Genes {
		if varID < 0 {
			return false
		}
		v := g.Var(varID)
		dailyCount[v.RawDate]++
		weeklyCount[v.Week]++
		if periodsByDate[v.RawDate] == nil {
			periodsByDate[v.RawDate] = make(map[int]bool)
		}
		periodsByDate[v.RawDate][v.Period] = true

		if cap, ok := m.DailyCap[v.RawDate]; ok && dailyCount[v.RawDate] > cap {
			return false
		}
		if cap, ok := m.WeeklyCap[v.Week]; ok && weeklyCount[v.Week] > cap {
			return false
		}
	}

	for _, periods := range periodsByDate {
		for p := 1; p <= 6; p++ {
			if periods[p] && periods[p+1] && periods[p+2] {
				return false
			}
		}
		if !m.AllowConsecutivePairs {
			for p := 1; p <= 7; p++ {
				if periods[p] && periods[p+1] {
					return false
				}
			}
		}
	}
	return true
}
