package cpsat

import (
	"context"
	"sort"
	"time"

	"github.com/danfeder/schedule-engine/internal/obslog"
	"github.com/danfeder/schedule-engine/pkg/constraint"
	"github.com/danfeder/schedule-engine/pkg/grid"
	"github.com/danfeder/schedule-engine/pkg/objective"
	"github.com/danfeder/schedule-engine/pkg/schedule"
)

func timeFromRaw(raw int64) time.Time { return time.Unix(raw, 0).UTC() }

type slotKey struct {
	date   int64
	period int
}

// search is one depth-first branch-and-bound run over a fixed class
// order. Several searches (different orders) run concurrently as a
// multi-start approximation of the "8 search workers" OR-Tools
// configuration; the best incumbent across all of them wins.
type search struct {
	g      *grid.Grid
	m      *constraint.Model
	objs   *objective.Set
	objCtx *objective.Context
	order  []string

	assigned      map[string]int
	usedSlot      map[slotKey]bool
	dailyUsed     map[int64]int
	weeklyUsed    map[int]int
	periodsByDate map[int64]map[int]bool

	maxPerClassBonus float64
}

type searchOutcome struct {
	bestVars       map[string]int
	bestScore      float64
	bestBound      float64
	haveIncumbent  bool
	solutionsFound int
	optimal        bool
}

func newSearch(g *grid.Grid, m *constraint.Model, objs *objective.Set, objCtx *objective.Context, order []string) *search {
	maxBonus := 0.0
	for _, o := range objs.Objectives() {
		if w := o.Weight(); w > maxBonus {
			maxBonus = w
		}
	}
	return &search{
		g:                g,
		m:                m,
		objs:             objs,
		objCtx:           objCtx,
		order:            order,
		assigned:         make(map[string]int, len(order)),
		usedSlot:         make(map[slotKey]bool, len(order)),
		dailyUsed:        make(map[int64]int),
		weeklyUsed:       make(map[int]int),
		periodsByDate:    make(map[int64]map[int]bool),
		maxPerClassBonus: maxBonus,
	}
}

func (s *search) run(ctx context.Context) (*searchOutcome, error) {
	out := &searchOutcome{bestBound: 0}
	deadline, hasDeadline := ctx.Deadline()
	lastLog := time.Now()

	var dfs func(pos int) bool
	dfs = func(pos int) bool {
		select {
		case <-ctx.Done():
			return false
		default:
		}
		if hasDeadline && time.Now().After(deadline) {
			return false
		}

		if pos == len(s.order) {
			if !s.weeklyMinSatisfied() {
				return true
			}
			assignments := s.currentAssignments()
			score := s.objs.Score(assignments, s.objCtx)
			out.solutionsFound++
			if !out.haveIncumbent || score > out.bestScore {
				out.bestScore = score
				out.bestVars = copyAssigned(s.assigned)
				out.haveIncumbent = true
			}
			if time.Since(lastLog) >= 3*time.Second {
				lastLog = time.Now()
				obslog.L().Infow("cpsat progress",
					"solutions_found", out.solutionsFound,
					"best_score", out.bestScore,
				)
			}
			return true
		}

		classID := s.order[pos]
		for _, id := range s.orderedCandidates(classID) {
			if !s.feasible(classID, id) {
				continue
			}
			s.apply(classID, id)

			if out.haveIncumbent {
				if bound := s.bound(pos + 1); bound <= out.bestScore {
					s.undo(classID, id)
					continue
				}
			}

			if !dfs(pos + 1) {
				s.undo(classID, id)
				return false
			}
			s.undo(classID, id)
		}
		return true
	}

	out.optimal = dfs(0)
	return out, nil
}

// orderedCandidates tries earliest-date, lowest-period slots first,
// the translation of spec.md §4.4's (date_ordinal, period) value
// ordering to per-class slot branching.
func (s *search) orderedCandidates(classID string) []int {
	ids := append([]int(nil), s.m.ClassDomains[classID]...)
	sort.Slice(ids, func(i, j int) bool {
		vi, vj := s.g.Var(ids[i]), s.g.Var(ids[j])
		if vi.RawDate != vj.RawDate {
			return vi.RawDate < vj.RawDate
		}
		return vi.Period < vj.Period
	})
	return ids
}

func (s *search) feasible(classID string, varID int) bool {
	v := s.g.Var(varID)
	key := slotKey{date: v.RawDate, period: v.Period}
	if s.usedSlot[key] {
		return false
	}
	if cap, ok := s.m.DailyCap[v.RawDate]; ok && s.dailyUsed[v.RawDate]+1 > cap {
		return false
	}
	if cap, ok := s.m.WeeklyCap[v.Week]; ok && s.weeklyUsed[v.Week]+1 > cap {
		return false
	}

	periods := s.periodsByDate[v.RawDate]
	if !s.m.AllowConsecutivePairs {
		if periods[v.Period-1] || periods[v.Period+1] {
			return false
		}
	}
	if periods[v.Period-1] && periods[v.Period+1] {
		return false // would create a run of 3
	}
	if s.m.ConsecutiveHardCap > 0 {
		run := s.runLengthIfAdded(v.RawDate, v.Period)
		if run > s.m.ConsecutiveHardCap {
			return false
		}
	}
	return true
}

func (s *search) runLengthIfAdded(date int64, period int) int {
	periods := s.periodsByDate[date]
	run := 1
	for p := period - 1; p >= 1 && periods[p]; p-- {
		run++
	}
	for p := period + 1; p <= 8 && periods[p]; p++ {
		run++
	}
	return run
}

func (s *search) apply(classID string, varID int) {
	v := s.g.Var(varID)
	s.assigned[classID] = varID
	s.usedSlot[slotKey{date: v.RawDate, period: v.Period}] = true
	s.dailyUsed[v.RawDate]++
	s.weeklyUsed[v.Week]++
	if s.periodsByDate[v.RawDate] == nil {
		s.periodsByDate[v.RawDate] = make(map[int]bool)
	}
	s.periodsByDate[v.RawDate][v.Period] = true
}

func (s *search) undo(classID string, varID int) {
	v := s.g.Var(varID)
	delete(s.assigned, classID)
	delete(s.usedSlot, slotKey{date: v.RawDate, period: v.Period})
	s.dailyUsed[v.RawDate]--
	s.weeklyUsed[v.Week]--
	delete(s.periodsByDate[v.RawDate], v.Period)
}

// weeklyMinSatisfied checks the one hard constraint that can only be
// evaluated once a full candidate is assembled: MinimumPeriods.
func (s *search) weeklyMinSatisfied() bool {
	counts := make(map[int]int)
	for _, varID := range s.assigned {
		v := s.g.Var(varID)
		counts[v.Week]++
	}
	for week, min := range s.m.WeeklyMin {
		if counts[week] < min {
			return false
		}
	}
	return true
}

// bound is a loose admissible-style upper bound: the partial
// assignment's current score plus a generous per-remaining-class
// allowance. It is not bound-tight (no ILP relaxation is computed);
// it exists only to prune branches that cannot possibly beat the
// incumbent once the remaining classes are optimistically scored.
func (s *search) bound(remainingFrom int) float64 {
	partial := s.currentAssignments()
	score := s.objs.Score(partial, s.objCtx)
	remaining := len(s.order) - remainingFrom
	return score + float64(remaining)*s.maxPerClassBonus
}

func (s *search) currentAssignments() []schedule.Assignment {
	out := make([]schedule.Assignment, 0, len(s.assigned))
	for classID, varID := range s.assigned {
		v := s.g.Var(varID)
		out = append(out, schedule.Assignment{
			ClassID:   classID,
			Date:      timeFromRaw(v.RawDate),
			DayOfWeek: v.DayOfWeek,
			Period:    v.Period,
		})
	}
	return out
}

func copyAssigned(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
