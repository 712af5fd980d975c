// Package grid enumerates the legal (class, date, period) decision
// variables a solve is built over, and owns their indices. Constraints
// and objectives borrow variables by index; they never construct
// variables themselves (spec.md §9 Ownership).
package grid

import (
	"sort"

	"github.com/danfeder/schedule-engine/pkg/schedule"
)

// Variable is a single boolean decision: class c placed on (date, period).
type Variable struct {
	ID        int
	ClassID   string
	RawDate   int64 // date's Unix timestamp, for cheap comparison/ordering
	Slot      schedule.TimeSlot
	Period    int
	DayOfWeek int
	Week      int
}

// Grid is the enumerated, pruned variable set plus its indices.
type Grid struct {
	Variables []Variable

	byClass      map[string][]int
	byDatePeriod map[dpKey][]int
	byWeek       map[int][]int
	byClassWeek  map[classWeekKey][]int
}

type dpKey struct {
	date   int64
	period int
}

type classWeekKey struct {
	classID string
	week    int
}

// Build enumerates classes × weekdays-in-range × periods 1..8, prunes
// entries whose (dayOfWeek, period) lies in the class's conflicts, and
// indexes the survivors. Returns *schedule.InfeasibleGridError if any
// class with non-empty RequiredPeriods ends up with no surviving
// variable matching a required slot.
func Build(req schedule.Request) (*Grid, error) {
	weekdays := schedule.WeekdaysInRange(req.StartDate, req.EndDate)

	g := &Grid{
		byClass:      make(map[string][]int),
		byDatePeriod: make(map[dpKey][]int),
		byWeek:       make(map[int][]int),
		byClassWeek:  make(map[classWeekKey][]int),
	}

	nextID := 0
	requiredSeen := make(map[string]bool)

	for _, c := range req.Classes {
		for _, d := range weekdays {
			dow := schedule.DayOfWeek(d)
			week := schedule.WeekIndex(req.StartDate, d)
			for period := 1; period <= 8; period++ {
				slot := schedule.TimeSlot{DayOfWeek: dow, Period: period}
				if c.Conflicts(slot) {
					continue
				}
				v := Variable{
					ID:        nextID,
					ClassID:   c.ID,
					RawDate:   d.Unix(),
					Period:    period,
					DayOfWeek: dow,
					Week:      week,
					Slot:      slot,
				}
				g.Variables = append(g.Variables, v)
				g.byClass[c.ID] = append(g.byClass[c.ID], nextID)
				key := dpKey{date: v.RawDate, period: period}
				g.byDatePeriod[key] = append(g.byDatePeriod[key], nextID)
				g.byWeek[week] = append(g.byWeek[week], nextID)
				cwKey := classWeekKey{classID: c.ID, week: week}
				g.byClassWeek[cwKey] = append(g.byClassWeek[cwKey], nextID)
				if c.IsRequiredSlot(slot) {
					requiredSeen[c.ID] = true
				}
				nextID++
			}
		}
	}

	for _, c := range req.Classes {
		if c.WeeklySchedule.HasRequired() && !requiredSeen[c.ID] {
			return nil, &schedule.InfeasibleGridError{ClassID: c.ID}
		}
	}

	return g, nil
}

// ByClass returns the variable ids for a class.
func (g *Grid) ByClass(classID string) []int { return g.byClass[classID] }

// ByDatePeriod returns the variable ids landing on a given raw
// (unix-day, period) pair.
func (g *Grid) ByDatePeriod(date int64, period int) []int {
	return g.byDatePeriod[dpKey{date: date, period: period}]
}

// ByWeek returns the variable ids in a given week index.
func (g *Grid) ByWeek(week int) []int { return g.byWeek[week] }

// ByClassWeek returns the variable ids for a class within a given week.
func (g *Grid) ByClassWeek(classID string, week int) []int {
	return g.byClassWeek[classWeekKey{classID: classID, week: week}]
}

// Weeks returns the sorted distinct week indices present in the grid.
func (g *Grid) Weeks() []int {
	seen := make(map[int]bool)
	for _, v := range g.Variables {
		seen[v.Week] = true
	}
	weeks := make([]int, 0, len(seen))
	for w := range seen {
		weeks = append(weeks, w)
	}
	sort.Ints(weeks)
	return weeks
}

// DatesInWeek returns the sorted distinct raw dates present in a week.
func (g *Grid) DatesInWeek(week int) []int64 {
	seen := make(map[int64]bool)
	for _, id := range g.byWeek[week] {
		seen[g.Variables[id].RawDate] = true
	}
	dates := make([]int64, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i] < dates[j] })
	return dates
}

// Var returns the variable with the given id.
func (g *Grid) Var(id int) Variable { return g.Variables[id] }

// Len returns the number of surviving variables.
func (g *Grid) Len() int { return len(g.Variables) }
