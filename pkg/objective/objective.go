// Package objective implements the soft-scoring terms summed into the
// single maximization objective shared by the CP-SAT driver and the
// genetic algorithm (spec.md §4.3). Every term is evaluated over a
// complete candidate assignment list rather than incrementally, so the
// same implementations serve both solvers.
package objective

import (
	"github.com/danfeder/schedule-engine/pkg/grid"
	"github.com/danfeder/schedule-engine/pkg/schedule"
)

// Context bundles the read-only data objectives need to score a
// candidate assignment list: the class index, the date window, and the
// grid's week boundaries.
type Context struct {
	Request  schedule.Request
	Classes  map[string]schedule.Class
	Grid     *grid.Grid
	LastWeek int
}

// NewContext derives a Context from a request and its grid.
func NewContext(req schedule.Request, g *grid.Grid) *Context {
	classes := make(map[string]schedule.Class, len(req.Classes))
	for _, c := range req.Classes {
		classes[c.ID] = c
	}
	return &Context{
		Request:  req,
		Classes:  classes,
		Grid:     g,
		LastWeek: schedule.WeekIndex(req.StartDate, req.EndDate),
	}
}

func (ctx *Context) weekOf(a schedule.Assignment) int {
	return schedule.WeekIndex(ctx.Request.StartDate, a.Date)
}

func (ctx *Context) daysFromStart(a schedule.Assignment) float64 {
	return a.Date.Sub(ctx.Request.StartDate).Hours() / 24
}

// Objective is a single named, weighted scoring term. Score returns
// the term's contribution (already multiplied by Weight) for a
// complete candidate assignment list.
type Objective interface {
	Name() string
	Weight() float64
	SetWeight(w float64)
	Score(assignments []schedule.Assignment, ctx *Context) float64
}

// base provides the common Name/Weight/SetWeight plumbing every
// objective embeds, mirroring pkg/constraint's base struct.
type base struct {
	name   string
	weight float64
}

func (b *base) Name() string        { return b.name }
func (b *base) Weight() float64     { return b.weight }
func (b *base) SetWeight(w float64) { b.weight = w }

// Default weights, verbatim from spec.md §4.3.
const (
	DefaultRequiredPeriods      = 10000.0
	DefaultPreferredPeriods     = 1000.0
	DefaultAvoidPeriods         = -500.0
	DefaultEarlierDates         = 10.0
	DefaultDayUsage             = 2000.0
	DefaultFinalWeekCompression = 3000.0
	DefaultDailyBalance         = 1500.0
	DefaultDistribution         = 1000.0
	DefaultGradeGrouping        = 1200.0
	DefaultConsecutiveSoft      = 100.0
)

// Set is the full, fixed set of objectives evaluated per solve. Each
// objective's Weight is independently tunable (by config or by the
// meta-optimizer); the internal sub-coefficients baked into each
// formula scale proportionally to the table's default ratios so a
// retuned weight rescales the whole term rather than only part of it.
// The one exception is EarlierDates' fixed 0.1-per-day decrement.
type Set struct {
	objectives []Objective
	byName     map[string]Objective
}

// NewDefaultSet builds the fixed 10-objective set at default weights.
func NewDefaultSet() *Set {
	s := &Set{byName: make(map[string]Objective)}
	s.add(&requiredPeriods{base{"RequiredPeriods", DefaultRequiredPeriods}})
	s.add(&preferredPeriods{base{"PreferredPeriods", DefaultPreferredPeriods}})
	s.add(&avoidPeriods{base{"AvoidPeriods", DefaultAvoidPeriods}})
	s.add(&earlierDates{base{"EarlierDates", DefaultEarlierDates}})
	s.add(&dayUsage{base{"DayUsage", DefaultDayUsage}})
	s.add(&finalWeekCompression{base{"FinalWeekCompression", DefaultFinalWeekCompression}})
	s.add(&dailyBalance{base{"DailyBalance", DefaultDailyBalance}})
	s.add(&distribution{base{"Distribution", DefaultDistribution}})
	s.add(&gradeGrouping{base{"GradeGrouping", DefaultGradeGrouping}})
	s.add(&consecutiveSoft{base{"ConsecutiveSoft", DefaultConsecutiveSoft}})
	return s
}

func (s *Set) add(o Objective) {
	s.objectives = append(s.objectives, o)
	s.byName[o.Name()] = o
}

// Objectives returns the set in registration order.
func (s *Set) Objectives() []Objective { return s.objectives }

// Get returns the named objective, or nil if unknown.
func (s *Set) Get(name string) Objective { return s.byName[name] }

// ApplyWeights overrides each named objective's weight from w,
// leaving unnamed entries at their current value. Unknown keys are
// ignored by the caller (pkg/weights validates keys before calling
// this).
func (s *Set) ApplyWeights(w map[string]float64) {
	for name, val := range w {
		if o, ok := s.byName[name]; ok {
			o.SetWeight(val)
		}
	}
}

// Score sums every objective's contribution for a complete candidate
// assignment list — the single number both the CP-SAT driver and the
// genetic algorithm maximize.
func (s *Set) Score(assignments []schedule.Assignment, ctx *Context) float64 {
	var total float64
	for _, o := range s.objectives {
		total += o.Score(assignments, ctx)
	}
	return total
}

// Breakdown scores each objective independently, for the response
// metadata's distribution diagnostics.
func (s *Set) Breakdown(assignments []schedule.Assignment, ctx *Context) map[string]float64 {
	out := make(map[string]float64, len(s.objectives))
	for _, o := range s.objectives {
		out[o.Name()] = o.Score(assignments, ctx)
	}
	return out
}
