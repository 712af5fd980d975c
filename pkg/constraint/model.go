// Package constraint implements the fixed, enumerated constraint set
// shared by the CP-SAT driver and the GA's feasibility scoring
// (spec.md §4.2). Each constraint is a tagged variant exposing
// Apply (install into the shared Model) and Validate (post-hoc check).
package constraint

import (
	"github.com/danfeder/schedule-engine/pkg/grid"
	"github.com/danfeder/schedule-engine/pkg/relax"
	"github.com/danfeder/schedule-engine/pkg/schedule"
)

// BuildContext carries the read-only inputs every constraint needs to
// install itself: the grid, the original request, and the relaxation
// controller whose current levels gate the effective caps.
type BuildContext struct {
	Grid    *grid.Grid
	Request schedule.Request
	Classes map[string]schedule.Class
	Relax   *relax.Controller
}

// NewBuildContext indexes the request's classes by id.
func NewBuildContext(g *grid.Grid, req schedule.Request, rc *relax.Controller) *BuildContext {
	classes := make(map[string]schedule.Class, len(req.Classes))
	for _, c := range req.Classes {
		classes[c.ID] = c
	}
	return &BuildContext{Grid: g, Request: req, Classes: classes, Relax: rc}
}

// Model is the shared decision model both solvers build candidate
// schedules against: a pruned per-class domain of admissible grid
// variable ids, plus the counting caps (daily/weekly/consecutive)
// hard constraints install into it.
type Model struct {
	// ClassDomains maps classID to the grid variable ids it may still
	// take, after conflict/availability/required-period pruning.
	ClassDomains map[string][]int

	// ClassOrder preserves the request's class ordering for
	// deterministic branching.
	ClassOrder []string

	DailyCap  map[int64]int
	WeeklyCap map[int]int
	WeeklyMin map[int]int

	ConsecutiveHardCap int // -1 if the cap is not a hard bound
	AllowConsecutivePairs bool
	ConsecutiveSoftRule   bool // true when the rule is "soft"

	BreakPeriods map[int]bool
}

// NewModel seeds per-class domains from the grid (one entry per class
// present in the request, in request order) before any constraint has
// pruned them further.
func NewModel(g *grid.Grid, req schedule.Request) *Model {
	m := &Model{
		ClassDomains:          make(map[string][]int, len(req.Classes)),
		ClassOrder:            make([]string, 0, len(req.Classes)),
		DailyCap:              make(map[int64]int),
		WeeklyCap:             make(map[int]int),
		WeeklyMin:             make(map[int]int),
		ConsecutiveHardCap:    -1,
		AllowConsecutivePairs: true,
		BreakPeriods:          make(map[int]bool),
	}
	for _, c := range req.Classes {
		ids := append([]int(nil), g.ByClass(c.ID)...)
		m.ClassDomains[c.ID] = ids
		m.ClassOrder = append(m.ClassOrder, c.ID)
	}
	return m
}

// restrictDomain intersects a class's domain with a predicate over
// grid variables, keeping only ids the predicate accepts.
func (m *Model) restrictDomain(classID string, g *grid.Grid, keep func(v grid.Variable) bool) {
	ids := m.ClassDomains[classID]
	out := ids[:0:0]
	for _, id := range ids {
		if keep(g.Var(id)) {
			out = append(out, id)
		}
	}
	m.ClassDomains[classID] = out
}

// Severity classifies a validation violation.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Violation describes one failed invariant found by Validate.
type Violation struct {
	Constraint string
	Severity   Severity
	Message    string
	ClassID    string
}

// Constraint is the tagged-variant interface every constraint
// implements. Weight is nil for hard constraints.
type Constraint interface {
	Name() string
	Category() string
	Enabled() bool
	Weight() *float64
	Apply(ctx *BuildContext, m *Model) error
	Validate(assignments []schedule.Assignment, ctx *BuildContext) []Violation
}

// Relaxable is implemented by constraints whose effective parameters
// loosen as the relaxation controller raises their level.
type Relaxable interface {
	Constraint
	NeverRelax() bool
}

// base provides the common enabled/weight bookkeeping every concrete
// constraint embeds.
type base struct {
	name     string
	category string
	enabled  bool
}

func (b base) Name() string     { return b.name }
func (b base) Category() string { return b.category }
func (b base) Enabled() bool    { return b.enabled }
func (b base) Weight() *float64 { return nil }
