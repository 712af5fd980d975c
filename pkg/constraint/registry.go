package constraint

import (
	"fmt"

	"github.com/danfeder/schedule-engine/pkg/schedule"
)

// Registry is a string-keyed constraint constructor table, mirroring
// the teacher's StrategyRegistry (pkg/minikanren/strategy.go):
// register-by-name, list, and instantiate fresh constraint sets per
// solve so no mutable constraint state leaks between solves.
type Registry struct {
	constructors map[string]func() Constraint
	order        []string
}

// NewRegistry returns a registry pre-populated with the fixed,
// enumerated constraint set from spec.md §4.2. No open-world
// extensibility is offered at runtime — this is the closed set.
func NewRegistry() *Registry {
	r := &Registry{constructors: make(map[string]func() Constraint)}
	r.register("SingleAssignment", func() Constraint { return NewSingleAssignment() })
	r.register("NoOverlap", func() Constraint { return NewNoOverlap() })
	r.register("InstructorAvailability", func() Constraint { return NewInstructorAvailability() })
	r.register("ConflictPeriods", func() Constraint { return NewConflictPeriods() })
	r.register("RequiredPeriods", func() Constraint { return NewRequiredPeriods() })
	r.register("DailyLimit", func() Constraint { return NewDailyLimit() })
	r.register("WeeklyLimit", func() Constraint { return NewWeeklyLimit() })
	r.register("MinimumPeriods", func() Constraint { return NewMinimumPeriods() })
	r.register("ConsecutiveClasses", func() Constraint { return NewConsecutiveClasses() })
	r.register("TeacherBreak", func() Constraint { return NewTeacherBreak() })
	return r
}

func (r *Registry) register(name string, ctor func() Constraint) {
	r.constructors[name] = ctor
	r.order = append(r.order, name)
}

// Names returns the registered constraint names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// New instantiates a fresh constraint set in registration order.
func (r *Registry) New() []Constraint {
	out := make([]Constraint, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.constructors[name]())
	}
	return out
}

// Build constructs the shared Model by applying every enabled
// constraint in order, registering relaxable ones with the
// relaxation controller first. Returns the constraint set used (for
// later Validate calls) and the built model.
func Build(ctx *BuildContext) ([]Constraint, *Model, error) {
	cs := NewRegistry().New()
	for _, c := range cs {
		if r, ok := c.(Relaxable); ok {
			ctx.Relax.Register(r.Name(), r.NeverRelax())
		}
	}
	m := NewModel(ctx.Grid, ctx.Request)
	for _, c := range cs {
		if !c.Enabled() {
			continue
		}
		if err := c.Apply(ctx, m); err != nil {
			return nil, nil, fmt.Errorf("constraint %s: apply: %w", c.Name(), err)
		}
	}
	return cs, m, nil
}

// ValidateAll runs every constraint's Validate and concatenates
// violations, used after CP-SAT extraction and as part of GA
// feasibility scoring (spec.md §4.2).
func ValidateAll(cs []Constraint, assignments []schedule.Assignment, ctx *BuildContext) []Violation {
	var out []Violation
	for _, c := range cs {
		if !c.Enabled() {
			continue
		}
		out = append(out, c.Validate(assignments, ctx)...)
	}
	return out
}
