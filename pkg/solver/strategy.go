// Package solver implements the unified solver (spec.md §4.6): a
// strategy registry selecting between the CP-SAT driver, the genetic
// algorithm, a hybrid of the two, and meta-optimizer-driven selection,
// plus the runtime relaxation fallback ladder. Grounded on the
// teacher's StrategyRegistry/StrategySelector shape
// (pkg/minikanren/strategy.go): register-by-name, list, and a
// selector that inspects problem characteristics to pick a strategy.
package solver

import (
	"context"
	"fmt"

	"github.com/danfeder/schedule-engine/pkg/constraint"
	"github.com/danfeder/schedule-engine/pkg/grid"
	"github.com/danfeder/schedule-engine/pkg/objective"
	"github.com/danfeder/schedule-engine/pkg/schedule"
)

// Outcome is a strategy's solve result, before response assembly.
type Outcome struct {
	Assignments    []schedule.Assignment
	Score          float64
	Bound          float64
	SolutionsFound int
	DurationMS     int64
	Solver         string
}

// buildState bundles the per-solve artifacts every strategy needs:
// the grid, the constraint model, the objective set, and their
// contexts. Built once per Solve call and reused across strategies
// (e.g. hybrid runs both against the same state).
type buildState struct {
	grid     *grid.Grid
	cs       []constraint.Constraint
	model    *constraint.Model
	buildCtx *constraint.BuildContext
	objs     *objective.Set
	objCtx   *objective.Context
}

// Strategy is the tagged-variant interface every solving strategy
// implements: a name, a declared capability set (spec.md §4.6.1), a
// refusal check, and the solve itself.
type Strategy interface {
	Name() string
	Capabilities() []string
	CanSolve(req schedule.Request, opts Options) (bool, string)
	Solve(ctx context.Context, req schedule.Request, opts Options, st *buildState, timeoutSeconds int) (*Outcome, error)
}

// Registry is a string-keyed strategy table mirroring pkg/constraint's
// Registry: register-by-name, list, and instantiate.
type Registry struct {
	strategies map[string]Strategy
	order      []string
}

// NewRegistry returns a registry pre-populated with the fixed,
// enumerated strategy set from spec.md §4.6: or_tools, genetic,
// hybrid. "meta" is not itself a registered strategy — it is the
// selection mode that scores and picks among these three.
func NewRegistry() *Registry {
	r := &Registry{strategies: make(map[string]Strategy)}
	r.register(&orToolsStrategy{})
	r.register(&geneticStrategy{})
	r.register(&hybridStrategy{})
	return r
}

func (r *Registry) register(s Strategy) {
	r.strategies[s.Name()] = s
	r.order = append(r.order, s.Name())
}

// Get returns the named strategy, or nil if unregistered.
func (r *Registry) Get(name string) Strategy { return r.strategies[name] }

// Names returns the registered strategy names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Select implements spec.md §4.6.1's capability-scoring rule: score
// every registered strategy that accepts the request, return the
// highest scorer's name. Ties resolve to registration order (strict
// greater-than keeps the first-registered winner).
func (r *Registry) Select(req schedule.Request, opts Options) (string, error) {
	bestName := ""
	bestScore := -1
	for _, name := range r.order {
		s := r.strategies[name]
		if ok, _ := s.CanSolve(req, opts); !ok {
			continue
		}
		score := capabilityScore(s, req, opts)
		if score > bestScore {
			bestScore = score
			bestName = name
		}
	}
	if bestName == "" {
		return "", fmt.Errorf("solver: no registered strategy accepts this request")
	}
	return bestName, nil
}

// capabilityScore implements spec.md §4.6.1's scoring rule.
func capabilityScore(s Strategy, req schedule.Request, opts Options) int {
	score := 50
	caps := toSet(s.Capabilities())

	switch opts.OptimizationLevel {
	case "intensive":
		if caps["intensive"] {
			score += 20
		}
	case "standard":
		if caps["standard"] {
			score += 15
		}
	case "minimal":
		if caps["minimal"] {
			score += 10
		}
	}

	nClasses := len(req.Classes)
	nInstructors := len(req.InstructorAvailability)
	switch {
	case nClasses > 100 || nInstructors > 20:
		if caps["large_scale"] {
			score += 20
		} else {
			score -= 20
		}
	case nClasses > 30 || nInstructors > 8:
		if caps["medium_scale"] {
			score += 15
		} else if caps["large_scale"] {
			score += 10
		} else {
			score -= 10
		}
	default:
		if caps["small_scale"] {
			score += 10
		}
	}

	if opts.EnableRelaxation && caps["constraint_relaxation"] {
		score += 10
	}
	if opts.EnableDistributionOptimization && caps["distribution_optimization"] {
		score += 10
	}
	if opts.EnableWorkloadBalancing && caps["workload_balancing"] {
		score += 10
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

func toSet(items []string) map[string]bool {
	out := make(map[string]bool, len(items))
	for _, i := range items {
		out[i] = true
	}
	return out
}
