package solver

import (
	"context"
	"time"

	"github.com/danfeder/schedule-engine/pkg/constraint"
	"github.com/danfeder/schedule-engine/pkg/schedule"
	"github.com/danfeder/schedule-engine/pkg/solver/cpsat"
	"github.com/danfeder/schedule-engine/pkg/solver/genetic"
)

// orToolsStrategy wraps the exact CP-SAT-style branch-and-bound
// driver (pkg/solver/cpsat).
type orToolsStrategy struct{}

func (orToolsStrategy) Name() string { return "or_tools" }

func (orToolsStrategy) Capabilities() []string {
	return []string{"intensive", "standard", "small_scale", "medium_scale", "constraint_relaxation"}
}

// CanSolve refuses large combined problems per spec.md §4.6.1's
// elimination example: OR-Tools' exhaustive search degrades badly
// once both the class count and instructor count are large.
func (orToolsStrategy) CanSolve(req schedule.Request, opts Options) (bool, string) {
	if len(req.Classes) > 150 && len(req.InstructorAvailability) > 30 {
		return false, "problem too large for exact search (>150 classes and >30 instructors)"
	}
	return true, ""
}

func (orToolsStrategy) Solve(ctx context.Context, req schedule.Request, opts Options, st *buildState, timeoutSeconds int) (*Outcome, error) {
	workers := 8
	result, err := cpsat.Solve(ctx, req, st.grid, st.cs, st.model, st.objs, cpsat.Options{
		TimeBudget: time.Duration(timeoutSeconds) * time.Second,
		Workers:    workers,
	})
	if err != nil {
		return nil, err
	}
	return &Outcome{
		Assignments:    result.Assignments,
		Score:          result.Score,
		Bound:          result.Bound,
		SolutionsFound: result.SolutionsFound,
		DurationMS:     result.DurationMS,
		Solver:         "or_tools",
	}, nil
}

// geneticStrategy wraps the population-based heuristic solver
// (pkg/solver/genetic).
type geneticStrategy struct{}

func (geneticStrategy) Name() string { return "genetic" }

func (geneticStrategy) Capabilities() []string {
	return []string{
		"standard", "minimal", "small_scale", "medium_scale", "large_scale",
		"constraint_relaxation", "distribution_optimization", "workload_balancing",
	}
}

// CanSolve refuses when the caller declared requireExactSolution,
// since a heuristic search offers no optimality guarantee
// (spec.md §4.6.1's second elimination example).
func (geneticStrategy) CanSolve(req schedule.Request, opts Options) (bool, string) {
	if opts.RequireExactSolution {
		return false, "caller requires an exact solution; genetic search cannot guarantee optimality"
	}
	return true, ""
}

func (geneticStrategy) Solve(ctx context.Context, req schedule.Request, opts Options, st *buildState, timeoutSeconds int) (*Outcome, error) {
	params := genetic.Params{
		Size:          opts.PopulationSize,
		MutationRate:  opts.MutationRate,
		CrossoverRate: opts.CrossoverRate,
	}
	if opts.MaxIterations > 0 {
		params.MaxGenerations = opts.MaxIterations
	}
	result := genetic.Run(ctx, st.model, st.grid, st.cs, st.buildCtx, st.objs, st.objCtx, genetic.Options{
		Params:          params,
		TimeLimit:       time.Duration(timeoutSeconds) * time.Second,
		ParallelFitness: opts.ParallelExecution,
	})
	if len(result.Assignments) == 0 {
		return nil, &schedule.NoSolutionError{Reason: "genetic search produced no valid chromosome"}
	}
	return &Outcome{
		Assignments:    result.Assignments,
		Score:          result.BestFitness,
		SolutionsFound: result.GenerationsRun,
		DurationMS:     result.DurationMS,
		Solver:         "genetic",
	}, nil
}

// hybridStrategy runs CP-SAT with half the time budget and falls
// back to (or compares against) the genetic algorithm, per spec.md
// §4.6's hybrid rule.
type hybridStrategy struct{}

func (hybridStrategy) Name() string { return "hybrid" }

func (hybridStrategy) Capabilities() []string {
	return []string{
		"intensive", "standard", "small_scale", "medium_scale", "large_scale",
		"constraint_relaxation", "distribution_optimization", "workload_balancing",
	}
}

func (hybridStrategy) CanSolve(req schedule.Request, opts Options) (bool, string) { return true, "" }

func (hybridStrategy) Solve(ctx context.Context, req schedule.Request, opts Options, st *buildState, timeoutSeconds int) (*Outcome, error) {
	phaseBudget := timeoutSeconds / 2
	if phaseBudget > 30 {
		phaseBudget = 30
	}
	if phaseBudget < 1 {
		phaseBudget = 1
	}

	or := orToolsStrategy{}
	orOutcome, orErr := or.Solve(ctx, req, opts, st, phaseBudget)
	if orErr == nil && qualityScore(req, orOutcome, st) >= 80 {
		orOutcome.Solver = "hybrid:or_tools"
		return orOutcome, nil
	}

	remaining := timeoutSeconds - phaseBudget
	if remaining < 1 {
		remaining = 1
	}
	ga := geneticStrategy{}
	gaOutcome, gaErr := ga.Solve(ctx, req, opts, st, remaining)

	switch {
	case orErr != nil && gaErr != nil:
		return nil, gaErr
	case orErr != nil:
		gaOutcome.Solver = "hybrid:genetic"
		return gaOutcome, nil
	case gaErr != nil:
		orOutcome.Solver = "hybrid:or_tools"
		return orOutcome, nil
	}

	// Both succeeded: compare normalized quality scores rather than
	// the raw objective totals, which live on unrelated scales (a
	// single required-period match alone is worth 10000).
	if qualityScore(req, orOutcome, st) >= qualityScore(req, gaOutcome, st) {
		orOutcome.Solver = "hybrid:or_tools"
		return orOutcome, nil
	}
	gaOutcome.Solver = "hybrid:genetic"
	return gaOutcome, nil
}

// qualityScore reduces an outcome to a bounded [0, 100] metric per
// spec.md §4.6's "quality score >= 80" hybrid rule: completeness (the
// fraction of classes actually assigned) scaled to 100 and penalized
// 5 points per hard-constraint violation still present, floored at 0.
func qualityScore(req schedule.Request, outcome *Outcome, st *buildState) float64 {
	if outcome == nil || len(req.Classes) == 0 {
		return 0
	}
	completeness := float64(len(outcome.Assignments)) / float64(len(req.Classes))
	if completeness > 1 {
		completeness = 1
	}
	score := completeness * 100

	violations := constraint.ValidateAll(st.cs, outcome.Assignments, st.buildCtx)
	score -= 5 * float64(len(violations))
	if score < 0 {
		score = 0
	}
	return score
}
