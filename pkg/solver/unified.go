package solver

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/danfeder/schedule-engine/internal/metrics"
	"github.com/danfeder/schedule-engine/internal/obslog"
	"github.com/danfeder/schedule-engine/pkg/constraint"
	"github.com/danfeder/schedule-engine/pkg/grid"
	"github.com/danfeder/schedule-engine/pkg/objective"
	"github.com/danfeder/schedule-engine/pkg/relax"
	"github.com/danfeder/schedule-engine/pkg/schedule"
)

// UnifiedSolver orchestrates a single solve call: strategy selection,
// the relaxation fallback ladder, and post-solve validation
// (spec.md §4.6).
type UnifiedSolver struct {
	registry *Registry
	metrics  *metrics.Solver
}

// New returns a UnifiedSolver with the fixed strategy registry
// installed. metrics may be nil.
func New(m *metrics.Solver) *UnifiedSolver {
	return &UnifiedSolver{registry: NewRegistry(), metrics: m}
}

// Solve runs one request end to end: builds the grid and shared
// model, resolves the requested strategy (running the relaxation
// ladder if the base solve comes back empty and relaxation was
// requested), runs the full validator over the result, and assembles
// the wire Response.
func (u *UnifiedSolver) Solve(ctx context.Context, req schedule.Request, opts Options) schedule.Response {
	start := time.Now()
	runID := uuid.NewString()

	names := make(map[string]string, len(req.Classes))
	for _, c := range req.Classes {
		names[c.ID] = c.Name
	}

	g, err := grid.Build(req)
	if err != nil {
		return errorResponse(err, start, runID, opts.SolverType)
	}

	rc := relax.NewController()
	buildCtx := constraint.NewBuildContext(g, req, rc)
	cs, m, err := constraint.Build(buildCtx)
	if err != nil {
		return errorResponse(err, start, runID, opts.SolverType)
	}

	objs := objective.NewDefaultSet()
	if len(opts.Weights) > 0 {
		objs.ApplyWeights(opts.Weights)
	}
	objCtx := objective.NewContext(req, g)

	st := &buildState{grid: g, cs: cs, model: m, buildCtx: buildCtx, objs: objs, objCtx: objCtx}

	outcome, solveErr := u.runStrategy(ctx, req, opts, st, opts.TimeoutSeconds)

	level := relax.LevelNone
	attemptedRelax := false
	if opts.EnableRelaxation && (solveErr != nil || outcome == nil || len(outcome.Assignments) == 0) {
		attemptedRelax = true
		outcome, level = u.relaxationLadder(ctx, req, opts, rc)
	}

	if outcome == nil || len(outcome.Assignments) == 0 {
		resp := emptyResponse(start, runID, opts.SolverType)
		if attemptedRelax {
			resp.Metadata.RelaxationLevel = level.String()
			resp.Metadata.RelaxationStatus = "exhausted"
		}
		if u.metrics != nil {
			u.metrics.RecordSolve(opts.SolverType, "no_solution", time.Since(start))
		}
		return resp
	}

	violations := constraint.ValidateAll(cs, outcome.Assignments, buildCtx)
	resp := assembleResponse(outcome, names, violations, start, runID)
	if attemptedRelax {
		resp.Metadata.RelaxationLevel = level.String()
		resp.Metadata.RelaxationStatus = "applied"
	}
	if u.metrics != nil {
		u.metrics.RecordSolve(opts.SolverType, "solved", time.Since(start))
		u.metrics.RecordBestScore(opts.SolverType, outcome.Score)
	}
	obslog.L().Infow("solve complete", "run_id", runID, "solver", outcome.Solver, "assignments", len(outcome.Assignments))
	return resp
}

// runStrategy resolves and runs the configured strategy. strategy
// "meta" delegates selection to the §4.6.1 capability scorer.
func (u *UnifiedSolver) runStrategy(ctx context.Context, req schedule.Request, opts Options, st *buildState, timeoutSeconds int) (*Outcome, error) {
	name := opts.SolverType
	if name == "meta" {
		selected, err := u.registry.Select(req, opts)
		if err != nil {
			return nil, err
		}
		name = selected
	}
	s := u.registry.Get(name)
	if s == nil {
		return nil, fmt.Errorf("solver: unknown strategy %q", name)
	}
	if ok, reason := s.CanSolve(req, opts); !ok {
		selected, err := u.registry.Select(req, opts)
		if err != nil {
			return nil, fmt.Errorf("solver: strategy %q cannot solve (%s), and no fallback accepted the request", name, reason)
		}
		s = u.registry.Get(selected)
	}
	return s.Solve(ctx, req, opts, st, timeoutSeconds)
}

// relaxationLadder implements spec.md §4.6's fallback ladder: raise
// every relaxable constraint's level, rebuild the model, and re-solve,
// stopping at the first non-empty schedule.
func (u *UnifiedSolver) relaxationLadder(ctx context.Context, req schedule.Request, opts Options, rc *relax.Controller) (*Outcome, relax.Level) {
	levels := []relax.Level{relax.LevelMinimal, relax.LevelModerate, relax.LevelSignificant, relax.LevelMaximum}
	for _, level := range levels {
		rc.RaiseAll(level)

		g, err := grid.Build(req)
		if err != nil {
			continue
		}
		buildCtx := constraint.NewBuildContext(g, req, rc)
		cs, m, err := constraint.Build(buildCtx)
		if err != nil {
			continue
		}
		objs := objective.NewDefaultSet()
		if len(opts.Weights) > 0 {
			objs.ApplyWeights(opts.Weights)
		}
		objCtx := objective.NewContext(req, g)
		st := &buildState{grid: g, cs: cs, model: m, buildCtx: buildCtx, objs: objs, objCtx: objCtx}

		outcome, err := u.runStrategy(ctx, req, opts, st, opts.TimeoutSeconds)
		if err == nil && outcome != nil && len(outcome.Assignments) > 0 {
			return outcome, level
		}
	}
	return nil, relax.LevelMaximum
}

func assembleResponse(o *Outcome, names map[string]string, violations []constraint.Violation, start time.Time, runID string) schedule.Response {
	out := make([]schedule.AssignmentOut, 0, len(o.Assignments))
	for _, a := range o.Assignments {
		out = append(out, schedule.ToOut(a, names[a.ClassID]))
	}
	var gap float64
	if o.Score != 0 {
		gap = (o.Score - o.Bound) / absFloat(o.Score)
	}
	return schedule.Response{
		Assignments: out,
		Metadata: schedule.Metadata{
			DurationMS:     time.Since(start).Milliseconds(),
			SolutionsFound: o.SolutionsFound,
			Score:          int(o.Score),
			Gap:            gap,
			Solver:         o.Solver,
			RunID:          runID,
			Violations:     violationStrings(violations),
		},
	}
}

func emptyResponse(start time.Time, runID, solver string) schedule.Response {
	return schedule.Response{
		Assignments: []schedule.AssignmentOut{},
		Metadata: schedule.Metadata{
			DurationMS: time.Since(start).Milliseconds(),
			Solver:     solver,
			RunID:      runID,
			Error:      "no feasible solution found",
		},
	}
}

func errorResponse(err error, start time.Time, runID, solver string) schedule.Response {
	return schedule.Response{
		Assignments: []schedule.AssignmentOut{},
		Metadata: schedule.Metadata{
			DurationMS: time.Since(start).Milliseconds(),
			Solver:     solver,
			RunID:      runID,
			Error:      err.Error(),
		},
	}
}

func violationStrings(violations []constraint.Violation) []string {
	if len(violations) == 0 {
		return nil
	}
	out := make([]string, len(violations))
	for i, v := range violations {
		out[i] = fmt.Sprintf("[%s] %s: %s", v.Severity, v.Constraint, v.Message)
	}
	return out
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
