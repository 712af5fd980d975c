// Package scheduleapi exposes the single Solve API function
// (spec.md §6): ScheduleRequest in, ScheduleResponse out. It wires
// together request parsing (pkg/schedule), the ambient process
// config (pkg/config), the global weight map (pkg/weights), and the
// unified solver (pkg/solver) — the one seam everything outside the
// core (HTTP routing, persistence, dashboards) is expected to call.
package scheduleapi

import (
	"context"
	"encoding/json"

	"github.com/danfeder/schedule-engine/internal/metrics"
	"github.com/danfeder/schedule-engine/internal/obslog"
	"github.com/danfeder/schedule-engine/pkg/config"
	"github.com/danfeder/schedule-engine/pkg/schedule"
	"github.com/danfeder/schedule-engine/pkg/solver"
	"github.com/danfeder/schedule-engine/pkg/solver/genetic"
	"github.com/danfeder/schedule-engine/pkg/solver/meta"
	"github.com/danfeder/schedule-engine/pkg/weights"
)

// Solve decodes a ScheduleRequest from raw JSON, runs it through the
// unified solver, and returns the ScheduleResponse. Request-level
// Options (spec.md §6) override the ambient config.Config; weights
// not explicitly overridden fall back to the current global weight
// map (pkg/weights), not the objective package's bare defaults, so a
// prior updateWeights call is honored.
func Solve(ctx context.Context, rawRequest []byte, m *metrics.Solver) (schedule.Response, error) {
	var req schedule.Request
	if err := json.Unmarshal(rawRequest, &req); err != nil {
		return schedule.Response{}, err
	}
	return SolveRequest(ctx, req, m)
}

// SolveRequest runs an already-decoded request through the unified
// solver.
func SolveRequest(ctx context.Context, req schedule.Request, m *metrics.Solver) (schedule.Response, error) {
	cfg, err := config.Load()
	if err != nil {
		return schedule.Response{}, err
	}

	opts, err := solver.ParseOptions(req.Options, cfg)
	if err != nil {
		if ve, ok := asValidationError(err); ok {
			return schedule.Response{}, ve
		}
		return schedule.Response{}, err
	}

	merged := weights.Snapshot()
	for k, v := range opts.Weights {
		merged[k] = v
	}

	if opts.EnableWeightTuning {
		merged = tuneWeights(ctx, req, cfg, merged)
	}
	opts.Weights = merged

	u := solver.New(m)
	return u.Solve(ctx, req, opts), nil
}

// tuneWeights runs the spec.md §4.7 meta-optimizer over defaults to
// find a better-performing objective weight vector before the real
// solve, using cfg.Meta/cfg.GA for its inner-GA and evolution budget.
func tuneWeights(ctx context.Context, req schedule.Request, cfg *config.Config, defaults map[string]float64) map[string]float64 {
	params := meta.Params{
		PopulationSize: cfg.Meta.PopulationSize,
		Generations:    cfg.Meta.Generations,
		MutationRate:   cfg.Meta.MutationRate,
		CrossoverRate:  cfg.Meta.CrossoverRate,
		EvalTimeLimit:  cfg.Meta.EvalTimeLimit,
		Parallel:       cfg.Meta.ParallelEvaluation,
		GAParams: genetic.Params{
			EliteSize:          cfg.GA.EliteSize,
			MutationRate:       cfg.GA.MutationRate,
			CrossoverRate:      cfg.GA.CrossoverRate,
			MaxGenerations:     cfg.GA.MaxGenerations,
			AdaptationInterval: cfg.GA.AdaptationInterval,
			DiversityThreshold: cfg.GA.DiversityThreshold,
			AdaptationStrength: cfg.GA.AdaptationStrength,
			UseAdaptiveControl: cfg.GA.UseAdaptiveControl,
		},
	}

	result := meta.Run(ctx, req, defaults, params)
	obslog.L().Infow("weight tuning complete",
		"fitness", result.Fitness, "generations_run", result.GenerationsRun)
	return result.Weights
}

func asValidationError(err error) (*schedule.ValidationError, bool) {
	if err == nil {
		return nil, false
	}
	return schedule.NewValidationError("options", err.Error()), true
}
