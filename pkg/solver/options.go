package solver

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/danfeder/schedule-engine/pkg/config"
)

// Options is the per-solve configuration surface (spec.md §6),
// decoded from the request's Options field and defaulted from the
// ambient process config.Config.
type Options struct {
	SolverType        string             `json:"solver_type"`
	OptimizationLevel string             `json:"optimization_level"`
	TimeoutSeconds    int                `json:"timeout_seconds"`
	MaxIterations     int                `json:"max_iterations"`
	PopulationSize    int                `json:"population_size"`
	MutationRate      float64            `json:"mutation_rate"`
	CrossoverRate     float64            `json:"crossover_rate"`

	EnableRelaxation               bool `json:"enable_relaxation"`
	EnableDistributionOptimization bool `json:"enable_distribution_optimization"`
	EnableWorkloadBalancing        bool `json:"enable_workload_balancing"`

	// EnableWeightTuning runs the spec.md §4.7 meta-optimizer over the
	// request's objective weights before solving. Defaults to
	// config.Features.WeightTuning (the ENABLE_WEIGHT_TUNING env var)
	// but can be forced on or off per request.
	EnableWeightTuning bool `json:"enable_weight_tuning"`

	Weights map[string]float64 `json:"weights"`

	DebugMode            bool `json:"debug_mode"`
	ParallelExecution    bool `json:"parallel_execution"`
	ExperimentalFeatures bool `json:"experimental_features"`
	AllowPartialSolution bool `json:"allow_partial_solution"`

	// RequireExactSolution is not part of the recognized §6 surface
	// but is the request-declared flag spec.md §4.6.1's elimination
	// example references: "GA refuses when the request declares
	// requireExactSolution".
	RequireExactSolution bool `json:"requireExactSolution"`
}

var validWeightKeys = map[string]bool{
	"RequiredPeriods": true, "PreferredPeriods": true, "AvoidPeriods": true,
	"EarlierDates": true, "DayUsage": true, "FinalWeekCompression": true,
	"DailyBalance": true, "Distribution": true, "GradeGrouping": true,
	"ConsecutiveSoft": true,
}

// ParseOptions decodes raw (the request's Options field, may be nil)
// against defaults drawn from the ambient config, and validates the
// weight key set is a subset of the fixed objective names
// (spec.md §6: "unknown keys are a validation error").
func ParseOptions(raw json.RawMessage, cfg *config.Config) (Options, error) {
	opts := Options{
		SolverType:                      "hybrid",
		OptimizationLevel:               "standard",
		TimeoutSeconds:                  int(cfg.SolverTimeLimit / time.Second),
		MaxIterations:                   cfg.GA.MaxGenerations,
		PopulationSize:                  cfg.GA.PopulationSize,
		MutationRate:                    cfg.GA.MutationRate,
		CrossoverRate:                   cfg.GA.CrossoverRate,
		EnableRelaxation:                cfg.Features.ConstraintRelaxation,
		EnableDistributionOptimization:  true,
		EnableWorkloadBalancing:         true,
		ParallelExecution:               cfg.GA.ParallelFitness,
		EnableWeightTuning:              cfg.Features.WeightTuning,
	}
	if len(raw) == 0 {
		return opts, nil
	}
	if err := json.Unmarshal(raw, &opts); err != nil {
		return Options{}, fmt.Errorf("solver: decode options: %w", err)
	}
	for k := range opts.Weights {
		if !validWeightKeys[k] {
			return Options{}, fmt.Errorf("solver: unknown weight key %q", k)
		}
	}
	switch opts.SolverType {
	case "", "or_tools", "genetic", "hybrid", "meta":
	default:
		return Options{}, fmt.Errorf("solver: unknown solver_type %q", opts.SolverType)
	}
	if opts.SolverType == "" {
		opts.SolverType = "hybrid"
	}
	if opts.TimeoutSeconds <= 0 {
		opts.TimeoutSeconds = 30
	}
	return opts, nil
}
