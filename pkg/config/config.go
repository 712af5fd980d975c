// Package config loads the solve-time configuration surface
// (spec.md §6) from environment variables, grounded on the
// viper.New/AutomaticEnv/setDefaults shape of
// pkg/config/config.go from the adp-api reference repo.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// GA holds the genetic algorithm's tunables, overridable by the
// GA_* environment variables.
type GA struct {
	PopulationSize       int
	EliteSize            int
	MutationRate         float64
	CrossoverRate        float64
	MaxGenerations       int
	ConvergenceThreshold float64
	UseAdaptiveControl   bool
	AdaptationInterval   int
	DiversityThreshold   float64
	AdaptationStrength   float64
	ParallelFitness      bool
	CrossoverMethods     []string
}

// Meta holds the meta-optimizer's tunables, overridable by the
// META_* environment variables.
type Meta struct {
	PopulationSize     int
	Generations        int
	MutationRate       float64
	CrossoverRate      float64
	EvalTimeLimit      time.Duration
	ParallelEvaluation bool
}

// Features gates optional behavior via the ENABLE_* environment
// variables.
type Features struct {
	ConstraintRelaxation bool
	WeightTuning         bool
	GradeGrouping        bool
	GeneticOptimization  bool
	ConsecutiveClasses   bool
	TeacherBreaks        bool
}

// Config is the full process configuration.
type Config struct {
	Env             string
	LogLevel        string
	SolverTimeLimit time.Duration
	GA              GA
	Meta            Meta
	Features        Features
}

// Load reads configuration from the environment, applying the
// defaults a solve would use absent any override.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	cfg := &Config{
		Env:             v.GetString("ENV"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		SolverTimeLimit: v.GetDuration("SOLVER_TIME_LIMIT"),
		GA: GA{
			PopulationSize:       v.GetInt("GA_POPULATION_SIZE"),
			EliteSize:            v.GetInt("GA_ELITE_SIZE"),
			MutationRate:         v.GetFloat64("GA_MUTATION_RATE"),
			CrossoverRate:        v.GetFloat64("GA_CROSSOVER_RATE"),
			MaxGenerations:       v.GetInt("GA_MAX_GENERATIONS"),
			ConvergenceThreshold: v.GetFloat64("GA_CONVERGENCE_THRESHOLD"),
			UseAdaptiveControl:   v.GetBool("GA_USE_ADAPTIVE_CONTROL"),
			AdaptationInterval:   v.GetInt("GA_ADAPTATION_INTERVAL"),
			DiversityThreshold:   v.GetFloat64("GA_DIVERSITY_THRESHOLD"),
			AdaptationStrength:   v.GetFloat64("GA_ADAPTATION_STRENGTH"),
			ParallelFitness:      v.GetBool("GA_PARALLEL_FITNESS"),
			CrossoverMethods:     splitAndTrim(v.GetString("GA_CROSSOVER_METHODS")),
		},
		Meta: Meta{
			PopulationSize:     v.GetInt("META_POPULATION_SIZE"),
			Generations:        v.GetInt("META_GENERATIONS"),
			MutationRate:       v.GetFloat64("META_MUTATION_RATE"),
			CrossoverRate:      v.GetFloat64("META_CROSSOVER_RATE"),
			EvalTimeLimit:      v.GetDuration("META_EVAL_TIME_LIMIT"),
			ParallelEvaluation: v.GetBool("META_PARALLEL_EVALUATION"),
		},
		Features: Features{
			ConstraintRelaxation: v.GetBool("ENABLE_CONSTRAINT_RELAXATION"),
			WeightTuning:         v.GetBool("ENABLE_WEIGHT_TUNING"),
			GradeGrouping:        v.GetBool("ENABLE_GRADE_GROUPING"),
			GeneticOptimization:  v.GetBool("ENABLE_GENETIC_OPTIMIZATION"),
			ConsecutiveClasses:   v.GetBool("ENABLE_CONSECUTIVE_CLASSES"),
			TeacherBreaks:        v.GetBool("ENABLE_TEACHER_BREAKS"),
		},
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SOLVER_TIME_LIMIT", 30*time.Second)

	v.SetDefault("GA_POPULATION_SIZE", 150)
	v.SetDefault("GA_ELITE_SIZE", 5)
	v.SetDefault("GA_MUTATION_RATE", 0.1)
	v.SetDefault("GA_CROSSOVER_RATE", 0.8)
	v.SetDefault("GA_MAX_GENERATIONS", 200)
	v.SetDefault("GA_CONVERGENCE_THRESHOLD", 0.001)
	v.SetDefault("GA_USE_ADAPTIVE_CONTROL", true)
	v.SetDefault("GA_ADAPTATION_INTERVAL", 10)
	v.SetDefault("GA_DIVERSITY_THRESHOLD", 0.1)
	v.SetDefault("GA_ADAPTATION_STRENGTH", 0.2)
	v.SetDefault("GA_PARALLEL_FITNESS", true)
	v.SetDefault("GA_CROSSOVER_METHODS", "single_point,two_point,uniform,order_preserving")

	v.SetDefault("META_POPULATION_SIZE", 20)
	v.SetDefault("META_GENERATIONS", 15)
	v.SetDefault("META_MUTATION_RATE", 0.2)
	v.SetDefault("META_CROSSOVER_RATE", 0.7)
	v.SetDefault("META_EVAL_TIME_LIMIT", 10*time.Second)
	v.SetDefault("META_PARALLEL_EVALUATION", true)

	v.SetDefault("ENABLE_CONSTRAINT_RELAXATION", true)
	v.SetDefault("ENABLE_WEIGHT_TUNING", false)
	v.SetDefault("ENABLE_GRADE_GROUPING", true)
	v.SetDefault("ENABLE_GENETIC_OPTIMIZATION", true)
	v.SetDefault("ENABLE_CONSECUTIVE_CLASSES", true)
	v.SetDefault("ENABLE_TEACHER_BREAKS", true)
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
