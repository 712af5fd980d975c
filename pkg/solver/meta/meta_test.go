package meta

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/danfeder/schedule-engine/pkg/schedule"
	"github.com/danfeder/schedule-engine/pkg/solver/genetic"
	"github.com/danfeder/schedule-engine/pkg/weights"
)

func newTestRNG() *rand.Rand { return rand.New(rand.NewSource(42)) }

func smallRequest() schedule.Request {
	start := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	return schedule.Request{
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 4),
		Classes: []schedule.Class{
			{ID: "math"},
			{ID: "art"},
		},
		Constraints: schedule.GlobalConstraints{
			MaxClassesPerDay:  8,
			MaxClassesPerWeek: 40,
		},
	}
}

func tinyParams() Params {
	return Params{
		PopulationSize: 4,
		Generations:    2,
		EvalTimeLimit:  500 * time.Millisecond,
		GAParams:       genetic.Params{Size: 6, MaxGenerations: 5, NoImprovementLimit: 100},
		Seed:           1,
	}
}

func TestEvaluateReturnsAFiniteScoreForAFeasibleRequest(t *testing.T) {
	req := smallRequest()
	score := Evaluate(context.Background(), req, weights.Snapshot(), tinyParams())
	if score <= -10000 {
		t.Errorf("expected a real score for a feasible request, got %v", score)
	}
}

func TestRunReturnsWeightsForEveryDefaultKey(t *testing.T) {
	req := smallRequest()
	defaults := weights.Snapshot()
	result := Run(context.Background(), req, defaults, tinyParams())
	if len(result.Weights) != len(defaults) {
		t.Fatalf("expected %d weight keys, got %d", len(defaults), len(result.Weights))
	}
	for k := range defaults {
		if _, ok := result.Weights[k]; !ok {
			t.Errorf("expected result to carry weight key %q", k)
		}
	}
}

func TestRunFallsBackToDefaultsWhenNothingScoresPositive(t *testing.T) {
	req := schedule.Request{
		StartDate: time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC),
		Classes: []schedule.Class{{
			ID:             "impossible",
			WeeklySchedule: schedule.WeeklySchedule{RequiredPeriods: []schedule.TimeSlot{{DayOfWeek: 6, Period: 1}}},
		}},
	}
	defaults := weights.Snapshot()
	result := Run(context.Background(), req, defaults, tinyParams())
	if result.Fitness != 0.1 {
		t.Errorf("expected the 0.1 fallback fitness, got %v", result.Fitness)
	}
	for k, v := range defaults {
		if result.Weights[k] != v {
			t.Errorf("expected fallback weights to equal the defaults for %q", k)
		}
	}
}

func TestEvolveKeepsPopulationSizeConstant(t *testing.T) {
	pop := []WeightChromosome{
		{Weights: weights.Snapshot(), Fitness: 1},
		{Weights: weights.Snapshot(), Fitness: 5},
		{Weights: weights.Snapshot(), Fitness: 2},
	}
	next := evolve(newTestRNG(), pop, Params{CrossoverRate: 0.5, MutationRate: 0.1})
	if len(next) != len(pop) {
		t.Errorf("expected evolve to preserve population size, got %d want %d", len(next), len(pop))
	}
}

func TestEvolveKeepsTheBestIndividual(t *testing.T) {
	pop := []WeightChromosome{
		{Weights: weights.Snapshot(), Fitness: 1},
		{Weights: weights.Snapshot(), Fitness: 1000},
		{Weights: weights.Snapshot(), Fitness: 2},
	}
	sortByFitness(pop)
	next := evolve(newTestRNG(), pop, Params{CrossoverRate: 0, MutationRate: 0})
	if next[0].Fitness != 1000 {
		t.Errorf("expected elitism to carry the best fitness forward, got %v", next[0].Fitness)
	}
}

func TestRenameRequiredToPreferred(t *testing.T) {
	in := map[string]float64{"required_periods": 5, "other": 1}
	out := RenameRequiredToPreferred(in)
	if _, ok := out["required_periods"]; ok {
		t.Error("expected required_periods to be removed")
	}
	if out["preferred_periods"] != 5 {
		t.Errorf("expected preferred_periods to carry the renamed value, got %v", out["preferred_periods"])
	}
	if out["other"] != 1 {
		t.Errorf("expected unrelated keys to survive untouched, got %v", out["other"])
	}
	if _, ok := in["preferred_periods"]; ok {
		t.Error("expected RenameRequiredToPreferred not to mutate its input")
	}
}
