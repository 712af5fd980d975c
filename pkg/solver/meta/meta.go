// Package meta implements the second-level genetic algorithm that
// tunes the inner objective weights (spec.md §4.7): its chromosome is
// a name->weight map, its fitness is a composite score over a full
// inner GA solve, and it reuses the same tournament+elitism
// evolution shape as pkg/solver/genetic.
package meta

import (
	"context"
	"math/rand"
	"time"

	"github.com/danfeder/schedule-engine/internal/parallel"
	"github.com/danfeder/schedule-engine/pkg/constraint"
	"github.com/danfeder/schedule-engine/pkg/grid"
	"github.com/danfeder/schedule-engine/pkg/objective"
	"github.com/danfeder/schedule-engine/pkg/relax"
	"github.com/danfeder/schedule-engine/pkg/schedule"
	"github.com/danfeder/schedule-engine/pkg/solver/genetic"
)

// WeightChromosome is the meta-GA's individual: a name->weight map
// over the fixed objective key set (spec.md §4.3).
type WeightChromosome struct {
	Weights map[string]float64
	Fitness float64
}

func (w WeightChromosome) clone() WeightChromosome {
	out := make(map[string]float64, len(w.Weights))
	for k, v := range w.Weights {
		out[k] = v
	}
	return WeightChromosome{Weights: out, Fitness: w.Fitness}
}

// Params configures a meta-optimizer run.
type Params struct {
	PopulationSize int
	Generations    int
	MutationRate   float64
	CrossoverRate  float64
	EvalTimeLimit  time.Duration
	Parallel       bool
	Workers        int
	GAParams       genetic.Params
	Seed           int64
}

func (p Params) withDefaults() Params {
	if p.PopulationSize == 0 {
		p.PopulationSize = 20
	}
	if p.Generations == 0 {
		p.Generations = 15
	}
	if p.MutationRate == 0 {
		p.MutationRate = 0.2
	}
	if p.CrossoverRate == 0 {
		p.CrossoverRate = 0.7
	}
	if p.EvalTimeLimit == 0 {
		p.EvalTimeLimit = 10 * time.Second
	}
	return p
}

// Result is the best weight vector found, plus bookkeeping for the
// caller's response metadata.
type Result struct {
	Weights        map[string]float64
	Fitness        float64
	GenerationsRun int
}

// Run evolves a population of weight chromosomes, each scored by
// Evaluate, and returns the best one found. If no chromosome ever
// scores positive, it returns the default weights with fitness 0.1
// per spec.md §4.7's "tried but failed" fallback — never 0.0, so
// callers can distinguish "never attempted" from "attempted and
// found nothing good".
func Run(ctx context.Context, req schedule.Request, defaults map[string]float64, params Params) Result {
	params = params.withDefaults()
	seed := params.Seed
	if seed == 0 {
		seed = 7
	}
	rng := rand.New(rand.NewSource(seed))

	pop := seedPopulation(defaults, params.PopulationSize, rng)
	evaluateAll(ctx, req, pop, params)

	sortByFitness(pop)
	bestEver := pop[0].clone()
	everPositive := bestEver.Fitness > 0

	gen := 0
	for ; gen < params.Generations; gen++ {
		select {
		case <-ctx.Done():
			gen++
			goto done
		default:
		}
		pop = evolve(rng, pop, params)
		evaluateAll(ctx, req, pop, params)
		sortByFitness(pop)
		if pop[0].Fitness > bestEver.Fitness {
			bestEver = pop[0].clone()
		}
		if pop[0].Fitness > 0 {
			everPositive = true
		}
	}
done:

	if !everPositive {
		return Result{Weights: copyMap(defaults), Fitness: 0.1, GenerationsRun: gen}
	}
	return Result{Weights: bestEver.Weights, Fitness: bestEver.Fitness, GenerationsRun: gen}
}

func seedPopulation(defaults map[string]float64, size int, rng *rand.Rand) []WeightChromosome {
	pop := make([]WeightChromosome, size)
	pop[0] = WeightChromosome{Weights: copyMap(defaults)}
	for i := 1; i < size; i++ {
		w := make(map[string]float64, len(defaults))
		for k, v := range defaults {
			factor := 0.5 + rng.Float64()*1.5 // uniform in [0.5, 2.0]
			w[k] = v * factor
		}
		pop[i] = WeightChromosome{Weights: w}
	}
	return pop
}

func evaluateAll(ctx context.Context, req schedule.Request, pop []WeightChromosome, params Params) {
	if params.Parallel && len(pop) > 4 {
		scores := parallel.Scatter(ctx, pop, params.Workers, func(c WeightChromosome) (float64, error) {
			return Evaluate(ctx, req, c.Weights, params), nil
		})
		for i, s := range scores {
			if s == nil {
				pop[i].Fitness = -10000
				continue
			}
			pop[i].Fitness = *s
		}
		return
	}
	for i := range pop {
		pop[i].Fitness = Evaluate(ctx, req, pop[i].Weights, params)
	}
}

// Evaluate builds an inner genetic-only solve over req with the given
// weights installed, then scores the resulting schedule by the
// composite spec.md §4.7 formula.
func Evaluate(ctx context.Context, req schedule.Request, weights map[string]float64, params Params) (score float64) {
	defer func() {
		if r := recover(); r != nil {
			score = -10000
		}
	}()

	g, err := grid.Build(req)
	if err != nil {
		return -10000
	}
	rc := relax.NewController()
	buildCtx := constraint.NewBuildContext(g, req, rc)
	cs, m, err := constraint.Build(buildCtx)
	if err != nil {
		return -10000
	}
	objs := objective.NewDefaultSet()
	objs.ApplyWeights(weights)
	objCtx := objective.NewContext(req, g)

	gaParams := params.GAParams
	if gaParams.MaxGenerations == 0 {
		gaParams.MaxGenerations = 50
	}
	result := genetic.Run(ctx, m, g, cs, buildCtx, objs, objCtx, genetic.Options{
		Params:          gaParams,
		TimeLimit:       params.EvalTimeLimit,
		ParallelFitness: false,
	})

	if len(result.Assignments) == 0 {
		return -1000
	}

	violations := constraint.ValidateAll(cs, result.Assignments, buildCtx)

	var total float64
	total += 0.01 * result.BestFitness
	if len(violations) == 0 {
		total += 1000
	} else {
		total -= 500 * float64(len(violations))
	}
	total -= 50 * perDayVariance(result.Assignments)

	maxGen := gaParams.MaxGenerations
	if maxGen > 0 {
		total += 500 * (1 - float64(result.GenerationsRun)/float64(maxGen))
	}
	return total
}

func perDayVariance(assignments []schedule.Assignment) float64 {
	counts := make(map[string]int)
	for _, a := range assignments {
		counts[a.Date.Format("2006-01-02")]++
	}
	if len(counts) == 0 {
		return 0
	}
	var sum, sumSq float64
	for _, c := range counts {
		sum += float64(c)
		sumSq += float64(c) * float64(c)
	}
	n := float64(len(counts))
	mean := sum / n
	return sumSq/n - mean*mean
}

// evolve produces the next generation: tournament-of-3 selection,
// elitism of 1, per-key 50/50 crossover with a 20% chance of
// averaging instead, and sign-preserving multiplicative mutation.
func evolve(rng *rand.Rand, pop []WeightChromosome, params Params) []WeightChromosome {
	next := make([]WeightChromosome, 0, len(pop))
	next = append(next, pop[0].clone()) // elitism of 1

	for len(next) < len(pop) {
		a := tournament(rng, pop, 3)
		b := tournament(rng, pop, 3)
		var child WeightChromosome
		if rng.Float64() < params.CrossoverRate {
			child = crossover(rng, a, b)
		} else {
			child = a.clone()
		}
		mutate(rng, child, params.MutationRate)
		next = append(next, child)
	}
	return next
}

func tournament(rng *rand.Rand, pop []WeightChromosome, k int) WeightChromosome {
	best := pop[rng.Intn(len(pop))]
	for i := 1; i < k; i++ {
		cand := pop[rng.Intn(len(pop))]
		if cand.Fitness > best.Fitness {
			best = cand
		}
	}
	return best
}

func crossover(rng *rand.Rand, a, b WeightChromosome) WeightChromosome {
	out := make(map[string]float64, len(a.Weights))
	for k, av := range a.Weights {
		bv := b.Weights[k]
		switch {
		case rng.Float64() < 0.2:
			out[k] = (av + bv) / 2
		case rng.Float64() < 0.5:
			out[k] = av
		default:
			out[k] = bv
		}
	}
	return WeightChromosome{Weights: out}
}

func mutate(rng *rand.Rand, c WeightChromosome, rate float64) {
	for k, v := range c.Weights {
		if rng.Float64() >= rate {
			continue
		}
		factor := 0.7 + rng.Float64()*0.6 // uniform in [0.7, 1.3]
		c.Weights[k] = v * factor
	}
}

func sortByFitness(pop []WeightChromosome) {
	for i := 1; i < len(pop); i++ {
		j := i
		for j > 0 && pop[j-1].Fitness < pop[j].Fitness {
			pop[j-1], pop[j] = pop[j], pop[j-1]
			j--
		}
	}
}

func copyMap(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// RenameRequiredToPreferred renames the required_periods key to
// preferred_periods on output when the caller's weight schema
// requires the legacy key name (spec.md §4.7).
func RenameRequiredToPreferred(weights map[string]float64) map[string]float64 {
	out := copyMap(weights)
	if v, ok := out["required_periods"]; ok {
		delete(out, "required_periods")
		out["preferred_periods"] = v
	}
	return out
}
