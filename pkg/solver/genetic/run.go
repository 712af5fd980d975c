package genetic

import (
	"context"
	"time"

	"github.com/danfeder/schedule-engine/internal/parallel"
	"github.com/danfeder/schedule-engine/pkg/constraint"
	"github.com/danfeder/schedule-engine/pkg/grid"
	"github.com/danfeder/schedule-engine/pkg/objective"
	"github.com/danfeder/schedule-engine/pkg/schedule"
)

// Options configures a single GA Run call.
type Options struct {
	Params          Params
	TimeLimit       time.Duration
	ParallelFitness bool
	Workers         int // <=0 selects the spec.md §4.5 default (max(1, cpus-2))
}

// Result is the best chromosome found, decoded to assignments, plus
// the run accounting the unified solver's metadata needs.
type Result struct {
	Assignments    []schedule.Assignment
	BestFitness    float64
	GenerationsRun int
	DurationMS     int64
}

// Run evolves a population until any of spec.md §4.5's termination
// conditions fires: max_generations reached, wall-clock exceeded, or
// 20 consecutive generations without improvement.
func Run(ctx context.Context, m *constraint.Model, g *grid.Grid, cs []constraint.Constraint, buildCtx *constraint.BuildContext, objs *objective.Set, objCtx *objective.Context, opts Options) Result {
	start := time.Now()
	if opts.TimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.TimeLimit)
		defer cancel()
	}

	params := opts.Params.WithDefaults()
	pop := NewPopulation(m, g, params)

	scoreAll := func() {
		if opts.ParallelFitness && len(pop.individuals) > 4 {
			scores := parallel.Scatter(ctx, pop.individuals, opts.Workers, func(c Chromosome) (float64, error) {
				return Fitness(c, m, g, cs, buildCtx, objs, objCtx), nil
			})
			resolved := make([]float64, len(scores))
			for i, s := range scores {
				if s == nil {
					resolved[i] = negInf
					continue
				}
				resolved[i] = *s
			}
			pop.evaluate(resolved)
		} else {
			scores := make([]float64, len(pop.individuals))
			for i, c := range pop.individuals {
				scores[i] = Fitness(c, m, g, cs, buildCtx, objs, objCtx)
			}
			pop.evaluate(scores)
		}
	}

	scoreAll()
	pop.sortByFitness()
	pop.bestFitness = pop.individuals[0].Fitness

	gen := 0
	for ; gen < params.MaxGenerations; gen++ {
		select {
		case <-ctx.Done():
			return finish(pop, gen, start)
		default:
		}

		pop.advanceGeneration(cs, buildCtx, objs, objCtx)
		pop.sortByFitness()

		if params.UseAdaptiveControl && (gen+1)%params.AdaptationInterval == 0 {
			pop.adapt()
		}

		best := pop.individuals[0].Fitness
		if best > pop.bestFitness {
			pop.bestFitness = best
			pop.noImprove = 0
		} else {
			pop.noImprove++
		}
		if pop.noImprove >= params.NoImprovementLimit {
			gen++
			break
		}
	}

	return finish(pop, gen, start)
}

func finish(pop *Population, generations int, start time.Time) Result {
	pop.sortByFitness()
	best := pop.Best()
	return Result{
		Assignments:    Decode(best, pop.model, pop.grid),
		BestFitness:    best.Fitness,
		GenerationsRun: generations,
		DurationMS:     time.Since(start).Milliseconds(),
	}
}
