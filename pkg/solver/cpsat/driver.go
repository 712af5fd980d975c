// Package cpsat implements the exact branch-and-bound driver
// (spec.md §4.4): a depth-first search over per-class domains that
// maximizes the shared objective.Set subject to the shared
// constraint.Model, with incumbent tracking and admissible-bound
// pruning. Grounded on pkg/minikanren/optimize.go's
// SolveOptimalWithOptions, adapted from FD-variable/value branching to
// class/slot branching and from minimize to maximize; the search
// itself is a recursive depth-first descent, one level per class.
package cpsat

import (
	"context"
	"sort"
	"time"

	"github.com/danfeder/schedule-engine/internal/obslog"
	"github.com/danfeder/schedule-engine/internal/parallel"
	"github.com/danfeder/schedule-engine/pkg/constraint"
	"github.com/danfeder/schedule-engine/pkg/grid"
	"github.com/danfeder/schedule-engine/pkg/objective"
	"github.com/danfeder/schedule-engine/pkg/schedule"
)

// Options configures a single Solve call.
type Options struct {
	TimeBudget time.Duration
	Workers    int // multi-start parallelism; <=1 runs a single sequential search
}

// Result is the extracted best feasible assignment set plus the
// metadata fields spec.md §4.4 requires the caller compute.
type Result struct {
	Assignments    []schedule.Assignment
	Score          float64
	Bound          float64
	SolutionsFound int
	DurationMS     int64
	Optimal        bool
}

// Solve runs the branch-and-bound search and returns the best feasible
// assignment set found within the time budget. Returns
// *schedule.NoSolutionError if the search exhausts without ever
// recording a feasible leaf.
func Solve(ctx context.Context, req schedule.Request, g *grid.Grid, cs []constraint.Constraint, m *constraint.Model, objs *objective.Set, opts Options) (*Result, error) {
	start := time.Now()
	if opts.TimeBudget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.TimeBudget)
		defer cancel()
	}

	objCtx := objective.NewContext(req, g)

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	searches := buildSearches(m, workers)
	var pool *parallel.WorkerPool
	if workers > 1 {
		pool = parallel.NewWorkerPool(workers)
		defer pool.Shutdown()
	}

	results := parallel.EvaluateAll(ctx, pool, searches, func(ctx context.Context, order []string) (*searchOutcome, error) {
		s := newSearch(g, m, objs, objCtx, order)
		return s.run(ctx)
	})

	best := mergeBest(results)
	elapsed := time.Since(start)
	if best == nil {
		return nil, &schedule.NoSolutionError{Reason: "branch-and-bound found no feasible assignment within the time budget"}
	}

	assignments := toAssignments(g, req, best.bestVars)
	obslog.L().Debugw("cpsat search complete",
		"duration_ms", elapsed.Milliseconds(),
		"score", best.bestScore,
		"solutions_found", best.solutionsFound,
		"optimal", best.optimal,
	)

	return &Result{
		Assignments:    assignments,
		Score:          best.bestScore,
		Bound:          best.bestBound,
		SolutionsFound: best.solutionsFound,
		DurationMS:     elapsed.Milliseconds(),
		Optimal:        best.optimal,
	}, nil
}

// buildSearches produces `workers` distinct class-branching orders:
// the first is the first-fail order (fewest domain options first, per
// spec.md §4.4's decision strategy), the rest are rotations of it to
// diversify the multi-start search.
func buildSearches(m *constraint.Model, workers int) [][]string {
	base := append([]string(nil), m.ClassOrder...)
	sort.SliceStable(base, func(i, j int) bool {
		return len(m.ClassDomains[base[i]]) < len(m.ClassDomains[base[j]])
	})

	out := make([][]string, 0, workers)
	out = append(out, base)
	for w := 1; w < workers && w < len(base)+1; w++ {
		rotated := append(append([]string(nil), base[w:]...), base[:w]...)
		out = append(out, rotated)
	}
	for len(out) < workers {
		out = append(out, base)
	}
	return out
}

func mergeBest(results []parallel.Result[*searchOutcome]) *searchOutcome {
	var best *searchOutcome
	for _, r := range results {
		if r.Err != nil || r.Value == nil || !r.Value.haveIncumbent {
			continue
		}
		if best == nil || r.Value.bestScore > best.bestScore {
			best = r.Value
		}
	}
	return best
}

func toAssignments(g *grid.Grid, req schedule.Request, byClass map[string]int) []schedule.Assignment {
	out := make([]schedule.Assignment, 0, len(byClass))
	for _, c := range req.Classes {
		id, ok := byClass[c.ID]
		if !ok {
			continue
		}
		v := g.Var(id)
		out = append(out, schedule.Assignment{
			ClassID:   c.ID,
			Date:      time.Unix(v.RawDate, 0).UTC(),
			DayOfWeek: v.DayOfWeek,
			Period:    v.Period,
		})
	}
	return out
}
