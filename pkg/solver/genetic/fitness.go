package genetic

import (
	"github.com/danfeder/schedule-engine/pkg/constraint"
	"github.com/danfeder/schedule-engine/pkg/grid"
	"github.com/danfeder/schedule-engine/pkg/objective"
)

// severityPenalty assigns a large per-violation penalty so the
// search always prefers a feasible chromosome over an infeasible one
// scored higher on soft objectives alone, while still ranking
// infeasible chromosomes against each other by violation count.
var severityPenalty = map[constraint.Severity]float64{
	constraint.SeverityCritical: 1_000_000,
	constraint.SeverityError:    100_000,
	constraint.SeverityWarning:  10_000,
	constraint.SeverityInfo:     1_000,
}

// Fitness scores a chromosome: the shared objective set's score minus
// a steep penalty per hard-constraint violation found by Validate.
// Fitness-evaluation errors never propagate — a chromosome that can't
// be scored (e.g. an unset gene) gets negative infinity and is
// naturally selected against, not dropped from the population.
func Fitness(c Chromosome, m *constraint.Model, g *grid.Grid, cs []constraint.Constraint, buildCtx *constraint.BuildContext, objs *objective.Set, objCtx *objective.Context) float64 {
	for _, gene := range c.Genes {
		if gene < 0 {
			return negInf
		}
	}
	assignments := Decode(c, m, g)
	score := objs.Score(assignments, objCtx)

	violations := constraint.ValidateAll(cs, assignments, buildCtx)
	for _, v := range violations {
		score -= severityPenalty[v.Severity]
	}
	return score
}

const negInf = -1e18
