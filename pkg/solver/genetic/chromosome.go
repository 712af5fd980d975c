// Package genetic implements the population-based heuristic solver
// (spec.md §4.5): one gene per class, each holding a grid variable id
// drawn from that class's admissible domain, evolved by tournament
// selection, four crossover operators, and adaptive mutation.
// Crossover operators are grounded on
// pkg/framework/plugins/multiobjective/algorithms/crossovers.go from
// the descheduler reference repo (CrossoverFunc(parent1,parent2) ([]int,[]int)
// signature, one-point/two-point/uniform shapes, and the
// group-preserving NodeAwareCrossover idiom adapted into
// DayPreservingCrossover in crossover.go).
package genetic

import (
	"math/rand"

	"github.com/danfeder/schedule-engine/pkg/constraint"
	"github.com/danfeder/schedule-engine/pkg/grid"
	"github.com/danfeder/schedule-engine/pkg/schedule"
)

// Chromosome holds one gene per class, in the shared Model's
// ClassOrder: Genes[i] is the grid variable id chosen for
// ClassOrder[i]. Because the gene count always equals the class
// count, decode is a direct projection with no need to repair
// duplicate or missing classes — every chromosome, valid or not yet
// evaluated, already carries exactly one candidate slot per class.
type Chromosome struct {
	Genes   []int
	Fitness float64
	scored  bool
}

// NewRandom draws a random value from each class's domain, in model
// order.
func NewRandom(m *constraint.Model, rng *rand.Rand) Chromosome {
	genes := make([]int, len(m.ClassOrder))
	for i, classID := range m.ClassOrder {
		domain := m.ClassDomains[classID]
		if len(domain) == 0 {
			genes[i] = -1
			continue
		}
		genes[i] = domain[rng.Intn(len(domain))]
	}
	return Chromosome{Genes: genes}
}

// Clone returns a deep copy.
func (c Chromosome) Clone() Chromosome {
	genes := make([]int, len(c.Genes))
	copy(genes, c.Genes)
	return Chromosome{Genes: genes, Fitness: c.Fitness, scored: c.scored}
}

// Decode projects a chromosome to its concrete assignment list.
func Decode(c Chromosome, m *constraint.Model, g *grid.Grid) []schedule.Assignment {
	out := make([]schedule.Assignment, 0, len(c.Genes))
	for i, varID := range c.Genes {
		if varID < 0 {
			continue
		}
		classID := m.ClassOrder[i]
		v := g.Var(varID)
		out = append(out, schedule.Assignment{
			ClassID:   classID,
			Date:      timeFromRaw(v.RawDate),
			DayOfWeek: v.DayOfWeek,
			Period:    v.Period,
		})
	}
	return out
}
