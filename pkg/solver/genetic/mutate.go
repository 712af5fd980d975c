package genetic

import (
	"math/rand"

	"github.com/danfeder/schedule-engine/pkg/constraint"
)

// Mutate reassigns each gene to a different value from its class's
// domain with probability rate.
func Mutate(rng *rand.Rand, c Chromosome, m *constraint.Model, rate float64) Chromosome {
	out := c.Clone()
	out.scored = false
	for i, classID := range m.ClassOrder {
		if rng.Float64() >= rate {
			continue
		}
		domain := m.ClassDomains[classID]
		if len(domain) <= 1 {
			continue
		}
		next := domain[rng.Intn(len(domain))]
		for next == out.Genes[i] && len(domain) > 1 {
			next = domain[rng.Intn(len(domain))]
		}
		out.Genes[i] = next
	}
	return out
}
