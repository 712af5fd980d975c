package genetic

import "math/rand"

// TournamentSelect picks the fitter of k randomly sampled individuals.
func TournamentSelect(rng *rand.Rand, pop []Chromosome, k int) Chromosome {
	if k < 1 {
		k = 1
	}
	best := pop[rng.Intn(len(pop))]
	for i := 1; i < k; i++ {
		cand := pop[rng.Intn(len(pop))]
		if cand.Fitness > best.Fitness {
			best = cand
		}
	}
	return best
}
