package genetic

import (
	"math/rand"

	"github.com/danfeder/schedule-engine/pkg/constraint"
	"github.com/danfeder/schedule-engine/pkg/grid"
	"github.com/danfeder/schedule-engine/pkg/objective"
)

// Params configures a Population run. Zero-value fields fall back to
// the spec.md §4.5 defaults via WithDefaults.
type Params struct {
	Size               int
	EliteSize          int
	MutationRate       float64
	CrossoverRate      float64
	MaxGenerations     int
	AdaptationInterval int
	DiversityThreshold float64
	AdaptationStrength float64
	MinMutationRate    float64
	MaxMutationRate    float64
	MinCrossoverRate   float64
	MaxCrossoverRate   float64
	UseAdaptiveControl bool
	TournamentSize     int
	NoImprovementLimit int
	Seed               int64
}

// WithDefaults fills unset (zero) fields with the spec.md §4.5
// defaults.
func (p Params) WithDefaults() Params {
	if p.Size == 0 {
		p.Size = 100
	}
	if p.EliteSize == 0 {
		p.EliteSize = 5
	}
	if p.MutationRate == 0 {
		p.MutationRate = 0.1
	}
	if p.CrossoverRate == 0 {
		p.CrossoverRate = 0.8
	}
	if p.MaxGenerations == 0 {
		p.MaxGenerations = 200
	}
	if p.AdaptationInterval == 0 {
		p.AdaptationInterval = 5
	}
	if p.DiversityThreshold == 0 {
		p.DiversityThreshold = 0.1
	}
	if p.AdaptationStrength == 0 {
		p.AdaptationStrength = 0.2
	}
	if p.MaxMutationRate == 0 {
		p.MaxMutationRate = 0.5
	}
	if p.MaxCrossoverRate == 0 {
		p.MaxCrossoverRate = 0.95
	}
	if p.MinCrossoverRate == 0 {
		p.MinCrossoverRate = 0.5
	}
	if p.TournamentSize == 0 {
		p.TournamentSize = 3
	}
	if p.NoImprovementLimit == 0 {
		p.NoImprovementLimit = 20
	}
	return p
}

// Population owns the fixed-size population vector (spec.md §9
// Ownership) and the adaptive controller's rolling windows. One
// Population is created per solve and discarded when it returns.
type Population struct {
	params Params
	rng    *rand.Rand

	model *constraint.Model
	grid  *grid.Grid
	ops   *Operators

	individuals []Chromosome

	mutationRate  float64
	crossoverRate float64

	diversityWindow []float64
	bestFitWindow   []float64

	opUse    map[string]int
	opWins   map[string]float64
	opWeight map[string]float64

	noImprove   int
	bestFitness float64
}

// NewPopulation seeds a random initial population and the adaptive
// controller's starting rates.
func NewPopulation(m *constraint.Model, g *grid.Grid, params Params) *Population {
	params = params.WithDefaults()
	seed := params.Seed
	if seed == 0 {
		seed = 1
	}
	rng := rand.New(rand.NewSource(seed))

	ops := NewOperators(func(gene int) int64 { return g.Var(gene).RawDate })

	individuals := make([]Chromosome, params.Size)
	for i := range individuals {
		individuals[i] = NewRandom(m, rng)
	}

	weights := make(map[string]float64, len(ops.Names()))
	for _, n := range ops.Names() {
		weights[n] = 1.0
	}

	return &Population{
		params:        params,
		rng:           rng,
		model:         m,
		grid:          g,
		ops:           ops,
		individuals:   individuals,
		mutationRate:  params.MutationRate,
		crossoverRate: params.CrossoverRate,
		opUse:         make(map[string]int, len(ops.Names())),
		opWins:        make(map[string]float64, len(ops.Names())),
		opWeight:      weights,
		bestFitness:   negInf,
	}
}

// evaluate stores precomputed scores, one per individual in order;
// Run computes them, scattering across a worker pool when parallel
// fitness is enabled (see parallel.Scatter).
func (p *Population) evaluate(scores []float64) {
	for i := range p.individuals {
		p.individuals[i].Fitness = scores[i]
		p.individuals[i].scored = true
	}
}

// sortByFitness orders the population descending by fitness.
func (p *Population) sortByFitness() {
	sortChromosomes(p.individuals)
}

func sortChromosomes(pop []Chromosome) {
	// insertion sort is fine at population sizes in the low hundreds
	// and keeps the adaptive-controller logic simple to follow.
	for i := 1; i < len(pop); i++ {
		j := i
		for j > 0 && pop[j-1].Fitness < pop[j].Fitness {
			pop[j-1], pop[j] = pop[j], pop[j-1]
			j--
		}
	}
}

// Best returns the highest-fitness individual currently held.
func (p *Population) Best() Chromosome { return p.individuals[0] }

// Diversity computes the average pairwise normalized Hamming distance
// over the genes, counting a gene as "different" if any of its value
// differs (spec.md §4.5 "Diversity metric").
func (p *Population) Diversity() float64 {
	n := len(p.individuals)
	if n < 2 {
		return 0
	}
	geneLen := len(p.individuals[0].Genes)
	if geneLen == 0 {
		return 0
	}
	var totalDist float64
	var pairs int
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			diff := 0
			for k := 0; k < geneLen; k++ {
				if p.individuals[i].Genes[k] != p.individuals[j].Genes[k] {
					diff++
				}
			}
			totalDist += float64(diff) / float64(geneLen)
			pairs++
		}
	}
	return totalDist / float64(pairs)
}

// advanceGeneration produces the next generation in-place: elites
// carried unchanged, the remainder filled by crossover+mutation or
// clone+mutation, invalid offspring discarded and replaced by clones
// of random survivors so the population size stays constant.
func (p *Population) advanceGeneration(cs []constraint.Constraint, buildCtx *constraint.BuildContext, objs *objective.Set, objCtx *objective.Context) {
	p.sortByFitness()
	next := make([]Chromosome, 0, p.params.Size)
	elite := p.params.EliteSize
	if elite > len(p.individuals) {
		elite = len(p.individuals)
	}
	next = append(next, p.individuals[:elite]...)

	prevBest := p.individuals[0].Fitness

	for len(next) < p.params.Size {
		if p.rng.Float64() < p.crossoverRate {
			parentA := TournamentSelect(p.rng, p.individuals, p.params.TournamentSize)
			parentB := TournamentSelect(p.rng, p.individuals, p.params.TournamentSize)
			opName := p.selectOperatorName()
			fn := p.ops.fns[opName]
			g1, g2 := fn(p.rng, parentA.Genes, parentB.Genes)
			c1 := Mutate(p.rng, Chromosome{Genes: g1}, p.model, p.mutationRate)
			c2 := Mutate(p.rng, Chromosome{Genes: g2}, p.model, p.mutationRate)
			p.opUse[opName]++
			for _, c := range []Chromosome{c1, c2} {
				if !Valid(c, p.model, p.grid) {
					continue
				}
				c.Fitness = Fitness(c, p.model, p.grid, cs, buildCtx, objs, objCtx)
				c.scored = true
				if c.Fitness > prevBest {
					p.opWins[opName]++
				}
				if len(next) < p.params.Size {
					next = append(next, c)
				}
			}
		} else {
			parent := TournamentSelect(p.rng, p.individuals, p.params.TournamentSize)
			child := Mutate(p.rng, parent, p.model, p.mutationRate)
			if Valid(child, p.model, p.grid) {
				child.Fitness = Fitness(child, p.model, p.grid, cs, buildCtx, objs, objCtx)
				child.scored = true
				next = append(next, child)
			}
		}
		// A long run of discarded-invalid offspring must not spin
		// forever: fall back to cloning a random member of the
		// current population.
		if len(next) < p.params.Size && p.rng.Intn(50) == 0 {
			survivors := len(p.individuals)
			next = append(next, p.individuals[p.rng.Intn(survivors)].Clone())
		}
	}
	if len(next) > p.params.Size {
		next = next[:p.params.Size]
	}
	p.individuals = next
}

func (p *Population) selectOperatorName() string {
	total := 0.0
	for _, n := range p.ops.Names() {
		total += p.opWeight[n]
	}
	if total <= 0 {
		return p.ops.names[p.rng.Intn(len(p.ops.names))]
	}
	r := p.rng.Float64() * total
	for _, n := range p.ops.Names() {
		r -= p.opWeight[n]
		if r <= 0 {
			return n
		}
	}
	return p.ops.names[len(p.ops.names)-1]
}

// updateOperatorWeights recomputes each operator's roulette weight
// from its observed (wins / uses) ratio, clamped to [0.1, 5.0], per
// spec.md §4.5's "updated every 5 generations" rule. Called by the
// caller's generation loop on the adaptation cadence.
func (p *Population) updateOperatorWeights() {
	for _, n := range p.ops.Names() {
		uses := p.opUse[n]
		if uses == 0 {
			continue
		}
		ratio := p.opWins[n] / float64(uses)
		if ratio < 0.1 {
			ratio = 0.1
		}
		if ratio > 5.0 {
			ratio = 5.0
		}
		p.opWeight[n] = ratio
	}
	p.opUse = make(map[string]int, len(p.ops.Names()))
	p.opWins = make(map[string]float64, len(p.ops.Names()))
}

// adapt implements the adaptive mutation/crossover controller
// (spec.md §4.5 "Adaptive controller"): rolling windows of diversity
// and best fitness feed a trend-aware mutation-rate update and a
// convergence-aware crossover-rate update.
func (p *Population) adapt() {
	diversity := p.Diversity()
	best := p.individuals[0].Fitness

	p.diversityWindow = pushWindow(p.diversityWindow, diversity, 5)
	p.bestFitWindow = pushWindow(p.bestFitWindow, best, 5)

	trend := clampF(linearTrend(p.diversityWindow), -1, 1)
	convergence := clampF(averageRelativeImprovement(p.bestFitWindow), 0, 1)

	threshold := p.params.DiversityThreshold
	base := p.params.MutationRate
	newMutation := base
	if diversity < threshold && threshold > 0 {
		newMutation = base + (threshold-diversity)/threshold*p.params.AdaptationStrength
	} else {
		newMutation = base + (p.mutationRate-base)*0.5 // decay toward base
	}
	if trend < -0.2 {
		newMutation += (-trend - 0.2) * p.params.AdaptationStrength
	}
	minMut := p.params.MinMutationRate
	maxMut := p.params.MaxMutationRate
	p.mutationRate = clampF(newMutation, minMut, maxMut)

	newCrossover := p.crossoverRate
	switch {
	case convergence > 0.5 && diversity > threshold:
		newCrossover = p.crossoverRate + (p.params.MaxCrossoverRate-p.crossoverRate)*0.3
	case convergence < 0.2 && diversity < threshold:
		newCrossover = p.crossoverRate - (p.crossoverRate-p.params.MinCrossoverRate)*0.3
	default:
		newCrossover = p.crossoverRate + (p.params.CrossoverRate-p.crossoverRate)*0.3
	}
	p.crossoverRate = clampF(newCrossover, p.params.MinCrossoverRate, p.params.MaxCrossoverRate)

	p.updateOperatorWeights()
}

func pushWindow(w []float64, v float64, size int) []float64 {
	w = append(w, v)
	if len(w) > size {
		w = w[len(w)-size:]
	}
	return w
}

// linearTrend returns the normalized slope of a simple linear
// regression over w (x = 0..len-1), scaled so a monotone run across
// the window's own range maps to roughly [-1, 1].
func linearTrend(w []float64) float64 {
	n := len(w)
	if n < 2 {
		return 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range w {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	slope := (fn*sumXY - sumX*sumY) / denom
	spread := maxF(w) - minF(w)
	if spread == 0 {
		return 0
	}
	return slope * float64(n-1) / spread
}

// averageRelativeImprovement averages the per-step relative fitness
// improvement across the window.
func averageRelativeImprovement(w []float64) float64 {
	if len(w) < 2 {
		return 0
	}
	var total float64
	var steps int
	for i := 1; i < len(w); i++ {
		prev := w[i-1]
		if prev == 0 {
			continue
		}
		total += (w[i] - prev) / absFloat(prev)
		steps++
	}
	if steps == 0 {
		return 0
	}
	return total / float64(steps)
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxF(w []float64) float64 {
	m := w[0]
	for _, v := range w[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minF(w []float64) float64 {
	m := w[0]
	for _, v := range w[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
