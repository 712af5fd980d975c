package genetic

import "math/rand"

// CrossoverFunc recombines two parent gene sequences into two
// children, mirroring the descheduler reference repo's
// CrossoverFunc(parent1, parent2 []int) ([]int, []int) signature.
type CrossoverFunc func(rng *rand.Rand, p1, p2 []int) ([]int, []int)

// SinglePointCrossover splits both parents at one random point and
// swaps the tails.
func SinglePointCrossover(rng *rand.Rand, p1, p2 []int) ([]int, []int) {
	c1 := make([]int, len(p1))
	c2 := make([]int, len(p2))
	point := rng.Intn(len(p1))
	for i := range p1 {
		if i < point {
			c1[i], c2[i] = p1[i], p2[i]
		} else {
			c1[i], c2[i] = p2[i], p1[i]
		}
	}
	return c1, c2
}

// TwoPointCrossover swaps the segment between two random cut points.
func TwoPointCrossover(rng *rand.Rand, p1, p2 []int) ([]int, []int) {
	c1 := make([]int, len(p1))
	c2 := make([]int, len(p2))
	a, b := rng.Intn(len(p1)), rng.Intn(len(p1))
	if a > b {
		a, b = b, a
	}
	for i := range p1 {
		if i < a || i >= b {
			c1[i], c2[i] = p1[i], p2[i]
		} else {
			c1[i], c2[i] = p2[i], p1[i]
		}
	}
	return c1, c2
}

// UniformCrossover picks each gene independently from either parent.
func UniformCrossover(rng *rand.Rand, p1, p2 []int) ([]int, []int) {
	c1 := make([]int, len(p1))
	c2 := make([]int, len(p2))
	for i := range p1 {
		if rng.Float64() < 0.5 {
			c1[i], c2[i] = p1[i], p2[i]
		} else {
			c1[i], c2[i] = p2[i], p1[i]
		}
	}
	return c1, c2
}

// DayPreservingCrossover groups genes by the calendar day their
// current value falls on (via dayOf) and inherits each day's full
// slot choice as a unit, the scheduling analog of the reference
// repo's node-grouping NodeAwareCrossover: it avoids splitting a
// day's placements across two parents mid-day, which single/two-point
// crossover would do whenever a cut lands inside a day's class run.
func DayPreservingCrossover(dayOf func(gene int) int64) CrossoverFunc {
	return func(rng *rand.Rand, p1, p2 []int) ([]int, []int) {
		c1 := make([]int, len(p1))
		c2 := make([]int, len(p2))
		filled := make([]bool, len(p1))
		dayGroups := make(map[int64][]int)
		for i, gene := range p1 {
			if gene < 0 {
				continue
			}
			d := dayOf(gene)
			dayGroups[d] = append(dayGroups[d], i)
		}
		for _, idxs := range dayGroups {
			fromP1 := rng.Float64() < 0.5
			for _, i := range idxs {
				if fromP1 {
					c1[i], c2[i] = p1[i], p2[i]
				} else {
					c1[i], c2[i] = p2[i], p1[i]
				}
				filled[i] = true
			}
		}
		// A gene with no domain (-1) belongs to no day group; inherit
		// it directly from its parent.
		for i := range p1 {
			if !filled[i] {
				c1[i], c2[i] = p1[i], p2[i]
			}
		}
		return c1, c2
	}
}

// Operators is the fixed set of crossover operators the adaptive
// controller picks among via roulette-wheel selection on their
// recent success rate.
type Operators struct {
	names []string
	fns   map[string]CrossoverFunc
}

// NewOperators builds the standard four-operator set, parameterizing
// DayPreservingCrossover with the grid's date lookup.
func NewOperators(dayOf func(gene int) int64) *Operators {
	return &Operators{
		names: []string{"single_point", "two_point", "uniform", "order_preserving"},
		fns: map[string]CrossoverFunc{
			"single_point":     SinglePointCrossover,
			"two_point":        TwoPointCrossover,
			"uniform":          UniformCrossover,
			"order_preserving": DayPreservingCrossover(dayOf),
		},
	}
}

// Names returns the registered operator names in a fixed order.
func (o *Operators) Names() []string { return append([]string(nil), o.names...) }

// Pick selects an operator by roulette-wheel sampling over weights
// (one per name, same order as Names()); weights need not sum to 1.
func (o *Operators) Pick(rng *rand.Rand, weights map[string]float64) CrossoverFunc {
	total := 0.0
	for _, n := range o.names {
		total += weights[n]
	}
	if total <= 0 {
		return o.fns[o.names[rng.Intn(len(o.names))]]
	}
	r := rng.Float64() * total
	for _, n := range o.names {
		r -= weights[n]
		if r <= 0 {
			return o.fns[n]
		}
	}
	return o.fns[o.names[len(o.names)-1]]
}
