package evo

import "math/rand"

// Selector picks the two parents of an offspring among the elite population
// indexes.
type Selector interface {
	Name() string
	PickParents(rng *rand.Rand, elites []int) (int, int)
}

// EliteSelector draws two distinct elites uniformly without replacement. With
// a single elite both parents are that elite.
type EliteSelector struct{}

func (EliteSelector) Name() string {
	return "elite"
}

func (EliteSelector) PickParents(rng *rand.Rand, elites []int) (int, int) {
	if len(elites) == 1 {
		return elites[0], elites[0]
	}
	a := rng.Intn(len(elites))
	b := rng.Intn(len(elites) - 1)
	if b >= a {
		b++
	}
	return elites[a], elites[b]
}
