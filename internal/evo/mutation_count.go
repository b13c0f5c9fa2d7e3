package evo

import "math/rand"

// MutationCounter decides how many times an individual is mutated in one
// generation.
type MutationCounter interface {
	Name() string
	Count(rng *rand.Rand) int
}

// BinomialMutations draws the count from Binomial(Trials, Prob) as Trials
// Bernoulli draws on the shared stream.
type BinomialMutations struct {
	Trials int
	Prob   float64
}

func (BinomialMutations) Name() string {
	return "binomial"
}

func (p BinomialMutations) Count(rng *rand.Rand) int {
	return binomial(rng, p.Trials, p.Prob)
}

// ConstMutations always applies N mutations and draws nothing.
type ConstMutations struct {
	N int
}

func (ConstMutations) Name() string {
	return "const"
}

func (p ConstMutations) Count(*rand.Rand) int {
	return max(p.N, 0)
}

func binomial(rng *rand.Rand, n int, p float64) int {
	k := 0
	for i := 0; i < n; i++ {
		if rng.Float64() < p {
			k++
		}
	}
	return k
}
