// Package evo runs the generational search that evolves fuzzy classifiers:
// stochastic mutation, fitness ranking into a bounded elite set, and
// regeneration of every non-elite individual by crossover of two elites.
package evo

import (
	"errors"
	"fmt"
	"math/rand"

	"fuzzevo/internal/classifier"
	"fuzzevo/internal/topn"
	"fuzzevo/internal/truth"
)

var ErrInvalidConfig = errors.New("invalid evolution config")

// MutateFunc changes an individual in place, drawing from the shared stream.
type MutateFunc[T truth.Value[T]] func(c *classifier.Classifier[T], rng *rand.Rand)

// FitnessFunc scores an individual against the training data.
type FitnessFunc[T truth.Value[T]] func(c *classifier.Classifier[T], training classifier.Data) float64

// StopFunc ends the search early once the best score of a generation is good
// enough.
type StopFunc func(best float64) bool

type Config struct {
	PopulationSize int
	Elites         int
	Generations    int
	Seed           int64
	// Each individual is mutated Binomial(MutationTrials, MutationProb)
	// times per generation unless Mutations overrides the count.
	MutationTrials int
	MutationProb   float64
	Mutations      MutationCounter
	Selector       Selector
	Tracer         Tracer
}

func (c Config) Validate() error {
	if c.PopulationSize <= 0 {
		return fmt.Errorf("%w: population size must be > 0", ErrInvalidConfig)
	}
	if c.Elites <= 0 || c.Elites >= c.PopulationSize {
		return fmt.Errorf("%w: elites must be in [1, population size)", ErrInvalidConfig)
	}
	if c.Generations <= 0 {
		return fmt.Errorf("%w: generations must be > 0", ErrInvalidConfig)
	}
	if c.MutationTrials < 0 {
		return fmt.Errorf("%w: mutation trials must be >= 0", ErrInvalidConfig)
	}
	if c.MutationProb < 0 || c.MutationProb > 1 {
		return fmt.Errorf("%w: mutation probability must be in [0, 1]", ErrInvalidConfig)
	}
	return nil
}

type GenerationStats struct {
	Generation     int     `json:"generation"`
	Best           float64 `json:"best"`
	Mean           float64 `json:"mean"`
	Min            float64 `json:"min"`
	BestIndex      int     `json:"best_index"`
	EliteCount     int     `json:"elite_count"`
	MeanComplexity float64 `json:"mean_complexity"`
	MeanRules      float64 `json:"mean_rules"`
	Mutations      int     `json:"mutations"`
	Diversity      int     `json:"diversity"`
}

type Result[T truth.Value[T]] struct {
	Best             *classifier.Classifier[T]
	BestFitness      float64
	BestByGeneration []float64
	Generations      []GenerationStats
	// Stopped is set when the stop function ended the search early.
	Stopped bool
}

// Evolve searches for a classifier maximizing fitness on training, starting
// from a population of copies of initial. All randomness comes from one
// stream seeded with cfg.Seed, so a run is reproducible from its seed. The
// elite set is recomputed from scratch every generation; elites are not
// shielded from mutation.
func Evolve[T truth.Value[T]](
	initial *classifier.Classifier[T],
	mutate MutateFunc[T],
	fitness FitnessFunc[T],
	stop StopFunc,
	training classifier.Data,
	cfg Config,
) (Result[T], error) {
	if err := cfg.Validate(); err != nil {
		return Result[T]{}, err
	}
	if initial == nil || initial.Interpretation() == nil {
		return Result[T]{}, fmt.Errorf("%w: initial classifier with an interpretation is required", ErrInvalidConfig)
	}
	if mutate == nil || fitness == nil {
		return Result[T]{}, fmt.Errorf("%w: mutate and fitness functions are required", ErrInvalidConfig)
	}
	if stop == nil {
		stop = NeverStop
	}
	if cfg.Selector == nil {
		cfg.Selector = EliteSelector{}
	}
	if cfg.Tracer == nil {
		cfg.Tracer = NoopTracer{}
	}
	if cfg.Mutations == nil {
		cfg.Mutations = BinomialMutations{Trials: cfg.MutationTrials, Prob: cfg.MutationProb}
	}
	if interp := initial.Interpretation(); !interp.Frozen() {
		interp.Freeze()
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	population := make([]*classifier.Classifier[T], cfg.PopulationSize)
	for i := range population {
		population[i] = initial.Clone()
	}

	result := Result[T]{
		BestByGeneration: make([]float64, 0, cfg.Generations),
		Generations:      make([]GenerationStats, 0, cfg.Generations),
	}
	scores := make([]float64, cfg.PopulationSize)
	elites := topn.NewMultimap[float64, int](cfg.Elites)

	for gen := 0; gen < cfg.Generations; gen++ {
		mutations := 0
		for i, individual := range population {
			m := cfg.Mutations.Count(rng)
			for k := 0; k < m; k++ {
				mutate(individual, rng)
			}
			mutations += m
			cfg.Tracer.OnMutation(gen, i, m)
		}

		elites.Clear()
		for i, individual := range population {
			scores[i] = fitness(individual, training)
			elites.TryInsert(scores[i], i)
		}
		bestIdx := fittest(scores)
		bestScore := scores[bestIdx]

		stats := summarizeGeneration(population, scores, gen, bestIdx, elites.Len())
		stats.Mutations = mutations
		result.BestByGeneration = append(result.BestByGeneration, bestScore)
		result.Generations = append(result.Generations, stats)
		result.Best = population[bestIdx].Clone()
		result.BestFitness = bestScore
		cfg.Tracer.OnGeneration(stats)

		if stop(bestScore) {
			result.Stopped = true
			break
		}

		eliteIndexes := topn.ValueSet(elites)
		isElite := make(map[int]struct{}, len(eliteIndexes))
		for _, idx := range eliteIndexes {
			isElite[idx] = struct{}{}
		}
		for i := range population {
			if _, ok := isElite[i]; ok {
				continue
			}
			a, b := cfg.Selector.PickParents(rng, eliteIndexes)
			population[i] = classifier.Crossover(population[a], population[b], rng)
		}
	}
	return result, nil
}

// fittest returns the lowest index holding the highest score.
func fittest(scores []float64) int {
	best := 0
	for i, s := range scores {
		if s > scores[best] {
			best = i
		}
	}
	return best
}

func summarizeGeneration[T truth.Value[T]](population []*classifier.Classifier[T], scores []float64, generation, bestIdx, eliteCount int) GenerationStats {
	total := 0.0
	minScore := scores[0]
	complexity := 0
	rules := 0
	hashes := make(map[uint64]struct{}, len(population))
	for i, individual := range population {
		total += scores[i]
		minScore = min(minScore, scores[i])
		complexity += individual.Complexity()
		rules += individual.Size()
		hashes[individual.Hash()] = struct{}{}
	}
	n := float64(len(population))
	return GenerationStats{
		Generation:     generation,
		Best:           scores[bestIdx],
		Mean:           total / n,
		Min:            minScore,
		BestIndex:      bestIdx,
		EliteCount:     eliteCount,
		MeanComplexity: float64(complexity) / n,
		MeanRules:      float64(rules) / n,
		Diversity:      len(hashes),
	}
}

// NeverStop runs every generation.
func NeverStop(float64) bool { return false }

// StopAtFitness stops once the best score reaches goal.
func StopAtFitness(goal float64) StopFunc {
	return func(best float64) bool {
		return best >= goal
	}
}
