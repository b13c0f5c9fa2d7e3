// Package trial repeats an evolutionary search over independent seeds and
// compares the evolved classifiers with the seed classifier on held-out data.
package trial

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"fuzzevo/internal/classifier"
	"fuzzevo/internal/evo"
	"fuzzevo/internal/stats"
	"fuzzevo/internal/truth"
)

var ErrInvalidExperiment = errors.New("invalid experiment")

// Experiment describes a batch of independent searches starting from the same
// seed classifier.
type Experiment[T truth.Value[T]] struct {
	Seed     *classifier.Classifier[T]
	Mutate   evo.MutateFunc[T]
	Fitness  evo.FitnessFunc[T]
	Stop     evo.StopFunc
	Training classifier.Data
	Test     classifier.Data
	// Category is the positive class of the reported TSS.
	Category   int
	Trials     int
	Workers    int
	MasterSeed int64
	// Evolve is the per-trial search config; its Seed and Tracer are
	// replaced for every trial.
	Evolve    evo.Config
	TracerFor func(trial int) evo.Tracer
	// TrialHook is called when a trial starts; the returned function is
	// called when it ends.
	TrialHook func(trial int) func()
}

type TrialResult struct {
	Trial         int                   `json:"trial"`
	Seed          int64                 `json:"seed"`
	BestFitness   float64               `json:"best_fitness"`
	Generations   int                   `json:"generations"`
	Stopped       bool                  `json:"stopped"`
	TestTSSBefore float64               `json:"test_tss_before"`
	TestTSSAfter  float64               `json:"test_tss_after"`
	TrainTSS      float64               `json:"train_tss"`
	Improvement   float64               `json:"improvement"`
	Signature     evo.Signature         `json:"signature"`
	History       []float64             `json:"history"`
	Diagnostics   []evo.GenerationStats `json:"diagnostics"`
	Elapsed       time.Duration         `json:"elapsed"`
	// Rules is the formatted best classifier, for display only.
	Rules string `json:"-"`
}

type Report struct {
	Logic           string        `json:"logic"`
	Trials          []TrialResult `json:"trials"`
	MeanTSSBefore   float64       `json:"mean_tss_before"`
	MeanTSSAfter    float64       `json:"mean_tss_after"`
	MeanImprovement float64       `json:"mean_improvement"`
	// ModeFrequency is the share of trials whose best classifier equals the
	// most common one.
	ModeFrequency   float64       `json:"mode_frequency"`
	ModeFingerprint string        `json:"mode_fingerprint"`
	ModeRules       string        `json:"-"`
	Elapsed         time.Duration `json:"elapsed"`
}

func (e Experiment[T]) validate() error {
	switch {
	case e.Seed == nil || e.Seed.Interpretation() == nil:
		return fmt.Errorf("%w: seed classifier is required", ErrInvalidExperiment)
	case e.Mutate == nil || e.Fitness == nil:
		return fmt.Errorf("%w: mutate and fitness are required", ErrInvalidExperiment)
	case e.Training == nil || e.Test == nil:
		return fmt.Errorf("%w: training and test data are required", ErrInvalidExperiment)
	case e.Trials <= 0:
		return fmt.Errorf("%w: trials must be > 0", ErrInvalidExperiment)
	case e.Category < 0 || e.Category >= e.Seed.Interpretation().NumCategories():
		return fmt.Errorf("%w: category %d out of range", ErrInvalidExperiment, e.Category)
	}
	return e.Evolve.Validate()
}

// Run executes every trial, at most Workers at a time, and aggregates the
// results. Trial seeds are drawn from one stream seeded with MasterSeed, so the
// report depends only on the experiment, never on scheduling.
func Run[T truth.Value[T]](ctx context.Context, exp Experiment[T]) (Report, error) {
	if err := exp.validate(); err != nil {
		return Report{}, err
	}
	if interp := exp.Seed.Interpretation(); !interp.Frozen() {
		interp.Freeze()
	}
	workers := exp.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	userStop := exp.Stop
	if userStop == nil {
		userStop = evo.NeverStop
	}

	master := rand.New(rand.NewSource(exp.MasterSeed))
	seeds := make([]int64, exp.Trials)
	for i := range seeds {
		seeds[i] = master.Int63()
	}

	start := time.Now()
	before := exp.Seed.EvaluateAll(exp.Test).TSS(exp.Category)
	results := make([]TrialResult, exp.Trials)
	bests := make([]*classifier.Classifier[T], exp.Trials)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range seeds {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if exp.TrialHook != nil {
				defer exp.TrialHook(i)()
			}
			trialStart := time.Now()
			cfg := exp.Evolve
			cfg.Seed = seeds[i]
			cfg.Tracer = nil
			if exp.TracerFor != nil {
				cfg.Tracer = exp.TracerFor(i)
			}
			stop := func(best float64) bool {
				return gctx.Err() != nil || userStop(best)
			}
			res, err := evo.Evolve(exp.Seed.Clone(), exp.Mutate, exp.Fitness, stop, exp.Training, cfg)
			if err != nil {
				return fmt.Errorf("trial %d: %w", i, err)
			}
			if err := gctx.Err(); err != nil {
				return err
			}
			after := res.Best.EvaluateAll(exp.Test).TSS(exp.Category)
			bests[i] = res.Best
			results[i] = TrialResult{
				Trial:         i,
				Seed:          seeds[i],
				BestFitness:   res.BestFitness,
				Generations:   len(res.BestByGeneration),
				Stopped:       res.Stopped,
				TestTSSBefore: before,
				TestTSSAfter:  after,
				TrainTSS:      res.Best.EvaluateAll(exp.Training).TSS(exp.Category),
				Improvement:   after - before,
				Signature:     evo.ComputeSignature(res.Best),
				History:       res.BestByGeneration,
				Diagnostics:   res.Generations,
				Elapsed:       time.Since(trialStart),
				Rules:         res.Best.String(),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	report := summarize(results)
	mode, count := modeOf(bests)
	report.ModeFrequency = float64(count) / float64(len(bests))
	report.ModeFingerprint = results[mode].Signature.Fingerprint
	report.ModeRules = results[mode].Rules
	report.Elapsed = time.Since(start)
	return report, nil
}

func summarize(results []TrialResult) Report {
	before := make([]float64, len(results))
	after := make([]float64, len(results))
	deltas := make([]float64, len(results))
	for i, r := range results {
		before[i] = r.TestTSSBefore
		after[i] = r.TestTSSAfter
		deltas[i] = r.Improvement
	}
	return Report{
		Trials:          results,
		MeanTSSBefore:   stats.Mean(before),
		MeanTSSAfter:    stats.Mean(after),
		MeanImprovement: stats.Mean(deltas),
	}
}

// modeOf returns the index of the first occurrence of the most common
// classifier and its multiplicity.
func modeOf[T truth.Value[T]](xs []*classifier.Classifier[T]) (int, int) {
	byHash := make(map[uint64][]int, len(xs))
	counts := make([]int, len(xs))
	best, bestCount := 0, 0
	for i, x := range xs {
		h := x.Hash()
		rep := -1
		for _, j := range byHash[h] {
			if xs[j].Equal(x) {
				rep = j
				break
			}
		}
		if rep < 0 {
			byHash[h] = append(byHash[h], i)
			rep = i
		}
		counts[rep]++
		if counts[rep] > bestCount {
			best, bestCount = rep, counts[rep]
		}
	}
	return best, bestCount
}
