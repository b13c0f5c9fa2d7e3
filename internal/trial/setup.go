package trial

import (
	"context"
	"fmt"
	"slices"

	"fuzzevo/internal/classifier"
	"fuzzevo/internal/dataset"
	"fuzzevo/internal/evo"
	"fuzzevo/internal/fuzzy"
	"fuzzevo/internal/truth"
)

// BuildInterpretation partitions every input of ds over its observed range.
// The seed input gets one fuzzy set per category, the others nsets each.
// The returned interpretation is not frozen.
func BuildInterpretation(ds *dataset.Dataset, seedInput string, nsets int) (*fuzzy.Interpretation, uint32, error) {
	if len(ds.InputNames) == 0 {
		return nil, 0, fmt.Errorf("%w: dataset has no inputs", ErrInvalidExperiment)
	}
	if len(ds.Categories) < 2 {
		return nil, 0, fmt.Errorf("%w: at least two categories are required, got %d", ErrInvalidExperiment, len(ds.Categories))
	}
	if nsets < 2 {
		return nil, 0, fmt.Errorf("%w: nsets must be >= 2", ErrInvalidExperiment)
	}
	seed := 0
	if seedInput != "" {
		seed = slices.Index(ds.InputNames, seedInput)
		if seed < 0 {
			return nil, 0, fmt.Errorf("%w: %s", dataset.ErrUnknownColumn, seedInput)
		}
	}

	interp := fuzzy.NewInterpretation(ds.Categories)
	for i, r := range ds.Ranges() {
		n := nsets
		if i == seed {
			n = len(ds.Categories)
		}
		interp.AddTriangularPartition(ds.InputNames[i], n, r.Min, r.Max)
	}
	return interp, uint32(seed), nil
}

// SeedRules maps fuzzy set c of the seed input to category c. The same
// antecedents are returned as the protected set.
func SeedRules(interp *fuzzy.Interpretation, seedVar uint32) ([]classifier.Rule, evo.Protected) {
	n := min(interp.NumPartitions(seedVar), interp.NumCategories())
	rules := make([]classifier.Rule, 0, n)
	protected := make(evo.Protected, 0, n)
	for c := 0; c < n; c++ {
		a := classifier.NewAntecedent(classifier.Condition{Var: seedVar, Set: uint32(c)})
		rules = append(rules, classifier.Rule{Antecedent: a, Category: uint32(c)})
		protected = append(protected, a)
	}
	return rules, protected
}

// Setup is the logic-independent form of an Experiment.
type Setup struct {
	Interpretation *fuzzy.Interpretation
	SeedRules      []classifier.Rule
	Protected      evo.Protected
	Operators      map[string]float64
	MaxConditions  int
	Penalty        evo.ComplexityPenalty
	Category       int
	// Goal stops a trial once its best fitness reaches it; zero never stops.
	Goal       float64
	Training   classifier.Data
	Test       classifier.Data
	Trials     int
	Workers    int
	MasterSeed int64
	Evolve     evo.Config
	// Observer is told about every applied mutation operator.
	Observer  func(operator string, changed bool)
	TracerFor func(trial int) evo.Tracer
	TrialHook func(trial int) func()
}

// RunForLogic runs the experiment with classifiers over the named logic.
func RunForLogic(ctx context.Context, logic truth.Logic, setup Setup) (Report, error) {
	var (
		report Report
		err    error
	)
	switch logic {
	case truth.Lukasiewicz:
		report, err = runSetup[truth.LukasiewiczValue](ctx, setup)
	case truth.Godel:
		report, err = runSetup[truth.GodelValue](ctx, setup)
	case truth.Product:
		report, err = runSetup[truth.ProductValue](ctx, setup)
	default:
		return Report{}, fmt.Errorf("%w: %s", truth.ErrUnknownLogic, logic)
	}
	if err != nil {
		return Report{}, err
	}
	report.Logic = logic.String()
	return report, nil
}

func runSetup[T truth.Value[T]](ctx context.Context, s Setup) (Report, error) {
	if s.Interpretation == nil {
		return Report{}, fmt.Errorf("%w: interpretation is required", ErrInvalidExperiment)
	}
	weights := s.Operators
	if len(weights) == 0 {
		weights = evo.DefaultOperatorWeights()
	}
	policy, err := evo.PolicyFromWeights[T](weights, evo.OperatorOptions{
		MaxConditions: s.MaxConditions,
		Protected:     s.Protected,
	})
	if err != nil {
		return Report{}, err
	}
	policy.Observer = s.Observer

	stop := evo.NeverStop
	if s.Goal > 0 {
		stop = evo.StopAtFitness(s.Goal)
	}
	return Run(ctx, Experiment[T]{
		Seed:       classifier.New[T](s.Interpretation, s.SeedRules...),
		Mutate:     policy.Mutate,
		Fitness:    evo.Fitness[T](evo.TSSMetric(s.Category), s.Penalty),
		Stop:       stop,
		Training:   s.Training,
		Test:       s.Test,
		Category:   s.Category,
		Trials:     s.Trials,
		Workers:    s.Workers,
		MasterSeed: s.MasterSeed,
		Evolve:     s.Evolve,
		TracerFor:  s.TracerFor,
		TrialHook:  s.TrialHook,
	})
}
