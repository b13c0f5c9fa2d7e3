package evo

import (
	"fuzzevo/internal/classifier"
	"fuzzevo/internal/stats"
	"fuzzevo/internal/truth"
)

// Metric reduces a confusion matrix to a skill score.
type Metric func(*stats.Confusion) float64

// TSSMetric is the true skill statistic with category as the positive class.
func TSSMetric(category int) Metric {
	return func(c *stats.Confusion) float64 {
		return c.TSS(category)
	}
}

func AccuracyMetric(c *stats.Confusion) float64 {
	return c.Accuracy()
}

// Fitness scores a classifier by metric over its predictions, then applies
// the complexity penalty.
func Fitness[T truth.Value[T]](metric Metric, penalty ComplexityPenalty) FitnessFunc[T] {
	if penalty == nil {
		penalty = NoPenalty{}
	}
	return func(c *classifier.Classifier[T], training classifier.Data) float64 {
		return penalty.Apply(metric(c.EvaluateAll(training)), c.Complexity())
	}
}

// TSSFitness is TSS(category) − alpha·complexity.
func TSSFitness[T truth.Value[T]](category int, alpha float64) FitnessFunc[T] {
	return Fitness[T](TSSMetric(category), LinearPenalty{Alpha: alpha})
}

// AccuracyFitness is accuracy − alpha·complexity.
func AccuracyFitness[T truth.Value[T]](alpha float64) FitnessFunc[T] {
	return Fitness[T](AccuracyMetric, LinearPenalty{Alpha: alpha})
}
