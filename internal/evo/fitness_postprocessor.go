package evo

import (
	"fmt"
	"math"
)

const sizeProportionalEfficiency = 0.05

// ComplexityPenalty folds rule-base complexity into a raw skill score.
type ComplexityPenalty interface {
	Name() string
	Apply(score float64, complexity int) float64
}

type NoPenalty struct{}

func (NoPenalty) Name() string {
	return "none"
}

func (NoPenalty) Apply(score float64, _ int) float64 {
	return score
}

// LinearPenalty subtracts Alpha per condition.
type LinearPenalty struct {
	Alpha float64
}

func (LinearPenalty) Name() string {
	return "linear"
}

func (p LinearPenalty) Apply(score float64, complexity int) float64 {
	return score - p.Alpha*float64(complexity)
}

// SizeProportionalPenalty divides the score by complexity^Efficiency.
// Efficiency defaults to 0.05.
type SizeProportionalPenalty struct {
	Efficiency float64
}

func (SizeProportionalPenalty) Name() string {
	return "size_proportional"
}

func (p SizeProportionalPenalty) Apply(score float64, complexity int) float64 {
	eff := p.Efficiency
	if eff <= 0 {
		eff = sizeProportionalEfficiency
	}
	return score / math.Pow(math.Max(float64(complexity), 1), eff)
}

// ResolvePenalty maps a penalty name to its implementation.
func ResolvePenalty(name string, alpha float64) (ComplexityPenalty, error) {
	switch name {
	case "", "linear":
		return LinearPenalty{Alpha: alpha}, nil
	case "size_proportional":
		return SizeProportionalPenalty{}, nil
	case "none":
		return NoPenalty{}, nil
	default:
		return nil, fmt.Errorf("unknown complexity penalty: %s", name)
	}
}
