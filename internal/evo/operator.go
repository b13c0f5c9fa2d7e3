package evo

import (
	"math/rand"

	"fuzzevo/internal/classifier"
	"fuzzevo/internal/truth"
)

// Operator is one kind of rule-base mutation. Apply reports whether the
// classifier changed.
type Operator[T truth.Value[T]] interface {
	Name() string
	Apply(c *classifier.Classifier[T], rng *rand.Rand) bool
}
