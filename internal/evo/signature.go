package evo

import (
	"fmt"

	"fuzzevo/internal/classifier"
	"fuzzevo/internal/truth"
)

// Signature summarizes a classifier for reports and run records. Two equal
// classifiers share a fingerprint.
type Signature struct {
	Fingerprint string `json:"fingerprint"`
	Rules       int    `json:"rules"`
	Complexity  int    `json:"complexity"`
}

func ComputeSignature[T truth.Value[T]](c *classifier.Classifier[T]) Signature {
	return Signature{
		Fingerprint: fmt.Sprintf("%016x", c.Hash()),
		Rules:       c.Size(),
		Complexity:  c.Complexity(),
	}
}
