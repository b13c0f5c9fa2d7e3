package evo

import (
	"errors"
	"fmt"
	"sort"

	"fuzzevo/internal/truth"
)

var (
	ErrOperatorNotFound = errors.New("operator not found")
	ErrInvalidPolicy    = errors.New("invalid mutation policy")
)

func errInvalidPolicy(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidPolicy}, args...)...)
}

// OperatorOptions carries the settings shared by the built-in operators.
type OperatorOptions struct {
	MaxConditions int
	Protected     Protected
}

type operatorFactory[T truth.Value[T]] func(OperatorOptions) Operator[T]

func builtinOperators[T truth.Value[T]]() map[string]operatorFactory[T] {
	return map[string]operatorFactory[T]{
		"add_rule": func(o OperatorOptions) Operator[T] {
			return AddRule[T]{MaxConditions: o.MaxConditions, Protected: o.Protected}
		},
		"remove_rule": func(o OperatorOptions) Operator[T] {
			return RemoveRule[T]{Protected: o.Protected}
		},
		"change_consequent": func(o OperatorOptions) Operator[T] {
			return ChangeConsequent[T]{Protected: o.Protected}
		},
		"add_condition": func(o OperatorOptions) Operator[T] {
			return AddCondition[T]{Protected: o.Protected}
		},
		"drop_condition": func(o OperatorOptions) Operator[T] {
			return DropCondition[T]{Protected: o.Protected}
		},
		"shift_set": func(o OperatorOptions) Operator[T] {
			return ShiftSet[T]{Protected: o.Protected}
		},
	}
}

// ListOperators returns the names of the built-in operators, sorted.
func ListOperators() []string {
	factories := builtinOperators[truth.LukasiewiczValue]()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultOperatorWeights favours growing and editing rules over deleting
// them.
func DefaultOperatorWeights() map[string]float64 {
	return map[string]float64{
		"add_rule":          3,
		"remove_rule":       2,
		"change_consequent": 1,
		"add_condition":     2,
		"drop_condition":    1,
		"shift_set":         2,
	}
}

// ResolveOperator builds the named built-in operator.
func ResolveOperator[T truth.Value[T]](name string, opts OperatorOptions) (Operator[T], error) {
	factory, ok := builtinOperators[T]()[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOperatorNotFound, name)
	}
	return factory(opts), nil
}

// PolicyFromWeights builds a Policy from operator names and weights. Operators
// are ordered by name so that the same weights always consume the random
// stream the same way.
func PolicyFromWeights[T truth.Value[T]](weights map[string]float64, opts OperatorOptions) (*Policy[T], error) {
	names := make([]string, 0, len(weights))
	for name := range weights {
		names = append(names, name)
	}
	sort.Strings(names)

	ops := make([]WeightedOperator[T], 0, len(names))
	for _, name := range names {
		op, err := ResolveOperator[T](name, opts)
		if err != nil {
			return nil, err
		}
		ops = append(ops, WeightedOperator[T]{Operator: op, Weight: weights[name]})
	}
	return NewPolicy(ops)
}
