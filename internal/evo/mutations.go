package evo

import (
	"math/rand"
	"slices"

	"fuzzevo/internal/classifier"
	"fuzzevo/internal/sets"
	"fuzzevo/internal/truth"
)

// Protected lists antecedents whose rules mutation must never remove or
// rewrite, typically the rules of the seed classifier.
type Protected []classifier.Antecedent

func (p Protected) Has(a classifier.Antecedent) bool {
	return slices.ContainsFunc(p, a.Equal)
}

// pickRule returns a random unprotected rule, or false.
func pickRule[T truth.Value[T]](c *classifier.Classifier[T], rng *rand.Rand, protected Protected) (classifier.Rule, bool) {
	r := c.GetRandomRule(rng)
	if r.Empty() || protected.Has(r.Antecedent) {
		return classifier.Rule{}, false
	}
	return r, true
}

// replaceRule swaps old for a rule with the new antecedent and old's
// category. A protected target antecedent is left alone.
func replaceRule[T truth.Value[T]](c *classifier.Classifier[T], old classifier.Rule, next classifier.Antecedent, protected Protected) bool {
	if next.Equal(old.Antecedent) || protected.Has(next) {
		return false
	}
	c.RemoveRule(old.Antecedent)
	c.AddRule(classifier.Rule{Antecedent: next, Category: old.Category})
	return true
}

// AddRule inserts a random rule of 1 to MaxConditions conditions on distinct
// inputs with a random category.
type AddRule[T truth.Value[T]] struct {
	MaxConditions int
	Protected     Protected
}

func (AddRule[T]) Name() string { return "add_rule" }

func (op AddRule[T]) Apply(c *classifier.Classifier[T], rng *rand.Rand) bool {
	interp := c.Interpretation()
	inputs := interp.NumInputs()
	if inputs == 0 || interp.NumCategories() == 0 {
		return false
	}
	limit := min(max(op.MaxConditions, 1), inputs)
	vars := sets.UniqueInts(1+rng.Intn(limit), 0, inputs, rng)
	conds := make([]classifier.Condition, 0, len(vars))
	for _, v := range vars {
		n := interp.NumPartitions(uint32(v))
		if n == 0 {
			continue
		}
		conds = append(conds, classifier.Condition{Var: uint32(v), Set: uint32(rng.Intn(n))})
	}
	a := classifier.NewAntecedent(conds...)
	if a.Empty() || op.Protected.Has(a) {
		return false
	}
	return c.AddRule(classifier.Rule{Antecedent: a, Category: uint32(rng.Intn(interp.NumCategories()))})
}

type RemoveRule[T truth.Value[T]] struct {
	Protected Protected
}

func (RemoveRule[T]) Name() string { return "remove_rule" }

func (op RemoveRule[T]) Apply(c *classifier.Classifier[T], rng *rand.Rand) bool {
	r, ok := pickRule(c, rng, op.Protected)
	if !ok {
		return false
	}
	return c.RemoveRule(r.Antecedent)
}

// ChangeConsequent moves a random rule to another category.
type ChangeConsequent[T truth.Value[T]] struct {
	Protected Protected
}

func (ChangeConsequent[T]) Name() string { return "change_consequent" }

func (op ChangeConsequent[T]) Apply(c *classifier.Classifier[T], rng *rand.Rand) bool {
	n := c.Interpretation().NumCategories()
	if n < 2 {
		return false
	}
	r, ok := pickRule(c, rng, op.Protected)
	if !ok {
		return false
	}
	next := uint32(rng.Intn(n - 1))
	if next >= r.Category {
		next++
	}
	return c.AddRule(classifier.Rule{Antecedent: r.Antecedent, Category: next})
}

// AddCondition narrows a random rule with a condition on an input it does not
// test yet.
type AddCondition[T truth.Value[T]] struct {
	Protected Protected
}

func (AddCondition[T]) Name() string { return "add_condition" }

func (op AddCondition[T]) Apply(c *classifier.Classifier[T], rng *rand.Rand) bool {
	r, ok := pickRule(c, rng, op.Protected)
	if !ok {
		return false
	}
	interp := c.Interpretation()
	var free []uint32
	for v := 0; v < interp.NumInputs(); v++ {
		if !r.Antecedent.Has(uint32(v)) && interp.NumPartitions(uint32(v)) > 0 {
			free = append(free, uint32(v))
		}
	}
	if len(free) == 0 {
		return false
	}
	v := free[rng.Intn(len(free))]
	s := uint32(rng.Intn(interp.NumPartitions(v)))
	return replaceRule(c, r, r.Antecedent.With(classifier.Condition{Var: v, Set: s}), op.Protected)
}

// DropCondition widens a random rule of two or more conditions by removing
// one of them.
type DropCondition[T truth.Value[T]] struct {
	Protected Protected
}

func (DropCondition[T]) Name() string { return "drop_condition" }

func (op DropCondition[T]) Apply(c *classifier.Classifier[T], rng *rand.Rand) bool {
	r, ok := pickRule(c, rng, op.Protected)
	if !ok || r.Antecedent.Len() < 2 {
		return false
	}
	conds := r.Antecedent.Conditions()
	drop := conds[rng.Intn(len(conds))]
	return replaceRule(c, r, r.Antecedent.Without(drop.Var), op.Protected)
}

// ShiftSet moves one condition of a random rule to a neighbouring fuzzy set
// of the same input.
type ShiftSet[T truth.Value[T]] struct {
	Protected Protected
}

func (ShiftSet[T]) Name() string { return "shift_set" }

func (op ShiftSet[T]) Apply(c *classifier.Classifier[T], rng *rand.Rand) bool {
	r, ok := pickRule(c, rng, op.Protected)
	if !ok {
		return false
	}
	conds := r.Antecedent.Conditions()
	cond := conds[rng.Intn(len(conds))]
	n := c.Interpretation().NumPartitions(cond.Var)
	if n < 2 {
		return false
	}
	switch {
	case cond.Set == 0:
		cond.Set = 1
	case int(cond.Set) == n-1:
		cond.Set--
	case rng.Intn(2) == 0:
		cond.Set--
	default:
		cond.Set++
	}
	return replaceRule(c, r, r.Antecedent.With(cond), op.Protected)
}

type WeightedOperator[T truth.Value[T]] struct {
	Operator Operator[T]
	Weight   float64
}

// Policy applies one operator per mutation, chosen by weight from the shared
// stream.
type Policy[T truth.Value[T]] struct {
	ops   []WeightedOperator[T]
	total float64
	// Observer, when set, is told which operator ran and whether it changed
	// the classifier.
	Observer func(operator string, changed bool)
}

func NewPolicy[T truth.Value[T]](ops []WeightedOperator[T]) (*Policy[T], error) {
	if len(ops) == 0 {
		return nil, errInvalidPolicy("mutation policy requires at least one operator")
	}
	total := 0.0
	for i, item := range ops {
		if item.Operator == nil {
			return nil, errInvalidPolicy("mutation policy operator is required at index %d", i)
		}
		if item.Weight < 0 {
			return nil, errInvalidPolicy("mutation policy weight must be >= 0 at index %d", i)
		}
		total += item.Weight
	}
	if total <= 0 {
		return nil, errInvalidPolicy("mutation policy requires at least one positive weight")
	}
	return &Policy[T]{ops: slices.Clone(ops), total: total}, nil
}

func (p *Policy[T]) choose(rng *rand.Rand) Operator[T] {
	pick := rng.Float64() * p.total
	acc := 0.0
	for _, item := range p.ops {
		acc += item.Weight
		if pick < acc {
			return item.Operator
		}
	}
	for i := len(p.ops) - 1; i >= 0; i-- {
		if p.ops[i].Weight > 0 {
			return p.ops[i].Operator
		}
	}
	return p.ops[len(p.ops)-1].Operator
}

// Mutate satisfies MutateFunc.
func (p *Policy[T]) Mutate(c *classifier.Classifier[T], rng *rand.Rand) {
	op := p.choose(rng)
	changed := op.Apply(c, rng)
	if p.Observer != nil {
		p.Observer(op.Name(), changed)
	}
}
