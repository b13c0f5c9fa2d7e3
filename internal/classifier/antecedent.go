package classifier

import (
	"cmp"
	"slices"
)

// Condition reads "input Var is in fuzzy set Set".
type Condition struct {
	Var uint32 `json:"var"`
	Set uint32 `json:"set"`
}

func compareConditions(a, b Condition) int {
	if c := cmp.Compare(a.Var, b.Var); c != 0 {
		return c
	}
	return cmp.Compare(a.Set, b.Set)
}

// Antecedent is the IF part of a rule: at most one condition per input
// variable, kept sorted by variable. The zero value is the empty antecedent,
// which denotes "no rule". Antecedents are values; every modifier returns a
// new one.
type Antecedent struct {
	conds []Condition
}

// NewAntecedent builds an antecedent from conditions in any order. When a
// variable appears twice, the later condition wins.
func NewAntecedent(conds ...Condition) Antecedent {
	var a Antecedent
	for _, c := range conds {
		a = a.With(c)
	}
	return a
}

func (a Antecedent) Len() int    { return len(a.conds) }
func (a Antecedent) Empty() bool { return len(a.conds) == 0 }

// Conditions returns a copy of the conditions in variable order.
func (a Antecedent) Conditions() []Condition {
	return slices.Clone(a.conds)
}

func (a Antecedent) search(v uint32) (int, bool) {
	return slices.BinarySearchFunc(a.conds, v, func(c Condition, v uint32) int {
		return cmp.Compare(c.Var, v)
	})
}

// Get returns the fuzzy set required for variable v.
func (a Antecedent) Get(v uint32) (uint32, bool) {
	i, ok := a.search(v)
	if !ok {
		return 0, false
	}
	return a.conds[i].Set, true
}

func (a Antecedent) Has(v uint32) bool {
	_, ok := a.search(v)
	return ok
}

// With returns a copy of a where c replaces any condition on c.Var.
func (a Antecedent) With(c Condition) Antecedent {
	i, ok := a.search(c.Var)
	conds := make([]Condition, 0, len(a.conds)+1)
	conds = append(conds, a.conds[:i]...)
	conds = append(conds, c)
	if ok {
		i++
	}
	conds = append(conds, a.conds[i:]...)
	return Antecedent{conds: conds}
}

// Without returns a copy of a with no condition on v.
func (a Antecedent) Without(v uint32) Antecedent {
	i, ok := a.search(v)
	if !ok {
		return a
	}
	conds := make([]Condition, 0, len(a.conds)-1)
	conds = append(conds, a.conds[:i]...)
	conds = append(conds, a.conds[i+1:]...)
	return Antecedent{conds: conds}
}

// Compare orders antecedents lexicographically over their (var, set) pairs;
// a proper prefix sorts first.
func (a Antecedent) Compare(b Antecedent) int {
	return slices.CompareFunc(a.conds, b.conds, compareConditions)
}

func (a Antecedent) Equal(b Antecedent) bool {
	return slices.Equal(a.conds, b.conds)
}
