// Package classifier implements a fuzzy rule-based classifier: a set of
// "IF input is fuzzy-set AND ... THEN category" rules interpreted through a
// shared fuzzy.Interpretation and evaluated in a truth.Value algebra.
package classifier

import (
	"encoding/binary"
	"hash/fnv"
	"math/rand"

	"fuzzevo/internal/fuzzy"
	"fuzzevo/internal/sets"
	"fuzzevo/internal/stats"
	"fuzzevo/internal/truth"
)

// Data is a labeled table the classifier can be scored against.
type Data interface {
	Len() int
	Inputs(i int) []float64
	Category(i int) int
}

// Classifier owns its rules and shares its interpretation with every other
// classifier of the same population.
type Classifier[T truth.Value[T]] struct {
	interp *fuzzy.Interpretation
	rules  Ruleset
}

func New[T truth.Value[T]](interp *fuzzy.Interpretation, rules ...Rule) *Classifier[T] {
	return &Classifier[T]{interp: interp, rules: NewRuleset(rules...)}
}

func (c *Classifier[T]) Interpretation() *fuzzy.Interpretation {
	return c.interp
}

func (c *Classifier[T]) Rules() []Rule {
	return c.rules.Rules()
}

func (c *Classifier[T]) Ruleset() Ruleset {
	return c.rules.Clone()
}

// SetRuleset replaces the rules of c.
func (c *Classifier[T]) SetRuleset(rs Ruleset) {
	c.rules = rs
}

// AddRule inserts or overwrites a rule. Empty antecedents are ignored.
func (c *Classifier[T]) AddRule(r Rule) bool {
	return c.rules.Insert(r)
}

func (c *Classifier[T]) RemoveRule(a Antecedent) bool {
	return c.rules.Remove(a)
}

func (c *Classifier[T]) HasAntecedent(a Antecedent) bool {
	return c.rules.Has(a)
}

func (c *Classifier[T]) HasRule(r Rule) bool {
	return c.rules.HasRule(r)
}

func (c *Classifier[T]) Category(a Antecedent) (uint32, bool) {
	return c.rules.Get(a)
}

func (c *Classifier[T]) Size() int       { return c.rules.Len() }
func (c *Classifier[T]) Empty() bool     { return c.rules.Len() == 0 }
func (c *Classifier[T]) Complexity() int { return c.rules.Complexity() }

// randomIndex draws once per call, even for a single rule, so the stream
// advances the same way whatever the rule count.
func (c *Classifier[T]) randomIndex(rng *rand.Rand) int {
	return rng.Intn(c.rules.Len())
}

// GetRandomRule returns a uniformly chosen rule, or the empty rule when the
// classifier has none.
func (c *Classifier[T]) GetRandomRule(rng *rand.Rand) Rule {
	if c.Empty() {
		return Rule{}
	}
	return c.rules.At(c.randomIndex(rng))
}

// PopRandomRule removes and returns a uniformly chosen rule, or returns the
// empty rule when the classifier has none.
func (c *Classifier[T]) PopRandomRule(rng *rand.Rand) Rule {
	if c.Empty() {
		return Rule{}
	}
	return c.rules.removeAt(c.randomIndex(rng))
}

// Evaluate predicts the category of one row of inputs. Rule truth is the
// strong conjunction of its conditions; a category's truth is the weak
// disjunction of its rules. The most true category wins, the lowest index on
// ties.
func (c *Classifier[T]) Evaluate(row []float64) int {
	truths := make([]T, c.interp.NumCategories())
	for _, r := range c.rules.rules {
		t := truth.Unit[T]()
		for _, cond := range r.Antecedent.conds {
			t = t.StrongAnd(truth.Of[T](c.interp.Membership(cond.Var, cond.Set, row[cond.Var])))
		}
		truths[r.Category] = truths[r.Category].WeakOr(t)
	}
	best := 0
	for i := 1; i < len(truths); i++ {
		if truths[best] < truths[i] {
			best = i
		}
	}
	return best
}

// EvaluateAll folds the predictions over data into a confusion matrix.
func (c *Classifier[T]) EvaluateAll(data Data) *stats.Confusion {
	conf := stats.NewConfusion(c.interp.NumCategories())
	for i := 0; i < data.Len(); i++ {
		conf.Add(c.Evaluate(data.Inputs(i)), data.Category(i), 1)
	}
	return conf
}

// Clone copies the rules and shares the interpretation.
func (c *Classifier[T]) Clone() *Classifier[T] {
	return &Classifier[T]{interp: c.interp, rules: c.rules.Clone()}
}

// Equal reports whether both classifiers hold the same rules under the same
// interpretation instance.
func (c *Classifier[T]) Equal(o *Classifier[T]) bool {
	return c.interp == o.interp && c.rules.Equal(&o.rules)
}

// Hash is consistent with Equal.
func (c *Classifier[T]) Hash() uint64 {
	h := fnv.New64a()
	var buf [4]byte
	write := func(x uint32) {
		binary.LittleEndian.PutUint32(buf[:], x)
		_, _ = h.Write(buf[:])
	}
	for _, r := range c.rules.rules {
		write(uint32(len(r.Antecedent.conds)))
		for _, cond := range r.Antecedent.conds {
			write(cond.Var)
			write(cond.Set)
		}
		write(r.Category)
	}
	if c.interp != nil {
		id := c.interp.ID()
		_, _ = h.Write(id[:])
	}
	return h.Sum64()
}

// Crossover builds a child from the rules of a and b: every antecedent the
// parents share is kept with the category of either parent, and every other
// rule is kept with probability 0.5. The child uses a's interpretation.
func Crossover[T truth.Value[T]](a, b *Classifier[T], rng *rand.Rand) *Classifier[T] {
	child := sets.MapIntersectionSplitUnion(a.rules.entries(), b.rules.entries(), Antecedent.Compare, rng)
	return &Classifier[T]{interp: a.interp, rules: rulesetFromEntries(child)}
}
