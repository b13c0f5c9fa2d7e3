package evo

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fuzzevo/internal/classifier"
)

func TestAddRuleRespectsLimits(t *testing.T) {
	interp := newInterpretation()
	rng := rand.New(rand.NewSource(1))
	op := AddRule[L]{MaxConditions: 1}
	c := newSeed(interp)
	for i := 0; i < 200; i++ {
		op.Apply(c, rng)
	}
	require.False(t, c.Empty(), "expected rules to be added")
	for _, r := range c.Rules() {
		require.Equal(t, 1, r.Antecedent.Len())
		cnd := r.Antecedent.Conditions()[0]
		assert.Less(t, int(cnd.Set), interp.NumPartitions(cnd.Var), "input %d", cnd.Var)
		assert.Less(t, int(r.Category), interp.NumCategories())
	}
	// 2 + 3 single-condition antecedents exist.
	assert.LessOrEqual(t, c.Size(), 5)
}

func TestAddRuleNeverOverwritesProtected(t *testing.T) {
	interp := newInterpretation()
	rng := rand.New(rand.NewSource(2))
	seedRule := rule(1, cond(0, 0))
	op := AddRule[L]{MaxConditions: 1, Protected: Protected{seedRule.Antecedent}}
	c := newSeed(interp, seedRule)
	for i := 0; i < 200; i++ {
		op.Apply(c, rng)
	}
	assert.True(t, c.HasRule(seedRule), "protected rule changed:\n%s", c)
}

func TestRemoveRuleSkipsProtected(t *testing.T) {
	interp := newInterpretation()
	rng := rand.New(rand.NewSource(3))
	keep := rule(0, cond(0, 0))
	c := newSeed(interp, keep, rule(1, cond(0, 1)), rule(1, cond(1, 2)))
	op := RemoveRule[L]{Protected: Protected{keep.Antecedent}}
	for i := 0; i < 100; i++ {
		op.Apply(c, rng)
	}
	assert.Equal(t, 1, c.Size())
	assert.True(t, c.HasRule(keep))
	assert.False(t, op.Apply(c, rng), "removing from a fully protected classifier must report no change")
}

func TestRemoveRuleOnEmptyClassifier(t *testing.T) {
	c := newSeed(newInterpretation())
	assert.False(t, (RemoveRule[L]{}).Apply(c, rand.New(rand.NewSource(1))))
}

func TestChangeConsequentPicksAnotherCategory(t *testing.T) {
	interp := newInterpretation()
	rng := rand.New(rand.NewSource(4))
	r := rule(0, cond(1, 1))
	c := newSeed(interp, r)
	require.True(t, (ChangeConsequent[L]{}).Apply(c, rng))
	got, ok := c.Category(r.Antecedent)
	require.True(t, ok)
	assert.Equal(t, uint32(1), got)
}

func TestAddConditionNarrowsRule(t *testing.T) {
	interp := newInterpretation()
	rng := rand.New(rand.NewSource(5))
	r := rule(1, cond(0, 1))
	c := newSeed(interp, r)
	require.True(t, (AddCondition[L]{}).Apply(c, rng))
	require.Equal(t, 1, c.Size())
	got := c.Rules()[0]
	assert.Equal(t, 2, got.Antecedent.Len())
	assert.Equal(t, uint32(1), got.Category)
	set, _ := got.Antecedent.Get(0)
	assert.Equal(t, uint32(1), set, "original condition lost")
	assert.False(t, (AddCondition[L]{}).Apply(c, rng), "a rule testing every input cannot be narrowed")
}

func TestDropConditionWidensRule(t *testing.T) {
	interp := newInterpretation()
	rng := rand.New(rand.NewSource(6))
	c := newSeed(interp, rule(0, cond(0, 1), cond(1, 2)))
	require.True(t, (DropCondition[L]{}).Apply(c, rng))
	got := c.Rules()[0]
	assert.Equal(t, 1, got.Antecedent.Len())
	assert.Equal(t, uint32(0), got.Category)
	assert.False(t, (DropCondition[L]{}).Apply(c, rng), "single-condition rules cannot be widened")
}

func TestShiftSetMovesToNeighbour(t *testing.T) {
	interp := newInterpretation()
	rng := rand.New(rand.NewSource(7))
	for _, tc := range []struct {
		set  uint32
		want []uint32
	}{
		{set: 0, want: []uint32{1}},
		{set: 2, want: []uint32{1}},
		{set: 1, want: []uint32{0, 2}},
	} {
		c := newSeed(interp, rule(1, cond(1, tc.set)))
		require.True(t, (ShiftSet[L]{}).Apply(c, rng), "set %d", tc.set)
		got, _ := c.Rules()[0].Antecedent.Get(1)
		assert.Contains(t, tc.want, got, "set %d", tc.set)
	}
}

func TestReplaceRuleAvoidsProtectedTarget(t *testing.T) {
	interp := newInterpretation()
	protected := rule(0, cond(0, 0))
	c := newSeed(interp, rule(1, cond(0, 1)))
	old := c.Rules()[0]
	assert.False(t, replaceRule(c, old, protected.Antecedent, Protected{protected.Antecedent}))
	assert.True(t, c.HasRule(old), "original rule must survive a refused replacement")
}

type fixedOperator struct {
	name  string
	calls *int
}

func (o fixedOperator) Name() string { return o.name }

func (o fixedOperator) Apply(*classifier.Classifier[L], *rand.Rand) bool {
	*o.calls++
	return true
}

func TestNewPolicyValidation(t *testing.T) {
	calls := 0
	op := fixedOperator{name: "x", calls: &calls}
	cases := [][]WeightedOperator[L]{
		nil,
		{{Operator: nil, Weight: 1}},
		{{Operator: op, Weight: -1}},
		{{Operator: op, Weight: 0}},
	}
	for i, ops := range cases {
		_, err := NewPolicy(ops)
		assert.ErrorIs(t, err, ErrInvalidPolicy, "case %d", i)
	}
}

func TestPolicyChoosesByWeight(t *testing.T) {
	var heavy, light, never int
	policy, err := NewPolicy([]WeightedOperator[L]{
		{Operator: fixedOperator{name: "heavy", calls: &heavy}, Weight: 3},
		{Operator: fixedOperator{name: "never", calls: &never}, Weight: 0},
		{Operator: fixedOperator{name: "light", calls: &light}, Weight: 1},
	})
	require.NoError(t, err)
	observed := map[string]int{}
	unchanged := 0
	policy.Observer = func(name string, changed bool) {
		if !changed {
			unchanged++
		}
		observed[name]++
	}
	rng := rand.New(rand.NewSource(8))
	c := newSeed(newInterpretation())
	for i := 0; i < 4000; i++ {
		policy.Mutate(c, rng)
	}
	assert.Zero(t, unchanged, "fixed operators always report a change")
	assert.Zero(t, never, "zero-weight operator ran")
	assert.Equal(t, 4000, heavy+light)
	assert.Equal(t, heavy, observed["heavy"])
	assert.Equal(t, light, observed["light"])
	assert.InDelta(t, 3.0, float64(heavy)/float64(light), 0.5)
}
