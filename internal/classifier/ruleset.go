package classifier

import (
	"slices"

	"fuzzevo/internal/sets"
)

// Rule maps an antecedent to a category id. A rule with an empty antecedent
// is the "no rule" sentinel.
type Rule struct {
	Antecedent Antecedent
	Category   uint32
}

func (r Rule) Empty() bool {
	return r.Antecedent.Empty()
}

func (r Rule) Equal(o Rule) bool {
	return r.Category == o.Category && r.Antecedent.Equal(o.Antecedent)
}

// Ruleset is an ordered map from antecedent to category. It never holds an
// empty antecedent and never holds two rules with the same antecedent.
type Ruleset struct {
	rules []Rule
}

func NewRuleset(rules ...Rule) Ruleset {
	var rs Ruleset
	for _, r := range rules {
		rs.Insert(r)
	}
	return rs
}

func (rs *Ruleset) search(a Antecedent) (int, bool) {
	return slices.BinarySearchFunc(rs.rules, a, func(r Rule, a Antecedent) int {
		return r.Antecedent.Compare(a)
	})
}

func (rs *Ruleset) Len() int { return len(rs.rules) }

// Insert adds r, overwriting the category of an existing rule with the same
// antecedent. Rules with an empty antecedent are ignored.
func (rs *Ruleset) Insert(r Rule) bool {
	if r.Empty() {
		return false
	}
	i, ok := rs.search(r.Antecedent)
	if ok {
		rs.rules[i].Category = r.Category
		return true
	}
	rs.rules = slices.Insert(rs.rules, i, r)
	return true
}

// Remove deletes the rule for a, reporting whether one existed.
func (rs *Ruleset) Remove(a Antecedent) bool {
	i, ok := rs.search(a)
	if !ok {
		return false
	}
	rs.rules = slices.Delete(rs.rules, i, i+1)
	return true
}

// Get returns the category of the rule for a.
func (rs *Ruleset) Get(a Antecedent) (uint32, bool) {
	i, ok := rs.search(a)
	if !ok {
		return 0, false
	}
	return rs.rules[i].Category, true
}

func (rs *Ruleset) Has(a Antecedent) bool {
	_, ok := rs.search(a)
	return ok
}

// HasRule reports whether rs holds exactly r, category included.
func (rs *Ruleset) HasRule(r Rule) bool {
	c, ok := rs.Get(r.Antecedent)
	return ok && c == r.Category
}

// At returns the i-th rule in antecedent order.
func (rs *Ruleset) At(i int) Rule {
	return rs.rules[i]
}

func (rs *Ruleset) removeAt(i int) Rule {
	r := rs.rules[i]
	rs.rules = slices.Delete(rs.rules, i, i+1)
	return r
}

// Rules returns a copy of the rules in antecedent order.
func (rs *Ruleset) Rules() []Rule {
	return slices.Clone(rs.rules)
}

func (rs *Ruleset) Clone() Ruleset {
	return Ruleset{rules: slices.Clone(rs.rules)}
}

func (rs *Ruleset) Equal(o *Ruleset) bool {
	return slices.EqualFunc(rs.rules, o.rules, Rule.Equal)
}

// Complexity is the total number of conditions across all rules.
func (rs *Ruleset) Complexity() int {
	n := 0
	for _, r := range rs.rules {
		n += r.Antecedent.Len()
	}
	return n
}

func (rs *Ruleset) entries() []sets.Entry[Antecedent, uint32] {
	out := make([]sets.Entry[Antecedent, uint32], len(rs.rules))
	for i, r := range rs.rules {
		out[i] = sets.Entry[Antecedent, uint32]{Key: r.Antecedent, Value: r.Category}
	}
	return out
}

func rulesetFromEntries(entries []sets.Entry[Antecedent, uint32]) Ruleset {
	rules := make([]Rule, len(entries))
	for i, e := range entries {
		rules[i] = Rule{Antecedent: e.Key, Category: e.Value}
	}
	return Ruleset{rules: rules}
}
