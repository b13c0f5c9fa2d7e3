package classifier

import (
	"strconv"
	"strings"

	"fuzzevo/internal/fuzzy"
)

// Format renders r as "If <input> <label> and ... then <category>".
func Format(r Rule, interp *fuzzy.Interpretation) string {
	var b strings.Builder
	b.WriteString("If ")
	for i, c := range r.Antecedent.conds {
		if i > 0 {
			b.WriteString(" and ")
		}
		b.WriteString(interp.InputName(c.Var))
		b.WriteByte(' ')
		b.WriteString(interp.Label(c.Var, c.Set))
	}
	b.WriteString(" then ")
	b.WriteString(interp.CategoryName(r.Category))
	return b.String()
}

// String lists the rules one per line.
func (c *Classifier[T]) String() string {
	var b strings.Builder
	for i, r := range c.rules.rules {
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(". ")
		b.WriteString(Format(r, c.interp))
		b.WriteByte('\n')
	}
	return b.String()
}
