package evo

import (
	"fuzzevo/internal/classifier"
	"fuzzevo/internal/fuzzy"
	"fuzzevo/internal/truth"
)

type table struct {
	rows [][]float64
	cats []int
}

func (t table) Len() int               { return len(t.rows) }
func (t table) Inputs(i int) []float64 { return t.rows[i] }
func (t table) Category(i int) int     { return t.cats[i] }

// thresholdTable labels rows by whether x exceeds 0.5; the second input is
// noise.
func thresholdTable() table {
	var t table
	for i := 0; i < 40; i++ {
		x := float64(i) / 39
		noise := float64((i*7)%40) / 39
		t.rows = append(t.rows, []float64{x, noise})
		cat := 0
		if x > 0.5 {
			cat = 1
		}
		t.cats = append(t.cats, cat)
	}
	return t
}

func newInterpretation() *fuzzy.Interpretation {
	interp := fuzzy.NewInterpretation([]string{"no", "yes"})
	interp.AddTriangularPartition("x", 2, 0, 1)
	interp.AddTriangularPartition("noise", 3, 0, 1)
	interp.Freeze()
	return interp
}

func cond(v, s uint32) classifier.Condition {
	return classifier.Condition{Var: v, Set: s}
}

func rule(cat uint32, conds ...classifier.Condition) classifier.Rule {
	return classifier.Rule{Antecedent: classifier.NewAntecedent(conds...), Category: cat}
}

func newSeed(interp *fuzzy.Interpretation, rules ...classifier.Rule) *classifier.Classifier[truth.LukasiewiczValue] {
	return classifier.New[truth.LukasiewiczValue](interp, rules...)
}
