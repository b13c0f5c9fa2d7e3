// Package dataset loads labeled numeric tables: every column is a numeric
// input except one output column holding the category of the row.
package dataset

import (
	"errors"
	"math"
	"math/rand"
	"slices"

	"fuzzevo/internal/sets"
)

var (
	ErrNoHeader       = errors.New("dataset has no header")
	ErrNoInputs       = errors.New("dataset has no input column")
	ErrUnknownColumn  = errors.New("unknown column")
	ErrMalformedValue = errors.New("malformed value")
)

type Row struct {
	Inputs   []float64 `json:"inputs"`
	Category int       `json:"category"`
}

type Dataset struct {
	InputNames []string `json:"input_names"`
	OutputName string   `json:"output_name"`
	Categories []string `json:"categories"`
	Rows       []Row    `json:"rows"`
}

// Range is the observed span of one input column.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (d *Dataset) Len() int { return len(d.Rows) }

func (d *Dataset) Row(i int) Row { return d.Rows[i] }

func (d *Dataset) Inputs(i int) []float64 { return d.Rows[i].Inputs }

func (d *Dataset) Category(i int) int { return d.Rows[i].Category }

// Column returns the values of the named input column.
func (d *Dataset) Column(name string) ([]float64, error) {
	idx := slices.Index(d.InputNames, name)
	if idx < 0 {
		return nil, ErrUnknownColumn
	}
	out := make([]float64, len(d.Rows))
	for i, r := range d.Rows {
		out[i] = r.Inputs[idx]
	}
	return out, nil
}

// Ranges returns the min and max of every input column. Columns of an empty
// dataset get [0, 1]; constant columns are widened to a unit span so that a
// partition over them stays well defined.
func (d *Dataset) Ranges() []Range {
	ranges := make([]Range, len(d.InputNames))
	for i := range ranges {
		ranges[i] = Range{Min: math.Inf(1), Max: math.Inf(-1)}
	}
	for _, r := range d.Rows {
		for i, v := range r.Inputs {
			ranges[i].Min = min(ranges[i].Min, v)
			ranges[i].Max = max(ranges[i].Max, v)
		}
	}
	for i := range ranges {
		switch {
		case len(d.Rows) == 0:
			ranges[i] = Range{Min: 0, Max: 1}
		case ranges[i].Min == ranges[i].Max:
			ranges[i].Max = ranges[i].Min + 1
		}
	}
	return ranges
}

// CategoryCounts returns how many rows belong to each category.
func (d *Dataset) CategoryCounts() []int {
	counts := make([]int, len(d.Categories))
	for _, r := range d.Rows {
		counts[r.Category]++
	}
	return counts
}

// Split moves floor(prop·n) distinct, uniformly chosen rows out of d into a
// new dataset with the same columns. Both keep their original row order.
func (d *Dataset) Split(prop float64, rng *rand.Rand) *Dataset {
	n := int(prop * float64(len(d.Rows)))
	picked := sets.UniqueInts(n, 0, len(d.Rows), rng)

	out := &Dataset{
		InputNames: slices.Clone(d.InputNames),
		OutputName: d.OutputName,
		Categories: slices.Clone(d.Categories),
		Rows:       make([]Row, 0, len(picked)),
	}
	kept := make([]Row, 0, len(d.Rows)-len(picked))
	next := 0
	for i, r := range d.Rows {
		if next < len(picked) && picked[next] == i {
			out.Rows = append(out.Rows, r)
			next++
			continue
		}
		kept = append(kept, r)
	}
	d.Rows = kept
	return out
}
