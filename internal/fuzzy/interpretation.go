package fuzzy

import (
	"fmt"

	"github.com/google/uuid"
)

type inputVariable struct {
	name          string
	partition     []Membership
	labels        []string
	partitionName string
}

// Interpretation gives meaning to the integer ids used by classifier rules:
// input variable names, their fuzzy partitions and labels, and category
// names. One interpretation is shared by reference by every classifier of a
// population and must not change once a search has started.
//
// Accessors take 0-based ids and panic when an id is out of range.
type Interpretation struct {
	id         uuid.UUID
	inputs     []inputVariable
	categories []string
	frozen     bool
}

// NewInterpretation returns an interpretation without input variables.
func NewInterpretation(categories []string) *Interpretation {
	return &Interpretation{
		id:         uuid.New(),
		categories: append([]string(nil), categories...),
	}
}

// ID identifies the interpretation for hashing.
func (i *Interpretation) ID() uuid.UUID {
	return i.id
}

// AddTriangularPartition appends an input variable covered by nsets
// triangular fuzzy sets spread over [a, b].
func (i *Interpretation) AddTriangularPartition(name string, nsets int, a, b float64) {
	if i.frozen {
		panic("fuzzy: interpretation is frozen")
	}
	i.inputs = append(i.inputs, inputVariable{
		name:          name,
		partition:     MakeTriangles(nsets, a, b, 0, 1),
		labels:        MakeLabels(nsets),
		partitionName: fmt.Sprintf("triangular(n=%d, [%g, %g])", nsets, a, b),
	})
}

// Freeze makes the interpretation read-only.
func (i *Interpretation) Freeze() {
	i.frozen = true
}

func (i *Interpretation) Frozen() bool {
	return i.frozen
}

func (i *Interpretation) NumInputs() int {
	return len(i.inputs)
}

func (i *Interpretation) NumPartitions(v uint32) int {
	return len(i.inputs[v].partition)
}

func (i *Interpretation) NumCategories() int {
	return len(i.categories)
}

func (i *Interpretation) InputName(v uint32) string {
	return i.inputs[v].name
}

func (i *Interpretation) CategoryName(c uint32) string {
	return i.categories[c]
}

func (i *Interpretation) Categories() []string {
	return append([]string(nil), i.categories...)
}

func (i *Interpretation) Labels(v uint32) []string {
	return append([]string(nil), i.inputs[v].labels...)
}

func (i *Interpretation) Label(v, s uint32) string {
	return i.inputs[v].labels[s]
}

func (i *Interpretation) PartitionName(v uint32) string {
	return i.inputs[v].partitionName
}

func (i *Interpretation) Partition(v uint32) []Membership {
	return i.inputs[v].partition
}

func (i *Interpretation) Set(v, s uint32) Membership {
	return i.inputs[v].partition[s]
}

// Membership evaluates fuzzy set s of input v at x.
func (i *Interpretation) Membership(v, s uint32, x float64) float64 {
	return i.inputs[v].partition[s](x)
}
