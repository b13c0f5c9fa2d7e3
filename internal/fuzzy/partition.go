// Package fuzzy builds fuzzy partitions of numeric inputs and the shared
// interpretation that names variables, their fuzzy sets and the output
// categories of a classifier population.
package fuzzy

import "strconv"

// Membership maps an input value to a membership degree.
type Membership func(x float64) float64

// MakeSlope returns a function that is flat at before left of begin, ramps
// linearly to after between begin and end, and stays flat at after from end on.
func MakeSlope(begin, end, before, after float64) Membership {
	length := end - begin
	return func(x float64) float64 {
		if x < begin {
			return before
		}
		if x < end {
			return before*(1-(x-begin)/length) + after*(1-(end-x)/length)
		}
		return after
	}
}

// MakeTriangle returns a function that is flat at before left of begin, rises
// to top at apex, falls back to after at end and stays flat afterwards.
func MakeTriangle(begin, apex, end, before, top, after float64) Membership {
	left := apex - begin
	right := end - apex
	return func(x float64) float64 {
		if x < begin {
			return before
		}
		if x < apex {
			return before*(1-(x-begin)/left) + top*(1-(apex-x)/left)
		}
		if x < end {
			return top*(1-(x-apex)/right) + after*(1-(end-x)/right)
		}
		return after
	}
}

// MakeTriangles splits [begin, end] into n evenly spaced, fully overlapping
// sets: a descending slope, n-2 triangles and an ascending slope. Any x lies
// in one or two adjacent sets. It returns nil for n < 2.
func MakeTriangles(n int, begin, end, floor, ceil float64) []Membership {
	if n < 2 {
		return nil
	}
	step := (end - begin) / float64(n-1)
	sets := make([]Membership, 0, n)
	sets = append(sets, MakeSlope(begin, begin+step, ceil, floor))
	for i := 0; i < n-2; i++ {
		left := begin + float64(i)*step
		sets = append(sets, MakeTriangle(left, left+step, left+2*step, floor, ceil, floor))
	}
	sets = append(sets, MakeSlope(end-step, end, floor, ceil))
	return sets
}

var cannedLabels = map[int][]string{
	2: {"is low", "is high"},
	3: {"is low", "is average", "is high"},
	4: {"is very low", "is low", "is high", "is very high"},
	5: {"is very low", "is low", "is average", "is high", "is very high"},
	6: {"is very low", "is low", "is low-average", "is average-high", "is high", "is very high"},
	7: {"is very low", "is low", "is low-average", "is average", "is average-high", "is high", "is very high"},
}

// MakeLabels returns linguistic labels for a partition of n sets, e.g.
// "is very low" … "is very high" for n = 5. Partitions larger than 7 get
// numbered "is lowK"/"is highK" labels around an optional "is average".
func MakeLabels(n int) []string {
	if n < 2 {
		return nil
	}
	if canned, ok := cannedLabels[n]; ok {
		return append([]string(nil), canned...)
	}
	half := n / 2
	labels := make([]string, 0, n)
	for i := 0; i < half; i++ {
		labels = append(labels, "is low"+strconv.Itoa(i))
	}
	if n%2 == 1 {
		labels = append(labels, "is average")
	}
	for i := 0; i < half; i++ {
		labels = append(labels, "is high"+strconv.Itoa(i))
	}
	return labels
}
