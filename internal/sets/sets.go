// Package sets implements set algebra over sorted, duplicate-free slices, and
// the randomized "intersection split union" used to cross over rule bases.
//
// Every function expects its inputs sorted by the given comparison and
// returns sorted output.
package sets

import (
	"cmp"
	"math/rand"

	"golang.org/x/exp/constraints"
)

// Union returns the elements found in xs or ys.
func Union[T any](xs, ys []T, compare func(a, b T) int) []T {
	out := make([]T, 0, max(len(xs), len(ys)))
	i, j := 0, 0
	for i < len(xs) && j < len(ys) {
		switch c := compare(xs[i], ys[j]); {
		case c < 0:
			out = append(out, xs[i])
			i++
		case c > 0:
			out = append(out, ys[j])
			j++
		default:
			out = append(out, xs[i])
			i++
			j++
		}
	}
	out = append(out, xs[i:]...)
	return append(out, ys[j:]...)
}

// Intersection returns the elements found in both xs and ys.
func Intersection[T any](xs, ys []T, compare func(a, b T) int) []T {
	var out []T
	i, j := 0, 0
	for i < len(xs) && j < len(ys) {
		switch c := compare(xs[i], ys[j]); {
		case c < 0:
			i++
		case c > 0:
			j++
		default:
			out = append(out, xs[i])
			i++
			j++
		}
	}
	return out
}

// Difference returns the elements of xs that are not in ys.
func Difference[T any](xs, ys []T, compare func(a, b T) int) []T {
	var out []T
	i, j := 0, 0
	for i < len(xs) && j < len(ys) {
		switch c := compare(xs[i], ys[j]); {
		case c < 0:
			out = append(out, xs[i])
			i++
		case c > 0:
			j++
		default:
			i++
			j++
		}
	}
	return append(out, xs[i:]...)
}

func IntersectionSize[T any](xs, ys []T, compare func(a, b T) int) int {
	n := 0
	i, j := 0, 0
	for i < len(xs) && j < len(ys) {
		switch c := compare(xs[i], ys[j]); {
		case c < 0:
			i++
		case c > 0:
			j++
		default:
			n++
			i++
			j++
		}
	}
	return n
}

func UnionSize[T any](xs, ys []T, compare func(a, b T) int) int {
	return len(xs) + len(ys) - IntersectionSize(xs, ys, compare)
}

func DifferenceSize[T any](xs, ys []T, compare func(a, b T) int) int {
	return len(xs) - IntersectionSize(xs, ys, compare)
}

// EmptyIntersection reports whether xs and ys share no element. It stops at
// the first common element.
func EmptyIntersection[T any](xs, ys []T, compare func(a, b T) int) bool {
	i, j := 0, 0
	for i < len(xs) && j < len(ys) {
		switch c := compare(xs[i], ys[j]); {
		case c < 0:
			i++
		case c > 0:
			j++
		default:
			return false
		}
	}
	return true
}

// Tanimoto is the size of the intersection over the size of the union, 0 if
// either set is empty.
func Tanimoto[T any](xs, ys []T, compare func(a, b T) int) float64 {
	if len(xs) == 0 || len(ys) == 0 {
		return 0
	}
	n := IntersectionSize(xs, ys, compare)
	return float64(n) / float64(len(xs)+len(ys)-n)
}

func TanimotoDistance[T any](xs, ys []T, compare func(a, b T) int) float64 {
	return 1 - Tanimoto(xs, ys, compare)
}

// IntersectionSplitUnion keeps every element common to xs and ys and each
// element found in only one of them with probability 0.5.
func IntersectionSplitUnion[T any](xs, ys []T, compare func(a, b T) int, rng *rand.Rand) []T {
	out := make([]T, 0, max(len(xs), len(ys)))
	i, j := 0, 0
	for i < len(xs) && j < len(ys) {
		switch c := compare(xs[i], ys[j]); {
		case c < 0:
			if rng.Float64() < 0.5 {
				out = append(out, xs[i])
			}
			i++
		case c > 0:
			if rng.Float64() < 0.5 {
				out = append(out, ys[j])
			}
			j++
		default:
			out = append(out, xs[i])
			i++
			j++
		}
	}
	out = appendHalf(out, xs[i:], rng)
	return appendHalf(out, ys[j:], rng)
}

// Entry is one key/value pair of a sorted map.
type Entry[K, V any] struct {
	Key   K
	Value V
}

// MapIntersectionSplitUnion is IntersectionSplitUnion over key-sorted
// entries. For a key found in both maps the value is taken from xs or ys
// with probability 0.5 each.
func MapIntersectionSplitUnion[K, V any](xs, ys []Entry[K, V], compare func(a, b K) int, rng *rand.Rand) []Entry[K, V] {
	out := make([]Entry[K, V], 0, max(len(xs), len(ys)))
	i, j := 0, 0
	for i < len(xs) && j < len(ys) {
		switch c := compare(xs[i].Key, ys[j].Key); {
		case c < 0:
			if rng.Float64() < 0.5 {
				out = append(out, xs[i])
			}
			i++
		case c > 0:
			if rng.Float64() < 0.5 {
				out = append(out, ys[j])
			}
			j++
		default:
			if rng.Float64() < 0.5 {
				out = append(out, xs[i])
			} else {
				out = append(out, ys[j])
			}
			i++
			j++
		}
	}
	out = appendHalf(out, xs[i:], rng)
	return appendHalf(out, ys[j:], rng)
}

func appendHalf[T any](out, rest []T, rng *rand.Rand) []T {
	for _, x := range rest {
		if rng.Float64() < 0.5 {
			out = append(out, x)
		}
	}
	return out
}

// UnionOf is Union for naturally ordered elements.
func UnionOf[T constraints.Ordered](xs, ys []T) []T {
	return Union(xs, ys, cmp.Compare[T])
}

func IntersectionOf[T constraints.Ordered](xs, ys []T) []T {
	return Intersection(xs, ys, cmp.Compare[T])
}

func DifferenceOf[T constraints.Ordered](xs, ys []T) []T {
	return Difference(xs, ys, cmp.Compare[T])
}

func TanimotoOf[T constraints.Ordered](xs, ys []T) float64 {
	return Tanimoto(xs, ys, cmp.Compare[T])
}
