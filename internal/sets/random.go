package sets

import (
	"math/rand"
	"slices"
)

// UniqueInts draws min(n, end-begin) distinct integers uniformly from
// [begin, end) and returns them sorted. An empty range yields nil.
func UniqueInts(n, begin, end int, rng *rand.Rand) []int {
	if end <= begin {
		return nil
	}
	n = min(n, end-begin)
	seen := make(map[int]struct{}, n)
	out := make([]int, 0, n)
	for len(out) < n {
		x := begin + rng.Intn(end-begin)
		if _, dup := seen[x]; dup {
			continue
		}
		seen[x] = struct{}{}
		out = append(out, x)
	}
	slices.Sort(out)
	return out
}

// PickUniquePair returns two elements of xs at distinct positions, in
// position order. ok is false when xs has fewer than two elements.
func PickUniquePair[T any](xs []T, rng *rand.Rand) (a, b T, ok bool) {
	if len(xs) < 2 {
		return a, b, false
	}
	idx := UniqueInts(2, 0, len(xs), rng)
	return xs[idx[0]], xs[idx[1]], true
}
