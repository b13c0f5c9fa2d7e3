package sets

import (
	"cmp"
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAlgebra(t *testing.T) {
	xs := []int{1, 3, 5, 7, 9}
	ys := []int{2, 3, 4, 9, 11}

	assert.Equal(t, []int{1, 2, 3, 4, 5, 7, 9, 11}, UnionOf(xs, ys))
	assert.Equal(t, []int{3, 9}, IntersectionOf(xs, ys))
	assert.Equal(t, []int{1, 5, 7}, DifferenceOf(xs, ys))
	assert.Equal(t, 8, UnionSize(xs, ys, cmp.Compare[int]))
	assert.Equal(t, 2, IntersectionSize(xs, ys, cmp.Compare[int]))
	assert.Equal(t, 3, DifferenceSize(xs, ys, cmp.Compare[int]))
	assert.False(t, EmptyIntersection(xs, ys, cmp.Compare[int]))
	assert.True(t, EmptyIntersection([]int{1, 2}, []int{3, 4}, cmp.Compare[int]))
	assert.Empty(t, IntersectionOf([]int{}, ys))
	assert.Equal(t, ys, UnionOf(nil, ys))
}

func TestTanimoto(t *testing.T) {
	assert.Equal(t, 0.0, TanimotoOf([]string{}, []string{"a"}))
	assert.Equal(t, 1.0, TanimotoOf([]string{"a", "b"}, []string{"a", "b"}))
	assert.InDelta(t, 0.25, TanimotoOf([]int{1, 2}, []int{2, 3, 4}), 1e-12)
	assert.InDelta(t, 0.75, TanimotoDistance([]int{1, 2}, []int{2, 3, 4}, cmp.Compare[int]), 1e-12)
}

func randomSortedSet(rng *rand.Rand, n, universe int) []int {
	return UniqueInts(n, 0, universe, rng)
}

func TestIntersectionSplitUnionBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 200; trial++ {
		xs := randomSortedSet(rng, rng.Intn(15), 30)
		ys := randomSortedSet(rng, rng.Intn(15), 30)
		got := IntersectionSplitUnion(xs, ys, cmp.Compare[int], rng)

		require.True(t, slices.IsSorted(got))
		assert.Len(t, slices.Compact(slices.Clone(got)), len(got))
		assert.GreaterOrEqual(t, len(got), IntersectionSize(xs, ys, cmp.Compare[int]))
		assert.LessOrEqual(t, len(got), UnionSize(xs, ys, cmp.Compare[int]))
		assert.Empty(t, DifferenceOf(IntersectionOf(xs, ys), got))
		assert.Empty(t, DifferenceOf(got, UnionOf(xs, ys)))
	}
}

func TestMapIntersectionSplitUnion(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	toEntries := func(keys []int, tag string) []Entry[int, string] {
		out := make([]Entry[int, string], len(keys))
		for i, k := range keys {
			out[i] = Entry[int, string]{Key: k, Value: tag}
		}
		return out
	}
	keyCmp := func(a, b Entry[int, string]) int { return cmp.Compare(a.Key, b.Key) }

	sawX, sawY := false, false
	for trial := 0; trial < 200; trial++ {
		xs := toEntries(randomSortedSet(rng, rng.Intn(12), 20), "x")
		ys := toEntries(randomSortedSet(rng, rng.Intn(12), 20), "y")
		got := MapIntersectionSplitUnion(xs, ys, cmp.Compare[int], rng)

		require.True(t, slices.IsSortedFunc(got, keyCmp))
		assert.GreaterOrEqual(t, len(got), IntersectionSize(xs, ys, keyCmp))
		assert.LessOrEqual(t, len(got), UnionSize(xs, ys, keyCmp))
		for _, shared := range Intersection(xs, ys, keyCmp) {
			i, found := slices.BinarySearchFunc(got, shared, keyCmp)
			require.True(t, found, "shared key %d dropped", shared.Key)
			switch got[i].Value {
			case "x":
				sawX = true
			case "y":
				sawY = true
			}
		}
	}
	assert.True(t, sawX)
	assert.True(t, sawY)
}

func TestSplitUnionIsDeterministicForSeed(t *testing.T) {
	xs := []int{1, 2, 3, 5, 8, 13}
	ys := []int{2, 4, 8, 16}
	a := IntersectionSplitUnion(xs, ys, cmp.Compare[int], rand.New(rand.NewSource(9)))
	b := IntersectionSplitUnion(xs, ys, cmp.Compare[int], rand.New(rand.NewSource(9)))
	assert.Equal(t, a, b)
}

func TestUniqueInts(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	assert.Nil(t, UniqueInts(3, 5, 5, rng))
	assert.Equal(t, []int{10, 11, 12}, UniqueInts(10, 10, 13, rng))
	got := UniqueInts(4, -10, 10, rng)
	require.Len(t, got, 4)
	assert.True(t, slices.IsSorted(got))
	for _, x := range got {
		assert.GreaterOrEqual(t, x, -10)
		assert.Less(t, x, 10)
	}
}

func TestPickUniquePair(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	_, _, ok := PickUniquePair([]string{"solo"}, rng)
	assert.False(t, ok)
	for i := 0; i < 50; i++ {
		a, b, ok := PickUniquePair([]int{0, 1, 2}, rng)
		require.True(t, ok)
		assert.Less(t, a, b)
	}
}
