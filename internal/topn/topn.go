// Package topn provides fixed-capacity ordered containers that keep only the
// entries with the largest keys seen so far.
package topn

import (
	"container/heap"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/exp/constraints"
)

type Entry[K constraints.Ordered, V any] struct {
	Key   K
	Value V
	seq   uint64
}

func (e Entry[K, V]) less(o Entry[K, V]) bool {
	if e.Key != o.Key {
		return e.Key < o.Key
	}
	return e.seq < o.seq
}

type entryHeap[K constraints.Ordered, V any] []Entry[K, V]

func (h entryHeap[K, V]) Len() int           { return len(h) }
func (h entryHeap[K, V]) Less(i, j int) bool { return h[i].less(h[j]) }
func (h entryHeap[K, V]) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *entryHeap[K, V]) Push(x any) {
	*h = append(*h, x.(Entry[K, V]))
}

func (h *entryHeap[K, V]) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// Multimap holds at most Cap entries and admits duplicate keys. Once full, a
// new entry is accepted only if its key is strictly larger than the current
// minimum, which is evicted to make room. Among equal keys the earliest
// inserted entry is evicted first.
type Multimap[K constraints.Ordered, V any] struct {
	capacity int
	entries  entryHeap[K, V]
	counts   map[K]int
	max      Entry[K, V]
	seq      uint64
}

func NewMultimap[K constraints.Ordered, V any](capacity int) *Multimap[K, V] {
	if capacity < 0 {
		capacity = 0
	}
	return &Multimap[K, V]{
		capacity: capacity,
		entries:  make(entryHeap[K, V], 0, capacity),
		counts:   make(map[K]int, capacity),
	}
}

// TryInsert adds (k, v) if there is room or if k beats the current minimum.
func (m *Multimap[K, V]) TryInsert(k K, v V) bool {
	if len(m.entries) >= m.capacity {
		if m.capacity == 0 || !(m.entries[0].Key < k) {
			return false
		}
		m.evictMin()
	}
	m.push(k, v)
	return true
}

func (m *Multimap[K, V]) push(k K, v V) {
	e := Entry[K, V]{Key: k, Value: v, seq: m.seq}
	m.seq++
	if len(m.entries) == 0 || !(k < m.max.Key) {
		m.max = e
	}
	heap.Push(&m.entries, e)
	m.counts[k]++
}

func (m *Multimap[K, V]) evictMin() {
	e := heap.Pop(&m.entries).(Entry[K, V])
	if m.counts[e.Key]--; m.counts[e.Key] == 0 {
		delete(m.counts, e.Key)
	}
}

func (m *Multimap[K, V]) Len() int    { return len(m.entries) }
func (m *Multimap[K, V]) Cap() int    { return m.capacity }
func (m *Multimap[K, V]) Empty() bool { return len(m.entries) == 0 }
func (m *Multimap[K, V]) Full() bool  { return len(m.entries) == m.capacity }

// Count returns the number of entries stored under k.
func (m *Multimap[K, V]) Count(k K) int {
	return m.counts[k]
}

func (m *Multimap[K, V]) Clear() {
	m.entries = m.entries[:0]
	clear(m.counts)
	m.max = Entry[K, V]{}
}

// Min returns the entry with the smallest key; ok is false when empty.
func (m *Multimap[K, V]) Min() (e Entry[K, V], ok bool) {
	if len(m.entries) == 0 {
		return e, false
	}
	return m.entries[0], true
}

// Max returns the entry with the largest key, the latest inserted among
// equal keys; ok is false when empty.
func (m *Multimap[K, V]) Max() (e Entry[K, V], ok bool) {
	if len(m.entries) == 0 {
		return e, false
	}
	return m.max, true
}

// Entries returns the retained entries in ascending key order, insertion
// order among equal keys.
func (m *Multimap[K, V]) Entries() []Entry[K, V] {
	out := slices.Clone([]Entry[K, V](m.entries))
	slices.SortFunc(out, func(a, b Entry[K, V]) int {
		switch {
		case a.less(b):
			return -1
		case b.less(a):
			return 1
		default:
			return 0
		}
	})
	return out
}

func (m *Multimap[K, V]) Keys() []K {
	entries := m.Entries()
	keys := make([]K, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	return keys
}

func (m *Multimap[K, V]) Values() []V {
	entries := m.Entries()
	values := make([]V, len(entries))
	for i, e := range entries {
		values[i] = e.Value
	}
	return values
}

func (m *Multimap[K, V]) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, e := range m.Entries() {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "(%v, %v)", e.Key, e.Value)
	}
	b.WriteByte('}')
	return b.String()
}

// Map is a Multimap with unique keys. A key that is already present is never
// replaced.
type Map[K constraints.Ordered, V any] struct {
	Multimap[K, V]
}

func NewMap[K constraints.Ordered, V any](capacity int) *Map[K, V] {
	return &Map[K, V]{Multimap: *NewMultimap[K, V](capacity)}
}

func (m *Map[K, V]) TryInsert(k K, v V) bool {
	if m.counts[k] > 0 {
		return false
	}
	return m.Multimap.TryInsert(k, v)
}

// ValueSet returns the distinct retained values in ascending order.
func ValueSet[K, V constraints.Ordered](m *Multimap[K, V]) []V {
	values := m.Values()
	slices.Sort(values)
	return slices.Compact(values)
}
