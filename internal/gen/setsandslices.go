//    NarrativeScope
//    Copyright: E Gunderson 2024
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package gen

import (
	"cmp"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

//
// SETS AND SLICES
//

// ToSet - returns a blank map of a slice
func ToSet[T comparable](sl []T) map[T]struct{} {
	m := make(map[T]struct{}, len(sl))
	for i := 0; i < len(sl); i++ {
		m[sl[i]] = struct{}{}
	}
	return m
}

// Unique - return only the unique items from a slice, sorted
func Unique[T cmp.Ordered](s []T) []T {
	// can't use slices.Compact because that only looks as consecutive repeats: [a, a, b, a] -> [a, b, a]
	return SortedKeys(ToSet(s))
}

// UniqueInOrder - return the unique items from a slice in order of first appearance
func UniqueInOrder[T comparable](s []T) []T {
	seen := make(map[T]struct{}, len(s))
	var result []T
	for _, v := range s {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}

// SetSubtraction - aa minus anything that is in bb
func SetSubtraction[T comparable](aa []T, bb []T) []T {
	// 	aa := []string{"a", "b", "c", "d", "g", "h"}
	//	bb := []string{"a", "b", "e", "f", "g"}
	//	dd := SetSubtraction(aa, bb)
	//  [c d h]
	drop := ToSet(bb)
	out := slices.Clone(aa)
	return slices.DeleteFunc(out, func(c T) bool {
		_, ok := drop[c]
		return ok
	})
}

// ContainsN - how many Xs in slice A?
func ContainsN[T comparable](sl []T, seek T) int {
	count := 0
	for _, v := range sl {
		if v == seek {
			count += 1
		}
	}
	return count
}

// SortedKeys - the keys of a map in ascending order
func SortedKeys[K cmp.Ordered, V any](mp map[K]V) []K {
	kk := maps.Keys(mp)
	slices.Sort(kk)
	return kk
}

// ChunkSlice - turn a slice into a slice of slices of size N; thanks to https://stackoverflow.com/questions/35179656/slice-chunking-in-go
func ChunkSlice[T any](items []T, size int) (chunks [][]T) {
	if size < 1 {
		return [][]T{items}
	}
	for size < len(items) {
		items, chunks = items[size:], append(chunks, items[0:size:size])
	}
	return append(chunks, items)
}

// ArgMax - index of the largest value; first one wins on ties; -1 if empty
func ArgMax(ff []float64) int {
	winner := -1
	mx := 0.0
	for i, f := range ff {
		if winner == -1 || f > mx {
			winner = i
			mx = f
		}
	}
	return winner
}

// ArgSortDesc - indices of ff sorted by value, largest first; stable so ties keep index order
func ArgSortDesc(ff []float64) []int {
	idx := make([]int, len(ff))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		return cmp.Compare(ff[b], ff[a])
	})
	return idx
}

// Head - the first n items (or all of them if there are fewer)
func Head[T any](sl []T, n int) []T {
	if n < 0 || n >= len(sl) {
		return sl
	}
	return sl[:n]
}

// Tail - the last n items (or all of them if there are fewer)
func Tail[T any](sl []T, n int) []T {
	if n < 0 || n >= len(sl) {
		return sl
	}
	return sl[len(sl)-n:]
}
