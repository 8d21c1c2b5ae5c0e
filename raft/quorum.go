package raft

import "sort"

// majority returns the strict-majority size for a voter set of n members.
func majority(n int) int {
	if n == 0 {
		panic("majority of an empty voter set")
	}
	return n/2 + 1
}

// majorityIndex returns the largest index replicated to a strict majority
// of the voters whose match indices are given.
func majorityIndex(matched []Index) Index {
	if len(matched) == 0 {
		panic("majority index of an empty voter set")
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i] < matched[j]
	})
	return matched[len(matched)-majority(len(matched))]
}
