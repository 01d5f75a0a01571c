// Package ranking merges the per-input address orderings produced by
// the monitor with the per-address predicate scores produced by the
// analyzer into one final ordering.
package ranking

import (
	"sort"

	"github.com/sarchlab/aurora/predicate"
)

// absentRank is the sentinel used when an address never appears in
// one of the per-input rankings.
const absentRank = 2.0

// MeanPathRank computes mean_path_rank(A) across every input ranking:
// the average, over rankings, of position(A,R)/|R|, treating A∉R as
// absentRank. An empty ranking (|R|=0) contributes absentRank too,
// since position/len is undefined there.
func MeanPathRank(address uint64, rankings [][]uint64) float64 {
	if len(rankings) == 0 {
		return absentRank
	}

	var total float64
	for _, r := range rankings {
		total += rankOf(address, r)
	}
	return total / float64(len(rankings))
}

func rankOf(address uint64, ranking []uint64) float64 {
	if len(ranking) == 0 {
		return absentRank
	}
	for i, a := range ranking {
		if a == address {
			return float64(i) / float64(len(ranking))
		}
	}
	return absentRank
}

// Ranked pairs a scored predicate with its mean path rank.
type Ranked struct {
	Predicate    *predicate.Predicate
	MeanPathRank float64
}

// Combine orders predicates by score descending, then mean path rank
// ascending, stably. rankings is one address-ordering slice per
// crashing input, as produced by the monitor.
func Combine(predicates []*predicate.Predicate, rankings [][]uint64) []Ranked {
	out := make([]Ranked, len(predicates))
	for i, p := range predicates {
		out[i] = Ranked{Predicate: p, MeanPathRank: MeanPathRank(p.Address, rankings)}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Predicate.Score != out[j].Predicate.Score {
			return out[i].Predicate.Score > out[j].Predicate.Score
		}
		return out[i].MeanPathRank < out[j].MeanPathRank
	})
	return out
}
