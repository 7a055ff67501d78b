package gradecalc

import "sort"

// Aggregate is the reduced result for one category.
type Aggregate struct {
	// Fraction is earned/possible over the kept items.
	Fraction float64 `json:"fraction"`
	// Assessed is false when there were no items to aggregate.
	Assessed bool `json:"assessed"`
	Used     int  `json:"used"`
	Dropped  int  `json:"dropped"`
}

// AggregateCategory reduces items to a single fraction after dropping the
// dropLowest lowest-scoring items. Ties keep their input order. At least the
// highest-scoring item is always kept, so a category with items is never
// emptied by its drop policy.
func AggregateCategory(items []Item, dropLowest int) Aggregate {
	if len(items) == 0 {
		return Aggregate{}
	}

	sorted := make([]Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Fraction() < sorted[j].Fraction()
	})

	drop := dropLowest
	if drop < 0 {
		drop = 0
	}
	if drop >= len(sorted) {
		drop = len(sorted) - 1
	}
	kept := sorted[drop:]

	equalShare := 1 / float64(len(kept))
	var earned, possible float64
	for _, item := range kept {
		maxScore := Normalize(item.MaxScore)
		if maxScore <= 0 {
			continue
		}
		weight := orDefault(item.Weight, equalShare)
		earned += Normalize(item.Score) * weight
		possible += maxScore * weight
	}

	result := Aggregate{Assessed: true, Used: len(kept), Dropped: drop}
	if possible > 0 {
		result.Fraction = earned / possible
	}
	return result
}
