package terrain

import (
	"fmt"
	"sort"
)

// TopK returns the k largest values in descending order.
func TopK(values []float64, k int) ([]float64, error) {
	idx, err := TopKIndices(values, k)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = values[j]
	}
	return out, nil
}

// TopKIndices returns the indices of the k largest values, ordered by
// descending value. Equal values keep their original order, so the lower
// index ranks first.
func TopKIndices(values []float64, k int) ([]int, error) {
	if k < 0 || k > len(values) {
		return nil, fmt.Errorf("top %d of %d values: %w", k, len(values), ErrTopKExceeds)
	}

	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return values[idx[a]] > values[idx[b]]
	})
	return idx[:k], nil
}
