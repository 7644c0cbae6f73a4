package matcher

import "fmt"

// ComputeBestMatches computes the pairwise dot product between every
// candidate and every reference embedding and reduces each candidate row
// to the index and score of its best reference.
//
// Under the encoder's unit-norm invariant the dot product approximates
// cosine similarity; the engine does not normalize anything itself.
// Ties on the maximum similarity resolve to the lowest reference index,
// so identical inputs always produce identical outputs. Scores accumulate
// in float64 over a fixed index order; results are deterministic for this
// implementation, but only numerically close (not bit-equal) to other
// implementations that sum in a different order.
//
// Complexity is O(N*M*D). The function is pure.
func ComputeBestMatches(candidates, references [][]float32) ([]int, []float64, error) {
	if len(references) == 0 {
		return nil, nil, ErrEmptyReferenceSet
	}

	dim := len(references[0])
	for j, ref := range references {
		if len(ref) != dim {
			return nil, nil, fmt.Errorf("%w: reference %d has dim %d, want %d",
				ErrDimensionMismatch, j, len(ref), dim)
		}
	}

	bestIdx := make([]int, len(candidates))
	bestScore := make([]float64, len(candidates))

	for i, cand := range candidates {
		if len(cand) != dim {
			return nil, nil, fmt.Errorf("%w: candidate %d has dim %d, want %d",
				ErrDimensionMismatch, i, len(cand), dim)
		}

		best := 0
		max := dot(cand, references[0])
		for j := 1; j < len(references); j++ {
			// Strict > keeps the first occurrence on ties.
			if s := dot(cand, references[j]); s > max {
				max = s
				best = j
			}
		}
		bestIdx[i] = best
		bestScore[i] = max
	}

	return bestIdx, bestScore, nil
}

// dot computes the inner product of two equal-length vectors with
// float64 accumulation.
func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
