package matcher

import (
	"errors"
	"math"
	"testing"
)

func TestComputeBestMatches(t *testing.T) {
	tests := []struct {
		name       string
		candidates [][]float32
		references [][]float32
		wantIdx    []int
		wantScore  []float64
	}{
		{
			name:       "orthogonal unit vectors",
			candidates: [][]float32{{1, 0}, {0, 1}},
			references: [][]float32{{1, 0}, {0, 1}},
			wantIdx:    []int{0, 1},
			wantScore:  []float64{1, 1},
		},
		{
			name:       "picks the most similar reference",
			candidates: [][]float32{{0.6, 0.8}},
			references: [][]float32{{1, 0}, {0, 1}, {0.6, 0.8}},
			wantIdx:    []int{2},
			wantScore:  []float64{1},
		},
		{
			name:       "tie resolves to the lowest reference index",
			candidates: [][]float32{{1, 0}},
			references: [][]float32{{0, 1}, {1, 0}, {1, 0}},
			wantIdx:    []int{1},
			wantScore:  []float64{1},
		},
		{
			name:       "negative similarity is still the best match",
			candidates: [][]float32{{1, 0}},
			references: [][]float32{{-1, 0}, {-0.6, -0.8}},
			wantIdx:    []int{1},
			wantScore:  []float64{-0.6},
		},
		{
			name:       "no candidates",
			candidates: [][]float32{},
			references: [][]float32{{1, 0}},
			wantIdx:    []int{},
			wantScore:  []float64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotIdx, gotScore, err := ComputeBestMatches(tt.candidates, tt.references)
			if err != nil {
				t.Fatalf("ComputeBestMatches() error = %v", err)
			}
			if len(gotIdx) != len(tt.wantIdx) || len(gotScore) != len(tt.wantScore) {
				t.Fatalf("ComputeBestMatches() lengths = %d, %d, want %d, %d",
					len(gotIdx), len(gotScore), len(tt.wantIdx), len(tt.wantScore))
			}
			for i := range gotIdx {
				if gotIdx[i] != tt.wantIdx[i] {
					t.Errorf("bestIdx[%d] = %d, want %d", i, gotIdx[i], tt.wantIdx[i])
				}
				if math.Abs(gotScore[i]-tt.wantScore[i]) > 1e-6 {
					t.Errorf("bestScore[%d] = %v, want %v", i, gotScore[i], tt.wantScore[i])
				}
			}
		})
	}
}

// TestComputeBestMatchesBruteForce cross-checks the reduction against a
// naive recomputation of every row maximum.
func TestComputeBestMatchesBruteForce(t *testing.T) {
	candidates := [][]float32{
		{0.6, 0.8, 0},
		{0, 0.6, 0.8},
		{-0.8, 0, 0.6},
		{1, 0, 0},
	}
	references := [][]float32{
		{0, 1, 0},
		{0.6, 0, 0.8},
		{0, 0, 1},
		{0.8, 0.6, 0},
		{-1, 0, 0},
	}

	bestIdx, bestScore, err := ComputeBestMatches(candidates, references)
	if err != nil {
		t.Fatalf("ComputeBestMatches() error = %v", err)
	}

	for i, cand := range candidates {
		wantIdx := 0
		wantScore := math.Inf(-1)
		for j, ref := range references {
			var s float64
			for d := range cand {
				s += float64(cand[d]) * float64(ref[d])
			}
			if s > wantScore {
				wantScore = s
				wantIdx = j
			}
		}
		if bestIdx[i] < 0 || bestIdx[i] >= len(references) {
			t.Errorf("bestIdx[%d] = %d out of range [0, %d)", i, bestIdx[i], len(references))
		}
		if bestIdx[i] != wantIdx {
			t.Errorf("bestIdx[%d] = %d, want %d", i, bestIdx[i], wantIdx)
		}
		if math.Abs(bestScore[i]-wantScore) > 1e-9 {
			t.Errorf("bestScore[%d] = %v, want %v", i, bestScore[i], wantScore)
		}
	}
}

func TestComputeBestMatchesDeterminism(t *testing.T) {
	candidates := [][]float32{{0.6, 0.8}, {0.8, 0.6}, {0, 1}}
	references := [][]float32{{1, 0}, {0, 1}, {0.6, 0.8}, {0.6, 0.8}}

	firstIdx, firstScore, err := ComputeBestMatches(candidates, references)
	if err != nil {
		t.Fatalf("ComputeBestMatches() error = %v", err)
	}

	for run := 0; run < 10; run++ {
		idx, score, err := ComputeBestMatches(candidates, references)
		if err != nil {
			t.Fatalf("run %d: ComputeBestMatches() error = %v", run, err)
		}
		for i := range idx {
			if idx[i] != firstIdx[i] || score[i] != firstScore[i] {
				t.Fatalf("run %d: result differs at %d: (%d, %v) vs (%d, %v)",
					run, i, idx[i], score[i], firstIdx[i], firstScore[i])
			}
		}
	}
}

func TestComputeBestMatchesEmptyReferences(t *testing.T) {
	_, _, err := ComputeBestMatches([][]float32{{1, 0}}, [][]float32{})
	if !errors.Is(err, ErrEmptyReferenceSet) {
		t.Errorf("error = %v, want ErrEmptyReferenceSet", err)
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("error = %v, want it to wrap ErrInvalidInput", err)
	}
}

func TestComputeBestMatchesDimensionMismatch(t *testing.T) {
	tests := []struct {
		name       string
		candidates [][]float32
		references [][]float32
	}{
		{
			name:       "candidate dim differs from references",
			candidates: [][]float32{{1, 0, 0}},
			references: [][]float32{{1, 0}},
		},
		{
			name:       "references disagree among themselves",
			candidates: [][]float32{{1, 0}},
			references: [][]float32{{1, 0}, {1, 0, 0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ComputeBestMatches(tt.candidates, tt.references)
			if !errors.Is(err, ErrDimensionMismatch) {
				t.Errorf("error = %v, want ErrDimensionMismatch", err)
			}
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("error = %v, want it to wrap ErrInvalidInput", err)
			}
		})
	}
}
