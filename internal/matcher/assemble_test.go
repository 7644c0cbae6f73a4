package matcher

import (
	"math"
	"testing"
)

func boxAt(left float64) Box {
	return Box{Left: left, Top: 0, Right: left + 10, Bottom: 10}
}

func TestAssembleOrdering(t *testing.T) {
	// Detection order 50, 10, 30 must come out as 10, 30, 50.
	faces := []DetectedFace{
		{Box: boxAt(50)},
		{Box: boxAt(10)},
		{Box: boxAt(30)},
	}
	bestIdx := []int{0, 0, 0}
	bestScore := []float64{0.9, 0.9, 0.9}

	results := Assemble(faces, bestIdx, bestScore, []string{"alice"}, 0.5)

	wantLefts := []float64{10, 30, 50}
	wantIDs := []int{1, 2, 0} // pre-sort detection order
	for i, r := range results {
		if r.Box.Left != wantLefts[i] {
			t.Errorf("results[%d].Box.Left = %v, want %v", i, r.Box.Left, wantLefts[i])
		}
		if r.ID != wantIDs[i] {
			t.Errorf("results[%d].ID = %d, want %d", i, r.ID, wantIDs[i])
		}
	}
}

func TestAssembleStableTies(t *testing.T) {
	// Equal left coordinates keep detection order.
	faces := []DetectedFace{
		{Box: boxAt(20)},
		{Box: boxAt(20)},
		{Box: boxAt(5)},
	}
	results := Assemble(faces, []int{0, 0, 0}, []float64{1, 1, 1}, []string{"alice"}, 0)

	wantIDs := []int{2, 0, 1}
	for i, r := range results {
		if r.ID != wantIDs[i] {
			t.Errorf("results[%d].ID = %d, want %d", i, r.ID, wantIDs[i])
		}
	}
}

func TestAssembleThreshold(t *testing.T) {
	tests := []struct {
		name      string
		score     float64
		threshold float64
		wantName  string
		wantScore float64
	}{
		{
			name:      "strictly above threshold matches",
			score:     0.51,
			threshold: 0.5,
			wantName:  "alice",
			wantScore: 0.51,
		},
		{
			name:      "exactly at threshold is unknown",
			score:     0.5,
			threshold: 0.5,
			wantName:  Unknown,
			wantScore: -1,
		},
		{
			name:      "below threshold is unknown",
			score:     0.4,
			threshold: 0.5,
			wantName:  Unknown,
			wantScore: -1,
		},
		{
			name:      "default threshold zero accepts any positive score",
			score:     0.01,
			threshold: 0,
			wantName:  "alice",
			wantScore: 0.01,
		},
		{
			name:      "out-of-range threshold rejects everything",
			score:     1.0,
			threshold: 1.5,
			wantName:  Unknown,
			wantScore: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			faces := []DetectedFace{{Box: boxAt(0)}}
			results := Assemble(faces, []int{0}, []float64{tt.score}, []string{"alice"}, tt.threshold)
			if len(results) != 1 {
				t.Fatalf("len(results) = %d, want 1", len(results))
			}
			if results[0].Name != tt.wantName {
				t.Errorf("Name = %q, want %q", results[0].Name, tt.wantName)
			}
			if math.Abs(results[0].Score-tt.wantScore) > 1e-9 {
				t.Errorf("Score = %v, want %v", results[0].Score, tt.wantScore)
			}
		})
	}
}

func TestAssembleEmpty(t *testing.T) {
	results := Assemble(nil, nil, nil, []string{"alice"}, 0.5)
	if results == nil {
		t.Fatal("Assemble() = nil, want empty slice")
	}
	if len(results) != 0 {
		t.Errorf("len(results) = %d, want 0", len(results))
	}
}

func TestAssembleCountInvariant(t *testing.T) {
	faces := []DetectedFace{
		{Box: boxAt(3)},
		{Box: boxAt(1)},
		{Box: boxAt(2)},
		{Box: boxAt(4)},
	}
	results := Assemble(faces, []int{0, 0, 0, 0}, []float64{0.9, 0.1, 0.9, 0.1}, []string{"alice"}, 0.5)
	if len(results) != len(faces) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(faces))
	}
	for i, r := range results {
		if r.Name == "" {
			t.Errorf("results[%d].Name is empty, want a name or %q", i, Unknown)
		}
	}
}
