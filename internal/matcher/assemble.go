package matcher

import "sort"

// Assemble combines per-face best matches with detected face geometry and
// reference names into the final result list.
//
// A face is labeled with its best reference name only when its score is
// strictly greater than threshold; a score exactly equal to threshold is
// classified as unknown with the sentinel score -1. IDs reflect original
// detection order and are assigned before the results are stable-sorted
// left to right by bounding box, so ties keep detection order.
//
// Callers guarantee len(faces) == len(bestIdx) == len(bestScore) and that
// every bestIdx value indexes into names; the Recognizer enforces this
// before calling.
func Assemble(faces []DetectedFace, bestIdx []int, bestScore []float64, names []string, threshold float64) []MatchResult {
	if len(faces) == 0 {
		return []MatchResult{}
	}

	results := make([]MatchResult, len(faces))
	for i, face := range faces {
		name := Unknown
		score := float64(UnmatchedScore)
		if bestScore[i] > threshold {
			name = names[bestIdx[i]]
			score = bestScore[i]
		}
		results[i] = MatchResult{
			ID:    i,
			Box:   face.Box,
			Name:  name,
			Score: score,
		}
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Box.Left < results[b].Box.Left
	})

	return results
}
