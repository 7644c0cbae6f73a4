// Package matcher implements face matching against a reference catalog.
// It consumes detector and encoder outputs (bounding boxes and embedding
// vectors) and decides, per detected face, which known identity it belongs
// to - or "unknown" when no reference is similar enough.
package matcher

import "image"

// Unknown is the label assigned to faces whose best similarity does not
// exceed the threshold.
const Unknown = "unknown"

// UnmatchedScore is the sentinel score for unmatched faces. It is outside
// the attainable similarity range [-1, 1] for unit-normalized embeddings.
const UnmatchedScore = -1

// Box is a face bounding box in image pixel coordinates.
type Box struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// Width returns the horizontal extent of the box.
func (b Box) Width() float64 {
	return b.Right - b.Left
}

// Height returns the vertical extent of the box.
func (b Box) Height() float64 {
	return b.Bottom - b.Top
}

// DetectedFace is a single detector result: where the face is and the
// extracted face crop the encoder will consume.
type DetectedFace struct {
	Box      Box
	Image    image.Image
	DetScore float64 // detector confidence, informational only
}

// MatchResult is the decision for one detected face.
//
// ID is the 0-based ordinal in original detection order. It is assigned
// before the final left-to-right sort and is not reassigned afterwards,
// so it can be used to correlate results back to detector output.
type MatchResult struct {
	ID    int     `json:"id"`
	Box   Box     `json:"box"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Matched reports whether the face resolved to a known identity.
func (m MatchResult) Matched() bool {
	return m.Name != Unknown
}
