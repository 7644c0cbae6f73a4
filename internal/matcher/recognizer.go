package matcher

import (
	"context"
	"fmt"
	"image"
	"math"
)

// Detector locates faces in an image. External collaborator; typically an
// HTTP client for a detection service.
type Detector interface {
	Detect(ctx context.Context, img image.Image) ([]DetectedFace, error)
}

// Encoder turns face crops into embedding vectors of a consistent
// dimension. External collaborator. Output embeddings are expected to be
// unit-normalized so that dot product approximates cosine similarity.
type Encoder interface {
	Encode(ctx context.Context, faces []image.Image) ([][]float32, error)
}

// ReferenceSource supplies the catalog of known identities to match
// against. It must not be mutated while a Recognize call is in flight;
// the Recognizer does not provide concurrency control of its own.
type ReferenceSource interface {
	Names() []string
	Embeddings() [][]float32
}

// DefaultNormEpsilon is the tolerance for the unit-norm precondition
// check on encoder output.
const DefaultNormEpsilon = 1e-3

// Recognizer matches faces found in an image against a reference catalog.
// Each Recognize call is independent and stateless apart from the
// caller-supplied, read-only reference source.
type Recognizer struct {
	detector    Detector
	encoder     Encoder
	refs        ReferenceSource
	normEpsilon float64
}

// Option configures a Recognizer.
type Option func(*Recognizer)

// WithNormEpsilon overrides the unit-norm check tolerance. A value of 0
// disables the check for encoders whose output is scaled differently.
func WithNormEpsilon(eps float64) Option {
	return func(r *Recognizer) {
		r.normEpsilon = eps
	}
}

// NewRecognizer creates a Recognizer over the given collaborators and
// reference source.
func NewRecognizer(detector Detector, encoder Encoder, refs ReferenceSource, opts ...Option) *Recognizer {
	r := &Recognizer{
		detector:    detector,
		encoder:     encoder,
		refs:        refs,
		normEpsilon: DefaultNormEpsilon,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Recognize finds faces in an image and compares them to the reference
// catalog. Results are sorted left to right by bounding box.
//
// A face is matched to a reference name only when its best similarity is
// strictly greater than threshold; otherwise it is labeled "unknown" with
// score -1. Threshold 0 accepts any positive similarity; as a rule of
// thumb, 0.5 - 0.6 provides a reasonable TP/FP ratio.
//
// Detector or encoder failures abort the call with an error wrapping
// ErrUpstreamFailure; no partial results are returned and nothing is
// retried.
func (r *Recognizer) Recognize(ctx context.Context, img image.Image, threshold float64) ([]MatchResult, error) {
	detected, err := r.detector.Detect(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("%w: detector: %w", ErrUpstreamFailure, err)
	}
	if len(detected) == 0 {
		return []MatchResult{}, nil
	}

	crops := make([]image.Image, len(detected))
	for i := range detected {
		crops[i] = detected[i].Image
	}

	embeddings, err := r.encoder.Encode(ctx, crops)
	if err != nil {
		return nil, fmt.Errorf("%w: encoder: %w", ErrUpstreamFailure, err)
	}
	if len(embeddings) != len(detected) {
		return nil, fmt.Errorf("%w: encoder returned %d embeddings for %d faces",
			ErrUpstreamFailure, len(embeddings), len(detected))
	}

	if r.normEpsilon > 0 {
		if err := checkNormalized(embeddings, r.normEpsilon); err != nil {
			return nil, fmt.Errorf("%w: encoder: %w", ErrUpstreamFailure, err)
		}
	}

	bestIdx, bestScore, err := ComputeBestMatches(embeddings, r.refs.Embeddings())
	if err != nil {
		return nil, err
	}

	return Assemble(detected, bestIdx, bestScore, r.refs.Names(), threshold), nil
}

// checkNormalized verifies every embedding has an L2 norm within eps of 1.
func checkNormalized(embeddings [][]float32, eps float64) error {
	for i, emb := range embeddings {
		var sum float64
		for _, v := range emb {
			sum += float64(v) * float64(v)
		}
		if math.Abs(math.Sqrt(sum)-1) > eps {
			return fmt.Errorf("%w: embedding %d has norm %.6f", ErrNotNormalized, i, math.Sqrt(sum))
		}
	}
	return nil
}
