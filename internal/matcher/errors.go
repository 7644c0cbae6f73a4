package matcher

import (
	"errors"
	"fmt"
)

// ErrInvalidInput indicates a fault in the matching inputs themselves:
// an empty reference set or inconsistent embedding dimensions.
var ErrInvalidInput = errors.New("invalid input")

// ErrEmptyReferenceSet is returned when matching is attempted against
// zero references. Selecting a best match over an empty set is undefined,
// so the engine fails instead of returning degenerate results.
var ErrEmptyReferenceSet = fmt.Errorf("%w: empty reference set", ErrInvalidInput)

// ErrDimensionMismatch is returned when candidate and reference embeddings
// do not share the same dimension.
var ErrDimensionMismatch = fmt.Errorf("%w: embedding dimension mismatch", ErrInvalidInput)

// ErrUpstreamFailure indicates the detector or encoder collaborator failed
// or returned malformed data. The recognize call is aborted; no partial
// result list is ever returned.
var ErrUpstreamFailure = errors.New("upstream failure")

// ErrNotNormalized is returned when an encoder output violates the
// unit-norm precondition the dot-product similarity relies on.
var ErrNotNormalized = errors.New("embedding is not unit-normalized")
