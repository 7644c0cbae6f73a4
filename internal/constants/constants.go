// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// Matching constants
const (
	// DefaultThreshold is the similarity threshold applied when the caller
	// does not specify one. Any positive similarity is accepted.
	DefaultThreshold = 0.0

	// RecommendedThreshold provides a reasonable TP/FP tradeoff for
	// unit-normalized face embeddings.
	RecommendedThreshold = 0.5
)

// Encoding constants
const (
	// EncodeBatchSize is the number of face crops sent to the embedding
	// service per request
	EncodeBatchSize = 32

	// DefaultEmbeddingDim is the embedding dimension the default encoder
	// model produces
	DefaultEmbeddingDim = 512
)

// Catalog constants
const (
	// DefaultSimilarLimit is the default number of results for reference
	// similarity lookups
	DefaultSimilarLimit = 10

	// DuplicateDistance is the maximum cosine distance at which an imported
	// reference is flagged as a near-duplicate of an existing one
	DuplicateDistance = 0.05

	// HNSWMaxNeighbors is the M parameter of the HNSW graph
	HNSWMaxNeighbors = 16
)

// Upload constants
const (
	// MaxUploadSize is the maximum image upload size in bytes (32MB)
	MaxUploadSize = 32 << 20
)
