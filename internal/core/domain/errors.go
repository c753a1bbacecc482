package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidChunkConfig indicates the chunk size/overlap relationship
	// is invalid. This is a configuration error surfaced to the caller,
	// never repaired silently.
	ErrInvalidChunkConfig = errors.New("invalid chunk configuration")

	// ErrUnsupportedProvider indicates an unknown AI provider name.
	ErrUnsupportedProvider = errors.New("unsupported provider")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// reachable or not configured. Indexing and search require it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates the generation endpoint is not reachable.
	// The CLI degrades to index-only mode when this occurs.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrIndexClosed indicates an operation on a closed vector index.
	ErrIndexClosed = errors.New("vector index is closed")

	// ErrDimensionMismatch indicates a vector whose size does not match
	// the index dimensionality.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
