package driven

import "context"

// VectorIndex provides append-only similarity search over dense vectors.
//
// The index is positional: the i-th vector ever added has position i, and
// search results refer to vectors by that position. Callers that keep a
// parallel record sequence rely on this alignment, so implementations must
// never reorder or compact vectors. There is no point deletion; removal is
// done by resetting the index and re-adding the surviving vectors.
type VectorIndex interface {
	// Add appends vectors to the index in the given order.
	Add(ctx context.Context, vectors [][]float32) error

	// Search returns up to k hits ordered by descending score.
	// An empty index yields an empty result, not an error.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Len returns the number of vectors in the index.
	Len() int

	// Reset discards all vectors, keeping the configured dimensionality.
	Reset() error

	// Save writes the index to the given file path.
	Save(path string) error

	// Load replaces the index contents from the given file path.
	Load(path string) error

	// Close releases resources.
	Close() error
}

// VectorHit is a single similarity search result.
type VectorHit struct {
	// Position is the insertion position of the matched vector.
	Position int

	// Score is the inner-product similarity. With L2-normalised vectors
	// this is the cosine similarity.
	Score float32
}
