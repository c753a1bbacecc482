package domain

import (
	"fmt"
	"time"
)

// ChunkRecord is one unit of retrievable content: a contiguous slice of a
// source file together with the metadata needed for change detection and
// context rendering.
type ChunkRecord struct {
	// SourcePath is the stable identifier of the file the chunk came from.
	SourcePath string

	// Content is the cleaned chunk text. Never empty for a live record.
	Content string

	// ChunkID uniquely identifies the chunk within the store.
	// It is deterministic: "<FileHash>_<ChunkIndex>".
	ChunkID string

	// FileHash is the SHA-256 of the raw file bytes at processing time.
	// All live records for a SourcePath share the same FileHash.
	FileHash string

	// ChunkIndex is the 0-based position within the file.
	ChunkIndex int

	// TotalChunks is the number of chunks produced from the file in the
	// processing pass that created this record.
	TotalChunks int

	// CreatedAt is when the record was produced.
	CreatedAt time.Time

	// SizeBytes is the size of the source file in bytes.
	SizeBytes int64

	// FileType is the lowercased file extension, including the dot.
	FileType string
}

// MakeChunkID builds the deterministic chunk identifier for a file hash
// and chunk index.
func MakeChunkID(fileHash string, index int) string {
	return fmt.Sprintf("%s_%d", fileHash, index)
}

// SearchResult pairs a chunk record with its similarity score.
type SearchResult struct {
	// Record is the matched chunk.
	Record ChunkRecord

	// Score is the cosine similarity between the query and the chunk.
	Score float64
}

// IndexStats summarises the state of the vector store. All values are
// derived; computing them never mutates the store.
type IndexStats struct {
	// TotalRecords is the number of chunk records in the store.
	TotalRecords int

	// TotalFiles is the number of distinct source paths.
	TotalFiles int

	// EmbeddingModel is the name of the embedding model in use.
	EmbeddingModel string

	// Dimensions is the embedding vector size.
	Dimensions int

	// IndexSize is the number of vectors held by the ANN index.
	// Always equals TotalRecords while the store invariants hold.
	IndexSize int
}

// IndexReport summarises one incremental indexing pass.
type IndexReport struct {
	// NewFiles is the number of files seen for the first time.
	NewFiles int

	// UpdatedFiles is the number of files whose content hash changed.
	UpdatedFiles int

	// UnchangedFiles is the number of files skipped because their hash
	// matched the ledger.
	UnchangedFiles int
}
