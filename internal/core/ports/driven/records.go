package driven

import (
	"context"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
)

// RecordStore persists the ordered chunk record sequence. Insertion order
// is load-bearing: the vector index's positions are aligned to it, so
// LoadAll must return records exactly as they were given to ReplaceAll.
type RecordStore interface {
	// ReplaceAll atomically replaces the stored sequence with records.
	ReplaceAll(ctx context.Context, records []domain.ChunkRecord) error

	// LoadAll returns the stored sequence in insertion order.
	LoadAll(ctx context.Context) ([]domain.ChunkRecord, error)

	// Close releases resources.
	Close() error
}
