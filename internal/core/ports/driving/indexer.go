package driving

import (
	"context"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
)

// Indexer drives indexing passes over the data folder.
//
// A pass is idempotent and safely re-runnable: an interrupted pass leaves
// the persisted artifacts at their previous save point, and the next run
// re-scans cheaply by content hash.
type Indexer interface {
	// RunIncremental indexes new and changed files, removes stale records
	// for updated files, and persists once at the end of the pass.
	RunIncremental(ctx context.Context) (domain.IndexReport, error)

	// ForceReindexAll discards the store and reprocesses every file.
	// Returns the number of chunk records produced.
	ForceReindexAll(ctx context.Context) (int, error)
}
