package driving

import (
	"context"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driven"
)

// Assistant answers questions grounded in the indexed knowledge base.
type Assistant interface {
	// Search returns the k most similar chunks for a query.
	Search(ctx context.Context, query string, k int) ([]domain.SearchResult, error)

	// RetrieveContext renders the top-k search hits as a context block
	// for generation, or a fixed marker when nothing matches.
	RetrieveContext(ctx context.Context, query string, k int) (string, error)

	// StreamAnswer retrieves context for query, assembles the message
	// history and streams the generated answer token by token.
	StreamAnswer(ctx context.Context, query string, history []domain.ChatMessage) (driven.TokenStream, error)

	// Stats reports the current state of the vector store.
	Stats() domain.IndexStats
}
