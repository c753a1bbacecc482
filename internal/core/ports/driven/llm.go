package driven

import (
	"context"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
)

// LLMService is the generation endpoint. Each implementation owns one wire
// protocol for streaming responses, so provider differences stay out of
// callers entirely.
type LLMService interface {
	// ChatStream sends a chat completion request and returns a stream of
	// incremental text tokens. The caller must Close the stream.
	ChatStream(ctx context.Context, messages []domain.ChatMessage, opts ChatOptions) (TokenStream, error)

	// Models returns the model names the endpoint advertises.
	// Used for connectivity diagnostics only.
	Models(ctx context.Context) ([]string, error)

	// ModelName returns the model sent with each request.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// ChatOptions configures a chat completion request.
type ChatOptions struct {
	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64

	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int
}

// TokenStream is a lazy, forward-only, single-pass sequence of text tokens.
// Concatenating every token in order reconstructs the full answer exactly.
//
// Recv returns io.EOF when the stream is finished, whether by the
// provider's terminator, stream exhaustion or a transport failure (which
// is logged, not surfaced); tokens already received stay with the caller.
type TokenStream interface {
	// Recv returns the next token.
	Recv() (string, error)

	// Close releases the underlying transport. Safe to call more than once.
	Close() error
}
