package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driving"
	"github.com/custodia-labs/ragchat-cli/internal/logger"
)

// Ensure AssistantService implements the interface.
var _ driving.Assistant = (*AssistantService)(nil)

// systemPrompt is the fixed instruction prepended to every conversation.
const systemPrompt = `You are a helpful AI assistant with access to a knowledge base.
When answering questions, use the provided context from the knowledge base to give accurate and relevant responses.
If the context doesn't contain enough information to answer the question, say so clearly.
Always ground your responses in the provided context when possible.`

// noContextMarker is returned when search finds nothing.
const noContextMarker = "No relevant context found in the knowledge base."

// AssistantService answers questions grounded in the vector store.
type AssistantService struct {
	store *VectorStore
	llm   driven.LLMService
	topK  int
	opts  driven.ChatOptions
	log   *logger.Logger
}

// NewAssistantService creates an assistant retrieving topK chunks per query.
func NewAssistantService(
	store *VectorStore,
	llm driven.LLMService,
	topK int,
	opts driven.ChatOptions,
	log *logger.Logger,
) *AssistantService {
	if log == nil {
		log = logger.Nop()
	}
	return &AssistantService{
		store: store,
		llm:   llm,
		topK:  topK,
		opts:  opts,
		log:   log,
	}
}

// Search returns the k most similar chunks for a query.
func (s *AssistantService) Search(ctx context.Context, query string, k int) ([]domain.SearchResult, error) {
	return s.store.Search(ctx, query, k)
}

// RetrieveContext renders the top-k hits as numbered context blocks, or
// a fixed marker when nothing matches.
func (s *AssistantService) RetrieveContext(ctx context.Context, query string, k int) (string, error) {
	results, err := s.store.Search(ctx, query, k)
	if err != nil {
		return "", fmt.Errorf("retrieve context: %w", err)
	}
	if len(results) == 0 {
		return noContextMarker, nil
	}

	blocks := make([]string, len(results))
	for i, res := range results {
		rec := res.Record
		blocks[i] = fmt.Sprintf("Context %d (Source: %s (chunk %d/%d)):\n%s",
			i+1, rec.SourcePath, rec.ChunkIndex+1, rec.TotalChunks, rec.Content)
	}
	return "\n\n" + strings.Join(blocks, "\n\n"), nil
}

// StreamAnswer retrieves context for query, assembles the conversation
// and streams the generated answer.
func (s *AssistantService) StreamAnswer(ctx context.Context, query string, history []domain.ChatMessage) (driven.TokenStream, error) {
	s.log.Debug("answering query: %q", query)

	if s.llm == nil {
		return nil, fmt.Errorf("%w: no generation endpoint configured", domain.ErrLLMUnavailable)
	}

	contextBlock, err := s.RetrieveContext(ctx, query, s.topK)
	if err != nil {
		return nil, err
	}

	messages := buildMessages(query, contextBlock, history)
	stream, err := s.llm.ChatStream(ctx, messages, s.opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	return stream, nil
}

// Stats reports the current state of the vector store.
func (s *AssistantService) Stats() domain.IndexStats {
	return s.store.Stats()
}

// buildMessages assembles the conversation: system instruction, prior
// history unchanged, then one synthesized user message embedding the
// retrieved context and the literal question. History is unbounded.
func buildMessages(query, contextBlock string, history []domain.ChatMessage) []domain.ChatMessage {
	userMessage := fmt.Sprintf(`Context from knowledge base:
%s

Question: %s

Please answer the question using the provided context. If the context doesn't contain enough information, please say so.`,
		contextBlock, query)

	messages := make([]domain.ChatMessage, 0, len(history)+2)
	messages = append(messages, domain.ChatMessage{Role: domain.RoleSystem, Content: systemPrompt})
	messages = append(messages, history...)
	messages = append(messages, domain.ChatMessage{Role: domain.RoleUser, Content: userMessage})
	return messages
}
