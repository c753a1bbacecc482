package services

import (
	"context"
	"hash/fnv"
	"io"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driven"
)

// mockEmbedder produces deterministic vectors derived from the text, so
// embedding the same text twice yields the same vector and distinct
// texts yield distinct vectors.
type mockEmbedder struct {
	dim      int
	embedErr error
	batchErr error
}

func newMockEmbedder(dim int) *mockEmbedder {
	return &mockEmbedder{dim: dim}
}

func (m *mockEmbedder) textVector(text string) []float32 {
	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()

	vec := make([]float32, m.dim)
	for i := range vec {
		seed = seed*6364136223846793005 + 1442695040888963407
		vec[i] = float32(seed%1000)/1000 + 0.001
	}
	return vec
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.textVector(text), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = m.textVector(text)
	}
	return vectors, nil
}

func (m *mockEmbedder) Dimensions() int               { return m.dim }
func (m *mockEmbedder) ModelName() string             { return "mock-embed" }
func (m *mockEmbedder) Ping(_ context.Context) error  { return nil }
func (m *mockEmbedder) Close() error                  { return nil }

// mockRecordStore keeps the record sequence in memory.
type mockRecordStore struct {
	records    []domain.ChunkRecord
	replaceErr error
	loadErr    error
}

func (m *mockRecordStore) ReplaceAll(_ context.Context, records []domain.ChunkRecord) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.records = append([]domain.ChunkRecord(nil), records...)
	return nil
}

func (m *mockRecordStore) LoadAll(_ context.Context) ([]domain.ChunkRecord, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return append([]domain.ChunkRecord(nil), m.records...), nil
}

func (m *mockRecordStore) Close() error { return nil }

// stubIndex returns canned hits, for exercising handling of positions
// the record sequence does not cover.
type stubIndex struct {
	hits []driven.VectorHit
	n    int
}

func (s *stubIndex) Add(_ context.Context, vectors [][]float32) error {
	s.n += len(vectors)
	return nil
}

func (s *stubIndex) Search(_ context.Context, _ []float32, _ int) ([]driven.VectorHit, error) {
	return s.hits, nil
}

func (s *stubIndex) Len() int           { return s.n }
func (s *stubIndex) Reset() error       { s.n = 0; return nil }
func (s *stubIndex) Save(string) error  { return nil }
func (s *stubIndex) Load(string) error  { return nil }
func (s *stubIndex) Close() error       { return nil }

// staticStream yields a fixed token sequence.
type staticStream struct {
	tokens []string
	pos    int
}

func (s *staticStream) Recv() (string, error) {
	if s.pos >= len(s.tokens) {
		return "", io.EOF
	}
	token := s.tokens[s.pos]
	s.pos++
	return token, nil
}

func (s *staticStream) Close() error { return nil }

// mockLLM captures the messages it is asked to answer.
type mockLLM struct {
	lastMessages []domain.ChatMessage
	lastOpts     driven.ChatOptions
	stream       driven.TokenStream
	err          error
}

func (m *mockLLM) ChatStream(_ context.Context, messages []domain.ChatMessage, opts driven.ChatOptions) (driven.TokenStream, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.lastMessages = append([]domain.ChatMessage(nil), messages...)
	m.lastOpts = opts
	if m.stream != nil {
		return m.stream, nil
	}
	return &staticStream{}, nil
}

func (m *mockLLM) Models(_ context.Context) ([]string, error) { return []string{"mock"}, nil }
func (m *mockLLM) ModelName() string                          { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error               { return nil }
func (m *mockLLM) Close() error                               { return nil }
