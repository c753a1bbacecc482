package mcp

import (
	"context"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driven"
)

// mockAssistant implements driving.Assistant with canned responses.
type mockAssistant struct {
	results []domain.SearchResult
	stats   domain.IndexStats
	err     error

	lastQuery string
	lastK     int
}

func (m *mockAssistant) Search(_ context.Context, query string, k int) ([]domain.SearchResult, error) {
	m.lastQuery = query
	m.lastK = k
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

func (m *mockAssistant) RetrieveContext(_ context.Context, _ string, _ int) (string, error) {
	return "", m.err
}

func (m *mockAssistant) StreamAnswer(_ context.Context, _ string, _ []domain.ChatMessage) (driven.TokenStream, error) {
	return nil, m.err
}

func (m *mockAssistant) Stats() domain.IndexStats {
	return m.stats
}

// mockIndexer implements driving.Indexer with canned responses.
type mockIndexer struct {
	report domain.IndexReport
	count  int
	err    error

	forced      bool
	incremental bool
}

func (m *mockIndexer) RunIncremental(_ context.Context) (domain.IndexReport, error) {
	m.incremental = true
	if m.err != nil {
		return domain.IndexReport{}, m.err
	}
	return m.report, nil
}

func (m *mockIndexer) ForceReindexAll(_ context.Context) (int, error) {
	m.forced = true
	if m.err != nil {
		return 0, m.err
	}
	return m.count, nil
}
