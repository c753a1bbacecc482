package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the query to find relevant chunks"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 5)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	SourcePath  string  `json:"source_path"`
	ChunkIndex  int     `json:"chunk_index"`
	TotalChunks int     `json:"total_chunks"`
	Score       float64 `json:"score"`
	Content     string  `json:"content"`
}

// StatsInput is the input schema for the stats tool. It takes no arguments.
type StatsInput struct{}

// StatsOutput is the output schema for the stats tool.
type StatsOutput struct {
	TotalRecords   int    `json:"total_records"`
	TotalFiles     int    `json:"total_files"`
	EmbeddingModel string `json:"embedding_model"`
	Dimensions     int    `json:"dimensions"`
	IndexSize      int    `json:"index_size"`
}

// ReindexInput is the input schema for the reindex tool.
type ReindexInput struct {
	Force bool `json:"force,omitempty" jsonschema:"discard the index and reprocess everything"`
}

// ReindexOutput is the output schema for the reindex tool.
type ReindexOutput struct {
	NewFiles       int `json:"new_files"`
	UpdatedFiles   int `json:"updated_files"`
	UnchangedFiles int `json:"unchanged_files"`
	TotalRecords   int `json:"total_records"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search the knowledge base for chunks similar to a query",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "stats",
		Description: "Report the state of the knowledge base index",
	}, s.handleStats)

	if s.ports.Indexer != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "reindex",
			Description: "Run an indexing pass over the data folder",
		}, s.handleReindex)
	}
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 5
	}

	results, err := s.ports.Assistant.Search(ctx, input.Query, limit)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}

	for i := range results {
		rec := results[i].Record
		output.Results[i] = SearchResultOutput{
			SourcePath:  rec.SourcePath,
			ChunkIndex:  rec.ChunkIndex,
			TotalChunks: rec.TotalChunks,
			Score:       results[i].Score,
			Content:     rec.Content,
		}
	}

	return nil, output, nil
}

// handleStats handles the stats tool invocation.
func (s *Server) handleStats(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ StatsInput,
) (*mcp.CallToolResult, StatsOutput, error) {
	stats := s.ports.Assistant.Stats()
	return nil, StatsOutput{
		TotalRecords:   stats.TotalRecords,
		TotalFiles:     stats.TotalFiles,
		EmbeddingModel: stats.EmbeddingModel,
		Dimensions:     stats.Dimensions,
		IndexSize:      stats.IndexSize,
	}, nil
}

// handleReindex handles the reindex tool invocation.
func (s *Server) handleReindex(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ReindexInput,
) (*mcp.CallToolResult, ReindexOutput, error) {
	if input.Force {
		count, err := s.ports.Indexer.ForceReindexAll(ctx)
		if err != nil {
			return nil, ReindexOutput{}, err
		}
		return nil, ReindexOutput{TotalRecords: count}, nil
	}

	report, err := s.ports.Indexer.RunIncremental(ctx)
	if err != nil {
		return nil, ReindexOutput{}, err
	}
	return nil, ReindexOutput{
		NewFiles:       report.NewFiles,
		UpdatedFiles:   report.UpdatedFiles,
		UnchangedFiles: report.UnchangedFiles,
		TotalRecords:   s.ports.Assistant.Stats().TotalRecords,
	}, nil
}
