package mcp

import (
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Assistant provides search, context retrieval and index stats.
	Assistant driving.Assistant

	// Indexer triggers indexing passes. Optional.
	Indexer driving.Indexer
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Assistant == nil {
		return ErrMissingAssistant
	}
	return nil
}
