// Package mcp provides an MCP (Model Context Protocol) server adapter.
// It lets AI assistants search the local knowledge base and inspect
// index state through the same driving ports the CLI uses.
package mcp

import "errors"

// ErrMissingAssistant is returned when the assistant port is not provided.
var ErrMissingAssistant = errors.New("mcp: assistant is required")
