// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): embedding, the vector index, the
// generation endpoint and persisted record storage.
package driven
