// Package services contains the core application logic: document
// processing, the vector store, incremental indexing and retrieval
// augmented generation. Services depend only on domain types and ports,
// never on adapter packages.
package services
