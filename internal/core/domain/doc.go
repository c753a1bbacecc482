// Package domain contains the core business entities for the ragchat CLI:
// chunk records, chat messages, change classification and index statistics.
// It has no dependencies on adapters or infrastructure.
package domain
