// Package chunker splits cleaned document text into overlapping,
// boundary-aware chunks. Chunks are the unit of embedding and retrieval.
package chunker

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 512

// DefaultOverlap is the default number of overlapping characters
// between consecutive chunks.
const DefaultOverlap = 50

// sentenceEndings are the boundary markers searched before cutting a
// chunk, in no particular priority: the rightmost occurrence wins.
var sentenceEndings = []string{". ", "! ", "? ", "\n\n"}

// Chunker splits text into overlapping chunks, preferring to cut at
// sentence endings, then word boundaries, then exactly at the size limit.
type Chunker struct {
	size    int
	overlap int
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		c.size = size
	}
}

// WithOverlap sets the overlap between consecutive chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		c.overlap = overlap
	}
}

// New creates a chunker. The overlap must satisfy 0 < overlap < size;
// anything else is a configuration error reported to the caller rather
// than repaired.
func New(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		size:    DefaultChunkSize,
		overlap: DefaultOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.size <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d must be positive", domain.ErrInvalidChunkConfig, c.size)
	}
	if c.overlap <= 0 || c.overlap >= c.size {
		return nil, fmt.Errorf("%w: overlap %d must be between 1 and %d", domain.ErrInvalidChunkConfig, c.overlap, c.size-1)
	}

	return c, nil
}

// Size returns the configured chunk size.
func (c *Chunker) Size() int {
	return c.size
}

// Overlap returns the configured overlap.
func (c *Chunker) Overlap() int {
	return c.overlap
}

// Chunk splits text into overlapping chunks. Text no longer than the
// chunk size is returned as a single chunk; empty or whitespace-only
// text produces no chunks.
func (c *Chunker) Chunk(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if len(text) <= c.size {
		return []string{text}
	}

	chunks := make([]string, 0, len(text)/(c.size-c.overlap)+1)
	start := 0

	for start < len(text) {
		end := start + c.size
		if end < len(text) {
			end = c.cutPoint(text, start, end)
		} else {
			end = len(text)
		}

		if piece := strings.TrimSpace(text[start:end]); piece != "" {
			chunks = append(chunks, piece)
		}

		// Advance by size-overlap, but never back past the cut point.
		// This guarantees forward progress even when the cut landed at
		// the window start.
		next := start + c.size - c.overlap
		if end > next {
			next = end
		}
		start = next
	}

	return chunks
}

// cutPoint finds the best position to end a chunk within [start, end).
// It prefers the rightmost sentence ending, then the rightmost space,
// and falls back to end when neither exists after start.
func (c *Chunker) cutPoint(text string, start, end int) int {
	window := text[start:end]
	best := -1

	for _, marker := range sentenceEndings {
		if pos := strings.LastIndex(window, marker); pos >= 0 {
			if cut := start + pos + len(marker); cut > best {
				best = cut
			}
		}
	}

	if best == -1 {
		if pos := strings.LastIndex(window, " "); pos > 0 {
			best = start + pos + 1
		}
	}

	if best > start {
		return best
	}
	return end
}
