// Package flat provides an exact inner-product vector index with
// positional IDs and single-file persistence.
//
// The index is the stand-in for an ANN library: it satisfies the same
// append-only contract (no point deletion, positions aligned to insertion
// order) while scanning every vector on search. For the corpus sizes a
// local knowledge base holds, the exhaustive scan is not the bottleneck --
// the embedding call is.
package flat

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// File format constants. The on-disk layout is:
//
//	magic uint32 | version uint32 | dim uint32 | count uint32 |
//	count*dim float32 (little endian) | crc32 of everything before
const (
	indexMagic   uint32 = 0x52474649 // "RGFI"
	indexVersion uint32 = 1
	headerSize          = 16
)

// Index holds vectors in a flattened slice, count*dim float32 values.
type Index struct {
	mu     sync.RWMutex
	dim    int
	data   []float32
	closed bool
}

// New creates an empty index for vectors of the given dimensionality.
func New(dimension int) (*Index, error) {
	if dimension <= 0 {
		return nil, errors.New("flat: dimension must be positive")
	}
	return &Index{dim: dimension}, nil
}

// Dimensions returns the configured vector size.
func (idx *Index) Dimensions() int {
	return idx.dim
}

// Add appends vectors in order. Positions are assigned sequentially.
func (idx *Index) Add(_ context.Context, vectors [][]float32) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.closed {
		return domain.ErrIndexClosed
	}

	for i, vec := range vectors {
		if len(vec) != idx.dim {
			return fmt.Errorf("%w: vector %d has %d dimensions, want %d",
				domain.ErrDimensionMismatch, i, len(vec), idx.dim)
		}
	}
	for _, vec := range vectors {
		idx.data = append(idx.data, vec...)
	}
	return nil
}

// Search returns up to k hits ordered by descending inner-product score.
func (idx *Index) Search(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.closed {
		return nil, domain.ErrIndexClosed
	}
	if len(query) != idx.dim {
		return nil, fmt.Errorf("%w: query has %d dimensions, want %d",
			domain.ErrDimensionMismatch, len(query), idx.dim)
	}

	count := len(idx.data) / idx.dim
	if count == 0 || k <= 0 {
		return nil, nil
	}

	scores := make([]float32, count)
	for i := 0; i < count; i++ {
		row := idx.data[i*idx.dim : (i+1)*idx.dim]
		var dot float32
		for j, q := range query {
			dot += q * row[j]
		}
		scores[i] = dot
	}

	order := make([]int, count)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if k > count {
		k = count
	}
	hits := make([]driven.VectorHit, k)
	for i := 0; i < k; i++ {
		hits[i] = driven.VectorHit{Position: order[i], Score: scores[order[i]]}
	}
	return hits, nil
}

// Len returns the number of vectors in the index.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.data) / idx.dim
}

// Reset discards all vectors.
func (idx *Index) Reset() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.closed {
		return domain.ErrIndexClosed
	}
	idx.data = nil
	return nil
}

// Save writes the index to path atomically (temp file plus rename).
func (idx *Index) Save(path string) error {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.closed {
		return domain.ErrIndexClosed
	}

	count := len(idx.data) / idx.dim
	buf := make([]byte, headerSize+4*len(idx.data)+4)
	binary.LittleEndian.PutUint32(buf[0:], indexMagic)
	binary.LittleEndian.PutUint32(buf[4:], indexVersion)
	binary.LittleEndian.PutUint32(buf[8:], uint32(idx.dim))
	binary.LittleEndian.PutUint32(buf[12:], uint32(count))
	for i, f := range idx.data {
		binary.LittleEndian.PutUint32(buf[headerSize+i*4:], math.Float32bits(f))
	}
	sum := crc32.ChecksumIEEE(buf[:len(buf)-4])
	binary.LittleEndian.PutUint32(buf[len(buf)-4:], sum)

	tmp, err := os.CreateTemp(filepath.Dir(path), ".vectors-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename index: %w", err)
	}
	return nil
}

// Load replaces the index contents from path. The file's dimensionality
// must match the configured one; a corrupt or truncated file is an error
// and leaves the index unchanged.
func (idx *Index) Load(path string) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read index: %w", err)
	}
	if len(buf) < headerSize+4 {
		return errors.New("flat: index file truncated")
	}

	if binary.LittleEndian.Uint32(buf[0:]) != indexMagic {
		return errors.New("flat: bad magic")
	}
	if binary.LittleEndian.Uint32(buf[4:]) != indexVersion {
		return errors.New("flat: unsupported version")
	}
	dim := int(binary.LittleEndian.Uint32(buf[8:]))
	count := int(binary.LittleEndian.Uint32(buf[12:]))

	want := headerSize + 4*dim*count + 4
	if len(buf) != want {
		return fmt.Errorf("flat: index file has %d bytes, want %d", len(buf), want)
	}
	sum := binary.LittleEndian.Uint32(buf[len(buf)-4:])
	if crc32.ChecksumIEEE(buf[:len(buf)-4]) != sum {
		return errors.New("flat: checksum mismatch")
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.closed {
		return domain.ErrIndexClosed
	}
	if dim != idx.dim {
		return fmt.Errorf("%w: file has %d dimensions, index configured for %d",
			domain.ErrDimensionMismatch, dim, idx.dim)
	}

	data := make([]float32, dim*count)
	for i := range data {
		data[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[headerSize+i*4:]))
	}
	idx.data = data
	return nil
}

// Close releases the index. Further operations fail.
func (idx *Index) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.closed = true
	idx.data = nil
	return nil
}
