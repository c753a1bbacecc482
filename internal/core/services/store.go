package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ragchat-cli/internal/logger"
)

// Artifact file names within the index directory.
const (
	indexFileName  = "vectors.idx"
	ledgerFileName = "ledger.json"
)

// VectorStore owns the record sequence, the change-detection ledger and
// the vector index. The hard invariant is positional alignment: the i-th
// vector in the index belongs to the i-th record in the sequence.
//
// A mutex guards the in-memory state so the MCP server and the chat loop
// can share one store, but the design assumes a single process owns the
// persisted artifacts for the duration of a run.
type VectorStore struct {
	mu       sync.RWMutex
	records  []domain.ChunkRecord
	ledger   map[string]string
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	recStore driven.RecordStore
	indexDir string
	log      *logger.Logger
}

// NewVectorStore creates a vector store persisting its artifacts under indexDir.
func NewVectorStore(
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	recStore driven.RecordStore,
	indexDir string,
	log *logger.Logger,
) *VectorStore {
	if log == nil {
		log = logger.Nop()
	}
	return &VectorStore{
		ledger:   make(map[string]string),
		embedder: embedder,
		index:    index,
		recStore: recStore,
		indexDir: indexDir,
		log:      log,
	}
}

// Add embeds the records' content in one batch and appends vectors and
// records in lockstep. Empty input is a no-op.
func (s *VectorStore) Add(ctx context.Context, records []domain.ChunkRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(ctx, records)
}

// add appends records while holding the lock.
func (s *VectorStore) add(ctx context.Context, records []domain.ChunkRecord) error {
	if len(records) == 0 {
		return nil
	}

	texts := make([]string, len(records))
	for i, rec := range records {
		texts[i] = rec.Content
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed batch: %w", err)
	}
	if len(vectors) != len(records) {
		return fmt.Errorf("embed batch: got %d vectors for %d records", len(vectors), len(records))
	}

	for _, vec := range vectors {
		l2Normalise(vec)
	}

	if err := s.index.Add(ctx, vectors); err != nil {
		return fmt.Errorf("index add: %w", err)
	}

	s.records = append(s.records, records...)
	return nil
}

// RemoveByPath drops every record for path. The index has no point
// deletion, so removal rebuilds: reset the index and ledger, re-add the
// surviving records and repopulate the ledger from their file hashes.
func (s *VectorStore) RemoveByPath(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	survivors := make([]domain.ChunkRecord, 0, len(s.records))
	for _, rec := range s.records {
		if rec.SourcePath != path {
			survivors = append(survivors, rec)
		}
	}
	if len(survivors) == len(s.records) {
		return nil
	}

	if err := s.index.Reset(); err != nil {
		return fmt.Errorf("reset index: %w", err)
	}
	s.records = nil
	s.ledger = make(map[string]string)

	if err := s.add(ctx, survivors); err != nil {
		return fmt.Errorf("rebuild after removal: %w", err)
	}
	for _, rec := range survivors {
		s.ledger[rec.SourcePath] = rec.FileHash
	}
	return nil
}

// Search returns up to k records ordered by descending similarity. An
// empty store yields an empty result. Hit positions that fall outside
// the record sequence are dropped.
func (s *VectorStore) Search(ctx context.Context, query string, k int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.records) == 0 {
		return []domain.SearchResult{}, nil
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	l2Normalise(vec)

	hits, err := s.index.Search(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("index search: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(hits))
	for _, hit := range hits {
		if hit.Position < 0 || hit.Position >= len(s.records) {
			s.log.Debug("dropping out-of-range hit position %d", hit.Position)
			continue
		}
		results = append(results, domain.SearchResult{
			Record: s.records[hit.Position],
			Score:  float64(hit.Score),
		})
	}
	return results, nil
}

// Persist writes the three artifacts: the index binary, the record
// sequence and the ledger. Each failure is logged and the remaining
// artifacts are still attempted; the in-memory store stays usable either
// way. The returned error aggregates what failed.
func (s *VectorStore) Persist(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := os.MkdirAll(s.indexDir, 0700); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}

	var errs []error

	if err := s.index.Save(filepath.Join(s.indexDir, indexFileName)); err != nil {
		s.log.Warn("persist vector index: %v", err)
		errs = append(errs, fmt.Errorf("save index: %w", err))
	}

	if err := s.recStore.ReplaceAll(ctx, s.records); err != nil {
		s.log.Warn("persist record sequence: %v", err)
		errs = append(errs, fmt.Errorf("save records: %w", err))
	}

	if err := s.saveLedger(); err != nil {
		s.log.Warn("persist ledger: %v", err)
		errs = append(errs, fmt.Errorf("save ledger: %w", err))
	}

	return errors.Join(errs...)
}

// Load restores the store from the persisted artifacts. A missing,
// corrupt or mutually inconsistent set of artifacts resets to an empty
// store rather than failing: the loss is visible through Stats, never
// silently stale.
func (s *VectorStore) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.recStore.LoadAll(ctx)
	if err != nil {
		s.log.Warn("load record sequence: %v (starting empty)", err)
		return s.reset()
	}

	if err := s.index.Load(filepath.Join(s.indexDir, indexFileName)); err != nil {
		if len(records) > 0 {
			s.log.Warn("load vector index: %v (starting empty)", err)
		}
		return s.reset()
	}

	ledger, err := s.loadLedger()
	if err != nil {
		s.log.Warn("load ledger: %v (starting empty)", err)
		return s.reset()
	}

	if s.index.Len() != len(records) {
		s.log.Warn("artifact mismatch: %d vectors vs %d records (starting empty)",
			s.index.Len(), len(records))
		return s.reset()
	}

	s.records = records
	s.ledger = ledger
	s.log.Debug("loaded %d records from %s", len(records), s.indexDir)
	return nil
}

// Reset discards all records, ledger entries and vectors.
func (s *VectorStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reset()
}

// reset clears in-memory state while holding the lock.
func (s *VectorStore) reset() error {
	s.records = nil
	s.ledger = make(map[string]string)
	if err := s.index.Reset(); err != nil {
		return fmt.Errorf("reset index: %w", err)
	}
	return nil
}

// StoredHash returns the ledger entry for path, if any.
func (s *VectorStore) StoredHash(path string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hash, ok := s.ledger[path]
	return hash, ok
}

// MarkIndexed records the content hash for path. Called only after the
// corresponding store operation succeeded, so the ledger never claims a
// hash for content the store does not hold.
func (s *VectorStore) MarkIndexed(path, hash string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger[path] = hash
}

// Stats reports derived store state.
func (s *VectorStore) Stats() domain.IndexStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sources := make(map[string]bool)
	for _, rec := range s.records {
		sources[rec.SourcePath] = true
	}

	return domain.IndexStats{
		TotalRecords:   len(s.records),
		TotalFiles:     len(sources),
		EmbeddingModel: s.embedder.ModelName(),
		Dimensions:     s.embedder.Dimensions(),
		IndexSize:      s.index.Len(),
	}
}

// saveLedger writes the path to hash mapping as JSON.
func (s *VectorStore) saveLedger() error {
	data, err := json.MarshalIndent(s.ledger, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	path := filepath.Join(s.indexDir, ledgerFileName)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	return nil
}

// loadLedger reads the path to hash mapping. A missing file is an empty
// ledger only when the store is also empty; the caller checks consistency.
func (s *VectorStore) loadLedger() (map[string]string, error) {
	data, err := os.ReadFile(filepath.Join(s.indexDir, ledgerFileName))
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}

	ledger := make(map[string]string)
	if err := json.Unmarshal(data, &ledger); err != nil {
		return nil, fmt.Errorf("decode ledger: %w", err)
	}
	return ledger, nil
}

// l2Normalise scales vec to unit length in place, turning inner-product
// search into cosine similarity. Zero vectors are left untouched.
func l2Normalise(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
}
