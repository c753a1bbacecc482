package services

import (
	"context"
	"fmt"
	"os"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driving"
	"github.com/custodia-labs/ragchat-cli/internal/logger"
)

// Ensure IndexerService implements the interface.
var _ driving.Indexer = (*IndexerService)(nil)

// IndexerService runs indexing passes over the data folder.
type IndexerService struct {
	processor *DocumentProcessor
	store     *VectorStore
	dataDir   string
	log       *logger.Logger
}

// NewIndexerService creates an indexer over dataDir.
func NewIndexerService(processor *DocumentProcessor, store *VectorStore, dataDir string, log *logger.Logger) *IndexerService {
	if log == nil {
		log = logger.Nop()
	}
	return &IndexerService{
		processor: processor,
		store:     store,
		dataDir:   dataDir,
		log:       log,
	}
}

// RunIncremental classifies every scanned file against the ledger and
// indexes only what changed. The ledger is updated per file, after the
// store operation succeeded; the artifacts are persisted once at the end
// of the pass. A single file's failure never aborts the pass.
func (s *IndexerService) RunIncremental(ctx context.Context) (domain.IndexReport, error) {
	var report domain.IndexReport

	if err := s.ensureDataDir(); err != nil {
		return report, err
	}

	paths, err := s.processor.ScanDirectory(s.dataDir)
	if err != nil {
		return report, fmt.Errorf("scan %s: %w", s.dataDir, err)
	}
	s.log.Debug("scanning %d files in %s", len(paths), s.dataDir)

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		hash, err := s.processor.Hash(path)
		if err != nil {
			s.log.Warn("skipping %s: %v", path, err)
			continue
		}

		stored, found := s.store.StoredHash(path)
		switch domain.ClassifyChange(stored, found, hash) {
		case domain.ChangeUnchanged:
			report.UnchangedFiles++

		case domain.ChangeNew:
			added, err := s.indexFile(ctx, path, hash)
			if err != nil {
				s.log.Warn("indexing %s: %v", path, err)
				continue
			}
			if added > 0 {
				report.NewFiles++
			}

		case domain.ChangeUpdated:
			if err := s.store.RemoveByPath(ctx, path); err != nil {
				s.log.Warn("removing stale records for %s: %v", path, err)
				continue
			}
			if _, err := s.indexFile(ctx, path, hash); err != nil {
				s.log.Warn("reindexing %s: %v", path, err)
				continue
			}
			report.UpdatedFiles++
		}
	}

	if err := s.store.Persist(ctx); err != nil {
		s.log.Warn("persisting index: %v", err)
	}

	s.log.Info("indexing pass: %d new, %d updated, %d unchanged",
		report.NewFiles, report.UpdatedFiles, report.UnchangedFiles)
	return report, nil
}

// ForceReindexAll discards the store and reprocesses every file. Returns
// the number of chunk records produced.
func (s *IndexerService) ForceReindexAll(ctx context.Context) (int, error) {
	if err := s.ensureDataDir(); err != nil {
		return 0, err
	}

	if err := s.store.Reset(); err != nil {
		return 0, fmt.Errorf("reset store: %w", err)
	}

	paths, err := s.processor.ScanDirectory(s.dataDir)
	if err != nil {
		return 0, fmt.Errorf("scan %s: %w", s.dataDir, err)
	}

	total := 0
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		hash, err := s.processor.Hash(path)
		if err != nil {
			s.log.Warn("skipping %s: %v", path, err)
			continue
		}
		added, err := s.indexFile(ctx, path, hash)
		if err != nil {
			s.log.Warn("indexing %s: %v", path, err)
			continue
		}
		total += added
	}

	if err := s.store.Persist(ctx); err != nil {
		s.log.Warn("persisting index: %v", err)
	}

	s.log.Info("full reindex: %d records from %d files", total, len(paths))
	return total, nil
}

// indexFile processes one file, adds its records to the store and marks
// the ledger only after the add succeeded. Returns the records added.
func (s *IndexerService) indexFile(ctx context.Context, path, hash string) (int, error) {
	records, err := s.processor.Process(path)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}

	if err := s.store.Add(ctx, records); err != nil {
		return 0, err
	}
	s.store.MarkIndexed(path, hash)
	return len(records), nil
}

// ensureDataDir creates the data folder on first run instead of failing.
func (s *IndexerService) ensureDataDir() error {
	info, err := os.Stat(s.dataDir)
	if os.IsNotExist(err) {
		s.log.Info("creating data folder %s", s.dataDir)
		if err := os.MkdirAll(s.dataDir, 0700); err != nil {
			return fmt.Errorf("create data folder: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat data folder: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, s.dataDir)
	}
	return nil
}
