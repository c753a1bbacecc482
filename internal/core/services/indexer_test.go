package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragchat-cli/internal/adapters/driven/vector/flat"
	"github.com/custodia-labs/ragchat-cli/internal/chunker"
	"github.com/custodia-labs/ragchat-cli/internal/logger"
)

type indexerFixture struct {
	indexer *IndexerService
	store   *VectorStore
	dataDir string
}

func newIndexerFixture(t *testing.T) *indexerFixture {
	t.Helper()

	c, err := chunker.New(chunker.WithChunkSize(64), chunker.WithOverlap(8))
	require.NoError(t, err)
	processor := NewDocumentProcessor(c, logger.Nop())

	index, err := flat.New(testDim)
	require.NoError(t, err)
	store := NewVectorStore(newMockEmbedder(testDim), index, &mockRecordStore{}, t.TempDir(), logger.Nop())

	dataDir := t.TempDir()
	return &indexerFixture{
		indexer: NewIndexerService(processor, store, dataDir, logger.Nop()),
		store:   store,
		dataDir: dataDir,
	}
}

func TestRunIncrementalFirstPass(t *testing.T) {
	f := newIndexerFixture(t)
	writeFile(t, f.dataDir, "a.txt", "alpha document content")
	writeFile(t, f.dataDir, "b.md", "beta document content")

	report, err := f.indexer.RunIncremental(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.NewFiles)
	assert.Equal(t, 0, report.UpdatedFiles)
	assert.Equal(t, 0, report.UnchangedFiles)
	assert.Equal(t, 2, f.store.Stats().TotalFiles)
}

func TestRunIncrementalIsIdempotent(t *testing.T) {
	f := newIndexerFixture(t)
	ctx := context.Background()
	writeFile(t, f.dataDir, "a.txt", "alpha document content")
	writeFile(t, f.dataDir, "b.md", "beta document content")

	_, err := f.indexer.RunIncremental(ctx)
	require.NoError(t, err)
	recordsAfterFirst := f.store.Stats().TotalRecords

	report, err := f.indexer.RunIncremental(ctx)
	require.NoError(t, err)

	assert.Equal(t, 0, report.NewFiles)
	assert.Equal(t, 0, report.UpdatedFiles)
	assert.Equal(t, 2, report.UnchangedFiles)
	assert.Equal(t, recordsAfterFirst, f.store.Stats().TotalRecords)
}

func TestRunIncrementalDetectsUpdate(t *testing.T) {
	f := newIndexerFixture(t)
	ctx := context.Background()
	path := writeFile(t, f.dataDir, "a.txt", "original content")
	writeFile(t, f.dataDir, "b.md", "stable content")

	_, err := f.indexer.RunIncremental(ctx)
	require.NoError(t, err)
	oldHash, ok := f.store.StoredHash(path)
	require.True(t, ok)

	require.NoError(t, os.WriteFile(path, []byte("rewritten content entirely"), 0600))

	report, err := f.indexer.RunIncremental(ctx)
	require.NoError(t, err)

	assert.Equal(t, 0, report.NewFiles)
	assert.Equal(t, 1, report.UpdatedFiles)
	assert.Equal(t, 1, report.UnchangedFiles)

	// No record for the path carries the old hash any more.
	results, err := f.store.Search(ctx, "original content", 10)
	require.NoError(t, err)
	for _, res := range results {
		if res.Record.SourcePath == path {
			assert.NotEqual(t, oldHash, res.Record.FileHash)
		}
	}

	newHash, ok := f.store.StoredHash(path)
	require.True(t, ok)
	assert.NotEqual(t, oldHash, newHash)
}

func TestRunIncrementalAutoCreatesDataDir(t *testing.T) {
	f := newIndexerFixture(t)
	missing := filepath.Join(f.dataDir, "nested", "data")
	f.indexer.dataDir = missing

	report, err := f.indexer.RunIncremental(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, report.NewFiles+report.UpdatedFiles+report.UnchangedFiles)
	info, err := os.Stat(missing)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestRunIncrementalSkipsUnreadableFileWithoutAborting(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("file permissions are not enforced for root")
	}

	f := newIndexerFixture(t)
	ctx := context.Background()
	writeFile(t, f.dataDir, "good.txt", "readable content")
	bad := writeFile(t, f.dataDir, "bad.txt", "unreadable content")
	require.NoError(t, os.Chmod(bad, 0000))
	t.Cleanup(func() { _ = os.Chmod(bad, 0600) })

	report, err := f.indexer.RunIncremental(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, report.NewFiles)
	assert.Equal(t, 1, f.store.Stats().TotalFiles)
}

func TestForceReindexAll(t *testing.T) {
	f := newIndexerFixture(t)
	ctx := context.Background()
	writeFile(t, f.dataDir, "a.txt", "alpha document content")
	writeFile(t, f.dataDir, "b.md", "beta document content")

	_, err := f.indexer.RunIncremental(ctx)
	require.NoError(t, err)

	count, err := f.indexer.ForceReindexAll(ctx)
	require.NoError(t, err)

	stats := f.store.Stats()
	assert.Equal(t, stats.TotalRecords, count)
	assert.Equal(t, stats.TotalRecords, stats.IndexSize)

	// The rebuilt ledger makes the next incremental pass a no-op.
	report, err := f.indexer.RunIncremental(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.NewFiles)
	assert.Equal(t, 0, report.UpdatedFiles)
	assert.Equal(t, 2, report.UnchangedFiles)
}
