package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testRecord(id string, path string, index int) domain.ChunkRecord {
	return domain.ChunkRecord{
		SourcePath:  path,
		Content:     "content of " + id,
		ChunkID:     id,
		FileHash:    "hash-" + path,
		ChunkIndex:  index,
		TotalChunks: 2,
		CreatedAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		SizeBytes:   42,
		FileType:    ".txt",
	}
}

func TestLoadAllEmptyStore(t *testing.T) {
	s := newTestStore(t)

	records, err := s.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestReplaceAllPreservesOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := []domain.ChunkRecord{
		testRecord("h_0", "a.txt", 0),
		testRecord("h_1", "a.txt", 1),
		testRecord("g_0", "b.md", 0),
	}
	require.NoError(t, s.ReplaceAll(ctx, in))

	out, err := s.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, out, 3)
	for i := range in {
		assert.Equal(t, in[i].ChunkID, out[i].ChunkID)
		assert.Equal(t, in[i].SourcePath, out[i].SourcePath)
		assert.Equal(t, in[i].Content, out[i].Content)
		assert.Equal(t, in[i].FileHash, out[i].FileHash)
		assert.Equal(t, in[i].ChunkIndex, out[i].ChunkIndex)
		assert.Equal(t, in[i].TotalChunks, out[i].TotalChunks)
		assert.Equal(t, in[i].SizeBytes, out[i].SizeBytes)
		assert.Equal(t, in[i].FileType, out[i].FileType)
	}
}

func TestReplaceAllOverwritesPreviousSequence(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceAll(ctx, []domain.ChunkRecord{
		testRecord("old_0", "old.txt", 0),
	}))
	require.NoError(t, s.ReplaceAll(ctx, []domain.ChunkRecord{
		testRecord("new_0", "new.txt", 0),
		testRecord("new_1", "new.txt", 1),
	}))

	out, err := s.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "new_0", out[0].ChunkID)
	assert.Equal(t, "new_1", out[1].ChunkID)
}

func TestReplaceAllEmptyClearsStore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceAll(ctx, []domain.ChunkRecord{
		testRecord("h_0", "a.txt", 0),
	}))
	require.NoError(t, s.ReplaceAll(ctx, nil))

	out, err := s.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	dir := t.TempDir()

	s1, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, s1.ReplaceAll(context.Background(), []domain.ChunkRecord{
		testRecord("h_0", "a.txt", 0),
	}))
	require.NoError(t, s1.Close())

	// Reopening must not re-run applied migrations or lose data.
	s2, err := NewStore(dir)
	require.NoError(t, err)
	defer s2.Close()

	out, err := s2.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, out, 1)
}
