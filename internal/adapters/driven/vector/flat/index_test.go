package flat

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
)

func TestNewRejectsBadDimension(t *testing.T) {
	_, err := New(0)
	require.Error(t, err)

	_, err = New(-3)
	require.Error(t, err)
}

func TestAddAndSearchPositionalOrder(t *testing.T) {
	idx, err := New(3)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}))
	assert.Equal(t, 3, idx.Len())

	hits, err := idx.Search(ctx, []float32{0, 1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, 1, hits[0].Position)
	assert.InDelta(t, 1.0, float64(hits[0].Score), 1e-6)
	assert.Greater(t, hits[0].Score, hits[1].Score)
}

func TestSearchEmptyIndex(t *testing.T) {
	idx, err := New(2)
	require.NoError(t, err)

	hits, err := idx.Search(context.Background(), []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearchCapsAtIndexSize(t *testing.T) {
	idx, err := New(2)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, [][]float32{{1, 0}, {0, 1}}))

	hits, err := idx.Search(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestAddDimensionMismatch(t *testing.T) {
	idx, err := New(3)
	require.NoError(t, err)

	err = idx.Add(context.Background(), [][]float32{{1, 0}})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	assert.Equal(t, 0, idx.Len())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vectors.idx")
	ctx := context.Background()

	idx, err := New(2)
	require.NoError(t, err)
	require.NoError(t, idx.Add(ctx, [][]float32{{0.5, 0.5}, {1, 0}}))
	require.NoError(t, idx.Save(path))

	loaded, err := New(2)
	require.NoError(t, err)
	require.NoError(t, loaded.Load(path))
	assert.Equal(t, 2, loaded.Len())

	hits, err := loaded.Search(ctx, []float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, 1, hits[0].Position)
}

func TestLoadMissingFile(t *testing.T) {
	idx, err := New(2)
	require.NoError(t, err)

	err = idx.Load(filepath.Join(t.TempDir(), "nope.idx"))
	assert.Error(t, err)
}

func TestLoadCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vectors.idx")
	ctx := context.Background()

	idx, err := New(2)
	require.NoError(t, err)
	require.NoError(t, idx.Add(ctx, [][]float32{{1, 0}}))
	require.NoError(t, idx.Save(path))

	// Flip a byte in the vector data so the checksum fails.
	buf, err := os.ReadFile(path)
	require.NoError(t, err)
	buf[headerSize] ^= 0xFF
	require.NoError(t, os.WriteFile(path, buf, 0600))

	loaded, err := New(2)
	require.NoError(t, err)
	assert.Error(t, loaded.Load(path))
	assert.Equal(t, 0, loaded.Len())
}

func TestLoadDimensionMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vectors.idx")

	idx, err := New(3)
	require.NoError(t, err)
	require.NoError(t, idx.Add(context.Background(), [][]float32{{1, 0, 0}}))
	require.NoError(t, idx.Save(path))

	loaded, err := New(2)
	require.NoError(t, err)
	assert.ErrorIs(t, loaded.Load(path), domain.ErrDimensionMismatch)
}

func TestResetAndClose(t *testing.T) {
	idx, err := New(2)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, [][]float32{{1, 0}}))
	require.NoError(t, idx.Reset())
	assert.Equal(t, 0, idx.Len())

	require.NoError(t, idx.Close())
	assert.ErrorIs(t, idx.Add(ctx, [][]float32{{1, 0}}), domain.ErrIndexClosed)
	_, err = idx.Search(ctx, []float32{1, 0}, 1)
	assert.ErrorIs(t, err, domain.ErrIndexClosed)
}
