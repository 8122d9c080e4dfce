package chromemdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmacy-rag/internal/models"
)

func testChunks() []models.Chunk {
	return []models.Chunk{
		{Content: "Opening hours are 9am to 6pm.", SourceFilename: "info.pdf", PageNumber: 1, ChunkID: 1},
		{Content: "We compound topical creams.", SourceFilename: "info.pdf", PageNumber: 1, ChunkID: 2},
		{Content: "Prescriptions can be sent by WhatsApp.", SourceFilename: "info.pdf", PageNumber: 2, ChunkID: 3},
	}
}

// Unit vectors so cosine similarity equals the dot product exactly.
func testVectors() [][]float32 {
	return [][]float32{
		{1, 0, 0},
		{0.6, 0.8, 0},
		{0.6, 0, 0.8},
	}
}

func TestBuildIndexAndSearchRanking(t *testing.T) {
	ctx := context.Background()
	index, err := BuildIndex(ctx, testChunks(), testVectors())
	require.NoError(t, err)
	require.Equal(t, 3, index.Size())

	// Query closest to the first vector must rank its chunk first.
	query := []float32{0.9486833, 0.31622776, 0}
	results, err := index.Search(ctx, query, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Opening hours are 9am to 6pm.", results[0].Content)
	assert.Equal(t, "We compound topical creams.", results[1].Content)
	assert.Equal(t, "info.pdf", results[0].SourceFilename)
	assert.Equal(t, 1, results[0].PageNumber)
	assert.Equal(t, 1, results[0].ChunkID)
}

func TestSearchExactMatchRanksFirst(t *testing.T) {
	ctx := context.Background()
	index, err := BuildIndex(ctx, testChunks(), testVectors())
	require.NoError(t, err)

	// A query embedding identical to an indexed chunk's vector must return
	// that chunk first among k results.
	results, err := index.Search(ctx, []float32{0.6, 0, 0.8}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "Prescriptions can be sent by WhatsApp.", results[0].Content)
}

func TestSearchClampsK(t *testing.T) {
	ctx := context.Background()
	index, err := BuildIndex(ctx, testChunks(), testVectors())
	require.NoError(t, err)

	results, err := index.Search(ctx, []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestSearchAbsentIndex(t *testing.T) {
	var index *Index
	results, err := index.Search(context.Background(), []float32{1, 0, 0}, 4)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, 0, index.Size())
}

func TestBuildIndexCountMismatch(t *testing.T) {
	_, err := BuildIndex(context.Background(), testChunks(), testVectors()[:2])
	assert.Error(t, err)
}
