package chromemdb

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	"github.com/philippgille/chromem-go"

	"pharmacy-rag/internal/models"
)

const collectionName = "pharmacy_docs"

// Index is an immutable in-memory vector index over the full chunk set of
// one indexing run. It exclusively owns its (chunk, embedding) pairs; after
// construction it only serves similarity queries.
type Index struct {
	collection *chromem.Collection
	size       int
}

// BuildIndex creates a fresh index from index-aligned chunks and vectors.
// Nothing is persisted; the index lives for the process (or until the next
// rebuild replaces it).
func BuildIndex(ctx context.Context, chunks []models.Chunk, vectors [][]float32) (*Index, error) {
	if len(chunks) != len(vectors) {
		return nil, fmt.Errorf("chunk/vector count mismatch: %d vs %d", len(chunks), len(vectors))
	}

	db := chromem.NewDB()
	collection, err := db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	docs := make([]chromem.Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = chromem.Document{
			ID:        fmt.Sprintf("%06d-%s-%d", i, chunk.SourceFilename, chunk.ChunkID),
			Content:   chunk.Content,
			Metadata:  createMetadata(chunk),
			Embedding: vectors[i],
		}
	}

	if err := collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return nil, fmt.Errorf("failed to add documents: %w", err)
	}
	return &Index{collection: collection, size: len(docs)}, nil
}

// Size returns the number of indexed chunks.
func (ix *Index) Size() int {
	if ix == nil {
		return 0
	}
	return ix.size
}

// Search returns up to k chunks ordered from most to least similar to the
// query embedding. An empty index yields an empty result, never an error.
func (ix *Index) Search(ctx context.Context, queryEmbedding []float32, k int) ([]models.Chunk, error) {
	if ix == nil || ix.size == 0 || k <= 0 {
		return nil, nil
	}
	if k > ix.size {
		k = ix.size
	}

	results, err := ix.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: queryEmbedding,
		NResults:       k,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %w", err)
	}

	chunks := make([]models.Chunk, len(results))
	for i, res := range results {
		chunks[i] = chunkFromResult(res)
	}
	return chunks, nil
}

func createMetadata(chunk models.Chunk) map[string]string {
	return map[string]string{
		"source": chunk.SourceFilename,
		"page":   strconv.Itoa(chunk.PageNumber),
		"chunk":  strconv.Itoa(chunk.ChunkID),
	}
}

func chunkFromResult(res chromem.Result) models.Chunk {
	page, _ := strconv.Atoi(res.Metadata["page"])
	chunkID, _ := strconv.Atoi(res.Metadata["chunk"])
	return models.Chunk{
		Content:        res.Content,
		SourceFilename: res.Metadata["source"],
		PageNumber:     page,
		ChunkID:        chunkID,
	}
}
