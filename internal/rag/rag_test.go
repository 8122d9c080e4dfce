package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmacy-rag/internal/config"
	"pharmacy-rag/internal/models"
)

type stubLoader struct {
	chunks []models.Chunk
	err    error
}

func (l *stubLoader) Load() ([]models.Chunk, error) {
	return l.chunks, l.err
}

type stubEmbedder struct {
	err error
}

func (e *stubEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

func (e *stubEmbedder) EmbedQuery(_ context.Context, _ string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	return []float32{1, 0, 0}, nil
}

// echoCompleter returns the system prompt it received, so tests can verify
// that the retrieved context actually reached the LLM call.
type echoCompleter struct {
	err       error
	gotSystem string
	gotUser   string
}

func (c *echoCompleter) Complete(_ context.Context, systemPrompt, userMessage string) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	c.gotSystem = systemPrompt
	c.gotUser = userMessage
	return systemPrompt, nil
}

func testCfg() config.RAGConfig {
	return config.RAGConfig{
		ChunkSize:        1000,
		ChunkOverlap:     200,
		RetrievalK:       4,
		EmbedTimeoutSecs: 5,
		LLMTimeoutSecs:   5,
	}
}

func TestAnswerIndexAbsent(t *testing.T) {
	svc := NewService(&stubLoader{}, &stubEmbedder{}, &echoCompleter{}, testCfg())

	_, err := svc.Answer(context.Background(), "What are your hours?")
	require.ErrorIs(t, err, ErrIndexUnavailable)
	assert.Equal(t, "Sorry, the knowledge system is currently unavailable.", Fallback(err))
}

func TestRebuildEmptyCorpus(t *testing.T) {
	svc := NewService(&stubLoader{}, &stubEmbedder{}, &echoCompleter{}, testCfg())

	require.NoError(t, svc.Rebuild(context.Background()))
	assert.False(t, svc.Ready())
	assert.Equal(t, 0, svc.Size())

	_, err := svc.Answer(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrIndexUnavailable)
}

func TestRebuildDirectoryAccessError(t *testing.T) {
	loader := &stubLoader{err: errors.New("permission denied")}
	svc := NewService(loader, &stubEmbedder{}, &echoCompleter{}, testCfg())

	err := svc.Rebuild(context.Background())
	var ie *IndexingError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, KindDirectoryAccess, ie.Kind)
	assert.False(t, svc.Ready())
}

func TestRebuildEmbeddingFailureKeepsPriorIndex(t *testing.T) {
	loader := &stubLoader{chunks: []models.Chunk{
		{Content: "Opening hours are 9am to 6pm.", SourceFilename: "info.pdf", PageNumber: 1, ChunkID: 1},
	}}
	embedder := &stubEmbedder{}
	svc := NewService(loader, embedder, &echoCompleter{}, testCfg())

	require.NoError(t, svc.Rebuild(context.Background()))
	require.True(t, svc.Ready())
	require.Equal(t, 1, svc.Size())

	embedder.err = errors.New("quota exceeded")
	err := svc.Rebuild(context.Background())
	var ie *IndexingError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, KindEmbedding, ie.Kind)

	// The failed attempt must not disturb the index already being served.
	assert.True(t, svc.Ready())
	assert.Equal(t, 1, svc.Size())
}

func TestAnswerGroundedInContext(t *testing.T) {
	chunkText := "The pharmacy is open Monday to Friday, 9am to 6pm, and compounds custom creams."
	loader := &stubLoader{chunks: []models.Chunk{
		{Content: chunkText, SourceFilename: "hours.pdf", PageNumber: 1, ChunkID: 1},
	}}
	completer := &echoCompleter{}
	svc := NewService(loader, &stubEmbedder{}, completer, testCfg())

	require.NoError(t, svc.Rebuild(context.Background()))
	require.True(t, svc.Ready())

	result, err := svc.Answer(context.Background(), "When are you open?")
	require.NoError(t, err)

	// The completer echoes the rendered system prompt, so a grounded answer
	// must carry the retrieved chunk and differ from both fallback strings.
	assert.Contains(t, result.Content, chunkText)
	assert.NotEqual(t, models.MsgUnavailable, result.Content)
	assert.NotEqual(t, models.MsgProcessingError, result.Content)
	assert.Equal(t, "When are you open?", result.Query)
	assert.Equal(t, "hours.pdf", result.Source)
	assert.Equal(t, "When are you open?", completer.gotUser)
	assert.Contains(t, completer.gotSystem, chunkText)
}

func TestAnswerCompletionFailure(t *testing.T) {
	loader := &stubLoader{chunks: []models.Chunk{
		{Content: "Opening hours are 9am to 6pm.", SourceFilename: "info.pdf", PageNumber: 1, ChunkID: 1},
	}}
	svc := NewService(loader, &stubEmbedder{}, &echoCompleter{err: errors.New("model overloaded")}, testCfg())

	require.NoError(t, svc.Rebuild(context.Background()))

	_, err := svc.Answer(context.Background(), "When are you open?")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrIndexUnavailable)
	assert.Equal(t, "Sorry, an error occurred while processing your request.", Fallback(err))
}

func TestAnswerRetrievalFailure(t *testing.T) {
	loader := &stubLoader{chunks: []models.Chunk{
		{Content: "Opening hours are 9am to 6pm.", SourceFilename: "info.pdf", PageNumber: 1, ChunkID: 1},
	}}
	embedder := &stubEmbedder{}
	svc := NewService(loader, embedder, &echoCompleter{}, testCfg())

	require.NoError(t, svc.Rebuild(context.Background()))

	embedder.err = errors.New("network down")
	_, err := svc.Answer(context.Background(), "When are you open?")
	require.Error(t, err)
	assert.Equal(t, models.MsgProcessingError, Fallback(err))
}

func TestCombineChunks(t *testing.T) {
	chunks := []models.Chunk{
		{Content: "first"},
		{Content: "second"},
		{Content: "third"},
	}
	assert.Equal(t, "first\n\nsecond\n\nthird", combineChunks(chunks))
	assert.Equal(t, "", combineChunks(nil))
}
