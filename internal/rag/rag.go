package rag

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"

	"pharmacy-rag/internal/chromemdb"
	"pharmacy-rag/internal/config"
	"pharmacy-rag/internal/embedding"
	"pharmacy-rag/internal/llmservice"
	"pharmacy-rag/internal/models"
)

// Loader produces the full chunk set of the source corpus. An empty slice
// with a nil error means the corpus is empty.
type Loader interface {
	Load() ([]models.Chunk, error)
}

// Service owns the optional knowledge index and runs the answer pipeline
// against it. It is the single holder of index state: handlers receive the
// service, never the index.
type Service struct {
	loader    Loader
	embedder  embeddings.Embedder
	completer llmservice.Completer
	cfg       config.RAGConfig

	mu    sync.RWMutex
	index *chromemdb.Index
}

func NewService(loader Loader, embedder embeddings.Embedder, completer llmservice.Completer, cfg config.RAGConfig) *Service {
	return &Service{
		loader:    loader,
		embedder:  embedder,
		completer: completer,
		cfg:       cfg,
	}
}

// Ready reports whether a knowledge index is present.
func (s *Service) Ready() bool {
	return s.snapshot() != nil
}

// Size returns the number of indexed chunks, zero when the index is absent.
func (s *Service) Size() int {
	return s.snapshot().Size()
}

// Rebuild loads the corpus, embeds every chunk and swaps in a freshly built
// index. An empty corpus is a successful-but-inactive outcome: the index is
// stored as absent. On any failure the previous index (possibly absent) is
// left untouched, so concurrent requests never observe a partial index.
func (s *Service) Rebuild(ctx context.Context) error {
	chunks, err := s.loader.Load()
	if err != nil {
		return &IndexingError{Kind: KindDirectoryAccess, Err: err}
	}

	if len(chunks) == 0 {
		log.Warn().Msg("No PDF documents found, knowledge index will not be activated")
		s.swap(nil)
		return nil
	}
	log.Info().Int("chunks", len(chunks)).Msg("Corpus split into chunks")

	ectx, cancel := context.WithTimeout(ctx, s.embedTimeout())
	defer cancel()
	vectors, err := embedding.EmbedChunks(ectx, s.embedder, chunks)
	if err != nil {
		return &IndexingError{Kind: KindEmbedding, Err: err}
	}

	index, err := chromemdb.BuildIndex(ctx, chunks, vectors)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}

	s.swap(index)
	log.Info().Int("chunks", index.Size()).Msg("Knowledge index built")
	return nil
}

// Answer runs one user message through the pipeline: retrieve top-k chunks,
// assemble the context block, render the prompt and request a completion.
// Errors are returned typed; collapsing them into the fixed fallback strings
// is the transport layer's job (see Fallback).
func (s *Service) Answer(ctx context.Context, userMessage string) (models.AnswerResult, error) {
	result := models.AnswerResult{Query: userMessage}

	index := s.snapshot()
	if index == nil {
		return result, ErrIndexUnavailable
	}

	ectx, cancel := context.WithTimeout(ctx, s.embedTimeout())
	queryEmbedding, err := s.embedder.EmbedQuery(ectx, userMessage)
	cancel()
	if err != nil {
		return result, fmt.Errorf("embed query: %w", err)
	}

	chunks, err := index.Search(ctx, queryEmbedding, s.cfg.RetrievalK)
	if err != nil {
		return result, fmt.Errorf("retrieve context: %w", err)
	}
	result.Source = combineSources(chunks)

	contextBlock := combineChunks(chunks)
	systemPrompt := fmt.Sprintf(models.SystemPromptTemplate, contextBlock)

	lctx, cancel := context.WithTimeout(ctx, s.llmTimeout())
	defer cancel()
	answer, err := s.completer.Complete(lctx, systemPrompt, userMessage)
	if err != nil {
		return result, fmt.Errorf("generate completion: %w", err)
	}
	result.Content = answer
	return result, nil
}

// combineChunks joins the retrieved chunk texts, in retrieval order,
// separated by a blank line. Zero chunks yield an empty context.
func combineChunks(chunks []models.Chunk) string {
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}
	return strings.Join(texts, "\n\n")
}

// combineSources lists the distinct source filenames of the retrieved
// chunks, in retrieval order.
func combineSources(chunks []models.Chunk) string {
	var sources []string
	seen := make(map[string]bool)
	for _, chunk := range chunks {
		if chunk.SourceFilename == "" || seen[chunk.SourceFilename] {
			continue
		}
		seen[chunk.SourceFilename] = true
		sources = append(sources, chunk.SourceFilename)
	}
	return strings.Join(sources, ", ")
}

// snapshot copies the index pointer under the read lock. Callers use the
// returned index without holding any lock across service calls.
func (s *Service) snapshot() *chromemdb.Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

func (s *Service) swap(index *chromemdb.Index) {
	s.mu.Lock()
	s.index = index
	s.mu.Unlock()
}

func (s *Service) embedTimeout() time.Duration {
	if s.cfg.EmbedTimeoutSecs <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.cfg.EmbedTimeoutSecs) * time.Second
}

func (s *Service) llmTimeout() time.Duration {
	if s.cfg.LLMTimeoutSecs <= 0 {
		return 60 * time.Second
	}
	return time.Duration(s.cfg.LLMTimeoutSecs) * time.Second
}
