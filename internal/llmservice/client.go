package llmservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"pharmacy-rag/internal/config"
)

// Completer is the narrow capability the answer pipeline needs from the LLM
// provider: one rendered prompt in, one plain-text completion out.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

// Client is a Completer backed by a langchaingo chat model.
type Client struct {
	llm   llms.Model
	model string
}

// NewFromConfig builds a completion client for the configured provider.
func NewFromConfig(cfg *config.LLMConfig) (*Client, error) {
	switch cfg.Provider {
	case "ollama":
		llm, err := ollama.New(
			ollama.WithServerURL(cfg.BaseURL),
			ollama.WithModel(cfg.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("initializing chat LLM: %w", err)
		}
		return &Client{llm: llm, model: cfg.Model}, nil
	case "openai", "":
		llm, err := openai.New(
			openai.WithBaseURL(cfg.BaseURL),
			openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
			openai.WithModel(cfg.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("initializing chat LLM: %w", err)
		}
		return &Client{llm: llm, model: cfg.Model}, nil
	default:
		return nil, fmt.Errorf("unknown chat provider: %s", cfg.Provider)
	}
}

// Complete sends the rendered prompt and returns a single non-streaming
// text completion.
func (c *Client) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	log.Debug().Str("model", c.model).Msg("Generating completion")

	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextContent{Text: systemPrompt}},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: userMessage}},
		},
	}

	res, err := c.llm.GenerateContent(ctx, messages)
	if err != nil {
		return "", err
	}
	if len(res.Choices) == 0 {
		return "", errors.New("completion response has no choices")
	}
	return res.Choices[0].Content, nil
}
