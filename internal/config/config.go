package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// LLMConfig holds connection details for one provider endpoint.
type LLMConfig struct {
	Provider string `yaml:"provider"` // "openai" or "ollama"
	BaseURL  string `yaml:"base_url"`
	Key      string `yaml:"key"`
	Model    string `yaml:"model"`
}

// RAGConfig holds the knowledge-index tunables.
type RAGConfig struct {
	DocsDir          string `yaml:"docs_dir"`
	ChunkSize        int    `yaml:"chunk_size"`
	ChunkOverlap     int    `yaml:"chunk_overlap"`
	RetrievalK       int    `yaml:"retrieval_k"`
	EmbedTimeoutSecs int    `yaml:"embed_timeout_secs"`
	LLMTimeoutSecs   int    `yaml:"llm_timeout_secs"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port        string `yaml:"port"`
	AllowOrigin string `yaml:"allow_origin"`
}

type Config struct {
	Server   ServerConfig `yaml:"server"`
	EmbedLLM LLMConfig    `yaml:"embed_llm"`
	ChatLLM  LLMConfig    `yaml:"chat_llm"`
	RAG      RAGConfig    `yaml:"rag"`
}

// ErrMissingAPIKey is a fatal startup condition: the process must refuse to
// start without a provider credential.
var ErrMissingAPIKey = errors.New("LLM_API_KEY is not set")

// LoadConfig reads the YAML config file if present, applies defaults, then
// applies environment overrides. A missing file is not an error; a missing
// API key for a keyed provider is.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(cfg)
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the fatal startup conditions.
func (c *Config) Validate() error {
	if c.EmbedLLM.Provider == "openai" && c.EmbedLLM.Key == "" {
		return ErrMissingAPIKey
	}
	if c.ChatLLM.Provider == "openai" && c.ChatLLM.Key == "" {
		return ErrMissingAPIKey
	}
	if c.RAG.DocsDir == "" {
		return errors.New("docs dir is not set")
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8080",
			AllowOrigin: "*",
		},
		EmbedLLM: LLMConfig{
			Provider: "openai",
			BaseURL:  "https://api.openai.com/v1",
			Model:    "text-embedding-3-small",
		},
		ChatLLM: LLMConfig{
			Provider: "openai",
			BaseURL:  "https://api.openai.com/v1",
			Model:    "gpt-4o-mini",
		},
		RAG: RAGConfig{
			DocsDir:          "./data",
			ChunkSize:        1000,
			ChunkOverlap:     200,
			RetrievalK:       4,
			EmbedTimeoutSecs: 30,
			LLMTimeoutSecs:   60,
		},
	}
}

func applyDefaults(cfg *Config) {
	def := defaultConfig()
	if cfg.Server.Port == "" {
		cfg.Server.Port = def.Server.Port
	}
	if cfg.Server.AllowOrigin == "" {
		cfg.Server.AllowOrigin = def.Server.AllowOrigin
	}
	if cfg.EmbedLLM.Provider == "" {
		cfg.EmbedLLM.Provider = def.EmbedLLM.Provider
	}
	if cfg.EmbedLLM.BaseURL == "" {
		cfg.EmbedLLM.BaseURL = def.EmbedLLM.BaseURL
	}
	if cfg.EmbedLLM.Model == "" {
		cfg.EmbedLLM.Model = def.EmbedLLM.Model
	}
	if cfg.ChatLLM.Provider == "" {
		cfg.ChatLLM.Provider = def.ChatLLM.Provider
	}
	if cfg.ChatLLM.BaseURL == "" {
		cfg.ChatLLM.BaseURL = def.ChatLLM.BaseURL
	}
	if cfg.ChatLLM.Model == "" {
		cfg.ChatLLM.Model = def.ChatLLM.Model
	}
	if cfg.RAG.DocsDir == "" {
		cfg.RAG.DocsDir = def.RAG.DocsDir
	}
	if cfg.RAG.ChunkSize == 0 {
		cfg.RAG.ChunkSize = def.RAG.ChunkSize
	}
	if cfg.RAG.ChunkOverlap == 0 {
		cfg.RAG.ChunkOverlap = def.RAG.ChunkOverlap
	}
	if cfg.RAG.RetrievalK == 0 {
		cfg.RAG.RetrievalK = def.RAG.RetrievalK
	}
	if cfg.RAG.EmbedTimeoutSecs == 0 {
		cfg.RAG.EmbedTimeoutSecs = def.RAG.EmbedTimeoutSecs
	}
	if cfg.RAG.LLMTimeoutSecs == 0 {
		cfg.RAG.LLMTimeoutSecs = def.RAG.LLMTimeoutSecs
	}
}

func applyEnv(cfg *Config) {
	// One provider credential serves both endpoints unless overridden.
	if key := os.Getenv("LLM_API_KEY"); key != "" {
		cfg.EmbedLLM.Key = key
		cfg.ChatLLM.Key = key
	}
	if key := os.Getenv("EMBED_LLM_API_KEY"); key != "" {
		cfg.EmbedLLM.Key = key
	}
	if key := os.Getenv("CHAT_LLM_API_KEY"); key != "" {
		cfg.ChatLLM.Key = key
	}
	cfg.RAG.DocsDir = envOrDefault("DOCS_DIR", cfg.RAG.DocsDir)
	cfg.Server.Port = envOrDefault("PORT", cfg.Server.Port)
	cfg.Server.AllowOrigin = envOrDefault("ALLOW_ORIGIN", cfg.Server.AllowOrigin)
	cfg.RAG.RetrievalK = envOrDefaultInt("RETRIEVAL_K", cfg.RAG.RetrievalK)
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return fallback
}
