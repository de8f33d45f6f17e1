// Package ollama adapts a local Ollama server, through langchaingo, to the
// agent's text generation and embedding interfaces.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

const (
	DefaultBaseURL         = "http://localhost:11434"
	DefaultGenerationModel = "llama3.1"
	DefaultEmbeddingModel  = "nomic-embed-text"
)

type Config struct {
	BaseURL         string
	GenerationModel string
	EmbeddingModel  string
	HTTPClient      *http.Client
}

type embedder interface {
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
}

type Provider struct {
	llm      llms.Model
	embedder embedder
}

func New(cfg Config) (*Provider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.GenerationModel == "" {
		cfg.GenerationModel = DefaultGenerationModel
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = DefaultEmbeddingModel
	}

	opts := []ollama.Option{ollama.WithServerURL(cfg.BaseURL)}
	if cfg.HTTPClient != nil {
		opts = append(opts, ollama.WithHTTPClient(cfg.HTTPClient))
	}

	llm, err := ollama.New(append(opts, ollama.WithModel(cfg.GenerationModel))...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM: %w", err)
	}
	emb, err := ollama.New(append(opts, ollama.WithModel(cfg.EmbeddingModel))...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	return &Provider{llm: llm, embedder: emb}, nil
}

func (p *Provider) Generate(ctx context.Context, prompt string) (string, error) {
	out, err := llms.GenerateFromSinglePrompt(ctx, p.llm, prompt)
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	return strings.TrimSpace(out), nil
}

func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := p.embedder.CreateEmbedding(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("ollama embed: %w", err)
	}
	if len(embeddings) == 0 || len(embeddings[0]) == 0 {
		return nil, errors.New("ollama embed: no embedding returned")
	}
	return embeddings[0], nil
}
