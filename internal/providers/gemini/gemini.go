// Package gemini adapts the Google Gen AI SDK to the agent's text generation
// and embedding interfaces.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

const (
	DefaultGenerationModel = "gemini-2.5-flash"
	DefaultEmbeddingModel  = "text-embedding-004"
)

type Config struct {
	APIKey          string
	BaseURL         string
	GenerationModel string
	EmbeddingModel  string
	HTTPClient      *http.Client
}

// models is the subset of *genai.Models used here.
type models interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

type Provider struct {
	models          models
	generationModel string
	embeddingModel  string
}

func New(ctx context.Context, cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}
	return newProvider(client.Models, cfg), nil
}

func newProvider(m models, cfg Config) *Provider {
	if cfg.GenerationModel == "" {
		cfg.GenerationModel = DefaultGenerationModel
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = DefaultEmbeddingModel
	}
	return &Provider{
		models:          m,
		generationModel: cfg.GenerationModel,
		embeddingModel:  cfg.EmbeddingModel,
	}
}

// Generate sends prompt as a single user turn and returns the reply text.
func (p *Provider) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := p.models.GenerateContent(ctx, p.generationModel, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if resp == nil {
		return "", errors.New("gemini generate: empty response")
	}
	return strings.TrimSpace(resp.Text()), nil
}

func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := p.models.EmbedContent(ctx, p.embeddingModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("gemini embed: %w", err)
	}
	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil || len(resp.Embeddings[0].Values) == 0 {
		return nil, errors.New("gemini embed: no embedding returned")
	}
	return resp.Embeddings[0].Values, nil
}
