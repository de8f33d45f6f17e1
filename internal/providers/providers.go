// Package providers selects the configured model backend.
package providers

import (
	"context"
	"fmt"
	"strings"

	"insurance-agent/internal/common/config"
	httpclient "insurance-agent/internal/common/http"
	"insurance-agent/internal/providers/gemini"
	"insurance-agent/internal/providers/ollama"
)

// Model generates text and embeddings.
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Embed(ctx context.Context, text string) ([]float32, error)
}

func New(ctx context.Context, cfg config.ModelConfig) (Model, error) {
	provider := strings.ToLower(cfg.Provider)
	if provider == "" {
		provider = config.ProviderGemini
	}
	client := httpclient.NewClient(provider, config.GetDuration(cfg.Timeout))

	switch provider {
	case config.ProviderGemini:
		p, err := gemini.New(ctx, gemini.Config{
			APIKey:          cfg.APIKey,
			BaseURL:         cfg.BaseURL,
			GenerationModel: cfg.GenerationModel,
			EmbeddingModel:  cfg.EmbeddingModel,
			HTTPClient:      client,
		})
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.ProviderOllama:
		p, err := ollama.New(ollama.Config{
			BaseURL:         cfg.BaseURL,
			GenerationModel: cfg.GenerationModel,
			EmbeddingModel:  cfg.EmbeddingModel,
			HTTPClient:      client,
		})
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}
}
