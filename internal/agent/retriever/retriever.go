// Package retriever finds knowledge passages for a query, degrading from
// vector search to lexical search to an unfiltered sample. It never fails.
package retriever

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	apperrors "insurance-agent/internal/common/errors"
	"insurance-agent/internal/common/logger"
	"insurance-agent/internal/common/metrics"
	"insurance-agent/internal/models"
)

const (
	DefaultThreshold = 0.7
	DefaultLimit     = 3
)

// Retrieval paths, used as metric labels.
const (
	PathVector  = "vector"
	PathLexical = "lexical"
	PathSample  = "sample"
	PathEmpty   = "empty"
)

type EmbeddingSource interface {
	GetOrCompute(ctx context.Context, text string) ([]float32, error)
}

// VectorSearcher returns chunks with similarity above threshold, most similar first.
type VectorSearcher interface {
	SimilaritySearch(ctx context.Context, embedding []float32, threshold float64, limit int) ([]models.KnowledgeChunk, error)
}

type LexicalSearcher interface {
	LexicalSearch(ctx context.Context, query string, limit int) ([]models.KnowledgeChunk, error)
}

type Sampler interface {
	Sample(ctx context.Context, limit int) ([]models.KnowledgeChunk, error)
}

type Config struct {
	Threshold    float64
	DefaultLimit int
}

type Retriever struct {
	config     Config
	embeddings EmbeddingSource
	vector     VectorSearcher
	lexical    LexicalSearcher
	sampler    Sampler
	logger     logger.Logger
}

// New wires the tiers. Any searcher may be nil, in which case that tier is
// treated as failed.
func New(cfg Config, embeddings EmbeddingSource, vector VectorSearcher, lexical LexicalSearcher, sampler Sampler, log logger.Logger) *Retriever {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = DefaultLimit
	}
	return &Retriever{
		config:     cfg,
		embeddings: embeddings,
		vector:     vector,
		lexical:    lexical,
		sampler:    sampler,
		logger:     logger.Component(log, "retriever"),
	}
}

// Search returns at most limit chunks. The result may be empty but the call
// never errors or panics.
func (r *Retriever) Search(ctx context.Context, query string, limit int) []models.KnowledgeChunk {
	if limit <= 0 {
		limit = r.config.DefaultLimit
	}

	ctx, span := otel.Tracer("insurance-agent/agent").Start(ctx, "retriever.Search")
	defer span.End()

	chunks, path := r.search(ctx, query, limit)
	if len(chunks) > limit {
		chunks = chunks[:limit]
	}

	span.SetAttributes(attribute.String("retrieval.path", path), attribute.Int("retrieval.count", len(chunks)))
	metrics.RetrievalPath.WithLabelValues(path).Inc()
	return chunks
}

func (r *Retriever) search(ctx context.Context, query string, limit int) ([]models.KnowledgeChunk, string) {
	chunks, err := r.vectorTier(ctx, query, limit)
	if err == nil {
		return chunks, PathVector
	}
	r.degraded(PathVector, err)

	chunks, err = guard(func() ([]models.KnowledgeChunk, error) {
		if r.lexical == nil {
			return nil, fmt.Errorf("no lexical searcher configured")
		}
		return r.lexical.LexicalSearch(ctx, query, limit)
	})
	if err == nil {
		return chunks, PathLexical
	}
	r.degraded(PathLexical, err)

	chunks, err = guard(func() ([]models.KnowledgeChunk, error) {
		if r.sampler == nil {
			return nil, fmt.Errorf("no sampler configured")
		}
		return r.sampler.Sample(ctx, limit)
	})
	if err == nil {
		return chunks, PathSample
	}
	r.degraded(PathSample, err)

	return []models.KnowledgeChunk{}, PathEmpty
}

func (r *Retriever) vectorTier(ctx context.Context, query string, limit int) ([]models.KnowledgeChunk, error) {
	return guard(func() ([]models.KnowledgeChunk, error) {
		if r.embeddings == nil || r.vector == nil {
			return nil, fmt.Errorf("vector search not configured")
		}
		embedding, err := r.embeddings.GetOrCompute(ctx, query)
		if err != nil {
			return nil, apperrors.NewEmbeddingFailedError(err)
		}
		return r.vector.SimilaritySearch(ctx, embedding, r.config.Threshold, limit)
	})
}

func (r *Retriever) degraded(tier string, err error) {
	r.logger.Warn("knowledge retrieval degraded", apperrors.NewRetrievalDegradedError(tier, err).Fields())
}

// guard converts a panicking tier into an error so the next tier runs.
func guard(fn func() ([]models.KnowledgeChunk, error)) (chunks []models.KnowledgeChunk, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			chunks, err = nil, fmt.Errorf("panic: %v", rec)
		}
	}()
	chunks, err = fn()
	if err == nil && chunks == nil {
		chunks = []models.KnowledgeChunk{}
	}
	return chunks, err
}

// JoinContent concatenates chunk contents into the knowledge block used in prompts.
func JoinContent(chunks []models.KnowledgeChunk) string {
	parts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if strings.TrimSpace(c.Content) != "" {
			parts = append(parts, c.Content)
		}
	}
	return strings.Join(parts, "\n\n")
}
