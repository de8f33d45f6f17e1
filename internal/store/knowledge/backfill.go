// internal/store/knowledge/backfill.go
package knowledge

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"insurance-agent/internal/common/logger"
	"insurance-agent/internal/models"
)

// DefaultBackfillInterval spaces embedding requests during a backfill.
const DefaultBackfillInterval = 100 * time.Millisecond

type PendingStore interface {
	PendingEmbeddings(ctx context.Context, limit int) ([]models.KnowledgeChunk, error)
	SetEmbedding(ctx context.Context, id string, embedding []float32) error
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type BackfillStats struct {
	Embedded int `json:"embedded"`
	Failed   int `json:"failed"`
}

// Backfill embeds every chunk that has no vector, batch at a time. It stops
// when nothing is pending or when a whole batch fails, since those chunks
// would be returned again.
func Backfill(ctx context.Context, store PendingStore, embedder Embedder, limiter *rate.Limiter, batch int, log logger.Logger) (BackfillStats, error) {
	log = logger.Component(log, "backfill")
	if batch <= 0 {
		batch = 50
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Every(DefaultBackfillInterval), 1)
	}

	var stats BackfillStats
	for {
		chunks, err := store.PendingEmbeddings(ctx, batch)
		if err != nil {
			return stats, err
		}
		if len(chunks) == 0 {
			return stats, nil
		}

		embedded := 0
		for _, c := range chunks {
			if err := limiter.Wait(ctx); err != nil {
				return stats, err
			}

			vec, err := embedder.Embed(ctx, c.Content)
			if err == nil {
				err = store.SetEmbedding(ctx, c.ID, vec)
			}
			if err != nil {
				stats.Failed++
				log.Warn("chunk embedding failed", map[string]interface{}{
					"id":    c.ID,
					"error": err.Error(),
				})
				continue
			}
			embedded++
			stats.Embedded++
		}

		log.Info("backfill batch done", map[string]interface{}{
			"batch":    len(chunks),
			"embedded": embedded,
		})
		if embedded == 0 {
			return stats, nil
		}
	}
}
