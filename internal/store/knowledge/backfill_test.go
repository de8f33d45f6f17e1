package knowledge

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"insurance-agent/internal/common/logger"
	"insurance-agent/internal/models"
)

type memPending struct {
	chunks  map[string]string
	order   []string
	vectors map[string][]float32
	err     error
}

func newMemPending(ids ...string) *memPending {
	m := &memPending{chunks: map[string]string{}, vectors: map[string][]float32{}}
	for _, id := range ids {
		m.chunks[id] = "content " + id
		m.order = append(m.order, id)
	}
	return m
}

func (m *memPending) PendingEmbeddings(_ context.Context, limit int) ([]models.KnowledgeChunk, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.KnowledgeChunk
	for _, id := range m.order {
		if _, done := m.vectors[id]; done {
			continue
		}
		out = append(out, models.KnowledgeChunk{ID: id, Content: m.chunks[id]})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memPending) SetEmbedding(_ context.Context, id string, embedding []float32) error {
	m.vectors[id] = embedding
	return nil
}

type stubEmbedder struct {
	failFor map[string]bool
	calls   int
}

func (e *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.calls++
	if e.failFor[text] {
		return nil, errors.New("quota exceeded")
	}
	return []float32{float32(len(text))}, nil
}

func unlimited() *rate.Limiter { return rate.NewLimiter(rate.Inf, 1) }

func TestBackfill_EmbedsAllPending(t *testing.T) {
	store := newMemPending("1", "2", "3", "4", "5")
	emb := &stubEmbedder{}

	stats, err := Backfill(context.Background(), store, emb, unlimited(), 2, logger.NewTestLogger(t))
	require.NoError(t, err)

	assert.Equal(t, BackfillStats{Embedded: 5}, stats)
	assert.Len(t, store.vectors, 5)
	assert.Equal(t, 5, emb.calls)
}

func TestBackfill_StopsWhenBatchMakesNoProgress(t *testing.T) {
	store := newMemPending("1", "2", "3")
	emb := &stubEmbedder{failFor: map[string]bool{"content 2": true, "content 3": true}}

	stats, err := Backfill(context.Background(), store, emb, unlimited(), 2, nil)
	require.NoError(t, err)

	// batch 1: "1" ok, "2" fails; batch 2: "2", "3" fail; stop.
	assert.Equal(t, 1, stats.Embedded)
	assert.Equal(t, 3, stats.Failed)
}

func TestBackfill_StoreError(t *testing.T) {
	store := newMemPending()
	store.err = errors.New("connection reset")

	_, err := Backfill(context.Background(), store, &stubEmbedder{}, unlimited(), 10, nil)
	assert.EqualError(t, err, "connection reset")
}

func TestBackfill_LimiterError(t *testing.T) {
	store := newMemPending("1")
	_, err := Backfill(context.Background(), store, &stubEmbedder{}, rate.NewLimiter(1, 0), 10, nil)
	assert.Error(t, err)
	assert.Empty(t, store.vectors)
}

func TestPGStore_SatisfiesPendingStore(t *testing.T) {
	var _ PendingStore = (*PGStore)(nil)
}
