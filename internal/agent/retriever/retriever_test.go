package retriever

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"insurance-agent/internal/common/logger"
	"insurance-agent/internal/models"
)

type fakeEmbeddings struct {
	err   error
	calls int
}

func (f *fakeEmbeddings) GetOrCompute(context.Context, string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

type fakeVector struct {
	chunks       []models.KnowledgeChunk
	err          error
	panics       bool
	gotThreshold float64
	gotLimit     int
	calls        int
}

func (f *fakeVector) SimilaritySearch(_ context.Context, _ []float32, threshold float64, limit int) ([]models.KnowledgeChunk, error) {
	f.calls++
	f.gotThreshold, f.gotLimit = threshold, limit
	if f.panics {
		panic("vector index corrupted")
	}
	return f.chunks, f.err
}

type fakeLexical struct {
	chunks   []models.KnowledgeChunk
	err      error
	gotQuery string
	calls    int
}

func (f *fakeLexical) LexicalSearch(_ context.Context, query string, _ int) ([]models.KnowledgeChunk, error) {
	f.calls++
	f.gotQuery = query
	return f.chunks, f.err
}

type fakeSampler struct {
	chunks []models.KnowledgeChunk
	err    error
	calls  int
}

func (f *fakeSampler) Sample(_ context.Context, limit int) ([]models.KnowledgeChunk, error) {
	f.calls++
	if len(f.chunks) > limit {
		return f.chunks[:limit], f.err
	}
	return f.chunks, f.err
}

func chunks(ids ...string) []models.KnowledgeChunk {
	out := make([]models.KnowledgeChunk, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.KnowledgeChunk{ID: id, Content: "content " + id})
	}
	return out
}

func TestSearch_VectorPath(t *testing.T) {
	emb := &fakeEmbeddings{}
	vec := &fakeVector{chunks: chunks("v1", "v2")}
	lex := &fakeLexical{chunks: chunks("l1")}
	r := New(Config{}, emb, vec, lex, &fakeSampler{}, logger.NewTestLogger(t))

	got := r.Search(context.Background(), "term life benefits", 3)

	assert.Equal(t, chunks("v1", "v2"), got)
	assert.Equal(t, DefaultThreshold, vec.gotThreshold)
	assert.Equal(t, 3, vec.gotLimit)
	assert.Equal(t, 0, lex.calls)
}

func TestSearch_EmptyVectorResultIsNotDegraded(t *testing.T) {
	lex := &fakeLexical{chunks: chunks("l1")}
	r := New(Config{}, &fakeEmbeddings{}, &fakeVector{}, lex, nil, logger.NewNoOpLogger())

	got := r.Search(context.Background(), "anything", 3)

	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, 0, lex.calls)
}

func TestSearch_Fallbacks(t *testing.T) {
	tests := []struct {
		name        string
		embedErr    error
		vector      *fakeVector
		lexical     *fakeLexical
		sampler     *fakeSampler
		expectedIDs []string
	}{
		{
			name:        "embedding failure falls back to lexical",
			embedErr:    errors.New("embedding quota exceeded"),
			vector:      &fakeVector{chunks: chunks("v1")},
			lexical:     &fakeLexical{chunks: chunks("l1", "l2")},
			sampler:     &fakeSampler{chunks: chunks("s1")},
			expectedIDs: []string{"l1", "l2"},
		},
		{
			name:        "vector failure falls back to lexical",
			vector:      &fakeVector{err: errors.New("function match_documents does not exist")},
			lexical:     &fakeLexical{chunks: chunks("l1")},
			sampler:     &fakeSampler{chunks: chunks("s1")},
			expectedIDs: []string{"l1"},
		},
		{
			name:        "vector panic falls back to lexical",
			vector:      &fakeVector{panics: true},
			lexical:     &fakeLexical{chunks: chunks("l1")},
			sampler:     &fakeSampler{},
			expectedIDs: []string{"l1"},
		},
		{
			name:        "lexical failure falls back to sample",
			vector:      &fakeVector{err: errors.New("timeout")},
			lexical:     &fakeLexical{err: errors.New("syntax error in tsquery")},
			sampler:     &fakeSampler{chunks: chunks("s1", "s2", "s3", "s4")},
			expectedIDs: []string{"s1", "s2", "s3"},
		},
		{
			name:        "every tier fails",
			vector:      &fakeVector{err: errors.New("down")},
			lexical:     &fakeLexical{err: errors.New("down")},
			sampler:     &fakeSampler{err: errors.New("down")},
			expectedIDs: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(Config{}, &fakeEmbeddings{err: tt.embedErr}, tt.vector, tt.lexical, tt.sampler, logger.NewTestLogger(t))

			var got []models.KnowledgeChunk
			assert.NotPanics(t, func() {
				got = r.Search(context.Background(), "claim settlement ratio", 3)
			})

			ids := make([]string, 0, len(got))
			for _, c := range got {
				ids = append(ids, c.ID)
			}
			assert.NotNil(t, got)
			assert.Equal(t, tt.expectedIDs, ids)
		})
	}
}

func TestSearch_LexicalUsesLiteralQuery(t *testing.T) {
	lex := &fakeLexical{chunks: chunks("l1")}
	r := New(Config{}, &fakeEmbeddings{err: errors.New("down")}, &fakeVector{}, lex, nil, nil)

	r.Search(context.Background(), `"child plan" tax benefits`, 2)
	assert.Equal(t, `"child plan" tax benefits`, lex.gotQuery)
}

func TestSearch_UnconfiguredTiers(t *testing.T) {
	r := New(Config{}, nil, nil, nil, nil, nil)
	got := r.Search(context.Background(), "anything", 3)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSearch_DefaultLimitAndTruncation(t *testing.T) {
	vec := &fakeVector{chunks: chunks("a", "b", "c", "d", "e")}
	r := New(Config{Threshold: 0.8, DefaultLimit: 2}, &fakeEmbeddings{}, vec, nil, nil, nil)

	got := r.Search(context.Background(), "anything", 0)

	assert.Len(t, got, 2)
	assert.Equal(t, 2, vec.gotLimit)
	assert.Equal(t, 0.8, vec.gotThreshold)
}

func TestJoinContent(t *testing.T) {
	joined := JoinContent([]models.KnowledgeChunk{
		{Content: "Term Life offers pure protection."},
		{Content: "   "},
		{Content: "ULIP returns are market-linked."},
	})
	assert.Equal(t, "Term Life offers pure protection.\n\nULIP returns are market-linked.", joined)
	assert.Equal(t, "", JoinContent(nil))
}
