package knowledge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insurance-agent/internal/agent/retriever"
)

var (
	_ retriever.VectorSearcher  = (*PGStore)(nil)
	_ retriever.LexicalSearcher = (*PGStore)(nil)
	_ retriever.Sampler         = (*PGStore)(nil)
	_ retriever.LexicalSearcher = (*ESSearcher)(nil)
)

// ==========================
// Test doubles
// ==========================

type fakeRows struct {
	data [][]interface{}
	pos  int
	err  error
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Values() ([]interface{}, error) {
	return r.data[r.pos-1], nil
}

func (r *fakeRows) Scan(dest ...interface{}) error {
	row := r.data[r.pos-1]
	if len(dest) != len(row) {
		return fmt.Errorf("scan: want %d columns, got %d", len(row), len(dest))
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = row[i].(string)
		case *[]byte:
			if row[i] != nil {
				*p = []byte(row[i].(string))
			}
		case *float64:
			*p = row[i].(float64)
		default:
			return fmt.Errorf("scan: unsupported destination %T", d)
		}
	}
	return nil
}

type fakeQuerier struct {
	rows     *fakeRows
	queryErr error
	tag      pgconn.CommandTag
	execErr  error

	gotSQL  string
	gotArgs []interface{}
}

func (q *fakeQuerier) Query(_ context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	q.gotSQL, q.gotArgs = sql, args
	if q.queryErr != nil {
		return nil, q.queryErr
	}
	if q.rows == nil {
		return &fakeRows{}, nil
	}
	return q.rows, nil
}

func (q *fakeQuerier) Exec(_ context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	q.gotSQL, q.gotArgs = sql, args
	return q.tag, q.execErr
}

func squash(sql string) string {
	return strings.Join(strings.Fields(sql), " ")
}

// ==========================
// PGStore
// ==========================

func TestNewPGStore_TableName(t *testing.T) {
	s, err := NewPGStore(&fakeQuerier{}, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultTable, s.table)

	_, err = NewPGStore(&fakeQuerier{}, "public.knowledge_base")
	assert.NoError(t, err)

	_, err = NewPGStore(&fakeQuerier{}, "kb; DROP TABLE customers")
	assert.Error(t, err)
}

func TestSimilaritySearch(t *testing.T) {
	q := &fakeQuerier{rows: &fakeRows{data: [][]interface{}{
		{"kb-1", "Term insurance covers death.", `{"category":"term","year":2024}`, 0.91},
		{"kb-2", "ULIPs are market-linked.", nil, 0.74},
	}}}
	s, err := NewPGStore(q, "")
	require.NoError(t, err)

	chunks, err := s.SimilaritySearch(context.Background(), []float32{0.1, 0.2}, 0.7, 3)
	require.NoError(t, err)

	sql := squash(q.gotSQL)
	assert.Contains(t, sql, "1 - (embedding <=> $1) > $2")
	assert.Contains(t, sql, "ORDER BY embedding <=> $1 LIMIT $3")
	assert.Contains(t, sql, "FROM knowledge_base")
	require.Len(t, q.gotArgs, 3)
	assert.Equal(t, pgvector.NewVector([]float32{0.1, 0.2}), q.gotArgs[0])
	assert.Equal(t, 0.7, q.gotArgs[1])
	assert.Equal(t, 3, q.gotArgs[2])

	require.Len(t, chunks, 2)
	assert.Equal(t, 0.91, chunks[0].Similarity)
	assert.Equal(t, map[string]string{"category": "term", "year": "2024"}, chunks[0].Metadata)
	assert.Nil(t, chunks[1].Metadata)
}

func TestSimilaritySearch_EmptyIsNotError(t *testing.T) {
	s, _ := NewPGStore(&fakeQuerier{}, "")
	chunks, err := s.SimilaritySearch(context.Background(), []float32{1}, 0.7, 3)
	require.NoError(t, err)
	assert.NotNil(t, chunks)
	assert.Empty(t, chunks)
}

func TestLexicalSearch(t *testing.T) {
	q := &fakeQuerier{rows: &fakeRows{data: [][]interface{}{{"kb-3", "Claims settle within 30 days.", "{}"}}}}
	s, _ := NewPGStore(q, "kb")

	chunks, err := s.LexicalSearch(context.Background(), "claim settlement", 5)
	require.NoError(t, err)
	assert.Contains(t, squash(q.gotSQL), "websearch_to_tsquery('english', $1)")
	assert.Equal(t, []interface{}{"claim settlement", 5}, q.gotArgs)
	require.Len(t, chunks, 1)
	assert.Equal(t, "kb-3", chunks[0].ID)
}

func TestSample(t *testing.T) {
	q := &fakeQuerier{rows: &fakeRows{data: [][]interface{}{{"kb-1", "a", nil}, {"kb-2", "b", nil}}}}
	s, _ := NewPGStore(q, "")

	chunks, err := s.Sample(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, chunks, 2)
	assert.NotContains(t, q.gotSQL, "WHERE")
}

func TestQueryErrors(t *testing.T) {
	s, _ := NewPGStore(&fakeQuerier{queryErr: errors.New("connection refused")}, "")

	_, err := s.SimilaritySearch(context.Background(), []float32{1}, 0.7, 3)
	assert.Error(t, err)
	_, err = s.LexicalSearch(context.Background(), "x", 3)
	assert.Error(t, err)
	_, err = s.Sample(context.Background(), 3)
	assert.Error(t, err)
}

func TestRowsErrSurfaces(t *testing.T) {
	s, _ := NewPGStore(&fakeQuerier{rows: &fakeRows{err: errors.New("stream broken")}}, "")
	_, err := s.Sample(context.Background(), 3)
	assert.Error(t, err)
}

func TestPendingAndSetEmbedding(t *testing.T) {
	q := &fakeQuerier{rows: &fakeRows{data: [][]interface{}{{"kb-9", "new entry", nil}}}}
	s, _ := NewPGStore(q, "")

	pending, err := s.PendingEmbeddings(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Contains(t, q.gotSQL, "embedding IS NULL")

	q.tag = pgconn.NewCommandTag("UPDATE 1")
	require.NoError(t, s.SetEmbedding(context.Background(), "kb-9", []float32{0.5}))
	assert.Contains(t, q.gotSQL, "UPDATE knowledge_base SET embedding = $1")
	assert.Equal(t, "kb-9", q.gotArgs[1])

	q.tag = pgconn.NewCommandTag("UPDATE 0")
	assert.Error(t, s.SetEmbedding(context.Background(), "missing", []float32{0.5}))
}
