// Package knowledge reads the embedded knowledge corpus. PGStore serves
// vector, lexical and sample queries from a pgvector table; ESSearcher is an
// alternative lexical backend.
package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"

	apperrors "insurance-agent/internal/common/errors"
	"insurance-agent/internal/models"
)

const DefaultTable = "knowledge_base"

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Querier is satisfied by *pgxpool.Pool.
type Querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type PGStore struct {
	db    Querier
	table string
}

func NewPGStore(db Querier, table string) (*PGStore, error) {
	if table == "" {
		table = DefaultTable
	}
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid knowledge table name %q", table)
	}
	return &PGStore{db: db, table: table}, nil
}

// SimilaritySearch returns chunks whose cosine similarity to embedding
// exceeds threshold, most similar first.
func (s *PGStore) SimilaritySearch(ctx context.Context, embedding []float32, threshold float64, limit int) ([]models.KnowledgeChunk, error) {
	query := fmt.Sprintf(`
		SELECT id::text, content, metadata, 1 - (embedding <=> $1) AS similarity
		FROM %s
		WHERE embedding IS NOT NULL
		  AND 1 - (embedding <=> $1) > $2
		ORDER BY embedding <=> $1
		LIMIT $3`, s.table)

	rows, err := s.db.Query(ctx, query, pgvector.NewVector(embedding), threshold, limit)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("knowledge_similarity", err)
	}
	return collect(rows, "knowledge_similarity", true)
}

// LexicalSearch runs a websearch-style full text query over content.
func (s *PGStore) LexicalSearch(ctx context.Context, query string, limit int) ([]models.KnowledgeChunk, error) {
	sql := fmt.Sprintf(`
		SELECT id::text, content, metadata
		FROM %s
		WHERE to_tsvector('english', content) @@ websearch_to_tsquery('english', $1)
		ORDER BY ts_rank(to_tsvector('english', content), websearch_to_tsquery('english', $1)) DESC
		LIMIT $2`, s.table)

	rows, err := s.db.Query(ctx, sql, query, limit)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("knowledge_lexical", err)
	}
	return collect(rows, "knowledge_lexical", false)
}

// Sample returns up to limit chunks with no filtering.
func (s *PGStore) Sample(ctx context.Context, limit int) ([]models.KnowledgeChunk, error) {
	sql := fmt.Sprintf(`SELECT id::text, content, metadata FROM %s LIMIT $1`, s.table)

	rows, err := s.db.Query(ctx, sql, limit)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("knowledge_sample", err)
	}
	return collect(rows, "knowledge_sample", false)
}

// PendingEmbeddings returns chunks that have no embedding yet.
func (s *PGStore) PendingEmbeddings(ctx context.Context, limit int) ([]models.KnowledgeChunk, error) {
	sql := fmt.Sprintf(`SELECT id::text, content, metadata FROM %s WHERE embedding IS NULL ORDER BY id LIMIT $1`, s.table)

	rows, err := s.db.Query(ctx, sql, limit)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("knowledge_pending", err)
	}
	return collect(rows, "knowledge_pending", false)
}

func (s *PGStore) SetEmbedding(ctx context.Context, id string, embedding []float32) error {
	sql := fmt.Sprintf(`UPDATE %s SET embedding = $1 WHERE id::text = $2`, s.table)

	tag, err := s.db.Exec(ctx, sql, pgvector.NewVector(embedding), id)
	if err != nil {
		return apperrors.NewQueryExecutionFailedError("knowledge_set_embedding", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("knowledge chunk %s not found", id)
	}
	return nil
}

func collect(rows pgx.Rows, queryType string, withSimilarity bool) ([]models.KnowledgeChunk, error) {
	defer rows.Close()

	chunks := []models.KnowledgeChunk{}
	for rows.Next() {
		var (
			c        models.KnowledgeChunk
			metadata []byte
			err      error
		)
		if withSimilarity {
			err = rows.Scan(&c.ID, &c.Content, &metadata, &c.Similarity)
		} else {
			err = rows.Scan(&c.ID, &c.Content, &metadata)
		}
		if err != nil {
			return nil, apperrors.NewQueryExecutionFailedError(queryType, err)
		}
		c.Metadata = decodeMetadata(metadata)
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError(queryType, err)
	}
	return chunks, nil
}

// decodeMetadata flattens a JSON object into string values. Malformed or
// non-object metadata is dropped.
func decodeMetadata(raw []byte) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	var obj map[string]interface{}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil
	}
	return flatten(obj)
}

func flatten(obj map[string]interface{}) map[string]string {
	out := make(map[string]string, len(obj))
	for k, v := range obj {
		switch val := v.(type) {
		case string:
			out[k] = val
		case nil:
		default:
			b, err := json.Marshal(val)
			if err == nil {
				out[k] = string(b)
			}
		}
	}
	return out
}
