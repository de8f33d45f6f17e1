// internal/common/database/pgvector.go
package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// KnowledgePool wraps the pgx pool for the pgvector-backed knowledge corpus.
type KnowledgePool struct {
	Pool *pgxpool.Pool
}

// NewKnowledgePool parses url and opens a pool capped at maxConns.
func NewKnowledgePool(ctx context.Context, url string, maxConns int32) (*KnowledgePool, error) {
	poolCfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse knowledge database url: %w", err)
	}
	if maxConns > 0 {
		poolCfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open knowledge pool: %w", err)
	}

	return &KnowledgePool{Pool: pool}, nil
}

func (k *KnowledgePool) Ping(ctx context.Context) error {
	if err := k.Pool.Ping(ctx); err != nil {
		return fmt.Errorf("knowledge pool ping failed: %w", err)
	}
	return nil
}

func (k *KnowledgePool) Close() error {
	if k.Pool != nil {
		k.Pool.Close()
	}
	return nil
}
