// Package database 负责创建 MySQL、Redis 与 Postgres 连接。
package database

import (
	"context"
	"fmt"

	"filing-advisor-go/pkg/log"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
)

// Execer 是建表需要的最小接口，*pgxpool.Pool 与 pgxmock 都满足。
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// NewPostgres 创建 pgx 连接池。
func NewPostgres(ctx context.Context, url string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, eris.Wrap(err, "database: parse postgres url")
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "database: connect postgres")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "database: ping postgres")
	}
	log.Info("Postgres pool connected successfully")
	return pool, nil
}

// EnsurePGVectorSchema 创建 vector 扩展和分块向量表。
func EnsurePGVectorSchema(ctx context.Context, db Execer, dims int) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS chunk_embeddings (
			chunk_id      BIGINT PRIMARY KEY,
			document_id   BIGINT NOT NULL,
			company_id    BIGINT NOT NULL,
			item_name     TEXT NOT NULL,
			chunk_index   INTEGER NOT NULL,
			model_version TEXT NOT NULL DEFAULT '',
			embedding     vector(%d) NOT NULL
		)`, dims),
		`CREATE INDEX IF NOT EXISTS idx_chunk_embeddings_company ON chunk_embeddings (company_id)`,
		`CREATE INDEX IF NOT EXISTS idx_chunk_embeddings_document ON chunk_embeddings (document_id)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return eris.Wrap(err, "database: ensure pgvector schema")
		}
	}
	return nil
}
