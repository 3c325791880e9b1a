package repository

import (
	"context"

	"filing-advisor-go/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"
	"github.com/rotisserie/eris"
)

// PgPool 是 pgvector 仓库需要的连接池接口，*pgxpool.Pool 与 pgxmock 都满足。
type PgPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const (
	upsertChunkEmbeddingSQL = `INSERT INTO chunk_embeddings
		(chunk_id, document_id, company_id, item_name, chunk_index, model_version, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (chunk_id) DO UPDATE SET
			document_id = EXCLUDED.document_id,
			company_id = EXCLUDED.company_id,
			item_name = EXCLUDED.item_name,
			chunk_index = EXCLUDED.chunk_index,
			model_version = EXCLUDED.model_version,
			embedding = EXCLUDED.embedding`

	searchChunkEmbeddingSQL = `SELECT chunk_id, document_id, embedding <-> $1 AS distance
		FROM chunk_embeddings
		WHERE company_id = $2
		ORDER BY embedding <-> $1, chunk_id
		LIMIT $3`

	deleteChunkEmbeddingSQL = `DELETE FROM chunk_embeddings WHERE document_id = ANY($1)`
)

type pgVectorRepository struct {
	pool PgPool
}

// NewPGVectorRepository 创建基于 Postgres pgvector 的向量索引。
func NewPGVectorRepository(pool PgPool) VectorRepository {
	return &pgVectorRepository{pool: pool}
}

func (r *pgVectorRepository) IndexChunks(ctx context.Context, vectors []model.ChunkVector) error {
	for _, v := range vectors {
		_, err := r.pool.Exec(ctx, upsertChunkEmbeddingSQL,
			int64(v.ChunkID), int64(v.DocumentID), int64(v.CompanyID),
			v.ItemName, v.ChunkIndex, v.ModelVersion, pgvector.NewVector(v.Vector))
		if err != nil {
			return eris.Wrapf(err, "pgvector: upsert chunk %d", v.ChunkID)
		}
	}
	return nil
}

func (r *pgVectorRepository) Search(ctx context.Context, companyID uint, query []float32, k int) ([]model.VectorHit, error) {
	if k <= 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, searchChunkEmbeddingSQL, pgvector.NewVector(query), int64(companyID), k)
	if err != nil {
		return nil, eris.Wrap(err, "pgvector: search")
	}
	defer rows.Close()

	var hits []model.VectorHit
	for rows.Next() {
		var chunkID, documentID int64
		var distance float64
		if err := rows.Scan(&chunkID, &documentID, &distance); err != nil {
			return nil, eris.Wrap(err, "pgvector: scan hit")
		}
		hits = append(hits, model.VectorHit{
			ChunkID:    uint(chunkID),
			DocumentID: uint(documentID),
			Distance:   distance,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "pgvector: iterate hits")
	}
	return hits, nil
}

func (r *pgVectorRepository) DeleteByDocumentIDs(ctx context.Context, documentIDs []uint) error {
	if len(documentIDs) == 0 {
		return nil
	}
	ids := make([]int64, len(documentIDs))
	for i, id := range documentIDs {
		ids[i] = int64(id)
	}
	if _, err := r.pool.Exec(ctx, deleteChunkEmbeddingSQL, ids); err != nil {
		return eris.Wrap(err, "pgvector: delete by document ids")
	}
	return nil
}
