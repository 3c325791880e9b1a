package repository

import (
	"context"
	"math"
	"testing"

	"filing-advisor-go/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vec(values ...float32) []float32 { return values }

func TestMemoryVectorRepository_SearchScopesToCompany(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryVectorRepository()
	require.NoError(t, repo.IndexChunks(ctx, []model.ChunkVector{
		{ChunkID: 1, DocumentID: 10, CompanyID: 1, Vector: vec(0, 0)},
		{ChunkID: 2, DocumentID: 10, CompanyID: 1, Vector: vec(3, 4)},
		{ChunkID: 3, DocumentID: 20, CompanyID: 2, Vector: vec(0, 0.1)},
		{ChunkID: 4, DocumentID: 11, CompanyID: 1, Vector: vec(1, 0)},
	}))

	hits, err := repo.Search(ctx, 1, vec(0, 0), 5)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, []uint{1, 4, 2}, []uint{hits[0].ChunkID, hits[1].ChunkID, hits[2].ChunkID})
	assert.InDelta(t, 5.0, hits[2].Distance, 1e-9)
	for _, h := range hits {
		assert.NotEqual(t, uint(3), h.ChunkID)
	}

	hits, err = repo.Search(ctx, 3, vec(0, 0), 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestMemoryVectorRepository_TopKAndTies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryVectorRepository()
	var vectors []model.ChunkVector
	for i := uint(1); i <= 8; i++ {
		vectors = append(vectors, model.ChunkVector{ChunkID: 9 - i, DocumentID: 1, CompanyID: 7, Vector: vec(1, 1)})
	}
	require.NoError(t, repo.IndexChunks(ctx, vectors))

	hits, err := repo.Search(ctx, 7, vec(1, 1), 5)
	require.NoError(t, err)
	require.Len(t, hits, 5)
	for i, h := range hits {
		assert.Equal(t, uint(i+1), h.ChunkID)
		assert.Zero(t, h.Distance)
	}

	hits, err = repo.Search(ctx, 7, vec(1, 1), 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestMemoryVectorRepository_DeleteByDocumentIDs(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryVectorRepository()
	require.NoError(t, repo.IndexChunks(ctx, []model.ChunkVector{
		{ChunkID: 1, DocumentID: 10, CompanyID: 1, Vector: vec(0, 0)},
		{ChunkID: 2, DocumentID: 11, CompanyID: 1, Vector: vec(0, 1)},
	}))

	require.NoError(t, repo.DeleteByDocumentIDs(ctx, []uint{10}))
	hits, err := repo.Search(ctx, 1, vec(0, 0), 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, uint(2), hits[0].ChunkID)

	assert.NoError(t, repo.DeleteByDocumentIDs(ctx, nil))
}

func TestMemoryVectorRepository_CopiesVectors(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryVectorRepository()
	v := vec(0, 0)
	require.NoError(t, repo.IndexChunks(ctx, []model.ChunkVector{{ChunkID: 1, CompanyID: 1, Vector: v}}))
	v[0] = 100

	hits, err := repo.Search(ctx, 1, vec(0, 0), 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Zero(t, hits[0].Distance)
}

func TestL2Distance(t *testing.T) {
	assert.InDelta(t, 5.0, L2Distance(vec(0, 0), vec(3, 4)), 1e-9)
	assert.Zero(t, L2Distance(vec(1, 2, 3), vec(1, 2, 3)))
}

func TestScoreToL2(t *testing.T) {
	assert.Zero(t, scoreToL2(1))
	assert.InDelta(t, 1.0, scoreToL2(0.5), 1e-9)
	assert.InDelta(t, 2.0, scoreToL2(0.2), 1e-9)
	assert.True(t, math.IsInf(scoreToL2(0), 1))
}
