package repository

import (
	"context"
	"math"
	"sort"
	"sync"

	"filing-advisor-go/internal/model"
)

// VectorRepository 是分块向量索引的抽象。Search 只在指定公司的分块中查找，
// 结果按 L2 距离升序。
type VectorRepository interface {
	IndexChunks(ctx context.Context, vectors []model.ChunkVector) error
	Search(ctx context.Context, companyID uint, query []float32, k int) ([]model.VectorHit, error)
	DeleteByDocumentIDs(ctx context.Context, documentIDs []uint) error
}

// memoryVectorRepository 在进程内暴力计算 L2 距离，用于开发和测试。
type memoryVectorRepository struct {
	mu      sync.RWMutex
	vectors map[uint]model.ChunkVector
}

// NewMemoryVectorRepository 创建一个内存向量索引。
func NewMemoryVectorRepository() VectorRepository {
	return &memoryVectorRepository{vectors: make(map[uint]model.ChunkVector)}
}

func (r *memoryVectorRepository) IndexChunks(_ context.Context, vectors []model.ChunkVector) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range vectors {
		cp := v
		cp.Vector = append([]float32(nil), v.Vector...)
		r.vectors[v.ChunkID] = cp
	}
	return nil
}

func (r *memoryVectorRepository) Search(_ context.Context, companyID uint, query []float32, k int) ([]model.VectorHit, error) {
	if k <= 0 {
		return nil, nil
	}
	r.mu.RLock()
	hits := make([]model.VectorHit, 0, len(r.vectors))
	for _, v := range r.vectors {
		if v.CompanyID != companyID || len(v.Vector) != len(query) {
			continue
		}
		hits = append(hits, model.VectorHit{
			ChunkID:    v.ChunkID,
			DocumentID: v.DocumentID,
			Distance:   L2Distance(query, v.Vector),
		})
	}
	r.mu.RUnlock()

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (r *memoryVectorRepository) DeleteByDocumentIDs(_ context.Context, documentIDs []uint) error {
	if len(documentIDs) == 0 {
		return nil
	}
	drop := make(map[uint]struct{}, len(documentIDs))
	for _, id := range documentIDs {
		drop[id] = struct{}{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, v := range r.vectors {
		if _, ok := drop[v.DocumentID]; ok {
			delete(r.vectors, id)
		}
	}
	return nil
}

// L2Distance 计算两个等长向量的欧氏距离。
func L2Distance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
