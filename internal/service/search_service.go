package service

import (
	"context"

	"filing-advisor-go/internal/model"
	"filing-advisor-go/internal/repository"
	"filing-advisor-go/pkg/embedding"
	"filing-advisor-go/pkg/log"
)

// DefaultTopK 是单次检索返回的最大分块数。
const DefaultTopK = 5

// overFetchFactor 放大向量检索的候选数，索引里残留的旧向量被过滤后仍能凑满 topK。
const overFetchFactor = 2

// SearchService 在单个公司的分块中做向量近邻检索。
type SearchService interface {
	Retrieve(ctx context.Context, query string, companyID uint) ([]model.RetrievedChunk, error)
}

type searchService struct {
	embeddingClient embedding.Client
	vectorRepo      repository.VectorRepository
	documentRepo    repository.DocumentRepository
	topK            int
}

// NewSearchService 创建一个新的 SearchService 实例。topK<=0 时使用 DefaultTopK。
func NewSearchService(embeddingClient embedding.Client, vectorRepo repository.VectorRepository, documentRepo repository.DocumentRepository, topK int) SearchService {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &searchService{
		embeddingClient: embeddingClient,
		vectorRepo:      vectorRepo,
		documentRepo:    documentRepo,
		topK:            topK,
	}
}

// Retrieve 返回按 L2 距离升序排列的分块。公司没有分块时返回空结果而不是错误。
func (s *searchService) Retrieve(ctx context.Context, query string, companyID uint) ([]model.RetrievedChunk, error) {
	log.Infof("[SearchService] 开始检索, company_id: %d, topK: %d", companyID, s.topK)

	queryVector, err := s.embeddingClient.CreateEmbedding(ctx, query)
	if err != nil {
		log.Errorf("[SearchService] 向量化查询失败: %v", err)
		return nil, err
	}

	hits, err := s.vectorRepo.Search(ctx, companyID, queryVector, s.topK*overFetchFactor)
	if err != nil {
		log.Errorf("[SearchService] 向量检索失败: %v", err)
		return nil, err
	}
	if len(hits) == 0 {
		log.Infof("[SearchService] company_id %d 没有命中任何分块", companyID)
		return nil, nil
	}

	ids := make([]uint, len(hits))
	for i, h := range hits {
		ids[i] = h.ChunkID
	}
	chunks, err := s.documentRepo.FindChunksByIDs(ctx, ids)
	if err != nil {
		log.Errorf("[SearchService] 读取分块失败: %v", err)
		return nil, err
	}
	byID := make(map[uint]model.Chunk, len(chunks))
	for _, c := range chunks {
		byID[c.ID] = c
	}

	results := make([]model.RetrievedChunk, 0, s.topK)
	for _, h := range hits {
		if len(results) == s.topK {
			break
		}
		c, ok := byID[h.ChunkID]
		// 索引和数据库之间可能短暂不一致，缺失的分块直接丢弃
		if !ok || c.Document == nil || c.Document.CompanyID != companyID {
			log.Warnf("[SearchService] 向量命中的分块 %d 不存在或不属于该公司, 已忽略", h.ChunkID)
			continue
		}
		results = append(results, model.RetrievedChunk{
			ChunkID:    c.ID,
			DocumentID: c.DocumentID,
			ItemName:   c.Document.ItemName,
			ChunkIndex: c.ChunkIndex,
			ChunkText:  c.ChunkText,
			Distance:   h.Distance,
		})
	}
	log.Infof("[SearchService] 检索完成, 命中 %d 个分块", len(results))
	return results, nil
}
