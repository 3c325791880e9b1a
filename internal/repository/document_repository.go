package repository

import (
	"context"

	"filing-advisor-go/internal/model"

	"gorm.io/gorm"
)

// IndexFunc 在章节写入事务内被调用，返回错误会回滚整个事务。
type IndexFunc func(ctx context.Context) error

// DocumentRepository 定义了 documents 与 chunks 表的数据操作接口。
type DocumentRepository interface {
	// ReplaceSection 在一个事务内删除同一公司同一章节的旧文档及分块，写入新文档和分块，
	// 然后调用 index。返回被删除的旧文档 ID。
	ReplaceSection(ctx context.Context, doc *model.Document, chunks []*model.Chunk, index IndexFunc) ([]uint, error)
	FindByCompanyAndCodes(ctx context.Context, companyID uint, codes []string) ([]model.Document, error)
	// FindChunksByIDs 返回分块及其所属文档，不存在的 ID 直接忽略。
	FindChunksByIDs(ctx context.Context, ids []uint) ([]model.Chunk, error)
}

type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository 创建一个新的 DocumentRepository 实例。
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) ReplaceSection(ctx context.Context, doc *model.Document, chunks []*model.Chunk, index IndexFunc) ([]uint, error) {
	var stale []uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Document{}).
			Where("company_id = ? AND item_code = ?", doc.CompanyID, doc.ItemCode).
			Pluck("id", &stale).Error; err != nil {
			return err
		}
		if len(stale) > 0 {
			if err := tx.Where("document_id IN ?", stale).Delete(&model.Chunk{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", stale).Delete(&model.Document{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Create(doc).Error; err != nil {
			return err
		}
		for _, c := range chunks {
			c.DocumentID = doc.ID
		}
		if len(chunks) > 0 {
			// 每100条记录一批
			if err := tx.CreateInBatches(chunks, 100).Error; err != nil {
				return err
			}
		}
		if index != nil {
			return index(ctx)
		}
		return nil
	})
	if err != nil {
		return nil, translate(err, "document: replace section")
	}
	return stale, nil
}

func (r *documentRepository) FindByCompanyAndCodes(ctx context.Context, companyID uint, codes []string) ([]model.Document, error) {
	var docs []model.Document
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND item_code IN ?", companyID, codes).
		Order("id ASC").
		Find(&docs).Error
	return docs, translate(err, "document: find by company and codes")
}

func (r *documentRepository) FindChunksByIDs(ctx context.Context, ids []uint) ([]model.Chunk, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var chunks []model.Chunk
	err := r.db.WithContext(ctx).
		Preload("Document").
		Where("id IN ?", ids).
		Find(&chunks).Error
	return chunks, translate(err, "document: find chunks by ids")
}
