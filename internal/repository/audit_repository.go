package repository

import (
	"context"

	"filing-advisor-go/internal/model"

	"gorm.io/gorm"
)

// AuditRepository 只支持追加和查询，审计记录不可修改或删除。
type AuditRepository interface {
	Create(ctx context.Context, entry *model.AuditLog) error
	List(ctx context.Context, filter model.AuditFilter) ([]model.AuditLog, error)
}

type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository 创建一个新的 AuditRepository 实例。
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, entry *model.AuditLog) error {
	return translate(r.db.WithContext(ctx).Create(entry).Error, "audit: create")
}

// List 按时间倒序返回审计记录。
func (r *auditRepository) List(ctx context.Context, filter model.AuditFilter) ([]model.AuditLog, error) {
	q := r.db.WithContext(ctx).Model(&model.AuditLog{})
	if filter.CompanyID != 0 {
		q = q.Where("company_id = ?", filter.CompanyID)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}
	var logs []model.AuditLog
	err := q.Order("timestamp DESC, id DESC").Find(&logs).Error
	return logs, translate(err, "audit: list")
}
