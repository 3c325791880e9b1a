package service

import (
	"context"
	"time"

	"filing-advisor-go/internal/model"
	"filing-advisor-go/internal/repository"
	"filing-advisor-go/pkg/log"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

// AuditService 记录每一次模型交互，记录写入后不可修改。
type AuditService interface {
	Record(ctx context.Context, entry *model.AuditLog) (uint, error)
	List(ctx context.Context, filter model.AuditFilter) ([]model.AuditLog, error)
}

type auditService struct {
	auditRepo repository.AuditRepository
	now       func() time.Time
}

func NewAuditService(auditRepo repository.AuditRepository) AuditService {
	return &auditService{auditRepo: auditRepo, now: time.Now}
}

func (s *auditService) Record(ctx context.Context, entry *model.AuditLog) (uint, error) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now().UTC()
	}
	if entry.RetrievedChunkIDs == nil {
		entry.RetrievedChunkIDs = []uint{}
	}
	if entry.RetrievedDocumentIDs == nil {
		entry.RetrievedDocumentIDs = []uint{}
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		log.Errorf("[AuditService] 写入审计日志失败, company_id: %d, mode: %s, error: %v", entry.CompanyID, entry.LLMMode, err)
		return 0, err
	}
	log.Infow("[AuditService] audit recorded",
		"audit_id", entry.ID,
		"company_id", entry.CompanyID,
		"mode", entry.LLMMode,
		"chunks", len(entry.RetrievedChunkIDs),
		"documents", len(entry.RetrievedDocumentIDs),
	)
	return entry.ID, nil
}

// List 按时间倒序分页返回，limit 默认 50，最大 500。
func (s *auditService) List(ctx context.Context, filter model.AuditFilter) ([]model.AuditLog, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultAuditLimit
	}
	if filter.Limit > maxAuditLimit {
		filter.Limit = maxAuditLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.auditRepo.List(ctx, filter)
}
