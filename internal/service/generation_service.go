package service

import (
	"context"
	"fmt"
	"strings"

	"filing-advisor-go/internal/model"
	"filing-advisor-go/internal/repository"
	"filing-advisor-go/pkg/llm"
	"filing-advisor-go/pkg/log"

	"github.com/rotisserie/eris"
)

// GenerationRequest 触发一次模板生成。
type GenerationRequest struct {
	Mode      string `json:"-"`
	CompanyID uint   `json:"company_id" binding:"required"`
	UserID    *uint  `json:"user_id"`
}

// GenerationResponse 中 Sources 为实际使用的章节名称。
type GenerationResponse struct {
	Content string   `json:"content"`
	Sources []string `json:"sources"`
}

// GenerationService 基于整段章节原文生成摘要、风险提示或客户邮件，不经过检索。
type GenerationService interface {
	Generate(ctx context.Context, req GenerationRequest) (*GenerationResponse, error)
}

type generationService struct {
	companyRepo  repository.CompanyRepository
	documentRepo repository.DocumentRepository
	llmClient    llm.Client
	auditService AuditService
}

func NewGenerationService(companyRepo repository.CompanyRepository, documentRepo repository.DocumentRepository, llmClient llm.Client, auditService AuditService) GenerationService {
	return &generationService{
		companyRepo:  companyRepo,
		documentRepo: documentRepo,
		llmClient:    llmClient,
		auditService: auditService,
	}
}

func (s *generationService) Generate(ctx context.Context, req GenerationRequest) (*GenerationResponse, error) {
	tmpl, ok := generationTemplates[req.Mode]
	if !ok {
		return nil, eris.Wrapf(ErrInvalidMode, "mode %q", req.Mode)
	}
	if _, err := findCompany(ctx, s.companyRepo, req.CompanyID); err != nil {
		return nil, err
	}

	found, err := s.documentRepo.FindByCompanyAndCodes(ctx, req.CompanyID, tmpl.Sections)
	if err != nil {
		return nil, err
	}
	docs := orderBySections(found, tmpl.Sections)
	if len(docs) == 0 {
		log.Infof("[GenerationService] company_id %d 缺少 %s 所需章节", req.CompanyID, req.Mode)
		return &GenerationResponse{
			Content: fmt.Sprintf(missingSectionsTemplate, strings.Join(tmpl.Sections, ", ")),
			Sources: []string{},
		}, nil
	}

	userMsg := fmt.Sprintf(generationUserTemplate, req.Mode, buildGenerationContext(docs))
	content, err := s.llmClient.Complete(ctx, tmpl.Instruction, userMsg)
	if err != nil {
		log.Errorf("[GenerationService] 调用大模型失败, mode: %s, company_id: %d, error: %v", req.Mode, req.CompanyID, err)
		content = fmt.Sprintf(llmErrorTemplate, err)
	}

	sources := make([]string, len(docs))
	docIDs := make([]uint, len(docs))
	for i, d := range docs {
		sources[i] = d.ItemName
		docIDs[i] = d.ID
	}
	if _, err := s.auditService.Record(ctx, &model.AuditLog{
		UserID:               req.UserID,
		CompanyID:            req.CompanyID,
		QueryText:            fmt.Sprintf(generationAuditTemplate, req.Mode),
		RetrievedChunkIDs:    []uint{},
		RetrievedDocumentIDs: docIDs,
		LLMMode:              req.Mode,
		LLMResponse:          content,
	}); err != nil {
		return nil, err
	}

	return &GenerationResponse{Content: content, Sources: sources}, nil
}

// orderBySections 按模式定义的章节顺序排列文档；同一章节有多份时保留最新的一份。
func orderBySections(docs []model.Document, codes []string) []model.Document {
	latest := make(map[string]model.Document, len(docs))
	for _, d := range docs {
		if cur, ok := latest[d.ItemCode]; !ok || d.ID > cur.ID {
			latest[d.ItemCode] = d
		}
	}
	out := make([]model.Document, 0, len(codes))
	for _, code := range codes {
		if d, ok := latest[code]; ok {
			out = append(out, d)
		}
	}
	return out
}
